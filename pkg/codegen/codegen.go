package codegen

import (
	"bytes"

	"github.com/xplshn/boltc/pkg/ast"
	"github.com/xplshn/boltc/pkg/config"
	"github.com/xplshn/boltc/pkg/util"
)

// Return values travel in rax; rbp anchors the frame.
const (
	retReg   = "rax"
	frameReg = "rbp"
	stackReg = "rsp"
)

// Generator walks the AST and emits NASM x86-64 assembly.
type Generator struct {
	emitter
	cfg *config.Config
	rep *util.Reporter
}

// NewGenerator creates a generator. Nil arguments select the default
// configuration and a private reporter.
func NewGenerator(cfg *config.Config, rep *util.Reporter) *Generator {
	cfg, rep = defaults(cfg, rep)
	return &Generator{cfg: cfg, rep: rep}
}

// Generate emits a complete assembly unit for prog. It never fails: nodes it
// cannot lower produce no code.
func Generate(prog *ast.Program, cfg *config.Config, rep *util.Reporter) string {
	return NewGenerator(cfg, rep).Generate(prog)
}

func (g *Generator) Generate(prog *ast.Program) string {
	g.emit("global main")
	g.emit("section .text")
	if prog != nil {
		prog.Accept(g)
	}
	return g.String()
}

func (g *Generator) stmt(s ast.Stmt) {
	if s == nil {
		return
	}
	s.Accept(g)
}

func (g *Generator) VisitProgram(n *ast.Program) {
	for _, s := range n.Stmts {
		g.stmt(s)
	}
}

func (g *Generator) VisitFuncDef(n *ast.FuncDef) {
	checkFunc(n, g.rep)
	g.emit("%s:", n.Name)
	g.instr("push %s", frameReg)
	g.instr("mov %s, %s", frameReg, stackReg)
	if n.Body != nil {
		n.Body.Accept(g)
	}
	if g.cfg.IsFeatureEnabled(config.FeatImplicitEpilogue) && (n.Body == nil || !n.Body.EndsWithReturn()) {
		g.epilogue()
	}
}

func (g *Generator) VisitBlock(n *ast.Block) {
	for _, s := range n.Stmts {
		g.stmt(s)
	}
}

func (g *Generator) VisitReturn(n *ast.Return) {
	if n.Expr == nil {
		unknownExpr(n, g.rep)
	} else {
		n.Expr.Accept(g)
	}
	g.epilogue()
}

func (g *Generator) VisitSkipped(*ast.Skipped) {}

func (g *Generator) VisitNumber(n *ast.NumberLiteral) {
	g.instr("mov %s, %s", retReg, n.Value)
}

func (g *Generator) epilogue() {
	g.instr("mov %s, %s", stackReg, frameReg)
	g.instr("pop %s", frameReg)
	g.instr("ret")
}

type nasmBackend struct {
	rep *util.Reporter
}

// NewNASMBackend returns the backend emitting Intel-syntax x86-64 for nasm.
func NewNASMBackend(rep *util.Reporter) Backend { return &nasmBackend{rep: rep} }

func (b *nasmBackend) GenerateIR(prog *ast.Program, cfg *config.Config) (string, error) {
	return Generate(prog, cfg, b.rep), nil
}

func (b *nasmBackend) Generate(prog *ast.Program, cfg *config.Config) (*bytes.Buffer, error) {
	return bytes.NewBufferString(Generate(prog, cfg, b.rep)), nil
}
