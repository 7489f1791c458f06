package codegen

import (
	"fmt"

	"github.com/xplshn/boltc/pkg/ast"
	"github.com/xplshn/boltc/pkg/config"
	"github.com/xplshn/boltc/pkg/util"
)

// qbeBackend lowers the AST to QBE IL, which libqbe (or the qbe binary)
// turns into GNU assembly for the selected target.
type qbeBackend struct {
	emitter
	cfg        *config.Config
	rep        *util.Reporter
	labelCount int
	// terminated is set after a jump; QBE needs a fresh label before more code.
	terminated bool
}

func NewQBEBackend(rep *util.Reporter) Backend { return &qbeBackend{rep: rep} }

func (b *qbeBackend) GenerateIR(prog *ast.Program, cfg *config.Config) (string, error) {
	b.cfg, b.rep = defaults(cfg, b.rep)
	b.out.Reset()
	b.labelCount = 0
	if prog != nil {
		prog.Accept(b)
	}
	return b.String(), nil
}

// formatType maps a source type name to the QBE base type of its values.
func formatType(name string) string {
	switch name {
	case "char", "int":
		return "w"
	default:
		return "l"
	}
}

func (b *qbeBackend) newLabel() string {
	b.labelCount++
	return fmt.Sprintf("L%d", b.labelCount)
}

// inst emits an instruction, opening a new block first if the previous one
// already ended in a jump.
func (b *qbeBackend) inst(format string, args ...any) {
	if b.terminated {
		b.emit("@%s", b.newLabel())
		b.terminated = false
	}
	b.out.WriteByte('\t')
	b.emit(format, args...)
}

func (b *qbeBackend) VisitProgram(n *ast.Program) {
	for _, s := range n.Stmts {
		if s != nil {
			s.Accept(b)
		}
	}
}

func (b *qbeBackend) VisitFuncDef(n *ast.FuncDef) {
	checkFunc(n, b.rep)
	retType := formatType(n.ReturnType)
	b.emit("")
	b.emit("export function %s $%s() {", retType, n.Name)
	b.emit("@start")
	b.terminated = false
	if n.Body != nil {
		n.Body.Accept(b)
	}
	// QBE rejects a function whose last block falls through.
	if !b.terminated {
		b.inst("ret 0")
		b.terminated = true
	}
	b.emit("}")
}

func (b *qbeBackend) VisitBlock(n *ast.Block) {
	for _, s := range n.Stmts {
		if s != nil {
			s.Accept(b)
		}
	}
}

func (b *qbeBackend) VisitReturn(n *ast.Return) {
	if n.Expr == nil {
		unknownExpr(n, b.rep)
		b.inst("ret 0")
	} else {
		n.Expr.Accept(b)
	}
	b.terminated = true
}

func (b *qbeBackend) VisitSkipped(*ast.Skipped) {}

// VisitNumber only appears as a return operand in the current grammar.
func (b *qbeBackend) VisitNumber(n *ast.NumberLiteral) {
	b.inst("ret %s", n.Value)
}
