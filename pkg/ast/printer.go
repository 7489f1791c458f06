package ast

import (
	"fmt"
	"io"
	"strings"
)

// printer renders the tree for --dump-ast, two spaces per level.
type printer struct {
	w      io.Writer
	indent int
}

// Dump writes a readable outline of prog to w.
func Dump(w io.Writer, prog *Program) {
	if prog == nil {
		return
	}
	prog.Accept(&printer{w: w})
}

func (p *printer) line(format string, args ...any) {
	fmt.Fprintf(p.w, "%s%s\n", strings.Repeat("  ", p.indent), fmt.Sprintf(format, args...))
}

func (p *printer) stmt(s Stmt) {
	if s == nil {
		p.line("NullStatement")
		return
	}
	s.Accept(p)
}

func (p *printer) VisitProgram(n *Program) {
	for _, s := range n.Stmts {
		p.stmt(s)
	}
	if !n.Complete {
		p.line("(incomplete)")
	}
}

func (p *printer) VisitFuncDef(n *FuncDef) {
	p.line("FunctionDef(%s %s)", n.ReturnType, n.Name)
	p.indent++
	if n.Body != nil {
		n.Body.Accept(p)
	}
	p.indent--
}

func (p *printer) VisitBlock(n *Block) {
	p.line("BlockStmt:")
	p.indent++
	for _, s := range n.Stmts {
		p.stmt(s)
	}
	p.indent--
}

func (p *printer) VisitReturn(n *Return) {
	p.line("ReturnStmt:")
	p.indent++
	if n.Expr == nil {
		p.line("Unknown ExprNode")
	} else {
		n.Expr.Accept(p)
	}
	p.indent--
}

func (p *printer) VisitSkipped(*Skipped) { p.line("NullStatement") }

func (p *printer) VisitNumber(n *NumberLiteral) { p.line("NumberLiteral(%s)", n.Value) }
