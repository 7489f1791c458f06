// Package ast defines the types used to represent the Abstract Syntax Tree (AST)
package ast

import (
	"github.com/xplshn/boltc/pkg/token"
)

// Node is implemented by every statement and expression
type Node interface {
	Token() token.Token
}

// Stmt is the closed set of statement variants. Every variant is dispatched
// through StmtVisitor, so a new variant does not compile until each visitor
// handles it.
type Stmt interface {
	Node
	Accept(v StmtVisitor)
	stmtNode()
}

// Expr is the closed set of expression variants, dispatched through ExprVisitor.
type Expr interface {
	Node
	Accept(v ExprVisitor)
	exprNode()
}

type StmtVisitor interface {
	VisitProgram(n *Program)
	VisitFuncDef(n *FuncDef)
	VisitBlock(n *Block)
	VisitReturn(n *Return)
	VisitSkipped(n *Skipped)
}

type ExprVisitor interface {
	VisitNumber(n *NumberLiteral)
}

// --- Statements ---

// Program is the root. Its statements may include *Skipped entries left by
// top-level error recovery.
type Program struct {
	Tok   token.Token
	Stmts []Stmt
	// Complete is false when the parser stopped on a fatal error.
	Complete bool
}

type FuncDef struct {
	Tok        token.Token
	ReturnType string
	Name       string
	Body       *Block
}

// Block never holds absent statements.
type Block struct {
	Tok   token.Token
	Stmts []Stmt
}

type Return struct {
	Tok  token.Token
	Expr Expr
}

// Skipped marks a position where the parser discarded a token and produced no
// statement.
type Skipped struct {
	Tok token.Token
}

// --- Expressions ---

// NumberLiteral keeps the literal text as written.
type NumberLiteral struct {
	Tok   token.Token
	Value string
}

func (n *Program) Token() token.Token       { return n.Tok }
func (n *FuncDef) Token() token.Token       { return n.Tok }
func (n *Block) Token() token.Token         { return n.Tok }
func (n *Return) Token() token.Token        { return n.Tok }
func (n *Skipped) Token() token.Token       { return n.Tok }
func (n *NumberLiteral) Token() token.Token { return n.Tok }

func (n *Program) Accept(v StmtVisitor)       { v.VisitProgram(n) }
func (n *FuncDef) Accept(v StmtVisitor)       { v.VisitFuncDef(n) }
func (n *Block) Accept(v StmtVisitor)         { v.VisitBlock(n) }
func (n *Return) Accept(v StmtVisitor)        { v.VisitReturn(n) }
func (n *Skipped) Accept(v StmtVisitor)       { v.VisitSkipped(n) }
func (n *NumberLiteral) Accept(v ExprVisitor) { v.VisitNumber(n) }

func (*Program) stmtNode()       {}
func (*FuncDef) stmtNode()       {}
func (*Block) stmtNode()         {}
func (*Return) stmtNode()        {}
func (*Skipped) stmtNode()       {}
func (*NumberLiteral) exprNode() {}

// --- Node Constructors ---

func NewProgram(tok token.Token, stmts []Stmt, complete bool) *Program {
	return &Program{Tok: tok, Stmts: stmts, Complete: complete}
}

func NewFuncDef(tok token.Token, returnType, name string, body *Block) *FuncDef {
	return &FuncDef{Tok: tok, ReturnType: returnType, Name: name, Body: body}
}

// NewBlock drops absent statements so a block's children are always real nodes.
func NewBlock(tok token.Token, stmts []Stmt) *Block {
	kept := make([]Stmt, 0, len(stmts))
	for _, s := range stmts {
		if !IsAbsent(s) {
			kept = append(kept, s)
		}
	}
	return &Block{Tok: tok, Stmts: kept}
}

func NewReturn(tok token.Token, expr Expr) *Return {
	return &Return{Tok: tok, Expr: expr}
}

func NewSkipped(tok token.Token) *Skipped {
	return &Skipped{Tok: tok}
}

func NewNumber(tok token.Token, value string) *NumberLiteral {
	return &NumberLiteral{Tok: tok, Value: value}
}

// IsAbsent reports whether s stands for "no statement here".
func IsAbsent(s Stmt) bool {
	if s == nil {
		return true
	}
	_, skipped := s.(*Skipped)
	return skipped
}

// FuncDefs returns the function definitions of the program in source order.
func (n *Program) FuncDefs() []*FuncDef {
	var fns []*FuncDef
	for _, s := range n.Stmts {
		if fn, ok := s.(*FuncDef); ok {
			fns = append(fns, fn)
		}
	}
	return fns
}

// HasReturn reports whether the block or any nested block contains a return.
func (n *Block) HasReturn() bool {
	for _, s := range n.Stmts {
		switch s := s.(type) {
		case *Return:
			return true
		case *Block:
			if s.HasReturn() {
				return true
			}
		}
	}
	return false
}

// EndsWithReturn reports whether the last statement of the block is a return.
func (n *Block) EndsWithReturn() bool {
	if len(n.Stmts) == 0 {
		return false
	}
	switch last := n.Stmts[len(n.Stmts)-1].(type) {
	case *Return:
		return true
	case *Block:
		return last.EndsWithReturn()
	}
	return false
}
