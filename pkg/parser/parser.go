package parser

import (
	"fmt"

	"github.com/xplshn/boltc/pkg/ast"
	"github.com/xplshn/boltc/pkg/config"
	"github.com/xplshn/boltc/pkg/token"
	"github.com/xplshn/boltc/pkg/util"
)

// Error is a fatal parse error. Parsing stops at the first one.
type Error struct {
	Tok token.Token
	Msg string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%d:%d: %s", e.Tok.Line, e.Tok.Column, e.Msg)
}

// Parser holds the state for the parsing process
type Parser struct {
	tokens []token.Token
	pos    int
	cfg    *config.Config
	rep    *util.Reporter
}

// NewParser creates and initializes a new Parser from a token stream.
// A stream that does not end in EOF gets one appended.
func NewParser(tokens []token.Token, cfg *config.Config, rep *util.Reporter) *Parser {
	if len(tokens) == 0 || tokens[len(tokens)-1].Type != token.EOF {
		var eof token.Token
		if len(tokens) > 0 {
			last := tokens[len(tokens)-1]
			eof = token.Token{Type: token.EOF, Line: last.Line, Column: last.Column + last.Len}
		}
		tokens = append(tokens[:len(tokens):len(tokens)], eof)
	}
	if cfg == nil {
		cfg = config.NewConfig()
	}
	if rep == nil {
		rep = util.NewReporter(cfg)
	}
	return &Parser{tokens: tokens, cfg: cfg, rep: rep}
}

// Parse builds the AST for tokens. On a fatal error the program parsed so far
// is returned, marked incomplete, together with the *Error.
func Parse(tokens []token.Token, cfg *config.Config, rep *util.Reporter) (*ast.Program, error) {
	return NewParser(tokens, cfg, rep).Parse()
}

func (p *Parser) Parse() (*ast.Program, error) {
	start := p.peek()
	var stmts []ast.Stmt
	for !p.isAtEnd() {
		stmt, err := p.parseDeclaration()
		if err != nil {
			return ast.NewProgram(start, stmts, false), err
		}
		stmts = append(stmts, stmt)
	}
	return ast.NewProgram(start, stmts, true), nil
}

// Parser helpers

func (p *Parser) peek() token.Token { return p.tokens[p.pos] }

// peekNext looks one token past the current one, sticking at EOF.
func (p *Parser) peekNext() token.Token {
	if p.pos+1 < len(p.tokens) {
		return p.tokens[p.pos+1]
	}
	return p.tokens[len(p.tokens)-1]
}

func (p *Parser) isAtEnd() bool { return p.peek().Type == token.EOF }

func (p *Parser) advance() token.Token {
	tok := p.peek()
	if !p.isAtEnd() {
		p.pos++
	}
	return tok
}

func (p *Parser) check(tokType token.Type) bool {
	if p.isAtEnd() {
		return false
	}
	return p.peek().Type == tokType
}

func (p *Parser) expect(tokType token.Type, message string) (token.Token, error) {
	if p.check(tokType) {
		return p.advance(), nil
	}
	return token.Token{}, p.fatal(message)
}

func (p *Parser) fatal(message string) error {
	tok := p.peek()
	p.rep.Fatal(util.StageParser, tok, "%s", message)
	return &Error{Tok: tok, Msg: message}
}

// skip discards the current token and reports it.
func (p *Parser) skip(where string) token.Token {
	tok := p.advance()
	p.rep.Warn(util.StageParser, config.WarnSkippedToken, tok, "Skipping unknown %s token: %s", where, tok)
	return tok
}

// Grammar

func (p *Parser) parseDeclaration() (ast.Stmt, error) {
	if p.check(token.Int) && p.peekNext().Type == token.Ident {
		return p.parseFuncDef()
	}
	return ast.NewSkipped(p.skip("top-level")), nil
}

func (p *Parser) parseFuncDef() (ast.Stmt, error) {
	typeTok := p.advance()
	nameTok, err := p.expect(token.Ident, "Expected function name.")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.LParen, "Expected '(' after function name."); err != nil {
		return nil, err
	}
	// TODO: parameter lists once declarations other than functions exist.
	if _, err := p.expect(token.RParen, "Expected ')' after parameters."); err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return ast.NewFuncDef(typeTok, typeTok.Value, nameTok.Value, body), nil
}

func (p *Parser) parseBlock() (*ast.Block, error) {
	open, err := p.expect(token.LBrace, "Expected '{' to begin a block.")
	if err != nil {
		return nil, err
	}
	var stmts []ast.Stmt
	for !p.check(token.RBrace) && !p.isAtEnd() {
		stmt, err := p.parseStmt()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, stmt)
	}
	if _, err := p.expect(token.RBrace, "Expected '}' to end a block."); err != nil {
		return nil, err
	}
	return ast.NewBlock(open, stmts), nil
}

func (p *Parser) parseStmt() (ast.Stmt, error) {
	if p.check(token.Return) {
		return p.parseReturn()
	}
	return ast.NewSkipped(p.skip("block")), nil
}

func (p *Parser) parseReturn() (ast.Stmt, error) {
	tok := p.advance()
	expr, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.Semi, "Expected ';' after return value."); err != nil {
		return nil, err
	}
	return ast.NewReturn(tok, expr), nil
}

func (p *Parser) parseExpr() (ast.Expr, error) {
	if p.check(token.Number) {
		tok := p.advance()
		return ast.NewNumber(tok, tok.Value), nil
	}
	return nil, p.fatal("Expected an expression (e.g., a number).")
}
