package lexer

import (
	"errors"
	"strconv"

	"github.com/xplshn/boltc/pkg/config"
	"github.com/xplshn/boltc/pkg/token"
	"github.com/xplshn/boltc/pkg/util"
)

const includeWord = "include"

type Lexer struct {
	source []rune
	pos    int
	line   int
	column int
	cfg    *config.Config
	rep    *util.Reporter
}

// NewLexer creates a lexer over source. A nil cfg means the default configuration
// and a nil rep keeps the diagnostics in a reporter private to the lexer.
func NewLexer(source []rune, cfg *config.Config, rep *util.Reporter) *Lexer {
	if cfg == nil {
		cfg = config.NewConfig()
	}
	if rep == nil {
		rep = util.NewReporter(cfg)
	}
	return &Lexer{source: source, line: 1, column: 1, cfg: cfg, rep: rep}
}

// Tokenize scans the whole source. The result always ends with exactly one EOF token.
func Tokenize(source string, cfg *config.Config, rep *util.Reporter) []token.Token {
	l := NewLexer([]rune(source), cfg, rep)
	var toks []token.Token
	for {
		tok := l.Next()
		toks = append(toks, tok)
		if tok.Type == token.EOF {
			return toks
		}
	}
}

// Next returns the next token. Once EOF has been returned, every later call returns EOF again.
func (l *Lexer) Next() token.Token {
	for {
		l.skipWhitespaceAndComments()
		startPos, startCol, startLine := l.pos, l.column, l.line

		if l.isAtEnd() {
			return l.makeToken(token.EOF, "", startPos, startCol, startLine)
		}

		ch := l.peek()
		if isAlpha(ch) || ch == '_' {
			return l.identifierOrKeyword(startPos, startCol, startLine)
		}
		if isDigit(ch) {
			return l.numberLiteral(startPos, startCol, startLine)
		}

		l.advance()
		if tokType, ok := token.Punctuation[ch]; ok {
			return l.makeToken(tokType, string(ch), startPos, startCol, startLine)
		}

		switch ch {
		case '"':
			return l.stringLiteral(startPos, startCol, startLine)
		case '#':
			if tok, ok := l.include(startPos, startCol, startLine); ok {
				return tok
			}
			continue
		}

		l.rep.Error(util.StageLexer, l.makeToken(token.EOF, string(ch), startPos, startCol, startLine), "Unexpected character: '%c'", ch)
	}
}

func (l *Lexer) peek() rune {
	if l.isAtEnd() {
		return 0
	}
	return l.source[l.pos]
}

func (l *Lexer) peekNext() rune {
	if l.pos+1 >= len(l.source) {
		return 0
	}
	return l.source[l.pos+1]
}

func (l *Lexer) advance() rune {
	if l.isAtEnd() {
		return 0
	}
	ch := l.source[l.pos]
	if ch == '\n' {
		l.line++
		l.column = 1
	} else {
		l.column++
	}
	l.pos++
	return ch
}

func (l *Lexer) isAtEnd() bool { return l.pos >= len(l.source) }

func (l *Lexer) makeToken(tokType token.Type, value string, startPos, startCol, startLine int) token.Token {
	return token.Token{
		Type: tokType, Value: value,
		Line: startLine, Column: startCol, Len: l.pos - startPos,
	}
}

func (l *Lexer) skipWhitespaceAndComments() {
	for {
		switch l.peek() {
		case ' ', '\t', '\r', '\n':
			l.advance()
		case '/':
			if l.peekNext() != '/' || !l.cfg.IsFeatureEnabled(config.FeatCComments) {
				return
			}
			for !l.isAtEnd() && l.peek() != '\n' {
				l.advance()
			}
		default:
			return
		}
	}
}

// include matches '#include' literally; the '#' has already been consumed.
// Anything else after '#' is reported and only the '#' is dropped.
func (l *Lexer) include(startPos, startCol, startLine int) (token.Token, bool) {
	if l.cfg.IsFeatureEnabled(config.FeatInclude) && l.hasPrefix(includeWord) {
		for range includeWord {
			l.advance()
		}
		return l.makeToken(token.Include, "#"+includeWord, startPos, startCol, startLine), true
	}

	tok := l.makeToken(token.EOF, "#", startPos, startCol, startLine)
	if l.peek() == 'i' && l.cfg.IsFeatureEnabled(config.FeatInclude) {
		l.rep.Error(util.StageLexer, tok, "Malformed preprocessor directive, expected '#include'")
	} else {
		l.rep.Error(util.StageLexer, tok, "Unexpected character: '#'")
	}
	return token.Token{}, false
}

func (l *Lexer) hasPrefix(word string) bool {
	rest := l.source[l.pos:]
	i := 0
	for _, r := range word {
		if i >= len(rest) || rest[i] != r {
			return false
		}
		i++
	}
	return true
}

func (l *Lexer) identifierOrKeyword(startPos, startCol, startLine int) token.Token {
	for isAlpha(l.peek()) || isDigit(l.peek()) || l.peek() == '_' {
		l.advance()
	}
	value := string(l.source[startPos:l.pos])
	if tokType, isKeyword := token.KeywordMap[value]; isKeyword {
		return l.makeToken(tokType, value, startPos, startCol, startLine)
	}
	return l.makeToken(token.Ident, value, startPos, startCol, startLine)
}

func (l *Lexer) numberLiteral(startPos, startCol, startLine int) token.Token {
	for isDigit(l.peek()) {
		l.advance()
	}
	value := string(l.source[startPos:l.pos])
	tok := l.makeToken(token.Number, value, startPos, startCol, startLine)
	if _, err := strconv.ParseUint(value, 10, 64); errors.Is(err, strconv.ErrRange) {
		l.rep.Warn(util.StageLexer, config.WarnOverflow, tok, "Integer constant overflow: %s", value)
	}
	return tok
}

// stringLiteral keeps the body verbatim, a backslash protects the character after it.
func (l *Lexer) stringLiteral(startPos, startCol, startLine int) token.Token {
	bodyStart := l.pos
	for !l.isAtEnd() {
		c := l.peek()
		if c == '"' {
			value := string(l.source[bodyStart:l.pos])
			l.advance()
			return l.makeToken(token.String, value, startPos, startCol, startLine)
		}
		l.advance()
		if c == '\\' && !l.isAtEnd() {
			l.advance()
		}
	}
	l.rep.Error(util.StageLexer, l.makeToken(token.String, "", startPos, startCol, startLine), "Unterminated string literal")
	return l.makeToken(token.EOF, "", l.pos, l.column, l.line)
}

func isAlpha(r rune) bool { return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') }

func isDigit(r rune) bool { return r >= '0' && r <= '9' }
