package token

import "fmt"

type Type int

const (
	EOF Type = iota
	Int
	Char
	Return
	For
	Ident
	Number
	String
	Semi
	LParen
	RParen
	LBrace
	RBrace
	Lt
	Gt
	Eq
	Plus
	Minus
	Star
	Slash
	Include
)

var KeywordMap = map[string]Type{
	"int":    Int,
	"char":   Char,
	"return": Return,
	"for":    For,
}

// Punctuation maps single-character punctuation to its token type
var Punctuation = map[rune]Type{
	';': Semi,
	'(': LParen,
	')': RParen,
	'{': LBrace,
	'}': RBrace,
	'<': Lt,
	'>': Gt,
	'=': Eq,
	'+': Plus,
	'-': Minus,
	'*': Star,
	'/': Slash,
}

var typeNames = [...]string{
	EOF:     "END_OF_FILE",
	Int:     "INT",
	Char:    "CHAR",
	Return:  "RETURN",
	For:     "FOR",
	Ident:   "IDENTIFIER",
	Number:  "NUMBER_LITERAL",
	String:  "STRING_LITERAL",
	Semi:    "SEMICOLON",
	LParen:  "OPEN_PAREN",
	RParen:  "CLOSE_PAREN",
	LBrace:  "OPEN_BRACE",
	RBrace:  "CLOSE_BRACE",
	Lt:      "OPEN_ANGLE",
	Gt:      "CLOSE_ANGLE",
	Eq:      "EQUALS",
	Plus:    "PLUS",
	Minus:   "MINUS",
	Star:    "STAR",
	Slash:   "SLASH",
	Include: "INCLUDE",
}

func (t Type) String() string {
	if t >= 0 && int(t) < len(typeNames) {
		return typeNames[t]
	}
	return "UNKNOWN"
}

// IsKeyword reports whether t is one of the reserved words
func (t Type) IsKeyword() bool { return t >= Int && t <= For }

type Token struct {
	Type   Type
	Value  string
	Line   int
	Column int
	Len    int
}

func (t Token) String() string {
	return fmt.Sprintf("Token [Type: %s, Value: '%s', Line: %d]", t.Type, t.Value, t.Line)
}
