package lexer

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xplshn/boltc/pkg/config"
	"github.com/xplshn/boltc/pkg/token"
	"github.com/xplshn/boltc/pkg/util"
)

func types(toks []token.Token) []token.Type {
	out := make([]token.Type, len(toks))
	for i, t := range toks {
		out[i] = t.Type
	}
	return out
}

func lex(t *testing.T, src string) ([]token.Token, *util.Reporter) {
	t.Helper()
	cfg := config.NewConfig()
	rep := util.NewReporter(cfg)
	return Tokenize(src, cfg, rep), rep
}

func TestTokenizeKindSequence(t *testing.T) {
	toks, rep := lex(t, "int main ( ) { return 0 ; }")
	want := []token.Type{
		token.Int, token.Ident, token.LParen, token.RParen, token.LBrace,
		token.Return, token.Number, token.Semi, token.RBrace, token.EOF,
	}
	if diff := cmp.Diff(want, types(toks)); diff != "" {
		t.Fatalf("token kinds mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, "main", toks[1].Value)
	assert.Equal(t, "0", toks[6].Value)
	assert.Empty(t, rep.Diagnostics())
}

func TestTokenizeAlwaysEndsWithSingleEOF(t *testing.T) {
	inputs := []string{
		"",
		"   \t\r\n",
		"int",
		"\"unterminated",
		"@@@",
		"#",
		"#inc",
		"// only a comment",
		"int main() { return 42; }",
		"/",
	}
	for _, src := range inputs {
		t.Run(src, func(t *testing.T) {
			toks, _ := lex(t, src)
			require.NotEmpty(t, toks)
			assert.Equal(t, token.EOF, toks[len(toks)-1].Type)
			for _, tok := range toks[:len(toks)-1] {
				assert.NotEqual(t, token.EOF, tok.Type)
			}
		})
	}
}

func TestKeywordsAndIdentifiers(t *testing.T) {
	testData := []struct {
		word string
		want token.Type
	}{
		{"int", token.Int},
		{"char", token.Char},
		{"return", token.Return},
		{"for", token.For},
		{"integer", token.Ident},
		{"Int", token.Ident},
		{"_for", token.Ident},
		{"returns", token.Ident},
		{"x1_y2", token.Ident},
		{"_", token.Ident},
	}
	for _, td := range testData {
		toks, _ := lex(t, td.word)
		require.Len(t, toks, 2, td.word)
		assert.Equal(t, td.want, toks[0].Type, td.word)
		assert.Equal(t, td.word, toks[0].Value)
	}
}

func TestPunctuation(t *testing.T) {
	toks, rep := lex(t, ";(){}<>=+-*/")
	want := []token.Type{
		token.Semi, token.LParen, token.RParen, token.LBrace, token.RBrace,
		token.Lt, token.Gt, token.Eq, token.Plus, token.Minus, token.Star, token.Slash,
		token.EOF,
	}
	assert.Equal(t, want, types(toks))
	assert.Empty(t, rep.Diagnostics())
}

func TestNumbersAreVerbatim(t *testing.T) {
	toks, _ := lex(t, "007 123abc")
	require.Len(t, toks, 4)
	assert.Equal(t, token.Number, toks[0].Type)
	assert.Equal(t, "007", toks[0].Value)
	assert.Equal(t, "123", toks[1].Value)
	assert.Equal(t, token.Ident, toks[2].Type)
	assert.Equal(t, "abc", toks[2].Value)
}

func TestNumberOverflowWarns(t *testing.T) {
	toks, rep := lex(t, "99999999999999999999")
	assert.Equal(t, "99999999999999999999", toks[0].Value)
	require.Len(t, rep.Diagnostics(), 1)
	assert.Equal(t, util.SevWarning, rep.Diagnostics()[0].Severity)
	assert.Equal(t, config.WarnOverflow, rep.Diagnostics()[0].Warning)
}

func TestCommentsAndSlash(t *testing.T) {
	toks, _ := lex(t, "a / b // ignored / stuff\nc")
	assert.Equal(t, []token.Type{token.Ident, token.Slash, token.Ident, token.Ident, token.EOF}, types(toks))
	assert.Equal(t, 2, toks[3].Line)

	cfg := config.NewConfig()
	cfg.SetFeature(config.FeatCComments, false)
	toks = Tokenize("//", cfg, nil)
	assert.Equal(t, []token.Type{token.Slash, token.Slash, token.EOF}, types(toks))
}

func TestLineAndColumnTracking(t *testing.T) {
	toks, _ := lex(t, "int\n\n  main")
	require.Len(t, toks, 3)
	assert.Equal(t, 1, toks[0].Line)
	assert.Equal(t, 3, toks[1].Line)
	assert.Equal(t, 3, toks[1].Column)
	assert.Equal(t, 4, toks[1].Len)
}

func TestStringLiteral(t *testing.T) {
	toks, rep := lex(t, "\"a\\\"b\nc\" x")
	require.Len(t, toks, 3)
	assert.Equal(t, token.String, toks[0].Type)
	assert.Equal(t, "a\\\"b\nc", toks[0].Value)
	assert.Equal(t, 2, toks[1].Line)
	assert.Empty(t, rep.Diagnostics())
}

func TestUnterminatedStringStopsScanning(t *testing.T) {
	toks, rep := lex(t, "int \"abc\nreturn 0;")
	assert.Equal(t, []token.Type{token.Int, token.EOF}, types(toks))
	require.Len(t, rep.Diagnostics(), 1)
	assert.Equal(t, util.SevError, rep.Diagnostics()[0].Severity)
	assert.Equal(t, "Unterminated string literal", rep.Diagnostics()[0].Msg)
}

func TestUnknownCharacterIsDiscarded(t *testing.T) {
	toks, rep := lex(t, "int @ $main")
	assert.Equal(t, []token.Type{token.Int, token.Ident, token.EOF}, types(toks))
	require.Len(t, rep.Diagnostics(), 2)
	assert.Equal(t, "Unexpected character: '@'", rep.Diagnostics()[0].Msg)
	assert.Equal(t, 5, rep.Diagnostics()[0].Tok.Column)
	assert.True(t, rep.HasErrors())
}

func TestInclude(t *testing.T) {
	toks, rep := lex(t, "#include <stdio>\nint")
	assert.Equal(t, []token.Type{token.Include, token.Lt, token.Ident, token.Gt, token.Int, token.EOF}, types(toks))
	assert.Equal(t, "#include", toks[0].Value)
	assert.Equal(t, 8, toks[0].Len)
	assert.Empty(t, rep.Diagnostics())
}

func TestMalformedIncludeKeepsFollowingText(t *testing.T) {
	toks, rep := lex(t, "#if x")
	assert.Equal(t, []token.Type{token.Ident, token.Ident, token.EOF}, types(toks))
	assert.Equal(t, "if", toks[0].Value)
	require.Len(t, rep.Diagnostics(), 1)
	assert.Contains(t, rep.Diagnostics()[0].Msg, "expected '#include'")

	toks, rep = lex(t, "#inc")
	assert.Equal(t, []token.Type{token.Ident, token.EOF}, types(toks))
	assert.Equal(t, "inc", toks[0].Value)
	assert.Len(t, rep.Diagnostics(), 1)
}

func TestIncludeFeatureDisabled(t *testing.T) {
	cfg := config.NewConfig()
	cfg.SetFeature(config.FeatInclude, false)
	rep := util.NewReporter(cfg)
	toks := Tokenize("#include", cfg, rep)
	assert.Equal(t, []token.Type{token.Ident, token.EOF}, types(toks))
	require.Len(t, rep.Diagnostics(), 1)
	assert.Equal(t, "Unexpected character: '#'", rep.Diagnostics()[0].Msg)
}

func TestNextAfterEOF(t *testing.T) {
	l := NewLexer([]rune("x"), nil, nil)
	assert.Equal(t, token.Ident, l.Next().Type)
	assert.Equal(t, token.EOF, l.Next().Type)
	assert.Equal(t, token.EOF, l.Next().Type)
}

func TestTokenizeIsIndependentPerCall(t *testing.T) {
	first, _ := lex(t, "int main() { return 1; }")
	second, _ := lex(t, "int main() { return 1; }")
	assert.Equal(t, first, second)
}
