package parser

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xplshn/boltc/pkg/ast"
	"github.com/xplshn/boltc/pkg/config"
	"github.com/xplshn/boltc/pkg/lexer"
	"github.com/xplshn/boltc/pkg/token"
	"github.com/xplshn/boltc/pkg/util"
)

func parse(t *testing.T, src string) (*ast.Program, *util.Reporter, error) {
	t.Helper()
	cfg := config.NewConfig()
	rep := util.NewReporter(cfg)
	prog, err := Parse(lexer.Tokenize(src, cfg, rep), cfg, rep)
	require.NotNil(t, prog)
	return prog, rep, err
}

func onlyFunc(t *testing.T, prog *ast.Program) *ast.FuncDef {
	t.Helper()
	require.Len(t, prog.Stmts, 1)
	fn, ok := prog.Stmts[0].(*ast.FuncDef)
	require.True(t, ok, "expected *ast.FuncDef, got %T", prog.Stmts[0])
	require.NotNil(t, fn.Body)
	return fn
}

func TestParseMainReturnZero(t *testing.T) {
	prog, rep, err := parse(t, "int main() { return 0; }")
	require.NoError(t, err)
	assert.True(t, prog.Complete)
	assert.Empty(t, rep.Diagnostics())

	fn := onlyFunc(t, prog)
	assert.Equal(t, "main", fn.Name)
	assert.Equal(t, "int", fn.ReturnType)
	require.Len(t, fn.Body.Stmts, 1)
	ret, ok := fn.Body.Stmts[0].(*ast.Return)
	require.True(t, ok)
	num, ok := ret.Expr.(*ast.NumberLiteral)
	require.True(t, ok)
	assert.Equal(t, "0", num.Value)
}

func TestParseMissingExpressionIsFatal(t *testing.T) {
	prog, rep, err := parse(t, "int main() { return ; }")
	require.Error(t, err)

	var perr *Error
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, "Expected an expression (e.g., a number).", perr.Msg)
	assert.Equal(t, token.Semi, perr.Tok.Type)

	assert.False(t, prog.Complete)
	assert.Empty(t, prog.Stmts)
	require.Len(t, rep.Diagnostics(), 1)
	assert.Equal(t, util.SevFatal, rep.Diagnostics()[0].Severity)
}

func TestParseRecoversInsideBlock(t *testing.T) {
	prog, rep, err := parse(t, "int main() { foo(); return 0; }")
	require.NoError(t, err)
	assert.True(t, prog.Complete)

	fn := onlyFunc(t, prog)
	require.Len(t, fn.Body.Stmts, 1)
	ret, ok := fn.Body.Stmts[0].(*ast.Return)
	require.True(t, ok)
	assert.Equal(t, "0", ret.Expr.(*ast.NumberLiteral).Value)

	// foo ( ) ; are discarded one at a time
	assert.Equal(t, 4, rep.Count(util.SevWarning))
	assert.False(t, rep.HasErrors())
}

func TestParseTopLevelRecoveryLeavesSkippedSlots(t *testing.T) {
	prog, _, err := parse(t, "; int main() { return 1; } 5")
	require.NoError(t, err)
	require.Len(t, prog.Stmts, 3)
	assert.IsType(t, &ast.Skipped{}, prog.Stmts[0])
	assert.IsType(t, &ast.FuncDef{}, prog.Stmts[1])
	assert.IsType(t, &ast.Skipped{}, prog.Stmts[2])
	assert.Equal(t, token.Number, prog.Stmts[2].Token().Type)
	assert.Len(t, prog.FuncDefs(), 1)
}

func TestParseIntNotFollowedByIdentifier(t *testing.T) {
	prog, _, err := parse(t, "int 5")
	require.NoError(t, err)
	require.Len(t, prog.Stmts, 2)
	for _, s := range prog.Stmts {
		assert.True(t, ast.IsAbsent(s))
	}
}

func TestParseFatalErrors(t *testing.T) {
	testData := []struct {
		src string
		msg string
	}{
		{"int main() { return 0 }", "Expected ';' after return value."},
		{"int main( { return 0; }", "Expected ')' after parameters."},
		{"int main() return 0;", "Expected '{' to begin a block."},
		{"int main() { return 0;", "Expected '}' to end a block."},
		{"int main() { return x; }", "Expected an expression (e.g., a number)."},
	}
	for _, td := range testData {
		t.Run(td.src, func(t *testing.T) {
			prog, _, err := parse(t, td.src)
			var perr *Error
			require.True(t, errors.As(err, &perr))
			assert.Equal(t, td.msg, perr.Msg)
			assert.False(t, prog.Complete)
		})
	}
}

func TestParseFatalKeepsEarlierDeclarations(t *testing.T) {
	prog, _, err := parse(t, "int a() { return 1; } int b() { return ; }")
	require.Error(t, err)
	assert.False(t, prog.Complete)
	fn := onlyFunc(t, prog)
	assert.Equal(t, "a", fn.Name)
}

func TestParseMultipleFunctionsAndEmptyBody(t *testing.T) {
	prog, _, err := parse(t, "int a() { } int b() { return 2; return 3; }")
	require.NoError(t, err)
	fns := prog.FuncDefs()
	require.Len(t, fns, 2)
	assert.Empty(t, fns[0].Body.Stmts)
	assert.Len(t, fns[1].Body.Stmts, 2)
}

func TestParseEmptyInput(t *testing.T) {
	prog, err := Parse(nil, nil, nil)
	require.NoError(t, err)
	assert.True(t, prog.Complete)
	assert.Empty(t, prog.Stmts)

	prog, _, err = parse(t, "")
	require.NoError(t, err)
	assert.Empty(t, prog.Stmts)
}

func TestParseStreamWithoutEOF(t *testing.T) {
	toks := []token.Token{
		{Type: token.Int, Value: "int"},
		{Type: token.Ident, Value: "main"},
		{Type: token.LParen}, {Type: token.RParen},
		{Type: token.LBrace},
		{Type: token.Return, Value: "return"},
		{Type: token.Number, Value: "7"},
		{Type: token.Semi},
		{Type: token.RBrace},
	}
	prog, err := Parse(toks, nil, nil)
	require.NoError(t, err)
	fn := onlyFunc(t, prog)
	assert.Equal(t, "7", fn.Body.Stmts[0].(*ast.Return).Expr.(*ast.NumberLiteral).Value)
	assert.Len(t, toks, 9)
}

func TestSkippedTokenWarningCanBeDisabled(t *testing.T) {
	cfg := config.NewConfig()
	require.NoError(t, cfg.ApplyFlag("-Wno-skipped-token"))
	rep := util.NewReporter(cfg)
	_, err := Parse(lexer.Tokenize("x int main() { y return 0; }", cfg, rep), cfg, rep)
	require.NoError(t, err)
	assert.Empty(t, rep.Diagnostics())
}
