package codegen

import (
	"fmt"
	"strings"

	"github.com/xplshn/boltc/pkg/ast"
	"github.com/xplshn/boltc/pkg/config"
	"github.com/xplshn/boltc/pkg/util"
)

// emitter accumulates output text line by line.
type emitter struct {
	out strings.Builder
}

func (e *emitter) emit(format string, args ...any) {
	fmt.Fprintf(&e.out, format, args...)
	e.out.WriteByte('\n')
}

// instr emits one indented instruction.
func (e *emitter) instr(format string, args ...any) {
	e.out.WriteString("  ")
	e.emit(format, args...)
}

func (e *emitter) String() string { return e.out.String() }

func defaults(cfg *config.Config, rep *util.Reporter) (*config.Config, *util.Reporter) {
	if cfg == nil {
		cfg = config.NewConfig()
	}
	if rep == nil {
		rep = util.NewReporter(cfg)
	}
	return cfg, rep
}

// checkFunc reports functions that never return.
func checkFunc(fn *ast.FuncDef, rep *util.Reporter) {
	if fn.Body == nil || !fn.Body.HasReturn() {
		rep.Warn(util.StageCodegen, config.WarnMissingReturn, fn.Tok, "Function '%s' has no return statement", fn.Name)
	}
}

// unknownExpr reports an expression slot the generator cannot lower.
func unknownExpr(ret *ast.Return, rep *util.Reporter) {
	rep.Warn(util.StageCodegen, config.WarnUnknownExpr, ret.Tok, "Unknown expression type")
}
