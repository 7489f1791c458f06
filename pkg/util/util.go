package util

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/xplshn/boltc/pkg/config"
	"github.com/xplshn/boltc/pkg/token"
	"golang.org/x/term"
)

type Severity int

const (
	SevWarning Severity = iota
	SevError
	SevFatal
)

func (s Severity) String() string {
	switch s {
	case SevWarning:
		return "warning"
	case SevError:
		return "error"
	case SevFatal:
		return "fatal error"
	default:
		return "unknown"
	}
}

// Stage names the pipeline stage that produced a diagnostic
type Stage string

const (
	StageLexer   Stage = "lexer"
	StageParser  Stage = "parser"
	StageCodegen Stage = "codegen"
)

type Diagnostic struct {
	Severity Severity
	Stage    Stage
	Tok      token.Token
	Msg      string
	// Warning is the flag that enabled this diagnostic, only meaningful for SevWarning.
	Warning config.Warning
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%d:%d: %s: %s", d.Tok.Line, d.Tok.Column, d.Severity, d.Msg)
}

// SourceFileRecord tracks the name and content of a single source file.
type SourceFileRecord struct {
	Name    string
	Content []rune
}

// Reporter accumulates the diagnostics of a single compilation.
type Reporter struct {
	cfg   *config.Config
	diags []Diagnostic
}

func NewReporter(cfg *config.Config) *Reporter {
	return &Reporter{cfg: cfg}
}

func (r *Reporter) add(sev Severity, stage Stage, tok token.Token, format string, args ...any) {
	r.diags = append(r.diags, Diagnostic{Severity: sev, Stage: stage, Tok: tok, Msg: fmt.Sprintf(format, args...)})
}

// Error records a recoverable error
func (r *Reporter) Error(stage Stage, tok token.Token, format string, args ...any) {
	r.add(SevError, stage, tok, format, args...)
}

// Fatal records an error that stopped the stage
func (r *Reporter) Fatal(stage Stage, tok token.Token, format string, args ...any) {
	r.add(SevFatal, stage, tok, format, args...)
}

// Warn records a warning if the corresponding warning is enabled
func (r *Reporter) Warn(stage Stage, wt config.Warning, tok token.Token, format string, args ...any) {
	if r.cfg != nil && !r.cfg.IsWarningEnabled(wt) {
		return
	}
	r.add(SevWarning, stage, tok, format, args...)
	r.diags[len(r.diags)-1].Warning = wt
}

func (r *Reporter) Diagnostics() []Diagnostic { return r.diags }

// HasErrors reports whether anything above warning severity was recorded
func (r *Reporter) HasErrors() bool {
	for _, d := range r.diags {
		if d.Severity >= SevError {
			return true
		}
	}
	return false
}

// Count returns the number of diagnostics of the given severity
func (r *Reporter) Count(sev Severity) int {
	n := 0
	for _, d := range r.diags {
		if d.Severity == sev {
			n++
		}
	}
	return n
}

// Print renders every diagnostic against src in file:line:col form
func (r *Reporter) Print(w io.Writer, src SourceFileRecord) {
	color := isTerminal(w)
	for _, d := range r.diags {
		printDiagnostic(w, src, d, color, r.cfg)
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func printDiagnostic(w io.Writer, src SourceFileRecord, d Diagnostic, color bool, cfg *config.Config) {
	name := src.Name
	if name == "" {
		name = "<input>"
	}
	label := d.Severity.String()
	if color {
		switch d.Severity {
		case SevWarning:
			label = "\033[33m" + label + ":\033[0m"
		default:
			label = "\033[31m" + label + ":\033[0m"
		}
	} else {
		label += ":"
	}
	fmt.Fprintf(w, "%s:%d:%d: %s %s", name, d.Tok.Line, d.Tok.Column, label, d.Msg)
	if d.Severity == SevWarning && cfg != nil {
		fmt.Fprintf(w, " [-W%s]", cfg.Warnings[d.Warning].Name)
	}
	fmt.Fprintln(w)
	printErrorLine(w, src.Content, d.Tok, color)
}

// printErrorLine prints the source line and a caret indicating the error position
func printErrorLine(w io.Writer, content []rune, tok token.Token, color bool) {
	if tok.Line <= 0 || len(content) == 0 {
		return
	}

	lineNum := tok.Line
	lineStart := 0
	for i, r := range content {
		if lineNum <= 1 {
			break
		}
		if r == '\n' {
			lineNum--
			lineStart = i + 1
		}
	}
	if lineNum > 1 {
		return
	}

	lineEnd := len(content)
	for i := lineStart; i < len(content); i++ {
		if content[i] == '\n' {
			lineEnd = i
			break
		}
	}

	fmt.Fprintf(w, "  %s\n", string(content[lineStart:lineEnd]))

	col := tok.Column
	if col < 1 {
		col = 1
	}
	underline := "^"
	if tok.Len > 1 {
		underline += strings.Repeat("~", tok.Len-1)
	}
	if color {
		underline = "\033[32m" + underline + "\033[0m"
	}
	fmt.Fprintf(w, "  %s%s\n", strings.Repeat(" ", col-1), underline)
}
