package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/dustin/go-humanize"
	"github.com/xplshn/boltc/pkg/ast"
	"github.com/xplshn/boltc/pkg/cli"
	"github.com/xplshn/boltc/pkg/codegen"
	"github.com/xplshn/boltc/pkg/config"
	"github.com/xplshn/boltc/pkg/lexer"
	"github.com/xplshn/boltc/pkg/parser"
	"github.com/xplshn/boltc/pkg/token"
	"github.com/xplshn/boltc/pkg/util"
)

var errCompile = errors.New("compilation failed")

func main() {
	app := cli.NewApp("boltc")
	app.Synopsis = "[options] <input.c>"
	app.Description = "An ahead-of-time compiler for a small C-like language. Emits x86-64 assembly for nasm, or native assembly through QBE."
	app.Authors = []string{"xplshn"}
	app.Repository = "<https://github.com/xplshn/boltc>"

	var (
		outFile    string
		target     string
		pedantic   bool
		wall       bool
		dumpIR     bool
		dumpTokens bool
		dumpAST    bool
	)

	fs := app.FlagSet
	fs.String(&outFile, "output", "o", "", "Place the output into <file>. Defaults to output.asm (nasm) or output.s (qbe).", "file")
	fs.String(&target, "target", "t", "nasm", "Set the backend and target ABI.", "backend/target")
	fs.Bool(&dumpIR, "dump-ir", "d", false, "Dump the backend input (QBE IL, or the nasm assembly) and exit.")
	fs.Bool(&dumpTokens, "dump-tokens", "", false, "Print every token before parsing.")
	fs.Bool(&dumpAST, "dump-ast", "", false, "Print the abstract syntax tree before code generation.")
	fs.Bool(&pedantic, "pedantic", "", false, "Issue every available warning.")
	fs.Bool(&wall, "Wall", "", false, "Enable all warnings except pedantic.")

	cfg := config.NewConfig()
	warningFlags, featureFlags := cfg.SetupFlagGroups(fs)

	app.Action = func(inputFiles []string) error {
		if len(inputFiles) != 1 {
			fmt.Fprintln(os.Stderr, "boltc: error: expected exactly one input file")
			return errCompile
		}
		if err := cfg.SetTarget(runtime.GOOS, runtime.GOARCH, target); err != nil {
			fmt.Fprintf(os.Stderr, "boltc: error: %v\n", err)
			return err
		}
		if pedantic {
			cfg.SetPedantic()
		}
		if wall {
			cfg.SetAllWarnings(true)
		}
		cfg.ApplyFlagGroups(warningFlags, featureFlags)

		if outFile == "" {
			outFile = defaultOutput(cfg)
		}
		return compile(inputFiles[0], outFile, cfg, options{dumpIR: dumpIR, dumpTokens: dumpTokens, dumpAST: dumpAST})
	}

	if err := app.Run(os.Args[1:]); err != nil {
		os.Exit(1)
	}
}

type options struct {
	dumpIR, dumpTokens, dumpAST bool
}

func defaultOutput(cfg *config.Config) string {
	if cfg.BackendName == "qbe" {
		return "output.s"
	}
	return "output.asm"
}

func compile(inputFile, outFile string, cfg *config.Config, opts options) error {
	content, err := os.ReadFile(inputFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "boltc: error: could not open file: %v\n", err)
		return err
	}
	src := util.SourceFileRecord{Name: inputFile, Content: []rune(string(content))}
	rep := util.NewReporter(cfg)
	// Diagnostics are printed on every exit path.
	defer rep.Print(os.Stderr, src)

	fmt.Printf("Compiling %s...\n", inputFile)

	fmt.Println("--- [Lexer] ---")
	tokens := lexer.Tokenize(string(src.Content), cfg, rep)
	if opts.dumpTokens {
		dumpTokenList(tokens)
	}

	fmt.Println("--- [Parser] ---")
	prog, err := parser.Parse(tokens, cfg, rep)
	if opts.dumpAST {
		fmt.Println("\n--- [Abstract Syntax Tree] ---")
		ast.Dump(os.Stdout, prog)
	}
	if err != nil {
		return fmt.Errorf("%w: %w", errCompile, err)
	}
	if rep.HasErrors() {
		return errCompile
	}

	backend, err := codegen.NewBackend(cfg, rep)
	if err != nil {
		fmt.Fprintf(os.Stderr, "boltc: error: %v\n", err)
		return err
	}

	if opts.dumpIR {
		fmt.Printf("Dumping IR for '%s' backend...\n", cfg.BackendName)
		text, err := backend.GenerateIR(prog, cfg)
		if err != nil {
			return fmt.Errorf("backend IR generation failed: %w", err)
		}
		fmt.Print(text)
		return nil
	}

	fmt.Printf("\n--- [CodeGenerator] (%s) ---\n", cfg.BackendName)
	out, err := backend.Generate(prog, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "boltc: error: backend code generation failed: %v\n", err)
		return err
	}
	fmt.Printf("Generated %s of assembly.\n", humanize.Bytes(uint64(out.Len())))

	if err := os.WriteFile(outFile, out.Bytes(), 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "boltc: error: could not write output file: %v\n", err)
		return err
	}

	fmt.Printf("\nBuild finished. Assembly written to %s\n", outFile)
	fmt.Printf("   %s\n", assembleHint(cfg, outFile))
	return nil
}

func assembleHint(cfg *config.Config, outFile string) string {
	if cfg.BackendName == "qbe" {
		bin := outFile[:len(outFile)-len(filepath.Ext(outFile))]
		return fmt.Sprintf("Run 'cc -o %s %s' to assemble and link.", bin, outFile)
	}
	return fmt.Sprintf("Run 'nasm -f elf64 %s' to assemble.", outFile)
}

func dumpTokenList(tokens []token.Token) {
	for _, tok := range tokens {
		fmt.Println(tok)
	}
}
