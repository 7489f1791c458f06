package codegen

import (
	"bytes"
	"fmt"

	"github.com/xplshn/boltc/pkg/ast"
	"github.com/xplshn/boltc/pkg/config"
	"github.com/xplshn/boltc/pkg/util"
)

// Backend is the interface that all code generation backends must implement.
type Backend interface {
	// Generate takes a parsed program and a configuration, and produces the
	// target assembly as a byte buffer.
	Generate(prog *ast.Program, cfg *config.Config) (*bytes.Buffer, error)
	// GenerateIR returns the text handed to the assembler stage: QBE IL for
	// the qbe backend, the assembly itself for nasm.
	GenerateIR(prog *ast.Program, cfg *config.Config) (string, error)
}

// NewBackend returns the backend named by cfg.BackendName.
func NewBackend(cfg *config.Config, rep *util.Reporter) (Backend, error) {
	switch cfg.BackendName {
	case "", "nasm":
		return NewNASMBackend(rep), nil
	case "qbe":
		return NewQBEBackend(rep), nil
	default:
		return nil, fmt.Errorf("unsupported backend '%s'", cfg.BackendName)
	}
}
