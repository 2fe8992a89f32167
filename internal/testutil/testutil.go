package testutil

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/nalgeon/be"
	"github.com/penquin-lang/penquin/internal/ast"
	"github.com/penquin-lang/penquin/internal/diagnostics"
	"github.com/penquin-lang/penquin/internal/lexer/token"
	"github.com/penquin-lang/penquin/internal/parser"
)

const DefaultFilename = "test.pq"

// NewCollector returns a collector that keeps diagnostics without printing
// them.
func NewCollector() *diagnostics.Collector {
	return diagnostics.NewWithWriter(io.Discard)
}

// ParseModule parses src as the module stored at path and fails the test on
// any error.
func ParseModule(tb testing.TB, path, src string) *ast.Module {
	tb.Helper()
	module, err := parser.ParseSource(path, path+".pq", []byte(src), NewCollector())
	be.Err(tb, err, nil)
	return module
}

// WriteFiles creates files (relative path -> content) under dir.
func WriteFiles(tb testing.TB, dir string, files map[string]string) {
	tb.Helper()
	for name, content := range files {
		full := filepath.Join(dir, name)
		be.Err(tb, os.MkdirAll(filepath.Dir(full), 0o755), nil)
		be.Err(tb, os.WriteFile(full, []byte(content), 0o644), nil)
	}
}

func NewId(name string) *token.Token {
	return token.New([]byte(name), token.ID, token.NewPosition(DefaultFilename, 1, 1))
}
