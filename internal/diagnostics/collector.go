package diagnostics

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
)

var (
	COMPILER_ERROR_FOUND = errors.New("compiler error found")
)

type Collector struct {
	Diags []Diag

	mu  sync.Mutex
	out io.Writer
}

func New() *Collector {
	return &Collector{
		Diags: nil,
		out:   os.Stderr,
	}
}

// Useful for testing
func NewWithWriter(out io.Writer) *Collector {
	return &Collector{Diags: nil, out: out}
}

// ReportAndSave writes the diagnostic to the diagnostic stream, keeps a copy
// and hands the same diagnostic back so callers can return it as an error.
func (collector *Collector) ReportAndSave(diag Diag) *Diag {
	collector.mu.Lock()
	defer collector.mu.Unlock()

	if collector.out != nil {
		fmt.Fprintln(collector.out, diag.Error())
	}
	collector.Diags = append(collector.Diags, diag)
	return &diag
}

func (collector *Collector) HasErrors() bool {
	collector.mu.Lock()
	defer collector.mu.Unlock()
	return len(collector.Diags) > 0
}
