package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/nalgeon/be"
	"github.com/penquin-lang/penquin/internal/config"
)

func TestParseArgs(t *testing.T) {
	entry := filepath.Join(t.TempDir(), "main.pq")
	be.Err(t, os.WriteFile(entry, []byte("fn main() {}"), 0o644), nil)

	tests := []struct {
		name     string
		args     []string
		expected CliResult
	}{
		{"no args", nil, CliResult{Command: COMMAND_HELP}},
		{"help", []string{"help"}, CliResult{Command: COMMAND_HELP}},
		{"env", []string{"env"}, CliResult{Command: COMMAND_ENV}},
		{"repl", []string{"repl"}, CliResult{Command: COMMAND_REPL}},
		{
			"build defaults",
			[]string{"build", entry},
			CliResult{Command: COMMAND_BUILD, BuildType: config.DEBUG, ArgLoc: entry},
		},
		{
			"build with flags",
			[]string{"build", "-release", entry, "-o", "hello", "-emit-ir", "-debug-dump", "-j", "4"},
			CliResult{
				Command:   COMMAND_BUILD,
				BuildType: config.RELEASE,
				ArgLoc:    entry,
				Output:    "hello",
				EmitIR:    true,
				DebugDump: true,
				Jobs:      4,
			},
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			result, err := parseArgs(test.args)
			be.Err(t, err, nil)
			be.Equal(t, result, test.expected)
		})
	}
}

func TestParseArgsErrors(t *testing.T) {
	entry := filepath.Join(t.TempDir(), "main.pq")
	be.Err(t, os.WriteFile(entry, []byte("fn main() {}"), 0o644), nil)

	tests := [][]string{
		{"compile"},
		{"build"},
		{"build", filepath.Join(t.TempDir(), "missing.pq")},
		{"build", entry, "-release", "-debug"},
		{"build", entry, "-o"},
		{"build", entry, "-j", "zero"},
		{"build", entry, "-j", "0"},
		{"build", entry, "-fast"},
		{"build", entry, entry},
	}

	for _, args := range tests {
		t.Run(filepath.Base(args[len(args)-1]), func(t *testing.T) {
			_, err := parseArgs(args)
			be.True(t, err != nil)
		})
	}
}
