package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/penquin-lang/penquin/internal/ast"
	"github.com/penquin-lang/penquin/internal/codegen/llvm"
	"github.com/penquin-lang/penquin/internal/config"
	"github.com/penquin-lang/penquin/internal/diagnostics"
	"github.com/penquin-lang/penquin/internal/modules"
	"github.com/penquin-lang/penquin/internal/parser"
	"github.com/peterh/liner"
)

const (
	promptMain  = "pq> "
	promptCont  = "... "
	historyFile = ".penquin_history"

	replModule = "repl"
)

var replHelp = `:ir     toggle printing the IR of the session
:reset  forget every snippet entered so far
:help   show this message
:quit   leave the session
`

// session keeps every accepted snippet so each new one is generated
// together with what came before it.
type session struct {
	source   strings.Builder
	showIR   bool
	registry *modules.Registry
	out      io.Writer
}

func newSession(envs *config.Envs, out io.Writer) *session {
	collector := diagnostics.NewWithWriter(io.Discard)
	return &session{
		registry: modules.NewRegistry(envs.STD, collector),
		out:      out,
	}
}

func (s *session) parse(src string) (*ast.Module, error) {
	collector := diagnostics.NewWithWriter(io.Discard)
	return parser.ParseSource(replModule, replModule+modules.Extension, []byte(src), collector)
}

// command runs a ':' command and reports whether the session is over.
func (s *session) command(line string) bool {
	switch strings.TrimSpace(line) {
	case ":quit", ":exit":
		return true
	case ":ir":
		s.showIR = !s.showIR
		fmt.Fprintf(s.out, "IR output %s\n", map[bool]string{true: "on", false: "off"}[s.showIR])
	case ":reset":
		s.source.Reset()
		fmt.Fprintln(s.out, "session reset")
	case ":help":
		fmt.Fprint(s.out, replHelp)
	default:
		fmt.Fprintln(s.out, "unknown command, type :help for help")
	}
	return false
}

// eval prints the tree of every statement of snippet and generates the whole
// session with it, printing the IR when IR output is on. A snippet that
// fails to parse or generate is not kept.
func (s *session) eval(snippet string) error {
	module, err := s.parse(snippet)
	if err != nil {
		return err
	}
	for _, stmt := range module.Statements {
		fmt.Fprintln(s.out, ast.Sprint(stmt))
	}

	candidate := s.source.String() + snippet + "\n"
	whole, err := s.parse(candidate)
	if err != nil {
		return err
	}
	unit, err := llvm.Generate(whole, s.registry, diagnostics.NewWithWriter(io.Discard))
	if err != nil {
		return err
	}
	defer unit.Dispose()
	if s.showIR {
		fmt.Fprint(s.out, unit.IR())
	}

	s.source.Reset()
	s.source.WriteString(candidate)
	return nil
}

// incomplete reports whether src stopped in the middle of a construct and
// more lines are needed.
func incomplete(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "not end of file") || strings.Contains(msg, "unterminated string")
}

func readSnippet(ln *liner.State, s *session) (string, bool) {
	var b strings.Builder

	for {
		prompt := promptMain
		if b.Len() > 0 {
			prompt = promptCont
		}
		line, err := ln.Prompt(prompt)
		if errors.Is(err, io.EOF) {
			return "", false
		}
		if err != nil {
			// Ctrl+C drops the current input
			return "", true
		}

		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)

		src := b.String()
		if strings.HasPrefix(strings.TrimSpace(src), ":") {
			return src, true
		}
		if _, err := s.parse(src); err != nil && incomplete(err) {
			continue
		}
		return src, true
	}
}

func runREPL(envs *config.Envs) error {
	fmt.Println("penquin repl, type :help for help")

	home, _ := os.UserHomeDir()
	histPath := filepath.Join(home, historyFile)

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	if f, err := os.Open(histPath); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}

	s := newSession(envs, os.Stdout)
	for {
		code, ok := readSnippet(ln, s)
		if !ok {
			fmt.Println()
			break
		}
		if strings.TrimSpace(code) == "" {
			continue
		}
		ln.AppendHistory(strings.ReplaceAll(code, "\n", " "))

		if strings.HasPrefix(strings.TrimSpace(code), ":") {
			if s.command(code) {
				break
			}
			continue
		}
		if err := s.eval(code); err != nil {
			fmt.Println(err)
		}
	}

	if f, err := os.Create(histPath); err == nil {
		_, _ = ln.WriteHistory(f)
		_ = f.Close()
	}
	return nil
}
