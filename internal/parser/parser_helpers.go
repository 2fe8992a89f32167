package parser

import (
	"io"

	"github.com/penquin-lang/penquin/internal/ast"
	"github.com/penquin-lang/penquin/internal/diagnostics"
	"github.com/penquin-lang/penquin/internal/lexer"
	"github.com/penquin-lang/penquin/internal/lexer/token"
)

const defaultFilename = "test.pq"

func newForTest(src string) (*Parser, error) {
	collector := diagnostics.NewWithWriter(io.Discard)
	tokens, err := lexer.New(defaultFilename, []byte(src), collector).Tokenize()
	if err != nil {
		return nil, err
	}
	return New(tokens, collector), nil
}

// Useful for testing
func ParseExprFrom(expr string) (ast.Node, error) {
	p, err := newForTest(expr)
	if err != nil {
		return nil, err
	}
	node, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if tok := p.cursor.peek(); tok.Kind != token.EOF {
		return nil, p.syntaxError(tok.Pos, "unexpected %s after expression", tok.Kind)
	}
	return node, nil
}

// Useful for testing. The statement is parsed as if it were inside a
// function body.
func ParseStmtFrom(stmt string) (ast.Node, error) {
	p, err := newForTest(stmt)
	if err != nil {
		return nil, err
	}
	p.inFunction = true
	return p.parseStmt()
}

// Useful for testing
func ParseModuleFrom(path, src string) (*ast.Module, error) {
	p, err := newForTest(src)
	if err != nil {
		return nil, err
	}
	return p.ParseModule(path, defaultFilename)
}
