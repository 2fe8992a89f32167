package ast

import (
	"testing"

	"github.com/nalgeon/be"
	"github.com/penquin-lang/penquin/internal/lexer/token"
)

func id(name string) *token.Token {
	return token.New([]byte(name), token.ID, token.Pos{Filename: "test.pq", Line: 1, Column: 1})
}

func TestSprint(t *testing.T) {
	plus := token.New(nil, token.PLUS, token.Pos{})
	tests := []struct {
		node     Node
		expected string
	}{
		{&NumberLiteral{Token: id("1"), Value: 1}, "1"},
		{&StringLiteral{Token: id("s"), Value: "a\tb"}, `"a\tb"`},
		{&Return{}, "(return)"},
		{&Accessor{Left: &Variable{Name: id("io")}, Right: &Variable{Name: id("puts")}}, "io::puts"},
		{
			&BinaryOp{Op: plus, Left: &Variable{Name: id("a")}, Right: &NumberLiteral{Token: id("2"), Value: 2}},
			"(+ a 2)",
		},
		{
			&If{Cond: &Variable{Name: id("c")}, Then: &Block{}, Else: &Block{Statements: []Node{&Return{}}}},
			"(if c (block) (block (return)))",
		},
		{
			&FunctionDecl{
				Name:    id("f"),
				Params:  []*Param{{Name: id("xs"), Type: &Type{Name: id("s4")}, Rest: true}},
				RetType: &Type{Name: id("s1"), Pointer: true},
			},
			"(fn f (...xs: s4): *s1)",
		},
	}

	for _, test := range tests {
		t.Run(test.expected, func(t *testing.T) {
			be.Equal(t, Sprint(test.node), test.expected)
		})
	}
}

func TestRestIndex(t *testing.T) {
	fn := &FunctionDecl{Name: id("f")}
	be.Equal(t, fn.RestIndex(), -1)

	fn.Params = []*Param{
		{Name: id("a"), Type: &Type{Name: id("s4")}},
		{Name: id("b"), Type: &Type{Name: id("s4")}, Rest: true},
	}
	be.Equal(t, fn.RestIndex(), 1)
	be.True(t, !fn.HasBody())
}

func TestKinds(t *testing.T) {
	nodes := []Node{
		&Accessor{}, &ArrayLiteral{}, &Assignment{}, &Block{}, &Module{}, &FunctionDecl{},
		&Call{}, &If{}, &Import{}, &IndexAccess{}, &NumberLiteral{}, &BinaryOp{},
		&Return{}, &StringLiteral{}, &Variable{}, &While{},
	}
	seen := make(map[NodeKind]bool)
	for _, node := range nodes {
		seen[node.Kind()] = true
	}
	be.Equal(t, len(seen), 16)
	be.True(t, IsReturn(&Return{}))
	be.True(t, !IsReturn(&Block{}))
}
