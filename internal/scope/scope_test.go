package scope

import (
	"errors"
	"testing"

	"github.com/nalgeon/be"
	"github.com/penquin-lang/penquin/internal/ast"
)

func TestScopeInsertAndLookupLocal(t *testing.T) {
	global := New[int](nil)
	be.Err(t, global.Insert("a", 1), nil)

	err := global.Insert("a", 2)
	be.True(t, errors.Is(err, ErrSymbolAlreadyDefinedOnScope))

	inner := New(global)
	be.True(t, !inner.IsGlobal())
	be.Err(t, inner.Insert("a", 3), nil)

	value, ok := inner.LookupLocal("a")
	be.True(t, ok)
	be.Equal(t, value, 3)

	value, ok = global.LookupLocal("a")
	be.True(t, ok)
	be.Equal(t, value, 1)

	_, ok = inner.LookupLocal("missing")
	be.True(t, !ok)
}

func TestResolveName(t *testing.T) {
	chain := NewChain[int]("lib/math")

	tests := []struct {
		name     string
		external bool
		expected string
	}{
		{"add", false, "lib/math@add"},
		{"add", true, "add"},
		{"main", false, "main"},
		{"main", true, "main"},
	}
	for _, test := range tests {
		be.Equal(t, chain.ResolveName(test.name, test.external), test.expected)
	}
}

func TestQualifiedNamesDifferPerModule(t *testing.T) {
	a := NewChain[int]("a")
	b := NewChain[int]("b")
	be.True(t, a.ResolveName("f", false) != b.ResolveName("f", false))
}

func TestDefineQualifiesOnlyGlobals(t *testing.T) {
	chain := NewChain[int]("m")

	key, err := chain.Define("x", 1)
	be.Err(t, err, nil)
	be.Equal(t, key, "m@x")

	chain.Push()
	key, err = chain.Define("x", 2)
	be.Err(t, err, nil)
	be.Equal(t, key, "x")

	value, key, ok := chain.Lookup("x")
	be.True(t, ok)
	be.Equal(t, value, 2)
	be.Equal(t, key, "x")

	chain.Pop()
	value, key, ok = chain.Lookup("x")
	be.True(t, ok)
	be.Equal(t, value, 1)
	be.Equal(t, key, "m@x")
}

func TestLookupShadowing(t *testing.T) {
	chain := NewChain[int]("m")
	chain.Push()
	_, err := chain.Define("v", 1)
	be.Err(t, err, nil)

	chain.Push()
	_, err = chain.Define("v", 2)
	be.Err(t, err, nil)

	value, _, _ := chain.Lookup("v")
	be.Equal(t, value, 2)

	chain.Pop()
	value, _, _ = chain.Lookup("v")
	be.Equal(t, value, 1)

	chain.Pop()
	_, _, ok := chain.Lookup("v")
	be.True(t, !ok)
}

func TestLookupRawFallback(t *testing.T) {
	chain := NewChain[int]("m")
	decl := &ast.FunctionDecl{External: true}
	be.Err(t, chain.DefineFunction("printf", 7, decl), nil)

	chain.Push()
	value, key, ok := chain.Lookup("printf")
	be.True(t, ok)
	be.Equal(t, value, 7)
	be.Equal(t, key, "printf")

	found, ok := chain.Definition(key)
	be.True(t, ok)
	be.True(t, found == decl)
}

func TestWithModulePath(t *testing.T) {
	chain := NewChain[int]("main")
	be.Err(t, chain.DefineFunction("math@add", 1, &ast.FunctionDecl{}), nil)

	_, _, ok := chain.LookupGlobal("add")
	be.True(t, !ok)

	err := chain.WithModulePath("math", func() error {
		value, key, ok := chain.LookupGlobal("add")
		be.True(t, ok)
		be.Equal(t, value, 1)
		be.Equal(t, key, "math@add")
		return nil
	})
	be.Err(t, err, nil)
	be.Equal(t, chain.ModulePath(), "main")
}

func TestPopNeverLeavesGlobal(t *testing.T) {
	chain := NewChain[int]("m")
	chain.Pop()
	be.True(t, chain.Current == chain.Global)
}
