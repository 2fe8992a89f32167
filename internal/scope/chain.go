package scope

import (
	"github.com/penquin-lang/penquin/internal/ast"
)

// Separator joins a module path and a raw name into a qualified name.
const Separator = "@"

func Qualify(modulePath, name string) string {
	return modulePath + Separator + name
}

// Chain is the per-module symbol state used while generating code: the
// frame stack, the definitions table of the global frame and the module
// path that top-level names are qualified with.
type Chain[V any] struct {
	Global      *Scope[V]
	Current     *Scope[V]
	Definitions map[string]*ast.FunctionDecl

	modulePath string
}

func NewChain[V any](modulePath string) *Chain[V] {
	global := New[V](nil)
	return &Chain[V]{
		Global:      global,
		Current:     global,
		Definitions: map[string]*ast.FunctionDecl{},
		modulePath:  modulePath,
	}
}

func (chain *Chain[V]) ModulePath() string { return chain.modulePath }

func (chain *Chain[V]) Push() {
	chain.Current = New(chain.Current)
}

func (chain *Chain[V]) Pop() {
	if chain.Current.Parent != nil {
		chain.Current = chain.Current.Parent
	}
}

// ResolveName returns the name a binding is stored under. Names in an
// external context and main stay raw; everything else is qualified with the
// current module path.
func (chain *Chain[V]) ResolveName(name string, external bool) string {
	if external || name == "main" {
		return name
	}
	return Qualify(chain.modulePath, name)
}

// Lookup walks the chain innermost to outermost. The global frame is
// searched by qualified name, other frames by raw name. If nothing matches,
// the raw name is tried once more in the global frame. The key the handle
// was found under is returned with it.
func (chain *Chain[V]) Lookup(name string) (V, string, bool) {
	for frame := chain.Current; frame != nil; frame = frame.Parent {
		key := name
		if frame.IsGlobal() {
			key = chain.ResolveName(name, false)
		}
		if node, ok := frame.LookupLocal(key); ok {
			return node, key, true
		}
	}
	return chain.LookupRaw(name)
}

// LookupGlobal only considers module-level bindings: the qualified name
// first, then the raw one.
func (chain *Chain[V]) LookupGlobal(name string) (V, string, bool) {
	key := chain.ResolveName(name, false)
	if node, ok := chain.Global.LookupLocal(key); ok {
		return node, key, true
	}
	return chain.LookupRaw(name)
}

func (chain *Chain[V]) LookupRaw(name string) (V, string, bool) {
	node, ok := chain.Global.LookupLocal(name)
	return node, name, ok
}

// Define binds name in the current frame and returns the key used. Local
// frames never qualify.
func (chain *Chain[V]) Define(name string, value V) (string, error) {
	key := chain.ResolveName(name, !chain.Current.IsGlobal())
	return key, chain.Current.Insert(key, value)
}

// DefineFunction registers a function handle and its declaration in the
// global frame under key.
func (chain *Chain[V]) DefineFunction(key string, value V, decl *ast.FunctionDecl) error {
	if err := chain.Global.Insert(key, value); err != nil {
		return err
	}
	chain.Definitions[key] = decl
	return nil
}

func (chain *Chain[V]) Definition(key string) (*ast.FunctionDecl, bool) {
	decl, ok := chain.Definitions[key]
	return decl, ok
}

// WithModulePath runs fn with name resolution switched to modulePath and
// restores the previous path afterwards.
func (chain *Chain[V]) WithModulePath(modulePath string, fn func() error) error {
	previous := chain.modulePath
	chain.modulePath = modulePath
	defer func() { chain.modulePath = previous }()
	return fn()
}
