package scope

import (
	"errors"
	"fmt"
)

var ErrSymbolAlreadyDefinedOnScope = errors.New("symbol already defined on scope")

// Scope is one frame of the chain. Frames are linked innermost-first through
// Parent; the global frame has a nil Parent.
type Scope[V any] struct {
	Parent *Scope[V]
	Nodes  map[string]V
}

func New[V any](parent *Scope[V]) *Scope[V] {
	return &Scope[V]{Parent: parent, Nodes: map[string]V{}}
}

func (scope *Scope[V]) IsGlobal() bool { return scope.Parent == nil }

func (scope *Scope[V]) Insert(name string, element V) error {
	if _, ok := scope.Nodes[name]; ok {
		return fmt.Errorf("%w: %s", ErrSymbolAlreadyDefinedOnScope, name)
	}
	scope.Nodes[name] = element
	return nil
}

// LookupLocal only looks at this frame.
func (scope *Scope[V]) LookupLocal(name string) (V, bool) {
	node, ok := scope.Nodes[name]
	return node, ok
}
