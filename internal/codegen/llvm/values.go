package llvm

import (
	"github.com/penquin-lang/penquin/internal/ast"
	"tinygo.org/x/go-llvm"
)

// LLVMValue is what the scope chain stores and what lowering an expression
// produces. Variables are addressable storage and must be loaded before use,
// immediates are ready values.
type LLVMValue interface {
	Value() string
}

type Function struct {
	Fn   llvm.Value
	Ty   llvm.Type
	Decl *ast.FunctionDecl
	Name string
}

func NewFunctionValue(fn llvm.Value, ty llvm.Type, decl *ast.FunctionDecl, name string) *Function {
	return &Function{Fn: fn, Ty: ty, Decl: decl, Name: name}
}

func (function Function) Value() string {
	return "Function"
}

// Variable is a stack slot or a module global. Elem is the pointee type
// when Ty is a pointer whose target is known.
type Variable struct {
	Ty   llvm.Type
	Elem llvm.Type
	Ptr  llvm.Value
}

func NewVariableValue(ty llvm.Type, elem llvm.Type, ptr llvm.Value) *Variable {
	return &Variable{Ty: ty, Elem: elem, Ptr: ptr}
}

func (variable Variable) Value() string {
	return "Variable"
}

type Immediate struct {
	V    llvm.Value
	Elem llvm.Type
}

func (immediate Immediate) Value() string {
	return "Immediate"
}

func hasType(ty llvm.Type) bool {
	return ty != (llvm.Type{})
}
