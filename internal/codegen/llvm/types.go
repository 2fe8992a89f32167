package llvm

import (
	"strconv"

	"github.com/penquin-lang/penquin/internal/ast"
	"github.com/penquin-lang/penquin/internal/diagnostics"
	"github.com/penquin-lang/penquin/internal/sema"
	"tinygo.org/x/go-llvm"
)

// getType maps a declared type to its LLVM type. A nil type is void.
func (c *llvmCodegen) getType(ty *ast.Type) (llvm.Type, error) {
	if ty == nil {
		return c.context.VoidType(), nil
	}
	if ty.Pointer {
		return c.getPtrType(), nil
	}
	return c.getBasicType(ty)
}

// getElemType returns the pointee of a pointer type, or the zero type.
func (c *llvmCodegen) getElemType(ty *ast.Type) (llvm.Type, error) {
	if ty == nil || !ty.Pointer {
		return llvm.Type{}, nil
	}
	return c.getBasicType(ty)
}

func (c *llvmCodegen) getBasicType(ty *ast.Type) (llvm.Type, error) {
	bits, ok := sema.KNOWN_TYPES[ty.Name.Name()]
	if !ok {
		return llvm.Type{}, c.collector.ReportAndSave(diagnostics.At(
			diagnostics.TYPE,
			ty.Name.Pos,
			"unknown type '%s'",
			ty.Name.Name(),
		))
	}
	return c.context.IntType(bits), nil
}

func (c *llvmCodegen) getPtrType() llvm.Type {
	return llvm.PointerType(c.context.Int8Type(), 0)
}

// getParamType is the type a parameter has in the function signature. Rest
// parameters are passed as a pointer to their elements.
func (c *llvmCodegen) getParamType(param *ast.Param) (llvm.Type, llvm.Type, error) {
	if param.Rest {
		elem, err := c.getType(param.Type)
		if err != nil {
			return llvm.Type{}, llvm.Type{}, err
		}
		return c.getPtrType(), elem, nil
	}
	ty, err := c.getType(param.Type)
	if err != nil {
		return llvm.Type{}, llvm.Type{}, err
	}
	elem, err := c.getElemType(param.Type)
	if err != nil {
		return llvm.Type{}, llvm.Type{}, err
	}
	return ty, elem, nil
}

func isInteger(ty llvm.Type) bool {
	return ty.TypeKind() == llvm.IntegerTypeKind
}

// convert adapts an integer value to another integer width. It reports
// false when v cannot be turned into a value of type to.
func (c *llvmCodegen) convert(v llvm.Value, to llvm.Type) (llvm.Value, bool) {
	from := v.Type()
	if from == to {
		return v, true
	}
	if !isInteger(from) || !isInteger(to) {
		return v, false
	}

	fromBits, toBits := from.IntTypeWidth(), to.IntTypeWidth()
	switch {
	case fromBits > toBits:
		return c.builder.CreateTrunc(v, to, ""), true
	case fromBits == 1:
		return c.builder.CreateZExt(v, to, ""), true
	default:
		return c.builder.CreateSExt(v, to, ""), true
	}
}

// promote applies the C default argument promotions to a variadic argument.
func (c *llvmCodegen) promote(v llvm.Value) llvm.Value {
	if isInteger(v.Type()) && v.Type().IntTypeWidth() < 32 {
		promoted, _ := c.convert(v, c.context.Int32Type())
		return promoted
	}
	return v
}

func typeName(ty llvm.Type) string {
	switch ty.TypeKind() {
	case llvm.IntegerTypeKind:
		if ty.IntTypeWidth() == 1 {
			return "bool"
		}
		return "s" + strconv.Itoa(ty.IntTypeWidth()/8)
	case llvm.PointerTypeKind:
		return "pointer"
	case llvm.ArrayTypeKind:
		return "array of " + typeName(ty.ElementType())
	case llvm.VoidTypeKind:
		return "void"
	default:
		return ty.String()
	}
}
