package llvm

import (
	"math"

	"github.com/penquin-lang/penquin/internal/ast"
	"github.com/penquin-lang/penquin/internal/lexer/token"
	"tinygo.org/x/go-llvm"
)

// generateValue lowers expr and turns the result into a usable value.
func (c *llvmCodegen) generateValue(expr ast.Node) (llvm.Value, error) {
	result, err := c.generateNode(expr)
	if err != nil {
		return llvm.Value{}, err
	}
	return c.load(expr, result)
}

// load is the lvalue to rvalue step: storage is read through its pointer,
// everything else is already a value.
func (c *llvmCodegen) load(expr ast.Node, result LLVMValue) (llvm.Value, error) {
	switch v := result.(type) {
	case *Variable:
		return c.builder.CreateLoad(v.Ty, v.Ptr, ""), nil
	case *Immediate:
		if v.V.Type().TypeKind() == llvm.VoidTypeKind {
			return llvm.Value{}, c.typeError(expr.Pos(), "%s has no value", ast.Sprint(expr))
		}
		return v.V, nil
	case *Function:
		return v.Fn, nil
	default:
		return llvm.Value{}, c.typeError(expr.Pos(), "%s has no value", ast.Sprint(expr))
	}
}

func elemOf(result LLVMValue) llvm.Type {
	switch v := result.(type) {
	case *Variable:
		return v.Elem
	case *Immediate:
		return v.Elem
	}
	return llvm.Type{}
}

func (c *llvmCodegen) generateVariable(variable *ast.Variable) (LLVMValue, error) {
	value, _, ok := c.scope.Lookup(variable.Name.Name())
	if !ok {
		return nil, c.typeError(variable.Pos(), "undefined: %s", variable.Name.Name())
	}
	return value, nil
}

func (c *llvmCodegen) generateNumber(number *ast.NumberLiteral) LLVMValue {
	ty := c.context.Int32Type()
	if number.Value > math.MaxInt32 || number.Value < math.MinInt32 {
		ty = c.context.Int64Type()
	}
	return &Immediate{V: llvm.ConstInt(ty, uint64(number.Value), true)}
}

func (c *llvmCodegen) generateString(str *ast.StringLiteral) LLVMValue {
	data := []byte(str.Value)
	strlen := len(data) + 1
	i8 := c.context.Int8Type()
	arrTy := llvm.ArrayType(i8, strlen)
	arr := llvm.ConstArray(i8, c.llvmConstInt8s(data, strlen))

	globalVal := llvm.AddGlobal(c.module, arrTy, ".str")
	globalVal.SetInitializer(arr)
	globalVal.SetLinkage(llvm.PrivateLinkage)
	globalVal.SetGlobalConstant(true)
	globalVal.SetAlignment(1)
	globalVal.SetUnnamedAddr(true)

	zero := llvm.ConstInt(c.context.Int32Type(), 0, false)
	ptr := llvm.ConstInBoundsGEP(arrTy, globalVal, []llvm.Value{zero, zero})
	return &Immediate{V: ptr, Elem: i8}
}

func (c *llvmCodegen) llvmConstInt8s(data []byte, length int) []llvm.Value {
	out := make([]llvm.Value, length)
	for i, b := range data {
		out[i] = llvm.ConstInt(c.context.Int8Type(), uint64(b), false)
	}
	// c-string null terminated string
	out[length-1] = llvm.ConstInt(c.context.Int8Type(), 0, false)
	return out
}

func (c *llvmCodegen) generateBinaryOp(binary *ast.BinaryOp) (LLVMValue, error) {
	lhs, err := c.generateValue(binary.Left)
	if err != nil {
		return nil, err
	}
	rhs, err := c.generateValue(binary.Right)
	if err != nil {
		return nil, err
	}

	if !isInteger(lhs.Type()) || !isInteger(rhs.Type()) {
		return nil, c.typeError(
			binary.Pos(),
			"invalid operands for %s: %s and %s",
			binary.Op.Kind,
			typeName(lhs.Type()),
			typeName(rhs.Type()),
		)
	}
	// operands are widened to the larger of both widths
	if lhs.Type().IntTypeWidth() < rhs.Type().IntTypeWidth() {
		lhs, _ = c.convert(lhs, rhs.Type())
	} else {
		rhs, _ = c.convert(rhs, lhs.Type())
	}

	var value llvm.Value
	switch binary.Op.Kind {
	case token.PLUS:
		value = c.builder.CreateAdd(lhs, rhs, ".add")
	case token.MINUS:
		value = c.builder.CreateSub(lhs, rhs, ".sub")
	case token.STAR:
		value = c.builder.CreateMul(lhs, rhs, ".mul")
	case token.SLASH:
		value = c.builder.CreateSDiv(lhs, rhs, ".div")
	case token.PERCENT:
		value = c.builder.CreateSRem(lhs, rhs, ".rem")
	case token.EQUAL_EQUAL:
		value = c.builder.CreateICmp(llvm.IntEQ, lhs, rhs, ".cmpeq")
	case token.LESS:
		value = c.builder.CreateICmp(llvm.IntSLT, lhs, rhs, ".cmplt")
	case token.LESS_EQ:
		value = c.builder.CreateICmp(llvm.IntSLE, lhs, rhs, ".cmple")
	case token.GREATER:
		value = c.builder.CreateICmp(llvm.IntSGT, lhs, rhs, ".cmpgt")
	case token.GREATER_EQ:
		value = c.builder.CreateICmp(llvm.IntSGE, lhs, rhs, ".cmpge")
	default:
		return nil, c.typeError(binary.Pos(), "unsupported binary operator %s", binary.Op.Kind)
	}
	return &Immediate{V: value}, nil
}

// generateArrayLiteral builds an array of the first element's type. A list
// of constants becomes a constant array.
func (c *llvmCodegen) generateArrayLiteral(array *ast.ArrayLiteral) (LLVMValue, error) {
	if len(array.Items) == 0 {
		return nil, c.typeError(array.Pos(), "empty array literal")
	}

	values := make([]llvm.Value, len(array.Items))
	var elemTy llvm.Type
	constant := true
	for i, item := range array.Items {
		value, err := c.generateValue(item)
		if err != nil {
			return nil, err
		}
		if i == 0 {
			elemTy = value.Type()
		} else if converted, ok := c.convert(value, elemTy); ok {
			value = converted
		} else {
			return nil, c.typeError(item.Pos(), "array element of type %s, expected %s", typeName(value.Type()), typeName(elemTy))
		}
		values[i] = value
		constant = constant && value.IsConstant()
	}

	arrTy := llvm.ArrayType(elemTy, len(values))
	if constant {
		return &Immediate{V: llvm.ConstArray(elemTy, values), Elem: elemTy}, nil
	}

	aggregate := llvm.Undef(arrTy)
	for i, value := range values {
		aggregate = c.builder.CreateInsertValue(aggregate, value, i, "")
	}
	return &Immediate{V: aggregate, Elem: elemTy}, nil
}

// generateIndexAccess computes the address of base[index] and loads it.
// Array storage is indexed in place, scalar storage is offset from its own
// address, and pointer values are offset by their element type.
func (c *llvmCodegen) generateIndexAccess(index *ast.IndexAccess) (LLVMValue, error) {
	base, err := c.generateNode(index.Base)
	if err != nil {
		return nil, err
	}
	idx, err := c.generateValue(index.Index)
	if err != nil {
		return nil, err
	}
	if !isInteger(idx.Type()) {
		return nil, c.typeError(index.Index.Pos(), "index must be an integer, not %s", typeName(idx.Type()))
	}

	zero := llvm.ConstInt(c.context.Int32Type(), 0, false)
	var ptr llvm.Value
	var elemTy llvm.Type

	switch b := base.(type) {
	case *Variable:
		switch b.Ty.TypeKind() {
		case llvm.ArrayTypeKind:
			elemTy = b.Ty.ElementType()
			ptr = c.builder.CreateInBoundsGEP(b.Ty, b.Ptr, []llvm.Value{zero, idx}, ".idx")
		case llvm.PointerTypeKind:
			if !hasType(b.Elem) {
				return nil, c.typeError(index.Pos(), "cannot index %s: unknown element type", ast.Sprint(index.Base))
			}
			elemTy = b.Elem
			loaded := c.builder.CreateLoad(b.Ty, b.Ptr, "")
			ptr = c.builder.CreateGEP(elemTy, loaded, []llvm.Value{idx}, ".idx")
		default:
			elemTy = b.Ty
			ptr = c.builder.CreateGEP(b.Ty, b.Ptr, []llvm.Value{idx}, ".idx")
		}
	default:
		value, err := c.load(index.Base, base)
		if err != nil {
			return nil, err
		}
		switch value.Type().TypeKind() {
		case llvm.ArrayTypeKind:
			tmp := c.createAlloca(value.Type(), ".tmp")
			c.builder.CreateStore(value, tmp)
			elemTy = value.Type().ElementType()
			ptr = c.builder.CreateInBoundsGEP(value.Type(), tmp, []llvm.Value{zero, idx}, ".idx")
		case llvm.PointerTypeKind:
			elemTy = elemOf(base)
			if !hasType(elemTy) {
				return nil, c.typeError(index.Pos(), "cannot index %s: unknown element type", ast.Sprint(index.Base))
			}
			ptr = c.builder.CreateGEP(elemTy, value, []llvm.Value{idx}, ".idx")
		default:
			return nil, c.typeError(index.Pos(), "cannot index %s of type %s", ast.Sprint(index.Base), typeName(value.Type()))
		}
	}

	loaded := c.builder.CreateLoad(elemTy, ptr, "")
	var nested llvm.Type
	if elemTy.TypeKind() == llvm.ArrayTypeKind {
		nested = elemTy.ElementType()
	}
	return &Immediate{V: loaded, Elem: nested}, nil
}
