package llvm

import (
	"github.com/penquin-lang/penquin/internal/ast"
	"tinygo.org/x/go-llvm"
)

func (c *llvmCodegen) generateCall(call *ast.Call) (LLVMValue, error) {
	callee, err := c.generateNode(call.Callee)
	if err != nil {
		return nil, err
	}
	fn, ok := callee.(*Function)
	if !ok {
		return nil, c.typeError(call.Pos(), "%s is not a function", ast.Sprint(call.Callee))
	}

	fnDecl := fn.Decl
	if decl, found := c.scope.Definition(fn.Name); found {
		fnDecl = decl
	}

	args, err := c.generateArgs(call, fn, fnDecl)
	if err != nil {
		return nil, err
	}

	value := c.builder.CreateCall(fn.Ty, fn.Fn, args, "")
	var elem llvm.Type
	if fnDecl.RetType != nil && fnDecl.RetType.Pointer {
		elem, err = c.getElemType(fnDecl.RetType)
		if err != nil {
			return nil, err
		}
	}
	return &Immediate{V: value, Elem: elem}, nil
}

// generateArgs evaluates the call-site arguments in source order. Arguments
// before a rest parameter are passed positionally; the ones from the rest
// position on are packed into a stack array whose address is passed instead.
func (c *llvmCodegen) generateArgs(call *ast.Call, fn *Function, fnDecl *ast.FunctionDecl) ([]llvm.Value, error) {
	name := fnDecl.Name.Name()
	paramsTypes := fn.Ty.ParamTypes()
	rest := fnDecl.RestIndex()

	positional := len(fnDecl.Params)
	if rest >= 0 {
		positional = rest
	}

	switch {
	case len(call.Args) < positional:
		return nil, c.typeError(call.Pos(), "not enough arguments in call to '%s': have %d, want %d", name, len(call.Args), positional)
	case rest < 0 && !fnDecl.Vararg && len(call.Args) > positional:
		return nil, c.typeError(call.Pos(), "too many arguments in call to '%s': have %d, want %d", name, len(call.Args), positional)
	}

	args := make([]llvm.Value, 0, len(call.Args))
	for i := 0; i < positional; i++ {
		value, err := c.generateValue(call.Args[i])
		if err != nil {
			return nil, err
		}
		converted, ok := c.convert(value, paramsTypes[i])
		if !ok {
			return nil, c.typeError(
				call.Args[i].Pos(),
				"cannot use %s as argument '%s' of '%s'",
				typeName(value.Type()),
				fnDecl.Params[i].Name.Name(),
				name,
			)
		}
		args = append(args, converted)
	}

	if rest >= 0 {
		packed, err := c.packRest(call.Args[rest:], fnDecl.Params[rest])
		if err != nil {
			return nil, err
		}
		return append(args, packed), nil
	}

	for _, arg := range call.Args[positional:] {
		value, err := c.generateValue(arg)
		if err != nil {
			return nil, err
		}
		args = append(args, c.promote(value))
	}
	return args, nil
}

// packRest stores trailing into contiguous stack storage, element j at
// offset j, and returns its address. With no trailing arguments the callee
// gets a null pointer.
func (c *llvmCodegen) packRest(trailing []ast.Node, param *ast.Param) (llvm.Value, error) {
	if len(trailing) == 0 {
		return llvm.ConstPointerNull(c.getPtrType()), nil
	}

	elemTy, err := c.getType(param.Type)
	if err != nil {
		return llvm.Value{}, err
	}

	values := make([]llvm.Value, len(trailing))
	for j, arg := range trailing {
		value, err := c.generateValue(arg)
		if err != nil {
			return llvm.Value{}, err
		}
		converted, ok := c.convert(value, elemTy)
		if !ok {
			return llvm.Value{}, c.typeError(
				arg.Pos(),
				"cannot use %s as element of rest parameter '%s'",
				typeName(value.Type()),
				param.Name.Name(),
			)
		}
		values[j] = converted
	}

	arrTy := llvm.ArrayType(elemTy, len(values))
	storage := c.createAlloca(arrTy, ".rest")
	zero := llvm.ConstInt(c.context.Int32Type(), 0, false)
	for j, value := range values {
		offset := llvm.ConstInt(c.context.Int32Type(), uint64(j), false)
		slot := c.builder.CreateInBoundsGEP(arrTy, storage, []llvm.Value{zero, offset}, "")
		c.builder.CreateStore(value, slot)
	}
	return storage, nil
}
