package llvm

import (
	"github.com/penquin-lang/penquin/internal/ast"
	"github.com/penquin-lang/penquin/internal/diagnostics"
	"tinygo.org/x/go-llvm"
)

// generateStmts lowers stmts in order and returns the value of the last one.
// Statements after a terminator are unreachable and are not lowered.
func (c *llvmCodegen) generateStmts(stmts []ast.Node) (LLVMValue, error) {
	var last LLVMValue
	for _, stmt := range stmts {
		if c.blockTerminated() {
			break
		}
		value, err := c.generateNode(stmt)
		if err != nil {
			return nil, err
		}
		last = value
	}
	return last, nil
}

func (c *llvmCodegen) generateNode(node ast.Node) (LLVMValue, error) {
	switch n := node.(type) {
	case *ast.Accessor:
		return c.generateAccessor(n)
	case *ast.ArrayLiteral:
		return c.generateArrayLiteral(n)
	case *ast.Assignment:
		return c.generateAssignment(n)
	case *ast.Block:
		return c.generateBlock(n)
	case *ast.Call:
		return c.generateCall(n)
	case *ast.If:
		return nil, c.generateIf(n)
	case *ast.Import:
		// registered with the declarations
		return nil, nil
	case *ast.IndexAccess:
		return c.generateIndexAccess(n)
	case *ast.NumberLiteral:
		return c.generateNumber(n), nil
	case *ast.BinaryOp:
		return c.generateBinaryOp(n)
	case *ast.Return:
		return nil, c.generateReturn(n)
	case *ast.StringLiteral:
		return c.generateString(n), nil
	case *ast.Variable:
		return c.generateVariable(n)
	case *ast.While:
		return nil, c.generateWhile(n)
	default:
		// modules and function declarations never appear inside a body
		return nil, c.collector.ReportAndSave(diagnostics.At(
			diagnostics.UNHANDLED_NODE,
			node.Pos(),
			"cannot generate %s here",
			node.Kind(),
		))
	}
}

func (c *llvmCodegen) generateBlock(block *ast.Block) (LLVMValue, error) {
	c.scope.Push()
	defer c.scope.Pop()
	return c.generateStmts(block.Statements)
}

// generateScoped lowers a statement in a fresh frame; a block already
// opens its own.
func (c *llvmCodegen) generateScoped(stmt ast.Node) error {
	if block, ok := stmt.(*ast.Block); ok {
		_, err := c.generateBlock(block)
		return err
	}
	c.scope.Push()
	defer c.scope.Pop()
	_, err := c.generateNode(stmt)
	return err
}

// generateCond lowers a condition and compares it against the zero value of
// its own type.
func (c *llvmCodegen) generateCond(cond ast.Node) (llvm.Value, error) {
	value, err := c.generateValue(cond)
	if err != nil {
		return llvm.Value{}, err
	}
	kind := value.Type().TypeKind()
	if kind != llvm.IntegerTypeKind && kind != llvm.PointerTypeKind {
		return llvm.Value{}, c.typeError(cond.Pos(), "cannot use %s as a condition", typeName(value.Type()))
	}
	zero := llvm.ConstNull(value.Type())
	return c.builder.CreateICmp(llvm.IntNE, value, zero, ".cond"), nil
}

func (c *llvmCodegen) generateIf(cond *ast.If) error {
	fn := c.fn.Fn

	condValue, err := c.generateCond(cond.Cond)
	if err != nil {
		return err
	}

	ifBlock := c.context.AddBasicBlock(fn, ".if")
	var elseBlock llvm.BasicBlock
	if cond.Else != nil {
		elseBlock = c.context.AddBasicBlock(fn, ".else")
	}
	endBlock := c.context.AddBasicBlock(fn, ".end")

	if cond.Else != nil {
		c.builder.CreateCondBr(condValue, ifBlock, elseBlock)
	} else {
		c.builder.CreateCondBr(condValue, ifBlock, endBlock)
	}

	c.builder.SetInsertPointAtEnd(ifBlock)
	if _, err := c.generateBlock(cond.Then); err != nil {
		return err
	}
	if !c.blockTerminated() {
		c.builder.CreateBr(endBlock)
	}

	if cond.Else != nil {
		c.builder.SetInsertPointAtEnd(elseBlock)
		if err := c.generateScoped(cond.Else); err != nil {
			return err
		}
		if !c.blockTerminated() {
			c.builder.CreateBr(endBlock)
		}
	}

	c.builder.SetInsertPointAtEnd(endBlock)
	return nil
}

func (c *llvmCodegen) generateWhile(loop *ast.While) error {
	fn := c.fn.Fn
	whileInitBlock := c.context.AddBasicBlock(fn, ".whileinit")
	whileBodyBlock := c.context.AddBasicBlock(fn, ".whilebody")
	endBlock := c.context.AddBasicBlock(fn, ".whileend")

	c.builder.CreateBr(whileInitBlock)
	c.builder.SetInsertPointAtEnd(whileInitBlock)
	condValue, err := c.generateCond(loop.Cond)
	if err != nil {
		return err
	}
	c.builder.CreateCondBr(condValue, whileBodyBlock, endBlock)

	c.builder.SetInsertPointAtEnd(whileBodyBlock)
	if _, err := c.generateBlock(loop.Body); err != nil {
		return err
	}
	if !c.blockTerminated() {
		c.builder.CreateBr(whileInitBlock)
	}

	c.builder.SetInsertPointAtEnd(endBlock)
	return nil
}

func (c *llvmCodegen) generateReturn(ret *ast.Return) error {
	if c.fn.Decl == nil {
		return c.typeError(ret.Pos(), "'return' outside of a function body")
	}
	fnDecl := c.fn.Decl

	if ret.Value == nil {
		if fnDecl.RetType != nil {
			return c.typeError(ret.Pos(), "'%s' must return a value of type %s", fnDecl.Name.Name(), fnDecl.RetType)
		}
		c.builder.CreateRetVoid()
		return nil
	}
	if fnDecl.RetType == nil {
		return c.typeError(ret.Pos(), "'%s' has no return type but returns a value", fnDecl.Name.Name())
	}

	value, err := c.generateValue(ret.Value)
	if err != nil {
		return err
	}
	returnType := c.fn.Ty.ReturnType()
	converted, ok := c.convert(value, returnType)
	if !ok {
		return c.typeError(
			ret.Value.Pos(),
			"cannot return %s from '%s', expected %s",
			typeName(value.Type()),
			fnDecl.Name.Name(),
			fnDecl.RetType,
		)
	}
	c.builder.CreateRet(converted)
	return nil
}

// generateAssignment stores into an existing binding or, when the name is
// not bound yet, creates storage in the current frame: a module global at
// the top level, a stack slot anywhere else.
func (c *llvmCodegen) generateAssignment(assign *ast.Assignment) (LLVMValue, error) {
	result, err := c.generateNode(assign.Value)
	if err != nil {
		return nil, err
	}
	value, err := c.load(assign.Value, result)
	if err != nil {
		return nil, err
	}
	elem := elemOf(result)
	name := assign.Name.Name()

	if existing, _, ok := c.scope.Lookup(name); ok {
		variable, isVariable := existing.(*Variable)
		if !isVariable {
			return nil, c.typeError(assign.Pos(), "cannot assign to function '%s'", name)
		}
		converted, ok := c.convert(value, variable.Ty)
		if !ok {
			return nil, c.typeError(
				assign.Pos(),
				"cannot assign %s to '%s' of type %s",
				typeName(value.Type()),
				name,
				typeName(variable.Ty),
			)
		}
		c.builder.CreateStore(converted, variable.Ptr)
		return &Immediate{V: converted, Elem: variable.Elem}, nil
	}

	var ptr llvm.Value
	if c.scope.Current.IsGlobal() {
		ptr = llvm.AddGlobal(c.module, value.Type(), c.scope.ResolveName(name, false))
		ptr.SetInitializer(llvm.ConstNull(value.Type()))
	} else {
		ptr = c.createAlloca(value.Type(), name)
	}
	c.builder.CreateStore(value, ptr)

	if _, err := c.scope.Define(name, NewVariableValue(value.Type(), elem, ptr)); err != nil {
		return nil, c.typeError(assign.Pos(), "%s", err)
	}
	return &Immediate{V: value, Elem: elem}, nil
}
