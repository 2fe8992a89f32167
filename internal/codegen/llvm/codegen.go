package llvm

import (
	"github.com/penquin-lang/penquin/internal/ast"
	"github.com/penquin-lang/penquin/internal/diagnostics"
	"github.com/penquin-lang/penquin/internal/lexer/token"
	"github.com/penquin-lang/penquin/internal/modules"
	"github.com/penquin-lang/penquin/internal/scope"
	"tinygo.org/x/go-llvm"
)

// ModuleResolver finds (loading it if needed) the module an import refers
// to.
type ModuleResolver interface {
	Resolve(importer *ast.Module, imp *ast.Import) (*ast.Module, error)
}

// Unit is the generated translation unit of one module. It owns its LLVM
// context, so units of different modules can be built concurrently.
type Unit struct {
	Name    string
	Path    string
	Context llvm.Context
	Module  llvm.Module
}

func (unit *Unit) IR() string { return unit.Module.String() }

func (unit *Unit) Dispose() {
	unit.Module.Dispose()
	unit.Context.Dispose()
}

const initName = "init"

type llvmCodegen struct {
	context llvm.Context
	module  llvm.Module
	builder llvm.Builder

	collector *diagnostics.Collector
	resolver  ModuleResolver

	source  *ast.Module
	scope   *scope.Chain[LLVMValue]
	imports map[string]*ast.Module
	defined map[*ast.FunctionDecl]*Function

	fn *Function
}

func NewCG(source *ast.Module, resolver ModuleResolver, collector *diagnostics.Collector) *llvmCodegen {
	context := llvm.NewContext()
	module := context.NewModule(source.Path)
	builder := context.NewBuilder()

	return &llvmCodegen{
		context:   context,
		module:    module,
		builder:   builder,
		collector: collector,
		resolver:  resolver,
		source:    source,
		scope:     scope.NewChain[LLVMValue](source.Path),
		imports:   make(map[string]*ast.Module),
		defined:   make(map[*ast.FunctionDecl]*Function),
	}
}

// Generate lowers one module into its own unit. Only the module's own
// function bodies are emitted; imported functions become declarations.
func Generate(source *ast.Module, resolver ModuleResolver, collector *diagnostics.Collector) (*Unit, error) {
	c := NewCG(source, resolver, collector)

	err := c.generate()
	if err == nil {
		if verifyErr := llvm.VerifyModule(c.module, llvm.ReturnStatusAction); verifyErr != nil {
			err = c.collector.ReportAndSave(diagnostics.Newf(
				diagnostics.BACKEND,
				"invalid module '%s': %s",
				source.Path,
				verifyErr,
			))
		}
	}
	c.builder.Dispose()

	unit := &Unit{
		Name:    modules.UnitName(source.Path),
		Path:    source.Path,
		Context: c.context,
		Module:  c.module,
	}
	if err != nil {
		unit.Dispose()
		return nil, err
	}
	return unit, nil
}

func (c *llvmCodegen) generate() error {
	if err := c.generateDeclarations(); err != nil {
		return err
	}
	if err := c.generateInit(); err != nil {
		return err
	}
	return c.generateBodies()
}

// generateDeclarations registers imports and every function signature of the
// module before any body is lowered, so declaration order does not matter.
func (c *llvmCodegen) generateDeclarations() error {
	for _, stmt := range c.source.Statements {
		switch n := stmt.(type) {
		case *ast.Import:
			if err := c.processImport(n); err != nil {
				return err
			}
		case *ast.FunctionDecl:
			key := c.scope.ResolveName(n.Name.Name(), n.External)
			fn, err := c.declareFunction(n, key)
			if err != nil {
				return err
			}
			c.defined[n] = fn
		}
	}
	return nil
}

func (c *llvmCodegen) generateBodies() error {
	for _, stmt := range c.source.Statements {
		fnDecl, ok := stmt.(*ast.FunctionDecl)
		if !ok || !fnDecl.HasBody() {
			continue
		}
		if err := c.generateFnBody(fnDecl); err != nil {
			return err
		}
	}
	return nil
}

// declareFunction adds the signature of fnDecl to the unit under key and
// binds it in the global frame. Declaring the same node twice is a no-op.
func (c *llvmCodegen) declareFunction(fnDecl *ast.FunctionDecl, key string) (*Function, error) {
	if existing, _, ok := c.scope.LookupRaw(key); ok {
		if decl, _ := c.scope.Definition(key); decl == fnDecl {
			return existing.(*Function), nil
		}
		return nil, c.typeError(fnDecl.Name.Pos, "'%s' already declared", fnDecl.Name.Name())
	}

	returnType, err := c.getType(fnDecl.RetType)
	if err != nil {
		return nil, err
	}
	paramsTypes := make([]llvm.Type, len(fnDecl.Params))
	for i, param := range fnDecl.Params {
		paramsTypes[i], _, err = c.getParamType(param)
		if err != nil {
			return nil, err
		}
	}

	functionType := llvm.FunctionType(returnType, paramsTypes, fnDecl.Vararg)
	functionValue := c.module.NamedFunction(key)
	if functionValue.IsNil() {
		functionValue = llvm.AddFunction(c.module, key, functionType)
	}

	fn := NewFunctionValue(functionValue, functionType, fnDecl, key)
	if err := c.scope.DefineFunction(key, fn, fnDecl); err != nil {
		return nil, c.typeError(fnDecl.Name.Pos, "%s", err)
	}
	return fn, nil
}

func (c *llvmCodegen) generateFnBody(fnDecl *ast.FunctionDecl) error {
	fn := c.defined[fnDecl]
	c.fn = fn
	defer func() { c.fn = nil }()

	entry := c.context.AddBasicBlock(fn.Fn, "entry")
	c.builder.SetInsertPointAtEnd(entry)

	c.scope.Push()
	defer c.scope.Pop()

	if err := c.generateFnParams(fn); err != nil {
		return err
	}
	if _, err := c.generateStmts(fnDecl.Body.Statements); err != nil {
		return err
	}

	if !c.blockTerminated() {
		if fnDecl.RetType == nil {
			c.builder.CreateRetVoid()
		} else {
			c.builder.CreateUnreachable()
		}
	}
	return nil
}

func (c *llvmCodegen) generateFnParams(fn *Function) error {
	paramsTypes := fn.Ty.ParamTypes()
	for i, paramValue := range fn.Fn.Params() {
		param := fn.Decl.Params[i]
		name := param.Name.Name()

		_, elem, err := c.getParamType(param)
		if err != nil {
			return err
		}
		ptr := c.builder.CreateAlloca(paramsTypes[i], name)
		c.builder.CreateStore(paramValue, ptr)

		if _, err := c.scope.Define(name, NewVariableValue(paramsTypes[i], elem, ptr)); err != nil {
			return c.typeError(param.Name.Pos, "parameter '%s' declared twice", name)
		}
	}
	return nil
}

// generateInit lowers the top-level statements of the module into an
// initializer that runs before main.
func (c *llvmCodegen) generateInit() error {
	var stmts []ast.Node
	for _, stmt := range c.source.Statements {
		switch stmt.(type) {
		case *ast.Import, *ast.FunctionDecl:
			continue
		}
		stmts = append(stmts, stmt)
	}
	if len(stmts) == 0 {
		return nil
	}

	key := c.scope.ResolveName(initName, false)
	if _, _, ok := c.scope.LookupRaw(key); ok {
		return c.typeError(stmts[0].Pos(), "'%s' is reserved for the initializer of modules with top-level statements", initName)
	}

	fnTy := llvm.FunctionType(c.context.VoidType(), nil, false)
	fnValue := llvm.AddFunction(c.module, key, fnTy)
	fnValue.SetLinkage(llvm.InternalLinkage)
	c.fn = NewFunctionValue(fnValue, fnTy, nil, key)
	defer func() { c.fn = nil }()

	entry := c.context.AddBasicBlock(fnValue, "entry")
	c.builder.SetInsertPointAtEnd(entry)

	if _, err := c.generateStmts(stmts); err != nil {
		return err
	}
	if !c.blockTerminated() {
		c.builder.CreateRetVoid()
	}

	c.registerConstructor(fnValue)
	return nil
}

// registerConstructor appends fn to llvm.global_ctors.
func (c *llvmCodegen) registerConstructor(fn llvm.Value) {
	i32 := c.context.Int32Type()
	ptr := c.getPtrType()
	entryTy := c.context.StructType([]llvm.Type{i32, ptr, ptr}, false)

	entry := c.context.ConstStruct([]llvm.Value{
		llvm.ConstInt(i32, 65535, false),
		fn,
		llvm.ConstPointerNull(ptr),
	}, false)
	ctors := llvm.ConstArray(entryTy, []llvm.Value{entry})

	global := llvm.AddGlobal(c.module, ctors.Type(), "llvm.global_ctors")
	global.SetLinkage(llvm.AppendingLinkage)
	global.SetInitializer(ctors)
}

func (c *llvmCodegen) blockTerminated() bool {
	last := c.builder.GetInsertBlock().LastInstruction()
	if last.IsNil() {
		return false
	}
	switch last.InstructionOpcode() {
	case llvm.Ret, llvm.Br, llvm.Switch, llvm.IndirectBr, llvm.Invoke, llvm.Unreachable:
		return true
	}
	return false
}

// createAlloca places a stack slot in the entry block of the current
// function so slots created inside loops are allocated once.
func (c *llvmCodegen) createAlloca(ty llvm.Type, name string) llvm.Value {
	current := c.builder.GetInsertBlock()
	entry := c.fn.Fn.EntryBasicBlock()

	if first := entry.FirstInstruction(); first.IsNil() {
		c.builder.SetInsertPointAtEnd(entry)
	} else {
		c.builder.SetInsertPointBefore(first)
	}
	ptr := c.builder.CreateAlloca(ty, name)
	c.builder.SetInsertPointAtEnd(current)
	return ptr
}

func (c *llvmCodegen) typeError(pos token.Pos, format string, args ...any) error {
	return c.collector.ReportAndSave(diagnostics.At(diagnostics.TYPE, pos, format, args...))
}
