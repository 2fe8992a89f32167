package llvm

import (
	"github.com/penquin-lang/penquin/internal/ast"
	"github.com/penquin-lang/penquin/internal/modules"
	"github.com/penquin-lang/penquin/internal/scope"
)

// processImport binds the import alias for this unit and declares the
// signatures of the imported module's functions, qualified under the
// imported module's path. Bodies are never emitted here; they come from the
// imported module's own unit at link time.
func (c *llvmCodegen) processImport(imp *ast.Import) error {
	if c.resolver == nil {
		return c.typeError(imp.Pos(), "cannot import \"%s\": no module resolver", imp.Path.Name())
	}
	imported, err := c.resolver.Resolve(c.source, imp)
	if err != nil {
		return err
	}

	alias := modules.Alias(imp.Path.Name())
	if bound, ok := c.imports[alias]; ok && bound != imported {
		return c.typeError(imp.Pos(), "import alias '%s' already refers to '%s'", alias, bound.Path)
	}
	c.imports[alias] = imported

	for _, stmt := range imported.Statements {
		fnDecl, ok := stmt.(*ast.FunctionDecl)
		if !ok || fnDecl.External || fnDecl.Name.Name() == "main" {
			continue
		}
		key := scope.Qualify(imported.Path, fnDecl.Name.Name())
		if _, err := c.declareFunction(fnDecl, key); err != nil {
			return err
		}
	}
	return nil
}

// generateAccessor resolves alias::name among the module-level bindings of
// the imported module.
func (c *llvmCodegen) generateAccessor(accessor *ast.Accessor) (LLVMValue, error) {
	alias := accessor.Left.Name.Name()
	imported, ok := c.imports[alias]
	if !ok {
		return nil, c.typeError(accessor.Pos(), "unknown module '%s'", alias)
	}

	name := accessor.Right.Name.Name()
	var value LLVMValue
	err := c.scope.WithModulePath(imported.Path, func() error {
		found, key, ok := c.scope.LookupGlobal(name)
		// a raw key is only valid for externals the imported module declares
		if !ok || (key == name && !declaresExternal(imported, name)) {
			return c.typeError(accessor.Right.Pos(), "module '%s' has no function '%s'", alias, name)
		}
		value = found
		return nil
	})
	return value, err
}

func declaresExternal(module *ast.Module, name string) bool {
	for _, stmt := range module.Statements {
		if fnDecl, ok := stmt.(*ast.FunctionDecl); ok && fnDecl.External && fnDecl.Name.Name() == name {
			return true
		}
	}
	return false
}
