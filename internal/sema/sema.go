// Package sema is the checking pass between parsing and code generation. It
// only enforces what can be decided without type inference, and records the
// result types of literals and operators it can see.
package sema

import (
	"fmt"

	"github.com/penquin-lang/penquin/internal/ast"
	"github.com/penquin-lang/penquin/internal/diagnostics"
	"github.com/penquin-lang/penquin/internal/lexer/token"
)

const (
	TYPE_BOOL   = "bool"
	TYPE_NUMBER = "s4"
	TYPE_STRING = "*s1"
)

var KNOWN_TYPES = map[string]int{
	"s1": 8,
	"s2": 16,
	"s4": 32,
	"s8": 64,
}

func IsKnownType(name string) bool {
	_, ok := KNOWN_TYPES[name]
	return ok
}

type sema struct {
	collector *diagnostics.Collector
	types     map[ast.Node]string

	currentFn *ast.FunctionDecl
}

func New(collector *diagnostics.Collector) *sema {
	return &sema{collector: collector, types: make(map[ast.Node]string)}
}

// TypeOf returns the type recorded for node during Check.
func (s *sema) TypeOf(node ast.Node) (string, bool) {
	ty, ok := s.types[node]
	return ty, ok
}

func (s *sema) typeError(pos token.Pos, format string, args ...any) error {
	return s.collector.ReportAndSave(diagnostics.At(diagnostics.TYPE, pos, format, args...))
}

func (s *sema) Check(module *ast.Module) error {
	defined := make(map[string]*ast.FunctionDecl)

	for _, stmt := range module.Statements {
		fnDecl, ok := stmt.(*ast.FunctionDecl)
		if !ok {
			continue
		}
		key := fnDecl.Name.Name()
		if fnDecl.External {
			key = "extern " + key
		}
		if previous, found := defined[key]; found {
			return s.typeError(
				fnDecl.Name.Pos,
				"function '%s' already declared at %s",
				fnDecl.Name.Name(),
				previous.Name.Pos,
			)
		}
		defined[key] = fnDecl
	}

	for _, stmt := range module.Statements {
		if err := s.checkStmt(stmt); err != nil {
			return err
		}
	}
	return nil
}

func (s *sema) checkFnDecl(fnDecl *ast.FunctionDecl) error {
	if s.currentFn != nil {
		return s.typeError(fnDecl.Pos(), "function '%s' declared inside '%s'", fnDecl.Name.Name(), s.currentFn.Name.Name())
	}

	names := make(map[string]bool, len(fnDecl.Params))
	for i, param := range fnDecl.Params {
		if names[param.Name.Name()] {
			return s.typeError(param.Name.Pos, "parameter '%s' declared twice in '%s'", param.Name.Name(), fnDecl.Name.Name())
		}
		names[param.Name.Name()] = true

		if err := s.checkType(param.Type); err != nil {
			return err
		}
		if param.Rest && i != len(fnDecl.Params)-1 {
			return s.typeError(param.Name.Pos, "rest parameter '%s' must be the last parameter", param.Name.Name())
		}
		if param.Rest && fnDecl.Vararg {
			return s.typeError(param.Name.Pos, "'%s' cannot have both a rest parameter and '...'", fnDecl.Name.Name())
		}
	}
	if fnDecl.RetType != nil {
		if err := s.checkType(fnDecl.RetType); err != nil {
			return err
		}
	}

	if !fnDecl.HasBody() {
		if !fnDecl.External {
			return s.typeError(fnDecl.Pos(), "function '%s' has no body", fnDecl.Name.Name())
		}
		return nil
	}

	s.currentFn = fnDecl
	defer func() { s.currentFn = nil }()
	return s.checkStmts(fnDecl.Body.Statements)
}

func (s *sema) checkType(ty *ast.Type) error {
	if !IsKnownType(ty.Name.Name()) {
		return s.typeError(ty.Name.Pos, "unknown type '%s'", ty.Name.Name())
	}
	return nil
}

func (s *sema) checkStmts(stmts []ast.Node) error {
	for _, stmt := range stmts {
		if err := s.checkStmt(stmt); err != nil {
			return err
		}
	}
	return nil
}

func (s *sema) checkStmt(stmt ast.Node) error {
	switch n := stmt.(type) {
	case *ast.FunctionDecl:
		return s.checkFnDecl(n)
	case *ast.Import:
		return nil
	case *ast.Return:
		return s.checkReturn(n)
	case *ast.Block:
		return s.checkStmts(n.Statements)
	case *ast.If:
		if _, err := s.checkExpr(n.Cond); err != nil {
			return err
		}
		if err := s.checkStmts(n.Then.Statements); err != nil {
			return err
		}
		if n.Else != nil {
			return s.checkStmt(n.Else)
		}
		return nil
	case *ast.While:
		if _, err := s.checkExpr(n.Cond); err != nil {
			return err
		}
		return s.checkStmts(n.Body.Statements)
	default:
		_, err := s.checkExpr(stmt)
		return err
	}
}

func (s *sema) checkReturn(ret *ast.Return) error {
	if s.currentFn == nil {
		return s.typeError(ret.Pos(), "'return' outside of a function body")
	}
	name := s.currentFn.Name.Name()
	if ret.Value == nil {
		if s.currentFn.RetType != nil {
			return s.typeError(ret.Pos(), "'%s' must return a value of type %s", name, s.currentFn.RetType)
		}
		return nil
	}
	if s.currentFn.RetType == nil {
		return s.typeError(ret.Pos(), "'%s' has no return type but returns a value", name)
	}
	_, err := s.checkExpr(ret.Value)
	return err
}

// checkExpr walks an expression and returns the type it could determine, or
// "" when the type depends on something only known during code generation.
func (s *sema) checkExpr(expr ast.Node) (string, error) {
	var ty string

	switch n := expr.(type) {
	case *ast.NumberLiteral:
		ty = TYPE_NUMBER
	case *ast.StringLiteral:
		ty = TYPE_STRING
	case *ast.Variable, *ast.Accessor:
	case *ast.Assignment:
		valueTy, err := s.checkExpr(n.Value)
		if err != nil {
			return "", err
		}
		ty = valueTy
	case *ast.BinaryOp:
		left, err := s.checkExpr(n.Left)
		if err != nil {
			return "", err
		}
		if _, err := s.checkExpr(n.Right); err != nil {
			return "", err
		}
		if n.Op.Kind.IsComparison() {
			ty = TYPE_BOOL
		} else {
			ty = left
		}
	case *ast.Call:
		if _, err := s.checkExpr(n.Callee); err != nil {
			return "", err
		}
		for _, arg := range n.Args {
			if _, err := s.checkExpr(arg); err != nil {
				return "", err
			}
		}
	case *ast.IndexAccess:
		if _, err := s.checkExpr(n.Base); err != nil {
			return "", err
		}
		if _, err := s.checkExpr(n.Index); err != nil {
			return "", err
		}
	case *ast.ArrayLiteral:
		if len(n.Items) == 0 {
			return "", s.typeError(n.Pos(), "empty array literal")
		}
		var elem string
		for i, item := range n.Items {
			itemTy, err := s.checkExpr(item)
			if err != nil {
				return "", err
			}
			if i == 0 {
				elem = itemTy
			}
		}
		if elem != "" {
			ty = fmt.Sprintf("[%d]%s", len(n.Items), elem)
		}
	default:
		return "", s.collector.ReportAndSave(diagnostics.At(
			diagnostics.UNHANDLED_NODE,
			expr.Pos(),
			"unexpected %s in expression position",
			expr.Kind(),
		))
	}

	if ty != "" {
		s.types[expr] = ty
	}
	return ty, nil
}
