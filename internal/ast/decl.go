package ast

import (
	"github.com/penquin-lang/penquin/internal/lexer/token"
)

// Module is the root of one parsed source file. Path is the canonical
// resolved module path used for symbol qualification, FilePath is the file
// the tokens came from.
type Module struct {
	Path       string
	FilePath   string
	Statements []Node
}

func (module *Module) Kind() NodeKind { return KIND_MODULE }
func (module *Module) Pos() token.Pos {
	return token.Pos{Filename: module.FilePath, Line: 1, Column: 1}
}
func (module *Module) astNode() {}

func (module *Module) Imports() []*Import {
	var imports []*Import
	for _, stmt := range module.Statements {
		if imp, ok := stmt.(*Import); ok {
			imports = append(imports, imp)
		}
	}
	return imports
}

type Type struct {
	Name    *token.Token
	Pointer bool
}

func (ty *Type) String() string {
	if ty == nil {
		return "void"
	}
	if ty.Pointer {
		return "*" + ty.Name.Name()
	}
	return ty.Name.Name()
}

type Param struct {
	Name *token.Token
	Type *Type
	Rest bool
}

// FunctionDecl covers both definitions and extern declarations. A nil Body
// marks a declaration-only function.
type FunctionDecl struct {
	Fn       token.Pos
	Name     *token.Token
	Params   []*Param
	RetType  *Type
	Body     *Block
	External bool
	Vararg   bool
}

func (fnDecl *FunctionDecl) Kind() NodeKind { return KIND_FN_DECL }
func (fnDecl *FunctionDecl) Pos() token.Pos { return fnDecl.Fn }
func (fnDecl *FunctionDecl) astNode()       {}

func (fnDecl *FunctionDecl) HasBody() bool { return fnDecl.Body != nil }

// RestIndex returns the position of the rest parameter, or -1.
func (fnDecl *FunctionDecl) RestIndex() int {
	n := len(fnDecl.Params)
	if n > 0 && fnDecl.Params[n-1].Rest {
		return n - 1
	}
	return -1
}

type Import struct {
	Import token.Pos
	Path   *token.Token
}

func (imp *Import) Kind() NodeKind { return KIND_IMPORT }
func (imp *Import) Pos() token.Pos { return imp.Import }
func (imp *Import) astNode()       {}
