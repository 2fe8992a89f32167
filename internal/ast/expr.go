package ast

import (
	"github.com/penquin-lang/penquin/internal/lexer/token"
)

type NumberLiteral struct {
	Token *token.Token
	Value int64
}

func (number *NumberLiteral) Kind() NodeKind { return KIND_NUMBER_LITERAL }
func (number *NumberLiteral) Pos() token.Pos { return number.Token.Pos }
func (number *NumberLiteral) astNode()       {}

type StringLiteral struct {
	Token *token.Token
	Value string
}

func (str *StringLiteral) Kind() NodeKind { return KIND_STRING_LITERAL }
func (str *StringLiteral) Pos() token.Pos { return str.Token.Pos }
func (str *StringLiteral) astNode()       {}

type Variable struct {
	Name *token.Token
}

func (variable *Variable) Kind() NodeKind { return KIND_VARIABLE }
func (variable *Variable) Pos() token.Pos { return variable.Name.Pos }
func (variable *Variable) astNode()       {}

func (variable *Variable) String() string { return variable.Name.Name() }

// Accessor is the module::name form. Left names an import alias.
type Accessor struct {
	Left  *Variable
	Right *Variable
}

func (accessor *Accessor) Kind() NodeKind { return KIND_ACCESSOR }
func (accessor *Accessor) Pos() token.Pos { return accessor.Left.Pos() }
func (accessor *Accessor) astNode()       {}

type Call struct {
	Callee Node
	Args   []Node
}

func (call *Call) Kind() NodeKind { return KIND_CALL }
func (call *Call) Pos() token.Pos { return call.Callee.Pos() }
func (call *Call) astNode()       {}

type BinaryOp struct {
	Op    *token.Token
	Left  Node
	Right Node
}

func (binary *BinaryOp) Kind() NodeKind { return KIND_BINARY_OP }
func (binary *BinaryOp) Pos() token.Pos { return binary.Op.Pos }
func (binary *BinaryOp) astNode()       {}

type ArrayLiteral struct {
	OpenBracket token.Pos
	Items       []Node
}

func (array *ArrayLiteral) Kind() NodeKind { return KIND_ARRAY_LITERAL }
func (array *ArrayLiteral) Pos() token.Pos { return array.OpenBracket }
func (array *ArrayLiteral) astNode()       {}

type IndexAccess struct {
	Base  Node
	Index Node
}

func (index *IndexAccess) Kind() NodeKind { return KIND_INDEX_ACCESS }
func (index *IndexAccess) Pos() token.Pos { return index.Base.Pos() }
func (index *IndexAccess) astNode()       {}
