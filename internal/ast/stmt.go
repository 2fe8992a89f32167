package ast

import (
	"github.com/penquin-lang/penquin/internal/lexer/token"
)

type Block struct {
	OpenCurly  token.Pos
	Statements []Node
}

func (block *Block) Kind() NodeKind { return KIND_BLOCK }
func (block *Block) Pos() token.Pos { return block.OpenCurly }
func (block *Block) astNode()       {}

// If keeps Else as a plain Node: it is either a *Block or another statement,
// which is how "else if" chains are written.
type If struct {
	If   token.Pos
	Cond Node
	Then *Block
	Else Node
}

func (cond *If) Kind() NodeKind { return KIND_IF }
func (cond *If) Pos() token.Pos { return cond.If }
func (cond *If) astNode()       {}

type While struct {
	While token.Pos
	Cond  Node
	Body  *Block
}

func (loop *While) Kind() NodeKind { return KIND_WHILE }
func (loop *While) Pos() token.Pos { return loop.While }
func (loop *While) astNode()       {}

// Return with a nil Value is a void return.
type Return struct {
	Return token.Pos
	Value  Node
}

func (ret *Return) Kind() NodeKind { return KIND_RETURN }
func (ret *Return) Pos() token.Pos { return ret.Return }
func (ret *Return) astNode()       {}

type Assignment struct {
	Name  *token.Token
	Value Node
}

func (assign *Assignment) Kind() NodeKind { return KIND_ASSIGNMENT }
func (assign *Assignment) Pos() token.Pos { return assign.Name.Pos }
func (assign *Assignment) astNode()       {}
