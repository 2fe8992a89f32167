// Package ast defines the syntax tree produced by the parser. Every variant
// implements Node; the set of variants is closed (the marker method is
// unexported), so a type switch over Node covers the whole language.
package ast

import (
	"fmt"

	"github.com/penquin-lang/penquin/internal/lexer/token"
)

type NodeKind int

const (
	KIND_ACCESSOR NodeKind = iota
	KIND_ARRAY_LITERAL
	KIND_ASSIGNMENT
	KIND_BLOCK
	KIND_MODULE
	KIND_FN_DECL
	KIND_CALL
	KIND_IF
	KIND_IMPORT
	KIND_INDEX_ACCESS
	KIND_NUMBER_LITERAL
	KIND_BINARY_OP
	KIND_RETURN
	KIND_STRING_LITERAL
	KIND_VARIABLE
	KIND_WHILE
)

type Node interface {
	Kind() NodeKind
	Pos() token.Pos
	astNode()
}

func (kind NodeKind) String() string {
	switch kind {
	case KIND_ACCESSOR:
		return "KIND_ACCESSOR"
	case KIND_ARRAY_LITERAL:
		return "KIND_ARRAY_LITERAL"
	case KIND_ASSIGNMENT:
		return "KIND_ASSIGNMENT"
	case KIND_BLOCK:
		return "KIND_BLOCK"
	case KIND_MODULE:
		return "KIND_MODULE"
	case KIND_FN_DECL:
		return "KIND_FN_DECL"
	case KIND_CALL:
		return "KIND_CALL"
	case KIND_IF:
		return "KIND_IF"
	case KIND_IMPORT:
		return "KIND_IMPORT"
	case KIND_INDEX_ACCESS:
		return "KIND_INDEX_ACCESS"
	case KIND_NUMBER_LITERAL:
		return "KIND_NUMBER_LITERAL"
	case KIND_BINARY_OP:
		return "KIND_BINARY_OP"
	case KIND_RETURN:
		return "KIND_RETURN"
	case KIND_STRING_LITERAL:
		return "KIND_STRING_LITERAL"
	case KIND_VARIABLE:
		return "KIND_VARIABLE"
	case KIND_WHILE:
		return "KIND_WHILE"
	default:
		return fmt.Sprintf("Unknown Node Kind: %d", int(kind))
	}
}

func IsReturn(node Node) bool {
	_, ok := node.(*Return)
	return ok
}
