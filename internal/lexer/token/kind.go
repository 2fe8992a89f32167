package token

import "fmt"

type Kind int

const (
	EOF Kind = iota
	INVALID

	// Identifier
	ID

	// Literals
	NUMBER
	STRING

	// Keywords
	FN
	EXTERN
	IMPORT
	RETURN
	IF
	ELSE
	WHILE

	// (
	OPEN_PAREN
	// )
	CLOSE_PAREN

	// {
	OPEN_CURLY
	// }
	CLOSE_CURLY

	// [
	OPEN_BRACKET
	// ]
	CLOSE_BRACKET

	// ,
	COMMA
	// ;
	SEMICOLON

	// :
	COLON
	// ::
	COLON_COLON

	// .
	DOT
	// ...
	DOT_DOT_DOT

	// =
	EQUAL
	// ==
	EQUAL_EQUAL

	// >
	GREATER
	// >=
	GREATER_EQ
	// <
	LESS
	// <=
	LESS_EQ

	// +
	PLUS
	// -
	MINUS
	// *
	STAR
	// /
	SLASH
	// %
	PERCENT
)

var KEYWORDS map[string]Kind = map[string]Kind{
	"fn":     FN,
	"extern": EXTERN,
	"import": IMPORT,
	"return": RETURN,
	"if":     IF,
	"else":   ELSE,
	"while":  WHILE,
}

func (kind Kind) IsComparison() bool {
	switch kind {
	case EQUAL_EQUAL, LESS, LESS_EQ, GREATER, GREATER_EQ:
		return true
	}
	return false
}

func (kind Kind) String() string {
	switch kind {
	case EOF:
		return "end of file"
	case INVALID:
		return "INVALID"
	case ID:
		return "identifier"
	case NUMBER:
		return "number literal"
	case STRING:
		return "string literal"
	case FN:
		return "fn"
	case EXTERN:
		return "extern"
	case IMPORT:
		return "import"
	case RETURN:
		return "return"
	case IF:
		return "if"
	case ELSE:
		return "else"
	case WHILE:
		return "while"
	case OPEN_PAREN:
		return "("
	case CLOSE_PAREN:
		return ")"
	case OPEN_CURLY:
		return "{"
	case CLOSE_CURLY:
		return "}"
	case OPEN_BRACKET:
		return "["
	case CLOSE_BRACKET:
		return "]"
	case COMMA:
		return ","
	case SEMICOLON:
		return ";"
	case COLON:
		return ":"
	case COLON_COLON:
		return "::"
	case DOT:
		return "."
	case DOT_DOT_DOT:
		return "..."
	case EQUAL:
		return "="
	case EQUAL_EQUAL:
		return "=="
	case GREATER:
		return ">"
	case GREATER_EQ:
		return ">="
	case LESS:
		return "<"
	case LESS_EQ:
		return "<="
	case PLUS:
		return "+"
	case MINUS:
		return "-"
	case STAR:
		return "*"
	case SLASH:
		return "/"
	case PERCENT:
		return "%"
	default:
		return fmt.Sprintf("Kind(%d)", int(kind))
	}
}
