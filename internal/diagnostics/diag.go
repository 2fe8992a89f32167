package diagnostics

import (
	"errors"
	"fmt"

	"github.com/penquin-lang/penquin/internal/lexer/token"
)

type Kind int

const (
	LEXICAL Kind = iota
	SYNTAX
	UNHANDLED_NODE
	TYPE
	BACKEND
)

func (kind Kind) String() string {
	switch kind {
	case LEXICAL:
		return "lexical error"
	case SYNTAX:
		return "syntax error"
	case UNHANDLED_NODE:
		return "unhandled node"
	case TYPE:
		return "type error"
	case BACKEND:
		return "backend error"
	}
	return "error"
}

type Diag struct {
	Kind    Kind
	Message string
}

func (diag Diag) Error() string {
	return fmt.Sprintf("%s: %s", diag.Kind, diag.Message)
}

func (diag Diag) Unwrap() error { return COMPILER_ERROR_FOUND }

func At(kind Kind, pos token.Pos, format string, args ...any) Diag {
	return Diag{
		Kind:    kind,
		Message: fmt.Sprintf("%s:%d:%d: %s", pos.Filename, pos.Line, pos.Column, fmt.Sprintf(format, args...)),
	}
}

func Newf(kind Kind, format string, args ...any) Diag {
	return Diag{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// KindOf reports the kind of the first diagnostic found in err's chain.
func KindOf(err error) (Kind, bool) {
	var diag *Diag
	if errors.As(err, &diag) {
		return diag.Kind, true
	}
	var plain Diag
	if errors.As(err, &plain) {
		return plain.Kind, true
	}
	return 0, false
}
