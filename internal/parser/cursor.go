package parser

import (
	"github.com/penquin-lang/penquin/internal/lexer/token"
)

// cursor walks a token sequence that ends in EOF. It never advances past the
// final token, so peeking at the end keeps returning EOF.
type cursor struct {
	offset int
	tokens []*token.Token
}

func newCursor(tokens []*token.Token) *cursor {
	if len(tokens) == 0 || tokens[len(tokens)-1].Kind != token.EOF {
		var pos token.Pos
		if len(tokens) > 0 {
			pos = tokens[len(tokens)-1].Pos
		}
		tokens = append(tokens, token.New(nil, token.EOF, pos))
	}
	return &cursor{offset: 0, tokens: tokens}
}

func (cursor *cursor) peek() *token.Token {
	return cursor.tokens[cursor.offset]
}

func (cursor *cursor) peek1() *token.Token {
	if cursor.offset+1 >= len(cursor.tokens) {
		return cursor.tokens[len(cursor.tokens)-1]
	}
	return cursor.tokens[cursor.offset+1]
}

func (cursor *cursor) next() *token.Token {
	tok := cursor.tokens[cursor.offset]
	if cursor.offset < len(cursor.tokens)-1 {
		cursor.offset++
	}
	return tok
}

func (cursor *cursor) skip() {
	cursor.next()
}

func (cursor *cursor) nextIs(expectedKind token.Kind) bool {
	return cursor.peek().Kind == expectedKind
}
