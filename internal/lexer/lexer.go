package lexer

import (
	"unicode"

	"github.com/penquin-lang/penquin/internal/diagnostics"
	"github.com/penquin-lang/penquin/internal/lexer/token"
)

const eof = '\000'

type Lexer struct {
	Collector *diagnostics.Collector

	src    []byte
	offset int
	pos    token.Pos
	err    error
}

func New(filename string, src []byte, collector *diagnostics.Collector) *Lexer {
	lexer := new(Lexer)

	lexer.Collector = collector
	lexer.pos = token.NewPosition(filename, 1, 1)
	lexer.src = src
	lexer.offset = 0

	return lexer
}

// Tokenize scans the whole source. The returned sequence always ends with
// exactly one EOF token.
func (lex *Lexer) Tokenize() ([]*token.Token, error) {
	var tokens []*token.Token
	for {
		tok := lex.Next()
		if lex.err != nil {
			return nil, lex.err
		}
		tokens = append(tokens, tok)
		if tok.Kind == token.EOF {
			break
		}
	}
	return tokens, nil
}

func (lex *Lexer) Next() *token.Token {
	lex.skipWhitespaceAndComments()
	tok := &token.Token{}
	tok.Kind = token.INVALID

	if lex.atEnd() {
		lex.consumeTokenNoLex(tok, token.EOF)
		return tok
	}

	return lex.getToken(tok, lex.peekChar())
}

func (lex *Lexer) getToken(tok *token.Token, ch byte) *token.Token {
	switch ch {
	case '(':
		lex.single(tok, token.OPEN_PAREN)
	case ')':
		lex.single(tok, token.CLOSE_PAREN)
	case '{':
		lex.single(tok, token.OPEN_CURLY)
	case '}':
		lex.single(tok, token.CLOSE_CURLY)
	case '[':
		lex.single(tok, token.OPEN_BRACKET)
	case ']':
		lex.single(tok, token.CLOSE_BRACKET)
	case ',':
		lex.single(tok, token.COMMA)
	case ';':
		lex.single(tok, token.SEMICOLON)
	case '+':
		lex.single(tok, token.PLUS)
	case '-':
		lex.single(tok, token.MINUS)
	case '*':
		lex.single(tok, token.STAR)
	case '/':
		lex.single(tok, token.SLASH)
	case '%':
		lex.single(tok, token.PERCENT)
	case '"':
		lex.getStringLit(tok)
	case '>':
		lex.withOptionalEqual(tok, token.GREATER, token.GREATER_EQ)
	case '<':
		lex.withOptionalEqual(tok, token.LESS, token.LESS_EQ)
	case '=':
		lex.withOptionalEqual(tok, token.EQUAL, token.EQUAL_EQUAL)
	case ':':
		tok.Kind = token.COLON
		tok.Pos = lex.pos
		lex.nextChar() // :

		if lex.peekChar() == ':' {
			lex.nextChar() // :
			tok.Kind = token.COLON_COLON
		}
	case '.':
		tok.Kind = token.DOT
		tok.Pos = lex.pos
		lex.nextChar() // .

		if lex.peekChar() != '.' {
			return tok
		}
		lex.nextChar() // .
		if lex.peekChar() != '.' {
			lex.fail(tok.Pos, "invalid token '..', did you mean '...'?")
			return tok
		}
		lex.nextChar() // .
		tok.Kind = token.DOT_DOT_DOT
	default:
		if unicode.IsLetter(rune(ch)) || ch == '_' {
			lex.getIdOrKeyword(tok)
		} else if ch >= '0' && ch <= '9' {
			lex.getNumberLit(tok)
		} else {
			lex.fail(lex.pos, "invalid character %q", ch)
			lex.nextChar()
		}
	}
	return tok
}

func (lex *Lexer) single(tok *token.Token, kind token.Kind) {
	lex.consumeTokenNoLex(tok, kind)
	lex.nextChar()
}

func (lex *Lexer) withOptionalEqual(tok *token.Token, single, withEqual token.Kind) {
	tok.Kind = single
	tok.Pos = lex.pos
	lex.nextChar()

	if lex.peekChar() != '=' {
		return
	}
	lex.nextChar() // =
	tok.Kind = withEqual
}

func (lex *Lexer) getStringLit(tok *token.Token) {
	tok.Pos = lex.pos
	lex.nextChar() // "

	str := []byte{}
	for {
		ch := lex.peekChar()
		if lex.atEnd() || ch == '"' {
			break
		}

		if ch == '\\' {
			lex.nextChar()
			escapeSym := lex.peekChar()

			var escape byte
			switch escapeSym {
			case 'n':
				escape = '\n'
			case 't':
				escape = '\t'
			case '0':
				escape = 0
			case '\\':
				escape = '\\'
			case '"':
				escape = '"'
			default:
				lex.fail(lex.pos, "invalid escape sequence \\%c", escapeSym)
				return
			}
			str = append(str, escape)
		} else {
			str = append(str, ch)
		}

		lex.nextChar()
	}

	if lex.atEnd() {
		lex.fail(tok.Pos, "unterminated string literal")
		return
	}
	lex.nextChar() // "

	tok.Kind = token.STRING
	tok.Lexeme = str
}

func (lex *Lexer) getNumberLit(tok *token.Token) {
	tok.Pos = lex.pos
	number := lex.readWhile(func(chr byte) bool {
		return (chr >= '0' && chr <= '9') || chr == '_'
	})
	tok.Kind = token.NUMBER
	tok.Lexeme = number
}

func (lex *Lexer) getIdOrKeyword(tok *token.Token) {
	tok.Pos = lex.pos
	identifier := lex.readWhile(
		func(chr byte) bool { return unicode.IsNumber(rune(chr)) || unicode.IsLetter(rune(chr)) || chr == '_' },
	)
	tok.Kind = token.ID
	tok.Lexeme = identifier
	keyword, ok := token.KEYWORDS[string(identifier)]
	if ok {
		tok.Kind = keyword
	}
}

func (lex *Lexer) fail(pos token.Pos, format string, args ...any) {
	if lex.err != nil {
		return
	}
	lex.err = lex.Collector.ReportAndSave(diagnostics.At(diagnostics.LEXICAL, pos, format, args...))
}

func (lex *Lexer) consumeTokenNoLex(tok *token.Token, kind token.Kind) {
	tok.Lexeme = nil
	tok.Kind = kind
	tok.Pos = lex.pos
}

func (lex *Lexer) skipWhitespaceAndComments() {
	for {
		lex.readWhile(func(ch byte) bool {
			return ch == ' ' || ch == '\t' || ch == '\r' || ch == '\n'
		})
		if lex.peekChar() == '/' && lex.peekCharN(1) == '/' {
			lex.readWhile(func(ch byte) bool { return ch != '\n' })
			continue
		}
		return
	}
}

func (lex *Lexer) readWhile(isValid func(byte) bool) []byte {
	start := lex.offset

	for {
		if lex.atEnd() {
			break
		}

		if isValid(lex.peekChar()) {
			lex.nextChar()
		} else {
			break
		}
	}

	return lex.src[start:lex.offset]
}

func (lex *Lexer) atEnd() bool { return lex.offset >= len(lex.src) }

func (lex *Lexer) nextChar() byte {
	if lex.atEnd() {
		return eof
	}
	character := lex.src[lex.offset]
	lex.pos.Move(character)
	lex.offset++
	return character
}

func (lex *Lexer) peekChar() byte {
	return lex.peekCharN(0)
}

func (lex *Lexer) peekCharN(n int) byte {
	if lex.offset+n >= len(lex.src) {
		return eof
	}
	return lex.src[lex.offset+n]
}
