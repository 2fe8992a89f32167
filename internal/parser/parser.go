package parser

import (
	"strconv"
	"strings"

	"github.com/penquin-lang/penquin/internal/ast"
	"github.com/penquin-lang/penquin/internal/diagnostics"
	"github.com/penquin-lang/penquin/internal/lexer"
	"github.com/penquin-lang/penquin/internal/lexer/token"
)

type Parser struct {
	cursor    *cursor
	collector *diagnostics.Collector

	inFunction bool
}

func New(tokens []*token.Token, collector *diagnostics.Collector) *Parser {
	parser := new(Parser)
	parser.cursor = newCursor(tokens)
	parser.collector = collector
	return parser
}

// ParseSource tokenizes and parses one source file. path is the canonical
// module path recorded on the tree, filePath is used for positions.
func ParseSource(path, filePath string, src []byte, collector *diagnostics.Collector) (*ast.Module, error) {
	lex := lexer.New(filePath, src, collector)
	tokens, err := lex.Tokenize()
	if err != nil {
		return nil, err
	}
	return New(tokens, collector).ParseModule(path, filePath)
}

func (p *Parser) ParseModule(path, filePath string) (*ast.Module, error) {
	module := &ast.Module{Path: path, FilePath: filePath}

	for !p.cursor.nextIs(token.EOF) {
		node, err := p.next()
		if err != nil {
			return nil, err
		}
		module.Statements = append(module.Statements, node)
	}
	return module, nil
}

func (p *Parser) next() (ast.Node, error) {
	tok := p.cursor.peek()
	switch tok.Kind {
	case token.EXTERN:
		return p.parseExternDecl()
	case token.FN:
		return p.parseFnDecl()
	case token.IMPORT:
		return p.parseImport()
	case token.RETURN:
		return nil, p.syntaxError(tok.Pos, "'return' outside of a function body")
	default:
		return p.parseStmt()
	}
}

func (p *Parser) syntaxError(pos token.Pos, format string, args ...any) error {
	return p.collector.ReportAndSave(diagnostics.At(diagnostics.SYNTAX, pos, format, args...))
}

func (p *Parser) expect(expectedKind token.Kind) (*token.Token, bool) {
	tok := p.cursor.peek()
	if tok.Kind != expectedKind {
		return tok, false
	}
	p.cursor.skip()
	return tok, true
}

// expectOrFail is expect with the standard "expected X, not Y" diagnostic.
func (p *Parser) expectOrFail(expectedKind token.Kind) (*token.Token, error) {
	tok, ok := p.expect(expectedKind)
	if !ok {
		return nil, p.syntaxError(tok.Pos, "expected %s, not %s", expectedKind, tok.Kind)
	}
	return tok, nil
}

func (p *Parser) parseImport() (ast.Node, error) {
	imp, err := p.expectOrFail(token.IMPORT)
	if err != nil {
		return nil, err
	}

	path, ok := p.expect(token.STRING)
	if !ok {
		return nil, p.syntaxError(path.Pos, "expected import path string, not %s", path.Kind)
	}
	if path.Name() == "" {
		return nil, p.syntaxError(path.Pos, "empty import path")
	}

	if _, err := p.expectOrFail(token.SEMICOLON); err != nil {
		return nil, err
	}
	return &ast.Import{Import: imp.Pos, Path: path}, nil
}

func (p *Parser) parseExternDecl() (ast.Node, error) {
	ext, err := p.expectOrFail(token.EXTERN)
	if err != nil {
		return nil, err
	}

	fnDecl, err := p.parsePrototype()
	if err != nil {
		return nil, err
	}
	fnDecl.Fn = ext.Pos
	fnDecl.External = true

	if _, err := p.expectOrFail(token.SEMICOLON); err != nil {
		return nil, err
	}
	return fnDecl, nil
}

func (p *Parser) parseFnDecl() (ast.Node, error) {
	fnDecl, err := p.parsePrototype()
	if err != nil {
		return nil, err
	}

	p.inFunction = true
	body, err := p.parseBlock()
	p.inFunction = false
	if err != nil {
		return nil, err
	}
	fnDecl.Body = body
	return fnDecl, nil
}

// parsePrototype parses `fn NAME(PARAMS)[: [*]TYPE]`.
func (p *Parser) parsePrototype() (*ast.FunctionDecl, error) {
	fn, err := p.expectOrFail(token.FN)
	if err != nil {
		return nil, err
	}

	name, ok := p.expect(token.ID)
	if !ok {
		return nil, p.syntaxError(name.Pos, "expected function name, not %s", name.Kind)
	}

	fnDecl := &ast.FunctionDecl{Fn: fn.Pos, Name: name}
	if err := p.parseFunctionParams(fnDecl); err != nil {
		return nil, err
	}

	if p.cursor.nextIs(token.COLON) {
		p.cursor.skip()
		ty, err := p.parseType()
		if err != nil {
			return nil, err
		}
		fnDecl.RetType = ty
	}
	return fnDecl, nil
}

func (p *Parser) parseFunctionParams(fnDecl *ast.FunctionDecl) error {
	if _, err := p.expectOrFail(token.OPEN_PAREN); err != nil {
		return err
	}

	for !p.cursor.nextIs(token.CLOSE_PAREN) {
		if dots, ok := p.expect(token.DOT_DOT_DOT); ok {
			if p.cursor.nextIs(token.ID) {
				param, err := p.parseParam()
				if err != nil {
					return err
				}
				param.Rest = true
				fnDecl.Params = append(fnDecl.Params, param)
			} else {
				fnDecl.Vararg = true
			}

			if !p.cursor.nextIs(token.CLOSE_PAREN) {
				return p.syntaxError(dots.Pos, "'...' is only allowed on the last parameter of '%s'", fnDecl.Name.Name())
			}
			break
		}

		param, err := p.parseParam()
		if err != nil {
			return err
		}
		fnDecl.Params = append(fnDecl.Params, param)

		if p.cursor.nextIs(token.CLOSE_PAREN) {
			break
		}
		comma, err := p.expectOrFail(token.COMMA)
		if err != nil {
			return err
		}
		if p.cursor.nextIs(token.CLOSE_PAREN) {
			return p.syntaxError(comma.Pos, "trailing ',' in parameters of '%s'", fnDecl.Name.Name())
		}
	}

	_, err := p.expectOrFail(token.CLOSE_PAREN)
	return err
}

func (p *Parser) parseParam() (*ast.Param, error) {
	name, ok := p.expect(token.ID)
	if !ok {
		return nil, p.syntaxError(name.Pos, "expected parameter name, not %s", name.Kind)
	}
	if _, err := p.expectOrFail(token.COLON); err != nil {
		return nil, err
	}
	ty, err := p.parseType()
	if err != nil {
		return nil, err
	}
	return &ast.Param{Name: name, Type: ty}, nil
}

func (p *Parser) parseType() (*ast.Type, error) {
	ty := new(ast.Type)
	if p.cursor.nextIs(token.STAR) {
		p.cursor.skip()
		ty.Pointer = true
	}
	name, ok := p.expect(token.ID)
	if !ok {
		return nil, p.syntaxError(name.Pos, "expected type name, not %s", name.Kind)
	}
	ty.Name = name
	return ty, nil
}

func (p *Parser) parseStmt() (ast.Node, error) {
	tok := p.cursor.peek()
	switch tok.Kind {
	case token.RETURN:
		return p.parseReturn()
	case token.IF:
		return p.parseIf()
	case token.WHILE:
		return p.parseWhile()
	case token.OPEN_CURLY:
		return p.parseBlock()
	case token.FN, token.EXTERN, token.IMPORT:
		return nil, p.syntaxError(tok.Pos, "'%s' is only allowed at the top level", tok.Kind)
	case token.EOF:
		return nil, p.syntaxError(tok.Pos, "expected statement, not %s", tok.Kind)
	}

	expr, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	semicolon, ok := p.expect(token.SEMICOLON)
	if !ok {
		return nil, p.syntaxError(semicolon.Pos, "expected ; at the end of statement, not %s", semicolon.Kind)
	}
	return expr, nil
}

func (p *Parser) parseReturn() (ast.Node, error) {
	ret, err := p.expectOrFail(token.RETURN)
	if err != nil {
		return nil, err
	}
	if !p.inFunction {
		return nil, p.syntaxError(ret.Pos, "'return' outside of a function body")
	}

	returnStmt := &ast.Return{Return: ret.Pos}
	if p.cursor.nextIs(token.SEMICOLON) {
		p.cursor.skip()
		return returnStmt, nil
	}

	value, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	returnStmt.Value = value

	semicolon, ok := p.expect(token.SEMICOLON)
	if !ok {
		return nil, p.syntaxError(semicolon.Pos, "expected ; at the end of statement, not %s", semicolon.Kind)
	}
	return returnStmt, nil
}

func (p *Parser) parseIf() (ast.Node, error) {
	ifTok, err := p.expectOrFail(token.IF)
	if err != nil {
		return nil, err
	}

	cond, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	then, err := p.parseBlock()
	if err != nil {
		return nil, err
	}

	ifStmt := &ast.If{If: ifTok.Pos, Cond: cond, Then: then}
	if p.cursor.nextIs(token.ELSE) {
		p.cursor.skip()
		elseStmt, err := p.parseStmt()
		if err != nil {
			return nil, err
		}
		ifStmt.Else = elseStmt
	}
	return ifStmt, nil
}

func (p *Parser) parseWhile() (ast.Node, error) {
	while, err := p.expectOrFail(token.WHILE)
	if err != nil {
		return nil, err
	}

	cond, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return &ast.While{While: while.Pos, Cond: cond, Body: body}, nil
}

func (p *Parser) parseBlock() (*ast.Block, error) {
	openCurly, ok := p.expect(token.OPEN_CURLY)
	if !ok {
		return nil, p.syntaxError(openCurly.Pos, "expected {, not %s", openCurly.Kind)
	}

	block := &ast.Block{OpenCurly: openCurly.Pos, Statements: []ast.Node{}}
	for !p.cursor.nextIs(token.CLOSE_CURLY) {
		if p.cursor.nextIs(token.EOF) {
			tok := p.cursor.peek()
			return nil, p.syntaxError(tok.Pos, "expected statement or }, not %s", tok.Kind)
		}
		stmt, err := p.parseStmt()
		if err != nil {
			return nil, err
		}
		block.Statements = append(block.Statements, stmt)
	}
	p.cursor.skip()

	return block, nil
}

func (p *Parser) parseExpr() (ast.Node, error) {
	return p.parseAssignment()
}

func (p *Parser) parseAssignment() (ast.Node, error) {
	lhs, err := p.parseComparison()
	if err != nil {
		return nil, err
	}

	equal := p.cursor.peek()
	if equal.Kind != token.EQUAL {
		return lhs, nil
	}

	target, ok := lhs.(*ast.Variable)
	if !ok {
		return nil, p.syntaxError(equal.Pos, "cannot assign to %s", ast.Sprint(lhs))
	}
	p.cursor.skip()

	value, err := p.parseComparison()
	if err != nil {
		return nil, err
	}
	return &ast.Assignment{Name: target.Name, Value: value}, nil
}

// parseComparison accepts at most one comparison operator; `a < b < c` is
// left for the caller to reject.
func (p *Parser) parseComparison() (ast.Node, error) {
	lhs, err := p.parseTerm()
	if err != nil {
		return nil, err
	}

	op := p.cursor.peek()
	if !op.Kind.IsComparison() {
		return lhs, nil
	}
	p.cursor.skip()

	rhs, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	return &ast.BinaryOp{Op: op, Left: lhs, Right: rhs}, nil
}

func (p *Parser) parseTerm() (ast.Node, error) {
	lhs, err := p.parseFactor()
	if err != nil {
		return nil, err
	}

	for {
		op := p.cursor.peek()
		if op.Kind != token.PLUS && op.Kind != token.MINUS {
			break
		}
		p.cursor.skip()
		rhs, err := p.parseFactor()
		if err != nil {
			return nil, err
		}
		lhs = &ast.BinaryOp{Op: op, Left: lhs, Right: rhs}
	}
	return lhs, nil
}

func (p *Parser) parseFactor() (ast.Node, error) {
	lhs, err := p.parseCall()
	if err != nil {
		return nil, err
	}

	for {
		op := p.cursor.peek()
		if op.Kind != token.STAR && op.Kind != token.SLASH && op.Kind != token.PERCENT {
			break
		}
		p.cursor.skip()
		rhs, err := p.parseCall()
		if err != nil {
			return nil, err
		}
		lhs = &ast.BinaryOp{Op: op, Left: lhs, Right: rhs}
	}
	return lhs, nil
}

// parseCall handles the postfix forms: calls and index access, chained in
// any order.
func (p *Parser) parseCall() (ast.Node, error) {
	base, err := p.parseAccessor()
	if err != nil {
		return nil, err
	}

	for {
		switch p.cursor.peek().Kind {
		case token.OPEN_PAREN:
			p.cursor.skip()
			args, err := p.parseExprList(token.CLOSE_PAREN)
			if err != nil {
				return nil, err
			}
			base = &ast.Call{Callee: base, Args: args}
		case token.OPEN_BRACKET:
			p.cursor.skip()
			index, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			if _, err := p.expectOrFail(token.CLOSE_BRACKET); err != nil {
				return nil, err
			}
			base = &ast.IndexAccess{Base: base, Index: index}
		default:
			return base, nil
		}
	}
}

func (p *Parser) parseAccessor() (ast.Node, error) {
	primary, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}

	sep := p.cursor.peek()
	if sep.Kind != token.COLON_COLON {
		return primary, nil
	}

	left, ok := primary.(*ast.Variable)
	if !ok {
		return nil, p.syntaxError(sep.Pos, "'::' must follow a module name, not %s", ast.Sprint(primary))
	}
	p.cursor.skip()

	name, ok := p.expect(token.ID)
	if !ok {
		return nil, p.syntaxError(name.Pos, "expected identifier after '::', not %s", name.Kind)
	}
	return &ast.Accessor{Left: left, Right: &ast.Variable{Name: name}}, nil
}

func (p *Parser) parsePrimary() (ast.Node, error) {
	tok := p.cursor.peek()
	switch tok.Kind {
	case token.NUMBER:
		p.cursor.skip()
		return p.parseNumber(tok, false)
	case token.MINUS:
		if p.cursor.peek1().Kind != token.NUMBER {
			break
		}
		p.cursor.skip()
		return p.parseNumber(p.cursor.next(), true)
	case token.STRING:
		p.cursor.skip()
		return &ast.StringLiteral{Token: tok, Value: tok.Name()}, nil
	case token.ID:
		p.cursor.skip()
		return &ast.Variable{Name: tok}, nil
	case token.OPEN_PAREN:
		p.cursor.skip()
		expr, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expectOrFail(token.CLOSE_PAREN); err != nil {
			return nil, err
		}
		return expr, nil
	case token.OPEN_BRACKET:
		p.cursor.skip()
		items, err := p.parseExprList(token.CLOSE_BRACKET)
		if err != nil {
			return nil, err
		}
		if len(items) == 0 {
			return nil, p.syntaxError(tok.Pos, "empty array literal")
		}
		return &ast.ArrayLiteral{OpenBracket: tok.Pos, Items: items}, nil
	}
	return nil, p.syntaxError(tok.Pos, "expected expression, not %s", tok.Kind)
}

func (p *Parser) parseNumber(tok *token.Token, negative bool) (ast.Node, error) {
	digits := strings.ReplaceAll(tok.Name(), "_", "")
	if negative {
		digits = "-" + digits
	}
	value, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return nil, p.syntaxError(tok.Pos, "invalid number literal '%s'", tok.Name())
	}
	return &ast.NumberLiteral{Token: tok, Value: value}, nil
}

// parseExprList parses comma separated expressions up to and including end.
// The opening token has already been consumed.
func (p *Parser) parseExprList(end token.Kind) ([]ast.Node, error) {
	var exprs []ast.Node
	for !p.cursor.nextIs(end) {
		expr, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		exprs = append(exprs, expr)

		if comma, ok := p.expect(token.COMMA); ok {
			if p.cursor.nextIs(end) {
				return nil, p.syntaxError(comma.Pos, "expected expression after ',', not %s", end)
			}
			continue
		}
		if !p.cursor.nextIs(end) {
			tok := p.cursor.peek()
			return nil, p.syntaxError(tok.Pos, "expected , or %s, not %s", end, tok.Kind)
		}
	}
	p.cursor.skip()
	return exprs, nil
}
