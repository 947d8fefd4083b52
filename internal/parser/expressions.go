package parser

import (
	"strings"

	"github.com/funvibe/hintinfer/internal/ast"
	"github.com/funvibe/hintinfer/internal/token"
)

// Binding powers, loosest first.
const (
	_ int = iota
	LOWEST
	OR
	AND
	NOT
	COMPARE
	BIT_OR
	BIT_XOR
	BIT_AND
	SHIFT
	SUM
	PRODUCT
	PREFIX
	POWER
)

var precedences = map[token.TokenType]int{
	token.OR:        OR,
	token.AND:       AND,
	token.LT:        COMPARE,
	token.GT:        COMPARE,
	token.LTE:       COMPARE,
	token.GTE:       COMPARE,
	token.EQ:        COMPARE,
	token.NOT_EQ:    COMPARE,
	token.IN:        COMPARE,
	token.IS:        COMPARE,
	token.PIPE:      BIT_OR,
	token.CARET:     BIT_XOR,
	token.AMPERSAND: BIT_AND,
	token.LSHIFT:    SHIFT,
	token.RSHIFT:    SHIFT,
	token.PLUS:      SUM,
	token.MINUS:     SUM,
	token.ASTERISK:  PRODUCT,
	token.SLASH:     PRODUCT,
	token.FLOOR_DIV: PRODUCT,
	token.PERCENT:   PRODUCT,
	token.AT:        PRODUCT,
	token.POWER:     POWER,
}

// binaryOp reports the operator at the current position. `not in` is the
// only operator spelled by a keyword that cannot start it alone.
func (p *Parser) binaryOp() (string, int) {
	if p.cur.Type == token.NOT && p.peek().Type == token.IN {
		return "not in", COMPARE
	}
	prec, ok := precedences[p.cur.Type]
	if !ok {
		return "", 0
	}
	return p.cur.Lexeme, prec
}

// startsExpr reports whether the current token can begin an expression.
func (p *Parser) startsExpr() bool {
	switch p.cur.Type {
	case token.NAME, token.INT, token.FLOAT, token.STRING, token.BYTES,
		token.NONE, token.TRUE, token.FALSE, token.ELLIPSIS,
		token.LPAREN, token.LBRACKET, token.LBRACE,
		token.MINUS, token.PLUS, token.TILDE, token.NOT,
		token.LAMBDA, token.AWAIT, token.ASTERISK, token.YIELD:
		return true
	}
	return false
}

// parseTestList parses `a, *b, c` (yielding a Tuple) or a single expression.
func (p *Parser) parseTestList() ast.Expr {
	if p.is(token.YIELD) {
		return p.parseYield()
	}
	start := p.cur
	first := p.parseTestOrStar()
	if !p.is(token.COMMA) {
		return first
	}
	tuple := &ast.Tuple{Loc: loc(start), Elts: []ast.Expr{first}}
	for p.accept(token.COMMA) {
		if !p.startsExpr() {
			break
		}
		tuple.Elts = append(tuple.Elts, p.parseTestOrStar())
	}
	return tuple
}

func (p *Parser) parseTestOrStar() ast.Expr {
	if p.is(token.ASTERISK) {
		tok := p.advance()
		return &ast.Starred{Loc: loc(tok), X: p.parseExpression(BIT_OR - 1)}
	}
	return p.parseTest()
}

// parseTest parses a full single expression including lambdas, conditional
// expressions and named expressions.
func (p *Parser) parseTest() ast.Expr {
	if p.is(token.LAMBDA) {
		return p.parseLambda()
	}
	start := p.cur
	x := p.parseExpression(LOWEST)
	if p.is(token.WALRUS) {
		// a named expression evaluates to its value
		p.advance()
		return p.parseTest()
	}
	if !p.is(token.IF) {
		return x
	}
	p.advance()
	cond := p.parseExpression(LOWEST)
	p.expect(token.ELSE)
	return &ast.IfExp{Loc: loc(start), Body: x, Cond: cond, Else: p.parseTest()}
}

// parseExpression is the Pratt loop: operators binding tighter than
// precedence extend the left operand.
func (p *Parser) parseExpression(precedence int) ast.Expr {
	start := p.cur
	left := p.parsePrefix()
	for {
		op, prec := p.binaryOp()
		if prec <= precedence {
			return left
		}
		p.advance()
		switch op {
		case "not in":
			p.advance()
		case "is":
			if p.accept(token.NOT) {
				op = "is not"
			}
		}
		right := prec
		if op == "**" {
			// right associative, and the exponent may be a signed factor
			right = PREFIX - 1
		}
		left = &ast.Binary{Loc: loc(start), Op: op, X: left, Y: p.parseExpression(right)}
	}
}

func (p *Parser) parsePrefix() ast.Expr {
	tok := p.cur
	switch tok.Type {
	case token.NOT:
		p.advance()
		return &ast.Unary{Loc: loc(tok), Op: "not", X: p.parseExpression(NOT)}
	case token.MINUS, token.PLUS, token.TILDE:
		p.advance()
		return &ast.Unary{Loc: loc(tok), Op: tok.Lexeme, X: p.parseExpression(PREFIX)}
	case token.AWAIT:
		p.advance()
		return &ast.Await{Loc: loc(tok), X: p.parsePrimary()}
	}
	return p.parsePrimary()
}

// parsePrimary parses an atom followed by attribute, call and subscript
// trailers.
func (p *Parser) parsePrimary() ast.Expr {
	start := p.cur
	x := p.parseAtom()
	for {
		switch p.cur.Type {
		case token.DOT:
			p.advance()
			name := p.expect(token.NAME)
			x = &ast.Attribute{Loc: loc(start), X: x, Attr: &ast.Name{Loc: loc(name), Value: name.Lexeme}}
		case token.LPAREN:
			p.advance()
			x = &ast.Call{Loc: loc(start), Fun: x, Args: p.parseArgs(token.RPAREN)}
		case token.LBRACKET:
			p.advance()
			x = &ast.Subscript{Loc: loc(start), X: x, Index: p.parseSubscripts()}
		default:
			return x
		}
	}
}

func (p *Parser) parseAtom() ast.Expr {
	tok := p.cur
	switch tok.Type {
	case token.NAME:
		p.advance()
		return &ast.Name{Loc: loc(tok), Value: tok.Lexeme}
	case token.INT, token.FLOAT:
		p.advance()
		return &ast.Num{Loc: loc(tok), Value: tok.Literal, Raw: tok.Lexeme}
	case token.STRING, token.BYTES:
		return p.parseStrings()
	case token.NONE, token.TRUE, token.FALSE:
		p.advance()
		return &ast.Constant{Loc: loc(tok), Value: tok.Lexeme}
	case token.ELLIPSIS:
		p.advance()
		return &ast.Ellipsis{Loc: loc(tok)}
	case token.LPAREN:
		return p.parseParen()
	case token.LBRACKET:
		return p.parseListDisplay()
	case token.LBRACE:
		return p.parseBraceDisplay()
	}
	p.fail("unexpected %s", describe(tok))
	return nil
}

// parseStrings concatenates adjacent string literals.
func (p *Parser) parseStrings() ast.Expr {
	first := p.cur
	str := &ast.Str{Loc: loc(first), Bytes: first.Type == token.BYTES}
	var value, raw strings.Builder
	for p.is(token.STRING, token.BYTES) {
		tok := p.advance()
		if (tok.Type == token.BYTES) != str.Bytes {
			p.fail("cannot mix bytes and nonbytes literals")
		}
		if s, ok := tok.Literal.(string); ok {
			value.WriteString(s)
		}
		if raw.Len() > 0 {
			raw.WriteByte(' ')
		}
		raw.WriteString(tok.Lexeme)
	}
	str.Value = value.String()
	str.Raw = raw.String()
	return str
}

func (p *Parser) parseParen() ast.Expr {
	open := p.expect(token.LPAREN)
	if p.accept(token.RPAREN) {
		return &ast.Tuple{Loc: loc(open), Parens: true}
	}
	if p.is(token.YIELD) {
		y := p.parseYield()
		p.expect(token.RPAREN)
		return y
	}
	first := p.parseTestOrStar()
	if p.is(token.FOR, token.ASYNC) {
		comp := p.parseComprehension(open, "generator", first, nil)
		p.expect(token.RPAREN)
		return comp
	}
	if p.accept(token.RPAREN) {
		if _, ok := first.(*ast.Starred); ok {
			p.fail("cannot use starred expression here")
		}
		return first
	}
	tuple := &ast.Tuple{Loc: loc(open), Elts: []ast.Expr{first}, Parens: true}
	for p.accept(token.COMMA) {
		if p.is(token.RPAREN) {
			break
		}
		tuple.Elts = append(tuple.Elts, p.parseTestOrStar())
	}
	p.expect(token.RPAREN)
	return tuple
}

func (p *Parser) parseListDisplay() ast.Expr {
	open := p.expect(token.LBRACKET)
	list := &ast.List{Loc: loc(open)}
	if p.accept(token.RBRACKET) {
		return list
	}
	first := p.parseTestOrStar()
	if p.is(token.FOR, token.ASYNC) {
		comp := p.parseComprehension(open, "list", first, nil)
		p.expect(token.RBRACKET)
		return comp
	}
	list.Elts = p.parseRest(first, token.RBRACKET)
	return list
}

func (p *Parser) parseBraceDisplay() ast.Expr {
	open := p.expect(token.LBRACE)
	if p.accept(token.RBRACE) {
		return &ast.Dict{Loc: loc(open)}
	}
	if p.is(token.POWER) || p.peekIsDictEntry() {
		return p.parseDict(open)
	}
	first := p.parseTestOrStar()
	if p.is(token.FOR, token.ASYNC) {
		comp := p.parseComprehension(open, "set", first, nil)
		p.expect(token.RBRACE)
		return comp
	}
	return &ast.Set{Loc: loc(open), Elts: p.parseRest(first, token.RBRACE)}
}

// peekIsDictEntry scans ahead at bracket depth zero for a ':' before the
// first ',' or the closing brace.
func (p *Parser) peekIsDictEntry() bool {
	depth := 0
	for i := p.pos; i < len(p.toks); i++ {
		switch p.toks[i].Type {
		case token.LPAREN, token.LBRACKET, token.LBRACE:
			depth++
		case token.RPAREN, token.RBRACKET:
			depth--
		case token.RBRACE:
			if depth == 0 {
				return false
			}
			depth--
		case token.LAMBDA:
			if depth == 0 {
				return false
			}
		case token.COLON:
			if depth == 0 {
				return true
			}
		case token.COMMA, token.EOF:
			if depth == 0 {
				return false
			}
		}
	}
	return false
}

func (p *Parser) parseDict(open token.Token) ast.Expr {
	dict := &ast.Dict{Loc: loc(open)}
	for !p.is(token.RBRACE) {
		if p.accept(token.POWER) {
			dict.Keys = append(dict.Keys, nil)
			dict.Values = append(dict.Values, p.parseExpression(BIT_OR-1))
		} else {
			key := p.parseTest()
			p.expect(token.COLON)
			value := p.parseTest()
			if len(dict.Keys) == 0 && p.is(token.FOR, token.ASYNC) {
				comp := p.parseComprehension(open, "dict", key, value)
				p.expect(token.RBRACE)
				return comp
			}
			dict.Keys = append(dict.Keys, key)
			dict.Values = append(dict.Values, value)
		}
		if !p.accept(token.COMMA) {
			break
		}
	}
	p.expect(token.RBRACE)
	return dict
}

// parseRest parses the remaining comma separated elements of a display up
// to and including the closing token.
func (p *Parser) parseRest(first ast.Expr, closing token.TokenType) []ast.Expr {
	elts := []ast.Expr{first}
	for p.accept(token.COMMA) {
		if p.is(closing) {
			break
		}
		elts = append(elts, p.parseTestOrStar())
	}
	p.expect(closing)
	return elts
}

// parseComprehension parses the `for ... in ... if ...` clauses. Nested
// clauses after the first are parsed and folded into the filter list.
func (p *Parser) parseComprehension(start token.Token, kind string, elt, value ast.Expr) ast.Expr {
	comp := &ast.Comprehension{Loc: loc(start), Kind: kind, Elt: elt, Value: value}
	first := true
	for p.is(token.FOR, token.ASYNC) {
		p.accept(token.ASYNC)
		p.expect(token.FOR)
		target := p.parseTargetList()
		p.expect(token.IN)
		iter := p.parseExpression(LOWEST)
		if first {
			comp.Target, comp.Iter = target, iter
			first = false
		}
		for p.accept(token.IF) {
			comp.Ifs = append(comp.Ifs, p.parseExpression(LOWEST))
		}
	}
	return comp
}

// parseTargetList parses the targets of for loops and comprehensions, which
// stop before `in`.
func (p *Parser) parseTargetList() ast.Expr {
	start := p.cur
	parseOne := func() ast.Expr {
		if p.is(token.ASTERISK) {
			tok := p.advance()
			return &ast.Starred{Loc: loc(tok), X: p.parseExpression(COMPARE)}
		}
		return p.parseExpression(COMPARE)
	}
	first := parseOne()
	if !p.is(token.COMMA) {
		return first
	}
	tuple := &ast.Tuple{Loc: loc(start), Elts: []ast.Expr{first}}
	for p.accept(token.COMMA) {
		if p.is(token.IN) {
			break
		}
		tuple.Elts = append(tuple.Elts, parseOne())
	}
	return tuple
}

// parseArgs parses call arguments up to the closing token.
func (p *Parser) parseArgs(closing token.TokenType) []*ast.Arg {
	var args []*ast.Arg
	for !p.is(closing) {
		tok := p.cur
		arg := &ast.Arg{Loc: loc(tok)}
		switch {
		case p.accept(token.ASTERISK):
			arg.Star = 1
			arg.Value = p.parseTest()
		case p.accept(token.POWER):
			arg.Star = 2
			arg.Value = p.parseTest()
		case tok.Type == token.NAME && p.peek().Type == token.ASSIGN:
			p.advance()
			p.advance()
			arg.Keyword = &ast.Name{Loc: loc(tok), Value: tok.Lexeme}
			arg.Value = p.parseTest()
		default:
			arg.Value = p.parseTest()
			if p.is(token.FOR, token.ASYNC) {
				arg.Value = p.parseComprehension(tok, "generator", arg.Value, nil)
			}
		}
		args = append(args, arg)
		if !p.accept(token.COMMA) {
			break
		}
	}
	p.expect(closing)
	return args
}

func (p *Parser) parseSubscripts() []ast.Expr {
	var index []ast.Expr
	for !p.is(token.RBRACKET) {
		index = append(index, p.parseSubscript())
		if !p.accept(token.COMMA) {
			break
		}
	}
	if len(index) == 0 {
		p.fail("empty subscript")
	}
	p.expect(token.RBRACKET)
	return index
}

func (p *Parser) parseSubscript() ast.Expr {
	start := p.cur
	var lower ast.Expr
	if !p.is(token.COLON) {
		lower = p.parseTestOrStar()
		if !p.is(token.COLON) {
			return lower
		}
	}
	slice := &ast.Slice{Loc: loc(start), Lower: lower}
	p.expect(token.COLON)
	if !p.is(token.COLON, token.COMMA, token.RBRACKET) {
		slice.Upper = p.parseTest()
	}
	if p.accept(token.COLON) && !p.is(token.COMMA, token.RBRACKET) {
		slice.Step = p.parseTest()
	}
	return slice
}

func (p *Parser) parseYield() ast.Expr {
	tok := p.expect(token.YIELD)
	y := &ast.Yield{Loc: loc(tok)}
	if p.accept(token.FROM) {
		y.From = true
		y.Value = p.parseTest()
		return y
	}
	if p.startsExpr() {
		y.Value = p.parseTestList()
	}
	return y
}

func (p *Parser) parseLambda() ast.Expr {
	tok := p.expect(token.LAMBDA)
	lambda := &ast.Lambda{Loc: loc(tok)}
	lambda.Params = p.parseParams(token.COLON, false)
	lambda.Body = p.parseTest()
	return lambda
}
