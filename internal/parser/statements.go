package parser

import (
	"strings"

	"github.com/funvibe/hintinfer/internal/ast"
	"github.com/funvibe/hintinfer/internal/token"
)

func (p *Parser) parseStatement() []ast.Stmt {
	switch p.cur.Type {
	case token.DEF:
		return []ast.Stmt{p.parseFuncDef(p.cur, nil)}
	case token.CLASS:
		return []ast.Stmt{p.parseClassDef(nil)}
	case token.AT:
		return []ast.Stmt{p.parseDecorated()}
	case token.ASYNC:
		return []ast.Stmt{p.parseAsync(nil)}
	case token.IF:
		return []ast.Stmt{p.parseIf()}
	case token.FOR:
		return []ast.Stmt{p.parseFor(p.cur, false)}
	case token.WHILE:
		return []ast.Stmt{p.parseWhile()}
	case token.WITH:
		return []ast.Stmt{p.parseWith(p.cur, false)}
	case token.TRY:
		return []ast.Stmt{p.parseTry()}
	case token.INDENT:
		p.fail("unexpected indent")
	}
	return p.parseSimpleStatements()
}

// parseSimpleStatements parses `stmt; stmt; ...` up to the end of the
// logical line. The line's comment belongs to the last statement.
func (p *Parser) parseSimpleStatements() []ast.Stmt {
	var stmts []ast.Stmt
	for {
		stmts = append(stmts, p.parseSmallStatement())
		if !p.accept(token.SEMICOLON) || p.is(token.NEWLINE, token.EOF) {
			break
		}
	}
	last := p.prev
	if !p.is(token.EOF) {
		p.expect(token.NEWLINE)
	}
	if text, ok := p.comments[last.Line]; ok {
		if c, ok := stmts[len(stmts)-1].(interface{ SetTrailingComment(string) }); ok {
			c.SetTrailingComment(text)
		}
	}
	return stmts
}

// parseHeader consumes the ':' ending a compound statement header and
// returns the comment on its line.
func (p *Parser) parseHeader() ast.Comment {
	colon := p.expect(token.COLON)
	return p.commentAt(colon)
}

func (p *Parser) parseSuite() []ast.Stmt {
	if !p.accept(token.NEWLINE) {
		return p.parseSimpleStatements()
	}
	p.expect(token.INDENT)
	var body []ast.Stmt
	for !p.is(token.DEDENT, token.EOF) {
		if p.accept(token.NEWLINE) {
			continue
		}
		body = append(body, p.parseStatement()...)
	}
	p.expect(token.DEDENT)
	return body
}

func (p *Parser) parseSmallStatement() ast.Stmt {
	tok := p.cur
	switch tok.Type {
	case token.PASS, token.BREAK, token.CONTINUE:
		p.advance()
		return &ast.Simple{Loc: loc(tok), Keyword: tok.Lexeme}
	case token.RETURN:
		p.advance()
		ret := &ast.Return{Loc: loc(tok)}
		if p.startsExpr() {
			ret.Value = p.parseTestList()
		}
		return ret
	case token.RAISE:
		p.advance()
		raise := &ast.Raise{Loc: loc(tok)}
		if p.startsExpr() {
			raise.Exc = p.parseTest()
			if p.accept(token.FROM) {
				raise.Cause = p.parseTest()
			}
		}
		return raise
	case token.ASSERT:
		p.advance()
		assert := &ast.Assert{Loc: loc(tok), Test: p.parseTest()}
		if p.accept(token.COMMA) {
			assert.Msg = p.parseTest()
		}
		return assert
	case token.IMPORT:
		return p.parseImport()
	case token.FROM:
		return p.parseImportFrom()
	case token.GLOBAL, token.NONLOCAL:
		p.advance()
		names := &ast.Names{Loc: loc(tok), Keyword: tok.Lexeme}
		for {
			name := p.expect(token.NAME)
			names.Targets = append(names.Targets, &ast.Name{Loc: loc(name), Value: name.Lexeme})
			if !p.accept(token.COMMA) {
				return names
			}
		}
	case token.DEL:
		p.advance()
		names := &ast.Names{Loc: loc(tok), Keyword: tok.Lexeme}
		target := p.parseTestList()
		if tuple, ok := target.(*ast.Tuple); ok && !tuple.Parens {
			names.Targets = tuple.Elts
		} else {
			names.Targets = []ast.Expr{target}
		}
		return names
	}
	return p.parseExprStatement()
}

// parseExprStatement parses expression statements and the three
// assignment forms.
func (p *Parser) parseExprStatement() ast.Stmt {
	start := p.cur
	x := p.parseTestList()
	switch p.cur.Type {
	case token.COLON:
		p.advance()
		ann := &ast.AnnAssign{Loc: loc(start), Target: x, Annotation: p.parseTest()}
		if p.accept(token.ASSIGN) {
			ann.Value = p.parseTestList()
		}
		return ann
	case token.AUG_ASSIGN:
		op := p.advance()
		return &ast.AugAssign{Loc: loc(start), Target: x, Op: strings.TrimSuffix(op.Lexeme, "="), Value: p.parseTestList()}
	case token.ASSIGN:
		exprs := []ast.Expr{x}
		for p.accept(token.ASSIGN) {
			exprs = append(exprs, p.parseTestList())
		}
		return &ast.Assign{Loc: loc(start), Targets: exprs[:len(exprs)-1], Value: exprs[len(exprs)-1]}
	}
	return &ast.ExprStmt{Loc: loc(start), X: x}
}

func (p *Parser) parseDottedName() string {
	var sb strings.Builder
	sb.WriteString(p.expect(token.NAME).Lexeme)
	for p.accept(token.DOT) {
		sb.WriteByte('.')
		sb.WriteString(p.expect(token.NAME).Lexeme)
	}
	return sb.String()
}

func (p *Parser) parseAlias(dotted bool) *ast.Alias {
	alias := &ast.Alias{Loc: loc(p.cur)}
	if dotted {
		alias.Name = p.parseDottedName()
	} else {
		alias.Name = p.expect(token.NAME).Lexeme
	}
	if p.accept(token.AS) {
		name := p.expect(token.NAME)
		alias.AsName = &ast.Name{Loc: loc(name), Value: name.Lexeme}
	}
	return alias
}

func (p *Parser) parseImport() ast.Stmt {
	tok := p.expect(token.IMPORT)
	imp := &ast.Import{Loc: loc(tok)}
	for {
		imp.Names = append(imp.Names, p.parseAlias(true))
		if !p.accept(token.COMMA) {
			return imp
		}
	}
}

func (p *Parser) parseImportFrom() ast.Stmt {
	tok := p.expect(token.FROM)
	imp := &ast.ImportFrom{Loc: loc(tok)}
	for {
		if p.accept(token.DOT) {
			imp.Level++
		} else if p.accept(token.ELLIPSIS) {
			imp.Level += 3
		} else {
			break
		}
	}
	if p.is(token.NAME) {
		imp.Module = p.parseDottedName()
	} else if imp.Level == 0 {
		p.fail("expected module name, found %s", describe(p.cur))
	}
	p.expect(token.IMPORT)
	if star := p.cur; p.accept(token.ASTERISK) {
		imp.Names = []*ast.Alias{{Loc: loc(star), Name: "*"}}
		return imp
	}
	parens := p.accept(token.LPAREN)
	for {
		imp.Names = append(imp.Names, p.parseAlias(false))
		if !p.accept(token.COMMA) || (parens && p.is(token.RPAREN)) {
			break
		}
	}
	if parens {
		p.expect(token.RPAREN)
	}
	return imp
}

func (p *Parser) parseDecorated() ast.Stmt {
	var decorators []ast.Expr
	for p.accept(token.AT) {
		decorators = append(decorators, p.parseTest())
		p.expect(token.NEWLINE)
	}
	switch p.cur.Type {
	case token.DEF:
		return p.parseFuncDef(p.cur, decorators)
	case token.CLASS:
		return p.parseClassDef(decorators)
	case token.ASYNC:
		return p.parseAsync(decorators)
	}
	p.fail("expected function or class after decorator, found %s", describe(p.cur))
	return nil
}

func (p *Parser) parseAsync(decorators []ast.Expr) ast.Stmt {
	tok := p.expect(token.ASYNC)
	switch p.cur.Type {
	case token.DEF:
		fn := p.parseFuncDef(tok, decorators)
		fn.Async = true
		return fn
	case token.FOR:
		if decorators == nil {
			return p.parseFor(tok, true)
		}
	case token.WITH:
		if decorators == nil {
			return p.parseWith(tok, true)
		}
	}
	p.fail("unexpected %s after async", describe(p.cur))
	return nil
}

func (p *Parser) parseFuncDef(start token.Token, decorators []ast.Expr) *ast.FuncDef {
	p.expect(token.DEF)
	name := p.expect(token.NAME)
	fn := &ast.FuncDef{
		Loc:        loc(start),
		Name:       &ast.Name{Loc: loc(name), Value: name.Lexeme},
		Decorators: decorators,
	}
	p.expect(token.LPAREN)
	fn.Params = p.parseParams(token.RPAREN, true)
	if p.accept(token.ARROW) {
		fn.Returns = p.parseTest()
	}
	fn.Comment = p.parseHeader()
	fn.Body = p.parseSuite()
	return fn
}

// parseParams parses a parameter list up to and including closing. The
// bare `*` and `/` markers only affect call binding and are dropped.
func (p *Parser) parseParams(closing token.TokenType, annotated bool) []*ast.Param {
	var params []*ast.Param
	for !p.is(closing) {
		tok := p.cur
		star := 0
		switch {
		case p.accept(token.SLASH):
		case p.accept(token.ASTERISK):
			star = 1
		case p.accept(token.POWER):
			star = 2
		}
		if tok.Type == token.SLASH || (star == 1 && !p.is(token.NAME)) {
			if !p.accept(token.COMMA) {
				break
			}
			continue
		}
		name := p.expect(token.NAME)
		param := &ast.Param{Loc: loc(tok), Name: &ast.Name{Loc: loc(name), Value: name.Lexeme}, Star: star}
		if annotated && p.accept(token.COLON) {
			param.Annotation = p.parseTest()
		}
		if star == 0 && p.accept(token.ASSIGN) {
			param.Default = p.parseTest()
		}
		params = append(params, param)
		if !p.accept(token.COMMA) {
			break
		}
	}
	p.expect(closing)
	return params
}

func (p *Parser) parseClassDef(decorators []ast.Expr) *ast.ClassDef {
	tok := p.expect(token.CLASS)
	name := p.expect(token.NAME)
	class := &ast.ClassDef{
		Loc:        loc(tok),
		Name:       &ast.Name{Loc: loc(name), Value: name.Lexeme},
		Decorators: decorators,
	}
	if p.accept(token.LPAREN) {
		class.Bases = p.parseArgs(token.RPAREN)
	}
	class.Comment = p.parseHeader()
	class.Body = p.parseSuite()
	return class
}

// parseIf handles both `if` and `elif`; an elif chain nests in Else.
func (p *Parser) parseIf() *ast.If {
	tok := p.advance()
	stmt := &ast.If{Loc: loc(tok), Cond: p.parseTest()}
	stmt.Comment = p.parseHeader()
	stmt.Body = p.parseSuite()
	switch {
	case p.is(token.ELIF):
		stmt.Else = []ast.Stmt{p.parseIf()}
	case p.accept(token.ELSE):
		p.parseHeader()
		stmt.Else = p.parseSuite()
	}
	return stmt
}

func (p *Parser) parseFor(start token.Token, async bool) ast.Stmt {
	p.expect(token.FOR)
	stmt := &ast.For{Loc: loc(start), Async: async, Target: p.parseTargetList()}
	p.expect(token.IN)
	stmt.Iter = p.parseTestList()
	stmt.Comment = p.parseHeader()
	stmt.Body = p.parseSuite()
	if p.accept(token.ELSE) {
		p.parseHeader()
		stmt.Else = p.parseSuite()
	}
	return stmt
}

func (p *Parser) parseWhile() ast.Stmt {
	tok := p.expect(token.WHILE)
	stmt := &ast.While{Loc: loc(tok), Cond: p.parseTest()}
	stmt.Comment = p.parseHeader()
	stmt.Body = p.parseSuite()
	if p.accept(token.ELSE) {
		p.parseHeader()
		stmt.Else = p.parseSuite()
	}
	return stmt
}

func (p *Parser) parseWith(start token.Token, async bool) ast.Stmt {
	p.expect(token.WITH)
	stmt := &ast.With{Loc: loc(start), Async: async}
	for {
		item := &ast.WithItem{Loc: loc(p.cur), Context: p.parseTest()}
		if p.accept(token.AS) {
			item.Target = p.parseExpression(LOWEST)
		}
		stmt.Items = append(stmt.Items, item)
		if !p.accept(token.COMMA) {
			break
		}
	}
	stmt.Comment = p.parseHeader()
	stmt.Body = p.parseSuite()
	return stmt
}

func (p *Parser) parseTry() ast.Stmt {
	tok := p.expect(token.TRY)
	stmt := &ast.Try{Loc: loc(tok)}
	stmt.Comment = p.parseHeader()
	stmt.Body = p.parseSuite()
	for p.is(token.EXCEPT) {
		handler := &ast.ExceptHandler{Loc: loc(p.advance())}
		if p.startsExpr() {
			handler.Type = p.parseTest()
			if p.accept(token.AS) {
				name := p.expect(token.NAME)
				handler.Name = &ast.Name{Loc: loc(name), Value: name.Lexeme}
			}
		}
		p.parseHeader()
		handler.Body = p.parseSuite()
		stmt.Handlers = append(stmt.Handlers, handler)
	}
	if p.accept(token.ELSE) {
		p.parseHeader()
		stmt.Else = p.parseSuite()
	}
	if p.accept(token.FINALLY) {
		p.parseHeader()
		stmt.Finally = p.parseSuite()
	}
	if len(stmt.Handlers) == 0 && stmt.Finally == nil {
		p.fail("expected 'except' or 'finally' block")
	}
	return stmt
}
