// Package parser turns source text of the analyzed language into the trees
// of package ast. ParseModule reads a whole file; ParseExpression reads a
// single freestanding expression (forward references and comment hints).
package parser

import (
	"fmt"

	"github.com/funvibe/hintinfer/internal/ast"
	"github.com/funvibe/hintinfer/internal/lexer"
	"github.com/funvibe/hintinfer/internal/token"
)

// SyntaxError reports the first problem found while parsing.
type SyntaxError struct {
	Line   int
	Column int
	Msg    string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%d:%d: %s", e.Line, e.Column, e.Msg)
}

// bailout unwinds the recursive descent on the first error.
type bailout struct{}

type Parser struct {
	toks     []token.Token
	pos      int
	cur      token.Token
	prev     token.Token
	comments map[int]string
	err      *SyntaxError
}

func New(l *lexer.Lexer) *Parser {
	p := &Parser{toks: l.Tokenize(), comments: l.Comments()}
	p.cur = p.toks[0]
	return p
}

// ParseModule parses a complete source file.
func ParseModule(name, src string) (mod *ast.Module, err error) {
	p := New(lexer.New(src))
	defer p.recover(&err)

	mod = &ast.Module{Loc: ast.Loc{Start: ast.Pos{Line: 1, Column: 1}}, Name: name}
	for p.cur.Type != token.EOF {
		if p.cur.Type == token.NEWLINE {
			p.advance()
			continue
		}
		mod.Body = append(mod.Body, p.parseStatement()...)
	}
	mod.Lines = p.cur.Line
	return mod, nil
}

// ParseExpression parses text as a single expression list. Surrounding
// whitespace and trailing newlines are allowed; anything else is an error.
func ParseExpression(src string) (expr ast.Expr, err error) {
	p := New(lexer.New(src))
	defer p.recover(&err)

	for p.cur.Type == token.NEWLINE || p.cur.Type == token.INDENT {
		p.advance()
	}
	expr = p.parseTestList()
	for p.cur.Type == token.NEWLINE || p.cur.Type == token.DEDENT {
		p.advance()
	}
	if p.cur.Type != token.EOF {
		p.fail("unexpected %s after expression", describe(p.cur))
	}
	return expr, nil
}

func (p *Parser) recover(err *error) {
	if r := recover(); r != nil {
		if _, ok := r.(bailout); !ok {
			panic(r)
		}
		*err = p.err
	}
}

func (p *Parser) fail(format string, args ...any) {
	p.err = &SyntaxError{Line: p.cur.Line, Column: p.cur.Column, Msg: fmt.Sprintf(format, args...)}
	panic(bailout{})
}

func describe(tok token.Token) string {
	switch tok.Type {
	case token.NEWLINE:
		return "newline"
	case token.EOF:
		return "end of input"
	case token.INDENT:
		return "indent"
	case token.DEDENT:
		return "dedent"
	case token.ILLEGAL:
		if msg, ok := tok.Literal.(string); ok && msg != tok.Lexeme {
			return msg
		}
		return fmt.Sprintf("illegal token %q", tok.Lexeme)
	}
	return fmt.Sprintf("%q", tok.Lexeme)
}

func (p *Parser) advance() token.Token {
	tok := p.cur
	p.prev = tok
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
	p.cur = p.toks[p.pos]
	if p.cur.Type == token.ILLEGAL {
		p.fail("%s", describe(p.cur))
	}
	return tok
}

func (p *Parser) peek() token.Token {
	if p.pos+1 < len(p.toks) {
		return p.toks[p.pos+1]
	}
	return p.toks[len(p.toks)-1]
}

func (p *Parser) is(types ...token.TokenType) bool {
	for _, t := range types {
		if p.cur.Type == t {
			return true
		}
	}
	return false
}

func (p *Parser) accept(t token.TokenType) bool {
	if p.cur.Type == t {
		p.advance()
		return true
	}
	return false
}

func (p *Parser) expect(t token.TokenType) token.Token {
	if p.cur.Type != t {
		p.fail("expected %q, found %s", string(t), describe(p.cur))
	}
	return p.advance()
}

func loc(tok token.Token) ast.Loc {
	return ast.Loc{Start: ast.Pos{Line: tok.Line, Column: tok.Column}}
}

// commentAt returns the comment recorded on the line of tok.
func (p *Parser) commentAt(tok token.Token) ast.Comment {
	return ast.Comment{Text: p.comments[tok.Line]}
}
