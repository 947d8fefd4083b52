package prettyprinter

import (
	"bytes"
	"strconv"
	"strings"

	"github.com/funvibe/hintinfer/internal/ast"
)

// --- Code Printer (Output looks like source code) ---

// Operator precedence (higher = binds tighter)
var operatorPrecedence = map[string]int{
	"or":     1,
	"and":    2,
	"not":    3,
	"in":     4,
	"not in": 4,
	"is":     4,
	"is not": 4,
	"<":      4,
	">":      4,
	"==":     4,
	">=":     4,
	"<=":     4,
	"!=":     4,
	"|":      5,
	"^":      6,
	"&":      7,
	"<<":     8,
	">>":     8,
	"+":      9,
	"-":      9,
	"*":      10,
	"@":      10,
	"/":      10,
	"//":     10,
	"%":      10,
	"**":     12,
}

const (
	precTest  = 0
	precUnary = 11
	precAtom  = 13
)

func getPrecedence(op string) int {
	if p, ok := operatorPrecedence[op]; ok {
		return p
	}
	return precAtom
}

// Right-associative operators
var rightAssoc = map[string]bool{
	"**": true,
}

type CodePrinter struct {
	buf    bytes.Buffer
	indent int
}

// Code prints a node back to source form. Expressions print on one line;
// statements print with four-space indentation.
func Code(n ast.Node) string {
	p := &CodePrinter{}
	p.node(n)
	return strings.TrimRight(p.buf.String(), "\n")
}

func (p *CodePrinter) write(s string) { p.buf.WriteString(s) }

func (p *CodePrinter) node(n ast.Node) {
	switch n := n.(type) {
	case ast.Expr:
		p.expr(n, precTest)
	case *ast.Module:
		p.stmts(n.Body)
	case ast.Stmt:
		p.stmt(n)
	case *ast.Param:
		p.param(n)
	case *ast.Arg:
		p.arg(n)
	case *ast.Alias:
		p.alias(n)
	case *ast.WithItem:
		p.withItem(n)
	case *ast.ExceptHandler:
		p.handler(n)
	}
}

func (p *CodePrinter) exprs(es []ast.Expr, sep string) {
	for i, e := range es {
		if i > 0 {
			p.write(sep)
		}
		p.expr(e, precTest)
	}
}

func precedenceOf(e ast.Expr) int {
	switch e := e.(type) {
	case *ast.Binary:
		return getPrecedence(e.Op)
	case *ast.Unary:
		if e.Op == "not" {
			return getPrecedence("not")
		}
		return precUnary
	case *ast.IfExp, *ast.Lambda, *ast.Yield:
		return precTest
	case *ast.Tuple:
		if !e.Parens {
			return precTest - 1
		}
	}
	return precAtom
}

func (p *CodePrinter) expr(e ast.Expr, outer int) {
	if precedenceOf(e) < outer {
		p.write("(")
		defer p.write(")")
	}

	switch e := e.(type) {
	case *ast.Name:
		p.write(e.Value)
	case *ast.Constant:
		p.write(e.Value)
	case *ast.Ellipsis:
		p.write("...")
	case *ast.Str:
		if e.Raw != "" {
			p.write(e.Raw)
		} else if e.Bytes {
			p.write("b" + strconv.Quote(e.Value))
		} else {
			p.write(strconv.Quote(e.Value))
		}
	case *ast.Num:
		if e.Raw != "" {
			p.write(e.Raw)
		} else {
			switch v := e.Value.(type) {
			case int64:
				p.write(strconv.FormatInt(v, 10))
			case float64:
				p.write(strconv.FormatFloat(v, 'g', -1, 64))
			}
		}
	case *ast.Attribute:
		p.expr(e.X, precAtom)
		p.write("." + e.Attr.Value)
	case *ast.Subscript:
		p.expr(e.X, precAtom)
		p.write("[")
		p.exprs(e.Index, ", ")
		p.write("]")
	case *ast.Slice:
		if e.Lower != nil {
			p.expr(e.Lower, precTest)
		}
		p.write(":")
		if e.Upper != nil {
			p.expr(e.Upper, precTest)
		}
		if e.Step != nil {
			p.write(":")
			p.expr(e.Step, precTest)
		}
	case *ast.Call:
		p.expr(e.Fun, precAtom)
		p.write("(")
		for i, a := range e.Args {
			if i > 0 {
				p.write(", ")
			}
			p.arg(a)
		}
		p.write(")")
	case *ast.Tuple:
		if e.Parens {
			p.write("(")
		}
		p.exprs(e.Elts, ", ")
		if len(e.Elts) == 1 {
			p.write(",")
		}
		if e.Parens {
			p.write(")")
		}
	case *ast.List:
		p.write("[")
		p.exprs(e.Elts, ", ")
		p.write("]")
	case *ast.Set:
		p.write("{")
		p.exprs(e.Elts, ", ")
		p.write("}")
	case *ast.Dict:
		p.write("{")
		for i := range e.Values {
			if i > 0 {
				p.write(", ")
			}
			if e.Keys[i] == nil {
				p.write("**")
				p.expr(e.Values[i], precAtom)
				continue
			}
			p.expr(e.Keys[i], precTest)
			p.write(": ")
			p.expr(e.Values[i], precTest)
		}
		p.write("}")
	case *ast.Starred:
		p.write("*")
		p.expr(e.X, precAtom)
	case *ast.Unary:
		if e.Op == "not" {
			p.write("not ")
			p.expr(e.X, getPrecedence("not"))
		} else {
			p.write(e.Op)
			p.expr(e.X, precUnary)
		}
	case *ast.Binary:
		prec := getPrecedence(e.Op)
		left, right := prec, prec+1
		if rightAssoc[e.Op] {
			// the exponent may be a signed factor
			left, right = prec+1, precUnary
		}
		p.expr(e.X, left)
		p.write(" " + e.Op + " ")
		p.expr(e.Y, right)
	case *ast.IfExp:
		p.expr(e.Body, precTest+1)
		p.write(" if ")
		p.expr(e.Cond, precTest+1)
		p.write(" else ")
		p.expr(e.Else, precTest)
	case *ast.Lambda:
		p.write("lambda")
		if len(e.Params) > 0 {
			p.write(" ")
			p.params(e.Params)
		}
		p.write(": ")
		p.expr(e.Body, precTest)
	case *ast.Comprehension:
		open, closing := "(", ")"
		switch e.Kind {
		case "list":
			open, closing = "[", "]"
		case "set", "dict":
			open, closing = "{", "}"
		}
		p.write(open)
		p.expr(e.Elt, precTest)
		if e.Value != nil {
			p.write(": ")
			p.expr(e.Value, precTest)
		}
		p.write(" for ")
		p.expr(e.Target, precTest)
		p.write(" in ")
		p.expr(e.Iter, precTest+1)
		for _, cond := range e.Ifs {
			p.write(" if ")
			p.expr(cond, precTest+1)
		}
		p.write(closing)
	case *ast.Yield:
		p.write("yield")
		if e.From {
			p.write(" from")
		}
		if e.Value != nil {
			p.write(" ")
			p.expr(e.Value, precTest)
		}
	case *ast.Await:
		p.write("await ")
		p.expr(e.X, precAtom)
	}
}

func (p *CodePrinter) arg(a *ast.Arg) {
	switch {
	case a.Star == 1:
		p.write("*")
	case a.Star == 2:
		p.write("**")
	case a.Keyword != nil:
		p.write(a.Keyword.Value + "=")
	}
	p.expr(a.Value, precTest)
}

func (p *CodePrinter) param(pr *ast.Param) {
	p.write(strings.Repeat("*", pr.Star))
	p.write(pr.Name.Value)
	if pr.Annotation != nil {
		p.write(": ")
		p.expr(pr.Annotation, precTest)
	}
	if pr.Default != nil {
		if pr.Annotation != nil {
			p.write(" = ")
		} else {
			p.write("=")
		}
		p.expr(pr.Default, precTest)
	}
}

func (p *CodePrinter) params(ps []*ast.Param) {
	for i, pr := range ps {
		if i > 0 {
			p.write(", ")
		}
		p.param(pr)
	}
}

func (p *CodePrinter) alias(a *ast.Alias) {
	p.write(a.Name)
	if a.AsName != nil {
		p.write(" as " + a.AsName.Value)
	}
}

func (p *CodePrinter) withItem(w *ast.WithItem) {
	p.expr(w.Context, precTest)
	if w.Target != nil {
		p.write(" as ")
		p.expr(w.Target, precTest)
	}
}

func (p *CodePrinter) handler(h *ast.ExceptHandler) {
	p.line("except")
	if h.Type != nil {
		p.write(" ")
		p.expr(h.Type, precTest)
	}
	if h.Name != nil {
		p.write(" as " + h.Name.Value)
	}
	p.block(h.Body, "")
}

func (p *CodePrinter) line(s string) {
	p.write(strings.Repeat("    ", p.indent))
	p.write(s)
}

func (p *CodePrinter) block(body []ast.Stmt, comment string) {
	p.write(":")
	if comment != "" {
		p.write("  " + comment)
	}
	p.write("\n")
	p.indent++
	p.stmts(body)
	p.indent--
}

func (p *CodePrinter) stmts(ss []ast.Stmt) {
	for _, s := range ss {
		p.stmt(s)
	}
}

func (p *CodePrinter) end(s ast.Stmt) {
	if c := s.TrailingComment(); c != "" {
		p.write("  " + c)
	}
	p.write("\n")
}

func (p *CodePrinter) stmt(s ast.Stmt) {
	switch s := s.(type) {
	case *ast.FuncDef:
		for _, d := range s.Decorators {
			p.line("@")
			p.expr(d, precTest)
			p.write("\n")
		}
		if s.Async {
			p.line("async def ")
		} else {
			p.line("def ")
		}
		p.write(s.Name.Value + "(")
		p.params(s.Params)
		p.write(")")
		if s.Returns != nil {
			p.write(" -> ")
			p.expr(s.Returns, precTest)
		}
		p.block(s.Body, s.TrailingComment())
	case *ast.ClassDef:
		for _, d := range s.Decorators {
			p.line("@")
			p.expr(d, precTest)
			p.write("\n")
		}
		p.line("class " + s.Name.Value)
		if len(s.Bases) > 0 {
			p.write("(")
			for i, b := range s.Bases {
				if i > 0 {
					p.write(", ")
				}
				p.arg(b)
			}
			p.write(")")
		}
		p.block(s.Body, s.TrailingComment())
	case *ast.Return:
		p.line("return")
		if s.Value != nil {
			p.write(" ")
			p.expr(s.Value, precTest-1)
		}
		p.end(s)
	case *ast.Assign:
		p.line("")
		for _, t := range s.Targets {
			p.expr(t, precTest-1)
			p.write(" = ")
		}
		p.expr(s.Value, precTest-1)
		p.end(s)
	case *ast.AnnAssign:
		p.line("")
		p.expr(s.Target, precTest)
		p.write(": ")
		p.expr(s.Annotation, precTest)
		if s.Value != nil {
			p.write(" = ")
			p.expr(s.Value, precTest-1)
		}
		p.end(s)
	case *ast.AugAssign:
		p.line("")
		p.expr(s.Target, precTest)
		p.write(" " + s.Op + " ")
		p.expr(s.Value, precTest-1)
		p.end(s)
	case *ast.ExprStmt:
		p.line("")
		p.expr(s.X, precTest-1)
		p.end(s)
	case *ast.Simple:
		p.line(s.Keyword)
		p.end(s)
	case *ast.Import:
		p.line("import ")
		for i, a := range s.Names {
			if i > 0 {
				p.write(", ")
			}
			p.alias(a)
		}
		p.end(s)
	case *ast.ImportFrom:
		p.line("from " + strings.Repeat(".", s.Level) + s.Module + " import ")
		for i, a := range s.Names {
			if i > 0 {
				p.write(", ")
			}
			p.alias(a)
		}
		p.end(s)
	case *ast.For:
		p.line("for ")
		p.expr(s.Target, precTest-1)
		p.write(" in ")
		p.expr(s.Iter, precTest-1)
		p.block(s.Body, s.TrailingComment())
		if len(s.Else) > 0 {
			p.line("else")
			p.block(s.Else, "")
		}
	case *ast.While:
		p.line("while ")
		p.expr(s.Cond, precTest)
		p.block(s.Body, s.TrailingComment())
		if len(s.Else) > 0 {
			p.line("else")
			p.block(s.Else, "")
		}
	case *ast.With:
		p.line("with ")
		for i, it := range s.Items {
			if i > 0 {
				p.write(", ")
			}
			p.withItem(it)
		}
		p.block(s.Body, s.TrailingComment())
	case *ast.If:
		p.line("if ")
		p.expr(s.Cond, precTest)
		p.block(s.Body, s.TrailingComment())
		if len(s.Else) > 0 {
			p.line("else")
			p.block(s.Else, "")
		}
	case *ast.Try:
		p.line("try")
		p.block(s.Body, s.TrailingComment())
		for _, h := range s.Handlers {
			p.handler(h)
		}
		if len(s.Else) > 0 {
			p.line("else")
			p.block(s.Else, "")
		}
		if len(s.Finally) > 0 {
			p.line("finally")
			p.block(s.Finally, "")
		}
	case *ast.Raise:
		p.line("raise")
		if s.Exc != nil {
			p.write(" ")
			p.expr(s.Exc, precTest)
		}
		if s.Cause != nil {
			p.write(" from ")
			p.expr(s.Cause, precTest)
		}
		p.end(s)
	case *ast.Assert:
		p.line("assert ")
		p.expr(s.Test, precTest)
		if s.Msg != nil {
			p.write(", ")
			p.expr(s.Msg, precTest)
		}
		p.end(s)
	case *ast.Names:
		p.line(s.Keyword + " ")
		p.exprs(s.Targets, ", ")
		p.end(s)
	}
}
