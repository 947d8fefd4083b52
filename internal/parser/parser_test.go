package parser_test

import (
	"errors"
	"testing"

	"github.com/funvibe/hintinfer/internal/ast"
	"github.com/funvibe/hintinfer/internal/parser"
	"github.com/funvibe/hintinfer/internal/prettyprinter"
)

// parse is a test helper: parses input as a module and fails on errors.
func parse(t *testing.T, input string) *ast.Module {
	t.Helper()
	mod, err := parser.ParseModule("test", input)
	if err != nil {
		t.Fatalf("parse error: %s", err)
	}
	return mod
}

func expr(t *testing.T, input string) ast.Expr {
	t.Helper()
	e, err := parser.ParseExpression(input)
	if err != nil {
		t.Fatalf("parse error in %q: %s", input, err)
	}
	return e
}

func TestExpressionPrecedence(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"a + b * c", "a + b * c"},
		{"(a + b) * c", "(a + b) * c"},
		{"a - b - c", "a - b - c"},
		{"a - (b - c)", "a - (b - c)"},
		{"a ** b ** c", "a ** b ** c"},
		{"(a ** b) ** c", "(a ** b) ** c"},
		{"-a ** 2", "-a ** 2"},
		{"2 ** -1", "2 ** -1"},
		{"not a == b", "not a == b"},
		{"a and not b or c", "a and not b or c"},
		{"a if b else c", "a if b else c"},
		{"x not in y", "x not in y"},
		{"x is not None", "x is not None"},
		{"a | b & c", "a | b & c"},
		{"f(a)[0].b", "f(a)[0].b"},
		{"await f()", "await f()"},
	}
	for _, tt := range tests {
		got := prettyprinter.Code(expr(t, tt.input))
		if got != tt.expected {
			t.Errorf("%q: expected %q, got %q", tt.input, tt.expected, got)
		}
	}
}

func TestGenericSubscripts(t *testing.T) {
	e := expr(t, "Dict[str, List[int]]")
	sub, ok := e.(*ast.Subscript)
	if !ok {
		t.Fatalf("expected Subscript, got %T", e)
	}
	if len(sub.Index) != 2 {
		t.Fatalf("expected 2 indices, got %d", len(sub.Index))
	}
	if got := prettyprinter.Code(sub.Index[1]); got != "List[int]" {
		t.Errorf("expected List[int], got %s", got)
	}

	slice, ok := expr(t, "a[1:2:3]").(*ast.Subscript).Index[0].(*ast.Slice)
	if !ok || slice.Lower == nil || slice.Upper == nil || slice.Step == nil {
		t.Fatalf("expected full slice, got %#v", slice)
	}
}

func TestDisplays(t *testing.T) {
	tests := []struct {
		input string
		kind  string
	}{
		{"[1, 2]", "*ast.List"},
		{"(1, 2)", "*ast.Tuple"},
		{"(1)", "*ast.Num"},
		{"()", "*ast.Tuple"},
		{"{1, 2}", "*ast.Set"},
		{"{}", "*ast.Dict"},
		{"{'a': 1, **rest}", "*ast.Dict"},
		{"[x for x in y if x]", "*ast.Comprehension"},
		{"{k: v for k, v in items}", "*ast.Comprehension"},
		{"(x for x in y)", "*ast.Comprehension"},
		{"lambda x, *y: x", "*ast.Lambda"},
		{"'a' 'b'", "*ast.Str"},
	}
	for _, tt := range tests {
		e := expr(t, tt.input)
		if got := typeName(e); got != tt.kind {
			t.Errorf("%q: expected %s, got %s", tt.input, tt.kind, got)
		}
	}

	if s := expr(t, "'a' 'b'").(*ast.Str); s.Value != "ab" {
		t.Errorf("adjacent strings: expected ab, got %q", s.Value)
	}
	comp := expr(t, "{k: v for k, v in items}").(*ast.Comprehension)
	if comp.Kind != "dict" || comp.Value == nil {
		t.Errorf("expected dict comprehension, got %s", comp.Kind)
	}
}

func typeName(e ast.Expr) string {
	switch e.(type) {
	case *ast.List:
		return "*ast.List"
	case *ast.Tuple:
		return "*ast.Tuple"
	case *ast.Num:
		return "*ast.Num"
	case *ast.Set:
		return "*ast.Set"
	case *ast.Dict:
		return "*ast.Dict"
	case *ast.Comprehension:
		return "*ast.Comprehension"
	case *ast.Lambda:
		return "*ast.Lambda"
	case *ast.Str:
		return "*ast.Str"
	}
	return "other"
}

func TestCallArguments(t *testing.T) {
	call := expr(t, "f(a, *b, c=1, **d)").(*ast.Call)
	if len(call.Args) != 4 {
		t.Fatalf("expected 4 args, got %d", len(call.Args))
	}
	if call.Args[1].Star != 1 || call.Args[3].Star != 2 {
		t.Errorf("wrong star counts: %d, %d", call.Args[1].Star, call.Args[3].Star)
	}
	if call.Args[2].Keyword == nil || call.Args[2].Keyword.Value != "c" {
		t.Errorf("expected keyword c")
	}
}

func TestFunctionDefinition(t *testing.T) {
	mod := parse(t, `
@decorator
def f(self, a: int, /, b: 'List[str]' = None, *args, c, **kwargs) -> bool:
    return a
`)
	fn, ok := mod.Body[0].(*ast.FuncDef)
	if !ok {
		t.Fatalf("expected FuncDef, got %T", mod.Body[0])
	}
	if len(fn.Decorators) != 1 {
		t.Errorf("expected one decorator, got %d", len(fn.Decorators))
	}
	names := []string{"self", "a", "b", "args", "c", "kwargs"}
	if len(fn.Params) != len(names) {
		t.Fatalf("expected %d params, got %d", len(names), len(fn.Params))
	}
	for i, name := range names {
		if fn.Params[i].Name.Value != name {
			t.Errorf("param %d: expected %s, got %s", i, name, fn.Params[i].Name.Value)
		}
	}
	if fn.Params[3].Star != 1 || fn.Params[5].Star != 2 {
		t.Errorf("wrong star params")
	}
	if _, ok := fn.Params[2].Annotation.(*ast.Str); !ok {
		t.Errorf("expected string annotation, got %T", fn.Params[2].Annotation)
	}
	if fn.Params[2].Default == nil {
		t.Errorf("expected default on b")
	}
	if prettyprinter.Code(fn.Returns) != "bool" {
		t.Errorf("expected return annotation bool")
	}
	if fn.Position().Line != 3 {
		t.Errorf("expected def on line 3, got %d", fn.Position().Line)
	}
}

func TestTrailingComments(t *testing.T) {
	mod := parse(t, `def f(a, b):  # type: (int, str) -> bool
    x = g(
        a)  # type: List[int]
    for y in x:  # type: int
        pass
    with open(a) as fh:  # type: IO
        pass
    z = 1; w = 2  # type: float
    return x
`)
	fn := mod.Body[0].(*ast.FuncDef)
	if fn.TrailingComment() != "# type: (int, str) -> bool" {
		t.Errorf("function comment: got %q", fn.TrailingComment())
	}
	want := []string{"# type: List[int]", "# type: int", "# type: IO", "", "# type: float", ""}
	if len(fn.Body) != len(want) {
		t.Fatalf("expected %d statements, got %d", len(want), len(fn.Body))
	}
	for i, w := range want {
		if got := fn.Body[i].TrailingComment(); got != w {
			t.Errorf("statement %d: expected %q, got %q", i, w, got)
		}
	}
}

func TestCompoundStatements(t *testing.T) {
	mod := parse(t, `
class A(Base, metaclass=M):
    x: int = 1
    def m(self): return self.x

if a:
    pass
elif b:
    pass
else:
    pass

try:
    pass
except ValueError as e:
    pass
finally:
    pass

while x:
    x -= 1

from ..pkg import (a as b, c)
from typing import *
import os.path, sys as system
`)
	if len(mod.Body) != 7 {
		t.Fatalf("expected 7 statements, got %d", len(mod.Body))
	}
	class := mod.Body[0].(*ast.ClassDef)
	if len(class.Bases) != 2 || class.Bases[1].Keyword == nil {
		t.Errorf("expected base and keyword argument")
	}
	if _, ok := class.Body[0].(*ast.AnnAssign); !ok {
		t.Errorf("expected AnnAssign, got %T", class.Body[0])
	}
	ifStmt := mod.Body[1].(*ast.If)
	if _, ok := ifStmt.Else[0].(*ast.If); !ok {
		t.Errorf("elif should nest an If")
	}
	try := mod.Body[2].(*ast.Try)
	if len(try.Handlers) != 1 || try.Handlers[0].Name.Value != "e" || try.Finally == nil {
		t.Errorf("unexpected try shape")
	}
	aug := mod.Body[3].(*ast.While).Body[0].(*ast.AugAssign)
	if aug.Op != "-" {
		t.Errorf("expected -, got %s", aug.Op)
	}
	from := mod.Body[4].(*ast.ImportFrom)
	if from.Level != 2 || from.Module != "pkg" || len(from.Names) != 2 || from.Names[0].Bound() != "b" {
		t.Errorf("unexpected from-import %+v", from)
	}
	star := mod.Body[5].(*ast.ImportFrom)
	if star.Names[0].Name != "*" {
		t.Errorf("expected star import")
	}
	imp := mod.Body[6].(*ast.Import)
	if imp.Names[0].Bound() != "os" || imp.Names[1].Bound() != "system" {
		t.Errorf("unexpected import bindings")
	}
}

func TestAssignmentChains(t *testing.T) {
	mod := parse(t, "a = b = 1, 2\nx, *y = z\n")
	chain := mod.Body[0].(*ast.Assign)
	if len(chain.Targets) != 2 {
		t.Fatalf("expected 2 targets, got %d", len(chain.Targets))
	}
	if _, ok := chain.Value.(*ast.Tuple); !ok {
		t.Errorf("expected tuple value, got %T", chain.Value)
	}
	unpack := mod.Body[1].(*ast.Assign)
	tuple := unpack.Targets[0].(*ast.Tuple)
	if _, ok := tuple.Elts[1].(*ast.Starred); !ok {
		t.Errorf("expected starred target")
	}
}

func TestSyntaxErrors(t *testing.T) {
	tests := []string{
		"def f(:\n    pass\n",
		"x = (1, 2\n",
		"if x\n    pass\n",
		"try:\n    pass\n",
		"x = 'abc\n",
	}
	for _, input := range tests {
		_, err := parser.ParseModule("bad", input)
		var syntaxErr *parser.SyntaxError
		if !errors.As(err, &syntaxErr) {
			t.Errorf("%q: expected SyntaxError, got %v", input, err)
			continue
		}
		if syntaxErr.Line == 0 {
			t.Errorf("%q: expected a position", input)
		}
	}

	for _, input := range []string{"1 +", "a b", "List[int", ""} {
		if _, err := parser.ParseExpression(input); err == nil {
			t.Errorf("%q: expected error", input)
		}
	}
}
