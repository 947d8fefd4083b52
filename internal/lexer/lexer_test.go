package lexer

import (
	"testing"

	"github.com/funvibe/hintinfer/internal/token"
)

func types(toks []token.Token) []token.TokenType {
	out := make([]token.TokenType, len(toks))
	for i, tok := range toks {
		out[i] = tok.Type
	}
	return out
}

func TestIndentation(t *testing.T) {
	input := "def f(x):\n    return x\n\ny = 1\n"
	want := []token.TokenType{
		token.DEF, token.NAME, token.LPAREN, token.NAME, token.RPAREN, token.COLON, token.NEWLINE,
		token.INDENT, token.RETURN, token.NAME, token.NEWLINE,
		token.DEDENT, token.NAME, token.ASSIGN, token.INT, token.NEWLINE,
		token.EOF,
	}
	got := types(New(input).Tokenize())
	if len(got) != len(want) {
		t.Fatalf("got %d tokens %v, want %d %v", len(got), got, len(want), want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("token[%d] = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestBracketsJoinLines(t *testing.T) {
	input := "x = [1,\n     2]\n"
	got := types(New(input).Tokenize())
	for _, typ := range got[:len(got)-2] {
		if typ == token.NEWLINE || typ == token.INDENT {
			t.Fatalf("unexpected %s inside brackets: %v", typ, got)
		}
	}
}

func TestMissingTrailingNewlineClosesBlocks(t *testing.T) {
	got := types(New("if x:\n    y").Tokenize())
	want := []token.TokenType{token.IF, token.NAME, token.COLON, token.NEWLINE, token.INDENT, token.NAME, token.NEWLINE, token.DEDENT, token.EOF}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("token[%d] = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestCommentsAreRecordedByLine(t *testing.T) {
	l := New("def f(a, b):  # type: (int, str) -> bool\n    # just a note\n    pass\n")
	l.Tokenize()
	comments := l.Comments()
	if got := comments[1]; got != "# type: (int, str) -> bool" {
		t.Errorf("line 1 comment = %q", got)
	}
	if got := comments[2]; got != "# just a note" {
		t.Errorf("line 2 comment = %q", got)
	}
}

func TestStringsAndNumbers(t *testing.T) {
	tests := []struct {
		input   string
		typ     token.TokenType
		literal any
	}{
		{`"int"`, token.STRING, "int"},
		{`'a\'b'`, token.STRING, "a'b"},
		{`r"\d"`, token.STRING, `\d`},
		{`b"raw"`, token.BYTES, "raw"},
		{`"""doc "x" """`, token.STRING, `doc "x" `},
		{"42", token.INT, int64(42)},
		{"0x1f", token.INT, int64(31)},
		{"1_000", token.INT, int64(1000)},
		{"3.5", token.FLOAT, 3.5},
		{"1e3", token.FLOAT, 1000.0},
	}
	for _, tt := range tests {
		tok := New(tt.input).NextToken()
		if tok.Type != tt.typ {
			t.Errorf("%s: type = %s, want %s", tt.input, tok.Type, tt.typ)
			continue
		}
		if tok.Literal != tt.literal {
			t.Errorf("%s: literal = %#v, want %#v", tt.input, tok.Literal, tt.literal)
		}
	}
}

func TestOperators(t *testing.T) {
	got := types(New("a -> b ** c // d += e ... f := g != h").Tokenize())
	want := []token.TokenType{
		token.NAME, token.ARROW, token.NAME, token.POWER, token.NAME, token.FLOOR_DIV, token.NAME,
		token.AUG_ASSIGN, token.NAME, token.ELLIPSIS, token.NAME, token.WALRUS, token.NAME, token.NOT_EQ, token.NAME,
		token.NEWLINE, token.EOF,
	}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("token[%d] = %s, want %s", i, got[i], want[i])
		}
	}
}
