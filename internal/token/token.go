package token

import "fmt"

type TokenType string

type Token struct {
	Type    TokenType
	Lexeme  string
	Literal any
	Line    int
	Column  int
}

func (t Token) String() string {
	return fmt.Sprintf("%s(%q)@%d:%d", t.Type, t.Lexeme, t.Line, t.Column)
}

const (
	ILLEGAL TokenType = "ILLEGAL"
	EOF     TokenType = "EOF"

	NEWLINE TokenType = "NEWLINE"
	INDENT  TokenType = "INDENT"
	DEDENT  TokenType = "DEDENT"

	NAME   TokenType = "NAME"
	INT    TokenType = "INT"
	FLOAT  TokenType = "FLOAT"
	STRING TokenType = "STRING"
	BYTES  TokenType = "BYTES"

	// Operators
	PLUS       TokenType = "+"
	MINUS      TokenType = "-"
	ASTERISK   TokenType = "*"
	POWER      TokenType = "**"
	SLASH      TokenType = "/"
	FLOOR_DIV  TokenType = "//"
	PERCENT    TokenType = "%"
	AT         TokenType = "@"
	PIPE       TokenType = "|"
	AMPERSAND  TokenType = "&"
	CARET      TokenType = "^"
	TILDE      TokenType = "~"
	LSHIFT     TokenType = "<<"
	RSHIFT     TokenType = ">>"
	LT         TokenType = "<"
	GT         TokenType = ">"
	LTE        TokenType = "<="
	GTE        TokenType = ">="
	EQ         TokenType = "=="
	NOT_EQ     TokenType = "!="
	ASSIGN     TokenType = "="
	AUG_ASSIGN TokenType = "AUG_ASSIGN" // +=, -=, ... (Lexeme holds the operator)
	WALRUS     TokenType = ":="
	ARROW      TokenType = "->"
	DOT        TokenType = "."
	ELLIPSIS   TokenType = "..."
	COMMA      TokenType = ","
	COLON      TokenType = ":"
	SEMICOLON  TokenType = ";"
	LPAREN     TokenType = "("
	RPAREN     TokenType = ")"
	LBRACKET   TokenType = "["
	RBRACKET   TokenType = "]"
	LBRACE     TokenType = "{"
	RBRACE     TokenType = "}"

	// Keywords
	DEF      TokenType = "def"
	CLASS    TokenType = "class"
	RETURN   TokenType = "return"
	PASS     TokenType = "pass"
	IF       TokenType = "if"
	ELIF     TokenType = "elif"
	ELSE     TokenType = "else"
	FOR      TokenType = "for"
	IN       TokenType = "in"
	WHILE    TokenType = "while"
	WITH     TokenType = "with"
	AS       TokenType = "as"
	IMPORT   TokenType = "import"
	FROM     TokenType = "from"
	NONE     TokenType = "None"
	TRUE     TokenType = "True"
	FALSE    TokenType = "False"
	AND      TokenType = "and"
	OR       TokenType = "or"
	NOT      TokenType = "not"
	IS       TokenType = "is"
	LAMBDA   TokenType = "lambda"
	TRY      TokenType = "try"
	EXCEPT   TokenType = "except"
	FINALLY  TokenType = "finally"
	RAISE    TokenType = "raise"
	ASSERT   TokenType = "assert"
	BREAK    TokenType = "break"
	CONTINUE TokenType = "continue"
	YIELD    TokenType = "yield"
	GLOBAL   TokenType = "global"
	NONLOCAL TokenType = "nonlocal"
	DEL      TokenType = "del"
	ASYNC    TokenType = "async"
	AWAIT    TokenType = "await"
)

var keywords = map[string]TokenType{
	"def":      DEF,
	"class":    CLASS,
	"return":   RETURN,
	"pass":     PASS,
	"if":       IF,
	"elif":     ELIF,
	"else":     ELSE,
	"for":      FOR,
	"in":       IN,
	"while":    WHILE,
	"with":     WITH,
	"as":       AS,
	"import":   IMPORT,
	"from":     FROM,
	"None":     NONE,
	"True":     TRUE,
	"False":    FALSE,
	"and":      AND,
	"or":       OR,
	"not":      NOT,
	"is":       IS,
	"lambda":   LAMBDA,
	"try":      TRY,
	"except":   EXCEPT,
	"finally":  FINALLY,
	"raise":    RAISE,
	"assert":   ASSERT,
	"break":    BREAK,
	"continue": CONTINUE,
	"yield":    YIELD,
	"global":   GLOBAL,
	"nonlocal": NONLOCAL,
	"del":      DEL,
	"async":    ASYNC,
	"await":    AWAIT,
}

// LookupIdent returns the keyword type for ident, or NAME.
func LookupIdent(ident string) TokenType {
	if tok, ok := keywords[ident]; ok {
		return tok
	}
	return NAME
}
