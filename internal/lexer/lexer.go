package lexer

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/funvibe/hintinfer/internal/token"
)

const tabSize = 8

type Lexer struct {
	input        string
	position     int  // current position in input (points to current char)
	readPosition int  // current reading position in input (after current char)
	ch           rune // current char under examination
	line         int  // current line number
	column       int  // current column number

	indents     []int
	pending     []token.Token
	depth       int // bracket nesting; newlines inside brackets are joined
	atLineStart bool
	last        token.TokenType
	comments    map[int]string
}

func New(input string) *Lexer {
	l := &Lexer{
		input:       input,
		line:        1,
		column:      0,
		indents:     []int{0},
		atLineStart: true,
		last:        token.NEWLINE,
		comments:    make(map[int]string),
	}
	l.readChar()
	return l
}

// Comments maps a line number to the first comment on that line, including
// the leading '#'.
func (l *Lexer) Comments() map[int]string {
	return l.comments
}

// Tokenize drains the lexer up to and including EOF.
func (l *Lexer) Tokenize() []token.Token {
	var toks []token.Token
	for {
		tok := l.NextToken()
		toks = append(toks, tok)
		if tok.Type == token.EOF {
			return toks
		}
	}
}

func (l *Lexer) readChar() {
	if l.ch == '\n' {
		l.line++
		l.column = 0
	}

	if l.readPosition >= len(l.input) {
		l.ch = 0
		l.position = len(l.input)
		l.readPosition = len(l.input) + 1
		l.column++
		return
	}
	r, w := utf8.DecodeRuneInString(l.input[l.readPosition:])
	l.ch = r
	l.position = l.readPosition
	l.readPosition += w
	l.column++
}

func (l *Lexer) NextToken() token.Token {
	tok := l.next()
	l.last = tok.Type
	return tok
}

func (l *Lexer) next() token.Token {
	if len(l.pending) > 0 {
		tok := l.pending[0]
		l.pending = l.pending[1:]
		return tok
	}

	if l.atLineStart && l.depth == 0 {
		if tok, ok := l.readIndentation(); ok {
			return tok
		}
	}

	l.skipWhitespace()

	if l.ch == 0 {
		return l.finish()
	}

	line, col := l.line, l.column
	simple := func(t token.TokenType, lexeme string) token.Token {
		for range utf8.RuneCountInString(lexeme) {
			l.readChar()
		}
		return token.Token{Type: t, Lexeme: lexeme, Literal: lexeme, Line: line, Column: col}
	}

	switch l.ch {
	case '\n':
		l.readChar()
		l.atLineStart = true
		if l.depth > 0 || l.last == token.NEWLINE {
			return l.next()
		}
		return token.Token{Type: token.NEWLINE, Lexeme: "\n", Line: line, Column: col}
	case '(', '[', '{':
		l.depth++
		return simple(token.TokenType(string(l.ch)), string(l.ch))
	case ')', ']', '}':
		if l.depth > 0 {
			l.depth--
		}
		return simple(token.TokenType(string(l.ch)), string(l.ch))
	case ',':
		return simple(token.COMMA, ",")
	case ';':
		return simple(token.SEMICOLON, ";")
	case '~':
		return simple(token.TILDE, "~")
	case ':':
		if l.peekChar() == '=' {
			return simple(token.WALRUS, ":=")
		}
		return simple(token.COLON, ":")
	case '.':
		if isDigit(l.peekChar()) {
			return l.readNumber()
		}
		if l.peekChar() == '.' && l.peekChar2() == '.' {
			return simple(token.ELLIPSIS, "...")
		}
		return simple(token.DOT, ".")
	case '=':
		if l.peekChar() == '=' {
			return simple(token.EQ, "==")
		}
		return simple(token.ASSIGN, "=")
	case '!':
		if l.peekChar() == '=' {
			return simple(token.NOT_EQ, "!=")
		}
		return simple(token.ILLEGAL, "!")
	case '-':
		if l.peekChar() == '>' {
			return simple(token.ARROW, "->")
		}
		return l.operator(line, col, token.MINUS, "-")
	case '+':
		return l.operator(line, col, token.PLUS, "+")
	case '%':
		return l.operator(line, col, token.PERCENT, "%")
	case '@':
		return l.operator(line, col, token.AT, "@")
	case '|':
		return l.operator(line, col, token.PIPE, "|")
	case '&':
		return l.operator(line, col, token.AMPERSAND, "&")
	case '^':
		return l.operator(line, col, token.CARET, "^")
	case '*':
		if l.peekChar() == '*' {
			return l.operator(line, col, token.POWER, "**")
		}
		return l.operator(line, col, token.ASTERISK, "*")
	case '/':
		if l.peekChar() == '/' {
			return l.operator(line, col, token.FLOOR_DIV, "//")
		}
		return l.operator(line, col, token.SLASH, "/")
	case '<':
		switch l.peekChar() {
		case '<':
			return l.operator(line, col, token.LSHIFT, "<<")
		case '=':
			return simple(token.LTE, "<=")
		}
		return simple(token.LT, "<")
	case '>':
		switch l.peekChar() {
		case '>':
			return l.operator(line, col, token.RSHIFT, ">>")
		case '=':
			return simple(token.GTE, ">=")
		}
		return simple(token.GT, ">")
	case '"', '\'':
		return l.readString("", line, col)
	}

	if isLetter(l.ch) {
		ident := l.readIdentifier()
		if (l.ch == '"' || l.ch == '\'') && isStringPrefix(ident) {
			return l.readString(strings.ToLower(ident), line, col)
		}
		t := token.LookupIdent(ident)
		return token.Token{Type: t, Lexeme: ident, Literal: ident, Line: line, Column: col}
	}
	if isDigit(l.ch) {
		return l.readNumber()
	}

	return simple(token.ILLEGAL, string(l.ch))
}

// operator reads op, or its augmented assignment form op=.
func (l *Lexer) operator(line, col int, t token.TokenType, op string) token.Token {
	for range len(op) {
		l.readChar()
	}
	if l.ch == '=' {
		l.readChar()
		return token.Token{Type: token.AUG_ASSIGN, Lexeme: op + "=", Literal: op, Line: line, Column: col}
	}
	return token.Token{Type: t, Lexeme: op, Literal: op, Line: line, Column: col}
}

// readIndentation measures the indentation of a new logical line and emits
// INDENT/DEDENT tokens. Blank and comment-only lines are skipped.
func (l *Lexer) readIndentation() (token.Token, bool) {
	for {
		width := 0
		for l.ch == ' ' || l.ch == '\t' || l.ch == '\f' {
			if l.ch == '\t' {
				width = (width/tabSize + 1) * tabSize
			} else {
				width++
			}
			l.readChar()
		}
		switch l.ch {
		case '#':
			l.readComment()
			continue
		case '\r':
			l.readChar()
			continue
		case '\n':
			l.readChar()
			continue
		case 0:
			l.atLineStart = false
			return token.Token{}, false
		}

		l.atLineStart = false
		line := l.line
		top := l.indents[len(l.indents)-1]
		switch {
		case width > top:
			l.indents = append(l.indents, width)
			return token.Token{Type: token.INDENT, Line: line, Column: 1}, true
		case width < top:
			for width < l.indents[len(l.indents)-1] {
				l.indents = l.indents[:len(l.indents)-1]
				l.pending = append(l.pending, token.Token{Type: token.DEDENT, Line: line, Column: 1})
			}
			if width != l.indents[len(l.indents)-1] {
				l.pending = append(l.pending, token.Token{Type: token.ILLEGAL, Lexeme: "unindent does not match any outer indentation level", Line: line, Column: 1})
			}
			tok := l.pending[0]
			l.pending = l.pending[1:]
			return tok, true
		}
		return token.Token{}, false
	}
}

// finish closes the last logical line and every open block.
func (l *Lexer) finish() token.Token {
	line, col := l.line, l.column
	if l.last != token.NEWLINE && l.last != token.INDENT && l.last != token.DEDENT && l.last != token.EOF {
		for len(l.indents) > 1 {
			l.indents = l.indents[:len(l.indents)-1]
			l.pending = append(l.pending, token.Token{Type: token.DEDENT, Line: line, Column: col})
		}
		l.pending = append(l.pending, token.Token{Type: token.EOF, Line: line, Column: col})
		return token.Token{Type: token.NEWLINE, Lexeme: "", Line: line, Column: col}
	}
	if len(l.indents) > 1 {
		l.indents = l.indents[:len(l.indents)-1]
		return token.Token{Type: token.DEDENT, Line: line, Column: col}
	}
	return token.Token{Type: token.EOF, Line: line, Column: col}
}

func (l *Lexer) readComment() {
	line := l.line
	start := l.position
	for l.ch != '\n' && l.ch != 0 {
		l.readChar()
	}
	if _, seen := l.comments[line]; !seen {
		l.comments[line] = strings.TrimRight(l.input[start:min(l.position, len(l.input))], "\r")
	}
}

func (l *Lexer) readIdentifier() string {
	position := l.position
	for isLetter(l.ch) || isDigit(l.ch) {
		l.readChar()
	}
	return l.input[position:min(l.position, len(l.input))]
}

func isStringPrefix(ident string) bool {
	switch strings.ToLower(ident) {
	case "r", "u", "b", "f", "br", "rb", "fr", "rf":
		return true
	}
	return false
}

// readString reads a quoted literal starting at the opening quote. prefix
// is the lowercased string prefix (r, b, rb, ...).
func (l *Lexer) readString(prefix string, line, col int) token.Token {
	raw := strings.Contains(prefix, "r")
	quote := l.ch
	triple := l.peekChar() == quote && l.peekChar2() == quote
	start := l.position
	if triple {
		l.readChar()
		l.readChar()
	}
	l.readChar()

	var sb strings.Builder
	for {
		switch {
		case l.ch == 0:
			return token.Token{Type: token.ILLEGAL, Lexeme: l.input[start:], Literal: "unterminated string literal", Line: line, Column: col}
		case l.ch == '\n' && !triple:
			return token.Token{Type: token.ILLEGAL, Lexeme: l.input[start:l.position], Literal: "unterminated string literal", Line: line, Column: col}
		case l.ch == quote && (!triple || (l.peekChar() == quote && l.peekChar2() == quote)):
			if triple {
				l.readChar()
				l.readChar()
			}
			l.readChar()
			lexeme := prefix + l.input[start:min(l.position, len(l.input))]
			typ := token.STRING
			if strings.Contains(prefix, "b") {
				typ = token.BYTES
			}
			return token.Token{Type: typ, Lexeme: lexeme, Literal: sb.String(), Line: line, Column: col}
		case l.ch == '\\':
			l.readChar()
			if raw {
				sb.WriteRune('\\')
				sb.WriteRune(l.ch)
				l.readChar()
				continue
			}
			l.readEscape(&sb)
		default:
			sb.WriteRune(l.ch)
			l.readChar()
		}
	}
}

func (l *Lexer) readEscape(sb *strings.Builder) {
	switch l.ch {
	case 'n':
		sb.WriteByte('\n')
	case 't':
		sb.WriteByte('\t')
	case 'r':
		sb.WriteByte('\r')
	case '0':
		sb.WriteByte(0)
	case '\\', '\'', '"':
		sb.WriteRune(l.ch)
	case '\n':
		// line continuation inside a literal
	case 'x':
		if isHexDigit(l.peekChar()) && isHexDigit(l.peekChar2()) {
			l.readChar()
			hi := l.ch
			l.readChar()
			v, _ := strconv.ParseUint(string([]rune{hi, l.ch}), 16, 8)
			sb.WriteRune(rune(v))
		} else {
			sb.WriteString(`\x`)
		}
	default:
		sb.WriteByte('\\')
		sb.WriteRune(l.ch)
	}
	l.readChar()
}

func (l *Lexer) readNumber() token.Token {
	startLine, startCol := l.line, l.column
	position := l.position
	base := 10
	isFloat := false

	// Check for base prefixes: 0x, 0b, 0o
	if l.ch == '0' {
		switch l.peekChar() {
		case 'x', 'X':
			base = 16
		case 'b', 'B':
			base = 2
		case 'o', 'O':
			base = 8
		}
		if base != 10 {
			l.readChar()
			l.readChar()
		}
	}

	digit := isDigit
	if base == 16 {
		digit = isHexDigit
	}
	for digit(l.ch) || l.ch == '_' {
		l.readChar()
	}

	if base == 10 {
		if l.ch == '.' {
			isFloat = true
			l.readChar()
			for isDigit(l.ch) || l.ch == '_' {
				l.readChar()
			}
		}
		if l.ch == 'e' || l.ch == 'E' {
			isFloat = true
			l.readChar()
			if l.ch == '+' || l.ch == '-' {
				l.readChar()
			}
			for isDigit(l.ch) {
				l.readChar()
			}
		}
		if l.ch == 'j' || l.ch == 'J' {
			isFloat = true
			l.readChar()
		}
	}

	lexeme := l.input[position:min(l.position, len(l.input))]
	text := strings.TrimRight(strings.ReplaceAll(lexeme, "_", ""), "jJ")

	if isFloat {
		val, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return token.Token{Type: token.ILLEGAL, Lexeme: lexeme, Literal: err.Error(), Line: startLine, Column: startCol}
		}
		return token.Token{Type: token.FLOAT, Lexeme: lexeme, Literal: val, Line: startLine, Column: startCol}
	}
	// strconv.ParseInt(s, 0, 64) auto-detects base
	val, err := strconv.ParseInt(text, 0, 64)
	if err != nil {
		// Arbitrary precision integers still have type int.
		return token.Token{Type: token.INT, Lexeme: lexeme, Literal: int64(0), Line: startLine, Column: startCol}
	}
	return token.Token{Type: token.INT, Lexeme: lexeme, Literal: val, Line: startLine, Column: startCol}
}

func isHexDigit(ch rune) bool {
	return isDigit(ch) || ('a' <= ch && ch <= 'f') || ('A' <= ch && ch <= 'F')
}

func isLetter(ch rune) bool {
	return 'a' <= ch && ch <= 'z' || 'A' <= ch && ch <= 'Z' || ch == '_' || (ch >= 0x80 && unicode.IsLetter(ch))
}

func isDigit(ch rune) bool {
	return '0' <= ch && ch <= '9'
}

func (l *Lexer) peekChar() rune {
	if l.readPosition >= len(l.input) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.input[l.readPosition:])
	return r
}

func (l *Lexer) peekChar2() rune {
	if l.readPosition >= len(l.input) {
		return 0
	}
	_, w := utf8.DecodeRuneInString(l.input[l.readPosition:])
	pos2 := l.readPosition + w
	if pos2 >= len(l.input) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.input[pos2:])
	return r
}

func (l *Lexer) skipWhitespace() {
	for {
		for l.ch == ' ' || l.ch == '\t' || l.ch == '\r' || l.ch == '\f' {
			l.readChar()
		}
		switch {
		case l.ch == '#':
			l.readComment()
		case l.ch == '\\' && (l.peekChar() == '\n' || l.peekChar() == '\r'):
			l.readChar()
			if l.ch == '\r' {
				l.readChar()
			}
			l.readChar()
		case l.ch == '\n' && l.depth > 0:
			l.readChar()
		default:
			return
		}
	}
}
