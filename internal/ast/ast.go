// Package ast declares the syntax tree of the analyzed language. Nodes keep
// a start position; parents are not linked, so a freestanding expression
// parsed from a string is as usable as one owned by a module.
package ast

// Pos is a source position. Line is 1-based, Column is 1-based.
type Pos struct {
	Line   int
	Column int
}

// Loc is embedded by every node.
type Loc struct {
	Start Pos
}

func (l *Loc) Position() Pos { return l.Start }
func (l *Loc) shift(lines int) {
	l.Start.Line += lines
}

// Node is the base interface for all AST nodes.
type Node interface {
	Position() Pos
	shift(lines int)
}

// Expr is a Node that represents an expression.
type Expr interface {
	Node
	exprNode()
}

// Stmt is a Node that represents a statement.
type Stmt interface {
	Node
	stmtNode()
	// TrailingComment returns the comment following the statement on the
	// same line (for compound statements: the header line), including '#'.
	TrailingComment() string
}

// Module is the root node of every tree the parser produces.
type Module struct {
	Loc
	Name  string
	Body  []Stmt
	Lines int // number of source lines
}

// ---- Expressions ----

type Name struct {
	Loc
	Value string
}

// Constant is None, True or False.
type Constant struct {
	Loc
	Value string
}

type Ellipsis struct {
	Loc
}

type Str struct {
	Loc
	Value string
	Bytes bool
	Raw   string // source text including quotes and prefix
}

type Num struct {
	Loc
	Value any // int64 or float64
	Raw   string
}

type Attribute struct {
	Loc
	X    Expr
	Attr *Name
}

// Subscript is X[Index...]. A subscript list `a[b, c]` has two indices.
type Subscript struct {
	Loc
	X     Expr
	Index []Expr
}

// Slice is a slice inside a subscript, `lo:hi:step`.
type Slice struct {
	Loc
	Lower, Upper, Step Expr
}

type Arg struct {
	Loc
	Keyword *Name // nil for positional arguments
	Star    int   // 1 for *x, 2 for **x
	Value   Expr
}

type Call struct {
	Loc
	Fun  Expr
	Args []*Arg
}

type Tuple struct {
	Loc
	Elts   []Expr
	Parens bool
}

type List struct {
	Loc
	Elts []Expr
}

type Set struct {
	Loc
	Elts []Expr
}

// Dict is a dict display. A nil key marks a `**mapping` entry.
type Dict struct {
	Loc
	Keys   []Expr
	Values []Expr
}

// Starred is `*x` inside a display or an assignment target.
type Starred struct {
	Loc
	X Expr
}

type Unary struct {
	Loc
	Op string
	X  Expr
}

type Binary struct {
	Loc
	Op   string
	X, Y Expr
}

// IfExp is `Body if Cond else Else`.
type IfExp struct {
	Loc
	Body, Cond, Else Expr
}

type Lambda struct {
	Loc
	Params []*Param
	Body   Expr
}

// Comprehension covers list/set/dict comprehensions and generator
// expressions. Kind is "list", "set", "dict" or "generator".
type Comprehension struct {
	Loc
	Kind   string
	Elt    Expr
	Value  Expr // dict comprehensions only
	Target Expr
	Iter   Expr
	Ifs    []Expr
}

type Yield struct {
	Loc
	Value Expr
	From  bool
}

type Await struct {
	Loc
	X Expr
}

func (*Name) exprNode()          {}
func (*Constant) exprNode()      {}
func (*Ellipsis) exprNode()      {}
func (*Str) exprNode()           {}
func (*Num) exprNode()           {}
func (*Attribute) exprNode()     {}
func (*Subscript) exprNode()     {}
func (*Slice) exprNode()         {}
func (*Call) exprNode()          {}
func (*Tuple) exprNode()         {}
func (*List) exprNode()          {}
func (*Set) exprNode()           {}
func (*Dict) exprNode()          {}
func (*Starred) exprNode()       {}
func (*Unary) exprNode()         {}
func (*Binary) exprNode()        {}
func (*IfExp) exprNode()         {}
func (*Lambda) exprNode()        {}
func (*Comprehension) exprNode() {}
func (*Yield) exprNode()         {}
func (*Await) exprNode()         {}

// ---- Statements ----

// Comment is embedded by statements to carry their trailing comment.
type Comment struct {
	Text string
}

func (c *Comment) TrailingComment() string { return c.Text }

// SetTrailingComment attaches text as the trailing comment.
func (c *Comment) SetTrailingComment(text string) { c.Text = text }

// Param is a declared parameter. Star is 1 for *args, 2 for **kwargs.
type Param struct {
	Loc
	Name       *Name
	Annotation Expr
	Default    Expr
	Star       int
}

type FuncDef struct {
	Loc
	Comment
	Name       *Name
	Params     []*Param
	Returns    Expr
	Body       []Stmt
	Decorators []Expr
	Async      bool
}

type ClassDef struct {
	Loc
	Comment
	Name       *Name
	Bases      []*Arg
	Body       []Stmt
	Decorators []Expr
}

type Return struct {
	Loc
	Comment
	Value Expr
}

// Assign is `t1 = t2 = value`.
type Assign struct {
	Loc
	Comment
	Targets []Expr
	Value   Expr
}

// AnnAssign is `target: annotation [= value]`.
type AnnAssign struct {
	Loc
	Comment
	Target     Expr
	Annotation Expr
	Value      Expr
}

type AugAssign struct {
	Loc
	Comment
	Target Expr
	Op     string
	Value  Expr
}

type ExprStmt struct {
	Loc
	Comment
	X Expr
}

// Simple is a statement without operands: pass, break, continue.
type Simple struct {
	Loc
	Comment
	Keyword string
}

type Alias struct {
	Loc
	Name   string // dotted name
	AsName *Name
}

// Bound returns the name the alias binds in the importing scope.
func (a *Alias) Bound() string {
	if a.AsName != nil {
		return a.AsName.Value
	}
	for i := 0; i < len(a.Name); i++ {
		if a.Name[i] == '.' {
			return a.Name[:i]
		}
	}
	return a.Name
}

type Import struct {
	Loc
	Comment
	Names []*Alias
}

type ImportFrom struct {
	Loc
	Comment
	Module string
	Level  int
	Names  []*Alias // a single "*" alias for star imports
}

type For struct {
	Loc
	Comment
	Target Expr
	Iter   Expr
	Body   []Stmt
	Else   []Stmt
	Async  bool
}

type While struct {
	Loc
	Comment
	Cond Expr
	Body []Stmt
	Else []Stmt
}

type WithItem struct {
	Loc
	Context Expr
	Target  Expr // nil without `as`
}

type With struct {
	Loc
	Comment
	Items []*WithItem
	Body  []Stmt
	Async bool
}

type If struct {
	Loc
	Comment
	Cond Expr
	Body []Stmt
	Else []Stmt
}

type ExceptHandler struct {
	Loc
	Type Expr
	Name *Name
	Body []Stmt
}

type Try struct {
	Loc
	Comment
	Body     []Stmt
	Handlers []*ExceptHandler
	Else     []Stmt
	Finally  []Stmt
}

type Raise struct {
	Loc
	Comment
	Exc   Expr
	Cause Expr
}

type Assert struct {
	Loc
	Comment
	Test Expr
	Msg  Expr
}

// Names covers global, nonlocal and del.
type Names struct {
	Loc
	Comment
	Keyword string
	Targets []Expr
}

func (*FuncDef) stmtNode()    {}
func (*ClassDef) stmtNode()   {}
func (*Return) stmtNode()     {}
func (*Assign) stmtNode()     {}
func (*AnnAssign) stmtNode()  {}
func (*AugAssign) stmtNode()  {}
func (*ExprStmt) stmtNode()   {}
func (*Simple) stmtNode()     {}
func (*Import) stmtNode()     {}
func (*ImportFrom) stmtNode() {}
func (*For) stmtNode()        {}
func (*While) stmtNode()      {}
func (*With) stmtNode()       {}
func (*If) stmtNode()         {}
func (*Try) stmtNode()        {}
func (*Raise) stmtNode()      {}
func (*Assert) stmtNode()     {}
func (*Names) stmtNode()      {}
