package ast

// Children returns the direct child nodes of n in source order.
func Children(n Node) []Node {
	var out []Node
	add := func(nodes ...Node) {
		for _, c := range nodes {
			if c != nil && !isNilNode(c) {
				out = append(out, c)
			}
		}
	}
	addExprs := func(es []Expr) {
		for _, e := range es {
			add(e)
		}
	}
	addStmts := func(ss []Stmt) {
		for _, s := range ss {
			add(s)
		}
	}

	switch n := n.(type) {
	case *Module:
		addStmts(n.Body)
	case *Attribute:
		add(n.X, n.Attr)
	case *Subscript:
		add(n.X)
		addExprs(n.Index)
	case *Slice:
		add(n.Lower, n.Upper, n.Step)
	case *Arg:
		add(n.Keyword, n.Value)
	case *Call:
		add(n.Fun)
		for _, a := range n.Args {
			add(a)
		}
	case *Tuple:
		addExprs(n.Elts)
	case *List:
		addExprs(n.Elts)
	case *Set:
		addExprs(n.Elts)
	case *Dict:
		for i := range n.Values {
			add(n.Keys[i], n.Values[i])
		}
	case *Starred:
		add(n.X)
	case *Unary:
		add(n.X)
	case *Binary:
		add(n.X, n.Y)
	case *IfExp:
		add(n.Body, n.Cond, n.Else)
	case *Lambda:
		for _, p := range n.Params {
			add(p)
		}
		add(n.Body)
	case *Comprehension:
		add(n.Elt, n.Value, n.Target, n.Iter)
		addExprs(n.Ifs)
	case *Yield:
		add(n.Value)
	case *Await:
		add(n.X)
	case *Param:
		add(n.Name, n.Annotation, n.Default)
	case *FuncDef:
		addExprs(n.Decorators)
		add(n.Name)
		for _, p := range n.Params {
			add(p)
		}
		add(n.Returns)
		addStmts(n.Body)
	case *ClassDef:
		addExprs(n.Decorators)
		add(n.Name)
		for _, b := range n.Bases {
			add(b)
		}
		addStmts(n.Body)
	case *Return:
		add(n.Value)
	case *Assign:
		addExprs(n.Targets)
		add(n.Value)
	case *AnnAssign:
		add(n.Target, n.Annotation, n.Value)
	case *AugAssign:
		add(n.Target, n.Value)
	case *ExprStmt:
		add(n.X)
	case *Alias:
		add(n.AsName)
	case *Import:
		for _, a := range n.Names {
			add(a)
		}
	case *ImportFrom:
		for _, a := range n.Names {
			add(a)
		}
	case *For:
		add(n.Target, n.Iter)
		addStmts(n.Body)
		addStmts(n.Else)
	case *While:
		add(n.Cond)
		addStmts(n.Body)
		addStmts(n.Else)
	case *WithItem:
		add(n.Context, n.Target)
	case *With:
		for _, it := range n.Items {
			add(it)
		}
		addStmts(n.Body)
	case *If:
		add(n.Cond)
		addStmts(n.Body)
		addStmts(n.Else)
	case *ExceptHandler:
		add(n.Type, n.Name)
		addStmts(n.Body)
	case *Try:
		addStmts(n.Body)
		for _, h := range n.Handlers {
			add(h)
		}
		addStmts(n.Else)
		addStmts(n.Finally)
	case *Raise:
		add(n.Exc, n.Cause)
	case *Assert:
		add(n.Test, n.Msg)
	case *Names:
		addExprs(n.Targets)
	}
	return out
}

// isNilNode catches typed nil pointers stored in interfaces.
func isNilNode(n Node) bool {
	switch v := n.(type) {
	case *Name:
		return v == nil
	case *Param:
		return v == nil
	case *Arg:
		return v == nil
	}
	return false
}

// Inspect traverses the tree depth-first. If fn returns false the children
// of that node are skipped.
func Inspect(n Node, fn func(Node) bool) {
	if n == nil || !fn(n) {
		return
	}
	for _, c := range Children(n) {
		Inspect(c, fn)
	}
}

// Relocate moves a freestanding fragment so its first line is line. Used to
// give nodes parsed from strings a real position in the originating file.
func Relocate(n Node, line int) {
	offset := line - n.Position().Line
	if offset == 0 {
		return
	}
	Inspect(n, func(c Node) bool {
		c.shift(offset)
		return true
	})
}

// ParamIndex returns the position of p among fn's parameters, or -1.
func (fn *FuncDef) ParamIndex(p *Param) int {
	for i, q := range fn.Params {
		if q == p {
			return i
		}
	}
	return -1
}

// Param returns the parameter named name.
func (fn *FuncDef) Param(name string) *Param {
	for _, p := range fn.Params {
		if p.Name.Value == name {
			return p
		}
	}
	return nil
}
