package inference

import (
	"github.com/funvibe/hintinfer/internal/ast"
	"github.com/funvibe/hintinfer/internal/config"
	"github.com/funvibe/hintinfer/internal/lazy"
	"github.com/funvibe/hintinfer/internal/memo"
	"github.com/funvibe/hintinfer/internal/values"
)

// evalNode infers the values of an expression in ctx. Every evaluation is
// memoized per (context, node) and recursion-guarded, so cyclic
// definitions such as `a = b; b = a` terminate with the empty set.
func (s *State) evalNode(ctx Context, node ast.Expr) values.ValueSet {
	if node == nil || s.exhausted() {
		return values.NoValues
	}
	return memo.Guard(s.cache, memo.On("eval", ctx, node), values.NoValues, func() values.ValueSet {
		return s.evalExpr(ctx, node)
	})
}

func (s *State) evalExpr(ctx Context, node ast.Expr) values.ValueSet {
	switch n := node.(type) {
	case *ast.Name:
		return s.evalIdentifier(ctx, n)
	case *ast.Constant, *ast.Num, *ast.Str, *ast.Ellipsis:
		return s.evalLiteral(n)
	case *ast.Attribute:
		return ctx.Eval(n.X).Attr(n.Attr.Value)
	case *ast.Subscript:
		return s.evalSubscript(ctx, n)
	case *ast.Call:
		return s.evalCall(ctx, n)
	case *ast.Tuple:
		return values.NewSet(s.sequence(ctx, config.TupleClassName, n, n.Elts))
	case *ast.List:
		return values.NewSet(s.sequence(ctx, config.ListClassName, n, n.Elts))
	case *ast.Set:
		return values.NewSet(s.sequence(ctx, config.SetClassName, n, n.Elts))
	case *ast.Dict:
		return values.NewSet(s.dict(ctx, n))
	case *ast.Comprehension:
		return values.NewSet(s.comprehension(ctx, n))
	case *ast.Lambda:
		return values.NewSet(s.lambda(ctx, n))
	case *ast.IfExp:
		return lazy.Merge(lazy.NewTree(ctx, n.Body), lazy.NewTree(ctx, n.Else)).Infer()
	case *ast.Unary:
		return s.evalUnary(ctx, n)
	case *ast.Binary:
		return s.evalBinary(ctx, n)
	case *ast.Starred:
		return ctx.Eval(n.X)
	case *ast.Await, *ast.Yield, *ast.Slice:
		return values.NoValues
	}
	s.debugf("cannot evaluate %T", node)
	return values.NoValues
}
