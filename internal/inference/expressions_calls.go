package inference

import (
	"github.com/funvibe/hintinfer/internal/ast"
	"github.com/funvibe/hintinfer/internal/values"
)

func (s *State) evalCall(ctx Context, n *ast.Call) values.ValueSet {
	callee := ctx.Eval(n.Fun)
	if callee.Empty() {
		return values.NoValues
	}
	return callee.Call(&TreeArguments{ctx: ctx, args: n.Args})
}
