package inference

import (
	"github.com/funvibe/hintinfer/internal/ast"
	"github.com/funvibe/hintinfer/internal/values"
)

// evalIdentifier resolves a name and substitutes type variables bound by
// an enclosing annotated class.
func (s *State) evalIdentifier(ctx Context, n *ast.Name) values.ValueSet {
	found := lookupName(ctx, n.Value)
	if found.Empty() {
		s.debugf("name %s not found in %s", n.Value, ctx.Module().Name())
		return found
	}
	return found.Map(func(v values.Value) values.ValueSet {
		if tv, ok := v.(*TypeVar); ok {
			if bound, ok := typeVarBinding(ctx, tv.name); ok {
				return bound
			}
		}
		return values.NewSet(v)
	})
}
