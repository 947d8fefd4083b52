package inference

import (
	"github.com/funvibe/hintinfer/internal/ast"
	"github.com/funvibe/hintinfer/internal/config"
	"github.com/funvibe/hintinfer/internal/values"
)

func (s *State) evalLiteral(node ast.Expr) values.ValueSet {
	switch n := node.(type) {
	case *ast.Constant:
		switch n.Value {
		case "True":
			return values.NewSet(s.Natives.ConstantOf(true))
		case "False":
			return values.NewSet(s.Natives.ConstantOf(false))
		}
		return values.NewSet(s.Natives.ConstantOf(nil))
	case *ast.Num:
		return values.NewSet(s.Natives.ConstantOf(n.Value))
	case *ast.Str:
		if n.Bytes {
			return values.NewSet(s.Natives.Constant(config.BytesClassName, n.Value))
		}
		return values.NewSet(s.Natives.Constant(config.StrClassName, n.Value))
	case *ast.Ellipsis:
		return values.NewSet(s.Natives.Constant("ellipsis", nil))
	}
	return values.NoValues
}

// literalKey returns the constant a subscript index evaluates to, if it is
// a plain int or str literal.
func literalKey(node ast.Expr) any {
	switch n := node.(type) {
	case *ast.Num:
		if i, ok := n.Value.(int64); ok {
			return i
		}
	case *ast.Str:
		if !n.Bytes {
			return n.Value
		}
	case *ast.Unary:
		if num, ok := n.X.(*ast.Num); ok && n.Op == "-" {
			if i, ok := num.Value.(int64); ok {
				return -i
			}
		}
	}
	return nil
}
