package inference

import (
	"strings"

	"github.com/funvibe/hintinfer/internal/ast"
	"github.com/funvibe/hintinfer/internal/native"
	"github.com/funvibe/hintinfer/internal/values"
)

// evalSubscript handles indexing, slicing and generic parametrization.
func (s *State) evalSubscript(ctx Context, n *ast.Subscript) values.ValueSet {
	if len(n.Index) == 1 {
		if _, ok := n.Index[0].(*ast.Slice); ok {
			return ctx.Eval(n.X).Map(func(v values.Value) values.ValueSet {
				if kind := v.ArrayType(); kind != "" && kind != "dict" {
					return values.NewSet(v)
				}
				return v.GetItem(nil)
			})
		}
	}
	var key any
	if len(n.Index) == 1 {
		key = literalKey(n.Index[0])
	}
	return ctx.Eval(n.X).Map(func(v values.Value) values.ValueSet {
		switch c := v.(type) {
		case *ClassValue:
			if c.inTyping() {
				return s.typingGetItem(ctx, c, n.Index)
			}
			if len(c.TypeVars()) > 0 {
				given := make([]values.ValueSet, len(n.Index))
				for i, idx := range n.Index {
					given[i] = s.inferAnnotation(ctx, idx)
				}
				return values.NewSet(s.annotatedClass(c, given))
			}
			return values.NoValues
		case *native.Class:
			if s.Config.BuiltinGenerics() {
				if generic, ok := s.typingClass(builtinGeneric(c.Name())); ok {
					return s.typingGetItem(ctx, generic, n.Index)
				}
			}
			return values.NoValues
		}
		return v.GetItem(key)
	})
}

// builtinGeneric names the generic reference class standing for a builtin
// container in annotations, or "".
func builtinGeneric(name string) string {
	switch name {
	case "list", "set", "tuple", "dict", "type":
		return strings.ToUpper(name[:1]) + name[1:]
	case "frozenset":
		return "Set"
	}
	return ""
}
