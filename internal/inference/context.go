package inference

import (
	"maps"

	"github.com/funvibe/hintinfer/internal/ast"
	"github.com/funvibe/hintinfer/internal/lazy"
	"github.com/funvibe/hintinfer/internal/values"
)

// Context is an evaluation environment: a scope in the lexical chain plus
// the type-variable substitutions active in it.
type Context interface {
	lazy.Evaluator

	State() *State
	// Parent is the enclosing scope, nil for a module.
	Parent() Context
	Module() *ModuleValue
	// Lookup resolves a name bound directly in this scope.
	Lookup(name string) (values.ValueSet, bool)
	// TypeVarBinding returns the substitution of a type variable set up
	// by this scope, if any.
	TypeVarBinding(name string) (values.ValueSet, bool)
	// Eval infers the values of an expression in this context. The node
	// may be owned by the module or parsed from a string.
	Eval(node ast.Expr) values.ValueSet
}

// classScope marks contexts whose names are invisible from nested
// function bodies.
type classScope interface {
	classBody()
}

// lookupName resolves name along the scope chain and then in the builtins.
func lookupName(ctx Context, name string) values.ValueSet {
	for c := ctx; c != nil; c = c.Parent() {
		if _, isClass := c.(classScope); isClass && c != ctx {
			continue
		}
		if vs, ok := c.Lookup(name); ok {
			return vs
		}
	}
	return ctx.State().Natives.Lookup(name)
}

// typeVarBinding walks the scope chain for a type variable substitution.
func typeVarBinding(ctx Context, name string) (values.ValueSet, bool) {
	for c := ctx; c != nil; c = c.Parent() {
		if vs, ok := c.TypeVarBinding(name); ok {
			return vs, true
		}
	}
	return values.NoValues, false
}

// bindingContext layers names that are already decided (comprehension
// variables) over another context.
type bindingContext struct {
	Context
	names lazy.Bindings
}

func withBindings(ctx Context, names lazy.Bindings) Context {
	if len(names) == 0 {
		return ctx
	}
	if inner, ok := ctx.(*bindingContext); ok {
		merged := maps.Clone(inner.names)
		maps.Copy(merged, names)
		return &bindingContext{Context: inner.Context, names: merged}
	}
	return &bindingContext{Context: ctx, names: names}
}

func (b *bindingContext) Lookup(name string) (values.ValueSet, bool) {
	if vs, ok := b.names[name]; ok {
		return vs, true
	}
	return b.Context.Lookup(name)
}

func (b *bindingContext) Predefined() lazy.Bindings { return b.names }

func (b *bindingContext) Eval(node ast.Expr) values.ValueSet {
	return b.State().evalNode(b, node)
}

func (b *bindingContext) EvalWith(node ast.Expr, predefined lazy.Bindings) values.ValueSet {
	return b.State().evalNode(withBindings(b, predefined), node)
}

// evalWith is the shared EvalWith of the scope contexts.
func evalWith(ctx Context, node ast.Expr, predefined lazy.Bindings) values.ValueSet {
	return ctx.State().evalNode(withBindings(ctx, predefined), node)
}
