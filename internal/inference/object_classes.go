package inference

import (
	"fmt"
	"iter"

	"github.com/funvibe/hintinfer/internal/ast"
	"github.com/funvibe/hintinfer/internal/config"
	"github.com/funvibe/hintinfer/internal/lazy"
	"github.com/funvibe/hintinfer/internal/memo"
	"github.com/funvibe/hintinfer/internal/values"
)

// ClassValue is a class defined in analyzed source. It is also the
// context of its own body.
type ClassValue struct {
	values.Base
	state  *State
	parent Context
	node   *ast.ClassDef
}

// class returns the class value of node defined in parent; repeated
// requests yield the identical value.
func (s *State) class(parent Context, node *ast.ClassDef) *ClassValue {
	return memo.Construct(s.cache, memo.On("class", parent, node), func() *ClassValue {
		return &ClassValue{state: s, parent: parent, node: node}
	})
}

func (c *ClassValue) Kind() values.Kind { return values.KindClass }
func (c *ClassValue) Name() string      { return c.node.Name.Value }
func (c *ClassValue) Hash() string      { return fmt.Sprintf("class:%s@%p", c.node.Name.Value, c) }
func (c *ClassValue) String() string    { return fmt.Sprintf("<class %s>", c.node.Name.Value) }

// Node returns the class definition.
func (c *ClassValue) Node() *ast.ClassDef { return c.node }

// Bases evaluates the positional base class expressions.
func (c *ClassValue) Bases() values.ValueSet {
	return memo.Guard(c.state.cache, memo.On("bases", c), values.NoValues, func() values.ValueSet {
		var sets []values.ValueSet
		for _, base := range c.node.Bases {
			if base.Keyword == nil && base.Star == 0 {
				sets = append(sets, c.parent.Eval(base.Value))
			}
		}
		return values.FromSets(sets...)
	})
}

// TypeVars lists the type variables the class declares through its bases,
// in order of first occurrence.
func (c *ClassValue) TypeVars() []*TypeVar {
	return memo.Collect(c.state.cache, memo.On("class-type-vars", c), func() iter.Seq[*TypeVar] {
		return func(yield func(*TypeVar) bool) {
			seen := map[string]bool{}
			for _, base := range c.node.Bases {
				if base.Keyword != nil || base.Star != 0 {
					continue
				}
				for _, tv := range c.state.findTypeVars(c.parent, base.Value) {
					if seen[tv.name] {
						continue
					}
					seen[tv.name] = true
					if !yield(tv) {
						return
					}
				}
			}
		}
	})
}

// inTyping reports whether the class belongs to the generic-types
// reference module.
func (c *ClassValue) inTyping() bool {
	return c.state.typing != nil && c.Module() == c.state.typing
}

func (c *ClassValue) Attr(name string) values.ValueSet {
	return memo.Guard(c.state.cache, memo.On("class-attr", c, name), values.NoValues, func() values.ValueSet {
		if vs, ok := c.Lookup(name); ok {
			return vs
		}
		return c.Bases().Attr(name)
	})
}

func (c *ClassValue) Call(values.Arguments) values.ValueSet {
	return values.NewSet(c.state.instance(c))
}

func (c *ClassValue) ExecuteAnnotation() values.ValueSet {
	return values.NewSet(c.state.instance(c))
}

func (c *ClassValue) Class() values.ValueSet {
	if t, ok := c.state.Natives.Class(config.TypeClassName); ok {
		return values.NewSet(t)
	}
	return values.NoValues
}

// Methods returns the functions defined in the class body, in source order.
func (c *ClassValue) Methods() []*FunctionValue {
	var out []*FunctionValue
	for _, stmt := range c.node.Body {
		if def, ok := stmt.(*ast.FuncDef); ok {
			out = append(out, c.state.function(c, def))
		}
	}
	return out
}

func (c *ClassValue) State() *State             { return c.state }
func (c *ClassValue) Parent() Context           { return c.parent }
func (c *ClassValue) Module() *ModuleValue      { return c.parent.Module() }
func (c *ClassValue) Predefined() lazy.Bindings { return nil }
func (c *ClassValue) classBody()                {}

func (c *ClassValue) Lookup(name string) (values.ValueSet, bool) {
	return c.state.scopeLookup(c, c.node.Body, name)
}

func (c *ClassValue) TypeVarBinding(string) (values.ValueSet, bool) {
	return values.NoValues, false
}

func (c *ClassValue) Eval(node ast.Expr) values.ValueSet { return c.state.evalNode(c, node) }

func (c *ClassValue) EvalWith(node ast.Expr, predefined lazy.Bindings) values.ValueSet {
	return evalWith(c, node, predefined)
}

// Instance is an object of a tree class.
type Instance struct {
	values.Base
	class *ClassValue
}

func (s *State) instance(c *ClassValue) *Instance {
	return memo.Construct(s.cache, memo.On("instance", c), func() *Instance {
		return &Instance{class: c}
	})
}

func (i *Instance) Kind() values.Kind { return values.KindInstance }
func (i *Instance) Name() string      { return i.class.Name() }
func (i *Instance) Hash() string      { return "instance:" + i.class.Hash() }
func (i *Instance) String() string    { return fmt.Sprintf("<%s instance>", i.class.Name()) }

func (i *Instance) Class() values.ValueSet { return values.NewSet(i.class) }

func (i *Instance) Attr(name string) values.ValueSet {
	return bindMethods(i, i.class.Attr(name))
}

func (i *Instance) Call(args values.Arguments) values.ValueSet {
	return i.Attr("__call__").Call(args)
}

func (i *Instance) GetItem(key any) values.ValueSet {
	return i.Attr("__getitem__").Call(keyArguments(i.class.state, key))
}

func (i *Instance) Iterate() []values.Lazy {
	return iterateProtocol(i.class.state, i)
}

// bindMethods binds tree functions found on a class to the receiver.
func bindMethods(receiver values.Value, attrs values.ValueSet) values.ValueSet {
	return attrs.Map(func(v values.Value) values.ValueSet {
		if fn, ok := v.(*FunctionValue); ok {
			return values.NewSet(&BoundMethod{receiver: receiver, fn: fn})
		}
		return values.NewSet(v)
	})
}

// iterateProtocol iterates an object through __iter__ and __next__.
func iterateProtocol(s *State, v values.Value) []values.Lazy {
	return memo.Collect(s.cache, memo.On("iterate", v), func() iter.Seq[values.Lazy] {
		return func(yield func(values.Lazy) bool) {
			for it := range v.Attr("__iter__").Call(noArguments).All() {
				if elems := it.Iterate(); elems != nil {
					for _, e := range elems {
						if !yield(e) {
							return
						}
					}
					continue
				}
				next := it.Attr("__next__").Call(noArguments)
				if !next.Empty() && !yield(lazy.NewKnownSet(next, lazy.Arity(0, values.Unbounded))) {
					return
				}
			}
		}
	})
}
