package inference

import (
	"fmt"
	"iter"
	"strings"

	"github.com/funvibe/hintinfer/internal/ast"
	"github.com/funvibe/hintinfer/internal/config"
	"github.com/funvibe/hintinfer/internal/lazy"
	"github.com/funvibe/hintinfer/internal/memo"
	"github.com/funvibe/hintinfer/internal/values"
)

// TypeVar is a type variable created by calling TypeVar of the
// generic-types namespace.
type TypeVar struct {
	values.Base
	name        string
	bound       values.ValueSet
	constraints []values.ValueSet
	hash        string
}

func (s *State) typeVar(name string, bound values.ValueSet, constraints []values.ValueSet) *TypeVar {
	parts := make([]string, len(constraints))
	for i, c := range constraints {
		parts[i] = c.Hash()
	}
	hash := fmt.Sprintf("typevar:%s<%s|%s>", name, bound.Hash(), strings.Join(parts, ","))
	return memo.Construct(s.cache, memo.On("typevar", hash), func() *TypeVar {
		return &TypeVar{name: name, bound: bound, constraints: constraints, hash: hash}
	})
}

func (t *TypeVar) Kind() values.Kind { return values.KindTypeVar }
func (t *TypeVar) Name() string      { return t.name }
func (t *TypeVar) Hash() string      { return t.hash }
func (t *TypeVar) String() string    { return fmt.Sprintf("<TypeVar %s>", t.name) }

// ExecuteAnnotation of a free type variable yields its bound or its
// constraints, nothing when it has neither.
func (t *TypeVar) ExecuteAnnotation() values.ValueSet {
	if !t.bound.Empty() {
		return t.bound.ExecuteAnnotation()
	}
	return values.FromSets(t.constraints...).ExecuteAnnotation()
}

// AnnotatedClass is a generic class with its type parameters given, as in
// Iterable[int]. It is also the context of the class body in which the
// class's type variables are substituted.
type AnnotatedClass struct {
	values.Base
	state *State
	class *ClassValue
	given []values.ValueSet
}

func (s *State) annotatedClass(class *ClassValue, given []values.ValueSet) *AnnotatedClass {
	hashes := make([]string, len(given))
	for i, g := range given {
		hashes[i] = g.Hash()
	}
	return memo.Construct(s.cache, memo.On("annotated", class, strings.Join(hashes, ",")), func() *AnnotatedClass {
		return &AnnotatedClass{state: s, class: class, given: given}
	})
}

func (a *AnnotatedClass) Kind() values.Kind { return values.KindAnnotatedClass }
func (a *AnnotatedClass) Name() string      { return a.class.Name() }

func (a *AnnotatedClass) Hash() string {
	hashes := make([]string, len(a.given))
	for i, g := range a.given {
		hashes[i] = g.Hash()
	}
	return fmt.Sprintf("annotated:%s[%s]", a.class.Hash(), strings.Join(hashes, ","))
}

func (a *AnnotatedClass) String() string {
	parts := make([]string, len(a.given))
	for i, g := range a.given {
		parts[i] = g.String()
	}
	return fmt.Sprintf("<class %s[%s]>", a.class.Name(), strings.Join(parts, ", "))
}

// GivenTypes returns the type parameters in declaration order.
func (a *AnnotatedClass) GivenTypes() []values.ValueSet { return a.given }

// Generic returns the unparametrized class.
func (a *AnnotatedClass) Generic() *ClassValue { return a.class }

func (a *AnnotatedClass) Call(values.Arguments) values.ValueSet {
	return values.NewSet(a.state.annotatedInstance(a))
}

func (a *AnnotatedClass) ExecuteAnnotation() values.ValueSet {
	return values.NewSet(a.state.annotatedInstance(a))
}

func (a *AnnotatedClass) Class() values.ValueSet { return a.class.Class() }

// Attr looks name up along the parametrized ancestors, so inherited
// methods see this class's type parameters.
func (a *AnnotatedClass) Attr(name string) values.ValueSet {
	for _, v := range a.mro() {
		switch c := v.(type) {
		case *AnnotatedClass:
			if vs, ok := c.Lookup(name); ok {
				return vs
			}
		default:
			if vs := c.Attr(name); !vs.Empty() {
				return vs
			}
		}
	}
	return values.NoValues
}

// mro lists the class followed by its ancestors. Generic ancestors come
// back parametrized with this class's type parameters substituted.
func (a *AnnotatedClass) mro() []values.Value {
	return memo.Collect(a.state.cache, memo.On("annotated-mro", a), func() iter.Seq[values.Value] {
		return func(yield func(values.Value) bool) {
			seen := map[string]bool{a.Hash(): true}
			if !yield(a) {
				return
			}
			for _, base := range a.class.node.Bases {
				if base.Keyword != nil || base.Star != 0 {
					continue
				}
				for v := range a.Eval(base.Value).All() {
					ancestors := []values.Value{v}
					if parent, ok := v.(*AnnotatedClass); ok {
						ancestors = parent.mro()
					}
					for _, anc := range ancestors {
						if seen[anc.Hash()] {
							continue
						}
						seen[anc.Hash()] = true
						if !yield(anc) {
							return
						}
					}
				}
			}
		}
	})
}

// ancestor finds the parametrized ancestor with the given name.
func (a *AnnotatedClass) ancestor(name string) (*AnnotatedClass, bool) {
	for _, v := range a.mro() {
		if anc, ok := v.(*AnnotatedClass); ok && anc.Name() == name {
			return anc, true
		}
	}
	return nil, false
}

func (a *AnnotatedClass) State() *State             { return a.state }
func (a *AnnotatedClass) Parent() Context           { return a.class.parent }
func (a *AnnotatedClass) Module() *ModuleValue      { return a.class.Module() }
func (a *AnnotatedClass) Predefined() lazy.Bindings { return nil }
func (a *AnnotatedClass) classBody()                {}

func (a *AnnotatedClass) Lookup(name string) (values.ValueSet, bool) {
	return a.state.scopeLookup(a, a.class.node.Body, name)
}

// TypeVarBinding maps the declared type variables to the given types. A
// Tuple binds its single variable to every given element type.
func (a *AnnotatedClass) TypeVarBinding(name string) (values.ValueSet, bool) {
	tvs := a.class.TypeVars()
	if a.class.Name() == config.TupleName && len(tvs) == 1 && tvs[0].name == name {
		elems, _ := a.tupleElements()
		return values.FromSets(elems...), true
	}
	for i, tv := range tvs {
		if tv.name != name {
			continue
		}
		if i < len(a.given) {
			return a.given[i], true
		}
		return values.NoValues, true
	}
	return values.NoValues, false
}

// tupleElements returns the element annotations of Tuple[...]; variadic
// reports the `Tuple[X, ...]` form.
func (a *AnnotatedClass) tupleElements() (elems []values.ValueSet, variadic bool) {
	for _, g := range a.given {
		if isEllipsis(g) {
			variadic = true
			continue
		}
		elems = append(elems, g)
	}
	return elems, variadic
}

func isEllipsis(set values.ValueSet) bool {
	v, ok := set.Only()
	return ok && v.Kind() == values.KindConstant && v.Name() == "ellipsis"
}

func (a *AnnotatedClass) Eval(node ast.Expr) values.ValueSet { return a.state.evalNode(a, node) }

func (a *AnnotatedClass) EvalWith(node ast.Expr, predefined lazy.Bindings) values.ValueSet {
	return evalWith(a, node, predefined)
}

// AnnotatedInstance is an object of an annotated class.
type AnnotatedInstance struct {
	values.Base
	class *AnnotatedClass
}

func (s *State) annotatedInstance(a *AnnotatedClass) *AnnotatedInstance {
	return memo.Construct(s.cache, memo.On("annotated-instance", a), func() *AnnotatedInstance {
		return &AnnotatedInstance{class: a}
	})
}

func (i *AnnotatedInstance) Kind() values.Kind { return values.KindInstance }
func (i *AnnotatedInstance) Name() string      { return i.class.Name() }
func (i *AnnotatedInstance) Hash() string      { return "instance:" + i.class.Hash() }

func (i *AnnotatedInstance) String() string {
	return fmt.Sprintf("<%s instance>", strings.TrimSuffix(strings.TrimPrefix(i.class.String(), "<class "), ">"))
}

func (i *AnnotatedInstance) Class() values.ValueSet { return values.NewSet(i.class) }

func (i *AnnotatedInstance) Attr(name string) values.ValueSet {
	return bindMethods(i, i.class.Attr(name))
}

func (i *AnnotatedInstance) Call(args values.Arguments) values.ValueSet {
	return i.Attr("__call__").Call(args)
}

func (i *AnnotatedInstance) Iterate() []values.Lazy {
	if i.class.Name() == config.TupleName {
		elems, variadic := i.class.tupleElements()
		out := make([]values.Lazy, len(elems))
		for n, e := range elems {
			if variadic {
				out[n] = lazy.NewKnownSet(e.ExecuteAnnotation(), lazy.Arity(0, values.Unbounded))
			} else {
				out[n] = lazy.NewKnownSet(e.ExecuteAnnotation())
			}
		}
		return out
	}
	if iterable, ok := i.class.ancestor(config.IterableName); ok && len(iterable.given) > 0 {
		return variadic(iterable.given[0].ExecuteAnnotation())
	}
	return iterateProtocol(i.class.state, i)
}

func (i *AnnotatedInstance) MappingItems() (values.ValueSet, values.ValueSet, bool) {
	mapping, ok := i.class.ancestor(config.MappingName)
	if !ok || len(mapping.given) != 2 {
		return values.NoValues, values.NoValues, false
	}
	return mapping.given[0].ExecuteAnnotation(), mapping.given[1].ExecuteAnnotation(), true
}

func (i *AnnotatedInstance) GetItem(key any) values.ValueSet {
	if idx, ok := key.(int64); ok && i.class.Name() == config.TupleName {
		elems, variadic := i.class.tupleElements()
		if !variadic {
			n := int(idx)
			if n < 0 {
				n += len(elems)
			}
			if n >= 0 && n < len(elems) {
				return elems[n].ExecuteAnnotation()
			}
		}
	}
	return i.Attr("__getitem__").Call(keyArguments(i.class.state, key))
}
