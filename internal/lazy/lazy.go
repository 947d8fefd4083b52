// Package lazy holds deferred productions of value sets. Each lazy value
// carries (min, max) unpack-arity bounds used by destructuring assignment.
package lazy

import (
	"fmt"
	"maps"

	"github.com/funvibe/hintinfer/internal/ast"
	"github.com/funvibe/hintinfer/internal/prettyprinter"
	"github.com/funvibe/hintinfer/internal/values"
)

type arity struct {
	min, max int
}

func (a arity) Bounds() (int, int) { return a.min, a.max }

// Option adjusts a lazy value at construction.
type Option func(*arity)

// Arity overrides the default (1, 1) bounds.
func Arity(min, max int) Option {
	return func(a *arity) {
		a.min, a.max = min, max
	}
}

func newArity(opts []Option) arity {
	a := arity{min: 1, max: 1}
	for _, opt := range opts {
		opt(&a)
	}
	return a
}

// Known wraps one already computed value.
type Known struct {
	arity
	Value values.Value
}

func NewKnown(v values.Value, opts ...Option) *Known {
	return &Known{arity: newArity(opts), Value: v}
}

func (k *Known) Infer() values.ValueSet { return values.NewSet(k.Value) }
func (k *Known) String() string         { return fmt.Sprintf("<Known: %s>", k.Value) }

// KnownSet wraps an already computed set.
type KnownSet struct {
	arity
	Set values.ValueSet
}

func NewKnownSet(s values.ValueSet, opts ...Option) *KnownSet {
	return &KnownSet{arity: newArity(opts), Set: s}
}

func (k *KnownSet) Infer() values.ValueSet { return k.Set }
func (k *KnownSet) String() string         { return fmt.Sprintf("<KnownSet: %s>", k.Set) }

// Unknown stands for an expansion whose contents cannot be tracked, such as
// the elements behind `*args`.
type Unknown struct {
	arity
}

func NewUnknown(opts ...Option) *Unknown {
	return &Unknown{arity: newArity(opts)}
}

func (u *Unknown) Infer() values.ValueSet { return values.NoValues }
func (u *Unknown) String() string         { return "<Unknown>" }

// Bindings maps names to values that are already decided in an evaluation
// environment (e.g. the loop variable of a comprehension).
type Bindings map[string]values.ValueSet

// Evaluator is the part of an evaluation context a Tree needs.
type Evaluator interface {
	EvalWith(node ast.Expr, predefined Bindings) values.ValueSet
	Predefined() Bindings
}

// Tree wraps an unevaluated expression together with the context it
// appeared in. The context's predefined names are copied at creation so a
// later change of the environment does not alter the result.
type Tree struct {
	arity
	Context    Evaluator
	Node       ast.Expr
	predefined Bindings
}

func NewTree(ctx Evaluator, node ast.Expr, opts ...Option) *Tree {
	return &Tree{
		arity:      newArity(opts),
		Context:    ctx,
		Node:       node,
		predefined: maps.Clone(ctx.Predefined()),
	}
}

func (t *Tree) Infer() values.ValueSet {
	return t.Context.EvalWith(t.Node, t.predefined)
}

func (t *Tree) String() string { return fmt.Sprintf("<Tree: %s>", prettyprinter.Code(t.Node)) }

// Merged holds alternative branches, e.g. both arms of a conditional,
// without forcing any of them.
type Merged struct {
	Branches []values.Lazy
}

// Merge returns a single lazy value standing for all branches. A single
// branch is returned unchanged.
func Merge(branches ...values.Lazy) values.Lazy {
	if len(branches) == 1 {
		return branches[0]
	}
	return &Merged{Branches: branches}
}

func (m *Merged) Infer() values.ValueSet {
	sets := make([]values.ValueSet, len(m.Branches))
	for i, b := range m.Branches {
		sets[i] = b.Infer()
	}
	return values.FromSets(sets...)
}

// Bounds is the union of the branch bounds.
func (m *Merged) Bounds() (int, int) {
	if len(m.Branches) == 0 {
		return 0, 0
	}
	lo, hi := m.Branches[0].Bounds()
	for _, b := range m.Branches[1:] {
		bmin, bmax := b.Bounds()
		lo = min(lo, bmin)
		hi = max(hi, bmax)
	}
	return lo, hi
}

func (m *Merged) String() string { return fmt.Sprintf("<Merged: %d branches>", len(m.Branches)) }
