package lazy

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/funvibe/hintinfer/internal/ast"
	"github.com/funvibe/hintinfer/internal/values"
)

type atom struct {
	values.Base
	name string
}

func (a atom) Kind() values.Kind { return values.KindInstance }
func (a atom) Name() string      { return a.name }
func (a atom) Hash() string      { return "atom:" + a.name }
func (a atom) String() string    { return a.name }

func set(names ...string) values.ValueSet {
	vs := make([]values.Value, len(names))
	for i, n := range names {
		vs[i] = atom{name: n}
	}
	return values.NewSet(vs...)
}

// scope evaluates a name to its predefined binding and counts evaluations.
type scope struct {
	bindings Bindings
	evals    int
}

func (s *scope) Predefined() Bindings { return s.bindings }

func (s *scope) EvalWith(node ast.Expr, predefined Bindings) values.ValueSet {
	s.evals++
	if name, ok := node.(*ast.Name); ok {
		if v, ok := predefined[name.Value]; ok {
			return v
		}
	}
	return values.NoValues
}

func TestDefaultBounds(t *testing.T) {
	for _, l := range []values.Lazy{
		NewKnown(atom{name: "a"}),
		NewKnownSet(set("a", "b")),
		NewUnknown(),
		NewTree(&scope{}, &ast.Name{Value: "x"}),
	} {
		lo, hi := l.Bounds()
		assert.Equal(t, 1, lo, "%s", l)
		assert.Equal(t, 1, hi, "%s", l)
	}

	lo, hi := NewUnknown(Arity(0, values.Unbounded)).Bounds()
	assert.Equal(t, 0, lo)
	assert.Equal(t, values.Unbounded, hi)
}

func TestKnownValues(t *testing.T) {
	assert.True(t, NewKnown(atom{name: "a"}).Infer().Equal(set("a")))
	assert.True(t, NewKnownSet(set("a", "b")).Infer().Equal(set("a", "b")))
	assert.True(t, NewUnknown().Infer().Empty())
}

func TestTreeIsDeferred(t *testing.T) {
	sc := &scope{bindings: Bindings{"x": set("int")}}
	tree := NewTree(sc, &ast.Name{Value: "x"})
	assert.Equal(t, 0, sc.evals)

	// The bindings are captured when the tree is built.
	sc.bindings["x"] = set("str")
	assert.True(t, tree.Infer().Equal(set("int")))
	assert.Equal(t, 1, sc.evals)
}

func TestMerge(t *testing.T) {
	single := NewKnown(atom{name: "a"})
	assert.Same(t, single, Merge(single))

	merged := Merge(
		NewKnown(atom{name: "a"}),
		NewKnownSet(set("b"), Arity(0, 3)),
		NewKnownSet(set("c"), Arity(2, 2)),
	)
	assert.True(t, merged.Infer().Equal(set("a", "b", "c")))
	lo, hi := merged.Bounds()
	assert.Equal(t, 0, lo)
	assert.Equal(t, 3, hi)

	lo, hi = Merge().Bounds()
	assert.Equal(t, 0, lo)
	assert.Equal(t, 0, hi)
}

func TestUnpack(t *testing.T) {
	a, b, c := NewKnown(atom{name: "a"}), NewKnown(atom{name: "b"}), NewKnown(atom{name: "c"})
	rest := NewKnownSet(set("x"), Arity(0, values.Unbounded))

	tests := []struct {
		name  string
		elems []values.Lazy
		n     int
		want  []values.ValueSet
	}{
		{"exact", []values.Lazy{a, b}, 2, []values.ValueSet{set("a"), set("b")}},
		{"fewer names", []values.Lazy{a, b, c}, 2, []values.ValueSet{set("a"), set("b")}},
		{"star in the middle", []values.Lazy{a, rest, c}, 4, []values.ValueSet{set("a"), set("x"), set("x"), set("c")}},
		{"empty star", []values.Lazy{a, rest, c}, 2, []values.ValueSet{set("a"), set("c")}},
		{"bounded star", []values.Lazy{NewKnownSet(set("x"), Arity(0, 1)), NewUnknown(Arity(0, values.Unbounded))}, 3,
			[]values.ValueSet{set("x"), values.NoValues, values.NoValues}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Unpack(tt.elems, tt.n)
			require.NoError(t, err)
			require.Len(t, got, len(tt.want))
			for i := range got {
				assert.True(t, got[i].Equal(tt.want[i]), "slot %d: got %s, want %s", i, got[i], tt.want[i])
			}
		})
	}
}

func TestUnpackTooFew(t *testing.T) {
	got, err := Unpack([]values.Lazy{NewKnown(atom{name: "a"}), NewKnown(atom{name: "b"})}, 3)

	var tooFew *TooFewValuesError
	require.True(t, errors.As(err, &tooFew))
	assert.Equal(t, 3, tooFew.Want)
	assert.Equal(t, 2, tooFew.Max)
	assert.EqualError(t, err, "need more than 2 values to unpack into 3 names")

	require.Len(t, got, 3)
	assert.True(t, got[0].Equal(set("a")))
	assert.True(t, got[2].Empty())
}
