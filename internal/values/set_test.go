package values

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type shape struct {
	Base
	name string
}

func (s shape) Kind() Kind      { return KindClass }
func (s shape) Name() string    { return s.name }
func (s shape) Hash() string    { return "shape:" + s.name }
func (s shape) String() string  { return s.name }
func (s shape) Class() ValueSet { return NewSet(shape{name: "type"}) }
func (s shape) Attr(n string) ValueSet {
	return NewSet(shape{name: s.name + "." + n})
}

type bundle struct {
	shape
	members []Value
}

func (b bundle) Members() []Value { return b.members }

func shapes(names ...string) ValueSet {
	vs := make([]Value, len(names))
	for i, n := range names {
		vs[i] = shape{name: n}
	}
	return NewSet(vs...)
}

func TestUnionLaws(t *testing.T) {
	a, b, c := shapes("int", "str"), shapes("str", "bytes"), shapes("float")

	assert.True(t, a.Union(b.Union(c)).Equal(a.Union(b).Union(c)), "associativity")
	assert.True(t, a.Union(b).Equal(b.Union(a)), "commutativity")
	assert.True(t, a.Union(NoValues).Equal(a), "identity")
	assert.True(t, a.Intersect(a).Equal(a), "idempotent intersection")
	assert.True(t, a.Intersect(b).Equal(shapes("str")))
	assert.Equal(t, 4, a.Union(b).Union(c).Len())
}

func TestOperandsNotMutated(t *testing.T) {
	a, b := shapes("int"), shapes("str")
	_ = a.Union(b)
	assert.Equal(t, 1, a.Len())
	assert.Equal(t, 1, b.Len())
}

func TestDeduplication(t *testing.T) {
	s := NewSet(shape{name: "int"}, shape{name: "int"}, shape{name: "str"})
	assert.Equal(t, 2, s.Len())
	assert.True(t, s.Contains(shape{name: "int"}))
}

func TestNestedSetRejected(t *testing.T) {
	inner := bundle{shape: shape{name: "inner"}, members: []Value{shape{name: "int"}}}
	defer func() {
		r := recover()
		require.NotNil(t, r)
		_, ok := r.(*ContractError)
		assert.True(t, ok, "want *ContractError, got %T", r)
	}()
	NewSet(shape{name: "int"}, inner)
}

func TestOneRequiresSingleValue(t *testing.T) {
	assert.Equal(t, "int", shapes("int").One().Name())
	assert.Panics(t, func() { shapes("int", "str").One() })
}

func TestEmptyVersusNotAttempted(t *testing.T) {
	var zero ValueSet
	assert.False(t, zero.Known())
	assert.True(t, NoValues.Known())
	assert.True(t, NoValues.Empty())
}

func TestBroadcast(t *testing.T) {
	s := shapes("a", "b")
	assert.True(t, s.Attr("x").Equal(shapes("a.x", "b.x")))
	assert.True(t, s.Class().Equal(shapes("type")))
	assert.True(t, s.Call(nil).Empty())
}

func TestHashIsOrderIndependent(t *testing.T) {
	assert.Equal(t, shapes("a", "b").Hash(), shapes("b", "a").Hash())
}
