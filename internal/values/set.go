package values

import (
	"iter"
	"slices"
	"strings"

	"github.com/hashicorp/go-set/v3"
)

// ValueSet is an immutable, deduplicated union of values: "could be any one
// of these". The zero ValueSet means "inference not attempted" and differs
// from NoValues, which means "nothing could be inferred".
type ValueSet struct {
	items *set.HashSet[Value, string]
}

// NoValues is the distinguished empty set.
var NoValues = ValueSet{items: set.NewHashSet[Value, string](0)}

// nested is implemented by values that are themselves collections of
// values. Such values must be flattened, never stored as members.
type nested interface {
	Members() []Value
}

// NewSet builds a set from individual values, collapsing structurally equal
// members. It panics with a *ContractError when a member is nil or is itself
// a collection of values.
func NewSet(vs ...Value) ValueSet {
	items := set.NewHashSet[Value, string](len(vs))
	for _, v := range vs {
		if v == nil {
			panic(contractf("NewSet", "nil member"))
		}
		if _, ok := v.(nested); ok {
			panic(contractf("NewSet", "nested set %s", v))
		}
		items.Insert(v)
	}
	return ValueSet{items: items}
}

// FromSets unions any number of sets.
func FromSets(sets ...ValueSet) ValueSet {
	n := 0
	for _, s := range sets {
		n += s.Len()
	}
	items := set.NewHashSet[Value, string](n)
	for _, s := range sets {
		for v := range s.All() {
			items.Insert(v)
		}
	}
	return ValueSet{items: items}
}

// Collect builds a set from a sequence of values.
func Collect(seq iter.Seq[Value]) ValueSet {
	return NewSet(slices.Collect(seq)...)
}

// Known reports whether the set is the result of an inference attempt.
func (s ValueSet) Known() bool { return s.items != nil }

func (s ValueSet) Len() int {
	if s.items == nil {
		return 0
	}
	return s.items.Size()
}

func (s ValueSet) Empty() bool { return s.Len() == 0 }

// Contains reports whether a structurally equal value is a member.
func (s ValueSet) Contains(v Value) bool {
	return s.items != nil && s.items.Contains(v)
}

// Values returns the members ordered by hash, so that callers iterating a
// set observe a deterministic order.
func (s ValueSet) Values() []Value {
	if s.items == nil {
		return nil
	}
	out := s.items.Slice()
	slices.SortFunc(out, func(a, b Value) int { return strings.Compare(a.Hash(), b.Hash()) })
	return out
}

// All iterates the members in hash order.
func (s ValueSet) All() iter.Seq[Value] {
	return func(yield func(Value) bool) {
		for _, v := range s.Values() {
			if !yield(v) {
				return
			}
		}
	}
}

// Union returns s | o.
func (s ValueSet) Union(o ValueSet) ValueSet {
	return FromSets(s, o)
}

// Intersect returns the members common to s and o.
func (s ValueSet) Intersect(o ValueSet) ValueSet {
	items := set.NewHashSet[Value, string](0)
	for v := range s.All() {
		if o.Contains(v) {
			items.Insert(v)
		}
	}
	return ValueSet{items: items}
}

// Equal compares membership by structural hash.
func (s ValueSet) Equal(o ValueSet) bool {
	if s.Len() != o.Len() {
		return false
	}
	for v := range s.All() {
		if !o.Contains(v) {
			return false
		}
	}
	return true
}

// Hash is the structural hash of the whole set.
func (s ValueSet) Hash() string {
	vs := s.Values()
	hashes := make([]string, len(vs))
	for i, v := range vs {
		hashes[i] = v.Hash()
	}
	return "{" + strings.Join(hashes, "|") + "}"
}

func (s ValueSet) String() string {
	vs := s.Values()
	parts := make([]string, len(vs))
	for i, v := range vs {
		parts[i] = v.String()
	}
	return "S{" + strings.Join(parts, ", ") + "}"
}

// Only returns the single member of a one-element set.
func (s ValueSet) Only() (Value, bool) {
	if s.Len() != 1 {
		return nil, false
	}
	return s.items.Slice()[0], true
}

// One is Only for callers that require exactly one value. It panics with a
// *ContractError otherwise.
func (s ValueSet) One() Value {
	v, ok := s.Only()
	if !ok {
		panic(contractf("One", "expected a single value, got %d", s.Len()))
	}
	return v
}

// Filter keeps the members for which keep returns true.
func (s ValueSet) Filter(keep func(Value) bool) ValueSet {
	items := set.NewHashSet[Value, string](0)
	for v := range s.All() {
		if keep(v) {
			items.Insert(v)
		}
	}
	return ValueSet{items: items}
}

// Map invokes fn on every member and unions the results. All broadcast
// helpers below are defined in terms of it.
func (s ValueSet) Map(fn func(Value) ValueSet) ValueSet {
	results := make([]ValueSet, 0, s.Len())
	for v := range s.All() {
		results = append(results, fn(v))
	}
	return FromSets(results...)
}

func (s ValueSet) Attr(name string) ValueSet {
	return s.Map(func(v Value) ValueSet { return v.Attr(name) })
}

func (s ValueSet) Call(args Arguments) ValueSet {
	return s.Map(func(v Value) ValueSet { return v.Call(args) })
}

func (s ValueSet) GetItem(key any) ValueSet {
	return s.Map(func(v Value) ValueSet { return v.GetItem(key) })
}

func (s ValueSet) Class() ValueSet {
	return s.Map(func(v Value) ValueSet { return v.Class() })
}

func (s ValueSet) ExecuteAnnotation() ValueSet {
	return s.Map(func(v Value) ValueSet { return v.ExecuteAnnotation() })
}

// Iterate iterates every member, ignoring element order, and unions
// everything the iterations yield.
func (s ValueSet) Iterate() ValueSet {
	return s.Map(func(v Value) ValueSet {
		var elems []ValueSet
		for _, l := range v.Iterate() {
			elems = append(elems, l.Infer())
		}
		return FromSets(elems...)
	})
}

// MappingValues unions the values of every mapping-like member; other
// members contribute nothing.
func (s ValueSet) MappingValues() ValueSet {
	return s.Map(func(v Value) ValueSet {
		_, vals, ok := v.MappingItems()
		if !ok {
			return NoValues
		}
		return vals
	})
}

// MappingItems unions the keys and values of every mapping-like member.
// ok is false when no member is mapping-like.
func (s ValueSet) MappingItems() (keys, vals ValueSet, ok bool) {
	var ks, vs []ValueSet
	for v := range s.All() {
		k, val, isMapping := v.MappingItems()
		if isMapping {
			ks, vs, ok = append(ks, k), append(vs, val), true
		}
	}
	return FromSets(ks...), FromSets(vs...), ok
}
