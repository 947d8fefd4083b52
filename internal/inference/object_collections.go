package inference

import (
	"fmt"

	"github.com/funvibe/hintinfer/internal/ast"
	"github.com/funvibe/hintinfer/internal/config"
	"github.com/funvibe/hintinfer/internal/lazy"
	"github.com/funvibe/hintinfer/internal/memo"
	"github.com/funvibe/hintinfer/internal/values"
)

// Sequence is a tuple, list or set whose elements are tracked one by one:
// a display in source or a container built by the engine (the `*args` of
// an execution, for instance).
type Sequence struct {
	values.Base
	state *State
	kind  string
	elems []values.Lazy
}

// sequence returns the value of a tuple, list or set display.
func (s *State) sequence(ctx Context, kind string, node ast.Expr, elts []ast.Expr) *Sequence {
	return memo.Construct(s.cache, memo.On("sequence", ctx, node), func() *Sequence {
		elems := make([]values.Lazy, len(elts))
		for i, elt := range elts {
			if star, ok := elt.(*ast.Starred); ok {
				elems[i] = &starLazy{ctx: ctx, node: star.X}
				continue
			}
			elems[i] = lazy.NewTree(ctx, elt)
		}
		return &Sequence{state: s, kind: kind, elems: elems}
	})
}

func (s *State) fakeSequence(kind string, elems []values.Lazy) *Sequence {
	return &Sequence{state: s, kind: kind, elems: elems}
}

func (q *Sequence) Kind() values.Kind { return values.KindInstance }
func (q *Sequence) Name() string      { return q.kind }
func (q *Sequence) Hash() string      { return fmt.Sprintf("%s@%p", q.kind, q) }
func (q *Sequence) ArrayType() string { return q.kind }

func (q *Sequence) String() string {
	return fmt.Sprintf("<%s of %d>", q.kind, len(q.elems))
}

// Elems returns the lazy elements in order.
func (q *Sequence) Elems() []values.Lazy { return q.elems }

func (q *Sequence) Iterate() []values.Lazy { return q.elems }

func (q *Sequence) GetItem(key any) values.ValueSet {
	switch k := key.(type) {
	case int64:
		if q.kind == "set" {
			return values.NoValues
		}
		if v, ok := q.index(int(k)); ok {
			return v
		}
	case string:
		return values.NoValues
	}
	return q.union()
}

// index resolves a constant index when every element before it has a
// fixed arity.
func (q *Sequence) index(i int) (values.ValueSet, bool) {
	for _, e := range q.elems {
		if lo, hi := e.Bounds(); lo != 1 || hi != 1 {
			return values.NoValues, false
		}
	}
	if i < 0 {
		i += len(q.elems)
	}
	if i < 0 || i >= len(q.elems) {
		return values.NoValues, false
	}
	return q.elems[i].Infer(), true
}

func (q *Sequence) union() values.ValueSet {
	sets := make([]values.ValueSet, len(q.elems))
	for i, e := range q.elems {
		sets[i] = e.Infer()
	}
	return values.FromSets(sets...)
}

func (q *Sequence) Attr(name string) values.ValueSet {
	return q.state.Natives.Instance(q.kind).Attr(name)
}

func (q *Sequence) Class() values.ValueSet {
	if k, ok := q.state.Natives.Class(q.kind); ok {
		return values.NewSet(k)
	}
	return values.NoValues
}

// starLazy is `*x` inside a display: the elements of x, any number of them.
type starLazy struct {
	ctx  Context
	node ast.Expr
}

func (l *starLazy) Infer() values.ValueSet { return l.ctx.Eval(l.node).Iterate() }
func (l *starLazy) Bounds() (int, int)     { return 0, values.Unbounded }

// DictValue is a dict display or a dict built by the engine. A nil key
// marks a `**mapping` entry whose value is the mapping.
type DictValue struct {
	values.Base
	state *State
	keys  []values.Lazy
	vals  []values.Lazy
}

func (s *State) dict(ctx Context, node *ast.Dict) *DictValue {
	return memo.Construct(s.cache, memo.On("dict", ctx, node), func() *DictValue {
		d := &DictValue{state: s}
		for i, v := range node.Values {
			if node.Keys[i] == nil {
				d.keys = append(d.keys, nil)
			} else {
				d.keys = append(d.keys, lazy.NewTree(ctx, node.Keys[i]))
			}
			d.vals = append(d.vals, lazy.NewTree(ctx, v))
		}
		return d
	})
}

func (s *State) fakeDict(keys, vals []values.Lazy) *DictValue {
	return &DictValue{state: s, keys: keys, vals: vals}
}

func (d *DictValue) Kind() values.Kind { return values.KindInstance }
func (d *DictValue) Name() string      { return "dict" }
func (d *DictValue) Hash() string      { return fmt.Sprintf("dict@%p", d) }
func (d *DictValue) String() string    { return fmt.Sprintf("<dict of %d>", len(d.vals)) }
func (d *DictValue) ArrayType() string { return "dict" }

func (d *DictValue) Iterate() []values.Lazy {
	out := make([]values.Lazy, 0, len(d.keys))
	for i, k := range d.keys {
		if k == nil {
			keys, _, _ := d.vals[i].Infer().MappingItems()
			out = append(out, lazy.NewKnownSet(keys, lazy.Arity(0, values.Unbounded)))
			continue
		}
		out = append(out, k)
	}
	return out
}

func (d *DictValue) MappingItems() (values.ValueSet, values.ValueSet, bool) {
	var keys, vals []values.ValueSet
	for i, k := range d.keys {
		if k == nil {
			ks, vs, _ := d.vals[i].Infer().MappingItems()
			keys, vals = append(keys, ks), append(vals, vs)
			continue
		}
		keys = append(keys, k.Infer())
		vals = append(vals, d.vals[i].Infer())
	}
	return values.FromSets(keys...), values.FromSets(vals...), true
}

// GetItem returns the values stored under a constant key, or every value
// when no key matches.
func (d *DictValue) GetItem(key any) values.ValueSet {
	if key != nil {
		var matched []values.ValueSet
		for i, k := range d.keys {
			if k == nil {
				continue
			}
			for kv := range k.Infer().All() {
				if lit, ok := kv.(values.Literal); ok && lit.Literal() == key {
					matched = append(matched, d.vals[i].Infer())
				}
			}
		}
		if len(matched) > 0 {
			return values.FromSets(matched...)
		}
	}
	_, vals, _ := d.MappingItems()
	return vals
}

func (d *DictValue) Attr(name string) values.ValueSet {
	switch name {
	case "get", "keys", "values", "items", "pop", "setdefault":
		return values.NewSet(&dictMethod{dict: d, name: name})
	}
	return d.state.Natives.Instance(config.DictClassName).Attr(name)
}

func (d *DictValue) Class() values.ValueSet {
	if k, ok := d.state.Natives.Class(config.DictClassName); ok {
		return values.NewSet(k)
	}
	return values.NoValues
}

// dictMethod is a method of a tracked dict whose result depends on the
// stored entries.
type dictMethod struct {
	values.Base
	dict *DictValue
	name string
}

func (m *dictMethod) Kind() values.Kind { return values.KindFunction }
func (m *dictMethod) Name() string      { return m.name }
func (m *dictMethod) Hash() string      { return "dict-method:" + m.name + "@" + m.dict.Hash() }
func (m *dictMethod) String() string    { return fmt.Sprintf("<method dict.%s>", m.name) }

func (m *dictMethod) Call(args values.Arguments) values.ValueSet {
	s := m.dict.state
	keys, vals, _ := m.dict.MappingItems()
	switch m.name {
	case "keys":
		return values.NewSet(s.fakeSequence(config.ListClassName, variadic(keys)))
	case "values":
		return values.NewSet(s.fakeSequence(config.ListClassName, variadic(vals)))
	case "items":
		pair := s.fakeSequence(config.TupleClassName, []values.Lazy{lazy.NewKnownSet(keys), lazy.NewKnownSet(vals)})
		return values.NewSet(s.fakeSequence(config.ListClassName, []values.Lazy{lazy.NewKnown(pair, lazy.Arity(0, values.Unbounded))}))
	}
	sets := []values.ValueSet{vals}
	if unpacked := args.Unpack(); len(unpacked) > 1 {
		sets = append(sets, unpacked[1].Value.Infer())
	} else if m.name == "get" {
		sets = append(sets, values.NewSet(s.Natives.ConstantOf(nil)))
	}
	return values.FromSets(sets...)
}

func variadic(set values.ValueSet) []values.Lazy {
	if set.Empty() {
		return nil
	}
	return []values.Lazy{lazy.NewKnownSet(set, lazy.Arity(0, values.Unbounded))}
}

// ComprehensionValue is a list, set or dict comprehension or a generator
// expression.
type ComprehensionValue struct {
	values.Base
	state *State
	ctx   Context
	node  *ast.Comprehension
}

func (s *State) comprehension(ctx Context, node *ast.Comprehension) *ComprehensionValue {
	return memo.Construct(s.cache, memo.On("comprehension", ctx, node), func() *ComprehensionValue {
		return &ComprehensionValue{state: s, ctx: ctx, node: node}
	})
}

func (c *ComprehensionValue) Kind() values.Kind { return values.KindInstance }
func (c *ComprehensionValue) Name() string      { return c.node.Kind }
func (c *ComprehensionValue) Hash() string      { return fmt.Sprintf("comprehension:%s@%p", c.node.Kind, c) }
func (c *ComprehensionValue) String() string    { return fmt.Sprintf("<%s comprehension>", c.node.Kind) }

func (c *ComprehensionValue) ArrayType() string {
	if c.node.Kind == "generator" {
		return ""
	}
	return c.node.Kind
}

// elementContext binds the loop target to the elements of the iterable.
func (c *ComprehensionValue) elementContext() Context {
	names := lazy.Bindings{}
	c.state.assignTarget(c.node.Target, c.ctx.Eval(c.node.Iter).Iterate(), names)
	return withBindings(c.ctx, names)
}

func (c *ComprehensionValue) Iterate() []values.Lazy {
	return []values.Lazy{lazy.NewTree(c.elementContext(), c.node.Elt, lazy.Arity(0, values.Unbounded))}
}

func (c *ComprehensionValue) MappingItems() (values.ValueSet, values.ValueSet, bool) {
	if c.node.Kind != "dict" {
		return values.NoValues, values.NoValues, false
	}
	ctx := c.elementContext()
	return ctx.Eval(c.node.Elt), ctx.Eval(c.node.Value), true
}

func (c *ComprehensionValue) GetItem(any) values.ValueSet {
	if c.node.Kind == "dict" {
		_, vals, _ := c.MappingItems()
		return vals
	}
	if c.node.Kind == "list" {
		return c.elementContext().Eval(c.node.Elt)
	}
	return values.NoValues
}

func (c *ComprehensionValue) Attr(name string) values.ValueSet {
	if c.node.Kind == "generator" {
		return values.NoValues
	}
	return c.state.Natives.Instance(c.node.Kind).Attr(name)
}

func (c *ComprehensionValue) Class() values.ValueSet {
	if k, ok := c.state.Natives.Class(c.node.Kind); ok {
		return values.NewSet(k)
	}
	return values.NoValues
}

// assignTarget binds the names of an assignment target to value,
// destructuring tuple and list targets.
func (s *State) assignTarget(target ast.Expr, value values.ValueSet, out lazy.Bindings) {
	switch t := target.(type) {
	case *ast.Name:
		if prev, ok := out[t.Value]; ok {
			value = prev.Union(value)
		}
		out[t.Value] = value
	case *ast.Starred:
		s.assignTarget(t.X, values.NoValues, out)
	case *ast.Tuple:
		s.unpackTarget(t.Elts, value, out)
	case *ast.List:
		s.unpackTarget(t.Elts, value, out)
	}
}

func (s *State) unpackTarget(elts []ast.Expr, value values.ValueSet, out lazy.Bindings) {
	if value.Empty() {
		for _, elt := range elts {
			s.assignTarget(elt, values.NoValues, out)
		}
		return
	}
	for v := range value.All() {
		results, err := lazy.Unpack(v.Iterate(), len(elts))
		if err != nil {
			s.warnf("unpacking %s: %v", v, err)
		}
		for i, elt := range elts {
			s.assignTarget(elt, results[i], out)
		}
	}
}
