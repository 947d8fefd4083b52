package native

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/funvibe/hintinfer/internal/values"
)

func builtins(t *testing.T) *Registry {
	t.Helper()
	r, err := Builtins()
	require.NoError(t, err)
	return r
}

func only(t *testing.T, s values.ValueSet) values.Value {
	t.Helper()
	v, ok := s.Only()
	require.True(t, ok, "expected exactly one value, got %s", s)
	return v
}

func TestBuiltinsSnapshot(t *testing.T) {
	r := builtins(t)
	for _, name := range []string{"object", "int", "str", "list", "dict", "NoneType", "len", "open"} {
		assert.False(t, r.Lookup(name).Empty(), name)
	}
	assert.True(t, r.Lookup("no_such_builtin").Empty())
	assert.Contains(t, r.Names(), "TextIOWrapper")
}

func TestClassIdentity(t *testing.T) {
	r := builtins(t)
	a, ok := r.Class("int")
	require.True(t, ok)
	b, _ := r.Class("int")
	assert.Same(t, a, b)
	assert.True(t, r.Instance("int").Equal(r.Instance("int")))
}

func TestInheritance(t *testing.T) {
	r := builtins(t)
	boolClass, _ := r.Class("bool")
	assert.True(t, boolClass.IsSubclass("int"))
	assert.True(t, boolClass.IsSubclass("object"))

	inst := only(t, r.Instance("bool"))
	// bit_length is declared on int
	method := only(t, inst.Attr("bit_length"))
	assert.True(t, method.Call(nil).Equal(r.Instance("int")))
	// __repr__ comes from object
	assert.True(t, inst.Attr("__repr__").Call(nil).Equal(r.Instance("str")))
}

func TestInstanceCapabilities(t *testing.T) {
	r := builtins(t)
	str := only(t, r.Instance("str"))

	assert.True(t, str.Attr("upper").Call(nil).Equal(r.Instance("str")))
	assert.True(t, str.Attr("split").Call(nil).Equal(r.Instance("list")))
	assert.True(t, str.GetItem(int64(0)).Equal(r.Instance("str")))
	assert.True(t, str.Attr("missing").Empty())

	elems := str.Iterate()
	require.Len(t, elems, 1)
	lo, hi := elems[0].Bounds()
	assert.Equal(t, 0, lo)
	assert.Equal(t, values.Unbounded, hi)
	assert.True(t, elems[0].Infer().Equal(r.Instance("str")))

	list := only(t, r.Instance("list"))
	assert.Nil(t, list.Iterate())
	_, _, ok := list.MappingItems()
	assert.False(t, ok)
}

func TestSelfReturningMethod(t *testing.T) {
	r := builtins(t)
	file := r.Lookup("open").Call(nil)
	assert.True(t, file.Equal(r.Instance("TextIOWrapper")))
	assert.True(t, file.Attr("__enter__").Call(nil).Equal(file))
}

func TestDocDerivedReturns(t *testing.T) {
	r := builtins(t)
	assert.True(t, r.Lookup("round").Call(nil).Equal(r.Instance("float")))
	assert.True(t, r.Lookup("divmod").Call(nil).Equal(r.Instance("tuple")))
	assert.True(t, r.Lookup("abs").Call(nil).Empty())

	str := only(t, r.Instance("str"))
	assert.True(t, str.Attr("count").Call(nil).Equal(r.Instance("int")))
	list := only(t, r.Instance("list"))
	assert.True(t, list.Attr("index").Call(nil).Equal(r.Instance("int")))
}

func TestConstants(t *testing.T) {
	r := builtins(t)
	one := r.ConstantOf(int64(1))
	two := r.ConstantOf(int64(2))
	assert.NotEqual(t, one.Hash(), two.Hash())
	assert.Equal(t, values.KindConstant, one.Kind())
	assert.True(t, one.Class().Equal(two.Class()))
	assert.True(t, one.Class().ExecuteAnnotation().Equal(r.Instance("int")))

	s, ok := values.StringOf(r.ConstantOf("abc"))
	assert.True(t, ok)
	assert.Equal(t, "abc", s)
	_, ok = values.StringOf(one)
	assert.False(t, ok)

	assert.Equal(t, "None", r.ConstantOf(nil).String())
	assert.Equal(t, `b"x"`, r.Constant("bytes", "x").String())
	assert.True(t, r.Constant("bytes", "x").GetItem(int64(0)).Equal(r.Instance("int")))
}

func TestParseDoc(t *testing.T) {
	tests := []struct {
		doc    string
		params []string
		ret    string
	}{
		{"S.count(sub[, start[, end]]) -> int", []string{"sub", "start", "end"}, "int"},
		{"round(number[, ndigits]) -> floating point number", []string{"number", "ndigits"}, "float"},
		{"L.index(value, [start, [stop]]) -> integer -- return first index of value.", []string{"value", "start", "stop"}, "int"},
		{"float.hex() -> string", nil, "str"},
		{"f(a, b)", []string{"a", "b"}, ""},
		{"   ", nil, ""},
	}
	for _, tt := range tests {
		params, ret := ParseDoc(tt.doc)
		assert.Equal(t, tt.params, params, tt.doc)
		assert.Equal(t, tt.ret, ret, tt.doc)
	}
}

func TestLoadSnapshotFile(t *testing.T) {
	r := builtins(t)
	path := filepath.Join(t.TempDir(), "extra.json")
	snap := `{"classes": {"Decimal": {"bases": ["object"], "methods": {"sqrt": "self"}}},
	          "functions": {"make_decimal": {"returns": "Decimal"}}}`
	require.NoError(t, os.WriteFile(path, []byte(snap), 0o644))
	require.NoError(t, r.LoadFile(path))

	dec := r.Lookup("make_decimal").Call(nil)
	assert.True(t, dec.Equal(r.Instance("Decimal")))
	assert.True(t, dec.Attr("sqrt").Call(nil).Equal(dec))
	assert.True(t, dec.Attr("__str__").Call(nil).Equal(r.Instance("str")))

	assert.Error(t, r.Load([]byte(`{"classes": []}`), "bad.json"))
	assert.Error(t, r.Load([]byte(`{"modules": {}}`), "bad.json"))
	assert.Error(t, r.Load([]byte(`not json`), "bad.json"))
	assert.Error(t, r.LoadFile(filepath.Join(t.TempDir(), "missing.json")))
}

func TestNoneAnnotation(t *testing.T) {
	r := builtins(t)
	none := r.ConstantOf(nil)
	assert.True(t, none.ExecuteAnnotation().Equal(values.NewSet(none)))
	assert.True(t, r.ConstantOf(int64(3)).ExecuteAnnotation().Empty())
}
