package inference

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/funvibe/hintinfer/internal/parser"
	"github.com/funvibe/hintinfer/internal/values"
)

func TestForwardReferenceEquivalence(t *testing.T) {
	s := newState(t)
	m := load(t, s, `
class Foo:
    pass

def f(a: Foo, b: "Foo"):
    pass
`)
	fn := function(t, m, "f")
	exec := s.NewExecution(fn, nil)
	plain := s.InferParameterType(exec, fn.Node().Params[0])
	quoted := s.InferParameterType(exec, fn.Node().Params[1])

	require.Equal(t, 1, plain.Len())
	assert.True(t, plain.Equal(quoted), "%s != %s", plain, quoted)
	v, _ := plain.Only()
	assert.IsType(t, &Instance{}, v)
	assert.Equal(t, "Foo", v.Name())
}

func TestUnionAndOptional(t *testing.T) {
	s := newState(t)
	m := load(t, s, `
from typing import Union, Optional

def f(a: Union[int, str], b: Optional[int], c: int):
    pass
`)
	fn := function(t, m, "f")
	exec := s.NewExecution(fn, nil)
	params := fn.Node().Params

	union := s.InferParameterType(exec, params[0])
	assert.True(t, union.Equal(typeOf(s, int64(1)).Union(typeOf(s, "s"))), "got %s", union)

	optional := s.InferParameterType(exec, params[1])
	plain := s.InferParameterType(exec, params[2])
	assert.True(t, optional.Equal(plain), "%s != %s", optional, plain)
}

func TestGenericUnification(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{
			name: "iterable",
			src: `
from typing import Iterable, TypeVar

T = TypeVar('T')

def first(xs: Iterable[T]) -> T:
    pass

x = first([1, 2, 3])
`,
		},
		{
			name: "mapping",
			src: `
from typing import Mapping, TypeVar

K = TypeVar('K')
V = TypeVar('V')

def get(m: Mapping[K, V], k: K) -> V:
    pass

x = get({"a": 1, "b": 2}, "a")
`,
		},
		{
			name: "star args",
			src: `
from typing import TypeVar

T = TypeVar('T')

def pick(*args: T) -> T:
    pass

x = pick(1, 2)
`,
		},
		{
			name: "keyword args",
			src: `
from typing import TypeVar

T = TypeVar('T')

def pick(**kwargs: T) -> T:
    pass

x = pick(a=1, b=2)
`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newState(t)
			m := load(t, s, tt.src)
			got := lookup(t, m, "x")
			assert.True(t, got.Equal(typeOf(s, int64(1))), "got %s", got)
		})
	}
}

func TestGenericReturnSubstitution(t *testing.T) {
	s := newState(t)
	m := load(t, s, `
from typing import Iterable, Iterator, List, TypeVar

T = TypeVar('T')

def listify(xs: Iterable[T]) -> List[T]:
    pass

ys = listify(["a"])
for y in ys:
    pass
`)
	ys := lookup(t, m, "ys")
	v, ok := ys.Only()
	require.True(t, ok, "got %s", ys)
	assert.IsType(t, &AnnotatedInstance{}, v)
	assert.Equal(t, "List", v.Name())

	y := lookup(t, m, "y")
	assert.True(t, y.Equal(typeOf(s, "a")), "got %s", y)
}

func TestCommentAnnotations(t *testing.T) {
	var log bytes.Buffer
	s := newState(t, WithLogOutput(&log))
	m := load(t, s, `
def f(a, b):  # type: (int, str) -> bool
    pass

class C:
    def m(self, a):  # type: (int) -> str
        pass

r = f(1, 2)
`)
	fn := function(t, m, "f")
	exec := s.NewExecution(fn, nil)
	params := fn.Node().Params
	assert.True(t, s.InferParameterType(exec, params[0]).Equal(typeOf(s, int64(0))))
	assert.True(t, s.InferParameterType(exec, params[1]).Equal(typeOf(s, "")))
	assert.True(t, s.InferReturnType(exec).Equal(typeOf(s, true)))
	assert.True(t, lookup(t, m, "r").Equal(typeOf(s, true)))

	class, ok := lookup(t, m, "C").Only()
	require.True(t, ok)
	instance, ok := class.Call(noArguments).Only()
	require.True(t, ok)
	method, ok := instance.Attr("m").Only()
	require.True(t, ok)
	bound, ok := method.(*BoundMethod)
	require.True(t, ok, "got %s", method)

	mexec := s.NewExecution(bound.Function(), &boundArguments{receiver: instance, args: noArguments})
	mparams := bound.Function().Node().Params
	assert.True(t, s.InferParameterType(mexec, mparams[0]).Empty(), "receiver must not be annotated")
	assert.True(t, s.InferParameterType(mexec, mparams[1]).Equal(typeOf(s, int64(0))))
	assert.True(t, s.InferReturnType(mexec).Equal(typeOf(s, "")))
	assert.Contains(t, log.String(), "warning: m: comment declares 1 parameters, function has 2")
}

func TestCommentSplitKeepsGenerics(t *testing.T) {
	s := newState(t)
	assert.Equal(t, []string{"foo", "Bar[baz, biz]"}, s.splitCommentParams("foo, Bar[baz, biz]"))
	assert.Equal(t, []string{"int"}, s.splitCommentParams(" int "))
	assert.Nil(t, s.splitCommentParams(""))
	assert.Nil(t, s.splitCommentParams("int,, str"))
}

func TestMalformedCommentIsIgnored(t *testing.T) {
	s := newState(t)
	m := load(t, s, `
def f(a):  # type: (int,, str) -> bool
    return a

def g(a):  # type: int
    return a

x = f(1)
y = g(1)
`)
	for _, name := range []string{"f", "g"} {
		fn := function(t, m, name)
		exec := s.NewExecution(fn, nil)
		assert.True(t, s.InferParameterType(exec, fn.Node().Params[0]).Empty(), name)
	}
	assert.True(t, lookup(t, m, "y").Equal(values.NewSet(s.Natives.ConstantOf(int64(1)))))
}

func TestTargetCommentHints(t *testing.T) {
	s := newState(t)
	m := load(t, s, `
a = g()  # type: int
b, c = g()  # type: int, str
for x in g():  # type: float
    pass
with open("f") as fh:  # type: bytes
    pass
with open("f") as plain:
    pass
`)
	assert.True(t, lookup(t, m, "a").Equal(typeOf(s, int64(0))))
	assert.True(t, lookup(t, m, "b").Equal(typeOf(s, int64(0))))
	assert.True(t, lookup(t, m, "c").Equal(typeOf(s, "")))
	assert.True(t, lookup(t, m, "x").Equal(typeOf(s, 0.5)))
	fh := lookup(t, m, "fh")
	require.Equal(t, 1, fh.Len())
	assert.Equal(t, "bytes", fh.Values()[0].Name())
	assert.Equal(t, "TextIOWrapper", lookup(t, m, "plain").Values()[0].Name())
}

func TestResolveAnnotationStringIndex(t *testing.T) {
	s := newState(t)
	m := load(t, s, "x = 1\n")
	assert.True(t, s.ResolveAnnotationString(m, "int, str", 1).ExecuteAnnotation().Equal(typeOf(s, "")))
	assert.True(t, s.ResolveAnnotationString(m, "int, str", 2).Empty())
	assert.True(t, s.ResolveAnnotationString(m, "int", 0).Empty(), "a non-tuple has no components")
	assert.True(t, s.ResolveAnnotationString(m, "int(", -1).Empty())
}

func TestTypeVarDiscoveryOrder(t *testing.T) {
	s := newState(t)
	m := load(t, s, `
from typing import Iterable, Mapping, TypeVar

K = TypeVar('K')
V = TypeVar('V')
`)
	names := func(text string) []string {
		node, err := parser.ParseExpression(text)
		require.NoError(t, err)
		var out []string
		for _, tv := range s.FindUnboundTypeVars(m, node) {
			out = append(out, tv.Name())
		}
		return out
	}
	assert.Equal(t, []string{"K"}, names("Mapping[K, Iterable[K]]"))
	assert.Equal(t, []string{"V", "K"}, names("Mapping[V, Iterable[K]]"))
	assert.Empty(t, names("Mapping[str, int]"))
	assert.Equal(t, []string{"K"}, names("K"))
}

func TestInlineAnnotationsNeedTarget(t *testing.T) {
	s := newStateFor(t, `target_version: "2.7"`)
	m := load(t, s, `
def f(a: int) -> str:  # type: (float) -> bytes
    pass
`)
	fn := function(t, m, "f")
	exec := s.NewExecution(fn, nil)
	assert.True(t, s.InferParameterType(exec, fn.Node().Params[0]).Equal(typeOf(s, 0.5)))
	got := s.InferReturnType(exec)
	require.Equal(t, 1, got.Len())
	assert.Equal(t, "bytes", got.Values()[0].Name())
}

func TestTypeVarsWithSameNameStayDistinct(t *testing.T) {
	s := newState(t)
	numbers, err := s.LoadModule("numbers", "from typing import TypeVar\nT = TypeVar('T', int, float)\n")
	require.NoError(t, err)
	texts, err := s.LoadModule("texts", "from typing import TypeVar\nT = TypeVar('T', str, bool)\n")
	require.NoError(t, err)

	numeric := lookup(t, numbers, "T")
	textual := lookup(t, texts, "T")
	assert.False(t, numeric.Equal(textual))
	assert.True(t, numeric.ExecuteAnnotation().Equal(typeOf(s, int64(0)).Union(typeOf(s, 0.5))))
	assert.True(t, textual.ExecuteAnnotation().Equal(typeOf(s, "s").Union(typeOf(s, true))))
}
