package inference

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/funvibe/hintinfer/internal/values"
)

func TestFormatType(t *testing.T) {
	s := newState(t)
	m := load(t, s, `
from typing import Dict, List, Tuple

def make() -> List[int]:
    pass

def mapping() -> Dict[str, List[float]]:
    pass

def rest() -> Tuple[int, ...]:
    pass

class Point:
    pass

xs = make()
d = mapping()
r = rest()
lit = [1, "a"]
empty = {}
either = 1 if flag else "s"
cls = int
p = Point()
`)
	tests := []struct {
		name string
		want string
	}{
		{"xs", "List[int]"},
		{"d", "Dict[str, List[float]]"},
		{"r", "Tuple[int, ...]"},
		{"lit", "list[int | str]"},
		{"empty", "dict"},
		{"either", "int | str"},
		{"cls", "type[int]"},
		{"p", "Point"},
		{"Point", "type[Point]"},
		{"make", "function"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatType(lookup(t, m, tt.name)), tt.name)
	}
	assert.Equal(t, "?", FormatType(values.NoValues))
	assert.Equal(t, []string{"int", "str"}, TypeNames(lookup(t, m, "either")))
}

func TestMethodExecution(t *testing.T) {
	s := newState(t)
	m := load(t, s, `
class Node:
    def self_(self):
        return self

    @classmethod
    def build(cls):
        return cls

    @staticmethod
    def plain(x=1.5):
        return x
`)
	v, ok := lookup(t, m, "Node").Only()
	assert.True(t, ok)
	class := v.(*ClassValue)

	methods := class.Methods()
	assert.Len(t, methods, 3)

	assert.Equal(t, "Node", FormatType(s.NewMethodExecution(class, methods[0]).ReturnValues()))
	assert.Equal(t, "type[Node]", FormatType(s.NewMethodExecution(class, methods[1]).ReturnValues()))

	plain := s.NewMethodExecution(class, methods[2])
	assert.Len(t, plain.Params(), 1)
	assert.Equal(t, "float", FormatType(plain.ReturnValues()))
}
