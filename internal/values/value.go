// Package values implements the value model of the inference engine: a
// Value is one possible runtime shape of an expression and a ValueSet is the
// deduplicated union of such shapes.
//
// Every higher-level pass talks to values through the capability methods of
// the Value interface. ValueSet forwards the same capabilities to each member
// and unions the results, so callers never special-case indeterminate unions.
package values

import (
	"fmt"
	"math"
)

// Kind discriminates the runtime shapes a Value can stand for.
type Kind int

const (
	KindModule Kind = iota
	KindClass
	KindFunction
	KindInstance
	KindNative
	KindTypeVar
	KindAnnotatedClass
	KindConstant
)

var kindNames = map[Kind]string{
	KindModule:         "module",
	KindClass:          "class",
	KindFunction:       "function",
	KindInstance:       "instance",
	KindNative:         "native",
	KindTypeVar:        "typevar",
	KindAnnotatedClass: "annotated-class",
	KindConstant:       "constant",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Value is a single inferred runtime shape.
//
// Hash must be structural: two values describing the same shape return the
// same hash and collapse into one ValueSet member.
type Value interface {
	Kind() Kind
	Name() string
	Hash() string
	String() string

	// Attr looks up an attribute on the value.
	Attr(name string) ValueSet
	// Iterate returns the lazily evaluated elements produced by iterating
	// the value, or nil when the value is not iterable.
	Iterate() []Lazy
	// Call executes the value with the given arguments.
	Call(args Arguments) ValueSet
	// GetItem indexes the value with a constant key (int64 or string).
	GetItem(key any) ValueSet
	// MappingItems exposes key/value pair access. ok is false for values
	// that are not mapping-like.
	MappingItems() (keys, vals ValueSet, ok bool)
	// Class returns the representation of the value's own class.
	Class() ValueSet
	// ExecuteAnnotation turns a value used as a type annotation into the
	// values an object of that type would have.
	ExecuteAnnotation() ValueSet
	// ArrayType names the literal container kind ("list", "tuple", "dict",
	// "set") or returns "".
	ArrayType() string
}

// Base provides the "capability absent" behaviour for every optional
// capability. Value variants embed it and override what they support.
type Base struct{}

func (Base) Attr(string) ValueSet                     { return NoValues }
func (Base) Iterate() []Lazy                          { return nil }
func (Base) Call(Arguments) ValueSet                  { return NoValues }
func (Base) GetItem(any) ValueSet                     { return NoValues }
func (Base) Class() ValueSet                          { return NoValues }
func (Base) ExecuteAnnotation() ValueSet              { return NoValues }
func (Base) ArrayType() string                        { return "" }
func (Base) MappingItems() (ValueSet, ValueSet, bool) { return NoValues, NoValues, false }

// Unbounded is the max arity of a lazy value whose length is unknown.
const Unbounded = math.MaxInt

// Lazy is a deferred production of a ValueSet. Bounds describe how many
// concrete values destructuring it yields.
type Lazy interface {
	Infer() ValueSet
	Bounds() (min, max int)
}

// Argument is one actual argument of a call. Keyword is empty for
// positional arguments; Star is 1 for `*expr` and 2 for `**expr`.
type Argument struct {
	Keyword string
	Star    int
	Value   Lazy
}

// Arguments is the actual argument list of a call.
type Arguments interface {
	Unpack() []Argument
	// Receiver is the instance a method call is bound to, nil otherwise.
	Receiver() Value
}

// Literal is implemented by values that carry a constant of the analyzed
// program (string, bytes, int, float, bool, None).
type Literal interface {
	Value
	Literal() any
}

// StringOf returns the text of a string constant.
func StringOf(v Value) (string, bool) {
	lit, ok := v.(Literal)
	if !ok {
		return "", false
	}
	s, ok := lit.Literal().(string)
	return s, ok
}
