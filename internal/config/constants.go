package config

import "strings"

// SourceFileExtensions are all recognized source file extensions
var SourceFileExtensions = []string{".py", ".pyi"}

// DefaultTypingModule is the namespace generic annotations are imported from.
const DefaultTypingModule = "typing"

// DefaultTargetVersion is assumed when a config names no target.
const DefaultTargetVersion = "3.8"

// InlineAnnotationConstraint gates `param: T` and `-> T` annotations.
// Comment annotations are honoured for every target.
const InlineAnnotationConstraint = ">= 3.0"

// BuiltinGenericsConstraint gates subscripting builtin containers in
// annotations, as in `list[int]`.
const BuiltinGenericsConstraint = ">= 3.9"

// Special forms of the typing namespace
const (
	UnionName    = "Union"
	OptionalName = "Optional"
	TypeVarName  = "TypeVar"
)

// Generic reference classes of the typing namespace
const (
	IterableName = "Iterable"
	TupleName    = "Tuple"
	MappingName  = "Mapping"
)

// Legacy comment annotations
const (
	// FunctionCommentPattern matches `# type: (<params>) -> <return>`.
	FunctionCommentPattern = `^#\s*type:\s*\(([^#]*)\)\s*->\s*([^#]*)`
	// TargetCommentPattern matches `# type: <expr>` on assignments,
	// with-statements and for-loops.
	TargetCommentPattern = `^#\s*type:\s*([^#]*)`
)

// Native class names every session knows about
const (
	NoneClassName     = "NoneType"
	IntClassName      = "int"
	FloatClassName    = "float"
	ComplexClassName  = "complex"
	StrClassName      = "str"
	BytesClassName    = "bytes"
	BoolClassName     = "bool"
	ListClassName     = "list"
	TupleClassName    = "tuple"
	SetClassName      = "set"
	DictClassName     = "dict"
	FunctionClassName = "function"
	TypeClassName     = "type"
)

// HasSourceExt reports whether path ends with a recognized source extension.
func HasSourceExt(path string) bool {
	for _, ext := range SourceFileExtensions {
		if strings.HasSuffix(path, ext) {
			return true
		}
	}
	return false
}

// TrimSourceExt removes a recognized source extension from name.
func TrimSourceExt(name string) string {
	for _, ext := range SourceFileExtensions {
		if trimmed, ok := strings.CutSuffix(name, ext); ok {
			return trimmed
		}
	}
	return name
}
