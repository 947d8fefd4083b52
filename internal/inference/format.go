package inference

import (
	"slices"
	"strings"

	"github.com/funvibe/hintinfer/internal/native"
	"github.com/funvibe/hintinfer/internal/values"
)

// maxFormatDepth bounds how deep container element types are spelled out.
const maxFormatDepth = 3

// TypeNames renders each member of vs as a type expression, sorted and
// deduplicated.
func TypeNames(vs values.ValueSet) []string {
	return typeNames(vs, 0)
}

// FormatType renders vs as a single union type expression.
func FormatType(vs values.ValueSet) string {
	return formatUnion(vs, 0)
}

func typeNames(vs values.ValueSet, depth int) []string {
	var out []string
	for v := range vs.All() {
		out = append(out, typeName(v, depth))
	}
	slices.Sort(out)
	return slices.Compact(out)
}

func formatUnion(vs values.ValueSet, depth int) string {
	if vs.Empty() {
		return "?"
	}
	return strings.Join(typeNames(vs, depth), " | ")
}

func typeName(v values.Value, depth int) string {
	switch v := v.(type) {
	case *native.Constant:
		return v.Name()
	case *native.Class, *ClassValue:
		return "type[" + v.Name() + "]"
	case *AnnotatedClass:
		return "type[" + annotatedName(v, depth) + "]"
	case *AnnotatedInstance:
		return annotatedName(v.class, depth)
	case *TypeVar:
		return "~" + v.Name()
	case *Sequence, *ComprehensionValue:
		if depth >= maxFormatDepth {
			return v.ArrayType()
		}
		elems := values.NewSet(v).Iterate()
		if elems.Empty() {
			return v.ArrayType()
		}
		return v.ArrayType() + "[" + formatUnion(elems, depth+1) + "]"
	case *DictValue:
		keys, vals, _ := v.MappingItems()
		if depth >= maxFormatDepth || (keys.Empty() && vals.Empty()) {
			return "dict"
		}
		return "dict[" + formatUnion(keys, depth+1) + ", " + formatUnion(vals, depth+1) + "]"
	case *FunctionValue, *BoundMethod:
		return "function"
	case *ModuleValue:
		return "module"
	default:
		return v.Name()
	}
}

func annotatedName(a *AnnotatedClass, depth int) string {
	name := a.Generic().Name()
	if depth >= maxFormatDepth {
		return name
	}
	given := a.GivenTypes()
	parts := make([]string, len(given))
	for i, g := range given {
		if isEllipsis(g) {
			parts[i] = "..."
			continue
		}
		var names []string
		for v := range g.All() {
			names = append(names, annotationName(v, depth+1))
		}
		slices.Sort(names)
		parts[i] = strings.Join(slices.Compact(names), " | ")
		if parts[i] == "" {
			parts[i] = "?"
		}
	}
	return name + "[" + strings.Join(parts, ", ") + "]"
}

// annotationName renders a value used as a type argument.
func annotationName(v values.Value, depth int) string {
	switch v := v.(type) {
	case *native.Class, *ClassValue:
		return v.Name()
	case *AnnotatedClass:
		return annotatedName(v, depth)
	default:
		return typeName(v, depth)
	}
}
