package inference

import (
	"iter"
	"strings"

	"github.com/funvibe/hintinfer/internal/ast"
	"github.com/funvibe/hintinfer/internal/memo"
	"github.com/funvibe/hintinfer/internal/parser"
	"github.com/funvibe/hintinfer/internal/prettyprinter"
	"github.com/funvibe/hintinfer/internal/values"
)

// InferParameterType infers a parameter of an execution from its inline
// annotation or, failing that, from the function's `# type: (...) -> ...`
// comment. The result is what an argument of the annotated type would be.
func (s *State) InferParameterType(exec *FunctionExecution, param *ast.Param) (result values.ValueSet) {
	defer recoverContract(s, &result, values.NoValues)
	return memo.Guard(s.cache, memo.On("infer-param", exec, param), values.NoValues, func() values.ValueSet {
		fn := exec.Function
		ctx := fn.parent
		if param.Annotation != nil && s.Config.InlineAnnotations() {
			return s.inferAnnotation(ctx, param.Annotation).ExecuteAnnotation()
		}

		m := functionComment.FindStringSubmatch(fn.node.TrailingComment())
		if m == nil {
			return values.NoValues
		}
		comments := s.splitCommentParams(m[1])
		index := fn.node.ParamIndex(param)
		if index < 0 {
			return values.NoValues
		}
		if len(comments) != len(fn.node.Params) {
			s.warnf("%s: comment declares %d parameters, function has %d", fn.Name(), len(comments), len(fn.node.Params))
		}
		if exec.Args.Receiver() != nil {
			if index == 0 {
				return values.NoValues
			}
			index--
		}
		if index >= len(comments) {
			return values.NoValues
		}
		return s.ResolveAnnotationString(ctx, comments[index], -1).ExecuteAnnotation()
	})
}

// InferReturnType infers the result of an execution from the return
// annotation or comment. Type variables the annotation leaves unbound are
// unified against the actual arguments first.
func (s *State) InferReturnType(exec *FunctionExecution) (result values.ValueSet) {
	defer recoverContract(s, &result, values.NoValues)
	return memo.Guard(s.cache, memo.On("infer-return", exec), values.NoValues, func() values.ValueSet {
		fn := exec.Function
		ctx := fn.parent
		annotation := fn.node.Returns
		if !s.Config.InlineAnnotations() {
			annotation = nil
		}
		if annotation == nil {
			m := functionComment.FindStringSubmatch(fn.node.TrailingComment())
			if m == nil {
				return values.NoValues
			}
			return s.ResolveAnnotationString(ctx, strings.TrimSpace(m[2]), -1).ExecuteAnnotation()
		}

		evaluated := s.inferAnnotation(ctx, annotation)
		if len(s.findTypeVars(ctx, annotation)) == 0 {
			return evaluated.ExecuteAnnotation()
		}
		return s.defineTypeVars(evaluated, s.inferTypeVarsForExecution(exec)).ExecuteAnnotation()
	})
}

// ResolveAnnotationString parses text as an expression and evaluates it in
// ctx. With index >= 0 only tuple-like results with more than index
// members are kept, reduced to that member.
func (s *State) ResolveAnnotationString(ctx Context, text string, index int) (result values.ValueSet) {
	defer recoverContract(s, &result, values.NoValues)
	node := s.forwardReferenceNode(ctx, text)
	if node == nil {
		return values.NoValues
	}
	evaluated := ctx.Eval(node)
	if index < 0 {
		return evaluated
	}
	return evaluated.Filter(func(v values.Value) bool {
		return v.ArrayType() == "tuple" && len(v.Iterate()) > index
	}).GetItem(int64(index))
}

// FindUnboundTypeVars lists the type variables an annotation mentions, in
// order of first occurrence and without duplicates.
func (s *State) FindUnboundTypeVars(ctx Context, annotation ast.Expr) (result []*TypeVar) {
	defer recoverContract(s, &result, nil)
	return s.findTypeVars(ctx, annotation)
}

func (s *State) findTypeVars(ctx Context, annotation ast.Expr) []*TypeVar {
	if annotation == nil {
		return nil
	}
	return memo.Collect(s.cache, memo.On("type-vars", ctx, annotation), func() iter.Seq[*TypeVar] {
		return func(yield func(*TypeVar) bool) {
			seen := map[string]bool{}
			var check func(node ast.Expr) bool
			check = func(node ast.Expr) bool {
				if sub, ok := node.(*ast.Subscript); ok {
					for _, idx := range sub.Index {
						if _, isSlice := idx.(*ast.Slice); isSlice {
							continue
						}
						if !check(idx) {
							return false
						}
					}
					return true
				}
				for v := range ctx.Eval(node).All() {
					tv, ok := v.(*TypeVar)
					if !ok || seen[tv.name] {
						continue
					}
					seen[tv.name] = true
					if !yield(tv) {
						return false
					}
				}
				return true
			}
			check(annotation)
		}
	})
}

// inferAnnotation evaluates an annotation node, reading a string constant
// as a forward reference.
func (s *State) inferAnnotation(ctx Context, node ast.Expr) values.ValueSet {
	return ctx.Eval(s.fixForwardReference(ctx, node))
}

// fixForwardReference returns the expression a string annotation stands
// for, or node itself when it is not a single parsable string.
func (s *State) fixForwardReference(ctx Context, node ast.Expr) ast.Expr {
	evaluated := ctx.Eval(node)
	v, ok := evaluated.Only()
	if !ok {
		s.warnf("annotation %s should evaluate to one value, not %d", prettyprinter.Code(node), evaluated.Len())
		return node
	}
	if v.Name() != "str" {
		return node
	}
	text, ok := values.StringOf(v)
	if !ok {
		return node
	}
	if ref := s.forwardReferenceNode(ctx, text); ref != nil {
		return ref
	}
	return node
}

// forwardReferenceNode parses text as a detached expression positioned
// after the last line of the context's module.
func (s *State) forwardReferenceNode(ctx Context, text string) ast.Expr {
	module := ctx.Module()
	return memo.Memoize(s.cache, memo.On("forward-ref", module, text), func() ast.Expr {
		node, err := parser.ParseExpression(text)
		if err != nil {
			s.warnf("annotation not parsed: %q: %v", text, err)
			return nil
		}
		if module != nil {
			ast.Relocate(node, module.node.Lines+1)
		}
		return node
	})
}

// inferTypeVarsForExecution unifies the annotated parameters mentioning
// type variables with the arguments actually bound to them.
func (s *State) inferTypeVarsForExecution(exec *FunctionExecution) map[string]values.ValueSet {
	ctx := exec.Function.parent
	result := map[string]values.ValueSet{}
	for _, p := range exec.Params() {
		annotation := p.Param.Annotation
		if annotation == nil || p.Missing() {
			continue
		}
		if len(s.findTypeVars(ctx, annotation)) == 0 {
			continue
		}
		actual := p.Value.Infer()
		switch p.Param.Star {
		case 1:
			actual = actual.Iterate()
		case 2:
			actual = actual.MappingValues()
		}
		for ann := range s.inferAnnotation(ctx, annotation).All() {
			mergeTypeVars(result, s.inferTypeVars(ann, actual))
		}
	}
	return result
}

// inferTypeVars matches one annotation value against actual values. Only
// bare type variables, Iterable and Mapping are destructured.
func (s *State) inferTypeVars(annotation values.Value, actual values.ValueSet) map[string]values.ValueSet {
	result := map[string]values.ValueSet{}
	switch a := annotation.(type) {
	case *TypeVar:
		result[a.name] = actual.Class()
	case *AnnotatedClass:
		switch a.Name() {
		case "Iterable":
			if len(a.given) == 0 {
				break
			}
			elems := actual.Iterate()
			for nested := range a.given[0].All() {
				mergeTypeVars(result, s.inferTypeVars(nested, elems))
			}
		case "Mapping":
			if len(a.given) != 2 {
				break
			}
			for v := range actual.All() {
				keys, vals, ok := v.MappingItems()
				if !ok {
					continue
				}
				for nested := range a.given[0].All() {
					mergeTypeVars(result, s.inferTypeVars(nested, keys))
				}
				for nested := range a.given[1].All() {
					mergeTypeVars(result, s.inferTypeVars(nested, vals))
				}
			}
		}
	}
	return result
}

func mergeTypeVars(base, found map[string]values.ValueSet) {
	for name, vs := range found {
		if prev, ok := base[name]; ok {
			base[name] = prev.Union(vs)
		} else {
			base[name] = vs
		}
	}
}

// defineTypeVars substitutes bound type variables into annotation values:
// generic classes become annotated subclasses, type variables their
// bindings.
func (s *State) defineTypeVars(annotations values.ValueSet, bound map[string]values.ValueSet) values.ValueSet {
	if len(bound) == 0 {
		return annotations
	}
	return annotations.Map(func(v values.Value) values.ValueSet {
		switch a := v.(type) {
		case *ClassValue:
			tvs := a.TypeVars()
			if len(tvs) == 0 {
				return values.NewSet(a)
			}
			given := make([]values.ValueSet, len(tvs))
			for i, tv := range tvs {
				given[i] = values.NoValues
				if vs, ok := bound[tv.name]; ok {
					given[i] = vs
				}
			}
			return values.NewSet(s.annotatedClass(a, given))
		case *AnnotatedClass:
			given := make([]values.ValueSet, len(a.given))
			for i, g := range a.given {
				given[i] = s.defineTypeVars(g, bound)
			}
			return values.NewSet(s.annotatedClass(a.class, given))
		case *TypeVar:
			if vs, ok := bound[a.name]; ok {
				return vs
			}
		}
		return values.NewSet(v)
	})
}

// splitCommentParams splits the parameter list of a function comment into
// one annotation text per parameter, keeping subscripted generics whole.
func (s *State) splitCommentParams(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	node, err := parser.ParseExpression(text)
	if err != nil {
		s.warnf("comment annotation is not valid: %q: %v", text, err)
		return nil
	}
	if tuple, ok := node.(*ast.Tuple); ok && !tuple.Parens {
		out := make([]string, len(tuple.Elts))
		for i, elt := range tuple.Elts {
			out[i] = prettyprinter.Code(elt)
		}
		return out
	}
	return []string{prettyprinter.Code(node)}
}
