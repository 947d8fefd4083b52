package inference

import (
	"strings"

	"github.com/funvibe/hintinfer/internal/ast"
	"github.com/funvibe/hintinfer/internal/lazy"
	"github.com/funvibe/hintinfer/internal/memo"
	"github.com/funvibe/hintinfer/internal/values"
)

// definition is one statement binding a name in a scope.
type definition struct {
	stmt    ast.Stmt
	target  ast.Expr // assignment or loop target containing the name
	item    *ast.WithItem
	alias   *ast.Alias
	handler *ast.ExceptHandler
}

// scopeLookup infers a name bound in the given scope body. ok is false
// when no statement of the scope binds it.
func (s *State) scopeLookup(ctx Context, body []ast.Stmt, name string) (values.ValueSet, bool) {
	defs := definitions(body, name)
	if len(defs) == 0 {
		return values.NoValues, false
	}
	result := memo.Guard(s.cache, memo.On("name", ctx, name), values.NoValues, func() values.ValueSet {
		var sets []values.ValueSet
		for _, d := range defs {
			if vs, ok := s.inferDefinition(ctx, d, name); ok {
				sets = append(sets, vs)
			}
		}
		return values.FromSets(sets...)
	})
	// a star import binds the name only if the imported module defines it
	return result, hasExplicitDefinition(defs) || !result.Empty()
}

func hasExplicitDefinition(defs []definition) bool {
	for _, d := range defs {
		if d.alias == nil || d.alias.Name != "*" {
			return true
		}
	}
	return false
}

// definitions collects the statements of a scope that bind name, in
// source order. Star imports are candidates for every name.
func definitions(body []ast.Stmt, name string) []definition {
	var defs []definition
	walkScope(body, func(stmt ast.Stmt) {
		switch st := stmt.(type) {
		case *ast.FuncDef:
			if st.Name.Value == name {
				defs = append(defs, definition{stmt: st})
			}
		case *ast.ClassDef:
			if st.Name.Value == name {
				defs = append(defs, definition{stmt: st})
			}
		case *ast.Assign:
			for _, t := range st.Targets {
				if bindsName(t, name) {
					defs = append(defs, definition{stmt: st, target: t})
				}
			}
		case *ast.AnnAssign:
			if bindsName(st.Target, name) {
				defs = append(defs, definition{stmt: st, target: st.Target})
			}
		case *ast.AugAssign:
			if bindsName(st.Target, name) {
				defs = append(defs, definition{stmt: st, target: st.Target})
			}
		case *ast.For:
			if bindsName(st.Target, name) {
				defs = append(defs, definition{stmt: st, target: st.Target})
			}
		case *ast.With:
			for _, item := range st.Items {
				if item.Target != nil && bindsName(item.Target, name) {
					defs = append(defs, definition{stmt: st, target: item.Target, item: item})
				}
			}
		case *ast.Import:
			for _, a := range st.Names {
				if a.Bound() == name {
					defs = append(defs, definition{stmt: st, alias: a})
				}
			}
		case *ast.ImportFrom:
			for _, a := range st.Names {
				if a.Name == "*" || a.Bound() == name {
					defs = append(defs, definition{stmt: st, alias: a})
				}
			}
		case *ast.Try:
			for _, h := range st.Handlers {
				if h.Name != nil && h.Name.Value == name {
					defs = append(defs, definition{stmt: st, handler: h})
				}
			}
		}
	})
	return defs
}

// bindsName reports whether an assignment target binds name.
func bindsName(target ast.Expr, name string) bool {
	switch t := target.(type) {
	case *ast.Name:
		return t.Value == name
	case *ast.Starred:
		return bindsName(t.X, name)
	case *ast.Tuple:
		for _, e := range t.Elts {
			if bindsName(e, name) {
				return true
			}
		}
	case *ast.List:
		for _, e := range t.Elts {
			if bindsName(e, name) {
				return true
			}
		}
	}
	return false
}

// inferDefinition infers what one binding statement assigns to name.
func (s *State) inferDefinition(ctx Context, d definition, name string) (values.ValueSet, bool) {
	switch st := d.stmt.(type) {
	case *ast.FuncDef:
		return values.NewSet(s.function(ctx, st)), true
	case *ast.ClassDef:
		return values.NewSet(s.class(ctx, st)), true
	case *ast.Assign:
		if hint := s.FindTypeFromCommentHintAssign(ctx, st, name); !hint.Empty() {
			return hint, true
		}
		return s.bindTarget(d.target, ctx.Eval(st.Value), name), true
	case *ast.AnnAssign:
		if hint := s.inferAnnotation(ctx, st.Annotation).ExecuteAnnotation(); !hint.Empty() {
			return hint, true
		}
		if st.Value == nil {
			return values.NoValues, true
		}
		return ctx.Eval(st.Value), true
	case *ast.AugAssign:
		left := ctx.Eval(st.Target)
		right := ctx.Eval(st.Value)
		return s.binaryOperation(ctx, left, st.Op, right), true
	case *ast.For:
		if hint := s.FindTypeFromCommentHintFor(ctx, st, name); !hint.Empty() {
			return hint, true
		}
		return s.bindTarget(d.target, ctx.Eval(st.Iter).Iterate(), name), true
	case *ast.With:
		if hint := s.FindTypeFromCommentHintWith(ctx, st, name); !hint.Empty() {
			return hint, true
		}
		entered := ctx.Eval(d.item.Context).Attr("__enter__").Call(noArguments)
		return s.bindTarget(d.target, entered, name), true
	case *ast.Import:
		if d.alias.AsName != nil {
			return s.Import(d.alias.Name), true
		}
		return s.Import(d.alias.Bound()), true
	case *ast.ImportFrom:
		return s.importFrom(ctx, st, d.alias, name)
	case *ast.Try:
		return s.exceptionInstances(ctx.Eval(d.handler.Type)), true
	}
	return values.NoValues, false
}

func (s *State) bindTarget(target ast.Expr, value values.ValueSet, name string) values.ValueSet {
	if n, ok := target.(*ast.Name); ok && n.Value == name {
		return value
	}
	names := lazy.Bindings{}
	s.assignTarget(target, value, names)
	if vs, ok := names[name]; ok {
		return vs
	}
	return values.NoValues
}

// importFrom resolves `from module import name`. Relative imports resolve
// against the importing module's package.
func (s *State) importFrom(ctx Context, st *ast.ImportFrom, alias *ast.Alias, name string) (values.ValueSet, bool) {
	module := st.Module
	if st.Level > 0 {
		parts := strings.Split(ctx.Module().Name(), ".")
		keep := len(parts) - st.Level
		if keep < 0 {
			s.warnf("relative import beyond top-level package in %s", ctx.Module().Name())
			return values.NoValues, alias.Name != "*"
		}
		prefix := strings.Join(parts[:keep], ".")
		switch {
		case prefix == "":
		case module == "":
			module = prefix
		default:
			module = prefix + "." + module
		}
	}
	if alias.Name == "*" {
		var sets []values.ValueSet
		found := false
		for m := range s.Import(module).All() {
			if mod, ok := m.(*ModuleValue); ok {
				if vs, ok := mod.Lookup(name); ok {
					sets = append(sets, vs)
					found = true
				}
			}
		}
		return values.FromSets(sets...), found
	}
	attr := s.Import(module).Attr(alias.Name)
	if attr.Empty() {
		if _, ok := s.modules[module+"."+alias.Name]; ok {
			return s.Import(module + "." + alias.Name), true
		}
	}
	return attr, true
}

// exceptionInstances turns the class (or tuple of classes) of an except
// clause into the instances the handler may bind.
func (s *State) exceptionInstances(classes values.ValueSet) values.ValueSet {
	return classes.Map(func(v values.Value) values.ValueSet {
		if v.ArrayType() == "tuple" {
			var sets []values.ValueSet
			for _, e := range v.Iterate() {
				sets = append(sets, e.Infer().ExecuteAnnotation())
			}
			return values.FromSets(sets...)
		}
		return v.ExecuteAnnotation()
	})
}
