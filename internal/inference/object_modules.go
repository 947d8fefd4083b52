package inference

import (
	"fmt"

	"github.com/funvibe/hintinfer/internal/ast"
	"github.com/funvibe/hintinfer/internal/lazy"
	"github.com/funvibe/hintinfer/internal/values"
)

// ModuleValue is a parsed module. It is both a value (the module object)
// and the context of its top-level code.
type ModuleValue struct {
	values.Base
	state *State
	name  string
	node  *ast.Module
}

func (m *ModuleValue) Kind() values.Kind { return values.KindModule }
func (m *ModuleValue) Name() string      { return m.name }
func (m *ModuleValue) Hash() string      { return "module:" + m.name }
func (m *ModuleValue) String() string    { return fmt.Sprintf("<module %s>", m.name) }

// Node returns the module's syntax tree.
func (m *ModuleValue) Node() *ast.Module { return m.node }

func (m *ModuleValue) Attr(name string) values.ValueSet {
	vs, _ := m.Lookup(name)
	return vs
}

func (m *ModuleValue) State() *State             { return m.state }
func (m *ModuleValue) Parent() Context           { return nil }
func (m *ModuleValue) Module() *ModuleValue      { return m }
func (m *ModuleValue) Predefined() lazy.Bindings { return nil }

func (m *ModuleValue) Lookup(name string) (values.ValueSet, bool) {
	return m.state.scopeLookup(m, m.node.Body, name)
}

func (m *ModuleValue) TypeVarBinding(string) (values.ValueSet, bool) {
	return values.NoValues, false
}

func (m *ModuleValue) Eval(node ast.Expr) values.ValueSet { return m.state.evalNode(m, node) }

func (m *ModuleValue) EvalWith(node ast.Expr, predefined lazy.Bindings) values.ValueSet {
	return evalWith(m, node, predefined)
}

// Definitions returns the functions and classes defined at the top level
// of the module, in source order.
func (m *ModuleValue) Definitions() []values.Value {
	var out []values.Value
	for _, stmt := range m.node.Body {
		switch def := stmt.(type) {
		case *ast.FuncDef:
			out = append(out, m.state.function(m, def))
		case *ast.ClassDef:
			out = append(out, m.state.class(m, def))
		}
	}
	return out
}
