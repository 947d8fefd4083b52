package inference

import (
	_ "embed"

	"github.com/funvibe/hintinfer/internal/ast"
	"github.com/funvibe/hintinfer/internal/config"
	"github.com/funvibe/hintinfer/internal/lazy"
	"github.com/funvibe/hintinfer/internal/parser"
	"github.com/funvibe/hintinfer/internal/values"
)

//go:embed typing.py
var typingSource string

const factoryName = "factory"

// typingModule parses the generic-types reference module on first use.
func (s *State) typingModule() *ModuleValue {
	if s.typing != nil {
		return s.typing
	}
	tree, err := parser.ParseModule(s.Config.TypingModule, typingSource)
	if err != nil {
		s.log.Printf("error: generic-types reference module: %v", err)
		return nil
	}
	s.typing = &ModuleValue{state: s, name: s.Config.TypingModule, node: tree}
	return s.typing
}

// typingClass returns a top-level class of the reference module.
func (s *State) typingClass(name string) (*ClassValue, bool) {
	m := s.typingModule()
	if m == nil || name == "" {
		return nil, false
	}
	vs, ok := m.Lookup(name)
	if !ok {
		return nil, false
	}
	v, ok := vs.Only()
	if !ok {
		return nil, false
	}
	c, ok := v.(*ClassValue)
	return c, ok
}

// factoryExecution is the body context of the reference factory. Its
// classes are shared by every parametrization.
func (s *State) factoryExecution() (*FunctionExecution, bool) {
	m := s.typingModule()
	if m == nil {
		return nil, false
	}
	vs, _ := m.Lookup(factoryName)
	v, ok := vs.Only()
	if !ok {
		return nil, false
	}
	fn, ok := v.(*FunctionValue)
	if !ok {
		return nil, false
	}
	if s.factory == nil || s.factory.Function != fn {
		s.factory = s.NewExecution(fn, noArguments)
	}
	return s.factory, true
}

// factoryClass returns the class the factory defines under name.
func (s *State) factoryClass(name string) (*ClassValue, bool) {
	exec, ok := s.factoryExecution()
	if !ok {
		return nil, false
	}
	for _, stmt := range exec.Function.node.Body {
		if def, ok := stmt.(*ast.ClassDef); ok && def.Name.Value == name {
			return s.class(exec, def), true
		}
	}
	return nil, false
}

// typingGetItem parametrizes a class of the reference module. Union and
// Optional are evaluated directly; the factory classes go through a call
// of the reference factory.
func (s *State) typingGetItem(ctx Context, c *ClassValue, index []ast.Expr) values.ValueSet {
	nodes := make([]ast.Expr, len(index))
	for i, idx := range index {
		nodes[i] = s.fixForwardReference(ctx, idx)
	}
	name := c.Name()
	switch name {
	case config.UnionName:
		sets := make([]values.ValueSet, len(nodes))
		for i, n := range nodes {
			sets[i] = ctx.Eval(n)
		}
		return values.FromSets(sets...)
	case config.OptionalName:
		if len(nodes) == 0 {
			return values.NoValues
		}
		return ctx.Eval(nodes[0])
	}
	if _, ok := s.factoryClass(name); !ok {
		return values.NewSet(c)
	}
	exec, _ := s.factoryExecution()
	elems := make([]values.Lazy, len(nodes))
	for i, n := range nodes {
		elems[i] = lazy.NewTree(ctx, n)
	}
	return exec.Function.Call(NewValuesArguments(
		values.NewSet(s.Natives.Constant(config.StrClassName, name)),
		values.NewSet(s.fakeSequence(config.TupleClassName, elems)),
	))
}

// typingCall evaluates calls of the reference module's special functions.
// ok is false for every other function.
func (s *State) typingCall(fn *FunctionValue, args values.Arguments) (values.ValueSet, bool) {
	switch fn.typingName() {
	case config.TypeVarName:
		return s.callTypeVar(args), true
	case "cast":
		unpacked := args.Unpack()
		if len(unpacked) == 0 {
			return values.NoValues, true
		}
		return unpacked[0].Value.Infer().ExecuteAnnotation(), true
	case factoryName:
		return s.callFactory(args), true
	}
	return values.NoValues, false
}

func (s *State) callTypeVar(args values.Arguments) values.ValueSet {
	var name string
	bound := values.NoValues
	var constraints []values.ValueSet
	for i, arg := range args.Unpack() {
		switch {
		case i == 0 && arg.Keyword == "" && arg.Star == 0:
			for v := range arg.Value.Infer().All() {
				if str, ok := values.StringOf(v); ok {
					name = str
				}
			}
		case arg.Keyword == "bound":
			bound = arg.Value.Infer()
		case arg.Keyword == "" && arg.Star == 0:
			constraints = append(constraints, arg.Value.Infer())
		}
	}
	if name == "" {
		s.warnf("TypeVar without a constant name")
		return values.NoValues
	}
	return values.NewSet(s.typeVar(name, bound, constraints))
}

// callFactory builds the annotated class for factory(name, indextypes).
func (s *State) callFactory(args values.Arguments) values.ValueSet {
	unpacked := args.Unpack()
	if len(unpacked) != 2 {
		return values.NoValues
	}
	var out []values.ValueSet
	for nameValue := range unpacked[0].Value.Infer().All() {
		name, ok := values.StringOf(nameValue)
		if !ok {
			continue
		}
		class, ok := s.factoryClass(name)
		if !ok {
			continue
		}
		for tuple := range unpacked[1].Value.Infer().All() {
			elems := tuple.Iterate()
			given := make([]values.ValueSet, len(elems))
			for i, e := range elems {
				given[i] = e.Infer()
			}
			out = append(out, values.NewSet(s.annotatedClass(class, given)))
		}
	}
	return values.FromSets(out...)
}
