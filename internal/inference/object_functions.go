package inference

import (
	"fmt"

	"github.com/funvibe/hintinfer/internal/ast"
	"github.com/funvibe/hintinfer/internal/config"
	"github.com/funvibe/hintinfer/internal/lazy"
	"github.com/funvibe/hintinfer/internal/memo"
	"github.com/funvibe/hintinfer/internal/values"
)

// FunctionValue is a function defined in analyzed source.
type FunctionValue struct {
	values.Base
	state  *State
	parent Context
	node   *ast.FuncDef
}

func (s *State) function(parent Context, node *ast.FuncDef) *FunctionValue {
	return memo.Construct(s.cache, memo.On("function", parent, node), func() *FunctionValue {
		return &FunctionValue{state: s, parent: parent, node: node}
	})
}

// lambda wraps a lambda expression into a one-statement function.
func (s *State) lambda(parent Context, node *ast.Lambda) *FunctionValue {
	def := memo.Construct(s.cache, memo.On("lambda-def", node), func() *ast.FuncDef {
		return &ast.FuncDef{
			Loc:    node.Loc,
			Name:   &ast.Name{Loc: node.Loc, Value: "<lambda>"},
			Params: node.Params,
			Body:   []ast.Stmt{&ast.Return{Loc: ast.Loc{Start: node.Body.Position()}, Value: node.Body}},
		}
	})
	return s.function(parent, def)
}

func (f *FunctionValue) Kind() values.Kind { return values.KindFunction }
func (f *FunctionValue) Name() string      { return f.node.Name.Value }
func (f *FunctionValue) Hash() string      { return fmt.Sprintf("function:%s@%p", f.node.Name.Value, f) }
func (f *FunctionValue) String() string    { return fmt.Sprintf("<function %s>", f.node.Name.Value) }

// Node returns the function definition.
func (f *FunctionValue) Node() *ast.FuncDef { return f.node }

// Parent returns the context the function was defined in.
func (f *FunctionValue) Parent() Context { return f.parent }

func (f *FunctionValue) Call(args values.Arguments) values.ValueSet {
	return f.state.execute(f, args)
}

func (f *FunctionValue) Attr(name string) values.ValueSet {
	return f.state.Natives.Instance(config.FunctionClassName).Attr(name)
}

func (f *FunctionValue) Class() values.ValueSet {
	if k, ok := f.state.Natives.Class(config.FunctionClassName); ok {
		return values.NewSet(k)
	}
	return values.NoValues
}

// typingName returns the name of a top-level function of the
// generic-types reference module, or "".
func (f *FunctionValue) typingName() string {
	if m, ok := f.parent.(*ModuleValue); ok && m == f.state.typing {
		return f.node.Name.Value
	}
	return ""
}

// execute runs a call of fn: it binds the arguments and infers the
// results. Recursive executions beyond the depth limit yield nothing.
func (s *State) execute(fn *FunctionValue, args values.Arguments) values.ValueSet {
	if special, ok := s.typingCall(fn, args); ok {
		return special
	}
	return memo.Guard(s.cache, memo.On("execute", fn, args), values.NoValues, func() values.ValueSet {
		if !s.enter(fn.node) {
			return values.NoValues
		}
		defer s.leave(fn.node)
		return s.NewExecution(fn, args).ReturnValues()
	})
}

// BoundMethod is a tree function looked up through an instance.
type BoundMethod struct {
	values.Base
	receiver values.Value
	fn       *FunctionValue
}

func (m *BoundMethod) Kind() values.Kind { return values.KindFunction }
func (m *BoundMethod) Name() string      { return m.fn.Name() }
func (m *BoundMethod) Hash() string      { return "bound:" + m.fn.Hash() + "@" + m.receiver.Hash() }
func (m *BoundMethod) String() string {
	return fmt.Sprintf("<bound method %s of %s>", m.fn.Name(), m.receiver)
}

// Function returns the unbound function.
func (m *BoundMethod) Function() *FunctionValue { return m.fn }

func (m *BoundMethod) Call(args values.Arguments) values.ValueSet {
	return m.fn.state.execute(m.fn, &boundArguments{receiver: m.receiver, args: args})
}

func (m *BoundMethod) Class() values.ValueSet { return m.fn.Class() }

// FunctionExecution is one call of a tree function: the context in which
// its body is evaluated with the parameters bound.
type FunctionExecution struct {
	Function *FunctionValue
	Args     values.Arguments

	state  *State
	params []*ExecutedParam
}

// NewExecution prepares the execution of fn with args without inferring
// anything yet.
func (s *State) NewExecution(fn *FunctionValue, args values.Arguments) *FunctionExecution {
	if args == nil {
		args = noArguments
	}
	return &FunctionExecution{Function: fn, Args: args, state: s}
}

// NewMethodExecution prepares a call of a method of class on a fresh
// instance. Static methods get no receiver.
func (s *State) NewMethodExecution(class *ClassValue, fn *FunctionValue) *FunctionExecution {
	if hasDecorator(fn.node, "staticmethod") {
		return s.NewExecution(fn, noArguments)
	}
	var receiver values.Value = s.instance(class)
	if hasDecorator(fn.node, "classmethod") {
		receiver = class
	}
	return s.NewExecution(fn, &boundArguments{receiver: receiver, args: noArguments})
}

func hasDecorator(fn *ast.FuncDef, name string) bool {
	for _, d := range fn.Decorators {
		if n, ok := d.(*ast.Name); ok && n.Value == name {
			return true
		}
	}
	return false
}

// Params returns the parameters bound by the call.
func (e *FunctionExecution) Params() []*ExecutedParam {
	if e.params == nil {
		e.params = e.state.bindParams(e.Function, e.Args)
	}
	return e.params
}

func (e *FunctionExecution) param(name string) *ExecutedParam {
	for _, p := range e.Params() {
		if p.Param.Name.Value == name {
			return p
		}
	}
	return nil
}

// ParamValues infers a parameter: its annotation if that yields anything,
// the bound argument otherwise.
func (e *FunctionExecution) ParamValues(p *ExecutedParam) values.ValueSet {
	return memo.Guard(e.state.cache, memo.On("param", e, p.Param), values.NoValues, func() values.ValueSet {
		if hint := e.state.InferParameterType(e, p.Param); !hint.Empty() {
			return hint
		}
		if p.Value == nil {
			return values.NoValues
		}
		return p.Value.Infer()
	})
}

// ReturnValues infers the results of the call.
func (e *FunctionExecution) ReturnValues() values.ValueSet {
	if annotated := e.state.InferReturnType(e); !annotated.Empty() {
		return annotated
	}
	body := e.Function.node.Body
	if isGenerator(body) {
		e.state.debugf("%s is a generator, results are not tracked", e.Function.Name())
		return values.NoValues
	}
	var sets []values.ValueSet
	walkScope(body, func(stmt ast.Stmt) {
		ret, ok := stmt.(*ast.Return)
		if !ok {
			return
		}
		if ret.Value == nil {
			sets = append(sets, values.NewSet(e.state.Natives.ConstantOf(nil)))
			return
		}
		sets = append(sets, e.Eval(ret.Value))
	})
	return values.FromSets(sets...)
}

func (e *FunctionExecution) State() *State             { return e.state }
func (e *FunctionExecution) Parent() Context           { return e.Function.parent }
func (e *FunctionExecution) Module() *ModuleValue      { return e.Function.parent.Module() }
func (e *FunctionExecution) Predefined() lazy.Bindings { return nil }

func (e *FunctionExecution) Lookup(name string) (values.ValueSet, bool) {
	var sets []values.ValueSet
	found := false
	if p := e.param(name); p != nil {
		sets = append(sets, e.ParamValues(p))
		found = true
	}
	if vs, ok := e.state.scopeLookup(e, e.Function.node.Body, name); ok {
		sets = append(sets, vs)
		found = true
	}
	return values.FromSets(sets...), found
}

func (e *FunctionExecution) TypeVarBinding(string) (values.ValueSet, bool) {
	return values.NoValues, false
}

func (e *FunctionExecution) Eval(node ast.Expr) values.ValueSet { return e.state.evalNode(e, node) }

func (e *FunctionExecution) EvalWith(node ast.Expr, predefined lazy.Bindings) values.ValueSet {
	return evalWith(e, node, predefined)
}

// walkScope visits the statements of a scope body, descending into
// compound statements but not into nested functions or classes.
func walkScope(body []ast.Stmt, visit func(ast.Stmt)) {
	for _, stmt := range body {
		visit(stmt)
		switch s := stmt.(type) {
		case *ast.If:
			walkScope(s.Body, visit)
			walkScope(s.Else, visit)
		case *ast.For:
			walkScope(s.Body, visit)
			walkScope(s.Else, visit)
		case *ast.While:
			walkScope(s.Body, visit)
			walkScope(s.Else, visit)
		case *ast.With:
			walkScope(s.Body, visit)
		case *ast.Try:
			walkScope(s.Body, visit)
			for _, h := range s.Handlers {
				walkScope(h.Body, visit)
			}
			walkScope(s.Else, visit)
			walkScope(s.Finally, visit)
		}
	}
}

// isGenerator reports whether a function body contains yield.
func isGenerator(body []ast.Stmt) bool {
	found := false
	walkScope(body, func(stmt ast.Stmt) {
		switch stmt.(type) {
		case *ast.FuncDef, *ast.ClassDef:
			return
		}
		for _, child := range ast.Children(stmt) {
			if _, isStmt := child.(ast.Stmt); isStmt {
				continue
			}
			ast.Inspect(child, func(n ast.Node) bool {
				switch n.(type) {
				case *ast.Yield:
					found = true
				case *ast.Lambda, ast.Stmt:
					return false
				}
				return !found
			})
		}
	})
	return found
}
