package inference

import (
	"github.com/funvibe/hintinfer/internal/ast"
	"github.com/funvibe/hintinfer/internal/config"
	"github.com/funvibe/hintinfer/internal/lazy"
	"github.com/funvibe/hintinfer/internal/values"
)

// TreeArguments are the arguments of a call expression, evaluated lazily
// in the caller's context.
type TreeArguments struct {
	ctx  Context
	args []*ast.Arg
}

func (a *TreeArguments) Unpack() []values.Argument {
	out := make([]values.Argument, 0, len(a.args))
	for _, arg := range a.args {
		var kw string
		if arg.Keyword != nil {
			kw = arg.Keyword.Value
		}
		out = append(out, values.Argument{Keyword: kw, Star: arg.Star, Value: lazy.NewTree(a.ctx, arg.Value)})
	}
	return out
}

func (a *TreeArguments) Receiver() values.Value { return nil }

// ValuesArguments are positional arguments whose values are already known.
type ValuesArguments struct {
	sets []values.ValueSet
}

func NewValuesArguments(sets ...values.ValueSet) *ValuesArguments {
	return &ValuesArguments{sets: sets}
}

func (a *ValuesArguments) Unpack() []values.Argument {
	out := make([]values.Argument, len(a.sets))
	for i, set := range a.sets {
		out[i] = values.Argument{Value: lazy.NewKnownSet(set)}
	}
	return out
}

func (a *ValuesArguments) Receiver() values.Value { return nil }

var noArguments values.Arguments = NewValuesArguments()

// keyArguments passes a subscript key to __getitem__.
func keyArguments(s *State, key any) values.Arguments {
	if key == nil {
		return NewValuesArguments(values.NoValues)
	}
	return NewValuesArguments(values.NewSet(s.Natives.ConstantOf(key)))
}

// boundArguments prepends the receiver of a method call.
type boundArguments struct {
	receiver values.Value
	args     values.Arguments
}

func (a *boundArguments) Unpack() []values.Argument {
	return append([]values.Argument{{Value: lazy.NewKnown(a.receiver)}}, a.args.Unpack()...)
}

func (a *boundArguments) Receiver() values.Value { return a.receiver }

// ExecutedParam is a declared parameter together with what a call bound to
// it. Value is nil when the call supplied nothing and there is no default.
type ExecutedParam struct {
	Param   *ast.Param
	Value   values.Lazy
	Default bool
}

// Missing reports whether nothing was bound to the parameter.
func (p *ExecutedParam) Missing() bool { return p.Value == nil }

// bindParams matches actual arguments to the declared parameters of fn.
func (s *State) bindParams(fn *FunctionValue, args values.Arguments) []*ExecutedParam {
	var positional []values.Lazy
	keywords := map[string]values.Lazy{}
	var kwOrder []string
	var spread values.Lazy

	for _, arg := range args.Unpack() {
		switch {
		case arg.Star == 1:
			set := arg.Value.Infer()
			if v, ok := set.Only(); ok {
				if elems := v.Iterate(); elems != nil {
					positional = append(positional, elems...)
					continue
				}
			}
			positional = append(positional, lazy.NewKnownSet(set.Iterate(), lazy.Arity(0, values.Unbounded)))
		case arg.Star == 2:
			spread = lazy.NewKnownSet(arg.Value.Infer().MappingValues())
		case arg.Keyword != "":
			if _, dup := keywords[arg.Keyword]; !dup {
				kwOrder = append(kwOrder, arg.Keyword)
			}
			keywords[arg.Keyword] = arg.Value
		default:
			positional = append(positional, arg.Value)
		}
	}

	params := fn.node.Params
	out := make([]*ExecutedParam, 0, len(params))
	for _, p := range params {
		ep := &ExecutedParam{Param: p}
		name := p.Name.Value
		switch p.Star {
		case 1:
			ep.Value = lazy.NewKnown(s.fakeSequence(config.TupleClassName, positional))
			positional = nil
		case 2:
			var keys, vals []values.Lazy
			for _, kw := range kwOrder {
				if v, ok := keywords[kw]; ok {
					keys = append(keys, lazy.NewKnown(s.Natives.Constant(config.StrClassName, kw)))
					vals = append(vals, v)
				}
			}
			clear(keywords)
			ep.Value = lazy.NewKnown(s.fakeDict(keys, vals))
		default:
			switch {
			case len(positional) > 0:
				head := positional[0]
				ep.Value = head
				if lo, hi := head.Bounds(); lo == 1 && hi == 1 {
					positional = positional[1:]
				}
			case keywords[name] != nil:
				ep.Value = keywords[name]
				delete(keywords, name)
			case spread != nil:
				ep.Value = spread
			case p.Default != nil:
				ep.Value = lazy.NewTree(fn.parent, p.Default)
				ep.Default = true
			default:
				s.debugf("%s: missing argument %s", fn.Name(), name)
			}
		}
		out = append(out, ep)
	}
	for _, p := range positional {
		if lo, hi := p.Bounds(); lo == 1 && hi == 1 {
			s.debugf("%s: too many positional arguments", fn.Name())
			break
		}
	}
	return out
}
