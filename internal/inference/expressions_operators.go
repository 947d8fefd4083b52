package inference

import (
	"github.com/funvibe/hintinfer/internal/ast"
	"github.com/funvibe/hintinfer/internal/config"
	"github.com/funvibe/hintinfer/internal/native"
	"github.com/funvibe/hintinfer/internal/values"
)

var binaryDunders = map[string]string{
	"+":  "add",
	"-":  "sub",
	"*":  "mul",
	"/":  "truediv",
	"//": "floordiv",
	"%":  "mod",
	"**": "pow",
	"@":  "matmul",
	"<<": "lshift",
	">>": "rshift",
	"&":  "and",
	"|":  "or",
	"^":  "xor",
}

var unaryDunders = map[string]string{
	"-": "__neg__",
	"+": "__pos__",
	"~": "__invert__",
}

// numeric tower ranks, bool counting as int
var numericRank = map[string]int{
	"bool":    1,
	"int":     1,
	"float":   2,
	"complex": 3,
}

var rankClass = []string{1: "int", 2: "float", 3: "complex"}

func (s *State) boolInstance() values.ValueSet { return s.Natives.Instance(config.BoolClassName) }

func (s *State) evalUnary(ctx Context, n *ast.Unary) values.ValueSet {
	if n.Op == "not" {
		return s.boolInstance()
	}
	return ctx.Eval(n.X).Map(func(v values.Value) values.ValueSet {
		if c, ok := v.(*native.Constant); ok {
			switch x := c.Literal().(type) {
			case int64:
				switch n.Op {
				case "-":
					return values.NewSet(s.Natives.ConstantOf(-x))
				case "~":
					return values.NewSet(s.Natives.ConstantOf(^x))
				}
				return values.NewSet(v)
			case float64:
				if n.Op == "-" {
					return values.NewSet(s.Natives.ConstantOf(-x))
				}
				return values.NewSet(v)
			case bool:
				return s.Natives.Instance(config.IntClassName)
			}
		}
		if rank, ok := numericRank[v.Name()]; ok && v.Kind() == values.KindNative {
			return s.Natives.Instance(rankClass[rank])
		}
		return v.Attr(unaryDunders[n.Op]).Call(noArguments)
	})
}

func (s *State) evalBinary(ctx Context, n *ast.Binary) values.ValueSet {
	switch n.Op {
	case "and", "or":
		return ctx.Eval(n.X).Union(ctx.Eval(n.Y))
	case "<", ">", "==", ">=", "<=", "!=", "<>", "in", "not in", "is", "is not":
		return s.boolInstance()
	}
	return s.binaryOperation(ctx, ctx.Eval(n.X), n.Op, ctx.Eval(n.Y))
}

// binaryOperation infers `left op right` for every pair of members.
func (s *State) binaryOperation(ctx Context, left values.ValueSet, op string, right values.ValueSet) values.ValueSet {
	dunder, ok := binaryDunders[op]
	if !ok {
		s.debugf("unknown operator %s", op)
		return values.NoValues
	}
	return left.Map(func(l values.Value) values.ValueSet {
		return right.Map(func(r values.Value) values.ValueSet {
			if result, ok := s.numericOperation(l, op, r); ok {
				return result
			}
			if result, ok := s.sequenceOperation(l, op, r); ok {
				return result
			}
			result := l.Attr("__" + dunder + "__").Call(NewValuesArguments(values.NewSet(r)))
			if result.Empty() {
				result = r.Attr("__r" + dunder + "__").Call(NewValuesArguments(values.NewSet(l)))
			}
			return result
		})
	})
}

// numericOperation applies the numeric tower to native numbers.
func (s *State) numericOperation(l values.Value, op string, r values.Value) (values.ValueSet, bool) {
	if l.Kind() != values.KindNative && l.Kind() != values.KindConstant {
		return values.NoValues, false
	}
	if r.Kind() != values.KindNative && r.Kind() != values.KindConstant {
		return values.NoValues, false
	}
	lr, lok := numericRank[l.Name()]
	rr, rok := numericRank[r.Name()]
	if !lok || !rok {
		return values.NoValues, false
	}
	rank := max(lr, rr)
	if op == "/" && rank == 1 {
		rank = 2
	}
	return s.Natives.Instance(rankClass[rank]), true
}

// sequenceOperation covers concatenation, repetition and string
// formatting of builtin sequences.
func (s *State) sequenceOperation(l values.Value, op string, r values.Value) (values.ValueSet, bool) {
	kind := l.ArrayType()
	if kind == "" && (l.Kind() == values.KindNative || l.Kind() == values.KindConstant) {
		kind = l.Name()
	}
	switch kind {
	case "str", "bytes":
		if op == "%" || (op == "+" && r.Name() == kind) || (op == "*" && numericRank[r.Name()] == 1) {
			return s.Natives.Instance(kind), true
		}
	case "list", "tuple":
		switch {
		case op == "+" && r.ArrayType() == kind:
			return values.NewSet(s.fakeSequence(kind, append(append([]values.Lazy(nil), l.Iterate()...), r.Iterate()...))), true
		case op == "+" && r.Name() == kind:
			return s.Natives.Instance(kind), true
		case op == "*" && numericRank[r.Name()] == 1:
			return values.NewSet(s.fakeSequence(kind, variadic(values.NewSet(l).Iterate()))), true
		}
	}
	return values.NoValues, false
}
