package object

import "fmt"

// Builtin value classes are registered through the same host contract as any
// embedder-supplied class, so script-defined subclasses inherit their
// protocol members by ordinary chain scanning. Only the operator surface the
// router needs lives here; a full numeric tower is someone else's problem.

func (ctx *Context) bootstrapBuiltins() {
	ctx.builtins.Nil = ctx.mustRegister(HostClassSpec{Name: "Nil"})
	ctx.builtins.Bool = ctx.mustRegister(HostClassSpec{Name: "Bool"})
	ctx.builtins.Native = ctx.mustRegister(HostClassSpec{Name: "Function"})
	ctx.builtins.Int = ctx.mustRegister(intClassSpec())
	ctx.builtins.Float = ctx.mustRegister(floatClassSpec())
	ctx.builtins.Str = ctx.mustRegister(strClassSpec())

	iter := ctx.mustRegister(listIteratorSpec())
	ctx.builtins.List = ctx.mustRegister(listClassSpec(iter))
}

func (ctx *Context) mustRegister(spec HostClassSpec) *Class {
	cls, err := ctx.RegisterClass(spec)
	if err != nil {
		panic(fmt.Sprintf("bootstrap: registering %s: %v", spec.Name, err))
	}
	return cls
}

//-----------------------------------------------------------------------------
// Int
//-----------------------------------------------------------------------------

// intBinary declines anything but int operands, leaving mixed arithmetic to
// Float's reflected members.
func intBinary(apply func(a, b int64) (Value, error)) NativeFn {
	return func(ctx *Context, args []Value, kwargs map[string]Value) (Value, error) {
		if len(args) < 2 {
			return NotApplicable, nil
		}
		a, okA := args[0].(IntValue)
		b, okB := args[1].(IntValue)
		if !okA || !okB {
			return NotApplicable, nil
		}
		return apply(a.Val, b.Val)
	}
}

func intClassSpec() HostClassSpec {
	return HostClassSpec{
		Name: "Int",
		Ctor: func(ctx *Context, cls *Class, args []Value, kwargs map[string]Value) (Value, error) {
			if len(args) == 0 {
				return IntValue{}, nil
			}
			switch v := args[0].(type) {
			case IntValue:
				return v, nil
			case FloatValue:
				return IntValue{Val: int64(v.Val)}, nil
			case BoolValue:
				if v.Val {
					return IntValue{Val: 1}, nil
				}
				return IntValue{}, nil
			default:
				return nil, fmt.Errorf("cannot construct Int from %s", args[0].Kind())
			}
		},
		Protocols: map[string]NativeFn{
			"__add__": intBinary(func(a, b int64) (Value, error) { return IntValue{Val: a + b}, nil }),
			"__sub__": intBinary(func(a, b int64) (Value, error) { return IntValue{Val: a - b}, nil }),
			"__mul__": intBinary(func(a, b int64) (Value, error) { return IntValue{Val: a * b}, nil }),
			"__div__": intBinary(func(a, b int64) (Value, error) {
				if b == 0 {
					return nil, fmt.Errorf("division by zero")
				}
				return IntValue{Val: a / b}, nil
			}),
			"__mod__": intBinary(func(a, b int64) (Value, error) {
				if b == 0 {
					return nil, fmt.Errorf("division by zero")
				}
				return IntValue{Val: a % b}, nil
			}),
			"__neg__": func(ctx *Context, args []Value, kwargs map[string]Value) (Value, error) {
				n, ok := args[0].(IntValue)
				if !ok {
					return NotApplicable, nil
				}
				return IntValue{Val: -n.Val}, nil
			},
			"__eq__": intBinary(func(a, b int64) (Value, error) { return BoolValue{Val: a == b}, nil }),
			"__lt__": intBinary(func(a, b int64) (Value, error) { return BoolValue{Val: a < b}, nil }),
			"__le__": intBinary(func(a, b int64) (Value, error) { return BoolValue{Val: a <= b}, nil }),
			"__gt__": intBinary(func(a, b int64) (Value, error) { return BoolValue{Val: a > b}, nil }),
			"__ge__": intBinary(func(a, b int64) (Value, error) { return BoolValue{Val: a >= b}, nil }),
		},
	}
}

//-----------------------------------------------------------------------------
// Float
//-----------------------------------------------------------------------------

func asFloat(v Value) (float64, bool) {
	switch n := v.(type) {
	case FloatValue:
		return n.Val, true
	case IntValue:
		return float64(n.Val), true
	default:
		return 0, false
	}
}

// floatBinary accepts int operands too; Int's members decline mixed
// pairings, so int-float arithmetic arrives here through reflection.
func floatBinary(apply func(a, b float64) (Value, error)) NativeFn {
	return func(ctx *Context, args []Value, kwargs map[string]Value) (Value, error) {
		if len(args) < 2 {
			return NotApplicable, nil
		}
		a, okA := asFloat(args[0])
		b, okB := asFloat(args[1])
		if !okA || !okB {
			return NotApplicable, nil
		}
		return apply(a, b)
	}
}

// swapped reverses operand order for reflected members.
func swapped(fn NativeFn) NativeFn {
	return func(ctx *Context, args []Value, kwargs map[string]Value) (Value, error) {
		if len(args) < 2 {
			return NotApplicable, nil
		}
		return fn(ctx, []Value{args[1], args[0]}, kwargs)
	}
}

func floatClassSpec() HostClassSpec {
	add := floatBinary(func(a, b float64) (Value, error) { return FloatValue{Val: a + b}, nil })
	sub := floatBinary(func(a, b float64) (Value, error) { return FloatValue{Val: a - b}, nil })
	mul := floatBinary(func(a, b float64) (Value, error) { return FloatValue{Val: a * b}, nil })
	div := floatBinary(func(a, b float64) (Value, error) {
		if b == 0 {
			return nil, fmt.Errorf("division by zero")
		}
		return FloatValue{Val: a / b}, nil
	})
	return HostClassSpec{
		Name: "Float",
		Ctor: func(ctx *Context, cls *Class, args []Value, kwargs map[string]Value) (Value, error) {
			if len(args) == 0 {
				return FloatValue{}, nil
			}
			f, ok := asFloat(args[0])
			if !ok {
				return nil, fmt.Errorf("cannot construct Float from %s", args[0].Kind())
			}
			return FloatValue{Val: f}, nil
		},
		Protocols: map[string]NativeFn{
			"__add__":  add,
			"__radd__": swapped(add),
			"__sub__":  sub,
			"__rsub__": swapped(sub),
			"__mul__":  mul,
			"__rmul__": swapped(mul),
			"__div__":  div,
			"__rdiv__": swapped(div),
			"__neg__": func(ctx *Context, args []Value, kwargs map[string]Value) (Value, error) {
				f, ok := args[0].(FloatValue)
				if !ok {
					return NotApplicable, nil
				}
				return FloatValue{Val: -f.Val}, nil
			},
			"__eq__": floatBinary(func(a, b float64) (Value, error) { return BoolValue{Val: a == b}, nil }),
			"__lt__": floatBinary(func(a, b float64) (Value, error) { return BoolValue{Val: a < b}, nil }),
			"__le__": floatBinary(func(a, b float64) (Value, error) { return BoolValue{Val: a <= b}, nil }),
			"__gt__": floatBinary(func(a, b float64) (Value, error) { return BoolValue{Val: a > b}, nil }),
			"__ge__": floatBinary(func(a, b float64) (Value, error) { return BoolValue{Val: a >= b}, nil }),
		},
	}
}

//-----------------------------------------------------------------------------
// Str
//-----------------------------------------------------------------------------

func strBinary(apply func(a, b string) (Value, error)) NativeFn {
	return func(ctx *Context, args []Value, kwargs map[string]Value) (Value, error) {
		if len(args) < 2 {
			return NotApplicable, nil
		}
		a, okA := args[0].(StringValue)
		b, okB := args[1].(StringValue)
		if !okA || !okB {
			return NotApplicable, nil
		}
		return apply(a.Val, b.Val)
	}
}

func strClassSpec() HostClassSpec {
	return HostClassSpec{
		Name: "Str",
		Ctor: func(ctx *Context, cls *Class, args []Value, kwargs map[string]Value) (Value, error) {
			if len(args) == 0 {
				return StringValue{}, nil
			}
			s, err := ctx.Str(args[0])
			if err != nil {
				return nil, err
			}
			return StringValue{Val: s}, nil
		},
		Protocols: map[string]NativeFn{
			"__add__": strBinary(func(a, b string) (Value, error) { return StringValue{Val: a + b}, nil }),
			"__len__": func(ctx *Context, args []Value, kwargs map[string]Value) (Value, error) {
				s, ok := args[0].(StringValue)
				if !ok {
					return NotApplicable, nil
				}
				return IntValue{Val: int64(len(s.Val))}, nil
			},
			"__eq__": strBinary(func(a, b string) (Value, error) { return BoolValue{Val: a == b}, nil }),
			"__lt__": strBinary(func(a, b string) (Value, error) { return BoolValue{Val: a < b}, nil }),
			"__contains__": func(ctx *Context, args []Value, kwargs map[string]Value) (Value, error) {
				if len(args) < 2 {
					return NotApplicable, nil
				}
				s, okS := args[0].(StringValue)
				sub, okSub := args[1].(StringValue)
				if !okS || !okSub {
					return NotApplicable, nil
				}
				return BoolValue{Val: containsString(s.Val, sub.Val)}, nil
			},
			"__getitem__": func(ctx *Context, args []Value, kwargs map[string]Value) (Value, error) {
				if len(args) < 2 {
					return NotApplicable, nil
				}
				s, okS := args[0].(StringValue)
				idx, okI := args[1].(IntValue)
				if !okS || !okI {
					return NotApplicable, nil
				}
				if idx.Val < 0 || idx.Val >= int64(len(s.Val)) {
					return nil, fmt.Errorf("string index %d out of range [0, %d)", idx.Val, len(s.Val))
				}
				return StringValue{Val: string(s.Val[idx.Val])}, nil
			},
		},
	}
}

func containsString(haystack, needle string) bool {
	if needle == "" {
		return true
	}
	for i := 0; i+len(needle) <= len(haystack); i++ {
		if haystack[i:i+len(needle)] == needle {
			return true
		}
	}
	return false
}

//-----------------------------------------------------------------------------
// List and its iterator
//-----------------------------------------------------------------------------

func listReceiver(args []Value) (*ListValue, bool) {
	if len(args) == 0 {
		return nil, false
	}
	l, ok := args[0].(*ListValue)
	return l, ok
}

func listIndex(list *ListValue, v Value) (int64, error) {
	idx, ok := v.(IntValue)
	if !ok {
		return 0, fmt.Errorf("list index must be int, got %s", v.Kind())
	}
	if idx.Val < 0 || idx.Val >= int64(len(list.Elements)) {
		return 0, fmt.Errorf("list index %d out of range [0, %d)", idx.Val, len(list.Elements))
	}
	return idx.Val, nil
}

// listIteratorSpec keeps its cursor in ordinary instance storage, so the
// iterator is itself a plain instance of a host class.
func listIteratorSpec() HostClassSpec {
	return HostClassSpec{
		Name: "ListIterator",
		Protocols: map[string]NativeFn{
			protoNext: func(ctx *Context, args []Value, kwargs map[string]Value) (Value, error) {
				inst, ok := args[0].(*Instance)
				if !ok {
					return NotApplicable, nil
				}
				source, err := ctx.GetAttr(inst, "source")
				if err != nil {
					return nil, err
				}
				list, ok := source.(*ListValue)
				if !ok {
					return nil, fmt.Errorf("list iterator source is %s, want list", source.Kind())
				}
				posVal, err := ctx.GetAttr(inst, "pos")
				if err != nil {
					return nil, err
				}
				cursor, ok := posVal.(IntValue)
				if !ok {
					return nil, fmt.Errorf("list iterator cursor is %s, want int", posVal.Kind())
				}
				pos := cursor.Val
				if pos >= int64(len(list.Elements)) {
					return IterEnd, nil
				}
				if err := ctx.SetAttr(inst, "pos", IntValue{Val: pos + 1}); err != nil {
					return nil, err
				}
				return list.Elements[pos], nil
			},
		},
	}
}

func listClassSpec(iterClass *Class) HostClassSpec {
	return HostClassSpec{
		Name: "List",
		Ctor: func(ctx *Context, cls *Class, args []Value, kwargs map[string]Value) (Value, error) {
			return NewList(args...), nil
		},
		Methods: map[string]NativeFn{
			"append": func(ctx *Context, args []Value, kwargs map[string]Value) (Value, error) {
				list, ok := listReceiver(args)
				if !ok || len(args) < 2 {
					return nil, fmt.Errorf("append expects a list receiver and one value")
				}
				list.Elements = append(list.Elements, args[1])
				return Nil, nil
			},
		},
		Protocols: map[string]NativeFn{
			protoLen: func(ctx *Context, args []Value, kwargs map[string]Value) (Value, error) {
				list, ok := listReceiver(args)
				if !ok {
					return NotApplicable, nil
				}
				return IntValue{Val: int64(len(list.Elements))}, nil
			},
			protoGetItem: func(ctx *Context, args []Value, kwargs map[string]Value) (Value, error) {
				list, ok := listReceiver(args)
				if !ok || len(args) < 2 {
					return NotApplicable, nil
				}
				i, err := listIndex(list, args[1])
				if err != nil {
					return nil, err
				}
				return list.Elements[i], nil
			},
			protoSetItem: func(ctx *Context, args []Value, kwargs map[string]Value) (Value, error) {
				list, ok := listReceiver(args)
				if !ok || len(args) < 3 {
					return NotApplicable, nil
				}
				i, err := listIndex(list, args[1])
				if err != nil {
					return nil, err
				}
				list.Elements[i] = args[2]
				return Nil, nil
			},
			protoDelItem: func(ctx *Context, args []Value, kwargs map[string]Value) (Value, error) {
				list, ok := listReceiver(args)
				if !ok || len(args) < 2 {
					return NotApplicable, nil
				}
				i, err := listIndex(list, args[1])
				if err != nil {
					return nil, err
				}
				list.Elements = append(list.Elements[:i], list.Elements[i+1:]...)
				return Nil, nil
			},
			protoIter: func(ctx *Context, args []Value, kwargs map[string]Value) (Value, error) {
				list, ok := listReceiver(args)
				if !ok {
					return NotApplicable, nil
				}
				it := NewInstance(iterClass)
				if err := ctx.SetAttr(it, "source", list); err != nil {
					return nil, err
				}
				if err := ctx.SetAttr(it, "pos", IntValue{}); err != nil {
					return nil, err
				}
				return it, nil
			},
		},
	}
}
