package object

import "fmt"

const (
	protoBool     = "__bool__"
	protoLen      = "__len__"
	protoIter     = "__iter__"
	protoNext     = "__next__"
	protoGetItem  = "__getitem__"
	protoSetItem  = "__setitem__"
	protoDelItem  = "__delitem__"
	protoContains = "__contains__"
	protoEnter    = "__enter__"
	protoExit     = "__exit__"
	protoStr      = "__str__"
	protoRepr     = "__repr__"
	protoFormat   = "__format__"
)

// Truthy evaluates the truthiness protocol: __bool__ first, then a nonzero
// __len__, defaulting to true. Builtin scalars short-circuit.
func (ctx *Context) Truthy(v Value) (bool, error) {
	switch sv := v.(type) {
	case NilValue:
		return false, nil
	case BoolValue:
		return sv.Val, nil
	case IntValue:
		return sv.Val != 0, nil
	case FloatValue:
		return sv.Val != 0, nil
	case StringValue:
		return sv.Val != "", nil
	}
	cls := ctx.ClassOf(v)
	if res, ok, err := ctx.invokeProtocol(cls, protoBool, v); err != nil {
		return false, err
	} else if ok {
		b, isBool := res.(BoolValue)
		if !isBool {
			return false, fmt.Errorf("%s returned %s, want bool", protoBool, res.Kind())
		}
		return b.Val, nil
	}
	if n, err := ctx.Len(v); err == nil {
		return n != 0, nil
	}
	return true, nil
}

// Len dispatches the length protocol member.
func (ctx *Context) Len(v Value) (int64, error) {
	cls := ctx.ClassOf(v)
	res, ok, err := ctx.invokeProtocol(cls, protoLen, v)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, newUnsupportedOperation("len", cls.Name, "")
	}
	n, isInt := res.(IntValue)
	if !isInt {
		return 0, fmt.Errorf("%s returned %s, want int", protoLen, res.Kind())
	}
	return n.Val, nil
}

// Iter obtains an iterator for v through the iteration protocol.
func (ctx *Context) Iter(v Value) (Value, error) {
	cls := ctx.ClassOf(v)
	res, ok, err := ctx.invokeProtocol(cls, protoIter, v)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, newUnsupportedOperation("iterate", cls.Name, "")
	}
	return res, nil
}

// Next advances an iterator. The bool result reports exhaustion, signalled
// by the iterator's advance member returning the IterEnd sentinel.
func (ctx *Context) Next(it Value) (Value, bool, error) {
	cls := ctx.ClassOf(it)
	cm, found := ctx.typeLookup(cls, protoNext)
	if !found {
		return nil, false, newUnsupportedOperation("advance", cls.Name, "")
	}
	res, err := ctx.CallValue(cm.value, []Value{it}, nil)
	if err != nil {
		return nil, false, err
	}
	if _, done := res.(IterEndValue); done {
		return nil, true, nil
	}
	return res, false, nil
}

// GetItem dispatches container subscript reads.
func (ctx *Context) GetItem(v, key Value) (Value, error) {
	cls := ctx.ClassOf(v)
	res, ok, err := ctx.invokeProtocol(cls, protoGetItem, v, key)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, newUnsupportedOperation("subscript", cls.Name, "")
	}
	return res, nil
}

// SetItem dispatches container subscript writes.
func (ctx *Context) SetItem(v, key, value Value) error {
	cls := ctx.ClassOf(v)
	_, ok, err := ctx.invokeProtocol(cls, protoSetItem, v, key, value)
	if err != nil {
		return err
	}
	if !ok {
		return newUnsupportedOperation("subscript assignment", cls.Name, "")
	}
	return nil
}

// DelItem dispatches container subscript removal.
func (ctx *Context) DelItem(v, key Value) error {
	cls := ctx.ClassOf(v)
	_, ok, err := ctx.invokeProtocol(cls, protoDelItem, v, key)
	if err != nil {
		return err
	}
	if !ok {
		return newUnsupportedOperation("subscript removal", cls.Name, "")
	}
	return nil
}

// Contains answers membership via the container protocol, falling back to
// iteration with equality when no membership member is defined.
func (ctx *Context) Contains(container, item Value) (bool, error) {
	cls := ctx.ClassOf(container)
	if res, ok, err := ctx.invokeProtocol(cls, protoContains, container, item); err != nil {
		return false, err
	} else if ok {
		return ctx.Truthy(res)
	}
	it, err := ctx.Iter(container)
	if err != nil {
		return false, newUnsupportedOperation("membership", cls.Name, "")
	}
	for {
		elem, done, err := ctx.Next(it)
		if err != nil {
			return false, err
		}
		if done {
			return false, nil
		}
		eq, err := ctx.Equal(elem, item)
		if err != nil {
			return false, err
		}
		if eq {
			return true, nil
		}
	}
}

// Equal runs the equality comparison and coerces the result to a Go bool.
func (ctx *Context) Equal(left, right Value) (bool, error) {
	res, err := ctx.Compare("==", left, right)
	if err != nil {
		return false, err
	}
	return ctx.Truthy(res)
}

// Enter dispatches the context-management entry member.
func (ctx *Context) Enter(v Value) (Value, error) {
	cls := ctx.ClassOf(v)
	res, ok, err := ctx.invokeProtocol(cls, protoEnter, v)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, newUnsupportedOperation("context entry", cls.Name, "")
	}
	return res, nil
}

// Exit dispatches the context-management exit member with the pending error
// value (or nil). A truthy result suppresses the pending error.
func (ctx *Context) Exit(v Value, pending Value) (bool, error) {
	cls := ctx.ClassOf(v)
	if pending == nil {
		pending = Nil
	}
	res, ok, err := ctx.invokeProtocol(cls, protoExit, v, pending)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, newUnsupportedOperation("context exit", cls.Name, "")
	}
	return ctx.Truthy(res)
}

// Str renders a display string: scalars directly, then the formatting
// protocol members, then a generic fallback.
func (ctx *Context) Str(v Value) (string, error) {
	if s, ok := scalarString(v); ok {
		return s, nil
	}
	if cls, isClass := v.(*Class); isClass {
		return "<class " + cls.Name + ">", nil
	}
	cls := ctx.ClassOf(v)
	for _, name := range []string{protoStr, protoRepr} {
		res, ok, err := ctx.invokeProtocol(cls, name, v)
		if err != nil {
			return "", err
		}
		if !ok {
			continue
		}
		s, isStr := res.(StringValue)
		if !isStr {
			return "", fmt.Errorf("%s returned %s, want string", name, res.Kind())
		}
		return s.Val, nil
	}
	return "<" + cls.Name + " instance>", nil
}

// Repr renders a debugging string, quoting raw strings.
func (ctx *Context) Repr(v Value) (string, error) {
	if s, isStr := v.(StringValue); isStr {
		return fmt.Sprintf("%q", s.Val), nil
	}
	cls := ctx.ClassOf(v)
	if res, ok, err := ctx.invokeProtocol(cls, protoRepr, v); err != nil {
		return "", err
	} else if ok {
		s, isStr := res.(StringValue)
		if !isStr {
			return "", fmt.Errorf("%s returned %s, want string", protoRepr, res.Kind())
		}
		return s.Val, nil
	}
	return ctx.Str(v)
}

// Format dispatches the format protocol member with the given format spec,
// falling back to Str for members that do not customize formatting.
func (ctx *Context) Format(v Value, spec string) (string, error) {
	cls := ctx.ClassOf(v)
	res, ok, err := ctx.invokeProtocol(cls, protoFormat, v, StringValue{Val: spec})
	if err != nil {
		return "", err
	}
	if ok {
		s, isStr := res.(StringValue)
		if !isStr {
			return "", fmt.Errorf("%s returned %s, want string", protoFormat, res.Kind())
		}
		return s.Val, nil
	}
	return ctx.Str(v)
}
