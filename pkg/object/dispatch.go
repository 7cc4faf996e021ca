package object

import "errors"

// The dispatch router. Operator and protocol invocations resolve against the
// receiver's class chain via typeLookup, never through GetAttr: a class's
// attribute-read fallback must not accidentally implement every operator.

const protoCall = "__call__"

type opNames struct {
	forward   string
	reflected string
}

var binaryOps = map[string]opNames{
	"+": {forward: "__add__", reflected: "__radd__"},
	"-": {forward: "__sub__", reflected: "__rsub__"},
	"*": {forward: "__mul__", reflected: "__rmul__"},
	"/": {forward: "__div__", reflected: "__rdiv__"},
	"%": {forward: "__mod__", reflected: "__rmod__"},
}

// Comparison members pair with their own reflection: a < b may be answered
// by b.__gt__. Equality reflects onto itself with swapped operands.
var compareOps = map[string]opNames{
	"==": {forward: "__eq__", reflected: "__eq__"},
	"!=": {forward: "__ne__", reflected: "__ne__"},
	"<":  {forward: "__lt__", reflected: "__gt__"},
	"<=": {forward: "__le__", reflected: "__ge__"},
	">":  {forward: "__gt__", reflected: "__lt__"},
	">=": {forward: "__ge__", reflected: "__le__"},
}

var unaryOps = map[string]string{
	"-": "__neg__",
	"+": "__pos__",
}

// invokeProtocol calls the named protocol member on cls's chain with
// receiver prepended. The second result is false when the member is absent
// or declined with the not-applicable sentinel.
func (ctx *Context) invokeProtocol(cls *Class, name string, receiver Value, extra ...Value) (Value, bool, error) {
	cm, found := ctx.typeLookup(cls, name)
	if !found {
		return nil, false, nil
	}
	res, err := ctx.CallValue(cm.value, append([]Value{receiver}, extra...), nil)
	if err != nil {
		return nil, false, err
	}
	if isNotApplicable(res) {
		return nil, false, nil
	}
	return res, true, nil
}

// BinaryOp dispatches an arithmetic operator over both operands: forward
// member on the left first, unless the right operand's class is a strict
// descendant of the left's and overrides the reflected member. A declined
// attempt flips to the other operand; two declines fail with an
// unsupported-operation error naming both classes.
func (ctx *Context) BinaryOp(op string, left, right Value) (Value, error) {
	names, ok := binaryOps[op]
	if !ok {
		return nil, newUnsupportedOperation(op, ctx.ClassOf(left).Name, ctx.ClassOf(right).Name)
	}
	return ctx.dispatchBinary(op, names, left, right)
}

// Compare dispatches a comparison operator with the reflected pairing of
// compareOps. Equality and inequality fall back to identity when neither
// operand's member applies.
func (ctx *Context) Compare(op string, left, right Value) (Value, error) {
	names, ok := compareOps[op]
	if !ok {
		return nil, newUnsupportedOperation(op, ctx.ClassOf(left).Name, ctx.ClassOf(right).Name)
	}
	res, err := ctx.dispatchBinary(op, names, left, right)
	if err == nil {
		return res, nil
	}
	if op == "==" || op == "!=" {
		var unsupported *UnsupportedOperationError
		if errors.As(err, &unsupported) {
			same := identical(left, right)
			if op == "!=" {
				same = !same
			}
			return BoolValue{Val: same}, nil
		}
	}
	return nil, err
}

func (ctx *Context) dispatchBinary(op string, names opNames, left, right Value) (Value, error) {
	lc := ctx.ClassOf(left)
	rc := ctx.ClassOf(right)

	if rc != lc && rc.isDescendantOf(lc) && ctx.overridesMember(rc, lc, names.reflected) {
		if res, ok, err := ctx.invokeProtocol(rc, names.reflected, right, left); err != nil || ok {
			return res, err
		}
		if res, ok, err := ctx.invokeProtocol(lc, names.forward, left, right); err != nil || ok {
			return res, err
		}
		return nil, newUnsupportedOperation(op, lc.Name, rc.Name)
	}

	if res, ok, err := ctx.invokeProtocol(lc, names.forward, left, right); err != nil || ok {
		return res, err
	}
	if rc != lc {
		if res, ok, err := ctx.invokeProtocol(rc, names.reflected, right, left); err != nil || ok {
			return res, err
		}
	}
	return nil, newUnsupportedOperation(op, lc.Name, rc.Name)
}

// overridesMember reports whether sub resolves name to a different defining
// class than ancestor does, i.e. actually overrides it below the ancestor.
func (ctx *Context) overridesMember(sub, ancestor *Class, name string) bool {
	sm, ok := ctx.typeLookup(sub, name)
	if !ok {
		return false
	}
	am, ok := ctx.typeLookup(ancestor, name)
	if !ok {
		return true
	}
	return sm.owner != am.owner
}

// UnaryOp dispatches a unary operator against the receiver's class chain.
func (ctx *Context) UnaryOp(op string, operand Value) (Value, error) {
	name, ok := unaryOps[op]
	if !ok {
		return nil, newUnsupportedOperation(op, ctx.ClassOf(operand).Name, "")
	}
	res, ok, err := ctx.invokeProtocol(ctx.ClassOf(operand), name, operand)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, newUnsupportedOperation(op, ctx.ClassOf(operand).Name, "")
	}
	return res, nil
}

// CallValue invokes any callable value: native functions, bound methods,
// classes (through their metatype's call-to-instantiate hook), and instances
// whose class chain defines the invocation protocol member.
func (ctx *Context) CallValue(fn Value, args []Value, kwargs map[string]Value) (Value, error) {
	switch cv := fn.(type) {
	case *NativeFunction:
		return cv.Fn(ctx, args, kwargs)
	case *BoundMethod:
		return ctx.CallValue(cv.Fn, append([]Value{cv.Receiver}, args...), kwargs)
	case *Class:
		call, found := ctx.typeLookup(cv.Meta, protoCall)
		if !found {
			return nil, newUnsupportedOperation("call", cv.Meta.Name, "")
		}
		return ctx.CallValue(call.value, append([]Value{cv}, args...), kwargs)
	case *Instance:
		call, found := ctx.typeLookup(cv.class, protoCall)
		if !found {
			return nil, newUnsupportedOperation("call", cv.class.Name, "")
		}
		return ctx.CallValue(call.value, append([]Value{cv}, args...), kwargs)
	default:
		return nil, newUnsupportedOperation("call", ctx.ClassOf(fn).Name, "")
	}
}

// identical is the identity fallback for equality: scalars compare by value,
// everything else by reference.
func identical(left, right Value) bool {
	if left == nil || right == nil {
		return left == right
	}
	return left == right
}
