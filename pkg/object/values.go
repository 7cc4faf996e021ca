package object

import (
	"fmt"
	"strconv"
)

// Kind identifies the runtime value category.
type Kind int

const (
	KindNil Kind = iota
	KindBool
	KindInt
	KindFloat
	KindString
	KindList
	KindClass
	KindInstance
	KindNative
	KindBoundMethod
	KindSuper
	KindNamespace
	KindNotApplicable
	KindIterEnd
	// KindHost marks opaque host-supplied member values, typically Go types
	// implementing the descriptor interfaces.
	KindHost
)

func (k Kind) String() string {
	switch k {
	case KindNil:
		return "nil"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindList:
		return "list"
	case KindClass:
		return "class"
	case KindInstance:
		return "instance"
	case KindNative:
		return "native_function"
	case KindBoundMethod:
		return "bound_method"
	case KindSuper:
		return "super"
	case KindNamespace:
		return "namespace"
	case KindNotApplicable:
		return "not_applicable"
	case KindIterEnd:
		return "iter_end"
	case KindHost:
		return "host_value"
	default:
		return fmt.Sprintf("unknown_kind_%d", int(k))
	}
}

// Value is the shared behaviour for all runtime values.
type Value interface {
	Kind() Kind
}

//-----------------------------------------------------------------------------
// Scalars
//-----------------------------------------------------------------------------

type NilValue struct{}

func (NilValue) Kind() Kind { return KindNil }

type BoolValue struct {
	Val bool
}

func (v BoolValue) Kind() Kind { return KindBool }

type IntValue struct {
	Val int64
}

func (v IntValue) Kind() Kind { return KindInt }

type FloatValue struct {
	Val float64
}

func (v FloatValue) Kind() Kind { return KindFloat }

type StringValue struct {
	Val string
}

func (v StringValue) Kind() Kind { return KindString }

//-----------------------------------------------------------------------------
// Collections
//-----------------------------------------------------------------------------

type ListValue struct {
	Elements []Value
}

func (v *ListValue) Kind() Kind { return KindList }

//-----------------------------------------------------------------------------
// Callables
//-----------------------------------------------------------------------------

// NativeFn is the signature every host-supplied callable implements.
type NativeFn func(ctx *Context, args []Value, kwargs map[string]Value) (Value, error)

// NativeFunction wraps a Go closure as a callable member value.
type NativeFunction struct {
	Name string
	Fn   NativeFn
}

func (v *NativeFunction) Kind() Kind { return KindNative }

// Get makes native functions non-data descriptors: reading one through an
// instance produces a bound method, reading it at class level yields the
// function itself.
func (v *NativeFunction) Get(ctx *Context, receiver Value, owner *Class) (Value, error) {
	if receiver == nil {
		return v, nil
	}
	return &BoundMethod{Fn: v, Receiver: receiver}, nil
}

// BoundMethod pairs a callable with the receiver it was read through.
type BoundMethod struct {
	Fn       Value
	Receiver Value
}

func (v *BoundMethod) Kind() Kind { return KindBoundMethod }

//-----------------------------------------------------------------------------
// Sentinels
//-----------------------------------------------------------------------------

// NotApplicableValue is the binary-dispatch sentinel: a protocol member
// returns it to decline an operand pairing without raising an error.
type NotApplicableValue struct{}

func (NotApplicableValue) Kind() Kind { return KindNotApplicable }

// NotApplicable is the canonical instance; protocol members should return it
// rather than constructing their own.
var NotApplicable Value = NotApplicableValue{}

// IterEndValue signals iterator exhaustion from a __next__ member.
type IterEndValue struct{}

func (IterEndValue) Kind() Kind { return KindIterEnd }

var IterEnd Value = IterEndValue{}

// Nil is the canonical nil value.
var Nil Value = NilValue{}

//-----------------------------------------------------------------------------
// Helpers
//-----------------------------------------------------------------------------

// NewNative wraps fn under the given display name.
func NewNative(name string, fn NativeFn) *NativeFunction {
	return &NativeFunction{Name: name, Fn: fn}
}

// NewList copies elems into a fresh list value.
func NewList(elems ...Value) *ListValue {
	out := make([]Value, len(elems))
	copy(out, elems)
	return &ListValue{Elements: out}
}

func isNil(v Value) bool {
	if v == nil {
		return true
	}
	_, ok := v.(NilValue)
	return ok
}

func isNotApplicable(v Value) bool {
	_, ok := v.(NotApplicableValue)
	return ok
}

// scalarString renders builtin scalars without consulting any class chain.
func scalarString(v Value) (string, bool) {
	switch sv := v.(type) {
	case NilValue:
		return "nil", true
	case BoolValue:
		if sv.Val {
			return "true", true
		}
		return "false", true
	case IntValue:
		return strconv.FormatInt(sv.Val, 10), true
	case FloatValue:
		return strconv.FormatFloat(sv.Val, 'g', -1, 64), true
	case StringValue:
		return sv.Val, true
	default:
		return "", false
	}
}
