package object

// The descriptor engine. A class member participates in descriptor
// resolution through either surface:
//
//   - a Go value implementing Getter / Setter / Deleter (host descriptors,
//     including NativeFunction, which binds methods via Get), or
//   - an Instance whose class chain defines __get__ / __set__ / __delete__.
//
// Exposing Set or Delete makes a member a data descriptor, which beats
// instance storage; Get alone makes it non-data, which loses to instance
// storage. Class-level reads pass a nil receiver.

// Getter is the read operation of the descriptor contract.
type Getter interface {
	Get(ctx *Context, receiver Value, owner *Class) (Value, error)
}

// Setter is the write operation of the descriptor contract.
type Setter interface {
	Set(ctx *Context, receiver Value, value Value) error
}

// Deleter is the remove operation of the descriptor contract.
type Deleter interface {
	Delete(ctx *Context, receiver Value) error
}

// NameBinder is the optional bind-name hook, invoked exactly once per member
// by the class factory after the owning class object exists.
type NameBinder interface {
	BindName(ctx *Context, owner *Class, name string) error
}

// Script-level descriptor protocol member names.
const (
	protoGet     = "__get__"
	protoSet     = "__set__"
	protoDelete  = "__delete__"
	protoSetName = "__set_name__"
)

// descriptorOps is the resolved read/write/remove surface of one member
// value. Nil funcs mean the operation is not exposed.
type descriptorOps struct {
	get func(receiver Value, owner *Class) (Value, error)
	set func(receiver Value, value Value) error
	del func(receiver Value) error
}

func (ops descriptorOps) isDescriptor() bool {
	return ops.get != nil || ops.set != nil || ops.del != nil
}

// isData reports whether the member wins over instance storage.
func (ops descriptorOps) isData() bool {
	return ops.set != nil || ops.del != nil
}

// resolveDescriptor inspects a member value for descriptor behaviour.
func (ctx *Context) resolveDescriptor(v Value) descriptorOps {
	var ops descriptorOps
	if g, ok := v.(Getter); ok {
		ops.get = func(receiver Value, owner *Class) (Value, error) {
			return g.Get(ctx, receiver, owner)
		}
	}
	if s, ok := v.(Setter); ok {
		ops.set = func(receiver Value, value Value) error {
			return s.Set(ctx, receiver, value)
		}
	}
	if d, ok := v.(Deleter); ok {
		ops.del = func(receiver Value) error {
			return d.Delete(ctx, receiver)
		}
	}
	if ops.isDescriptor() {
		return ops
	}

	inst, ok := v.(*Instance)
	if !ok {
		return ops
	}
	if cm, found := ctx.typeLookup(inst.class, protoGet); found {
		ops.get = func(receiver Value, owner *Class) (Value, error) {
			if receiver == nil {
				receiver = Nil
			}
			return ctx.CallValue(cm.value, []Value{inst, receiver, owner}, nil)
		}
	}
	if cm, found := ctx.typeLookup(inst.class, protoSet); found {
		ops.set = func(receiver Value, value Value) error {
			_, err := ctx.CallValue(cm.value, []Value{inst, receiver, value}, nil)
			return err
		}
	}
	if cm, found := ctx.typeLookup(inst.class, protoDelete); found {
		ops.del = func(receiver Value) error {
			_, err := ctx.CallValue(cm.value, []Value{inst, receiver}, nil)
			return err
		}
	}
	return ops
}

// bindName fires the one-time bind-name hook for a member value, if it has
// one. A failing hook aborts the enclosing class definition.
func (ctx *Context) bindName(v Value, owner *Class, name string) error {
	if nb, ok := v.(NameBinder); ok {
		return nb.BindName(ctx, owner, name)
	}
	inst, ok := v.(*Instance)
	if !ok {
		return nil
	}
	cm, found := ctx.typeLookup(inst.class, protoSetName)
	if !found {
		return nil
	}
	_, err := ctx.CallValue(cm.value, []Value{inst, owner, StringValue{Val: name}}, nil)
	return err
}

// descriptorGet reads through a resolved class member, applying descriptor
// read behaviour when present and returning the raw value otherwise.
func (ctx *Context) descriptorGet(cm classMember, receiver Value) (Value, error) {
	ops := ctx.resolveDescriptor(cm.value)
	if ops.get != nil {
		return ops.get(receiver, cm.owner)
	}
	return cm.value, nil
}
