package object

const protoGetAttrFallback = "__getattr__"

// GetAttr resolves a read of name on any value. Instances follow the full
// priority chain (data descriptor, instance storage, class member, fallback
// hook); classes scan their own cached order and then their metatype's;
// delegation proxies scan the suffix past their anchor class.
func (ctx *Context) GetAttr(obj Value, name string) (Value, error) {
	switch tv := obj.(type) {
	case *Instance:
		return ctx.instanceGetAttr(tv, name)
	case *Class:
		return ctx.classGetAttr(tv, name)
	case *SuperProxy:
		return ctx.superGetAttr(tv, name)
	default:
		return ctx.builtinGetAttr(obj, name)
	}
}

func (ctx *Context) instanceGetAttr(inst *Instance, name string) (Value, error) {
	cm, found := ctx.typeLookup(inst.class, name)
	if found {
		ops := ctx.resolveDescriptor(cm.value)
		// A data descriptor without a read operation does not intercept
		// reads: storage answers if it holds the name, else the descriptor
		// object itself is returned below.
		if ops.isData() && ops.get != nil {
			return ops.get(inst, cm.owner)
		}
	}
	if v, ok := ctx.instanceGet(inst, name); ok {
		return v, nil
	}
	if found {
		return ctx.descriptorGet(cm, inst)
	}
	if fb, ok := ctx.typeLookup(inst.class, protoGetAttrFallback); ok {
		return ctx.CallValue(fb.value, []Value{inst, StringValue{Val: name}}, nil)
	}
	return nil, newAttributeError(inst.class.Name+" instance", name)
}

// classGetAttr reads name on a class object: the class's own order first,
// then the metatype chain with the class itself as receiver. Descriptors
// found on the class's own order receive a nil instance.
func (ctx *Context) classGetAttr(cls *Class, name string) (Value, error) {
	if cm, found := ctx.typeLookup(cls, name); found {
		return ctx.descriptorGet(cm, nil)
	}
	if cm, found := ctx.typeLookup(cls.Meta, name); found {
		return ctx.descriptorGet(cm, cls)
	}
	if fb, ok := ctx.typeLookup(cls.Meta, protoGetAttrFallback); ok {
		return ctx.CallValue(fb.value, []Value{cls, StringValue{Val: name}}, nil)
	}
	return nil, newAttributeError("class "+cls.Name, name)
}

// builtinGetAttr serves scalar and callable receivers through their builtin
// host class, binding methods like any other non-data descriptor.
func (ctx *Context) builtinGetAttr(obj Value, name string) (Value, error) {
	cls := ctx.ClassOf(obj)
	if cm, found := ctx.typeLookup(cls, name); found {
		return ctx.descriptorGet(cm, obj)
	}
	return nil, newAttributeError(cls.Name+" value", name)
}

// SetAttr resolves a write of name on obj. A data descriptor on the class
// chain wins; otherwise the value lands in instance storage, which for
// slot-backed instances enforces the declared slot set.
func (ctx *Context) SetAttr(obj Value, name string, value Value) error {
	switch tv := obj.(type) {
	case *Instance:
		if cm, found := ctx.typeLookup(tv.class, name); found {
			ops := ctx.resolveDescriptor(cm.value)
			if ops.isData() {
				if ops.set == nil {
					return newAttributeError(tv.class.Name+" instance", name)
				}
				return ops.set(tv, value)
			}
		}
		return ctx.instanceSet(tv, name, value)
	case *Class:
		ctx.SetMember(tv, name, value)
		return nil
	default:
		return newAttributeError(ctx.ClassOf(obj).Name+" value", name)
	}
}

// DelAttr resolves a removal of name on obj, symmetric to SetAttr via the
// descriptor's remove operation.
func (ctx *Context) DelAttr(obj Value, name string) error {
	switch tv := obj.(type) {
	case *Instance:
		if cm, found := ctx.typeLookup(tv.class, name); found {
			ops := ctx.resolveDescriptor(cm.value)
			if ops.isData() {
				if ops.del == nil {
					return newAttributeError(tv.class.Name+" instance", name)
				}
				return ops.del(tv)
			}
		}
		if !ctx.instanceDelete(tv, name) {
			return newAttributeError(tv.class.Name+" instance", name)
		}
		return nil
	case *Class:
		return ctx.DeleteMember(tv, name)
	default:
		return newAttributeError(ctx.ClassOf(obj).Name+" value", name)
	}
}
