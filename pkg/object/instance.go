package object

// Instance is a runtime instance: an immutable class reference plus
// per-instance storage. Storage is an open name-to-value map by default, or
// a fixed slot array when the class elected the slot layout.
type Instance struct {
	class *Class

	dict  map[string]Value
	slots []Value
	set   []bool
}

func (inst *Instance) Kind() Kind { return KindInstance }

// NewInstance allocates bare storage for cls without running any
// initialization hook.
func NewInstance(cls *Class) *Instance {
	inst := &Instance{class: cls}
	if cls.Slotted() {
		inst.slots = make([]Value, len(cls.slotNames))
		inst.set = make([]bool, len(cls.slotNames))
	} else {
		inst.dict = map[string]Value{}
	}
	return inst
}

// Class returns the instance's class; the reference never changes for the
// instance's lifetime.
func (inst *Instance) Class() *Class {
	return inst.class
}

// getLocal reads per-instance storage only; class members are not consulted.
func (inst *Instance) getLocal(name string) (Value, bool) {
	if inst.slots != nil {
		idx, ok := inst.class.slotIndex[name]
		if !ok || !inst.set[idx] {
			return nil, false
		}
		return inst.slots[idx], true
	}
	v, ok := inst.dict[name]
	return v, ok
}

// setLocal writes per-instance storage, rejecting names outside the declared
// slot set for slot-backed instances.
func (inst *Instance) setLocal(name string, value Value) error {
	if inst.slots != nil {
		idx, ok := inst.class.slotIndex[name]
		if !ok {
			return newAttributeError(inst.class.Name+" instance", name)
		}
		inst.slots[idx] = value
		inst.set[idx] = true
		return nil
	}
	inst.dict[name] = value
	return nil
}

// delLocal removes a per-instance value, reporting whether one was present.
func (inst *Instance) delLocal(name string) bool {
	if inst.slots != nil {
		idx, ok := inst.class.slotIndex[name]
		if !ok || !inst.set[idx] {
			return false
		}
		inst.slots[idx] = nil
		inst.set[idx] = false
		return true
	}
	if _, ok := inst.dict[name]; !ok {
		return false
	}
	delete(inst.dict, name)
	return true
}

// localNames enumerates the names currently present in instance storage.
func (inst *Instance) localNames() []string {
	if inst.slots != nil {
		var names []string
		for name, idx := range inst.class.slotIndex {
			if inst.set[idx] {
				names = append(names, name)
			}
		}
		return names
	}
	names := make([]string, 0, len(inst.dict))
	for name := range inst.dict {
		names = append(names, name)
	}
	return names
}

// The raw storage accessors above never lock; every resolver and
// introspection path reaches them through these wrappers, so instance
// storage serializes under the same context lock as class namespaces.

func (ctx *Context) instanceGet(inst *Instance, name string) (Value, bool) {
	ctx.mu.Lock()
	defer ctx.mu.Unlock()
	return inst.getLocal(name)
}

func (ctx *Context) instanceSet(inst *Instance, name string, value Value) error {
	ctx.mu.Lock()
	defer ctx.mu.Unlock()
	return inst.setLocal(name, value)
}

func (ctx *Context) instanceDelete(inst *Instance, name string) bool {
	ctx.mu.Lock()
	defer ctx.mu.Unlock()
	return inst.delLocal(name)
}

func (ctx *Context) instanceNames(inst *Instance) []string {
	ctx.mu.Lock()
	defer ctx.mu.Unlock()
	return inst.localNames()
}
