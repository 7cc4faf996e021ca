package object

import "fmt"

const (
	protoNew          = "__new__"
	protoInit         = "__init__"
	protoInitSubclass = "__init_subclass__"
	protoSlots        = "__slots__"
)

// DefineClass runs the full class-construction pipeline for one
// class-definition statement: metatype selection, the metatype's
// allocate-new and initialize hooks, the bind-name sweep over the namespace,
// and the subclass-created hook on the new class's ancestor chain.
//
// meta may be nil to request no explicit metatype; kwargs are the extra
// keywords of the definition statement and are forwarded to the metatype
// hooks and the subclass-created hook.
func (ctx *Context) DefineClass(name string, bases []*Class, ns *Namespace, meta *Class, kwargs map[string]Value) (*Class, error) {
	if ns == nil {
		ns = NewNamespace()
	}
	if len(bases) == 0 {
		bases = []*Class{ctx.Object}
	}

	winner, err := ctx.selectMetatype(name, bases, meta)
	if err != nil {
		return nil, err
	}

	baseList := make([]Value, len(bases))
	for i, b := range bases {
		baseList[i] = b
	}
	newArgs := []Value{winner, StringValue{Val: name}, &ListValue{Elements: baseList}, ns}

	allocate, _ := ctx.typeLookup(winner, protoNew)
	created, err := ctx.CallValue(allocate.value, newArgs, kwargs)
	if err != nil {
		return nil, err
	}
	cls, ok := created.(*Class)
	if !ok {
		return nil, fmt.Errorf("metatype %s allocate-new hook returned %s, want class", winner.Name, created.Kind())
	}

	if initialize, found := ctx.typeLookup(winner, protoInit); found {
		initArgs := append([]Value{cls}, newArgs[1:]...)
		if _, err := ctx.CallValue(initialize.value, initArgs, kwargs); err != nil {
			return nil, err
		}
	}

	// Bind-name sweep, declaration order. A failing hook aborts the whole
	// definition statement.
	for _, memberName := range ns.Names() {
		v, _ := ns.Get(memberName)
		if err := ctx.bindName(v, cls, memberName); err != nil {
			return nil, err
		}
	}

	if err := ctx.fireInitSubclass(cls, kwargs); err != nil {
		return nil, err
	}
	return cls, nil
}

// selectMetatype picks the most-derived metatype among the bases' metatypes
// and the explicit request, failing when no candidate subsumes the rest.
func (ctx *Context) selectMetatype(name string, bases []*Class, explicit *Class) (*Class, error) {
	winner := explicit
	if winner == nil {
		winner = ctx.Type
	}
	for _, base := range bases {
		bm := base.Meta
		if bm == nil || winner.isDescendantOf(bm) {
			continue
		}
		if bm.isDescendantOf(winner) {
			winner = bm
			continue
		}
		return nil, &MetatypeConflictError{Class: name, Metas: []string{winner.Name, bm.Name}}
	}
	return winner, nil
}

// newClassObject is the default allocate-new behaviour: it builds the class
// object, runs the linearizer once, caches the order, fixes the slot layout,
// and registers the class. Metatypes overriding allocate-new reach it by
// cooperatively delegating to Type's hook.
func (ctx *Context) newClassObject(meta *Class, name string, bases []*Class, ns *Namespace) (*Class, error) {
	if len(bases) == 0 {
		bases = []*Class{ctx.Object}
	}
	cls := &Class{
		Name:        name,
		Bases:       append([]*Class(nil), bases...),
		Meta:        meta,
		members:     make(map[string]Value, ns.Len()),
		memberOrder: ns.Names(),
		cache:       map[string]classMember{},
	}
	for _, memberName := range cls.memberOrder {
		v, _ := ns.Get(memberName)
		cls.members[memberName] = v
	}

	order, err := Linearize(cls)
	if err != nil {
		return nil, err
	}
	cls.mro = order

	if err := applySlotLayout(cls, ns); err != nil {
		return nil, err
	}

	ctx.mu.Lock()
	ctx.classes[name] = cls
	for _, base := range bases {
		base.subclasses = append(base.subclasses, cls)
	}
	ctx.mu.Unlock()
	return cls, nil
}

// applySlotLayout reads a declared slot list from the namespace. The fixed
// layout only takes effect when every base is the universal base or itself
// slot-backed; otherwise instances keep the open mapping.
func applySlotLayout(cls *Class, ns *Namespace) error {
	declared, ok := ns.Get(protoSlots)
	if !ok {
		return nil
	}
	list, ok := declared.(*ListValue)
	if !ok {
		return fmt.Errorf("class %s: %s must be a list of strings, got %s", cls.Name, protoSlots, declared.Kind())
	}
	for _, base := range cls.Bases {
		if len(base.Bases) == 0 || base.Slotted() {
			continue
		}
		return nil
	}
	var names []string
	seen := map[string]bool{}
	for _, base := range cls.Bases {
		for _, n := range base.slotNames {
			if !seen[n] {
				seen[n] = true
				names = append(names, n)
			}
		}
	}
	for _, el := range list.Elements {
		s, ok := el.(StringValue)
		if !ok {
			return fmt.Errorf("class %s: %s entries must be strings, got %s", cls.Name, protoSlots, el.Kind())
		}
		if !seen[s.Val] {
			seen[s.Val] = true
			names = append(names, s.Val)
		}
	}
	cls.slotNames = names
	cls.slotIndex = make(map[string]int, len(names))
	for i, n := range names {
		cls.slotIndex[n] = i
	}
	return nil
}

// fireInitSubclass invokes the subclass-created hook found one step past the
// new class in its own order. Cooperative hooks continue the chain through a
// delegation proxy, so only the first definition is invoked here.
func (ctx *Context) fireInitSubclass(cls *Class, kwargs map[string]Value) error {
	for _, anc := range cls.mro[1:] {
		hook, ok := ctx.ownMember(anc, protoInitSubclass)
		if !ok {
			continue
		}
		_, err := ctx.CallValue(hook, []Value{cls}, kwargs)
		return err
	}
	return nil
}

// defaultInstantiate is Type's call-to-instantiate behaviour: allocate via
// the class's own allocate-new hook, then initialize only when the produced
// value actually belongs to the class or a subclass.
func (ctx *Context) defaultInstantiate(cls *Class, args []Value, kwargs map[string]Value) (Value, error) {
	allocate, found := ctx.typeLookup(cls, protoNew)
	if !found {
		return nil, newAttributeError("class "+cls.Name, protoNew)
	}
	produced, err := ctx.CallValue(allocate.value, append([]Value{cls}, args...), kwargs)
	if err != nil {
		return nil, err
	}
	if !ctx.ClassOf(produced).isDescendantOf(cls) {
		return produced, nil
	}
	if initialize, found := ctx.typeLookup(ctx.ClassOf(produced), protoInit); found {
		if _, err := ctx.CallValue(initialize.value, append([]Value{produced}, args...), kwargs); err != nil {
			return nil, err
		}
	}
	return produced, nil
}
