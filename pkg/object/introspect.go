package object

import (
	"fmt"
	"sort"
)

// Read-only queries over the same tables the resolver walks. Nothing here
// mutates a class or an instance.

const (
	protoDir           = "__dir__"
	protoInstanceCheck = "__instancecheck__"
	protoSubclassCheck = "__subclasscheck__"
)

// Mro returns a copy of the class's cached resolution order.
func (ctx *Context) Mro(cls *Class) []*Class {
	return cls.Mro()
}

// ResolvesMember reports whether any class on cls's order defines name.
func (ctx *Context) ResolvesMember(cls *Class, name string) bool {
	_, found := ctx.typeLookup(cls, name)
	return found
}

// ResolvedOwner returns the class on cls's order that defines name.
func (ctx *Context) ResolvedOwner(cls *Class, name string) (*Class, bool) {
	cm, found := ctx.typeLookup(cls, name)
	if !found {
		return nil, false
	}
	return cm.owner, true
}

// IsInstance answers type membership through the metatype's predicate hook,
// so a metatype overriding it redefines what membership reports.
func (ctx *Context) IsInstance(v Value, cls *Class) (bool, error) {
	check, found := ctx.typeLookup(cls.Meta, protoInstanceCheck)
	if !found {
		return ctx.ClassOf(v).isDescendantOf(cls), nil
	}
	res, err := ctx.CallValue(check.value, []Value{cls, v}, nil)
	if err != nil {
		return false, err
	}
	return ctx.Truthy(res)
}

// IsSubclass answers the subclass predicate through the metatype's hook.
func (ctx *Context) IsSubclass(sub, cls *Class) (bool, error) {
	check, found := ctx.typeLookup(cls.Meta, protoSubclassCheck)
	if !found {
		return sub.isDescendantOf(cls), nil
	}
	res, err := ctx.CallValue(check.value, []Value{cls, sub}, nil)
	if err != nil {
		return false, err
	}
	return ctx.Truthy(res)
}

// Dir enumerates the member names visible on a class or instance: a sorted
// union of instance storage keys and every chain member name, unless a class
// on the receiver's chain supplies its own enumeration hook.
func (ctx *Context) Dir(v Value) ([]string, error) {
	cls := ctx.ClassOf(v)
	if receiver, isClass := v.(*Class); isClass {
		cls = receiver
	}
	if hook, found := ctx.typeLookup(cls, protoDir); found {
		res, err := ctx.CallValue(hook.value, []Value{v}, nil)
		if err != nil {
			return nil, err
		}
		return stringList(res)
	}

	seen := map[string]bool{}
	var names []string
	add := func(name string) {
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	if inst, isInstance := v.(*Instance); isInstance {
		for _, name := range ctx.instanceNames(inst) {
			add(name)
		}
	}
	for _, anc := range cls.mro {
		for _, name := range ctx.ownMemberNames(anc) {
			add(name)
		}
	}
	sort.Strings(names)
	return names, nil
}

func stringList(v Value) ([]string, error) {
	list, ok := v.(*ListValue)
	if !ok {
		return nil, fmt.Errorf("%s returned %s, want a list of strings", protoDir, v.Kind())
	}
	names := make([]string, len(list.Elements))
	for i, el := range list.Elements {
		s, ok := el.(StringValue)
		if !ok {
			return nil, fmt.Errorf("%s entry %d is %s, want string", protoDir, i, el.Kind())
		}
		names[i] = s.Val
	}
	sort.Strings(names)
	return names, nil
}
