package object

// Class is a runtime class object: a named namespace with declared bases, a
// metatype, and the resolution order cached at creation time. The order is
// immutable for the class's lifetime; the namespace is not, so every class
// keeps its direct subclasses to invalidate dependent lookup caches when a
// member changes.
type Class struct {
	Name  string
	Bases []*Class
	Meta  *Class

	members     map[string]Value
	memberOrder []string

	mro []*Class

	// Slot layout. slotNames is the full declared set (inherited first, then
	// own, duplicates removed); nil means dict-backed instances.
	slotNames []string
	slotIndex map[string]int

	subclasses []*Class

	// name -> (owning class, value), filled lazily from mro. Guarded by the
	// owning context's lock.
	cache map[string]classMember
}

type classMember struct {
	owner *Class
	value Value
}

func (c *Class) Kind() Kind { return KindClass }

// Mro returns a copy of the cached resolution order.
func (c *Class) Mro() []*Class {
	return append([]*Class(nil), c.mro...)
}

// DefinesMember reports whether the class's own namespace holds name,
// ignoring inherited members. Like OwnMember and MemberNames it does not
// lock; callers racing a concurrent mutator go through the context.
func (c *Class) DefinesMember(name string) bool {
	_, ok := c.members[name]
	return ok
}

// OwnMember returns the class's own namespace entry for name.
func (c *Class) OwnMember(name string) (Value, bool) {
	v, ok := c.members[name]
	return v, ok
}

// MemberNames returns the class's own member names in declaration order.
func (c *Class) MemberNames() []string {
	return append([]string(nil), c.memberOrder...)
}

// Slotted reports whether instances of the class use the fixed-slot layout.
func (c *Class) Slotted() bool {
	return c.slotIndex != nil
}

// SlotNames returns the declared slot set, inherited slots first.
func (c *Class) SlotNames() []string {
	return append([]string(nil), c.slotNames...)
}

// lookup resolves name along the cached order, filling the per-class cache.
// Caller must hold ctx.mu or otherwise guarantee no concurrent mutator.
func (c *Class) lookup(name string) (classMember, bool) {
	if cm, ok := c.cache[name]; ok {
		return cm, cm.owner != nil
	}
	for _, anc := range c.mro {
		if v, ok := anc.members[name]; ok {
			cm := classMember{owner: anc, value: v}
			c.cache[name] = cm
			return cm, true
		}
	}
	// Negative entries keep repeated misses O(1) as well.
	c.cache[name] = classMember{}
	return classMember{}, false
}

// invalidate clears the lookup cache of c and every transitive subclass.
// Caller must hold ctx.mu.
func (c *Class) invalidate() {
	if len(c.cache) > 0 {
		c.cache = map[string]classMember{}
	}
	for _, sub := range c.subclasses {
		sub.invalidate()
	}
}

// setMember installs or replaces an own member. Caller must hold ctx.mu.
func (c *Class) setMember(name string, value Value) {
	if _, seen := c.members[name]; !seen {
		c.memberOrder = append(c.memberOrder, name)
	}
	c.members[name] = value
	c.invalidate()
}

// deleteMember removes an own member. Caller must hold ctx.mu.
func (c *Class) deleteMember(name string) bool {
	if _, ok := c.members[name]; !ok {
		return false
	}
	delete(c.members, name)
	for i, n := range c.memberOrder {
		if n == name {
			c.memberOrder = append(c.memberOrder[:i], c.memberOrder[i+1:]...)
			break
		}
	}
	c.invalidate()
	return true
}

// isDescendantOf reports raw mro containment, bypassing any metatype
// predicate overrides. Used by the factory and the dispatch router, which
// must not recurse into hooks.
func (c *Class) isDescendantOf(other *Class) bool {
	for _, anc := range c.mro {
		if anc == other {
			return true
		}
	}
	return false
}
