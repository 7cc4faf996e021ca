package object

import "fmt"

// SuperProxy is the superclass-delegation proxy: an ephemeral pairing of a
// receiver with a starting point just past a given class in the receiver's
// linearized order. Delegation expressions create one, read through it, and
// discard it; proxies are never stored on classes or instances.
type SuperProxy struct {
	after    *Class
	receiver Value
}

func (s *SuperProxy) Kind() Kind { return KindSuper }

// NewSuper builds a delegation proxy anchored just past after in receiver's
// order. Fails when after does not appear in that order at all.
func (ctx *Context) NewSuper(after *Class, receiver Value) (*SuperProxy, error) {
	order := ctx.delegationOrder(after, receiver)
	for _, c := range order {
		if c == after {
			return &SuperProxy{after: after, receiver: receiver}, nil
		}
	}
	return nil, fmt.Errorf("super: class %s is not in the resolution order of the receiver", after.Name)
}

// delegationOrder picks the linearized order delegation walks. Instances use
// their class's order. A class receiver uses its own order when it descends
// from the anchor (cooperative subclass-created hooks), and its metatype's
// order when it is an instance of the anchor (cooperative metatype hooks).
func (ctx *Context) delegationOrder(after *Class, receiver Value) []*Class {
	switch rv := receiver.(type) {
	case *Instance:
		return rv.class.mro
	case *Class:
		if rv.isDescendantOf(after) {
			return rv.mro
		}
		if rv.Meta != nil && rv.Meta.isDescendantOf(after) {
			return rv.Meta.mro
		}
		return rv.mro
	default:
		return ctx.ClassOf(receiver).mro
	}
}

// superGetAttr runs the resolver's class scan restricted to the suffix of
// the receiver's order beginning immediately after the anchor class.
// Instance storage and fallback hooks are deliberately out of the picture:
// delegation reads are about the ancestor chain only, which is what lets
// cooperative chains run each implementation exactly once.
func (ctx *Context) superGetAttr(s *SuperProxy, name string) (Value, error) {
	order := ctx.delegationOrder(s.after, s.receiver)
	start := len(order)
	for i, c := range order {
		if c == s.after {
			start = i + 1
			break
		}
	}
	for _, anc := range order[start:] {
		v, ok := ctx.ownMember(anc, name)
		if !ok {
			continue
		}
		return ctx.descriptorGet(classMember{owner: anc, value: v}, s.receiver)
	}
	return nil, newAttributeError(fmt.Sprintf("super(%s)", s.after.Name), name)
}
