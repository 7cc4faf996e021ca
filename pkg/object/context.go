package object

import (
	"sort"
	"sync"
)

// Context is one interpreter context: it owns the universal base class, the
// root metatype, the class registry, and the coarse lock serializing every
// mutation of shared structures. There is no package-level state; independent
// contexts coexist freely.
//
// The lock is never held across user or host hooks, so re-entrant lookups
// and class definitions from inside hooks cannot deadlock.
type Context struct {
	mu sync.Mutex

	// Object is the universal base every resolution order ends with.
	Object *Class
	// Type is the root metatype; classes built without an explicit metatype
	// request are instances of it.
	Type *Class

	classes  map[string]*Class
	builtins builtinClasses
}

type builtinClasses struct {
	Nil    *Class
	Bool   *Class
	Int    *Class
	Float  *Class
	Str    *Class
	List   *Class
	Native *Class
}

// NewContext builds a fresh context with the bootstrap hierarchy (Object,
// Type) and the builtin host classes installed.
func NewContext() *Context {
	ctx := &Context{classes: map[string]*Class{}}
	ctx.bootstrapCore()
	ctx.bootstrapBuiltins()
	return ctx
}

// bootstrapCore wires Object and Type by hand; every later class goes
// through the factory.
func (ctx *Context) bootstrapCore() {
	object := &Class{
		Name:    "Object",
		members: map[string]Value{},
		cache:   map[string]classMember{},
	}
	object.mro = []*Class{object}

	typ := &Class{
		Name:    "Type",
		Bases:   []*Class{object},
		members: map[string]Value{},
		cache:   map[string]classMember{},
	}
	typ.mro = []*Class{typ, object}
	typ.Meta = typ
	object.Meta = typ
	object.subclasses = append(object.subclasses, typ)

	ctx.Object = object
	ctx.Type = typ
	ctx.classes[object.Name] = object
	ctx.classes[typ.Name] = typ

	ctx.installObjectDefaults(object)
	ctx.installTypeDefaults(typ)
}

func (ctx *Context) installObjectDefaults(object *Class) {
	object.setMember("__new__", NewNative("Object.__new__", func(ctx *Context, args []Value, kwargs map[string]Value) (Value, error) {
		cls, err := argClass(args, 0, "Object.__new__")
		if err != nil {
			return nil, err
		}
		return NewInstance(cls), nil
	}))
	object.setMember("__init__", NewNative("Object.__init__", func(ctx *Context, args []Value, kwargs map[string]Value) (Value, error) {
		return Nil, nil
	}))
	// Terminal of every cooperative subclass-created chain.
	object.setMember("__init_subclass__", NewNative("Object.__init_subclass__", func(ctx *Context, args []Value, kwargs map[string]Value) (Value, error) {
		return Nil, nil
	}))
}

func (ctx *Context) installTypeDefaults(typ *Class) {
	typ.setMember("__call__", NewNative("Type.__call__", func(ctx *Context, args []Value, kwargs map[string]Value) (Value, error) {
		cls, err := argClass(args, 0, "Type.__call__")
		if err != nil {
			return nil, err
		}
		return ctx.defaultInstantiate(cls, args[1:], kwargs)
	}))
	typ.setMember("__new__", NewNative("Type.__new__", func(ctx *Context, args []Value, kwargs map[string]Value) (Value, error) {
		meta, name, bases, ns, err := classNewArgs(args)
		if err != nil {
			return nil, err
		}
		return ctx.newClassObject(meta, name, bases, ns)
	}))
	typ.setMember("__init__", NewNative("Type.__init__", func(ctx *Context, args []Value, kwargs map[string]Value) (Value, error) {
		return Nil, nil
	}))
	typ.setMember("__instancecheck__", NewNative("Type.__instancecheck__", func(ctx *Context, args []Value, kwargs map[string]Value) (Value, error) {
		cls, err := argClass(args, 0, "Type.__instancecheck__")
		if err != nil {
			return nil, err
		}
		if len(args) < 2 {
			return nil, newUnsupportedOperation("__instancecheck__", cls.Name, "")
		}
		return BoolValue{Val: ctx.ClassOf(args[1]).isDescendantOf(cls)}, nil
	}))
	typ.setMember("__subclasscheck__", NewNative("Type.__subclasscheck__", func(ctx *Context, args []Value, kwargs map[string]Value) (Value, error) {
		cls, err := argClass(args, 0, "Type.__subclasscheck__")
		if err != nil {
			return nil, err
		}
		sub, err := argClass(args, 1, "Type.__subclasscheck__")
		if err != nil {
			return nil, err
		}
		return BoolValue{Val: sub.isDescendantOf(cls)}, nil
	}))
}

// LookupClass returns the registered class for name, if any.
func (ctx *Context) LookupClass(name string) (*Class, bool) {
	ctx.mu.Lock()
	defer ctx.mu.Unlock()
	c, ok := ctx.classes[name]
	return c, ok
}

// ClassNames enumerates every registered class name, sorted.
func (ctx *Context) ClassNames() []string {
	ctx.mu.Lock()
	defer ctx.mu.Unlock()
	names := make([]string, 0, len(ctx.classes))
	for name := range ctx.classes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ClassOf maps any value to its class. Instances answer with their own class,
// classes with their metatype, builtins with the bootstrap host classes.
func (ctx *Context) ClassOf(v Value) *Class {
	switch tv := v.(type) {
	case *Instance:
		return tv.class
	case *Class:
		return tv.Meta
	case *SuperProxy:
		return ctx.Type
	case BoolValue:
		return ctx.builtins.Bool
	case IntValue:
		return ctx.builtins.Int
	case FloatValue:
		return ctx.builtins.Float
	case StringValue:
		return ctx.builtins.Str
	case *ListValue:
		return ctx.builtins.List
	case *NativeFunction, *BoundMethod:
		return ctx.builtins.Native
	default:
		return ctx.builtins.Nil
	}
}

// typeLookup resolves name along cls's cached order, bypassing every
// attribute-read override. The short lock only guards the shared cache map.
func (ctx *Context) typeLookup(cls *Class, name string) (classMember, bool) {
	ctx.mu.Lock()
	defer ctx.mu.Unlock()
	return cls.lookup(name)
}

// ownMember reads name from cls's own namespace only, under the lock.
// Raw chain scans (delegation, the subclass-created sweep) go through here
// so they serialize with SetMember and DeleteMember.
func (ctx *Context) ownMember(cls *Class, name string) (Value, bool) {
	ctx.mu.Lock()
	defer ctx.mu.Unlock()
	v, ok := cls.members[name]
	return v, ok
}

// ownMemberNames snapshots cls's member declaration order under the lock.
func (ctx *Context) ownMemberNames(cls *Class) []string {
	ctx.mu.Lock()
	defer ctx.mu.Unlock()
	return append([]string(nil), cls.memberOrder...)
}

// SetMember installs or replaces a member in cls's own namespace,
// invalidating the lookup caches of cls and its transitive subclasses.
func (ctx *Context) SetMember(cls *Class, name string, value Value) {
	ctx.mu.Lock()
	defer ctx.mu.Unlock()
	cls.setMember(name, value)
}

// DeleteMember removes a member from cls's own namespace.
func (ctx *Context) DeleteMember(cls *Class, name string) error {
	ctx.mu.Lock()
	defer ctx.mu.Unlock()
	if !cls.deleteMember(name) {
		return newAttributeError("class "+cls.Name, name)
	}
	return nil
}

//-----------------------------------------------------------------------------
// Argument plumbing shared by the default hooks
//-----------------------------------------------------------------------------

func argClass(args []Value, idx int, hook string) (*Class, error) {
	if idx >= len(args) {
		return nil, newUnsupportedOperation(hook, "missing argument", "")
	}
	cls, ok := args[idx].(*Class)
	if !ok {
		return nil, newUnsupportedOperation(hook, args[idx].Kind().String(), "")
	}
	return cls, nil
}

// classNewArgs unpacks the (metatype, name, bases, namespace) convention the
// factory uses when invoking a metatype's allocate-new hook.
func classNewArgs(args []Value) (*Class, string, []*Class, *Namespace, error) {
	meta, err := argClass(args, 0, "Type.__new__")
	if err != nil {
		return nil, "", nil, nil, err
	}
	if len(args) < 4 {
		return nil, "", nil, nil, newUnsupportedOperation("Type.__new__", "missing arguments", "")
	}
	name, ok := args[1].(StringValue)
	if !ok {
		return nil, "", nil, nil, newUnsupportedOperation("Type.__new__", args[1].Kind().String(), "")
	}
	baseList, ok := args[2].(*ListValue)
	if !ok {
		return nil, "", nil, nil, newUnsupportedOperation("Type.__new__", args[2].Kind().String(), "")
	}
	bases := make([]*Class, len(baseList.Elements))
	for i, bv := range baseList.Elements {
		b, ok := bv.(*Class)
		if !ok {
			return nil, "", nil, nil, newUnsupportedOperation("Type.__new__", bv.Kind().String(), "")
		}
		bases[i] = b
	}
	ns, ok := args[3].(*Namespace)
	if !ok {
		return nil, "", nil, nil, newUnsupportedOperation("Type.__new__", args[3].Kind().String(), "")
	}
	return meta, name.Val, bases, ns, nil
}
