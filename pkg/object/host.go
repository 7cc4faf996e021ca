package object

import (
	"fmt"
	"sort"
)

// HostCtor builds a new value of cls from the call arguments.
type HostCtor func(ctx *Context, cls *Class, args []Value, kwargs map[string]Value) (Value, error)

// HostClassSpec is the registration contract for classes implemented by the
// embedding host. A registered class is an ordinary class: script code may
// subclass it, its protocol members are found by normal chain scanning, and
// subclasses may override any member.
type HostClassSpec struct {
	// Name is the display name the class registers under.
	Name string
	// Bases are the declared base classes; empty means the universal base.
	Bases []*Class
	// Ctor produces a new value from the call arguments. Wired as the
	// class's allocate-new hook; nil inherits the default allocation. The
	// class argument is the class actually being instantiated, which is a
	// subclass when script code derives from the registered class.
	Ctor HostCtor
	// Methods maps member names to ordinary native methods.
	Methods map[string]NativeFn
	// Protocols maps protocol member names (__len__, __add__, ...) to
	// native implementations found by the dispatch router.
	Protocols map[string]NativeFn
}

// RegisterClass runs a host registration through the regular class factory,
// so metatype hooks and subclass-created hooks observe host classes exactly
// like script-defined ones.
func (ctx *Context) RegisterClass(spec HostClassSpec) (*Class, error) {
	if spec.Name == "" {
		return nil, fmt.Errorf("host class registration requires a name")
	}
	ns := NewNamespace()
	if spec.Ctor != nil {
		ctor := spec.Ctor
		ns.Set(protoNew, NewNative(spec.Name+".__new__", func(ctx *Context, args []Value, kwargs map[string]Value) (Value, error) {
			cls, err := argClass(args, 0, spec.Name+".__new__")
			if err != nil {
				return nil, err
			}
			return ctor(ctx, cls, args[1:], kwargs)
		}))
	}
	for _, name := range sortedKeys(spec.Methods) {
		ns.Set(name, NewNative(spec.Name+"."+name, spec.Methods[name]))
	}
	for _, name := range sortedKeys(spec.Protocols) {
		ns.Set(name, NewNative(spec.Name+"."+name, spec.Protocols[name]))
	}
	return ctx.DefineClass(spec.Name, spec.Bases, ns, nil, nil)
}

func sortedKeys(m map[string]NativeFn) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
