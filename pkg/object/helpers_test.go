package object

import "testing"

func mustDefine(t *testing.T, ctx *Context, name string, bases []*Class, ns *Namespace) *Class {
	t.Helper()
	if ns == nil {
		ns = NewNamespace()
	}
	cls, err := ctx.DefineClass(name, bases, ns, nil, nil)
	if err != nil {
		t.Fatalf("defining class %s: %v", name, err)
	}
	return cls
}

func mustInstantiate(t *testing.T, ctx *Context, cls *Class, args ...Value) *Instance {
	t.Helper()
	v, err := ctx.CallValue(cls, args, nil)
	if err != nil {
		t.Fatalf("instantiating %s: %v", cls.Name, err)
	}
	inst, ok := v.(*Instance)
	if !ok {
		t.Fatalf("instantiating %s produced %s, want instance", cls.Name, v.Kind())
	}
	return inst
}

func mustGetAttr(t *testing.T, ctx *Context, obj Value, name string) Value {
	t.Helper()
	v, err := ctx.GetAttr(obj, name)
	if err != nil {
		t.Fatalf("reading attribute %s: %v", name, err)
	}
	return v
}

func mustSetAttr(t *testing.T, ctx *Context, obj Value, name string, value Value) {
	t.Helper()
	if err := ctx.SetAttr(obj, name, value); err != nil {
		t.Fatalf("writing attribute %s: %v", name, err)
	}
}

func orderNames(order []*Class) []string {
	names := make([]string, len(order))
	for i, c := range order {
		names[i] = c.Name
	}
	return names
}

func sameNames(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
