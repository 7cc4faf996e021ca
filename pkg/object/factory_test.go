package object

import (
	"errors"
	"fmt"
	"testing"
)

func TestMetatypePropagatesToSubclasses(t *testing.T) {
	ctx := NewContext()
	meta := mustDefine(t, ctx, "Meta", []*Class{ctx.Type}, nil)

	a, err := ctx.DefineClass("A", nil, NewNamespace(), meta, nil)
	if err != nil {
		t.Fatalf("defining A: %v", err)
	}
	if a.Meta != meta {
		t.Fatalf("A's metatype = %s, want Meta", a.Meta.Name)
	}

	// No explicit request: the most-derived metatype among the bases wins.
	b := mustDefine(t, ctx, "B", []*Class{a}, nil)
	if b.Meta != meta {
		t.Fatalf("B's metatype = %s, want Meta", b.Meta.Name)
	}
}

func TestMetatypeConflict(t *testing.T) {
	ctx := NewContext()
	m1 := mustDefine(t, ctx, "M1", []*Class{ctx.Type}, nil)
	m2 := mustDefine(t, ctx, "M2", []*Class{ctx.Type}, nil)

	a, err := ctx.DefineClass("A", nil, NewNamespace(), m1, nil)
	if err != nil {
		t.Fatalf("defining A: %v", err)
	}
	b, err := ctx.DefineClass("B", nil, NewNamespace(), m2, nil)
	if err != nil {
		t.Fatalf("defining B: %v", err)
	}

	_, err = ctx.DefineClass("C", []*Class{a, b}, NewNamespace(), nil, nil)
	var conflict *MetatypeConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected metatype conflict, got %T: %v", err, err)
	}
}

func TestMetatypeCallOverrideSingleton(t *testing.T) {
	ctx := NewContext()
	instances := map[*Class]Value{}

	var meta *Class
	metaNS := NewNamespace()
	metaNS.Set(protoCall, NewNative("Singleton.__call__", func(ctx *Context, args []Value, kwargs map[string]Value) (Value, error) {
		cls := args[0].(*Class)
		if cached, ok := instances[cls]; ok {
			return cached, nil
		}
		zuper, err := ctx.NewSuper(meta, cls)
		if err != nil {
			return nil, err
		}
		call, err := ctx.GetAttr(zuper, protoCall)
		if err != nil {
			return nil, err
		}
		created, err := ctx.CallValue(call, args[1:], kwargs)
		if err != nil {
			return nil, err
		}
		instances[cls] = created
		return created, nil
	}))
	meta = mustDefine(t, ctx, "Singleton", []*Class{ctx.Type}, metaNS)

	svc, err := ctx.DefineClass("Service", nil, NewNamespace(), meta, nil)
	if err != nil {
		t.Fatalf("defining Service: %v", err)
	}

	first, err := ctx.CallValue(svc, nil, nil)
	if err != nil {
		t.Fatalf("first instantiation: %v", err)
	}
	second, err := ctx.CallValue(svc, nil, nil)
	if err != nil {
		t.Fatalf("second instantiation: %v", err)
	}
	if first != second {
		t.Fatalf("singleton metatype produced two distinct instances")
	}
}

func TestMetatypeNewOverrideCooperates(t *testing.T) {
	ctx := NewContext()
	var stamped []*Class

	var stamping *Class
	metaNS := NewNamespace()
	metaNS.Set(protoNew, NewNative("Stamping.__new__", func(ctx *Context, args []Value, kwargs map[string]Value) (Value, error) {
		meta := args[0].(*Class)
		zuper, err := ctx.NewSuper(stamping, meta)
		if err != nil {
			return nil, err
		}
		allocate, err := ctx.GetAttr(zuper, protoNew)
		if err != nil {
			return nil, err
		}
		created, err := ctx.CallValue(allocate, args[1:], kwargs)
		if err != nil {
			return nil, err
		}
		cls := created.(*Class)
		stamped = append(stamped, cls)
		return cls, nil
	}))
	stamping = mustDefine(t, ctx, "Stamping", []*Class{ctx.Type}, metaNS)
	meta := stamping

	cls, err := ctx.DefineClass("Widget", nil, NewNamespace(), meta, nil)
	if err != nil {
		t.Fatalf("defining Widget: %v", err)
	}
	if len(stamped) != 1 || stamped[0] != cls {
		t.Fatalf("allocate-new override observed %v, want the Widget class once", stamped)
	}
	want := []string{"Widget", "Object"}
	if got := orderNames(cls.Mro()); !sameNames(got, want) {
		t.Fatalf("order = %v, want %v", got, want)
	}
}

func TestConstructionErrorPropagatesUnmodified(t *testing.T) {
	ctx := NewContext()
	boom := fmt.Errorf("allocation refused")
	metaNS := NewNamespace()
	metaNS.Set(protoNew, NewNative("Refusing.__new__", func(ctx *Context, args []Value, kwargs map[string]Value) (Value, error) {
		return nil, boom
	}))
	meta := mustDefine(t, ctx, "Refusing", []*Class{ctx.Type}, metaNS)

	_, err := ctx.DefineClass("Nope", nil, NewNamespace(), meta, nil)
	if !errors.Is(err, boom) {
		t.Fatalf("construction error was modified: %v", err)
	}
}

// The cooperative subclass-created scenario: two mixins log their names and
// re-invoke their successor; one definition statement produces both entries
// in resolution order, with no entry for the universal base.
func TestInitSubclassCooperativeChain(t *testing.T) {
	ctx := NewContext()
	var log []string

	makeHook := func(label string, owner func() *Class) *NativeFunction {
		return NewNative(label+".__init_subclass__", func(ctx *Context, args []Value, kwargs map[string]Value) (Value, error) {
			cls := args[0].(*Class)
			log = append(log, label)
			zuper, err := ctx.NewSuper(owner(), cls)
			if err != nil {
				return nil, err
			}
			next, err := ctx.GetAttr(zuper, protoInitSubclass)
			if err != nil {
				return nil, err
			}
			return ctx.CallValue(next, nil, kwargs)
		})
	}

	var m1, m2 *Class
	m1NS := NewNamespace()
	m1NS.Set(protoInitSubclass, makeHook("M1", func() *Class { return m1 }))
	m1 = mustDefine(t, ctx, "M1", nil, m1NS)

	m2NS := NewNamespace()
	m2NS.Set(protoInitSubclass, makeHook("M2", func() *Class { return m2 }))
	m2 = mustDefine(t, ctx, "M2", nil, m2NS)

	log = nil
	mustDefine(t, ctx, "Combined", []*Class{m1, m2}, nil)
	want := []string{"M1", "M2"}
	if !sameNames(log, want) {
		t.Fatalf("subclass-created log = %v, want %v", log, want)
	}
}

func TestInitSubclassReceivesKeywords(t *testing.T) {
	ctx := NewContext()
	var seen map[string]Value
	baseNS := NewNamespace()
	baseNS.Set(protoInitSubclass, NewNative("Plugin.__init_subclass__", func(ctx *Context, args []Value, kwargs map[string]Value) (Value, error) {
		seen = kwargs
		return Nil, nil
	}))
	base := mustDefine(t, ctx, "Plugin", nil, baseNS)

	_, err := ctx.DefineClass("JSONPlugin", []*Class{base}, NewNamespace(), nil, map[string]Value{
		"format": StringValue{Val: "json"},
	})
	if err != nil {
		t.Fatalf("defining JSONPlugin: %v", err)
	}
	if seen == nil || seen["format"] != (StringValue{Val: "json"}) {
		t.Fatalf("subclass-created hook kwargs = %v, want format=json", seen)
	}
}

func TestInstantiationSkipsInitForForeignValues(t *testing.T) {
	ctx := NewContext()
	ns := NewNamespace()
	ns.Set(protoNew, NewNative("Forty.__new__", func(ctx *Context, args []Value, kwargs map[string]Value) (Value, error) {
		return IntValue{Val: 42}, nil
	}))
	ns.Set(protoInit, NewNative("Forty.__init__", func(ctx *Context, args []Value, kwargs map[string]Value) (Value, error) {
		return nil, fmt.Errorf("initialize must not run for foreign values")
	}))
	cls := mustDefine(t, ctx, "Forty", nil, ns)

	v, err := ctx.CallValue(cls, nil, nil)
	if err != nil {
		t.Fatalf("instantiation: %v", err)
	}
	if v != (IntValue{Val: 42}) {
		t.Fatalf("instantiation = %v, want 42", v)
	}
}

func TestInstantiationRunsInitWithCallArguments(t *testing.T) {
	ctx := NewContext()
	ns := NewNamespace()
	ns.Set(protoInit, NewNative("Pair.__init__", func(ctx *Context, args []Value, kwargs map[string]Value) (Value, error) {
		self := args[0].(*Instance)
		if err := ctx.SetAttr(self, "left", args[1]); err != nil {
			return nil, err
		}
		return Nil, ctx.SetAttr(self, "right", args[2])
	}))
	cls := mustDefine(t, ctx, "Pair", nil, ns)

	inst := mustInstantiate(t, ctx, cls, IntValue{Val: 1}, IntValue{Val: 2})
	if got := mustGetAttr(t, ctx, inst, "left"); got != (IntValue{Val: 1}) {
		t.Fatalf("left = %v, want 1", got)
	}
	if got := mustGetAttr(t, ctx, inst, "right"); got != (IntValue{Val: 2}) {
		t.Fatalf("right = %v, want 2", got)
	}
}
