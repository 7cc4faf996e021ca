package object

import (
	"errors"
	"fmt"
	"testing"
)

// storedField is a host data descriptor: it keeps per-instance values in its
// own table, so direct instance-storage writes never reach it.
type storedField struct {
	values map[*Instance]Value
	reads  int
	writes int
}

func newStoredField() *storedField {
	return &storedField{values: map[*Instance]Value{}}
}

func (f *storedField) Kind() Kind { return KindHost }

func (f *storedField) Get(ctx *Context, receiver Value, owner *Class) (Value, error) {
	f.reads++
	if receiver == nil {
		return f, nil
	}
	inst, ok := receiver.(*Instance)
	if !ok {
		return nil, fmt.Errorf("storedField receiver is %s, want instance", receiver.Kind())
	}
	if v, ok := f.values[inst]; ok {
		return v, nil
	}
	return Nil, nil
}

func (f *storedField) Set(ctx *Context, receiver Value, value Value) error {
	f.writes++
	inst, ok := receiver.(*Instance)
	if !ok {
		return fmt.Errorf("storedField receiver is %s, want instance", receiver.Kind())
	}
	f.values[inst] = value
	return nil
}

func (f *storedField) Delete(ctx *Context, receiver Value) error {
	inst, ok := receiver.(*Instance)
	if !ok {
		return fmt.Errorf("storedField receiver is %s, want instance", receiver.Kind())
	}
	if _, present := f.values[inst]; !present {
		return newAttributeError("storedField", "value")
	}
	delete(f.values, inst)
	return nil
}

// writeOnlySink is a host data descriptor with no read operation: writes are
// captured, reads fall through to instance storage or the descriptor itself.
type writeOnlySink struct {
	writes map[*Instance]Value
}

func (w *writeOnlySink) Kind() Kind { return KindHost }

func (w *writeOnlySink) Set(ctx *Context, receiver Value, value Value) error {
	inst, ok := receiver.(*Instance)
	if !ok {
		return fmt.Errorf("writeOnlySink receiver is %s, want instance", receiver.Kind())
	}
	w.writes[inst] = value
	return nil
}

// constantGetter is a host non-data descriptor: read only.
type constantGetter struct {
	value Value
}

func (g *constantGetter) Kind() Kind { return KindHost }

func (g *constantGetter) Get(ctx *Context, receiver Value, owner *Class) (Value, error) {
	return g.value, nil
}

func TestDataDescriptorBeatsInstanceStorage(t *testing.T) {
	ctx := NewContext()
	field := newStoredField()
	ns := NewNamespace()
	ns.Set("temperature", field)
	cls := mustDefine(t, ctx, "Sensor", nil, ns)
	inst := mustInstantiate(t, ctx, cls)

	mustSetAttr(t, ctx, inst, "temperature", IntValue{Val: 20})
	if got := mustGetAttr(t, ctx, inst, "temperature"); got != (IntValue{Val: 20}) {
		t.Fatalf("descriptor read = %v, want 20", got)
	}

	// Smuggle a value into raw instance storage; the data descriptor must
	// still answer subsequent reads.
	inst.dict["temperature"] = IntValue{Val: 99}
	if got := mustGetAttr(t, ctx, inst, "temperature"); got != (IntValue{Val: 20}) {
		t.Fatalf("descriptor shadowed by instance storage: read = %v, want 20", got)
	}
	if field.writes != 1 {
		t.Fatalf("descriptor writes = %d, want 1", field.writes)
	}
}

func TestWriteOnlyDescriptorReadFallsThroughToStorage(t *testing.T) {
	ctx := NewContext()
	sink := &writeOnlySink{writes: map[*Instance]Value{}}
	ns := NewNamespace()
	ns.Set("audited", sink)
	cls := mustDefine(t, ctx, "Audited", nil, ns)
	inst := mustInstantiate(t, ctx, cls)

	// Writes still route through the descriptor, never into storage.
	mustSetAttr(t, ctx, inst, "audited", IntValue{Val: 5})
	if got := sink.writes[inst]; got != (IntValue{Val: 5}) {
		t.Fatalf("descriptor write captured %v, want 5", got)
	}
	if _, ok := inst.dict["audited"]; ok {
		t.Fatalf("write leaked into instance storage")
	}

	// With nothing in storage, a read returns the descriptor object itself.
	if got := mustGetAttr(t, ctx, inst, "audited"); got != Value(sink) {
		t.Fatalf("read with empty storage = %v, want the descriptor object", got)
	}

	// Smuggle a value into raw storage; reads now answer from storage.
	inst.dict["audited"] = IntValue{Val: 9}
	if got := mustGetAttr(t, ctx, inst, "audited"); got != (IntValue{Val: 9}) {
		t.Fatalf("read with stored value = %v, want 9", got)
	}
}

func TestNonDataDescriptorLosesToInstanceStorage(t *testing.T) {
	ctx := NewContext()
	ns := NewNamespace()
	ns.Set("label", &constantGetter{value: StringValue{Val: "from-class"}})
	cls := mustDefine(t, ctx, "Tagged", nil, ns)
	inst := mustInstantiate(t, ctx, cls)

	if got := mustGetAttr(t, ctx, inst, "label"); got != (StringValue{Val: "from-class"}) {
		t.Fatalf("read before instance write = %v, want from-class", got)
	}
	mustSetAttr(t, ctx, inst, "label", StringValue{Val: "mine"})
	if got := mustGetAttr(t, ctx, inst, "label"); got != (StringValue{Val: "mine"}) {
		t.Fatalf("read after instance write = %v, want mine", got)
	}
}

func TestMethodBindingAndPerInstanceOverride(t *testing.T) {
	ctx := NewContext()
	ns := NewNamespace()
	ns.Set("greet", NewNative("Greeter.greet", func(ctx *Context, args []Value, kwargs map[string]Value) (Value, error) {
		return StringValue{Val: "hello"}, nil
	}))
	cls := mustDefine(t, ctx, "Greeter", nil, ns)
	inst := mustInstantiate(t, ctx, cls)

	bound := mustGetAttr(t, ctx, inst, "greet")
	if bound.Kind() != KindBoundMethod {
		t.Fatalf("instance method read = %s, want bound method", bound.Kind())
	}
	res, err := ctx.CallValue(bound, nil, nil)
	if err != nil {
		t.Fatalf("calling bound method: %v", err)
	}
	if res != (StringValue{Val: "hello"}) {
		t.Fatalf("bound call = %v, want hello", res)
	}

	// Plain inherited methods are non-data, so an instance write shadows
	// them without special-casing.
	mustSetAttr(t, ctx, inst, "greet", StringValue{Val: "not-a-method"})
	if got := mustGetAttr(t, ctx, inst, "greet"); got != (StringValue{Val: "not-a-method"}) {
		t.Fatalf("instance override = %v, want not-a-method", got)
	}

	// Class-level read yields the unbound function.
	if got := mustGetAttr(t, ctx, cls, "greet"); got.Kind() != KindNative {
		t.Fatalf("class-level method read = %s, want native function", got.Kind())
	}
}

func TestFallbackHookAfterOrdinaryResolutionFails(t *testing.T) {
	ctx := NewContext()
	var asked []string
	ns := NewNamespace()
	ns.Set("known", IntValue{Val: 7})
	ns.Set("__getattr__", NewNative("Dyn.__getattr__", func(ctx *Context, args []Value, kwargs map[string]Value) (Value, error) {
		name := args[1].(StringValue).Val
		asked = append(asked, name)
		if name == "missing" {
			return StringValue{Val: "synthesized"}, nil
		}
		return nil, newAttributeError("Dyn instance", name)
	}))
	cls := mustDefine(t, ctx, "Dyn", nil, ns)
	inst := mustInstantiate(t, ctx, cls)

	if got := mustGetAttr(t, ctx, inst, "known"); got != (IntValue{Val: 7}) {
		t.Fatalf("ordinary read = %v, want 7", got)
	}
	if len(asked) != 0 {
		t.Fatalf("fallback hook fired for a resolvable name: %v", asked)
	}
	if got := mustGetAttr(t, ctx, inst, "missing"); got != (StringValue{Val: "synthesized"}) {
		t.Fatalf("fallback read = %v, want synthesized", got)
	}
	if _, err := ctx.GetAttr(inst, "nope"); err == nil {
		t.Fatalf("expected failing fallback to abort the read")
	}
}

func TestAttributeNotFoundCarriesName(t *testing.T) {
	ctx := NewContext()
	cls := mustDefine(t, ctx, "Empty", nil, nil)
	inst := mustInstantiate(t, ctx, cls)

	_, err := ctx.GetAttr(inst, "ghost")
	var attrErr *AttributeError
	if !errors.As(err, &attrErr) {
		t.Fatalf("expected *AttributeError, got %T: %v", err, err)
	}
	if attrErr.Name != "ghost" {
		t.Fatalf("error names %q, want ghost", attrErr.Name)
	}
}

func TestSlotBackedInstances(t *testing.T) {
	ctx := NewContext()
	ns := NewNamespace()
	ns.Set(protoSlots, NewList(StringValue{Val: "x"}, StringValue{Val: "y"}))
	point := mustDefine(t, ctx, "Point", nil, ns)

	subNS := NewNamespace()
	subNS.Set(protoSlots, NewList(StringValue{Val: "z"}))
	point3 := mustDefine(t, ctx, "Point3", []*Class{point}, subNS)

	inst := mustInstantiate(t, ctx, point3)
	mustSetAttr(t, ctx, inst, "x", IntValue{Val: 1})
	mustSetAttr(t, ctx, inst, "z", IntValue{Val: 3})
	if got := mustGetAttr(t, ctx, inst, "x"); got != (IntValue{Val: 1}) {
		t.Fatalf("inherited slot read = %v, want 1", got)
	}
	if got := mustGetAttr(t, ctx, inst, "z"); got != (IntValue{Val: 3}) {
		t.Fatalf("own slot read = %v, want 3", got)
	}

	err := ctx.SetAttr(inst, "w", IntValue{Val: 9})
	var attrErr *AttributeError
	if !errors.As(err, &attrErr) {
		t.Fatalf("expected attribute error outside slot set, got %T: %v", err, err)
	}

	// Reading an unset slot fails like any missing attribute.
	if _, err := ctx.GetAttr(inst, "y"); err == nil {
		t.Fatalf("expected read of unset slot to fail")
	}
}

func TestDeleteAttribute(t *testing.T) {
	ctx := NewContext()
	field := newStoredField()
	ns := NewNamespace()
	ns.Set("checked", field)
	cls := mustDefine(t, ctx, "Form", nil, ns)
	inst := mustInstantiate(t, ctx, cls)

	mustSetAttr(t, ctx, inst, "checked", BoolValue{Val: true})
	if err := ctx.DelAttr(inst, "checked"); err != nil {
		t.Fatalf("descriptor remove: %v", err)
	}
	if _, present := field.values[inst]; present {
		t.Fatalf("descriptor remove left a value behind")
	}

	mustSetAttr(t, ctx, inst, "plain", IntValue{Val: 1})
	if err := ctx.DelAttr(inst, "plain"); err != nil {
		t.Fatalf("instance storage remove: %v", err)
	}
	if err := ctx.DelAttr(inst, "plain"); err == nil {
		t.Fatalf("expected remove of absent attribute to fail")
	}
}

func TestClassMutationInvalidatesSubclassLookups(t *testing.T) {
	ctx := NewContext()
	baseNS := NewNamespace()
	baseNS.Set("limit", IntValue{Val: 10})
	base := mustDefine(t, ctx, "Base", nil, baseNS)
	derived := mustDefine(t, ctx, "Derived", []*Class{base}, nil)
	inst := mustInstantiate(t, ctx, derived)

	if got := mustGetAttr(t, ctx, inst, "limit"); got != (IntValue{Val: 10}) {
		t.Fatalf("initial read = %v, want 10", got)
	}
	ctx.SetMember(base, "limit", IntValue{Val: 25})
	if got := mustGetAttr(t, ctx, inst, "limit"); got != (IntValue{Val: 25}) {
		t.Fatalf("read after base mutation = %v, want 25", got)
	}
	if err := ctx.DeleteMember(base, "limit"); err != nil {
		t.Fatalf("deleting base member: %v", err)
	}
	if _, err := ctx.GetAttr(inst, "limit"); err == nil {
		t.Fatalf("expected read to fail after member removal")
	}
}

func TestClassLevelReadToleratesAbsentInstance(t *testing.T) {
	ctx := NewContext()
	field := newStoredField()
	ns := NewNamespace()
	ns.Set("cell", field)
	cls := mustDefine(t, ctx, "Grid", nil, ns)

	got := mustGetAttr(t, ctx, cls, "cell")
	if got != Value(field) {
		t.Fatalf("class-level descriptor read = %v, want the descriptor itself", got)
	}
}

func TestBuiltinValueMemberAccess(t *testing.T) {
	ctx := NewContext()
	list := NewList(IntValue{Val: 1}, IntValue{Val: 2})
	appendMethod := mustGetAttr(t, ctx, list, "append")
	if appendMethod.Kind() != KindBoundMethod {
		t.Fatalf("list.append = %s, want bound method", appendMethod.Kind())
	}
	if _, err := ctx.CallValue(appendMethod, []Value{IntValue{Val: 3}}, nil); err != nil {
		t.Fatalf("calling list.append: %v", err)
	}
	if len(list.Elements) != 3 {
		t.Fatalf("append left %d elements, want 3", len(list.Elements))
	}
}
