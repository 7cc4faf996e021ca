package object

// Namespace is the ordered name-to-value mapping produced by executing a
// class body. Declaration order is preserved so bind-name hooks fire in the
// order members were written.
type Namespace struct {
	names  []string
	values map[string]Value
}

func (ns *Namespace) Kind() Kind { return KindNamespace }

func NewNamespace() *Namespace {
	return &Namespace{values: map[string]Value{}}
}

// Set records value under name. The first assignment fixes the declaration
// position; later assignments replace the value in place.
func (ns *Namespace) Set(name string, value Value) {
	if _, seen := ns.values[name]; !seen {
		ns.names = append(ns.names, name)
	}
	ns.values[name] = value
}

func (ns *Namespace) Get(name string) (Value, bool) {
	v, ok := ns.values[name]
	return v, ok
}

func (ns *Namespace) Has(name string) bool {
	_, ok := ns.values[name]
	return ok
}

// Names returns the member names in declaration order.
func (ns *Namespace) Names() []string {
	out := make([]string, len(ns.names))
	copy(out, ns.names)
	return out
}

func (ns *Namespace) Len() int {
	return len(ns.names)
}
