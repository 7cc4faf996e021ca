// Package manifest loads and stores class-hierarchy manifests: YAML files
// declaring classes, their bases, metatypes, slot layouts, and scalar
// members, in declaration order. Build replays a manifest into a runtime
// context through the ordinary class factory, so every declared class goes
// through metatype selection, linearization, and the definition hooks.
package manifest

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"loom/runtime-go/pkg/object"
)

// Manifest models the contents of a classes.yml file.
type Manifest struct {
	Path    string
	Name    string
	Classes []*ClassDecl
}

// ClassDecl declares a single class. Bases and Metatype name classes that
// must already exist (built in or declared earlier in the same manifest).
type ClassDecl struct {
	Name     string
	Bases    []string
	Metatype string
	Slots    []string
	Members  []MemberDecl
}

// MemberDecl is one class member in declaration order. Values are scalar
// literals; nil declares the member with a nil value.
type MemberDecl struct {
	Name  string
	Value any
}

// Load parses a manifest from disk.
func Load(path string) (*Manifest, error) {
	if path == "" {
		return nil, fmt.Errorf("manifest: empty path")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("manifest: resolve %s: %w", path, err)
	}
	file, err := os.Open(abs)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var raw manifestDisk
	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true)
	if err := decoder.Decode(&raw); err != nil {
		return nil, fmt.Errorf("manifest: parse %s: %w", abs, err)
	}

	m := raw.toManifest()
	m.Path = abs
	if err := m.validate(); err != nil {
		return nil, fmt.Errorf("manifest: %s: %w", abs, err)
	}
	return m, nil
}

// Save serialises the manifest back to disk.
func Save(m *Manifest, path string) error {
	if m == nil {
		return fmt.Errorf("manifest: nil manifest")
	}
	if path == "" {
		if m.Path == "" {
			return fmt.Errorf("manifest: missing path")
		}
		path = m.Path
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("manifest: resolve %s: %w", path, err)
	}
	if err := m.validate(); err != nil {
		return fmt.Errorf("manifest: %s: %w", abs, err)
	}
	m.Path = abs

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(m.toDisk()); err != nil {
		return fmt.Errorf("manifest: marshal %s: %w", abs, err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("manifest: encoder close: %w", err)
	}
	if err := os.WriteFile(abs, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("manifest: write %s: %w", abs, err)
	}
	return nil
}

// Build defines every declared class in ctx, in declaration order. Classes
// declared earlier in the manifest are visible as bases and metatypes of
// later ones. It returns the defined classes in the same order.
func Build(ctx *object.Context, m *Manifest) ([]*object.Class, error) {
	if m == nil {
		return nil, fmt.Errorf("manifest: nil manifest")
	}
	out := make([]*object.Class, 0, len(m.Classes))
	for _, decl := range m.Classes {
		cls, err := buildClass(ctx, decl)
		if err != nil {
			return nil, fmt.Errorf("manifest: class %s: %w", decl.Name, err)
		}
		out = append(out, cls)
	}
	return out, nil
}

func buildClass(ctx *object.Context, decl *ClassDecl) (*object.Class, error) {
	bases := make([]*object.Class, 0, len(decl.Bases))
	for _, name := range decl.Bases {
		base, ok := ctx.LookupClass(name)
		if !ok {
			return nil, fmt.Errorf("unknown base %s", name)
		}
		bases = append(bases, base)
	}

	var meta *object.Class
	if decl.Metatype != "" {
		found, ok := ctx.LookupClass(decl.Metatype)
		if !ok {
			return nil, fmt.Errorf("unknown metatype %s", decl.Metatype)
		}
		meta = found
	}

	ns := object.NewNamespace()
	if len(decl.Slots) > 0 {
		slots := make([]object.Value, 0, len(decl.Slots))
		for _, s := range decl.Slots {
			slots = append(slots, object.StringValue{Val: s})
		}
		ns.Set("__slots__", object.NewList(slots...))
	}
	for _, member := range decl.Members {
		if ns.Has(member.Name) {
			return nil, fmt.Errorf("member %s declared twice", member.Name)
		}
		value, err := scalarValue(member.Value)
		if err != nil {
			return nil, fmt.Errorf("member %s: %w", member.Name, err)
		}
		ns.Set(member.Name, value)
	}

	return ctx.DefineClass(decl.Name, bases, ns, meta, nil)
}

// scalarValue converts a decoded YAML scalar into a runtime value.
func scalarValue(raw any) (object.Value, error) {
	switch v := raw.(type) {
	case nil:
		return object.Nil, nil
	case bool:
		return object.BoolValue{Val: v}, nil
	case int:
		return object.IntValue{Val: int64(v)}, nil
	case int64:
		return object.IntValue{Val: v}, nil
	case float64:
		return object.FloatValue{Val: v}, nil
	case string:
		return object.StringValue{Val: v}, nil
	default:
		return nil, fmt.Errorf("unsupported literal %T", raw)
	}
}

func (m *Manifest) validate() error {
	seen := make(map[string]bool, len(m.Classes))
	for _, decl := range m.Classes {
		if decl == nil {
			return fmt.Errorf("empty class entry")
		}
		name := strings.TrimSpace(decl.Name)
		if name == "" {
			return fmt.Errorf("class with no name")
		}
		if seen[name] {
			return fmt.Errorf("class %s declared twice", name)
		}
		seen[name] = true
	}
	return nil
}

//------------------------------------------------------------------------------
// Disk representation

type manifestDisk struct {
	Name    string      `yaml:"name"`
	Classes []classDisk `yaml:"classes"`
}

type classDisk struct {
	Name     string       `yaml:"name"`
	Bases    []string     `yaml:"bases,omitempty"`
	Metatype string       `yaml:"metatype,omitempty"`
	Slots    []string     `yaml:"slots,omitempty"`
	Members  []memberDisk `yaml:"members,omitempty"`
}

type memberDisk struct {
	Name  string `yaml:"name"`
	Value any    `yaml:"value"`
}

func (d manifestDisk) toManifest() *Manifest {
	m := &Manifest{
		Name:    strings.TrimSpace(d.Name),
		Classes: make([]*ClassDecl, 0, len(d.Classes)),
	}
	for _, cls := range d.Classes {
		members := make([]MemberDecl, 0, len(cls.Members))
		for _, member := range cls.Members {
			members = append(members, MemberDecl{
				Name:  strings.TrimSpace(member.Name),
				Value: member.Value,
			})
		}
		m.Classes = append(m.Classes, &ClassDecl{
			Name:     strings.TrimSpace(cls.Name),
			Bases:    trimAll(cls.Bases),
			Metatype: strings.TrimSpace(cls.Metatype),
			Slots:    trimAll(cls.Slots),
			Members:  members,
		})
	}
	return m
}

func (m *Manifest) toDisk() manifestDisk {
	classes := make([]classDisk, 0, len(m.Classes))
	for _, decl := range m.Classes {
		if decl == nil {
			continue
		}
		members := make([]memberDisk, 0, len(decl.Members))
		for _, member := range decl.Members {
			members = append(members, memberDisk{Name: member.Name, Value: member.Value})
		}
		classes = append(classes, classDisk{
			Name:     decl.Name,
			Bases:    decl.Bases,
			Metatype: decl.Metatype,
			Slots:    decl.Slots,
			Members:  members,
		})
	}
	return manifestDisk{Name: m.Name, Classes: classes}
}

func trimAll(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	out := make([]string, 0, len(in))
	for _, s := range in {
		out = append(out, strings.TrimSpace(s))
	}
	return out
}
