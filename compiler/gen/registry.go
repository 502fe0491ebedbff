package gen

import (
	"slices"

	"github.com/syssam/nodetypeobjects/compiler/load"
)

// NameRegistry maps qualified node type names to their resolved names.
// It is filled in a first pass over every node type in scope and only
// read afterwards, so supertypes can be resolved regardless of the order
// node types are processed in.
type NameRegistry struct {
	specs map[string]NameSpec
	// types holds the node types the specs were resolved from, when known.
	types map[string]*load.NodeType
}

// NewNameRegistry creates a registry holding the given specs.
func NewNameRegistry(specs ...NameSpec) (*NameRegistry, error) {
	r := &NameRegistry{specs: make(map[string]NameSpec, len(specs))}
	for _, s := range specs {
		if err := r.Add(s); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// BuildNameRegistry resolves the names of all node types against the root
// of their package. Node types whose package has no root are skipped.
func BuildNameRegistry(types []*load.NodeType, roots map[string]PackageRoot) (*NameRegistry, error) {
	r := &NameRegistry{
		specs: make(map[string]NameSpec, len(types)),
		types: make(map[string]*load.NodeType, len(types)),
	}
	for _, nt := range types {
		root, ok := roots[nt.PackageKey()]
		if !ok {
			continue
		}
		spec, err := ResolveNodeType(nt, root)
		if err != nil {
			return nil, err
		}
		if err := r.Add(spec); err != nil {
			return nil, err
		}
		r.types[nt.Name] = nt
	}
	return r, nil
}

// NodeType returns the node type a name was resolved from. Registries
// created from bare specs know no node types.
func (r *NameRegistry) NodeType(name string) (*load.NodeType, bool) {
	nt, ok := r.types[name]
	return nt, ok
}

// Add stores a spec. Adding an identical spec twice is a no-op, adding a
// different spec under an existing name fails.
func (r *NameRegistry) Add(spec NameSpec) error {
	if prev, ok := r.specs[spec.QualifiedName]; ok {
		if prev != spec {
			return NewSchemaError(spec.QualifiedName, "", "resolved twice with different names", nil)
		}
		return nil
	}
	r.specs[spec.QualifiedName] = spec
	return nil
}

// Lookup returns the spec of a qualified name.
func (r *NameRegistry) Lookup(name string) (NameSpec, bool) {
	spec, ok := r.specs[name]
	return spec, ok
}

// Join returns the specs of the given names in order. Names missing from
// the registry and repeated names are dropped.
func (r *NameRegistry) Join(names []string) []NameSpec {
	var (
		out  []NameSpec
		seen = make(map[string]struct{}, len(names))
	)
	for _, name := range names {
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		if spec, ok := r.specs[name]; ok {
			out = append(out, spec)
		}
	}
	return out
}

// Missing returns the given names that are not in the registry.
func (r *NameRegistry) Missing(names []string) []string {
	var out []string
	for _, name := range names {
		if _, ok := r.specs[name]; !ok && !slices.Contains(out, name) {
			out = append(out, name)
		}
	}
	return out
}

// Len returns the number of specs.
func (r *NameRegistry) Len() int { return len(r.specs) }

// Names returns the registered qualified names in sorted order.
func (r *NameRegistry) Names() []string {
	names := make([]string, 0, len(r.specs))
	for name := range r.specs {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
