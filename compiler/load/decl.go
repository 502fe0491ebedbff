package load

import (
	"errors"
	"fmt"
	"slices"

	"gopkg.in/yaml.v3"
)

// ErrInheritanceCycle is returned when node types inherit from themselves.
var ErrInheritanceCycle = errors.New("load: node type inheritance cycle")

// mapping is a YAML mapping that keeps the order its keys were first seen in.
type mapping struct {
	keys   []string
	values map[string]any
}

func newMapping() *mapping {
	return &mapping{values: make(map[string]any)}
}

func (m *mapping) set(key string, v any) {
	if _, ok := m.values[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.values[key] = v
}

// merge deep-merges src into m. Nested mappings merge, everything else is
// replaced by the value of src.
func (m *mapping) merge(src *mapping) {
	for _, k := range src.keys {
		sv := src.values[k]
		if dst, ok := m.values[k].(*mapping); ok {
			if sm, ok := sv.(*mapping); ok {
				dst.merge(sm)
				continue
			}
		}
		m.set(k, clone(sv))
	}
}

func clone(v any) any {
	switch v := v.(type) {
	case *mapping:
		c := newMapping()
		c.merge(v)
		return c
	case []any:
		out := make([]any, len(v))
		for i, e := range v {
			out[i] = clone(e)
		}
		return out
	default:
		return v
	}
}

// plain converts mappings to Maps, recursively.
func plain(v any) any {
	switch v := v.(type) {
	case *mapping:
		out := make(Map, 0, len(v.keys))
		for _, k := range v.keys {
			out = append(out, MapItem{Key: k, Value: plain(v.values[k])})
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, e := range v {
			out[i] = plain(e)
		}
		return out
	default:
		return v
	}
}

// decodeNode converts a YAML node to mappings, slices and scalars.
func decodeNode(n *yaml.Node) (any, error) {
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return nil, nil
		}
		return decodeNode(n.Content[0])
	case yaml.AliasNode:
		return decodeNode(n.Alias)
	case yaml.MappingNode:
		m := newMapping()
		for i := 0; i+1 < len(n.Content); i += 2 {
			var key string
			if err := n.Content[i].Decode(&key); err != nil {
				return nil, fmt.Errorf("line %d: %w", n.Content[i].Line, err)
			}
			v, err := decodeNode(n.Content[i+1])
			if err != nil {
				return nil, err
			}
			m.set(key, v)
		}
		return m, nil
	case yaml.SequenceNode:
		out := make([]any, 0, len(n.Content))
		for _, c := range n.Content {
			v, err := decodeNode(c)
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		}
		return out, nil
	default:
		var v any
		if err := n.Decode(&v); err != nil {
			return nil, fmt.Errorf("line %d: %w", n.Line, err)
		}
		return v, nil
	}
}

// Declarations collects raw node type declarations from schema files.
// Files are merged in the order they are added: later files override
// values of earlier ones and node types keep their first position.
type Declarations struct {
	decls *mapping
	pos   map[string]string
}

// NewDeclarations creates an empty declaration set.
func NewDeclarations() *Declarations {
	return &Declarations{decls: newMapping(), pos: make(map[string]string)}
}

// Add parses a schema file and merges it into the declarations.
func (d *Declarations) Add(name string, data []byte) error {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("parse %s: %w", name, err)
	}
	v, err := decodeNode(&doc)
	if err != nil {
		return fmt.Errorf("parse %s: %w", name, err)
	}
	if v == nil {
		return nil
	}
	m, ok := v.(*mapping)
	if !ok {
		return fmt.Errorf("parse %s: top level must be a mapping of node types", name)
	}
	for _, typeName := range m.keys {
		decl, ok := m.values[typeName].(*mapping)
		if !ok {
			if m.values[typeName] != nil {
				return fmt.Errorf("parse %s: node type %s must be a mapping", name, typeName)
			}
			decl = newMapping()
		}
		if _, ok := d.pos[typeName]; !ok {
			d.pos[typeName] = name
		}
		if prev, ok := d.decls.values[typeName].(*mapping); ok {
			prev.merge(decl)
		} else {
			d.decls.set(typeName, clone(decl))
		}
	}
	return nil
}

// NodeTypes resolves inheritance and returns all declared node types in
// declaration order.
func (d *Declarations) NodeTypes() ([]*NodeType, error) {
	r := &resolver{decls: d.decls, merged: make(map[string]*mapping), visiting: make(map[string]bool)}
	types := make([]*NodeType, 0, len(d.decls.keys))
	for _, name := range d.decls.keys {
		merged, err := r.resolve(name)
		if err != nil {
			return nil, err
		}
		own := d.decls.values[name].(*mapping)
		types = append(types, newNodeType(name, d.pos[name], own, merged))
	}
	return types, nil
}

// resolver merges the declarations of supertypes into their subtypes.
type resolver struct {
	decls    *mapping
	merged   map[string]*mapping
	visiting map[string]bool
	path     []string
}

func (r *resolver) resolve(name string) (*mapping, error) {
	if m, ok := r.merged[name]; ok {
		return m, nil
	}
	if r.visiting[name] {
		return nil, fmt.Errorf("%w: %v", ErrInheritanceCycle, append(slices.Clone(r.path), name))
	}
	own, ok := r.decls.values[name].(*mapping)
	if !ok {
		return nil, nil
	}
	r.visiting[name] = true
	r.path = append(r.path, name)
	defer func() {
		delete(r.visiting, name)
		r.path = r.path[:len(r.path)-1]
	}()

	merged := newMapping()
	for _, super := range superTypes(own) {
		sm, err := r.resolve(super)
		if err != nil {
			return nil, err
		}
		if sm == nil {
			continue
		}
		for _, k := range sm.keys {
			// abstract and superTypes belong to the declaring node type.
			if k == "abstract" || k == "superTypes" {
				continue
			}
			merged.merge(&mapping{keys: []string{k}, values: map[string]any{k: sm.values[k]}})
		}
	}
	merged.merge(own)
	r.merged[name] = merged
	return merged, nil
}

// superTypes returns the enabled supertypes of a declaration. Both the
// mapping form (name: true|false) and a plain list are accepted.
func superTypes(decl *mapping) []string {
	var out []string
	switch st := decl.values["superTypes"].(type) {
	case *mapping:
		for _, k := range st.keys {
			if enabled, _ := st.values[k].(bool); enabled {
				out = append(out, k)
			}
		}
	case []any:
		for _, v := range st {
			if s, ok := v.(string); ok && !slices.Contains(out, s) {
				out = append(out, s)
			}
		}
	}
	return out
}

func newNodeType(name, pos string, own, merged *mapping) *NodeType {
	nt := &NodeType{
		Name:       name,
		Pos:        pos,
		SuperTypes: superTypes(own),
		Options:    DefaultOptions,
	}
	nt.Abstract, _ = own.values["abstract"].(bool)
	if props, ok := merged.values["properties"].(*mapping); ok {
		for _, pname := range props.keys {
			pdecl, ok := props.values[pname].(*mapping)
			if !ok {
				// A null property removes an inherited one.
				continue
			}
			p := &Property{Name: pname, Type: DefaultPropertyType}
			if t, ok := pdecl.values["type"].(string); ok && t != "" {
				p.Type = t
			}
			p.Default = plain(pdecl.values["defaultValue"])
			nt.Properties = append(nt.Properties, p)
		}
	}
	if opts, ok := lookup(merged, "options", "nodeTypeObjects"); ok {
		if b, ok := opts.values["generateClass"].(bool); ok {
			nt.Options.GenerateClass = b
		}
		if b, ok := opts.values["generateInterface"].(bool); ok {
			nt.Options.GenerateInterface = b
		}
	}
	return nt
}

func lookup(m *mapping, path ...string) (*mapping, bool) {
	for _, key := range path {
		next, ok := m.values[key].(*mapping)
		if !ok {
			return nil, false
		}
		m = next
	}
	return m, true
}
