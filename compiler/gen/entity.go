package gen

import (
	"strings"

	"github.com/syssam/nodetypeobjects/compiler/load"
)

// EntitySpec is the complete generation input of one node type.
type EntitySpec struct {
	// Names of the node type.
	Names NameSpec
	// Properties in declaration order, inherited ones first.
	Properties PropertySpecSet
	// SuperTypes holds the declared supertypes found in the registry,
	// in declaration order.
	SuperTypes []NameSpec
	// SuperProperties holds the properties of the supertypes whose node
	// type is known to the registry, keyed by qualified name.
	SuperProperties map[string]PropertySpecSet
}

// NewEntitySpec creates the spec of a node type. Its own names must be in
// the registry; supertypes missing from it are dropped.
func NewEntitySpec(nt *load.NodeType, reg *NameRegistry, m TypeMapper) (*EntitySpec, error) {
	names, ok := reg.Lookup(nt.Name)
	if !ok {
		return nil, NewSchemaError(nt.Name, "", "node type was not resolved", nil)
	}
	spec := &EntitySpec{
		Names:           names,
		Properties:      NewPropertySpecSet(m, nt.Properties...),
		SuperTypes:      reg.Join(nt.SuperTypes),
		SuperProperties: make(map[string]PropertySpecSet),
	}
	for _, s := range spec.SuperTypes {
		if st, ok := reg.NodeType(s.QualifiedName); ok {
			spec.SuperProperties[s.QualifiedName] = NewPropertySpecSet(m, st.Properties...)
		}
	}
	return spec, nil
}

// SuperInterfaces returns the supertypes that have a generated interface.
func (e *EntitySpec) SuperInterfaces() []NameSpec {
	var out []NameSpec
	for _, s := range e.SuperTypes {
		if s.HasInterface() {
			out = append(out, s)
		}
	}
	return out
}

// Implements returns the fully qualified interfaces the class implements:
// its own interface followed by the interfaces of its supertypes.
func (e *EntitySpec) Implements() []string {
	var out []string
	if e.Names.HasInterface() {
		out = append(out, e.Names.FullyQualifiedInterfaceName)
	}
	for _, s := range e.SuperInterfaces() {
		out = append(out, s.FullyQualifiedInterfaceName)
	}
	return out
}

// String returns a short description of the spec.
func (e *EntitySpec) String() string {
	var b strings.Builder
	b.WriteString(e.Names.QualifiedName)
	if e.Names.HasClass() {
		b.WriteString(" class=")
		b.WriteString(e.Names.ClassName)
	}
	if e.Names.HasInterface() {
		b.WriteString(" interface=")
		b.WriteString(e.Names.InterfaceName)
	}
	return b.String()
}
