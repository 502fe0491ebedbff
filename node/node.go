// Package node is the runtime support of generated Go node type objects.
//
// Generated classes wrap a Node and read its properties through typed
// accessors. Any type with a node type name and a property lookup can be
// wrapped; Bag is a map backed implementation.
package node

import (
	"maps"
	"slices"
)

// Node is a generic property bag tagged with the name of its node type.
type Node interface {
	// NodeTypeName returns the qualified node type name,
	// e.g. "Vendor.Site:Document".
	NodeTypeName() string
	// Property returns the raw value of a property, nil if unset.
	Property(name string) any
}

// Bag is a Node holding its properties in a map.
type Bag struct {
	typeName   string
	properties map[string]any
}

var _ Node = (*Bag)(nil)

// New creates a node of the given type. The properties are copied.
func New(typeName string, properties map[string]any) *Bag {
	return &Bag{typeName: typeName, properties: maps.Clone(properties)}
}

// NodeTypeName implements Node.
func (b *Bag) NodeTypeName() string { return b.typeName }

// Property implements Node.
func (b *Bag) Property(name string) any { return b.properties[name] }

// Set sets a property and returns the bag.
func (b *Bag) Set(name string, value any) *Bag {
	if b.properties == nil {
		b.properties = make(map[string]any)
	}
	b.properties[name] = value
	return b
}

// PropertyNames returns the names of all set properties in sorted order.
func (b *Bag) PropertyNames() []string {
	return slices.Sorted(maps.Keys(b.properties))
}
