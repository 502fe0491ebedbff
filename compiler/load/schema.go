// Package load reads node type schemas and locates the packages that
// declare them.
package load

import (
	"strings"
)

// DefaultPropertyType is the type of properties that do not declare one.
const DefaultPropertyType = "string"

// NodeType is a node type declaration after merging all schema files and
// inheriting the properties of its supertypes.
type NodeType struct {
	// Name is <package>:<dotted.local.name>.
	Name string `json:"name"`
	// Abstract node types get an interface but no class.
	Abstract bool `json:"abstract,omitempty"`
	// SuperTypes in declaration order. Supertypes disabled with false are
	// not listed.
	SuperTypes []string `json:"superTypes,omitempty"`
	// Properties in declaration order, inherited ones first.
	Properties []*Property `json:"properties,omitempty"`
	// Options of the generator, read from options.nodeTypeObjects.
	Options Options `json:"options"`
	// Pos is the schema file the node type was first declared in.
	Pos string `json:"-"`
}

// Property is a declared property of a node type.
type Property struct {
	Name    string `json:"name"`
	Type    string `json:"type"`
	Default any    `json:"defaultValue,omitempty"`
}

// Map is a mapping value of a schema file, in declaration order.
type Map []MapItem

// MapItem is one key of a Map.
type MapItem struct {
	Key   string
	Value any
}

// Get returns the value of key.
func (m Map) Get(key string) (any, bool) {
	for _, it := range m {
		if it.Key == key {
			return it.Value, true
		}
	}
	return nil, false
}

// Options control which artifacts are generated for a node type.
type Options struct {
	GenerateClass     bool `json:"generateClass"`
	GenerateInterface bool `json:"generateInterface"`
}

// DefaultOptions generates both artifacts.
var DefaultOptions = Options{GenerateClass: true, GenerateInterface: true}

// PackageKey returns the part of the name before the colon.
func (n *NodeType) PackageKey() string {
	key, _, _ := strings.Cut(n.Name, ":")
	return key
}

// Property returns the property with the given name.
func (n *NodeType) Property(name string) (*Property, bool) {
	for _, p := range n.Properties {
		if p.Name == name {
			return p, true
		}
	}
	return nil, false
}
