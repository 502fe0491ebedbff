package gen

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/syssam/nodetypeobjects/compiler/load"
)

// InternalPrefix marks internal properties.
const InternalPrefix = "_"

// PropertySpec describes one property of a node type and the accessor
// generated for it.
type PropertySpec struct {
	// Name of the property in the schema.
	Name string
	// SchemaType is the declared type string.
	SchemaType string
	// Default is the declared default value, nil if none.
	Default any
	// Type is the parsed schema type.
	Type PropertyType
	// Internal reports whether the name carries the internal prefix.
	Internal bool
	// AccessorName is get<Name> or getInternal<Name>.
	AccessorName string
	// StorageType is the target type returned by the accessor.
	StorageType string
	// AnnotationType is the optional richer doc type. Empty means none.
	AnnotationType string
	// Nullable reports whether the accessor may return null, which is
	// the case iff no default is declared.
	Nullable bool
}

// NewPropertySpec describes one property for rendering.
func NewPropertySpec(name, schemaType string, def any, m TypeMapper) *PropertySpec {
	typ := ParseType(schemaType)
	storage, annotation := m.MapType(typ)
	return &PropertySpec{
		Name:           name,
		SchemaType:     schemaType,
		Default:        def,
		Type:           typ,
		Internal:       strings.HasPrefix(name, InternalPrefix),
		AccessorName:   AccessorName(name),
		StorageType:    storage,
		AnnotationType: annotation,
		Nullable:       def == nil,
	}
}

// AccessorName returns the accessor method name of a property.
//
//	title         => getTitle
//	_hiddenInMenu => getInternalHiddenInMenu
func AccessorName(property string) string {
	if rest, ok := strings.CutPrefix(property, InternalPrefix); ok {
		return "getInternal" + UpperFirst(rest)
	}
	return "get" + UpperFirst(property)
}

// UpperFirst title-cases the first character of s and keeps the rest as is.
func UpperFirst(s string) string {
	if s == "" {
		return s
	}
	_, size := utf8.DecodeRuneInString(s)
	// Casers keep state and must not be shared between workers.
	return cases.Title(language.Und, cases.NoLower).String(s[:size]) + s[size:]
}

// PropertySpecSet is the ordered set of properties of one node type.
type PropertySpecSet []*PropertySpec

// NewPropertySpecSet creates the PropertySpecs of the given
// schema properties, preserving their order.
func NewPropertySpecSet(m TypeMapper, props ...*load.Property) PropertySpecSet {
	set := make(PropertySpecSet, 0, len(props))
	for _, p := range props {
		set = append(set, NewPropertySpec(p.Name, p.Type, p.Default, m))
	}
	return set
}

// Public returns the non-internal properties in their original order.
func (s PropertySpecSet) Public() []*PropertySpec {
	return s.filter(false)
}

// Internal returns the internal properties in their original order.
func (s PropertySpecSet) Internal() []*PropertySpec {
	return s.filter(true)
}

func (s PropertySpecSet) filter(internal bool) []*PropertySpec {
	var out []*PropertySpec
	for _, p := range s {
		if p.Internal == internal {
			out = append(out, p)
		}
	}
	return out
}

// Lookup returns the property with the given name.
func (s PropertySpecSet) Lookup(name string) (*PropertySpec, bool) {
	for _, p := range s {
		if p.Name == name {
			return p, true
		}
	}
	return nil, false
}
