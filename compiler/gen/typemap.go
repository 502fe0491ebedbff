package gen

import "strings"

// Kind classifies a schema property type.
type Kind uint8

// Property type kinds. Every schema type string maps to exactly one kind.
const (
	// KindOpaque is a class or otherwise unknown type, passed through verbatim.
	KindOpaque Kind = iota
	KindString
	KindInteger
	KindFloat
	KindBoolean
	KindDateTime
	// KindList is a collection; Elem holds the element type when declared.
	KindList
)

var kindNames = [...]string{
	KindOpaque:   "opaque",
	KindString:   "string",
	KindInteger:  "integer",
	KindFloat:    "float",
	KindBoolean:  "boolean",
	KindDateTime: "datetime",
	KindList:     "list",
}

// String returns the kind name.
func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "invalid"
}

// IsPrimitive reports whether the kind maps to a native scalar of the target.
func (k Kind) IsPrimitive() bool {
	switch k {
	case KindString, KindInteger, KindFloat, KindBoolean, KindDateTime:
		return true
	default:
		return false
	}
}

// primitives holds the type aliases of the schema system.
var primitives = map[string]Kind{
	"string":   KindString,
	"integer":  KindInteger,
	"int":      KindInteger,
	"float":    KindFloat,
	"boolean":  KindBoolean,
	"bool":     KindBoolean,
	"DateTime": KindDateTime,
}

// PropertyType is the parsed form of a schema property type string.
// It is built once by ParseType and consulted by the dialect type mappers.
type PropertyType struct {
	// Schema is the type string as declared in the schema.
	Schema string
	// Kind of the type.
	Kind Kind
	// Elem is the element type of a list ("T" for both "T[]" and "array<T>").
	// Empty for untyped lists and for all other kinds.
	Elem string
}

// ParseType parses a schema type string. It never fails: unknown types
// become KindOpaque with the name kept verbatim.
//
//	"Foo[]"       => list of Foo
//	"array<Foo>"  => list of Foo
//	"array"       => untyped list
//	"boolean"     => KindBoolean
//	"Foo\Bar"     => opaque Foo\Bar
func ParseType(s string) PropertyType {
	switch {
	case strings.HasSuffix(s, "[]"):
		return PropertyType{Schema: s, Kind: KindList, Elem: strings.TrimSuffix(s, "[]")}
	case strings.HasPrefix(s, "array<") && strings.HasSuffix(s, ">"):
		return PropertyType{Schema: s, Kind: KindList, Elem: s[len("array<") : len(s)-1]}
	case s == "array":
		return PropertyType{Schema: s, Kind: KindList}
	}
	if k, ok := primitives[s]; ok {
		return PropertyType{Schema: s, Kind: k}
	}
	return PropertyType{Schema: s, Kind: KindOpaque}
}

// ElemAnnotation returns the element annotation of a list type, "T[]",
// or an empty string for untyped lists and non-list kinds.
func (t PropertyType) ElemAnnotation() string {
	if t.Kind != KindList || t.Elem == "" {
		return ""
	}
	return t.Elem + "[]"
}

// TypeMapper maps parsed schema types to target language types.
// Implemented by every dialect.
type TypeMapper interface {
	// MapType returns the storage type used as accessor return type and an
	// optional richer annotation type. An empty annotation means none.
	MapType(t PropertyType) (storage, annotation string)
}

// MapType parses the schema type and maps it with m.
func MapType(m TypeMapper, schemaType string) (storage, annotation string) {
	return m.MapType(ParseType(schemaType))
}
