package golang

import (
	"go/token"
	"strings"

	"github.com/dave/jennifer/jen"

	"github.com/syssam/nodetypeobjects/compiler/gen"
)

// TypeMapper maps schema types to Go types.
type TypeMapper struct{}

var _ gen.TypeMapper = TypeMapper{}

var scalarTypes = map[gen.Kind]string{
	gen.KindString:   "string",
	gen.KindInteger:  "int",
	gen.KindFloat:    "float64",
	gen.KindBoolean:  "bool",
	gen.KindDateTime: "time.Time",
	gen.KindList:     "[]any",
}

// MapType implements gen.TypeMapper. Opaque types are kept when they name
// a Go type by import path, all others become any.
//
//	"integer"                    => int
//	"array<Foo>"                 => []any, Foo[]
//	"example.com/assets.Image"   => example.com/assets.Image
//	"Neos\Media\Asset"           => any
func (TypeMapper) MapType(t gen.PropertyType) (storage, annotation string) {
	switch t.Kind {
	case gen.KindList:
		return scalarTypes[t.Kind], t.ElemAnnotation()
	case gen.KindOpaque:
		if _, _, ok := qualifiedType(t.Schema); ok {
			return t.Schema, ""
		}
		return "any", ""
	default:
		return scalarTypes[t.Kind], ""
	}
}

// qualifiedType splits "path/to/pkg.Name" into import path and type name.
func qualifiedType(s string) (path, name string, ok bool) {
	i := strings.LastIndex(s, ".")
	if i <= 0 || strings.ContainsAny(s, `\<>[] `) {
		return "", "", false
	}
	path, name = s[:i], s[i+1:]
	if !token.IsIdentifier(name) || !token.IsExported(name) {
		return "", "", false
	}
	return path, name, true
}

// typeCode returns the Go type of a property value.
func typeCode(p *gen.PropertySpec) jen.Code {
	switch p.Type.Kind {
	case gen.KindString:
		return jen.String()
	case gen.KindInteger:
		return jen.Int()
	case gen.KindFloat:
		return jen.Float64()
	case gen.KindBoolean:
		return jen.Bool()
	case gen.KindDateTime:
		return jen.Qual("time", "Time")
	case gen.KindList:
		return jen.Index().Any()
	}
	if path, name, ok := qualifiedType(p.StorageType); ok {
		return jen.Qual(path, name)
	}
	return jen.Any()
}

// isAny reports whether the property maps to the empty interface.
func isAny(p *gen.PropertySpec) bool {
	return p.Type.Kind == gen.KindOpaque && p.StorageType == "any"
}

// byPointer reports whether a nullable property is returned as pointer.
// Lists and interfaces are nil-able on their own.
func byPointer(p *gen.PropertySpec) bool {
	return p.Nullable && p.Type.Kind != gen.KindList && !isAny(p)
}

// returnCode returns the result type of the accessor of p.
func returnCode(p *gen.PropertySpec) jen.Code {
	if byPointer(p) {
		return jen.Op("*").Add(typeCode(p))
	}
	return typeCode(p)
}
