package php

import (
	"strings"

	"github.com/syssam/nodetypeobjects/compiler/gen"
)

// TypeMapper maps schema types to PHP types.
type TypeMapper struct{}

var _ gen.TypeMapper = TypeMapper{}

var scalarTypes = map[gen.Kind]string{
	gen.KindString:   "string",
	gen.KindInteger:  "int",
	gen.KindFloat:    "float",
	gen.KindBoolean:  "bool",
	gen.KindDateTime: `\DateTime`,
	gen.KindList:     "array",
}

// MapType implements gen.TypeMapper.
//
//	"string[]"     => array, string[]
//	"array<Foo\X>" => array, \Foo\X[]
//	"DateTime"     => \DateTime, \DateTime
//	"boolean"      => bool
//	"Foo\Asset"    => \Foo\Asset
func (TypeMapper) MapType(t gen.PropertyType) (storage, annotation string) {
	switch t.Kind {
	case gen.KindList:
		return scalarTypes[t.Kind], qualify(t.ElemAnnotation())
	case gen.KindDateTime:
		return scalarTypes[t.Kind], scalarTypes[t.Kind]
	case gen.KindOpaque:
		return qualify(t.Schema), ""
	default:
		return scalarTypes[t.Kind], ""
	}
}

// qualify makes namespaced class names fully qualified.
func qualify(name string) string {
	if strings.Contains(name, `\`) && !strings.HasPrefix(name, `\`) {
		return `\` + name
	}
	return name
}

// typeChecks build the runtime check of a property value per kind. The
// storage type is only used by instanceof checks.
var typeChecks = map[gen.Kind]func(storage string) string{
	gen.KindString:   func(string) string { return "is_string($value)" },
	gen.KindInteger:  func(string) string { return "is_int($value)" },
	gen.KindFloat:    func(string) string { return "is_float($value)" },
	gen.KindBoolean:  func(string) string { return "is_bool($value)" },
	gen.KindList:     func(string) string { return "is_array($value)" },
	gen.KindDateTime: instanceOf,
	gen.KindOpaque:   instanceOf,
}

func instanceOf(storage string) string {
	if storage == "null" {
		return "is_null($value)"
	}
	return "$value instanceof " + storage
}

// TypeCheck returns the PHP condition testing $value against the storage
// type of p.
func TypeCheck(p *gen.PropertySpec) string {
	check, ok := typeChecks[p.Type.Kind]
	if !ok {
		check = instanceOf
	}
	return check(p.StorageType)
}
