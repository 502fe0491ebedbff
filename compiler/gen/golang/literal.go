package golang

import (
	"fmt"
	"reflect"
	"slices"

	"github.com/dave/jennifer/jen"

	"github.com/syssam/nodetypeobjects/compiler/gen"
	"github.com/syssam/nodetypeobjects/compiler/load"
)

// defaultCode returns the expression an accessor falls back to. Defaults
// must match the kind of the property.
func defaultCode(p *gen.PropertySpec) (jen.Code, error) {
	v := p.Default
	if v == nil {
		return jen.Nil(), nil
	}
	mismatch := fmt.Errorf("default value %v does not match type %q", v, p.SchemaType)
	switch p.Type.Kind {
	case gen.KindString:
		if s, ok := v.(string); ok {
			return jen.Lit(s), nil
		}
	case gen.KindInteger:
		if i, ok := asInt(v); ok {
			return jen.Lit(i), nil
		}
	case gen.KindFloat:
		if f, ok := v.(float64); ok {
			return jen.Lit(f), nil
		}
		if i, ok := asInt(v); ok {
			return jen.Lit(float64(i)), nil
		}
	case gen.KindBoolean:
		if b, ok := v.(bool); ok {
			return jen.Lit(b), nil
		}
	case gen.KindDateTime:
		if s, ok := v.(string); ok {
			return jen.Qual(NodePackage, "ParseDateTime").Call(jen.Lit(s)), nil
		}
	case gen.KindList:
		if l, ok := v.([]any); ok {
			return valueCode(l)
		}
	default:
		if isAny(p) {
			return valueCode(v)
		}
		return nil, fmt.Errorf("default values of type %q are not supported", p.SchemaType)
	}
	return nil, mismatch
}

// valueCode renders a decoded schema value as Go literal.
func valueCode(v any) (jen.Code, error) {
	switch v := v.(type) {
	case nil:
		return jen.Nil(), nil
	case string, bool, float64:
		return jen.Lit(v), nil
	case []any:
		elems := make([]jen.Code, 0, len(v))
		for _, e := range v {
			c, err := valueCode(e)
			if err != nil {
				return nil, err
			}
			elems = append(elems, c)
		}
		return jen.Index().Any().Values(elems...), nil
	case map[string]any:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		slices.Sort(keys)
		dict := jen.Dict{}
		for _, k := range keys {
			c, err := valueCode(v[k])
			if err != nil {
				return nil, err
			}
			dict[jen.Lit(k)] = c
		}
		return jen.Map(jen.String()).Any().Values(dict), nil
	case load.Map:
		dict := jen.Dict{}
		for _, it := range v {
			c, err := valueCode(it.Value)
			if err != nil {
				return nil, err
			}
			dict[jen.Lit(it.Key)] = c
		}
		return jen.Map(jen.String()).Any().Values(dict), nil
	}
	if i, ok := asInt(v); ok {
		return jen.Lit(i), nil
	}
	return nil, fmt.Errorf("unsupported default value of type %T", v)
}

func asInt(v any) (int, bool) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return int(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return int(rv.Uint()), true
	}
	return 0, false
}
