package php

import (
	"fmt"
	"math"
	"reflect"
	"slices"
	"strconv"
	"strings"

	"github.com/syssam/nodetypeobjects/compiler/gen"
	"github.com/syssam/nodetypeobjects/compiler/load"
)

// Literal formats a value the way var_export does.
//
//	nil             => NULL
//	"it's"          => 'it\'s'
//	1.0             => 1.0
//	[]any{1, "a"}   => array (\n  0 => 1,\n  1 => 'a',\n)
func Literal(v any) (string, error) {
	var b strings.Builder
	if err := writeLiteral(&b, v, ""); err != nil {
		return "", err
	}
	return b.String(), nil
}

// Quote returns s as a single quoted PHP string.
func Quote(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `'`, `\'`)
	return "'" + r.Replace(s) + "'"
}

func writeLiteral(b *strings.Builder, v any, indent string) error {
	switch v := v.(type) {
	case nil:
		b.WriteString("NULL")
	case bool:
		b.WriteString(strconv.FormatBool(v))
	case string:
		b.WriteString(Quote(v))
	case int:
		b.WriteString(strconv.Itoa(v))
	case int64:
		b.WriteString(strconv.FormatInt(v, 10))
	case uint64:
		b.WriteString(strconv.FormatUint(v, 10))
	case float32:
		b.WriteString(formatFloat(float64(v)))
	case float64:
		b.WriteString(formatFloat(v))
	case []any:
		b.WriteString("array (\n")
		for i, e := range v {
			if err := writeEntry(b, strconv.Itoa(i), e, indent); err != nil {
				return err
			}
		}
		b.WriteString(indent + ")")
	case map[string]any:
		b.WriteString("array (\n")
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		slices.Sort(keys)
		for _, k := range keys {
			if err := writeEntry(b, Quote(k), v[k], indent); err != nil {
				return err
			}
		}
		b.WriteString(indent + ")")
	case load.Map:
		b.WriteString("array (\n")
		for _, it := range v {
			if err := writeEntry(b, Quote(it.Key), it.Value, indent); err != nil {
				return err
			}
		}
		b.WriteString(indent + ")")
	default:
		rv := reflect.ValueOf(v)
		switch rv.Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			b.WriteString(strconv.FormatInt(rv.Int(), 10))
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			b.WriteString(strconv.FormatUint(rv.Uint(), 10))
		default:
			return fmt.Errorf("unsupported default value of type %T", v)
		}
	}
	return nil
}

// writeEntry writes one array element. Nested arrays start on their own
// line, like var_export does.
func writeEntry(b *strings.Builder, key string, v any, indent string) error {
	inner := indent + "  "
	b.WriteString(inner + key + " => ")
	switch v.(type) {
	case []any, map[string]any, load.Map:
		b.WriteString("\n" + inner)
	}
	if err := writeLiteral(b, v, inner); err != nil {
		return err
	}
	b.WriteString(",\n")
	return nil
}

func formatFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NAN"
	case math.IsInf(f, 1):
		return "INF"
	case math.IsInf(f, -1):
		return "-INF"
	}
	if abs := math.Abs(f); abs != 0 && (abs >= 1e15 || abs < 1e-4) {
		s := strconv.FormatFloat(f, 'E', -1, 64)
		mantissa, exp, _ := strings.Cut(s, "E")
		if !strings.Contains(mantissa, ".") {
			mantissa += ".0"
		}
		// PHP drops leading zeros of the exponent.
		sign, digits := exp[:1], strings.TrimLeft(exp[1:], "0")
		return mantissa + "E" + sign + digits
	}
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

// DefaultReturn returns the expression returned by an accessor when the
// property value does not have the expected type.
func DefaultReturn(p *gen.PropertySpec) (string, error) {
	if s, ok := p.Default.(string); ok && p.Type.Kind == gen.KindDateTime {
		return `new \DateTime(` + Quote(s) + `)`, nil
	}
	return Literal(p.Default)
}
