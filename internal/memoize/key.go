package memoize

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
)

// canonicalArgs renders an argument list in a deterministic textual form.
// Maps are rendered with sorted keys so logically equal values always
// produce the same key regardless of iteration order.
func canonicalArgs(args []interface{}) string {
	if len(args) == 0 {
		return "()"
	}

	parts := make([]string, len(args))
	for i, arg := range args {
		parts[i] = canonical(reflect.ValueOf(arg))
	}
	return strings.Join(parts, ",")
}

func canonical(v reflect.Value) string {
	if !v.IsValid() {
		return "nil"
	}

	switch v.Kind() {
	case reflect.Ptr, reflect.Interface:
		if v.IsNil() {
			return "nil"
		}
		return canonical(v.Elem())

	case reflect.Map:
		if v.IsNil() {
			return "nil"
		}
		pairs := make([]string, 0, v.Len())
		iter := v.MapRange()
		for iter.Next() {
			pairs = append(pairs, canonical(iter.Key())+"="+canonical(iter.Value()))
		}
		sort.Strings(pairs)
		return "{" + strings.Join(pairs, ",") + "}"

	case reflect.Slice, reflect.Array:
		if v.Kind() == reflect.Slice && v.IsNil() {
			return "nil"
		}
		elems := make([]string, v.Len())
		for i := 0; i < v.Len(); i++ {
			elems[i] = canonical(v.Index(i))
		}
		return "[" + strings.Join(elems, ",") + "]"

	case reflect.Struct:
		t := v.Type()
		fields := make([]string, 0, v.NumField())
		for i := 0; i < v.NumField(); i++ {
			if !t.Field(i).IsExported() {
				continue
			}
			fields = append(fields, t.Field(i).Name+"="+canonical(v.Field(i)))
		}
		return "{" + strings.Join(fields, ",") + "}"

	case reflect.String:
		return v.String()

	default:
		return fmt.Sprintf("%v", v.Interface())
	}
}
