package trace

import (
	"encoding/base64"
	"fmt"
	"reflect"
)

// maxSerializeDepth bounds recursive descent, matching trace.py's
// _safe_serialize default _max_depth of 4.
const maxSerializeDepth = 4

// SafeSerialize converts an arbitrary Go value into a JSON-marshalable
// tree of maps/slices/primitives, guarding against cycles and unbounded
// nesting before a payload is attached to a trace event. It is the Go
// port of original_source/btflow/core/trace.py's _safe_serialize: the
// recursion-guard `seen` set there keyed Python object identity; here it
// keys the Go value's pointer/address equivalent via reflect.Value's
// Pointer() for reference types.
func SafeSerialize(value any) any {
	return safeSerialize(reflect.ValueOf(value), 0, make(map[uintptr]bool))
}

func safeSerialize(v reflect.Value, depth int, seen map[uintptr]bool) any {
	if !v.IsValid() {
		return nil
	}
	if depth > maxSerializeDepth {
		return fmt.Sprintf("%v", v.Interface())
	}

	switch v.Kind() {
	case reflect.String:
		return v.String()
	case reflect.Bool:
		return v.Bool()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int()
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return v.Uint()
	case reflect.Float32, reflect.Float64:
		return v.Float()
	case reflect.Invalid:
		return nil
	}

	if v.Kind() == reflect.Interface {
		return safeSerialize(v.Elem(), depth, seen)
	}

	if v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return nil
		}
		addr := v.Pointer()
		if seen[addr] {
			return "<recursion>"
		}
		seen[addr] = true
		return safeSerialize(v.Elem(), depth+1, seen)
	}

	switch v.Kind() {
	case reflect.Slice:
		if v.Type().Elem().Kind() == reflect.Uint8 {
			return base64.StdEncoding.EncodeToString(v.Bytes())
		}
		fallthrough
	case reflect.Array:
		addr := ptrOf(v)
		if addr != 0 {
			if seen[addr] {
				return "<recursion>"
			}
			seen[addr] = true
		}
		out := make([]any, v.Len())
		for i := 0; i < v.Len(); i++ {
			out[i] = safeSerialize(v.Index(i), depth+1, seen)
		}
		return out

	case reflect.Map:
		addr := v.Pointer()
		if addr != 0 {
			if seen[addr] {
				return "<recursion>"
			}
			seen[addr] = true
		}
		out := make(map[string]any, v.Len())
		iter := v.MapRange()
		for iter.Next() {
			out[fmt.Sprintf("%v", iter.Key().Interface())] = safeSerialize(iter.Value(), depth+1, seen)
		}
		return out

	case reflect.Struct:
		t := v.Type()
		out := make(map[string]any, t.NumField())
		for i := 0; i < t.NumField(); i++ {
			field := t.Field(i)
			if !field.IsExported() {
				continue
			}
			out[field.Name] = safeSerialize(v.Field(i), depth+1, seen)
		}
		return out

	default:
		return fmt.Sprintf("%v", v)
	}
}

func ptrOf(v reflect.Value) uintptr {
	if v.Kind() == reflect.Slice {
		return v.Pointer()
	}
	if v.CanAddr() {
		return v.UnsafeAddr()
	}
	return 0
}
