package mustache

import (
	"fmt"
	"reflect"
	"strconv"
)

// Accessor is a computed view property. Lookup invokes it with the view of
// the frame the lookup originated from and resolves the name to its return
// value. A plain func() any is honored the same way.
type Accessor func(view any) any

// Lambda implements a higher-order section. It receives the raw, unrendered
// body text of the section and a callback that renders arbitrary text
// through the full pipeline against the current context, delimiters and
// escape/partial configuration. Its return value is emitted verbatim,
// without further escaping. Lookup never invokes a Lambda; only the
// renderer does, when the section's value resolves to one.
type Lambda func(text string, render func(text string) (string, error)) (string, error)

// callAccessor invokes v if it follows one of the accessor calling
// conventions, passing view as the receiving context. ok is false when v
// is not an accessor.
func callAccessor(v, view any) (result any, ok bool) {
	switch fn := v.(type) {
	case Accessor:
		return fn(view), true
	case func(view any) any:
		return fn(view), true
	case func() any:
		return fn(), true
	}
	return nil, false
}

// asLambda reports whether v follows the section lambda calling convention.
func asLambda(v any) (Lambda, bool) {
	switch fn := v.(type) {
	case Lambda:
		return fn, true
	case func(string, func(string) (string, error)) (string, error):
		return fn, true
	}
	return nil, false
}

// indirect unwraps interfaces and pointers. ok is false for nil values and
// nil pointers.
func indirect(v any) (reflect.Value, bool) {
	rv := reflect.ValueOf(v)
	for {
		switch rv.Kind() {
		case reflect.Invalid:
			return rv, false
		case reflect.Pointer, reflect.Interface:
			if rv.IsNil() {
				return rv, false
			}
			rv = rv.Elem()
		default:
			return rv, true
		}
	}
}

// property reads a named property from a structured value: a key of a
// string-keyed map or an exported struct field. The second return reports
// whether the property exists at all; an existing property may still hold
// a nil value, which is a hit and must not fall through to parent frames.
func property(v any, name string) (any, bool) {
	rv, ok := indirect(v)
	if !ok {
		return nil, false
	}
	switch rv.Kind() {
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return nil, false
		}
		mv := rv.MapIndex(reflect.ValueOf(name).Convert(rv.Type().Key()))
		if !mv.IsValid() {
			return nil, false
		}
		return mv.Interface(), true
	case reflect.Struct:
		f, found := rv.Type().FieldByName(name)
		if !found || !f.IsExported() {
			return nil, false
		}
		return rv.FieldByIndex(f.Index).Interface(), true
	}
	return nil, false
}

// primitiveProperty resolves the properties that non-structured values
// expose on dotted paths only: strings, slices and arrays have a "length".
func primitiveProperty(v any, name string) (any, bool) {
	if name != "length" {
		return nil, false
	}
	rv, ok := indirect(v)
	if !ok {
		return nil, false
	}
	switch rv.Kind() {
	case reflect.String, reflect.Slice, reflect.Array:
		return rv.Len(), true
	}
	return nil, false
}

// isList reports whether v is iterated by sections element by element.
func isList(v any) bool {
	rv, ok := indirect(v)
	if !ok {
		return false
	}
	k := rv.Kind()
	return k == reflect.Slice || k == reflect.Array
}

// isTruthy implements section truthiness: nil, false, zero numbers, empty
// strings and empty lists are falsy. Everything else, including empty maps
// and structs, is truthy.
func isTruthy(v any) bool {
	rv, ok := indirect(v)
	if !ok {
		return false
	}
	switch rv.Kind() {
	case reflect.Bool:
		return rv.Bool()
	case reflect.String, reflect.Slice, reflect.Array:
		return rv.Len() > 0
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int() != 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return rv.Uint() != 0
	case reflect.Float32, reflect.Float64:
		return rv.Float() != 0
	}
	return true
}

// isNumber reports whether v is numeric. Numbers rendered under the default
// escaper bypass escaping entirely.
func isNumber(v any) bool {
	rv, ok := indirect(v)
	if !ok {
		return false
	}
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

// stringify renders a resolved value as output text. Functions have no
// textual form and stringify to nothing.
func stringify(v any) string {
	rv, ok := indirect(v)
	if !ok {
		return ""
	}
	switch x := rv.Interface().(type) {
	case string:
		return x
	case bool:
		if x {
			return "true"
		}
		return "false"
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	case fmt.Stringer:
		return x.String()
	}
	if rv.Kind() == reflect.Func {
		return ""
	}
	return fmt.Sprintf("%v", rv.Interface())
}
