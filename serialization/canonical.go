// Package serialization encodes argument lists into canonical cache keys and
// journal entries into JSON.
package serialization

import (
	"encoding"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strconv"

	jsoniter "github.com/json-iterator/go"
)

// ErrUnsupportedArgument is returned when an argument has no canonical encoding
var ErrUnsupportedArgument = errors.New("serialization: argument has no canonical encoding")

// canonical sorts map keys, so equal maps always encode to the same bytes
var canonical = jsoniter.ConfigCompatibleWithStandardLibrary

type keyPart struct {
	Type  string      `json:"t"`
	Shape []string    `json:"s,omitempty"`
	Value interface{} `json:"v"`
}

// maxKeyDepth bounds the walk over nested arguments
const maxKeyDepth = 32

var (
	jsonMarshalerType = reflect.TypeOf((*json.Marshaler)(nil)).Elem()
	textMarshalerType = reflect.TypeOf((*encoding.TextMarshaler)(nil)).Elem()
)

// Key returns the canonical key for an argument list.
//
// Each argument is encoded as its dynamic Go type name plus its JSON value. Keys are
// order-sensitive and type-sensitive: (1, 2) and (2, 1) differ, and int 1 and
// float64 1.0 differ, also when nested inside interface-typed containers. The
// dynamic types found at interface positions are listed in the key's shape.
//
// Arguments whose JSON value would not identify them fail with
// ErrUnsupportedArgument: structs with unexported or "-" tagged fields, maps whose
// keys are not strings or integers, cyclic values, functions and channels. Types that implement
// json.Marshaler or encoding.TextMarshaler are identified by their own encoding.
func Key(args []interface{}) (string, error) {
	parts := make([]keyPart, len(args))
	for i, arg := range args {
		w := &keyWalker{onPath: make(map[uintptr]bool)}
		if err := w.walk(reflect.ValueOf(arg), 0); err != nil {
			return "", fmt.Errorf("%w: argument %d: %v", ErrUnsupportedArgument, i, err)
		}
		parts[i] = keyPart{Type: TypeName(arg), Shape: w.shape, Value: arg}
	}

	data, err := canonical.Marshal(parts)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnsupportedArgument, err)
	}
	return string(data), nil
}

// mapKeyString returns the JSON object key of a string or integer map key
func mapKeyString(key reflect.Value) (string, bool) {
	switch key.Kind() {
	case reflect.String:
		return key.String(), true
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(key.Int(), 10), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return strconv.FormatUint(key.Uint(), 10), true
	default:
		return "", false
	}
}

// keyWalker checks that an argument's JSON encoding is lossless and collects
// the dynamic types held by interface values, in encoding order
type keyWalker struct {
	shape  []string
	onPath map[uintptr]bool
}

func (w *keyWalker) walk(v reflect.Value, depth int) error {
	if !v.IsValid() {
		return nil
	}
	if depth > maxKeyDepth {
		return fmt.Errorf("nested deeper than %d levels", maxKeyDepth)
	}

	t := v.Type()
	if t.Kind() != reflect.Interface && (t.Implements(jsonMarshalerType) || t.Implements(textMarshalerType)) {
		return nil
	}

	switch t.Kind() {
	case reflect.Interface:
		if v.IsNil() {
			w.shape = append(w.shape, "nil")
			return nil
		}
		w.shape = append(w.shape, v.Elem().Type().String())
		return w.walk(v.Elem(), depth+1)

	case reflect.Pointer:
		if v.IsNil() {
			return nil
		}
		addr := v.Pointer()
		if w.onPath[addr] {
			return fmt.Errorf("cyclic value of type %s", t)
		}
		w.onPath[addr] = true
		defer delete(w.onPath, addr)
		return w.walk(v.Elem(), depth+1)

	case reflect.Struct:
		for i := 0; i < t.NumField(); i++ {
			field := t.Field(i)
			if field.Tag.Get("json") == "-" {
				return fmt.Errorf("field %s.%s is not encoded", t, field.Name)
			}
			if !field.IsExported() && !(field.Anonymous && field.Type.Kind() == reflect.Struct) {
				return fmt.Errorf("field %s.%s is unexported", t, field.Name)
			}
			if err := w.walk(v.Field(i), depth+1); err != nil {
				return err
			}
		}
		return nil

	case reflect.Slice, reflect.Array:
		for i := 0; i < v.Len(); i++ {
			if err := w.walk(v.Index(i), depth+1); err != nil {
				return err
			}
		}
		return nil

	case reflect.Map:
		keys := v.MapKeys()
		names := make([]string, len(keys))
		for i, key := range keys {
			name, ok := mapKeyString(key)
			if !ok {
				return fmt.Errorf("map key type %s is not canonical", t.Key())
			}
			names[i] = name
		}
		order := make([]int, len(keys))
		for i := range order {
			order[i] = i
		}
		sort.Slice(order, func(i, j int) bool { return names[order[i]] < names[order[j]] })

		for _, i := range order {
			if err := w.walk(v.MapIndex(keys[i]), depth+1); err != nil {
				return err
			}
		}
		return nil

	case reflect.Func, reflect.Chan, reflect.UnsafePointer, reflect.Complex64, reflect.Complex128:
		return fmt.Errorf("type %s has no JSON encoding", t)

	default:
		return nil
	}
}

// TypeName returns the dynamic type name used in canonical keys
func TypeName(v interface{}) string {
	if v == nil {
		return "nil"
	}
	return reflect.TypeOf(v).String()
}

// Marshal encodes v with the canonical configuration
func Marshal(v interface{}) ([]byte, error) {
	return canonical.Marshal(v)
}
