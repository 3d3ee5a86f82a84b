package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"sort"
	"time"
)

// Value is the format-agnostic tree produced by every parser and consumed by
// every serializer. It holds nil, bool, int64, float64, string, Array or *Object.
type Value interface{}

// Array is an ordered sequence of values
type Array []Value

// Object is a mapping with unique string keys that remembers insertion order
type Object struct {
	keys   []string
	fields map[string]Value
}

// NewObject creates an empty Object
func NewObject() *Object {
	return &Object{fields: make(map[string]Value)}
}

// Set stores value under key. Re-setting an existing key keeps its original position.
func (o *Object) Set(key string, value Value) {
	if _, exists := o.fields[key]; !exists {
		o.keys = append(o.keys, key)
	}
	o.fields[key] = value
}

// Get returns the value stored under key
func (o *Object) Get(key string) (Value, bool) {
	v, ok := o.fields[key]
	return v, ok
}

// Has reports whether key is present
func (o *Object) Has(key string) bool {
	_, ok := o.fields[key]
	return ok
}

// Keys returns the keys in insertion order
func (o *Object) Keys() []string {
	out := make([]string, len(o.keys))
	copy(out, o.keys)
	return out
}

// Len returns the number of entries
func (o *Object) Len() int {
	return len(o.keys)
}

// MarshalJSON writes the entries in insertion order
func (o *Object) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, key := range o.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := marshalNoEscape(key)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		v, err := marshalNoEscape(o.fields[key])
		if err != nil {
			return nil, fmt.Errorf("key %q: %w", key, err)
		}
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func marshalNoEscape(v Value) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// Normalize converts values produced by third-party decoders (map[string]any,
// []any, sized integers, times) into the Value model. Maps without ordering
// information get their keys sorted so output is stable.
func Normalize(raw interface{}) (Value, error) {
	switch v := raw.(type) {
	case nil:
		return nil, nil
	case *Object:
		return v, nil
	case Array:
		return v, nil
	case bool, string, int64, float64:
		return v, nil
	case int:
		return int64(v), nil
	case time.Time:
		return v.Format(time.RFC3339Nano), nil
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return i, nil
		}
		f, err := v.Float64()
		if err != nil {
			return nil, fmt.Errorf("invalid number %q", v.String())
		}
		return f, nil
	case fmt.Stringer:
		// date/time wrappers from decoders end up here
		if reflect.ValueOf(raw).Kind() == reflect.Struct {
			return v.String(), nil
		}
	}

	rv := reflect.ValueOf(raw)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int(), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		u := rv.Uint()
		if u > math.MaxInt64 {
			return float64(u), nil
		}
		return int64(u), nil
	case reflect.Float32, reflect.Float64:
		return rv.Float(), nil
	case reflect.String:
		return rv.String(), nil
	case reflect.Bool:
		return rv.Bool(), nil
	case reflect.Ptr, reflect.Interface:
		if rv.IsNil() {
			return nil, nil
		}
		return Normalize(rv.Elem().Interface())
	case reflect.Slice, reflect.Array:
		arr := make(Array, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			item, err := Normalize(rv.Index(i).Interface())
			if err != nil {
				return nil, fmt.Errorf("index %d: %w", i, err)
			}
			arr[i] = item
		}
		return arr, nil
	case reflect.Map:
		keys := make([]string, 0, rv.Len())
		byName := make(map[string]reflect.Value, rv.Len())
		for _, k := range rv.MapKeys() {
			name, err := keyString(k)
			if err != nil {
				return nil, err
			}
			keys = append(keys, name)
			byName[name] = k
		}
		sort.Strings(keys)
		obj := NewObject()
		for _, name := range keys {
			item, err := Normalize(rv.MapIndex(byName[name]).Interface())
			if err != nil {
				return nil, fmt.Errorf("key %q: %w", name, err)
			}
			obj.Set(name, item)
		}
		return obj, nil
	}
	return nil, fmt.Errorf("unsupported value of type %T", raw)
}

func keyString(k reflect.Value) (string, error) {
	for k.Kind() == reflect.Interface {
		k = k.Elem()
	}
	switch k.Kind() {
	case reflect.String:
		return k.String(), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return fmt.Sprintf("%d", k.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return fmt.Sprintf("%d", k.Uint()), nil
	case reflect.Bool:
		return fmt.Sprintf("%t", k.Bool()), nil
	}
	return "", fmt.Errorf("unsupported mapping key of type %s", k.Type())
}

// Plain converts a Value into map[string]any / []any form for libraries that
// only understand Go's builtin containers. Key order is lost.
func Plain(v Value) interface{} {
	switch t := v.(type) {
	case *Object:
		out := make(map[string]interface{}, t.Len())
		for _, k := range t.keys {
			out[k] = Plain(t.fields[k])
		}
		return out
	case Array:
		out := make([]interface{}, len(t))
		for i, item := range t {
			out[i] = Plain(item)
		}
		return out
	default:
		return t
	}
}

// Equal reports whether two values are structurally equal. Object key order is
// ignored and numbers compare by numeric value.
func Equal(a, b Value) bool {
	switch x := a.(type) {
	case *Object:
		y, ok := b.(*Object)
		if !ok || x.Len() != y.Len() {
			return false
		}
		for _, k := range x.keys {
			other, exists := y.fields[k]
			if !exists || !Equal(x.fields[k], other) {
				return false
			}
		}
		return true
	case Array:
		y, ok := b.(Array)
		if !ok || len(x) != len(y) {
			return false
		}
		for i := range x {
			if !Equal(x[i], y[i]) {
				return false
			}
		}
		return true
	case int64, float64:
		fx, okx := asFloat(a)
		fy, oky := asFloat(b)
		return okx && oky && fx == fy
	default:
		return a == b
	}
}

func asFloat(v Value) (float64, bool) {
	switch n := v.(type) {
	case int64:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

// Walk visits v and every nested value depth-first. path uses dotted keys and
// bracketed indices. Returning an error stops the walk.
func Walk(v Value, fn func(path string, v Value) error) error {
	return walk("", v, fn)
}

func walk(path string, v Value, fn func(string, Value) error) error {
	if err := fn(path, v); err != nil {
		return err
	}
	switch t := v.(type) {
	case *Object:
		for _, k := range t.keys {
			child := k
			if path != "" {
				child = path + "." + k
			}
			if err := walk(child, t.fields[k], fn); err != nil {
				return err
			}
		}
	case Array:
		for i, item := range t {
			if err := walk(fmt.Sprintf("%s[%d]", path, i), item, fn); err != nil {
				return err
			}
		}
	}
	return nil
}
