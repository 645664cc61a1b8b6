package skematree

import (
	"bytes"
	"reflect"
	"sort"

	j "github.com/goccy/go-json"
)

// Object is a JSON object that remembers key insertion order.
// Decoders produce it so dynamic-key collections keep document order.
type Object struct {
	keys []string
	vals map[string]any
}

// NewObject returns an empty ordered object.
func NewObject() *Object {
	return &Object{keys: []string{}, vals: map[string]any{}}
}

// ObjectOf builds an object from alternating key/value arguments.
// It panics when given an odd number of arguments or a non-string key.
func ObjectOf(kv ...any) *Object {
	if len(kv)%2 != 0 {
		panic("skematree: ObjectOf needs key/value pairs")
	}
	o := NewObject()
	for i := 0; i < len(kv); i += 2 {
		k, ok := kv[i].(string)
		if !ok {
			panic("skematree: ObjectOf key must be a string")
		}
		o.Set(k, kv[i+1])
	}
	return o
}

// Set stores v under key. A new key goes last; an existing key keeps its position.
func (o *Object) Set(key string, v any) {
	if _, ok := o.vals[key]; !ok {
		o.keys = append(o.keys, key)
	}
	o.vals[key] = v
}

func (o *Object) Get(key string) (any, bool) {
	v, ok := o.vals[key]
	return v, ok
}

// Keys returns a copy of the keys in insertion order.
func (o *Object) Keys() []string {
	return append([]string{}, o.keys...)
}

func (o *Object) Len() int { return len(o.keys) }

func (o *Object) Delete(key string) {
	if _, ok := o.vals[key]; !ok {
		return
	}
	delete(o.vals, key)
	for i, k := range o.keys {
		if k == key {
			o.keys = append(o.keys[:i], o.keys[i+1:]...)
			break
		}
	}
}

// Map returns the members as a plain map (order is lost).
func (o *Object) Map() map[string]any {
	m := make(map[string]any, len(o.keys))
	for k, v := range o.vals {
		m[k] = v
	}
	return m
}

// MarshalJSON writes members in insertion order.
func (o *Object) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range o.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := j.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		vb, err := j.Marshal(o.vals[k])
		if err != nil {
			return nil, err
		}
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// entries lists the members of any JSON object value. Ordered objects keep
// their order; Go maps are visited in sorted key order.
func entries(v any) ([]string, func(string) any) {
	switch x := v.(type) {
	case *Object:
		return x.Keys(), func(k string) any { return x.vals[k] }
	case map[string]any:
		keys := make([]string, 0, len(x))
		for k := range x {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		return keys, func(k string) any { return x[k] }
	case Decl:
		return entries(map[string]any(x))
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String {
		return nil, func(string) any { return nil }
	}
	keys := make([]string, 0, rv.Len())
	for _, k := range rv.MapKeys() {
		keys = append(keys, k.String())
	}
	sort.Strings(keys)
	return keys, func(k string) any {
		mv := rv.MapIndex(reflect.ValueOf(k).Convert(rv.Type().Key()))
		if !mv.IsValid() {
			return nil
		}
		return mv.Interface()
	}
}

// member reads one key from any JSON object value.
func member(v any, key string) (any, bool) {
	switch x := v.(type) {
	case *Object:
		return x.Get(key)
	case map[string]any:
		m, ok := x[key]
		return m, ok
	}
	keys, get := entries(v)
	for _, k := range keys {
		if k == key {
			return get(k), true
		}
	}
	return nil, false
}

// deepCopy clones arrays and objects so defaults are never shared between instances.
func deepCopy(v any) any {
	switch x := v.(type) {
	case *Object:
		out := NewObject()
		for _, k := range x.keys {
			out.Set(k, deepCopy(x.vals[k]))
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, e := range x {
			out[k] = deepCopy(e)
		}
		return out
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = deepCopy(e)
		}
		return out
	}
	switch TypeOf(v) {
	case TypeArray:
		return deepCopy(elementsOf(v))
	case TypeObject:
		keys, get := entries(v)
		out := NewObject()
		for _, k := range keys {
			out.Set(k, deepCopy(get(k)))
		}
		return out
	}
	return v
}
