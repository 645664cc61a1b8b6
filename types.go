package skematree

import (
	"fmt"
	"io"
	"reflect"
	"strings"

	"github.com/reoring/skematree/internal/engine"
)

// Type is the primitive JSON type a schema declares.
type Type int

const (
	TypeNone Type = iota // Absent or unclassifiable input (nil, funcs, channels...).
	TypeBoolean
	TypeNumber
	TypeString
	TypeArray
	TypeObject
)

func (t Type) String() string {
	switch t {
	case TypeBoolean:
		return "Boolean"
	case TypeNumber:
		return "Number"
	case TypeString:
		return "String"
	case TypeArray:
		return "Array"
	case TypeObject:
		return "Object"
	}
	return "None"
}

// ParseType parses a type name such as "String" or "number".
func ParseType(s string) (Type, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "boolean", "bool":
		return TypeBoolean, nil
	case "number", "float", "integer", "int":
		return TypeNumber, nil
	case "string":
		return TypeString, nil
	case "array":
		return TypeArray, nil
	case "object":
		return TypeObject, nil
	}
	return TypeNone, fmt.Errorf("%w: unknown type %q", ErrInvalidDecl, s)
}

// Zero returns a fresh canonical zero value for the type.
func (t Type) Zero() any {
	switch t {
	case TypeBoolean:
		return false
	case TypeNumber:
		return float64(0)
	case TypeString:
		return ""
	case TypeArray:
		return []any{}
	case TypeObject:
		return NewObject()
	}
	return nil
}

type numberLike interface {
	Float64() (float64, error)
	String() string
}

// TypeOf classifies a Go value holding JSON data.
func TypeOf(v any) Type {
	if _, ok := v.(Node); ok {
		return TypeNone
	}
	switch v.(type) {
	case nil:
		return TypeNone
	case bool:
		return TypeBoolean
	case string:
		return TypeString
	case float64, float32, int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return TypeNumber
	case numberLike:
		return TypeNumber
	case []any:
		return TypeArray
	case *Object, map[string]any:
		return TypeObject
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		return TypeArray
	case reflect.Map:
		if rv.Type().Key().Kind() == reflect.String {
			return TypeObject
		}
	}
	return TypeNone
}

// normalize converts numbers to float64 and leaves everything else alone.
func normalize(v any) any {
	switch x := v.(type) {
	case float64:
		return x
	case float32:
		return float64(x)
	case int:
		return float64(x)
	case int8:
		return float64(x)
	case int16:
		return float64(x)
	case int32:
		return float64(x)
	case int64:
		return float64(x)
	case uint:
		return float64(x)
	case uint8:
		return float64(x)
	case uint16:
		return float64(x)
	case uint32:
		return float64(x)
	case uint64:
		return float64(x)
	case numberLike:
		if f, err := x.Float64(); err == nil {
			return f
		}
	}
	return v
}

// elementsOf returns the elements of any Go slice or array.
func elementsOf(v any) []any {
	if xs, ok := v.([]any); ok {
		return xs
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out
}

// Severity expresses how a non-fatal input problem is treated.
type Severity int

const (
	Ignore Severity = iota
	Warn
	Error
)

// Driver produces token sources for a JSON tokenizer.
type Driver interface {
	Name() string
	NewReader(r io.Reader) engine.TokenSource
}

// DecodeOpt bundles decoding options.
type DecodeOpt struct {
	// Driver selects the tokenizer; nil means go-json.
	Driver         Driver
	OnDuplicateKey Severity
	MaxDepth       int
	// MaxBytes is only enforced by drivers that report offsets.
	MaxBytes int64
}

// EncodeOpt controls structural serialization.
type EncodeOpt struct {
	// IgnoreUnused omits optional object keys whose node is not used.
	IgnoreUnused bool
	// Pretty routes through per-kind pretty hooks; Marshal also indents.
	Pretty bool
}

func encodeOpt(opts []EncodeOpt) EncodeOpt {
	if len(opts) == 0 {
		return EncodeOpt{}
	}
	return opts[0]
}
