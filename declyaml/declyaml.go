// Package declyaml loads data-only schema declarations from YAML.
//
// A declaration file mirrors skematree.Decl and keeps the document order of
// its properties. Keys starting with "@" configure
// the node, "*" and "?" declare element schemas and every other key declares
// a fixed property:
//
//	"@type": Object
//	name:
//	  "@type": String
//	  "@constraints": [lowercase, {lengthBetween: [3, 20]}]
//	tags:
//	  "@type": Array
//	  "*": String
//
// A property given as a plain scalar ("name: String") is shorthand for a
// declaration holding only its type.
package declyaml

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"regexp"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/reoring/skematree"
	"github.com/reoring/skematree/codec"
	"github.com/reoring/skematree/rules"
)

// ErrUnknownConstraint is returned for a constraint name absent from both
// Funcs.Constraints and the built-in set.
var ErrUnknownConstraint = errors.New("declyaml: unknown constraint")

// ConstraintFunc builds a constraint from the arguments written in YAML.
type ConstraintFunc func(args ...any) (skematree.Constraint, error)

// Funcs supplies the behaviour a YAML file can only refer to by name.
type Funcs struct {
	// Constraints extends and overrides the built-in constraint names.
	Constraints map[string]ConstraintFunc
	// Defaults are referenced with "@defaultFunc: name".
	Defaults map[string]func() any
	// Templates are referenced with "@class: name".
	Templates map[string]*skematree.Template
}

// Keys accepted in addition to the skematree reserved keys.
const (
	// KeyDefaultFunc names an entry of Funcs.Defaults.
	KeyDefaultFunc = "@defaultFunc"
	// KeyCodec names a codec.Lookup codec applied to the declaration.
	KeyCodec = "@codec"
)

// DuplicateKeyError reports a mapping key that occurs twice.
type DuplicateKeyError struct {
	Key       string
	FirstLine int
	Line      int
}

func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("declyaml: duplicate key %q at line %d (first at line %d)", e.Key, e.Line, e.FirstLine)
}

// Load reads the first YAML document of data as an ordered declaration.
func Load(data []byte, fns Funcs) (*skematree.Object, error) {
	var doc yaml.Node
	if err := yaml.NewDecoder(bytes.NewReader(data)).Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("declyaml: empty document")
		}
		return nil, fmt.Errorf("declyaml: %w", err)
	}
	l := loader{fns: fns}
	root := deref(&doc)
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("declyaml: line %d: root must be a mapping", root.Line)
	}
	return l.decl(root, "/")
}

// Compile loads data and compiles it into a template.
func Compile(data []byte, fns Funcs, opts ...skematree.Option) (*skematree.Template, error) {
	d, err := Load(data, fns)
	if err != nil {
		return nil, err
	}
	return skematree.Compile(d, opts...)
}

type loader struct {
	fns Funcs
}

func deref(n *yaml.Node) *yaml.Node {
	for n != nil {
		switch n.Kind {
		case yaml.DocumentNode:
			if len(n.Content) == 0 {
				return &yaml.Node{}
			}
			n = n.Content[0]
		case yaml.AliasNode:
			n = n.Alias
		default:
			return n
		}
	}
	return &yaml.Node{}
}

func (l *loader) decl(n *yaml.Node, path string) (*skematree.Object, error) {
	n = deref(n)
	switch n.Kind {
	case yaml.ScalarNode:
		return skematree.ObjectOf(skematree.KeyType, n.Value), nil
	case yaml.MappingNode:
	default:
		return nil, fmt.Errorf("declyaml: %s (line %d): declaration must be a mapping or a type name", path, n.Line)
	}

	out := skematree.NewObject()
	var cdc *codec.Codec
	first := make(map[string]int, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		k, v := n.Content[i], deref(n.Content[i+1])
		if line, dup := first[k.Value]; dup {
			return nil, &DuplicateKeyError{Key: k.Value, FirstLine: line, Line: k.Line}
		}
		first[k.Value] = k.Line

		if k.Value == KeyCodec {
			c, ok := codec.Lookup(v.Value)
			if !ok || v.Kind != yaml.ScalarNode {
				return nil, fmt.Errorf("declyaml: %s (line %d): unknown codec %q", path, v.Line, v.Value)
			}
			cdc = &c
			continue
		}
		val, err := l.entry(k.Value, v, path)
		if err != nil {
			return nil, err
		}
		key := k.Value
		if key == KeyDefaultFunc {
			key = skematree.KeyDefault
		}
		out.Set(key, val)
	}
	if _, ok := first[KeyDefaultFunc]; ok {
		if _, ok := first[skematree.KeyDefault]; ok {
			return nil, fmt.Errorf("declyaml: %s: %s and %s are exclusive", path, skematree.KeyDefault, KeyDefaultFunc)
		}
	}
	if cdc != nil {
		withCodec := cdc.Decl(out.Map())
		for _, k := range []string{skematree.KeyType, skematree.KeyInputMassager, skematree.KeyConstraints} {
			out.Set(k, withCodec[k])
		}
	}
	return out, nil
}

func (l *loader) entry(key string, v *yaml.Node, path string) (any, error) {
	switch key {
	case skematree.KeyType:
		if v.Kind != yaml.ScalarNode {
			return nil, fmt.Errorf("declyaml: %s (line %d): %s must be a type name", path, v.Line, key)
		}
		return v.Value, nil
	case skematree.KeyRequired:
		var b bool
		if err := v.Decode(&b); err != nil {
			return nil, fmt.Errorf("declyaml: %s (line %d): %s: %w", path, v.Line, key, err)
		}
		return b, nil
	case skematree.KeyDefault:
		return skematree.YAMLValue(v)
	case KeyDefaultFunc:
		fn, ok := l.fns.Defaults[v.Value]
		if !ok || v.Kind != yaml.ScalarNode {
			return nil, fmt.Errorf("declyaml: %s (line %d): unknown default func %q", path, v.Line, v.Value)
		}
		return fn, nil
	case skematree.KeyEnum:
		return l.enum(v, path)
	case skematree.KeyConstraints:
		return l.constraints(v, path)
	case skematree.KeyClass:
		tpl, ok := l.fns.Templates[v.Value]
		if !ok || v.Kind != yaml.ScalarNode {
			return nil, fmt.Errorf("declyaml: %s (line %d): unknown template %q", path, v.Line, v.Value)
		}
		return tpl, nil
	case skematree.Elem, skematree.AnyID:
		return l.decl(v, path)
	}
	if len(key) > 0 && key[0] == '@' {
		return nil, fmt.Errorf("%w %q at %s (line %d)", skematree.ErrUnsupportedKey, key, path, v.Line)
	}
	return l.decl(v, skematree.At(path).Field(key).Pointer())
}

// enum accepts a list of values or a list of {label, value} mappings.
func (l *loader) enum(v *yaml.Node, path string) (any, error) {
	if v.Kind != yaml.SequenceNode {
		return nil, fmt.Errorf("declyaml: %s (line %d): %s must be a list", path, v.Line, skematree.KeyEnum)
	}
	values := make([]any, 0, len(v.Content))
	var labelled []skematree.EnumOption
	for i, c := range v.Content {
		val, err := skematree.YAMLValue(c)
		if err != nil {
			return nil, err
		}
		var label, value any
		obj, labelledEntry := val.(*skematree.Object)
		if labelledEntry && obj.Len() == 2 {
			var hasLabel, hasValue bool
			label, hasLabel = obj.Get("label")
			value, hasValue = obj.Get("value")
			labelledEntry = hasLabel && hasValue
		} else {
			labelledEntry = false
		}
		if !labelledEntry {
			if labelled != nil {
				return nil, fmt.Errorf("declyaml: %s: %s entry %d mixes plain and labelled values", path, skematree.KeyEnum, i)
			}
			values = append(values, val)
			continue
		}
		if len(values) > 0 {
			return nil, fmt.Errorf("declyaml: %s: %s entry %d mixes plain and labelled values", path, skematree.KeyEnum, i)
		}
		labelled = append(labelled, skematree.EnumOption{Label: fmt.Sprint(label), Value: value})
	}
	if labelled != nil {
		return labelled, nil
	}
	return values, nil
}

// constraints accepts names ("lowercase") and single-key mappings whose
// value is the argument list ({lengthBetween: [3, 5]}) or a single argument.
func (l *loader) constraints(v *yaml.Node, path string) ([]skematree.Constraint, error) {
	if v.Kind != yaml.SequenceNode {
		return nil, fmt.Errorf("declyaml: %s (line %d): %s must be a list", path, v.Line, skematree.KeyConstraints)
	}
	out := make([]skematree.Constraint, 0, len(v.Content))
	for _, c := range v.Content {
		c = deref(c)
		var (
			name string
			args []any
		)
		switch c.Kind {
		case yaml.ScalarNode:
			name = c.Value
		case yaml.MappingNode:
			if len(c.Content) != 2 {
				return nil, fmt.Errorf("declyaml: %s (line %d): constraint mapping needs exactly one name", path, c.Line)
			}
			name = c.Content[0].Value
			raw, err := skematree.YAMLValue(c.Content[1])
			if err != nil {
				return nil, err
			}
			if list, ok := raw.([]any); ok {
				args = list
			} else {
				args = []any{raw}
			}
		default:
			return nil, fmt.Errorf("declyaml: %s (line %d): invalid constraint", path, c.Line)
		}

		build, ok := l.fns.Constraints[name]
		if !ok {
			build, ok = builtins[name]
		}
		if !ok {
			return nil, fmt.Errorf("%w %q at %s (line %d)", ErrUnknownConstraint, name, path, c.Line)
		}
		con, err := build(args...)
		if err != nil {
			return nil, fmt.Errorf("declyaml: %s (line %d): %s: %w", path, c.Line, name, err)
		}
		out = append(out, con)
	}
	return out, nil
}

// Builtins lists the constraint names available without Funcs.
func Builtins() []string {
	names := make([]string, 0, len(builtins))
	for k := range builtins {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

var builtins = map[string]ConstraintFunc{
	"lowercase": noArgs(rules.Lowercase),
	"uppercase": noArgs(rules.Uppercase),
	"notEmpty":  noArgs(rules.NotEmpty),

	"lengthBetween": func(args ...any) (skematree.Constraint, error) {
		nums, err := numbers(args, 2)
		if err != nil {
			return nil, err
		}
		return rules.LengthBetween(int(nums[0]), int(nums[1])), nil
	},
	"minLength": func(args ...any) (skematree.Constraint, error) {
		nums, err := numbers(args, 1)
		if err != nil {
			return nil, err
		}
		return rules.MinLength(int(nums[0])), nil
	},
	"maxLength": func(args ...any) (skematree.Constraint, error) {
		nums, err := numbers(args, 1)
		if err != nil {
			return nil, err
		}
		return rules.MaxLength(int(nums[0])), nil
	},
	"min": func(args ...any) (skematree.Constraint, error) {
		nums, err := numbers(args, 1)
		if err != nil {
			return nil, err
		}
		return rules.Min(nums[0]), nil
	},
	"max": func(args ...any) (skematree.Constraint, error) {
		nums, err := numbers(args, 1)
		if err != nil {
			return nil, err
		}
		return rules.Max(nums[0]), nil
	},
	"range": func(args ...any) (skematree.Constraint, error) {
		nums, err := numbers(args, 2)
		if err != nil {
			return nil, err
		}
		return rules.Range(nums[0], nums[1]), nil
	},
	"pattern": func(args ...any) (skematree.Constraint, error) {
		if len(args) != 1 {
			return nil, fmt.Errorf("want 1 argument, got %d", len(args))
		}
		expr, ok := args[0].(string)
		if !ok {
			return nil, fmt.Errorf("pattern must be a string, got %T", args[0])
		}
		if _, err := regexp.Compile(expr); err != nil {
			return nil, err
		}
		return rules.Pattern(expr), nil
	},
	"oneOf": func(args ...any) (skematree.Constraint, error) {
		if len(args) == 0 {
			return nil, errors.New("want at least 1 argument")
		}
		return rules.OneOf(args...), nil
	},
}

func noArgs(fn func() skematree.Constraint) ConstraintFunc {
	return func(args ...any) (skematree.Constraint, error) {
		if len(args) != 0 {
			return nil, fmt.Errorf("want no arguments, got %d", len(args))
		}
		return fn(), nil
	}
}

func numbers(args []any, want int) ([]float64, error) {
	if len(args) != want {
		return nil, fmt.Errorf("want %d arguments, got %d", want, len(args))
	}
	out := make([]float64, want)
	for i, a := range args {
		f, ok := a.(float64)
		if !ok {
			return nil, fmt.Errorf("argument %d must be a number, got %T", i+1, a)
		}
		out[i] = f
	}
	return out, nil
}
