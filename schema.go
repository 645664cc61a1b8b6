package skematree

import (
	"errors"
	"fmt"
	"maps"
	"reflect"
	"slices"
	"strings"
)

// Schema is the parsed, immutable form of a declaration.
type Schema struct {
	typ         Type
	required    bool
	hasDefault  bool
	defValue    any
	defFn       func() any
	enum        func() []EnumOption
	constraints []Constraint
	ref         *Ref
	massager    func(any) any
	serializer  Serializer
	factory     Factory

	// keys lists fixed properties in declaration order.
	keys []string
	subs map[string]*Template
}

func (s *Schema) Type() Type             { return s.typ }
func (s *Schema) IsRequired() bool       { return s.required }
func (s *Schema) HasDefault() bool       { return s.hasDefault }
func (s *Schema) HasEnum() bool          { return s.enum != nil }
func (s *Schema) Ref() *Ref              { return s.ref }
func (s *Schema) Serializer() Serializer { return s.serializer }
func (s *Schema) Factory() Factory       { return s.factory }

// Keys returns the declared fixed property names.
func (s *Schema) Keys() []string { return slices.Clone(s.keys) }

// Sub returns the template declared for a property or wildcard, or nil.
func (s *Schema) Sub(key string) *Template { return s.subs[key] }

func (s *Schema) HasSub(key string) bool {
	_, ok := s.subs[key]
	return ok
}

// Constraints returns the declared constraints (without the enum check).
func (s *Schema) Constraints() []Constraint { return slices.Clone(s.constraints) }

// Enum evaluates the enumeration. Function enums are called on every use.
func (s *Schema) Enum() []EnumOption {
	if s.enum == nil {
		return nil
	}
	return s.enum()
}

// Default returns a fresh default: function defaults are called, values are
// deep-copied. Without a declared default the type's zero value is returned.
func (s *Schema) Default() any {
	if !s.hasDefault {
		return s.typ.Zero()
	}
	if s.defFn != nil {
		return normalize(s.defFn())
	}
	return normalize(deepCopy(s.defValue))
}

// fallback is the value substituted for mistyped input.
func (s *Schema) fallback() any {
	v := s.Default()
	if TypeOf(v) != s.typ {
		return s.typ.Zero()
	}
	return v
}

// Kind reports which node kind the schema instantiates.
func (s *Schema) Kind() Kind {
	switch {
	case s.typ == TypeArray && s.HasSub(Elem):
		return KindSequence
	case s.typ == TypeObject && s.HasSub(AnyID):
		return KindDynamicKey
	case s.typ == TypeObject && len(s.keys) > 0:
		return KindFixedKey
	}
	return KindScalar
}

// extendSchema copies parent (nil for a root declaration) and merges decl into
// the copy. The parent is never modified.
func extendSchema(parent *Schema, decl Declaration, owner *Template) (*Schema, error) {
	s := &Schema{required: true, subs: map[string]*Template{}}
	if parent != nil {
		*s = *parent
		s.keys = slices.Clone(parent.keys)
		s.subs = maps.Clone(parent.subs)
		s.constraints = slices.Clone(parent.constraints)
	}

	if decl == nil {
		decl = Decl{}
	}
	keys, get := decl.declEntries()
	for _, key := range keys {
		val := get(key)
		var err error
		switch {
		case key == KeyClass:
			err = fmt.Errorf("%w: %s is only valid in a property declaration", ErrInvalidDecl, KeyClass)
		case strings.HasPrefix(key, "@"):
			err = s.handle(key, val)
		default:
			err = s.subKey(key, val, owner)
		}
		if err != nil {
			return nil, err
		}
	}
	if err := s.checkShape(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Schema) handle(key string, val any) error {
	switch key {
	case KeyType:
		t, err := declType(val)
		if err != nil {
			return err
		}
		if s.typ != TypeNone && s.typ != t {
			return fmt.Errorf("%w: cannot change type %s to %s", ErrInvalidDecl, s.typ, t)
		}
		s.typ = t
	case KeyRequired:
		b, ok := val.(bool)
		if !ok {
			return fmt.Errorf("%w: %s must be a bool", ErrInvalidDecl, key)
		}
		s.required = b
	case KeyDefault:
		s.hasDefault = true
		s.defFn, s.defValue = nil, nil
		if fn, ok := val.(func() any); ok {
			s.defFn = fn
		} else {
			s.defValue = val
		}
	case KeyEnum:
		e, err := declEnum(val)
		if err != nil {
			return err
		}
		s.enum = e
	case KeyConstraints:
		cs, err := declConstraints(val)
		if err != nil {
			return err
		}
		s.constraints = cs
	case KeyRef:
		r, err := declRef(val)
		if err != nil {
			return err
		}
		s.ref = r
	case KeyInputMassager:
		fn, ok := val.(func(any) any)
		if !ok {
			return fmt.Errorf("%w: %s must be func(any) any", ErrInvalidDecl, key)
		}
		s.massager = fn
	case KeyToJSON:
		switch fn := val.(type) {
		case Serializer:
			s.serializer = fn
		case func(Node, EncodeOpt) any:
			s.serializer = fn
		default:
			return fmt.Errorf("%w: %s must be a Serializer", ErrInvalidDecl, key)
		}
	case KeyFactory:
		switch fn := val.(type) {
		case Factory:
			s.factory = fn
		case func(any, Params) Node:
			s.factory = fn
		default:
			return fmt.Errorf("%w: %s must be a Factory", ErrInvalidDecl, key)
		}
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedKey, key)
	}
	return nil
}

// subKey installs the template for a fixed property or wildcard.
func (s *Schema) subKey(key string, val any, owner *Template) error {
	var sub *Template
	switch v := val.(type) {
	case *Template:
		if v == nil {
			return fmt.Errorf("%w: nil template for %q", ErrInvalidDecl, key)
		}
		sub = v
	default:
		d, ok := asDecl(val)
		if !ok {
			return fmt.Errorf("%w: %q must be a declaration or *Template, got %T", ErrInvalidDecl, key, val)
		}
		var err error
		if cls, rest, has := withoutClass(d); has {
			base, ok := cls.(*Template)
			if !ok || base == nil {
				return fmt.Errorf("%w: %q: %s must be a *Template", ErrInvalidDecl, key, KeyClass)
			}
			sub = base
			if rest.Len() > 0 {
				sub, err = compile(base, rest, base.cfg, base.name)
			}
		} else if prev, ok := s.subs[key]; ok {
			sub, err = compile(prev, d, prev.cfg, prev.name)
		} else {
			sub, err = compile(nil, d, owner.cfg, owner.name+"/"+key)
		}
		if err != nil {
			return fmt.Errorf("%q: %w", key, err)
		}
	}
	if key != Elem && key != AnyID && !s.HasSub(key) {
		s.keys = append(s.keys, key)
	}
	s.subs[key] = sub
	return nil
}

func (s *Schema) checkShape() error {
	if s.typ == TypeNone {
		return fmt.Errorf("%w: missing %s", ErrInvalidDecl, KeyType)
	}
	hasElem, hasID := s.HasSub(Elem), s.HasSub(AnyID)
	switch {
	case hasElem && s.typ != TypeArray:
		return fmt.Errorf("%w: %q requires type Array", ErrInvalidDecl, Elem)
	case hasID && s.typ != TypeObject:
		return fmt.Errorf("%w: %q requires type Object", ErrInvalidDecl, AnyID)
	case hasID && len(s.keys) > 0:
		return fmt.Errorf("%w: %q cannot be combined with fixed keys", ErrInvalidDecl, AnyID)
	case len(s.keys) > 0 && s.typ != TypeObject:
		return fmt.Errorf("%w: fixed keys require type Object", ErrInvalidDecl)
	}
	if s.hasDefault && s.defFn == nil && s.defValue != nil && TypeOf(normalize(s.defValue)) != s.typ {
		return fmt.Errorf("%w: default %v is not a %s", ErrInvalidDecl, s.defValue, s.typ)
	}
	return nil
}

func asDecl(v any) (Declaration, bool) {
	switch d := v.(type) {
	case Decl:
		return d, true
	case map[string]any:
		return Decl(d), true
	case *Object:
		return d, d != nil
	}
	return nil, false
}

// withoutClass splits the @class entry off d, keeping the order of the rest.
func withoutClass(d Declaration) (any, *Object, bool) {
	keys, get := d.declEntries()
	rest := NewObject()
	var cls any
	has := false
	for _, k := range keys {
		if k == KeyClass {
			cls, has = get(k), true
			continue
		}
		rest.Set(k, get(k))
	}
	return cls, rest, has
}

func declType(v any) (Type, error) {
	switch t := v.(type) {
	case Type:
		if t == TypeNone {
			return TypeNone, fmt.Errorf("%w: %s cannot be None", ErrInvalidDecl, KeyType)
		}
		return t, nil
	case string:
		return ParseType(t)
	}
	return TypeNone, fmt.Errorf("%w: %s must be a Type or type name", ErrInvalidDecl, KeyType)
}

func declRef(v any) (*Ref, error) {
	var r Ref
	switch x := v.(type) {
	case Ref:
		r = x
	case *Ref:
		if x == nil {
			return nil, fmt.Errorf("%w: nil", ErrMalformedRef)
		}
		r = *x
	default:
		return nil, fmt.Errorf("%w: %s must be a Ref", ErrMalformedRef, KeyRef)
	}
	if r.To == nil {
		return nil, fmt.Errorf("%w: To is required", ErrMalformedRef)
	}
	if r.Needs == nil {
		return nil, fmt.Errorf("%w: Needs is required", ErrMalformedRef)
	}
	if r.Getter == nil {
		return nil, fmt.Errorf("%w: Getter is required", ErrMalformedRef)
	}
	return &r, nil
}

func declConstraints(v any) ([]Constraint, error) {
	switch cs := v.(type) {
	case nil:
		return nil, nil
	case Constraint:
		return []Constraint{cs}, nil
	case func(any) error:
		return []Constraint{cs}, nil
	case []Constraint:
		return slices.Clone(cs), nil
	case []func(any) error:
		out := make([]Constraint, len(cs))
		for i, c := range cs {
			out[i] = c
		}
		return out, nil
	case []any:
		out := make([]Constraint, 0, len(cs))
		for i, c := range cs {
			switch fn := c.(type) {
			case Constraint:
				out = append(out, fn)
			case func(any) error:
				out = append(out, fn)
			default:
				return nil, fmt.Errorf("%w: constraint %d is %T", ErrInvalidDecl, i, c)
			}
		}
		return out, nil
	}
	return nil, fmt.Errorf("%w: %s must be a list of constraints", ErrInvalidDecl, KeyConstraints)
}

func declEnum(v any) (func() []EnumOption, error) {
	switch e := v.(type) {
	case func() []EnumOption:
		return e, nil
	case func() []any:
		return func() []EnumOption { return enumOptions(e()) }, nil
	case []EnumOption:
		opts := slices.Clone(e)
		return func() []EnumOption { return opts }, nil
	}
	if TypeOf(v) != TypeArray {
		return nil, fmt.Errorf("%w: %s must be a list or a function", ErrInvalidDecl, KeyEnum)
	}
	opts := enumOptions(elementsOf(v))
	return func() []EnumOption { return opts }, nil
}

// enumOptions accepts raw values or {label, value} objects.
func enumOptions(vals []any) []EnumOption {
	out := make([]EnumOption, 0, len(vals))
	for _, v := range vals {
		if TypeOf(v) == TypeObject {
			if val, ok := member(v, "value"); ok {
				label, _ := member(v, "label")
				out = append(out, EnumOption{Label: fmt.Sprint(label), Value: normalize(val)})
				continue
			}
		}
		out = append(out, EnumOption{Label: fmt.Sprint(v), Value: normalize(v)})
	}
	return out
}

// enumViolation is returned by the enumeration constraint.
type enumViolation struct{ labels []string }

func (e enumViolation) Error() string {
	return "Value can only be one of " + strings.Join(e.labels, ", ")
}

func isEnumViolation(err error) bool {
	var ev enumViolation
	return errors.As(err, &ev)
}

// enumConstraint checks membership against the live enumeration.
func enumConstraint(s *Schema) Constraint {
	return func(v any) error {
		opts := s.Enum()
		v = normalize(v)
		labels := make([]string, len(opts))
		for i, o := range opts {
			if jsonEqual(o.Value, v) {
				return nil
			}
			labels[i] = o.Label
		}
		return enumViolation{labels: labels}
	}
}

func jsonEqual(a, b any) bool {
	a, b = normalize(a), normalize(b)
	if ta, tb := reflect.TypeOf(a), reflect.TypeOf(b); ta != tb || ta == nil {
		return ta == tb
	}
	if reflect.TypeOf(a).Comparable() {
		return a == b
	}
	return reflect.DeepEqual(a, b)
}
