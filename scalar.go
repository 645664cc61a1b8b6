package skematree

import "fmt"

// Scalar is a leaf node holding a raw value. Array and Object typed scalars
// hold opaque JSON blobs.
type Scalar struct {
	node
	data any
}

var _ Node = (*Scalar)(nil)

// Get returns the current value.
func (s *Scalar) Get() any { return s.data }

// Set validates and assigns v. A value of the wrong type is logged and
// rejected with ErrTypeMismatch without any event. A constraint failure keeps
// the old value, emits a failed validation event and returns the Issue.
// Success emits a succeeded validation event, then change.
func (s *Scalar) Set(v any) error {
	v = normalize(v)
	if got := TypeOf(v); got != s.Type() {
		s.metrics().typeMismatch()
		s.logger().Warn().
			Str("expected", s.Type().String()).
			Str("got", got.String()).
			Msg("set: type mismatch")
		return fmt.Errorf("%w: expected %s, got %s", ErrTypeMismatch, s.Type(), got)
	}
	if !s.Validate(v) {
		s.metrics().validationFailed()
		s.Emit(Event{Name: EventValidation, Status: StatusFailed, Value: v, Message: s.ErrorMessage()})
		return constraintIssue("", s.err)
	}
	old := s.data
	s.data = v
	s.Emit(Event{Name: EventValidation, Status: StatusSucceeded, Value: v})
	s.Emit(Event{Name: EventChange, Op: OpValue, Value: v, Old: old})
	return nil
}

// IsEmpty is true for zero values; blobs are empty when they have no members.
func (s *Scalar) IsEmpty() bool {
	switch s.Type() {
	case TypeArray:
		return len(elementsOf(s.data)) == 0
	case TypeObject:
		keys, _ := entries(s.data)
		return len(keys) == 0
	}
	return jsonEqual(s.data, s.Type().Zero())
}

func (s *Scalar) ToJSON(opts ...EncodeOpt) any {
	return s.serialize(opts, func(EncodeOpt) any { return deepCopy(s.data) })
}

func constraintIssue(path string, err error) Issue {
	code := CodeConstraint
	if isEnumViolation(err) {
		code = CodeInvalidEnum
	}
	return Issue{Path: path, Code: code, Message: err.Error(), Cause: err}
}
