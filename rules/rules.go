// Package rules provides ready-made constraints for declarations.
//
// Every rule returns an error whose message is shown to users through
// Node.ErrorMessage, so messages are plain sentences.
package rules

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/reoring/skematree"
)

// Op defines simple comparison operators for Compare.
type Op int

const (
	Eq Op = iota
	Ne
	Lt
	Le
	Gt
	Ge
)

func (o Op) String() string {
	switch o {
	case Ne:
		return "!="
	case Lt:
		return "<"
	case Le:
		return "<="
	case Gt:
		return ">"
	case Ge:
		return ">="
	}
	return "=="
}

// LengthBetween requires a string (in runes) or array length within [min, max].
func LengthBetween(min, max int) skematree.Constraint {
	return func(v any) error {
		n, ok := length(v)
		if !ok {
			return nil
		}
		if n < min || n > max {
			return fmt.Errorf("Length must be between %d and %d", min, max)
		}
		return nil
	}
}

// MinLength requires a length of at least min.
func MinLength(min int) skematree.Constraint {
	return func(v any) error {
		if n, ok := length(v); ok && n < min {
			return fmt.Errorf("Length must be at least %d", min)
		}
		return nil
	}
}

// MaxLength requires a length of at most max.
func MaxLength(max int) skematree.Constraint {
	return func(v any) error {
		if n, ok := length(v); ok && n > max {
			return fmt.Errorf("Length must be at most %d", max)
		}
		return nil
	}
}

// NotEmpty rejects empty strings, arrays and objects.
func NotEmpty() skematree.Constraint {
	return func(v any) error {
		if n, ok := length(v); ok && n == 0 {
			return errors.New("Value must not be empty")
		}
		return nil
	}
}

// Lowercase requires a string without upper-case letters.
func Lowercase() skematree.Constraint {
	return func(v any) error {
		if s, ok := v.(string); ok && strings.ToLower(s) != s {
			return errors.New("Value must be lowercase")
		}
		return nil
	}
}

// Uppercase requires a string without lower-case letters.
func Uppercase() skematree.Constraint {
	return func(v any) error {
		if s, ok := v.(string); ok && strings.ToUpper(s) != s {
			return errors.New("Value must be uppercase")
		}
		return nil
	}
}

// Pattern requires a string matching the regular expression.
// It panics if expr does not compile.
func Pattern(expr string) skematree.Constraint {
	re := regexp.MustCompile(expr)
	return func(v any) error {
		if s, ok := v.(string); ok && !re.MatchString(s) {
			return fmt.Errorf("Value must match %s", expr)
		}
		return nil
	}
}

// Min requires a number >= min.
func Min(min float64) skematree.Constraint { return Compare(Ge, min) }

// Max requires a number <= max.
func Max(max float64) skematree.Constraint { return Compare(Le, max) }

// Range requires a number within [min, max].
func Range(min, max float64) skematree.Constraint {
	return func(v any) error {
		f, ok := number(v)
		if !ok {
			return nil
		}
		if f < min || f > max {
			return fmt.Errorf("Value must be between %g and %g", min, max)
		}
		return nil
	}
}

// Compare requires `value op want` to hold for numbers.
func Compare(op Op, want float64) skematree.Constraint {
	return func(v any) error {
		f, ok := number(v)
		if !ok {
			return nil
		}
		var pass bool
		switch op {
		case Eq:
			pass = f == want
		case Ne:
			pass = f != want
		case Lt:
			pass = f < want
		case Le:
			pass = f <= want
		case Gt:
			pass = f > want
		case Ge:
			pass = f >= want
		}
		if !pass {
			return fmt.Errorf("Value must be %s %g", op, want)
		}
		return nil
	}
}

// OneOf requires the value to equal one of the allowed values.
func OneOf(allowed ...any) skematree.Constraint {
	labels := make([]string, len(allowed))
	for i, a := range allowed {
		labels[i] = fmt.Sprint(a)
	}
	return func(v any) error {
		for _, a := range allowed {
			if equal(v, a) {
				return nil
			}
		}
		return fmt.Errorf("Value can only be one of %s", strings.Join(labels, ", "))
	}
}

// All runs every constraint and returns the first failure.
func All(cs ...skematree.Constraint) skematree.Constraint {
	return func(v any) error {
		for _, c := range cs {
			if c == nil {
				continue
			}
			if err := c(v); err != nil {
				return err
			}
		}
		return nil
	}
}

// Any passes when at least one constraint passes; otherwise it returns the
// last failure.
func Any(cs ...skematree.Constraint) skematree.Constraint {
	return func(v any) error {
		var last error
		for _, c := range cs {
			if c == nil {
				continue
			}
			if last = c(v); last == nil {
				return nil
			}
		}
		return last
	}
}

// When applies c only to values for which cond returns true.
func When(cond func(v any) bool, c skematree.Constraint) skematree.Constraint {
	return func(v any) error {
		if !cond(v) {
			return nil
		}
		return c(v)
	}
}

// ------- helpers -------

func length(v any) (int, bool) {
	switch x := v.(type) {
	case string:
		return utf8.RuneCountInString(x), true
	case *skematree.Object:
		return x.Len(), true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array, reflect.Map:
		return rv.Len(), true
	}
	return 0, false
}

func number(v any) (float64, bool) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint()), true
	}
	return 0, false
}

func equal(a, b any) bool {
	if fa, ok := number(a); ok {
		fb, ok := number(b)
		return ok && fa == fb
	}
	return reflect.DeepEqual(a, b)
}
