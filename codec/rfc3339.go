package codec

import (
	"errors"
	"time"

	"github.com/reoring/skematree"
)

// RFC3339 canonicalises timestamps to UTC RFC 3339 with trailing zero
// fractions trimmed: "2025-01-01T09:00:00.500+09:00" is stored as
// "2025-01-01T00:00:00.5Z".
func RFC3339() Codec {
	return Codec{
		Name: "rfc3339",
		Type: skematree.TypeString,
		Canonical: func(v any) any {
			s, ok := v.(string)
			if !ok {
				return v
			}
			t, err := parseRFC3339(s)
			if err != nil {
				return v
			}
			return formatRFC3339Canonical(t)
		},
		Check: func(v any) error {
			s, ok := v.(string)
			if !ok {
				return nil
			}
			if _, err := parseRFC3339(s); err != nil {
				return errors.New("Value must be an RFC 3339 timestamp")
			}
			return nil
		},
	}
}

// Time parses the value of a node declared with RFC3339.
func Time(n skematree.Node) (time.Time, error) {
	s, ok := n.ToJSON().(string)
	if !ok {
		return time.Time{}, skematree.ErrTypeMismatch
	}
	return parseRFC3339(s)
}

func parseRFC3339(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		if t2, err2 := time.Parse(time.RFC3339, s); err2 == nil {
			return t2, nil
		}
		return time.Time{}, err
	}
	return t, nil
}

func formatRFC3339Canonical(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}
