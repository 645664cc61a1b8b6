package skematree

import (
	"errors"
	"fmt"
	"strings"

	"github.com/reoring/skematree/i18n"
)

// Schema and protocol errors. Data problems never surface through these;
// they are logged and repaired, or reported as Issues.
var (
	ErrUnsupportedKey   = errors.New("skematree: unsupported declaration key")
	ErrInvalidDecl      = errors.New("skematree: invalid declaration")
	ErrMalformedRef     = errors.New("skematree: malformed reference")
	ErrTypeMismatch     = errors.New("skematree: type mismatch")
	ErrAlreadyResolved  = errors.New("skematree: reference already resolved")
	ErrNoReferenceValue = errors.New("skematree: reference getter returned no value")
	ErrReferenceCycle   = errors.New("skematree: reference value contains its own placeholder")
	ErrUnknownKey       = errors.New("skematree: unknown key")
	ErrMissingID        = errors.New("skematree: id required")
	ErrIndexOutOfRange  = errors.New("skematree: index out of range")
)

// Issue codes
const (
	CodeInvalidType         = "invalid_type"
	CodeInvalidEnum         = "invalid_enum"
	CodeConstraint          = "constraint"
	CodeUnresolvedReference = "unresolved_reference"
	CodeDuplicateID         = "duplicate_id"
	CodeDuplicateKey        = "duplicate_key"
	CodeUnknownKey          = "unknown_key"
	CodeParseError          = "parse_error"
	CodeTruncated           = "truncated"
)

// Issue represents a single validation entry.
type Issue struct {
	Path    string // JSON Pointer (for example: /items/2/price).
	Code    string // One of the codes listed above.
	Message string
	Cause   error // Optional: underlying error.
	// Params carries structured parameters (e.g., {"id": "foo"}).
	Params map[string]any
}

// Error returns the message, prefixed with the path when one is known.
func (it Issue) Error() string {
	if it.Path == "" {
		return it.Message
	}
	return fmt.Sprintf("%s at %s: %s", it.Code, it.Path, it.Message)
}

func (it Issue) Unwrap() error { return it.Cause }

// Issues is a collection of validation errors that implements error.
type Issues []Issue

// Error summarizes the first few issues.
func (iss Issues) Error() string {
	if len(iss) == 0 {
		return ""
	}
	const maxShown = 3
	b := &strings.Builder{}
	n := len(iss)
	lim := min(n, maxShown)
	for i := 0; i < lim; i++ {
		if i > 0 {
			b.WriteString("; ")
		}
		fmt.Fprintf(b, "%s at %s", iss[i].Code, iss[i].Path)
	}
	if n > lim {
		fmt.Fprintf(b, "; ... (total %d)", n)
	}
	return b.String()
}

// Unwrap exposes every Issue to errors.Is and errors.As.
func (iss Issues) Unwrap() []error {
	out := make([]error, len(iss))
	for i, it := range iss {
		out[i] = it
	}
	return out
}

// AppendIssues appends issues to the destination, initializing the slice when
// needed.
func AppendIssues(dst Issues, more ...Issue) Issues {
	if dst == nil {
		dst = Issues{}
	}
	return append(dst, more...)
}

// AsIssues extracts Issues from an error using errors.As internally.
func AsIssues(err error) (Issues, bool) {
	if err == nil {
		return nil, false
	}
	var iss Issues
	if errors.As(err, &iss) {
		return iss, true
	}
	var one Issue
	if errors.As(err, &one) {
		return Issues{one}, true
	}
	return nil, false
}

func newIssue(path, code string, cause error, kv ...any) Issue {
	it := Issue{Path: path, Code: code, Cause: cause}
	if len(kv) > 0 {
		it.Params = map[string]any{}
		for i := 0; i+1 < len(kv); i += 2 {
			it.Params[fmt.Sprint(kv[i])] = kv[i+1]
		}
	}
	switch {
	case cause != nil && code == CodeConstraint:
		it.Message = cause.Error()
	case cause != nil:
		it.Message = i18n.T(code, nil) + ": " + cause.Error()
	default:
		it.Message = i18n.T(code, stringParams(it.Params))
	}
	return it
}

func stringParams(m map[string]any) map[string]string {
	if len(m) == 0 {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = fmt.Sprint(v)
	}
	return out
}
