package skematree

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/reoring/skematree/i18n"
	"github.com/reoring/skematree/internal/engine"
	"github.com/reoring/skematree/source/gojson"
)

// Decode parses a JSON document into plain values: *Object for objects (in
// document order), []any, string, float64, bool and nil. Duplicate keys in
// Warn mode are returned as warnings; every fatal problem is returned as an
// Issues error.
func Decode(data []byte, opt DecodeOpt) (any, Issues, error) {
	return DecodeReader(bytes.NewReader(data), opt)
}

// DecodeReader is Decode over a stream.
func DecodeReader(r io.Reader, opt DecodeOpt) (any, Issues, error) {
	var src engine.TokenSource
	if opt.Driver != nil {
		src = opt.Driver.NewReader(r)
	} else {
		src = gojson.NewReader(r)
	}
	var warnings Issues
	eo := engine.EnforceOptions{
		OnDuplicate: duplicatePolicy(opt.OnDuplicateKey),
		MaxDepth:    opt.MaxDepth,
		MaxBytes:    opt.MaxBytes,
		IssueSink: func(si engine.SimpleIssue) {
			warnings = AppendIssues(warnings, simpleIssue(si))
		},
	}
	if !eo.Disabled() {
		src = engine.WrapWithEnforcement(src, eo)
	}

	v, err := engine.DecodeValue(src, func() engine.ObjectSink { return NewObject() })
	if err != nil {
		return nil, warnings, decodeError(err)
	}
	if _, err := src.NextToken(); !errors.Is(err, io.EOF) {
		if err == nil {
			err = errors.New("trailing data after document")
		}
		return nil, warnings, decodeError(err)
	}
	return v, warnings, nil
}

func duplicatePolicy(s Severity) engine.DuplicateStrictness {
	switch s {
	case Warn:
		return engine.DupWarn
	case Error:
		return engine.DupError
	}
	return engine.DupIgnore
}

func simpleIssue(si engine.SimpleIssue) Issue {
	return Issue{Path: si.Path, Code: si.Code, Message: i18n.T(si.Code, nil) + ": " + si.Message}
}

func decodeError(err error) error {
	var ie engine.IssueError
	if errors.As(err, &ie) {
		return Issues{simpleIssue(ie.SimpleIssue)}
	}
	if errors.Is(err, io.EOF) {
		err = io.ErrUnexpectedEOF
	}
	return Issues{newIssue("/", CodeParseError, err)}
}

// DecodeYAML parses a YAML document into the same value model as Decode.
// Mapping order is kept; integers and floats become float64.
func DecodeYAML(data []byte) (any, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, Issues{newIssue("/", CodeParseError, err)}
	}
	return YAMLValue(&doc)
}

// YAMLValue converts a decoded YAML node into the Decode value model.
func YAMLValue(n *yaml.Node) (any, error) {
	switch n.Kind {
	case 0:
		return nil, nil
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return nil, nil
		}
		return YAMLValue(n.Content[0])
	case yaml.AliasNode:
		return YAMLValue(n.Alias)
	case yaml.MappingNode:
		obj := NewObject()
		for i := 0; i+1 < len(n.Content); i += 2 {
			v, err := YAMLValue(n.Content[i+1])
			if err != nil {
				return nil, err
			}
			obj.Set(n.Content[i].Value, v)
		}
		return obj, nil
	case yaml.SequenceNode:
		out := make([]any, 0, len(n.Content))
		for _, c := range n.Content {
			v, err := YAMLValue(c)
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		}
		return out, nil
	}
	switch n.Tag {
	case "!!null":
		return nil, nil
	case "!!bool":
		var b bool
		if err := n.Decode(&b); err != nil {
			return nil, fmt.Errorf("line %d: %w", n.Line, err)
		}
		return b, nil
	case "!!int", "!!float":
		var f float64
		if err := n.Decode(&f); err != nil {
			return nil, fmt.Errorf("line %d: %w", n.Line, err)
		}
		return f, nil
	}
	return n.Value, nil
}

// Parse decodes data and builds a node tree from it.
func (t *Template) Parse(data []byte, opt DecodeOpt) (Node, Issues, error) {
	v, warnings, err := Decode(data, opt)
	if err != nil {
		return nil, warnings, err
	}
	return t.Create(v), warnings, nil
}
