package skematree

import (
	"bytes"

	j "github.com/goccy/go-json"
)

// Marshal serializes the node tree. Fixed keys keep declaration order and
// dynamic keys keep insertion order. Pretty output is indented by two spaces.
func Marshal(n Node, opts ...EncodeOpt) ([]byte, error) {
	opt := encodeOpt(opts)
	b, err := j.Marshal(n.ToJSON(opt))
	if err != nil {
		return nil, err
	}
	if !opt.Pretty {
		return b, nil
	}
	var buf bytes.Buffer
	if err := j.Indent(&buf, b, "", "  "); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
