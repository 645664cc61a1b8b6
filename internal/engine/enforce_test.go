package engine

import (
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// tokens replays a fixed token stream; offsets grow by one per token.
type tokens struct {
	toks []Token
	pos  int
}

func (s *tokens) NextToken() (Token, error) {
	if s.pos >= len(s.toks) {
		return Token{}, io.EOF
	}
	t := s.toks[s.pos]
	s.pos++
	return t, nil
}

func (s *tokens) Location() int64 { return int64(s.pos) }

func obj(members ...Token) []Token {
	out := append([]Token{{Kind: KindBeginObject}}, members...)
	return append(out, Token{Kind: KindEndObject})
}

func key(k string) Token    { return Token{Kind: KindKey, String: k} }
func str(s string) Token    { return Token{Kind: KindString, String: s} }
func number(n string) Token { return Token{Kind: KindNumber, Number: n} }

type sink struct {
	keys []string
	vals map[string]any
}

func (s *sink) Set(k string, v any) {
	if _, ok := s.vals[k]; !ok {
		s.keys = append(s.keys, k)
	}
	s.vals[k] = v
}

func newSink() ObjectSink { return &sink{vals: map[string]any{}} }

func TestDecodeValue(t *testing.T) {
	stream := obj(
		key("b"), number("1.5"),
		key("a"), Token{Kind: KindBeginArray}, Token{Kind: KindBool, Bool: true}, Token{Kind: KindNull}, Token{Kind: KindEndArray},
	)
	v, err := DecodeValue(&tokens{toks: stream}, newSink)
	require.NoError(t, err)

	s := v.(*sink)
	assert.Equal(t, []string{"b", "a"}, s.keys)
	assert.Equal(t, 1.5, s.vals["b"])
	assert.Equal(t, []any{true, nil}, s.vals["a"])
}

func TestDecodeValue_Truncated(t *testing.T) {
	_, err := DecodeValue(&tokens{toks: []Token{{Kind: KindBeginObject}, key("a")}}, newSink)
	assert.True(t, errors.Is(err, io.EOF))
}

func TestEnforce_DuplicateKeys(t *testing.T) {
	stream := obj(key("a"), str("1"), key("a"), str("2"))

	var got []SimpleIssue
	src := WrapWithEnforcement(&tokens{toks: stream}, EnforceOptions{
		OnDuplicate: DupWarn,
		IssueSink:   func(si SimpleIssue) { got = append(got, si) },
	})
	_, err := DecodeValue(src, newSink)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "duplicate_key", got[0].Code)
	assert.Equal(t, "/a", got[0].Path)

	src = WrapWithEnforcement(&tokens{toks: stream}, EnforceOptions{OnDuplicate: DupError})
	_, err = DecodeValue(src, newSink)
	var ie IssueError
	require.ErrorAs(t, err, &ie)
	assert.Equal(t, "duplicate_key", ie.Code)
}

func TestEnforce_SiblingObjectsDoNotShareKeys(t *testing.T) {
	inner := obj(key("k"), str("v"))
	stream := []Token{{Kind: KindBeginArray}}
	stream = append(stream, inner...)
	stream = append(stream, inner...)
	stream = append(stream, Token{Kind: KindEndArray})

	src := WrapWithEnforcement(&tokens{toks: stream}, EnforceOptions{OnDuplicate: DupError})
	_, err := DecodeValue(src, newSink)
	assert.NoError(t, err)
}

func TestEnforce_MaxDepthAndBytes(t *testing.T) {
	deep := obj(key("a"), Token{Kind: KindBeginArray}, Token{Kind: KindBeginArray}, Token{Kind: KindEndArray}, Token{Kind: KindEndArray})

	_, err := DecodeValue(WrapWithEnforcement(&tokens{toks: deep}, EnforceOptions{MaxDepth: 2}), newSink)
	var ie IssueError
	require.ErrorAs(t, err, &ie)
	assert.Equal(t, "parse_error", ie.Code)
	assert.Equal(t, "/a/0", ie.Path)

	_, err = DecodeValue(WrapWithEnforcement(&tokens{toks: deep}, EnforceOptions{MaxDepth: 3}), newSink)
	assert.NoError(t, err)

	_, err = DecodeValue(WrapWithEnforcement(&tokens{toks: deep}, EnforceOptions{MaxBytes: 3}), newSink)
	require.ErrorAs(t, err, &ie)
	assert.Equal(t, "truncated", ie.Code)
}

func TestEnforceOptions_Disabled(t *testing.T) {
	assert.True(t, EnforceOptions{}.Disabled())
	assert.False(t, EnforceOptions{OnDuplicate: DupWarn}.Disabled())
	assert.False(t, EnforceOptions{MaxDepth: 1}.Disabled())
}
