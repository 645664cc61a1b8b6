package gojson

import (
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	eng "github.com/reoring/skematree/internal/engine"
)

func kinds(t *testing.T, src eng.TokenSource) []eng.Kind {
	t.Helper()
	var out []eng.Kind
	for {
		tok, err := src.NextToken()
		if errors.Is(err, io.EOF) {
			return out
		}
		require.NoError(t, err)
		out = append(out, tok.Kind)
	}
}

func TestKeysAreToldApartFromStrings(t *testing.T) {
	got := kinds(t, NewBytes([]byte(`{"k":"v","o":{"x":["y"]},"n":1,"b":false,"z":null}`)))
	assert.Equal(t, []eng.Kind{
		eng.KindBeginObject,
		eng.KindKey, eng.KindString,
		eng.KindKey, eng.KindBeginObject, eng.KindKey, eng.KindBeginArray, eng.KindString, eng.KindEndArray, eng.KindEndObject,
		eng.KindKey, eng.KindNumber,
		eng.KindKey, eng.KindBool,
		eng.KindKey, eng.KindNull,
		eng.KindEndObject,
	}, got)
}

func TestNumberToken(t *testing.T) {
	src := NewBytes([]byte(`[42]`))
	_, err := src.NextToken()
	require.NoError(t, err)
	tok, err := src.NextToken()
	require.NoError(t, err)
	assert.Equal(t, eng.KindNumber, tok.Kind)
	assert.Equal(t, "42", tok.Number)
	assert.Equal(t, int64(-1), src.Location())
}

func TestDriver(t *testing.T) {
	assert.Equal(t, "go-json", Driver{}.Name())
}
