package json

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	eng "github.com/reoring/skematree/internal/engine"
)

func TestTokens(t *testing.T) {
	src := Driver{}.NewReader(strings.NewReader(`{"a":["b",2,true]}`))
	want := []eng.Token{
		{Kind: eng.KindBeginObject},
		{Kind: eng.KindKey, String: "a"},
		{Kind: eng.KindBeginArray},
		{Kind: eng.KindString, String: "b"},
		{Kind: eng.KindNumber, Number: "2"},
		{Kind: eng.KindBool, Bool: true},
		{Kind: eng.KindEndArray},
		{Kind: eng.KindEndObject},
	}
	for i, w := range want {
		got, err := src.NextToken()
		require.NoError(t, err, "token %d", i)
		assert.Equal(t, w.Kind, got.Kind, "token %d", i)
		assert.Equal(t, w.String, got.String, "token %d", i)
		assert.Equal(t, w.Number, got.Number, "token %d", i)
		assert.Equal(t, w.Bool, got.Bool, "token %d", i)
	}
}

func TestLocationAdvances(t *testing.T) {
	src := NewBytes([]byte(`{"key":"value"}`))
	var last int64
	for i := 0; i < 3; i++ {
		_, err := src.NextToken()
		require.NoError(t, err)
		assert.GreaterOrEqual(t, src.Location(), last)
		last = src.Location()
	}
	assert.Positive(t, last)
	assert.Equal(t, "encoding/json", Driver{}.Name())
}
