package skematree_test

import (
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	st "github.com/reoring/skematree"
	"github.com/reoring/skematree/source/gojson"
	stdjson "github.com/reoring/skematree/source/json"
)

func TestDecode_ValueModel(t *testing.T) {
	v := decode(t, `{"b":[1,"two",true,null],"a":{"y":1.5,"x":{}}}`)

	obj, ok := v.(*st.Object)
	require.True(t, ok)
	assert.Equal(t, []string{"b", "a"}, obj.Keys())

	b, _ := obj.Get("b")
	assert.Equal(t, []any{1.0, "two", true, nil}, b)

	a, _ := obj.Get("a")
	assert.Equal(t, st.ObjectOf("y", 1.5, "x", st.NewObject()), a)
}

func TestDecode_Drivers(t *testing.T) {
	const doc = `{"z":[1,{"k":"v"}],"a":"s"}`
	for _, d := range []st.Driver{gojson.Driver{}, stdjson.Driver{}} {
		t.Run(d.Name(), func(t *testing.T) {
			v, _, err := st.Decode([]byte(doc), st.DecodeOpt{Driver: d, OnDuplicateKey: st.Warn})
			require.NoError(t, err)
			assert.Equal(t, st.ObjectOf("z", []any{1.0, st.ObjectOf("k", "v")}, "a", "s"), v)
		})
	}
}

func TestDecode_DuplicateKeys(t *testing.T) {
	const doc = `{"a":1,"b":{"c":1,"c":2},"a":3}`

	v, warnings, err := st.Decode([]byte(doc), st.DecodeOpt{})
	require.NoError(t, err)
	assert.Empty(t, warnings)
	assert.Equal(t, st.ObjectOf("a", 3.0, "b", st.ObjectOf("c", 2.0)), v)

	_, warnings, err = st.Decode([]byte(doc), st.DecodeOpt{OnDuplicateKey: st.Warn})
	require.NoError(t, err)
	require.Len(t, warnings, 2)
	assert.Equal(t, st.CodeDuplicateKey, warnings[0].Code)
	assert.Equal(t, "/b/c", warnings[0].Path)
	assert.Equal(t, "/a", warnings[1].Path)

	_, _, err = st.Decode([]byte(doc), st.DecodeOpt{OnDuplicateKey: st.Error})
	require.Error(t, err)
	issues, ok := st.AsIssues(err)
	require.True(t, ok)
	require.Len(t, issues, 1)
	assert.Equal(t, st.CodeDuplicateKey, issues[0].Code)
	assert.Equal(t, "/b/c", issues[0].Path)
}

func TestDecode_MaxDepth(t *testing.T) {
	_, _, err := st.Decode([]byte(`{"a":[[1]]}`), st.DecodeOpt{MaxDepth: 2})
	issues, ok := st.AsIssues(err)
	require.True(t, ok)
	assert.Equal(t, st.CodeParseError, issues[0].Code)
	assert.Equal(t, "/a/0", issues[0].Path)

	_, _, err = st.Decode([]byte(`{"a":[1]}`), st.DecodeOpt{MaxDepth: 2})
	assert.NoError(t, err)
}

func TestDecode_MaxBytes(t *testing.T) {
	doc := `{"a":"` + strings.Repeat("x", 64) + `"}`
	_, _, err := st.Decode([]byte(doc), st.DecodeOpt{Driver: stdjson.Driver{}, MaxBytes: 16})
	issues, ok := st.AsIssues(err)
	require.True(t, ok)
	assert.Equal(t, st.CodeTruncated, issues[0].Code)
}

func TestDecode_Malformed(t *testing.T) {
	tests := map[string]string{
		"truncated":     `{"a":`,
		"trailing data": `{"a":1} {"b":2}`,
		"empty":         ``,
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			_, _, err := st.Decode([]byte(doc), st.DecodeOpt{})
			require.Error(t, err)
			issues, ok := st.AsIssues(err)
			require.True(t, ok)
			assert.Equal(t, st.CodeParseError, issues[0].Code)
		})
	}

	_, _, err := st.Decode([]byte(`{"a":`), st.DecodeOpt{Driver: stdjson.Driver{}})
	assert.True(t, errors.Is(err, io.ErrUnexpectedEOF))

	_, _, err = st.Decode([]byte(`{"a":tru}`), st.DecodeOpt{Driver: stdjson.Driver{}})
	issues, ok := st.AsIssues(err)
	require.True(t, ok)
	assert.Equal(t, st.CodeParseError, issues[0].Code)
}

func TestDecodeReader(t *testing.T) {
	v, _, err := st.DecodeReader(strings.NewReader(`["x"]`), st.DecodeOpt{})
	require.NoError(t, err)
	assert.Equal(t, []any{"x"}, v)
}

func TestDecodeYAML(t *testing.T) {
	const doc = `
zeta: 1
alpha:
  - true
  - 2.5
  - ~
  - text
nested:
  b: "quoted"
  a: 0x10
`
	v, err := st.DecodeYAML([]byte(doc))
	require.NoError(t, err)
	want := st.ObjectOf(
		"zeta", 1.0,
		"alpha", []any{true, 2.5, nil, "text"},
		"nested", st.ObjectOf("b", "quoted", "a", 16.0),
	)
	assert.Equal(t, want, v)

	_, err = st.DecodeYAML([]byte("a: [1"))
	issues, ok := st.AsIssues(err)
	require.True(t, ok)
	assert.Equal(t, st.CodeParseError, issues[0].Code)
}

func TestParse_ReportsWarnings(t *testing.T) {
	tpl := compile(t, st.Decl{"@type": st.TypeObject, "?": num()})
	n, warnings, err := tpl.Parse([]byte(`{"a":1,"a":2}`), st.DecodeOpt{OnDuplicateKey: st.Warn})
	require.NoError(t, err)
	require.Len(t, warnings, 1)
	assert.Equal(t, []string{"a"}, n.(*st.DynamicKey).IDs())
	assert.Equal(t, st.ObjectOf("a", 2.0), n.ToJSON())

	_, _, err = tpl.Parse([]byte(`{`), st.DecodeOpt{})
	assert.Error(t, err)
}

func TestMarshal_Pretty(t *testing.T) {
	tpl := compile(t, st.Decl{
		"@type": st.TypeObject,
		"name":  str(),
		"tags":  st.Decl{"@type": st.TypeArray, "*": str()},
	})
	n := tpl.Create(map[string]any{"name": "n", "tags": []any{"a"}})

	out, err := st.Marshal(n, st.EncodeOpt{Pretty: true})
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"name\": \"n\",\n  \"tags\": [\n    \"a\"\n  ]\n}", string(out))
}
