package skematree_test

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	st "github.com/reoring/skematree"
	"github.com/reoring/skematree/jsonschema"
)

func catalog(t *testing.T, opts ...st.Option) *st.Template {
	short := func(v any) error {
		if len(v.(string)) > 3 {
			return errors.New("too long")
		}
		return nil
	}
	return compile(t, st.Decl{
		"@type": st.TypeObject,
		"title": st.Decl{"@type": st.TypeString, "@constraints": []st.Constraint{short}},
		"kind":  st.Decl{"@type": st.TypeString, "@enum": []any{"a", "b"}, "@default": "a"},
		"items": st.Decl{"@type": st.TypeArray, "*": num()},
		"attrs": st.Decl{"@type": st.TypeObject, "?": st.Decl{"@type": st.TypeObject, "v": str()}},
	}, opts...)
}

func TestCheck_ReportsEveryProblem(t *testing.T) {
	v := decode(t, `{"title":"long title","kind":"c","items":[1,"x"],"attrs":{"a/b":{"v":1}},"extra":true}`)
	n := catalog(t).Create(v)

	issues := st.Check(n)
	got := map[string]string{}
	for _, it := range issues {
		got[it.Path] = it.Code
	}
	assert.Equal(t, map[string]string{
		"/title":        st.CodeConstraint,
		"/kind":         st.CodeInvalidEnum,
		"/items/1":      st.CodeInvalidType,
		"/attrs/a~1b/v": st.CodeInvalidType,
		"/extra":        st.CodeUnknownKey,
	}, got)

	title := n.(*st.FixedKey).Get("title")
	assert.True(t, title.HasError())
	assert.Equal(t, "too long", title.ErrorMessage())
}

func TestCheck_CleanTree(t *testing.T) {
	n := catalog(t).Create(decode(t, `{"title":"ok","kind":"b","items":[1],"attrs":{}}`))
	assert.Empty(t, st.Check(n))
}

func TestCheck_InvalidTypeParams(t *testing.T) {
	n := compile(t, num()).Create("nope")
	issues := st.Check(n)
	require.Len(t, issues, 1)
	assert.Equal(t, "/", issues[0].Path)
	assert.Equal(t, st.TypeNumber, issues[0].Params["expected"])
	assert.Equal(t, st.TypeString, issues[0].Params["got"])
	assert.Equal(t, "invalid_type at /: invalid type", issues[0].Error())
}

func TestLookup(t *testing.T) {
	n := catalog(t).Create(decode(t, `{"title":"t","items":[1,2],"attrs":{"a/b":{"v":"deep"},"c":{"v":"x"}}}`))

	assert.Equal(t, 2.0, st.Lookup(n, "/items/1").ToJSON())
	assert.Equal(t, "deep", st.Lookup(n, "/attrs/a~1b/v").ToJSON())
	assert.Equal(t, "x", st.Lookup(n, st.Root().Field("attrs").Field("c").Field("v").Pointer()).ToJSON())
	assert.Same(t, n, st.Lookup(n, ""))
	assert.Same(t, n, st.Lookup(n, "/"))
	assert.Nil(t, st.Lookup(n, "/items/9"))
	assert.Nil(t, st.Lookup(n, "/items/x"))
	assert.Nil(t, st.Lookup(n, "/title/deeper"))
	assert.Nil(t, st.Lookup(n, "/missing"))
}

func TestPathRef(t *testing.T) {
	assert.Equal(t, "/", st.Root().Pointer())
	assert.Equal(t, "/a~0b/2/c~1d", st.Root().Field("a~b").Index(2).Field("c/d").Pointer())
	assert.Equal(t, "/x/y", st.At("/x").Field("y").Pointer())

	base := st.Root().Field("a")
	_ = base.Field("left")
	assert.Equal(t, "/a/right", base.Field("right").Pointer())
}

func TestJSONSchemaExport(t *testing.T) {
	tpl := catalog(t, st.WithName("catalog"))
	js := tpl.JSONSchema()

	assert.Equal(t, jsonschema.Draft, js.Schema)
	assert.Equal(t, "catalog", js.Title)
	assert.Equal(t, "object", js.Type)
	assert.Equal(t, []string{"attrs", "items", "kind", "title"}, js.Required)

	kind := js.Properties["kind"]
	assert.Equal(t, "string", kind.Type)
	assert.Equal(t, []any{"a", "b"}, kind.Enum)
	assert.Equal(t, "a", kind.Default)

	assert.Equal(t, "number", js.Properties["items"].Items.Type)

	attrs := js.Properties["attrs"]
	inner, ok := attrs.AdditionalProperties.(*jsonschema.Schema)
	require.True(t, ok)
	assert.Equal(t, "object", inner.Type)
	assert.Contains(t, inner.Properties, "v")
}

func TestMetrics(t *testing.T) {
	m := st.NewMetrics(prometheus.NewRegistry())
	tpl := catalog(t, st.WithMetrics(m))
	n := tpl.Create(decode(t, `{"items":[1,"x"]}`)).(*st.FixedKey)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.TypeMismatches))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.NodesCreated.WithLabelValues("fixedKey")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.NodesCreated.WithLabelValues("sequence")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.NodesCreated.WithLabelValues("dynamicKey")))

	require.Error(t, n.Get("title").(*st.Scalar).Set("toolong"))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ValidationFailures))
}

func TestObject(t *testing.T) {
	o := st.ObjectOf("b", 1, "a", 2)
	o.Set("b", 3)
	o.Set("c", 4)
	assert.Equal(t, []string{"b", "a", "c"}, o.Keys())
	assert.Equal(t, 3, o.Len())

	o.Delete("a")
	o.Delete("missing")
	assert.Equal(t, []string{"b", "c"}, o.Keys())
	assert.Equal(t, map[string]any{"b": 3, "c": 4}, o.Map())

	b, err := o.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, `{"b":3,"c":4}`, string(b))

	assert.Panics(t, func() { st.ObjectOf("odd") })
	assert.Panics(t, func() { st.ObjectOf(1, 2) })
}

func TestTypeOf(t *testing.T) {
	assert.Equal(t, st.TypeNone, st.TypeOf(nil))
	assert.Equal(t, st.TypeBoolean, st.TypeOf(true))
	assert.Equal(t, st.TypeNumber, st.TypeOf(uint16(3)))
	assert.Equal(t, st.TypeString, st.TypeOf("x"))
	assert.Equal(t, st.TypeArray, st.TypeOf([]string{"x"}))
	assert.Equal(t, st.TypeObject, st.TypeOf(map[string]int{}))
	assert.Equal(t, st.TypeObject, st.TypeOf(st.NewObject()))
	assert.Equal(t, st.TypeNone, st.TypeOf(map[int]any{}))
	assert.Equal(t, st.TypeNone, st.TypeOf(compile(t, str()).Create("x")))
}

func TestIssues(t *testing.T) {
	var iss st.Issues
	assert.Equal(t, "", iss.Error())

	iss = st.AppendIssues(iss,
		st.Issue{Path: "/a", Code: st.CodeConstraint},
		st.Issue{Path: "/b", Code: st.CodeInvalidType},
		st.Issue{Path: "/c", Code: st.CodeUnknownKey},
		st.Issue{Path: "/d", Code: st.CodeDuplicateID},
	)
	assert.Equal(t, "constraint at /a; invalid_type at /b; unknown_key at /c; ... (total 4)", iss.Error())

	got, ok := st.AsIssues(st.Issue{Message: "solo"})
	require.True(t, ok)
	assert.Len(t, got, 1)
	assert.Equal(t, "solo", got[0].Error())

	_, ok = st.AsIssues(errors.New("plain"))
	assert.False(t, ok)
}
