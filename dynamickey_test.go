package skematree_test

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	st "github.com/reoring/skematree"
)

func dictionary(t *testing.T, opts ...st.Option) *st.Template {
	return compile(t, st.Decl{"@type": st.TypeObject, "?": str()}, opts...)
}

func TestDynamicKey_KeepsDocumentOrder(t *testing.T) {
	n := dictionary(t).Create(decode(t, `{"foo":"abcd","bar":"efgh"}`)).(*st.DynamicKey)

	assert.Equal(t, st.KindDynamicKey, n.Kind())
	assert.Equal(t, []string{"foo", "bar"}, n.IDs())
	id, ok := n.Get(1).ID()
	assert.True(t, ok)
	assert.Equal(t, "bar", id)

	out, err := st.Marshal(n)
	require.NoError(t, err)
	assert.Equal(t, `{"foo":"abcd","bar":"efgh"}`, string(out))
}

func TestDynamicKey_Lookup(t *testing.T) {
	n := dictionary(t).Create(st.ObjectOf("foo", "a", "bar", "b")).(*st.DynamicKey)

	assert.Equal(t, "b", n.ByID("bar").ToJSON())
	assert.Equal(t, 1, n.PosByID("bar"))
	assert.Equal(t, -1, n.PosByID("nope"))
	assert.Nil(t, n.ByID("nope"))
	assert.True(t, n.Contains(n.Get(0)))
	assert.False(t, n.Contains(compile(t, str()).Create("x")))
}

func TestDynamicKey_PushNeedsID(t *testing.T) {
	n := dictionary(t).Create(nil).(*st.DynamicKey)
	rec := listen(n, st.EventChange)

	assert.Nil(t, n.Push("raw"))
	assert.Zero(t, n.Len())
	assert.Empty(t, rec.events)

	child := n.Push("v", st.IDParams("k"))
	require.NotNil(t, child)
	id, ok := child.ID()
	assert.True(t, ok)
	assert.Equal(t, "k", id)
	assert.Equal(t, 1, rec.count(st.EventChange, st.OpAdd))

	carried := n.Template().Schema().Sub(st.AnyID).CreateWith("w", st.IDParams("carried"))
	assert.Same(t, carried, n.Push(carried))
	assert.Equal(t, []string{"k", "carried"}, n.IDs())
}

func TestDynamicKey_IdentifiableChildren(t *testing.T) {
	n := dictionary(t).Create(st.ObjectOf("a", "1", "b", "2")).(*st.DynamicKey)
	a, b := n.Get(0), n.Get(1)

	assert.True(t, a.Has(st.CapIdentifiable))
	assert.NotEqual(t, a.UID(), b.UID())
	assert.False(t, n.Has(st.CapIdentifiable))
	assert.True(t, n.Has(st.CapDynamicKey|st.CapSequence|st.CapContainer))
}

func TestDynamicKey_SetIDRenamesSlot(t *testing.T) {
	n := dictionary(t).Create(st.ObjectOf("a", "1")).(*st.DynamicKey)
	rec := listen(n, st.EventChildChange)

	n.Get(0).SetID("renamed")
	assert.Equal(t, []string{"renamed"}, n.IDs())
	assert.Equal(t, 1, rec.count(st.EventChildChange, st.OpID))
	assert.Equal(t, st.ObjectOf("renamed", "1"), n.ToJSON())
}

func TestDynamicKey_SetKeepsID(t *testing.T) {
	n := dictionary(t).Create(st.ObjectOf("a", "1")).(*st.DynamicKey)
	require.NoError(t, n.Set(0, "2"))

	id, ok := n.Get(0).ID()
	assert.True(t, ok)
	assert.Equal(t, "a", id)
	assert.Equal(t, st.ObjectOf("a", "2"), n.ToJSON())
}

func TestDynamicKey_DuplicateIDs(t *testing.T) {
	m := st.NewMetrics(prometheus.NewRegistry())
	n := dictionary(t, st.WithMetrics(m)).Create(st.ObjectOf("foo", "first", "bar", "x")).(*st.DynamicKey)

	n.Push("second", st.IDParams("foo"))
	assert.Equal(t, []string{"foo", "bar", "foo"}, n.IDs())
	assert.Equal(t, 0, n.PosByID("foo"))

	assert.Equal(t, st.ObjectOf("foo", "second", "bar", "x"), n.ToJSON())
	assert.Equal(t, 1.0, testutil.ToFloat64(m.DuplicateIDs))

	issues := st.Check(n)
	require.Len(t, issues, 1)
	assert.Equal(t, st.CodeDuplicateID, issues[0].Code)
	assert.Equal(t, "/foo", issues[0].Path)
	assert.Equal(t, "duplicate id foo", issues[0].Message)
}

func TestDynamicKey_SharedNodeKeepsEachSlotID(t *testing.T) {
	n := dictionary(t).Create(st.ObjectOf("a", "v")).(*st.DynamicKey)
	shared := n.Get(0)

	n.Push(shared, st.IDParams("b"))
	assert.Equal(t, []string{"a", "b"}, n.IDs())
	assert.Same(t, shared, n.ByID("b"))
	id, _ := shared.ID()
	assert.Equal(t, "a", id)
}
