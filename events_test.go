package skematree_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	st "github.com/reoring/skematree"
)

func TestEvents_SnapshotDispatch(t *testing.T) {
	n := compile(t, str()).Create("x")
	const custom st.EventName = "custom"

	var calls []string
	var first, second *st.Listener
	first = n.On(custom, func(st.Event) {
		calls = append(calls, "first")
		n.Off(custom, first)
		n.Off(custom, second)
		n.On(custom, func(st.Event) { calls = append(calls, "late") })
	})
	second = n.On(custom, func(st.Event) { calls = append(calls, "second") })

	n.Emit(st.Event{Name: custom})
	assert.Equal(t, []string{"first", "second"}, calls)

	calls = nil
	n.Emit(st.Event{Name: custom})
	assert.Equal(t, []string{"late"}, calls)
}

func TestEvents_SourceIsFilled(t *testing.T) {
	n := compile(t, str()).Create("x")
	var got st.Event
	n.On(st.EventChange, func(ev st.Event) { got = ev })

	n.SetID("id-1")
	assert.Same(t, n, got.Source)
	assert.Equal(t, st.OpID, got.Op)
	assert.Equal(t, "id-1", got.Value)
}

func TestEvents_OffUnknownListenerIsNoop(t *testing.T) {
	a := compile(t, str()).Create("x")
	b := compile(t, str()).Create("y")
	l := b.On(st.EventChange, func(st.Event) {})

	calls := 0
	a.On(st.EventChange, func(st.Event) { calls++ })
	a.Off(st.EventChange, l)
	a.Emit(st.Event{Name: st.EventChange})
	assert.Equal(t, 1, calls)
}

func TestCapabilities(t *testing.T) {
	plain := compile(t, str()).Create("x")
	assert.Equal(t, "observable|omittable|validatable", plain.Capabilities().String())

	enum := compile(t, st.Decl{"@type": st.TypeString, "@enum": []any{"x"}}).Create("x")
	assert.True(t, enum.Has(st.CapEnumerated|st.CapValidatable))

	identified := compile(t, str()).CreateWith("x", st.IDParams("k"))
	assert.True(t, identified.Has(st.CapIdentifiable))
	id, ok := identified.ID()
	assert.True(t, ok)
	assert.Equal(t, "k", id)

	_, ok = plain.ID()
	assert.False(t, ok)
}
