package skematree_test

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	st "github.com/reoring/skematree"
)

func quiet() st.Option { return st.WithLogger(zerolog.Nop()) }

func compile(t *testing.T, d st.Decl, opts ...st.Option) *st.Template {
	t.Helper()
	tpl, err := st.Compile(d, append([]st.Option{quiet()}, opts...)...)
	require.NoError(t, err)
	return tpl
}

func decode(t *testing.T, s string) any {
	t.Helper()
	v, warnings, err := st.Decode([]byte(s), st.DecodeOpt{})
	require.NoError(t, err)
	require.Empty(t, warnings)
	return v
}

func str() st.Decl { return st.Decl{"@type": st.TypeString} }
func num() st.Decl { return st.Decl{"@type": st.TypeNumber} }

// recorder counts events by name and op.
type recorder struct {
	events []st.Event
}

func (r *recorder) handler(ev st.Event) { r.events = append(r.events, ev) }

func (r *recorder) count(name st.EventName, op st.Op) int {
	n := 0
	for _, ev := range r.events {
		if ev.Name == name && (op == "" || ev.Op == op) {
			n++
		}
	}
	return n
}

func listen(n st.Node, names ...st.EventName) *recorder {
	r := &recorder{}
	for _, name := range names {
		n.On(name, r.handler)
	}
	return r
}
