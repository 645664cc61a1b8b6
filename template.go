package skematree

import (
	"fmt"

	"github.com/rs/zerolog"
)

// Kind is the node variant a template instantiates.
type Kind int

const (
	KindScalar Kind = iota
	KindSequence
	KindFixedKey
	KindDynamicKey
)

func (k Kind) String() string {
	switch k {
	case KindSequence:
		return "sequence"
	case KindFixedKey:
		return "fixedKey"
	case KindDynamicKey:
		return "dynamicKey"
	}
	return "scalar"
}

// Template is a compiled declaration from which nodes are created.
// Templates are immutable and safe to share.
type Template struct {
	name    string
	schema  *Schema
	cfg     *config
	log     zerolog.Logger
	lineage map[*Template]struct{}
}

// Compile parses a declaration into a template.
func Compile(decl Declaration, opts ...Option) (*Template, error) {
	cfg := newConfig(nil, opts)
	t, err := compile(nil, decl, cfg, cfg.name)
	if err != nil {
		return nil, fmt.Errorf("compile %s: %w", cfg.name, err)
	}
	return t, nil
}

// MustCompile is like Compile but panics on error.
func MustCompile(decl Declaration, opts ...Option) *Template {
	t, err := Compile(decl, opts...)
	if err != nil {
		panic(err)
	}
	return t
}

// Extend returns a template that inherits t's schema and merges decl into it.
// Nodes of the new template also satisfy Is(t).
func (t *Template) Extend(decl Declaration, opts ...Option) (*Template, error) {
	cfg, name := t.cfg, t.name
	if len(opts) > 0 {
		cfg = newConfig(t.cfg, opts)
		name = cfg.name
	}
	nt, err := compile(t, decl, cfg, name)
	if err != nil {
		return nil, fmt.Errorf("extend %s: %w", t.name, err)
	}
	return nt, nil
}

// MustExtend is like Extend but panics on error.
func (t *Template) MustExtend(decl Declaration, opts ...Option) *Template {
	nt, err := t.Extend(decl, opts...)
	if err != nil {
		panic(err)
	}
	return nt
}

func compile(parent *Template, decl Declaration, cfg *config, name string) (*Template, error) {
	t := &Template{
		name:    name,
		cfg:     cfg,
		log:     cfg.logger.With().Str("template", name).Logger(),
		lineage: map[*Template]struct{}{},
	}
	var ps *Schema
	if parent != nil {
		for anc := range parent.lineage {
			t.lineage[anc] = struct{}{}
		}
		ps = parent.schema
	}
	t.lineage[t] = struct{}{}
	s, err := extendSchema(ps, decl, t)
	if err != nil {
		return nil, err
	}
	t.schema = s
	return t, nil
}

func (t *Template) Name() string    { return t.name }
func (t *Template) Schema() *Schema { return t.schema }
func (t *Template) Kind() Kind      { return t.schema.Kind() }

// Is reports whether t is other or was extended from it.
func (t *Template) Is(other *Template) bool {
	if t == nil || other == nil {
		return false
	}
	_, ok := t.lineage[other]
	return ok
}

// Create builds a node tree from json.
func (t *Template) Create(json any) Node { return t.CreateWith(json, Params{}) }

// CreateWith builds a node tree from json with per-instance parameters.
// Construction never fails: mistyped input is logged and replaced by the
// default.
func (t *Template) CreateWith(json any, p Params) Node {
	n := t.create(json, p)
	if pending := unresolved(n); len(pending) > 0 {
		t.log.Debug().Int("pending", len(pending)).Msg("tree has unresolved references")
	}
	return n
}

// build creates the node for a slot, honouring a declared factory.
func (t *Template) build(json any, p Params) Node {
	if f := t.schema.factory; f != nil {
		if n := f(json, p); n != nil {
			return n
		}
	}
	return t.create(json, p)
}

// coerce turns v into a node acceptable for slots of t. Nodes of the wrong
// template are rebuilt from their JSON.
func (t *Template) coerce(v any, p Params) Node {
	if n, ok := v.(Node); ok && n != nil {
		if t.accepts(n) {
			return n
		}
		if id, has := n.ID(); has && !p.HasID {
			p = IDParams(id)
		}
		return t.build(n.ToJSON(), p)
	}
	return t.build(v, p)
}

// accepts is the slot compatibility check: the node comes from t, or from
// the template t's reference points to.
func (t *Template) accepts(n Node) bool {
	if n.Is(t) {
		return true
	}
	if r := t.schema.ref; r != nil && r.To != nil {
		return n.Is(r.To())
	}
	return false
}

// absent reports whether v counts as no input: null, or the zero value of a
// primitive type.
func absent(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case string:
		return x == ""
	case bool:
		return !x
	case float64:
		return x == 0
	}
	return false
}

func (t *Template) create(json any, p Params) Node {
	s := t.schema
	if s.massager != nil {
		json = s.massager(json)
	}
	json = normalize(json)
	repaired, got := false, TypeOf(json)
	if got != s.typ {
		if absent(json) {
			p.Unused = true
		} else {
			repaired = true
			t.cfg.metrics.typeMismatch()
			t.log.Warn().
				Str("expected", s.typ.String()).
				Str("got", got.String()).
				Msg("type mismatch, using default")
		}
		json = s.fallback()
	}

	var n Node
	switch t.Kind() {
	case KindSequence:
		sq := &Sequence{}
		sq.init(t, p, sq)
		sq.elem = Elem
		sq.sift(json)
		n = sq
	case KindDynamicKey:
		dk := &DynamicKey{}
		dk.init(t, p, dk)
		dk.elem = AnyID
		dk.sift(json)
		n = dk
	case KindFixedKey:
		fk := &FixedKey{}
		fk.init(t, p, fk)
		fk.sift(json)
		n = fk
	default:
		sc := &Scalar{}
		sc.init(t, p, sc)
		sc.data = json
		n = sc
	}
	b := n.base()
	if repaired {
		b.repairedFrom = &got
	}
	b.install()
	if c, ok := n.(wirer); ok {
		c.wire()
	}
	t.cfg.metrics.nodeCreated(t.Kind())
	return n
}
