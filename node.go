package skematree

import (
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Node is one element of a tree built from a Template.
type Node interface {
	Template() *Template
	Schema() *Schema
	Type() Type
	Kind() Kind
	Params() Params

	// Capabilities returns the behaviours installed at construction.
	Capabilities() Capability
	Has(c Capability) bool
	// Is reports whether the node was created from t or a template extended from t.
	Is(t *Template) bool

	On(name EventName, fn Handler) *Listener
	Off(name EventName, l *Listener)
	Emit(ev Event)

	IsRequired() bool
	IsEmpty() bool
	// IsUsed is true for required nodes; optional nodes follow their
	// emptiness unless SetIsUsed overrides it.
	IsUsed() bool
	SetIsUsed(used bool)

	// Validate runs the constraint chain against v and records the first failure.
	Validate(v any) bool
	HasError() bool
	Err() error
	ErrorMessage() string
	AddConstraint(c Constraint)
	EnumValues() []any
	EnumLabels() []string

	ID() (string, bool)
	SetID(id string)
	// UID is unique per identifiable node; uuid.Nil otherwise.
	UID() uuid.UUID

	IsPlaceholder() bool
	Deferred() *Deferred
	// ResolveWith offers needed to every unresolved reference in the subtree.
	ResolveWith(needed Node)

	ToJSON(opts ...EncodeOpt) any

	base() *node
}

// Container is implemented by nodes that own child nodes.
type Container interface {
	Node
	Children() []Node
	// Unresolved lists the references still pending in the subtree.
	Unresolved() []*Deferred
}

type wirer interface{ wire() }

// node holds the state shared by every node kind.
type node struct {
	self   Node
	tpl    *Template
	params Params
	caps   Capability
	ch     channel

	used         bool
	constraints  []Constraint
	err          error
	deferred     *Deferred
	id           string
	uid          uuid.UUID
	repairedFrom *Type
}

func (n *node) init(t *Template, p Params, self Node) {
	n.self = self
	n.tpl = t
	n.params = p
}

// install adds capabilities in order: observable, omittable, deferrable,
// validatable (enum check last) and identifiable when an id was given.
func (n *node) install() {
	s := n.tpl.schema
	n.caps |= CapObservable

	n.caps |= CapOmittable
	n.used = !n.params.Unused && !n.self.IsEmpty()
	n.ch.on(EventChange, func(ev Event) {
		if ev.Op != OpIsUsed {
			n.used = !n.self.IsEmpty()
		}
	})
	n.ch.on(EventChildChange, func(Event) { n.used = !n.self.IsEmpty() })

	if s.ref != nil {
		n.caps |= CapDeferrable
		n.deferred = newDeferred(n.self, s.ref)
	}

	n.caps |= CapValidatable
	n.constraints = s.Constraints()
	if s.enum != nil {
		n.caps |= CapEnumerated
		n.constraints = append(n.constraints, enumConstraint(s))
	}

	if n.params.HasID {
		n.identify(n.params.ID)
	}
	n.caps |= kindCapabilities(n.tpl.Kind())
}

func (n *node) base() *node                     { return n }
func (n *node) Template() *Template             { return n.tpl }
func (n *node) Schema() *Schema                 { return n.tpl.schema }
func (n *node) Type() Type                      { return n.tpl.schema.typ }
func (n *node) Kind() Kind                      { return n.tpl.Kind() }
func (n *node) Params() Params                  { return n.params }
func (n *node) Capabilities() Capability        { return n.caps }
func (n *node) Has(c Capability) bool           { return n.caps.Has(c) }
func (n *node) Is(t *Template) bool             { return n.tpl.Is(t) }
func (n *node) IsRequired() bool                { return n.tpl.schema.required }
func (n *node) logger() *zerolog.Logger         { return &n.tpl.log }
func (n *node) metrics() *Metrics               { return n.tpl.cfg.metrics }
func (n *node) Deferred() *Deferred             { return n.deferred }
func (n *node) Off(name EventName, l *Listener) { n.ch.off(name, l) }

func (n *node) On(name EventName, fn Handler) *Listener { return n.ch.on(name, fn) }

// Emit dispatches ev to the handlers registered when dispatch starts.
func (n *node) Emit(ev Event) {
	if ev.Source == nil {
		ev.Source = n.self
	}
	n.ch.emit(ev)
}

func (n *node) IsUsed() bool { return n.IsRequired() || n.used }

func (n *node) SetIsUsed(used bool) {
	n.used = used
	n.Emit(Event{Name: EventChange, Op: OpIsUsed, Value: used})
}

func (n *node) Validate(v any) bool {
	n.err = nil
	for _, c := range n.constraints {
		if err := c(v); err != nil {
			n.err = err
			return false
		}
	}
	return true
}

func (n *node) HasError() bool { return n.err != nil }
func (n *node) Err() error     { return n.err }

func (n *node) ErrorMessage() string {
	if n.err == nil {
		return ""
	}
	return n.err.Error()
}

// AddConstraint appends a constraint to this node only.
func (n *node) AddConstraint(c Constraint) {
	if c != nil {
		n.constraints = append(n.constraints, c)
	}
}

func (n *node) EnumValues() []any {
	opts := n.tpl.schema.Enum()
	if opts == nil {
		return nil
	}
	out := make([]any, len(opts))
	for i, o := range opts {
		out[i] = o.Value
	}
	return out
}

func (n *node) EnumLabels() []string {
	opts := n.tpl.schema.Enum()
	if opts == nil {
		return nil
	}
	out := make([]string, len(opts))
	for i, o := range opts {
		out[i] = o.Label
	}
	return out
}

func (n *node) ID() (string, bool) { return n.id, n.caps.Has(CapIdentifiable) }

func (n *node) identify(id string) {
	n.caps |= CapIdentifiable
	n.id = id
	if n.uid == uuid.Nil {
		n.uid = uuid.New()
	}
}

// SetID assigns the id and emits a change with op id.
func (n *node) SetID(id string) {
	old, _ := n.ID()
	n.identify(id)
	n.Emit(Event{Name: EventChange, Op: OpID, Value: id, Old: old})
}

func (n *node) UID() uuid.UUID { return n.uid }

func (n *node) IsPlaceholder() bool {
	return n.deferred != nil && !n.deferred.IsResolved()
}

func (n *node) ResolveWith(needed Node) {
	if d := n.deferred; d != nil && d.State() == RefUnresolved && d.Matches(needed) {
		_ = d.Resolve(needed)
	}
	if c, ok := n.self.(Container); ok {
		for _, child := range c.Children() {
			child.ResolveWith(needed)
		}
	}
}

// serialize applies a declared serializer, or the kind's structural encoding.
func (n *node) serialize(opts []EncodeOpt, structural func(EncodeOpt) any) any {
	opt := encodeOpt(opts)
	if s := n.tpl.schema.serializer; s != nil {
		return s(n.self, opt)
	}
	return structural(opt)
}

// escalate hands unresolved references to whoever listens for resolveUp.
func (n *node) escalate(pending []*Deferred) {
	if n.ch.count(EventResolveUp) == 0 {
		n.logger().Warn().Int("pending", len(pending)).Msg("unresolved reference reached the root")
		return
	}
	n.Emit(Event{Name: EventResolveUp, Pending: pending})
}

// unresolved lists the references in n's subtree that are not resolved yet.
func unresolved(n Node) []*Deferred {
	var out []*Deferred
	if d := n.Deferred(); d != nil && !d.IsResolved() {
		out = append(out, d)
	}
	if c, ok := n.(Container); ok {
		for _, child := range c.Children() {
			out = append(out, unresolved(child)...)
		}
	}
	return out
}

// currentValue is what constraints see for a node.
func currentValue(n Node) any {
	if s, ok := n.(*Scalar); ok {
		return s.data
	}
	return n.ToJSON()
}
