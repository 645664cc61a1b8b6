package skematree

// RefState is the resolution state of a Deferred.
type RefState int

const (
	// RefUnresolved waits for an ancestor created from Ref.Needs.
	RefUnresolved RefState = iota
	// RefWaiting found its target, but the target is itself a placeholder.
	RefWaiting
	// RefResolved is terminal.
	RefResolved
)

func (s RefState) String() string {
	switch s {
	case RefWaiting:
		return "waiting"
	case RefResolved:
		return "resolved"
	}
	return "unresolved"
}

// Deferred tracks the resolution of one reference. It belongs to the
// placeholder node whose schema declares the reference.
type Deferred struct {
	owner     Node
	ref       *Ref
	state     RefState
	needed    Node
	value     Node
	dep       *Deferred
	observers []func(*Deferred)
}

func newDeferred(owner Node, ref *Ref) *Deferred {
	return &Deferred{owner: owner, ref: ref}
}

func (d *Deferred) State() RefState       { return d.state }
func (d *Deferred) IsResolved() bool      { return d.state == RefResolved }
func (d *Deferred) Owner() Node           { return d.owner }
func (d *Deferred) Value() Node           { return d.value }
func (d *Deferred) Dependency() *Deferred { return d.dep }

// Needs returns the ancestor template this reference resolves against.
func (d *Deferred) Needs() *Template { return d.ref.Needs() }

// Matches reports whether n can resolve the reference.
func (d *Deferred) Matches(n Node) bool { return n != nil && n.Is(d.ref.Needs()) }

// Observe registers fn to run once the reference is resolved.
func (d *Deferred) Observe(fn func(*Deferred)) {
	if d.state == RefResolved {
		fn(d)
		return
	}
	d.observers = append(d.observers, fn)
}

// Resolve extracts the referenced value from needed. It fails with
// ErrAlreadyResolved unless the reference is unresolved, and with
// ErrNoReferenceValue when the getter finds nothing (the reference then stays
// unresolved). A getter result that is itself a placeholder moves the
// reference to RefWaiting until that placeholder resolves. A value that
// contains the placeholder is refused with ErrReferenceCycle.
func (d *Deferred) Resolve(needed Node) error {
	if d.state != RefUnresolved {
		return ErrAlreadyResolved
	}
	b := d.owner.base()
	got := d.ref.Getter(RefContext{StandIn: d.owner, Needed: needed})
	if got == nil {
		b.metrics().reference(refMissing)
		b.logger().Warn().Str("needs", d.Needs().Name()).Msg("reference getter returned no value")
		return ErrNoReferenceValue
	}
	d.needed = needed
	if dep := got.Deferred(); dep != nil && !dep.IsResolved() && dep != d {
		d.state = RefWaiting
		d.dep = dep
		b.metrics().reference(refWaiting)
		dep.Observe(func(dd *Deferred) { _ = d.complete(dd.Value()) })
		return nil
	}
	return d.complete(got)
}

func (d *Deferred) complete(v Node) error {
	processed := v
	if d.ref.Processor != nil {
		if p := d.ref.Processor(ProcessContext{Value: v, StandIn: d.owner, Needed: d.needed}); p != nil {
			processed = p
		}
	}
	b := d.owner.base()
	if contains(processed, d.owner) {
		d.state = RefUnresolved
		d.dep = nil
		b.metrics().reference(refCycle)
		b.logger().Error().Str("needs", d.Needs().Name()).Msg("reference value contains its placeholder, left unresolved")
		return ErrReferenceCycle
	}
	d.value = processed
	d.state = RefResolved
	d.dep = nil

	b.metrics().reference(refResolved)
	b.logger().Debug().Str("needs", d.Needs().Name()).Msg("reference resolved")

	d.owner.Emit(Event{Name: EventReplace, Value: processed})
	obs := d.observers
	d.observers = nil
	for _, fn := range obs {
		fn(d)
	}
	return nil
}
