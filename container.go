package skematree

// slotOwner is implemented by the container kinds so links can route
// replacements back to the slot they occupy.
type slotOwner interface {
	Container
	replaceLink(lk *link, v Node)
}

// link is one attachment of a child to a container slot. The container owns
// it; unlinking removes exactly the handlers this attachment registered.
type link struct {
	child Node
	// id is the slot id in dynamic-key containers.
	id   string
	subs []subscription
}

type subscription struct {
	name EventName
	l    *Listener
}

func newLink(child Node) *link {
	lk := &link{child: child}
	if id, ok := child.ID(); ok {
		lk.id = id
	}
	return lk
}

// listen subscribes owner to the child's events.
func (lk *link) listen(owner slotOwner) {
	child := lk.child
	on := func(name EventName, fn Handler) {
		lk.subs = append(lk.subs, subscription{name: name, l: child.On(name, fn)})
	}
	on(EventChildChange, func(ev Event) {
		owner.Emit(Event{Name: EventChildChange, Op: ev.Op, Key: ev.Key, Value: ev.Value, Old: ev.Old, Origin: ev.Origin})
	})
	on(EventChange, func(ev Event) {
		if ev.Op == OpID {
			if id, ok := ev.Value.(string); ok {
				lk.id = id
			}
		}
		owner.Emit(Event{Name: EventChildChange, Op: ev.Op, Key: ev.Key, Value: ev.Value, Old: ev.Old, Origin: child})
	})
	on(EventReplace, func(ev Event) {
		if v, ok := ev.Value.(Node); ok && v != nil {
			owner.replaceLink(lk, v)
		}
	})
	on(EventResolveUp, func(ev Event) { retry(owner, ev.Pending) })
}

func (lk *link) unlink() {
	for _, s := range lk.subs {
		lk.child.Off(s.name, s.l)
	}
	lk.subs = nil
}

// contains reports whether target is root or one of its descendants.
func contains(root, target Node) bool {
	seen := map[Node]struct{}{}
	var walk func(n Node) bool
	walk = func(n Node) bool {
		if n == target {
			return true
		}
		if _, ok := seen[n]; ok {
			return false
		}
		seen[n] = struct{}{}
		if c, ok := n.(Container); ok {
			for _, child := range c.Children() {
				if walk(child) {
					return true
				}
			}
		}
		return false
	}
	return walk(root)
}

// detach unlinks and tells the child which container let it go.
func detach(owner Node, lk *link) {
	lk.unlink()
	lk.child.Emit(Event{Name: EventRemoveFrom, Container: owner})
}

// settle runs after a child is attached to a live container: the child
// resolves against the container, and what remains is escalated.
func settle(owner Node, child Node) {
	child.ResolveWith(owner)
	if pending := pendingIn(child); len(pending) > 0 {
		owner.base().escalate(pending)
	}
}

// retry offers owner to escalated references and escalates the rest.
func retry(owner Node, pending []*Deferred) {
	var still []*Deferred
	for _, d := range pending {
		if d.State() == RefUnresolved && d.Matches(owner) {
			_ = d.Resolve(owner)
		}
		if d.State() == RefUnresolved {
			still = append(still, d)
		}
	}
	if len(still) > 0 {
		owner.base().escalate(still)
	}
}

// pendingIn lists references in the subtree still waiting for an ancestor.
func pendingIn(n Node) []*Deferred {
	var out []*Deferred
	for _, d := range unresolved(n) {
		if d.State() == RefUnresolved {
			out = append(out, d)
		}
	}
	return out
}

func childrenOf(links []*link) []Node {
	out := make([]Node, len(links))
	for i, lk := range links {
		out[i] = lk.child
	}
	return out
}
