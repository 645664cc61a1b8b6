package skematree

import (
	"fmt"
	"slices"
)

// Sequence is an ordered, index-addressed container.
type Sequence struct {
	node
	elem  string
	items []*link
}

var (
	_ Container = (*Sequence)(nil)
	_ slotOwner = (*Sequence)(nil)
)

func (s *Sequence) sift(json any) {
	slot := s.slot()
	for _, v := range elementsOf(json) {
		s.items = append(s.items, newLink(slot.build(v, Params{})))
	}
}

func (s *Sequence) slot() *Template { return s.tpl.schema.subs[s.elem] }

func (s *Sequence) owner() slotOwner { return s.self.(slotOwner) }

// wire attaches the initial children and resolves them against the container.
func (s *Sequence) wire() {
	owner := s.owner()
	s.ch.on(eventAddedElement, func(ev Event) {
		if lk, ok := ev.Value.(*link); ok {
			lk.listen(owner)
		}
	})
	for _, lk := range s.items {
		lk.listen(owner)
	}
	for _, child := range s.Children() {
		child.ResolveWith(s.self)
	}
}

func (s *Sequence) Len() int      { return len(s.items) }
func (s *Sequence) IsEmpty() bool { return len(s.items) == 0 }

// Get returns the child at i, or nil when i is out of range.
func (s *Sequence) Get(i int) Node {
	if i < 0 || i >= len(s.items) {
		return nil
	}
	return s.items[i].child
}

// Children returns a copy of the children in order.
func (s *Sequence) Children() []Node { return childrenOf(s.items) }

// ToArray returns a copy of the children; changing it does not affect s.
func (s *Sequence) ToArray() []Node { return s.Children() }

// Each calls fn for every child of a snapshot, optionally sorted by cmp.
func (s *Sequence) Each(fn func(i int, n Node), cmp ...func(a, b Node) int) {
	items := s.Children()
	if len(cmp) > 0 && cmp[0] != nil {
		slices.SortStableFunc(items, cmp[0])
	}
	for i, n := range items {
		fn(i, n)
	}
}

func (s *Sequence) Unresolved() []*Deferred { return unresolved(s.self) }

// Push appends v, raw JSON or a node, and returns the child added.
func (s *Sequence) Push(v any, p ...Params) Node {
	var params Params
	if len(p) > 0 {
		params = p[0]
	}
	return s.pushLink(newLink(s.slot().coerce(v, params)))
}

func (s *Sequence) pushLink(lk *link) Node {
	child := lk.child
	s.items = append(s.items, lk)
	idx := len(s.items) - 1
	s.Emit(Event{Name: eventAddedElement, Key: idx, Value: lk})
	s.Emit(Event{Name: EventChange, Op: OpAdd, Key: idx, Value: child})
	settle(s.self, child)
	return child
}

// Remove detaches the child at i and closes the gap.
func (s *Sequence) Remove(i int) error {
	if i < 0 || i >= len(s.items) {
		return fmt.Errorf("%w: %d", ErrIndexOutOfRange, i)
	}
	lk := s.items[i]
	detach(s.self, lk)
	s.items = slices.Delete(s.items, i, i+1)
	s.Emit(Event{Name: EventChange, Op: OpRemove, Key: i, Old: lk.child})
	return nil
}

// Set replaces the child at i.
func (s *Sequence) Set(i int, v any) error {
	if i < 0 || i >= len(s.items) {
		return fmt.Errorf("%w: %d", ErrIndexOutOfRange, i)
	}
	var p Params
	if id := s.items[i].id; s.elem == AnyID {
		p = IDParams(id)
	}
	s.swap(i, s.slot().coerce(v, p))
	return nil
}

func (s *Sequence) swap(i int, child Node) {
	old := s.items[i]
	detach(s.self, old)
	lk := newLink(child)
	if s.elem == AnyID {
		lk.id = old.id
	}
	lk.listen(s.owner())
	s.items[i] = lk
	s.Emit(Event{Name: EventChange, Op: OpSet, Key: i, Value: child, Old: old.child})
	settle(s.self, child)
}

func (s *Sequence) replaceLink(lk *link, v Node) {
	i := slices.Index(s.items, lk)
	if i < 0 {
		return
	}
	if contains(v, s.self) {
		s.logger().Error().Int("index", i).Msg("replacement contains its container, ignored")
		return
	}
	if !s.slot().accepts(v) {
		s.logger().Warn().Int("index", i).Str("got", v.Template().Name()).Msg("replacement is not of the slot template")
	}
	s.swap(i, v)
}

func (s *Sequence) ToJSON(opts ...EncodeOpt) any {
	return s.serialize(opts, func(opt EncodeOpt) any {
		out := make([]any, len(s.items))
		for i, lk := range s.items {
			out[i] = lk.child.ToJSON(opt)
		}
		return out
	})
}
