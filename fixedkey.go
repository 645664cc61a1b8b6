package skematree

import (
	"fmt"
	"slices"
)

// FixedKey is an object whose keys are the declared properties.
type FixedKey struct {
	node
	slots map[string]*link
	// extra holds input keys that were not declared; they are dropped.
	extra []string
}

var (
	_ Container = (*FixedKey)(nil)
	_ slotOwner = (*FixedKey)(nil)
)

func (f *FixedKey) sift(json any) {
	s := f.tpl.schema
	f.slots = make(map[string]*link, len(s.keys))
	for _, k := range s.keys {
		v, _ := member(json, k)
		f.slots[k] = newLink(s.subs[k].build(v, Params{}))
	}
	keys, _ := entries(json)
	for _, k := range keys {
		if _, ok := f.slots[k]; !ok {
			f.extra = append(f.extra, k)
		}
	}
}

func (f *FixedKey) wire() {
	owner := f.self.(slotOwner)
	for _, k := range f.tpl.schema.keys {
		f.slots[k].listen(owner)
	}
	for _, child := range f.Children() {
		child.ResolveWith(f.self)
	}
}

// Keys returns the declared keys in declaration order.
func (f *FixedKey) Keys() []string { return f.tpl.schema.Keys() }

// IsEmpty is true only for an object that declares no keys.
func (f *FixedKey) IsEmpty() bool { return len(f.tpl.schema.keys) == 0 }

// Get returns the child for key, or nil for an undeclared key.
func (f *FixedKey) Get(key string) Node {
	lk, ok := f.slots[key]
	if !ok {
		return nil
	}
	return lk.child
}

func (f *FixedKey) Children() []Node {
	out := make([]Node, 0, len(f.slots))
	for _, k := range f.tpl.schema.keys {
		out = append(out, f.slots[k].child)
	}
	return out
}

func (f *FixedKey) Unresolved() []*Deferred { return unresolved(f.self) }

// Each calls fn for every key, optionally visiting keys sorted by cmp.
func (f *FixedKey) Each(fn func(key string, n Node), cmp ...func(a, b string) int) {
	keys := f.Keys()
	if len(cmp) > 0 && cmp[0] != nil {
		slices.SortStableFunc(keys, cmp[0])
	}
	for _, k := range keys {
		if lk, ok := f.slots[k]; ok {
			fn(k, lk.child)
		}
	}
}

// Set replaces the child for a declared key. Undeclared keys are logged and
// ignored.
func (f *FixedKey) Set(key string, v any) error {
	if _, ok := f.slots[key]; !ok {
		f.logger().Error().Str("key", key).Msg("set on undeclared key ignored")
		return fmt.Errorf("%w: %q", ErrUnknownKey, key)
	}
	f.swap(key, f.tpl.schema.subs[key].coerce(v, Params{}))
	return nil
}

func (f *FixedKey) swap(key string, child Node) {
	old := f.slots[key]
	detach(f.self, old)
	lk := newLink(child)
	lk.listen(f.self.(slotOwner))
	f.slots[key] = lk
	f.Emit(Event{Name: EventChange, Op: OpSet, Key: key, Value: child, Old: old.child})
	settle(f.self, child)
}

func (f *FixedKey) replaceLink(lk *link, v Node) {
	for k, cur := range f.slots {
		if cur != lk {
			continue
		}
		if contains(v, f.self) {
			f.logger().Error().Str("key", k).Msg("replacement contains its container, ignored")
			return
		}
		if !f.tpl.schema.subs[k].accepts(v) {
			f.logger().Warn().Str("key", k).Str("got", v.Template().Name()).Msg("replacement is not of the slot template")
		}
		f.swap(k, v)
		return
	}
}

func (f *FixedKey) ToJSON(opts ...EncodeOpt) any {
	return f.serialize(opts, func(opt EncodeOpt) any {
		out := NewObject()
		for _, k := range f.tpl.schema.keys {
			child := f.slots[k].child
			if opt.IgnoreUnused && !child.IsUsed() {
				continue
			}
			out.Set(k, child.ToJSON(opt))
		}
		return out
	})
}
