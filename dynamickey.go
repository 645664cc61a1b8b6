package skematree

import "slices"

// DynamicKey is an object whose keys are ids assigned at runtime. Children
// are stored in insertion order, like a Sequence.
type DynamicKey struct {
	Sequence
}

var (
	_ Container = (*DynamicKey)(nil)
	_ slotOwner = (*DynamicKey)(nil)
)

func (d *DynamicKey) sift(json any) {
	slot := d.slot()
	keys, get := entries(json)
	for _, k := range keys {
		lk := newLink(slot.build(get(k), IDParams(k)))
		lk.id = k
		d.items = append(d.items, lk)
	}
}

// IDs returns the id of every child in order.
func (d *DynamicKey) IDs() []string {
	out := make([]string, len(d.items))
	for i, lk := range d.items {
		out[i] = lk.id
	}
	return out
}

// ByID returns the first child with the id, or nil.
func (d *DynamicKey) ByID(id string) Node {
	if i := d.PosByID(id); i >= 0 {
		return d.items[i].child
	}
	return nil
}

// PosByID returns the index of the first child with the id, or -1.
func (d *DynamicKey) PosByID(id string) int {
	return slices.IndexFunc(d.items, func(lk *link) bool { return lk.id == id })
}

// Contains reports whether n is one of the children.
func (d *DynamicKey) Contains(n Node) bool {
	return slices.IndexFunc(d.items, func(lk *link) bool { return lk.child == n }) >= 0
}

// Push appends a child. Raw JSON needs an id in p; a node that already
// carries an id is accepted as-is. A rejected push is logged and returns nil.
func (d *DynamicKey) Push(v any, p ...Params) Node {
	var params Params
	if len(p) > 0 {
		params = p[0]
	}
	if !params.HasID {
		n, isNode := v.(Node)
		id, has := "", false
		if isNode && n != nil {
			id, has = n.ID()
		}
		if !has {
			d.logger().Error().Msg("push without id rejected")
			return nil
		}
		params = IDParams(id)
	}
	child := d.slot().coerce(v, params)
	if _, has := child.ID(); !has {
		child.base().identify(params.ID)
	}
	lk := newLink(child)
	lk.id = params.ID
	return d.pushLink(lk)
}

// duplicates lists ids carried by more than one child.
func (d *DynamicKey) duplicates() []string {
	seen := map[string]int{}
	var dups []string
	for _, lk := range d.items {
		seen[lk.id]++
		if seen[lk.id] == 2 {
			dups = append(dups, lk.id)
		}
	}
	return dups
}

// ToJSON maps every child by id. Duplicate ids are logged; the last child wins.
func (d *DynamicKey) ToJSON(opts ...EncodeOpt) any {
	return d.serialize(opts, func(opt EncodeOpt) any {
		for _, id := range d.duplicates() {
			d.metrics().duplicateID()
			d.logger().Warn().Str("id", id).Msg("duplicate id in dynamic-key object")
		}
		out := NewObject()
		for _, lk := range d.items {
			out.Set(lk.id, lk.child.ToJSON(opt))
		}
		return out
	})
}
