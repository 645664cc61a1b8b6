// Package codec bundles input canonicalisation with the check that rejects
// values it cannot canonicalise, ready to be merged into a declaration.
package codec

import (
	"github.com/reoring/skematree"
)

// Codec turns wire values into their canonical wire form.
type Codec struct {
	Name string
	Type skematree.Type
	// Canonical returns v rewritten, or v unchanged when it cannot be parsed.
	Canonical func(v any) any
	// Check rejects values Canonical could not handle.
	Check skematree.Constraint
}

// Decl returns d extended with the codec's type, massager and constraint.
// Constraints already in d run after the codec check. d is not modified.
func (c Codec) Decl(d skematree.Decl) skematree.Decl {
	out := make(skematree.Decl, len(d)+3)
	for k, v := range d {
		out[k] = v
	}
	out[skematree.KeyType] = c.Type
	out[skematree.KeyInputMassager] = c.Canonical
	cs := []skematree.Constraint{c.Check}
	if prev, ok := d[skematree.KeyConstraints].([]skematree.Constraint); ok {
		cs = append(cs, prev...)
	}
	out[skematree.KeyConstraints] = cs
	return out
}

// Lookup returns the built-in codec with the given name.
func Lookup(name string) (Codec, bool) {
	switch name {
	case "rfc3339":
		return RFC3339(), true
	}
	return Codec{}, false
}
