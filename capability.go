package skematree

import "strings"

// Capability is a set of behaviours installed on a node at construction.
type Capability uint16

const (
	CapObservable Capability = 1 << iota
	CapOmittable
	CapDeferrable
	CapValidatable
	CapEnumerated
	CapIdentifiable
	CapContainer
	CapSequence
	CapFixedKey
	CapDynamicKey
)

var capabilityNames = []struct {
	c    Capability
	name string
}{
	{CapObservable, "observable"},
	{CapOmittable, "omittable"},
	{CapDeferrable, "deferrable"},
	{CapValidatable, "validatable"},
	{CapEnumerated, "enumerated"},
	{CapIdentifiable, "identifiable"},
	{CapContainer, "container"},
	{CapSequence, "sequence"},
	{CapFixedKey, "fixedKey"},
	{CapDynamicKey, "dynamicKey"},
}

// Has reports whether every capability in o is present in c.
func (c Capability) Has(o Capability) bool { return c&o == o }

func (c Capability) String() string {
	var parts []string
	for _, cn := range capabilityNames {
		if c.Has(cn.c) {
			parts = append(parts, cn.name)
		}
	}
	return strings.Join(parts, "|")
}

// kindCapabilities are fixed by the node kind.
func kindCapabilities(k Kind) Capability {
	switch k {
	case KindSequence:
		return CapContainer | CapSequence
	case KindFixedKey:
		return CapContainer | CapFixedKey
	case KindDynamicKey:
		return CapContainer | CapSequence | CapDynamicKey
	}
	return 0
}
