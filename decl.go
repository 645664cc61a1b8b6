package skematree

// Decl is a schema declaration. Keys starting with "@" configure the node
// itself; "*" and "?" declare element schemas for sequences and dynamic-key
// objects; any other key declares a fixed object property.
//
// A sub-declaration may be a Decl, a map[string]any, an *Object or a
// *Template.
type Decl map[string]any

// Declaration is a Decl or an *Object. Fixed properties of an *Object keep
// its key order; those of a Decl are ordered by name.
type Declaration interface {
	declEntries() ([]string, func(string) any)
}

func (d Decl) declEntries() ([]string, func(string) any) { return entries(d) }

func (o *Object) declEntries() ([]string, func(string) any) {
	if o == nil {
		return nil, func(string) any { return nil }
	}
	return entries(o)
}

// Reserved declaration keys.
const (
	KeyType          = "@type"
	KeyRequired      = "@required"
	KeyDefault       = "@default"
	KeyEnum          = "@enum"
	KeyConstraints   = "@constraints"
	KeyRef           = "@ref"
	KeyInputMassager = "@inputMassager"
	KeyToJSON        = "@toJSON"
	KeyFactory       = "@factory"
	KeyClass         = "@class"

	// Elem declares the element schema of a sequence.
	Elem = "*"
	// AnyID declares the element schema of a dynamic-key object.
	AnyID = "?"
)

// Constraint checks a candidate value; a non-nil error rejects it and its
// message becomes the node's error message.
type Constraint func(v any) error

// EnumOption is one labelled enumeration value.
type EnumOption struct {
	Label string
	Value any
}

// Serializer fully replaces a node's structural serialization.
type Serializer func(n Node, opt EncodeOpt) any

// Factory overrides how a container builds the child for a slot.
// Returning nil falls back to the slot template.
type Factory func(json any, p Params) Node

// Ref declares that a node is a placeholder for a value found through an
// ancestor created from Needs.
type Ref struct {
	// To is the template a resolved value is expected to come from. Nodes of
	// that template are accepted as-is when assigned to the slot.
	To func() *Template
	// Needs names the ancestor template that can resolve the reference.
	Needs func() *Template
	// Getter extracts the referenced node from the ancestor. Returning nil
	// leaves the reference unresolved.
	Getter func(RefContext) Node
	// Processor transforms the extracted node before it replaces the
	// placeholder. Defaults to identity.
	Processor func(ProcessContext) Node
}

// RefContext is passed to Ref.Getter.
type RefContext struct {
	StandIn Node
	Needed  Node
}

// ProcessContext is passed to Ref.Processor.
type ProcessContext struct {
	Value   Node
	StandIn Node
	Needed  Node
}

// Params are per-instance construction parameters.
type Params struct {
	ID    string
	HasID bool
	// Unused marks the node as initially not used.
	Unused bool
}

// IDParams returns Params carrying an id.
func IDParams(id string) Params { return Params{ID: id, HasID: true} }
