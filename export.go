package skematree

import (
	"strings"

	"github.com/reoring/skematree/jsonschema"
)

// JSONSchema exports the template as a JSON Schema document. Function
// defaults and function enums are evaluated once. Reference slots export
// their own declared type.
func (t *Template) JSONSchema() *jsonschema.Schema {
	js := t.jsonSchema()
	js.Schema = jsonschema.Draft
	js.Title = t.name
	return js
}

func (t *Template) jsonSchema() *jsonschema.Schema {
	s := t.schema
	js := &jsonschema.Schema{Type: strings.ToLower(s.typ.String())}
	if s.hasDefault {
		js.Default = s.Default()
	}
	for _, o := range s.Enum() {
		js.Enum = append(js.Enum, o.Value)
	}
	if s.ref != nil {
		js.Description = "reference resolved through " + s.ref.Needs().Name()
	}
	switch t.Kind() {
	case KindSequence:
		js.Items = s.subs[Elem].jsonSchema()
	case KindDynamicKey:
		js.AdditionalProperties = s.subs[AnyID].jsonSchema()
	case KindFixedKey:
		js.Properties = make(map[string]*jsonschema.Schema, len(s.keys))
		for _, k := range s.keys {
			sub := s.subs[k]
			js.Properties[k] = sub.jsonSchema()
			if sub.schema.required {
				js.Required = append(js.Required, k)
			}
		}
	}
	return js
}
