package jsonschema

// Constructors for the node shapes codecs emit.

func String() *Schema  { return &Schema{Type: "string"} }
func Integer() *Schema { return &Schema{Type: "integer"} }
func Number() *Schema  { return &Schema{Type: "number"} }
func Boolean() *Schema { return &Schema{Type: "boolean"} }

// Any accepts every value.
func Any() *Schema { return &Schema{} }

// Enum builds a node that is exactly {enum: values}.
func Enum[T any](values ...T) *Schema {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return &Schema{Enum: out}
}

// ArrayOf builds {type: array, items: item}.
func ArrayOf(item *Schema) *Schema {
	return &Schema{Type: "array", Items: item}
}

// MapOf builds an object whose every key maps to value.
func MapOf(value *Schema) *Schema {
	return &Schema{Type: "object", PatternProperties: map[string]*Schema{".*": value}}
}

func OneOf(alts ...*Schema) *Schema { return &Schema{OneOf: alts} }
func AnyOf(alts ...*Schema) *Schema { return &Schema{AnyOf: alts} }

// RefTo builds a reference to a named definition.
func RefTo(name string) *Schema { return &Schema{Ref: DefinitionsPrefix + name} }

// DefinitionsPrefix is prepended to definition names in $ref values.
const DefinitionsPrefix = "#/definitions/"
