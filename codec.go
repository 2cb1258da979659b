package treecodec

import (
	"github.com/reoring/treecodec/jsonschema"
	"github.com/reoring/treecodec/tree"
)

// Codec converts between T and tree values and describes the accepted shape.
//
// Codecs are immutable once built and safe for concurrent use. Decode never
// panics on bad input; problems are reported through the Outcome.
type Codec[T any] interface {
	Decode(v tree.Value) Outcome[T]
	Encode(v T) tree.Value
	Schema() *jsonschema.SchemaType
}

// funcCodec is the closure-backed Codec most combinators return.
type funcCodec[T any] struct {
	decode func(tree.Value) Outcome[T]
	encode func(T) tree.Value
	schema *jsonschema.SchemaType
}

func (c *funcCodec[T]) Decode(v tree.Value) Outcome[T]  { return c.decode(v) }
func (c *funcCodec[T]) Encode(v T) tree.Value            { return c.encode(v) }
func (c *funcCodec[T]) Schema() *jsonschema.SchemaType { return c.schema }

// New builds a leaf codec from a decode function, an encode function and a
// schema. A nil schema means "any value". Panics raised by decode are
// reported as errors.
func New[T any](decode func(tree.Value) Outcome[T], encode func(T) tree.Value, schema *jsonschema.Schema) Codec[T] {
	if schema == nil {
		schema = jsonschema.Any()
	}
	return &funcCodec[T]{
		decode: guardDecode(decode),
		encode: encode,
		schema: jsonschema.Of(schema),
	}
}

// guardDecode converts a panic from caller code into an error outcome.
func guardDecode[T any](decode func(tree.Value) Outcome[T]) func(tree.Value) Outcome[T] {
	return func(v tree.Value) (out Outcome[T]) {
		defer func() {
			if r := recover(); r != nil {
				out = Fail[T](recovered(r))
			}
		}()
		return decode(v)
	}
}

// DecodeValue decodes a plain Go value (maps, slices, primitives) by first
// converting it into a tree.
func DecodeValue[T any](c Codec[T], x any) Outcome[T] {
	v, err := tree.FromAny(x)
	if err != nil {
		return Fail[T](err.Error())
	}
	return c.Decode(v)
}
