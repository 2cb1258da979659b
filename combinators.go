package treecodec

import (
	"github.com/reoring/treecodec/jsonschema"
	"github.com/reoring/treecodec/tree"
)

// Map derives a Codec[E] from c through a pair of conversions. An error
// returned (or a panic raised) by to becomes a decode error; a partial
// input keeps its diagnostic next to the converted value.
func Map[T, E any](c Codec[T], to func(T) (E, error), from func(E) T) Codec[E] {
	return &funcCodec[E]{
		decode: func(v tree.Value) Outcome[E] {
			return FlatMap(c.Decode(v), func(t T) Outcome[E] {
				e, err := to(t)
				if err != nil {
					return Fail[E](err.Error())
				}
				return Success(e)
			})
		},
		encode: func(e E) tree.Value { return c.Encode(from(e)) },
		schema: c.Schema(),
	}
}

// MapOutcome is Map where the conversion may itself fail or be partial.
func MapOutcome[T, E any](c Codec[T], to func(T) Outcome[E], from func(E) T) Codec[E] {
	return &funcCodec[E]{
		decode: func(v tree.Value) Outcome[E] { return FlatMap(c.Decode(v), to) },
		encode: func(e E) tree.Value { return c.Encode(from(e)) },
		schema: c.Schema(),
	}
}

// PreDecode rewrites the input with fixer before decoding, typically to
// migrate a legacy layout. Encoding and schema are those of c.
func PreDecode[T any](c Codec[T], fixer func(tree.Value) tree.Value) Codec[T] {
	return &funcCodec[T]{
		decode: guardDecode(func(v tree.Value) Outcome[T] { return c.Decode(fixer(v)) }),
		encode: c.Encode,
		schema: c.Schema(),
	}
}

// Check adds a decode-time predicate. A value failing pred is kept as a
// partial result with msg as its diagnostic.
func Check[T any](c Codec[T], pred func(T) bool, msg string) Codec[T] {
	return &funcCodec[T]{
		decode: func(v tree.Value) Outcome[T] {
			return FlatMap(c.Decode(v), func(t T) Outcome[T] {
				if pred(t) {
					return Success(t)
				}
				return PartialOf(t, msg)
			})
		},
		encode: c.Encode,
		schema: c.Schema(),
	}
}

// WithSchema post-processes the schema node of c, for example to add a
// description or a default. The node passed to mutate is a copy.
func WithSchema[T any](c Codec[T], mutate func(s *jsonschema.Schema)) Codec[T] {
	base := c.Schema()
	build := func(comp *jsonschema.Composer) *jsonschema.Schema {
		n := comp.Inline(base)
		mutate(n)
		return n
	}
	st := jsonschema.Compose(build)
	if base.IsShared() {
		st = jsonschema.Shared(build)
	}
	return &funcCodec[T]{decode: c.Decode, encode: c.Encode, schema: st}
}

// Describe sets the schema description of c.
func Describe[T any](c Codec[T], description string) Codec[T] {
	return WithSchema(c, func(s *jsonschema.Schema) { s.Description = description })
}

// DispatchByShape decodes mappings with record and everything else with
// prim, and encodes with prim. It lets a type accept both a compact inline
// form and a verbose record form. The schema is anyOf both branches.
func DispatchByShape[T any](prim, record Codec[T]) Codec[T] {
	return DispatchByShapeEncoding(prim, record, prim)
}

// DispatchByShapeEncoding is DispatchByShape with an explicit encoder.
func DispatchByShapeEncoding[T any](prim, record, enc Codec[T]) Codec[T] {
	return &funcCodec[T]{
		decode: func(v tree.Value) Outcome[T] {
			if v.IsMapping() {
				return record.Decode(v)
			}
			return prim.Decode(v)
		},
		encode: enc.Encode,
		schema: jsonschema.Compose(func(c *jsonschema.Composer) *jsonschema.Schema {
			return jsonschema.AnyOf(c.Embed(prim.Schema()), c.Embed(record.Schema()))
		}),
	}
}
