package treecodec

import (
	"strconv"

	"github.com/reoring/treecodec/jsonschema"
	"github.com/reoring/treecodec/tree"
)

// ListOf decodes a sequence element by element. Failing elements do not stop
// the decode: their diagnostics are collected and the elements that decoded
// (including partial elements) form a partial result.
func ListOf[T any](c Codec[T]) Codec[[]T] {
	return &funcCodec[[]T]{
		decode: func(v tree.Value) Outcome[[]T] {
			items, ok := v.Items()
			if !ok {
				return Fail[[]T](shapeMismatch("List", v))
			}
			return decodeItems(c, items)
		},
		encode: func(xs []T) tree.Value { return encodeItems(c, xs) },
		schema: jsonschema.Compose(func(comp *jsonschema.Composer) *jsonschema.Schema {
			return jsonschema.ArrayOf(comp.Embed(c.Schema()))
		}),
	}
}

func decodeItems[T any](c Codec[T], items []tree.Value) Outcome[[]T] {
	out := make([]T, 0, len(items))
	var errs []string
	for i, it := range items {
		o := c.Decode(it)
		if msg, bad := o.Err(); bad {
			errs = append(errs, fieldErrors("["+strconv.Itoa(i)+"]", msg))
		}
		if r, ok := o.Result(); ok {
			out = append(out, r)
		}
	}
	if len(errs) > 0 {
		return PartialOf(out, joinErrors(errs))
	}
	return Success(out)
}

func encodeItems[T any](c Codec[T], xs []T) tree.Value {
	items := make([]tree.Value, len(xs))
	for i, x := range xs {
		items[i] = c.Encode(x)
	}
	return tree.Sequence(items...)
}

// ListOrSingle accepts either a sequence or a single bare element (decoded as
// a one-element list). A one-element list encodes back to the bare element,
// so a [v] sequence does not round-trip structurally.
func ListOrSingle[T any](c Codec[T]) Codec[[]T] {
	return &funcCodec[[]T]{
		decode: func(v tree.Value) Outcome[[]T] {
			if items, ok := v.Items(); ok {
				return decodeItems(c, items)
			}
			return MapValue(c.Decode(v), func(t T) []T { return []T{t} })
		},
		encode: func(xs []T) tree.Value {
			if len(xs) == 1 {
				return c.Encode(xs[0])
			}
			return encodeItems(c, xs)
		},
		schema: jsonschema.Compose(func(comp *jsonschema.Composer) *jsonschema.Schema {
			return jsonschema.OneOf(comp.Embed(c.Schema()), jsonschema.ArrayOf(comp.Embed(c.Schema())))
		}),
	}
}

// SetOf is ListOf dropping repeated values; the first occurrence keeps its
// position.
func SetOf[T comparable](c Codec[T]) Codec[[]T] {
	return MapOutcome(ListOf(c), func(xs []T) Outcome[[]T] {
		seen := make(map[T]struct{}, len(xs))
		out := xs[:0:0]
		for _, x := range xs {
			if _, dup := seen[x]; dup {
				continue
			}
			seen[x] = struct{}{}
			out = append(out, x)
		}
		return Success(out)
	}, func(xs []T) []T { return xs })
}
