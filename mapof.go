package treecodec

import (
	"cmp"
	"maps"
	"slices"

	"github.com/reoring/treecodec/jsonschema"
	"github.com/reoring/treecodec/tree"
)

// Entry is one key/value pair of a decoded mapping.
type Entry[K, V any] struct {
	Key   K
	Value V
}

// MapOf decodes a mapping into its entries, in document order. Keys are
// decoded from their string form with kc. Key and value failures are
// collected per entry into a partial result. When two keys decode to the
// same K the first entry is kept.
//
// Encoding writes entries in slice order; a later entry whose key encodes to
// an existing key overwrites that value in place.
func MapOf[K comparable, V any](kc Codec[K], vc Codec[V]) Codec[[]Entry[K, V]] {
	return &funcCodec[[]Entry[K, V]]{
		decode: func(v tree.Value) Outcome[[]Entry[K, V]] {
			m, ok := v.Map()
			if !ok {
				return Fail[[]Entry[K, V]](shapeMismatch("Map", v))
			}
			out := make([]Entry[K, V], 0, m.Len())
			seen := make(map[K]struct{}, m.Len())
			var errs []string
			m.Range(func(raw string, item tree.Value) bool {
				ko := kc.Decode(tree.String(raw))
				if msg, bad := ko.Err(); bad {
					errs = append(errs, keyErrors(raw, msg))
				}
				key, keyOK := ko.Result()
				vo := vc.Decode(item)
				if msg, bad := vo.Err(); bad {
					errs = append(errs, fieldErrors(raw, msg))
				}
				val, valOK := vo.Result()
				if !keyOK || !valOK {
					return true
				}
				if _, dup := seen[key]; dup {
					return true
				}
				seen[key] = struct{}{}
				out = append(out, Entry[K, V]{Key: key, Value: val})
				return true
			})
			if len(errs) > 0 {
				return PartialOf(out, joinErrors(errs))
			}
			return Success(out)
		},
		encode: func(entries []Entry[K, V]) tree.Value {
			m := tree.NewMapping()
			for _, e := range entries {
				m.Set(keyText(kc.Encode(e.Key)), vc.Encode(e.Value))
			}
			return m.Value()
		},
		schema: jsonschema.Compose(func(c *jsonschema.Composer) *jsonschema.Schema {
			return jsonschema.MapOf(c.Embed(vc.Schema()))
		}),
	}
}

func keyText(v tree.Value) string {
	if s, ok := v.Str(); ok {
		return s
	}
	return v.Text()
}

// SortedMapOf is MapOf materialized into a Go map. Encoding emits keys in
// ascending order so output is deterministic.
func SortedMapOf[K cmp.Ordered, V any](kc Codec[K], vc Codec[V]) Codec[map[K]V] {
	return Map(MapOf(kc, vc),
		func(entries []Entry[K, V]) (map[K]V, error) {
			out := make(map[K]V, len(entries))
			for _, e := range entries {
				out[e.Key] = e.Value
			}
			return out, nil
		},
		func(m map[K]V) []Entry[K, V] {
			out := make([]Entry[K, V], 0, len(m))
			for _, k := range slices.Sorted(maps.Keys(m)) {
				out = append(out, Entry[K, V]{Key: k, Value: m[k]})
			}
			return out
		})
}

// StringMap is SortedMapOf with plain string keys.
func StringMap[V any](vc Codec[V]) Codec[map[string]V] {
	return SortedMapOf(String(), vc)
}
