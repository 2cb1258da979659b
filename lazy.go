package treecodec

import (
	"sync"

	"github.com/reoring/treecodec/jsonschema"
	"github.com/reoring/treecodec/tree"
)

// lazyCodec defers building its target until first use.
type lazyCodec[T any] struct {
	once   sync.Once
	supply func() Codec[T]
	target Codec[T]
	schema *jsonschema.SchemaType
}

// Lazy wraps a codec constructed on first use. The supplier runs at most
// once even when first use is raced. Schemas of lazy codecs are emitted by
// reference, so codec graphs that refer back to themselves stay finite.
func Lazy[T any](supply func() Codec[T]) Codec[T] {
	l := &lazyCodec[T]{supply: supply}
	l.schema = jsonschema.Alias(func() *jsonschema.SchemaType { return l.get().Schema() })
	return l
}

// Recursive builds a codec that may refer to itself:
//
//	var node Codec[*Node] = Recursive(func(self Codec[*Node]) Codec[*Node] {
//		return Record(newNode, FieldOf(String(), "name", ...), OptionalFieldOf(self, "child", ...))
//	})
func Recursive[T any](f func(self Codec[T]) Codec[T]) Codec[T] {
	var l *lazyCodec[T]
	l = &lazyCodec[T]{supply: func() Codec[T] { return f(l) }}
	l.schema = jsonschema.Alias(func() *jsonschema.SchemaType { return l.get().Schema() })
	return l
}

func (l *lazyCodec[T]) get() Codec[T] {
	l.once.Do(func() { l.target = l.supply() })
	return l.target
}

func (l *lazyCodec[T]) Decode(v tree.Value) (out Outcome[T]) {
	defer func() {
		if r := recover(); r != nil {
			out = Fail[T](recovered(r))
		}
	}()
	return l.get().Decode(v)
}

func (l *lazyCodec[T]) Encode(v T) tree.Value { return l.get().Encode(v) }

func (l *lazyCodec[T]) Schema() *jsonschema.SchemaType { return l.schema }
