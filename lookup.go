package treecodec

import (
	"strings"

	"github.com/reoring/treecodec/jsonschema"
	"github.com/reoring/treecodec/tree"
)

// NamespacedKey identifies a value of an enumerable domain, written
// "namespace:name" or just "name".
type NamespacedKey struct {
	Namespace string
	Name      string
}

// ParseKey splits "ns:name". A key without a colon has an empty namespace.
func ParseKey(s string) NamespacedKey {
	if i := strings.IndexByte(s, ':'); i >= 0 {
		return NamespacedKey{Namespace: s[:i], Name: s[i+1:]}
	}
	return NamespacedKey{Name: s}
}

func (k NamespacedKey) String() string {
	if k.Namespace == "" {
		return k.Name
	}
	return k.Namespace + ":" + k.Name
}

// Keyed is implemented by domain values that know their key.
type Keyed interface {
	Key() NamespacedKey
}

// ConstNamer is optionally implemented by Keyed values declared as named
// constants; the constant name becomes an extra alias.
type ConstNamer interface {
	ConstName() string
}

// LookupEntry registers a value under its canonical key and aliases.
type LookupEntry[V any] struct {
	Key     string
	Aliases []string
	Value   V
}

// LookupOption configures a lookup codec.
type LookupOption[V any] func(*lookupConfig[V])

type lookupConfig[V any] struct {
	filter func(V) bool
}

// WithFilter keeps only the domain values accepted by pred.
func WithFilter[V any](pred func(V) bool) LookupOption[V] {
	return func(c *lookupConfig[V]) { c.filter = pred }
}

// LookupCodec decodes strings into values of an enumerable domain through a
// case-insensitive table of keys and aliases, and encodes values by their
// canonical key.
type LookupCodec[V comparable] struct {
	keys      []string
	table     map[string]int
	values    []V
	canonical []string
	reverse   map[V]int
	schema    *jsonschema.SchemaType
	wildcard  Codec[[]V]
}

// NewLookup builds a lookup codec from explicit entries. Keys and aliases are
// matched case-insensitively; when two entries claim the same key the first
// one keeps it.
func NewLookup[V comparable](entries []LookupEntry[V], opts ...LookupOption[V]) *LookupCodec[V] {
	cfg := lookupConfig[V]{}
	for _, o := range opts {
		o(&cfg)
	}
	l := &LookupCodec[V]{table: map[string]int{}, reverse: map[V]int{}}
	for _, e := range entries {
		if cfg.filter != nil && !cfg.filter(e.Value) {
			continue
		}
		idx, seen := l.reverse[e.Value]
		if !seen {
			idx = len(l.values)
			l.values = append(l.values, e.Value)
			l.canonical = append(l.canonical, e.Key)
			l.reverse[e.Value] = idx
		}
		l.add(e.Key, idx)
		for _, a := range e.Aliases {
			l.add(a, idx)
		}
	}
	l.schema = jsonschema.Compose(func(*jsonschema.Composer) *jsonschema.Schema {
		return jsonschema.Enum(l.keys...)
	})
	l.wildcard = newWildcard(l)
	return l
}

func (l *LookupCodec[V]) add(key string, idx int) {
	if key == "" {
		return
	}
	k := strings.ToLower(key)
	if _, taken := l.table[k]; taken {
		return
	}
	l.table[k] = idx
	l.keys = append(l.keys, k)
}

// LookupOf builds a lookup codec keyed by key(v).
func LookupOf[V comparable](values []V, key func(V) string, opts ...LookupOption[V]) *LookupCodec[V] {
	entries := make([]LookupEntry[V], len(values))
	for i, v := range values {
		entries[i] = LookupEntry[V]{Key: key(v), Value: v}
	}
	return NewLookup(entries, opts...)
}

// KeyedLookup builds a lookup codec over Keyed values. Each value answers to
// its full key, its bare name and, for ConstNamer values, its constant name.
func KeyedLookup[V interface {
	comparable
	Keyed
}](values []V, opts ...LookupOption[V]) *LookupCodec[V] {
	entries := make([]LookupEntry[V], len(values))
	for i, v := range values {
		k := v.Key()
		e := LookupEntry[V]{Key: k.String(), Value: v}
		if k.Namespace != "" {
			e.Aliases = append(e.Aliases, k.Name)
		}
		if cn, ok := any(v).(ConstNamer); ok {
			e.Aliases = append(e.Aliases, cn.ConstName())
		}
		entries[i] = e
	}
	return NewLookup(entries, opts...)
}

// EnumPair names one constant of an enumerated type.
type EnumPair[V any] struct {
	Name  string
	Value V
}

// Pair is shorthand for an EnumPair literal.
func Pair[V any](name string, v V) EnumPair[V] { return EnumPair[V]{Name: name, Value: v} }

// Enum builds a lookup codec over explicitly named constants. The canonical
// key of each constant is its lowercased name.
func Enum[V comparable](pairs ...EnumPair[V]) *LookupCodec[V] {
	entries := make([]LookupEntry[V], len(pairs))
	for i, p := range pairs {
		entries[i] = LookupEntry[V]{Key: strings.ToLower(p.Name), Value: p.Value}
	}
	return NewLookup(entries)
}

func (l *LookupCodec[V]) Decode(v tree.Value) Outcome[V] {
	s, ok := v.Str()
	if !ok {
		return Fail[V](shapeMismatch("String", v))
	}
	if val, found := l.Lookup(s); found {
		return Success(val)
	}
	return Fail[V](unknownKey(s))
}

// Encode writes the canonical key; a value outside the table becomes Null.
func (l *LookupCodec[V]) Encode(v V) tree.Value {
	if key, ok := l.KeyOf(v); ok {
		return tree.String(key)
	}
	return tree.Null()
}

func (l *LookupCodec[V]) Schema() *jsonschema.SchemaType { return l.schema }

// Lookup finds the value registered under key, ignoring case.
func (l *LookupCodec[V]) Lookup(key string) (V, bool) {
	idx, ok := l.table[strings.ToLower(key)]
	if !ok {
		var zero V
		return zero, false
	}
	return l.values[idx], true
}

// KeyOf returns the canonical key of v.
func (l *LookupCodec[V]) KeyOf(v V) (string, bool) {
	idx, ok := l.reverse[v]
	if !ok {
		return "", false
	}
	return l.canonical[idx], true
}

// Keys returns every registered key and alias, lowercased, in registration
// order.
func (l *LookupCodec[V]) Keys() []string { return append([]string(nil), l.keys...) }

// Values returns the registered domain values in registration order.
func (l *LookupCodec[V]) Values() []V { return append([]V(nil), l.values...) }

// AsMap returns a copy of the key table.
func (l *LookupCodec[V]) AsMap() map[string]V {
	out := make(map[string]V, len(l.table))
	for k, idx := range l.table {
		out[k] = l.values[idx]
	}
	return out
}

// Wildcard returns a codec decoding one or more keys or glob patterns over
// the same table. See NewWildcard.
func (l *LookupCodec[V]) Wildcard() Codec[[]V] { return l.wildcard }
