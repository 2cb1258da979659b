package tree

// Mapping is an ordered set of string keys with values. Keys are unique and
// keep their first insertion position.
type Mapping struct {
	keys  []string
	index map[string]int
	vals  []Value
}

// NewMapping returns an empty mapping.
func NewMapping() *Mapping {
	return &Mapping{index: map[string]int{}}
}

// MappingOf builds a mapping from alternating key/value pairs.
func MappingOf(pairs ...Pair) *Mapping {
	m := NewMapping()
	for _, p := range pairs {
		m.Set(p.Key, p.Value)
	}
	return m
}

// Pair is one entry of a mapping.
type Pair struct {
	Key   string
	Value Value
}

// P is shorthand for a Pair literal.
func P(key string, v Value) Pair { return Pair{Key: key, Value: v} }

// Map is shorthand for FromMapping(MappingOf(pairs...)).
func Map(pairs ...Pair) Value {
	return Value{kind: KindMapping, m: MappingOf(pairs...)}
}

func (m *Mapping) Len() int {
	if m == nil {
		return 0
	}
	return len(m.keys)
}

// Get returns the value stored under key.
func (m *Mapping) Get(key string) (Value, bool) {
	if m == nil {
		return Value{}, false
	}
	i, ok := m.index[key]
	if !ok {
		return Value{}, false
	}
	return m.vals[i], true
}

// Has reports whether key is present.
func (m *Mapping) Has(key string) bool {
	_, ok := m.Get(key)
	return ok
}

// Set stores v under key. An existing key is overwritten in place.
func (m *Mapping) Set(key string, v Value) {
	if i, ok := m.index[key]; ok {
		m.vals[i] = v
		return
	}
	m.index[key] = len(m.keys)
	m.keys = append(m.keys, key)
	m.vals = append(m.vals, v)
}

// Delete removes key, keeping the order of the remaining entries.
func (m *Mapping) Delete(key string) {
	i, ok := m.index[key]
	if !ok {
		return
	}
	m.keys = append(m.keys[:i], m.keys[i+1:]...)
	m.vals = append(m.vals[:i], m.vals[i+1:]...)
	delete(m.index, key)
	for j := i; j < len(m.keys); j++ {
		m.index[m.keys[j]] = j
	}
}

// Keys returns the keys in insertion order.
func (m *Mapping) Keys() []string {
	if m == nil {
		return nil
	}
	cp := make([]string, len(m.keys))
	copy(cp, m.keys)
	return cp
}

// Pairs returns the entries in insertion order.
func (m *Mapping) Pairs() []Pair {
	if m == nil {
		return nil
	}
	out := make([]Pair, len(m.keys))
	for i, k := range m.keys {
		out[i] = Pair{Key: k, Value: m.vals[i]}
	}
	return out
}

// Range calls fn for each entry in order until fn returns false.
func (m *Mapping) Range(fn func(key string, v Value) bool) {
	if m == nil {
		return
	}
	for i, k := range m.keys {
		if !fn(k, m.vals[i]) {
			return
		}
	}
}

// Clone returns a shallow copy. Values are immutable so sharing them is safe.
func (m *Mapping) Clone() *Mapping {
	out := &Mapping{index: make(map[string]int, m.Len())}
	if m == nil {
		return out
	}
	out.keys = append([]string(nil), m.keys...)
	out.vals = append([]Value(nil), m.vals...)
	for k, i := range m.index {
		out.index[k] = i
	}
	return out
}

// Equal reports whether both mappings hold equal entries in the same order.
func (m *Mapping) Equal(o *Mapping) bool {
	if m.Len() != o.Len() {
		return false
	}
	if m.Len() == 0 {
		return true
	}
	for i, k := range m.keys {
		if o.keys[i] != k || !m.vals[i].Equal(o.vals[i]) {
			return false
		}
	}
	return true
}

// Value wraps the mapping as a Value. The mapping is copied.
func (m *Mapping) Value() Value { return FromMapping(m) }
