package tree

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// Kind identifies the shape of a Value.
type Kind int

const (
	KindNull Kind = iota
	KindScalar
	KindSequence
	KindMapping
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "Null"
	case KindScalar:
		return "Scalar"
	case KindSequence:
		return "List"
	case KindMapping:
		return "Map"
	}
	return "Kind(" + strconv.Itoa(int(k)) + ")"
}

// Value is a node of a semi-structured document: Null, a scalar, a sequence
// or an ordered mapping. The zero Value is Null.
//
// Values are treated as immutable once handed to a codec. Constructors copy
// their inputs.
type Value struct {
	kind   Kind
	scalar any
	seq    []Value
	m      *Mapping
}

// Null returns the null value.
func Null() Value { return Value{} }

// Scalar wraps a primitive. Supported primitives are string, bool, the Go
// integer types (stored as int64, or uint64 above MaxInt64) and the float
// types (stored as float64). Other values are stored in their
// fmt string form. A nil argument yields Null.
func Scalar(v any) Value {
	switch x := v.(type) {
	case nil:
		return Value{}
	case string:
		return Value{kind: KindScalar, scalar: x}
	case bool:
		return Value{kind: KindScalar, scalar: x}
	case int:
		return Value{kind: KindScalar, scalar: int64(x)}
	case int8:
		return Value{kind: KindScalar, scalar: int64(x)}
	case int16:
		return Value{kind: KindScalar, scalar: int64(x)}
	case int32:
		return Value{kind: KindScalar, scalar: int64(x)}
	case int64:
		return Value{kind: KindScalar, scalar: x}
	case uint:
		return scalarUint(uint64(x))
	case uint8:
		return Value{kind: KindScalar, scalar: int64(x)}
	case uint16:
		return Value{kind: KindScalar, scalar: int64(x)}
	case uint32:
		return Value{kind: KindScalar, scalar: int64(x)}
	case uint64:
		return scalarUint(x)
	case float32:
		return Value{kind: KindScalar, scalar: float64(x)}
	case float64:
		return Value{kind: KindScalar, scalar: x}
	case fmt.Stringer:
		return Value{kind: KindScalar, scalar: x.String()}
	}
	return Value{kind: KindScalar, scalar: fmt.Sprint(v)}
}

func scalarUint(u uint64) Value {
	if u > 1<<63-1 {
		return Value{kind: KindScalar, scalar: u}
	}
	return Value{kind: KindScalar, scalar: int64(u)}
}

// String is shorthand for Scalar(s).
func String(s string) Value { return Value{kind: KindScalar, scalar: s} }

// Sequence builds a sequence from the given items.
func Sequence(items ...Value) Value {
	cp := make([]Value, len(items))
	copy(cp, items)
	return Value{kind: KindSequence, seq: cp}
}

// FromMapping wraps a mapping. The mapping is copied.
func FromMapping(m *Mapping) Value {
	if m == nil {
		m = NewMapping()
	}
	return Value{kind: KindMapping, m: m.Clone()}
}

// Kind reports the shape of v.
func (v Value) Kind() Kind { return v.kind }

func (v Value) IsNull() bool     { return v.kind == KindNull }
func (v Value) IsScalar() bool   { return v.kind == KindScalar }
func (v Value) IsSequence() bool { return v.kind == KindSequence }
func (v Value) IsMapping() bool  { return v.kind == KindMapping }

// ScalarValue returns the primitive held by a scalar.
func (v Value) ScalarValue() (any, bool) {
	if v.kind != KindScalar {
		return nil, false
	}
	return v.scalar, true
}

// Str returns the string held by a string scalar.
func (v Value) Str() (string, bool) {
	s, ok := v.scalar.(string)
	return s, ok && v.kind == KindScalar
}

// Items returns a copy of the elements of a sequence.
func (v Value) Items() ([]Value, bool) {
	if v.kind != KindSequence {
		return nil, false
	}
	cp := make([]Value, len(v.seq))
	copy(cp, v.seq)
	return cp, true
}

// Len returns the element count of a sequence or mapping and 0 otherwise.
func (v Value) Len() int {
	switch v.kind {
	case KindSequence:
		return len(v.seq)
	case KindMapping:
		return v.m.Len()
	}
	return 0
}

// Map materializes a mapping into a fresh ordered container for random access.
func (v Value) Map() (*Mapping, bool) {
	if v.kind != KindMapping {
		return nil, false
	}
	return v.m.Clone(), true
}

// Field returns the value stored under key when v is a mapping.
func (v Value) Field(key string) (Value, bool) {
	if v.kind != KindMapping {
		return Value{}, false
	}
	return v.m.Get(key)
}

// Describe names the shape of v for diagnostics: "Map", "List", "Null" or the
// scalar type ("String", "Integer", "Float", "Boolean").
func (v Value) Describe() string {
	switch v.kind {
	case KindScalar:
		switch v.scalar.(type) {
		case string:
			return "String"
		case int64, uint64:
			return "Integer"
		case float64:
			return "Float"
		case bool:
			return "Boolean"
		}
		return "Scalar"
	default:
		return v.kind.String()
	}
}

// Text renders a scalar the way it would appear in a document. Non-scalars
// render in a compact flow style.
func (v Value) Text() string {
	switch v.kind {
	case KindNull:
		return "null"
	case KindScalar:
		switch x := v.scalar.(type) {
		case string:
			return x
		case int64:
			return strconv.FormatInt(x, 10)
		case uint64:
			return strconv.FormatUint(x, 10)
		case float64:
			return strconv.FormatFloat(x, 'g', -1, 64)
		case bool:
			return strconv.FormatBool(x)
		}
		return fmt.Sprint(v.scalar)
	case KindSequence:
		parts := make([]string, len(v.seq))
		for i, it := range v.seq {
			parts[i] = it.Text()
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case KindMapping:
		var b strings.Builder
		b.WriteByte('{')
		i := 0
		v.m.Range(func(k string, it Value) bool {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(k)
			b.WriteString(": ")
			b.WriteString(it.Text())
			i++
			return true
		})
		b.WriteByte('}')
		return b.String()
	}
	return ""
}

func (v Value) String() string { return v.Text() }

// Equal reports structural equality. Mapping order is significant.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindNull:
		return true
	case KindScalar:
		return reflect.DeepEqual(v.scalar, o.scalar)
	case KindSequence:
		if len(v.seq) != len(o.seq) {
			return false
		}
		for i := range v.seq {
			if !v.seq[i].Equal(o.seq[i]) {
				return false
			}
		}
		return true
	case KindMapping:
		return v.m.Equal(o.m)
	}
	return false
}
