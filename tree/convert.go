package tree

import (
	"fmt"
	"maps"
	"reflect"
	"slices"
)

// FromAny converts a plain Go value into a tree. Maps with string keys become
// mappings (ordered by sorted key since Go maps carry no order), slices and
// arrays become sequences, primitives become scalars. Values that are already
// a Value or *Mapping are returned as-is.
func FromAny(x any) (Value, error) {
	switch t := x.(type) {
	case nil:
		return Value{}, nil
	case Value:
		return t, nil
	case *Mapping:
		return FromMapping(t), nil
	case []any:
		items := make([]Value, len(t))
		for i, it := range t {
			v, err := FromAny(it)
			if err != nil {
				return Value{}, fmt.Errorf("[%d]: %w", i, err)
			}
			items[i] = v
		}
		return Value{kind: KindSequence, seq: items}, nil
	case map[string]any:
		m := NewMapping()
		for _, k := range slices.Sorted(maps.Keys(t)) {
			v, err := FromAny(t[k])
			if err != nil {
				return Value{}, fmt.Errorf("%s: %w", k, err)
			}
			m.Set(k, v)
		}
		return Value{kind: KindMapping, m: m}, nil
	case string, bool, int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		return Scalar(t), nil
	}

	rv := reflect.ValueOf(x)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		items := make([]Value, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			v, err := FromAny(rv.Index(i).Interface())
			if err != nil {
				return Value{}, fmt.Errorf("[%d]: %w", i, err)
			}
			items[i] = v
		}
		return Value{kind: KindSequence, seq: items}, nil
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return Value{}, fmt.Errorf("unsupported map key type %s", rv.Type().Key())
		}
		keys := make([]string, 0, rv.Len())
		for _, k := range rv.MapKeys() {
			keys = append(keys, k.String())
		}
		slices.Sort(keys)
		m := NewMapping()
		for _, k := range keys {
			v, err := FromAny(rv.MapIndex(reflect.ValueOf(k).Convert(rv.Type().Key())).Interface())
			if err != nil {
				return Value{}, fmt.Errorf("%s: %w", k, err)
			}
			m.Set(k, v)
		}
		return Value{kind: KindMapping, m: m}, nil
	case reflect.Pointer:
		if rv.IsNil() {
			return Value{}, nil
		}
		return FromAny(rv.Elem().Interface())
	}
	return Value{}, fmt.Errorf("unsupported value type %T", x)
}

// Any converts the tree into plain Go values: nil, primitives, []any and
// map[string]any. Mapping order is lost.
func (v Value) Any() any {
	switch v.kind {
	case KindScalar:
		return v.scalar
	case KindSequence:
		out := make([]any, len(v.seq))
		for i, it := range v.seq {
			out[i] = it.Any()
		}
		return out
	case KindMapping:
		out := make(map[string]any, v.m.Len())
		v.m.Range(func(k string, it Value) bool {
			out[k] = it.Any()
			return true
		})
		return out
	}
	return nil
}
