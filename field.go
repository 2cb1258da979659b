package treecodec

import (
	"github.com/reoring/treecodec/jsonschema"
	"github.com/reoring/treecodec/tree"
)

// FieldSpec is one slot of a record codec over T. *Field implements it.
type FieldSpec[T any] interface {
	// Name returns the mapping key, "" for inlined fields.
	Name() string
	// Optional reports whether the field may be omitted from a document.
	Optional() bool

	decodeFrom(record tree.Value) (val any, ok bool, errMsg string)
	decodeValue(v tree.Value) (val any, ok bool, errMsg string)
	encodeValue(t T) (tree.Value, bool)
	encodeInto(t T, m *tree.Mapping)
	schemaType() *jsonschema.SchemaType
	hasSetter() bool
	set(t T, val any)
}

// Field describes a record slot of type F read from a T.
type Field[T, F any] struct {
	codec    Codec[F]
	name     string
	get      func(T) (F, bool)
	setter   func(T, F)
	def      F
	hasDef   bool
	optional bool
}

// FieldOf declares a field stored under name.
func FieldOf[T, F any](c Codec[F], name string, get func(T) F) *Field[T, F] {
	return &Field[T, F]{
		codec: c,
		name:  name,
		get:   func(t T) (F, bool) { return get(t), true },
	}
}

// OptionalFieldOf declares a field that may be absent. get reports whether
// the value is present; an absent value without default is not written.
// Optional fields are not schema-required.
func OptionalFieldOf[T, F any](c Codec[F], name string, get func(T) (F, bool)) *Field[T, F] {
	return &Field[T, F]{codec: c, name: name, get: get, optional: true}
}

// Inlined declares a field whose codec reads the enclosing mapping itself
// rather than a sub-key. Its properties are merged into the parent schema.
func Inlined[T, F any](c Codec[F], get func(T) F) *Field[T, F] {
	return FieldOf(c, "", get)
}

// Default sets the value used for an absent key on decode and an absent value
// on encode, and makes the field optional in the schema. It modifies f and
// returns it, so ValueOf finds the field through either pointer.
func (f *Field[T, F]) Default(v F) *Field[T, F] {
	f.def, f.hasDef = v, true
	return f
}

// Setter sets the function Builder uses to assign the field. It modifies f and
// returns it.
func (f *Field[T, F]) Setter(fn func(T, F)) *Field[T, F] {
	f.setter = fn
	return f
}

func (f *Field[T, F]) Name() string { return f.name }

func (f *Field[T, F]) Optional() bool { return f.hasDef || f.optional }

// Codec returns the field's value codec.
func (f *Field[T, F]) Codec() Codec[F] { return f.codec }

func (f *Field[T, F]) fallback() (any, bool) {
	if f.hasDef {
		return f.def, true
	}
	return nil, false
}

func (f *Field[T, F]) decodeFrom(record tree.Value) (any, bool, string) {
	if f.name == "" {
		o := f.codec.Decode(record)
		msg, _ := o.Err()
		if r, ok := o.Result(); ok {
			return r, true, msg
		}
		val, ok := f.fallback()
		return val, ok, msg
	}
	item, present := record.Field(f.name)
	if !present || item.IsNull() {
		val, ok := f.fallback()
		return val, ok, ""
	}
	return f.decodeValue(item)
}

func (f *Field[T, F]) decodeValue(v tree.Value) (any, bool, string) {
	o := f.codec.Decode(v)
	var msg string
	if e, bad := o.Err(); bad {
		msg = fieldErrors(f.name, e)
	}
	if r, ok := o.Result(); ok {
		return r, true, msg
	}
	val, ok := f.fallback()
	return val, ok, msg
}

func (f *Field[T, F]) encodeValue(t T) (tree.Value, bool) {
	v, ok := f.get(t)
	if !ok {
		if !f.hasDef {
			return tree.Value{}, false
		}
		v = f.def
	}
	return f.codec.Encode(v), true
}

func (f *Field[T, F]) encodeInto(t T, m *tree.Mapping) {
	enc, ok := f.encodeValue(t)
	if !ok {
		return
	}
	if f.name != "" {
		m.Set(f.name, enc)
		return
	}
	if inner, isMap := enc.Map(); isMap {
		inner.Range(func(k string, v tree.Value) bool {
			m.Set(k, v)
			return true
		})
	}
}

func (f *Field[T, F]) schemaType() *jsonschema.SchemaType { return f.codec.Schema() }

func (f *Field[T, F]) hasSetter() bool { return f.setter != nil }

func (f *Field[T, F]) set(t T, val any) { f.setter(t, val.(F)) }

// Args holds the decoded field values handed to a record constructor, in
// field declaration order.
type Args struct {
	vals  []any
	has   []bool
	specs []any
}

func newArgs(specs []any) Args {
	return Args{vals: make([]any, len(specs)), has: make([]bool, len(specs)), specs: specs}
}

// Len returns the number of fields.
func (a Args) Len() int { return len(a.vals) }

// Has reports whether field i has a value (decoded or default).
func (a Args) Has(i int) bool { return i >= 0 && i < len(a.has) && a.has[i] }

// Raw returns the value of field i.
func (a Args) Raw(i int) (any, bool) {
	if !a.Has(i) {
		return nil, false
	}
	return a.vals[i], true
}

// Arg returns the value of field i, or the zero F when unset.
func Arg[F any](a Args, i int) F {
	v, _ := a.Raw(i)
	f, _ := v.(F)
	return f
}

// ValueOf returns the value decoded for field f, or the zero F when unset.
func ValueOf[T, F any](a Args, f *Field[T, F]) F {
	for i, s := range a.specs {
		if s == any(f) {
			return Arg[F](a, i)
		}
	}
	var zero F
	return zero
}

// Present is ValueOf that also reports whether the field was set.
func Present[T, F any](a Args, f *Field[T, F]) (F, bool) {
	for i, s := range a.specs {
		if s == any(f) && a.Has(i) {
			return Arg[F](a, i), true
		}
	}
	var zero F
	return zero, false
}
