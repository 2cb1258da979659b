package treecodec

import (
	"errors"
	"fmt"

	"github.com/reoring/treecodec/i18n"
	"github.com/reoring/treecodec/jsonschema"
	"github.com/reoring/treecodec/tree"
)

// recordCodec maps a fixed set of fields to and from a mapping.
type recordCodec[T any] struct {
	ctor   func(Args) (T, error)
	fields []FieldSpec[T]
	specs  []any
	schema *jsonschema.SchemaType
}

// Record builds an object codec from field descriptors and a constructor
// receiving the decoded values in declaration order:
//
//	name := FieldOf(String(), "name", func(p Person) string { return p.Name })
//	age := FieldOf(Int(), "age", func(p Person) int { return p.Age }).Default(0)
//	person := Record(func(a Args) (Person, error) {
//		return Person{Name: ValueOf(a, name), Age: ValueOf(a, age)}, nil
//	}, name, age)
//
// Decoding never stops at the first bad field. Every field failure is
// reported as "Errors in '<field>':" followed by the indented cause, and the
// constructor still runs with the values that are available (defaults for
// the rest), giving a partial outcome. Only a failing constructor yields a
// pure error.
func Record[T any](ctor func(Args) (T, error), fields ...FieldSpec[T]) Codec[T] {
	r := &recordCodec[T]{ctor: ctor, fields: fields, specs: make([]any, len(fields))}
	for i, f := range fields {
		r.specs[i] = f
	}
	r.schema = jsonschema.Shared(r.buildSchema)
	return r
}

func (r *recordCodec[T]) Decode(v tree.Value) Outcome[T] {
	if !v.IsMapping() {
		return Fail[T](shapeMismatch("Map", v))
	}
	args := newArgs(r.specs)
	var errs []string
	for i, f := range r.fields {
		val, ok, msg := f.decodeFrom(v)
		if msg != "" {
			errs = append(errs, msg)
		}
		if ok {
			args.vals[i], args.has[i] = val, true
		}
	}
	return r.finish(args, errs)
}

func (r *recordCodec[T]) finish(args Args, errs []string) Outcome[T] {
	t, err := construct(r.ctor, args)
	if err != nil {
		errs = append(errs, i18n.T("construct", map[string]string{"cause": err.Error()}))
		return Fail[T](joinErrors(errs))
	}
	if len(errs) > 0 {
		return PartialOf(t, joinErrors(errs))
	}
	return Success(t)
}

func construct[T any](ctor func(Args) (T, error), args Args) (t T, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.New(recovered(r))
		}
	}()
	return ctor(args)
}

func (r *recordCodec[T]) Encode(t T) tree.Value {
	m := tree.NewMapping()
	for _, f := range r.fields {
		f.encodeInto(t, m)
	}
	return m.Value()
}

func (r *recordCodec[T]) Schema() *jsonschema.SchemaType { return r.schema }

func (r *recordCodec[T]) buildSchema(c *jsonschema.Composer) *jsonschema.Schema {
	props := map[string]*jsonschema.Schema{}
	var required []string
	for _, f := range r.fields {
		if f.Name() == "" {
			inner := c.Inline(f.schemaType())
			for k, p := range inner.Properties {
				props[k] = p
			}
			required = append(required, inner.Required...)
			continue
		}
		props[f.Name()] = c.Embed(f.schemaType())
		if !f.Optional() {
			required = append(required, f.Name())
		}
	}
	return &jsonschema.Schema{
		Type:                 "object",
		Properties:           props,
		Required:             required,
		AdditionalProperties: false,
	}
}

// Builder is Record for types assembled through setters: create returns a
// fresh target (usually a pointer) and each present field is applied with
// its setter in declaration order. Every field must carry a setter.
func Builder[T any](create func() T, fields ...FieldSpec[T]) (Codec[T], error) {
	for i, f := range fields {
		if !f.hasSetter() {
			return nil, fmt.Errorf("field %d (%q) has no setter", i, f.Name())
		}
	}
	ctor := func(a Args) (T, error) {
		t := create()
		for i, f := range fields {
			if a.Has(i) {
				f.set(t, a.vals[i])
			}
		}
		return t, nil
	}
	return Record(ctor, fields...), nil
}

// MustBuilder is Builder that panics on a missing setter.
func MustBuilder[T any](create func() T, fields ...FieldSpec[T]) Codec[T] {
	c, err := Builder(create, fields...)
	if err != nil {
		panic(err)
	}
	return c
}
