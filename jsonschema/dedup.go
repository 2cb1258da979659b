package jsonschema

import (
	"reflect"
	"strconv"
)

// Dedupe returns a copy of s with repeated sub-schemas factored into
// definitions. See dedupe for the rules.
func Dedupe(s *Schema) *Schema {
	out := s.Clone()
	dedupe(out)
	return out
}

// dedupe rewrites root in place. It only acts on object roots (those with
// properties) and runs two passes sharing one dub_N name counter:
//
//  1. every node that is exactly {enum: [...]} becomes a $ref to a
//     {type: string, enum: [...]} definition; equal enum lists share one;
//  2. every node without $ref whose type is object, array or unset and that
//     has a structurally equal twin elsewhere is moved into a definition and
//     all its occurrences become a $ref.
//
// Generated names skip those already present in definitions.
func dedupe(root *Schema) {
	if root == nil || len(root.Properties) == 0 {
		return
	}
	d := &deduper{root: root}
	d.factorEnums()
	d.shareStructures()
	if len(root.Definitions) == 0 {
		root.Definitions = nil
	}
}

type deduper struct {
	root    *Schema
	counter int
	enums   []enumDef
}

type enumDef struct {
	name   string
	values []any
}

// slot is an addressable child position inside a node.
type slot struct {
	get func() *Schema
	set func(*Schema)
}

func (d *deduper) nextName() string {
	for {
		d.counter++
		name := "dub_" + strconv.Itoa(d.counter)
		if _, taken := d.root.Definitions[name]; !taken {
			return name
		}
	}
}

func (d *deduper) define(name string, s *Schema) {
	if d.root.Definitions == nil {
		d.root.Definitions = map[string]*Schema{}
	}
	d.root.Definitions[name] = s
}

// children lists the schema-valued positions of n in a stable order.
func children(n *Schema) []slot {
	var out []slot
	for _, k := range sortedKeys(n.Properties) {
		out = append(out, mapSlot(n.Properties, k))
	}
	for _, k := range sortedKeys(n.PatternProperties) {
		out = append(out, mapSlot(n.PatternProperties, k))
	}
	if n.Items != nil {
		out = append(out, slot{
			get: func() *Schema { return n.Items },
			set: func(s *Schema) { n.Items = s },
		})
	}
	if _, ok := n.AdditionalProperties.(*Schema); ok {
		out = append(out, slot{
			get: func() *Schema { s, _ := n.AdditionalProperties.(*Schema); return s },
			set: func(s *Schema) { n.AdditionalProperties = s },
		})
	}
	for i := range n.AnyOf {
		out = append(out, listSlot(n.AnyOf, i))
	}
	for i := range n.OneOf {
		out = append(out, listSlot(n.OneOf, i))
	}
	return out
}

func mapSlot(m map[string]*Schema, k string) slot {
	return slot{
		get: func() *Schema { return m[k] },
		set: func(s *Schema) { m[k] = s },
	}
}

func listSlot(l []*Schema, i int) slot {
	return slot{
		get: func() *Schema { return l[i] },
		set: func(s *Schema) { l[i] = s },
	}
}

// walk visits every slot under the root and under each definition (not the
// definition entries themselves) depth-first. fn returns whether to descend.
func (d *deduper) walk(fn func(s slot) bool) {
	var visit func(n *Schema)
	visit = func(n *Schema) {
		for _, s := range children(n) {
			cur := s.get()
			if cur == nil {
				continue
			}
			if fn(s) {
				visit(s.get())
			}
		}
	}
	visit(d.root)
	for _, name := range sortedKeys(d.root.Definitions) {
		visit(d.root.Definitions[name])
	}
}

func isBareEnum(n *Schema) bool {
	if n == nil || len(n.Enum) == 0 {
		return false
	}
	rest := *n
	rest.Enum = nil
	return reflect.DeepEqual(rest, Schema{})
}

func (d *deduper) factorEnums() {
	d.walk(func(s slot) bool {
		n := s.get()
		if isBareEnum(n) {
			s.set(d.enumRef(n))
			return false
		}
		return true
	})
	// Definition entries that are themselves bare enums are factored too.
	for _, name := range sortedKeys(d.root.Definitions) {
		if n := d.root.Definitions[name]; isBareEnum(n) {
			d.root.Definitions[name] = d.enumRef(n)
		}
	}
}

func (d *deduper) enumRef(n *Schema) *Schema {
	for _, e := range d.enums {
		if reflect.DeepEqual(e.values, n.Enum) {
			return RefTo(e.name)
		}
	}
	name := d.nextName()
	d.enums = append(d.enums, enumDef{name: name, values: n.Enum})
	d.define(name, &Schema{Type: "string", Enum: n.Enum})
	return RefTo(name)
}

func canBeReplaced(n *Schema) bool {
	if n.Ref != "" {
		return false
	}
	return n.Type == "" || n.Type == "object" || n.Type == "array"
}

func (d *deduper) hasTwin(n *Schema) bool {
	found := false
	d.walk(func(s slot) bool {
		if found {
			return false
		}
		cur := s.get()
		if cur != n && reflect.DeepEqual(*cur, *n) {
			found = true
			return false
		}
		return true
	})
	return found
}

func (d *deduper) replaceAll(n *Schema, name string) {
	d.walk(func(s slot) bool {
		cur := s.get()
		if cur == n || reflect.DeepEqual(*cur, *n) {
			s.set(RefTo(name))
			return false
		}
		return true
	})
}

func (d *deduper) shareStructures() {
	var visit func(n *Schema)
	visit = func(n *Schema) {
		for _, s := range children(n) {
			cur := s.get()
			if cur == nil {
				continue
			}
			if canBeReplaced(cur) && d.hasTwin(cur) {
				name := d.nextName()
				d.replaceAll(cur, name)
				d.define(name, cur)
				continue
			}
			visit(cur)
		}
	}
	visit(d.root)
	existing := sortedKeys(d.root.Definitions)
	for _, name := range existing {
		if def, ok := d.root.Definitions[name]; ok {
			visit(def)
		}
	}
}
