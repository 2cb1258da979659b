package jsonschema

import (
	"sync"

	"github.com/google/uuid"
)

// SchemaType is the schema description attached to a codec. It carries a
// random identity used to name its definition when it is shared, a lazily
// built node, and the shared types that node references.
//
// Three flavours exist:
//   - plain types (Of, Compose) are copied inline wherever they are embedded;
//   - shared types (Shared) are hoisted into definitions once and embedded as
//     a $ref, so composing the same one twice yields a single definition;
//   - alias types (Alias) stand for another type resolved on demand and are
//     always embedded by $ref, which keeps recursive codec graphs finite.
type SchemaType struct {
	id     uuid.UUID
	shared bool
	build  func(*Composer) *Schema
	alias  func() *SchemaType

	nodeOnce sync.Once
	node     *Schema
	deps     []*SchemaType

	aliasOnce sync.Once
	target    *SchemaType
}

// Of wraps a fixed node as a plain type.
func Of(node *Schema) *SchemaType {
	return &SchemaType{id: uuid.New(), build: func(*Composer) *Schema { return node.Clone() }}
}

// Compose creates a plain type whose node is built on first use. Children are
// placed with c.Embed.
func Compose(build func(c *Composer) *Schema) *SchemaType {
	return &SchemaType{id: uuid.New(), build: build}
}

// Shared creates a type that is hoisted into definitions when embedded.
func Shared(build func(c *Composer) *Schema) *SchemaType {
	return &SchemaType{id: uuid.New(), shared: true, build: build}
}

// Alias creates a type standing for the one returned by resolve. resolve is
// called at most once.
func Alias(resolve func() *SchemaType) *SchemaType {
	return &SchemaType{id: uuid.New(), alias: resolve}
}

// ID returns the identity of the type.
func (t *SchemaType) ID() uuid.UUID { return t.id }

// Name is the definition name used when the type is hoisted.
func (t *SchemaType) Name() string { return t.id.String() }

// IsShared reports whether embedding produces a $ref.
func (t *SchemaType) IsShared() bool { return t.shared }

// Canonical follows aliases to the type they stand for. A cycle made only of
// aliases resolves to an empty schema.
func (t *SchemaType) Canonical() *SchemaType {
	seen := map[*SchemaType]bool{}
	cur := t
	for cur.alias != nil {
		if seen[cur] {
			return Of(Any())
		}
		seen[cur] = true
		cur = cur.resolveAlias()
	}
	return cur
}

func (t *SchemaType) resolveAlias() *SchemaType {
	t.aliasOnce.Do(func() {
		t.target = t.alias()
		if t.target == nil {
			t.target = Of(Any())
		}
	})
	return t.target
}

func (t *SchemaType) materialize() (*Schema, []*SchemaType) {
	t.nodeOnce.Do(func() {
		c := &Composer{}
		if t.build != nil {
			t.node = t.build(c)
		}
		if t.node == nil {
			t.node = Any()
		}
		t.deps = c.deps
	})
	return t.node, t.deps
}

// Node returns a copy of the resolved node without definitions processing.
func (t *SchemaType) Node() *Schema {
	n, _ := t.Canonical().materialize()
	return n.Clone()
}

// Composer collects the shared types referenced while a node is built.
type Composer struct {
	deps []*SchemaType
}

func (c *Composer) addDep(t *SchemaType) {
	for _, d := range c.deps {
		if d == t {
			return
		}
	}
	c.deps = append(c.deps, t)
}

// Embed returns the node to place where child appears inside the node being
// built: a $ref for shared and alias types, an inline copy otherwise.
func (c *Composer) Embed(child *SchemaType) *Schema {
	if child == nil {
		return Any()
	}
	if child.alias != nil || child.shared {
		target := child.Canonical()
		c.addDep(target)
		return RefTo(target.Name())
	}
	node, deps := child.materialize()
	for _, d := range deps {
		c.addDep(d)
	}
	return node.Clone()
}

// Inline returns a copy of child's node even when child is shared, merging
// its dependencies. Used by inlined record fields whose properties are
// flattened into the parent.
func (c *Composer) Inline(child *SchemaType) *Schema {
	if child == nil {
		return Any()
	}
	node, deps := child.Canonical().materialize()
	for _, d := range deps {
		c.addDep(d)
	}
	return node.Clone()
}

// Build materializes t as a root document: its node, a definitions entry for
// every shared type reachable from it, and the deduplication passes.
func Build(t *SchemaType) *Schema {
	root := t.Canonical()
	node, deps := root.materialize()
	out := node.Clone()

	defs := map[string]*Schema{}
	visited := map[*SchemaType]bool{}
	queue := append([]*SchemaType(nil), deps...)
	for len(queue) > 0 {
		d := queue[0]
		queue = queue[1:]
		if visited[d] {
			continue
		}
		visited[d] = true
		n, more := d.materialize()
		defs[d.Name()] = n.Clone()
		queue = append(queue, more...)
	}
	if len(defs) > 0 {
		if out.Definitions == nil {
			out.Definitions = map[string]*Schema{}
		}
		for k, v := range defs {
			out.Definitions[k] = v
		}
	}

	dedupe(out)
	out.SchemaURI = Draft07
	return out
}

// MarshalIndent builds t and renders it as indented JSON.
func MarshalIndent(t *SchemaType) ([]byte, error) {
	return Build(t).MarshalIndent()
}
