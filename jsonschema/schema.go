package jsonschema

import (
	"bytes"
	"maps"
	"slices"

	json "github.com/goccy/go-json"
)

// Draft07 is the $schema URI stamped on emitted root schemas.
const Draft07 = "http://json-schema.org/draft-07/schema#"

// Schema is the JSON Schema (draft-07 subset) node used for export.
type Schema struct {
	SchemaURI   string `json:"$schema,omitempty"`
	Ref         string `json:"$ref,omitempty"`
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`

	// Core
	Type     string `json:"type,omitempty"`
	Format   string `json:"format,omitempty"`
	Default  any    `json:"default,omitempty"`
	Enum     []any  `json:"enum,omitempty"`
	Examples []any  `json:"examples,omitempty"`

	// Object
	Properties           map[string]*Schema `json:"properties,omitempty"`
	PatternProperties    map[string]*Schema `json:"patternProperties,omitempty"`
	Required             []string           `json:"required,omitempty"`
	AdditionalProperties any                `json:"additionalProperties,omitempty"`

	// Array
	Items    *Schema `json:"items,omitempty"`
	MinItems *int    `json:"minItems,omitempty"`
	MaxItems *int    `json:"maxItems,omitempty"`

	// Union
	OneOf []*Schema `json:"oneOf,omitempty"`
	AnyOf []*Schema `json:"anyOf,omitempty"`

	Definitions map[string]*Schema `json:"definitions,omitempty"`
}

// UnmarshalJSON decodes a schema document. additionalProperties may be a
// boolean or a nested schema.
func (s *Schema) UnmarshalJSON(b []byte) error {
	type plain Schema
	if err := json.Unmarshal(b, (*plain)(s)); err != nil {
		return err
	}
	var extra struct {
		AdditionalProperties json.RawMessage `json:"additionalProperties"`
	}
	if err := json.Unmarshal(b, &extra); err != nil {
		return err
	}
	s.AdditionalProperties = nil
	if len(extra.AdditionalProperties) == 0 {
		return nil
	}
	var flag bool
	if err := json.Unmarshal(extra.AdditionalProperties, &flag); err == nil {
		s.AdditionalProperties = flag
		return nil
	}
	sub := &Schema{}
	if err := json.Unmarshal(extra.AdditionalProperties, sub); err != nil {
		return err
	}
	s.AdditionalProperties = sub
	return nil
}

// Parse decodes a schema document.
func Parse(data []byte) (*Schema, error) {
	s := &Schema{}
	if err := json.Unmarshal(data, s); err != nil {
		return nil, err
	}
	return s, nil
}

// Clone deep-copies the node. Every occurrence of a shared pointer in the
// source becomes a distinct copy.
func (s *Schema) Clone() *Schema {
	if s == nil {
		return nil
	}
	out := *s
	out.Enum = slices.Clone(s.Enum)
	out.Examples = slices.Clone(s.Examples)
	out.Required = slices.Clone(s.Required)
	out.Properties = cloneMap(s.Properties)
	out.PatternProperties = cloneMap(s.PatternProperties)
	out.Definitions = cloneMap(s.Definitions)
	out.Items = s.Items.Clone()
	out.OneOf = cloneList(s.OneOf)
	out.AnyOf = cloneList(s.AnyOf)
	if sub, ok := s.AdditionalProperties.(*Schema); ok {
		out.AdditionalProperties = sub.Clone()
	}
	if s.MinItems != nil {
		n := *s.MinItems
		out.MinItems = &n
	}
	if s.MaxItems != nil {
		n := *s.MaxItems
		out.MaxItems = &n
	}
	return &out
}

func cloneMap(m map[string]*Schema) map[string]*Schema {
	if m == nil {
		return nil
	}
	out := make(map[string]*Schema, len(m))
	for k, v := range m {
		out[k] = v.Clone()
	}
	return out
}

func cloneList(l []*Schema) []*Schema {
	if l == nil {
		return nil
	}
	out := make([]*Schema, len(l))
	for i, v := range l {
		out[i] = v.Clone()
	}
	return out
}

func sortedKeys(m map[string]*Schema) []string {
	return slices.Sorted(maps.Keys(m))
}

// MarshalIndent renders the node as indented JSON. The document is encoded
// compactly and indented afterwards; goccy's MarshalIndent pads nested maps
// inside definitions without bound.
func (s *Schema) MarshalIndent() ([]byte, error) {
	b, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, b, "", "  "); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
