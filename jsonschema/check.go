package jsonschema

import (
	"bytes"
	stdjson "encoding/json"
	"fmt"
	"strconv"

	json "github.com/goccy/go-json"
	sjs "github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/reoring/treecodec/tree"
)

const checkResource = "treecodec://schema.json"

// Checker validates trees against a compiled draft-07 schema document.
type Checker struct {
	compiled *sjs.Schema
}

// NewChecker compiles a schema node.
func NewChecker(s *Schema) (*Checker, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}
	return NewCheckerJSON(data)
}

// NewCheckerJSON compiles a schema document given as JSON.
func NewCheckerJSON(data []byte) (*Checker, error) {
	doc, err := sjs.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parse schema: %w", err)
	}
	c := sjs.NewCompiler()
	c.DefaultDraft(sjs.Draft7)
	if err := c.AddResource(checkResource, doc); err != nil {
		return nil, fmt.Errorf("add schema: %w", err)
	}
	compiled, err := c.Compile(checkResource)
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return &Checker{compiled: compiled}, nil
}

// CheckType builds t and compiles the result.
func CheckType(t *SchemaType) (*Checker, error) { return NewChecker(Build(t)) }

// Validate reports whether v satisfies the schema. The returned error is a
// *jsonschema.ValidationError from the underlying validator on mismatch.
func (c *Checker) Validate(v tree.Value) error {
	return c.compiled.Validate(instance(v))
}

// instance converts a tree into the value model the validator expects.
// Numbers become encoding/json.Number, the validator's number type.
func instance(v tree.Value) any {
	switch v.Kind() {
	case tree.KindScalar:
		x, _ := v.ScalarValue()
		switch n := x.(type) {
		case int64:
			return stdjson.Number(strconv.FormatInt(n, 10))
		case uint64:
			return stdjson.Number(strconv.FormatUint(n, 10))
		case float64:
			return stdjson.Number(strconv.FormatFloat(n, 'g', -1, 64))
		}
		return x
	case tree.KindSequence:
		items, _ := v.Items()
		out := make([]any, len(items))
		for i, it := range items {
			out[i] = instance(it)
		}
		return out
	case tree.KindMapping:
		m, _ := v.Map()
		out := make(map[string]any, m.Len())
		m.Range(func(k string, it tree.Value) bool {
			out[k] = instance(it)
			return true
		})
		return out
	}
	return nil
}
