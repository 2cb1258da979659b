package treecodec

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reoring/treecodec/jsonschema"
	"github.com/reoring/treecodec/tree"
)

type segment struct {
	Start pair
	End   pair
}

func segmentCodec() Codec[segment] {
	start := FieldOf(pairCodec, "start", func(s segment) pair { return s.Start })
	end := FieldOf(pairCodec, "end", func(s segment) pair { return s.End })
	return Record(func(a Args) (segment, error) {
		return segment{Start: ValueOf(a, start), End: ValueOf(a, end)}, nil
	}, start, end)
}

func TestSchema_SharedRecordHoistedOnce(t *testing.T) {
	s := jsonschema.Build(segmentCodec().Schema())
	require.Len(t, s.Definitions, 1)

	ref := jsonschema.DefinitionsPrefix + pairCodec.Schema().Name()
	assert.Equal(t, ref, s.Properties["start"].Ref)
	assert.Equal(t, ref, s.Properties["end"].Ref)
	assert.Equal(t, jsonschema.Draft07, s.SchemaURI)

	def := s.Definitions[pairCodec.Schema().Name()]
	require.NotNil(t, def)
	assert.Equal(t, []string{"A", "B"}, def.Required)
}

type palette struct {
	Fg color
	Bg color
}

func TestSchema_EqualEnumsShareOneDefinition(t *testing.T) {
	colors := colorCodec()
	fg := FieldOf(Codec[color](colors), "fg", func(p palette) color { return p.Fg })
	bg := FieldOf(Codec[color](colors), "bg", func(p palette) color { return p.Bg })
	c := Record(func(a Args) (palette, error) {
		return palette{ValueOf(a, fg), ValueOf(a, bg)}, nil
	}, fg, bg)

	s := jsonschema.Build(c.Schema())
	assert.Equal(t, "#/definitions/dub_1", s.Properties["fg"].Ref)
	assert.Equal(t, "#/definitions/dub_1", s.Properties["bg"].Ref)
	require.Contains(t, s.Definitions, "dub_1")
	assert.Equal(t, "string", s.Definitions["dub_1"].Type)
	assert.Equal(t, []any{"red", "green", "blue"}, s.Definitions["dub_1"].Enum)
}

func TestSchema_StructuralSharing(t *testing.T) {
	type lists struct{ A, B []int }
	a := FieldOf(ListOf(Int()), "a", func(l lists) []int { return l.A })
	b := FieldOf(ListOf(Int()), "b", func(l lists) []int { return l.B })
	c := Record(func(args Args) (lists, error) { return lists{ValueOf(args, a), ValueOf(args, b)}, nil }, a, b)

	s := jsonschema.Build(c.Schema())
	assert.Equal(t, "#/definitions/dub_1", s.Properties["a"].Ref)
	assert.Equal(t, "#/definitions/dub_1", s.Properties["b"].Ref)
	assert.Equal(t, "array", s.Definitions["dub_1"].Type)
}

func TestSchema_RecursiveTerminates(t *testing.T) {
	c := treeNodeCodec()
	s := jsonschema.Build(c.Schema())
	assert.Equal(t, "object", s.Type)
	assert.NotEmpty(t, s.Definitions)

	out, err := s.MarshalIndent()
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(out), jsonschema.DefinitionsPrefix))

	checker, err := jsonschema.CheckType(c.Schema())
	require.NoError(t, err)
	doc := c.Encode(&treeNode{Name: "a", Children: []*treeNode{{Name: "b"}}})
	require.NoError(t, checker.Validate(doc))

	bad := tree.Map(tree.P("name", tree.String("a")), tree.P("children", tree.Sequence(tree.Map(tree.P("nom", tree.String("b"))))))
	assert.Error(t, checker.Validate(bad))
}

func TestSchema_EncodedTreesValidate(t *testing.T) {
	checker, err := jsonschema.CheckType(serverCodec.Schema())
	require.NoError(t, err)

	on := false
	require.NoError(t, checker.Validate(serverCodec.Encode(server{Host: "h", Port: 9, Tags: []string{"a", "b"}, TLS: &on})))
	assert.Error(t, checker.Validate(tree.Map(tree.P("port", tree.Scalar(1)))))
	assert.Error(t, checker.Validate(tree.Map(tree.P("host", tree.String("h")), tree.P("extra", tree.Scalar(1)))))
}

func TestSchema_ListOrSingleAndMap(t *testing.T) {
	n := ListOrSingle(Int()).Schema().Node()
	require.Len(t, n.OneOf, 2)
	assert.Equal(t, "integer", n.OneOf[0].Type)
	assert.Equal(t, "array", n.OneOf[1].Type)

	m := StringMap(Bool()).Schema().Node()
	assert.Equal(t, "object", m.Type)
	assert.Equal(t, "boolean", m.PatternProperties[".*"].Type)
}
