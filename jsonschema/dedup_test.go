package jsonschema

import (
	"reflect"
	"testing"
)

func TestDedupe_FactorsEqualEnums(t *testing.T) {
	in := &Schema{
		Type: "object",
		Properties: map[string]*Schema{
			"a": Enum("x", "y"),
			"b": Enum("x", "y"),
			"c": Enum("z"),
		},
	}
	out := Dedupe(in)

	for k, want := range map[string]string{"a": "#/definitions/dub_1", "b": "#/definitions/dub_1", "c": "#/definitions/dub_2"} {
		if got := out.Properties[k].Ref; got != want {
			t.Errorf("%s: ref = %q, want %q", k, got, want)
		}
	}
	if !reflect.DeepEqual(out.Definitions["dub_1"], &Schema{Type: "string", Enum: []any{"x", "y"}}) {
		t.Errorf("dub_1 = %+v", out.Definitions["dub_1"])
	}
	if !reflect.DeepEqual(out.Definitions["dub_2"], &Schema{Type: "string", Enum: []any{"z"}}) {
		t.Errorf("dub_2 = %+v", out.Definitions["dub_2"])
	}

	// input is untouched
	if in.Definitions != nil {
		t.Fatalf("input definitions were set: %v", in.Definitions)
	}
	if !reflect.DeepEqual(in.Properties["a"].Enum, []any{"x", "y"}) {
		t.Fatalf("input enum changed: %v", in.Properties["a"].Enum)
	}
}

func TestDedupe_SkipsTakenNames(t *testing.T) {
	in := &Schema{
		Type:        "object",
		Properties:  map[string]*Schema{"a": Enum("x")},
		Definitions: map[string]*Schema{"dub_1": String()},
	}
	out := Dedupe(in)
	if got := out.Properties["a"].Ref; got != "#/definitions/dub_2" {
		t.Fatalf("ref = %q", got)
	}
	if !reflect.DeepEqual(out.Definitions["dub_1"], String()) {
		t.Fatalf("dub_1 was replaced: %+v", out.Definitions["dub_1"])
	}
}

func TestDedupe_EnumDefinitionEntries(t *testing.T) {
	in := &Schema{
		Type:        "object",
		Properties:  map[string]*Schema{"a": Enum("p", "q")},
		Definitions: map[string]*Schema{"Mode": Enum("p", "q")},
	}
	out := Dedupe(in)
	if out.Properties["a"].Ref != "#/definitions/dub_1" || out.Definitions["Mode"].Ref != "#/definitions/dub_1" {
		t.Fatalf("refs: a=%q Mode=%q", out.Properties["a"].Ref, out.Definitions["Mode"].Ref)
	}
}

func TestDedupe_SharesStructures(t *testing.T) {
	point := func() *Schema {
		return &Schema{
			Type:       "object",
			Properties: map[string]*Schema{"x": Number(), "y": Number()},
			Required:   []string{"x", "y"},
		}
	}
	in := &Schema{
		Type: "object",
		Properties: map[string]*Schema{
			"from":  point(),
			"to":    point(),
			"label": String(),
			"path":  ArrayOf(point()),
		},
	}
	out := Dedupe(in)

	const ref = "#/definitions/dub_1"
	if out.Properties["from"].Ref != ref || out.Properties["to"].Ref != ref || out.Properties["path"].Items.Ref != ref {
		t.Fatalf("point not shared: %+v", out.Properties)
	}
	if out.Properties["label"].Type != "string" {
		t.Fatalf("label = %+v", out.Properties["label"])
	}
	if len(out.Definitions) != 1 || !reflect.DeepEqual(out.Definitions["dub_1"], point()) {
		t.Fatalf("definitions = %+v", out.Definitions)
	}
}

func TestDedupe_LeavesPrimitivesAndNonObjects(t *testing.T) {
	in := &Schema{
		Type:       "object",
		Properties: map[string]*Schema{"a": String(), "b": String()},
	}
	out := Dedupe(in)
	if out.Definitions != nil {
		t.Fatalf("primitives were factored: %v", out.Definitions)
	}
	if out.Properties["a"].Type != "string" {
		t.Fatalf("a = %+v", out.Properties["a"])
	}

	// roots without properties are not rewritten
	arr := ArrayOf(Enum("x"))
	if got := Dedupe(arr); !reflect.DeepEqual(got, arr) {
		t.Fatalf("array root rewritten: %+v", got)
	}
}

func TestParse_AdditionalProperties(t *testing.T) {
	s, err := Parse([]byte(`{"type":"object","additionalProperties":false,"properties":{"m":{"type":"object","additionalProperties":{"type":"integer"}}}}`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if s.AdditionalProperties != false {
		t.Fatalf("additionalProperties = %v", s.AdditionalProperties)
	}
	inner, ok := s.Properties["m"].AdditionalProperties.(*Schema)
	if !ok || inner.Type != "integer" {
		t.Fatalf("nested additionalProperties = %#v", s.Properties["m"].AdditionalProperties)
	}
}

func TestClone_IsDeep(t *testing.T) {
	s := &Schema{Type: "object", Properties: map[string]*Schema{"a": ArrayOf(String())}, Enum: []any{"x"}}
	c := s.Clone()
	c.Properties["a"].Items.Type = "integer"
	c.Enum[0] = "y"
	if s.Properties["a"].Items.Type != "string" || s.Enum[0] != "x" {
		t.Fatalf("clone shares state with original: %+v", s)
	}
}
