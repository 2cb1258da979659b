package yaml

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	yamlv3 "gopkg.in/yaml.v3"

	"github.com/reoring/treecodec/tree"
)

// DuplicateKeyError reports a duplicate key found in a YAML mapping with both
// the first occurrence position and the duplicate occurrence position.
type DuplicateKeyError struct {
	Key       string
	FirstLine int
	FirstCol  int
	Line      int
	Col       int
}

func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("duplicate YAML key %q at %d:%d (first at %d:%d)", e.Key, e.Line, e.Col, e.FirstLine, e.FirstCol)
}

// Reader reads and writes YAML documents through yaml.Node so that key order
// is kept and duplicate keys are rejected with their positions.
type Reader struct {
	// Indent is the number of spaces per nesting level used by Write.
	Indent int
}

// New returns a Reader writing with two-space indentation.
func New() Reader { return Reader{Indent: 2} }

// Read parses the first document of text. Empty input reads as Null.
func (r Reader) Read(text string) (tree.Value, error) {
	docs, err := ReadAll(strings.NewReader(text))
	if err != nil {
		return tree.Value{}, err
	}
	if len(docs) == 0 {
		return tree.Null(), nil
	}
	return docs[0], nil
}

// ReadAll reads every document of a YAML stream.
func ReadAll(rd io.Reader) ([]tree.Value, error) {
	dec := yamlv3.NewDecoder(rd)
	var out []tree.Value
	for {
		var root yamlv3.Node
		if err := dec.Decode(&root); err != nil {
			if errors.Is(err, io.EOF) {
				return out, nil
			}
			return nil, err
		}
		v, err := fromNode(&root)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
}

func fromNode(n *yamlv3.Node) (tree.Value, error) {
	switch n.Kind {
	case yamlv3.DocumentNode:
		if len(n.Content) == 0 {
			return tree.Null(), nil
		}
		return fromNode(n.Content[0])
	case yamlv3.AliasNode:
		return fromNode(n.Alias)
	case yamlv3.MappingNode:
		m := tree.NewMapping()
		if err := fillMapping(m, n, map[string][2]int{}); err != nil {
			return tree.Value{}, err
		}
		return m.Value(), nil
	case yamlv3.SequenceNode:
		items := make([]tree.Value, 0, len(n.Content))
		for _, c := range n.Content {
			v, err := fromNode(c)
			if err != nil {
				return tree.Value{}, err
			}
			items = append(items, v)
		}
		return tree.Sequence(items...), nil
	case yamlv3.ScalarNode:
		return fromScalar(n), nil
	}
	return tree.Null(), nil
}

// fillMapping copies the entries of n into m. Merge keys ("<<") contribute
// the entries of the referenced mappings without overriding explicit keys.
func fillMapping(m *tree.Mapping, n *yamlv3.Node, first map[string][2]int) error {
	var merges []*yamlv3.Node
	for i := 0; i+1 < len(n.Content); i += 2 {
		k, v := n.Content[i], n.Content[i+1]
		if k.ShortTag() == "!!merge" {
			merges = append(merges, v)
			continue
		}
		key := k.Value
		if pos, dup := first[key]; dup {
			return &DuplicateKeyError{Key: key, FirstLine: pos[0], FirstCol: pos[1], Line: k.Line, Col: k.Column}
		}
		first[key] = [2]int{k.Line, k.Column}
		val, err := fromNode(v)
		if err != nil {
			return err
		}
		m.Set(key, val)
	}
	for _, src := range merges {
		for _, target := range mergeSources(src) {
			merged, err := fromNode(target)
			if err != nil {
				return err
			}
			inner, ok := merged.Map()
			if !ok {
				return fmt.Errorf("merge key at %d:%d must reference a mapping", src.Line, src.Column)
			}
			inner.Range(func(k string, v tree.Value) bool {
				if !m.Has(k) {
					m.Set(k, v)
				}
				return true
			})
		}
	}
	return nil
}

func mergeSources(n *yamlv3.Node) []*yamlv3.Node {
	if n.Kind == yamlv3.SequenceNode {
		return n.Content
	}
	return []*yamlv3.Node{n}
}

func fromScalar(n *yamlv3.Node) tree.Value {
	switch n.ShortTag() {
	case "!!null":
		return tree.Null()
	case "!!bool":
		if b, err := strconv.ParseBool(strings.ToLower(n.Value)); err == nil {
			return tree.Scalar(b)
		}
	case "!!int":
		digits := strings.ReplaceAll(n.Value, "_", "")
		if i, err := strconv.ParseInt(digits, 0, 64); err == nil {
			return tree.Scalar(i)
		}
		if u, err := strconv.ParseUint(digits, 0, 64); err == nil {
			return tree.Scalar(u)
		}
	case "!!float":
		switch strings.ToLower(n.Value) {
		case ".inf", "+.inf":
			return tree.Scalar(math.Inf(1))
		case "-.inf":
			return tree.Scalar(math.Inf(-1))
		case ".nan":
			return tree.Scalar(math.NaN())
		}
		if f, err := strconv.ParseFloat(strings.ReplaceAll(n.Value, "_", ""), 64); err == nil {
			return tree.Scalar(f)
		}
	}
	// Fallback to raw string
	return tree.String(n.Value)
}

// Write renders v as a YAML document.
func (r Reader) Write(v tree.Value) (string, error) {
	node, err := toNode(v)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	enc := yamlv3.NewEncoder(&buf)
	indent := r.Indent
	if indent <= 0 {
		indent = 2
	}
	enc.SetIndent(indent)
	if err := enc.Encode(node); err != nil {
		return "", err
	}
	if err := enc.Close(); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func toNode(v tree.Value) (*yamlv3.Node, error) {
	switch v.Kind() {
	case tree.KindNull:
		return &yamlv3.Node{Kind: yamlv3.ScalarNode, Tag: "!!null", Value: "null"}, nil
	case tree.KindScalar:
		return scalarNode(v), nil
	case tree.KindSequence:
		items, _ := v.Items()
		n := &yamlv3.Node{Kind: yamlv3.SequenceNode, Tag: "!!seq"}
		for _, it := range items {
			c, err := toNode(it)
			if err != nil {
				return nil, err
			}
			n.Content = append(n.Content, c)
		}
		return n, nil
	case tree.KindMapping:
		m, _ := v.Map()
		n := &yamlv3.Node{Kind: yamlv3.MappingNode, Tag: "!!map"}
		var err error
		m.Range(func(k string, it tree.Value) bool {
			var c *yamlv3.Node
			if c, err = toNode(it); err != nil {
				return false
			}
			n.Content = append(n.Content, &yamlv3.Node{Kind: yamlv3.ScalarNode, Tag: "!!str", Value: k}, c)
			return true
		})
		if err != nil {
			return nil, err
		}
		return n, nil
	}
	return nil, fmt.Errorf("unsupported tree kind %s", v.Kind())
}

func scalarNode(v tree.Value) *yamlv3.Node {
	x, _ := v.ScalarValue()
	switch s := x.(type) {
	case bool:
		return &yamlv3.Node{Kind: yamlv3.ScalarNode, Tag: "!!bool", Value: strconv.FormatBool(s)}
	case int64:
		return &yamlv3.Node{Kind: yamlv3.ScalarNode, Tag: "!!int", Value: strconv.FormatInt(s, 10)}
	case uint64:
		return &yamlv3.Node{Kind: yamlv3.ScalarNode, Tag: "!!int", Value: strconv.FormatUint(s, 10)}
	case float64:
		return &yamlv3.Node{Kind: yamlv3.ScalarNode, Tag: "!!float", Value: formatFloat(s)}
	}
	// Strings that would resolve to another type are quoted by the encoder.
	n := &yamlv3.Node{Kind: yamlv3.ScalarNode, Tag: "!!str", Value: v.Text()}
	if strings.Contains(n.Value, "\n") {
		n.Style = yamlv3.LiteralStyle
	}
	return n
}

func formatFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return ".nan"
	case math.IsInf(f, 1):
		return ".inf"
	case math.IsInf(f, -1):
		return "-.inf"
	}
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}
