// Package toml reads and writes trees as TOML documents.
//
// Reading goes through github.com/BurntSushi/toml and restores the document's
// key order from the decoder metadata. Writing is done by hand because the
// library encoder sorts map keys. Within one table, plain key/value pairs are
// written before sub-tables and arrays of tables, as TOML requires.
package toml

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"time"

	bstoml "github.com/BurntSushi/toml"

	"github.com/reoring/treecodec/tree"
)

// ErrNull is returned by Write for trees holding Null, which TOML cannot
// represent.
var ErrNull = errors.New("toml: null values cannot be written")

// ErrIntRange is returned by Write for integers above MaxInt64, which TOML
// cannot represent.
var ErrIntRange = errors.New("toml: integer out of range")

// Reader implements the treecodec TreeReader contract for TOML.
type Reader struct{}

// New returns a TOML reader.
func New() Reader { return Reader{} }

// Read parses text into a mapping tree. Local dates and times are kept as
// their TOML text; offset date-times become RFC 3339 strings.
func (Reader) Read(text string) (tree.Value, error) {
	var doc map[string]any
	md, err := bstoml.Decode(text, &doc)
	if err != nil {
		return tree.Value{}, err
	}
	o := newOrder(md.Keys())
	return o.mapping(nil, doc)
}

// order records, per table path, the order in which child keys first
// appeared in the document.
type order map[string][]string

func pathID(path []string) string { return strings.Join(path, "\x00") }

func newOrder(keys []bstoml.Key) order {
	o := order{}
	seen := map[string]bool{}
	for _, k := range keys {
		for i := 1; i <= len(k); i++ {
			parent := pathID(k[:i-1])
			id := parent + "\x01" + k[i-1]
			if seen[id] {
				continue
			}
			seen[id] = true
			o[parent] = append(o[parent], k[i-1])
		}
	}
	return o
}

func (o order) mapping(path []string, src map[string]any) (tree.Value, error) {
	m := tree.NewMapping()
	known := o[pathID(path)]
	add := func(k string) error {
		x, ok := src[k]
		if !ok || m.Has(k) {
			return nil
		}
		v, err := o.value(append(slices.Clip(path), k), x)
		if err != nil {
			return err
		}
		m.Set(k, v)
		return nil
	}
	for _, k := range known {
		if err := add(k); err != nil {
			return tree.Value{}, err
		}
	}
	// Keys the metadata did not report keep a stable order.
	rest := make([]string, 0, len(src))
	for k := range src {
		if !m.Has(k) {
			rest = append(rest, k)
		}
	}
	slices.Sort(rest)
	for _, k := range rest {
		if err := add(k); err != nil {
			return tree.Value{}, err
		}
	}
	return m.Value(), nil
}

func (o order) value(path []string, x any) (tree.Value, error) {
	switch t := x.(type) {
	case map[string]any:
		return o.mapping(path, t)
	case []map[string]any:
		items := make([]tree.Value, 0, len(t))
		for _, el := range t {
			v, err := o.mapping(path, el)
			if err != nil {
				return tree.Value{}, err
			}
			items = append(items, v)
		}
		return tree.Sequence(items...), nil
	case []any:
		items := make([]tree.Value, 0, len(t))
		for _, el := range t {
			v, err := o.value(path, el)
			if err != nil {
				return tree.Value{}, err
			}
			items = append(items, v)
		}
		return tree.Sequence(items...), nil
	case time.Time:
		return tree.String(formatTime(t)), nil
	}
	return tree.FromAny(x)
}

func formatTime(t time.Time) string {
	switch t.Location().String() {
	case "datetime-local":
		return t.Format("2006-01-02T15:04:05.999999999")
	case "date-local":
		return t.Format("2006-01-02")
	case "time-local":
		return t.Format("15:04:05.999999999")
	}
	return t.Format(time.RFC3339Nano)
}

// Write renders v, which must be a mapping, as a TOML document.
func (Reader) Write(v tree.Value) (string, error) {
	m, ok := v.Map()
	if !ok {
		return "", fmt.Errorf("toml: document root must be a Map, found %s", v.Describe())
	}
	var w writer
	if err := w.table(nil, m); err != nil {
		return "", err
	}
	return w.b.String(), nil
}

type writer struct {
	b strings.Builder
}

func (w *writer) table(path []string, m *tree.Mapping) error {
	var subtables, arrays []string
	for _, p := range m.Pairs() {
		switch {
		case p.Value.IsMapping():
			subtables = append(subtables, p.Key)
			continue
		case isTableArray(p.Value):
			arrays = append(arrays, p.Key)
			continue
		}
		s, err := inline(p.Value)
		if err != nil {
			return fmt.Errorf("%s: %w", dotted(append(slices.Clip(path), p.Key)), err)
		}
		w.b.WriteString(key(p.Key))
		w.b.WriteString(" = ")
		w.b.WriteString(s)
		w.b.WriteString("\n")
	}
	for _, k := range subtables {
		sub, _ := m.Get(k)
		child, _ := sub.Map()
		p := append(slices.Clip(path), k)
		w.header("[" + dotted(p) + "]")
		if err := w.table(p, child); err != nil {
			return err
		}
	}
	for _, k := range arrays {
		seq, _ := m.Get(k)
		items, _ := seq.Items()
		p := append(slices.Clip(path), k)
		for _, it := range items {
			child, _ := it.Map()
			w.header("[[" + dotted(p) + "]]")
			if err := w.table(p, child); err != nil {
				return err
			}
		}
	}
	return nil
}

func (w *writer) header(h string) {
	if w.b.Len() > 0 {
		w.b.WriteString("\n")
	}
	w.b.WriteString(h)
	w.b.WriteString("\n")
}

func isTableArray(v tree.Value) bool {
	items, ok := v.Items()
	if !ok || len(items) == 0 {
		return false
	}
	for _, it := range items {
		if !it.IsMapping() {
			return false
		}
	}
	return true
}

func inline(v tree.Value) (string, error) {
	switch v.Kind() {
	case tree.KindNull:
		return "", ErrNull
	case tree.KindSequence:
		items, _ := v.Items()
		parts := make([]string, 0, len(items))
		for _, it := range items {
			s, err := inline(it)
			if err != nil {
				return "", err
			}
			parts = append(parts, s)
		}
		return "[" + strings.Join(parts, ", ") + "]", nil
	case tree.KindMapping:
		m, _ := v.Map()
		parts := make([]string, 0, m.Len())
		for _, p := range m.Pairs() {
			s, err := inline(p.Value)
			if err != nil {
				return "", err
			}
			parts = append(parts, key(p.Key)+" = "+s)
		}
		return "{" + strings.Join(parts, ", ") + "}", nil
	}
	x, _ := v.ScalarValue()
	switch s := x.(type) {
	case bool:
		return strconv.FormatBool(s), nil
	case int64:
		return strconv.FormatInt(s, 10), nil
	case uint64:
		return "", fmt.Errorf("%w: %d", ErrIntRange, s)
	case float64:
		return formatFloat(s), nil
	}
	return quote(v.Text()), nil
}

func formatFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return "nan"
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	}
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}

var bareKey = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

func key(k string) string {
	if bareKey.MatchString(k) {
		return k
	}
	return quote(k)
}

func dotted(path []string) string {
	parts := make([]string, len(path))
	for i, p := range path {
		parts[i] = key(p)
	}
	return strings.Join(parts, ".")
}

func quote(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\b':
			b.WriteString(`\b`)
		case '\t':
			b.WriteString(`\t`)
		case '\n':
			b.WriteString(`\n`)
		case '\f':
			b.WriteString(`\f`)
		case '\r':
			b.WriteString(`\r`)
		default:
			if r < 0x20 || r == 0x7f {
				fmt.Fprintf(&b, `\u%04X`, r)
				continue
			}
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}
