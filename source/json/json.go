package json

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	j "github.com/goccy/go-json"

	"github.com/reoring/treecodec/tree"
)

// DuplicateKeyError reports an object key that appears twice.
type DuplicateKeyError struct {
	Key string
}

func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("duplicate JSON key %q", e.Key)
}

// Reader reads and writes JSON documents. Object key order is preserved in
// both directions.
type Reader struct {
	// Indent is the indentation unit used by Write; empty writes compact JSON.
	Indent string
}

// New returns a Reader writing with two-space indentation.
func New() Reader { return Reader{Indent: "  "} }

// Read parses one JSON document.
func (r Reader) Read(text string) (tree.Value, error) {
	return Decode(strings.NewReader(text))
}

// Decode parses one JSON document from rd. Trailing data is an error.
func Decode(rd io.Reader) (tree.Value, error) {
	dec := j.NewDecoder(rd)
	dec.UseNumber()
	v, err := readValue(dec)
	if err != nil {
		return tree.Value{}, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return tree.Value{}, errors.New("unexpected data after top-level value")
	}
	return v, nil
}

func readValue(dec *j.Decoder) (tree.Value, error) {
	tok, err := dec.Token()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return tree.Value{}, io.ErrUnexpectedEOF
		}
		return tree.Value{}, err
	}
	switch v := tok.(type) {
	case j.Delim:
		switch v {
		case '{':
			return readObject(dec)
		case '[':
			return readArray(dec)
		}
		return tree.Value{}, fmt.Errorf("unexpected delimiter %q", rune(v))
	case j.Number:
		return number(v)
	case string:
		return tree.String(v), nil
	case bool:
		return tree.Scalar(v), nil
	case nil:
		return tree.Null(), nil
	}
	return tree.Value{}, fmt.Errorf("unexpected token %T", tok)
}

func readObject(dec *j.Decoder) (tree.Value, error) {
	m := tree.NewMapping()
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return tree.Value{}, err
		}
		key, ok := tok.(string)
		if !ok {
			return tree.Value{}, fmt.Errorf("object key must be a string, got %T", tok)
		}
		if m.Has(key) {
			return tree.Value{}, &DuplicateKeyError{Key: key}
		}
		v, err := readValue(dec)
		if err != nil {
			return tree.Value{}, fmt.Errorf("%s: %w", key, err)
		}
		m.Set(key, v)
	}
	if _, err := dec.Token(); err != nil { // '}'
		return tree.Value{}, err
	}
	return m.Value(), nil
}

func readArray(dec *j.Decoder) (tree.Value, error) {
	var items []tree.Value
	for dec.More() {
		v, err := readValue(dec)
		if err != nil {
			return tree.Value{}, fmt.Errorf("[%d]: %w", len(items), err)
		}
		items = append(items, v)
	}
	if _, err := dec.Token(); err != nil { // ']'
		return tree.Value{}, err
	}
	return tree.Sequence(items...), nil
}

// number keeps integers as int64 (uint64 above MaxInt64) and everything
// else as float64.
func number(n j.Number) (tree.Value, error) {
	s := n.String()
	if !strings.ContainsAny(s, ".eE") {
		if i, err := strconv.ParseInt(s, 10, 64); err == nil {
			return tree.Scalar(i), nil
		}
		if u, err := strconv.ParseUint(s, 10, 64); err == nil {
			return tree.Scalar(u), nil
		}
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return tree.Value{}, fmt.Errorf("invalid number %q: %w", s, err)
	}
	return tree.Scalar(f), nil
}

// Write renders v as JSON.
func (r Reader) Write(v tree.Value) (string, error) {
	var buf bytes.Buffer
	if err := write(&buf, v, r.Indent, 0); err != nil {
		return "", err
	}
	if r.Indent != "" {
		buf.WriteByte('\n')
	}
	return buf.String(), nil
}

// Marshal renders v as compact JSON.
func Marshal(v tree.Value) ([]byte, error) {
	var buf bytes.Buffer
	if err := write(&buf, v, "", 0); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func newline(buf *bytes.Buffer, indent string, depth int) {
	if indent == "" {
		return
	}
	buf.WriteByte('\n')
	for i := 0; i < depth; i++ {
		buf.WriteString(indent)
	}
}

func write(buf *bytes.Buffer, v tree.Value, indent string, depth int) error {
	switch v.Kind() {
	case tree.KindNull:
		buf.WriteString("null")
	case tree.KindScalar:
		return writeScalar(buf, v)
	case tree.KindSequence:
		items, _ := v.Items()
		if len(items) == 0 {
			buf.WriteString("[]")
			return nil
		}
		buf.WriteByte('[')
		for i, it := range items {
			if i > 0 {
				buf.WriteByte(',')
			}
			newline(buf, indent, depth+1)
			if err := write(buf, it, indent, depth+1); err != nil {
				return err
			}
		}
		newline(buf, indent, depth)
		buf.WriteByte(']')
	case tree.KindMapping:
		m, _ := v.Map()
		if m.Len() == 0 {
			buf.WriteString("{}")
			return nil
		}
		buf.WriteByte('{')
		var err error
		i := 0
		m.Range(func(k string, it tree.Value) bool {
			if i > 0 {
				buf.WriteByte(',')
			}
			i++
			newline(buf, indent, depth+1)
			if err = writeString(buf, k); err != nil {
				return false
			}
			buf.WriteByte(':')
			if indent != "" {
				buf.WriteByte(' ')
			}
			err = write(buf, it, indent, depth+1)
			return err == nil
		})
		if err != nil {
			return err
		}
		newline(buf, indent, depth)
		buf.WriteByte('}')
	}
	return nil
}

func writeScalar(buf *bytes.Buffer, v tree.Value) error {
	x, _ := v.ScalarValue()
	switch s := x.(type) {
	case string:
		return writeString(buf, s)
	case bool:
		buf.WriteString(strconv.FormatBool(s))
	case int64:
		buf.WriteString(strconv.FormatInt(s, 10))
	case uint64:
		buf.WriteString(strconv.FormatUint(s, 10))
	case float64:
		if math.IsNaN(s) || math.IsInf(s, 0) {
			return fmt.Errorf("unsupported float value %v", s)
		}
		f := strconv.FormatFloat(s, 'g', -1, 64)
		if !strings.ContainsAny(f, ".eE") {
			f += ".0"
		}
		buf.WriteString(f)
	default:
		return writeString(buf, v.Text())
	}
	return nil
}

func writeString(buf *bytes.Buffer, s string) error {
	b, err := j.Marshal(s)
	if err != nil {
		return err
	}
	buf.Write(b)
	return nil
}
