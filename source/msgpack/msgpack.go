// Package msgpack reads and writes trees as MessagePack.
//
// Maps are decoded entry by entry so the wire order of keys is kept, which
// the library's map decoding would lose. Only string keys are accepted.
package msgpack

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/vmihailenco/msgpack/v5"
	"github.com/vmihailenco/msgpack/v5/msgpcode"

	"github.com/reoring/treecodec/tree"
)

// DuplicateKeyError reports a map holding the same key twice.
type DuplicateKeyError struct {
	Key string
}

func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("msgpack: duplicate key %q", e.Key)
}

// Reader implements the treecodec TreeReader contract. Read and Write carry
// binary MessagePack in a Go string.
type Reader struct{}

// New returns a MessagePack reader.
func New() Reader { return Reader{} }

// Read decodes exactly one value from text.
func (Reader) Read(text string) (tree.Value, error) {
	return Unmarshal([]byte(text))
}

// Write encodes v.
func (Reader) Write(v tree.Value) (string, error) {
	b, err := Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Unmarshal decodes exactly one value from data.
func Unmarshal(data []byte) (tree.Value, error) {
	dec := msgpack.NewDecoder(bytes.NewReader(data))
	v, err := Decode(dec)
	if err != nil {
		return tree.Value{}, err
	}
	if _, err := dec.PeekCode(); !errors.Is(err, io.EOF) {
		return tree.Value{}, errors.New("msgpack: trailing data after value")
	}
	return v, nil
}

// Decode reads the next value from dec.
func Decode(dec *msgpack.Decoder) (tree.Value, error) {
	c, err := dec.PeekCode()
	if err != nil {
		return tree.Value{}, err
	}
	switch {
	case c == msgpcode.Nil:
		if err := dec.DecodeNil(); err != nil {
			return tree.Value{}, err
		}
		return tree.Null(), nil
	case msgpcode.IsFixedMap(c) || c == msgpcode.Map16 || c == msgpcode.Map32:
		return decodeMap(dec)
	case msgpcode.IsFixedArray(c) || c == msgpcode.Array16 || c == msgpcode.Array32:
		n, err := dec.DecodeArrayLen()
		if err != nil {
			return tree.Value{}, err
		}
		items := make([]tree.Value, 0, max(n, 0))
		for i := 0; i < n; i++ {
			v, err := Decode(dec)
			if err != nil {
				return tree.Value{}, err
			}
			items = append(items, v)
		}
		return tree.Sequence(items...), nil
	case msgpcode.IsString(c) || msgpcode.IsBin(c):
		b, err := dec.DecodeBytes()
		if err != nil {
			return tree.Value{}, err
		}
		return tree.String(string(b)), nil
	case msgpcode.IsExt(c):
		return tree.Value{}, fmt.Errorf("msgpack: extension type 0x%x is not supported", c)
	}
	x, err := dec.DecodeInterfaceLoose()
	if err != nil {
		return tree.Value{}, err
	}
	return tree.FromAny(x)
}

func decodeMap(dec *msgpack.Decoder) (tree.Value, error) {
	n, err := dec.DecodeMapLen()
	if err != nil {
		return tree.Value{}, err
	}
	m := tree.NewMapping()
	for i := 0; i < n; i++ {
		c, err := dec.PeekCode()
		if err != nil {
			return tree.Value{}, err
		}
		if !msgpcode.IsString(c) {
			return tree.Value{}, fmt.Errorf("msgpack: map key must be a string, found code 0x%x", c)
		}
		k, err := dec.DecodeString()
		if err != nil {
			return tree.Value{}, err
		}
		if m.Has(k) {
			return tree.Value{}, &DuplicateKeyError{Key: k}
		}
		v, err := Decode(dec)
		if err != nil {
			return tree.Value{}, fmt.Errorf("key %q: %w", k, err)
		}
		m.Set(k, v)
	}
	return m.Value(), nil
}

// Marshal encodes v.
func Marshal(v tree.Value) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(msgpack.NewEncoder(&buf), v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Encode writes v to enc. Integers use the smallest encoding, floats are
// always written as 64-bit so they read back as floats.
func Encode(enc *msgpack.Encoder, v tree.Value) error {
	switch v.Kind() {
	case tree.KindNull:
		return enc.EncodeNil()
	case tree.KindSequence:
		items, _ := v.Items()
		if err := enc.EncodeArrayLen(len(items)); err != nil {
			return err
		}
		for _, it := range items {
			if err := Encode(enc, it); err != nil {
				return err
			}
		}
		return nil
	case tree.KindMapping:
		m, _ := v.Map()
		if err := enc.EncodeMapLen(m.Len()); err != nil {
			return err
		}
		for _, p := range m.Pairs() {
			if err := enc.EncodeString(p.Key); err != nil {
				return err
			}
			if err := Encode(enc, p.Value); err != nil {
				return err
			}
		}
		return nil
	}
	x, _ := v.ScalarValue()
	switch s := x.(type) {
	case bool:
		return enc.EncodeBool(s)
	case int64:
		return enc.EncodeInt(s)
	case uint64:
		return enc.EncodeUint(s)
	case float64:
		return enc.EncodeFloat64(s)
	case string:
		return enc.EncodeString(s)
	}
	return enc.EncodeString(v.Text())
}
