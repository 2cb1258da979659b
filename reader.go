package treecodec

import (
	"fmt"

	"github.com/reoring/treecodec/tree"
)

// TreeReader converts between document text and trees. Implementations live
// under source/. Reading text written by Write must give back an equal tree
// for every tree a codec can produce.
type TreeReader interface {
	Read(text string) (tree.Value, error)
	Write(v tree.Value) (string, error)
}

// DecodeText reads text with r and decodes the tree with c. A read failure
// is reported as an error outcome.
func DecodeText[T any](r TreeReader, c Codec[T], text string) Outcome[T] {
	v, err := r.Read(text)
	if err != nil {
		return Fail[T](err.Error())
	}
	return c.Decode(v)
}

// EncodeText encodes v with c and writes the tree with r.
func EncodeText[T any](r TreeReader, c Codec[T], v T) (string, error) {
	out, err := r.Write(c.Encode(v))
	if err != nil {
		return "", fmt.Errorf("write tree: %w", err)
	}
	return out, nil
}
