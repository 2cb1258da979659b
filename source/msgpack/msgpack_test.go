package msgpack

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/reoring/treecodec/tree"
)

func TestRoundTrip_KeepsOrderAndKinds(t *testing.T) {
	in := tree.Map(
		tree.P("z", tree.Scalar(1)),
		tree.P("a", tree.Scalar(2.0)),
		tree.P("m", tree.Map(tree.P("y", tree.Null()), tree.P("b", tree.Scalar(true)))),
		tree.P("l", tree.Sequence(tree.String("x"), tree.Scalar(-70000))),
	)
	r := New()
	out, err := r.Write(in)
	require.NoError(t, err)

	back, err := r.Read(out)
	require.NoError(t, err)
	assert.True(t, in.Equal(back), "got %s", back.Text())

	a, _ := back.Field("a")
	x, _ := a.ScalarValue()
	assert.IsType(t, float64(0), x)
}

func TestUnmarshal_LibraryEncodedMap(t *testing.T) {
	data, err := msgpack.Marshal(map[string]any{"only": uint8(7)})
	require.NoError(t, err)

	v, err := Unmarshal(data)
	require.NoError(t, err)
	assert.True(t, tree.Map(tree.P("only", tree.Scalar(7))).Equal(v), "got %s", v.Text())
}

func TestUnmarshal_DuplicateKey(t *testing.T) {
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	require.NoError(t, enc.EncodeMapLen(2))
	require.NoError(t, enc.EncodeString("k"))
	require.NoError(t, enc.EncodeInt(1))
	require.NoError(t, enc.EncodeString("k"))
	require.NoError(t, enc.EncodeInt(2))

	_, err := Unmarshal(buf.Bytes())
	var dup *DuplicateKeyError
	require.True(t, errors.As(err, &dup), "err = %v", err)
	assert.Equal(t, "k", dup.Key)
}

func TestUnmarshal_Rejects(t *testing.T) {
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	require.NoError(t, enc.EncodeMapLen(1))
	require.NoError(t, enc.EncodeInt(1))
	require.NoError(t, enc.EncodeInt(2))
	_, err := Unmarshal(buf.Bytes())
	require.Error(t, err)

	two := append([]byte{0x01}, 0x02)
	_, err = Unmarshal(two)
	require.Error(t, err)
}

func TestRoundTrip_LargeUnsigned(t *testing.T) {
	in := tree.Sequence(tree.Scalar(uint64(18446744073709551615)), tree.Scalar(uint64(300)))
	r := New()
	out, err := r.Write(in)
	require.NoError(t, err)

	back, err := r.Read(out)
	require.NoError(t, err)
	assert.True(t, in.Equal(back), "got %s", back.Text())
}
