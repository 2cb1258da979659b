package treecodec

import (
	"errors"
	"math"
	"strconv"
	"strings"

	"github.com/spf13/cast"

	"github.com/reoring/treecodec/jsonschema"
	"github.com/reoring/treecodec/tree"
)

var (
	errFraction   = errors.New("value has a fractional part")
	errOutOfRange = errors.New("value out of range")
)

// primitive builds a leaf codec over scalars. Leaf codecs fail atomically:
// there is no partial scalar.
func primitive[T any](shape, typ string, schema *jsonschema.Schema, conv func(any) (T, error)) Codec[T] {
	return &funcCodec[T]{
		decode: func(v tree.Value) Outcome[T] {
			x, ok := v.ScalarValue()
			if !ok {
				return Fail[T](shapeMismatch(shape, v))
			}
			t, err := conv(x)
			if err != nil {
				return Fail[T](conversionFailure(v, typ, err))
			}
			return Success(t)
		},
		encode: func(t T) tree.Value { return tree.Scalar(t) },
		schema: jsonschema.Of(schema),
	}
}

type signedInt interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64
}

// signed converts to a signed integer type, rejecting values outside
// [lo, hi] instead of wrapping them.
func signed[T signedInt](lo, hi int64) func(any) (T, error) {
	return func(x any) (T, error) {
		n, err := toInt64(x)
		if err != nil {
			return 0, err
		}
		if n < lo || n > hi {
			return 0, errOutOfRange
		}
		return T(n), nil
	}
}

func toInt64(x any) (int64, error) {
	switch n := x.(type) {
	case uint64:
		return 0, errOutOfRange
	case float64:
		if n != math.Trunc(n) {
			return 0, errFraction
		}
		if n < -(1<<63) || n >= 1<<63 {
			return 0, errOutOfRange
		}
	}
	return cast.ToInt64E(x)
}

// toUint converts to uint. Values above MaxInt64 arrive as uint64 scalars
// or as decimal text.
func toUint(x any) (uint, error) {
	var u uint64
	switch n := x.(type) {
	case uint64:
		u = n
	case string:
		parsed, err := strconv.ParseUint(strings.TrimSpace(n), 0, 64)
		if err != nil {
			return toUintSigned(x)
		}
		u = parsed
	default:
		return toUintSigned(x)
	}
	if u > math.MaxUint {
		return 0, errOutOfRange
	}
	return uint(u), nil
}

func toUintSigned(x any) (uint, error) {
	n, err := toInt64(x)
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, errOutOfRange
	}
	return uint(n), nil
}

var (
	intCodec     = primitive("Integer", "int", jsonschema.Integer(), signed[int](math.MinInt, math.MaxInt))
	int64Codec   = primitive("Integer", "int64", jsonschema.Integer(), signed[int64](math.MinInt64, math.MaxInt64))
	int32Codec   = primitive("Integer", "int32", jsonschema.Integer(), signed[int32](math.MinInt32, math.MaxInt32))
	int16Codec   = primitive("Integer", "int16", jsonschema.Integer(), signed[int16](math.MinInt16, math.MaxInt16))
	int8Codec    = primitive("Integer", "int8", jsonschema.Integer(), signed[int8](math.MinInt8, math.MaxInt8))
	uintCodec    = primitive("Integer", "uint", jsonschema.Integer(), toUint)
	float64Codec = primitive("Number", "float64", jsonschema.Number(), cast.ToFloat64E)
	float32Codec = primitive("Number", "float32", jsonschema.Number(), cast.ToFloat32E)
	boolCodec    = primitive("Boolean", "bool", jsonschema.Boolean(), cast.ToBoolE)
	stringCodec  = primitive("String", "string", jsonschema.String(), cast.ToStringE)
)

func Int() Codec[int]         { return intCodec }
func Int64() Codec[int64]     { return int64Codec }
func Int32() Codec[int32]     { return int32Codec }
func Int16() Codec[int16]     { return int16Codec }
func Int8() Codec[int8]       { return int8Codec }
func Uint() Codec[uint]       { return uintCodec }
func Float64() Codec[float64] { return float64Codec }
func Float32() Codec[float32] { return float32Codec }
func Bool() Codec[bool]       { return boolCodec }

// String accepts any scalar and yields its textual form.
func String() Codec[string] { return stringCodec }

// Strings accepts a single string or a list of strings.
func Strings() Codec[[]string] { return ListOrSingle(stringCodec) }

// Any passes tree values through unchanged.
func Any() Codec[tree.Value] {
	return &funcCodec[tree.Value]{
		decode: func(v tree.Value) Outcome[tree.Value] { return Success(v) },
		encode: func(v tree.Value) tree.Value { return v },
		schema: jsonschema.Of(jsonschema.Any()),
	}
}

// MultiLineString accepts a string or a list of lines, joined with "\n".
// Text spanning several lines is written as a list of lines.
func MultiLineString() Codec[string] {
	lines := ListOf(stringCodec)
	return &funcCodec[string]{
		decode: func(v tree.Value) Outcome[string] {
			if v.IsSequence() {
				return MapValue(lines.Decode(v), func(xs []string) string { return strings.Join(xs, "\n") })
			}
			return stringCodec.Decode(v)
		},
		encode: func(s string) tree.Value {
			if strings.Contains(s, "\n") {
				return lines.Encode(strings.Split(s, "\n"))
			}
			return tree.String(s)
		},
		schema: jsonschema.Of(jsonschema.OneOf(jsonschema.String(), jsonschema.ArrayOf(jsonschema.String()))),
	}
}
