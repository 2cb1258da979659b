package treecodec

import (
	"errors"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOutcome_States(t *testing.T) {
	ok := Success(3)
	assert.True(t, ok.IsSuccess())
	assert.False(t, ok.IsPartial())
	assert.Equal(t, "Success[3]", ok.String())

	bad := Fail[int]("boom")
	assert.False(t, bad.HasResult())
	assert.True(t, bad.HasError())
	assert.Equal(t, 7, bad.OrDefault(7))
	assert.Equal(t, "Error[boom]", bad.String())

	part := PartialOf(1, "minor")
	assert.True(t, part.IsPartial())
	assert.Equal(t, "Partial[1, minor]", part.String())
}

func TestOutcome_GetAndAsError(t *testing.T) {
	_, err := Fail[int]("nope").Get()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMissingResult))
	assert.Contains(t, err.Error(), "nope")

	v, err := PartialOf(2, "warn").Get()
	require.NoError(t, err)
	assert.Equal(t, 2, v)

	assert.NoError(t, Success(1).AsError())
	assert.True(t, errors.Is(PartialOf(2, "warn").AsError(), ErrPartialResult))
	assert.True(t, errors.Is(Fail[int]("x").AsError(), ErrMissingResult))

	assert.Panics(t, func() { Fail[int]("x").MustGet() })
}

func TestOutcome_Partial(t *testing.T) {
	o, err := Fail[int]("kept").Partial(5)
	require.NoError(t, err)
	assert.True(t, o.IsPartial())
	msg, _ := o.Err()
	assert.Equal(t, "kept", msg)

	_, err = Success(1).Partial(2)
	assert.True(t, errors.Is(err, ErrAlreadyHasResult))
}

func TestOutcome_WithError(t *testing.T) {
	o := Success(1).WithError("a").WithError("b")
	msg, _ := o.Err()
	assert.Equal(t, "a\nb", msg)
	assert.True(t, o.IsPartial())
}

func TestFlatMap(t *testing.T) {
	parse := func(s string) Outcome[int] {
		n, err := strconv.Atoi(s)
		if err != nil {
			return Fail[int]("not a number")
		}
		return Success(n)
	}

	assert.Equal(t, Success(12), FlatMap(Success("12"), parse))

	prop := FlatMap(Fail[string]("upstream"), parse)
	msg, _ := prop.Err()
	assert.Equal(t, "upstream", msg)
	assert.False(t, prop.HasResult())

	joined := FlatMap(PartialOf("x", "first"), parse)
	msg, _ = joined.Err()
	assert.Equal(t, "first\nnot a number", msg)

	kept := FlatMap(PartialOf("4", "first"), parse)
	assert.True(t, kept.IsPartial())
	assert.Equal(t, 4, kept.OrDefault(0))

	panicked := FlatMap(Success(1), func(int) Outcome[int] { panic("bad") })
	msg, _ = panicked.Err()
	assert.Equal(t, "Failed to map data result!: bad", msg)
}

func TestMapValue(t *testing.T) {
	double := func(n int) int { return n * 2 }
	assert.Equal(t, Success(4), MapValue(Success(2), double))

	part := MapValue(PartialOf(2, "w"), double)
	assert.Equal(t, PartialOf(4, "w"), part)

	panicked := MapValue(Success(1), func(int) int { panic("bad") })
	msg, _ := panicked.Err()
	assert.Equal(t, "Failed to map value!: bad", msg)
}

func TestPropagate(t *testing.T) {
	o := Propagate[string](Fail[int]("why"))
	msg, _ := o.Err()
	assert.Equal(t, "why", msg)

	null := Propagate[string](Outcome[int]{})
	msg, _ = null.Err()
	assert.Equal(t, "Failed to map null!", msg)
}
