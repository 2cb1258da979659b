package treecodec

import (
	"errors"
	"math"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reoring/treecodec/tree"
)

func errText[T any](t *testing.T, o Outcome[T]) string {
	t.Helper()
	msg, ok := o.Err()
	require.True(t, ok, "expected an error, got %v", o)
	return msg
}

func TestPrimitives_RoundTrip(t *testing.T) {
	n, err := Int().Decode(Int().Encode(42)).Get()
	require.NoError(t, err)
	assert.Equal(t, 42, n)

	f, err := Float64().Decode(Float64().Encode(1.5)).Get()
	require.NoError(t, err)
	assert.Equal(t, 1.5, f)

	b, err := Bool().Decode(tree.String("true")).Get()
	require.NoError(t, err)
	assert.True(t, b)

	s, err := String().Decode(tree.Scalar(7)).Get()
	require.NoError(t, err)
	assert.Equal(t, "7", s)

	i8, err := Int8().Decode(tree.Scalar(int64(-3))).Get()
	require.NoError(t, err)
	assert.Equal(t, int8(-3), i8)

	for _, want := range []uint{0, 7, math.MaxInt64, math.MaxInt64 + 1, math.MaxUint64} {
		got, err := Uint().Decode(Uint().Encode(want)).Get()
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	for _, want := range []int64{math.MinInt64, math.MaxInt64} {
		got, err := Int64().Decode(Int64().Encode(want)).Get()
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	i32, err := Int32().Decode(Int32().Encode(math.MinInt32)).Get()
	require.NoError(t, err)
	assert.Equal(t, int32(math.MinInt32), i32)

	u, err := Uint().Decode(tree.String("18446744073709551615")).Get()
	require.NoError(t, err)
	assert.Equal(t, uint(math.MaxUint64), u)
}

func TestPrimitives_OutOfRange(t *testing.T) {
	assert.Equal(t, "Failed to convert '300' to int8: value out of range", errText(t, Int8().Decode(tree.Scalar(int64(300)))))
	assert.Equal(t, "Failed to convert '300' to int8: value out of range", errText(t, Int8().Decode(tree.String("300"))))
	assert.Equal(t, "Failed to convert '-129' to int8: value out of range", errText(t, Int8().Decode(tree.Scalar(-129))))
	assert.Equal(t, "Failed to convert '40000' to int16: value out of range", errText(t, Int16().Decode(tree.Scalar(40000))))
	assert.Equal(t, "Failed to convert '5e+09' to int32: value out of range", errText(t, Int32().Decode(tree.Scalar(5e9))))
	assert.Equal(t, "Failed to convert '1e+30' to int64: value out of range", errText(t, Int64().Decode(tree.Scalar(1e30))))
	assert.Equal(t, "Failed to convert '18446744073709551615' to int: value out of range",
		errText(t, Int().Decode(tree.Scalar(uint64(math.MaxUint64)))))
	assert.Equal(t, "Failed to convert '-1' to uint: value out of range", errText(t, Uint().Decode(tree.Scalar(-1))))

	n, err := Int8().Decode(tree.Scalar(127)).Get()
	require.NoError(t, err)
	assert.Equal(t, int8(127), n)
}

func TestPrimitives_Failures(t *testing.T) {
	assert.Equal(t, "Expected a Integer, but found Map.", errText(t, Int().Decode(tree.Map())))
	assert.True(t, strings.HasPrefix(errText(t, Int().Decode(tree.String("x"))), "Failed to convert 'x' to int: "))
	assert.True(t, strings.HasPrefix(errText(t, Int().Decode(tree.Scalar(2.5))), "Failed to convert '2.5' to int: "))
	assert.False(t, Int().Decode(tree.Null()).HasResult())
}

func TestMultiLineString(t *testing.T) {
	c := MultiLineString()
	s, err := c.Decode(tree.Sequence(tree.String("a"), tree.String("b"))).Get()
	require.NoError(t, err)
	assert.Equal(t, "a\nb", s)
	assert.True(t, tree.Sequence(tree.String("a"), tree.String("b")).Equal(c.Encode(s)))
	assert.True(t, tree.String("one").Equal(c.Encode("one")))
}

func TestListOf_AccumulatesErrors(t *testing.T) {
	o := ListOf(Int()).Decode(tree.Sequence(tree.String("1"), tree.String("x"), tree.String("3")))
	require.True(t, o.IsPartial())
	v, _ := o.Result()
	assert.Equal(t, []int{1, 3}, v)
	assert.True(t, strings.HasPrefix(errText(t, o), "Errors in '[1]':\n  - Failed to convert 'x' to int: "))

	assert.Equal(t, "Expected a List, but found String.", errText(t, ListOf(Int()).Decode(tree.String("1"))))
}

func TestListOrSingle(t *testing.T) {
	c := ListOrSingle(Int())
	single, err := c.Decode(tree.Scalar(5)).Get()
	require.NoError(t, err)
	assert.Equal(t, []int{5}, single)

	many, err := c.Decode(tree.Sequence(tree.Scalar(1), tree.Scalar(2))).Get()
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, many)

	assert.True(t, tree.Scalar(5).Equal(c.Encode([]int{5})))
	assert.True(t, tree.Sequence(tree.Scalar(1), tree.Scalar(2)).Equal(c.Encode([]int{1, 2})))
	assert.True(t, tree.Sequence().Equal(c.Encode(nil)))
}

func TestSetOf(t *testing.T) {
	got, err := SetOf(String()).Decode(tree.Sequence(tree.String("a"), tree.String("b"), tree.String("a"))).Get()
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, got)
}

type celsius float64

func TestMap(t *testing.T) {
	temp := Map(Float64(),
		func(f float64) (celsius, error) {
			if f < -273.15 {
				return 0, errors.New("below absolute zero")
			}
			return celsius(f), nil
		},
		func(c celsius) float64 { return float64(c) })

	c, err := temp.Decode(tree.Scalar(21.5)).Get()
	require.NoError(t, err)
	assert.Equal(t, celsius(21.5), c)
	assert.Equal(t, "below absolute zero", errText(t, temp.Decode(tree.Scalar(-300))))
	assert.True(t, tree.Scalar(21.5).Equal(temp.Encode(21.5)))
	assert.Same(t, Float64().Schema(), temp.Schema())
}

func TestMapOutcome(t *testing.T) {
	even := MapOutcome(Int(), func(n int) Outcome[int] {
		if n%2 != 0 {
			return PartialOf(n-1, "rounded down to even")
		}
		return Success(n)
	}, func(n int) int { return n })
	o := even.Decode(tree.Scalar(5))
	assert.True(t, o.IsPartial())
	assert.Equal(t, 4, o.OrDefault(0))
}

func TestCheck(t *testing.T) {
	port := Check(Int(), func(n int) bool { return n > 0 && n < 65536 }, "port out of range")
	assert.True(t, port.Decode(tree.Scalar(80)).IsSuccess())
	o := port.Decode(tree.Scalar(70000))
	assert.True(t, o.IsPartial())
	assert.Equal(t, "port out of range", errText(t, o))
}

func TestPreDecode(t *testing.T) {
	legacy := PreDecode(Int(), func(v tree.Value) tree.Value {
		if m, ok := v.Map(); ok {
			if inner, found := m.Get("value"); found {
				return inner
			}
		}
		return v
	})
	n, err := legacy.Decode(tree.Map(tree.P("value", tree.Scalar(9)))).Get()
	require.NoError(t, err)
	assert.Equal(t, 9, n)

	boom := PreDecode(Int(), func(tree.Value) tree.Value { panic("fixer failed") })
	assert.Equal(t, "fixer failed", errText(t, boom.Decode(tree.Null())))
}

func TestNew_RecoversPanics(t *testing.T) {
	c := New(func(tree.Value) Outcome[int] { panic(errors.New("kaput")) }, func(n int) tree.Value { return tree.Scalar(n) }, nil)
	assert.Equal(t, "kaput", errText(t, c.Decode(tree.Null())))
	assert.Equal(t, "", c.Schema().Node().Type)
}

func TestDescribe(t *testing.T) {
	c := Describe(Int(), "answer")
	assert.Equal(t, "answer", c.Schema().Node().Description)
	assert.Equal(t, "", Int().Schema().Node().Description)
}

func TestMapOf(t *testing.T) {
	c := MapOf(Int(), String())
	in := tree.Map(tree.P("2", tree.String("b")), tree.P("1", tree.String("a")), tree.P("x", tree.String("c")))
	o := c.Decode(in)
	require.True(t, o.IsPartial())
	got, _ := o.Result()
	assert.Equal(t, []Entry[int, string]{{Key: 2, Value: "b"}, {Key: 1, Value: "a"}}, got)
	assert.True(t, strings.HasPrefix(errText(t, o), "Errors in key 'x':\n  - "))

	back := c.Encode(got)
	m, _ := back.Map()
	assert.Equal(t, []string{"2", "1"}, m.Keys())
}

func TestMapOf_DuplicateDecodedKeys(t *testing.T) {
	c := MapOf(Int(), String())
	got, err := c.Decode(tree.Map(tree.P("1", tree.String("a")), tree.P("01", tree.String("b")))).Get()
	require.NoError(t, err)
	assert.Equal(t, []Entry[int, string]{{Key: 1, Value: "a"}}, got)
}

func TestStringMap_SortedEncoding(t *testing.T) {
	c := StringMap(Int())
	v := c.Encode(map[string]int{"b": 2, "a": 1, "c": 3})
	m, _ := v.Map()
	assert.Equal(t, []string{"a", "b", "c"}, m.Keys())

	back, err := c.Decode(v).Get()
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"a": 1, "b": 2, "c": 3}, back)
}

type span struct{ From, To int }

func spanCodecs() (Codec[span], Codec[span]) {
	from := FieldOf(Int(), "from", func(s span) int { return s.From })
	to := FieldOf(Int(), "to", func(s span) int { return s.To })
	ctor := func(a Args) (span, error) { return span{ValueOf(a, from), ValueOf(a, to)}, nil }
	return Inline(`\.\.`, "1..5", ctor, from, to), Record(ctor, from, to)
}

func TestDispatchByShape(t *testing.T) {
	inline, record := spanCodecs()
	c := DispatchByShape(inline, record)

	a, err := c.Decode(tree.String("1..5")).Get()
	require.NoError(t, err)
	assert.Equal(t, span{1, 5}, a)

	b, err := c.Decode(tree.Map(tree.P("from", tree.Scalar(2)), tree.P("to", tree.Scalar(3)))).Get()
	require.NoError(t, err)
	assert.Equal(t, span{2, 3}, b)

	assert.True(t, tree.String("2..3").Equal(c.Encode(b)))
	assert.Len(t, c.Schema().Node().AnyOf, 2)

	verbose := DispatchByShapeEncoding(inline, record, record)
	m, ok := verbose.Encode(b).Map()
	require.True(t, ok)
	assert.Equal(t, []string{"from", "to"}, m.Keys())
}

func TestInline_Mismatch(t *testing.T) {
	inline, _ := spanCodecs()
	assert.Equal(t, "Expected ‘1..5’, but got ‘1..2..3’.", errText(t, inline.Decode(tree.String("1..2..3"))))

	o := inline.Decode(tree.String("1 .. x"))
	require.True(t, o.IsPartial())
	assert.Equal(t, span{1, 0}, o.OrDefault(span{}))
	msg := errText(t, o)
	assert.True(t, strings.HasPrefix(msg, "Errors in 'to':\n  - "))
	assert.True(t, strings.HasSuffix(msg, "\nExpected ‘1..5’, but got ‘1 .. x’."), msg)
	assert.Equal(t, []any{"1..5"}, inline.Schema().Node().Examples)
}

type rgb struct{ R, G, B int }

func TestInline_PatternSeparator(t *testing.T) {
	r := FieldOf(Int(), "r", func(c rgb) int { return c.R })
	g := FieldOf(Int(), "g", func(c rgb) int { return c.G })
	b := FieldOf(Int(), "b", func(c rgb) int { return c.B })
	ctor := func(a Args) (rgb, error) { return rgb{ValueOf(a, r), ValueOf(a, g), ValueOf(a, b)}, nil }

	spaced := Inline(`\s+`, "10 20 30", ctor, r, g, b)
	got, err := spaced.Decode(tree.String("  10   20\t30 ")).Get()
	require.NoError(t, err)
	assert.Equal(t, rgb{10, 20, 30}, got)
	assert.True(t, tree.String("10 20 30").Equal(spaced.Encode(got)))

	commas := Inline(`\s*,\s*`, "1, 2, 3", ctor, r, g, b)
	got, err = commas.Decode(tree.String("4,5 ,  6")).Get()
	require.NoError(t, err)
	assert.Equal(t, rgb{4, 5, 6}, got)
	assert.True(t, tree.String("4, 5, 6").Equal(commas.Encode(got)))

	assert.Equal(t, "Expected ‘1, 2, 3’, but got ‘4,5’.", errText(t, commas.Decode(tree.String("4,5"))))
	assert.Panics(t, func() { Inline(`(`, "x", ctor, r) })
}

type treeNode struct {
	Name     string
	Children []*treeNode
}

func treeNodeCodec() Codec[*treeNode] {
	return Recursive(func(self Codec[*treeNode]) Codec[*treeNode] {
		name := FieldOf(String(), "name", func(n *treeNode) string { return n.Name })
		kids := FieldOf(ListOf(self), "children", func(n *treeNode) []*treeNode { return n.Children }).Default(nil)
		return Record(func(a Args) (*treeNode, error) {
			return &treeNode{Name: ValueOf(a, name), Children: ValueOf(a, kids)}, nil
		}, name, kids)
	})
}

func TestRecursive(t *testing.T) {
	c := treeNodeCodec()
	in := tree.Map(
		tree.P("name", tree.String("root")),
		tree.P("children", tree.Sequence(
			tree.Map(tree.P("name", tree.String("leaf"))),
			tree.Map(tree.P("name", tree.Scalar(3)), tree.P("children", tree.Sequence(tree.Map(tree.P("name", tree.String("deep")))))),
		)),
	)
	n, err := c.Decode(in).Get()
	require.NoError(t, err)
	require.Len(t, n.Children, 2)
	assert.Equal(t, "3", n.Children[1].Name)
	assert.Equal(t, "deep", n.Children[1].Children[0].Name)

	again, err := c.Decode(c.Encode(n)).Get()
	require.NoError(t, err)
	assert.True(t, c.Encode(n).Equal(c.Encode(again)))
}

func TestLazy_SupplierRunsOnce(t *testing.T) {
	calls := 0
	c := Lazy(func() Codec[int] {
		calls++
		return Int()
	})
	for i := range 3 {
		n, err := c.Decode(tree.String(strconv.Itoa(i))).Get()
		require.NoError(t, err)
		assert.Equal(t, i, n)
	}
	assert.Equal(t, 1, calls)
}

func TestLazy_ConcurrentFirstUse(t *testing.T) {
	var calls atomic.Int32
	c := Lazy(func() Codec[int] {
		calls.Add(1)
		return Int()
	})

	start := make(chan struct{})
	var wg sync.WaitGroup
	for i := range 32 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			n, err := c.Decode(tree.Scalar(i)).Get()
			assert.NoError(t, err)
			assert.Equal(t, i, n)
		}()
	}
	close(start)
	wg.Wait()
	assert.Equal(t, int32(1), calls.Load())
}

func TestRecursive_ConcurrentFirstUse(t *testing.T) {
	type chain struct {
		N    int
		Next *chain
	}
	var calls atomic.Int32
	c := Recursive(func(self Codec[*chain]) Codec[*chain] {
		calls.Add(1)
		n := FieldOf(Int(), "n", func(c *chain) int { return c.N })
		next := OptionalFieldOf(self, "next", func(c *chain) (*chain, bool) { return c.Next, c.Next != nil })
		return Record(func(a Args) (*chain, error) {
			out := &chain{N: ValueOf(a, n)}
			out.Next, _ = Present(a, next)
			return out, nil
		}, n, next)
	})
	in := tree.Map(tree.P("n", tree.Scalar(1)), tree.P("next", tree.Map(tree.P("n", tree.Scalar(2)))))

	start := make(chan struct{})
	var wg sync.WaitGroup
	for range 32 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			got, err := c.Decode(in).Get()
			if assert.NoError(t, err) && assert.NotNil(t, got.Next) {
				assert.Equal(t, 2, got.Next.N)
			}
			assert.NotNil(t, c.Schema().Node())
		}()
	}
	close(start)
	wg.Wait()
	assert.Equal(t, int32(1), calls.Load())
}

func TestLazy_PanickingSupplier(t *testing.T) {
	c := Lazy(func() Codec[int] { panic("not ready") })
	assert.Equal(t, "not ready", errText(t, c.Decode(tree.Null())))
}

func TestDecodeValue(t *testing.T) {
	got, err := DecodeValue(ListOf(Int()), []any{1, "2", int8(3)}).Get()
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, got)
}
