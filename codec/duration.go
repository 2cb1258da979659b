package codec

import (
	"time"

	"github.com/spf13/cast"

	tc "github.com/reoring/treecodec"
	js "github.com/reoring/treecodec/jsonschema"
	"github.com/reoring/treecodec/tree"
)

// Duration converts between Go duration strings ("1h30m", "250ms") and
// time.Duration. Bare integers are read as seconds.
func Duration() tc.Codec[time.Duration] {
	return tc.New(func(v tree.Value) tc.Outcome[time.Duration] {
		x, ok := v.ScalarValue()
		if !ok {
			return tc.Failf[time.Duration]("Expected a duration, but found %s.", v.Describe())
		}
		if n, isInt := x.(int64); isInt {
			return tc.Success(time.Duration(n) * time.Second)
		}
		d, err := cast.ToDurationE(v.Text())
		if err != nil {
			return tc.Failf[time.Duration]("Invalid duration '%s': %v", v.Text(), err)
		}
		return tc.Success(d)
	}, func(d time.Duration) tree.Value {
		return tree.String(d.String())
	}, &js.Schema{Type: "string", Examples: []any{"30s", "1h30m"}})
}
