package codec

import (
	"time"

	tc "github.com/reoring/treecodec"
	js "github.com/reoring/treecodec/jsonschema"
	"github.com/reoring/treecodec/tree"
)

// TimeRFC3339 returns a Codec that converts between RFC3339 strings and time.Time.
// Encoding normalizes to UTC.
func TimeRFC3339() tc.Codec[time.Time] {
	return tc.New(decodeRFC3339, func(t time.Time) tree.Value {
		return tree.String(formatRFC3339Canonical(t))
	}, &js.Schema{Type: "string", Format: "date-time"})
}

func decodeRFC3339(v tree.Value) tc.Outcome[time.Time] {
	s, ok := v.Str()
	if !ok {
		return tc.Failf[time.Time]("Expected an RFC3339 time string, but found %s.", v.Describe())
	}
	t, err := parseRFC3339(s)
	if err != nil {
		return tc.Failf[time.Time]("Invalid RFC3339 time '%s': %v", s, err)
	}
	return tc.Success(t)
}

func parseRFC3339(s string) (time.Time, error) {
	// Accept RFC3339Nano (trailing zeros optional)
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		if t2, err2 := time.Parse(time.RFC3339, s); err2 == nil {
			return t2, nil
		}
		return time.Time{}, err
	}
	return t, nil
}

func formatRFC3339Canonical(t time.Time) string {
	// Normalize to UTC and format using RFC3339Nano (Go trims trailing zeros)
	return t.UTC().Format(time.RFC3339Nano)
}
