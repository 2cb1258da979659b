package codec

import (
	"github.com/google/uuid"

	tc "github.com/reoring/treecodec"
	js "github.com/reoring/treecodec/jsonschema"
	"github.com/reoring/treecodec/tree"
)

// UUID converts between the canonical textual form and uuid.UUID. Decoding
// also accepts the braced and urn:uuid: forms.
func UUID() tc.Codec[uuid.UUID] {
	return tc.New(func(v tree.Value) tc.Outcome[uuid.UUID] {
		s, ok := v.Str()
		if !ok {
			return tc.Failf[uuid.UUID]("Expected a UUID string, but found %s.", v.Describe())
		}
		id, err := uuid.Parse(s)
		if err != nil {
			return tc.Failf[uuid.UUID]("Invalid UUID '%s': %v", s, err)
		}
		return tc.Success(id)
	}, func(id uuid.UUID) tree.Value {
		return tree.String(id.String())
	}, &js.Schema{Type: "string", Format: "uuid"})
}
