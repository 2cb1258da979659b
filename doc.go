// Package treecodec converts between a format-neutral document tree and Go
// values through composable, bidirectional codecs.
//
// A Codec[T] decodes a tree.Value into an Outcome[T] and encodes a T back
// into a tree. Outcomes carry a result, an error message or both: a list
// with one bad item still decodes the good ones and reports the bad one.
//
// Layout:
//
//   - tree: the document tree shared by every format
//   - source/json, source/yaml, source/toml, source/msgpack: TreeReaders
//   - jsonschema: schema composition, deduplication and validation
//   - codec: codecs for common library types (time, duration, UUID)
//   - middleware: decoding HTTP request bodies
//   - cmd/treecodec: the command line tool
//
// Typical usage:
//
//	name := treecodec.FieldOf(treecodec.String(), "name", func(s Server) string { return s.Name })
//	port := treecodec.FieldOf(treecodec.Int(), "port", func(s Server) int { return s.Port }).Default(80)
//	c := treecodec.Record(func(a treecodec.Args) (Server, error) {
//		return Server{treecodec.ValueOf(a, name), treecodec.ValueOf(a, port)}, nil
//	}, name, port)
//
//	out := treecodec.DecodeText(yaml.New(), c, text)
//	srv, err := out.Get()
package treecodec
