// Package tree defines the generic document node that codecs read from and
// write to.
//
// A Value is Null, a Scalar (string, bool, int64 or float64), a Sequence of
// Values or a Mapping of string keys to Values. Mappings keep insertion order
// so that a read followed by a write reproduces the author's key order.
//
//	v := tree.Map(
//		tree.P("name", tree.String("demo")),
//		tree.P("ports", tree.Sequence(tree.Scalar(80), tree.Scalar(443))),
//	)
//
// Format readers (see the source/ packages) produce and consume Values.
package tree
