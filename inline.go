package treecodec

import (
	"regexp"
	"strings"

	"github.com/reoring/treecodec/i18n"
	"github.com/reoring/treecodec/jsonschema"
	"github.com/reoring/treecodec/tree"
)

// Inline builds a codec for a compact one-line form such as "10 20 30": the
// scalar is split by the regular expression sep and each part, trimmed, is
// decoded by the field at the same position. example is shown in errors and
// in the schema. Field names only label diagnostics.
//
// Encoding joins the parts with sep itself when it is a literal pattern,
// otherwise with the first text sep matches in example. Inline panics if sep
// does not compile.
//
// Inline is usually paired with a Record over the same fields through
// DispatchByShape so that either form is accepted.
func Inline[T any](sep, example string, ctor func(Args) (T, error), fields ...FieldSpec[T]) Codec[T] {
	re := regexp.MustCompile(sep)
	joiner := inlineJoiner(re, example)
	specs := make([]any, len(fields))
	for i, f := range fields {
		specs[i] = f
	}
	rec := &recordCodec[T]{ctor: ctor, fields: fields, specs: specs}
	return &funcCodec[T]{
		decode: func(v tree.Value) Outcome[T] {
			sOut := stringCodec.Decode(v)
			s, ok := sOut.Result()
			if !ok {
				return Propagate[T](sOut)
			}
			hint := i18n.T(CodeInlineMismatch, map[string]string{"expected": example, "found": s})
			parts := re.Split(strings.TrimSpace(s), -1)
			if len(parts) != len(fields) {
				return Fail[T](hint)
			}
			args := newArgs(specs)
			var errs []string
			for i, f := range fields {
				val, ok, msg := f.decodeValue(tree.String(strings.TrimSpace(parts[i])))
				if msg != "" {
					errs = append(errs, msg)
				}
				if ok {
					args.vals[i], args.has[i] = val, true
				}
			}
			out := rec.finish(args, errs)
			if out.HasError() {
				return out.WithError(hint)
			}
			return out
		},
		encode: func(t T) tree.Value {
			parts := make([]string, 0, len(fields))
			for _, f := range fields {
				enc, ok := f.encodeValue(t)
				if !ok {
					continue
				}
				parts = append(parts, keyText(enc))
			}
			return tree.String(strings.Join(parts, joiner))
		},
		schema: jsonschema.Of(&jsonschema.Schema{Type: "string", Examples: []any{example}}),
	}
}

func inlineJoiner(re *regexp.Regexp, example string) string {
	if lit, complete := re.LiteralPrefix(); complete {
		return lit
	}
	if loc := re.FindStringIndex(example); loc != nil && loc[1] > loc[0] {
		return example[loc[0]:loc[1]]
	}
	return re.String()
}
