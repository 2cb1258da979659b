package treecodec

import (
	"regexp"
	"strings"

	"github.com/reoring/treecodec/jsonschema"
	"github.com/reoring/treecodec/tree"
)

// NewWildcard returns a codec decoding a single token or a list of tokens
// into domain values of l. A token is looked up as an exact key first; when
// that misses it is matched as a glob ('*' any run of characters, '?' one
// character) against every key, and all matching values are collected in
// table order, each value at most once per token.
//
// An unknown token is reported as an error but does not discard the other
// tokens' values. Encoding writes canonical keys and silently drops values
// outside the table.
func NewWildcard[V comparable](l *LookupCodec[V]) Codec[[]V] {
	return l.Wildcard()
}

func newWildcard[V comparable](l *LookupCodec[V]) Codec[[]V] {
	tokens := ListOf[string](&funcCodec[string]{
		decode: func(v tree.Value) Outcome[string] {
			if s, ok := v.Str(); ok {
				return Success(s)
			}
			return Fail[string](shapeMismatch("String", v))
		},
		encode: tree.String,
		schema: jsonschema.Of(jsonschema.String()),
	})
	return &funcCodec[[]V]{
		decode: func(v tree.Value) Outcome[[]V] {
			if v.IsSequence() {
				return FlatMap(tokens.Decode(v), func(toks []string) Outcome[[]V] {
					var out []V
					var errs []string
					for _, tok := range toks {
						vals, ok := l.match(tok)
						if !ok {
							errs = append(errs, unknownKey(tok))
							continue
						}
						out = append(out, vals...)
					}
					if len(errs) > 0 {
						return PartialOf(out, joinErrors(errs))
					}
					return Success(out)
				})
			}
			tok, ok := v.Str()
			if !ok {
				return Fail[[]V](shapeMismatch("String", v))
			}
			vals, ok := l.match(tok)
			if !ok {
				return Fail[[]V](unknownKey(tok))
			}
			return Success(vals)
		},
		encode: func(vs []V) tree.Value {
			items := make([]tree.Value, 0, len(vs))
			for _, v := range vs {
				if key, ok := l.KeyOf(v); ok {
					items = append(items, tree.String(key))
				}
			}
			return tree.Sequence(items...)
		},
		schema: jsonschema.Compose(func(c *jsonschema.Composer) *jsonschema.Schema {
			enum := c.Embed(l.Schema())
			return jsonschema.AnyOf(
				enum,
				jsonschema.ArrayOf(enum.Clone()),
				jsonschema.String(),
				jsonschema.ArrayOf(jsonschema.String()),
			)
		}),
	}
}

// match resolves one token to its values.
func (l *LookupCodec[V]) match(tok string) ([]V, bool) {
	if v, ok := l.Lookup(tok); ok {
		return []V{v}, true
	}
	re, err := globPattern(strings.ToLower(tok))
	if err != nil {
		return nil, false
	}
	var out []V
	seen := map[int]bool{}
	for _, k := range l.keys {
		if !re.MatchString(k) {
			continue
		}
		idx := l.table[k]
		if seen[idx] {
			continue
		}
		seen[idx] = true
		out = append(out, l.values[idx])
	}
	return out, len(out) > 0
}

// globPattern translates a glob into an anchored regular expression. Every
// character other than '*' and '?' is matched literally.
func globPattern(glob string) (*regexp.Regexp, error) {
	var b strings.Builder
	b.WriteString("^")
	for _, r := range glob {
		switch r {
		case '*':
			b.WriteString(".*")
		case '?':
			b.WriteString(".")
		default:
			b.WriteString(regexp.QuoteMeta(string(r)))
		}
	}
	b.WriteString("$")
	return regexp.Compile(b.String())
}
