// Package middleware decodes HTTP request bodies with a codec at the server
// boundary and hands the outcome to the next handler through the context.
package middleware

import (
	"context"
	"fmt"
	"io"
	"net/http"

	json "github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/reoring/treecodec"
)

// ctxKeyOutcome is a typed context key for storing Outcome[T].
// Using a generic struct type ensures uniqueness per T.
type ctxKeyOutcome[T any] struct{}

// ContextWithOutcome attaches an Outcome[T] to the context.
func ContextWithOutcome[T any](ctx context.Context, o treecodec.Outcome[T]) context.Context {
	return context.WithValue(ctx, ctxKeyOutcome[T]{}, o)
}

// OutcomeFromContext retrieves an Outcome[T] from context.
func OutcomeFromContext[T any](ctx context.Context) (treecodec.Outcome[T], bool) {
	o, ok := ctx.Value(ctxKeyOutcome[T]{}).(treecodec.Outcome[T])
	return o, ok
}

// ValueFromContext returns the decoded value stored by Decode.
func ValueFromContext[T any](ctx context.Context) (T, bool) {
	o, ok := OutcomeFromContext[T](ctx)
	if !ok {
		var zero T
		return zero, false
	}
	return o.Result()
}

// DefaultMaxBodyBytes caps request bodies read by Decode.
const DefaultMaxBodyBytes int64 = 1 << 20

// DecodeRequest reads the body of r, at most limit bytes, and decodes it.
// A limit of 0 or less means DefaultMaxBodyBytes.
func DecodeRequest[T any](r *http.Request, reader treecodec.TreeReader, c treecodec.Codec[T], limit int64) treecodec.Outcome[T] {
	if limit <= 0 {
		limit = DefaultMaxBodyBytes
	}
	if r.Body == nil {
		return treecodec.Fail[T]("request has no body")
	}
	body, err := io.ReadAll(io.LimitReader(r.Body, limit+1))
	if err != nil {
		return treecodec.Failf[T]("read body: %v", err)
	}
	if int64(len(body)) > limit {
		return treecodec.Failf[T]("request body exceeds %d bytes", limit)
	}
	return treecodec.DecodeText(reader, c, string(body))
}

// ErrorPayload shapes a diagnostic for JSON responses.
func ErrorPayload(msg string) map[string]any {
	return map[string]any{"error": msg}
}

// Option configures Decode.
type Option func(*options)

type options struct {
	allowPartial bool
	maxBytes     int64
	log          *zap.Logger
}

// AllowPartial lets requests through when decoding produced a value along
// with diagnostics. The handler can inspect the outcome from the context.
func AllowPartial() Option { return func(o *options) { o.allowPartial = true } }

// MaxBodyBytes sets the body size limit.
func MaxBodyBytes(n int64) Option { return func(o *options) { o.maxBytes = n } }

// WithLogger logs rejected requests at Info.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.log = l
		}
	}
}

// Decode returns middleware that decodes each request body with c, stores
// the outcome in the request context and calls next. Requests whose body
// does not decode are answered with 400 and an ErrorPayload.
func Decode[T any](reader treecodec.TreeReader, c treecodec.Codec[T], opts ...Option) func(http.Handler) http.Handler {
	o := options{maxBytes: DefaultMaxBodyBytes, log: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			out := DecodeRequest(r, reader, c, o.maxBytes)
			if !out.HasResult() || (out.HasError() && !o.allowPartial) {
				msg, _ := out.Err()
				o.log.Info("request rejected",
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.String("error", msg))
				writeJSON(w, http.StatusBadRequest, ErrorPayload(msg))
				return
			}
			next.ServeHTTP(w, r.WithContext(ContextWithOutcome(r.Context(), out)))
		})
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	b, err := json.Marshal(payload)
	if err != nil {
		http.Error(w, fmt.Sprintf("encode response: %v", err), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(b)
}
