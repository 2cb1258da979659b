package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reoring/treecodec"
	"github.com/reoring/treecodec/source/json"
)

type order struct {
	ID  string
	Qty int
}

func orderCodec() treecodec.Codec[order] {
	id := treecodec.FieldOf(treecodec.String(), "id", func(o order) string { return o.ID })
	qty := treecodec.FieldOf(treecodec.Int(), "qty", func(o order) int { return o.Qty })
	return treecodec.Record(func(a treecodec.Args) (order, error) {
		return order{ID: treecodec.ValueOf(a, id), Qty: treecodec.ValueOf(a, qty)}, nil
	}, id, qty)
}

func serve(t *testing.T, body string, opts ...Option) (*httptest.ResponseRecorder, *order) {
	t.Helper()
	var seen *order
	h := Decode(json.New(), orderCodec(), opts...)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		v, ok := ValueFromContext[order](r.Context())
		require.True(t, ok)
		seen = &v
		w.WriteHeader(http.StatusNoContent)
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader(body)))
	return rec, seen
}

func TestDecode_Success(t *testing.T) {
	rec, got := serve(t, `{"id":"a-1","qty":3}`)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	require.NotNil(t, got)
	assert.Equal(t, order{ID: "a-1", Qty: 3}, *got)
}

func TestDecode_RejectsBadBody(t *testing.T) {
	rec, got := serve(t, `[1,2]`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Nil(t, got)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"error":"Expected a Map, but found List."}`, rec.Body.String())
}

func TestDecode_Partial(t *testing.T) {
	rec, got := serve(t, `{"id":"a-1","qty":"many"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Nil(t, got)
	assert.Contains(t, rec.Body.String(), "Errors in 'qty'")

	rec, got = serve(t, `{"id":"a-1","qty":"many"}`, AllowPartial())
	assert.Equal(t, http.StatusNoContent, rec.Code)
	require.NotNil(t, got)
	assert.Equal(t, "a-1", got.ID)
}

func TestDecode_BodyLimit(t *testing.T) {
	rec, _ := serve(t, `{"id":"a-1","qty":3}`, MaxBodyBytes(5))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "exceeds 5 bytes")
}

func TestOutcomeFromContext_Missing(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	_, ok := OutcomeFromContext[order](req.Context())
	assert.False(t, ok)
	_, ok = ValueFromContext[order](req.Context())
	assert.False(t, ok)
}
