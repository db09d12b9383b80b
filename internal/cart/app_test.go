package cart

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"Storefront/internal/catalog"
	"Storefront/internal/session"
	"Storefront/pkg/kit"
)

type lookupFunc func(ctx context.Context, id int64) (catalog.Product, bool, error)

func (f lookupFunc) GetByID(ctx context.Context, id int64) (catalog.Product, bool, error) {
	return f(ctx, id)
}

func memLookup() ProductLookup {
	return catalog.NewMemProvider()
}

type testCart struct {
	url      string
	sessions *Sessions
	store    *MemStore
}

func newTestCart(t *testing.T, lookup ProductLookup, limiter *kit.IPRateLimiter) testCart {
	t.Helper()

	store := NewMemStore()
	sessions := NewSessions(store, nil, nil, nil)
	s := &Server{
		Sessions:       sessions,
		Catalog:        lookup,
		Tokens:         session.NewTokenMaker("test-secret", time.Hour),
		Log:            zap.NewNop(),
		SessionLimiter: limiter,
	}

	ts := httptest.NewServer(NewHandler(s, HTTPDeps{
		Log:      zap.NewNop(),
		Service:  "cart",
		Registry: prometheus.NewRegistry(),
	}))
	t.Cleanup(ts.Close)
	return testCart{url: ts.URL, sessions: sessions, store: store}
}

type cartBody struct {
	Items []struct {
		Product   catalog.Product `json:"product"`
		Quantity  int             `json:"quantity"`
		UnitPrice string          `json:"unit_price"`
		LineTotal string          `json:"line_total"`
	} `json:"items"`
	TotalItems int     `json:"total_items"`
	Subtotal   string  `json:"subtotal"`
	Total      string  `json:"total"`
	Notice     *Notice `json:"notice"`
}

func do(t *testing.T, method, url, token string, body any, out any) int {
	t.Helper()

	var rd bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&rd).Encode(body))
	}
	req, err := http.NewRequest(method, url, &rd)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	if out != nil && resp.StatusCode < 300 && resp.StatusCode != http.StatusNoContent {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

// cartCall decodes into a fresh body so omitted notices read as nil.
func cartCall(t *testing.T, method, url, token string, body any) (int, cartBody) {
	t.Helper()

	var got cartBody
	status := do(t, method, url, token, body, &got)
	return status, got
}

func newSession(t *testing.T, url string) (string, string) {
	t.Helper()

	var s struct {
		SessionID string `json:"session_id"`
		Token     string `json:"token"`
	}
	require.Equal(t, http.StatusCreated, do(t, http.MethodPost, url+"/session", "", nil, &s))
	require.NotEmpty(t, s.Token)
	return s.SessionID, s.Token
}

func TestServer_CartFlow(t *testing.T) {
	c := newTestCart(t, memLookup(), nil)
	_, tok := newSession(t, c.url)

	status, got := cartCall(t, http.MethodGet, c.url+"/cart", tok, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Empty(t, got.Items)
	assert.Equal(t, "0", got.Subtotal)
	assert.Nil(t, got.Notice)

	status, got = cartCall(t, http.MethodPost, c.url+"/cart/items", tok, map[string]any{"product_id": 3})
	require.Equal(t, http.StatusOK, status)
	require.NotNil(t, got.Notice)
	assert.Equal(t, NoticeAdded, got.Notice.Kind)
	assert.Equal(t, 1, got.TotalItems)
	assert.Equal(t, "359.991", got.Subtotal)

	status, got = cartCall(t, http.MethodPost, c.url+"/cart/items", tok, map[string]any{"product_id": 3, "quantity": 2})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, NoticeQuantityUpdated, got.Notice.Kind)
	require.Len(t, got.Items, 1)
	assert.Equal(t, 3, got.Items[0].Quantity)
	assert.Equal(t, "1079.973", got.Total)

	status, got = cartCall(t, http.MethodPut, c.url+"/cart/items/3", tok, map[string]any{"quantity": 1})
	require.Equal(t, http.StatusOK, status)
	assert.Nil(t, got.Notice)
	assert.Equal(t, 1, got.TotalItems)

	status, got = cartCall(t, http.MethodPut, c.url+"/cart/items/3", tok, map[string]any{"quantity": 0})
	require.Equal(t, http.StatusOK, status)
	require.NotNil(t, got.Notice)
	assert.Equal(t, NoticeRemoved, got.Notice.Kind)
	assert.Empty(t, got.Items)

	status, got = cartCall(t, http.MethodPost, c.url+"/cart/items", tok, map[string]any{"product_id": 7})
	require.Equal(t, http.StatusOK, status)
	status, got = cartCall(t, http.MethodDelete, c.url+"/cart/items/7", tok, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, NoticeRemoved, got.Notice.Kind)

	status, got = cartCall(t, http.MethodDelete, c.url+"/cart/items/7", tok, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Nil(t, got.Notice)

	status, got = cartCall(t, http.MethodDelete, c.url+"/cart", tok, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, NoticeCleared, got.Notice.Kind)
}

func TestServer_RequiresSession(t *testing.T) {
	c := newTestCart(t, memLookup(), nil)

	assert.Equal(t, http.StatusUnauthorized, do(t, http.MethodGet, c.url+"/cart", "", nil, nil))
	assert.Equal(t, http.StatusUnauthorized, do(t, http.MethodGet, c.url+"/cart", "forged", nil, nil))

	other := session.NewTokenMaker("other-secret", time.Hour)
	_, tok, err := other.Issue()
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, do(t, http.MethodPost, c.url+"/cart/items", tok, map[string]any{"product_id": 1}, nil))
}

func TestServer_SessionsAreIsolated(t *testing.T) {
	c := newTestCart(t, memLookup(), nil)
	_, a := newSession(t, c.url)
	_, b := newSession(t, c.url)

	require.Equal(t, http.StatusOK, do(t, http.MethodPost, c.url+"/cart/items", a, map[string]any{"product_id": 1}, nil))

	var got cartBody
	require.Equal(t, http.StatusOK, do(t, http.MethodGet, c.url+"/cart", b, nil, &got))
	assert.Equal(t, 0, got.TotalItems)
}

func TestServer_EndSession(t *testing.T) {
	c := newTestCart(t, memLookup(), nil)
	sid, tok := newSession(t, c.url)

	require.Equal(t, http.StatusOK, do(t, http.MethodPost, c.url+"/cart/items", tok, map[string]any{"product_id": 1}, nil))
	_, ok, _ := c.store.Get(context.Background(), Key(sid))
	require.True(t, ok)

	require.Equal(t, http.StatusNoContent, do(t, http.MethodDelete, c.url+"/session", tok, nil, nil))
	_, ok, _ = c.store.Get(context.Background(), Key(sid))
	assert.False(t, ok)
	assert.Equal(t, 0, c.sessions.Len())

	// The token is still signed and unexpired, but its session is gone.
	assert.Equal(t, http.StatusUnauthorized, do(t, http.MethodPost, c.url+"/cart/items", tok, map[string]any{"product_id": 1}, nil))
	assert.Equal(t, http.StatusUnauthorized, do(t, http.MethodGet, c.url+"/cart", tok, nil, nil))
	assert.Equal(t, http.StatusUnauthorized, do(t, http.MethodDelete, c.url+"/session", tok, nil, nil))

	_, ok, _ = c.store.Get(context.Background(), Key(sid))
	assert.False(t, ok)
	assert.Equal(t, 0, c.sessions.Len())

	_, fresh := newSession(t, c.url)
	assert.Equal(t, http.StatusOK, do(t, http.MethodGet, c.url+"/cart", fresh, nil, nil))
}

func TestServer_BadRequests(t *testing.T) {
	c := newTestCart(t, memLookup(), nil)
	_, tok := newSession(t, c.url)

	cases := []struct {
		name   string
		method string
		path   string
		body   any
		want   int
	}{
		{"unknown product", http.MethodPost, "/cart/items", map[string]any{"product_id": 999}, http.StatusNotFound},
		{"zero id", http.MethodPost, "/cart/items", map[string]any{"product_id": 0}, http.StatusBadRequest},
		{"negative quantity", http.MethodPost, "/cart/items", map[string]any{"product_id": 1, "quantity": -1}, http.StatusBadRequest},
		{"too many", http.MethodPost, "/cart/items", map[string]any{"product_id": 1, "quantity": 101}, http.StatusBadRequest},
		{"unknown field", http.MethodPost, "/cart/items", map[string]any{"product_id": 1, "price": "0.01"}, http.StatusBadRequest},
		{"bad path id", http.MethodPut, "/cart/items/abc", map[string]any{"quantity": 1}, http.StatusBadRequest},
		{"not in cart", http.MethodPut, "/cart/items/5", map[string]any{"quantity": 2}, http.StatusNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, do(t, tc.method, c.url+tc.path, tok, tc.body, nil))
		})
	}
}

func TestServer_CatalogFailure(t *testing.T) {
	down := lookupFunc(func(context.Context, int64) (catalog.Product, bool, error) {
		return catalog.Product{}, false, catalog.ErrCatalogUnavailable
	})
	c := newTestCart(t, down, nil)
	_, tok := newSession(t, c.url)

	assert.Equal(t, http.StatusServiceUnavailable, do(t, http.MethodPost, c.url+"/cart/items", tok, map[string]any{"product_id": 1}, nil))

	var got cartBody
	require.Equal(t, http.StatusOK, do(t, http.MethodGet, c.url+"/cart", tok, nil, &got))
	assert.Empty(t, got.Items)
}

func TestServer_SessionRateLimit(t *testing.T) {
	c := newTestCart(t, memLookup(), kit.NewIPRateLimiter(2, time.Minute))

	newSession(t, c.url)
	newSession(t, c.url)
	assert.Equal(t, http.StatusTooManyRequests, do(t, http.MethodPost, c.url+"/session", "", nil, nil))
}
