package routes

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/mallcart/api/controllers"
	"github.com/angelmondragon/mallcart/internal/cart"
	"github.com/angelmondragon/mallcart/pkg/auth"
	"github.com/angelmondragon/mallcart/pkg/config"
	"github.com/angelmondragon/mallcart/pkg/metrics"
	"github.com/angelmondragon/mallcart/pkg/storage/memory"
)

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "dev", Port: "8080"},
		Cart: config.CartConfig{
			Backend:         "memory",
			KeyPrefix:       "mall_cart_",
			GuestIdentity:   "guest",
			TokenSlot:       "token",
			LegacyTokenSlot: "authToken",
			IdentityClaims:  []string{"id", "_id", "sub"},
		},
	}
}

type testServer struct {
	handler http.Handler
	storage *memory.Store
	reg     *prometheus.Registry
}

func newTestServer(t *testing.T) testServer {
	t.Helper()
	cfg := testConfig()
	storage := memory.New()
	reg := prometheus.NewRegistry()
	factory := cart.Factory{
		Storage:   storage,
		KeyPrefix: cfg.Cart.KeyPrefix,
		Observer:  metrics.NewCartMetrics(reg),
	}
	checks := map[string]controllers.Pinger{"storage": storage}
	return testServer{
		handler: NewRouter(cfg, nil, factory, checks, reg),
		storage: storage,
		reg:     reg,
	}
}

func (s testServer) do(t *testing.T, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp := httptest.NewRecorder()
	s.handler.ServeHTTP(resp, req)
	return resp
}

func TestHealthRoutes(t *testing.T) {
	srv := newTestServer(t)

	for _, path := range []string{"/health/live", "/health/ready"} {
		resp := srv.do(t, http.MethodGet, path, "", "")
		assert.Equal(t, http.StatusOK, resp.Code, path)
		assert.NotEmpty(t, resp.Header().Get("X-Request-Id"), path)
	}
}

func TestCartRoutesPartitionByToken(t *testing.T) {
	srv := newTestServer(t)
	token, err := auth.MintDevToken("dev-secret", "user-42", time.Now(), time.Hour)
	require.NoError(t, err)

	resp := srv.do(t, http.MethodPost, "/api/v1/cart/items", token,
		`{"product": {"id": "p1", "title": "Shoe", "price": 40}, "quantity": 2}`)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	value, found, err := srv.storage.Get(context.Background(), "mall_cart_user-42")
	require.NoError(t, err)
	require.True(t, found)
	assert.Contains(t, value, `"productId":"p1"`)

	resp = srv.do(t, http.MethodGet, "/api/v1/cart", "", "")
	require.Equal(t, http.StatusOK, resp.Code)
	var envelope struct {
		Data struct {
			Items     []json.RawMessage `json:"items"`
			ItemCount int               `json:"itemCount"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&envelope))
	assert.Empty(t, envelope.Data.Items, "guest must not see user-42's cart")
}

func TestCartRouteLifecycle(t *testing.T) {
	srv := newTestServer(t)
	token, err := auth.MintDevToken("dev-secret", "u1", time.Now(), time.Hour)
	require.NoError(t, err)

	steps := []struct {
		method, path, body string
	}{
		{http.MethodPost, "/api/v1/cart/items", `{"product": {"id": "p1", "price": 40}}`},
		{http.MethodPatch, "/api/v1/cart/items/p1", `{"quantity": 3}`},
		{http.MethodDelete, "/api/v1/cart/items/p1", ""},
		{http.MethodDelete, "/api/v1/cart", ""},
	}
	for _, step := range steps {
		resp := srv.do(t, step.method, step.path, token, step.body)
		require.Equal(t, http.StatusOK, resp.Code, "%s %s: %s", step.method, step.path, resp.Body.String())
	}

	value, _, err := srv.storage.Get(context.Background(), "mall_cart_u1")
	require.NoError(t, err)
	assert.Equal(t, "[]", value)
}

func TestMetricsRoute(t *testing.T) {
	srv := newTestServer(t)
	srv.do(t, http.MethodPost, "/api/v1/cart/items", "", `{"product": {"id": "p1", "price": 1}}`)

	resp := srv.do(t, http.MethodGet, "/metrics", "", "")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), `cart_changes_total{kind="add"} 1`)
}

func TestMetricsRouteDisabledWithoutGatherer(t *testing.T) {
	h := NewRouter(testConfig(), nil, cart.Factory{Storage: memory.New()}, nil, nil)

	resp := httptest.NewRecorder()
	h.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, resp.Code)
}
