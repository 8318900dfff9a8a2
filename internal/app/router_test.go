package app

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	httpserver "github.com/fairyhunter13/thumbnail-analyzer/internal/adapter/httpserver"
	"github.com/fairyhunter13/thumbnail-analyzer/internal/config"
)

func TestParseOrigins(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name string
		in   string
		want []string
	}{
		{"empty", "", []string{"*"}},
		{"star", "*", []string{"*"}},
		{"single", "https://a.example", []string{"https://a.example"}},
		{"list with spaces", " https://a.example , https://b.example ", []string{"https://a.example", "https://b.example"}},
		{"only commas", ", ,", []string{"*"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, ParseOrigins(tc.in))
		})
	}
}

func testRouter(t *testing.T) http.Handler {
	t.Helper()
	cfg := config.Config{
		AppEnv:           "test",
		CORSAllowOrigins: "*",
		RateLimitPerMin:  100,
		HTTPWriteTimeout: 30 * time.Second,
		MaxUploadMB:      10,
	}
	// Handlers that touch providers are not exercised here; nil usecases are
	// fine for the static routes.
	srv := httpserver.NewServer(cfg, nil, nil, nil, nil)
	return BuildRouter(cfg, srv)
}

func TestRouterStaticRoutes(t *testing.T) {
	t.Parallel()
	h := testRouter(t)

	for _, path := range []string{"/", "/healthz", "/metrics"} {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, rec.Code, path)
	}
}

func TestRouterSecurityHeadersAndRequestID(t *testing.T) {
	t.Parallel()
	h := testRouter(t)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
	assert.NotEmpty(t, rec.Header().Get("Content-Security-Policy"))
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))
}

func TestRouterUnknownRoute(t *testing.T) {
	t.Parallel()
	h := testRouter(t)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/no_such_route", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRouterMethodNotAllowed(t *testing.T) {
	t.Parallel()
	h := testRouter(t)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/generate_script", nil))
	require.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
