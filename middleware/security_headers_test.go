package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pagesmith/webcore/middleware"
)

func serveWithHeaders(t *testing.T, mw func(http.Handler) http.Handler, path string) http.Header {
	t.Helper()
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w.Header()
}

func TestSecurityHeaders_Balanced(t *testing.T) {
	h := serveWithHeaders(t, middleware.SecurityHeaders(), "/")

	assert.Equal(t, "nosniff", h.Get("X-Content-Type-Options"))
	assert.Equal(t, "SAMEORIGIN", h.Get("X-Frame-Options"))
	assert.Equal(t, "max-age=31536000; includeSubDomains", h.Get("Strict-Transport-Security"))
	assert.NotEmpty(t, h.Get("Content-Security-Policy"))
	assert.Equal(t, "strict-origin-when-cross-origin", h.Get("Referrer-Policy"))
}

func TestSecurityHeaders_Strict(t *testing.T) {
	h := serveWithHeaders(t, middleware.SecurityHeadersWithConfig(middleware.StrictSecurity), "/")

	assert.Equal(t, "DENY", h.Get("X-Frame-Options"))
	assert.Contains(t, h.Get("Strict-Transport-Security"), "preload")
	assert.Contains(t, h.Get("Content-Security-Policy"), "default-src 'none'")
	assert.Equal(t, "require-corp", h.Get("Cross-Origin-Embedder-Policy"))
}

func TestSecurityHeaders_DevelopmentDisablesHSTS(t *testing.T) {
	h := serveWithHeaders(t, middleware.SecurityHeadersWithConfig(middleware.DevelopmentSecurity), "/")

	assert.Empty(t, h.Get("Strict-Transport-Security"))
	assert.Equal(t, "nosniff", h.Get("X-Content-Type-Options"))
}

func TestSecurityHeaders_CustomHeaders(t *testing.T) {
	cfg := middleware.BalancedSecurity
	cfg.CustomHeaders = map[string]string{"X-Application-Version": "1.2.3"}

	h := serveWithHeaders(t, middleware.SecurityHeadersWithConfig(cfg), "/")

	assert.Equal(t, "1.2.3", h.Get("X-Application-Version"))
}

func TestSecurityHeaders_EmptyValuesOmitted(t *testing.T) {
	h := serveWithHeaders(t, middleware.SecurityHeadersWithConfig(middleware.RelaxedSecurity), "/")

	assert.Empty(t, h.Get("X-Frame-Options"))
	assert.Empty(t, h.Get("Content-Security-Policy"))
	assert.Equal(t, "nosniff", h.Get("X-Content-Type-Options"))
}

func TestSecurityHeaders_Skip(t *testing.T) {
	cfg := middleware.BalancedSecurity
	cfg.Skip = func(r *http.Request) bool { return r.URL.Path == "/embed" }

	h := serveWithHeaders(t, middleware.SecurityHeadersWithConfig(cfg), "/embed")

	assert.Empty(t, h.Get("X-Content-Type-Options"))
}
