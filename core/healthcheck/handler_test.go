package healthcheck_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pagesmith/webcore/core/healthcheck"
	"github.com/pagesmith/webcore/integration/database/redis"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func probe(t *testing.T, h http.Handler) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	return w
}

func TestHandler_Liveness(t *testing.T) {
	w := probe(t, healthcheck.Handler(discardLogger()))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ALIVE", w.Body.String())
}

func TestHandler_ReadinessAllHealthy(t *testing.T) {
	ok := func(context.Context) error { return nil }

	w := probe(t, healthcheck.Handler(discardLogger(), ok, ok))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "READY", w.Body.String())
}

func TestHandler_ReadinessFailure(t *testing.T) {
	calls := 0
	failing := func(context.Context) error {
		calls++
		return errors.New("dependency down")
	}
	neverReached := func(context.Context) error {
		t.Fatal("checks after a failure must not run")
		return nil
	}

	w := probe(t, healthcheck.Handler(discardLogger(), failing, neverReached))

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, 1, calls)
}

func TestHandler_WithRedisCheck(t *testing.T) {
	mr := miniredis.RunT(t)

	client, err := redis.Connect(context.Background(), redis.Config{
		ConnectionURL: "redis://" + mr.Addr(),
		RetryAttempts: 1,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	h := healthcheck.Handler(discardLogger(), redis.Healthcheck(client))

	w := probe(t, h)
	assert.Equal(t, http.StatusOK, w.Code)

	mr.Close()

	w = probe(t, h)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
