package middleware_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pagesmith/webcore/core/cookie"
	"github.com/pagesmith/webcore/core/session"
	"github.com/pagesmith/webcore/middleware"
)

type profile struct {
	Username string `json:"username"`
	Admin    bool   `json:"admin"`
}

type testEnv struct {
	store   *session.RedisStore[profile]
	mr      *miniredis.Miniredis
	handler http.Handler
}

// setupEnv wires a miniredis-backed store through the middleware in front of
// a small mux exercising the session surface.
func setupEnv(t *testing.T, opts ...func(*middleware.SessionConfig[profile])) *testEnv {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	store, err := session.NewRedisStore[profile](client)
	require.NoError(t, err)

	manager, err := cookie.New(nil)
	require.NoError(t, err)

	cfg := middleware.SessionConfig[profile]{
		Store:   store,
		Cookies: cookie.Plaintext(manager),
		Expiry:  session.OnInactivity(time.Hour),
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /login", func(w http.ResponseWriter, r *http.Request) {
		sess := middleware.MustGetSession[profile](r.Context())
		if err := sess.Set(r.Context(), profile{Username: "jdoe"}); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusCreated)
		fmt.Fprint(w, "logged in")
	})
	mux.HandleFunc("GET /me", func(w http.ResponseWriter, r *http.Request) {
		sess := middleware.MustGetSession[profile](r.Context())
		user, err := sess.Get(r.Context())
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if user == nil {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_ = json.NewEncoder(w).Encode(user)
	})
	mux.HandleFunc("POST /logout", func(w http.ResponseWriter, r *http.Request) {
		sess := middleware.MustGetSession[profile](r.Context())
		if err := sess.Flush(r.Context()); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("POST /promote", func(w http.ResponseWriter, r *http.Request) {
		sess := middleware.MustGetSession[profile](r.Context())
		user, err := sess.Get(r.Context())
		if err != nil || user == nil {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		user.Admin = true
		if err := sess.Set(r.Context(), *user); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if err := sess.CycleID(r.Context()); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	})
	mux.HandleFunc("GET /ping", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, "pong")
	})

	return &testEnv{
		store:   store,
		mr:      mr,
		handler: middleware.SessionWithConfig(cfg)(mux),
	}
}

func (e *testEnv) do(t *testing.T, method, path string, sessionCookie *http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	r := httptest.NewRequest(method, path, nil)
	if sessionCookie != nil {
		r.AddCookie(sessionCookie)
	}
	w := httptest.NewRecorder()
	e.handler.ServeHTTP(w, r)
	return w
}

func sessionCookie(t *testing.T, w *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range w.Result().Cookies() {
		if c.Name == "id" {
			return c
		}
	}
	return nil
}

func TestSession_LoginIssuesCookie(t *testing.T) {
	env := setupEnv(t)

	w := env.do(t, http.MethodPost, "/login", nil)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "logged in", w.Body.String())

	c := sessionCookie(t, w)
	require.NotNil(t, c, "login must issue a session cookie")
	assert.Len(t, c.Value, 22)
	assert.True(t, c.HttpOnly)
	assert.True(t, c.Secure)
	assert.Equal(t, http.SameSiteStrictMode, c.SameSite)
	assert.Equal(t, "/", c.Path)
	assert.InDelta(t, 3600, c.MaxAge, 2, "max-age follows the inactivity policy")

	// The record lives in the store under the hashed id.
	id, err := session.ParseID(c.Value)
	require.NoError(t, err)
	rec, err := env.store.Load(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, "jdoe", rec.Data.Username)
}

func TestSession_ReturningVisitorSeesTheirData(t *testing.T) {
	env := setupEnv(t)

	login := env.do(t, http.MethodPost, "/login", nil)
	c := sessionCookie(t, login)
	require.NotNil(t, c)

	me := env.do(t, http.MethodGet, "/me", c)
	require.Equal(t, http.StatusOK, me.Code)

	var user profile
	require.NoError(t, json.NewDecoder(me.Body).Decode(&user))
	assert.Equal(t, "jdoe", user.Username)

	// A pure read issues no cookie and performs no write.
	assert.Nil(t, sessionCookie(t, me))
}

func TestSession_NoCookieNoStoreTraffic(t *testing.T) {
	env := setupEnv(t)

	w := env.do(t, http.MethodGet, "/ping", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Nil(t, sessionCookie(t, w))
	assert.Empty(t, env.mr.Keys(), "an untouched anonymous session never reaches the store")
}

func TestSession_ExpiredCookieRecoversSilently(t *testing.T) {
	env := setupEnv(t)

	login := env.do(t, http.MethodPost, "/login", nil)
	c := sessionCookie(t, login)
	require.NotNil(t, c)

	env.mr.FastForward(2 * time.Hour)

	// The stale cookie behaves like an anonymous visit, not an error.
	me := env.do(t, http.MethodGet, "/me", c)
	assert.Equal(t, http.StatusUnauthorized, me.Code)
}

func TestSession_UnauthorizedResponseRemovesCookie(t *testing.T) {
	env := setupEnv(t)

	login := env.do(t, http.MethodPost, "/login", nil)
	c := sessionCookie(t, login)
	require.NotNil(t, c)

	env.mr.FastForward(2 * time.Hour)

	me := env.do(t, http.MethodGet, "/me", c)
	require.Equal(t, http.StatusUnauthorized, me.Code)

	removal := sessionCookie(t, me)
	require.NotNil(t, removal, "a cookie-bearing 401 must send a removal")
	assert.Empty(t, removal.Value)
	assert.Equal(t, -1, removal.MaxAge)
}

func TestSession_LogoutRemovesCookieAndRecord(t *testing.T) {
	env := setupEnv(t)

	login := env.do(t, http.MethodPost, "/login", nil)
	c := sessionCookie(t, login)
	require.NotNil(t, c)

	logout := env.do(t, http.MethodPost, "/logout", c)
	require.Equal(t, http.StatusNoContent, logout.Code)

	removal := sessionCookie(t, logout)
	require.NotNil(t, removal)
	assert.Empty(t, removal.Value)
	assert.Equal(t, -1, removal.MaxAge)
	assert.Empty(t, env.mr.Keys(), "logout deletes the backing record")

	// The dead cookie no longer authenticates.
	me := env.do(t, http.MethodGet, "/me", c)
	assert.Equal(t, http.StatusUnauthorized, me.Code)
}

func TestSession_PrivilegeChangeRotatesIdentifier(t *testing.T) {
	env := setupEnv(t)

	login := env.do(t, http.MethodPost, "/login", nil)
	old := sessionCookie(t, login)
	require.NotNil(t, old)

	promote := env.do(t, http.MethodPost, "/promote", old)
	require.Equal(t, http.StatusOK, promote.Code)

	fresh := sessionCookie(t, promote)
	require.NotNil(t, fresh, "cycling must reissue the cookie")
	assert.NotEqual(t, old.Value, fresh.Value)

	// The old identifier is dead, the new one carries the promoted state.
	me := env.do(t, http.MethodGet, "/me", old)
	assert.Equal(t, http.StatusUnauthorized, me.Code)

	me = env.do(t, http.MethodGet, "/me", fresh)
	require.Equal(t, http.StatusOK, me.Code)
	var user profile
	require.NoError(t, json.NewDecoder(me.Body).Decode(&user))
	assert.True(t, user.Admin)
}

func TestSession_MalformedCookieTreatedAsAbsent(t *testing.T) {
	env := setupEnv(t)

	w := env.do(t, http.MethodGet, "/me", &http.Cookie{Name: "id", Value: "!!!not-a-session-id!!!"})
	require.Equal(t, http.StatusUnauthorized, w.Code)

	removal := sessionCookie(t, w)
	require.NotNil(t, removal, "a garbage cookie still gets cleaned up")
	assert.Equal(t, -1, removal.MaxAge)
}

func TestSession_SaveFailureMasksResponse(t *testing.T) {
	env := setupEnv(t)

	// Kill the backend between request start and the save at request end.
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess := middleware.MustGetSession[profile](r.Context())
		_ = sess.Set(r.Context(), profile{Username: "jdoe"})
		env.mr.Close()
		w.WriteHeader(http.StatusCreated)
		fmt.Fprint(w, "should never be seen")
	})

	manager, err := cookie.New(nil)
	require.NoError(t, err)
	wrapped := middleware.SessionWithConfig(middleware.SessionConfig[profile]{
		Store:   env.store,
		Cookies: cookie.Plaintext(manager),
	})(handler)

	w := httptest.NewRecorder()
	wrapped.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/login", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "should never be seen",
		"the client must not observe state that was not persisted")
	assert.Nil(t, sessionCookie(t, w))
}

func TestSession_SkipBypassesEverything(t *testing.T) {
	env := setupEnv(t, func(cfg *middleware.SessionConfig[profile]) {
		cfg.Skip = func(r *http.Request) bool { return r.URL.Path == "/ping" }
	})

	w := env.do(t, http.MethodGet, "/ping", &http.Cookie{Name: "id", Value: "garbage"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "pong", w.Body.String())
	assert.Nil(t, sessionCookie(t, w), "skipped requests get no cookie handling at all")
}

func TestSession_SignedCookieTamperRejected(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	store, err := session.NewRedisStore[profile](client)
	require.NoError(t, err)

	manager, err := cookie.New([]string{"a-signing-secret-of-sufficient-length"})
	require.NoError(t, err)

	wrapped := middleware.SessionWithConfig(middleware.SessionConfig[profile]{
		Store:   store,
		Cookies: cookie.Signed(manager),
	})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess := middleware.MustGetSession[profile](r.Context())
		user, err := sess.Get(r.Context())
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if user == nil {
			_ = sess.Set(r.Context(), profile{Username: "jdoe"})
			w.WriteHeader(http.StatusCreated)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))

	// First request establishes a signed cookie.
	w := httptest.NewRecorder()
	wrapped.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/", nil))
	require.Equal(t, http.StatusCreated, w.Code)

	var signed *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == "id" {
			signed = c
		}
	}
	require.NotNil(t, signed)
	assert.Greater(t, len(signed.Value), 22, "wire value carries a signature")

	// The genuine cookie round-trips.
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(signed)
	w = httptest.NewRecorder()
	wrapped.ServeHTTP(w, r)
	assert.Equal(t, http.StatusOK, w.Code)

	// A tampered cookie is treated as absent: the handler sees an anonymous
	// session and starts a new one.
	r = httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(&http.Cookie{Name: "id", Value: "z" + signed.Value[1:]})
	w = httptest.NewRecorder()
	wrapped.ServeHTTP(w, r)
	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestSession_StreamedBodySurvivesBuffering(t *testing.T) {
	env := setupEnv(t)

	w := env.do(t, http.MethodGet, "/ping", nil)
	body, err := io.ReadAll(w.Result().Body)
	require.NoError(t, err)
	assert.Equal(t, "pong", string(body))
}

func TestGetSession(t *testing.T) {
	t.Run("missing from context", func(t *testing.T) {
		_, ok := middleware.GetSession[profile](context.Background())
		assert.False(t, ok)
	})

	t.Run("must panics when absent", func(t *testing.T) {
		assert.Panics(t, func() {
			middleware.MustGetSession[profile](context.Background())
		})
	})
}
