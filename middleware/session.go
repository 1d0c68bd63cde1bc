package middleware

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/pagesmith/webcore/core/cookie"
	"github.com/pagesmith/webcore/core/logger"
	"github.com/pagesmith/webcore/core/session"
)

type sessionKey struct{}

// defaultCookieName deliberately reveals nothing about the stack.
const defaultCookieName = "id"

// SessionConfig configures the session middleware.
type SessionConfig[Data any] struct {
	// Store persists session records (required).
	Store session.Store[Data]
	// Cookies reads and writes the session cookie (required). Pick
	// cookie.Plaintext or cookie.Signed at configuration time.
	Cookies cookie.Controller
	// CookieName overrides the session cookie name (default: "id").
	CookieName string
	// Expiry is the policy applied to sessions created during the request
	// (default: session-end).
	Expiry session.Expiry
	// Path/Domain/Secure/HTTPOnly/SameSite shape the issued cookie.
	// Defaults: "/", empty, true, true, strict.
	Path     string
	Domain   string
	Secure   *bool
	HTTPOnly *bool
	SameSite http.SameSite
	// Logger for structured logging (default: slog with io.Discard).
	Logger *slog.Logger
	// Skip defines a function to skip middleware execution for specific
	// requests. Streaming handlers must be skipped: the middleware buffers
	// the response to decide cookies after the handler runs.
	Skip func(r *http.Request) bool
}

// Session creates middleware that binds a lazily-loaded session to each
// request and reconciles the cookie with the session's end-of-request state.
//
// Per request the middleware:
//   - reads the session cookie (a malformed or tampered value is treated as
//     absent),
//   - injects a session handle into the request context without touching the
//     store,
//   - runs the handler against a buffered response,
//   - then issues, refreshes, or removes the cookie based on what the
//     handler did.
//
// An inbound cookie whose session ended up empty, or a 401 response, yields
// a removal cookie. A dirty session on a non-5xx response is persisted (or
// deleted, if it was emptied) and the cookie set from the confirmed
// identifier; a failed persist masks the handler's response with a plain
// 500 so the client never observes state that was not saved.
//
// Usage:
//
//	mux.Handle("/", middleware.Session[AuthUser](store, cookie.Plaintext(manager))(handler))
//
//	func handler(w http.ResponseWriter, r *http.Request) {
//		sess := middleware.MustGetSession[AuthUser](r.Context())
//		user, err := sess.Get(r.Context())
//		...
//	}
func Session[Data any](store session.Store[Data], cookies cookie.Controller) func(http.Handler) http.Handler {
	return SessionWithConfig(SessionConfig[Data]{
		Store:   store,
		Cookies: cookies,
	})
}

// SessionWithConfig creates session middleware with custom configuration.
func SessionWithConfig[Data any](cfg SessionConfig[Data]) func(http.Handler) http.Handler {
	if cfg.Store == nil {
		panic("session middleware: store is required")
	}
	if cfg.Cookies == nil {
		panic("session middleware: cookie controller is required")
	}

	if cfg.CookieName == "" {
		cfg.CookieName = defaultCookieName
	}
	if cfg.Path == "" {
		cfg.Path = "/"
	}
	if cfg.Secure == nil {
		cfg.Secure = ptr(true)
	}
	if cfg.HTTPOnly == nil {
		cfg.HTTPOnly = ptr(true)
	}
	if cfg.SameSite == 0 {
		cfg.SameSite = http.SameSiteStrictMode
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if cfg.Skip != nil && cfg.Skip(r) {
				next.ServeHTTP(w, r)
				return
			}

			id, hadCookie := readSessionID(r, cfg)

			sess := session.New(id, cfg.Store, cfg.Expiry, cfg.Logger)
			ctx := context.WithValue(r.Context(), sessionKey{}, sess)

			bw := &bufferedWriter{rw: w}
			next.ServeHTTP(bw, r.WithContext(ctx))

			finishSession(ctx, bw, sess, hadCookie, cfg)
			bw.flush()
		})
	}
}

// readSessionID extracts and validates the inbound session identifier.
// hadCookie reports whether any value arrived, valid or not, since a removal
// cookie is only worth sending to a client that holds one.
func readSessionID[Data any](r *http.Request, cfg SessionConfig[Data]) (*session.ID, bool) {
	raw, err := cfg.Cookies.Get(r, cfg.CookieName)
	if err != nil {
		if errors.Is(err, cookie.ErrCookieNotFound) {
			return nil, false
		}
		// Present but unreadable (for example a bad signature) still counts
		// as an inbound cookie, so an empty session sends the removal.
		cfg.Logger.WarnContext(r.Context(), "rejected session cookie",
			logger.Error(err))
		return nil, true
	}

	id, err := session.ParseID(raw)
	if err != nil {
		cfg.Logger.WarnContext(r.Context(), "malformed session id in cookie",
			logger.Error(err))
		return nil, true
	}

	return &id, true
}

// finishSession applies the end-of-request cookie decision table.
func finishSession[Data any](ctx context.Context, bw *bufferedWriter, sess *session.Session[Data], hadCookie bool, cfg SessionConfig[Data]) {
	switch {
	case hadCookie && (sess.IsEmpty() || bw.statusCode() == http.StatusUnauthorized):
		cfg.Cookies.Remove(bw.rw, cfg.CookieName, cookieAttrs(cfg, 0)...)

	case sess.ShouldSave() && bw.statusCode() < http.StatusInternalServerError:
		if sess.IsEmpty() {
			// Nothing worth a record or a cookie. Best-effort cleanup of
			// whatever the identifier pointed at.
			if err := sess.Delete(ctx); err != nil {
				cfg.Logger.ErrorContext(ctx, "failed to delete empty session",
					logger.Error(err))
			}
			return
		}

		if err := sess.Save(ctx); err != nil {
			cfg.Logger.ErrorContext(ctx, "failed to save session",
				logger.Error(err))
			bw.mask(http.StatusInternalServerError)
			return
		}

		id, ok := sess.ID()
		if !ok {
			cfg.Logger.ErrorContext(ctx, "session saved without a confirmed id")
			bw.mask(http.StatusInternalServerError)
			return
		}

		if err := cfg.Cookies.Set(bw.rw, cfg.CookieName, id.String(), cookieAttrs(cfg, sess.Expiry().MaxAge())...); err != nil {
			cfg.Logger.ErrorContext(ctx, "failed to set session cookie",
				logger.Error(err))
			bw.mask(http.StatusInternalServerError)
		}
	}
}

func cookieAttrs[Data any](cfg SessionConfig[Data], maxAge int) []cookie.Option {
	return []cookie.Option{
		cookie.WithPath(cfg.Path),
		cookie.WithDomain(cfg.Domain),
		cookie.WithMaxAge(maxAge),
		cookie.WithSecure(*cfg.Secure),
		cookie.WithHTTPOnly(*cfg.HTTPOnly),
		cookie.WithSameSite(cfg.SameSite),
	}
}

// GetSession retrieves the session handle from the request context.
func GetSession[Data any](ctx context.Context) (*session.Session[Data], bool) {
	sess, ok := ctx.Value(sessionKey{}).(*session.Session[Data])
	return sess, ok
}

// MustGetSession retrieves the session handle or panics if the middleware
// did not run. Use when session presence is guaranteed by routing.
func MustGetSession[Data any](ctx context.Context) *session.Session[Data] {
	sess, ok := GetSession[Data](ctx)
	if !ok {
		panic("session not found in context")
	}
	return sess
}

func ptr[T any](v T) *T { return &v }

// bufferedWriter holds the handler's status and body until the cookie
// decision is made. Headers pass through to the underlying writer's header
// map, which net/http does not flush until WriteHeader, so Set-Cookie can
// still be added after the handler returns.
type bufferedWriter struct {
	rw     http.ResponseWriter
	status int
	body   bytes.Buffer
	masked bool
}

func (b *bufferedWriter) Header() http.Header {
	return b.rw.Header()
}

func (b *bufferedWriter) WriteHeader(code int) {
	if b.status == 0 {
		b.status = code
	}
}

func (b *bufferedWriter) Write(p []byte) (int, error) {
	if b.status == 0 {
		b.status = http.StatusOK
	}
	return b.body.Write(p)
}

func (b *bufferedWriter) statusCode() int {
	if b.status == 0 {
		return http.StatusOK
	}
	return b.status
}

// mask discards everything the handler produced and replaces it with a bare
// status response.
func (b *bufferedWriter) mask(code int) {
	b.masked = true
	b.status = code
	b.body.Reset()
	header := b.rw.Header()
	header.Del("Content-Type")
	header.Del("Content-Length")
	header.Del("Content-Encoding")
}

func (b *bufferedWriter) flush() {
	b.rw.WriteHeader(b.statusCode())
	if b.body.Len() > 0 {
		_, _ = b.rw.Write(b.body.Bytes())
	}
}
