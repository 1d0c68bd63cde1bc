// Package middleware provides net/http middleware for the session-centric
// web core: cookie-bound session management, request IDs, request logging,
// and security headers.
//
// Every middleware follows the same shape: a zero-configuration constructor
// and a WithConfig variant taking a config struct with an optional Skip
// predicate.
//
//	store, _ := session.NewRedisStore[AuthUser](client)
//	manager, _ := cookie.New([]string{secret})
//
//	var h http.Handler = mux
//	h = middleware.Session[AuthUser](store, cookie.Signed(manager))(h)
//	h = middleware.Logging()(h)
//	h = middleware.RequestID()(h)
//	h = middleware.SecurityHeaders()(h)
//
// The session middleware buffers the downstream response so the cookie
// decision can be made after the handler runs; handlers that stream (SSE,
// long polling) must be excluded via SessionConfig.Skip.
package middleware
