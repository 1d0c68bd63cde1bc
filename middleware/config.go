package middleware

import (
	"net/http"
	"time"

	"github.com/pagesmith/webcore/core/cookie"
	"github.com/pagesmith/webcore/core/session"
)

// Config provides environment-based settings for the session middleware.
type Config struct {
	CookieName string        `env:"SESSION_COOKIE_NAME" envDefault:"id"`
	Path       string        `env:"SESSION_COOKIE_PATH" envDefault:"/"`
	Domain     string        `env:"SESSION_COOKIE_DOMAIN" envDefault:""`
	Secure     bool          `env:"SESSION_COOKIE_SECURE" envDefault:"true"`
	HTTPOnly   bool          `env:"SESSION_COOKIE_HTTP_ONLY" envDefault:"true"`
	SameSite   http.SameSite `env:"SESSION_COOKIE_SAME_SITE" envDefault:"3"` // SameSiteStrictMode
	// IdleTTL expires sessions after inactivity. Zero produces browser
	// session cookies with the backend cap applied to the records.
	IdleTTL time.Duration `env:"SESSION_IDLE_TTL" envDefault:"0"`
}

// NewSessionConfig builds a SessionConfig from environment settings, leaving
// Logger and Skip at their defaults for the caller to override.
func NewSessionConfig[Data any](c Config, store session.Store[Data], cookies cookie.Controller) SessionConfig[Data] {
	return SessionConfig[Data]{
		Store:      store,
		Cookies:    cookies,
		CookieName: c.CookieName,
		Expiry:     c.expiry(),
		Path:       c.Path,
		Domain:     c.Domain,
		Secure:     ptr(c.Secure),
		HTTPOnly:   ptr(c.HTTPOnly),
		SameSite:   c.SameSite,
	}
}

func (c Config) expiry() session.Expiry {
	if c.IdleTTL > 0 {
		return session.OnInactivity(c.IdleTTL)
	}
	return session.OnSessionEnd()
}
