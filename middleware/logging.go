package middleware

import (
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/pagesmith/webcore/core/logger"
)

// LoggingConfig configures the request logging middleware.
type LoggingConfig struct {
	// Skip defines a function to skip middleware execution for specific requests
	Skip func(r *http.Request) bool
	// Logger receives the log records (default: text handler on stderr)
	Logger *slog.Logger
	// Level for successful requests; failures always log at Error
	Level slog.Level
	// SlowRequestThreshold logs a warning for requests slower than this
	// (default: disabled)
	SlowRequestThreshold time.Duration
}

// Logging creates a request logging middleware with default configuration.
// One record per request: method, path, status, size, and duration, plus the
// request ID when the RequestID middleware ran first.
func Logging() func(http.Handler) http.Handler {
	return LoggingWithConfig(LoggingConfig{})
}

// LoggingWithConfig creates a request logging middleware with custom configuration.
func LoggingWithConfig(cfg LoggingConfig) func(http.Handler) http.Handler {
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.NewTextHandler(os.Stderr, nil))
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if cfg.Skip != nil && cfg.Skip(r) {
				next.ServeHTTP(w, r)
				return
			}

			start := time.Now()
			sw := &statusWriter{ResponseWriter: w}
			next.ServeHTTP(sw, r)
			elapsed := time.Since(start)

			attrs := []slog.Attr{
				logger.Method(r.Method),
				logger.Path(r.URL.Path),
				logger.StatusCode(sw.statusCode()),
				logger.Count("bytes", sw.bytes),
				logger.Duration(elapsed),
			}
			if id, ok := GetRequestID(r.Context()); ok {
				attrs = append(attrs, logger.RequestID(id))
			}

			level := cfg.Level
			switch {
			case sw.statusCode() >= http.StatusInternalServerError:
				level = slog.LevelError
			case cfg.SlowRequestThreshold > 0 && elapsed > cfg.SlowRequestThreshold:
				level = slog.LevelWarn
				attrs = append(attrs, slog.Bool("slow", true))
			}

			cfg.Logger.LogAttrs(r.Context(), level, "http request", attrs...)
		})
	}
}

// statusWriter records the status code and body size while passing writes
// straight through.
type statusWriter struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (w *statusWriter) WriteHeader(code int) {
	if w.status == 0 {
		w.status = code
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Write(p []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}
	n, err := w.ResponseWriter.Write(p)
	w.bytes += n
	return n, err
}

func (w *statusWriter) statusCode() int {
	if w.status == 0 {
		return http.StatusOK
	}
	return w.status
}
