// Package logger provides slog attribute helpers with consistent keys.
//
// Helpers follow the empty-Attr pattern: passing a nil error or empty id
// yields an attribute slog silently drops, so call sites never need nil
// checks:
//
//	log.Error("failed to save session", logger.Error(err))
//	log.Info("request served",
//		logger.Method(r.Method),
//		logger.Path(r.URL.Path),
//		logger.StatusCode(status),
//		logger.Elapsed(start),
//	)
package logger
