package middleware

import (
	"net/http"
	"time"

	"github.com/architeacher/netinventory/pkg/logger"
)

type AccessLogger struct {
	logger          logger.Logger
	includeMetadata bool
}

func NewAccessLogger(log logger.Logger, includeMetadata bool) *AccessLogger {
	return &AccessLogger{
		logger:          log.Component("http"),
		includeMetadata: includeMetadata,
	}
}

func (a *AccessLogger) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ShouldSkipAccessLog(r.Context()) {
			next.ServeHTTP(w, r)

			return
		}

		start := time.Now()
		wrapped := NewFlushableResponseWriter(w)

		next.ServeHTTP(wrapped, r)

		reqLogger := a.logger.WithContext(r.Context())

		event := reqLogger.Info()
		if wrapped.StatusCode() >= http.StatusInternalServerError {
			event = reqLogger.Error()
		} else if wrapped.StatusCode() >= http.StatusBadRequest {
			event = reqLogger.Warn()
		}

		event.
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", wrapped.StatusCode()).
			Uint64("bytes", wrapped.BytesWritten()).
			Int64("duration_ms", time.Since(start).Milliseconds())

		if a.includeMetadata {
			event.
				Str("remote_addr", r.RemoteAddr).
				Str("user_agent", r.UserAgent()).
				Str("proto", r.Proto)

			if r.URL.RawQuery != "" {
				event.Str("query", r.URL.RawQuery)
			}
		}

		event.Msg("request completed")
	})
}
