package middleware

import (
	"context"
	"net/http"

	"github.com/architeacher/netinventory/pkg/logger"
	"github.com/google/uuid"
)

const (
	RequestIDHeader     = "Request-Id"
	CorrelationIDHeader = "Correlation-Id"

	maxTrackingIDLength = 128
)

// RequestTracking makes every request carry a request ID and a correlation ID.
// Incoming IDs are kept when they look sane, otherwise fresh UUIDs are assigned.
// Both are echoed in the response and picked up by logger.WithContext.
func RequestTracking() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			correlationID := trackingID(r.Header.Get(CorrelationIDHeader))
			requestID := trackingID(r.Header.Get(RequestIDHeader))

			w.Header().Set(CorrelationIDHeader, correlationID)
			w.Header().Set(RequestIDHeader, requestID)

			ctx := logger.ContextWithRequestID(logger.ContextWithCorrelationID(r.Context(), correlationID), requestID)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func trackingID(incoming string) string {
	if incoming == "" || len(incoming) > maxTrackingIDLength {
		return uuid.NewString()
	}

	for _, c := range incoming {
		if c < 0x21 || c > 0x7e {
			return uuid.NewString()
		}
	}

	return incoming
}

func GetRequestID(ctx context.Context) string {
	id, _ := ctx.Value(logger.ContextKeyRequestID).(string)

	return id
}

func GetCorrelationID(ctx context.Context) string {
	id, _ := ctx.Value(logger.ContextKeyCorrelationID).(string)

	return id
}
