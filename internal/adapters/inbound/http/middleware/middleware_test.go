package middleware_test

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/architeacher/netinventory/internal/adapters/inbound/http/middleware"
	"github.com/architeacher/netinventory/pkg/logger"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
)

type (
	recordedValue struct {
		key   string
		value any
		attrs map[attribute.Key]string
	}

	recordingMetrics struct {
		mu     sync.Mutex
		values []recordedValue
	}
)

func (m *recordingMetrics) Inc(_ context.Context, key string, value any, attributes ...attribute.KeyValue) {
	m.mu.Lock()
	defer m.mu.Unlock()

	attrs := make(map[attribute.Key]string, len(attributes))
	for _, kv := range attributes {
		attrs[kv.Key] = kv.Value.Emit()
	}

	m.values = append(m.values, recordedValue{key: key, value: value, attrs: attrs})
}

func (m *recordingMetrics) Handler() http.Handler {
	return http.NotFoundHandler()
}

func (m *recordingMetrics) Shutdown(context.Context) error {
	return nil
}

func TestRequestTracking(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name                  string
		requestID             string
		correlationID         string
		expectedRequestID     string
		expectedCorrelationID string
	}{
		{
			name:                  "propagates incoming ids",
			requestID:             "req-1",
			correlationID:         "corr-1",
			expectedRequestID:     "req-1",
			expectedCorrelationID: "corr-1",
		},
		{
			name: "generates missing ids",
		},
		{
			name:          "replaces ids with spaces",
			requestID:     "req 1",
			correlationID: "corr 1",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			var seenRequestID, seenCorrelationID string

			handler := middleware.RequestTracking()(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
				seenRequestID = middleware.GetRequestID(r.Context())
				seenCorrelationID = middleware.GetCorrelationID(r.Context())
			}))

			req := httptest.NewRequest(http.MethodGet, "/devices", nil)
			if tc.requestID != "" {
				req.Header.Set(middleware.RequestIDHeader, tc.requestID)
			}
			if tc.correlationID != "" {
				req.Header.Set(middleware.CorrelationIDHeader, tc.correlationID)
			}

			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			require.NotEmpty(t, seenRequestID)
			require.NotEmpty(t, seenCorrelationID)
			require.Equal(t, seenRequestID, rec.Header().Get(middleware.RequestIDHeader))
			require.Equal(t, seenCorrelationID, rec.Header().Get(middleware.CorrelationIDHeader))

			if tc.expectedRequestID != "" {
				require.Equal(t, tc.expectedRequestID, seenRequestID)
				require.Equal(t, tc.expectedCorrelationID, seenCorrelationID)
			} else {
				require.NotEqual(t, seenRequestID, seenCorrelationID)
				require.NotEqual(t, tc.requestID, seenRequestID)
				require.Len(t, seenRequestID, 36)
			}
		})
	}
}

func TestRecovery(t *testing.T) {
	t.Parallel()

	buf := &bytes.Buffer{}
	handler := middleware.Recovery(logger.NewBufferedTestLogger(buf))(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("scanner exploded")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/devices", nil))

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.Contains(t, rec.Body.String(), `"code":"INTERNAL_ERROR"`)
	require.Contains(t, rec.Body.String(), `"message":"internal server error"`)
	require.Contains(t, buf.String(), "panic recovered")
	require.Contains(t, buf.String(), "scanner exploded")
}

func TestRecovery_AbortHandlerIsRepanicked(t *testing.T) {
	t.Parallel()

	handler := middleware.Recovery(logger.NewTestLogger())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic(http.ErrAbortHandler)
	}))

	require.PanicsWithValue(t, http.ErrAbortHandler, func() {
		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/devices", nil))
	})
}

func TestAccessLogger(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name            string
		path            string
		status          int
		logHealthChecks bool
		expectedLevel   string
		expectSkipped   bool
	}{
		{name: "success logs info", path: "/devices", status: http.StatusOK, expectedLevel: `"level":"info"`},
		{name: "client error logs warn", path: "/devices", status: http.StatusBadRequest, expectedLevel: `"level":"warn"`},
		{name: "server error logs error", path: "/devices", status: http.StatusInternalServerError, expectedLevel: `"level":"error"`},
		{name: "health probe is skipped", path: "/liveness", status: http.StatusOK, expectSkipped: true},
		{name: "health probe with trailing slash is skipped", path: "/health/", status: http.StatusOK, expectSkipped: true},
		{name: "health probe is logged when enabled", path: "/readiness", status: http.StatusOK, logHealthChecks: true, expectedLevel: `"level":"info"`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			buf := &bytes.Buffer{}
			filter := middleware.NewHealthCheckFilter(tc.logHealthChecks)
			accessLogger := middleware.NewAccessLogger(logger.NewBufferedTestLogger(buf), true)

			handler := filter.Middleware(accessLogger.Middleware(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte("ok"))
			})))

			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tc.path+"?page=1", nil))

			require.Equal(t, tc.status, rec.Code)

			if tc.expectSkipped {
				require.Empty(t, buf.String())

				return
			}

			assert.Contains(t, buf.String(), "request completed")
			assert.Contains(t, buf.String(), tc.expectedLevel)
			assert.Contains(t, buf.String(), `"bytes":2`)
			assert.Contains(t, buf.String(), `"query":"page=1"`)
			assert.Contains(t, buf.String(), `"component":"http"`)
		})
	}
}

func TestFlushableResponseWriter(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	wrapped := middleware.NewFlushableResponseWriter(rec)

	require.Same(t, wrapped, middleware.NewFlushableResponseWriter(wrapped))
	require.Equal(t, http.StatusOK, wrapped.StatusCode())

	wrapped.WriteHeader(http.StatusCreated)
	wrapped.WriteHeader(http.StatusInternalServerError)
	_, err := wrapped.Write([]byte("created"))
	require.NoError(t, err)
	wrapped.Flush()

	require.Equal(t, http.StatusCreated, wrapped.StatusCode())
	require.Equal(t, uint64(7), wrapped.BytesWritten())
	require.Equal(t, http.StatusCreated, rec.Code)
	require.True(t, rec.Flushed)
	require.Same(t, rec, wrapped.Unwrap())
}

func TestSecurityHeaders(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	middleware.SecurityHeaders()(http.NotFoundHandler()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	require.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
}

func TestMetricsMiddleware(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name          string
		method        string
		path          string
		expectedRoute string
		expectedCode  string
	}{
		{name: "parameterised route collapses ids", method: http.MethodDelete, path: "/devices/42", expectedRoute: "/devices/{deviceID}", expectedCode: "200"},
		{name: "unmatched path", method: http.MethodGet, path: "/nope", expectedRoute: "unmatched", expectedCode: "404"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			mc := &recordingMetrics{}
			metricsMiddleware := middleware.NewMetricsMiddleware(mc)

			router := chi.NewRouter()
			router.Use(metricsMiddleware.Middleware)
			router.Delete("/devices/{deviceID}", func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(`{}`))
			})

			router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(tc.method, tc.path, nil))

			require.Len(t, mc.values, 3)

			keys := make([]string, 0, len(mc.values))
			for _, recorded := range mc.values {
				keys = append(keys, recorded.key)
				require.Equal(t, tc.method, recorded.attrs["http.method"])
				require.Equal(t, tc.expectedRoute, recorded.attrs["http.route"])
				require.Equal(t, tc.expectedCode, recorded.attrs["http.status_code"])
			}

			require.Equal(t, []string{"http_requests_total", "http_request_duration_seconds", "http_response_size_bytes"}, keys)
			require.Equal(t, int64(1), mc.values[0].value)
			require.IsType(t, float64(0), mc.values[1].value)
		})
	}
}
