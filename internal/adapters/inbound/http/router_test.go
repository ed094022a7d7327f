package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	inboundhttp "github.com/architeacher/netinventory/internal/adapters/inbound/http"
	"github.com/architeacher/netinventory/internal/adapters/repos"
	"github.com/architeacher/netinventory/internal/config"
	"github.com/architeacher/netinventory/internal/infrastructure"
	"github.com/architeacher/netinventory/internal/infrastructure/database"
	"github.com/architeacher/netinventory/internal/services"
	"github.com/architeacher/netinventory/internal/usecases"
	"github.com/architeacher/netinventory/pkg/logger"
	"github.com/architeacher/netinventory/pkg/metrics"
	"github.com/architeacher/netinventory/pkg/metrics/noop"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

type (
	testServer struct {
		handler http.Handler
		db      *database.DB
	}

	deviceBody struct {
		ID          int64   `json:"id"`
		IP          string  `json:"ip"`
		Name        string  `json:"name"`
		TrafficRate float64 `json:"traffic_rate"`
	}

	errorBody struct {
		Code    string `json:"code"`
		Message string `json:"message"`
		Details []struct {
			Field string `json:"field"`
		} `json:"details"`
	}
)

func newTestConfig() *config.ServiceConfig {
	cfg := &config.ServiceConfig{}
	cfg.App.ServiceName = "netinventory"
	cfg.HTTPServer.MaxBodyBytes = 1 << 20
	cfg.Logging.AccessLog.Enabled = true

	return cfg
}

func newTestServer(t *testing.T, setup ...string) *testServer {
	t.Helper()

	return newTestServerWithConfig(t, newTestConfig(), noop.NewMetricsClient(), setup...)
}

func newTestServerWithConfig(t *testing.T, cfg *config.ServiceConfig, metricsClient metrics.Client, setup ...string) *testServer {
	t.Helper()

	db, err := database.Open(config.Database{
		Driver: config.DriverSQLite,
		SQLite: config.SQLite{
			Path:        filepath.Join(t.TempDir(), "devices.db"),
			BusyTimeout: 5 * time.Second,
		},
	})
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = db.Close()
	})

	for _, statement := range setup {
		_, err := db.ExecContext(context.Background(), statement)
		require.NoError(t, err)
	}

	log := logger.NewTestLogger()
	require.NoError(t, database.NewSchemaManager(db, log).EnsureSchema(context.Background()))

	repo := repos.NewDevicesRepository(db, repos.NewSQLScanner(), log)
	tp := infrastructure.NewNoopTracerProvider()

	app := usecases.NewApplication(
		services.NewDevicesService(repo),
		usecases.HealthTarget{Name: db.Dialect.Name, Checker: repo, Version: "test"},
		log,
		tp,
		metricsClient,
	)

	return &testServer{
		handler: inboundhttp.NewRouter(inboundhttp.RouterConfig{
			App:            app,
			Logger:         log,
			MetricsClient:  metricsClient,
			TracerProvider: tp,
			Config:         cfg,
		}),
		db: db,
	}
}

func (s *testServer) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)

	return rec
}

func (s *testServer) create(t *testing.T, ip, name string, rate float64) deviceBody {
	t.Helper()

	rec := s.do(t, http.MethodPost, "/devices", fmt.Sprintf(`{"ip":%q,"name":%q,"traffic_rate":%v}`, ip, name, rate))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var device deviceBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &device))

	return device
}

func (s *testServer) list(t *testing.T) []deviceBody {
	t.Helper()

	rec := s.do(t, http.MethodGet, "/devices", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var devices []deviceBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &devices))

	return devices
}

func TestDevices_CreateRoundTrip(t *testing.T) {
	t.Parallel()

	server := newTestServer(t)

	created := server.create(t, "10.0.0.1", "core-router", 12.5)
	require.Positive(t, created.ID)
	require.Equal(t, deviceBody{ID: created.ID, IP: "10.0.0.1", Name: "core-router", TrafficRate: 12.5}, created)

	require.Equal(t, []deviceBody{created}, server.list(t))
}

func TestDevices_ListEmptyIsArray(t *testing.T) {
	t.Parallel()

	rec := newTestServer(t).do(t, http.MethodGet, "/devices", "")

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	require.JSONEq(t, `[]`, rec.Body.String())
}

func TestDevices_CreateRejectsInvalidPayloads(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name           string
		body           string
		expectedCode   string
		expectedFields []string
	}{
		{
			name:           "missing traffic rate",
			body:           `{"ip":"10.0.0.1","name":"core"}`,
			expectedCode:   "VALIDATION_ERROR",
			expectedFields: []string{"traffic_rate"},
		},
		{
			name:           "empty object",
			body:           `{}`,
			expectedCode:   "VALIDATION_ERROR",
			expectedFields: []string{"ip", "name", "traffic_rate"},
		},
		{
			name:           "null counts as missing",
			body:           `{"ip":"10.0.0.1","name":null,"traffic_rate":1}`,
			expectedCode:   "VALIDATION_ERROR",
			expectedFields: []string{"name"},
		},
		{
			name:           "traffic rate is not a number",
			body:           `{"ip":"10.0.0.1","name":"core","traffic_rate":"fast"}`,
			expectedCode:   "VALIDATION_ERROR",
			expectedFields: []string{"traffic_rate"},
		},
		{
			name:         "malformed json",
			body:         `{"ip":`,
			expectedCode: "INVALID_JSON",
		},
		{
			name:         "empty body",
			body:         ``,
			expectedCode: "INVALID_JSON",
		},
		{
			name:         "array body",
			body:         `[]`,
			expectedCode: "INVALID_JSON",
		},
		{
			name:         "trailing data",
			body:         `{"ip":"10.0.0.1","name":"core","traffic_rate":1} {"x":1}`,
			expectedCode: "INVALID_JSON",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			server := newTestServer(t)

			rec := server.do(t, http.MethodPost, "/devices", tc.body)
			require.Equal(t, http.StatusBadRequest, rec.Code)

			var body errorBody
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			require.Equal(t, tc.expectedCode, body.Code)

			fields := make([]string, 0, len(body.Details))
			for _, detail := range body.Details {
				fields = append(fields, detail.Field)
			}

			if tc.expectedFields == nil {
				require.Empty(t, fields)
			} else {
				require.Equal(t, tc.expectedFields, fields)
			}

			require.Empty(t, server.list(t))
		})
	}
}

func TestDevices_CreateAcceptsAnyValues(t *testing.T) {
	t.Parallel()

	server := newTestServer(t)

	first := server.create(t, "not-an-ip", "", -5)
	second := server.create(t, "not-an-ip", "", -5)

	require.NotEqual(t, first.ID, second.ID)
	require.Len(t, server.list(t), 2)
}

func TestDevices_DeleteThenList(t *testing.T) {
	t.Parallel()

	server := newTestServer(t)

	kept := server.create(t, "10.0.0.1", "kept", 1)
	removed := server.create(t, "10.0.0.2", "removed", 2)

	rec := server.do(t, http.MethodDelete, fmt.Sprintf("/devices/%d", removed.ID), "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"message":"device removed successfully"}`, rec.Body.String())

	require.Equal(t, []deviceBody{kept}, server.list(t))
}

func TestDevices_DeleteUnknown(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name         string
		path         string
		expectedCode int
		expectedErr  string
	}{
		{name: "absent id", path: "/devices/999", expectedCode: http.StatusNotFound, expectedErr: "NOT_FOUND"},
		{name: "non numeric id", path: "/devices/abc", expectedCode: http.StatusNotFound, expectedErr: "NOT_FOUND"},
		{name: "negative id", path: "/devices/-1", expectedCode: http.StatusNotFound, expectedErr: "NOT_FOUND"},
		{name: "id out of range", path: "/devices/99999999999999999999", expectedCode: http.StatusBadRequest, expectedErr: "INVALID_ID"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			server := newTestServer(t)
			existing := server.create(t, "10.0.0.1", "core", 1)

			rec := server.do(t, http.MethodDelete, tc.path, "")
			require.Equal(t, tc.expectedCode, rec.Code)

			var body errorBody
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			require.Equal(t, tc.expectedErr, body.Code)

			require.Equal(t, []deviceBody{existing}, server.list(t))
		})
	}
}

func TestDevices_IDsIncreaseAndAreNotReused(t *testing.T) {
	t.Parallel()

	server := newTestServer(t)

	ids := make([]int64, 0, 3)
	for index := range 3 {
		ids = append(ids, server.create(t, fmt.Sprintf("10.0.0.%d", index), "d", 1).ID)
	}

	require.Less(t, ids[0], ids[1])
	require.Less(t, ids[1], ids[2])

	rec := server.do(t, http.MethodDelete, fmt.Sprintf("/devices/%d", ids[2]), "")
	require.Equal(t, http.StatusOK, rec.Code)

	next := server.create(t, "10.0.0.9", "d", 1)
	require.Greater(t, next.ID, ids[2])
}

func TestDevices_SchemaDriftIsHealedAtStartup(t *testing.T) {
	t.Parallel()

	server := newTestServer(t,
		`CREATE TABLE devices (id INTEGER PRIMARY KEY, ip TEXT, name TEXT, traffic_rate REAL, vendor TEXT)`,
		`INSERT INTO devices (ip, name, traffic_rate, vendor) VALUES ('10.0.0.1', 'legacy', 1, 'acme')`,
	)

	require.Empty(t, server.list(t))

	created := server.create(t, "10.0.0.2", "fresh", 3)
	require.Equal(t, []deviceBody{created}, server.list(t))
}

func TestDevices_StorageFailure(t *testing.T) {
	t.Parallel()

	server := newTestServer(t)
	require.NoError(t, server.db.Close())

	requests := []struct {
		method string
		path   string
		body   string
	}{
		{method: http.MethodGet, path: "/devices"},
		{method: http.MethodPost, path: "/devices", body: `{"ip":"10.0.0.1","name":"a","traffic_rate":1}`},
		{method: http.MethodDelete, path: "/devices/1"},
	}

	for _, request := range requests {
		rec := server.do(t, request.method, request.path, request.body)
		require.Equal(t, http.StatusInternalServerError, rec.Code)

		var body errorBody
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		require.Equal(t, "INTERNAL_ERROR", body.Code)
		require.Contains(t, body.Message, "database is closed")
	}
}

func TestHealthEndpoints(t *testing.T) {
	t.Parallel()

	server := newTestServer(t)

	for _, path := range []string{"/health", "/liveness", "/readiness"} {
		rec := server.do(t, http.MethodGet, path, "")
		require.Equal(t, http.StatusOK, rec.Code, path)
	}

	require.NoError(t, server.db.Close())

	rec := server.do(t, http.MethodGet, "/readiness", "")
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = server.do(t, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	require.Contains(t, rec.Body.String(), `"sqlite3"`)
}

func TestRouter_MethodNotAllowed(t *testing.T) {
	t.Parallel()

	rec := newTestServer(t).do(t, http.MethodPut, "/devices", "")

	require.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	require.Contains(t, rec.Body.String(), "METHOD_NOT_ALLOWED")
}

func TestRouter_MetricsEndpoint(t *testing.T) {
	t.Parallel()

	cfg := newTestConfig()
	cfg.Telemetry.Metrics.Enabled = true

	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	client := metrics.NewOtelClient(provider.Meter("test"), metrics.WithReader(reader))

	server := newTestServerWithConfig(t, cfg, client)
	server.create(t, "10.0.0.1", "core", 1)

	rec := server.do(t, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, bytes.Contains(rec.Body.Bytes(), []byte(`"http_requests_total"`)))
	require.Contains(t, rec.Body.String(), `"http.route":"/devices`)
	require.NotContains(t, rec.Body.String(), `"http.route":"unmatched"`)
}
