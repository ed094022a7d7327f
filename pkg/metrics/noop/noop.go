// Package noop provides a metrics client that drops every value,
// used when METRICS_ENABLED is off and in tests.
package noop

import (
	"context"
	"net/http"

	"github.com/architeacher/netinventory/pkg/metrics"
	"go.opentelemetry.io/otel/attribute"
)

type MetricsClient struct{}

var _ metrics.Client = MetricsClient{}

func NewMetricsClient() MetricsClient {
	return MetricsClient{}
}

func (c MetricsClient) Inc(_ context.Context, _ string, _ any, _ ...attribute.KeyValue) {}

func (c MetricsClient) Handler() http.Handler {
	return http.NotFoundHandler()
}

func (c MetricsClient) Shutdown(_ context.Context) error {
	return nil
}
