package metrics

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

type (
	// OtelClient records values on instruments created lazily from a meter.
	// Integer values go to counters, floating point values to histograms.
	OtelClient struct {
		meter       metric.Meter
		descriptors map[string]Descriptor
		shutdown    func(ctx context.Context) error
		reader      sdkmetric.Reader

		mu         sync.Mutex
		counters   map[string]metric.Int64Counter
		histograms map[string]metric.Float64Histogram
	}

	OtelOption func(*OtelClient)

	point struct {
		Attributes map[string]string `json:"attributes,omitempty"`
		Value      any               `json:"value,omitempty"`
		Count      uint64            `json:"count,omitempty"`
		Sum        float64           `json:"sum,omitempty"`
	}
)

// WithDescriptors attaches descriptions and units to known instrument names.
func WithDescriptors(descriptors map[string]Descriptor) OtelOption {
	return func(c *OtelClient) {
		for name, descriptor := range descriptors {
			c.descriptors[name] = descriptor
		}
	}
}

// WithShutdown sets the function invoked by Shutdown, usually the meter provider's.
func WithShutdown(fn func(ctx context.Context) error) OtelOption {
	return func(c *OtelClient) {
		c.shutdown = fn
	}
}

// WithReader exposes the values collected by reader through Handler.
func WithReader(reader sdkmetric.Reader) OtelOption {
	return func(c *OtelClient) {
		c.reader = reader
	}
}

func NewOtelClient(meter metric.Meter, opts ...OtelOption) *OtelClient {
	client := &OtelClient{
		meter:       meter,
		descriptors: make(map[string]Descriptor),
		counters:    make(map[string]metric.Int64Counter),
		histograms:  make(map[string]metric.Float64Histogram),
	}

	for _, opt := range opts {
		opt(client)
	}

	return client
}

func (c *OtelClient) Inc(ctx context.Context, key string, value any, attributes ...attribute.KeyValue) {
	switch v := value.(type) {
	case int:
		c.add(ctx, key, int64(v), attributes)
	case int64:
		c.add(ctx, key, v, attributes)
	case uint64:
		c.add(ctx, key, int64(v), attributes)
	case float64:
		c.record(ctx, key, v, attributes)
	case float32:
		c.record(ctx, key, float64(v), attributes)
	}
}

// Handler serves a JSON snapshot of every instrument, keyed by name.
func (c *OtelClient) Handler() http.Handler {
	if c.reader == nil {
		return http.NotFoundHandler()
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var rm metricdata.ResourceMetrics
		if err := c.reader.Collect(r.Context(), &rm); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)

			return
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(snapshot(rm))
	})
}

func (c *OtelClient) Shutdown(ctx context.Context) error {
	if c.shutdown == nil {
		return nil
	}

	return c.shutdown(ctx)
}

func (c *OtelClient) add(ctx context.Context, key string, value int64, attributes []attribute.KeyValue) {
	counter, err := c.counter(key)
	if err != nil {
		return
	}

	counter.Add(ctx, value, metric.WithAttributes(attributes...))
}

func (c *OtelClient) record(ctx context.Context, key string, value float64, attributes []attribute.KeyValue) {
	histogram, err := c.histogram(key)
	if err != nil {
		return
	}

	histogram.Record(ctx, value, metric.WithAttributes(attributes...))
}

func (c *OtelClient) counter(key string) (metric.Int64Counter, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if counter, ok := c.counters[key]; ok {
		return counter, nil
	}

	counter, err := RegisterInt64Counter(c.meter, c.descriptors[key], key)
	if err != nil {
		return nil, err
	}

	c.counters[key] = counter

	return counter, nil
}

func (c *OtelClient) histogram(key string) (metric.Float64Histogram, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if histogram, ok := c.histograms[key]; ok {
		return histogram, nil
	}

	histogram, err := RegisterFloat64Histogram(c.meter, c.descriptors[key], key)
	if err != nil {
		return nil, err
	}

	c.histograms[key] = histogram

	return histogram, nil
}

func snapshot(rm metricdata.ResourceMetrics) map[string][]point {
	result := make(map[string][]point)

	for _, scope := range rm.ScopeMetrics {
		for _, m := range scope.Metrics {
			switch data := m.Data.(type) {
			case metricdata.Sum[int64]:
				for _, dp := range data.DataPoints {
					result[m.Name] = append(result[m.Name], point{Attributes: attributesOf(dp.Attributes), Value: dp.Value})
				}
			case metricdata.Histogram[float64]:
				for _, dp := range data.DataPoints {
					result[m.Name] = append(result[m.Name], point{Attributes: attributesOf(dp.Attributes), Count: dp.Count, Sum: dp.Sum})
				}
			}
		}
	}

	return result
}

func attributesOf(set attribute.Set) map[string]string {
	if set.Len() == 0 {
		return nil
	}

	attrs := make(map[string]string, set.Len())
	for _, kv := range set.ToSlice() {
		attrs[string(kv.Key)] = kv.Value.Emit()
	}

	return attrs
}
