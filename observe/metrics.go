package observe

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics records request pipeline metrics.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Context: must honor cancellation/deadlines and return quickly.
// - Errors: implementations must not panic.
type Metrics interface {
	// RecordCall records one route invocation with duration and error status.
	RecordCall(ctx context.Context, meta RouteMeta, duration time.Duration, err error)

	// RecordCacheLookup records a cache read as a hit or a miss.
	RecordCacheLookup(ctx context.Context, meta RouteMeta, hit bool)

	// RecordRetry records one retry attempt.
	RecordRetry(ctx context.Context, meta RouteMeta, attempt int)
}

// metricsImpl is the concrete implementation of Metrics.
type metricsImpl struct {
	meter        metric.Meter
	totalCount   metric.Int64Counter
	errorCount   metric.Int64Counter
	durationHist metric.Float64Histogram
	cacheLookups metric.Int64Counter
	retryCount   metric.Int64Counter
}

// NewMetrics creates a Metrics instance with the given meter.
func NewMetrics(meter metric.Meter) (Metrics, error) {
	totalCount, err := meter.Int64Counter(
		"client.request.total",
		metric.WithDescription("Total number of route invocations"),
		metric.WithUnit("{call}"),
	)
	if err != nil {
		return nil, err
	}

	errorCount, err := meter.Int64Counter(
		"client.request.errors",
		metric.WithDescription("Total number of failed route invocations"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return nil, err
	}

	durationHist, err := meter.Float64Histogram(
		"client.request.duration_ms",
		metric.WithDescription("Route invocation duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	cacheLookups, err := meter.Int64Counter(
		"client.cache.lookups",
		metric.WithDescription("Cache lookups, tagged with cache.hit"),
		metric.WithUnit("{lookup}"),
	)
	if err != nil {
		return nil, err
	}

	retryCount, err := meter.Int64Counter(
		"client.request.retries",
		metric.WithDescription("Retry attempts performed after the initial try"),
		metric.WithUnit("{attempt}"),
	)
	if err != nil {
		return nil, err
	}

	return &metricsImpl{
		meter:        meter,
		totalCount:   totalCount,
		errorCount:   errorCount,
		durationHist: durationHist,
		cacheLookups: cacheLookups,
		retryCount:   retryCount,
	}, nil
}

func routeAttrs(meta RouteMeta) []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		attribute.String("route.name", meta.Route),
	}
	if meta.Method != "" {
		attrs = append(attrs, attribute.String("http.request.method", meta.Method))
	}
	return attrs
}

// RecordCall records metrics for one route invocation.
func (m *metricsImpl) RecordCall(ctx context.Context, meta RouteMeta, duration time.Duration, err error) {
	opt := metric.WithAttributes(routeAttrs(meta)...)

	m.totalCount.Add(ctx, 1, opt)

	if err != nil {
		m.errorCount.Add(ctx, 1, opt)
	}

	m.durationHist.Record(ctx, float64(duration.Milliseconds()), opt)
}

// RecordCacheLookup records a cache read outcome.
func (m *metricsImpl) RecordCacheLookup(ctx context.Context, meta RouteMeta, hit bool) {
	attrs := append(routeAttrs(meta), attribute.Bool("cache.hit", hit))
	m.cacheLookups.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordRetry records one retry attempt.
func (m *metricsImpl) RecordRetry(ctx context.Context, meta RouteMeta, attempt int) {
	attrs := append(routeAttrs(meta), attribute.Int("retry.attempt", attempt))
	m.retryCount.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// noopMetrics is a metrics implementation that does nothing.
type noopMetrics struct{}

// NewNoopMetrics creates a Metrics that discards everything.
func NewNoopMetrics() Metrics { return &noopMetrics{} }

func (m *noopMetrics) RecordCall(ctx context.Context, meta RouteMeta, duration time.Duration, err error) {
}
func (m *noopMetrics) RecordCacheLookup(ctx context.Context, meta RouteMeta, hit bool) {}
func (m *noopMetrics) RecordRetry(ctx context.Context, meta RouteMeta, attempt int)    {}
