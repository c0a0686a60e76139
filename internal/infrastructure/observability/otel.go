package observability

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/runtime"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"
)

const scopeName = "github.com/zatekoja/searchpulse"

// Metrics holds all application metrics
type Metrics struct {
	EventsLogged       metric.Int64Counter
	StoreQueryDuration metric.Float64Histogram
	CacheHitCount      metric.Int64Counter
	CacheMissCount     metric.Int64Counter
	EventsPruned       metric.Int64Counter
}

// Setup initializes OpenTelemetry tracing and metrics, exporting over OTLP
// gRPC. The returned function shuts both providers down.
func Setup(ctx context.Context, serviceName, serviceVersion, endpoint string) (func(context.Context) error, error) {
	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(serviceName),
			semconv.ServiceVersion(serviceVersion),
		),
	)
	if err != nil {
		return nil, err
	}

	traceExporter, err := otlptracegrpc.New(ctx,
		otlptracegrpc.WithEndpoint(endpoint),
		otlptracegrpc.WithInsecure(),
	)
	if err != nil {
		return nil, err
	}
	tracerProvider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(traceExporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tracerProvider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	metricExporter, err := otlpmetricgrpc.New(ctx,
		otlpmetricgrpc.WithEndpoint(endpoint),
		otlpmetricgrpc.WithInsecure(),
	)
	if err != nil {
		return nil, err
	}
	meterProvider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(metricExporter)),
		sdkmetric.WithResource(res),
	)
	otel.SetMeterProvider(meterProvider)

	if err := runtime.Start(runtime.WithMinimumReadMemStatsInterval(time.Minute)); err != nil {
		return nil, err
	}

	shutdown := func(ctx context.Context) error {
		return errors.Join(
			tracerProvider.Shutdown(ctx),
			meterProvider.Shutdown(ctx),
		)
	}
	return shutdown, nil
}

// InitMetrics initializes application metrics
func InitMetrics() (*Metrics, error) {
	meter := otel.Meter(scopeName)

	eventsLogged, err := meter.Int64Counter(
		"search_log.events",
		metric.WithDescription("Number of search events logged, by action"),
	)
	if err != nil {
		return nil, err
	}

	storeQueryDuration, err := meter.Float64Histogram(
		"search_log.store.query.duration",
		metric.WithDescription("Search event store query duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	cacheHitCount, err := meter.Int64Counter(
		"search_log.debounce.hit.count",
		metric.WithDescription("Number of debounce cache hits"),
	)
	if err != nil {
		return nil, err
	}

	cacheMissCount, err := meter.Int64Counter(
		"search_log.debounce.miss.count",
		metric.WithDescription("Number of debounce cache misses"),
	)
	if err != nil {
		return nil, err
	}

	eventsPruned, err := meter.Int64Counter(
		"search_log.retention.pruned",
		metric.WithDescription("Number of search events deleted by retention"),
	)
	if err != nil {
		return nil, err
	}

	return &Metrics{
		EventsLogged:       eventsLogged,
		StoreQueryDuration: storeQueryDuration,
		CacheHitCount:      cacheHitCount,
		CacheMissCount:     cacheMissCount,
		EventsPruned:       eventsPruned,
	}, nil
}

// StartSpan starts a new trace span
func StartSpan(ctx context.Context, spanName string) (context.Context, trace.Span) {
	tracer := otel.Tracer(scopeName)
	return tracer.Start(ctx, spanName)
}

// RecordAction counts one logged search event by its outcome
func (m *Metrics) RecordAction(ctx context.Context, action string) {
	if m == nil {
		return
	}
	m.EventsLogged.Add(ctx, 1, metric.WithAttributes(attribute.String("action", action)))
}

// RecordStoreQuery records the duration of one store operation
func (m *Metrics) RecordStoreQuery(ctx context.Context, operation string, duration time.Duration) {
	if m == nil {
		return
	}
	m.StoreQueryDuration.Record(ctx, float64(duration.Milliseconds()),
		metric.WithAttributes(attribute.String("db.operation", operation)))
}

// RecordDebounceHit counts a debounce cache hit
func (m *Metrics) RecordDebounceHit(ctx context.Context) {
	if m == nil {
		return
	}
	m.CacheHitCount.Add(ctx, 1)
}

// RecordDebounceMiss counts a debounce cache miss
func (m *Metrics) RecordDebounceMiss(ctx context.Context) {
	if m == nil {
		return
	}
	m.CacheMissCount.Add(ctx, 1)
}

// RecordPruned counts events deleted by the retention job
func (m *Metrics) RecordPruned(ctx context.Context, n int64) {
	if m == nil {
		return
	}
	m.EventsPruned.Add(ctx, n)
}
