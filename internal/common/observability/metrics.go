package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

// Observability bundles the otel meter and tracer used by the service layer.
type Observability struct {
	meterProvider  *metric.MeterProvider
	tracerShutdown func(context.Context) error
	tracer         trace.Tracer
	opCounter      otelmetric.Int64Counter
	opDuration     otelmetric.Float64Histogram
}

// New wires an otel meter provider backed by the Prometheus exporter, so
// otel instruments show up on /metrics next to the promauto collectors.
// Traces are exported over OTLP/HTTP when otlpEndpoint is set.
func New(ctx context.Context, serviceName, otlpEndpoint string) (*Observability, error) {
	exporter, err := prometheus.New()
	if err != nil {
		return nil, fmt.Errorf("create prometheus exporter: %w", err)
	}

	provider := metric.NewMeterProvider(metric.WithReader(exporter))
	otel.SetMeterProvider(provider)

	tracerShutdown, err := SetupTracing(ctx, serviceName, otlpEndpoint)
	if err != nil {
		_ = provider.Shutdown(ctx)
		return nil, fmt.Errorf("setup tracing: %w", err)
	}

	o := newFromProviders(provider.Meter(serviceName), otel.Tracer(serviceName))
	o.meterProvider = provider
	o.tracerShutdown = tracerShutdown
	return o, nil
}

// NewWithProviders is used by tests and by callers that own the providers.
func NewWithProviders(mp otelmetric.MeterProvider, tp trace.TracerProvider, name string) *Observability {
	return newFromProviders(mp.Meter(name), tp.Tracer(name))
}

// NewNoop records nothing.
func NewNoop() *Observability {
	return newFromProviders(noop.NewMeterProvider().Meter("noop"), tracenoop.NewTracerProvider().Tracer("noop"))
}

func newFromProviders(meter otelmetric.Meter, tracer trace.Tracer) *Observability {
	opCounter, _ := meter.Int64Counter(
		"registry.operations",
		otelmetric.WithDescription("Number of registry operations processed"),
	)
	opDuration, _ := meter.Float64Histogram(
		"registry.operation.duration",
		otelmetric.WithDescription("Registry operation duration"),
		otelmetric.WithUnit("ms"),
	)
	return &Observability{
		tracer:     tracer,
		opCounter:  opCounter,
		opDuration: opDuration,
	}
}

// StartSpan starts a span named after the operation.
func (o *Observability) StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return o.tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

func (o *Observability) RecordOperation(ctx context.Context, operation, outcome string, duration time.Duration) {
	attrs := otelmetric.WithAttributes(
		attribute.String("operation", operation),
		attribute.String("outcome", outcome),
	)
	if o.opCounter != nil {
		o.opCounter.Add(ctx, 1, attrs)
	}
	if o.opDuration != nil {
		o.opDuration.Record(ctx, float64(duration.Microseconds())/1000, attrs)
	}
}

func (o *Observability) Shutdown(ctx context.Context) error {
	var firstErr error
	if o.tracerShutdown != nil {
		if err := o.tracerShutdown(ctx); err != nil {
			firstErr = err
		}
	}
	if o.meterProvider != nil {
		if err := o.meterProvider.Shutdown(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
