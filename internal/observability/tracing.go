// Package observability sets up OpenTelemetry tracing for catalog fetches, model
// builds and generation runs.
package observability

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.opentelemetry.io/otel/trace"
)

// TracerName is the instrumentation name of every span this module starts.
const TracerName = "github.com/jsyiek/mtg-card-generator"

// TracingConfig configures tracing.
type TracingConfig struct {
	ServiceName    string
	ServiceVersion string

	// OTLPEndpoint is the OTLP gRPC endpoint, e.g. "localhost:4317".
	// Tracing is disabled when empty.
	OTLPEndpoint string

	// SampleRate is the trace sampling rate between 0 and 1.
	SampleRate float64
}

// DefaultTracingConfig returns a disabled tracing configuration.
func DefaultTracingConfig() *TracingConfig {
	return &TracingConfig{
		ServiceName:    "mtg-card-generator",
		ServiceVersion: "0.1.0",
		SampleRate:     1.0,
	}
}

// TracerProvider wraps the SDK provider. Without an endpoint it only holds the
// global no-op tracer.
type TracerProvider struct {
	provider *sdktrace.TracerProvider
	tracer   trace.Tracer
}

// InitTracing installs an OTLP tracer provider as the global provider. It returns
// a no-op provider when cfg has no endpoint.
func InitTracing(ctx context.Context, cfg *TracingConfig) (*TracerProvider, error) {
	if cfg == nil {
		cfg = DefaultTracingConfig()
	}
	if cfg.OTLPEndpoint == "" {
		return &TracerProvider{tracer: otel.Tracer(TracerName)}, nil
	}

	exporter, err := otlptracegrpc.New(ctx,
		otlptracegrpc.WithEndpoint(cfg.OTLPEndpoint),
		otlptracegrpc.WithInsecure(),
	)
	if err != nil {
		return nil, fmt.Errorf("create OTLP exporter: %w", err)
	}

	res, err := resource.Merge(
		resource.Default(),
		resource.NewSchemaless(
			semconv.ServiceName(cfg.ServiceName),
			semconv.ServiceVersion(cfg.ServiceVersion),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("create resource: %w", err)
	}

	provider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(Sampler(cfg.SampleRate)),
	)
	otel.SetTracerProvider(provider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	return &TracerProvider{
		provider: provider,
		tracer:   provider.Tracer(TracerName),
	}, nil
}

// Sampler maps a sample rate onto an SDK sampler.
func Sampler(rate float64) sdktrace.Sampler {
	switch {
	case rate >= 1.0:
		return sdktrace.AlwaysSample()
	case rate <= 0:
		return sdktrace.NeverSample()
	default:
		return sdktrace.TraceIDRatioBased(rate)
	}
}

// Shutdown flushes and stops the provider.
func (tp *TracerProvider) Shutdown(ctx context.Context) error {
	if tp.provider != nil {
		return tp.provider.Shutdown(ctx)
	}
	return nil
}

// Tracer returns the tracer.
func (tp *TracerProvider) Tracer() trace.Tracer {
	return tp.tracer
}

// StartFetchSpan starts a span around a catalog fetch.
func StartFetchSpan(ctx context.Context, query string, reset bool) (context.Context, trace.Span) {
	return otel.Tracer(TracerName).Start(ctx, "catalog.fetch",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("catalog.query", query),
			attribute.Bool("catalog.reset", reset),
		),
	)
}

// StartBuildSpan starts a span around a chunk model build.
func StartBuildSpan(ctx context.Context, cards, chunkSize int) (context.Context, trace.Span) {
	return otel.Tracer(TracerName).Start(ctx, "model.build",
		trace.WithAttributes(
			attribute.Int("model.cards", cards),
			attribute.Int("model.chunk_size", chunkSize),
		),
	)
}

// StartGenerateSpan starts a span around a generation run.
func StartGenerateSpan(ctx context.Context, cardType string, count, workers int) (context.Context, trace.Span) {
	return otel.Tracer(TracerName).Start(ctx, "generator.generate",
		trace.WithAttributes(
			attribute.String("generator.card_type", cardType),
			attribute.Int("generator.count", count),
			attribute.Int("generator.workers", workers),
		),
	)
}

// RecordError marks the span as failed.
func RecordError(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
}
