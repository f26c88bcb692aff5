package otel

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

// TracingConfig configures the OTLP/HTTP trace exporter used by watch mode.
type TracingConfig struct {
	// Endpoint is the collector host:port. Tracing is disabled when empty.
	Endpoint string
	// ServiceName defaults to "bundlecheck".
	ServiceName string
	// Insecure disables TLS toward the collector.
	Insecure bool
}

// InitTracing installs a global tracer provider exporting to the configured
// OTLP endpoint. The returned shutdown flushes and stops the provider; it is
// a no-op when tracing is disabled.
func InitTracing(ctx context.Context, cfg TracingConfig) (func(context.Context) error, error) {
	if cfg.Endpoint == "" {
		return func(context.Context) error { return nil }, nil
	}

	opts := []otlptracehttp.Option{
		otlptracehttp.WithEndpoint(cfg.Endpoint),
	}
	if cfg.Insecure {
		opts = append(opts, otlptracehttp.WithInsecure())
	}
	exporter, err := otlptracehttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("otel: create trace exporter: %w", err)
	}

	name := cfg.ServiceName
	if name == "" {
		name = "bundlecheck"
	}
	// Schemaless keeps the merge compatible with whatever schema the SDK
	// default resource carries.
	res, err := resource.Merge(resource.Default(), resource.NewSchemaless(
		semconv.ServiceName(name),
	))
	if err != nil {
		return nil, fmt.Errorf("otel: build resource: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)

	return tp.Shutdown, nil
}
