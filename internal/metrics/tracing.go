package metrics

import (
	"context"
	"fmt"

	"github.com/SigNoz/ecommerce-console/pkg/config"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

// TracerProvider is a trace.TracerProvider that can be flushed on exit.
type TracerProvider interface {
	trace.TracerProvider
	Shutdown(ctx context.Context) error
}

type noopTracerProvider struct {
	trace.TracerProvider
}

func (noopTracerProvider) Shutdown(context.Context) error { return nil }

// InitTracing installs the global tracer provider and W3C propagators.
// Spans come from the otelhttp transport wrapping upstream API calls.
func InitTracing(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (TracerProvider, error) {
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	if !cfg.OTELTracesEnabled {
		logger.Info().Msg("tracing disabled, using no-op tracer")
		return noopTracerProvider{TracerProvider: tracenoop.NewTracerProvider()}, nil
	}

	res, err := newResource(ctx, cfg)
	if err != nil {
		return nil, err
	}

	exporterOpts := []otlptracehttp.Option{
		otlptracehttp.WithEndpoint(cfg.OTELExporterOTLPEndpoint),
		otlptracehttp.WithURLPath("/v1/traces"),
	}
	if cfg.OTELExporterOTLPHeaders != "" {
		exporterOpts = append(exporterOpts, otlptracehttp.WithHeaders(parseHeaders(cfg.OTELExporterOTLPHeaders)))
	}
	if cfg.OTELExporterOTLPInsecure {
		exporterOpts = append(exporterOpts, otlptracehttp.WithInsecure())
	}

	exporter, err := otlptracehttp.New(ctx, exporterOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create OTLP trace exporter: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)

	logger.Info().
		Str("endpoint", cfg.OTELExporterOTLPEndpoint).
		Bool("insecure", cfg.OTELExporterOTLPInsecure).
		Msg("trace exporter configured")

	return tp, nil
}
