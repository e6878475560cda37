package metrics

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/SigNoz/ecommerce-console/pkg/config"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

// AppMetrics holds all application metrics
type AppMetrics struct {
	// Console HTTP server
	HTTPRequestsTotal   metric.Int64Counter
	HTTPRequestsErrors  metric.Int64Counter
	HTTPRequestDuration metric.Float64Histogram

	// Upstream REST API client
	UpstreamRequestsTotal   metric.Int64Counter
	UpstreamRequestsErrors  metric.Int64Counter
	UpstreamRequestDuration metric.Float64Histogram

	// Token store database
	DBQueriesTotal  metric.Int64Counter
	DBQueryDuration metric.Float64Histogram

	// Console
	MutationsTotal       metric.Int64Counter
	StaleResponsesTotal  metric.Int64Counter
	LoginRedirectsTotal  metric.Int64Counter
	SearchRequestsTotal  metric.Int64Counter
	NameCacheLookupTotal metric.Int64Counter

	// Service name for adding to all metrics
	serviceName string
}

// Provider is the part of the SDK meter provider main needs at shutdown.
type Provider interface {
	Meter(name string, opts ...metric.MeterOption) metric.Meter
	Shutdown(ctx context.Context) error
}

type noopProvider struct {
	metric.MeterProvider
}

func (noopProvider) Shutdown(context.Context) error { return nil }

// InitMetrics initializes OpenTelemetry metrics with an OTLP HTTP exporter.
// When metrics are disabled a no-op provider is returned.
func InitMetrics(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*AppMetrics, Provider, error) {
	if !cfg.OTELMetricsEnabled {
		logger.Info().Msg("metrics disabled, using no-op meter")
		provider := noopProvider{MeterProvider: noop.NewMeterProvider()}
		m, err := New(provider.Meter(cfg.OTELServiceName), cfg.OTELServiceName)
		return m, provider, err
	}

	res, err := newResource(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	// WithEndpoint expects host:port without a scheme
	exporterOpts := []otlpmetrichttp.Option{
		otlpmetrichttp.WithEndpoint(cfg.OTELExporterOTLPEndpoint),
		otlpmetrichttp.WithURLPath("/v1/metrics"),
	}

	if cfg.OTELExporterOTLPHeaders != "" {
		headers := parseHeaders(cfg.OTELExporterOTLPHeaders)
		exporterOpts = append(exporterOpts, otlpmetrichttp.WithHeaders(headers))
	}

	if cfg.OTELExporterOTLPInsecure {
		exporterOpts = append(exporterOpts, otlpmetrichttp.WithInsecure())
	}

	exporter, err := otlpmetrichttp.New(ctx, exporterOpts...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create OTLP exporter: %w", err)
	}

	logger.Info().
		Str("endpoint", cfg.OTELExporterOTLPEndpoint).
		Bool("insecure", cfg.OTELExporterOTLPInsecure).
		Dur("interval", 10*time.Second).
		Msg("metrics exporter configured")

	reader := sdkmetric.NewPeriodicReader(exporter,
		sdkmetric.WithInterval(10*time.Second),
	)

	meterProvider := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(reader),
	)

	otel.SetMeterProvider(meterProvider)

	m, err := New(meterProvider.Meter(cfg.OTELServiceName), cfg.OTELServiceName)
	if err != nil {
		return nil, nil, err
	}
	return m, meterProvider, nil
}

// NewNoop returns metrics backed by a no-op meter.
func NewNoop() *AppMetrics {
	m, _ := New(noop.NewMeterProvider().Meter("noop"), "noop")
	return m
}

// New creates all instruments on the given meter.
func New(meter metric.Meter, serviceName string) (*AppMetrics, error) {
	// SigNoz default histogram buckets in milliseconds, expanded to 60s
	buckets := []float64{2, 4, 6, 8, 10, 50, 100, 200, 400, 800, 1000, 1400, 2000, 5000, 10000, 15000, 20000, 30000, 45000, 60000}

	m := &AppMetrics{serviceName: serviceName}
	var err error

	if m.HTTPRequestsTotal, err = meter.Int64Counter(
		"http.server.request.count",
		metric.WithDescription("Total number of console HTTP requests"),
		metric.WithUnit("1"),
	); err != nil {
		return nil, fmt.Errorf("failed to create http requests counter: %w", err)
	}

	if m.HTTPRequestsErrors, err = meter.Int64Counter(
		"http.server.request.error.count",
		metric.WithDescription("Total number of console HTTP error requests"),
		metric.WithUnit("1"),
	); err != nil {
		return nil, fmt.Errorf("failed to create http errors counter: %w", err)
	}

	if m.HTTPRequestDuration, err = meter.Float64Histogram(
		"http.server.request.duration",
		metric.WithDescription("Console HTTP request duration in milliseconds"),
		metric.WithUnit("ms"),
		metric.WithExplicitBucketBoundaries(buckets...),
	); err != nil {
		return nil, fmt.Errorf("failed to create http duration histogram: %w", err)
	}

	if m.UpstreamRequestsTotal, err = meter.Int64Counter(
		"http.client.request.count",
		metric.WithDescription("Total number of upstream API requests"),
		metric.WithUnit("1"),
	); err != nil {
		return nil, fmt.Errorf("failed to create upstream requests counter: %w", err)
	}

	if m.UpstreamRequestsErrors, err = meter.Int64Counter(
		"http.client.request.error.count",
		metric.WithDescription("Total number of failed upstream API requests"),
		metric.WithUnit("1"),
	); err != nil {
		return nil, fmt.Errorf("failed to create upstream errors counter: %w", err)
	}

	if m.UpstreamRequestDuration, err = meter.Float64Histogram(
		"http.client.request.duration",
		metric.WithDescription("Upstream API request duration in milliseconds"),
		metric.WithUnit("ms"),
		metric.WithExplicitBucketBoundaries(buckets...),
	); err != nil {
		return nil, fmt.Errorf("failed to create upstream duration histogram: %w", err)
	}

	if m.DBQueriesTotal, err = meter.Int64Counter(
		"db.client.queries.count",
		metric.WithDescription("Total number of token store queries"),
		metric.WithUnit("1"),
	); err != nil {
		return nil, fmt.Errorf("failed to create db queries counter: %w", err)
	}

	if m.DBQueryDuration, err = meter.Float64Histogram(
		"db.client.queries.duration",
		metric.WithDescription("Token store query duration in milliseconds"),
		metric.WithUnit("ms"),
		metric.WithExplicitBucketBoundaries(buckets...),
	); err != nil {
		return nil, fmt.Errorf("failed to create db duration histogram: %w", err)
	}

	if m.MutationsTotal, err = meter.Int64Counter(
		"console_mutations_total",
		metric.WithDescription("Create, update and delete operations issued from the console"),
		metric.WithUnit("1"),
	); err != nil {
		return nil, fmt.Errorf("failed to create mutations counter: %w", err)
	}

	if m.StaleResponsesTotal, err = meter.Int64Counter(
		"console_stale_responses_total",
		metric.WithDescription("Responses discarded because a newer request was issued"),
		metric.WithUnit("1"),
	); err != nil {
		return nil, fmt.Errorf("failed to create stale responses counter: %w", err)
	}

	if m.LoginRedirectsTotal, err = meter.Int64Counter(
		"console_login_redirects_total",
		metric.WithDescription("Redirects to the login route caused by 401 responses"),
		metric.WithUnit("1"),
	); err != nil {
		return nil, fmt.Errorf("failed to create login redirects counter: %w", err)
	}

	if m.SearchRequestsTotal, err = meter.Int64Counter(
		"console_search_requests_total",
		metric.WithDescription("Debounced search-as-you-type requests sent upstream"),
		metric.WithUnit("1"),
	); err != nil {
		return nil, fmt.Errorf("failed to create search requests counter: %w", err)
	}

	if m.NameCacheLookupTotal, err = meter.Int64Counter(
		"console_name_cache_lookups_total",
		metric.WithDescription("Display-name lookups by result (hit or miss)"),
		metric.WithUnit("1"),
	); err != nil {
		return nil, fmt.Errorf("failed to create name cache counter: %w", err)
	}

	return m, nil
}

// WithServiceName adds service.name to attributes
func (m *AppMetrics) WithServiceName(attrs []attribute.KeyValue) []attribute.KeyValue {
	return append(attrs, attribute.String("service.name", m.serviceName))
}

// RecordDBQuery records token store query metrics
func (m *AppMetrics) RecordDBQuery(ctx context.Context, operation, table string, start time.Time, success bool) {
	duration := time.Since(start).Milliseconds()

	attrs := []attribute.KeyValue{
		attribute.String("db.operation", operation),
		attribute.String("db.sql.table", table),
		attribute.String("db.system", "mysql"),
		attribute.String("status", status(success)),
	}

	m.DBQueriesTotal.Add(ctx, 1, metric.WithAttributes(m.WithServiceName(attrs)...))
	m.DBQueryDuration.Record(ctx, float64(duration), metric.WithAttributes(m.WithServiceName(attrs)...))
}

// RecordUpstreamRequest records one call to the upstream REST API.
// statusCode is 0 when the request never produced a response.
func (m *AppMetrics) RecordUpstreamRequest(ctx context.Context, method, resource string, statusCode int, start time.Time) {
	duration := time.Since(start).Milliseconds()

	attrs := m.WithServiceName([]attribute.KeyValue{
		attribute.String("http.method", method),
		attribute.String("api.resource", resource),
		attribute.Int("http.status_code", statusCode),
	})

	m.UpstreamRequestsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	if statusCode == 0 || statusCode >= 400 {
		m.UpstreamRequestsErrors.Add(ctx, 1, metric.WithAttributes(attrs...))
	}
	m.UpstreamRequestDuration.Record(ctx, float64(duration), metric.WithAttributes(attrs...))
}

// RecordMutation counts a console create/update/delete
func (m *AppMetrics) RecordMutation(ctx context.Context, entity, operation string, success bool) {
	m.MutationsTotal.Add(ctx, 1, metric.WithAttributes(m.WithServiceName([]attribute.KeyValue{
		attribute.String("entity", entity),
		attribute.String("operation", operation),
		attribute.String("status", status(success)),
	})...))
}

// RecordStaleResponse counts a discarded out-of-order response
func (m *AppMetrics) RecordStaleResponse(ctx context.Context, source string) {
	m.StaleResponsesTotal.Add(ctx, 1, metric.WithAttributes(m.WithServiceName([]attribute.KeyValue{
		attribute.String("source", source),
	})...))
}

// RecordLoginRedirect counts a redirect to the login route
func (m *AppMetrics) RecordLoginRedirect(ctx context.Context) {
	m.LoginRedirectsTotal.Add(ctx, 1, metric.WithAttributes(m.WithServiceName(nil)...))
}

// RecordSearch counts a debounced search that reached the upstream API
func (m *AppMetrics) RecordSearch(ctx context.Context, field string) {
	m.SearchRequestsTotal.Add(ctx, 1, metric.WithAttributes(m.WithServiceName([]attribute.KeyValue{
		attribute.String("field", field),
	})...))
}

// RecordNameLookup counts a display-name cache hit or miss
func (m *AppMetrics) RecordNameLookup(ctx context.Context, kind string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	m.NameCacheLookupTotal.Add(ctx, 1, metric.WithAttributes(m.WithServiceName([]attribute.KeyValue{
		attribute.String("kind", kind),
		attribute.String("result", result),
	})...))
}

// newResource merges OTEL_RESOURCE_ATTRIBUTES with the configured service
// attributes, the latter taking precedence
func newResource(ctx context.Context, cfg *config.Config) (*resource.Resource, error) {
	// Environment attributes first, explicit service attributes take precedence
	envRes, err := resource.New(ctx, resource.WithFromEnv())
	if err != nil {
		envRes = resource.Empty()
	}

	explicitRes, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(cfg.OTELServiceName),
			semconv.ServiceVersion(cfg.OTELServiceVersion),
			attribute.String("deployment.environment", cfg.OTELDeploymentEnvironment),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create explicit resource: %w", err)
	}

	res, err := resource.Merge(envRes, explicitRes)
	if err != nil {
		return nil, fmt.Errorf("failed to merge resources: %w", err)
	}

	if name := serviceNameOf(res); name == "" {
		return nil, fmt.Errorf("service.name is not set in resource attributes")
	}
	return res, nil
}

func status(success bool) string {
	if success {
		return "success"
	}
	return "error"
}

func serviceNameOf(res *resource.Resource) string {
	for _, kv := range res.Attributes() {
		if kv.Key == semconv.ServiceNameKey {
			return kv.Value.AsString()
		}
	}
	return ""
}

// parseHeaders parses header string in format "key1=value1,key2=value2"
// and returns a map of headers
func parseHeaders(headerStr string) map[string]string {
	headers := make(map[string]string)
	if headerStr == "" {
		return headers
	}

	pairs := strings.Split(headerStr, ",")
	for _, pair := range pairs {
		parts := strings.SplitN(strings.TrimSpace(pair), "=", 2)
		if len(parts) == 2 {
			headers[strings.TrimSpace(parts[0])] = strings.TrimSpace(parts[1])
		}
	}
	return headers
}
