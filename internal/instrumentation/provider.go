package instrumentation

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// Provider wires up the OpenTelemetry metrics and tracing pipelines from a
// Config. A disabled provider is valid and cheap: all accessors return
// no-op implementations so call sites never need to branch.
type Provider struct {
	config Config

	meterProvider  *sdkmetric.MeterProvider
	tracerProvider *sdktrace.TracerProvider
	metrics        *Metrics
	auditLogger    *AuditLogger
}

// NewProvider creates an instrumentation provider from the given config.
// When config.Enabled is false no exporters are created and the provider is
// a no-op. When enabled, the selected exporters are installed as the global
// OTel meter and tracer providers.
func NewProvider(ctx context.Context, config Config) (*Provider, error) {
	p := &Provider{
		config:      config,
		metrics:     &Metrics{}, // nil instruments: recording is a no-op
		auditLogger: NewAuditLogger(nil),
	}
	if !config.Enabled {
		return p, nil
	}

	res := resource.NewSchemaless(
		attribute.String("service.name", config.ServiceName),
		attribute.String("service.version", config.ServiceVersion),
	)

	if err := p.setupMetrics(ctx, res); err != nil {
		return nil, err
	}
	if err := p.setupTracing(ctx, res); err != nil {
		// Roll back the metrics pipeline so a half-initialized provider
		// never leaks.
		_ = p.Shutdown(ctx)
		return nil, err
	}

	return p, nil
}

func (p *Provider) setupMetrics(ctx context.Context, res *resource.Resource) error {
	var reader sdkmetric.Reader

	switch p.config.MetricsExporter {
	case "prometheus", "":
		// The prometheus exporter registers with the default Prometheus
		// registry, which the metrics HTTP endpoint serves via promhttp.
		exporter, err := otelprom.New()
		if err != nil {
			return fmt.Errorf("failed to create prometheus exporter: %w", err)
		}
		reader = exporter
	case "otlp":
		opts := []otlpmetrichttp.Option{}
		if p.config.OTLPEndpoint != "" {
			opts = append(opts, otlpmetrichttp.WithEndpointURL(p.config.OTLPEndpoint))
		}
		if p.config.OTLPInsecure {
			opts = append(opts, otlpmetrichttp.WithInsecure())
		}
		exporter, err := otlpmetrichttp.New(ctx, opts...)
		if err != nil {
			return fmt.Errorf("failed to create OTLP metrics exporter: %w", err)
		}
		reader = sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(DefaultMetricInterval))
	case "stdout":
		exporter, err := stdoutmetric.New()
		if err != nil {
			return fmt.Errorf("failed to create stdout metrics exporter: %w", err)
		}
		reader = sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(DefaultMetricInterval))
	default:
		return fmt.Errorf("unknown metrics exporter %q", p.config.MetricsExporter)
	}

	p.meterProvider = sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(reader),
	)
	otel.SetMeterProvider(p.meterProvider)

	metrics, err := NewMetrics(p.meterProvider.Meter(p.config.ServiceName), p.config.DetailedLabels)
	if err != nil {
		return fmt.Errorf("failed to create metrics: %w", err)
	}
	p.metrics = metrics
	return nil
}

func (p *Provider) setupTracing(ctx context.Context, res *resource.Resource) error {
	var exporter sdktrace.SpanExporter

	switch p.config.TracingExporter {
	case "none", "":
		return nil
	case "otlp":
		opts := []otlptracehttp.Option{}
		if p.config.OTLPEndpoint != "" {
			opts = append(opts, otlptracehttp.WithEndpointURL(p.config.OTLPEndpoint))
		}
		if p.config.OTLPInsecure {
			opts = append(opts, otlptracehttp.WithInsecure())
		}
		exp, err := otlptracehttp.New(ctx, opts...)
		if err != nil {
			return fmt.Errorf("failed to create OTLP trace exporter: %w", err)
		}
		exporter = exp
	case "stdout":
		exp, err := stdouttrace.New()
		if err != nil {
			return fmt.Errorf("failed to create stdout trace exporter: %w", err)
		}
		exporter = exp
	default:
		return fmt.Errorf("unknown tracing exporter %q", p.config.TracingExporter)
	}

	p.tracerProvider = sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(p.config.TraceSamplingRate))),
	)
	otel.SetTracerProvider(p.tracerProvider)
	return nil
}

// Enabled reports whether instrumentation pipelines were created.
func (p *Provider) Enabled() bool {
	return p.config.Enabled
}

// Config returns the provider configuration.
func (p *Provider) Config() Config {
	return p.config
}

// Metrics returns the metrics recorder. Never nil: a disabled provider
// returns a recorder whose methods are no-ops.
func (p *Provider) Metrics() *Metrics {
	return p.metrics
}

// AuditLogger returns the audit logger. Never nil.
func (p *Provider) AuditLogger() *AuditLogger {
	return p.auditLogger
}

// Shutdown flushes and stops the metrics and tracing pipelines. Safe to
// call on a disabled provider and safe to call more than once.
func (p *Provider) Shutdown(ctx context.Context) error {
	var errs []error
	if p.tracerProvider != nil {
		if err := p.tracerProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("shutting down tracer provider: %w", err))
		}
		p.tracerProvider = nil
	}
	if p.meterProvider != nil {
		if err := p.meterProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("shutting down meter provider: %w", err))
		}
		p.meterProvider = nil
	}
	return errors.Join(errs...)
}
