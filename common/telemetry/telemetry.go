package telemetry

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"admissions-service/common/metrics"

	promclient "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/prometheus"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

const (
	ExporterOTLP       = "otlp"
	ExporterPrometheus = "prometheus"
	ExporterNone       = "none"
)

type Options struct {
	ServiceName    string
	ServiceVersion string
	Env            string
	Exporter       string
	Endpoint       string
	Interval       time.Duration
}

type Telemetry struct {
	MeterProvider *sdkmetric.MeterProvider
	Metrics       *metrics.Metrics
	registry      *promclient.Registry
}

func Init(ctx context.Context, opts Options, logger *slog.Logger) (*Telemetry, error) {
	t := &Telemetry{}

	if opts.Exporter != ExporterNone {
		provider, registry, err := newMeterProvider(ctx, opts, logger)
		if err != nil {
			return nil, err
		}
		t.MeterProvider = provider
		t.registry = registry
		otel.SetMeterProvider(provider)
	}

	m, err := metrics.New(ctx, opts.ServiceName, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize metrics: %w", err)
	}
	if err := m.Health.RegisterServiceInfo(ctx, m.Meter(), opts.ServiceName, opts.ServiceVersion, opts.Env); err != nil {
		logger.Warn("failed to register service info", "error", err)
	}
	t.Metrics = m

	return t, nil
}

func newMeterProvider(ctx context.Context, opts Options, logger *slog.Logger) (*sdkmetric.MeterProvider, *promclient.Registry, error) {
	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(opts.ServiceName),
			semconv.ServiceVersion(opts.ServiceVersion),
		),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create resource: %w", err)
	}

	switch opts.Exporter {
	case ExporterPrometheus:
		registry := promclient.NewRegistry()
		exporter, err := prometheus.New(prometheus.WithRegisterer(registry))
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create prometheus exporter: %w", err)
		}
		logger.Info("initializing OTel metrics", "exporter", ExporterPrometheus)
		return sdkmetric.NewMeterProvider(sdkmetric.WithResource(res), sdkmetric.WithReader(exporter)), registry, nil

	case ExporterOTLP, "":
		endpoint := opts.Endpoint
		if endpoint == "" {
			endpoint = "otel-collector.infra.svc.cluster.local:4317"
		}
		interval := opts.Interval
		if interval <= 0 {
			interval = 10 * time.Second
		}

		exporter, err := otlpmetricgrpc.New(ctx,
			otlpmetricgrpc.WithEndpoint(endpoint),
			otlpmetricgrpc.WithInsecure(),
		)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create metric exporter: %w", err)
		}
		logger.Info("initializing OTel metrics", "exporter", ExporterOTLP, "endpoint", endpoint)
		return sdkmetric.NewMeterProvider(
			sdkmetric.WithResource(res),
			sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(interval))),
		), nil, nil
	}

	return nil, nil, fmt.Errorf("unknown metrics exporter %q", opts.Exporter)
}

// Handler serves the Prometheus scrape endpoint, or nil when the
// exporter is not prometheus.
func (t *Telemetry) Handler() http.Handler {
	if t == nil || t.registry == nil {
		return nil
	}
	return promhttp.HandlerFor(t.registry, promhttp.HandlerOpts{})
}

func (t *Telemetry) Shutdown(ctx context.Context, logger *slog.Logger) error {
	if t == nil || t.MeterProvider == nil {
		return nil
	}
	logger.Info("shutting down OTel meter provider")
	if err := t.MeterProvider.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown meter provider: %w", err)
	}
	return nil
}
