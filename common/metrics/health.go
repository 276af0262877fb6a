package metrics

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

type HealthMetrics struct {
	dependencyUp  metric.Int64ObservableGauge
	checkDuration metric.Float64Histogram
	serviceInfo   metric.Int64ObservableGauge
	mu            sync.RWMutex
	dependencies  map[string]bool
}

func NewHealthMetrics(meter metric.Meter) (*HealthMetrics, error) {
	hm := &HealthMetrics{dependencies: make(map[string]bool)}
	var err error

	if hm.dependencyUp, err = meter.Int64ObservableGauge("dependency.up",
		metric.WithDescription("Dependency availability (1=up, 0=down)"),
		metric.WithUnit("{status}")); err != nil {
		return nil, err
	}
	if hm.checkDuration, err = meter.Float64Histogram("dependency.check.duration",
		metric.WithDescription("Readiness check duration per dependency"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...)); err != nil {
		return nil, err
	}
	if hm.serviceInfo, err = meter.Int64ObservableGauge("service.info",
		metric.WithDescription("Service metadata information"),
		metric.WithUnit("{info}")); err != nil {
		return nil, err
	}

	_, err = meter.RegisterCallback(
		func(ctx context.Context, observer metric.Observer) error {
			hm.mu.RLock()
			defer hm.mu.RUnlock()
			for name, up := range hm.dependencies {
				value := int64(0)
				if up {
					value = 1
				}
				observer.ObserveInt64(hm.dependencyUp, value, metric.WithAttributes(attribute.String("dependency", name)))
			}
			return nil
		},
		hm.dependencyUp,
	)
	if err != nil {
		return nil, err
	}

	return hm, nil
}

func (hm *HealthMetrics) RegisterServiceInfo(ctx context.Context, meter metric.Meter, serviceName, version, env string) error {
	if hm == nil || hm.serviceInfo == nil {
		return nil
	}
	_, err := meter.RegisterCallback(
		func(ctx context.Context, observer metric.Observer) error {
			observer.ObserveInt64(hm.serviceInfo, 1, metric.WithAttributes(
				attribute.String("service_name", serviceName),
				attribute.String("version", version),
				attribute.String("environment", env),
			))
			return nil
		},
		hm.serviceInfo,
	)
	return err
}

// RecordDependencyCheck stores the outcome of a readiness probe.
func (hm *HealthMetrics) RecordDependencyCheck(ctx context.Context, dependency string, duration time.Duration, err error) {
	if hm == nil {
		return
	}
	if hm.checkDuration != nil {
		hm.checkDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attribute.String("dependency", dependency)))
	}

	hm.mu.Lock()
	if hm.dependencies == nil {
		hm.dependencies = make(map[string]bool)
	}
	hm.dependencies[dependency] = err == nil
	hm.mu.Unlock()
}

// DependencyUp reports the last recorded status of dependency.
func (hm *HealthMetrics) DependencyUp(dependency string) bool {
	if hm == nil {
		return false
	}
	hm.mu.RLock()
	defer hm.mu.RUnlock()
	return hm.dependencies[dependency]
}
