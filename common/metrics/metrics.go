package metrics

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

// latencyBuckets covers 1ms..10s, used by every duration histogram here
var latencyBuckets = []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10}

// Metrics groups the infrastructure collectors shared by the service.
type Metrics struct {
	Runtime   *RuntimeMetrics
	Database  *DatabaseMetrics
	Messaging *MessagingMetrics
	Health    *HealthMetrics
	meter     metric.Meter
}

// New creates every collector on the global meter provider, so telemetry
// must be initialized first.
func New(ctx context.Context, serviceName string, logger *slog.Logger) (*Metrics, error) {
	m := &Metrics{meter: otel.Meter(serviceName)}

	var err error
	if m.Runtime, err = NewRuntimeMetrics(ctx, m.meter); err != nil {
		return nil, fmt.Errorf("runtime metrics: %w", err)
	}
	if m.Database, err = NewDatabaseMetrics(m.meter); err != nil {
		return nil, fmt.Errorf("database metrics: %w", err)
	}
	if m.Messaging, err = NewMessagingMetrics(m.meter); err != nil {
		return nil, fmt.Errorf("messaging metrics: %w", err)
	}
	if m.Health, err = NewHealthMetrics(m.meter); err != nil {
		return nil, fmt.Errorf("health metrics: %w", err)
	}

	logger.Info("metrics collectors initialized", "meter", serviceName)
	return m, nil
}

// Meter returns the meter the collectors were created from, or a no-op
// meter for the mock.
func (m *Metrics) Meter() metric.Meter {
	if m == nil || m.meter == nil {
		return otel.Meter("noop")
	}
	return m.meter
}

// NewMock returns collectors that ignore every Record call.
func NewMock() *Metrics {
	return &Metrics{
		Runtime:   &RuntimeMetrics{},
		Database:  &DatabaseMetrics{},
		Messaging: &MessagingMetrics{},
		Health:    &HealthMetrics{dependencies: map[string]bool{}},
	}
}
