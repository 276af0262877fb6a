package metrics

import (
	"context"
	"database/sql"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

type DatabaseMetrics struct {
	connectionsOpen  metric.Int64ObservableGauge
	connectionsInUse metric.Int64ObservableGauge
	connectionsIdle  metric.Int64ObservableGauge
	queryDuration    metric.Float64Histogram
	queryErrors      metric.Int64Counter
	rowsAffected     metric.Int64Counter
	db               *sql.DB
}

func NewDatabaseMetrics(meter metric.Meter) (*DatabaseMetrics, error) {
	dm := &DatabaseMetrics{}
	var err error

	if dm.connectionsOpen, err = meter.Int64ObservableGauge("db.connections.open",
		metric.WithDescription("Open database connections"),
		metric.WithUnit("{connection}")); err != nil {
		return nil, err
	}
	if dm.connectionsInUse, err = meter.Int64ObservableGauge("db.connections.in_use",
		metric.WithDescription("Database connections currently in use"),
		metric.WithUnit("{connection}")); err != nil {
		return nil, err
	}
	if dm.connectionsIdle, err = meter.Int64ObservableGauge("db.connections.idle",
		metric.WithDescription("Idle database connections"),
		metric.WithUnit("{connection}")); err != nil {
		return nil, err
	}
	if dm.queryDuration, err = meter.Float64Histogram("db.query.duration",
		metric.WithDescription("Database query duration"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...)); err != nil {
		return nil, err
	}
	if dm.queryErrors, err = meter.Int64Counter("db.query.errors",
		metric.WithDescription("Database query errors"),
		metric.WithUnit("{error}")); err != nil {
		return nil, err
	}
	if dm.rowsAffected, err = meter.Int64Counter("db.rows.written",
		metric.WithDescription("Rows written by insert statements"),
		metric.WithUnit("{row}")); err != nil {
		return nil, err
	}

	return dm, nil
}

// RegisterDB observes the pool statistics of db on every collection.
func (dm *DatabaseMetrics) RegisterDB(db *sql.DB, meter metric.Meter) error {
	if dm == nil || dm.connectionsOpen == nil {
		return nil
	}
	dm.db = db

	_, err := meter.RegisterCallback(
		func(ctx context.Context, observer metric.Observer) error {
			if dm.db == nil {
				return nil
			}
			stats := dm.db.Stats()
			observer.ObserveInt64(dm.connectionsOpen, int64(stats.OpenConnections))
			observer.ObserveInt64(dm.connectionsInUse, int64(stats.InUse))
			observer.ObserveInt64(dm.connectionsIdle, int64(stats.Idle))
			return nil
		},
		dm.connectionsOpen,
		dm.connectionsInUse,
		dm.connectionsIdle,
	)
	return err
}

func (dm *DatabaseMetrics) RecordQuery(ctx context.Context, operation string, table string, duration time.Duration, err error) {
	if dm == nil || dm.queryDuration == nil {
		return
	}

	attrs := metric.WithAttributes(
		attribute.String("operation", operation),
		attribute.String("table", table),
	)
	dm.queryDuration.Record(ctx, duration.Seconds(), attrs)

	if err != nil {
		dm.queryErrors.Add(ctx, 1, attrs)
	}
}

func (dm *DatabaseMetrics) RecordRowsWritten(ctx context.Context, table string, rows int64) {
	if dm == nil || dm.rowsAffected == nil || rows <= 0 {
		return
	}
	dm.rowsAffected.Add(ctx, rows, metric.WithAttributes(attribute.String("table", table)))
}
