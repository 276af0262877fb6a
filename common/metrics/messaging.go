package metrics

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

type MessagingMetrics struct {
	published       metric.Int64Counter
	publishErrors   metric.Int64Counter
	publishDuration metric.Float64Histogram
}

func NewMessagingMetrics(meter metric.Meter) (*MessagingMetrics, error) {
	mm := &MessagingMetrics{}
	var err error

	if mm.published, err = meter.Int64Counter("messaging.messages.published",
		metric.WithDescription("Domain events published"),
		metric.WithUnit("{message}")); err != nil {
		return nil, err
	}
	if mm.publishErrors, err = meter.Int64Counter("messaging.publish.errors",
		metric.WithDescription("Domain events that failed to publish"),
		metric.WithUnit("{error}")); err != nil {
		return nil, err
	}
	if mm.publishDuration, err = meter.Float64Histogram("messaging.publish.duration",
		metric.WithDescription("Time spent publishing a domain event"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...)); err != nil {
		return nil, err
	}

	return mm, nil
}

func (mm *MessagingMetrics) RecordPublish(ctx context.Context, driver, subject string, duration time.Duration, err error) {
	if mm == nil || mm.published == nil {
		return
	}

	attrs := metric.WithAttributes(
		attribute.String("driver", driver),
		attribute.String("subject", subject),
	)
	if err != nil {
		mm.publishErrors.Add(ctx, 1, attrs)
		return
	}
	mm.published.Add(ctx, 1, attrs)
	mm.publishDuration.Record(ctx, duration.Seconds(), attrs)
}
