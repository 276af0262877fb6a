package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"admissions-service/common/metrics"

	"github.com/nats-io/nats.go"
)

// NATSPublisher sends each event to <subject>.<event type>.
type NATSPublisher struct {
	conn    *nats.Conn
	subject string
	logger  *slog.Logger
	metrics *metrics.Metrics
}

func NewNATSPublisher(url, subject string, logger *slog.Logger, m *metrics.Metrics) (*NATSPublisher, error) {
	nc, err := nats.Connect(url, nats.Name("admissions-service"))
	if err != nil {
		return nil, fmt.Errorf("connect to nats: %w", err)
	}

	logger.Info("NATS publisher initialized", "url", url, "subject", subject)

	return &NATSPublisher{
		conn:    nc,
		subject: subject,
		logger:  logger,
		metrics: m,
	}, nil
}

func (p *NATSPublisher) Subject(eventType string) string {
	return p.subject + "." + eventType
}

func (p *NATSPublisher) Publish(ctx context.Context, event Event) error {
	start := time.Now()
	subject := p.Subject(event.Type)

	payload, err := json.Marshal(event)
	if err == nil {
		err = p.conn.Publish(subject, payload)
	}
	p.metrics.Messaging.RecordPublish(ctx, "nats", subject, time.Since(start), err)

	if err != nil {
		return fmt.Errorf("publish %s: %w", subject, err)
	}

	p.logger.DebugContext(ctx, "event sent to NATS", "subject", subject)
	return nil
}

func (p *NATSPublisher) Close() error {
	if err := p.conn.Drain(); err != nil {
		p.conn.Close()
		return err
	}
	return nil
}
