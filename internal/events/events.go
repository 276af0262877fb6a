// Package events publishes intake domain events to a message broker.
package events

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"admissions-service/common/metrics"
	"admissions-service/internal/config"
)

const (
	TypeApplicantCreated    = "applicant.created"
	TypeApplicantDeleted    = "applicant.deleted"
	TypeRequestCreated      = "admission.request_created"
	TypeRequestDeleted      = "admission.request_deleted"
	TypeDocumentsRegistered = "admission.documents_registered"
	TypeScholarshipAssigned = "admission.scholarship_assigned"
)

type Event struct {
	Type        string         `json:"type"`
	OccurredAt  time.Time      `json:"occurredAt"`
	ApplicantID int64          `json:"applicantId,omitempty"`
	RequestID   int64          `json:"requestId,omitempty"`
	Data        map[string]any `json:"data,omitempty"`
}

func New(eventType string, applicantID, requestID int64, data map[string]any) Event {
	return Event{
		Type:        eventType,
		OccurredAt:  time.Now().UTC(),
		ApplicantID: applicantID,
		RequestID:   requestID,
		Data:        data,
	}
}

type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

// Emit publishes event and only logs a failure. Intake requests never fail
// because the broker is unavailable.
func Emit(ctx context.Context, pub Publisher, logger *slog.Logger, event Event) {
	if pub == nil {
		return
	}
	if err := pub.Publish(ctx, event); err != nil {
		logger.WarnContext(ctx, "failed to publish event", "type", event.Type, "error", err)
	}
}

type noopPublisher struct{}

func NewNoop() Publisher { return noopPublisher{} }

func (noopPublisher) Publish(context.Context, Event) error { return nil }
func (noopPublisher) Close() error                         { return nil }

// Open builds the publisher selected by cfg.Driver.
func Open(cfg config.EventsConfig, logger *slog.Logger, m *metrics.Metrics) (Publisher, error) {
	switch cfg.Driver {
	case "nats":
		return NewNATSPublisher(cfg.NATS.URL, cfg.NATS.Subject, logger, m)
	case "kafka":
		return NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic, logger, m)
	case "", "none":
		return NewNoop(), nil
	}
	return nil, fmt.Errorf("unknown events driver %q", cfg.Driver)
}
