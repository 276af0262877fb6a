package metrics

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics holds the intake business counters.
type Metrics struct {
	applicantsCreated     metric.Int64Counter
	requestsCreated       metric.Int64Counter
	documentsStaged       metric.Int64Counter
	documentsRejected     metric.Int64Counter
	documentsPlaced       metric.Int64Counter
	documentsRegistered   metric.Int64Counter
	scholarshipsAssigned  metric.Int64Counter
	compensationsExecuted metric.Int64Counter
}

func New(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{}

	counters := []struct {
		dst         *metric.Int64Counter
		name        string
		description string
		unit        string
	}{
		{&m.applicantsCreated, "admissions.applicants.created", "Applicants created", "{applicant}"},
		{&m.requestsCreated, "admissions.requests.created", "Admission requests created", "{request}"},
		{&m.documentsStaged, "admissions.documents.staged", "Files accepted into the staging area", "{file}"},
		{&m.documentsRejected, "admissions.documents.rejected", "Upload batches rejected by staging checks", "{batch}"},
		{&m.documentsPlaced, "admissions.documents.placed", "Files moved into applicant folders", "{file}"},
		{&m.documentsRegistered, "admissions.documents.registered", "Submitted document rows inserted", "{document}"},
		{&m.scholarshipsAssigned, "admissions.scholarships.assigned", "Scholarship assignments created", "{assignment}"},
		{&m.compensationsExecuted, "admissions.compensations.executed", "Compensating deletes run after a failed intake", "{action}"},
	}

	for _, c := range counters {
		counter, err := meter.Int64Counter(c.name, metric.WithDescription(c.description), metric.WithUnit(c.unit))
		if err != nil {
			return nil, err
		}
		*c.dst = counter
	}

	return m, nil
}

func add(ctx context.Context, c metric.Int64Counter, n int64, attrs ...attribute.KeyValue) {
	if c == nil || n <= 0 {
		return
	}
	c.Add(ctx, n, metric.WithAttributes(attrs...))
}

func (m *Metrics) RecordApplicantCreated(ctx context.Context) {
	if m != nil {
		add(ctx, m.applicantsCreated, 1)
	}
}

func (m *Metrics) RecordRequestCreated(ctx context.Context, careerID, modalityID int64) {
	if m != nil {
		add(ctx, m.requestsCreated, 1,
			attribute.Int64("career_id", careerID),
			attribute.Int64("modality_id", modalityID),
		)
	}
}

func (m *Metrics) RecordDocumentsStaged(ctx context.Context, n int) {
	if m != nil {
		add(ctx, m.documentsStaged, int64(n))
	}
}

func (m *Metrics) RecordUploadRejected(ctx context.Context, reason string) {
	if m != nil {
		add(ctx, m.documentsRejected, 1, attribute.String("reason", reason))
	}
}

func (m *Metrics) RecordDocumentsPlaced(ctx context.Context, n int) {
	if m != nil {
		add(ctx, m.documentsPlaced, int64(n))
	}
}

func (m *Metrics) RecordDocumentsRegistered(ctx context.Context, n int) {
	if m != nil {
		add(ctx, m.documentsRegistered, int64(n))
	}
}

func (m *Metrics) RecordScholarshipAssigned(ctx context.Context, scholarshipID int64) {
	if m != nil {
		add(ctx, m.scholarshipsAssigned, 1, attribute.Int64("scholarship_id", scholarshipID))
	}
}

func (m *Metrics) RecordCompensation(ctx context.Context, action string, err error) {
	if m != nil {
		add(ctx, m.compensationsExecuted, 1,
			attribute.String("action", action),
			attribute.Bool("success", err == nil),
		)
	}
}

// NewMock creates a no-op Metrics instance for testing
// The returned Metrics will safely ignore all Record* calls
func NewMock() *Metrics {
	return &Metrics{}
}
