package scholarship

import (
	"context"
	"log/slog"
	"time"

	"admissions-service/common/apperror"
	"admissions-service/internal/catalog"
	"admissions-service/internal/events"
	"admissions-service/internal/metrics"
	"admissions-service/internal/validation"

	"github.com/go-playground/validator/v10"
)

type RequestChecker interface {
	Exists(ctx context.Context, id int64) (bool, error)
}

type CatalogReader interface {
	Scholarship(ctx context.Context, id int64) (*catalog.Scholarship, error)
}

type Service interface {
	Assign(ctx context.Context, in AssignInput) (*Assignment, error)
}

type service struct {
	repo      Repository
	requests  RequestChecker
	catalog   CatalogReader
	publisher events.Publisher
	validate  *validator.Validate
	logger    *slog.Logger
	metrics   *metrics.Metrics
}

func NewService(repo Repository, requests RequestChecker, catalog CatalogReader, publisher events.Publisher, logger *slog.Logger, m *metrics.Metrics) Service {
	return &service{
		repo:      repo,
		requests:  requests,
		catalog:   catalog,
		publisher: publisher,
		validate:  validation.New(),
		logger:    logger,
		metrics:   m,
	}
}

// Assign links the scholarship to a request that already exists, dated today.
func (s *service) Assign(ctx context.Context, in AssignInput) (*Assignment, error) {
	if err := validation.Struct(s.validate, in, "invalid scholarship registration"); err != nil {
		return nil, err
	}

	exists, err := s.requests.Exists(ctx, in.RequestID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, apperror.Validation("", "invalid scholarship registration", "admission request does not exist")
	}

	if s.catalog != nil {
		if _, err := s.catalog.Scholarship(ctx, in.ScholarshipID); err != nil {
			if apperror.KindOf(err) == apperror.KindNotFound {
				return nil, apperror.Validation("", "invalid scholarship registration", "scholarship does not exist")
			}
			return nil, err
		}
	}

	a := &Assignment{
		AdmissionRequestID: in.RequestID,
		ScholarshipID:      in.ScholarshipID,
		AssignedOn:         time.Now().UTC().Truncate(24 * time.Hour),
	}
	if err := s.repo.Create(ctx, a); err != nil {
		return nil, err
	}

	s.metrics.RecordScholarshipAssigned(ctx, a.ScholarshipID)
	events.Emit(ctx, s.publisher, s.logger, events.New(events.TypeScholarshipAssigned, 0, a.AdmissionRequestID, map[string]any{
		"scholarshipId": a.ScholarshipID,
	}))
	return a, nil
}
