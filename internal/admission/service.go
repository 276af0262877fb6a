package admission

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"admissions-service/common/apperror"
	"admissions-service/internal/events"
	"admissions-service/internal/metrics"
	"admissions-service/internal/validation"

	"github.com/go-playground/validator/v10"
)

var ErrRequestNotFound = apperror.NotFound("admission request not found")

// ApplicantChecker confirms an applicant row exists.
type ApplicantChecker interface {
	Exists(ctx context.Context, id int64) (bool, error)
}

type Service interface {
	Create(ctx context.Context, in CreateInput) (*Request, error)
	Exists(ctx context.Context, id int64) (bool, error)
	Delete(ctx context.Context, id int64) error
}

type service struct {
	repo       Repository
	applicants ApplicantChecker
	publisher  events.Publisher
	validate   *validator.Validate
	logger     *slog.Logger
	metrics    *metrics.Metrics
}

func NewService(repo Repository, applicants ApplicantChecker, publisher events.Publisher, logger *slog.Logger, m *metrics.Metrics) Service {
	return &service{
		repo:       repo,
		applicants: applicants,
		publisher:  publisher,
		validate:   validation.New(),
		logger:     logger,
		metrics:    m,
	}
}

func (s *service) Create(ctx context.Context, in CreateInput) (*Request, error) {
	in.Status = strings.TrimSpace(in.Status)
	in.Date = strings.TrimSpace(in.Date)
	if err := validation.Struct(s.validate, in, "invalid admission request"); err != nil {
		return nil, err
	}
	if in.Status != StatusPending {
		return nil, apperror.Validation("", "invalid admission request", "status must be "+StatusPending+" for a new request")
	}

	submittedOn, err := time.Parse(time.DateOnly, in.Date)
	if err != nil {
		return nil, apperror.Validation("", "invalid admission request", err.Error())
	}

	exists, err := s.applicants.Exists(ctx, in.ApplicantID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, apperror.Validation("", "invalid admission request", "applicant does not exist")
	}

	req := &Request{
		ApplicantID: in.ApplicantID,
		CareerID:    in.CareerID,
		ModalityID:  in.ModalityID,
		SubmittedOn: submittedOn,
		Status:      StatusPending,
	}
	if err := s.repo.Create(ctx, req); err != nil {
		return nil, err
	}

	s.metrics.RecordRequestCreated(ctx, req.CareerID, req.ModalityID)
	events.Emit(ctx, s.publisher, s.logger, events.New(events.TypeRequestCreated, req.ApplicantID, req.ID, map[string]any{
		"careerId":   req.CareerID,
		"modalityId": req.ModalityID,
	}))
	return req, nil
}

func (s *service) Exists(ctx context.Context, id int64) (bool, error) {
	if id <= 0 {
		return false, nil
	}
	return s.repo.Exists(ctx, id)
}

func (s *service) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return apperror.Validation("", "invalid admission request id")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	events.Emit(ctx, s.publisher, s.logger, events.New(events.TypeRequestDeleted, 0, id, nil))
	return nil
}
