package applicant

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"admissions-service/common/apperror"
	"admissions-service/internal/events"
	"admissions-service/internal/metrics"
	"admissions-service/internal/validation"

	"github.com/go-playground/validator/v10"
)

var ErrApplicantNotFound = apperror.NotFound("applicant not found")

// FileDiscarder removes everything stored for an applicant.
type FileDiscarder interface {
	Discard(applicantID string) error
}

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Applicant, error)
	Exists(ctx context.Context, id int64) (bool, error)
	Delete(ctx context.Context, id int64) error
}

type service struct {
	repo      Repository
	files     FileDiscarder
	publisher events.Publisher
	validate  *validator.Validate
	logger    *slog.Logger
	metrics   *metrics.Metrics
}

func NewService(repo Repository, files FileDiscarder, publisher events.Publisher, logger *slog.Logger, m *metrics.Metrics) Service {
	return &service{
		repo:      repo,
		files:     files,
		publisher: publisher,
		validate:  validation.New(),
		logger:    logger,
		metrics:   m,
	}
}

func (s *service) Create(ctx context.Context, req CreateRequest) (*Applicant, error) {
	req = req.trimmed()
	if err := validation.Struct(s.validate, req, "invalid applicant data"); err != nil {
		return nil, err
	}

	birthDate, err := time.Parse(time.DateOnly, req.BirthDate)
	if err != nil {
		return nil, apperror.Validation("", "invalid birth date", err.Error())
	}

	a := &Applicant{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Gender:    req.Gender,
		BirthDate: birthDate,
		Email:     req.Email,
		Phone:     req.Phone,
	}
	if err := s.repo.Create(ctx, a); err != nil {
		return nil, err
	}

	s.metrics.RecordApplicantCreated(ctx)
	events.Emit(ctx, s.publisher, s.logger, events.New(events.TypeApplicantCreated, a.ID, 0, nil))
	return a, nil
}

func (s *service) Exists(ctx context.Context, id int64) (bool, error) {
	if id <= 0 {
		return false, nil
	}
	return s.repo.Exists(ctx, id)
}

// Delete removes the applicant row and, through cascading foreign keys,
// its admission requests and document rows. Placed files are discarded
// afterwards; a failure there is logged only.
func (s *service) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return apperror.Validation("", "invalid applicant id")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	if s.files != nil {
		if err := s.files.Discard(fmt.Sprint(id)); err != nil {
			s.logger.WarnContext(ctx, "failed to discard applicant files", "applicant_id", id, "error", err)
		}
	}

	events.Emit(ctx, s.publisher, s.logger, events.New(events.TypeApplicantDeleted, id, 0, nil))
	return nil
}

func (r CreateRequest) trimmed() CreateRequest {
	return CreateRequest{
		FirstName: strings.TrimSpace(r.FirstName),
		LastName:  strings.TrimSpace(r.LastName),
		Gender:    strings.TrimSpace(r.Gender),
		BirthDate: strings.TrimSpace(r.BirthDate),
		Email:     strings.TrimSpace(r.Email),
		Phone:     strings.TrimSpace(r.Phone),
	}
}
