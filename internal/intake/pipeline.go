// Package intake runs the five step admission submission against the API:
// applicant, admission request, document upload, document records and an
// optional scholarship link.
package intake

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"admissions-service/common/apperror"
	"admissions-service/internal/admission"
	"admissions-service/internal/applicant"
	"admissions-service/internal/catalog"
	"admissions-service/internal/document"
	"admissions-service/internal/metrics"
	"admissions-service/internal/scholarship"
)

const SuccessMessage = "success"

const (
	StepCreateApplicant = iota + 1
	StepCreateRequest
	StepUploadDocuments
	StepRegisterDocuments
	StepRegisterScholarship
)

var stepNames = map[int]string{
	StepCreateApplicant:     "create applicant",
	StepCreateRequest:       "create admission request",
	StepUploadDocuments:     "upload documents",
	StepRegisterDocuments:   "register documents",
	StepRegisterScholarship: "register scholarship",
}

// Steps is the remote side of each pipeline step plus the deletes used
// for compensation.
type Steps interface {
	CreateApplicant(ctx context.Context, req applicant.CreateRequest) (int64, error)
	CreateAdmissionRequest(ctx context.Context, in admission.CreateInput) (int64, error)
	UploadDocuments(ctx context.Context, applicantID int64, files []File) (*document.UploadResult, error)
	RegisterDocuments(ctx context.Context, in document.RegisterInput) (int64, error)
	RegisterScholarship(ctx context.Context, in scholarship.AssignInput) (int64, error)
	DeleteAdmissionRequest(ctx context.Context, id int64) error
	DeleteApplicant(ctx context.Context, id int64) error
}

// File is a document chosen for upload.
type File struct {
	RequiredDocumentID int64
	Name               string
	Open               func() (io.ReadCloser, error)
}

func FileFromPath(requiredDocumentID int64, path string) File {
	return File{
		RequiredDocumentID: requiredDocumentID,
		Name:               filepath.Base(path),
		Open: func() (io.ReadCloser, error) {
			return os.Open(path)
		},
	}
}

// Session carries everything one submission needs and the identifiers
// produced along the way.
type Session struct {
	Applicant         applicant.CreateRequest
	CareerID          int64
	ModalityID        int64
	RequiredDocuments []catalog.RequiredDocument
	Files             []File
	ScholarshipID     int64

	ApplicantID  int64
	RequestID    int64
	Placed       []document.PlacedDocument
	Registered   int64
	AssignmentID int64
}

type Result struct {
	ApplicantID         int64
	RequestID           int64
	Documents           []document.PlacedDocument
	DocumentsRegistered int64
	AssignmentID        int64
	Message             string
}

// StepError reports the step that aborted a submission and the outcome of
// any compensating deletes.
type StepError struct {
	Step         int
	Name         string
	Err          error
	Compensated  bool
	Compensation []error
}

func (e *StepError) Error() string {
	msg := fmt.Sprintf("step %d (%s): %v", e.Step, e.Name, e.Err)
	if len(e.Compensation) > 0 {
		parts := make([]string, len(e.Compensation))
		for i, err := range e.Compensation {
			parts[i] = err.Error()
		}
		msg += "; compensation failed: " + strings.Join(parts, "; ")
	}
	return msg
}

func (e *StepError) Unwrap() error {
	return e.Err
}

type Pipeline struct {
	steps      Steps
	compensate bool
	logger     *slog.Logger
	metrics    *metrics.Metrics
	now        func() time.Time
}

type Option func(*Pipeline)

// WithCompensation deletes the admission request and the applicant when a
// step after the second one fails.
func WithCompensation(enabled bool) Option {
	return func(p *Pipeline) { p.compensate = enabled }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(p *Pipeline) { p.metrics = m }
}

func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) { p.now = now }
}

func NewPipeline(steps Steps, logger *slog.Logger, opts ...Option) *Pipeline {
	p := &Pipeline{
		steps:  steps,
		logger: logger,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Submit runs the steps strictly in order. Each step needs the identifier
// of the previous one and nothing is retried. Identifiers from an earlier
// submission are discarded, so a resubmit creates new rows.
func (p *Pipeline) Submit(ctx context.Context, s *Session) (*Result, error) {
	s.ApplicantID, s.RequestID, s.Placed, s.Registered, s.AssignmentID = 0, 0, nil, 0, 0

	id, err := p.steps.CreateApplicant(ctx, s.Applicant)
	if err != nil {
		return nil, p.fail(ctx, s, StepCreateApplicant, err)
	}
	s.ApplicantID = id
	p.logger.InfoContext(ctx, "applicant created", "applicant_id", id)

	id, err = p.steps.CreateAdmissionRequest(ctx, admission.CreateInput{
		Date:        p.now().Format(time.DateOnly),
		Status:      admission.StatusPending,
		ApplicantID: s.ApplicantID,
		CareerID:    s.CareerID,
		ModalityID:  s.ModalityID,
	})
	if err != nil {
		return nil, p.fail(ctx, s, StepCreateRequest, err)
	}
	s.RequestID = id
	p.logger.InfoContext(ctx, "admission request created", "request_id", id)

	if err := CheckFiles(s.RequiredDocuments, s.Files); err != nil {
		return nil, p.fail(ctx, s, StepUploadDocuments, err)
	}
	uploaded, err := p.steps.UploadDocuments(ctx, s.ApplicantID, s.Files)
	if err != nil {
		return nil, p.fail(ctx, s, StepUploadDocuments, err)
	}
	s.Placed = uploaded.Documents

	entries := make([]document.RegisterEntry, len(s.Placed))
	for i, d := range s.Placed {
		docID, err := strconv.ParseInt(d.RequiredDocumentID, 10, 64)
		if err != nil || docID <= 0 {
			return nil, p.fail(ctx, s, StepRegisterDocuments,
				apperror.Validation("", "uploaded file is not paired with a required document", d.OriginalName))
		}
		entries[i] = document.RegisterEntry{RequiredDocumentID: docID, Path: d.FinalPath}
	}
	n, err := p.steps.RegisterDocuments(ctx, document.RegisterInput{
		Documents:   entries,
		RequestID:   s.RequestID,
		ApplicantID: s.ApplicantID,
	})
	if err != nil {
		return nil, p.fail(ctx, s, StepRegisterDocuments, err)
	}
	s.Registered = n

	if s.ScholarshipID > 0 {
		id, err = p.steps.RegisterScholarship(ctx, scholarship.AssignInput{
			RequestID:     s.RequestID,
			ScholarshipID: s.ScholarshipID,
		})
		if err != nil {
			return nil, p.fail(ctx, s, StepRegisterScholarship, err)
		}
		s.AssignmentID = id
	}

	p.logger.InfoContext(ctx, "admission submitted", "applicant_id", s.ApplicantID, "request_id", s.RequestID, "documents", n)
	return &Result{
		ApplicantID:         s.ApplicantID,
		RequestID:           s.RequestID,
		Documents:           s.Placed,
		DocumentsRegistered: s.Registered,
		AssignmentID:        s.AssignmentID,
		Message:             SuccessMessage,
	}, nil
}

// CheckFiles requires a file for every mandatory document and at least one
// file overall.
func CheckFiles(required []catalog.RequiredDocument, files []File) error {
	provided := make(map[int64]bool, len(files))
	for _, f := range files {
		provided[f.RequiredDocumentID] = true
	}

	var missing []string
	for _, d := range required {
		if d.Mandatory && !provided[d.ID] {
			missing = append(missing, d.Name)
		}
	}
	if len(missing) > 0 {
		return apperror.Validation(apperror.CodeMissingMandatory, "missing mandatory documents", missing...)
	}
	if len(files) == 0 {
		return apperror.Validation(apperror.CodeNoDocuments, "no documents uploaded")
	}
	return nil
}

func (p *Pipeline) fail(ctx context.Context, s *Session, step int, err error) error {
	stepErr := &StepError{Step: step, Name: stepNames[step], Err: err}
	p.logger.WarnContext(ctx, "admission submission failed", "step", step, "applicant_id", s.ApplicantID, "request_id", s.RequestID, "error", err)

	if !p.compensate || step < StepUploadDocuments {
		return stepErr
	}

	stepErr.Compensated = true
	if s.RequestID > 0 {
		cerr := p.steps.DeleteAdmissionRequest(ctx, s.RequestID)
		p.metrics.RecordCompensation(ctx, "delete_admission_request", cerr)
		if cerr != nil {
			stepErr.Compensation = append(stepErr.Compensation, fmt.Errorf("delete admission request %d: %w", s.RequestID, cerr))
		}
	}
	if s.ApplicantID > 0 {
		cerr := p.steps.DeleteApplicant(ctx, s.ApplicantID)
		p.metrics.RecordCompensation(ctx, "delete_applicant", cerr)
		if cerr != nil {
			stepErr.Compensation = append(stepErr.Compensation, fmt.Errorf("delete applicant %d: %w", s.ApplicantID, cerr))
		}
	}
	p.logger.InfoContext(ctx, "compensation finished", "applicant_id", s.ApplicantID, "request_id", s.RequestID, "failures", len(stepErr.Compensation))
	return stepErr
}
