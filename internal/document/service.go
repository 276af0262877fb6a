package document

import (
	"context"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"time"

	"admissions-service/common/apperror"
	"admissions-service/internal/catalog"
	"admissions-service/internal/events"
	"admissions-service/internal/metrics"
	"admissions-service/internal/validation"

	"github.com/go-playground/validator/v10"
)

// MandatoryLister lists the catalog documents that every applicant must hand in.
type MandatoryLister interface {
	RequiredDocuments(ctx context.Context, mandatoryOnly bool) ([]catalog.RequiredDocument, error)
}

// RecordChecker confirms a row with the given id exists.
type RecordChecker interface {
	Exists(ctx context.Context, id int64) (bool, error)
}

type Service interface {
	Upload(ctx context.Context, in UploadInput) (*UploadResult, error)
	Register(ctx context.Context, in RegisterInput) (*RegisterResult, error)
}

type Dependencies struct {
	Repository Repository
	Staging    *Staging
	Placement  *Placement
	Catalog    MandatoryLister
	Applicants RecordChecker
	Requests   RecordChecker
	Publisher  events.Publisher
	Logger     *slog.Logger
	Metrics    *metrics.Metrics
}

type service struct {
	Dependencies
	validate *validator.Validate
}

func NewService(deps Dependencies) Service {
	return &service{
		Dependencies: deps,
		validate:     validation.New(),
	}
}

// Upload stages every file, checks the applicant and mandatory document
// coverage, then places the batch. Staged files are swept on any rejection.
func (s *service) Upload(ctx context.Context, in UploadInput) (*UploadResult, error) {
	uploads := make([]Upload, 0, len(in.Documents)+len(in.Tagged))
	uploads = append(uploads, in.Documents...)
	for _, t := range in.Tagged {
		uploads = append(uploads, t.Upload)
	}

	staged, err := s.Staging.Stage(ctx, uploads)
	if err != nil {
		s.Metrics.RecordUploadRejected(ctx, string(codeOf(err)))
		return nil, err
	}
	s.Metrics.RecordDocumentsStaged(ctx, len(staged))

	docs := PairPositional(staged[:len(in.Documents)], in.DocumentIDs)
	for i, t := range in.Tagged {
		docs = append(docs, StagedDocument{
			File:               staged[len(in.Documents)+i],
			RequiredDocumentID: strings.TrimSpace(t.RequiredDocumentID),
		})
	}

	applicantID, err := s.admit(ctx, strings.TrimSpace(in.ApplicantID), docs)
	if err != nil {
		s.Staging.Sweep(ctx, staged)
		s.Metrics.RecordUploadRejected(ctx, string(codeOf(err)))
		return nil, err
	}

	placed, err := s.Placement.Place(ctx, strconv.FormatInt(applicantID, 10), docs)
	if err != nil {
		return nil, err
	}
	s.Metrics.RecordDocumentsPlaced(ctx, len(placed))

	return &UploadResult{
		Success:     true,
		Documents:   placed,
		DocumentIDs: receivedIDs(in),
	}, nil
}

// admit returns the parsed applicant id once the batch may be placed.
func (s *service) admit(ctx context.Context, applicantID string, docs []StagedDocument) (int64, error) {
	if applicantID == "" {
		return 0, apperror.Validation("", "applicant id is required")
	}
	id, err := strconv.ParseInt(applicantID, 10, 64)
	if err != nil || id <= 0 {
		return 0, apperror.Validation("", "invalid applicant id", applicantID)
	}
	if s.Applicants != nil {
		exists, err := s.Applicants.Exists(ctx, id)
		if err != nil {
			return 0, err
		}
		if !exists {
			return 0, apperror.Validation("", "applicant does not exist", applicantID)
		}
	}

	if s.Catalog != nil {
		mandatory, err := s.Catalog.RequiredDocuments(ctx, true)
		if err != nil {
			return 0, err
		}
		if missing := missingMandatory(mandatory, docs); len(missing) > 0 {
			return 0, apperror.Validation(apperror.CodeMissingMandatory, "missing mandatory documents", missing...)
		}
	}

	if len(docs) == 0 {
		return 0, apperror.Validation(apperror.CodeNoDocuments, "no documents uploaded")
	}
	return id, nil
}

func missingMandatory(mandatory []catalog.RequiredDocument, docs []StagedDocument) []string {
	covered := make(map[string]bool, len(docs))
	for _, d := range docs {
		covered[d.RequiredDocumentID] = true
	}

	var missing []string
	for _, m := range mandatory {
		if !covered[strconv.FormatInt(m.ID, 10)] {
			missing = append(missing, m.Name)
		}
	}
	return missing
}

func receivedIDs(in UploadInput) []string {
	ids := make([]string, 0, len(in.DocumentIDs)+len(in.Tagged))
	ids = append(ids, in.DocumentIDs...)
	for _, t := range in.Tagged {
		ids = append(ids, t.RequiredDocumentID)
	}
	return ids
}

// Register records placed files. Every path must be a file already moved
// into the applicant folder, and all rows are written in one transaction.
func (s *service) Register(ctx context.Context, in RegisterInput) (*RegisterResult, error) {
	if len(in.Documents) == 0 {
		return nil, apperror.Validation(apperror.CodeNoDocuments, "no documents to register")
	}
	if err := validation.Struct(s.validate, in, "invalid document registration"); err != nil {
		return nil, err
	}

	if s.Requests != nil {
		exists, err := s.Requests.Exists(ctx, in.RequestID)
		if err != nil {
			return nil, err
		}
		if !exists {
			return nil, apperror.Validation("", "admission request does not exist")
		}
	}

	applicantID := strconv.FormatInt(in.ApplicantID, 10)
	var foreign []string
	for _, d := range in.Documents {
		if !s.Placement.Owns(applicantID, d.Path) {
			foreign = append(foreign, d.Path)
		}
	}
	if len(foreign) > 0 {
		sort.Strings(foreign)
		return nil, apperror.Validation("", "documents are not placed files of this applicant", foreign...)
	}

	today := time.Now().UTC().Truncate(24 * time.Hour)
	rows := make([]SubmittedDocument, len(in.Documents))
	for i, d := range in.Documents {
		rows[i] = SubmittedDocument{
			AdmissionRequestID: in.RequestID,
			ApplicantID:        in.ApplicantID,
			RequiredDocumentID: d.RequiredDocumentID,
			DeliveredOn:        today,
			Path:               d.Path,
			Validated:          false,
		}
	}

	n, err := s.Repository.CreateBatch(ctx, rows)
	if err != nil {
		return nil, err
	}

	s.Metrics.RecordDocumentsRegistered(ctx, int(n))
	events.Emit(ctx, s.Publisher, s.Logger, events.New(events.TypeDocumentsRegistered, in.ApplicantID, in.RequestID, map[string]any{
		"count": n,
	}))
	return &RegisterResult{Success: true, DocumentsRegistered: n}, nil
}

func codeOf(err error) apperror.Code {
	if appErr, ok := apperror.As(err); ok {
		return appErr.Code
	}
	return apperror.CodeUnexpectedFailure
}
