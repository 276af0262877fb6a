package intake_test

import (
	"context"
	"io"
	"strconv"
	"strings"
	"testing"
	"time"

	"admissions-service/common/apperror"
	"admissions-service/common/logger"
	"admissions-service/internal/admission"
	"admissions-service/internal/applicant"
	"admissions-service/internal/catalog"
	"admissions-service/internal/document"
	"admissions-service/internal/intake"
	"admissions-service/internal/metrics"
	"admissions-service/internal/scholarship"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSteps struct {
	calls []string

	nextID   int64
	failOn   string
	failWith error
	unpaired string

	requests     []admission.CreateInput
	uploaded     [][]intake.File
	registered   []document.RegisterInput
	scholarships []scholarship.AssignInput
	deleted      []string
}

func (f *fakeSteps) step(name string) error {
	f.calls = append(f.calls, name)
	if f.failOn == name {
		return f.failWith
	}
	return nil
}

func (f *fakeSteps) id() int64 {
	f.nextID++
	return f.nextID
}

func (f *fakeSteps) CreateApplicant(_ context.Context, _ applicant.CreateRequest) (int64, error) {
	if err := f.step("applicant"); err != nil {
		return 0, err
	}
	return f.id(), nil
}

func (f *fakeSteps) CreateAdmissionRequest(_ context.Context, in admission.CreateInput) (int64, error) {
	if err := f.step("request"); err != nil {
		return 0, err
	}
	f.requests = append(f.requests, in)
	return f.id(), nil
}

func (f *fakeSteps) UploadDocuments(_ context.Context, applicantID int64, files []intake.File) (*document.UploadResult, error) {
	if err := f.step("upload"); err != nil {
		return nil, err
	}
	f.uploaded = append(f.uploaded, files)

	res := &document.UploadResult{Success: true}
	for _, file := range files {
		docID := strconv.FormatInt(file.RequiredDocumentID, 10)
		if file.Name == f.unpaired {
			docID = document.UnknownDocumentID
		}
		res.DocumentIDs = append(res.DocumentIDs, docID)
		res.Documents = append(res.Documents, document.PlacedDocument{
			OriginalName:       file.Name,
			FinalPath:          "uploads/applicant-" + strconv.FormatInt(applicantID, 10) + "/" + file.Name,
			Extension:          ".pdf",
			RequiredDocumentID: docID,
		})
	}
	return res, nil
}

func (f *fakeSteps) RegisterDocuments(_ context.Context, in document.RegisterInput) (int64, error) {
	if err := f.step("register"); err != nil {
		return 0, err
	}
	f.registered = append(f.registered, in)
	return int64(len(in.Documents)), nil
}

func (f *fakeSteps) RegisterScholarship(_ context.Context, in scholarship.AssignInput) (int64, error) {
	if err := f.step("scholarship"); err != nil {
		return 0, err
	}
	f.scholarships = append(f.scholarships, in)
	return f.id(), nil
}

func (f *fakeSteps) DeleteAdmissionRequest(_ context.Context, id int64) error {
	f.deleted = append(f.deleted, "request-"+strconv.FormatInt(id, 10))
	return nil
}

func (f *fakeSteps) DeleteApplicant(_ context.Context, id int64) error {
	f.deleted = append(f.deleted, "applicant-"+strconv.FormatInt(id, 10))
	return nil
}

func pdf(id int64, name string) intake.File {
	return intake.File{
		RequiredDocumentID: id,
		Name:               name,
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(strings.NewReader("%PDF-1.4")), nil
		},
	}
}

func requiredDocs() []catalog.RequiredDocument {
	return []catalog.RequiredDocument{
		{ID: 1, Name: "Birth certificate", Mandatory: true},
		{ID: 2, Name: "CURP", Mandatory: true},
		{ID: 3, Name: "Photograph", Mandatory: false},
	}
}

func anaSession() *intake.Session {
	return &intake.Session{
		Applicant: applicant.CreateRequest{
			FirstName: "Ana",
			LastName:  "Pérez",
			Gender:    "F",
			BirthDate: "2005-03-14",
			Email:     "ana.perez@example.com",
			Phone:     "5512345678",
		},
		CareerID:          1,
		ModalityID:        2,
		RequiredDocuments: requiredDocs(),
		Files:             []intake.File{pdf(1, "acta.pdf"), pdf(2, "curp.pdf")},
	}
}

func fixedClock() time.Time {
	return time.Date(2026, 10, 14, 9, 30, 0, 0, time.UTC)
}

func newPipeline(steps intake.Steps, opts ...intake.Option) *intake.Pipeline {
	opts = append([]intake.Option{intake.WithClock(fixedClock), intake.WithMetrics(metrics.NewMock())}, opts...)
	return intake.NewPipeline(steps, logger.Discard(), opts...)
}

func TestPipeline_Submit(t *testing.T) {
	t.Run("HappyPath", func(t *testing.T) {
		steps := &fakeSteps{}
		session := anaSession()

		res, err := newPipeline(steps).Submit(context.Background(), session)
		require.NoError(t, err)

		assert.Equal(t, intake.SuccessMessage, res.Message)
		assert.Equal(t, []string{"applicant", "request", "upload", "register"}, steps.calls)
		assert.Equal(t, int64(1), res.ApplicantID)
		assert.Equal(t, int64(2), res.RequestID)
		assert.Equal(t, int64(2), res.DocumentsRegistered)
		assert.Zero(t, res.AssignmentID)

		require.Len(t, steps.requests, 1)
		assert.Equal(t, admission.CreateInput{
			Date:        "2026-10-14",
			Status:      admission.StatusPending,
			ApplicantID: 1,
			CareerID:    1,
			ModalityID:  2,
		}, steps.requests[0])

		require.Len(t, steps.registered, 1)
		reg := steps.registered[0]
		assert.Equal(t, int64(2), reg.RequestID)
		assert.Equal(t, int64(1), reg.ApplicantID)
		require.Len(t, reg.Documents, 2)
		assert.Equal(t, int64(1), reg.Documents[0].RequiredDocumentID)
		assert.Equal(t, "uploads/applicant-1/acta.pdf", reg.Documents[0].Path)
		assert.Equal(t, int64(2), reg.Documents[1].RequiredDocumentID)
	})

	t.Run("WithScholarship", func(t *testing.T) {
		steps := &fakeSteps{}
		session := anaSession()
		session.ScholarshipID = 2

		res, err := newPipeline(steps).Submit(context.Background(), session)
		require.NoError(t, err)

		assert.Equal(t, []string{"applicant", "request", "upload", "register", "scholarship"}, steps.calls)
		require.Len(t, steps.scholarships, 1)
		assert.Equal(t, scholarship.AssignInput{RequestID: 2, ScholarshipID: 2}, steps.scholarships[0])
		assert.Equal(t, int64(3), res.AssignmentID)
	})

	t.Run("MissingMandatoryBeforeUpload", func(t *testing.T) {
		steps := &fakeSteps{}
		session := anaSession()
		session.Files = []intake.File{pdf(1, "acta.pdf")}

		res, err := newPipeline(steps).Submit(context.Background(), session)
		assert.Nil(t, res)

		var stepErr *intake.StepError
		require.ErrorAs(t, err, &stepErr)
		assert.Equal(t, intake.StepUploadDocuments, stepErr.Step)
		assert.False(t, stepErr.Compensated)
		assert.ErrorIs(t, err, &apperror.Error{Kind: apperror.KindValidation, Code: apperror.CodeMissingMandatory})

		appErr, ok := apperror.As(err)
		require.True(t, ok)
		assert.Equal(t, []string{"CURP"}, appErr.Details)

		// applicant and request stay behind
		assert.Equal(t, []string{"applicant", "request"}, steps.calls)
		assert.Empty(t, steps.deleted)
		assert.Equal(t, int64(1), session.ApplicantID)
		assert.Equal(t, int64(2), session.RequestID)
	})

	t.Run("NoDocuments", func(t *testing.T) {
		steps := &fakeSteps{}
		session := anaSession()
		session.RequiredDocuments = []catalog.RequiredDocument{{ID: 3, Name: "Photograph"}}
		session.Files = nil

		_, err := newPipeline(steps).Submit(context.Background(), session)
		assert.ErrorIs(t, err, &apperror.Error{Kind: apperror.KindValidation, Code: apperror.CodeNoDocuments})
		assert.NotContains(t, steps.calls, "upload")
	})

	t.Run("ApplicantRejected", func(t *testing.T) {
		steps := &fakeSteps{
			failOn:   "applicant",
			failWith: apperror.Validation("", "invalid applicant", "email"),
		}

		_, err := newPipeline(steps, intake.WithCompensation(true)).Submit(context.Background(), anaSession())

		var stepErr *intake.StepError
		require.ErrorAs(t, err, &stepErr)
		assert.Equal(t, intake.StepCreateApplicant, stepErr.Step)
		assert.False(t, stepErr.Compensated)
		assert.Equal(t, []string{"applicant"}, steps.calls)
		assert.Empty(t, steps.deleted)
		assert.Contains(t, err.Error(), "step 1 (create applicant)")
	})

	t.Run("RegisterFailsWithoutCompensation", func(t *testing.T) {
		steps := &fakeSteps{failOn: "register", failWith: apperror.Query("insert failed", assert.AnError)}

		_, err := newPipeline(steps).Submit(context.Background(), anaSession())

		var stepErr *intake.StepError
		require.ErrorAs(t, err, &stepErr)
		assert.Equal(t, intake.StepRegisterDocuments, stepErr.Step)
		assert.ErrorIs(t, err, apperror.ErrQuery)
		assert.Empty(t, steps.deleted)
	})

	t.Run("RegisterFailsWithCompensation", func(t *testing.T) {
		steps := &fakeSteps{failOn: "register", failWith: apperror.Query("insert failed", assert.AnError)}

		_, err := newPipeline(steps, intake.WithCompensation(true)).Submit(context.Background(), anaSession())

		var stepErr *intake.StepError
		require.ErrorAs(t, err, &stepErr)
		assert.True(t, stepErr.Compensated)
		assert.Empty(t, stepErr.Compensation)
		assert.Equal(t, []string{"request-2", "applicant-1"}, steps.deleted)
	})

	t.Run("UnpairedPlacedFile", func(t *testing.T) {
		steps := &fakeSteps{unpaired: "curp.pdf"}

		_, err := newPipeline(steps).Submit(context.Background(), anaSession())

		var stepErr *intake.StepError
		require.ErrorAs(t, err, &stepErr)
		assert.Equal(t, intake.StepRegisterDocuments, stepErr.Step)
		assert.ErrorIs(t, err, apperror.ErrValidation)

		appErr, ok := apperror.As(err)
		require.True(t, ok)
		assert.Equal(t, []string{"curp.pdf"}, appErr.Details)
		assert.NotContains(t, steps.calls, "register")
	})

	t.Run("ResubmitCreatesNewRows", func(t *testing.T) {
		steps := &fakeSteps{}
		session := anaSession()
		pipeline := newPipeline(steps)

		first, err := pipeline.Submit(context.Background(), session)
		require.NoError(t, err)
		second, err := pipeline.Submit(context.Background(), session)
		require.NoError(t, err)

		assert.NotEqual(t, first.ApplicantID, second.ApplicantID)
		assert.NotEqual(t, first.RequestID, second.RequestID)
		assert.Equal(t, second.ApplicantID, session.ApplicantID)
	})
}

func TestCheckFiles(t *testing.T) {
	tests := []struct {
		name  string
		files []intake.File
		code  apperror.Code
	}{
		{"AllMandatory", []intake.File{pdf(1, "a.pdf"), pdf(2, "b.pdf")}, ""},
		{"MandatoryPlusOptional", []intake.File{pdf(1, "a.pdf"), pdf(2, "b.pdf"), pdf(3, "c.pdf")}, ""},
		{"MissingOne", []intake.File{pdf(2, "b.pdf")}, apperror.CodeMissingMandatory},
		{"Nothing", nil, apperror.CodeMissingMandatory},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := intake.CheckFiles(requiredDocs(), tt.files)
			if tt.code == "" {
				assert.NoError(t, err)
				return
			}
			appErr, ok := apperror.As(err)
			require.True(t, ok)
			assert.Equal(t, tt.code, appErr.Code)
		})
	}
}
