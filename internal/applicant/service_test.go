package applicant_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"admissions-service/common/apperror"
	"admissions-service/common/logger"
	"admissions-service/internal/applicant"
	"admissions-service/internal/events"
	"admissions-service/internal/metrics"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryRepo struct {
	mu     sync.Mutex
	nextID int64
	rows   map[int64]applicant.Applicant
	err    error
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{rows: map[int64]applicant.Applicant{}}
}

func (r *memoryRepo) Create(ctx context.Context, a *applicant.Applicant) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.nextID++
	a.ID = r.nextID
	r.rows[a.ID] = *a
	return nil
}

func (r *memoryRepo) Exists(ctx context.Context, id int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.rows[id]
	return ok, nil
}

func (r *memoryRepo) Delete(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[id]; !ok {
		return applicant.ErrApplicantNotFound
	}
	delete(r.rows, id)
	return nil
}

type recordingDiscarder struct {
	discarded []string
	err       error
}

func (d *recordingDiscarder) Discard(applicantID string) error {
	d.discarded = append(d.discarded, applicantID)
	return d.err
}

func validRequest() applicant.CreateRequest {
	return applicant.CreateRequest{
		FirstName: "Ana",
		LastName:  "Pérez",
		Gender:    "F",
		BirthDate: "2001-01-01",
		Email:     "ana@x.com",
		Phone:     "5512345678",
	}
}

func newService(repo applicant.Repository, files applicant.FileDiscarder) applicant.Service {
	return applicant.NewService(repo, files, events.NewNoop(), logger.Discard(), metrics.NewMock())
}

func TestService_Create(t *testing.T) {
	t.Run("ValidPayloadGetsPositiveID", func(t *testing.T) {
		repo := newMemoryRepo()
		svc := newService(repo, nil)

		created, err := svc.Create(context.Background(), validRequest())
		require.NoError(t, err)

		assert.Positive(t, created.ID)
		stored := repo.rows[created.ID]
		assert.Equal(t, "Ana", stored.FirstName)
		assert.Equal(t, "2001-01-01", stored.BirthDate.Format("2006-01-02"))
	})

	missing := map[string]func(*applicant.CreateRequest){
		"firstName": func(r *applicant.CreateRequest) { r.FirstName = "" },
		"lastName":  func(r *applicant.CreateRequest) { r.LastName = "  " },
		"gender":    func(r *applicant.CreateRequest) { r.Gender = "" },
		"birthDate": func(r *applicant.CreateRequest) { r.BirthDate = "" },
		"email":     func(r *applicant.CreateRequest) { r.Email = "" },
		"phone":     func(r *applicant.CreateRequest) { r.Phone = "" },
	}
	for field, mutate := range missing {
		t.Run("Missing_"+field, func(t *testing.T) {
			repo := newMemoryRepo()
			svc := newService(repo, nil)

			req := validRequest()
			mutate(&req)
			_, err := svc.Create(context.Background(), req)

			require.Error(t, err)
			assert.ErrorIs(t, err, apperror.ErrValidation)
			appErr, _ := apperror.As(err)
			assert.Contains(t, appErr.Details, field+" is required")
			assert.Empty(t, repo.rows)
		})
	}

	t.Run("MalformedPhone", func(t *testing.T) {
		req := validRequest()
		req.Phone = "55-1234-567"
		_, err := newService(newMemoryRepo(), nil).Create(context.Background(), req)
		assert.ErrorIs(t, err, apperror.ErrValidation)
	})

	t.Run("MalformedBirthDate", func(t *testing.T) {
		req := validRequest()
		req.BirthDate = "01/01/2001"
		_, err := newService(newMemoryRepo(), nil).Create(context.Background(), req)
		assert.ErrorIs(t, err, apperror.ErrValidation)
	})

	t.Run("RepositoryFailure", func(t *testing.T) {
		repo := newMemoryRepo()
		repo.err = apperror.Query("failed to create applicant", errors.New("connection reset"))

		_, err := newService(repo, nil).Create(context.Background(), validRequest())
		assert.ErrorIs(t, err, apperror.ErrQuery)
	})
}

func TestService_Delete(t *testing.T) {
	t.Run("RemovesRowAndFiles", func(t *testing.T) {
		repo := newMemoryRepo()
		files := &recordingDiscarder{}
		svc := newService(repo, files)

		created, err := svc.Create(context.Background(), validRequest())
		require.NoError(t, err)

		require.NoError(t, svc.Delete(context.Background(), created.ID))
		assert.Empty(t, repo.rows)
		assert.Equal(t, []string{"1"}, files.discarded)
	})

	t.Run("FileDiscardFailureIsNotFatal", func(t *testing.T) {
		repo := newMemoryRepo()
		files := &recordingDiscarder{err: errors.New("permission denied")}
		svc := newService(repo, files)

		created, err := svc.Create(context.Background(), validRequest())
		require.NoError(t, err)
		assert.NoError(t, svc.Delete(context.Background(), created.ID))
	})

	t.Run("Unknown", func(t *testing.T) {
		err := newService(newMemoryRepo(), nil).Delete(context.Background(), 404)
		assert.ErrorIs(t, err, apperror.ErrNotFound)
	})

	t.Run("InvalidID", func(t *testing.T) {
		err := newService(newMemoryRepo(), nil).Delete(context.Background(), 0)
		assert.ErrorIs(t, err, apperror.ErrValidation)
	})
}
