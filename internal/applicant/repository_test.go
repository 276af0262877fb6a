package applicant_test

import (
	"context"
	"testing"
	"time"

	"admissions-service/common/apperror"
	"admissions-service/common/metrics"
	"admissions-service/internal/applicant"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
)

func setupMockDB(t *testing.T) (*bun.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqldb, mock, err := sqlmock.New()
	require.NoError(t, err)

	db := bun.NewDB(sqldb, pgdialect.New())
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

func TestRepository_Create(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := applicant.NewRepository(db, metrics.NewMock())

	createdAt := time.Date(2026, 10, 14, 9, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`INSERT INTO "applicants".* RETURNING id, created_at`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(17, createdAt))

	a := &applicant.Applicant{
		FirstName: "Ana",
		LastName:  "Pérez",
		Gender:    "F",
		BirthDate: time.Date(2001, 1, 1, 0, 0, 0, 0, time.UTC),
		Email:     "ana@x.com",
		Phone:     "5512345678",
	}
	require.NoError(t, repo.Create(context.Background(), a))

	assert.Equal(t, int64(17), a.ID)
	assert.True(t, createdAt.Equal(a.CreatedAt))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_CreateFailureIsQueryError(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := applicant.NewRepository(db, metrics.NewMock())

	mock.ExpectQuery(`INSERT INTO "applicants"`).WillReturnError(assert.AnError)

	err := repo.Create(context.Background(), &applicant.Applicant{FirstName: "Ana"})
	assert.ErrorIs(t, err, apperror.ErrQuery)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_Delete(t *testing.T) {
	t.Run("Deleted", func(t *testing.T) {
		db, mock := setupMockDB(t)
		repo := applicant.NewRepository(db, metrics.NewMock())

		mock.ExpectExec(`DELETE FROM "applicants".*WHERE \(id = 3\)`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, repo.Delete(context.Background(), 3))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("NotFound", func(t *testing.T) {
		db, mock := setupMockDB(t)
		repo := applicant.NewRepository(db, metrics.NewMock())

		mock.ExpectExec(`DELETE FROM "applicants"`).WillReturnResult(sqlmock.NewResult(0, 0))

		assert.ErrorIs(t, repo.Delete(context.Background(), 3), applicant.ErrApplicantNotFound)
	})
}
