package applicant

import (
	"context"
	"time"

	"admissions-service/common/apperror"
	"admissions-service/common/metrics"

	"github.com/uptrace/bun"
)

type Repository interface {
	Create(ctx context.Context, applicant *Applicant) error
	Exists(ctx context.Context, id int64) (bool, error)
	Delete(ctx context.Context, id int64) error
}

type repository struct {
	db      bun.IDB
	metrics *metrics.Metrics
}

func NewRepository(db bun.IDB, m *metrics.Metrics) Repository {
	return &repository{
		db:      db,
		metrics: m,
	}
}

func (r *repository) Create(ctx context.Context, applicant *Applicant) error {
	start := time.Now()
	_, err := r.db.NewInsert().Model(applicant).Returning("id, created_at").Exec(ctx)

	r.metrics.Database.RecordQuery(ctx, "insert", "applicants", time.Since(start), err)

	if err != nil {
		return apperror.Query("failed to create applicant", err)
	}
	r.metrics.Database.RecordRowsWritten(ctx, "applicants", 1)
	return nil
}

func (r *repository) Exists(ctx context.Context, id int64) (bool, error) {
	start := time.Now()
	exists, err := r.db.NewSelect().Model((*Applicant)(nil)).Where("id = ?", id).Exists(ctx)

	r.metrics.Database.RecordQuery(ctx, "select", "applicants", time.Since(start), err)

	if err != nil {
		return false, apperror.Query("failed to look up applicant", err)
	}
	return exists, nil
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	start := time.Now()
	result, err := r.db.NewDelete().Model((*Applicant)(nil)).Where("id = ?", id).Exec(ctx)

	r.metrics.Database.RecordQuery(ctx, "delete", "applicants", time.Since(start), err)

	if err != nil {
		return apperror.Query("failed to delete applicant", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apperror.Query("failed to delete applicant", err)
	}
	if rowsAffected == 0 {
		return ErrApplicantNotFound
	}
	return nil
}
