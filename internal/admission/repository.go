package admission

import (
	"context"
	"time"

	"admissions-service/common/apperror"
	"admissions-service/common/metrics"

	"github.com/uptrace/bun"
)

type Repository interface {
	Create(ctx context.Context, req *Request) error
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

func (r *repository) Create(ctx context.Context, req *Request) error {
	start := time.Now()
	_, err := r.db.NewInsert().Model(req).Returning("id").Exec(ctx)

	r.metrics.Database.RecordQuery(ctx, "insert", "admission_requests", time.Since(start), err)

	if err != nil {
		return apperror.Query("failed to create admission request", err)
	}
	r.metrics.Database.RecordRowsWritten(ctx, "admission_requests", 1)
	return nil
}

func (r *repository) Exists(ctx context.Context, id int64) (bool, error) {
	start := time.Now()
	exists, err := r.db.NewSelect().Model((*Request)(nil)).Where("id = ?", id).Exists(ctx)

	r.metrics.Database.RecordQuery(ctx, "select", "admission_requests", time.Since(start), err)

	if err != nil {
		return false, apperror.Query("failed to look up admission request", err)
	}
	return exists, nil
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	start := time.Now()
	result, err := r.db.NewDelete().Model((*Request)(nil)).Where("id = ?", id).Exec(ctx)

	r.metrics.Database.RecordQuery(ctx, "delete", "admission_requests", time.Since(start), err)

	if err != nil {
		return apperror.Query("failed to delete admission request", err)
	}
	if n, err := result.RowsAffected(); err != nil {
		return apperror.Query("failed to delete admission request", err)
	} else if n == 0 {
		return ErrRequestNotFound
	}
	return nil
}
