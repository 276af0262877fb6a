package scholarship

import (
	"context"
	"time"

	"admissions-service/common/apperror"
	"admissions-service/common/metrics"

	"github.com/uptrace/bun"
)

type Repository interface {
	Create(ctx context.Context, a *Assignment) error
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

func (r *repository) Create(ctx context.Context, a *Assignment) error {
	start := time.Now()
	_, err := r.db.NewInsert().Model(a).Returning("id").Exec(ctx)

	r.metrics.Database.RecordQuery(ctx, "insert", "scholarship_assignments", time.Since(start), err)

	if err != nil {
		return apperror.Query("failed to register scholarship", err)
	}
	r.metrics.Database.RecordRowsWritten(ctx, "scholarship_assignments", 1)
	return nil
}
