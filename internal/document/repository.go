package document

import (
	"context"
	"time"

	"admissions-service/common/apperror"
	"admissions-service/common/metrics"

	"github.com/uptrace/bun"
)

type Repository interface {
	CreateBatch(ctx context.Context, docs []SubmittedDocument) (int64, error)
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

// CreateBatch inserts every row or none.
func (r *repository) CreateBatch(ctx context.Context, docs []SubmittedDocument) (int64, error) {
	start := time.Now()
	err := r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		_, err := tx.NewInsert().Model(&docs).Returning("id").Exec(ctx)
		return err
	})

	r.metrics.Database.RecordQuery(ctx, "insert", "submitted_documents", time.Since(start), err)

	if err != nil {
		return 0, apperror.Query("failed to register documents", err)
	}
	r.metrics.Database.RecordRowsWritten(ctx, "submitted_documents", int64(len(docs)))
	return int64(len(docs)), nil
}
