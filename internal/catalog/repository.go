package catalog

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"admissions-service/common/apperror"
	"admissions-service/common/metrics"

	"github.com/uptrace/bun"
)

var ErrScholarshipNotFound = apperror.NotFound("scholarship not found")

type Repository interface {
	Careers(ctx context.Context) ([]Career, error)
	Modalities(ctx context.Context) ([]Modality, error)
	RequiredDocuments(ctx context.Context) ([]RequiredDocument, error)
	Scholarships(ctx context.Context) ([]Scholarship, error)
	ScholarshipByID(ctx context.Context, id int64) (*Scholarship, error)
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

func (r *repository) Careers(ctx context.Context) ([]Career, error) {
	rows := make([]Career, 0)
	err := r.list(ctx, "careers", &rows)
	return rows, err
}

func (r *repository) Modalities(ctx context.Context) ([]Modality, error) {
	rows := make([]Modality, 0)
	err := r.list(ctx, "modalities", &rows)
	return rows, err
}

func (r *repository) RequiredDocuments(ctx context.Context) ([]RequiredDocument, error) {
	rows := make([]RequiredDocument, 0)
	err := r.list(ctx, "required_documents", &rows)
	return rows, err
}

func (r *repository) Scholarships(ctx context.Context) ([]Scholarship, error) {
	rows := make([]Scholarship, 0)
	err := r.list(ctx, "scholarships", &rows)
	return rows, err
}

func (r *repository) ScholarshipByID(ctx context.Context, id int64) (*Scholarship, error) {
	start := time.Now()
	s := new(Scholarship)
	err := r.db.NewSelect().Model(s).Where("id = ?", id).Scan(ctx)

	r.metrics.Database.RecordQuery(ctx, "select", "scholarships", time.Since(start), err)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrScholarshipNotFound
		}
		return nil, apperror.Query("failed to load scholarship", err)
	}
	return s, nil
}

func (r *repository) list(ctx context.Context, table string, dest any) error {
	start := time.Now()
	err := r.db.NewSelect().Model(dest).Order("id ASC").Scan(ctx)

	r.metrics.Database.RecordQuery(ctx, "select", table, time.Since(start), err)

	if err != nil {
		return apperror.Query("failed to load "+table, err)
	}
	return nil
}
