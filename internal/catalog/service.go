package catalog

import (
	"context"
	"encoding/json"
	"log/slog"
	"strconv"
)

type Service interface {
	Careers(ctx context.Context) ([]Career, error)
	Modalities(ctx context.Context) ([]Modality, error)
	RequiredDocuments(ctx context.Context, mandatoryOnly bool) ([]RequiredDocument, error)
	Scholarships(ctx context.Context) ([]Scholarship, error)
	Scholarship(ctx context.Context, id int64) (*Scholarship, error)
}

type service struct {
	repo   Repository
	cache  Cache
	logger *slog.Logger
}

func NewService(repo Repository, cache Cache, logger *slog.Logger) Service {
	if cache == nil {
		cache = NewNoopCache()
	}
	return &service{
		repo:   repo,
		cache:  cache,
		logger: logger,
	}
}

func (s *service) Careers(ctx context.Context) ([]Career, error) {
	return readThrough(ctx, s, "careers", s.repo.Careers)
}

func (s *service) Modalities(ctx context.Context) ([]Modality, error) {
	return readThrough(ctx, s, "modalities", s.repo.Modalities)
}

func (s *service) RequiredDocuments(ctx context.Context, mandatoryOnly bool) ([]RequiredDocument, error) {
	docs, err := readThrough(ctx, s, "required_documents", s.repo.RequiredDocuments)
	if err != nil || !mandatoryOnly {
		return docs, err
	}

	mandatory := make([]RequiredDocument, 0, len(docs))
	for _, d := range docs {
		if d.Mandatory {
			mandatory = append(mandatory, d)
		}
	}
	return mandatory, nil
}

func (s *service) Scholarships(ctx context.Context) ([]Scholarship, error) {
	return readThrough(ctx, s, "scholarships", s.repo.Scholarships)
}

func (s *service) Scholarship(ctx context.Context, id int64) (*Scholarship, error) {
	return readThrough(ctx, s, "scholarship:"+strconv.FormatInt(id, 10), func(ctx context.Context) (*Scholarship, error) {
		return s.repo.ScholarshipByID(ctx, id)
	})
}

// readThrough serves key from the cache, loading and storing it on a miss.
// Cache failures are logged and never fail the read.
func readThrough[T any](ctx context.Context, s *service, key string, load func(context.Context) (T, error)) (T, error) {
	if b, ok, err := s.cache.Get(ctx, key); err != nil {
		s.logger.WarnContext(ctx, "catalog cache read failed", "key", key, "error", err)
	} else if ok {
		if v, err := decode[T](b); err == nil {
			return v, nil
		}
	}

	v, err := load(ctx)
	if err != nil {
		return v, err
	}

	if b, err := json.Marshal(v); err == nil {
		if err := s.cache.Set(ctx, key, b); err != nil {
			s.logger.WarnContext(ctx, "catalog cache write failed", "key", key, "error", err)
		}
	}
	return v, nil
}
