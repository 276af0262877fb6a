package catalog_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"admissions-service/common/apperror"
	"admissions-service/common/logger"
	"admissions-service/internal/catalog"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRepo struct {
	docs         []catalog.RequiredDocument
	scholarships []catalog.Scholarship
	calls        map[string]int
	err          error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		docs: []catalog.RequiredDocument{
			{ID: 1, Name: "Birth certificate", Mandatory: true},
			{ID: 2, Name: "CURP", Mandatory: true},
			{ID: 3, Name: "Photograph", Mandatory: false},
		},
		scholarships: []catalog.Scholarship{
			{ID: 1, Name: "Academic excellence", MonthlyAmount: 1500, AnnualAmount: 18000},
			{ID: 2, Name: "Sports", MonthlyAmount: 800, AnnualAmount: 9600, IncludesReenrollment: true},
		},
		calls: map[string]int{},
	}
}

func (f *fakeRepo) Careers(ctx context.Context) ([]catalog.Career, error) {
	f.calls["careers"]++
	return []catalog.Career{{ID: 3, Name: "Software Engineering"}}, f.err
}

func (f *fakeRepo) Modalities(ctx context.Context) ([]catalog.Modality, error) {
	f.calls["modalities"]++
	return []catalog.Modality{{ID: 1, Name: "On campus"}}, f.err
}

func (f *fakeRepo) RequiredDocuments(ctx context.Context) ([]catalog.RequiredDocument, error) {
	f.calls["required_documents"]++
	return f.docs, f.err
}

func (f *fakeRepo) Scholarships(ctx context.Context) ([]catalog.Scholarship, error) {
	f.calls["scholarships"]++
	return f.scholarships, f.err
}

func (f *fakeRepo) ScholarshipByID(ctx context.Context, id int64) (*catalog.Scholarship, error) {
	f.calls["scholarship"]++
	for _, s := range f.scholarships {
		if s.ID == id {
			s := s
			return &s, nil
		}
	}
	return nil, catalog.ErrScholarshipNotFound
}

func TestService_ReadThroughMemoryCache(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	svc := catalog.NewService(repo, catalog.NewMemoryCache(time.Minute), logger.Discard())

	first, err := svc.RequiredDocuments(ctx, false)
	require.NoError(t, err)
	second, err := svc.RequiredDocuments(ctx, false)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Len(t, second, 3)
	assert.Equal(t, 1, repo.calls["required_documents"])
}

func TestService_MandatoryFilter(t *testing.T) {
	svc := catalog.NewService(newFakeRepo(), nil, logger.Discard())

	docs, err := svc.RequiredDocuments(context.Background(), true)
	require.NoError(t, err)

	require.Len(t, docs, 2)
	assert.Equal(t, []int64{1, 2}, catalog.MandatoryIDs(docs))
}

func TestService_ErrorsAreNotCached(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	repo.err = apperror.Query("failed to load careers", errors.New("connection refused"))
	svc := catalog.NewService(repo, catalog.NewMemoryCache(time.Minute), logger.Discard())

	_, err := svc.Careers(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperror.ErrQuery)

	repo.err = nil
	careers, err := svc.Careers(ctx)
	require.NoError(t, err)
	assert.Len(t, careers, 1)
	assert.Equal(t, 2, repo.calls["careers"])
}

func TestService_RedisCache(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	ctx := context.Background()
	repo := newFakeRepo()
	svc := catalog.NewService(repo, catalog.NewRedisCache(client, time.Minute), logger.Discard())

	s, err := svc.Scholarship(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, "Sports", s.Name)

	s, err = svc.Scholarship(ctx, 2)
	require.NoError(t, err)
	assert.True(t, s.IncludesReenrollment)
	assert.Equal(t, 1, repo.calls["scholarship"])
	assert.True(t, mr.Exists("admissions:catalog:scholarship:2"))

	mr.FastForward(2 * time.Minute)
	assert.False(t, mr.Exists("admissions:catalog:scholarship:2"))
}

func TestService_RedisUnavailableFallsBackToRepository(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = client.Close() })
	mr.Close()

	repo := newFakeRepo()
	svc := catalog.NewService(repo, catalog.NewRedisCache(client, time.Minute), logger.Discard())

	modalities, err := svc.Modalities(context.Background())
	require.NoError(t, err)
	assert.Len(t, modalities, 1)
}

func TestService_UnknownScholarship(t *testing.T) {
	svc := catalog.NewService(newFakeRepo(), nil, logger.Discard())

	_, err := svc.Scholarship(context.Background(), 99)
	assert.ErrorIs(t, err, catalog.ErrScholarshipNotFound)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}
