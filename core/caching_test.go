package core

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/skillpulse/skillpulse/internal/contract"
	"github.com/skillpulse/skillpulse/internal/iocache"
	"github.com/skillpulse/skillpulse/internal/provider"
	"github.com/skillpulse/skillpulse/schema"
)

var errCacheMiss = errors.New("cache miss")

type memEntry struct {
	data    []byte
	version int
	ts      int64
}

// memStore is an in-memory contract.CacheStore.
type memStore struct {
	mu      sync.Mutex
	entries map[string]memEntry
}

var _ contract.CacheStore = (*memStore)(nil)

func newMemStore() *memStore {
	return &memStore{entries: make(map[string]memEntry)}
}

func (s *memStore) Get(key string) ([]byte, int, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[key]
	if !ok {
		return nil, 0, 0, errCacheMiss
	}
	return e.data, e.version, e.ts, nil
}

func (s *memStore) Set(key string, data []byte, version int, ts int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = memEntry{data: data, version: version, ts: ts}
	return nil
}

func (s *memStore) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
	return nil
}

func (s *memStore) GetStatus() (schema.CacheStatus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return schema.CacheStatus{Backend: "memory", Connected: true, TotalEntries: len(s.entries)}, nil
}

func (s *memStore) Close() error { return nil }

func newTestCachedProvider(next contract.DataProvider, store contract.CacheStore, now *time.Time) *CachedProvider {
	cp := NewCachedProvider(next, store, &contract.Config{CacheTTL: time.Minute, LearnersTTL: 30 * time.Second})
	cp.now = func() time.Time { return *now }
	return cp
}

func TestCachedProvider_HitAndExpiry(t *testing.T) {
	ctx := context.Background()
	next := &provider.MockDataProvider{}
	resp := &schema.MetricsResponse{Metrics: schema.ProgramTotals{TotalLearners: 4586, CertifiedUsers: 1256}}
	next.On("FetchMetrics", mock.Anything).Return(resp, nil).Times(2)

	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	cp := newTestCachedProvider(next, newMemStore(), &now)

	got, err := cp.FetchMetrics(ctx)
	require.NoError(t, err)
	assert.Equal(t, resp, got)

	now = now.Add(30 * time.Second)
	got, err = cp.FetchMetrics(ctx)
	require.NoError(t, err)
	assert.Equal(t, resp.Metrics, got.Metrics)
	next.AssertNumberOfCalls(t, "FetchMetrics", 1)

	now = now.Add(2 * time.Minute)
	_, err = cp.FetchMetrics(ctx)
	require.NoError(t, err)
	next.AssertNumberOfCalls(t, "FetchMetrics", 2)
	next.AssertExpectations(t)
}

func TestCachedProvider_LearnerPagesKeyedOnQuery(t *testing.T) {
	ctx := context.Background()
	next := &provider.MockDataProvider{}
	first := schema.LearnerQuery{Limit: 10, Offset: 0}
	second := schema.LearnerQuery{Limit: 10, Offset: 10}
	next.On("FetchLearners", mock.Anything, first).Return(&schema.LearnerPage{Learners: []schema.LearnerRecord{{Handle: "a"}}, Total: 11}, nil).Once()
	next.On("FetchLearners", mock.Anything, second).Return(&schema.LearnerPage{Learners: []schema.LearnerRecord{{Handle: "b"}}, Total: 11}, nil).Once()

	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	cp := newTestCachedProvider(next, newMemStore(), &now)

	for range 2 {
		page, err := cp.FetchLearners(ctx, first)
		require.NoError(t, err)
		assert.Equal(t, "a", page.Learners[0].Handle)

		page, err = cp.FetchLearners(ctx, second)
		require.NoError(t, err)
		assert.Equal(t, "b", page.Learners[0].Handle)
	}
	next.AssertExpectations(t)
}

func TestCachedProvider_LearnersTTL(t *testing.T) {
	ctx := context.Background()
	next := &provider.MockDataProvider{}
	next.On("FetchSegmentCounts", mock.Anything).Return(&schema.SegmentCounts{All: 10}, nil).Times(2)

	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	cp := newTestCachedProvider(next, newMemStore(), &now)

	_, err := cp.FetchSegmentCounts(ctx)
	require.NoError(t, err)
	now = now.Add(45 * time.Second)
	counts, err := cp.FetchSegmentCounts(ctx)
	require.NoError(t, err)
	assert.Equal(t, 10, counts.All)
	next.AssertExpectations(t)
}

func TestCachedProvider_ErrorsAreNotCached(t *testing.T) {
	ctx := context.Background()
	next := &provider.MockDataProvider{}
	next.On("FetchJourney", mock.Anything).Return(nil, assert.AnError).Once()
	next.On("FetchJourney", mock.Anything).Return(&schema.JourneyResponse{AvgTimeToCompletion: 30}, nil).Once()

	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	cp := newTestCachedProvider(next, newMemStore(), &now)

	_, err := cp.FetchJourney(ctx)
	assert.ErrorIs(t, err, assert.AnError)

	journey, err := cp.FetchJourney(ctx)
	require.NoError(t, err)
	assert.Equal(t, 30.0, journey.AvgTimeToCompletion)
	next.AssertExpectations(t)
}

func TestCachedProvider_VersionMismatchIsMiss(t *testing.T) {
	ctx := context.Background()
	next := &provider.MockDataProvider{}
	next.On("FetchImpact", mock.Anything).Return(&schema.ImpactResponse{}, nil).Once()

	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	store := newMemStore()
	key := generateCacheKey(schema.ImpactEndpoint, nil)
	require.NoError(t, store.Set(key, []byte(`{"productAdoption":[]}`), currentCacheVersion+1, now.Unix()))

	cp := newTestCachedProvider(next, store, &now)
	_, err := cp.FetchImpact(ctx)
	require.NoError(t, err)
	next.AssertExpectations(t)

	_, version, _, err := store.Get(key)
	require.NoError(t, err)
	assert.Equal(t, currentCacheVersion, version)
}

func TestCachedProvider_NilStorePassesThrough(t *testing.T) {
	ctx := context.Background()
	next := &provider.MockDataProvider{}
	next.On("FetchMetrics", mock.Anything).Return(&schema.MetricsResponse{}, nil).Times(2)

	cp := NewCachedProvider(next, nil, &contract.Config{})
	assert.Equal(t, contract.DefaultCacheTTL, cp.ttl)
	assert.Equal(t, contract.DefaultLearnersTTL, cp.learnersTTL)

	for range 2 {
		_, err := cp.FetchMetrics(ctx)
		require.NoError(t, err)
	}
	removed, err := cp.Invalidate()
	require.NoError(t, err)
	assert.Equal(t, 0, removed)
	next.AssertExpectations(t)
}

func TestCachedProvider_StoreWriteFailureIsIgnored(t *testing.T) {
	ctx := context.Background()
	next := &provider.MockDataProvider{}
	next.On("FetchMetrics", mock.Anything).Return(&schema.MetricsResponse{}, nil).Once()

	store := &iocache.MockCacheStore{}
	store.On("Get", mock.Anything).Return(nil, 0, int64(0), errCacheMiss)
	store.On("Set", mock.Anything, mock.Anything, currentCacheVersion, mock.Anything).Return(assert.AnError).Once()

	cp := NewCachedProvider(next, store, &contract.Config{})
	got, err := cp.FetchMetrics(ctx)
	require.NoError(t, err)
	assert.NotNil(t, got)
	next.AssertExpectations(t)
	store.AssertExpectations(t)
}

func TestCachedProvider_Invalidate(t *testing.T) {
	ctx := context.Background()
	next := &provider.MockDataProvider{}
	next.On("FetchMetrics", mock.Anything).Return(&schema.MetricsResponse{}, nil).Times(2)
	next.On("FetchLearners", mock.Anything, mock.Anything).Return(&schema.LearnerPage{}, nil).Times(3)

	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	store := newMemStore()
	cp := newTestCachedProvider(next, store, &now)

	_, err := cp.FetchMetrics(ctx)
	require.NoError(t, err)
	_, err = cp.FetchLearners(ctx, schema.LearnerQuery{Limit: 5})
	require.NoError(t, err)
	_, err = cp.FetchLearners(ctx, schema.LearnerQuery{Limit: 5, Search: "octo"})
	require.NoError(t, err)

	removed, err := cp.Invalidate(schema.LearnersEndpoint)
	require.NoError(t, err)
	assert.Equal(t, 2, removed)

	// Metrics stay cached, learners are refetched.
	_, err = cp.FetchMetrics(ctx)
	require.NoError(t, err)
	_, err = cp.FetchLearners(ctx, schema.LearnerQuery{Limit: 5})
	require.NoError(t, err)
	next.AssertNumberOfCalls(t, "FetchMetrics", 1)

	removed, err = cp.Invalidate()
	require.NoError(t, err)
	assert.Equal(t, 2, removed)
	assert.Empty(t, store.entries)

	_, err = cp.FetchMetrics(ctx)
	require.NoError(t, err)
	next.AssertExpectations(t)
}

func TestCachedProvider_InvalidateDeleteError(t *testing.T) {
	store := &iocache.MockCacheStore{}
	store.On("Get", indexKey(schema.MetricsEndpoint)).Return([]byte(`["k1"]`), currentCacheVersion, int64(0), nil)
	store.On("Delete", "k1").Return(assert.AnError)

	cp := NewCachedProvider(&provider.MockDataProvider{}, store, &contract.Config{})
	removed, err := cp.Invalidate(schema.MetricsEndpoint)
	assert.ErrorIs(t, err, assert.AnError)
	assert.Equal(t, 0, removed)
	store.AssertExpectations(t)
}

func TestGenerateCacheKey(t *testing.T) {
	a := generateCacheKey(schema.LearnersEndpoint, map[string]string{"limit": "10", "offset": "0"})
	b := generateCacheKey(schema.LearnersEndpoint, map[string]string{"offset": "0", "limit": "10"})
	c := generateCacheKey(schema.LearnersEndpoint, map[string]string{"limit": "10", "offset": "10"})
	d := generateCacheKey(schema.MetricsEndpoint, nil)

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.NotEqual(t, a, d)
	assert.Len(t, a, 64)
	assert.NotEqual(t, indexKey(schema.MetricsEndpoint), d)
}

func TestMemo(t *testing.T) {
	calls := 0
	m := NewMemo(func(in schema.ROIInput) schema.ROIResult {
		calls++
		return ComputeROI(in, defaultWeights)
	}, 2)

	in := schema.ROIInput{CertRate: 27.4, PassRate: 80}
	first := m.Get(in)
	second := m.Get(in)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, calls)
	assert.Equal(t, 1, m.Len())

	m.Get(schema.ROIInput{CertRate: 1})
	assert.Equal(t, 2, m.Len())

	// A full memo resets before storing.
	m.Get(schema.ROIInput{CertRate: 2})
	assert.Equal(t, 1, m.Len())
	assert.Equal(t, 3, calls)
}

func TestMemo_ReturnsIndependentCopies(t *testing.T) {
	m := NewMemo(func(in schema.ROIInput) schema.ROIResult {
		return ComputeROI(in, defaultWeights)
	}, 4)

	in := schema.ROIInput{CertRate: 27.4, PassRate: 80}
	first := m.Get(in)
	first.Breakdown[schema.BreakdownCertRate] = -1

	second := m.Get(in)
	assert.InDelta(t, 5.48, second.Breakdown[schema.BreakdownCertRate], 0.001)

	second.Breakdown[schema.BreakdownPassRate] = -1
	third := m.Get(in)
	assert.InDelta(t, 16.0, third.Breakdown[schema.BreakdownPassRate], 0.001)
}

func TestMemo_DefaultLimit(t *testing.T) {
	m := NewMemo(func(n int) int { return n * 2 }, 0)
	assert.Equal(t, 64, m.limit)
	assert.Equal(t, 8, m.Get(4))
}
