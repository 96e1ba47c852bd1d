package core

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/skillpulse/skillpulse/internal/contract"
	"github.com/skillpulse/skillpulse/schema"
)

// currentCacheVersion defines the version of the cache schema
const currentCacheVersion = 1

// CachedProvider wraps a DataProvider with a response cache.
// Entries are keyed on the endpoint plus its canonical parameters and
// expire after the TTL of their endpoint group.
type CachedProvider struct {
	next        contract.DataProvider
	store       contract.CacheStore
	ttl         time.Duration
	learnersTTL time.Duration
	now         func() time.Time

	indexMu sync.Mutex
}

var _ contract.DataProvider = (*CachedProvider)(nil)

// NewCachedProvider wraps next with the store. A nil store disables caching.
func NewCachedProvider(next contract.DataProvider, store contract.CacheStore, cfg *contract.Config) *CachedProvider {
	ttl := cfg.CacheTTL
	if ttl <= 0 {
		ttl = contract.DefaultCacheTTL
	}
	learnersTTL := cfg.LearnersTTL
	if learnersTTL <= 0 {
		learnersTTL = contract.DefaultLearnersTTL
	}
	return &CachedProvider{
		next:        next,
		store:       store,
		ttl:         ttl,
		learnersTTL: learnersTTL,
		now:         time.Now,
	}
}

// FetchMetrics returns cached program metrics or fetches them.
func (c *CachedProvider) FetchMetrics(ctx context.Context) (*schema.MetricsResponse, error) {
	return cachedFetch(c, schema.MetricsEndpoint, nil, c.ttl, func() (*schema.MetricsResponse, error) {
		return c.next.FetchMetrics(ctx)
	})
}

// FetchJourney returns the cached journey or fetches it.
func (c *CachedProvider) FetchJourney(ctx context.Context) (*schema.JourneyResponse, error) {
	return cachedFetch(c, schema.JourneyEndpoint, nil, c.ttl, func() (*schema.JourneyResponse, error) {
		return c.next.FetchJourney(ctx)
	})
}

// FetchImpact returns the cached impact data or fetches it.
func (c *CachedProvider) FetchImpact(ctx context.Context) (*schema.ImpactResponse, error) {
	return cachedFetch(c, schema.ImpactEndpoint, nil, c.ttl, func() (*schema.ImpactResponse, error) {
		return c.next.FetchImpact(ctx)
	})
}

// FetchSegmentCounts returns cached segment counts or fetches them.
func (c *CachedProvider) FetchSegmentCounts(ctx context.Context) (*schema.SegmentCounts, error) {
	return cachedFetch(c, schema.SegmentCountsEndpoint, nil, c.learnersTTL, func() (*schema.SegmentCounts, error) {
		return c.next.FetchSegmentCounts(ctx)
	})
}

// FetchLearners returns a cached learner page or fetches it.
func (c *CachedProvider) FetchLearners(ctx context.Context, query schema.LearnerQuery) (*schema.LearnerPage, error) {
	params := map[string]string{
		"limit":   strconv.Itoa(query.Limit),
		"offset":  strconv.Itoa(query.Offset),
		"segment": string(query.Segment),
		"search":  query.Search,
	}
	return cachedFetch(c, schema.LearnersEndpoint, params, c.learnersTTL, func() (*schema.LearnerPage, error) {
		return c.next.FetchLearners(ctx, query)
	})
}

// Invalidate removes every cached entry for the endpoints, or for all endpoints
// when none are given. It returns the number of entries removed.
func (c *CachedProvider) Invalidate(endpoints ...schema.Endpoint) (int, error) {
	if c.store == nil {
		return 0, nil
	}
	if len(endpoints) == 0 {
		endpoints = schema.AllEndpoints
	}

	c.indexMu.Lock()
	defer c.indexMu.Unlock()

	removed := 0
	for _, endpoint := range endpoints {
		keys := c.readIndex(endpoint)
		for _, key := range keys {
			if err := c.store.Delete(key); err != nil {
				return removed, fmt.Errorf("failed to invalidate %s: %w", endpoint, err)
			}
			removed++
		}
		if err := c.store.Delete(indexKey(endpoint)); err != nil {
			return removed, fmt.Errorf("failed to invalidate %s index: %w", endpoint, err)
		}
	}
	return removed, nil
}

// cachedFetch serves a response from the store when fresh, and otherwise
// calls fetch and stores the result.
func cachedFetch[T any](c *CachedProvider, endpoint schema.Endpoint, params map[string]string, ttl time.Duration, fetch func() (*T, error)) (*T, error) {
	if c.store == nil {
		return fetch()
	}

	key := generateCacheKey(endpoint, params)
	var cached T
	if checkCacheHit(c.store, key, ttl, c.now(), &cached) {
		logrus.WithFields(logrus.Fields{"endpoint": endpoint, "key": key[:12]}).Debug("cache hit")
		return &cached, nil
	}

	result, err := fetch()
	if err != nil {
		return nil, err
	}
	computeAndStore(c, endpoint, key, result)
	return result, nil
}

// checkCacheHit attempts to retrieve and validate a cached result
func checkCacheHit(store contract.CacheStore, key string, ttl time.Duration, now time.Time, out any) bool {
	data, version, ts, err := store.Get(key)
	if err != nil {
		return false // Cache miss
	}

	// Validate version and staleness
	if version != currentCacheVersion {
		return false
	}
	if now.Sub(time.Unix(ts, 0)) > ttl {
		return false
	}
	return json.Unmarshal(data, out) == nil
}

// computeAndStore stores a fresh result and records its key in the endpoint index.
// Store failures are logged and never fail the fetch.
func computeAndStore(c *CachedProvider, endpoint schema.Endpoint, key string, result any) {
	data, err := json.Marshal(result)
	if err != nil {
		return
	}
	if err := c.store.Set(key, data, currentCacheVersion, c.now().Unix()); err != nil {
		logrus.WithError(err).WithField("endpoint", endpoint).Debug("cache write failed")
		return
	}

	c.indexMu.Lock()
	defer c.indexMu.Unlock()
	keys := c.readIndex(endpoint)
	if slices.Contains(keys, key) {
		return
	}
	keys = append(keys, key)
	if data, err := json.Marshal(keys); err == nil {
		_ = c.store.Set(indexKey(endpoint), data, currentCacheVersion, c.now().Unix())
	}
}

// readIndex returns the cache keys recorded for an endpoint.
func (c *CachedProvider) readIndex(endpoint schema.Endpoint) []string {
	data, _, _, err := c.store.Get(indexKey(endpoint))
	if err != nil {
		return nil
	}
	var keys []string
	if err := json.Unmarshal(data, &keys); err != nil {
		return nil
	}
	return keys
}

// generateCacheKey creates a unique key from the endpoint and its parameters.
// Parameters are sorted so that equal requests share a key.
func generateCacheKey(endpoint schema.Endpoint, params map[string]string) string {
	names := make([]string, 0, len(params))
	for k := range params {
		names = append(names, k)
	}
	slices.Sort(names)

	var b strings.Builder
	b.WriteString(string(endpoint))
	b.WriteByte('?')
	for i, k := range names {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(params[k])
	}
	return fmt.Sprintf("%x", sha256.Sum256([]byte(b.String())))
}

// indexKey is the cache key listing every entry stored for an endpoint.
func indexKey(endpoint schema.Endpoint) string {
	return fmt.Sprintf("%x", sha256.Sum256([]byte("index:"+string(endpoint))))
}

// Memo caches the output of a pure function by the canonical JSON of its input.
// It never keys on wall-clock time. Outputs are stored encoded and decoded on
// every hit, so callers never share slices or maps.
type Memo[I, O any] struct {
	mu      sync.Mutex
	fn      func(I) O
	limit   int
	entries map[string][]byte
}

// NewMemo wraps fn. At most limit results are kept; the memo resets when full.
func NewMemo[I, O any](fn func(I) O, limit int) *Memo[I, O] {
	if limit <= 0 {
		limit = 64
	}
	return &Memo[I, O]{fn: fn, limit: limit, entries: make(map[string][]byte)}
}

// Get returns a fresh copy of the memoized output for the input, computing it on first use.
// Inputs or outputs that cannot be encoded are computed without memoization.
func (m *Memo[I, O]) Get(in I) O {
	data, err := json.Marshal(in)
	if err != nil {
		return m.fn(in)
	}
	key := fmt.Sprintf("%x", sha256.Sum256(data))

	m.mu.Lock()
	stored, ok := m.entries[key]
	m.mu.Unlock()
	if ok {
		var out O
		if err := json.Unmarshal(stored, &out); err == nil {
			return out
		}
	}

	out := m.fn(in)
	encoded, err := json.Marshal(out)
	if err != nil {
		return out
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.entries) >= m.limit {
		m.entries = make(map[string][]byte)
	}
	m.entries[key] = encoded
	return out
}

// Len returns the number of memoized results.
func (m *Memo[I, O]) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}
