package rates

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tripledger/internal/domain"
)

type fakeClient struct {
	tables map[string]map[string]float64
	err    error
	calls  int32
}

func (c *fakeClient) FetchRates(_ context.Context, baseCurrency string) (domain.RateSnapshot, error) {
	atomic.AddInt32(&c.calls, 1)
	if c.err != nil {
		return domain.RateSnapshot{}, c.err
	}
	return domain.RateSnapshot{
		BaseCurrency: baseCurrency,
		Rates:        c.tables[baseCurrency],
	}, nil
}

type memStore struct {
	mu        sync.RWMutex
	snapshots map[string]domain.RateSnapshot
}

func newMemStore() *memStore {
	return &memStore{snapshots: make(map[string]domain.RateSnapshot)}
}

func (s *memStore) Get(_ context.Context, baseCurrency string) (*domain.RateSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snapshot, ok := s.snapshots[baseCurrency]
	if !ok {
		return nil, nil
	}
	return &snapshot, nil
}

func (s *memStore) Set(_ context.Context, snapshot domain.RateSnapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshots[snapshot.BaseCurrency] = snapshot
	return nil
}

func (s *memStore) Delete(_ context.Context, baseCurrency string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.snapshots, baseCurrency)
	return nil
}

func (s *memStore) List(_ context.Context) ([]domain.RateSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]domain.RateSnapshot, 0, len(s.snapshots))
	for _, snapshot := range s.snapshots {
		result = append(result, snapshot)
	}
	return result, nil
}

func (s *memStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshots = make(map[string]domain.RateSnapshot)
	return nil
}

func (s *memStore) len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.snapshots)
}

func (s *memStore) has(baseCurrency string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.snapshots[baseCurrency]
	return ok
}

func TestCache_SecondGetWithinTTLHitsNoExternalLookup(t *testing.T) {
	ctx := context.Background()
	client := &fakeClient{tables: map[string]map[string]float64{"JPY": {"TWD": 0.21}}}
	cache := NewCache(client, newMemStore())

	first := cache.Get(ctx, "JPY")
	assert.Equal(t, int32(1), client.calls)
	assert.Equal(t, 0.21, first.Rates["TWD"])

	second := cache.Get(ctx, "JPY")
	assert.Equal(t, int32(1), client.calls, "second get within TTL must be served from cache")
	assert.Equal(t, first.FetchedAtEpochMs, second.FetchedAtEpochMs)
}

func TestCache_ExpiredEntryIsRefetched(t *testing.T) {
	ctx := context.Background()
	client := &fakeClient{tables: map[string]map[string]float64{"JPY": {"TWD": 0.21}}}
	cache := NewCache(client, newMemStore())

	now := time.Now()
	cache.now = func() time.Time { return now }
	cache.Get(ctx, "JPY")

	cache.now = func() time.Time { return now.Add(domain.RateSnapshotTTL + time.Minute) }
	cache.Get(ctx, "JPY")

	assert.Equal(t, int32(2), client.calls)
}

func TestCache_PromotesFreshDurableEntry(t *testing.T) {
	ctx := context.Background()
	client := &fakeClient{}
	store := newMemStore()
	require.NoError(t, store.Set(ctx, domain.RateSnapshot{
		BaseCurrency:     "JPY",
		Rates:            map[string]float64{"TWD": 0.21},
		FetchedAtEpochMs: time.Now().UnixMilli(),
	}))

	cache := NewCache(client, store)
	snapshot := cache.Get(ctx, "JPY")

	assert.Equal(t, int32(0), client.calls, "a fresh durable entry must satisfy the lookup")
	assert.Equal(t, 0.21, snapshot.Rates["TWD"])

	// Promotion means the next hit comes out of the in-process tier.
	cache.Get(ctx, "JPY")
	assert.Equal(t, int32(0), client.calls)
}

func TestCache_EvictsOldestWhenFull(t *testing.T) {
	ctx := context.Background()
	client := &fakeClient{tables: map[string]map[string]float64{"NEW": {"USD": 1}}}
	store := newMemStore()

	base := time.Now().Add(-time.Hour)
	for i := 0; i < MaxStoredSnapshots; i++ {
		require.NoError(t, store.Set(ctx, domain.RateSnapshot{
			BaseCurrency:     fmt.Sprintf("C%02d", i),
			Rates:            map[string]float64{"USD": 1},
			FetchedAtEpochMs: base.Add(time.Duration(i) * time.Second).UnixMilli(),
		}))
	}

	cache := NewCache(client, store)
	cache.Get(ctx, "NEW")

	assert.Equal(t, MaxStoredSnapshots, store.len(), "store must stay at its capacity")
	assert.False(t, store.has("C00"), "the oldest entry must be evicted")
	assert.True(t, store.has("NEW"))
	assert.True(t, store.has("C01"))
}

func TestCache_OverwriteDoesNotEvict(t *testing.T) {
	ctx := context.Background()
	client := &fakeClient{tables: map[string]map[string]float64{"C00": {"USD": 2}}}
	store := newMemStore()

	base := time.Now().Add(-25 * time.Hour) // all expired, so C00 is refetched
	for i := 0; i < MaxStoredSnapshots; i++ {
		require.NoError(t, store.Set(ctx, domain.RateSnapshot{
			BaseCurrency:     fmt.Sprintf("C%02d", i),
			Rates:            map[string]float64{"USD": 1},
			FetchedAtEpochMs: base.Add(time.Duration(i) * time.Second).UnixMilli(),
		}))
	}

	cache := NewCache(client, store)
	cache.Get(ctx, "C00")

	assert.Equal(t, MaxStoredSnapshots, store.len())
	assert.True(t, store.has("C01"), "refreshing an existing base must not evict others")
}

func TestCache_FallsBackWhenLookupFails(t *testing.T) {
	ctx := context.Background()
	client := &fakeClient{err: errors.New("connection refused")}
	store := newMemStore()
	cache := NewCache(client, store)

	snapshot := cache.Get(ctx, "TWD")

	assert.Equal(t, "TWD", snapshot.BaseCurrency)
	assert.Equal(t, 4.85, snapshot.Rates["JPY"], "fallback table must be served")
	assert.Equal(t, 0, store.len(), "fallback snapshots are never persisted")

	unknown := cache.Get(ctx, "ZZZ")
	assert.Empty(t, unknown.Rates, "unknown base currencies fall back to an empty table")
}

func TestCache_ClearEmptiesBothTiers(t *testing.T) {
	ctx := context.Background()
	client := &fakeClient{tables: map[string]map[string]float64{"JPY": {"TWD": 0.21}}}
	store := newMemStore()
	cache := NewCache(client, store)

	cache.Get(ctx, "JPY")
	require.Equal(t, 1, store.len())

	require.NoError(t, cache.Clear(ctx))
	assert.Equal(t, 0, store.len())

	cache.Get(ctx, "JPY")
	assert.Equal(t, int32(2), client.calls, "a get after clear must refetch")
}
