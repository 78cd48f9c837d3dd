package rates

import (
	"context"
	"log"
	"sort"
	"sync"
	"time"

	"tripledger/internal/domain"
)

// MaxStoredSnapshots bounds the durable tier so querying many distinct base
// currencies over the app's lifetime cannot grow the store without limit.
const MaxStoredSnapshots = 20

// SnapshotStore is the durable tier of the cache: a key->JSON blob store
// holding one RateSnapshot per base currency.
type SnapshotStore interface {
	// Get returns the stored snapshot for baseCurrency, or nil on a miss.
	Get(ctx context.Context, baseCurrency string) (*domain.RateSnapshot, error)

	// Set stores a snapshot, overwriting any entry for the same base currency.
	Set(ctx context.Context, snapshot domain.RateSnapshot) error

	// Delete removes the entry for baseCurrency.
	Delete(ctx context.Context, baseCurrency string) error

	// List returns all stored snapshots.
	List(ctx context.Context) ([]domain.RateSnapshot, error)

	// Clear removes all stored snapshots.
	Clear(ctx context.Context) error
}

// Cache is a two-tier exchange-rate cache: a fast in-process map backed by a
// durable SnapshotStore. Entries expire after domain.RateSnapshotTTL. When the
// external lookup fails, Get serves the static fallback table instead of
// returning an error.
type Cache struct {
	client Client
	store  SnapshotStore

	mu     sync.RWMutex
	memory map[string]domain.RateSnapshot

	// now is stubbed in tests.
	now func() time.Time
}

// NewCache creates a Cache over the given external client and durable store.
func NewCache(client Client, store SnapshotStore) *Cache {
	return &Cache{
		client: client,
		store:  store,
		memory: make(map[string]domain.RateSnapshot),
		now:    time.Now,
	}
}

// Get returns a usable rate snapshot for baseCurrency. It never fails:
// lookup errors degrade to the static fallback table, and durable-store
// errors are treated as cache misses.
func (c *Cache) Get(ctx context.Context, baseCurrency string) domain.RateSnapshot {
	now := c.now()

	c.mu.RLock()
	snapshot, ok := c.memory[baseCurrency]
	c.mu.RUnlock()
	if ok && !snapshot.Expired(now) {
		return snapshot
	}

	stored, err := c.store.Get(ctx, baseCurrency)
	if err != nil {
		log.Printf("rate store read failed for %s: %v", baseCurrency, err)
	}
	if stored != nil && !stored.Expired(now) {
		c.mu.Lock()
		c.memory[baseCurrency] = *stored
		c.mu.Unlock()
		return *stored
	}

	fetched, err := c.client.FetchRates(ctx, baseCurrency)
	if err != nil {
		log.Printf("falling back to hardcoded rates for %s: %v", baseCurrency, err)
		return domain.RateSnapshot{
			BaseCurrency:     baseCurrency,
			Rates:            Fallback(baseCurrency),
			FetchedAtEpochMs: now.UnixMilli(),
		}
	}

	fetched.BaseCurrency = baseCurrency
	fetched.FetchedAtEpochMs = now.UnixMilli()

	c.evictIfNeeded(ctx, baseCurrency)
	if err := c.store.Set(ctx, fetched); err != nil {
		log.Printf("rate store write failed for %s: %v", baseCurrency, err)
	}

	c.mu.Lock()
	c.memory[baseCurrency] = fetched
	c.mu.Unlock()

	return fetched
}

// evictIfNeeded removes the oldest durable entries until writing a snapshot
// for baseCurrency would keep the store at or under MaxStoredSnapshots.
// Re-running under capacity is a no-op, so concurrent refreshes are harmless.
func (c *Cache) evictIfNeeded(ctx context.Context, baseCurrency string) {
	stored, err := c.store.List(ctx)
	if err != nil {
		log.Printf("rate store list failed: %v", err)
		return
	}

	// Overwriting an existing base currency does not grow the store.
	entries := stored[:0]
	for _, s := range stored {
		if s.BaseCurrency != baseCurrency {
			entries = append(entries, s)
		}
	}
	if len(entries) < MaxStoredSnapshots {
		return
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].FetchedAtEpochMs < entries[j].FetchedAtEpochMs
	})

	for i := 0; i <= len(entries)-MaxStoredSnapshots; i++ {
		if err := c.store.Delete(ctx, entries[i].BaseCurrency); err != nil {
			log.Printf("rate store eviction failed for %s: %v", entries[i].BaseCurrency, err)
		}
	}
}

// Clear empties both tiers.
func (c *Cache) Clear(ctx context.Context) error {
	c.mu.Lock()
	c.memory = make(map[string]domain.RateSnapshot)
	c.mu.Unlock()

	return c.store.Clear(ctx)
}
