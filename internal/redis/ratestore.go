package redis

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"

	"tripledger/internal/domain"
)

// Key prefix for stored rate snapshots.
const rateKeyPrefix = "rates:"

// RateStore is the durable tier of the exchange-rate cache, keeping one
// JSON-encoded RateSnapshot per base currency in Redis.
//
// Entries carry no Redis TTL: staleness is judged from the snapshot's own
// fetch time, and the eviction policy needs expired entries to stay listable
// so it can remove the oldest ones first.
type RateStore struct {
	client *redis.Client
}

// NewRateStore creates a new RateStore.
func NewRateStore(client *redis.Client) *RateStore {
	return &RateStore{client: client}
}

// Get retrieves the snapshot for baseCurrency. Returns nil on a miss.
func (s *RateStore) Get(ctx context.Context, baseCurrency string) (*domain.RateSnapshot, error) {
	data, err := s.client.Get(ctx, rateKeyPrefix+baseCurrency).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil // Cache miss
		}
		return nil, err
	}

	var snapshot domain.RateSnapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, err
	}
	return &snapshot, nil
}

// Set stores a snapshot, overwriting any entry for the same base currency.
func (s *RateStore) Set(ctx context.Context, snapshot domain.RateSnapshot) error {
	data, err := json.Marshal(snapshot)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, rateKeyPrefix+snapshot.BaseCurrency, data, 0).Err()
}

// Delete removes the entry for baseCurrency.
func (s *RateStore) Delete(ctx context.Context, baseCurrency string) error {
	return s.client.Del(ctx, rateKeyPrefix+baseCurrency).Err()
}

// List returns all stored snapshots. Entries that fail to decode are skipped.
func (s *RateStore) List(ctx context.Context) ([]domain.RateSnapshot, error) {
	keys, err := s.scanKeys(ctx)
	if err != nil {
		return nil, err
	}

	snapshots := make([]domain.RateSnapshot, 0, len(keys))
	for _, key := range keys {
		data, err := s.client.Get(ctx, key).Bytes()
		if err != nil {
			if err == redis.Nil {
				continue // Deleted between scan and read
			}
			return nil, err
		}

		var snapshot domain.RateSnapshot
		if err := json.Unmarshal(data, &snapshot); err != nil {
			continue
		}
		snapshots = append(snapshots, snapshot)
	}
	return snapshots, nil
}

// Clear removes all stored snapshots.
func (s *RateStore) Clear(ctx context.Context) error {
	keys, err := s.scanKeys(ctx)
	if err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return s.client.Del(ctx, keys...).Err()
}

func (s *RateStore) scanKeys(ctx context.Context) ([]string, error) {
	var keys []string
	iter := s.client.Scan(ctx, 0, rateKeyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	return keys, iter.Err()
}
