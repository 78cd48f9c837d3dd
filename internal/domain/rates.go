package domain

import "time"

// RateSnapshotTTL is how long a fetched rate table stays usable.
const RateSnapshotTTL = 24 * time.Hour

// RateSnapshot is a cached exchange-rate table for one base currency.
// Rates maps target currency codes to multipliers applied to amounts
// denominated in BaseCurrency.
type RateSnapshot struct {
	BaseCurrency     string             `json:"base_currency"`
	Rates            map[string]float64 `json:"rates"`
	FetchedAtEpochMs int64              `json:"fetched_at_epoch_ms"`
}

// FetchedAt returns the snapshot's fetch time.
func (s RateSnapshot) FetchedAt() time.Time {
	return time.UnixMilli(s.FetchedAtEpochMs)
}

// Expired reports whether the snapshot is too old to use at time now.
func (s RateSnapshot) Expired(now time.Time) bool {
	return now.Sub(s.FetchedAt()) >= RateSnapshotTTL
}
