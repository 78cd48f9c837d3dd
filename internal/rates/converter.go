package rates

import (
	"context"
	"errors"
	"fmt"
)

// ErrRateUnavailable is returned when neither a direct nor an inverse rate
// exists for a currency pair, even after falling back to the static table.
var ErrRateUnavailable = errors.New("exchange rate unavailable")

// LineItem is one monetary amount to convert in a batch.
type LineItem struct {
	Amount   float64
	Currency string
}

// ConvertedItem is a LineItem with its amount expressed in the target currency.
// ConvertedAmount is zero when no rate could be resolved for the pair.
type ConvertedItem struct {
	LineItem
	ConvertedAmount float64
}

// Converter converts monetary amounts between currencies using a rate Cache.
type Converter struct {
	cache *Cache
}

// NewConverter creates a Converter over the given cache.
func NewConverter(cache *Cache) *Converter {
	return &Converter{cache: cache}
}

// Convert converts amount from one currency to another. It tries the direct
// rate first, then the inverse (rate tables are directional from one base),
// and fails with ErrRateUnavailable when neither resolves.
func (c *Converter) Convert(ctx context.Context, amount float64, from, to string) (float64, error) {
	if from == to {
		return amount, nil
	}

	snapshot := c.cache.Get(ctx, from)
	if rate, ok := snapshot.Rates[to]; ok {
		return amount * rate, nil
	}

	inverse := c.cache.Get(ctx, to)
	if rate, ok := inverse.Rates[from]; ok {
		return amount / rate, nil
	}

	return 0, fmt.Errorf("%w: %s to %s", ErrRateUnavailable, from, to)
}

// ConvertBatch converts heterogeneous line items to the target currency,
// fetching each distinct source currency's rate table exactly once. Items
// whose pair has no rate convert to zero rather than failing the batch.
func (c *Converter) ConvertBatch(ctx context.Context, items []LineItem, target string) []ConvertedItem {
	tables := make(map[string]map[string]float64)
	for _, item := range items {
		if _, ok := tables[item.Currency]; ok {
			continue
		}
		if item.Currency == target {
			tables[item.Currency] = map[string]float64{target: 1}
			continue
		}
		tables[item.Currency] = c.cache.Get(ctx, item.Currency).Rates
	}

	converted := make([]ConvertedItem, 0, len(items))
	for _, item := range items {
		rate := tables[item.Currency][target]
		converted = append(converted, ConvertedItem{
			LineItem:        item,
			ConvertedAmount: item.Amount * rate,
		})
	}
	return converted
}
