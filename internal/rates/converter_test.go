package rates

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestConverter(tables map[string]map[string]float64) (*fakeClient, *Converter) {
	client := &fakeClient{tables: tables}
	return client, NewConverter(NewCache(client, newMemStore()))
}

func TestConvert_SameCurrencyIsIdentity(t *testing.T) {
	client, converter := newTestConverter(nil)

	converted, err := converter.Convert(context.Background(), 123.45, "JPY", "JPY")

	require.NoError(t, err)
	assert.Equal(t, 123.45, converted)
	assert.Equal(t, int32(0), client.calls, "identity conversion must not touch the cache")
}

func TestConvert_DirectRate(t *testing.T) {
	_, converter := newTestConverter(map[string]map[string]float64{
		"JPY": {"TWD": 0.21},
	})

	converted, err := converter.Convert(context.Background(), 300, "JPY", "TWD")

	require.NoError(t, err)
	assert.InDelta(t, 63, converted, 1e-9)
}

func TestConvert_InverseRate(t *testing.T) {
	// Only the TWD table knows the pair; the JPY->TWD direction must be
	// derived by dividing through the inverse.
	_, converter := newTestConverter(map[string]map[string]float64{
		"TWD": {"JPY": 4.85},
	})

	converted, err := converter.Convert(context.Background(), 97, "JPY", "TWD")

	require.NoError(t, err)
	assert.InDelta(t, 20, converted, 1e-9)
}

func TestConvert_RoundTrip(t *testing.T) {
	_, converter := newTestConverter(map[string]map[string]float64{
		"JPY": {"TWD": 0.21},
	})

	ctx := context.Background()
	there, err := converter.Convert(ctx, 1234.56, "JPY", "TWD")
	require.NoError(t, err)
	back, err := converter.Convert(ctx, there, "TWD", "JPY")
	require.NoError(t, err)

	assert.InDelta(t, 1234.56, back, 1e-9)
}

func TestConvert_UnknownPairFails(t *testing.T) {
	client := &fakeClient{err: errors.New("connection refused")}
	converter := NewConverter(NewCache(client, newMemStore()))

	_, err := converter.Convert(context.Background(), 10, "XXX", "YYY")

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRateUnavailable)
	assert.Contains(t, err.Error(), "XXX")
	assert.Contains(t, err.Error(), "YYY")
}

func TestConvertBatch_OneLookupPerDistinctCurrency(t *testing.T) {
	client, converter := newTestConverter(map[string]map[string]float64{
		"JPY": {"TWD": 0.21},
		"USD": {"TWD": 32.25},
	})

	items := []LineItem{
		{Amount: 100, Currency: "JPY"},
		{Amount: 200, Currency: "JPY"},
		{Amount: 300, Currency: "JPY"},
		{Amount: 1, Currency: "USD"},
		{Amount: 50, Currency: "TWD"},
	}

	converted := converter.ConvertBatch(context.Background(), items, "TWD")

	require.Len(t, converted, len(items))
	assert.Equal(t, int32(2), atomic.LoadInt32(&client.calls), "target-currency items need no lookup")
	assert.InDelta(t, 21, converted[0].ConvertedAmount, 1e-9)
	assert.InDelta(t, 42, converted[1].ConvertedAmount, 1e-9)
	assert.InDelta(t, 63, converted[2].ConvertedAmount, 1e-9)
	assert.InDelta(t, 32.25, converted[3].ConvertedAmount, 1e-9)
	assert.InDelta(t, 50, converted[4].ConvertedAmount, 1e-9)
}

func TestConvertBatch_MissingPairConvertsToZero(t *testing.T) {
	client := &fakeClient{err: errors.New("connection refused")}
	converter := NewConverter(NewCache(client, newMemStore()))

	converted := converter.ConvertBatch(context.Background(), []LineItem{
		{Amount: 100, Currency: "ZZZ"},
	}, "TWD")

	require.Len(t, converted, 1)
	assert.Equal(t, float64(0), converted[0].ConvertedAmount, "a missing pair must not abort the batch")
}
