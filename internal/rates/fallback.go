package rates

// fallbackRates holds approximate, non-authoritative rates used when the
// external API is unreachable. Values are hardcoded estimates.
var fallbackRates = map[string]map[string]float64{
	"TWD": {"JPY": 4.85, "KRW": 42.5, "USD": 0.031, "CNY": 0.22, "EUR": 0.029, "HKD": 0.24, "SGD": 0.042, "GBP": 0.025, "AUD": 0.047, "CAD": 0.042, "THB": 1.12},
	"JPY": {"TWD": 0.206, "USD": 0.0064, "EUR": 0.0059, "HKD": 0.05, "CNY": 0.046, "KRW": 8.76},
	"USD": {"TWD": 32.25, "JPY": 156.4, "EUR": 0.92, "CNY": 7.24, "KRW": 1375, "HKD": 7.8, "GBP": 0.79},
}

// Fallback returns the static rate table for baseCurrency. Unknown base
// currencies yield an empty map, so conversions against them fail cleanly.
func Fallback(baseCurrency string) map[string]float64 {
	rates := make(map[string]float64, len(fallbackRates[baseCurrency]))
	for code, rate := range fallbackRates[baseCurrency] {
		rates[code] = rate
	}
	return rates
}
