package rates

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"tripledger/internal/domain"
)

// DefaultAPIURL is the base URL of the exchange-rate API (free tier).
const DefaultAPIURL = "https://open.er-api.com"

// Client looks up current exchange rates for a base currency.
type Client interface {
	FetchRates(ctx context.Context, baseCurrency string) (domain.RateSnapshot, error)
}

// APIClient is an HTTP Client against an ExchangeRate-API compatible endpoint.
type APIClient struct {
	url    string
	client *http.Client
}

// NewAPIClient creates an APIClient. An empty url selects DefaultAPIURL.
func NewAPIClient(url string, timeout time.Duration) *APIClient {
	if url == "" {
		url = DefaultAPIURL
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &APIClient{
		url:    url,
		client: &http.Client{Timeout: timeout},
	}
}

// FetchRates loads the current rate table for baseCurrency.
func (c *APIClient) FetchRates(ctx context.Context, baseCurrency string) (domain.RateSnapshot, error) {
	type response struct {
		Result             string             `json:"result"`
		BaseCode           string             `json:"base_code"`
		Rates              map[string]float64 `json:"rates"`
		TimeLastUpdateUnix int64              `json:"time_last_update_unix"`
	}

	url := fmt.Sprintf("%s/v6/latest/%s", c.url, baseCurrency)

	request, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return domain.RateSnapshot{}, fmt.Errorf("building rate request: %w", err)
	}

	httpResponse, err := c.client.Do(request)
	if err != nil {
		return domain.RateSnapshot{}, fmt.Errorf("rate lookup for %s: %w", baseCurrency, err)
	}
	defer httpResponse.Body.Close()

	if httpResponse.StatusCode != http.StatusOK {
		return domain.RateSnapshot{}, fmt.Errorf("rate lookup for %s: unexpected status %d", baseCurrency, httpResponse.StatusCode)
	}

	body, err := io.ReadAll(httpResponse.Body)
	if err != nil {
		return domain.RateSnapshot{}, fmt.Errorf("reading rate response: %w", err)
	}

	var resp response
	if err := json.Unmarshal(body, &resp); err != nil {
		return domain.RateSnapshot{}, fmt.Errorf("decoding rate response: %w", err)
	}

	return domain.RateSnapshot{
		BaseCurrency:     resp.BaseCode,
		Rates:            resp.Rates,
		FetchedAtEpochMs: time.Now().UnixMilli(),
	}, nil
}
