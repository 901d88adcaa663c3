package rates

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/MrJamesThe3rd/fintrack/internal/currency"
)

var ErrInvalidResponse = errors.New("invalid rates response")

type Fetcher interface {
	// Fetch returns the current table relative to currency.Base.
	Fetch(ctx context.Context) (currency.Rates, error)
}

// HTTPFetcher reads an open.er-api.com style endpoint.
type HTTPFetcher struct {
	url    string
	client *http.Client
}

func NewHTTPFetcher(url string, client *http.Client) *HTTPFetcher {
	if url == "" {
		url = DefaultURL
	}

	if client == nil {
		client = http.DefaultClient
	}

	return &HTTPFetcher{url: url, client: client}
}

type latestResponse struct {
	Result string                 `json:"result"`
	Base   string                 `json:"base_code"`
	Rates  map[string]json.Number `json:"rates"`
}

func (f *HTTPFetcher) Fetch(ctx context.Context) (currency.Rates, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("Accept", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching rates: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: HTTP %d", ErrInvalidResponse, resp.StatusCode)
	}

	var body latestResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}

	if body.Result != "success" {
		return nil, fmt.Errorf("%w: result %q", ErrInvalidResponse, body.Result)
	}

	if len(body.Rates) == 0 {
		return nil, fmt.Errorf("%w: no rates", ErrInvalidResponse)
	}

	table, err := parseRates(body.Rates)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}

	return table, nil
}
