package rates

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/fintrack/internal/currency"
)

// Durable cache keys.
const (
	RatesKey     = "fintrack:rates"    // JSON object of code to rate
	RatesTSKey   = "fintrack:rates_ts" // Unix milliseconds of the fetch
	DefaultURL   = "https://open.er-api.com/v6/latest/USD"
	DefaultTTL   = time.Hour
	FetchTimeout = 8 * time.Second
)

// Tier names the source a rate table was resolved from.
type Tier string

const (
	TierMemory    Tier = "memory"
	TierNetwork   Tier = "network"
	TierPersisted Tier = "persisted"
	TierFallback  Tier = "fallback"
)

type Result struct {
	Rates     currency.Rates
	Tier      Tier
	UpdatedAt time.Time
}

// Fallback returns the compiled-in table used when neither the network nor
// the durable cache can supply rates.
func Fallback() currency.Rates {
	return currency.Rates{
		currency.USD: decimal.NewFromInt(1),
		currency.EUR: decimal.RequireFromString("0.92"),
		currency.GBP: decimal.RequireFromString("0.79"),
		currency.RUB: decimal.RequireFromString("92.5"),
		currency.JPY: decimal.NewFromInt(155),
	}
}

func encodeRates(r currency.Rates) (string, error) {
	out := make(map[string]json.Number, len(r))
	for code, rate := range r {
		out[code] = json.Number(rate.String())
	}

	b, err := json.Marshal(out)
	if err != nil {
		return "", fmt.Errorf("encoding rates: %w", err)
	}

	return string(b), nil
}

func decodeRates(raw string) (currency.Rates, error) {
	var in map[string]json.Number
	if err := json.Unmarshal([]byte(raw), &in); err != nil {
		return nil, fmt.Errorf("decoding rates: %w", err)
	}

	return parseRates(in)
}

func parseRates(in map[string]json.Number) (currency.Rates, error) {
	out := make(currency.Rates, len(in))

	for code, n := range in {
		rate, err := decimal.NewFromString(n.String())
		if err != nil {
			return nil, fmt.Errorf("parsing rate for %s: %w", code, err)
		}

		out[code] = rate
	}

	return out, nil
}

func encodeTimestamp(t time.Time) string {
	return strconv.FormatInt(t.UnixMilli(), 10)
}

func decodeTimestamp(raw string) (time.Time, error) {
	ms, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing rates timestamp: %w", err)
	}

	return time.UnixMilli(ms), nil
}
