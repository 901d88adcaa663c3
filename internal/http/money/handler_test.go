package money_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/fintrack/internal/app"
	"github.com/MrJamesThe3rd/fintrack/internal/http/money"
	"github.com/MrJamesThe3rd/fintrack/internal/kv"
	"github.com/MrJamesThe3rd/fintrack/internal/rates"
)

type fallbackRates struct{}

func (fallbackRates) Resolve(context.Context) rates.Result {
	return rates.Result{Rates: rates.Fallback(), Tier: rates.TierFallback, UpdatedAt: time.Unix(0, 0).UTC()}
}

func (fallbackRates) Invalidate() {}

func newServer(t *testing.T) (*httptest.Server, *kv.Memory) {
	t.Helper()

	prefs := kv.NewMemory()
	coord := app.New(nil, nil, nil, fallbackRates{}, prefs, "USD")

	r := chi.NewRouter()
	r.Group(money.NewHandler(coord).Routes)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	return srv, prefs
}

func get(t *testing.T, url string, out any) int {
	t.Helper()

	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()

	if out != nil && resp.StatusCode == http.StatusOK {
		dec := json.NewDecoder(resp.Body)
		dec.UseNumber()
		require.NoError(t, dec.Decode(out))
	}

	return resp.StatusCode
}

func TestHandler_Rates(t *testing.T) {
	srv, _ := newServer(t)

	var body struct {
		Base  string                 `json:"base"`
		Tier  string                 `json:"tier"`
		Rates map[string]json.Number `json:"rates"`
	}

	require.Equal(t, http.StatusOK, get(t, srv.URL+"/rates", &body))
	assert.Equal(t, "USD", body.Base)
	assert.Equal(t, "fallback", body.Tier)
	assert.Equal(t, json.Number("0.92"), body.Rates["EUR"])
	assert.Equal(t, json.Number("1"), body.Rates["USD"])
}

func TestHandler_Currency(t *testing.T) {
	srv, prefs := newServer(t)

	var body struct {
		Currency  string   `json:"currency"`
		Symbol    string   `json:"symbol"`
		Supported []string `json:"supported"`
	}

	require.Equal(t, http.StatusOK, get(t, srv.URL+"/currency", &body))
	assert.Equal(t, "USD", body.Currency)
	assert.Equal(t, "$", body.Symbol)
	assert.Len(t, body.Supported, 5)

	put := func(payload string) int {
		req, err := http.NewRequest(http.MethodPut, srv.URL+"/currency", strings.NewReader(payload))
		require.NoError(t, err)

		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		resp.Body.Close()

		return resp.StatusCode
	}

	assert.Equal(t, http.StatusBadRequest, put(`{"currency":"CHF"}`))
	assert.Equal(t, http.StatusOK, put(`{"currency":"gbp"}`))

	stored, err := prefs.Get(context.Background(), app.CurrencyKey)
	require.NoError(t, err)
	assert.Equal(t, "GBP", stored)

	require.Equal(t, http.StatusOK, get(t, srv.URL+"/currency", &body))
	assert.Equal(t, "GBP", body.Currency)
	assert.Equal(t, "£", body.Symbol)
}

func TestHandler_Convert(t *testing.T) {
	srv, _ := newServer(t)

	type convertBody struct {
		Converted json.Number `json:"converted"`
		Formatted string      `json:"formatted"`
		To        string      `json:"to"`
	}

	tests := []struct {
		name          string
		query         string
		wantCode      int
		wantConverted string
		wantFormatted string
	}{
		{name: "base to euro", query: "amount=1000&currency=EUR", wantCode: http.StatusOK, wantConverted: "920", wantFormatted: "€920.00"},
		{name: "defaults to preference", query: "amount=2.5", wantCode: http.StatusOK, wantConverted: "2.5", wantFormatted: "$2.50"},
		{name: "euro to yen", query: "amount=92&from=EUR&currency=JPY", wantCode: http.StatusOK, wantConverted: "15500", wantFormatted: "¥15,500.00"},
		{name: "bad amount", query: "amount=ten", wantCode: http.StatusBadRequest},
		{name: "unsupported", query: "amount=1&currency=CHF", wantCode: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var body convertBody

			require.Equal(t, tt.wantCode, get(t, srv.URL+"/convert?"+tt.query, &body))

			if tt.wantCode == http.StatusOK {
				assert.Equal(t, tt.wantConverted, body.Converted.String())
				assert.Equal(t, tt.wantFormatted, body.Formatted)
			}
		})
	}
}
