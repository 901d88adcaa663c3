package rates_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/fintrack/internal/rates"
)

func serve(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)

	return srv
}

func TestHTTPFetcher(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr bool
	}{
		{
			name:   "Success",
			status: http.StatusOK,
			body:   `{"result":"success","base_code":"USD","rates":{"USD":1,"EUR":0.921,"RUB":91.87}}`,
		},
		{name: "ResultError", status: http.StatusOK, body: `{"result":"error","error-type":"unsupported-code"}`, wantErr: true},
		{name: "NoRates", status: http.StatusOK, body: `{"result":"success","rates":{}}`, wantErr: true},
		{name: "BadStatus", status: http.StatusBadGateway, body: `{"result":"success","rates":{"USD":1}}`, wantErr: true},
		{name: "Garbage", status: http.StatusOK, body: `<html>`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := serve(t, tt.status, tt.body)

			got, err := rates.NewHTTPFetcher(srv.URL, srv.Client()).Fetch(context.Background())
			if tt.wantErr {
				assert.ErrorIs(t, err, rates.ErrInvalidResponse)
				return
			}

			require.NoError(t, err)
			assert.True(t, decimal.RequireFromString("0.921").Equal(got["EUR"]))
			assert.True(t, decimal.RequireFromString("91.87").Equal(got["RUB"]))
		})
	}
}

func TestHTTPFetcher_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(srv.Close)
	t.Cleanup(func() { close(release) })

	p := rates.NewProvider(rates.NewHTTPFetcher(srv.URL, srv.Client()), nil, rates.Config{FetchTimeout: 50 * time.Millisecond})

	start := time.Now()
	res := p.Resolve(context.Background())

	assert.Equal(t, rates.TierFallback, res.Tier)
	assert.Less(t, time.Since(start), 2*time.Second)
}
