package transaction_test

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

	"github.com/MrJamesThe3rd/fintrack/internal/category"
	catstore "github.com/MrJamesThe3rd/fintrack/internal/category/store"
	"github.com/MrJamesThe3rd/fintrack/internal/currency"
	handler "github.com/MrJamesThe3rd/fintrack/internal/http/transaction"
	"github.com/MrJamesThe3rd/fintrack/internal/rates"
	"github.com/MrJamesThe3rd/fintrack/internal/seed"
	"github.com/MrJamesThe3rd/fintrack/internal/stats"
	"github.com/MrJamesThe3rd/fintrack/internal/transaction"
	txstore "github.com/MrJamesThe3rd/fintrack/internal/transaction/store"
)

var now = time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

type fallbackRates struct{}

func (fallbackRates) Rates(context.Context) currency.Rates { return rates.Fallback() }

func newServer(t *testing.T) *httptest.Server {
	t.Helper()

	txs := transaction.NewService(txstore.NewMemory(seed.Transactions(now)...))
	cats := category.NewService(catstore.NewMemory(seed.Categories()...))
	st := stats.NewService(txs, cats, time.UTC, func() time.Time { return now })

	r := chi.NewRouter()
	r.Route("/transactions", handler.NewHandler(txs, st, fallbackRates{}).Routes)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	return srv
}

func do(t *testing.T, method, url, body string) (*http.Response, map[string]any) {
	t.Helper()

	req, err := http.NewRequest(method, url, strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out map[string]any
	if strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") {
		dec := json.NewDecoder(resp.Body)
		dec.UseNumber()
		require.NoError(t, dec.Decode(&out))
	}

	return resp, out
}

func TestHandler_List(t *testing.T) {
	srv := newServer(t)

	tests := []struct {
		name      string
		query     string
		wantCode  int
		wantTotal string
		wantItems int
	}{
		{name: "first page", query: "", wantCode: http.StatusOK, wantTotal: "25", wantItems: 20},
		{name: "second page", query: "?page=2", wantCode: http.StatusOK, wantTotal: "25", wantItems: 5},
		{name: "income only", query: "?type=income", wantCode: http.StatusOK, wantTotal: "6", wantItems: 6},
		{name: "search", query: "?search=SALARY", wantCode: http.StatusOK, wantTotal: "2", wantItems: 2},
		{name: "bad type", query: "?type=transfer", wantCode: http.StatusBadRequest},
		{name: "bad amount", query: "?amount_min=abc", wantCode: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := do(t, http.MethodGet, srv.URL+"/transactions/"+tt.query, "")
			require.Equal(t, tt.wantCode, resp.StatusCode)

			if tt.wantCode != http.StatusOK {
				return
			}

			assert.Equal(t, json.Number(tt.wantTotal), body["total"])
			assert.Len(t, body["items"], tt.wantItems)
		})
	}
}

func TestHandler_CRUD(t *testing.T) {
	srv := newServer(t)

	resp, created := do(t, http.MethodPost, srv.URL+"/transactions/",
		`{"type":"expense","amount":12.5,"category":"Food","note":"lunch","date":"2024-03-09T12:00:00Z"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "12.5", created["amount"].(json.Number).String())
	assert.Equal(t, "USD", created["currency"])

	id := created["id"].(string)
	require.NotEmpty(t, id)

	resp, updated := do(t, http.MethodPatch, srv.URL+"/transactions/"+id, `{"note":"dinner"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "dinner", updated["note"])
	assert.Equal(t, "Food", updated["category"])

	resp, _ = do(t, http.MethodPut, srv.URL+"/transactions/"+id, `{"amount":-1}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, got := do(t, http.MethodGet, srv.URL+"/transactions/"+id, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "dinner", got["note"])

	resp, _ = do(t, http.MethodDelete, srv.URL+"/transactions/"+id, "")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, _ = do(t, http.MethodGet, srv.URL+"/transactions/"+id, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestHandler_CreateRejectsInvalid(t *testing.T) {
	srv := newServer(t)

	resp, _ := do(t, http.MethodPost, srv.URL+"/transactions/",
		`{"type":"expense","amount":5,"category":"","date":"2024-03-09T12:00:00Z"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = do(t, http.MethodPost, srv.URL+"/transactions/", `not json`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHandler_Stats(t *testing.T) {
	srv := newServer(t)

	resp, body := do(t, http.MethodGet, srv.URL+"/transactions/stats?month=2024-03", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "USD", body["currency"])
	assert.Equal(t, "5700", body["total_income"].(json.Number).String())
	assert.Equal(t, "4961.53", body["balance"].(json.Number).String())
	assert.Len(t, body["daily"], stats.DailyWindow)

	resp, body = do(t, http.MethodGet, srv.URL+"/transactions/stats?period=year&currency=eur", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "EUR", body["currency"])
	assert.Equal(t, "year", body["period"])
	assert.Equal(t, "9844", body["total_income"].(json.Number).String())

	resp, _ = do(t, http.MethodGet, srv.URL+"/transactions/stats?period=decade", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = do(t, http.MethodGet, srv.URL+"/transactions/stats?currency=CHF", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
