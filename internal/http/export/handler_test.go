package export_test

import (
	"context"
	"encoding/csv"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/fintrack/internal/currency"
	"github.com/MrJamesThe3rd/fintrack/internal/export"
	handler "github.com/MrJamesThe3rd/fintrack/internal/http/export"
	"github.com/MrJamesThe3rd/fintrack/internal/rates"
	"github.com/MrJamesThe3rd/fintrack/internal/seed"
	"github.com/MrJamesThe3rd/fintrack/internal/transaction"
	"github.com/MrJamesThe3rd/fintrack/internal/transaction/store"
)

type fallbackRates struct{}

func (fallbackRates) Rates(context.Context) currency.Rates { return rates.Fallback() }

func newServer(t *testing.T) *httptest.Server {
	t.Helper()

	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	svc := export.NewService(transaction.NewService(store.NewMemory(seed.Transactions(now)...)))

	r := chi.NewRouter()
	r.Route("/export", handler.NewHandler(svc, fallbackRates{}).Routes)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	return srv
}

func TestHandler_Download(t *testing.T) {
	srv := newServer(t)

	resp, err := http.Get(srv.URL + "/export/?type=income&currency=eur")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, strings.HasPrefix(resp.Header.Get("Content-Type"), "text/csv"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "attachment")

	rows, err := csv.NewReader(resp.Body).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 7)

	for _, row := range rows[1:] {
		assert.Equal(t, "income", row[1])
		assert.Equal(t, "EUR", row[5])
	}
}

func TestHandler_Summary(t *testing.T) {
	srv := newServer(t)

	resp, err := http.Get(srv.URL + "/export/summary?search=salary")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(body)), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "| Salary | Monthly salary | +$4,500.00")
}

func TestHandler_RejectsBadInput(t *testing.T) {
	srv := newServer(t)

	for _, q := range []string{"?currency=CHF", "?date_from=yesterday"} {
		resp, err := http.Get(srv.URL + "/export/" + q)
		require.NoError(t, err)
		resp.Body.Close()

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, q)
	}
}
