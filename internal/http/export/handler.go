package export

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/fintrack/internal/currency"
	"github.com/MrJamesThe3rd/fintrack/internal/export"
	httptx "github.com/MrJamesThe3rd/fintrack/internal/http/transaction"
	"github.com/MrJamesThe3rd/fintrack/internal/transaction"
)

type RateSource interface {
	Rates(ctx context.Context) currency.Rates
}

type Handler struct {
	svc   *export.Service
	rates RateSource
	now   func() time.Time
}

func NewHandler(svc *export.Service, rates RateSource) *Handler {
	return &Handler{svc: svc, rates: rates, now: time.Now}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.download)
	r.Get("/summary", h.summary)
}

// download streams the filtered transactions as CSV. It takes the same
// filters as the transaction list plus currency.
func (h *Handler) download(w http.ResponseWriter, r *http.Request) {
	txs, code, ok := h.load(w, r)
	if !ok {
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=\"fintrack_%s.csv\"", h.now().Format("20060102")))

	if err := export.WriteCSV(w, txs, code, h.rates.Rates(r.Context())); err != nil {
		slog.Error("failed to write csv", "error", err)
	}
}

func (h *Handler) summary(w http.ResponseWriter, r *http.Request) {
	txs, code, ok := h.load(w, r)
	if !ok {
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")

	if _, err := w.Write([]byte(export.Summary(txs, code, h.rates.Rates(r.Context())))); err != nil {
		slog.Error("failed to write summary", "error", err)
	}
}

func (h *Handler) load(w http.ResponseWriter, r *http.Request) ([]*transaction.Transaction, string, bool) {
	filter, err := httptx.ParseFilter(r.URL.Query())
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return nil, "", false
	}

	code := strings.ToUpper(r.URL.Query().Get("currency"))
	if code == "" {
		code = currency.Base
	}

	if !currency.IsSupported(code) {
		http.Error(w, "unsupported currency", http.StatusBadRequest)
		return nil, "", false
	}

	txs, err := h.svc.Export(r.Context(), filter)
	if err != nil {
		slog.Error("export failed", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)

		return nil, "", false
	}

	return txs, code, true
}
