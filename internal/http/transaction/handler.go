package transaction

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/fintrack/internal/currency"
	"github.com/MrJamesThe3rd/fintrack/internal/stats"
	"github.com/MrJamesThe3rd/fintrack/internal/transaction"
)

type RateSource interface {
	Rates(ctx context.Context) currency.Rates
}

type Handler struct {
	svc   *transaction.Service
	stats *stats.Service
	rates RateSource
}

func NewHandler(svc *transaction.Service, st *stats.Service, rates RateSource) *Handler {
	return &Handler{svc: svc, stats: st, rates: rates}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.create)
	r.Get("/", h.list)
	r.Get("/stats", h.statistics)
	r.Get("/{id}", h.get)
	r.Delete("/{id}", h.delete)
	r.Put("/{id}", h.update)
	r.Patch("/{id}", h.update)
}

type createTransactionRequest struct {
	Type      transaction.Kind `json:"type"`
	Amount    json.Number      `json:"amount"`
	Currency  string           `json:"currency"`
	Category  string           `json:"category"`
	Note      string           `json:"note"`
	Date      time.Time        `json:"date"`
	Recurring bool             `json:"recurring"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	amount, err := decimal.NewFromString(req.Amount.String())
	if err != nil {
		http.Error(w, "invalid amount", http.StatusBadRequest)
		return
	}

	tx, err := h.svc.Create(r.Context(), transaction.CreateParams{
		Kind:      req.Type,
		Amount:    amount,
		Currency:  req.Currency,
		Category:  req.Category,
		Note:      req.Note,
		Date:      req.Date,
		Recurring: req.Recurring,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	respond(w, http.StatusCreated, toResponse(tx))
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	filter, err := ParseFilter(r.URL.Query())
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	page, err := h.svc.List(r.Context(), filter)
	if err != nil {
		writeError(w, err)
		return
	}

	respond(w, http.StatusOK, toPageResponse(page))
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	tx, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}

	respond(w, http.StatusOK, toResponse(tx))
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type updateTransactionRequest struct {
	Type      *transaction.Kind `json:"type,omitempty"`
	Amount    *json.Number      `json:"amount,omitempty"`
	Currency  *string           `json:"currency,omitempty"`
	Category  *string           `json:"category,omitempty"`
	Note      *string           `json:"note,omitempty"`
	Date      *time.Time        `json:"date,omitempty"`
	Recurring *bool             `json:"recurring,omitempty"`
}

// update serves both PUT and PATCH. Absent fields keep their stored value.
func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	var req updateTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	params := transaction.UpdateParams{
		Kind:      req.Type,
		Currency:  req.Currency,
		Category:  req.Category,
		Note:      req.Note,
		Date:      req.Date,
		Recurring: req.Recurring,
	}

	if req.Amount != nil {
		amount, err := decimal.NewFromString(req.Amount.String())
		if err != nil {
			http.Error(w, "invalid amount", http.StatusBadRequest)
			return
		}

		params.Amount = &amount
	}

	tx, err := h.svc.Update(r.Context(), chi.URLParam(r, "id"), params)
	if err != nil {
		writeError(w, err)
		return
	}

	respond(w, http.StatusOK, toResponse(tx))
}

func (h *Handler) statistics(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	code := strings.ToUpper(q.Get("currency"))
	if code == "" {
		code = currency.Base
	}

	if !currency.IsSupported(code) {
		http.Error(w, "unsupported currency", http.StatusBadRequest)
		return
	}

	var (
		snap *stats.Snapshot
		err  error
	)

	if p := q.Get("period"); p != "" && q.Get("month") == "" {
		snap, err = h.stats.Period(r.Context(), stats.Period(p))
	} else {
		snap, err = h.stats.Month(r.Context(), q.Get("month"))
	}

	if err != nil {
		if errors.Is(err, stats.ErrInvalidPeriod) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		writeError(w, err)

		return
	}

	respond(w, http.StatusOK, toStatsResponse(snap, code, h.rates.Rates(r.Context())))
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, transaction.ErrNotFound):
		http.Error(w, "transaction not found", http.StatusNotFound)
	case errors.Is(err, transaction.ErrInvalid):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		slog.Error("transaction request failed", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func respond(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
