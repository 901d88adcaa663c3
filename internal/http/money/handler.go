package money

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/fintrack/internal/app"
	"github.com/MrJamesThe3rd/fintrack/internal/currency"
	"github.com/MrJamesThe3rd/fintrack/internal/rates"
)

// Handler serves the rate table and the display currency preference.
type Handler struct {
	coord *app.Coordinator
}

func NewHandler(coord *app.Coordinator) *Handler {
	return &Handler{coord: coord}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/rates", h.listRates)
	r.Get("/currency", h.getCurrency)
	r.Put("/currency", h.setCurrency)
	r.Get("/convert", h.convert)
}

type ratesResponse struct {
	Base      string                 `json:"base"`
	Tier      rates.Tier             `json:"tier"`
	UpdatedAt time.Time              `json:"updated_at"`
	Rates     map[string]json.Number `json:"rates"`
}

func (h *Handler) listRates(w http.ResponseWriter, r *http.Request) {
	res := h.coord.LoadRates(r.Context())

	resp := ratesResponse{
		Base:      currency.Base,
		Tier:      res.Tier,
		UpdatedAt: res.UpdatedAt,
		Rates:     make(map[string]json.Number, len(res.Rates)),
	}

	for code, rate := range res.Rates {
		resp.Rates[code] = json.Number(rate.String())
	}

	respond(w, http.StatusOK, resp)
}

type currencyResponse struct {
	Currency  string   `json:"currency"`
	Symbol    string   `json:"symbol"`
	Supported []string `json:"supported"`
}

func (h *Handler) getCurrency(w http.ResponseWriter, r *http.Request) {
	code := h.coord.LoadCurrency(r.Context())

	respond(w, http.StatusOK, currencyResponse{
		Currency:  code,
		Symbol:    currency.Symbol(code),
		Supported: currency.Supported,
	})
}

type setCurrencyRequest struct {
	Currency string `json:"currency"`
}

func (h *Handler) setCurrency(w http.ResponseWriter, r *http.Request) {
	var req setCurrencyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	code := strings.ToUpper(strings.TrimSpace(req.Currency))

	if err := h.coord.SetCurrency(r.Context(), code); err != nil {
		if errors.Is(err, app.ErrUnsupportedCurrency) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		http.Error(w, "internal error", http.StatusInternalServerError)

		return
	}

	respond(w, http.StatusOK, currencyResponse{
		Currency:  code,
		Symbol:    currency.Symbol(code),
		Supported: currency.Supported,
	})
}

type convertResponse struct {
	Amount    json.Number `json:"amount"`
	From      string      `json:"from"`
	To        string      `json:"to"`
	Converted json.Number `json:"converted"`
	Formatted string      `json:"formatted"`
}

// convert turns amount from one currency into another through the base
// currency. from defaults to the base and to defaults to the display
// preference.
func (h *Handler) convert(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	amount, err := decimal.NewFromString(q.Get("amount"))
	if err != nil {
		http.Error(w, "amount must be a number", http.StatusBadRequest)
		return
	}

	from := strings.ToUpper(q.Get("from"))
	if from == "" {
		from = currency.Base
	}

	to := strings.ToUpper(q.Get("currency"))
	if to == "" {
		to = h.coord.LoadCurrency(r.Context())
	}

	if !currency.IsSupported(from) || !currency.IsSupported(to) {
		http.Error(w, "unsupported currency", http.StatusBadRequest)
		return
	}

	table := h.coord.LoadRates(r.Context()).Rates
	converted := currency.Convert(currency.ToBase(amount, from, table), to, table)

	respond(w, http.StatusOK, convertResponse{
		Amount:    json.Number(amount.String()),
		From:      from,
		To:        to,
		Converted: json.Number(converted.Round(2).String()),
		Formatted: currency.Format(converted, to),
	})
}

func respond(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
