package importcsv

import (
	"encoding/json"
	"errors"
	"log/slog"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/fintrack/internal/importer"
	"github.com/MrJamesThe3rd/fintrack/internal/transaction"
)

// maxUploadSize bounds the multipart form kept in memory.
const maxUploadSize = 10 << 20

type Handler struct {
	svc *importer.Service
}

func NewHandler(svc *importer.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/formats", h.formats)
	r.Post("/", h.importCSV)
	r.Post("/preview", h.preview)
	r.Post("/confirm", h.confirmImport)
}

type transactionResponse struct {
	ID        string           `json:"id"`
	Type      transaction.Kind `json:"type"`
	Amount    json.Number      `json:"amount"`
	Currency  string           `json:"currency"`
	Category  string           `json:"category"`
	Note      string           `json:"note"`
	Date      time.Time        `json:"date"`
	Recurring bool             `json:"recurring"`
}

type paramsDTO struct {
	Type      transaction.Kind `json:"type"`
	Amount    json.Number      `json:"amount"`
	Currency  string           `json:"currency"`
	Category  string           `json:"category"`
	Note      string           `json:"note"`
	Date      time.Time        `json:"date"`
	Recurring bool             `json:"recurring"`
}

type importSuccessResponse struct {
	Charset      string                `json:"charset,omitempty"`
	Imported     int                   `json:"imported"`
	Transactions []transactionResponse `json:"transactions"`
}

type conflictDTO struct {
	Incoming paramsDTO           `json:"incoming"`
	Existing transactionResponse `json:"existing"`
}

type importConflictResponse struct {
	Charset   string        `json:"charset"`
	New       []paramsDTO   `json:"new"`
	Conflicts []conflictDTO `json:"conflicts"`
}

type previewResponse struct {
	Charset string      `json:"charset"`
	Entries []paramsDTO `json:"entries"`
}

type confirmRequest struct {
	Params []paramsDTO `json:"params"`
}

func (h *Handler) formats(w http.ResponseWriter, _ *http.Request) {
	respond(w, http.StatusOK, map[string][]importer.Format{"formats": h.svc.Formats()})
}

type upload struct {
	format   importer.Format
	currency string
}

// readUpload parses the multipart form and returns its fields. The caller
// closes the returned file.
func readUpload(w http.ResponseWriter, r *http.Request) (upload, multipart.File, bool) {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		http.Error(w, "failed to parse form: "+err.Error(), http.StatusBadRequest)
		return upload{}, nil, false
	}

	u := upload{
		format:   importer.Format(r.FormValue("format")),
		currency: r.FormValue("currency"),
	}

	if u.format == "" {
		http.Error(w, "format field is required", http.StatusBadRequest)
		return upload{}, nil, false
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "file field is required", http.StatusBadRequest)
		return upload{}, nil, false
	}

	return u, file, true
}

func (h *Handler) importCSV(w http.ResponseWriter, r *http.Request) {
	u, file, ok := readUpload(w, r)
	if !ok {
		return
	}
	defer file.Close()

	result, err := h.svc.Import(r.Context(), u.format, u.currency, file)
	if err != nil {
		writeError(w, err)
		return
	}

	if len(result.Conflicts) > 0 {
		resp := importConflictResponse{
			Charset:   result.Charset,
			New:       make([]paramsDTO, 0, len(result.New)),
			Conflicts: make([]conflictDTO, 0, len(result.Conflicts)),
		}

		for _, p := range result.New {
			resp.New = append(resp.New, toParamsDTO(p))
		}

		for _, c := range result.Conflicts {
			resp.Conflicts = append(resp.Conflicts, conflictDTO{
				Incoming: toParamsDTO(c.Incoming),
				Existing: toTxResponse(c.Existing),
			})
		}

		respond(w, http.StatusConflict, resp)

		return
	}

	resp := toSuccessResponse(result.Imported)
	resp.Charset = result.Charset

	respond(w, http.StatusCreated, resp)
}

func (h *Handler) preview(w http.ResponseWriter, r *http.Request) {
	u, file, ok := readUpload(w, r)
	if !ok {
		return
	}
	defer file.Close()

	params, cs, err := h.svc.Parse(r.Context(), u.format, u.currency, file)
	if err != nil {
		writeError(w, err)
		return
	}

	resp := previewResponse{Charset: string(cs), Entries: make([]paramsDTO, len(params))}
	for i, p := range params {
		resp.Entries[i] = toParamsDTO(p)
	}

	respond(w, http.StatusOK, resp)
}

func (h *Handler) confirmImport(w http.ResponseWriter, r *http.Request) {
	var req confirmRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	params := make([]transaction.CreateParams, 0, len(req.Params))

	for _, p := range req.Params {
		amount, err := decimal.NewFromString(p.Amount.String())
		if err != nil {
			http.Error(w, "invalid amount", http.StatusBadRequest)
			return
		}

		params = append(params, transaction.CreateParams{
			Kind:      p.Type,
			Amount:    amount,
			Currency:  p.Currency,
			Category:  p.Category,
			Note:      p.Note,
			Date:      p.Date,
			Recurring: p.Recurring,
		})
	}

	txs, err := h.svc.Confirm(r.Context(), params)
	if err != nil {
		writeError(w, err)
		return
	}

	respond(w, http.StatusCreated, toSuccessResponse(txs))
}

func toSuccessResponse(txs []*transaction.Transaction) importSuccessResponse {
	responses := make([]transactionResponse, 0, len(txs))
	for _, tx := range txs {
		responses = append(responses, toTxResponse(tx))
	}

	return importSuccessResponse{
		Imported:     len(txs),
		Transactions: responses,
	}
}

func toTxResponse(tx *transaction.Transaction) transactionResponse {
	return transactionResponse{
		ID:        tx.ID,
		Type:      tx.Kind,
		Amount:    json.Number(tx.Amount.String()),
		Currency:  tx.Currency,
		Category:  tx.Category,
		Note:      tx.Note,
		Date:      tx.Date,
		Recurring: tx.Recurring,
	}
}

func toParamsDTO(p transaction.CreateParams) paramsDTO {
	return paramsDTO{
		Type:      p.Kind,
		Amount:    json.Number(p.Amount.String()),
		Currency:  p.Currency,
		Category:  p.Category,
		Note:      p.Note,
		Date:      p.Date,
		Recurring: p.Recurring,
	}
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, importer.ErrUnknownFormat),
		errors.Is(err, importer.ErrInvalid),
		errors.Is(err, transaction.ErrInvalid):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		slog.Error("import request failed", "error", err)
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
