package category

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/fintrack/internal/category"
	"github.com/MrJamesThe3rd/fintrack/internal/transaction"
)

type Handler struct {
	svc *category.Service
}

func NewHandler(svc *category.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Put("/{id}", h.update)
	r.Patch("/{id}", h.update)
	r.Delete("/{id}", h.delete)
}

type categoryResponse struct {
	ID    string        `json:"id"`
	Name  string        `json:"name"`
	Icon  string        `json:"icon"`
	Color string        `json:"color"`
	Type  category.Kind `json:"type"`
}

func toResponse(c *category.Category) categoryResponse {
	return categoryResponse{ID: c.ID, Name: c.Name, Icon: c.Icon, Color: c.Color, Type: c.Kind}
}

// list accepts an optional kind (income or expense) and then returns only the
// categories selectable for that kind of transaction.
func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	var (
		cats []*category.Category
		err  error
	)

	if k := transaction.Kind(r.URL.Query().Get("kind")); k != "" {
		if !k.Valid() {
			http.Error(w, "kind must be income or expense", http.StatusBadRequest)
			return
		}

		cats, err = h.svc.ForKind(r.Context(), k)
	} else {
		cats, err = h.svc.List(r.Context())
	}

	if err != nil {
		writeError(w, err)
		return
	}

	resp := make([]categoryResponse, len(cats))
	for i, c := range cats {
		resp[i] = toResponse(c)
	}

	respond(w, http.StatusOK, resp)
}

type createCategoryRequest struct {
	Name  string        `json:"name"`
	Icon  string        `json:"icon"`
	Color string        `json:"color"`
	Type  category.Kind `json:"type"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createCategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	c, err := h.svc.Create(r.Context(), category.CreateParams{
		Name:  req.Name,
		Icon:  req.Icon,
		Color: req.Color,
		Kind:  req.Type,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	respond(w, http.StatusCreated, toResponse(c))
}

type updateCategoryRequest struct {
	Name  *string        `json:"name,omitempty"`
	Icon  *string        `json:"icon,omitempty"`
	Color *string        `json:"color,omitempty"`
	Type  *category.Kind `json:"type,omitempty"`
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	var req updateCategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	c, err := h.svc.Update(r.Context(), chi.URLParam(r, "id"), category.UpdateParams{
		Name:  req.Name,
		Icon:  req.Icon,
		Color: req.Color,
		Kind:  req.Type,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	respond(w, http.StatusOK, toResponse(c))
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, category.ErrNotFound):
		http.Error(w, "category not found", http.StatusNotFound)
	case errors.Is(err, category.ErrInvalid):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		slog.Error("category request failed", "error", err)
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
