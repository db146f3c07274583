package sale

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/noah-isme/backend-pos/internal/common"
)

// Handler exposes the sales history endpoints.
type Handler struct {
	Repo    Repository
	StoreID string
}

// Mount registers the sales routes on the router.
func (h *Handler) Mount(r chi.Router) {
	r.Get("/sales", h.ListSales)
	r.Get("/sales/{id}", h.GetSale)
}

// ListSales returns recent sales for the store, newest first.
func (h *Handler) ListSales(w http.ResponseWriter, r *http.Request) {
	if h.Repo == nil {
		common.JSONError(w, http.StatusInternalServerError, common.CodeInternal, "sale repository not configured", nil)
		return
	}
	page, perPage := common.ParsePagination(r, 20)
	records, err := h.Repo.List(r.Context(), h.StoreID, perPage, (page-1)*perPage)
	if err != nil {
		common.JSONError(w, http.StatusInternalServerError, common.CodeInternal, "failed to load sales", nil)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{
		"data": records,
		"meta": common.Pagination{Page: page, PerPage: perPage, TotalItems: len(records)},
	})
}

// GetSale loads one sale with its item snapshots.
func (h *Handler) GetSale(w http.ResponseWriter, r *http.Request) {
	if h.Repo == nil {
		common.JSONError(w, http.StatusInternalServerError, common.CodeInternal, "sale repository not configured", nil)
		return
	}
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		common.JSONError(w, http.StatusBadRequest, common.CodeBadRequest, "invalid sale id", nil)
		return
	}
	rec, err := h.Repo.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			common.JSONError(w, http.StatusNotFound, common.CodeNotFound, "sale not found", nil)
			return
		}
		common.JSONError(w, http.StatusInternalServerError, common.CodeInternal, "failed to load sale", nil)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": rec})
}
