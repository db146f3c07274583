package catalog

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/noah-isme/backend-pos/internal/common"
)

// Handler exposes read-only catalog endpoints for the POS UI.
type Handler struct {
	Service *Service
	StoreID string
}

// Mount registers the catalog routes on the router.
func (h *Handler) Mount(r chi.Router) {
	r.Get("/products", h.ListProducts)
	r.Get("/categories", h.ListCategories)
	r.Get("/discounts", h.ListDiscounts)
}

// ListProducts returns the store's products with modifier groups and
// per-product discounts inlined.
func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.Service.Products(r.Context(), h.StoreID)
	if err != nil {
		common.JSONError(w, http.StatusInternalServerError, common.CodeInternal, "failed to load products", nil)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": products})
}

// ListCategories returns the store's categories.
func (h *Handler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.Service.Categories(r.Context(), h.StoreID)
	if err != nil {
		common.JSONError(w, http.StatusInternalServerError, common.CodeInternal, "failed to load categories", nil)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": categories})
}

// ListDiscounts returns the order-level discounts cashiers may apply.
func (h *Handler) ListDiscounts(w http.ResponseWriter, r *http.Request) {
	discounts, err := h.Service.OrderDiscounts(r.Context(), h.StoreID)
	if err != nil {
		common.JSONError(w, http.StatusInternalServerError, common.CodeInternal, "failed to load discounts", nil)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": discounts})
}
