package session

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	validator "github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/noah-isme/backend-pos/internal/cart"
	"github.com/noah-isme/backend-pos/internal/catalog"
	"github.com/noah-isme/backend-pos/internal/common"
	"github.com/noah-isme/backend-pos/internal/discount"
	"github.com/noah-isme/backend-pos/internal/obs"
	"github.com/noah-isme/backend-pos/internal/pricing"
	"github.com/noah-isme/backend-pos/internal/sale"
)

// Handler wires checkout sessions to HTTP.
type Handler struct {
	Registry *Registry
	Catalog  *catalog.Service
	Validate *validator.Validate
}

// Mount registers the session routes on the router.
func (h *Handler) Mount(r chi.Router) {
	r.Post("/sessions", h.OpenSession)
	r.Route("/sessions/{id}", func(r chi.Router) {
		r.Get("/", h.GetSession)
		r.Delete("/", h.CloseSession)
		r.Post("/items", h.AddItem)
		r.Delete("/items/{productId}", h.RemoveItem)
		r.Patch("/items/{productId}", h.ChangeQuantity)
		r.Post("/lines/{index}/modifiers", h.ToggleModifier)
		r.Post("/lines/{index}/discounts", h.ToggleDiscount)
		r.Put("/discount", h.SetOrderDiscount)
		r.Delete("/discount", h.ClearOrderDiscount)
		r.Post("/finalize", h.Finalize)
	})
}

// OpenSession creates a new checkout session with an empty cart.
func (h *Handler) OpenSession(w http.ResponseWriter, r *http.Request) {
	if h.Registry == nil {
		common.JSONError(w, http.StatusInternalServerError, common.CodeInternal, "session registry not configured", nil)
		return
	}
	s, err := h.Registry.Open(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.JSON(w, http.StatusCreated, map[string]any{
		"data": map[string]any{
			"sessionId": s.ID.String(),
			"state":     s.Finalizer.State().String(),
		},
	})
}

// GetSession returns the cart contents and the computed totals.
func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": h.view(s)})
}

// CloseSession abandons the session and discards its cart.
func (h *Handler) CloseSession(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		common.JSONError(w, http.StatusBadRequest, common.CodeBadRequest, "invalid session id", nil)
		return
	}
	if err := h.Registry.Close(r.Context(), id); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AddItem adds one unit of a product, merging with an existing line.
func (h *Handler) AddItem(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	var payload struct {
		ProductID string `json:"productId" validate:"required"`
	}
	if !h.decode(w, r, &payload) {
		return
	}
	product, err := h.Catalog.Product(r.Context(), payload.ProductID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	if err := s.Cart.AddItem(product); err != nil {
		h.writeError(w, err)
		return
	}
	obs.CartMutationsTotal.WithLabelValues("add_item").Inc()
	common.JSON(w, http.StatusOK, map[string]any{"data": h.view(s)})
}

// RemoveItem deletes a line; removing an absent product succeeds.
func (h *Handler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	if err := s.Cart.RemoveItem(chi.URLParam(r, "productId")); err != nil {
		h.writeError(w, err)
		return
	}
	obs.CartMutationsTotal.WithLabelValues("remove_item").Inc()
	common.JSON(w, http.StatusOK, map[string]any{"data": h.view(s)})
}

// ChangeQuantity applies a quantity delta to a line.
func (h *Handler) ChangeQuantity(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	var payload struct {
		Delta int `json:"delta" validate:"required"`
	}
	if !h.decode(w, r, &payload) {
		return
	}
	if err := s.Cart.ChangeQuantity(chi.URLParam(r, "productId"), payload.Delta); err != nil {
		h.writeError(w, err)
		return
	}
	obs.CartMutationsTotal.WithLabelValues("change_quantity").Inc()
	common.JSON(w, http.StatusOK, map[string]any{"data": h.view(s)})
}

// ToggleModifier selects, replaces, or clears a modifier option on a line.
func (h *Handler) ToggleModifier(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	index, ok := h.lineIndex(w, r)
	if !ok {
		return
	}
	var payload struct {
		Group  string `json:"group" validate:"required"`
		Option string `json:"option" validate:"required"`
	}
	if !h.decode(w, r, &payload) {
		return
	}
	if err := s.Cart.ToggleModifier(index, payload.Group, payload.Option); err != nil {
		h.writeError(w, err)
		return
	}
	obs.CartMutationsTotal.WithLabelValues("toggle_modifier").Inc()
	common.JSON(w, http.StatusOK, map[string]any{"data": h.view(s)})
}

// ToggleDiscount toggles a line discount's membership.
func (h *Handler) ToggleDiscount(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	index, ok := h.lineIndex(w, r)
	if !ok {
		return
	}
	d, ok := h.decodeDiscount(w, r)
	if !ok {
		return
	}
	if err := s.Cart.ToggleDiscount(index, d); err != nil {
		h.writeError(w, err)
		return
	}
	obs.CartMutationsTotal.WithLabelValues("toggle_discount").Inc()
	common.JSON(w, http.StatusOK, map[string]any{"data": h.view(s)})
}

// SetOrderDiscount replaces the order-level discount slot.
func (h *Handler) SetOrderDiscount(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	d, ok := h.decodeDiscount(w, r)
	if !ok {
		return
	}
	if err := s.Cart.SetOrderDiscount(&d); err != nil {
		h.writeError(w, err)
		return
	}
	obs.CartMutationsTotal.WithLabelValues("set_order_discount").Inc()
	common.JSON(w, http.StatusOK, map[string]any{"data": h.view(s)})
}

// ClearOrderDiscount empties the order-level discount slot.
func (h *Handler) ClearOrderDiscount(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	if err := s.Cart.SetOrderDiscount(nil); err != nil {
		h.writeError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": h.view(s)})
}

// Finalize submits the cart as a sale. On success the cart is reset and the
// persisted record is returned for receipt generation.
func (h *Handler) Finalize(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	var payload struct {
		PaymentMethod  string          `json:"paymentMethod" validate:"required,oneof=cash card qr"`
		PaymentDetails json.RawMessage `json:"paymentDetails"`
	}
	if !h.decode(w, r, &payload) {
		return
	}
	rec, err := s.Finalizer.Finalize(r.Context(), sale.PaymentMethod(payload.PaymentMethod), payload.PaymentDetails)
	if err != nil {
		h.writeError(w, err)
		return
	}
	total, _ := rec.Total.Float64()
	obs.SalesCommittedTotal.WithLabelValues(string(rec.PaymentMethod)).Inc()
	obs.SaleAmount.Observe(total)

	s.Cart.Reset()
	common.JSON(w, http.StatusCreated, map[string]any{"data": rec})
}

type lineView struct {
	ProductID   string              `json:"productId"`
	ProductName string              `json:"productName"`
	Quantity    int                 `json:"quantity"`
	Modifiers   []cart.Selection    `json:"modifiers"`
	Discounts   []discount.Discount `json:"discounts"`
	LineTotal   decimal.Decimal     `json:"lineTotal"`
}

type sessionView struct {
	SessionID     string             `json:"sessionId"`
	State         string             `json:"state"`
	Lines         []lineView         `json:"lines"`
	OrderDiscount *discount.Discount `json:"orderDiscount,omitempty"`
	Summary       pricing.Summary    `json:"summary"`
}

func (h *Handler) view(s *Session) sessionView {
	lines := s.Cart.Lines()
	orderDiscount := s.Cart.OrderDiscount()
	out := sessionView{
		SessionID:     s.ID.String(),
		State:         s.Finalizer.State().String(),
		Lines:         make([]lineView, 0, len(lines)),
		OrderDiscount: orderDiscount,
		Summary:       pricing.Summarize(lines, orderDiscount),
	}
	for _, line := range lines {
		out.Lines = append(out.Lines, lineView{
			ProductID:   line.Product.ID,
			ProductName: line.Product.Name,
			Quantity:    line.Quantity,
			Modifiers:   line.Modifiers,
			Discounts:   line.Discounts,
			LineTotal:   pricing.RoundDisplay(pricing.LineTotal(line)),
		})
	}
	return out
}

func (h *Handler) session(w http.ResponseWriter, r *http.Request) (*Session, bool) {
	if h.Registry == nil {
		common.JSONError(w, http.StatusInternalServerError, common.CodeInternal, "session registry not configured", nil)
		return nil, false
	}
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		common.JSONError(w, http.StatusBadRequest, common.CodeBadRequest, "invalid session id", nil)
		return nil, false
	}
	s, err := h.Registry.Get(id)
	if err != nil {
		h.writeError(w, err)
		return nil, false
	}
	return s, true
}

func (h *Handler) lineIndex(w http.ResponseWriter, r *http.Request) (int, bool) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		common.JSONError(w, http.StatusBadRequest, common.CodeBadRequest, "invalid line index", nil)
		return 0, false
	}
	return index, true
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		common.JSONError(w, http.StatusBadRequest, common.CodeBadRequest, "invalid payload", nil)
		return false
	}
	if h.Validate != nil {
		if err := h.Validate.Struct(dst); err != nil {
			common.JSONError(w, http.StatusBadRequest, common.CodeBadRequest, err.Error(), nil)
			return false
		}
	}
	return true
}

func (h *Handler) decodeDiscount(w http.ResponseWriter, r *http.Request) (discount.Discount, bool) {
	var payload struct {
		Name        string           `json:"name" validate:"required"`
		Kind        string           `json:"kind" validate:"required,oneof=percentage fixed"`
		Value       decimal.Decimal  `json:"value"`
		MaxDiscount *decimal.Decimal `json:"maxDiscount"`
	}
	if !h.decode(w, r, &payload) {
		return discount.Discount{}, false
	}
	d := discount.Discount{
		Name:        payload.Name,
		Kind:        discount.Kind(payload.Kind),
		Value:       payload.Value,
		MaxDiscount: payload.MaxDiscount,
	}
	if err := d.Validate(); err != nil {
		common.JSONError(w, http.StatusBadRequest, common.CodeBadRequest, err.Error(), nil)
		return discount.Discount{}, false
	}
	return d, true
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case err == nil:
		common.JSONError(w, http.StatusInternalServerError, common.CodeInternal, "unknown error", nil)
	case errors.Is(err, ErrNotFound):
		common.JSONError(w, http.StatusNotFound, common.CodeNotFound, "session not found", nil)
	case errors.Is(err, catalog.ErrNotFound):
		common.JSONError(w, http.StatusNotFound, common.CodeNotFound, "product not found", nil)
	case errors.Is(err, cart.ErrInvalidReference):
		common.JSONError(w, http.StatusUnprocessableEntity, common.CodeInvalidReference, err.Error(), nil)
	case errors.Is(err, cart.ErrBusy):
		obs.FinalizeRejectedTotal.WithLabelValues("session_busy").Inc()
		common.JSONError(w, http.StatusConflict, common.CodeSessionBusy, "submission in flight, cart is read-only", nil)
	case errors.Is(err, sale.ErrAlreadyInProgress):
		obs.FinalizeRejectedTotal.WithLabelValues("already_in_progress").Inc()
		common.JSONError(w, http.StatusConflict, common.CodeAlreadyInProgress, "finalize already in progress", nil)
	case errors.Is(err, sale.ErrAlreadyCommitted):
		common.JSONError(w, http.StatusConflict, common.CodeAlreadyInProgress, "sale already committed", nil)
	case errors.Is(err, sale.ErrRepository):
		common.JSONError(w, http.StatusBadGateway, common.CodeRepositoryFailure, "sale submission failed, cart preserved", nil)
	case errors.Is(err, sale.ErrEmptyCart),
		errors.Is(err, sale.ErrInvalidPaymentMethod),
		errors.Is(err, discount.ErrUnknownKind),
		errors.Is(err, discount.ErrInvalidValue):
		common.JSONError(w, http.StatusBadRequest, common.CodeBadRequest, err.Error(), nil)
	default:
		var appErr *common.AppError
		if errors.As(err, &appErr) {
			common.JSONError(w, appErr.HTTPStatus, appErr.Code, appErr.Message, appErr.Details)
			return
		}
		common.JSONError(w, http.StatusInternalServerError, common.CodeInternal, err.Error(), nil)
	}
}
