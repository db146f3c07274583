package sale

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/noah-isme/backend-pos/internal/cart"
	"github.com/noah-isme/backend-pos/internal/discount"
	"github.com/noah-isme/backend-pos/internal/events"
	"github.com/noah-isme/backend-pos/internal/pricing"
)

// State tracks a checkout session's finalization lifecycle.
type State int

const (
	StateOpen State = iota
	StateSubmitting
	StateCommitted
	StateFailed
)

// String returns the lowercase state name.
func (s State) String() string {
	switch s {
	case StateOpen:
		return "open"
	case StateSubmitting:
		return "submitting"
	case StateCommitted:
		return "committed"
	case StateFailed:
		return "failed"
	}
	return "unknown"
}

var (
	// ErrAlreadyInProgress is returned when finalize is called while a
	// previous attempt is still in flight.
	ErrAlreadyInProgress = errors.New("finalize already in progress")
	// ErrAlreadyCommitted is returned when finalize is called after the
	// session's sale has been committed.
	ErrAlreadyCommitted = errors.New("sale already committed")
	// ErrEmptyCart is returned when finalizing a cart with no lines.
	ErrEmptyCart = errors.New("cart is empty")
	// ErrRepository wraps failures reported by the sale repository. The cart
	// is left untouched and the session may retry.
	ErrRepository = errors.New("sale repository failure")
)

// Finalizer converts a cart plus payment outcome into an immutable sale
// record. One finalizer serves one checkout session.
type Finalizer struct {
	StoreID string
	Cart    *cart.Store
	Repo    Repository
	Events  *events.Bus

	mu    sync.Mutex
	state State
}

// State returns the current lifecycle state.
func (f *Finalizer) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Finalize snapshots the cart, submits it exactly once, and returns the
// repository-assigned record. While the submission is in flight the cart is
// frozen and a second Finalize fails with ErrAlreadyInProgress. On repository
// failure the cart is unfrozen and untouched so the session may retry; a
// retry from the failed state behaves like a fresh attempt.
func (f *Finalizer) Finalize(ctx context.Context, method PaymentMethod, details json.RawMessage) (Record, error) {
	if f == nil || f.Cart == nil || f.Repo == nil {
		return Record{}, errors.New("finalizer not configured")
	}
	if !method.Valid() {
		return Record{}, fmt.Errorf("%w: %q", ErrInvalidPaymentMethod, method)
	}

	f.mu.Lock()
	switch f.state {
	case StateSubmitting:
		f.mu.Unlock()
		return Record{}, ErrAlreadyInProgress
	case StateCommitted:
		f.mu.Unlock()
		return Record{}, ErrAlreadyCommitted
	}
	if f.Cart.Len() == 0 {
		f.mu.Unlock()
		return Record{}, ErrEmptyCart
	}
	f.state = StateSubmitting
	f.Cart.Freeze()
	sub := f.buildSubmission(method, details)
	f.mu.Unlock()

	rec, err := f.Repo.Create(ctx, sub)

	f.mu.Lock()
	defer f.mu.Unlock()
	if err != nil {
		f.state = StateFailed
		f.Cart.Unfreeze()
		return Record{}, fmt.Errorf("%w: %v", ErrRepository, err)
	}
	f.state = StateCommitted
	f.emitCommitted(ctx, rec)
	return rec, nil
}

// buildSubmission snapshots the cart. The order-level discount, when present,
// is appended to every line's discount list: the persisted record carries no
// separate order-level slot.
func (f *Finalizer) buildSubmission(method PaymentMethod, details json.RawMessage) Submission {
	lines := f.Cart.Lines()
	orderDiscount := f.Cart.OrderDiscount()

	items := make([]ItemSnapshot, 0, len(lines))
	for _, line := range lines {
		discounts := append([]discount.Discount(nil), line.Discounts...)
		if orderDiscount != nil {
			discounts = append(discounts, *orderDiscount)
		}
		items = append(items, ItemSnapshot{
			ProductID:       line.Product.ID,
			Quantity:        line.Quantity,
			Modifiers:       line.Modifiers,
			Discounts:       discounts,
			UnitPriceAtSale: line.Product.UnitPrice,
		})
	}
	return Submission{
		StoreID:        f.StoreID,
		Items:          items,
		Total:          pricing.RoundDisplay(pricing.GrandTotal(lines, orderDiscount)),
		PaymentMethod:  method,
		PaymentDetails: details,
	}
}

func (f *Finalizer) emitCommitted(ctx context.Context, rec Record) {
	if f.Events == nil || rec.ID == uuid.Nil {
		return
	}
	_, _ = f.Events.Emit(ctx, events.TopicSaleCommitted, rec.ID, map[string]any{
		"saleId":  rec.ID.String(),
		"storeId": rec.StoreID,
		"total":   rec.Total.String(),
	})
}
