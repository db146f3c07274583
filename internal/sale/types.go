package sale

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/noah-isme/backend-pos/internal/cart"
	"github.com/noah-isme/backend-pos/internal/discount"
)

// PaymentMethod identifies how the customer paid. The engine treats payment
// details as opaque and already validated.
type PaymentMethod string

const (
	PaymentCash PaymentMethod = "cash"
	PaymentCard PaymentMethod = "card"
	PaymentQR   PaymentMethod = "qr"
)

// ErrInvalidPaymentMethod is returned for methods outside cash/card/qr.
var ErrInvalidPaymentMethod = errors.New("invalid payment method")

// Valid reports whether the method is one of the supported kinds.
func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentCash, PaymentCard, PaymentQR:
		return true
	}
	return false
}

// ItemSnapshot captures one line at the moment of sale. The discount list
// includes the order-level discount when one was applied; the persisted
// record has no separate order-level field, so it is denormalised onto every
// line.
type ItemSnapshot struct {
	ProductID       string              `json:"productId"`
	Quantity        int                 `json:"quantity"`
	Modifiers       []cart.Selection    `json:"modifiers"`
	Discounts       []discount.Discount `json:"discounts"`
	UnitPriceAtSale decimal.Decimal     `json:"unitPriceAtSale"`
}

// Submission is the immutable payload sent to the sale repository.
type Submission struct {
	StoreID        string          `json:"storeId"`
	Items          []ItemSnapshot  `json:"items"`
	Total          decimal.Decimal `json:"total"`
	PaymentMethod  PaymentMethod   `json:"paymentMethod"`
	PaymentDetails json.RawMessage `json:"paymentDetails"`
}

// Record is the submission echoed back by the repository with its assigned
// identity. Once created it is never mutated.
type Record struct {
	Submission
	ID        uuid.UUID `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
}

// Repository persists finalized sales. Implementations must create exactly
// one record per successful call; the engine never retries internally.
type Repository interface {
	Create(ctx context.Context, sub Submission) (Record, error)
	List(ctx context.Context, storeID string, limit, offset int) ([]Record, error)
	Get(ctx context.Context, id uuid.UUID) (Record, error)
}
