package discount

import (
	"errors"

	"github.com/shopspring/decimal"
)

// Kind enumerates the supported discount strategies.
type Kind string

const (
	// KindPercentage reduces the base amount by a percentage of itself.
	KindPercentage Kind = "percentage"
	// KindFixed subtracts a fixed monetary amount.
	KindFixed Kind = "fixed"
)

// ErrUnknownKind is returned when a discount carries an unrecognised kind.
var ErrUnknownKind = errors.New("unknown discount kind")

// ErrInvalidValue is returned when a discount value is out of range for its kind.
var ErrInvalidValue = errors.New("invalid discount value")

// Discount describes a named price reduction. MaxDiscount caps the absolute
// amount subtracted and is only meaningful for order-level percentage discounts.
type Discount struct {
	Name        string           `json:"name"`
	Kind        Kind             `json:"kind"`
	Value       decimal.Decimal  `json:"value"`
	MaxDiscount *decimal.Decimal `json:"maxDiscount,omitempty"`
}

// Validate rejects malformed discounts before they can reach pricing.
func (d Discount) Validate() error {
	switch d.Kind {
	case KindPercentage:
		if d.Value.IsNegative() || d.Value.GreaterThan(decimal.NewFromInt(100)) {
			return ErrInvalidValue
		}
	case KindFixed:
		if d.Value.IsNegative() {
			return ErrInvalidValue
		}
	default:
		return ErrUnknownKind
	}
	if d.MaxDiscount != nil && d.MaxDiscount.IsNegative() {
		return ErrInvalidValue
	}
	return nil
}

var hundred = decimal.NewFromInt(100)

// Apply reduces a line amount by the given discount. Percentage discounts
// multiply by (1 - value/100) so stacked percentages compose multiplicatively
// in application order. Fixed discounts subtract value once per unit of
// quantity. The result is not clamped at zero; an aggressive stack may drive
// a line negative and the caller decides how to treat that.
func Apply(amount decimal.Decimal, d Discount, qty int) decimal.Decimal {
	switch d.Kind {
	case KindPercentage:
		return amount.Mul(decimal.NewFromInt(1).Sub(d.Value.Div(hundred)))
	case KindFixed:
		return amount.Sub(d.Value.Mul(decimal.NewFromInt(int64(qty))))
	default:
		return amount
	}
}

// ApplyOrder reduces an order subtotal by the given discount. A percentage
// discount subtracts value/100 of the subtotal, capped by MaxDiscount when
// set. A fixed discount subtracts its value exactly once since it applies to
// the whole order. Like Apply, the result is not clamped at zero.
func ApplyOrder(amount decimal.Decimal, d Discount) decimal.Decimal {
	switch d.Kind {
	case KindPercentage:
		cut := amount.Mul(d.Value).Div(hundred)
		if d.MaxDiscount != nil && cut.GreaterThan(*d.MaxDiscount) {
			cut = *d.MaxDiscount
		}
		return amount.Sub(cut)
	case KindFixed:
		return amount.Sub(d.Value)
	default:
		return amount
	}
}
