package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/noah-isme/backend-pos/internal/cart"
	"github.com/noah-isme/backend-pos/internal/discount"
)

// Money is a decimal monetary value. All intermediate arithmetic stays at
// full precision; rounding happens only at the display/submit boundary so
// stacking order fully determines the result.
type Money = decimal.Decimal

// Summary aggregates the computed totals for a cart.
type Summary struct {
	Subtotal Money `json:"subtotal"`
	Discount Money `json:"discount"`
	Total    Money `json:"total"`
}

// LineTotal computes one line's amount: unit price times quantity, plus every
// selected modifier delta times quantity, then the line's discounts applied
// in insertion order, each to the running total of the previous step. The
// result may be negative; only the grand total is clamped.
func LineTotal(item cart.LineItem) Money {
	qty := decimal.NewFromInt(int64(item.Quantity))
	total := item.Product.UnitPrice.Mul(qty)
	for _, sel := range item.Modifiers {
		total = total.Add(sel.Option.PriceDelta.Mul(qty))
	}
	for _, d := range item.Discounts {
		total = discount.Apply(total, d, item.Quantity)
	}
	return total
}

// Subtotal sums LineTotal over all lines.
func Subtotal(lines []cart.LineItem) Money {
	total := decimal.Zero
	for _, line := range lines {
		total = total.Add(LineTotal(line))
	}
	return total
}

// GrandTotal applies the optional order-level discount to the subtotal and
// clamps the amount due at zero. A fully discounted cart never presents a
// negative amount to payment.
func GrandTotal(lines []cart.LineItem, orderDiscount *discount.Discount) Money {
	total := Subtotal(lines)
	if orderDiscount != nil {
		total = discount.ApplyOrder(total, *orderDiscount)
	}
	if total.IsNegative() {
		return decimal.Zero
	}
	return total
}

// Summarize computes the display totals for a cart in one pass.
func Summarize(lines []cart.LineItem, orderDiscount *discount.Discount) Summary {
	subtotal := Subtotal(lines)
	total := subtotal
	if orderDiscount != nil {
		total = discount.ApplyOrder(total, *orderDiscount)
	}
	if total.IsNegative() {
		total = decimal.Zero
	}
	return Summary{
		Subtotal: RoundDisplay(subtotal),
		Discount: RoundDisplay(subtotal.Sub(total)),
		Total:    RoundDisplay(total),
	}
}

// RoundDisplay rounds to two decimals, half up, for display or submission.
func RoundDisplay(m Money) Money {
	return m.Round(2)
}
