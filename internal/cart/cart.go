package cart

import (
	"errors"

	"github.com/noah-isme/backend-pos/internal/catalog"
	"github.com/noah-isme/backend-pos/internal/discount"
)

// ErrInvalidReference indicates a line index or modifier/discount name that
// does not exist. Correct UI wiring never produces it, but every position
// lookup is bounds-checked anyway.
var ErrInvalidReference = errors.New("invalid line or modifier reference")

// ErrBusy is returned when a mutation is attempted while the cart is frozen
// for an in-flight sale submission.
var ErrBusy = errors.New("cart is busy with an in-flight submission")

// Selection records the chosen option for one modifier group.
type Selection struct {
	Group  string         `json:"group"`
	Option catalog.Option `json:"option"`
}

// LineItem is one product entry in the cart. The product reference is fixed
// for the item's lifetime; quantity, modifiers and discounts are editable.
type LineItem struct {
	Product   catalog.Product
	Quantity  int
	Modifiers []Selection
	Discounts []discount.Discount
}

// Store holds the ordered line items and the single optional order-level
// discount for one checkout session. It is owned exclusively by that session;
// all operations are plain state transitions with no internal locking.
type Store struct {
	lines         []LineItem
	orderDiscount *discount.Discount
	frozen        bool
}

// New returns an empty cart.
func New() *Store {
	return &Store{}
}

// AddItem increments the quantity of an existing line for the product, or
// appends a new line with quantity 1. Insertion order is display order.
func (s *Store) AddItem(p catalog.Product) error {
	if s.frozen {
		return ErrBusy
	}
	for i := range s.lines {
		if s.lines[i].Product.ID == p.ID {
			s.lines[i].Quantity++
			return nil
		}
	}
	s.lines = append(s.lines, LineItem{Product: p, Quantity: 1})
	return nil
}

// RemoveItem deletes the line for the product. Removing an absent product is
// a no-op.
func (s *Store) RemoveItem(productID string) error {
	if s.frozen {
		return ErrBusy
	}
	for i := range s.lines {
		if s.lines[i].Product.ID == productID {
			s.lines = append(s.lines[:i], s.lines[i+1:]...)
			return nil
		}
	}
	return nil
}

// ChangeQuantity adds delta to the line's quantity. A result of zero or less
// leaves the line unchanged; dropping a line is only ever done through
// RemoveItem.
func (s *Store) ChangeQuantity(productID string, delta int) error {
	if s.frozen {
		return ErrBusy
	}
	for i := range s.lines {
		if s.lines[i].Product.ID == productID {
			if next := s.lines[i].Quantity + delta; next >= 1 {
				s.lines[i].Quantity = next
			}
			return nil
		}
	}
	return nil
}

// ToggleModifier selects, replaces, or unselects an option within a modifier
// group on the line at index. Re-selecting the currently chosen option clears
// the group; choosing a different option replaces the previous one.
func (s *Store) ToggleModifier(index int, groupName, optionName string) error {
	if s.frozen {
		return ErrBusy
	}
	if index < 0 || index >= len(s.lines) {
		return ErrInvalidReference
	}
	line := &s.lines[index]
	group, ok := line.Product.FindGroup(groupName)
	if !ok {
		return ErrInvalidReference
	}
	option, ok := group.FindOption(optionName)
	if !ok {
		return ErrInvalidReference
	}
	for i, sel := range line.Modifiers {
		if sel.Group != groupName {
			continue
		}
		if sel.Option.Name == optionName {
			line.Modifiers = append(line.Modifiers[:i], line.Modifiers[i+1:]...)
		} else {
			line.Modifiers[i] = Selection{Group: groupName, Option: option}
		}
		return nil
	}
	line.Modifiers = append(line.Modifiers, Selection{Group: groupName, Option: option})
	return nil
}

// ToggleDiscount toggles membership of the discount (by name) in the line's
// discount list. Removing and re-adding moves it to the end, which changes
// the stacking order on purpose.
func (s *Store) ToggleDiscount(index int, d discount.Discount) error {
	if s.frozen {
		return ErrBusy
	}
	if index < 0 || index >= len(s.lines) {
		return ErrInvalidReference
	}
	if err := d.Validate(); err != nil {
		return err
	}
	line := &s.lines[index]
	for i, existing := range line.Discounts {
		if existing.Name == d.Name {
			line.Discounts = append(line.Discounts[:i], line.Discounts[i+1:]...)
			return nil
		}
	}
	line.Discounts = append(line.Discounts, d)
	return nil
}

// SetOrderDiscount replaces the single order-level discount slot. Passing nil
// clears it.
func (s *Store) SetOrderDiscount(d *discount.Discount) error {
	if s.frozen {
		return ErrBusy
	}
	if d == nil {
		s.orderDiscount = nil
		return nil
	}
	if err := d.Validate(); err != nil {
		return err
	}
	copied := *d
	s.orderDiscount = &copied
	return nil
}

// Reset clears all lines and the order discount, returning the cart to its
// initial state for the next checkout session.
func (s *Store) Reset() {
	s.lines = nil
	s.orderDiscount = nil
	s.frozen = false
}

// Freeze marks the cart read-only while a submission is in flight.
func (s *Store) Freeze() { s.frozen = true }

// Unfreeze lifts the submission freeze.
func (s *Store) Unfreeze() { s.frozen = false }

// Frozen reports whether the cart currently rejects mutations.
func (s *Store) Frozen() bool { return s.frozen }

// Len returns the number of lines.
func (s *Store) Len() int { return len(s.lines) }

// Lines returns a defensive copy of the line items in display order.
func (s *Store) Lines() []LineItem {
	out := make([]LineItem, len(s.lines))
	for i, line := range s.lines {
		out[i] = LineItem{
			Product:   line.Product,
			Quantity:  line.Quantity,
			Modifiers: append([]Selection(nil), line.Modifiers...),
			Discounts: append([]discount.Discount(nil), line.Discounts...),
		}
	}
	return out
}

// OrderDiscount returns a copy of the order-level discount, or nil.
func (s *Store) OrderDiscount() *discount.Discount {
	if s.orderDiscount == nil {
		return nil
	}
	copied := *s.orderDiscount
	return &copied
}
