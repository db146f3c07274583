package catalog

import (
	"github.com/shopspring/decimal"

	"github.com/noah-isme/backend-pos/internal/discount"
)

// Option adjusts a line's unit price when selected within its group.
type Option struct {
	Name       string          `json:"name"`
	PriceDelta decimal.Decimal `json:"priceDelta"`
}

// ModifierGroup is a named set of mutually exclusive options.
type ModifierGroup struct {
	Name    string   `json:"name"`
	Options []Option `json:"options"`
}

// Product is a read-only catalog record consumed by the engine.
type Product struct {
	ID             string              `json:"id"`
	Name           string              `json:"name"`
	CategoryID     string              `json:"categoryId,omitempty"`
	UnitPrice      decimal.Decimal     `json:"unitPrice"`
	Stock          int                 `json:"stock"`
	ModifierGroups []ModifierGroup     `json:"modifierGroups"`
	Discounts      []discount.Discount `json:"discounts"`
}

// Category is used by the POS front end to filter products; the engine itself
// never consumes it.
type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// FindGroup returns the named modifier group if the product defines it.
func (p Product) FindGroup(name string) (ModifierGroup, bool) {
	for _, g := range p.ModifierGroups {
		if g.Name == name {
			return g, true
		}
	}
	return ModifierGroup{}, false
}

// FindOption returns the named option within the group if present.
func (g ModifierGroup) FindOption(name string) (Option, bool) {
	for _, o := range g.Options {
		if o.Name == name {
			return o, true
		}
	}
	return Option{}, false
}
