package cart_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-pos/internal/cart"
	"github.com/noah-isme/backend-pos/internal/catalog"
	"github.com/noah-isme/backend-pos/internal/discount"
)

func latte() catalog.Product {
	return catalog.Product{
		ID:        "p-latte",
		Name:      "Latte",
		UnitPrice: decimal.NewFromInt(10),
		Stock:     50,
		ModifierGroups: []catalog.ModifierGroup{
			{
				Name: "Size",
				Options: []catalog.Option{
					{Name: "Small", PriceDelta: decimal.Zero},
					{Name: "Large", PriceDelta: decimal.NewFromInt(2)},
				},
			},
		},
	}
}

func TestAddItemMergesByProduct(t *testing.T) {
	s := cart.New()
	require.NoError(t, s.AddItem(latte()))
	require.NoError(t, s.AddItem(latte()))
	lines := s.Lines()
	require.Len(t, lines, 1)
	require.Equal(t, 2, lines[0].Quantity)
}

func TestRemoveItemIdempotent(t *testing.T) {
	s := cart.New()
	require.NoError(t, s.AddItem(latte()))
	require.NoError(t, s.RemoveItem("p-latte"))
	require.NoError(t, s.RemoveItem("p-latte"))
	require.Zero(t, s.Len())
}

func TestChangeQuantityRejectsDropBelowOne(t *testing.T) {
	s := cart.New()
	require.NoError(t, s.AddItem(latte()))
	require.NoError(t, s.ChangeQuantity("p-latte", -1))
	require.Equal(t, 1, s.Lines()[0].Quantity)

	require.NoError(t, s.ChangeQuantity("p-latte", 3))
	require.NoError(t, s.ChangeQuantity("p-latte", -4))
	require.Equal(t, 4, s.Lines()[0].Quantity)
}

func TestToggleModifierIsItsOwnInverse(t *testing.T) {
	s := cart.New()
	require.NoError(t, s.AddItem(latte()))

	require.NoError(t, s.ToggleModifier(0, "Size", "Large"))
	require.Len(t, s.Lines()[0].Modifiers, 1)
	require.Equal(t, "Large", s.Lines()[0].Modifiers[0].Option.Name)

	// Selecting a different option replaces the first.
	require.NoError(t, s.ToggleModifier(0, "Size", "Small"))
	require.Len(t, s.Lines()[0].Modifiers, 1)
	require.Equal(t, "Small", s.Lines()[0].Modifiers[0].Option.Name)

	// Re-selecting the current option clears the group.
	require.NoError(t, s.ToggleModifier(0, "Size", "Small"))
	require.Empty(t, s.Lines()[0].Modifiers)
}

func TestToggleModifierBoundsChecked(t *testing.T) {
	s := cart.New()
	require.ErrorIs(t, s.ToggleModifier(0, "Size", "Large"), cart.ErrInvalidReference)

	require.NoError(t, s.AddItem(latte()))
	require.ErrorIs(t, s.ToggleModifier(1, "Size", "Large"), cart.ErrInvalidReference)
	require.ErrorIs(t, s.ToggleModifier(0, "Milk", "Oat"), cart.ErrInvalidReference)
	require.ErrorIs(t, s.ToggleModifier(0, "Size", "Venti"), cart.ErrInvalidReference)
}

func TestToggleDiscountPreservesInsertionOrder(t *testing.T) {
	s := cart.New()
	require.NoError(t, s.AddItem(latte()))

	fixed := discount.Discount{Name: "Fixed5", Kind: discount.KindFixed, Value: decimal.NewFromInt(5)}
	pct := discount.Discount{Name: "Ten", Kind: discount.KindPercentage, Value: decimal.NewFromInt(10)}

	require.NoError(t, s.ToggleDiscount(0, fixed))
	require.NoError(t, s.ToggleDiscount(0, pct))
	names := discountNames(s.Lines()[0].Discounts)
	require.Equal(t, []string{"Fixed5", "Ten"}, names)

	// Removing and re-adding moves the discount to the end.
	require.NoError(t, s.ToggleDiscount(0, fixed))
	require.NoError(t, s.ToggleDiscount(0, fixed))
	names = discountNames(s.Lines()[0].Discounts)
	require.Equal(t, []string{"Ten", "Fixed5"}, names)
}

func TestToggleDiscountRejectsMalformed(t *testing.T) {
	s := cart.New()
	require.NoError(t, s.AddItem(latte()))
	bad := discount.Discount{Name: "Weird", Kind: discount.Kind("bogo"), Value: decimal.NewFromInt(1)}
	require.ErrorIs(t, s.ToggleDiscount(0, bad), discount.ErrUnknownKind)
}

func TestSetOrderDiscountReplacesSlot(t *testing.T) {
	s := cart.New()
	first := discount.Discount{Name: "A", Kind: discount.KindFixed, Value: decimal.NewFromInt(1)}
	second := discount.Discount{Name: "B", Kind: discount.KindPercentage, Value: decimal.NewFromInt(5)}

	require.NoError(t, s.SetOrderDiscount(&first))
	require.NoError(t, s.SetOrderDiscount(&second))
	require.Equal(t, "B", s.OrderDiscount().Name)

	require.NoError(t, s.SetOrderDiscount(nil))
	require.Nil(t, s.OrderDiscount())
}

func TestFrozenCartRejectsMutations(t *testing.T) {
	s := cart.New()
	require.NoError(t, s.AddItem(latte()))
	s.Freeze()

	require.ErrorIs(t, s.AddItem(latte()), cart.ErrBusy)
	require.ErrorIs(t, s.RemoveItem("p-latte"), cart.ErrBusy)
	require.ErrorIs(t, s.ChangeQuantity("p-latte", 1), cart.ErrBusy)
	require.ErrorIs(t, s.ToggleModifier(0, "Size", "Large"), cart.ErrBusy)
	d := discount.Discount{Name: "X", Kind: discount.KindFixed, Value: decimal.NewFromInt(1)}
	require.ErrorIs(t, s.ToggleDiscount(0, d), cart.ErrBusy)
	require.ErrorIs(t, s.SetOrderDiscount(&d), cart.ErrBusy)

	s.Unfreeze()
	require.NoError(t, s.AddItem(latte()))
	require.Equal(t, 2, s.Lines()[0].Quantity)
}

func TestResetClearsEverything(t *testing.T) {
	s := cart.New()
	require.NoError(t, s.AddItem(latte()))
	d := discount.Discount{Name: "X", Kind: discount.KindFixed, Value: decimal.NewFromInt(1)}
	require.NoError(t, s.SetOrderDiscount(&d))

	s.Reset()
	require.Zero(t, s.Len())
	require.Nil(t, s.OrderDiscount())
	require.False(t, s.Frozen())
}

func discountNames(ds []discount.Discount) []string {
	names := make([]string, len(ds))
	for i, d := range ds {
		names[i] = d.Name
	}
	return names
}
