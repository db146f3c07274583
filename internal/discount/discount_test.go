package discount

import (
	"testing"

	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestApplyPercentage(t *testing.T) {
	d := Discount{Name: "Happy Hour", Kind: KindPercentage, Value: dec("10")}
	got := Apply(dec("50"), d, 1)
	if !got.Equal(dec("45")) {
		t.Fatalf("expected 45, got %s", got)
	}
}

func TestApplyPercentageStacksMultiplicatively(t *testing.T) {
	d := Discount{Name: "Ten", Kind: KindPercentage, Value: dec("10")}
	got := Apply(Apply(dec("100"), d, 1), d, 1)
	if !got.Equal(dec("81")) {
		t.Fatalf("two 10%% discounts should yield 81, got %s", got)
	}
}

func TestApplyFixedScalesByQuantity(t *testing.T) {
	d := Discount{Name: "Loyalty", Kind: KindFixed, Value: dec("2")}
	got := Apply(dec("30"), d, 3)
	if !got.Equal(dec("24")) {
		t.Fatalf("expected 24, got %s", got)
	}
}

func TestApplyDoesNotClampNegative(t *testing.T) {
	d := Discount{Name: "Deep", Kind: KindFixed, Value: dec("20")}
	got := Apply(dec("10"), d, 1)
	if !got.Equal(dec("-10")) {
		t.Fatalf("resolver must not clamp, got %s", got)
	}
}

func TestApplyOrderPercentageCapped(t *testing.T) {
	cap := dec("50")
	d := Discount{Name: "Grand Opening", Kind: KindPercentage, Value: dec("50"), MaxDiscount: &cap}
	got := ApplyOrder(dec("200"), d)
	if !got.Equal(dec("150")) {
		t.Fatalf("expected 150, got %s", got)
	}
}

func TestApplyOrderFixedNotScaled(t *testing.T) {
	d := Discount{Name: "Flat", Kind: KindFixed, Value: dec("5")}
	got := ApplyOrder(dec("100"), d)
	if !got.Equal(dec("95")) {
		t.Fatalf("expected 95, got %s", got)
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name    string
		d       Discount
		wantErr error
	}{
		{"percentage ok", Discount{Kind: KindPercentage, Value: dec("15")}, nil},
		{"percentage above 100", Discount{Kind: KindPercentage, Value: dec("101")}, ErrInvalidValue},
		{"negative fixed", Discount{Kind: KindFixed, Value: dec("-1")}, ErrInvalidValue},
		{"unknown kind", Discount{Kind: Kind("bogo"), Value: dec("1")}, ErrUnknownKind},
	}
	for _, tc := range cases {
		if err := tc.d.Validate(); err != tc.wantErr {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.wantErr, err)
		}
	}
}
