package model

import (
	"errors"
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

func testPrices() PriceBook {
	return PriceBook{
		Items: map[uint64]decimal.Decimal{
			1: dec("2.50"), // arepa
			2: dec("8.00"), // parrilla
			3: dec("1.20"), // refresco
		},
		Variants: map[uint64]decimal.Decimal{
			10: dec("3.00"), // arepa reina pepiada
			11: dec("9.50"), // parrilla mixta
		},
	}
}

func TestPriceLinesTotal(t *testing.T) {
	lines, total, err := PriceLines([]LineInput{
		{MenuItemID: 1, Quantity: 2},
		{MenuItemID: 2, Quantity: 1},
	}, testPrices())
	if err != nil {
		t.Fatalf("PriceLines: %v", err)
	}
	if got, want := total.StringFixed(2), "13.00"; got != want {
		t.Errorf("total = %s, want %s", got, want)
	}
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2", len(lines))
	}
	if got, want := lines[0].Subtotal.StringFixed(2), "5.00"; got != want {
		t.Errorf("line 0 subtotal = %s, want %s", got, want)
	}
	for i, l := range lines {
		if l.KitchenState != KitchenStatePending {
			t.Errorf("line %d kitchen state = %q, want pending", i, l.KitchenState)
		}
	}
}

func TestPriceLinesVariantOverridesPrice(t *testing.T) {
	variant := uint64(10)
	lines, total, err := PriceLines([]LineInput{
		{MenuItemID: 1, VariantID: &variant, Quantity: 2},
	}, testPrices())
	if err != nil {
		t.Fatalf("PriceLines: %v", err)
	}
	if got, want := lines[0].UnitPrice.StringFixed(2), "3.00"; got != want {
		t.Errorf("unit price = %s, want variant price %s", got, want)
	}
	if got, want := total.StringFixed(2), "6.00"; got != want {
		t.Errorf("total = %s, want %s", got, want)
	}
}

func TestPriceLinesSubtotalOverride(t *testing.T) {
	discounted := dec("4.00")
	lines, total, err := PriceLines([]LineInput{
		{MenuItemID: 1, Quantity: 2, Subtotal: &discounted},
		{MenuItemID: 3, Quantity: 1},
	}, testPrices())
	if err != nil {
		t.Fatalf("PriceLines: %v", err)
	}
	if got, want := lines[0].Subtotal.StringFixed(2), "4.00"; got != want {
		t.Errorf("overridden subtotal = %s, want %s", got, want)
	}
	if got, want := total.StringFixed(2), "5.20"; got != want {
		t.Errorf("total = %s, want %s", got, want)
	}
}

func TestPriceLinesRejectsBadInput(t *testing.T) {
	missingVariant := uint64(99)
	tests := []struct {
		name  string
		input LineInput
	}{
		{"zero quantity", LineInput{MenuItemID: 1, Quantity: 0}},
		{"negative quantity", LineInput{MenuItemID: 1, Quantity: -3}},
		{"unknown item", LineInput{MenuItemID: 42, Quantity: 1}},
		{"unknown variant", LineInput{MenuItemID: 1, VariantID: &missingVariant, Quantity: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := PriceLines([]LineInput{tt.input}, testPrices())
			if !errors.Is(err, ErrInvalidLine) {
				t.Errorf("err = %v, want ErrInvalidLine", err)
			}
		})
	}
}

func TestPriceLinesOneBadLineRejectsAll(t *testing.T) {
	_, _, err := PriceLines([]LineInput{
		{MenuItemID: 1, Quantity: 1},
		{MenuItemID: 42, Quantity: 1},
	}, testPrices())
	if !errors.Is(err, ErrInvalidLine) {
		t.Fatalf("err = %v, want ErrInvalidLine", err)
	}
}

func TestPriceLinesEmptyInput(t *testing.T) {
	lines, total, err := PriceLines(nil, testPrices())
	if err != nil {
		t.Fatalf("PriceLines: %v", err)
	}
	if len(lines) != 0 || !total.IsZero() {
		t.Errorf("got %d lines total %s, want empty and zero", len(lines), total)
	}
}

func TestPriceLinesRounding(t *testing.T) {
	prices := PriceBook{Items: map[uint64]decimal.Decimal{7: dec("0.333")}}
	lines, total, err := PriceLines([]LineInput{{MenuItemID: 7, Quantity: 3}}, prices)
	if err != nil {
		t.Fatalf("PriceLines: %v", err)
	}
	if got, want := lines[0].Subtotal.StringFixed(2), "1.00"; got != want {
		t.Errorf("subtotal = %s, want %s", got, want)
	}
	if got, want := total.StringFixed(2), "1.00"; got != want {
		t.Errorf("total = %s, want %s", got, want)
	}
}
