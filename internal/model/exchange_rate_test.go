package model

import "testing"

func TestToVes(t *testing.T) {
	r := ExchangeRate{Rate: dec("40")}
	if got, want := r.ToVes(dec("10")).StringFixed(2), "400.00"; got != want {
		t.Errorf("ToVes(10) = %s, want %s", got, want)
	}
	r = ExchangeRate{Rate: dec("36.55")}
	if got, want := r.ToVes(dec("12.99")).StringFixed(2), "474.78"; got != want {
		t.Errorf("ToVes(12.99) = %s, want %s", got, want)
	}
}

func TestToUsd(t *testing.T) {
	r := ExchangeRate{Rate: dec("40")}
	if got, want := r.ToUsd(dec("400")).StringFixed(2), "10.00"; got != want {
		t.Errorf("ToUsd(400) = %s, want %s", got, want)
	}
}

func TestToUsdZeroRate(t *testing.T) {
	r := ExchangeRate{}
	if got := r.ToUsd(dec("100")); !got.IsZero() {
		t.Errorf("ToUsd with zero rate = %s, want 0", got)
	}
}
