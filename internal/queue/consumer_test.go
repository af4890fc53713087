package queue

import (
	"strings"
	"testing"
)

func TestFormatKitchenLine(t *testing.T) {
	ev := OrderConfirmedEvent{
		OrderID:     7,
		TableName:   "P3",
		Customer:    "Ana",
		Total:       "13.00",
		ConfirmedAt: "2025-06-01T13:00:00Z",
		Lines: []OrderConfirmedLine{
			{ItemName: "Arepa", Quantity: 2},
			{ItemName: "Parrilla", Quantity: 1},
		},
	}
	line := FormatKitchenLine(ev)
	if !strings.HasSuffix(line, "\n") {
		t.Error("line should end with newline")
	}
	for _, want := range []string{"order_id=7", `table="P3"`, `customer="Ana"`, "13.00 USD", "2x Arepa", "1x Parrilla"} {
		if !strings.Contains(line, want) {
			t.Errorf("line missing %q: %s", want, line)
		}
	}
}

func TestFormatKitchenLineWalkIn(t *testing.T) {
	line := FormatKitchenLine(OrderConfirmedEvent{OrderID: 9, Customer: "Luis", Total: "2.50"})
	if !strings.Contains(line, `table="-"`) {
		t.Errorf("walk-in order should show a dash for the table: %s", line)
	}
	if !strings.Contains(line, "items=[]") {
		t.Errorf("empty line set should render as []: %s", line)
	}
}
