package model

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Order states.  An order is open from its first confirmation until an
// invoice closes it; cancellation deletes the order outright, so no
// cancelled state exists.
const (
	OrderStateOpen   = "open"
	OrderStateClosed = "closed"
)

// ErrInvalidLine marks a requested order line that failed validation:
// a non-positive quantity, a menu item or variant that does not exist,
// or a malformed subtotal override.  Wrapped errors carry the detail.
var ErrInvalidLine = errors.New("invalid order line")

// Order is the set of items requested for a table (or a walk-in
// customer, in which case TableID is nil) until it is closed or
// cancelled.  At most one open order may exist per table; the storage
// layer enforces this with a unique key over a generated column.
//
// Fields:
//  ID        – primary key identifier.
//  TableID   – table reference, nil for walk-in orders.
//  Customer  – customer display name.
//  State     – open or closed.
//  Total     – sum of line subtotals in USD.
//  CreatedAt – first confirmation timestamp.
//  UpdatedAt – last re-confirmation timestamp, nil until then.
//  ClosedAt  – invoice issuance timestamp, nil while open.
type Order struct {
	ID        uint64          // orders.id
	TableID   *uint64         // orders.table_id (nullable)
	Customer  string          // orders.customer_name
	State     string          // orders.state
	Total     decimal.Decimal // orders.total
	CreatedAt time.Time       // orders.created_at
	UpdatedAt *time.Time      // orders.updated_at (nullable)
	ClosedAt  *time.Time      // orders.closed_at (nullable)
}

// OrderLine is one catalog item (optionally a specific variant of it)
// plus a quantity within an order.  Lines are replaced wholesale on
// every re-confirmation of their order, which also resets KitchenState
// to pending.
type OrderLine struct {
	ID           uint64          // order_lines.id
	OrderID      uint64          // order_lines.order_id
	MenuItemID   uint64          // order_lines.menu_item_id
	VariantID    *uint64         // order_lines.variant_id (nullable)
	ItemName     string          // joined from menu_items.name, empty if the item was removed from the catalog
	Quantity     int             // order_lines.quantity
	UnitPrice    decimal.Decimal // order_lines.unit_price
	Subtotal     decimal.Decimal // order_lines.subtotal
	KitchenState string          // order_lines.kitchen_state
}

// LineInput is a requested order line as received from the
// presentation layer, before pricing and validation.
type LineInput struct {
	MenuItemID uint64
	VariantID  *uint64
	Quantity   int
	// Subtotal overrides the computed quantity × unit price when set
	// (manual discounts at the till).
	Subtotal *decimal.Decimal
}

// PriceBook is a snapshot of catalog prices taken inside the
// confirmation transaction.  Only the items and variants referenced by
// the requested lines need to be present.
type PriceBook struct {
	Items    map[uint64]decimal.Decimal
	Variants map[uint64]decimal.Decimal
}

// PriceLines validates and prices a requested line set against a price
// snapshot.  Each line must have a positive quantity and reference an
// existing item; a variant, when given, must exist and its price
// overrides the item price.  The subtotal is quantity × unit price
// rounded to two decimals unless the input carries an override.  It
// returns the normalized lines and the order total, or ErrInvalidLine
// before any pricing took place.
func PriceLines(inputs []LineInput, prices PriceBook) ([]OrderLine, decimal.Decimal, error) {
	lines := make([]OrderLine, 0, len(inputs))
	total := decimal.Zero
	for _, in := range inputs {
		if in.Quantity <= 0 {
			return nil, decimal.Zero, fmt.Errorf("%w: quantity must be positive (item %d)", ErrInvalidLine, in.MenuItemID)
		}
		unit, ok := prices.Items[in.MenuItemID]
		if !ok {
			return nil, decimal.Zero, fmt.Errorf("%w: menu item %d does not exist", ErrInvalidLine, in.MenuItemID)
		}
		if in.VariantID != nil {
			vp, ok := prices.Variants[*in.VariantID]
			if !ok {
				return nil, decimal.Zero, fmt.Errorf("%w: variant %d does not exist", ErrInvalidLine, *in.VariantID)
			}
			unit = vp
		}
		subtotal := unit.Mul(decimal.NewFromInt(int64(in.Quantity))).Round(2)
		if in.Subtotal != nil {
			subtotal = in.Subtotal.Round(2)
		}
		lines = append(lines, OrderLine{
			MenuItemID:   in.MenuItemID,
			VariantID:    in.VariantID,
			Quantity:     in.Quantity,
			UnitPrice:    unit,
			Subtotal:     subtotal,
			KitchenState: KitchenStatePending,
		})
		total = total.Add(subtotal)
	}
	return lines, total.Round(2), nil
}
