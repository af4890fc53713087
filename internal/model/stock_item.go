package model

import "github.com/shopspring/decimal"

// StockItem is one raw-ingredient inventory position.  Stock is kept
// separate from the menu catalog; order confirmation never touches it.
// Quantities change only through the batch-adjustment operation and can
// never go negative — the application validates against a locked
// snapshot and the storage layer additionally enforces a CHECK
// constraint.
//
// Fields:
//  ID       – primary key identifier.
//  Name     – ingredient name.
//  Quantity – units on hand, >= 0.
//  Price    – unit price in USD.
type StockItem struct {
	ID       uint64          // stock_items.id
	Name     string          // stock_items.name
	Quantity int64           // stock_items.quantity
	Price    decimal.Decimal // stock_items.price
}
