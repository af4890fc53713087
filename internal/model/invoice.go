package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Invoice is the closing financial record of an order.  It fixes the
// USD total and its VES conversion at issuance time; later rate
// changes never alter an issued invoice.  Exactly one invoice exists
// per closed order.
//
// Fields:
//  ID            – primary key identifier.
//  OrderID       – the order this invoice closed.
//  Number        – unique human-assigned invoice number.
//  IssuedAt      – issuance timestamp.
//  Customer      – customer name as printed.
//  PaymentMethod – free-form payment method ("efectivo", "tarjeta", ...).
//  TotalUSD      – order total in US dollars.
//  TotalVES      – TotalUSD converted at the rate of the day.
type Invoice struct {
	ID            uint64          // invoices.id
	OrderID       uint64          // invoices.order_id
	Number        string          // invoices.invoice_number
	IssuedAt      time.Time       // invoices.issued_at
	Customer      string          // invoices.customer_name
	PaymentMethod string          // invoices.payment_method
	TotalUSD      decimal.Decimal // invoices.total_usd
	TotalVES      decimal.Decimal // invoices.total_ves
}

// InvoiceLine is one line of an issued invoice joined with catalog
// names, as needed by the rendering layer.
type InvoiceLine struct {
	ItemName    string          `json:"item_name"`
	VariantName string          `json:"variant_name,omitempty"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}
