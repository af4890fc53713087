// Package queue defines message payloads exchanged over the message broker.
package queue

// OrderConfirmedLine is the kitchen-facing summary of one order line.
type OrderConfirmedLine struct {
	ItemName string `json:"item_name"`
	Quantity int    `json:"quantity"`
}

// OrderConfirmedEvent is published when an order is confirmed (created
// or re-confirmed after edits). It carries enough for the kitchen
// display and downstream logging without querying the primary database.
type OrderConfirmedEvent struct {
	OrderID     uint64               `json:"order_id"`
	TableName   string               `json:"table_name,omitempty"`
	Customer    string               `json:"customer_name"`
	Lines       []OrderConfirmedLine `json:"lines"`
	Total       string               `json:"total"`
	ConfirmedAt string               `json:"confirmed_at"`
}

// InvoiceIssuedEvent is published when an invoice is issued and its
// order closed. Amounts are fixed-point strings, two decimals.
type InvoiceIssuedEvent struct {
	InvoiceID uint64 `json:"invoice_id"`
	Number    string `json:"invoice_number"`
	OrderID   uint64 `json:"order_id"`
	TotalUSD  string `json:"total_usd"`
	TotalVES  string `json:"total_ves"`
	IssuedAt  string `json:"issued_at"`
}
