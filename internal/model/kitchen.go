package model

import "time"

// Kitchen preparation states for a single order line.  The tracker
// imposes no transition order: lines may move backward (e.g. a dish
// sent back to the stove) as freely as forward.
const (
	KitchenStatePending   = "pending"
	KitchenStatePreparing = "preparing"
	KitchenStateReady     = "ready"
)

// ValidKitchenState reports whether s is one of the known kitchen states.
func ValidKitchenState(s string) bool {
	switch s {
	case KitchenStatePending, KitchenStatePreparing, KitchenStateReady:
		return true
	}
	return false
}

// Ticket is one open order as shown on the kitchen board: the order
// header joined with its table name plus every line and its
// preparation state.  Orders whose lines are all ready drop off the
// board.
type Ticket struct {
	OrderID        uint64       `json:"order_id"`
	TableName      string       `json:"table_name"`
	Customer       string       `json:"customer"`
	CreatedAt      time.Time    `json:"created_at"`
	ElapsedMinutes int          `json:"elapsed_minutes"`
	Lines          []TicketLine `json:"lines"`
}

// TicketLine is the kitchen view of one order line.
type TicketLine struct {
	LineID       uint64 `json:"line_id"`
	ItemName     string `json:"item_name"`
	Quantity     int    `json:"quantity"`
	KitchenState string `json:"kitchen_state"`
}

// KitchenCounts aggregates line counts per preparation state across
// all open orders, for the board header.
type KitchenCounts struct {
	Pending   int `json:"pending"`
	Preparing int `json:"preparing"`
	Ready     int `json:"ready"`
}

// ElapsedMinutes returns whole minutes between createdAt and now,
// never negative (clock skew between writer and reader).
func ElapsedMinutes(createdAt, now time.Time) int {
	m := int(now.Sub(createdAt).Minutes())
	if m < 0 {
		return 0
	}
	return m
}
