package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/arepabyte/comanda/internal/model"
)

// KitchenRepo tracks per-line preparation state for lines belonging to
// open orders.  It never touches order headers beyond reading them for
// the board view.
type KitchenRepo struct {
	db *sql.DB
}

// NewKitchenRepo returns a new KitchenRepo bound to the given database.
func NewKitchenRepo(db *sql.DB) *KitchenRepo { return &KitchenRepo{db: db} }

// ActiveTickets returns every open order that still has at least one
// line not ready, oldest first, with table name, customer, elapsed
// minutes and all of its lines.  Orders whose lines are all ready are
// excluded — they have left the kitchen even if the bill is unpaid.
// Walk-in orders without a table show an empty table name.
func (r *KitchenRepo) ActiveTickets(ctx context.Context, now time.Time) ([]model.Ticket, error) {
	const headQ = `SELECT DISTINCT o.id, COALESCE(t.name, ''), o.customer_name, o.created_at
                   FROM orders o
                   LEFT JOIN dining_tables t ON t.id = o.table_id
                   JOIN order_lines l ON l.order_id = o.id
                   WHERE o.state = 'open' AND l.kitchen_state != 'ready'
                   ORDER BY o.created_at ASC`
	rows, err := r.db.QueryContext(ctx, headQ)
	if err != nil {
		return nil, err
	}
	tickets := make([]model.Ticket, 0)
	index := make(map[uint64]int)
	for rows.Next() {
		var tk model.Ticket
		if err := rows.Scan(&tk.OrderID, &tk.TableName, &tk.Customer, &tk.CreatedAt); err != nil {
			rows.Close()
			return nil, err
		}
		tk.ElapsedMinutes = model.ElapsedMinutes(tk.CreatedAt, now)
		tk.Lines = []model.TicketLine{}
		index[tk.OrderID] = len(tickets)
		tickets = append(tickets, tk)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if len(tickets) == 0 {
		return tickets, nil
	}

	// Load all lines of the qualifying orders in a single query.
	ids := make([]uint64, 0, len(tickets))
	for _, tk := range tickets {
		ids = append(ids, tk.OrderID)
	}
	lineQ := `SELECT l.order_id, l.id, COALESCE(mi.name, ''), l.quantity, l.kitchen_state
              FROM order_lines l
              LEFT JOIN menu_items mi ON mi.id = l.menu_item_id
              WHERE l.order_id IN (` + placeholders(len(ids)) + `)
              ORDER BY l.order_id, l.id`
	lrows, err := r.db.QueryContext(ctx, lineQ, toArgs(ids)...)
	if err != nil {
		return nil, err
	}
	defer lrows.Close()
	for lrows.Next() {
		var orderID uint64
		var tl model.TicketLine
		if err := lrows.Scan(&orderID, &tl.LineID, &tl.ItemName, &tl.Quantity, &tl.KitchenState); err != nil {
			return nil, err
		}
		if i, ok := index[orderID]; ok {
			tickets[i].Lines = append(tickets[i].Lines, tl)
		}
	}
	return tickets, lrows.Err()
}

// SetLineState writes one line's kitchen state.  Any of the three
// states is accepted regardless of the current one; the kitchen moves
// lines backward as freely as forward.  ErrNotFound when the line id
// is unknown.
func (r *KitchenRepo) SetLineState(ctx context.Context, lineID uint64, state string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE order_lines SET kitchen_state = ? WHERE id = ?`, state, lineID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// BulkAdvance moves all of an order's lines currently in fromState to
// toState in one statement ("prepare all pending", "mark all ready").
// An empty fromState matches every line not already in toState.  It
// returns the number of lines changed.
func (r *KitchenRepo) BulkAdvance(ctx context.Context, orderID uint64, fromState, toState string) (int64, error) {
	var res sql.Result
	var err error
	if fromState == "" {
		res, err = r.db.ExecContext(ctx,
			`UPDATE order_lines SET kitchen_state = ? WHERE order_id = ? AND kitchen_state != ?`,
			toState, orderID, toState)
	} else {
		res, err = r.db.ExecContext(ctx,
			`UPDATE order_lines SET kitchen_state = ? WHERE order_id = ? AND kitchen_state = ?`,
			toState, orderID, fromState)
	}
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// CountsByState aggregates line counts per kitchen state across all
// open orders, for the board header.
func (r *KitchenRepo) CountsByState(ctx context.Context) (model.KitchenCounts, error) {
	const q = `SELECT l.kitchen_state, COUNT(*)
               FROM order_lines l
               JOIN orders o ON o.id = l.order_id
               WHERE o.state = 'open'
               GROUP BY l.kitchen_state`
	var counts model.KitchenCounts
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return counts, err
	}
	defer rows.Close()
	for rows.Next() {
		var state string
		var n int
		if err := rows.Scan(&state, &n); err != nil {
			return counts, err
		}
		switch state {
		case model.KitchenStatePending:
			counts.Pending = n
		case model.KitchenStatePreparing:
			counts.Preparing = n
		case model.KitchenStateReady:
			counts.Ready = n
		}
	}
	return counts, rows.Err()
}
