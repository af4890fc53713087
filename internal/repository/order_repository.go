package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/shopspring/decimal"

	"github.com/arepabyte/comanda/internal/model"
)

// OrderRepo provides data access to orders and their lines.  An order
// owns its lines exclusively: confirmation replaces them wholesale and
// cancellation deletes them together with the header (no audit row is
// kept).  The unique key over the generated open_table_id column
// guarantees at most one open order per table; a violating insert is
// rejected at commit and surfaces as ErrConflict.
type OrderRepo struct {
	db *sql.DB
}

// NewOrderRepo returns a new OrderRepo bound to the given database.
func NewOrderRepo(db *sql.DB) *OrderRepo { return &OrderRepo{db: db} }

// DB exposes the underlying handle so handlers can open transactions
// spanning multiple repositories.
func (r *OrderRepo) DB() *sql.DB { return r.db }

const orderColumns = `id, table_id, customer_name, state, total, created_at, updated_at, closed_at`

func scanOrder(row interface{ Scan(...interface{}) error }) (*model.Order, error) {
	var o model.Order
	var tableID sql.NullInt64
	var updatedAt, closedAt sql.NullTime
	err := row.Scan(&o.ID, &tableID, &o.Customer, &o.State, &o.Total,
		&o.CreatedAt, &updatedAt, &closedAt)
	if err != nil {
		return nil, err
	}
	if tableID.Valid {
		id := uint64(tableID.Int64)
		o.TableID = &id
	}
	if updatedAt.Valid {
		t := updatedAt.Time
		o.UpdatedAt = &t
	}
	if closedAt.Valid {
		t := closedAt.Time
		o.ClosedAt = &t
	}
	return &o, nil
}

// GetByID returns one order or ErrNotFound.
func (r *OrderRepo) GetByID(ctx context.Context, id uint64) (*model.Order, error) {
	o, err := scanOrder(r.db.QueryRowContext(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	return o, err
}

// GetOpenByTable returns the single open order for a table, or
// ErrNotFound when the table has none.
func (r *OrderRepo) GetOpenByTable(ctx context.Context, tableID uint64) (*model.Order, error) {
	o, err := scanOrder(r.db.QueryRowContext(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE table_id = ? AND state = 'open' LIMIT 1`,
		tableID))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	return o, err
}

// ListByState returns orders in the given state, newest first.
func (r *OrderRepo) ListByState(ctx context.Context, state string) ([]model.Order, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE state = ? ORDER BY created_at DESC`, state)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	orders := make([]model.Order, 0)
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, *o)
	}
	return orders, rows.Err()
}

// ListLines returns an order's lines in insertion order, joined with
// catalog item names.  Items removed from the catalog leave the name
// empty rather than dropping the line.
func (r *OrderRepo) ListLines(ctx context.Context, orderID uint64) ([]model.OrderLine, error) {
	const q = `SELECT l.id, l.order_id, l.menu_item_id, l.variant_id,
                      COALESCE(mi.name, ''), l.quantity, l.unit_price, l.subtotal, l.kitchen_state
               FROM order_lines l
               LEFT JOIN menu_items mi ON mi.id = l.menu_item_id
               WHERE l.order_id = ?
               ORDER BY l.id`
	rows, err := r.db.QueryContext(ctx, q, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	lines := make([]model.OrderLine, 0)
	for rows.Next() {
		var l model.OrderLine
		var variantID sql.NullInt64
		if err := rows.Scan(&l.ID, &l.OrderID, &l.MenuItemID, &variantID,
			&l.ItemName, &l.Quantity, &l.UnitPrice, &l.Subtotal, &l.KitchenState); err != nil {
			return nil, err
		}
		if variantID.Valid {
			id := uint64(variantID.Int64)
			l.VariantID = &id
		}
		lines = append(lines, l)
	}
	return lines, rows.Err()
}

// CreateTx inserts a new open order header within the provided
// transaction and returns its generated id.  When the table already
// carries an open order, the unique open_table_id key rejects the
// insert and ErrConflict is returned.
func (r *OrderRepo) CreateTx(ctx context.Context, tx *sql.Tx, tableID *uint64, customer string, total decimal.Decimal, now time.Time) (uint64, error) {
	res, err := tx.ExecContext(ctx,
		`INSERT INTO orders (table_id, customer_name, state, total, created_at) VALUES (?, ?, 'open', ?, ?)`,
		tableID, customer, total, now)
	if err != nil {
		return 0, translateMySQL(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// UpdateHeaderTx rewrites an open order's customer, total and updated
// timestamp within the provided transaction.  ErrNotFound when the
// order does not exist or is already closed.
func (r *OrderRepo) UpdateHeaderTx(ctx context.Context, tx *sql.Tx, orderID uint64, customer string, total decimal.Decimal, now time.Time) error {
	res, err := tx.ExecContext(ctx,
		`UPDATE orders SET customer_name = ?, total = ?, updated_at = ? WHERE id = ? AND state = 'open'`,
		customer, total, now, orderID)
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

// ReplaceLinesTx deletes every existing line of the order and inserts
// the given normalized set in one bulk statement.  This is a full
// replace, not a diff: surviving dishes get new line ids and their
// kitchen state restarts at pending.  The caller must commit or roll
// back the transaction.
func (r *OrderRepo) ReplaceLinesTx(ctx context.Context, tx *sql.Tx, orderID uint64, lines []model.OrderLine) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM order_lines WHERE order_id = ?`, orderID); err != nil {
		return err
	}
	if len(lines) == 0 {
		return nil
	}
	query := `INSERT INTO order_lines (order_id, menu_item_id, variant_id, quantity, unit_price, subtotal, kitchen_state) VALUES `
	args := make([]interface{}, 0, len(lines)*7)
	for i, l := range lines {
		if i > 0 {
			query += ","
		}
		query += "(?, ?, ?, ?, ?, ?, ?)"
		args = append(args, orderID, l.MenuItemID, l.VariantID, l.Quantity, l.UnitPrice, l.Subtotal, l.KitchenState)
	}
	_, err := tx.ExecContext(ctx, query, args...)
	return err
}

// LockOpenTx loads an open order's table reference with a row lock
// held until the transaction ends.  It distinguishes a missing order
// (ErrNotFound) from one that exists but is closed (ErrConflict), so
// cancellation and issuance report the right failure with no side
// effects.
func (r *OrderRepo) LockOpenTx(ctx context.Context, tx *sql.Tx, orderID uint64) (*uint64, error) {
	var tableID sql.NullInt64
	var state string
	err := tx.QueryRowContext(ctx,
		`SELECT table_id, state FROM orders WHERE id = ? FOR UPDATE`, orderID).
		Scan(&tableID, &state)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if state != model.OrderStateOpen {
		return nil, ErrConflict
	}
	if tableID.Valid {
		id := uint64(tableID.Int64)
		return &id, nil
	}
	return nil, nil
}

// DeleteTx removes an order's lines and header within the provided
// transaction.  Used by cancellation, which keeps no audit row.
func (r *OrderRepo) DeleteTx(ctx context.Context, tx *sql.Tx, orderID uint64) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM order_lines WHERE order_id = ?`, orderID); err != nil {
		return err
	}
	_, err := tx.ExecContext(ctx, `DELETE FROM orders WHERE id = ?`, orderID)
	return err
}

// CloseTx marks an order closed with the given timestamp within the
// provided transaction.
func (r *OrderRepo) CloseTx(ctx context.Context, tx *sql.Tx, orderID uint64, closedAt time.Time) error {
	_, err := tx.ExecContext(ctx,
		`UPDATE orders SET state = 'closed', closed_at = ? WHERE id = ?`, closedAt, orderID)
	return err
}
