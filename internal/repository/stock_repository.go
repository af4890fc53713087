package repository

import (
	"context"
	"database/sql"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/arepabyte/comanda/internal/model"
)

// StockRepo manages the raw-ingredient stock ledger.  It is independent
// of orders: nothing decrements stock automatically on confirmation;
// all quantity changes go through ApplyAdjustments, which is atomic for
// the whole batch.
type StockRepo struct {
	db *sql.DB
}

// NewStockRepo returns a new StockRepo bound to the given database.
func NewStockRepo(db *sql.DB) *StockRepo { return &StockRepo{db: db} }

// GetItem returns one stock item or ErrNotFound.
func (r *StockRepo) GetItem(ctx context.Context, id uint64) (*model.StockItem, error) {
	var it model.StockItem
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, quantity, price FROM stock_items WHERE id = ?`, id).
		Scan(&it.ID, &it.Name, &it.Quantity, &it.Price)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &it, nil
}

// GetQuantity returns an item's current quantity or ErrNotFound.
func (r *StockRepo) GetQuantity(ctx context.Context, id uint64) (int64, error) {
	var q int64
	err := r.db.QueryRowContext(ctx,
		`SELECT quantity FROM stock_items WHERE id = ?`, id).Scan(&q)
	if err == sql.ErrNoRows {
		return 0, ErrNotFound
	}
	return q, err
}

// GetQuantityBatch returns the quantity of every requested id in one
// query.  The result covers every requested key: ids that do not exist
// map to nil rather than being omitted.
func (r *StockRepo) GetQuantityBatch(ctx context.Context, ids []uint64) (map[uint64]*int64, error) {
	result := make(map[uint64]*int64, len(ids))
	for _, id := range ids {
		result[id] = nil
	}
	if len(ids) == 0 {
		return result, nil
	}
	q := `SELECT id, quantity FROM stock_items WHERE id IN (` + placeholders(len(ids)) + `)`
	rows, err := r.db.QueryContext(ctx, q, toArgs(ids)...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var id uint64
		var qty int64
		if err := rows.Scan(&id, &qty); err != nil {
			return nil, err
		}
		v := qty
		result[id] = &v
	}
	return result, rows.Err()
}

// List returns all stock items ordered by name.
func (r *StockRepo) List(ctx context.Context) ([]model.StockItem, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, quantity, price FROM stock_items ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := make([]model.StockItem, 0)
	for rows.Next() {
		var it model.StockItem
		if err := rows.Scan(&it.ID, &it.Name, &it.Quantity, &it.Price); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// CreateItem inserts a stock item and returns its generated id.  A
// negative initial quantity is rejected by the CHECK constraint.
func (r *StockRepo) CreateItem(ctx context.Context, name string, quantity int64, price decimal.Decimal) (uint64, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO stock_items (name, quantity, price) VALUES (?, ?, ?)`,
		name, quantity, price)
	if err != nil {
		return 0, translateMySQL(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// UpdateItem rewrites a stock item's name and price.  Quantity is
// deliberately not writable here; it only moves through
// ApplyAdjustments.
func (r *StockRepo) UpdateItem(ctx context.Context, id uint64, name string, price decimal.Decimal) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE stock_items SET name = ?, price = ? WHERE id = ?`, name, price, id)
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

// DeleteItem removes a stock item.  ErrNotFound when the id is unknown.
func (r *StockRepo) DeleteItem(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM stock_items WHERE id = ?`, id)
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

// ApplyAdjustments applies a batch of quantity diffs atomically: all
// items change or none does.  A positive delta consumes stock
// (quantity -= delta), a negative one replenishes it.  The current
// quantities are snapshotted with SELECT ... FOR UPDATE, so the rows
// stay locked from validation through commit and two concurrent
// batches cannot both validate against the same stale values.  The
// CHECK (quantity >= 0) constraint backs this up independently.
func (r *StockRepo) ApplyAdjustments(ctx context.Context, diffs map[uint64]int64) error {
	if len(diffs) == 0 {
		return nil
	}
	ids := make([]uint64, 0, len(diffs))
	for id := range diffs {
		ids = append(ids, id)
	}
	// Lock rows in a stable order so two overlapping batches cannot
	// deadlock on each other.
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	q := `SELECT id, quantity FROM stock_items WHERE id IN (` + placeholders(len(ids)) + `) FOR UPDATE`
	rows, err := tx.QueryContext(ctx, q, toArgs(ids)...)
	if err != nil {
		return err
	}
	snapshot := make(map[uint64]int64, len(ids))
	for rows.Next() {
		var id uint64
		var qty int64
		if err := rows.Scan(&id, &qty); err != nil {
			rows.Close()
			return err
		}
		snapshot[id] = qty
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return err
	}
	if err := rows.Close(); err != nil {
		return err
	}

	if err := validateAdjustments(snapshot, diffs); err != nil {
		return err
	}

	for _, id := range ids {
		if _, err := tx.ExecContext(ctx,
			`UPDATE stock_items SET quantity = quantity - ? WHERE id = ?`,
			diffs[id], id); err != nil {
			return translateMySQL(err)
		}
	}
	if err := tx.Commit(); err != nil {
		return translateMySQL(err)
	}
	committed = true
	return nil
}

// validateAdjustments checks a diff batch against a quantity snapshot:
// every id must be present and every positive (consuming) delta must
// not exceed the snapshot quantity.  The first failure rejects the
// whole batch.
func validateAdjustments(snapshot map[uint64]int64, diffs map[uint64]int64) error {
	for id, delta := range diffs {
		qty, ok := snapshot[id]
		if !ok {
			return fmt.Errorf("%w: stock item %d does not exist", ErrNotFound, id)
		}
		if delta > 0 && qty < delta {
			return fmt.Errorf("%w: item %d has %d, batch consumes %d", ErrInsufficientStock, id, qty, delta)
		}
	}
	return nil
}
