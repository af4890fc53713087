package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/arepabyte/comanda/internal/model"
)

// TableRepo provides data access to the dining_tables table.  Table
// state is written unconditionally here; transition legality is the
// caller's concern (order confirmation, cancellation and invoice
// issuance drive the implicit transitions, reserve/release the explicit
// ones).
type TableRepo struct {
	db *sql.DB
}

// NewTableRepo returns a new TableRepo bound to the provided database.
func NewTableRepo(db *sql.DB) *TableRepo { return &TableRepo{db: db} }

// DB exposes the underlying handle so handlers can open transactions
// spanning multiple repositories.
func (r *TableRepo) DB() *sql.DB { return r.db }

// GetByID returns one table or ErrNotFound.
func (r *TableRepo) GetByID(ctx context.Context, id uint64) (*model.Table, error) {
	var t model.Table
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, state, section_id FROM dining_tables WHERE id = ?`, id).
		Scan(&t.ID, &t.Name, &t.State, &t.SectionID)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// List returns tables matching every provided filter.  Empty filters
// are ignored: section 0 means all sections, empty state means any
// state, empty nameSub disables the substring match.
func (r *TableRepo) List(ctx context.Context, sectionID uint64, state, nameSub string) ([]model.Table, error) {
	q := `SELECT id, name, state, section_id FROM dining_tables`
	conds := make([]string, 0, 3)
	args := make([]interface{}, 0, 3)
	if sectionID != 0 {
		conds = append(conds, "section_id = ?")
		args = append(args, sectionID)
	}
	if state != "" {
		conds = append(conds, "state = ?")
		args = append(args, state)
	}
	if nameSub != "" {
		conds = append(conds, "name LIKE ?")
		args = append(args, "%"+nameSub+"%")
	}
	if len(conds) > 0 {
		q += " WHERE " + strings.Join(conds, " AND ")
	}
	q += " ORDER BY name"
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	tables := make([]model.Table, 0)
	for rows.Next() {
		var t model.Table
		if err := rows.Scan(&t.ID, &t.Name, &t.State, &t.SectionID); err != nil {
			return nil, err
		}
		tables = append(tables, t)
	}
	return tables, rows.Err()
}

// Create inserts a table with an auto-generated display name: the
// section's initial letter followed by the next unused sequence number
// among that section's existing names.  Two concurrent creates can
// compute the same name; the second insert then fails on the unique
// name key and surfaces as ErrConflict.
func (r *TableRepo) Create(ctx context.Context, sectionID uint64) (uint64, string, error) {
	var sectionName string
	err := r.db.QueryRowContext(ctx,
		`SELECT name FROM sections WHERE id = ?`, sectionID).Scan(&sectionName)
	if err == sql.ErrNoRows {
		return 0, "", ErrNotFound
	}
	if err != nil {
		return 0, "", err
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT name FROM dining_tables WHERE section_id = ?`, sectionID)
	if err != nil {
		return 0, "", err
	}
	var existing []string
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			rows.Close()
			return 0, "", err
		}
		existing = append(existing, n)
	}
	if err := rows.Close(); err != nil {
		return 0, "", err
	}

	name := model.NextTableName(sectionName, existing)
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO dining_tables (name, state, section_id) VALUES (?, ?, ?)`,
		name, model.TableStateFree, sectionID)
	if err != nil {
		return 0, "", translateMySQL(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, "", err
	}
	return uint64(id), name, nil
}

// SetState writes a table's state unconditionally.  ErrNotFound when
// the id is unknown.
func (r *TableRepo) SetState(ctx context.Context, id uint64, state string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE dining_tables SET state = ? WHERE id = ?`, state, id)
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

// SetStateTx is SetState inside an existing transaction, used when the
// state flip is one step of a larger operation (order open/cancel,
// invoice issuance).  It does not verify the row exists: callers have
// already resolved the table id inside the same transaction.
func (r *TableRepo) SetStateTx(ctx context.Context, tx *sql.Tx, id uint64, state string) error {
	_, err := tx.ExecContext(ctx,
		`UPDATE dining_tables SET state = ? WHERE id = ?`, state, id)
	return err
}

// Delete removes a table.  An occupied table cannot be deleted
// (ErrConflict); a reserved one can.  ErrNotFound when the id is
// unknown.
func (r *TableRepo) Delete(ctx context.Context, id uint64) error {
	t, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if t.State == model.TableStateOccupied {
		return ErrConflict
	}
	_, err = r.db.ExecContext(ctx, `DELETE FROM dining_tables WHERE id = ?`, id)
	return translateMySQL(err)
}
