package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/arepabyte/comanda/internal/model"
)

// InvoiceRepo provides data access to issued invoices.  Invoices are
// written exactly once, inside the issuance transaction, and read by
// the report/rendering layer.
type InvoiceRepo struct {
	db *sql.DB
}

// NewInvoiceRepo returns a new InvoiceRepo bound to the given database.
func NewInvoiceRepo(db *sql.DB) *InvoiceRepo { return &InvoiceRepo{db: db} }

const invoiceColumns = `id, order_id, invoice_number, issued_at, customer_name, payment_method, total_usd, total_ves`

func scanInvoice(row interface{ Scan(...interface{}) error }) (*model.Invoice, error) {
	var inv model.Invoice
	err := row.Scan(&inv.ID, &inv.OrderID, &inv.Number, &inv.IssuedAt,
		&inv.Customer, &inv.PaymentMethod, &inv.TotalUSD, &inv.TotalVES)
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

// CreateTx inserts an invoice within the provided transaction and
// returns its generated id.  A duplicate invoice number yields
// ErrConflict and, because the caller rolls back, leaves the order and
// its table untouched.
func (r *InvoiceRepo) CreateTx(ctx context.Context, tx *sql.Tx, inv *model.Invoice) (uint64, error) {
	res, err := tx.ExecContext(ctx,
		`INSERT INTO invoices (order_id, invoice_number, issued_at, customer_name, payment_method, total_usd, total_ves)
         VALUES (?, ?, ?, ?, ?, ?, ?)`,
		inv.OrderID, inv.Number, inv.IssuedAt, inv.Customer, inv.PaymentMethod, inv.TotalUSD, inv.TotalVES)
	if err != nil {
		return 0, translateMySQL(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByID returns one invoice or ErrNotFound.
func (r *InvoiceRepo) GetByID(ctx context.Context, id uint64) (*model.Invoice, error) {
	inv, err := scanInvoice(r.db.QueryRowContext(ctx,
		`SELECT `+invoiceColumns+` FROM invoices WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	return inv, err
}

// List returns all invoices, newest first.
func (r *InvoiceRepo) List(ctx context.Context) ([]model.Invoice, error) {
	return r.collect(ctx,
		`SELECT `+invoiceColumns+` FROM invoices ORDER BY issued_at DESC`)
}

// Search returns invoices whose number or customer name contains the
// term, newest first.
func (r *InvoiceRepo) Search(ctx context.Context, term string) ([]model.Invoice, error) {
	like := "%" + term + "%"
	return r.collect(ctx,
		`SELECT `+invoiceColumns+` FROM invoices
         WHERE customer_name LIKE ? OR invoice_number LIKE ?
         ORDER BY issued_at DESC`, like, like)
}

// InRange returns invoices issued between from and to inclusive,
// newest first.  Used by daily/periodic reports.
func (r *InvoiceRepo) InRange(ctx context.Context, from, to time.Time) ([]model.Invoice, error) {
	return r.collect(ctx,
		`SELECT `+invoiceColumns+` FROM invoices
         WHERE issued_at BETWEEN ? AND ?
         ORDER BY issued_at DESC`, from, to)
}

func (r *InvoiceRepo) collect(ctx context.Context, query string, args ...interface{}) ([]model.Invoice, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	invoices := make([]model.Invoice, 0)
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, err
		}
		invoices = append(invoices, *inv)
	}
	return invoices, rows.Err()
}

// Lines returns the order lines behind an invoice joined with catalog
// item and variant names, in insertion order, for rendering.  The
// order survives issuance (only cancellation deletes it), so the join
// is always resolvable.
func (r *InvoiceRepo) Lines(ctx context.Context, invoiceID uint64) ([]model.InvoiceLine, error) {
	const q = `SELECT COALESCE(mi.name, ''), COALESCE(v.name, ''),
                      l.quantity, l.unit_price, l.subtotal
               FROM invoices f
               JOIN orders o ON o.id = f.order_id
               JOIN order_lines l ON l.order_id = o.id
               LEFT JOIN menu_items mi ON mi.id = l.menu_item_id
               LEFT JOIN menu_item_variants v ON v.id = l.variant_id
               WHERE f.id = ?
               ORDER BY l.id`
	rows, err := r.db.QueryContext(ctx, q, invoiceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	lines := make([]model.InvoiceLine, 0)
	for rows.Next() {
		var l model.InvoiceLine
		if err := rows.Scan(&l.ItemName, &l.VariantName, &l.Quantity, &l.UnitPrice, &l.Subtotal); err != nil {
			return nil, err
		}
		lines = append(lines, l)
	}
	return lines, rows.Err()
}
