package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/arepabyte/comanda/internal/model"
)

// CatalogRepo is the read-only view of the menu catalog the POS core
// consumes: the browse listing for the waiter UI, plus price snapshots
// taken inside the order confirmation transaction.  Catalog editing
// belongs to a separate admin surface and has no methods here.
type CatalogRepo struct {
	db *sql.DB
}

// NewCatalogRepo returns a new CatalogRepo bound to the given database.
func NewCatalogRepo(db *sql.DB) *CatalogRepo { return &CatalogRepo{db: db} }

// PricesTx loads the prices of the given menu items and variants
// within the provided transaction and returns them as a PriceBook.
// Ids that do not exist are simply absent from the book; line
// validation turns the absence into a ValidationError.  Empty id
// slices are allowed.
func (r *CatalogRepo) PricesTx(ctx context.Context, tx *sql.Tx, itemIDs, variantIDs []uint64) (model.PriceBook, error) {
	book := model.PriceBook{
		Items:    make(map[uint64]decimal.Decimal, len(itemIDs)),
		Variants: make(map[uint64]decimal.Decimal, len(variantIDs)),
	}
	if len(itemIDs) > 0 {
		q := `SELECT id, price FROM menu_items WHERE id IN (` + placeholders(len(itemIDs)) + `)`
		rows, err := tx.QueryContext(ctx, q, toArgs(itemIDs)...)
		if err != nil {
			return book, err
		}
		for rows.Next() {
			var id uint64
			var price decimal.Decimal
			if err := rows.Scan(&id, &price); err != nil {
				rows.Close()
				return book, err
			}
			book.Items[id] = price
		}
		if err := rows.Close(); err != nil {
			return book, err
		}
	}
	if len(variantIDs) > 0 {
		q := `SELECT id, price FROM menu_item_variants WHERE id IN (` + placeholders(len(variantIDs)) + `)`
		rows, err := tx.QueryContext(ctx, q, toArgs(variantIDs)...)
		if err != nil {
			return book, err
		}
		for rows.Next() {
			var id uint64
			var price decimal.Decimal
			if err := rows.Scan(&id, &price); err != nil {
				rows.Close()
				return book, err
			}
			book.Variants[id] = price
		}
		if err := rows.Close(); err != nil {
			return book, err
		}
	}
	return book, nil
}

// AvailableItems lists the sellable menu items in menu order.  Items
// flagged unavailable are filtered out here, not in the UI.
func (r *CatalogRepo) AvailableItems(ctx context.Context) ([]model.MenuItem, error) {
	rows, err := r.db.QueryContext(ctx, `
        SELECT id, section_id, name, price, available
        FROM menu_items
        WHERE available = 1
        ORDER BY section_id, position, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []model.MenuItem
	for rows.Next() {
		var it model.MenuItem
		if err := rows.Scan(&it.ID, &it.SectionID, &it.Name, &it.Price, &it.Available); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// VariantsByItem loads every variant of the given items, keyed by
// menu item id.
func (r *CatalogRepo) VariantsByItem(ctx context.Context, itemIDs []uint64) (map[uint64][]model.MenuItemVariant, error) {
	out := make(map[uint64][]model.MenuItemVariant, len(itemIDs))
	if len(itemIDs) == 0 {
		return out, nil
	}
	q := `SELECT id, menu_item_id, name, price FROM menu_item_variants
          WHERE menu_item_id IN (` + placeholders(len(itemIDs)) + `) ORDER BY id`
	rows, err := r.db.QueryContext(ctx, q, toArgs(itemIDs)...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var v model.MenuItemVariant
		if err := rows.Scan(&v.ID, &v.MenuItemID, &v.Name, &v.Price); err != nil {
			return nil, err
		}
		out[v.MenuItemID] = append(out[v.MenuItemID], v)
	}
	return out, rows.Err()
}

// placeholders returns n comma-separated "?" markers for IN clauses.
func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.Repeat("?,", n-1) + "?"
}

// toArgs widens a uint64 slice into the []interface{} the sql package
// expects.
func toArgs(ids []uint64) []interface{} {
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return args
}
