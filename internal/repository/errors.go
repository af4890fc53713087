// Package repository implements data access for the POS core over
// MySQL.  Each aggregate gets its own repo type bound to a *sql.DB;
// methods suffixed Tx run inside an externally owned transaction and
// leave commit/rollback to the caller.  The sentinel errors below form
// the failure taxonomy the handler layer translates into HTTP results:
// nothing else crosses that boundary.
package repository

import (
	"errors"

	"github.com/go-sql-driver/mysql"
)

// ErrNotFound is returned when a referenced order, table, item, line or
// rate does not exist.
var ErrNotFound = errors.New("not found")

// ErrConflict is returned when storage-level uniqueness rejects an
// operation: a second open order for a table, a duplicate invoice
// number, a duplicate generated table name, or a delete blocked by
// dependent state (occupied table, section with tables).
var ErrConflict = errors.New("conflict")

// ErrValidation is returned for malformed or referentially invalid
// input, chiefly order lines referencing missing catalog entries or
// carrying non-positive quantities.
var ErrValidation = errors.New("validation failed")

// ErrInsufficientStock is returned when a stock adjustment batch would
// drive some item's quantity negative.  The whole batch is rejected.
var ErrInsufficientStock = errors.New("insufficient stock")

// MySQL server error numbers this package reacts to.
const (
	mysqlErrDuplicateEntry  = 1062
	mysqlErrRowIsReferenced = 1451
	mysqlErrForeignKey      = 1452
	mysqlErrCheckViolation  = 3819
)

// translateMySQL maps low-level MySQL errors onto the package
// sentinels.  Duplicate-key violations become ErrConflict — this is
// how the unique key over orders.open_table_id surfaces the
// one-open-order-per-table invariant at commit time.  Foreign key
// violations mean the referenced row does not exist and become
// ErrNotFound.  CHECK violations (the stock quantity guard) become
// ErrInsufficientStock.  Anything else passes through unchanged as a
// storage error.
func translateMySQL(err error) error {
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		switch me.Number {
		case mysqlErrDuplicateEntry, mysqlErrRowIsReferenced:
			return ErrConflict
		case mysqlErrForeignKey:
			return ErrNotFound
		case mysqlErrCheckViolation:
			return ErrInsufficientStock
		}
	}
	return err
}
