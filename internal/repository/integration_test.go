package repository

// Database integration tests.  They need a disposable MySQL database:
//
//   export POS_TEST_DSN='user:pass@tcp(localhost:3306)/comanda_test?parseTime=true&loc=UTC&clientFoundRows=true'
//   go test ./internal/repository/
//
// Without the variable (or with -short) the tests skip.  Rows are
// created with unique names per run, so reruns against the same
// database do not collide.

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/shopspring/decimal"

	"github.com/arepabyte/comanda/internal/database"
	"github.com/arepabyte/comanda/internal/model"
)

func testDB(t *testing.T) *sql.DB {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	dsn := os.Getenv("POS_TEST_DSN")
	if dsn == "" {
		t.Skip("skipping integration test: POS_TEST_DSN not set")
	}
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		t.Skipf("skipping integration test: database unreachable: %v", err)
	}
	if err := database.EnsureSchema(context.Background(), db); err != nil {
		t.Fatalf("ensure schema: %v", err)
	}
	return db
}

// newTestTable creates a section and one table in it, both with names
// unique to this run.
func newTestTable(t *testing.T, db *sql.DB) uint64 {
	t.Helper()
	ctx := context.Background()
	sections := NewSectionRepo(db)
	name := fmt.Sprintf("Zona %d", time.Now().UnixNano())
	sectionID, err := sections.Create(ctx, name)
	if err != nil {
		t.Fatalf("create section: %v", err)
	}
	tables := NewTableRepo(db)
	tableID, _, err := tables.Create(ctx, sectionID)
	if err != nil {
		t.Fatalf("create table: %v", err)
	}
	return tableID
}

func openOrder(t *testing.T, db *sql.DB, tableID *uint64, customer string) uint64 {
	t.Helper()
	ctx := context.Background()
	orders := NewOrderRepo(db)
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	id, err := orders.CreateTx(ctx, tx, tableID, customer, decimal.Zero, time.Now().UTC())
	if err != nil {
		_ = tx.Rollback()
		t.Fatalf("create order: %v", err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("commit: %v", err)
	}
	return id
}

func TestOnlyOneOpenOrderPerTable(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	orders := NewOrderRepo(db)
	tableID := newTestTable(t, db)

	first := openOrder(t, db, &tableID, "Ana")

	// A second open order on the same table must lose on the unique
	// open-order key.
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	_, err = orders.CreateTx(ctx, tx, &tableID, "Luis", decimal.Zero, time.Now().UTC())
	_ = tx.Rollback()
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("second open order: err = %v, want ErrConflict", err)
	}

	// Closing the first frees the slot for a new one.
	tx, err = db.BeginTx(ctx, nil)
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	if err := orders.CloseTx(ctx, tx, first, time.Now().UTC()); err != nil {
		_ = tx.Rollback()
		t.Fatalf("close order: %v", err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("commit close: %v", err)
	}
	openOrder(t, db, &tableID, "Luis")
}

func TestGetOpenByTable(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	orders := NewOrderRepo(db)
	tableID := newTestTable(t, db)

	if _, err := orders.GetOpenByTable(ctx, tableID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("no order yet: err = %v, want ErrNotFound", err)
	}
	id := openOrder(t, db, &tableID, "Ana")
	o, err := orders.GetOpenByTable(ctx, tableID)
	if err != nil {
		t.Fatalf("GetOpenByTable: %v", err)
	}
	if o.ID != id || o.State != model.OrderStateOpen {
		t.Errorf("got order %d state %q, want %d open", o.ID, o.State, id)
	}
}

func TestLockOpenTxOnClosedOrder(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	orders := NewOrderRepo(db)
	tableID := newTestTable(t, db)
	id := openOrder(t, db, &tableID, "Ana")

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	if err := orders.CloseTx(ctx, tx, id, time.Now().UTC()); err != nil {
		_ = tx.Rollback()
		t.Fatalf("close: %v", err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("commit: %v", err)
	}

	tx, err = db.BeginTx(ctx, nil)
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	defer tx.Rollback()
	if _, err := orders.LockOpenTx(ctx, tx, id); !errors.Is(err, ErrConflict) {
		t.Errorf("lock closed order: err = %v, want ErrConflict", err)
	}
	if _, err := orders.LockOpenTx(ctx, tx, 1<<60); !errors.Is(err, ErrNotFound) {
		t.Errorf("lock unknown order: err = %v, want ErrNotFound", err)
	}
}

func TestApplyAdjustmentsAtomicity(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	stock := NewStockRepo(db)

	suffix := time.Now().UnixNano()
	harina, err := stock.CreateItem(ctx, fmt.Sprintf("harina-%d", suffix), 10, decimal.New(150, -2))
	if err != nil {
		t.Fatalf("create item: %v", err)
	}
	queso, err := stock.CreateItem(ctx, fmt.Sprintf("queso-%d", suffix), 5, decimal.New(300, -2))
	if err != nil {
		t.Fatalf("create item: %v", err)
	}

	// One bad delta rejects the whole batch and changes nothing.
	err = stock.ApplyAdjustments(ctx, map[uint64]int64{harina: 3, queso: 6})
	if !errors.Is(err, ErrInsufficientStock) {
		t.Fatalf("overdraw batch: err = %v, want ErrInsufficientStock", err)
	}
	if qty, _ := stock.GetQuantity(ctx, harina); qty != 10 {
		t.Errorf("harina after failed batch = %d, want 10", qty)
	}
	if qty, _ := stock.GetQuantity(ctx, queso); qty != 5 {
		t.Errorf("queso after failed batch = %d, want 5", qty)
	}

	// Mixed consume/replenish within bounds applies in full.
	if err := stock.ApplyAdjustments(ctx, map[uint64]int64{harina: 3, queso: -2}); err != nil {
		t.Fatalf("valid batch: %v", err)
	}
	if qty, _ := stock.GetQuantity(ctx, harina); qty != 7 {
		t.Errorf("harina = %d, want 7", qty)
	}
	if qty, _ := stock.GetQuantity(ctx, queso); qty != 7 {
		t.Errorf("queso = %d, want 7", qty)
	}

	// Unknown ids are reported as missing.
	err = stock.ApplyAdjustments(ctx, map[uint64]int64{harina: 1, 1 << 60: 1})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("missing item batch: err = %v, want ErrNotFound", err)
	}
	if qty, _ := stock.GetQuantity(ctx, harina); qty != 7 {
		t.Errorf("harina after missing-item batch = %d, want 7", qty)
	}
}

func TestGetQuantityBatchKeepsMissingKeys(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	stock := NewStockRepo(db)

	id, err := stock.CreateItem(ctx, fmt.Sprintf("cafe-%d", time.Now().UnixNano()), 4, decimal.Zero)
	if err != nil {
		t.Fatalf("create item: %v", err)
	}
	missing := uint64(1 << 60)
	got, err := stock.GetQuantityBatch(ctx, []uint64{id, missing})
	if err != nil {
		t.Fatalf("GetQuantityBatch: %v", err)
	}
	if q := got[id]; q == nil || *q != 4 {
		t.Errorf("quantity for %d = %v, want 4", id, q)
	}
	if q, ok := got[missing]; !ok || q != nil {
		t.Errorf("missing id should map to nil, got %v (present=%v)", q, ok)
	}
}

func TestInvoiceNumberUnique(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	invoices := NewInvoiceRepo(db)
	tableID := newTestTable(t, db)
	orderID := openOrder(t, db, &tableID, "Ana")

	number := fmt.Sprintf("F-%d", time.Now().UnixNano())
	issue := func(orderID uint64) error {
		tx, err := db.BeginTx(ctx, nil)
		if err != nil {
			t.Fatalf("begin: %v", err)
		}
		_, err = invoices.CreateTx(ctx, tx, &model.Invoice{
			OrderID:       orderID,
			Number:        number,
			IssuedAt:      time.Now().UTC(),
			Customer:      "Ana",
			PaymentMethod: "efectivo",
			TotalUSD:      decimal.New(1300, -2),
			TotalVES:      decimal.New(52000, -2),
		})
		if err != nil {
			_ = tx.Rollback()
			return err
		}
		return tx.Commit()
	}
	if err := issue(orderID); err != nil {
		t.Fatalf("first invoice: %v", err)
	}
	tableID2 := newTestTable(t, db)
	orderID2 := openOrder(t, db, &tableID2, "Luis")
	if err := issue(orderID2); !errors.Is(err, ErrConflict) {
		t.Fatalf("duplicate number: err = %v, want ErrConflict", err)
	}
}

func TestReplaceLinesResetsKitchenState(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	orders := NewOrderRepo(db)
	kitchen := NewKitchenRepo(db)
	tableID := newTestTable(t, db)
	orderID := openOrder(t, db, &tableID, "Ana")

	replace := func(lines []model.OrderLine) {
		t.Helper()
		tx, err := db.BeginTx(ctx, nil)
		if err != nil {
			t.Fatalf("begin: %v", err)
		}
		if err := orders.ReplaceLinesTx(ctx, tx, orderID, lines); err != nil {
			_ = tx.Rollback()
			t.Fatalf("replace lines: %v", err)
		}
		if err := tx.Commit(); err != nil {
			t.Fatalf("commit: %v", err)
		}
	}

	line := model.OrderLine{
		MenuItemID:   insertMenuItem(t, db),
		Quantity:     2,
		UnitPrice:    decimal.New(250, -2),
		Subtotal:     decimal.New(500, -2),
		KitchenState: model.KitchenStatePending,
	}
	replace([]model.OrderLine{line})

	got, err := orders.ListLines(ctx, orderID)
	if err != nil {
		t.Fatalf("list lines: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d lines, want 1", len(got))
	}
	if err := kitchen.SetLineState(ctx, got[0].ID, model.KitchenStateReady); err != nil {
		t.Fatalf("set line state: %v", err)
	}

	// Re-confirmation replaces lines wholesale; preparation restarts.
	replace([]model.OrderLine{line, line})
	got, err = orders.ListLines(ctx, orderID)
	if err != nil {
		t.Fatalf("list lines: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d lines after replace, want 2", len(got))
	}
	for i, l := range got {
		if l.KitchenState != model.KitchenStatePending {
			t.Errorf("line %d state = %q, want pending", i, l.KitchenState)
		}
	}
}

// openOrderAt is openOrder with an explicit creation time, for tests
// that depend on relative order age.
func openOrderAt(t *testing.T, db *sql.DB, tableID *uint64, customer string, at time.Time) uint64 {
	t.Helper()
	ctx := context.Background()
	orders := NewOrderRepo(db)
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	id, err := orders.CreateTx(ctx, tx, tableID, customer, decimal.Zero, at)
	if err != nil {
		_ = tx.Rollback()
		t.Fatalf("create order: %v", err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("commit: %v", err)
	}
	return id
}

func replaceLines(t *testing.T, db *sql.DB, orderID uint64, lines []model.OrderLine) {
	t.Helper()
	ctx := context.Background()
	orders := NewOrderRepo(db)
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	if err := orders.ReplaceLinesTx(ctx, tx, orderID, lines); err != nil {
		_ = tx.Rollback()
		t.Fatalf("replace lines: %v", err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("commit: %v", err)
	}
}

func TestActiveTickets(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	kitchen := NewKitchenRepo(db)

	line := model.OrderLine{
		MenuItemID:   insertMenuItem(t, db),
		Quantity:     1,
		UnitPrice:    decimal.New(250, -2),
		Subtotal:     decimal.New(250, -2),
		KitchenState: model.KitchenStatePending,
	}

	// An older walk-in order and a younger table order, both with
	// unfinished lines.
	now := time.Now().UTC()
	older := openOrderAt(t, db, nil, "Ana", now.Add(-10*time.Minute))
	replaceLines(t, db, older, []model.OrderLine{line})
	tableID := newTestTable(t, db)
	younger := openOrderAt(t, db, &tableID, "Luis", now)
	replaceLines(t, db, younger, []model.OrderLine{line, line})

	// The board is global, so other tests' orders may appear; keep
	// only this run's.
	board := func() map[uint64]int {
		t.Helper()
		tickets, err := kitchen.ActiveTickets(ctx, time.Now().UTC())
		if err != nil {
			t.Fatalf("ActiveTickets: %v", err)
		}
		pos := make(map[uint64]int)
		for i, tk := range tickets {
			if tk.OrderID == older || tk.OrderID == younger {
				pos[tk.OrderID] = i
				if tk.OrderID == older && tk.TableName != "" {
					t.Errorf("walk-in table name = %q, want empty", tk.TableName)
				}
				if tk.OrderID == older && tk.ElapsedMinutes < 9 {
					t.Errorf("older ticket elapsed = %d min, want >= 9", tk.ElapsedMinutes)
				}
				wantLines := 1
				if tk.OrderID == younger {
					wantLines = 2
				}
				if len(tk.Lines) != wantLines {
					t.Errorf("order %d has %d ticket lines, want %d", tk.OrderID, len(tk.Lines), wantLines)
				}
			}
		}
		return pos
	}

	pos := board()
	iOld, okOld := pos[older]
	iNew, okNew := pos[younger]
	if !okOld || !okNew {
		t.Fatalf("board missing orders: older=%v younger=%v", okOld, okNew)
	}
	if iOld >= iNew {
		t.Errorf("older order at position %d, younger at %d; want oldest first", iOld, iNew)
	}

	// Once every line of the older order is ready it leaves the board,
	// open or not.
	if _, err := kitchen.BulkAdvance(ctx, older, "", model.KitchenStateReady); err != nil {
		t.Fatalf("BulkAdvance: %v", err)
	}
	pos = board()
	if _, ok := pos[older]; ok {
		t.Errorf("all-ready order %d still on the board", older)
	}
	if _, ok := pos[younger]; !ok {
		t.Errorf("order %d with pending lines missing from the board", younger)
	}
}

func TestBulkAdvance(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	orders := NewOrderRepo(db)
	kitchen := NewKitchenRepo(db)
	tableID := newTestTable(t, db)
	orderID := openOrder(t, db, &tableID, "Ana")

	line := model.OrderLine{
		MenuItemID:   insertMenuItem(t, db),
		Quantity:     1,
		UnitPrice:    decimal.New(250, -2),
		Subtotal:     decimal.New(250, -2),
		KitchenState: model.KitchenStatePending,
	}
	replaceLines(t, db, orderID, []model.OrderLine{line, line, line})

	lines, err := orders.ListLines(ctx, orderID)
	if err != nil {
		t.Fatalf("list lines: %v", err)
	}
	if err := kitchen.SetLineState(ctx, lines[0].ID, model.KitchenStatePreparing); err != nil {
		t.Fatalf("set line state: %v", err)
	}

	// A from-state filter only moves matching lines.
	n, err := kitchen.BulkAdvance(ctx, orderID, model.KitchenStatePending, model.KitchenStatePreparing)
	if err != nil {
		t.Fatalf("BulkAdvance pending->preparing: %v", err)
	}
	if n != 2 {
		t.Errorf("advanced %d lines, want 2", n)
	}

	// Empty from-state moves everything not already at the target.
	n, err = kitchen.BulkAdvance(ctx, orderID, "", model.KitchenStateReady)
	if err != nil {
		t.Fatalf("BulkAdvance ->ready: %v", err)
	}
	if n != 3 {
		t.Errorf("advanced %d lines, want 3", n)
	}
	lines, err = orders.ListLines(ctx, orderID)
	if err != nil {
		t.Fatalf("list lines: %v", err)
	}
	for i, l := range lines {
		if l.KitchenState != model.KitchenStateReady {
			t.Errorf("line %d state = %q, want ready", i, l.KitchenState)
		}
	}
}

func TestCountsByState(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	kitchen := NewKitchenRepo(db)

	// Counts are global, so assert deltas against a baseline.
	before, err := kitchen.CountsByState(ctx)
	if err != nil {
		t.Fatalf("CountsByState: %v", err)
	}

	tableID := newTestTable(t, db)
	orderID := openOrder(t, db, &tableID, "Ana")
	line := model.OrderLine{
		MenuItemID:   insertMenuItem(t, db),
		Quantity:     1,
		UnitPrice:    decimal.New(250, -2),
		Subtotal:     decimal.New(250, -2),
		KitchenState: model.KitchenStatePending,
	}
	replaceLines(t, db, orderID, []model.OrderLine{line, line})

	after, err := kitchen.CountsByState(ctx)
	if err != nil {
		t.Fatalf("CountsByState: %v", err)
	}
	if got := after.Pending - before.Pending; got != 2 {
		t.Errorf("pending delta = %d, want 2", got)
	}

	if _, err := kitchen.BulkAdvance(ctx, orderID, "", model.KitchenStatePreparing); err != nil {
		t.Fatalf("BulkAdvance: %v", err)
	}
	after, err = kitchen.CountsByState(ctx)
	if err != nil {
		t.Fatalf("CountsByState: %v", err)
	}
	if got := after.Pending - before.Pending; got != 0 {
		t.Errorf("pending delta after advance = %d, want 0", got)
	}
	if got := after.Preparing - before.Preparing; got != 2 {
		t.Errorf("preparing delta = %d, want 2", got)
	}
}

func insertMenuItem(t *testing.T, db *sql.DB) uint64 {
	t.Helper()
	ctx := context.Background()
	suffix := time.Now().UnixNano()
	res, err := db.ExecContext(ctx,
		`INSERT INTO menu_sections (name) VALUES (?)`,
		fmt.Sprintf("Carta %d", suffix))
	if err != nil {
		t.Fatalf("insert menu section: %v", err)
	}
	sectionID, err := res.LastInsertId()
	if err != nil {
		t.Fatalf("last insert id: %v", err)
	}
	res, err = db.ExecContext(ctx,
		`INSERT INTO menu_items (section_id, name, price) VALUES (?, ?, ?)`,
		sectionID, fmt.Sprintf("arepa-%d", suffix), "2.50")
	if err != nil {
		t.Fatalf("insert menu item: %v", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		t.Fatalf("last insert id: %v", err)
	}
	return uint64(id)
}
