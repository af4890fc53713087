package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/arepabyte/comanda/internal/model"
	"github.com/arepabyte/comanda/internal/queue"
	"github.com/arepabyte/comanda/internal/repository"
	queue_publisher "github.com/arepabyte/comanda/internal/service"
)

// OrderHandler implements the order lifecycle: confirm (create or
// full-replace update), cancel, and the read operations the waiter UI
// needs.  Confirmation and cancellation each run as one transaction;
// any validation failure aborts before the first write.
type OrderHandler struct {
	Orders  *repository.OrderRepo
	Tables  *repository.TableRepo
	Catalog *repository.CatalogRepo
}

// NewOrderHandler constructs an OrderHandler with its repositories.
func NewOrderHandler(orders *repository.OrderRepo, tables *repository.TableRepo, catalog *repository.CatalogRepo) *OrderHandler {
	if orders == nil || tables == nil || catalog == nil {
		panic("nil repository passed to NewOrderHandler")
	}
	return &OrderHandler{Orders: orders, Tables: tables, Catalog: catalog}
}

type lineRequest struct {
	MenuItemID uint64           `json:"menu_item_id"`
	VariantID  *uint64          `json:"variant_id"`
	Quantity   int              `json:"quantity"`
	Subtotal   *decimal.Decimal `json:"subtotal"`
}

type confirmRequest struct {
	TableID  *uint64       `json:"table_id"`
	OrderID  *uint64       `json:"order_id"`
	Customer string        `json:"customer_name"`
	Lines    []lineRequest `json:"lines"`
}

func orderJSON(o model.Order) echo.Map {
	m := echo.Map{
		"id":            o.ID,
		"table_id":      o.TableID,
		"customer_name": o.Customer,
		"state":         o.State,
		"total":         o.Total,
		"created_at":    o.CreatedAt,
	}
	if o.UpdatedAt != nil {
		m["updated_at"] = o.UpdatedAt
	}
	if o.ClosedAt != nil {
		m["closed_at"] = o.ClosedAt
	}
	return m
}

func lineJSON(l model.OrderLine) echo.Map {
	return echo.Map{
		"id":            l.ID,
		"menu_item_id":  l.MenuItemID,
		"variant_id":    l.VariantID,
		"item_name":     l.ItemName,
		"quantity":      l.Quantity,
		"unit_price":    l.UnitPrice,
		"subtotal":      l.Subtotal,
		"kitchen_state": l.KitchenState,
	}
}

// Confirm handles POST /v1/orders.  Without order_id it opens a new
// order, occupying the table when one is given; with order_id it
// updates the header and replaces the full line set (discarding line
// identity, so kitchen states restart at pending).  The catalog price
// snapshot, validation and every write share one transaction: the
// second of two simultaneous opens on the same table loses on the
// unique open-order key at commit and gets a 409.
func (h *OrderHandler) Confirm(c echo.Context) error {
	var body confirmRequest
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if len(body.Lines) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "lines is required"})
	}

	inputs := make([]model.LineInput, 0, len(body.Lines))
	itemIDs := make([]uint64, 0, len(body.Lines))
	variantIDs := make([]uint64, 0)
	for _, l := range body.Lines {
		inputs = append(inputs, model.LineInput{
			MenuItemID: l.MenuItemID,
			VariantID:  l.VariantID,
			Quantity:   l.Quantity,
			Subtotal:   l.Subtotal,
		})
		itemIDs = append(itemIDs, l.MenuItemID)
		if l.VariantID != nil {
			variantIDs = append(variantIDs, *l.VariantID)
		}
	}

	ctx := c.Request().Context()
	tx, err := h.Orders.DB().BeginTx(ctx, nil)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to start transaction"})
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	prices, err := h.Catalog.PricesTx(ctx, tx, itemIDs, variantIDs)
	if err != nil {
		return respondError(c, err)
	}
	lines, total, err := model.PriceLines(inputs, prices)
	if err != nil {
		return respondError(c, err)
	}

	now := time.Now().UTC()
	var orderID uint64
	if body.OrderID != nil {
		orderID = *body.OrderID
		if err := h.Orders.UpdateHeaderTx(ctx, tx, orderID, body.Customer, total, now); err != nil {
			return respondError(c, err)
		}
	} else {
		orderID, err = h.Orders.CreateTx(ctx, tx, body.TableID, body.Customer, total, now)
		if err != nil {
			return respondError(c, err)
		}
		if body.TableID != nil {
			if err := h.Tables.SetStateTx(ctx, tx, *body.TableID, model.TableStateOccupied); err != nil {
				return respondError(c, err)
			}
		}
	}
	if err := h.Orders.ReplaceLinesTx(ctx, tx, orderID, lines); err != nil {
		return respondError(c, err)
	}
	if err := tx.Commit(); err != nil {
		return respondError(c, err)
	}
	committed = true

	h.publishConfirmed(c, orderID, body.Customer, total, now)

	return c.JSON(http.StatusCreated, echo.Map{"order_id": orderID, "total": total})
}

// publishConfirmed emits the order.confirmed event for the kitchen
// display.  Best effort: failures are logged by the publisher and
// never affect the response.
func (h *OrderHandler) publishConfirmed(c echo.Context, orderID uint64, customer string, total decimal.Decimal, at time.Time) {
	ctx := c.Request().Context()
	ev := queue.OrderConfirmedEvent{
		OrderID:     orderID,
		Customer:    customer,
		Total:       total.StringFixed(2),
		ConfirmedAt: at.Format(time.RFC3339),
	}
	if o, err := h.Orders.GetByID(ctx, orderID); err == nil && o.TableID != nil {
		if t, err := h.Tables.GetByID(ctx, *o.TableID); err == nil {
			ev.TableName = t.Name
		}
	}
	if lines, err := h.Orders.ListLines(ctx, orderID); err == nil {
		for _, l := range lines {
			ev.Lines = append(ev.Lines, queue.OrderConfirmedLine{
				ItemName: l.ItemName,
				Quantity: l.Quantity,
			})
		}
	}
	_ = queue_publisher.PublishOrderConfirmed(ctx, ev)
}

// Cancel handles DELETE /v1/orders/:id.  Only open orders can be
// cancelled; the order and its lines are deleted outright (no audit
// row) and its table returns to free.  A closed order answers 409, an
// unknown one 404, in both cases with no side effects.
func (h *OrderHandler) Cancel(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid order id"})
	}
	ctx := c.Request().Context()
	tx, err := h.Orders.DB().BeginTx(ctx, nil)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to start transaction"})
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	tableID, err := h.Orders.LockOpenTx(ctx, tx, id)
	if err != nil {
		return respondError(c, err)
	}
	if err := h.Orders.DeleteTx(ctx, tx, id); err != nil {
		return respondError(c, err)
	}
	if tableID != nil {
		if err := h.Tables.SetStateTx(ctx, tx, *tableID, model.TableStateFree); err != nil {
			return respondError(c, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return respondError(c, err)
	}
	committed = true
	return c.NoContent(http.StatusNoContent)
}

// OpenByTable handles GET /v1/tables/:id/order — the single open order
// for a table, 404 when it has none.
func (h *OrderHandler) OpenByTable(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid table id"})
	}
	o, err := h.Orders.GetOpenByTable(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, orderJSON(*o))
}

// Get handles GET /v1/orders/:id.
func (h *OrderHandler) Get(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid order id"})
	}
	o, err := h.Orders.GetByID(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, orderJSON(*o))
}

// List handles GET /v1/orders?state=open|closed (default open),
// newest first.
func (h *OrderHandler) List(c echo.Context) error {
	state := c.QueryParam("state")
	if state == "" {
		state = model.OrderStateOpen
	}
	if state != model.OrderStateOpen && state != model.OrderStateClosed {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid state filter"})
	}
	orders, err := h.Orders.ListByState(c.Request().Context(), state)
	if err != nil {
		return respondError(c, err)
	}
	out := make([]echo.Map, 0, len(orders))
	for _, o := range orders {
		out = append(out, orderJSON(o))
	}
	return c.JSON(http.StatusOK, echo.Map{"orders": out})
}

// Lines handles GET /v1/orders/:id/lines — the order's lines joined
// with catalog names, in insertion order.
func (h *OrderHandler) Lines(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid order id"})
	}
	ctx := c.Request().Context()
	if _, err := h.Orders.GetByID(ctx, id); err != nil {
		return respondError(c, err)
	}
	lines, err := h.Orders.ListLines(ctx, id)
	if err != nil {
		return respondError(c, err)
	}
	out := make([]echo.Map, 0, len(lines))
	for _, l := range lines {
		out = append(out, lineJSON(l))
	}
	return c.JSON(http.StatusOK, echo.Map{"order_id": id, "lines": out})
}
