package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/arepabyte/comanda/internal/model"
	"github.com/arepabyte/comanda/internal/queue"
	"github.com/arepabyte/comanda/internal/repository"
	queue_publisher "github.com/arepabyte/comanda/internal/service"
)

// InvoiceHandler issues invoices and serves the invoice archive.
// Issuing is the terminal step of an order: it fixes both currency
// totals, closes the order and frees its table in one transaction.
type InvoiceHandler struct {
	Invoices *repository.InvoiceRepo
	Orders   *repository.OrderRepo
	Tables   *repository.TableRepo
	Rates    *repository.RateRepo
}

// NewInvoiceHandler constructs an InvoiceHandler with its repositories.
func NewInvoiceHandler(invoices *repository.InvoiceRepo, orders *repository.OrderRepo, tables *repository.TableRepo, rates *repository.RateRepo) *InvoiceHandler {
	if invoices == nil || orders == nil || tables == nil || rates == nil {
		panic("nil repository passed to NewInvoiceHandler")
	}
	return &InvoiceHandler{Invoices: invoices, Orders: orders, Tables: tables, Rates: rates}
}

func invoiceJSON(inv model.Invoice) echo.Map {
	return echo.Map{
		"id":             inv.ID,
		"order_id":       inv.OrderID,
		"invoice_number": inv.Number,
		"issued_at":      inv.IssuedAt,
		"customer_name":  inv.Customer,
		"payment_method": inv.PaymentMethod,
		"total_usd":      inv.TotalUSD,
		"total_ves":      inv.TotalVES,
	}
}

// Issue handles POST /v1/invoices.  The order must be open; it is
// locked, invoiced at the latest known exchange rate, closed, and its
// table freed — all in one transaction.  The caller may override the
// billed name and USD total (a fiscal name differing from the order's
// customer, or a manually discounted total); omitted, both come from
// the stored order.  A duplicate invoice number or an already-closed
// order answers 409 with nothing written.  When no rate has ever been
// registered the conversion falls back to 1.0, which is loud in the
// logs and obvious on the invoice.
func (h *InvoiceHandler) Issue(c echo.Context) error {
	var body struct {
		OrderID       uint64           `json:"order_id"`
		Number        string           `json:"invoice_number"`
		PaymentMethod string           `json:"payment_method"`
		Customer      string           `json:"customer_name"`
		TotalUSD      *decimal.Decimal `json:"total_usd"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if body.OrderID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "order_id is required"})
	}
	body.Number = strings.TrimSpace(body.Number)
	if body.Number == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invoice_number is required"})
	}

	ctx := c.Request().Context()

	rate := decimal.NewFromInt(1)
	if known, err := h.Rates.LatestKnown(ctx); err == nil {
		rate = known.Rate
	} else {
		c.Logger().Warnf("no exchange rate registered, converting order %d at 1.0", body.OrderID)
	}

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

	tableID, err := h.Orders.LockOpenTx(ctx, tx, body.OrderID)
	if err != nil {
		return respondError(c, err)
	}
	order, err := h.Orders.GetByID(ctx, body.OrderID)
	if err != nil {
		return respondError(c, err)
	}

	customer := strings.TrimSpace(body.Customer)
	if customer == "" {
		customer = order.Customer
	}
	totalUSD := order.Total
	if body.TotalUSD != nil {
		if body.TotalUSD.IsNegative() {
			return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "total_usd cannot be negative"})
		}
		totalUSD = *body.TotalUSD
	}

	now := time.Now().UTC()
	inv := &model.Invoice{
		OrderID:       body.OrderID,
		Number:        body.Number,
		IssuedAt:      now,
		Customer:      customer,
		PaymentMethod: body.PaymentMethod,
		TotalUSD:      totalUSD,
		TotalVES:      totalUSD.Mul(rate).Round(2),
	}
	inv.ID, err = h.Invoices.CreateTx(ctx, tx, inv)
	if err != nil {
		return respondError(c, err)
	}
	if err := h.Orders.CloseTx(ctx, tx, body.OrderID, now); err != nil {
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

	_ = queue_publisher.PublishInvoiceIssued(ctx, queue.InvoiceIssuedEvent{
		InvoiceID: inv.ID,
		Number:    inv.Number,
		OrderID:   inv.OrderID,
		TotalUSD:  inv.TotalUSD.StringFixed(2),
		TotalVES:  inv.TotalVES.StringFixed(2),
		IssuedAt:  now.Format(time.RFC3339),
	})

	return c.JSON(http.StatusCreated, invoiceJSON(*inv))
}

// Get handles GET /v1/invoices/:id.
func (h *InvoiceHandler) Get(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid invoice id"})
	}
	inv, err := h.Invoices.GetByID(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, invoiceJSON(*inv))
}

// List handles GET /v1/invoices, with three mutually stacking filters:
// ?q= matches number or customer substring, ?from=/?to= bound the
// issue date (inclusive, YYYY-MM-DD).  Without filters it returns the
// whole archive, newest first.
func (h *InvoiceHandler) List(c echo.Context) error {
	ctx := c.Request().Context()
	var (
		invoices []model.Invoice
		err      error
	)
	switch {
	case c.QueryParam("q") != "":
		invoices, err = h.Invoices.Search(ctx, c.QueryParam("q"))
	case c.QueryParam("from") != "" || c.QueryParam("to") != "":
		from, okFrom := parseRateDate(c.QueryParam("from"))
		to, okTo := parseRateDate(c.QueryParam("to"))
		if !okFrom || !okTo {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid date range, want YYYY-MM-DD"})
		}
		// to is a calendar date; stretch it to the last second of
		// that day so the range is inclusive.
		invoices, err = h.Invoices.InRange(ctx, from, to.Add(24*time.Hour-time.Second))
	default:
		invoices, err = h.Invoices.List(ctx)
	}
	if err != nil {
		return respondError(c, err)
	}
	out := make([]echo.Map, 0, len(invoices))
	for _, inv := range invoices {
		out = append(out, invoiceJSON(inv))
	}
	return c.JSON(http.StatusOK, echo.Map{"invoices": out})
}

// Lines handles GET /v1/invoices/:id/lines — the invoiced order's
// lines with catalog names, for receipt rendering.
func (h *InvoiceHandler) Lines(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid invoice id"})
	}
	ctx := c.Request().Context()
	if _, err := h.Invoices.GetByID(ctx, id); err != nil {
		return respondError(c, err)
	}
	lines, err := h.Invoices.Lines(ctx, id)
	if err != nil {
		return respondError(c, err)
	}
	if lines == nil {
		lines = []model.InvoiceLine{}
	}
	return c.JSON(http.StatusOK, echo.Map{"invoice_id": id, "lines": lines})
}
