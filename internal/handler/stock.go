package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/arepabyte/comanda/internal/model"
	"github.com/arepabyte/comanda/internal/repository"
)

// StockHandler exposes ingredient inventory: item management, quantity
// reads and the transactional adjustment batch.
type StockHandler struct {
	Stock *repository.StockRepo
}

// NewStockHandler constructs a StockHandler.
func NewStockHandler(stock *repository.StockRepo) *StockHandler {
	if stock == nil {
		panic("nil repository passed to NewStockHandler")
	}
	return &StockHandler{Stock: stock}
}

func stockItemJSON(it model.StockItem) echo.Map {
	return echo.Map{
		"id":       it.ID,
		"name":     it.Name,
		"quantity": it.Quantity,
		"price":    it.Price,
	}
}

// List handles GET /v1/stock/items.
func (h *StockHandler) List(c echo.Context) error {
	items, err := h.Stock.List(c.Request().Context())
	if err != nil {
		return respondError(c, err)
	}
	out := make([]echo.Map, 0, len(items))
	for _, it := range items {
		out = append(out, stockItemJSON(it))
	}
	return c.JSON(http.StatusOK, echo.Map{"items": out})
}

// Get handles GET /v1/stock/items/:id.
func (h *StockHandler) Get(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid item id"})
	}
	it, err := h.Stock.GetItem(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, stockItemJSON(*it))
}

// Quantity handles GET /v1/stock/items/:id/quantity — just the number,
// for the availability badge.
func (h *StockHandler) Quantity(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid item id"})
	}
	qty, err := h.Stock.GetQuantity(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"id": id, "quantity": qty})
}

// QuantityBatch handles POST /v1/stock/quantities with {"ids": [...]}.
// The response carries one entry per requested id; unknown ids map to
// null rather than disappearing, so the client can tell "missing" from
// "zero".
func (h *StockHandler) QuantityBatch(c echo.Context) error {
	var body struct {
		IDs []uint64 `json:"ids"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if len(body.IDs) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "ids is required"})
	}
	quantities, err := h.Stock.GetQuantityBatch(c.Request().Context(), body.IDs)
	if err != nil {
		return respondError(c, err)
	}
	out := make(map[string]*int64, len(quantities))
	for id, qty := range quantities {
		out[strconv.FormatUint(id, 10)] = qty
	}
	return c.JSON(http.StatusOK, echo.Map{"quantities": out})
}

// Create handles POST /v1/stock/items.
func (h *StockHandler) Create(c echo.Context) error {
	var body struct {
		Name     string          `json:"name"`
		Quantity int64           `json:"quantity"`
		Price    decimal.Decimal `json:"price"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	name := strings.TrimSpace(body.Name)
	if name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
	}
	if body.Quantity < 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "quantity must not be negative"})
	}
	id, err := h.Stock.CreateItem(c.Request().Context(), name, body.Quantity, body.Price)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"id": id, "name": name, "quantity": body.Quantity})
}

// Update handles PUT /v1/stock/items/:id.  Name and price only: the
// quantity is owned by the adjustment flow and cannot be set here.
func (h *StockHandler) Update(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid item id"})
	}
	var body struct {
		Name  string          `json:"name"`
		Price decimal.Decimal `json:"price"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	name := strings.TrimSpace(body.Name)
	if name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
	}
	if err := h.Stock.UpdateItem(c.Request().Context(), id, name, body.Price); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"id": id, "name": name})
}

// Delete handles DELETE /v1/stock/items/:id.
func (h *StockHandler) Delete(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid item id"})
	}
	if err := h.Stock.DeleteItem(c.Request().Context(), id); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// Adjust handles POST /v1/stock/adjustments with
// {"adjustments": {"<item_id>": delta, ...}} — positive deltas consume
// stock, negative ones replenish it.  The whole batch is applied
// atomically under row locks: if any item is missing or any delta
// exceeds what is on hand, nothing changes and the client gets 404 or
// 409 respectively.
func (h *StockHandler) Adjust(c echo.Context) error {
	var body struct {
		Adjustments map[string]int64 `json:"adjustments"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if len(body.Adjustments) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "adjustments is required"})
	}
	diffs := make(map[uint64]int64, len(body.Adjustments))
	for raw, delta := range body.Adjustments {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil || id == 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid item id: " + raw})
		}
		diffs[id] = delta
	}
	if err := h.Stock.ApplyAdjustments(c.Request().Context(), diffs); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"adjusted": len(diffs)})
}
