package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/arepabyte/comanda/internal/model"
	"github.com/arepabyte/comanda/internal/repository"
)

// KitchenHandler serves the kitchen display: the live ticket board and
// the per-line / per-ticket preparation state transitions.
type KitchenHandler struct {
	Kitchen *repository.KitchenRepo
}

// NewKitchenHandler constructs a KitchenHandler.
func NewKitchenHandler(kitchen *repository.KitchenRepo) *KitchenHandler {
	if kitchen == nil {
		panic("nil repository passed to NewKitchenHandler")
	}
	return &KitchenHandler{Kitchen: kitchen}
}

// Tickets handles GET /v1/kitchen/tickets — every open order with at
// least one line not yet ready, oldest first, with elapsed minutes
// computed against the request time.
func (h *KitchenHandler) Tickets(c echo.Context) error {
	tickets, err := h.Kitchen.ActiveTickets(c.Request().Context(), time.Now().UTC())
	if err != nil {
		return respondError(c, err)
	}
	if tickets == nil {
		tickets = []model.Ticket{}
	}
	return c.JSON(http.StatusOK, echo.Map{"tickets": tickets})
}

// SetLineState handles PATCH /v1/kitchen/lines/:id/state.  Any of the
// three preparation states can be set directly; moving a line back
// from ready to preparing is a legitimate correction.
func (h *KitchenHandler) SetLineState(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid line id"})
	}
	var body struct {
		State string `json:"state"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if !model.ValidKitchenState(body.State) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid kitchen state"})
	}
	if err := h.Kitchen.SetLineState(c.Request().Context(), id, body.State); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"id": id, "state": body.State})
}

// BulkAdvance handles POST /v1/kitchen/orders/:id/advance — moves
// every line of an order to the target state in one statement.  An
// optional "from" restricts the move to lines currently in that state,
// so "mark everything pending as preparing" leaves ready lines alone.
func (h *KitchenHandler) BulkAdvance(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid order id"})
	}
	var body struct {
		From string `json:"from"`
		To   string `json:"to"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if !model.ValidKitchenState(body.To) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid kitchen state"})
	}
	if body.From != "" && !model.ValidKitchenState(body.From) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid kitchen state"})
	}
	moved, err := h.Kitchen.BulkAdvance(c.Request().Context(), id, body.From, body.To)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"order_id": id, "state": body.To, "moved": moved})
}

// Counts handles GET /v1/kitchen/counts — how many lines of open
// orders sit in each preparation state, for the board header.
func (h *KitchenHandler) Counts(c echo.Context) error {
	counts, err := h.Kitchen.CountsByState(c.Request().Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, counts)
}
