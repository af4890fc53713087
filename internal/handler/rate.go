package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/arepabyte/comanda/internal/repository"
)

const rateDateLayout = "2006-01-02"

// RateHandler manages the USD→VES exchange rate registry: one rate per
// calendar day, set by the cashier each morning.
type RateHandler struct {
	Rates *repository.RateRepo
}

// NewRateHandler constructs a RateHandler.
func NewRateHandler(rates *repository.RateRepo) *RateHandler {
	if rates == nil {
		panic("nil repository passed to NewRateHandler")
	}
	return &RateHandler{Rates: rates}
}

func parseRateDate(raw string) (time.Time, bool) {
	d, err := time.Parse(rateDateLayout, raw)
	if err != nil {
		return time.Time{}, false
	}
	return d, true
}

// Set handles PUT /v1/rates/:date — upsert, so correcting today's rate
// is the same call as registering it.
func (h *RateHandler) Set(c echo.Context) error {
	date, ok := parseRateDate(c.Param("date"))
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid date, want YYYY-MM-DD"})
	}
	var body struct {
		Rate decimal.Decimal `json:"rate"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if !body.Rate.IsPositive() {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "rate must be positive"})
	}
	if err := h.Rates.Set(c.Request().Context(), date, body.Rate); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"date": date.Format(rateDateLayout), "rate": body.Rate})
}

// Get handles GET /v1/rates/:date.
func (h *RateHandler) Get(c echo.Context) error {
	date, ok := parseRateDate(c.Param("date"))
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid date, want YYYY-MM-DD"})
	}
	r, err := h.Rates.Get(c.Request().Context(), date)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"date": r.Date.Format(rateDateLayout), "rate": r.Rate})
}

// Latest handles GET /v1/rates/latest — the most recent registered
// rate by date, today or not.  This is the rate invoices convert with
// when no rate was entered this morning.
func (h *RateHandler) Latest(c echo.Context) error {
	r, err := h.Rates.LatestKnown(c.Request().Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"date": r.Date.Format(rateDateLayout), "rate": r.Rate})
}

// List handles GET /v1/rates, newest first.
func (h *RateHandler) List(c echo.Context) error {
	rates, err := h.Rates.List(c.Request().Context())
	if err != nil {
		return respondError(c, err)
	}
	out := make([]echo.Map, 0, len(rates))
	for _, r := range rates {
		out = append(out, echo.Map{"date": r.Date.Format(rateDateLayout), "rate": r.Rate})
	}
	return c.JSON(http.StatusOK, echo.Map{"rates": out})
}

// Delete handles DELETE /v1/rates/:date.  Removing a rate never
// touches invoices already issued with it.
func (h *RateHandler) Delete(c echo.Context) error {
	date, ok := parseRateDate(c.Param("date"))
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid date, want YYYY-MM-DD"})
	}
	if err := h.Rates.Delete(c.Request().Context(), date); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
