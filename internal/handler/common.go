// Package handler implements the HTTP boundary of the POS core.  Every
// operation returns JSON: a payload on success, {"error": "..."} with a
// mapped status otherwise.  No error values escape to the framework;
// multi-statement operations run in an explicit transaction owned by
// the handler.
package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/arepabyte/comanda/internal/model"
	"github.com/arepabyte/comanda/internal/repository"
)

// parseID extracts a positive numeric path parameter.
func parseID(c echo.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return id, true
}

// respondError translates the repository/model failure taxonomy into
// an HTTP response: validation 422, conflict and stock consistency
// 409, not found 404, anything else 500.  Storage details are logged,
// never returned to the client.
func respondError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, model.ErrInvalidLine), errors.Is(err, repository.ErrValidation):
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": err.Error()})
	case errors.Is(err, repository.ErrConflict):
		return c.JSON(http.StatusConflict, echo.Map{"error": "conflict"})
	case errors.Is(err, repository.ErrInsufficientStock):
		return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
	case errors.Is(err, repository.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
	default:
		c.Logger().Error(err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
}
