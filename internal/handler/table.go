package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/arepabyte/comanda/internal/model"
	"github.com/arepabyte/comanda/internal/repository"
)

// TableHandler exposes the table registry: listing with filters,
// creation with auto-generated names, manual state changes
// (reserve/release) and deletion.  The implicit occupancy transitions
// live in the order and invoice handlers.
type TableHandler struct {
	Tables *repository.TableRepo
}

// NewTableHandler constructs a TableHandler.
func NewTableHandler(tables *repository.TableRepo) *TableHandler {
	if tables == nil {
		panic("nil repository passed to NewTableHandler")
	}
	return &TableHandler{Tables: tables}
}

func tableJSON(t model.Table) echo.Map {
	return echo.Map{
		"id":         t.ID,
		"name":       t.Name,
		"state":      t.State,
		"section_id": t.SectionID,
	}
}

// List handles GET /v1/tables with optional ?section_id=, ?state= and
// ?q= (name substring) filters, all combined with AND.
func (h *TableHandler) List(c echo.Context) error {
	var sectionID uint64
	if raw := c.QueryParam("section_id"); raw != "" {
		n, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid section_id"})
		}
		sectionID = n
	}
	state := c.QueryParam("state")
	if state != "" && !model.ValidTableState(state) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid state filter"})
	}
	tables, err := h.Tables.List(c.Request().Context(), sectionID, state, c.QueryParam("q"))
	if err != nil {
		return respondError(c, err)
	}
	out := make([]echo.Map, 0, len(tables))
	for _, t := range tables {
		out = append(out, tableJSON(t))
	}
	return c.JSON(http.StatusOK, echo.Map{"tables": out})
}

// Get handles GET /v1/tables/:id.
func (h *TableHandler) Get(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid table id"})
	}
	t, err := h.Tables.GetByID(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, tableJSON(*t))
}

// Create handles POST /v1/tables.  The table name is derived from the
// section, never supplied by the client.
func (h *TableHandler) Create(c echo.Context) error {
	var body struct {
		SectionID uint64 `json:"section_id"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if body.SectionID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "section_id is required"})
	}
	id, name, err := h.Tables.Create(c.Request().Context(), body.SectionID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"id": id, "name": name, "state": model.TableStateFree})
}

// ChangeState handles PATCH /v1/tables/:id/state.  The write is
// unconditional: reserve, release and manual corrections all go
// through here and the caller answers for transition legality.
func (h *TableHandler) ChangeState(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid table id"})
	}
	var body struct {
		State string `json:"state"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if !model.ValidTableState(body.State) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid state"})
	}
	if err := h.Tables.SetState(c.Request().Context(), id, body.State); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"id": id, "state": body.State})
}

// Delete handles DELETE /v1/tables/:id.  Occupied tables are protected
// (409); reserved ones are deletable.
func (h *TableHandler) Delete(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid table id"})
	}
	if err := h.Tables.Delete(c.Request().Context(), id); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
