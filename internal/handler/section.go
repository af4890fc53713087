package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/arepabyte/comanda/internal/repository"
)

// SectionHandler exposes dining-room section management.  Sections are
// lightweight admin data; the interesting part is that table name
// generation reads them.
type SectionHandler struct {
	Sections *repository.SectionRepo
}

// NewSectionHandler constructs a SectionHandler.
func NewSectionHandler(sections *repository.SectionRepo) *SectionHandler {
	if sections == nil {
		panic("nil repository passed to NewSectionHandler")
	}
	return &SectionHandler{Sections: sections}
}

// List handles GET /v1/sections.
func (h *SectionHandler) List(c echo.Context) error {
	sections, err := h.Sections.List(c.Request().Context())
	if err != nil {
		return respondError(c, err)
	}
	out := make([]echo.Map, 0, len(sections))
	for _, s := range sections {
		out = append(out, echo.Map{"id": s.ID, "name": s.Name})
	}
	return c.JSON(http.StatusOK, echo.Map{"sections": out})
}

// Create handles POST /v1/sections.
func (h *SectionHandler) Create(c echo.Context) error {
	var body struct {
		Name string `json:"name"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	name := strings.TrimSpace(body.Name)
	if name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
	}
	id, err := h.Sections.Create(c.Request().Context(), name)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"id": id, "name": name})
}

// Delete handles DELETE /v1/sections/:id.  Sections with tables are
// protected (409).
func (h *SectionHandler) Delete(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid section id"})
	}
	if err := h.Sections.Delete(c.Request().Context(), id); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
