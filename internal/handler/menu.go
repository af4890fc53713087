package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/arepabyte/comanda/internal/repository"
)

// MenuHandler serves the read-only menu browse for the waiter UI.
type MenuHandler struct {
	Catalog *repository.CatalogRepo
}

// NewMenuHandler constructs a MenuHandler.
func NewMenuHandler(catalog *repository.CatalogRepo) *MenuHandler {
	if catalog == nil {
		panic("nil repository passed to NewMenuHandler")
	}
	return &MenuHandler{Catalog: catalog}
}

// List handles GET /v1/menu — the available items with their variants,
// in menu order.
func (h *MenuHandler) List(c echo.Context) error {
	ctx := c.Request().Context()
	items, err := h.Catalog.AvailableItems(ctx)
	if err != nil {
		return respondError(c, err)
	}
	ids := make([]uint64, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.ID)
	}
	variants, err := h.Catalog.VariantsByItem(ctx, ids)
	if err != nil {
		return respondError(c, err)
	}
	out := make([]echo.Map, 0, len(items))
	for _, it := range items {
		vs := make([]echo.Map, 0, len(variants[it.ID]))
		for _, v := range variants[it.ID] {
			vs = append(vs, echo.Map{"id": v.ID, "name": v.Name, "price": v.Price})
		}
		out = append(out, echo.Map{
			"id":         it.ID,
			"section_id": it.SectionID,
			"name":       it.Name,
			"price":      it.Price,
			"variants":   vs,
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": out})
}
