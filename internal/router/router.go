package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // the Echo web framework handles routing
	"github.com/redis/go-redis/v9"

	"github.com/arepabyte/comanda/internal/config"
	"github.com/arepabyte/comanda/internal/handler"
	"github.com/arepabyte/comanda/internal/middleware"
)

// Handlers bundles every handler the API mounts, so main can build them
// once and hand them over in a single value.
type Handlers struct {
	Sections *handler.SectionHandler
	Tables   *handler.TableHandler
	Orders   *handler.OrderHandler
	Kitchen  *handler.KitchenHandler
	Menu     *handler.MenuHandler
	Stock    *handler.StockHandler
	Rates    *handler.RateHandler
	Invoices *handler.InvoiceHandler
}

// RegisterRoutes wires the full API onto the provided Echo instance.
// Everything lives under /v1 except the health check, which sits at
// /healthz for load balancers and supervisors.  The Redis response
// cache is applied only to the invoice archive and the exchange rate
// history: both are append-mostly, and issued invoices never change.
func RegisterRoutes(e *echo.Echo, h Handlers, rdb *redis.Client) {
	e.GET("/healthz", handler.Health)

	v1 := e.Group("/v1")

	// Dining room layout.
	v1.GET("/sections", h.Sections.List)
	v1.POST("/sections", h.Sections.Create)
	v1.DELETE("/sections/:id", h.Sections.Delete)

	v1.GET("/tables", h.Tables.List)
	v1.POST("/tables", h.Tables.Create)
	v1.GET("/tables/:id", h.Tables.Get)
	v1.PATCH("/tables/:id/state", h.Tables.ChangeState)
	v1.DELETE("/tables/:id", h.Tables.Delete)
	v1.GET("/tables/:id/order", h.Orders.OpenByTable)

	// Order lifecycle.  POST confirms (creates or re-confirms with a
	// full line replacement); DELETE cancels an open order.
	v1.GET("/orders", h.Orders.List)
	v1.POST("/orders", h.Orders.Confirm)
	v1.GET("/orders/:id", h.Orders.Get)
	v1.GET("/orders/:id/lines", h.Orders.Lines)
	v1.DELETE("/orders/:id", h.Orders.Cancel)

	// Menu browse (read-only; catalog editing lives elsewhere).
	v1.GET("/menu", h.Menu.List)

	// Kitchen display.
	v1.GET("/kitchen/tickets", h.Kitchen.Tickets)
	v1.GET("/kitchen/counts", h.Kitchen.Counts)
	v1.PATCH("/kitchen/lines/:id/state", h.Kitchen.SetLineState)
	v1.POST("/kitchen/orders/:id/advance", h.Kitchen.BulkAdvance)

	// Ingredient inventory.
	v1.GET("/stock/items", h.Stock.List)
	v1.POST("/stock/items", h.Stock.Create)
	v1.GET("/stock/items/:id", h.Stock.Get)
	v1.PUT("/stock/items/:id", h.Stock.Update)
	v1.DELETE("/stock/items/:id", h.Stock.Delete)
	v1.GET("/stock/items/:id/quantity", h.Stock.Quantity)
	v1.POST("/stock/quantities", h.Stock.QuantityBatch)
	v1.POST("/stock/adjustments", h.Stock.Adjust)

	// Cached read-side: invoice archive and rate history.
	cached := e.Group("/v1", middleware.NewRedisCache(config.LoadCacheConfig(), rdb))

	cached.GET("/rates", h.Rates.List)
	cached.GET("/rates/latest", h.Rates.Latest)
	cached.GET("/rates/:date", h.Rates.Get)
	v1.PUT("/rates/:date", h.Rates.Set)
	v1.DELETE("/rates/:date", h.Rates.Delete)

	v1.POST("/invoices", h.Invoices.Issue)
	cached.GET("/invoices", h.Invoices.List)
	cached.GET("/invoices/:id", h.Invoices.Get)
	cached.GET("/invoices/:id/lines", h.Invoices.Lines)
}
