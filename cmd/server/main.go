package main // Entry point package

import (
	"context"
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/arepabyte/comanda/internal/config"
	"github.com/arepabyte/comanda/internal/database"
	"github.com/arepabyte/comanda/internal/handler"
	"github.com/arepabyte/comanda/internal/middleware"
	"github.com/arepabyte/comanda/internal/queue"
	"github.com/arepabyte/comanda/internal/repository"
	"github.com/arepabyte/comanda/internal/router"
)

func main() {
	_ = godotenv.Load() // .env is optional; real env vars win

	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database connect: %v", err)
	}
	defer db.Close()

	if err := database.EnsureSchema(context.Background(), db); err != nil {
		log.Fatalf("database schema: %v", err)
	}

	sections := repository.NewSectionRepo(db)
	tables := repository.NewTableRepo(db)
	catalog := repository.NewCatalogRepo(db)
	orders := repository.NewOrderRepo(db)
	kitchen := repository.NewKitchenRepo(db)
	stock := repository.NewStockRepo(db)
	rates := repository.NewRateRepo(db)
	invoices := repository.NewInvoiceRepo(db)

	h := router.Handlers{
		Sections: handler.NewSectionHandler(sections),
		Tables:   handler.NewTableHandler(tables),
		Orders:   handler.NewOrderHandler(orders, tables, catalog),
		Kitchen:  handler.NewKitchenHandler(kitchen),
		Menu:     handler.NewMenuHandler(catalog),
		Stock:    handler.NewStockHandler(stock),
		Rates:    handler.NewRateHandler(rates),
		Invoices: handler.NewInvoiceHandler(invoices, orders, tables, rates),
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Logger())
	e.Use(echomw.Recover())

	// Redis is optional: without it the limiter and the response cache
	// turn into no-ops and every request hits MySQL.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Printf("redis unavailable, running without cache and rate limiting")
	}
	e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))

	router.RegisterRoutes(e, h, rdb)

	// Kitchen log consumer runs for the life of the process and
	// reconnects on its own; it never brings the API down.
	go func() {
		if err := queue.StartKitchenConsumer(); err != nil {
			log.Printf("kitchen consumer stopped: %v", err)
		}
	}()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)

	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
