package handlers

import (
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jmoiron/sqlx"

	"invadmin/internal/client"
	"invadmin/internal/config"
	"invadmin/internal/controller"
	"invadmin/internal/repos"
	"invadmin/internal/services"
)

type Deps struct {
	InventoryHandler *InventoryHandler
	ConsoleHandler   *ConsoleHandler
}

// NewDeps wires both halves: the API over db, and the console over an HTTP
// client pointed at cfg.APIBaseURL. db may be nil when the API is not served.
func NewDeps(db *sqlx.DB, cfg config.Config) *Deps {
	d := &Deps{}
	if db != nil {
		invRepo := repos.NewInventoryRepo(db)
		invSvc := services.NewInventoryService(invRepo)
		d.InventoryHandler = &InventoryHandler{Inv: invSvc}
	}

	api := client.NewInventoryClient(cfg.APIBaseURL, cfg.APITimeout)
	d.ConsoleHandler = &ConsoleHandler{Form: controller.New(api)}
	return d
}

// Mount registers the console, the API when it is served, and /healthz.
// Console and API keep separate rate limit buckets of max per window.
func Mount(app *fiber.App, d *Deps, max int, window time.Duration) {
	guard := CSRF()
	limit := RateLimit(max, window)
	app.Get("/", limit, guard, d.ConsoleHandler.Page)
	app.Post("/", limit, guard, d.ConsoleHandler.Submit)

	if d.InventoryHandler != nil {
		app.Use("/inventory", APIRateLimit(max, window))
		d.InventoryHandler.Routes(app)
		log.Printf("[api] inventory API mounted at /inventory")
	}

	app.Get("/healthz", func(c *fiber.Ctx) error { return c.JSON(fiber.Map{"ok": true}) })
}
