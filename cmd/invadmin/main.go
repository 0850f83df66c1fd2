package main

import (
	"io"
	"log"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/filesystem"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	html "github.com/gofiber/template/html/v2"
	"github.com/jmoiron/sqlx"

	"invadmin/internal/config"
	"invadmin/internal/http/handlers"
	"invadmin/internal/repos"
	"invadmin/web"
)

func main() {
	cfg := config.Load()

	// Optional file logging
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			log.Printf("[warn] could not open log file %s: %v", cfg.LogFile, err)
		} else {
			defer f.Close()
			log.SetOutput(io.MultiWriter(os.Stdout, f))
		}
	}

	var db *sqlx.DB
	if cfg.ServeAPI {
		var err error
		db, err = repos.OpenDB(cfg.DBDriver, cfg.DBDSN)
		if err != nil {
			log.Fatal(err)
		}
		defer db.Close()
		if err := repos.SeedIfEmpty(db); err != nil {
			log.Fatal(err)
		}
	}

	engine := html.NewFileSystem(web.Templates(), ".html")

	app := fiber.New(fiber.Config{
		Views:        engine,
		ErrorHandler: handlers.ErrorHandler,
	})
	// Global body size guard
	app.Server().MaxRequestBodySize = 1 << 20 // 1 MiB

	// ---------- Middlewares ----------
	app.Use(requestid.New())
	app.Use(logger.New())
	app.Use(helmet.New())

	// ---------- Static assets ----------
	log.Printf("[static] /static -> embedded web/static")
	app.Use("/static", filesystem.New(filesystem.Config{Root: web.Static()}))

	deps := handlers.NewDeps(db, cfg)

	handlers.Mount(app, deps, 120, time.Minute)
	if deps.InventoryHandler == nil {
		log.Printf("[api] console uses remote API at %s", cfg.APIBaseURL)
	}
	app.Use(handlers.NotFound)

	log.Fatal(app.Listen(":" + cfg.Port))
}
