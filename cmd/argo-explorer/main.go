package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	httpapi "github.com/oceandata/argo-explorer/internal/api/http"
	"github.com/oceandata/argo-explorer/internal/api/ws"
	"github.com/oceandata/argo-explorer/internal/cache"
	"github.com/oceandata/argo-explorer/internal/config"
	"github.com/oceandata/argo-explorer/internal/extract"
	"github.com/oceandata/argo-explorer/internal/index"
	"github.com/oceandata/argo-explorer/internal/scheduler"
	"github.com/oceandata/argo-explorer/internal/session"
)

func main() {
	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// Shared HTTP client for outbound archive calls.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	// Process-wide index snapshot and download cache.
	indexStore := index.NewStore(httpClient, cfg.LocalIndexPath, cfg.RemoteIndexURL)
	downloadCache, err := cache.New(httpClient, cfg.DownloadsDir, cfg.DownloadBaseURL)
	if err != nil {
		log.Fatalf("failed to init download cache: %v", err)
	}

	// Session orchestrator over the NetCDF-backed extractor.
	orchestrator := session.New(indexStore, downloadCache, extract.NewNetCDF())

	// Warm the index so the first query does not pay the load.
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		if _, err := indexStore.Load(ctx); err != nil {
			log.Printf("index warm-up failed (will retry on first query): %v", err)
		}
	}()

	// Periodic archive/cache stats job.
	sched := scheduler.New(indexStore, downloadCache, cfg.StatsInterval)
	if err := sched.Start(); err != nil {
		log.Fatalf("failed to start stats scheduler: %v", err)
	}
	defer sched.Stop()

	// Basic app configuration
	app := fiber.New(fiber.Config{
		AppName:               "argo-explorer",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			// Centralized error response
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error":   true,
				"message": err.Error(),
			})
		},
	})

	// Global middleware
	app.Use(logger.New())
	app.Use(recover.New())
	app.Use(cors.New())

	// Basic health endpoint
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "argo-explorer",
		})
	})

	// API routes: bounded request/response and progressive streaming.
	httpapi.RegisterRoutes(app, orchestrator, cfg.MaxProfiles)
	ws.RegisterRoutes(app, orchestrator)

	// Start server with graceful shutdown
	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Printf("fiber server stopped: %v", err)
		}
	}()

	// Wait for termination signal
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("error during shutdown: %v", err)
	}
}
