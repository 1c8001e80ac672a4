package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	httpapi "github.com/lakeboard/lakeboard/internal/api/http"
	"github.com/lakeboard/lakeboard/internal/archive"
	"github.com/lakeboard/lakeboard/internal/buoy"
	"github.com/lakeboard/lakeboard/internal/config"
	"github.com/lakeboard/lakeboard/internal/forecast"
	"github.com/lakeboard/lakeboard/internal/glofs"
	"github.com/lakeboard/lakeboard/internal/scheduler"
	"github.com/lakeboard/lakeboard/internal/store"
)

func main() {
	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// Shared HTTP client for outbound GLOFS calls.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	client := glofs.NewClient(cfg.GLOFSBaseURL, httpClient)

	// In-memory store with configured retention.
	memStore := store.NewMemoryStore(cfg.StoreMaxHistory, cfg.StoreMaxAge)

	// Optional frame archiver.
	var archiver forecast.Archiver
	if cfg.Archive != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		storage, err := archive.NewMinIOStorage(ctx, *cfg.Archive)
		cancel()
		if err != nil {
			log.Fatalf("failed to initialize frame archive: %v", err)
		}
		archiver = archive.NewFrameArchiver(storage)
	}

	// Core service orchestrating the client, store and archive.
	service := forecast.NewService(client, memStore, archiver)

	// Buoy fleet registry.
	buoys := buoy.NewStore()

	// Scheduler that periodically refreshes runs and prefetches frames.
	sched := scheduler.New(cfg.Lakes, cfg.RefreshHours, cfg.RefreshInterval, service)
	if err := sched.Start(); err != nil {
		log.Fatalf("failed to start scheduler: %v", err)
	}
	defer sched.Stop()

	// Basic app configuration
	app := fiber.New(fiber.Config{
		AppName:               "lakeboard",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          10 * time.Second,
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

	// Basic health endpoint
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "lakeboard",
		})
	})

	// API routes.
	httpapi.RegisterRoutes(app, service, buoys)

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
