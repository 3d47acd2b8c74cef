package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"

	"github.com/samirrijal/demfetch/internal/adapters/filesystem"
	"github.com/samirrijal/demfetch/internal/adapters/http"
	"github.com/samirrijal/demfetch/internal/adapters/memory"
	natsadapter "github.com/samirrijal/demfetch/internal/adapters/nats"
	"github.com/samirrijal/demfetch/internal/adapters/opentopo"
	"github.com/samirrijal/demfetch/internal/adapters/valkey"
	"github.com/samirrijal/demfetch/internal/core/ports"
	"github.com/samirrijal/demfetch/internal/core/usecases"
	"github.com/samirrijal/demfetch/internal/pkg/config"
	"github.com/samirrijal/demfetch/internal/pkg/logging"
	"github.com/samirrijal/demfetch/internal/pkg/telemetry"
)

func main() {
	// A missing .env is fine; the key may come from the real environment.
	_ = godotenv.Load()

	cfg, err := config.Load("demfetch-api")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logging.Setup(cfg.Log.Level, cfg.Log.Format)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Telemetry
	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitTracer(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.TempoAddr)
		if err != nil {
			slog.Warn("telemetry init failed", "error", err)
		} else {
			defer shutdown()
		}
	}

	// Session slots: valkey when configured and reachable, memory otherwise
	var (
		selections ports.SelectionStore = memory.NewSelectionStore(time.Duration(cfg.Session.TTL) * time.Second)
		cache      *valkey.Cache
	)
	if cfg.Session.Store == "valkey" {
		cache, err = valkey.New(cfg.Valkey.Addr)
		if err != nil {
			slog.Warn("valkey unavailable, keeping selections in memory", "error", err)
		} else {
			defer cache.Close()
			selections = valkey.NewSelectionStore(cache, cfg.Session.TTL)
		}
	}

	// Download outcome events
	var (
		events ports.EventPublisher
		pub    *natsadapter.Publisher
	)
	if cfg.NATS.Enabled {
		pub, err = natsadapter.NewPublisher(cfg.NATS.URL)
		if err != nil {
			slog.Warn("nats unavailable", "error", err)
		} else {
			defer pub.Close()
			events = pub
		}
	}

	creds := config.NewCredentials()
	if creds.APIKey() == "" {
		slog.Warn("no API key configured; downloads will fail until it is set", "env", config.APIKeyEnv)
	}

	rasters := filesystem.NewRasterStore(nil)
	dem := opentopo.New(cfg.DEM.Endpoint, cfg.DEM.Dataset, cfg.DEM.OutputFormat)

	// Use cases
	selectionSvc := usecases.NewSelectionService(selections)
	downloadSvc := usecases.NewDownloadService(selections, creds, dem, rasters, events, usecases.DownloadOptions{
		OutputPath: cfg.DEM.OutputPath,
		Timeout:    cfg.DEM.RequestTimeout(),
		MaxAreaKm2: cfg.DEM.MaxAreaKm2,
		Dataset:    cfg.DEM.Dataset,
	})

	deps := &http.Dependencies{
		Selections:      selectionSvc,
		Downloads:       downloadSvc,
		Rasters:         rasters,
		Creds:           creds,
		Cache:           cache,
		DownloadTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}
	if pub != nil {
		deps.NATS = pub.Conn()
	}

	// Fiber
	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    1024 * 1024, // 1 MB max request body
		AppName:      "demfetch",
	})
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:  "*",
		AllowMethods:  "GET,POST,DELETE,OPTIONS",
		AllowHeaders:  "Origin, Content-Type, Accept, " + http.SessionHeader,
		ExposeHeaders: http.SessionHeader,
		MaxAge:        3600,
	}))

	http.SetupRoutes(app, deps)

	// Graceful shutdown
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		slog.Info("API server starting", "addr", addr, "output_path", cfg.DEM.OutputPath)
		if err := app.Listen(addr); err != nil {
			log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	slog.Info("shutdown signal received, draining connections...", "signal", sig.String())

	// In-flight downloads get up to 10s to complete
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		slog.Error("forced shutdown", "error", err)
	}

	slog.Info("server stopped")
}
