/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the Safe Harbor Compliance Engine server.
  Handles configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load configuration (.env, environment, then flags)
  2. Initialize the project store (memory or SQLite)
  3. Create API handler with dependencies
  4. Seed the demo scenario into an empty portfolio
  5. Start the deadline watcher
  6. Configure HTTP router
  7. Start server with graceful shutdown

COMMAND-LINE FLAGS (override environment):
  -port        HTTP server port (PORT, default: 8080)
  -db          SQLite database path (DB_PATH, default: in-memory)
               Use ":memory:" or "" for the in-memory store
  -export-dir  Directory for exported contracts (EXPORT_DIR, default: exports)
  -seed        Scenario loaded at startup (SEED_SCENARIO, default: project-sunrise)
               Use -seed="" to start empty

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop the deadline watcher
  2. Stop accepting new connections
  3. Wait for active requests to complete (30s timeout)
  4. Close database connection
  5. Exit

EXAMPLES:
  # Run with the default in-memory store
  ./server

  # Persist projects to a file
  ./server -db="./data/safeharbor.db"

  # Run on different port without demo data
  ./server -port=3000 -seed=""

ENVIRONMENT ONLY:
  STATIC_DIR, CORS_ORIGINS, APP_ENV
  EXPORT_RATE_LIMIT (exports/second, 0 = unlimited), EXPORT_BURST
  WATCH_ENABLED, WATCH_SCHEDULE (cron expression), WATCH_WINDOW_DAYS

SEE ALSO:
  - config/config.go: Environment variables
  - api/server.go: Router configuration
  - api/handlers.go: HTTP handlers
  - store/sqlite/sqlite.go: Database implementation
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/warp/safe-harbor-engine/api"
	"github.com/warp/safe-harbor-engine/config"
	"github.com/warp/safe-harbor-engine/contract"
	"github.com/warp/safe-harbor-engine/safeharbor"
	"github.com/warp/safe-harbor-engine/safeharbor/store"
	"github.com/warp/safe-harbor-engine/store/sqlite"
	"golang.org/x/time/rate"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	// Flags
	port := flag.Int("port", cfg.Server.Port, "HTTP server port")
	dbPath := flag.String("db", cfg.Storage.DBPath, "SQLite database path (empty for in-memory)")
	exportDir := flag.String("export-dir", cfg.Storage.ExportDir, "Directory for exported contracts")
	seed := flag.String("seed", cfg.App.SeedScenario, "Scenario loaded into an empty portfolio at startup")
	flag.Parse()

	cfg.Server.Port = *port
	cfg.Storage.DBPath = *dbPath
	cfg.Storage.ExportDir = *exportDir
	cfg.App.SeedScenario = *seed
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	// Initialize store
	var projects safeharbor.ProjectStore
	if cfg.InMemory() {
		projects = store.NewMemory()
		log.Println("💾 Using in-memory project store")
	} else {
		db, err := sqlite.New(cfg.Storage.DBPath)
		if err != nil {
			log.Fatalf("Failed to initialize database: %v", err)
		}
		defer db.Close()
		projects = db
		log.Printf("💾 Using SQLite project store at %s", cfg.Storage.DBPath)
	}

	portfolio := safeharbor.NewPortfolio(projects)

	// Initialize handler
	handler := api.NewHandler(portfolio, contract.NewDirExporter(cfg.Storage.ExportDir))

	// Seed demo data, leaving an existing database alone
	if cfg.App.SeedScenario != "" {
		existing, err := portfolio.List(context.Background())
		switch {
		case err != nil:
			log.Printf("Warning: Failed to list projects: %v", err)
		case len(existing) > 0:
			log.Printf("Portfolio has %d projects, skipping seed scenario", len(existing))
		default:
			if err := handler.LoadScenarioByID(context.Background(), cfg.App.SeedScenario); err != nil {
				log.Printf("Warning: Failed to load scenario %q: %v", cfg.App.SeedScenario, err)
			}
		}
	}

	// Start deadline watcher
	watcher := api.NewDeadlineWatcher(portfolio)
	watcher.Enabled = cfg.Watch.Enabled
	watcher.Schedule = cfg.Watch.Schedule
	watcher.Window = cfg.Watch.Window
	if err := watcher.Start(); err != nil {
		log.Fatalf("Failed to start deadline watcher: %v", err)
	}

	// Create router
	var exportLimiter *rate.Limiter
	if cfg.Server.ExportRate > 0 {
		exportLimiter = rate.NewLimiter(rate.Limit(cfg.Server.ExportRate), cfg.Server.ExportBurst)
	}
	router := api.NewRouter(handler, api.RouterOptions{
		AllowedOrigins: cfg.Server.CORSOrigins,
		StaticDir:      cfg.Server.StaticDir,
		ExportLimiter:  exportLimiter,
	})

	// Create server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Printf("🚀 Server starting on http://localhost:%d (%s)", cfg.Server.Port, cfg.App.Environment)
		log.Printf("📊 API available at http://localhost:%d/api", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	watcher.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server stopped")
}
