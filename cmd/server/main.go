package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/folio-social/folio/internal/accounts"
	"github.com/folio-social/folio/internal/api"
	"github.com/folio-social/folio/internal/db"
	"github.com/folio-social/folio/internal/follow"
	"github.com/folio-social/folio/pkg/config"
	"github.com/folio-social/folio/pkg/logging"
	"github.com/folio-social/folio/pkg/telemetry"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	if err := logging.InitLogger(&cfg.Logging); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logging.GetLogger().Sync()

	logger := logging.GetLogger()
	logger.Info("Starting Folio API Server")

	// Initialize telemetry
	telemetryShutdown, err := telemetry.Init(&cfg.Telemetry)
	if err != nil {
		logger.Fatal("Failed to initialize telemetry", zap.Error(err))
	}
	defer telemetryShutdown()

	// Open account store
	store, closeStore, err := openStore(cfg)
	if err != nil {
		logger.Fatal("Failed to open account store", zap.Error(err))
	}
	defer closeStore()

	// Build services
	graph := follow.NewGraph(store)
	svc := accounts.NewService(store, graph, accounts.NewBcryptHasher(cfg.Auth.BcryptCost))

	// Create Gin router
	if strings.EqualFold(cfg.Logging.Level, "DEBUG") {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())

	// Register routes
	api.NewRouter(svc, graph, store,
		api.WithRequestTimeout(cfg.Server.RequestTimeout),
		api.WithMetrics(cfg.Telemetry.Enabled && cfg.Telemetry.PrometheusEnabled),
	).SetupRoutes(engine)

	// Create HTTP server
	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Info("Server starting", zap.String("address", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}

// openStore returns the configured account store and its close function
func openStore(cfg *config.Config) (db.Store, func(), error) {
	if cfg.Database.InMemory() {
		logging.GetLogger().Warn("Using in-memory account store; data is lost on exit")
		return db.NewMemoryStore(), func() {}, nil
	}

	database, err := db.New(&cfg.Database, cfg.Logging.Level)
	if err != nil {
		return nil, nil, err
	}

	// Create or update the schema
	if cfg.Database.AutoMigrate {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := database.Migrate(ctx); err != nil {
			database.Close()
			return nil, nil, err
		}
	}

	closeFn := func() {
		if err := database.Close(); err != nil {
			logging.GetLogger().Error("Failed to close database", zap.Error(err))
		}
	}
	return db.NewAccountRepository(database.DB), closeFn, nil
}
