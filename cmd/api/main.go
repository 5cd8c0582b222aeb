package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/xelth-com/eckassets/internal/ai"
	"github.com/xelth-com/eckassets/internal/config"
	"github.com/xelth-com/eckassets/internal/database"
	"github.com/xelth-com/eckassets/internal/handlers"
	"github.com/xelth-com/eckassets/internal/logger"
	"github.com/xelth-com/eckassets/internal/services/activity"
	"github.com/xelth-com/eckassets/internal/services/assets"
	"github.com/xelth-com/eckassets/internal/services/complaints"
	"github.com/xelth-com/eckassets/internal/services/dashboard"
	"github.com/xelth-com/eckassets/internal/services/history"
	"github.com/xelth-com/eckassets/internal/services/maintenance"
	"github.com/xelth-com/eckassets/internal/services/reports"
	"github.com/xelth-com/eckassets/internal/services/users"
)

func main() {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logg, err := logger.New(cfg.Log.Level, cfg.Log.Format, "eckassets-api")
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer func() { _ = logg.Sync() }()

	// 2. Initialize database (embedded postgres, external postgres or sqlite)
	db, err := database.Connect(cfg.Database, logg)
	if err != nil {
		logg.Fatal("failed to connect to database", zap.Error(err))
	}

	// 3. Migrate schema
	migrateCtx, cancelMigrate := context.WithTimeout(context.Background(), time.Minute)
	if err := database.Migrate(migrateCtx, db.DB); err != nil {
		cancelMigrate()
		_ = db.Close()
		logg.Fatal("schema migration failed", zap.Error(err))
	}
	cancelMigrate()
	logg.Info("schema synchronized")

	// 4. Text-generation endpoint
	gen, closeGen, err := ai.NewGenerator(context.Background(), cfg.AI, logg)
	if err != nil {
		_ = db.Close()
		logg.Fatal("failed to initialize text-generation client", zap.Error(err))
	}

	// 5. Services and router
	hist := history.NewService(db.DB, logg)
	assetSvc := assets.NewService(db.DB, hist, logg)
	complaintSvc := complaints.NewService(db.DB, assetSvc, hist, logg)
	maintenanceSvc := maintenance.NewService(db.DB, hist, logg)

	router := handlers.NewRouter(handlers.Deps{
		DB:          db.DB,
		Assets:      assetSvc,
		History:     hist,
		Complaints:  complaintSvc,
		Maintenance: maintenanceSvc,
		Users:       users.NewService(db.DB, logg),
		Activity:    activity.NewService(db.DB, logg),
		Dashboard:   dashboard.NewService(db.DB, logg),
		Reports:     reports.NewService(db.DB, logg),
		Advisor:     ai.NewAdvisor(gen, assetSvc, complaintSvc, maintenanceSvc, hist, cfg.AI.Timeout, logg),
	}, handlers.Options{
		JWTSecret:     cfg.JWTSecret,
		PublicBaseURL: cfg.PublicBaseURL,
		Logger:        logg,
	})

	// 6. Start server with graceful shutdown
	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	go func() {
		logg.Info("server starting", zap.String("port", cfg.Port), zap.String("env", cfg.NodeEnv))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Fatal("server failed", zap.Error(err))
		}
	}()

	sig := <-shutdown
	logg.Info("shutting down", zap.String("signal", sig.String()))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logg.Error("http server shutdown error", zap.Error(err))
	}
	if err := closeGen(); err != nil {
		logg.Warn("text-generation client close error", zap.Error(err))
	}

	// Close database (this also stops embedded PostgreSQL)
	if err := db.Close(); err != nil {
		logg.Error("database close error", zap.Error(err))
	}

	logg.Info("shutdown complete")
}
