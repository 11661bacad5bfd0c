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

	"mathtutor/internal/config"
	"mathtutor/internal/database"
	"mathtutor/internal/modules/order"
	"mathtutor/internal/pkg/logger"
	"mathtutor/internal/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	zl, err := logger.New(&logger.Config{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
		Output: cfg.LogOutput,
	}, logger.DefaultServiceName)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Connect(cfg.DatabaseURL, zl)
	if err != nil {
		zl.Fatal("database connect failed", zap.Error(err))
	}
	if cfg.AutoMigrate {
		if err := database.Migrate(ctx, db, zl); err != nil {
			zl.Fatal("migration failed", zap.Error(err))
		}
	}

	if err := os.MkdirAll(cfg.UploadsDir, 0o755); err != nil {
		zl.Fatal("uploads dir", zap.String("dir", cfg.UploadsDir), zap.Error(err))
	}

	srv := server.New(server.Deps{DB: db, Config: cfg, Log: zl})

	if cfg.ExpirySweepEnabled {
		sweeper := order.NewSweeper(srv.Orders, cfg.ExpirySweepInterval, zl.Named("sweeper"))
		stopSweeper := sweeper.Start(ctx)
		defer close(stopSweeper)
	}

	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           srv.Engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		zl.Info("http server listening", zap.String("addr", cfg.HTTPAddr), zap.String("env", cfg.AppEnv))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zl.Fatal("http server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	zl.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		zl.Error("graceful shutdown failed", zap.Error(err))
	}
	srv.Hub.Close()

	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
