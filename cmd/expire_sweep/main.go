// Command expire_sweep expires every overdue order once and exits. It is
// meant for cron when the in-process sweeper is disabled.
package main

import (
	"context"
	"log"
	"time"

	"go.uber.org/zap"

	"mathtutor/internal/config"
	"mathtutor/internal/database"
	"mathtutor/internal/modules/order"
	"mathtutor/internal/pkg/clock"
	"mathtutor/internal/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	zl, err := logger.New(&logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat, Output: cfg.LogOutput}, "mathtutor-expire-sweep")
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	db, err := database.Connect(cfg.DatabaseURL, zl)
	if err != nil {
		zl.Fatal("db connect failed", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	// events are not delivered; no clients are connected to this process
	svc := order.NewService(db, clock.Real{}, zl.Named("order"), nil)
	n, err := svc.ExpireDue(ctx)
	if err != nil {
		zl.Fatal("expire sweep failed", zap.Int("expired", n), zap.Error(err))
	}
	zl.Info("expire sweep completed", zap.Int("expired", n))
}
