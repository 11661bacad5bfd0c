// Command code_cleanup deletes expired and consumed verification codes.
package main

import (
	"context"
	"log"
	"time"

	"go.uber.org/zap"

	"mathtutor/internal/config"
	"mathtutor/internal/database"
	"mathtutor/internal/pkg/logger"
	"mathtutor/internal/repository"
)

// consumed codes are kept for a day for support lookups
const retention = 24 * time.Hour

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	zl, err := logger.New(&logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat, Output: cfg.LogOutput}, "mathtutor-code-cleanup")
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	db, err := database.Connect(cfg.DatabaseURL, zl)
	if err != nil {
		zl.Fatal("db connect failed", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	n, err := repository.NewVerificationCodeRepository(db).DeleteStale(ctx, time.Now().UTC().Add(-retention))
	if err != nil {
		zl.Fatal("cleanup verification_codes failed", zap.Error(err))
	}
	zl.Info("code cleanup completed", zap.Int64("verification_codes", n))
}
