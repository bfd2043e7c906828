package main

import (
	"context"
	"log"
	"time"

	"go.uber.org/zap"

	"weatherdiary/internal/config"
	"weatherdiary/internal/database"
	"weatherdiary/internal/domain/favorite"
	"weatherdiary/internal/pkg/logger"
)

// Hard-deletes favorites that were soft-deleted more than PURGE_RETENTION ago.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	lg, err := logger.New(cfg.AppEnv, cfg.LogLevel)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer lg.Sync()

	db, err := database.Connect(cfg.DatabaseURL, lg)
	if err != nil {
		lg.Fatal("db connect failed", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	cutoff := time.Now().Add(-cfg.PurgeRetention)
	n, err := favorite.NewRepository(db).PurgeDeleted(ctx, cutoff)
	if err != nil {
		lg.Fatal("favorites cleanup failed", zap.Error(err))
	}

	lg.Info("favorites cleanup completed", zap.Int64("purged", n), zap.Time("cutoff", cutoff))
}
