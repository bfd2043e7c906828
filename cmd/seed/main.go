package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"

	"go.uber.org/zap"

	"weatherdiary/internal/config"
	"weatherdiary/internal/database"
	"weatherdiary/internal/domain/favorite"
	"weatherdiary/internal/pkg/jwt"
	"weatherdiary/internal/pkg/logger"
	"weatherdiary/internal/pkg/userlock"
)

var demoFavorites = []favorite.CreateFavoriteRequest{
	{City: "Seoul", District: "Jongno", Alias: strPtr("Office")},
	{City: "Seoul", District: "Mapo", Alias: strPtr("Home")},
	{City: "Busan", District: "Haeundae"},
}

func main() {
	userID := flag.Int64("user", 1, "demo user id")
	flag.Parse()

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

	ctx := context.Background()
	repo := favorite.NewRepository(db)
	if err := repo.Migrate(ctx); err != nil {
		lg.Fatal("migrate failed", zap.Error(err))
	}

	svc := favorite.NewService(repo, userlock.NewKeyedMutex(), cfg.LockTimeout, favorite.WithLogger(lg))
	for _, req := range demoFavorites {
		_, err := svc.Create(ctx, *userID, req)
		switch {
		case err == nil:
		case errors.Is(err, favorite.ErrAlreadyExists), errors.Is(err, favorite.ErrLimitExceeded):
			lg.Info("seed favorite skipped", zap.String("city", req.City), zap.String("district", req.District), zap.Error(err))
		default:
			lg.Fatal("seed favorite failed", zap.Error(err))
		}
	}

	token, err := jwt.New(cfg.JWTSecret, cfg.JWTAccessTTL).GenerateToken(*userID)
	if err != nil {
		lg.Fatal("token generation failed", zap.Error(err))
	}

	fmt.Printf("seeded favorites for user %d\n", *userID)
	fmt.Printf("Authorization: Bearer %s\n", token)
}

func strPtr(s string) *string { return &s }
