package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"weatherdiary/internal/config"
	"weatherdiary/internal/database"
	"weatherdiary/internal/domain/favorite"
	"weatherdiary/internal/middleware"
	jwtsvc "weatherdiary/internal/pkg/jwt"
	"weatherdiary/internal/pkg/logger"
	"weatherdiary/internal/pkg/metrics"
	"weatherdiary/internal/pkg/response"
	"weatherdiary/internal/pkg/userlock"
)

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

	if cfg.IsProdLike() {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.Connect(cfg.DatabaseURL, lg)
	if err != nil {
		lg.Fatal("db connect failed", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	repo := favorite.NewRepository(db)
	if err := repo.Migrate(ctx); err != nil {
		lg.Fatal("migrate failed", zap.Error(err))
	}

	var (
		locker userlock.Locker = userlock.NewKeyedMutex()
		opts                   = []favorite.Option{favorite.WithLogger(lg)}
	)
	if cfg.RedisURL != "" {
		redisOpts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			lg.Fatal("invalid REDIS_URL", zap.Error(err))
		}
		rdb := redis.NewClient(redisOpts)
		defer rdb.Close()

		if err := rdb.Ping(ctx).Err(); err != nil {
			lg.Fatal("redis ping failed", zap.Error(err))
		}
		// in-process first so that only one request per user and instance
		// polls redis
		locker = userlock.Chain(locker, userlock.NewRedisLocker(rdb, cfg.LockTTL, lg))
		opts = append(opts, favorite.WithCache(favorite.NewRedisListCache(rdb, cfg.ListCacheTTL)))
		lg.Info("redis enabled for favorites lock and list cache")
	}

	hub := favorite.NewHub(cfg.CORSAllowedOrigins)
	opts = append(opts, favorite.WithNotifier(hub))

	tokens := jwtsvc.New(cfg.JWTSecret, cfg.JWTAccessTTL)
	svc := favorite.NewService(repo, locker, cfg.LockTimeout, opts...)
	handler := favorite.NewHandler(svc, hub, tokens, lg)

	limiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	go limiter.Run(10*time.Minute, ctx.Done())

	r := newRouter(cfg, lg, db, tokens, handler, limiter)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		lg.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			lg.Fatal("http server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	lg.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		lg.Error("graceful shutdown failed", zap.Error(err))
	}
}

func newRouter(
	cfg *config.Config,
	lg *zap.Logger,
	db *gorm.DB,
	tokens *jwtsvc.Service,
	handler *favorite.Handler,
	limiter *middleware.RateLimiter,
) *gin.Engine {
	r := gin.New()
	r.Use(
		middleware.RequestID(),
		middleware.RequestLogger(lg),
		middleware.Recovery(lg),
		middleware.Metrics(),
		middleware.CORS(cfg.CORSAllowedOrigins),
	)

	r.GET("/healthz", func(c *gin.Context) {
		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.PingContext(c.Request.Context())
		}
		if err != nil {
			response.Error(c, http.StatusServiceUnavailable, "db_unavailable", "Database is not reachable.")
			return
		}
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	v1 := r.Group("/api/v1")
	{
		favorite.RegisterStreamRoutes(v1, handler)

		protected := v1.Group("")
		protected.Use(middleware.JWTAuth(tokens))
		favorite.RegisterRoutes(protected, handler, limiter.Middleware())
	}

	return r
}
