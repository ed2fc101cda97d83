package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"

	"github.com/rodmar-transportes/rodmar-backend/internal/app"
	"github.com/rodmar-transportes/rodmar-backend/internal/invalidation"
	"github.com/rodmar-transportes/rodmar-backend/internal/observability"
	"github.com/rodmar-transportes/rodmar-backend/internal/platform/cache"
	"github.com/rodmar-transportes/rodmar-backend/internal/platform/db"
	"github.com/rodmar-transportes/rodmar-backend/internal/saldos"
	"github.com/rodmar-transportes/rodmar-backend/internal/socios"
	"github.com/rodmar-transportes/rodmar-backend/internal/transacciones"
	"github.com/rodmar-transportes/rodmar-backend/internal/viajes"
	"github.com/rodmar-transportes/rodmar-backend/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	if err := godotenv.Load(); err != nil {
		slog.Default().Info("no .env file loaded")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Warn("redis ping", slog.Any("error", err))
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	metrics := observability.NewMetrics()

	cache := invalidation.NewCache(redisClient, cfg.CacheTTL)
	if err := cache.ListenForInvalidation(ctx, metrics.ObserveBumps); err != nil {
		logger.Warn("subscribe invalidation channel", slog.Any("error", err))
	}

	jobsClient, err := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	if err != nil {
		logger.Error("init jobs client", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := jobsClient.Close(); err != nil {
			logger.Warn("jobs client close", slog.Any("error", err))
		}
	}()

	sociosRepo := socios.NewRepository(pool)
	sociosService := socios.NewService(sociosRepo)
	sociosHandler := socios.NewHandler(logger, sociosService)

	viajesRepo := viajes.NewRepository(pool)
	viajesService := viajes.NewService(viajesRepo, cache, jobsClient, logger)
	viajesHandler := viajes.NewHandler(logger, viajesService)

	transaccionesRepo := transacciones.NewRepository(pool)
	transaccionesService := transacciones.NewService(transaccionesRepo, sociosService, cache, jobsClient, logger)
	transaccionesHandler := transacciones.NewHandler(logger, transaccionesService)

	saldosService := saldos.NewService(viajesRepo, transaccionesRepo, sociosService, cache, logger)
	saldosHandler := saldos.NewHandler(logger, saldosService)

	router := app.NewRouter(app.RouterParams{
		Logger:               logger,
		Config:               cfg,
		SociosHandler:        sociosHandler,
		ViajesHandler:        viajesHandler,
		TransaccionesHandler: transaccionesHandler,
		SaldosHandler:        saldosHandler,
		Metrics:              metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
