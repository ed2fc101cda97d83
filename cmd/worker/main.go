package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"

	"github.com/rodmar-transportes/rodmar-backend/internal/app"
	"github.com/rodmar-transportes/rodmar-backend/internal/invalidation"
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
		slog.Default().Info("test mode detected, skipping worker startup")
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

	cache := invalidation.NewCache(redisClient, cfg.CacheTTL)

	sociosRepo := socios.NewRepository(pool)
	sociosService := socios.NewService(sociosRepo)

	viajesRepo := viajes.NewRepository(pool)
	transaccionesRepo := transacciones.NewRepository(pool)

	saldosService := saldos.NewService(viajesRepo, transaccionesRepo, sociosService, cache, logger)

	warmupJob := jobs.NewSaldosWarmupJob(saldosService, logger)
	integrityJob := jobs.NewLedgerIntegrityJob(transaccionesRepo, sociosService, logger)

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskSaldosWarmup, Handler: warmupJob.Handle},
			{Type: jobs.TaskLedgerIntegrity, Handler: integrityJob.Handle},
		},
		Cron: []jobs.CronRegistration{
			{Spec: "30 1 * * *", Task: jobs.NewLedgerIntegrityTask(), Options: []asynq.Option{asynq.MaxRetry(3)}},
		},
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	if err := worker.Run(ctx); err != nil && err != context.Canceled {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}
