package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/rodmar-transportes/rodmar-backend/internal/saldos"
	"github.com/rodmar-transportes/rodmar-backend/internal/socios"
)

// SaldosWarmupJob recomputes the balance summaries named in the task payload
// so the versioned cache is warm before the next dashboard read.
type SaldosWarmupJob struct {
	Saldos *saldos.Service
	Logger *slog.Logger
	clock  func() time.Time
}

// NewSaldosWarmupJob wires dependencies for the warmup handler.
func NewSaldosWarmupJob(saldosSvc *saldos.Service, logger *slog.Logger) *SaldosWarmupJob {
	return &SaldosWarmupJob{
		Saldos: saldosSvc,
		Logger: logger,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Handle processes balance warmup tasks.
func (j *SaldosWarmupJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Saldos == nil {
		return errors.New("saldos warmup: handler not configured")
	}
	var payload SaldosWarmupPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	if len(payload.Tipos) == 0 {
		return nil
	}

	logger := j.logger()
	start := j.now()
	warmed := 0
	for _, raw := range payload.Tipos {
		tipo, err := socios.ParsePartyType(raw)
		if err != nil {
			logger.Warn("skip unknown tipo", slog.String("tipo", raw))
			continue
		}
		tipoCtx, cancel := context.WithTimeout(ctx, 20*time.Second)
		_, err = j.Saldos.Resumen(tipoCtx, tipo)
		cancel()
		if err != nil {
			logger.Error("warm resumen", slog.String("tipo", raw), slog.Any("error", err))
			return err
		}
		warmed++
	}

	logger.Info("completed saldos warmup", slog.Int("tipos", warmed), slog.Duration("duration", time.Since(start)))
	return nil
}

func (j *SaldosWarmupJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskSaldosWarmup))
	}
	return slog.Default().With(slog.String("job", TaskSaldosWarmup))
}

func (j *SaldosWarmupJob) now() time.Time {
	if j.clock != nil {
		return j.clock()
	}
	return time.Now().UTC()
}
