package jobs

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/rodmar-transportes/rodmar-backend/internal/socios"
	"github.com/rodmar-transportes/rodmar-backend/internal/transacciones"
)

// MovimientosSource lists every stored movement for the integrity scan.
type MovimientosSource interface {
	ListAll(ctx context.Context, filter transacciones.BalanceFilter) ([]transacciones.Transaccion, error)
}

// DirectoryProvider loads the reference directory.
type DirectoryProvider interface {
	Directory(ctx context.Context) (*socios.Directory, error)
}

// LedgerIntegrityJob scans stored movements for party references that no
// longer resolve against the reference lists. Dangling references render as
// Desconocido instead of failing, so this scan is the only place they become
// visible to operators.
type LedgerIntegrityJob struct {
	Movimientos MovimientosSource
	Dirs        DirectoryProvider
	Logger      *slog.Logger
}

// NewLedgerIntegrityJob wires dependencies for the integrity handler.
func NewLedgerIntegrityJob(movimientos MovimientosSource, dirs DirectoryProvider, logger *slog.Logger) *LedgerIntegrityJob {
	return &LedgerIntegrityJob{Movimientos: movimientos, Dirs: dirs, Logger: logger}
}

// Handle processes integrity-scan tasks.
func (j *LedgerIntegrityJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Movimientos == nil || j.Dirs == nil {
		return errors.New("ledger integrity: handler not configured")
	}

	logger := j.logger()
	start := time.Now()

	dir, err := j.Dirs.Directory(ctx)
	if err != nil {
		logger.Error("load directory", slog.Any("error", err))
		return err
	}
	movimientos, err := j.Movimientos.ListAll(ctx, transacciones.BalanceFilter{})
	if err != nil {
		logger.Error("list movimientos", slog.Any("error", err))
		return err
	}

	dangling := 0
	for _, m := range movimientos {
		for _, p := range []transacciones.Parte{m.Origen, m.Destino} {
			if dir.Nombre(p.Tipo, p.ID) != socios.NombreDesconocido {
				continue
			}
			dangling++
			logger.Warn("dangling party reference",
				slog.Int64("transaccion", m.ID),
				slog.String("tipo", string(p.Tipo)),
				slog.String("id", p.ID),
			)
		}
	}

	logger.Info("completed ledger integrity scan",
		slog.Int("movimientos", len(movimientos)),
		slog.Int("dangling", dangling),
		slog.Duration("duration", time.Since(start)),
	)
	return nil
}

func (j *LedgerIntegrityJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskLedgerIntegrity))
	}
	return slog.Default().With(slog.String("job", TaskLedgerIntegrity))
}
