package viajes

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/go-playground/validator/v10"

	"github.com/rodmar-transportes/rodmar-backend/internal/invalidation"
	"github.com/rodmar-transportes/rodmar-backend/internal/platform/httpx"
	"github.com/rodmar-transportes/rodmar-backend/internal/shared"
	"github.com/rodmar-transportes/rodmar-backend/internal/socios"
)

// Enqueuer schedules the balance warmup that follows a mutation.
type Enqueuer interface {
	EnqueueSaldosWarmup(ctx context.Context, tipos ...string) error
}

// Service applies trip business rules and drives the cache fan-out.
type Service struct {
	repo     Repository
	bumper   invalidation.Invalidator
	enqueuer Enqueuer
	validate *validator.Validate
	logger   *slog.Logger
}

// NewService builds the trip service. enqueuer may be nil in tests.
func NewService(repo Repository, bumper invalidation.Invalidator, enqueuer Enqueuer, logger *slog.Logger) *Service {
	return &Service{
		repo:     repo,
		bumper:   bumper,
		enqueuer: enqueuer,
		validate: validator.New(),
		logger:   logger,
	}
}

func (s *Service) Get(ctx context.Context, id int64) (*Viaje, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) List(ctx context.Context, req ListViajesRequest) (*ListViajesResponse, error) {
	items, total, err := s.repo.List(ctx, req)
	if err != nil {
		return nil, err
	}
	hidden, err := s.repo.CountHidden(ctx, req)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []Viaje{}
	}
	return &ListViajesResponse{
		Viajes:      items,
		Pagination:  shared.NewPagination(req.Page, req.PerPage, total),
		HiddenCount: hidden,
	}, nil
}

// Crear registers the cargue. The trip starts pendiente; sale-side fields
// arrive later with the descargue.
func (s *Service) Crear(ctx context.Context, req CrearViajeRequest) (*Viaje, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %s", httpx.ErrValidation, err)
	}

	v := Viaje{
		FechaCargue:  req.FechaCargue,
		Conductor:    req.Conductor,
		Placa:        req.Placa,
		TipoVehiculo: req.TipoVehiculo,
		MinaID:       req.MinaID,
		CompradorID:  req.CompradorID,
		VolqueteroID: req.VolqueteroID,
		Peso:         req.Peso,
		PrecioCompra: req.PrecioCompra,
		PrecioFlete:  req.PrecioFlete,
		PagaFlete:    req.PagaFlete,
		Comprobante:  req.Comprobante,
		Estado:       EstadoPendiente,
	}
	v.RecalcularTotales()

	id, err := s.repo.Create(ctx, v)
	if err != nil {
		return nil, fmt.Errorf("crear viaje: %w", err)
	}
	v.ID = id

	s.invalidate(ctx, nil, &v)
	return &v, nil
}

// Actualizar edits a trip; providing fechaDescargue completes the descargue.
func (s *Service) Actualizar(ctx context.Context, id int64, req ActualizarViajeRequest) (*Viaje, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %s", httpx.ErrValidation, err)
	}

	antes, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	v := *antes
	if req.FechaCargue != nil {
		v.FechaCargue = *req.FechaCargue
	}
	if req.Conductor != nil {
		v.Conductor = *req.Conductor
	}
	if req.Placa != nil {
		v.Placa = *req.Placa
	}
	if req.TipoVehiculo != nil {
		v.TipoVehiculo = *req.TipoVehiculo
	}
	if req.MinaID != nil {
		v.MinaID = *req.MinaID
	}
	if req.CompradorID != nil {
		v.CompradorID = *req.CompradorID
	}
	if req.VolqueteroID != nil {
		v.VolqueteroID = *req.VolqueteroID
	}
	if req.Peso != nil {
		v.Peso = *req.Peso
	}
	if req.PrecioCompra != nil {
		v.PrecioCompra = *req.PrecioCompra
	}
	if req.PrecioVenta != nil {
		v.PrecioVenta = *req.PrecioVenta
	}
	if req.PrecioFlete != nil {
		v.PrecioFlete = *req.PrecioFlete
	}
	if req.PagaFlete != nil {
		v.PagaFlete = *req.PagaFlete
	}
	if req.Comprobante != nil {
		v.Comprobante = req.Comprobante
	}
	if req.FechaDescargue != nil {
		if req.PrecioVenta == nil && v.PrecioVenta.IsZero() {
			return nil, fmt.Errorf("%w: precioVenta requerido para el descargue", httpx.ErrValidation)
		}
		v.FechaDescargue = req.FechaDescargue
		v.Estado = EstadoCompletado
	}
	v.RecalcularTotales()

	if err := s.repo.Update(ctx, v); err != nil {
		return nil, fmt.Errorf("actualizar viaje: %w", err)
	}

	s.invalidate(ctx, antes, &v)
	return &v, nil
}

// Ocultar soft-hides a trip. The row stays and keeps counting toward
// balances; only the default listings skip it.
func (s *Service) Ocultar(ctx context.Context, id int64) error {
	v, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.SetOculto(ctx, id, true); err != nil {
		return err
	}
	s.invalidate(ctx, v, v)
	return nil
}

// Restaurar flips every hidden trip in the scope back to visible.
func (s *Service) Restaurar(ctx context.Context, req RestaurarRequest) (int64, error) {
	n, err := s.repo.RestoreScope(ctx, req)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		scopes := []string{invalidation.ScopeViajes}
		if req.MinaID != nil {
			scopes = append(scopes, invalidation.ScopeSocio(string(socios.PartyMina), strconv.FormatInt(*req.MinaID, 10)))
		}
		if req.CompradorID != nil {
			scopes = append(scopes, invalidation.ScopeSocio(string(socios.PartyComprador), strconv.FormatInt(*req.CompradorID, 10)))
		}
		if req.VolqueteroID != nil {
			scopes = append(scopes, invalidation.ScopeSocio(string(socios.PartyVolquetero), strconv.FormatInt(*req.VolqueteroID, 10)))
		}
		s.bump(ctx, scopes)
	}
	return n, nil
}

// scopesFor enumerates every cached view a trip mutation can stale: the
// global listing, the detail scopes of the pre- and post-mutation
// counterparties, and the per-type balance buckets.
func scopesFor(antes, despues *Viaje) []string {
	scopes := []string{invalidation.ScopeViajes}
	for _, v := range []*Viaje{antes, despues} {
		if v == nil {
			continue
		}
		scopes = append(scopes,
			invalidation.ScopeSocio(string(socios.PartyMina), strconv.FormatInt(v.MinaID, 10)),
			invalidation.ScopeSocio(string(socios.PartyComprador), strconv.FormatInt(v.CompradorID, 10)),
			invalidation.ScopeSocio(string(socios.PartyVolquetero), strconv.FormatInt(v.VolqueteroID, 10)),
			invalidation.ScopeSaldos(string(socios.PartyMina)),
			invalidation.ScopeSaldos(string(socios.PartyComprador)),
			invalidation.ScopeSaldos(string(socios.PartyVolquetero)),
		)
	}
	return invalidation.Dedupe(scopes)
}

func (s *Service) invalidate(ctx context.Context, antes, despues *Viaje) {
	s.bump(ctx, scopesFor(antes, despues))
}

func (s *Service) bump(ctx context.Context, scopes []string) {
	if s.bumper != nil {
		if err := s.bumper.Bump(ctx, scopes...); err != nil {
			s.logger.Warn("bump viajes scopes", slog.Any("error", err))
		}
	}
	if s.enqueuer != nil {
		tipos := []string{string(socios.PartyMina), string(socios.PartyComprador), string(socios.PartyVolquetero)}
		if err := s.enqueuer.EnqueueSaldosWarmup(ctx, tipos...); err != nil {
			s.logger.Warn("enqueue saldos warmup", slog.Any("error", err))
		}
	}
}
