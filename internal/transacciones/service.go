package transacciones

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/rodmar-transportes/rodmar-backend/internal/invalidation"
	"github.com/rodmar-transportes/rodmar-backend/internal/platform/httpx"
	"github.com/rodmar-transportes/rodmar-backend/internal/shared"
	"github.com/rodmar-transportes/rodmar-backend/internal/socios"
)

// DirectoryProvider loads the reference directory used for label resolution
// and cuenta matching.
type DirectoryProvider interface {
	Directory(ctx context.Context) (*socios.Directory, error)
}

// Enqueuer schedules the balance warmup that follows a mutation.
type Enqueuer interface {
	EnqueueSaldosWarmup(ctx context.Context, tipos ...string) error
}

// Service applies transaction business rules and drives the cache fan-out.
type Service struct {
	repo     Repository
	dirs     DirectoryProvider
	bumper   invalidation.Invalidator
	enqueuer Enqueuer
	validate *validator.Validate
	logger   *slog.Logger
}

// NewService builds the transaction service. enqueuer may be nil in tests.
func NewService(repo Repository, dirs DirectoryProvider, bumper invalidation.Invalidator, enqueuer Enqueuer, logger *slog.Logger) *Service {
	return &Service{
		repo:     repo,
		dirs:     dirs,
		bumper:   bumper,
		enqueuer: enqueuer,
		validate: validator.New(),
		logger:   logger,
	}
}

func (s *Service) Get(ctx context.Context, id int64) (*Transaccion, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) List(ctx context.Context, req ListTransaccionesRequest) (*ListTransaccionesResponse, error) {
	items, total, err := s.repo.List(ctx, req)
	if err != nil {
		return nil, err
	}
	hidden, err := s.repo.CountHidden(ctx, req)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []Transaccion{}
	}
	return &ListTransaccionesResponse{
		Transacciones: items,
		Pagination:    shared.NewPagination(req.Page, req.PerPage, total),
		HiddenCount:   hidden,
	}, nil
}

// ListPendientes returns the open pending requests.
func (s *Service) ListPendientes(ctx context.Context) ([]Transaccion, error) {
	estado := EstadoPendiente
	items, _, err := s.repo.List(ctx, ListTransaccionesRequest{
		Estado:        &estado,
		IncludeHidden: true,
		PerPage:       200,
	})
	if items == nil {
		items = []Transaccion{}
	}
	return items, err
}

// ListPorSocio returns the movements touching one counterparty.
func (s *Service) ListPorSocio(ctx context.Context, ref SocioRef, includeHidden bool, page, perPage int) (*ListTransaccionesResponse, error) {
	socio := Parte{Tipo: ref.Tipo, ID: NormalizaID(ref.ID)}
	return s.List(ctx, ListTransaccionesRequest{
		Socio:         &socio,
		IncludeHidden: includeHidden,
		Page:          page,
		PerPage:       perPage,
	})
}

// ListPorCuenta returns the movements touching one internal sub-account,
// matching legacy slugs as well as the numeric id.
func (s *Service) ListPorCuenta(ctx context.Context, nombre string, includeHidden bool, page, perPage int) (*ListTransaccionesResponse, error) {
	dir, err := s.dirs.Directory(ctx)
	if err != nil {
		return nil, err
	}
	cuenta, ok := socios.ResolveCuenta(dir.Cuentas(), nombre)
	if !ok {
		return nil, fmt.Errorf("%w: cuenta %q", httpx.ErrNotFound, nombre)
	}
	return s.List(ctx, ListTransaccionesRequest{
		CuentaRefs:    socios.CuentaRefs(cuenta),
		IncludeHidden: includeHidden,
		Page:          page,
		PerPage:       perPage,
	})
}

// Crear registers a movement. Pending requests may omit monto and metodo;
// everything else validates up front. The concept string is generated here
// when the client did not supply one, then stored verbatim. Pending requests
// skip generation, since metodoPago may still be missing; Completar fills
// the concept once the method is known.
func (s *Service) Crear(ctx context.Context, req CrearTransaccionRequest) (*Transaccion, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %s", httpx.ErrValidation, err)
	}

	origenTipo, err := socios.ParsePartyType(req.OrigenTipo)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", httpx.ErrValidation, err)
	}
	destinoTipo, err := socios.ParsePartyType(req.DestinoTipo)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", httpx.ErrValidation, err)
	}

	t := Transaccion{
		Origen:      Parte{Tipo: origenTipo, ID: NormalizaID(req.OrigenID)},
		Destino:     Parte{Tipo: destinoTipo, ID: NormalizaID(req.DestinoID)},
		Fecha:       req.Fecha,
		MetodoPago:  req.MetodoPago,
		Concepto:    req.Concepto,
		Comprobante: req.Comprobante,
		Comentario:  req.Comentario,
		Estado:      EstadoNormal,
	}
	if req.Monto != nil {
		t.Monto = *req.Monto
	}
	if req.Pendiente {
		t.Estado = EstadoPendiente
	} else {
		if t.Monto.LessThanOrEqual(decimal.Zero) {
			return nil, fmt.Errorf("%w: monto debe ser mayor que cero", httpx.ErrValidation)
		}
		if t.MetodoPago == "" {
			return nil, fmt.Errorf("%w: metodoPago requerido", httpx.ErrValidation)
		}
	}
	if t.Comprobante == nil {
		ref := uuid.NewString()
		t.Comprobante = &ref
	}

	dir, dirErr := s.dirs.Directory(ctx)
	if dirErr != nil {
		s.logger.Warn("load directory for concepto", slog.Any("error", dirErr))
	}
	if t.Concepto == "" && !req.Pendiente {
		t.Concepto = GenerarConcepto(t.MetodoPago, t.Origen, t.Destino, dir)
	}

	id, err := s.repo.Create(ctx, t)
	if err != nil {
		return nil, fmt.Errorf("crear transaccion: %w", err)
	}
	t.ID = id

	s.invalidate(ctx, nil, &t, dir)
	return &t, nil
}

// Actualizar edits a movement. Moving an end to a different counterparty
// stales both the old and the new counterparty views.
func (s *Service) Actualizar(ctx context.Context, id int64, req ActualizarTransaccionRequest) (*Transaccion, error) {
	antes, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	t := *antes
	if req.OrigenTipo != nil {
		tipo, err := socios.ParsePartyType(*req.OrigenTipo)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", httpx.ErrValidation, err)
		}
		t.Origen.Tipo = tipo
	}
	if req.OrigenID != nil {
		t.Origen.ID = NormalizaID(*req.OrigenID)
	}
	if req.DestinoTipo != nil {
		tipo, err := socios.ParsePartyType(*req.DestinoTipo)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", httpx.ErrValidation, err)
		}
		t.Destino.Tipo = tipo
	}
	if req.DestinoID != nil {
		t.Destino.ID = NormalizaID(*req.DestinoID)
	}
	if req.Monto != nil {
		t.Monto = *req.Monto
	}
	if req.Fecha != nil {
		t.Fecha = *req.Fecha
	}
	if req.MetodoPago != nil {
		t.MetodoPago = *req.MetodoPago
	}
	if req.Concepto != nil {
		t.Concepto = *req.Concepto
	}
	if req.Comprobante != nil {
		t.Comprobante = req.Comprobante
	}
	if req.Comentario != nil {
		t.Comentario = req.Comentario
	}

	if err := s.repo.Update(ctx, t); err != nil {
		return nil, fmt.Errorf("actualizar transaccion: %w", err)
	}

	dir := s.directoryQuiet(ctx)
	s.invalidate(ctx, antes, &t, dir)
	return &t, nil
}

// Completar confirms a pending request, turning it into a normal movement.
// The read and the update share one transaction so a concurrent edit cannot
// slip between them.
func (s *Service) Completar(ctx context.Context, id int64, req CompletarRequest) (*Transaccion, error) {
	dir := s.directoryQuiet(ctx)

	var antes *Transaccion
	var t Transaccion
	err := s.repo.InTx(ctx, func(repo Repository) error {
		var err error
		antes, err = repo.Get(ctx, id)
		if err != nil {
			return err
		}
		if !antes.Pendiente() {
			return fmt.Errorf("%w: transaccion %d no esta pendiente", httpx.ErrValidation, id)
		}

		t = *antes
		if req.Monto != nil {
			t.Monto = *req.Monto
		}
		if req.MetodoPago != nil {
			t.MetodoPago = *req.MetodoPago
		}
		if req.Fecha != nil {
			t.Fecha = *req.Fecha
		}
		if t.Monto.LessThanOrEqual(decimal.Zero) {
			return fmt.Errorf("%w: monto debe ser mayor que cero", httpx.ErrValidation)
		}
		if t.MetodoPago == "" {
			return fmt.Errorf("%w: metodoPago requerido", httpx.ErrValidation)
		}
		t.Estado = EstadoNormal

		if t.Concepto == "" {
			t.Concepto = GenerarConcepto(t.MetodoPago, t.Origen, t.Destino, dir)
		}

		if err := repo.Update(ctx, t); err != nil {
			return fmt.Errorf("completar transaccion: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, antes, &t, dir)
	return &t, nil
}

// Eliminar removes a movement outright. Pending requests are the usual
// target; normal movements prefer Ocultar.
func (s *Service) Eliminar(ctx context.Context, id int64) error {
	antes, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx, antes, nil, s.directoryQuiet(ctx))
	return nil
}

// Ocultar soft-hides a movement. Balances keep counting it.
func (s *Service) Ocultar(ctx context.Context, id int64) error {
	t, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.SetOculto(ctx, id, true); err != nil {
		return err
	}
	s.invalidate(ctx, t, t, s.directoryQuiet(ctx))
	return nil
}

// RestaurarSocio flips every hidden movement of one counterparty back to
// visible. Terceros go through the same path as everyone else.
func (s *Service) RestaurarSocio(ctx context.Context, ref SocioRef) (int64, error) {
	socio := Parte{Tipo: ref.Tipo, ID: NormalizaID(ref.ID)}
	n, err := s.repo.RestoreScope(ctx, &socio, nil)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.bump(ctx, []string{
			invalidation.ScopeTransacciones,
			invalidation.ScopeSocio(string(ref.Tipo), NormalizaID(ref.ID)),
		}, []string{string(ref.Tipo)})
	}
	return n, nil
}

func (s *Service) directoryQuiet(ctx context.Context) *socios.Directory {
	dir, err := s.dirs.Directory(ctx)
	if err != nil {
		s.logger.Warn("load directory", slog.Any("error", err))
		return nil
	}
	return dir
}

// scopesFor enumerates every cached view a transaction mutation can stale:
// the global listing, the pending queue when a pending request is involved,
// the detail scopes of both parties before and after the mutation, the
// per-type balance buckets, and the internal sub-account path with legacy
// slug and numeric id matching.
func scopesFor(antes, despues *Transaccion, cuentas []socios.Cuenta) []string {
	scopes := []string{invalidation.ScopeTransacciones}

	addParte := func(p Parte) {
		id := NormalizaID(p.ID)
		scopes = append(scopes, invalidation.ScopeSocio(string(p.Tipo), id))
		switch p.Tipo {
		case socios.PartyMina, socios.PartyComprador, socios.PartyVolquetero:
			scopes = append(scopes, invalidation.ScopeSaldos(string(p.Tipo)))
		case socios.PartyCuenta, socios.PartyBanco:
			if c, ok := socios.ResolveCuenta(cuentas, id); ok {
				scopes = append(scopes, invalidation.ScopeCuenta(strconv.FormatInt(c.ID, 10)))
			} else {
				scopes = append(scopes, invalidation.ScopeCuenta(id))
			}
		}
	}

	for _, t := range []*Transaccion{antes, despues} {
		if t == nil {
			continue
		}
		if t.Pendiente() {
			scopes = append(scopes, invalidation.ScopePendientes)
		}
		addParte(t.Origen)
		addParte(t.Destino)
	}
	return invalidation.Dedupe(scopes)
}

func (s *Service) invalidate(ctx context.Context, antes, despues *Transaccion, dir *socios.Directory) {
	var cuentas []socios.Cuenta
	if dir != nil {
		cuentas = dir.Cuentas()
	}

	tipos := make(map[string]struct{})
	for _, t := range []*Transaccion{antes, despues} {
		if t == nil {
			continue
		}
		for _, p := range []Parte{t.Origen, t.Destino} {
			switch p.Tipo {
			case socios.PartyMina, socios.PartyComprador, socios.PartyVolquetero:
				tipos[string(p.Tipo)] = struct{}{}
			}
		}
	}
	warm := make([]string, 0, len(tipos))
	for tipo := range tipos {
		warm = append(warm, tipo)
	}

	s.bump(ctx, scopesFor(antes, despues, cuentas), warm)
}

func (s *Service) bump(ctx context.Context, scopes, warmupTipos []string) {
	if s.bumper != nil {
		if err := s.bumper.Bump(ctx, scopes...); err != nil {
			s.logger.Warn("bump transacciones scopes", slog.Any("error", err))
		}
	}
	if s.enqueuer != nil && len(warmupTipos) > 0 {
		if err := s.enqueuer.EnqueueSaldosWarmup(ctx, warmupTipos...); err != nil {
			s.logger.Warn("enqueue saldos warmup", slog.Any("error", err))
		}
	}
}
