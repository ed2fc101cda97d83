package saldos

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"

	"github.com/rodmar-transportes/rodmar-backend/internal/invalidation"
	"github.com/rodmar-transportes/rodmar-backend/internal/platform/httpx"
	"github.com/rodmar-transportes/rodmar-backend/internal/socios"
	"github.com/rodmar-transportes/rodmar-backend/internal/transacciones"
	"github.com/rodmar-transportes/rodmar-backend/internal/viajes"
)

// ViajesSource feeds completed-trip data into balance computation.
type ViajesSource interface {
	ListAll(ctx context.Context, filter viajes.BalanceFilter) ([]viajes.Viaje, error)
}

// TransaccionesSource feeds movement data into balance computation.
type TransaccionesSource interface {
	ListAll(ctx context.Context, filter transacciones.BalanceFilter) ([]transacciones.Transaccion, error)
}

// DirectoryProvider loads the reference directory used for names and cuenta
// resolution.
type DirectoryProvider interface {
	Directory(ctx context.Context) (*socios.Directory, error)
}

// SaldoSocio is one counterparty balance with its display name attached.
type SaldoSocio struct {
	Balance
	Nombre string `json:"nombre"`
}

// Resumen is the per-type balance summary.
type Resumen struct {
	Tipo   socios.PartyType `json:"tipo"`
	Saldos []SaldoSocio     `json:"saldos"`
	Total  decimal.Decimal  `json:"total"`
}

// Service computes balances behind the versioned cache. Concurrent requests
// for the same key collapse into a single computation via singleflight.
type Service struct {
	trips  ViajesSource
	moves  TransaccionesSource
	dirs   DirectoryProvider
	cache  *invalidation.Cache
	policy SignPolicy
	group  singleflight.Group
	logger *slog.Logger
}

// NewService builds the balance service. cache may be nil, which disables
// caching but keeps the computation path identical.
func NewService(trips ViajesSource, moves TransaccionesSource, dirs DirectoryProvider, cache *invalidation.Cache, logger *slog.Logger) *Service {
	return &Service{
		trips:  trips,
		moves:  moves,
		dirs:   dirs,
		cache:  cache,
		policy: DefaultSignPolicy(),
		logger: logger,
	}
}

// Saldo returns the balance of one counterparty.
func (s *Service) Saldo(ctx context.Context, tipo socios.PartyType, id string) (*SaldoSocio, error) {
	id = transacciones.NormalizaID(id)
	scopes := []string{
		invalidation.ScopeSaldos(string(tipo)),
		invalidation.ScopeSocio(string(tipo), id),
	}
	if tipo == socios.PartyCuenta || tipo == socios.PartyBanco {
		// Cuenta requests may use a slug or display name while mutations
		// bump the canonical numeric scope. Resolve before keying so the
		// cached entry actually invalidates.
		if dir, err := s.dirs.Directory(ctx); err == nil {
			if c, ok := socios.ResolveCuenta(dir.Cuentas(), id); ok {
				id = strconv.FormatInt(c.ID, 10)
			}
		}
		scopes = append(scopes, invalidation.ScopeCuenta(id))
	}
	key, err := s.cache.BuildKey(ctx, scopes, "saldos", "socio", string(tipo), id)
	if err != nil {
		return nil, err
	}

	var out SaldoSocio
	err = s.fetch(ctx, key, &out, func(ctx context.Context) (interface{}, error) {
		return s.computeSaldo(ctx, tipo, id)
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Resumen returns the balances of every registered counterparty of a type,
// plus their sum.
func (s *Service) Resumen(ctx context.Context, tipo socios.PartyType) (*Resumen, error) {
	scopes := []string{
		invalidation.ScopeSaldos(string(tipo)),
		invalidation.ScopeViajes,
		invalidation.ScopeTransacciones,
	}
	key, err := s.cache.BuildKey(ctx, scopes, "saldos", "resumen", string(tipo))
	if err != nil {
		return nil, err
	}

	var out Resumen
	err = s.fetch(ctx, key, &out, func(ctx context.Context) (interface{}, error) {
		return s.computeResumen(ctx, tipo)
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// fetch runs the cache lookup inside singleflight so a stampede on a cold key
// computes once. The shared result travels as raw JSON so every waiter can
// decode into its own destination.
func (s *Service) fetch(ctx context.Context, key string, dest interface{}, loader func(context.Context) (interface{}, error)) error {
	shared, err, _ := s.group.Do(key, func() (interface{}, error) {
		var raw json.RawMessage
		if err := s.cache.FetchJSON(ctx, key, &raw, loader); err != nil {
			return nil, err
		}
		return raw, nil
	})
	if err != nil {
		return err
	}
	return json.Unmarshal(shared.(json.RawMessage), dest)
}

func (s *Service) computeSaldo(ctx context.Context, tipo socios.PartyType, id string) (*SaldoSocio, error) {
	dir, err := s.dirs.Directory(ctx)
	if err != nil {
		s.logger.Warn("load directory for saldo", slog.Any("error", err))
	}
	if tipo == socios.PartyCuenta || tipo == socios.PartyBanco {
		// The request may name the cuenta by slug or display name; the
		// balance compares the canonical numeric id.
		if c, ok := socios.ResolveCuenta(dir.Cuentas(), id); ok {
			id = strconv.FormatInt(c.ID, 10)
		}
	}

	trips, err := s.loadTrips(ctx, tipo, id)
	if err != nil {
		return nil, err
	}
	moves, err := s.loadMovimientos(ctx, dir, tipo, id)
	if err != nil {
		return nil, err
	}

	balance := Compute(canonicalTipo(tipo), id, trips, moves, s.policy)
	balance.Tipo = tipo
	return &SaldoSocio{Balance: balance, Nombre: dir.Nombre(tipo, balance.ID)}, nil
}

func (s *Service) computeResumen(ctx context.Context, tipo socios.PartyType) (*Resumen, error) {
	dir, err := s.dirs.Directory(ctx)
	if err != nil {
		return nil, fmt.Errorf("saldos: load directory: %w", err)
	}
	padron := dir.Padron(tipo)

	trips, err := s.loadTrips(ctx, tipo, "")
	if err != nil {
		return nil, err
	}
	moves, err := s.moves.ListAll(ctx, transacciones.BalanceFilter{})
	if err != nil {
		return nil, err
	}
	if tipo == socios.PartyCuenta || tipo == socios.PartyBanco {
		moves = canonicalizeCuentas(moves, dir.Cuentas())
	}

	res := &Resumen{Tipo: tipo, Saldos: make([]SaldoSocio, 0, len(padron)), Total: decimal.Zero}
	for _, ref := range padron {
		balance := Compute(canonicalTipo(tipo), ref.ID, trips, moves, s.policy)
		balance.Tipo = tipo
		res.Saldos = append(res.Saldos, SaldoSocio{Balance: balance, Nombre: ref.Nombre})
		res.Total = res.Total.Add(balance.Net)
	}
	return res, nil
}

// loadTrips narrows the trip fetch to the one counterparty when it can. Types
// that never accrue trip totals skip the query entirely.
func (s *Service) loadTrips(ctx context.Context, tipo socios.PartyType, id string) ([]viajes.Viaje, error) {
	var filter viajes.BalanceFilter
	numeric, numOK := parseNumericID(id)
	switch tipo {
	case socios.PartyMina:
		if numOK {
			filter.MinaID = &numeric
		}
	case socios.PartyComprador:
		if numOK {
			filter.CompradorID = &numeric
		}
	case socios.PartyVolquetero:
		if numOK {
			filter.VolqueteroID = &numeric
		}
	default:
		return nil, nil
	}
	return s.trips.ListAll(ctx, filter)
}

// loadMovimientos fetches the movements touching one counterparty. Internal
// sub-accounts match by every reference they answer to, with ids rewritten to
// the canonical numeric form so the balance math compares one spelling.
func (s *Service) loadMovimientos(ctx context.Context, dir *socios.Directory, tipo socios.PartyType, id string) ([]transacciones.Transaccion, error) {
	if tipo == socios.PartyCuenta || tipo == socios.PartyBanco {
		cuenta, ok := socios.ResolveCuenta(dir.Cuentas(), id)
		if !ok {
			return nil, fmt.Errorf("%w: cuenta %q", httpx.ErrNotFound, id)
		}
		moves, err := s.moves.ListAll(ctx, transacciones.BalanceFilter{CuentaRefs: socios.CuentaRefs(cuenta)})
		if err != nil {
			return nil, err
		}
		return canonicalizeCuentas(moves, dir.Cuentas()), nil
	}
	socio := transacciones.Parte{Tipo: tipo, ID: id}
	return s.moves.ListAll(ctx, transacciones.BalanceFilter{Socio: &socio})
}

// canonicalTipo folds banco into cuenta: both type names address the same
// internal sub-account records, so balance math runs on one spelling.
func canonicalTipo(tipo socios.PartyType) socios.PartyType {
	if tipo == socios.PartyBanco {
		return socios.PartyCuenta
	}
	return tipo
}

// canonicalizeCuentas rewrites cuenta and banco party references to the
// canonical form, numeric id under the cuenta type, so slug, name and
// banco spellings all land on the same balance.
func canonicalizeCuentas(moves []transacciones.Transaccion, cuentas []socios.Cuenta) []transacciones.Transaccion {
	canonical := func(p *transacciones.Parte) {
		if p.Tipo != socios.PartyCuenta && p.Tipo != socios.PartyBanco {
			return
		}
		if c, ok := socios.ResolveCuenta(cuentas, p.ID); ok {
			p.ID = strconv.FormatInt(c.ID, 10)
		}
		p.Tipo = socios.PartyCuenta
	}
	for i := range moves {
		canonical(&moves[i].Origen)
		canonical(&moves[i].Destino)
	}
	return moves
}

func parseNumericID(id string) (int64, bool) {
	n, err := strconv.ParseInt(id, 10, 64)
	return n, err == nil
}
