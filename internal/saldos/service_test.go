package saldos

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rodmar-transportes/rodmar-backend/internal/invalidation"
	"github.com/rodmar-transportes/rodmar-backend/internal/platform/httpx"
	"github.com/rodmar-transportes/rodmar-backend/internal/socios"
	"github.com/rodmar-transportes/rodmar-backend/internal/transacciones"
	"github.com/rodmar-transportes/rodmar-backend/internal/viajes"
)

type fakeTrips struct {
	items []viajes.Viaje
	calls int
}

func (f *fakeTrips) ListAll(ctx context.Context, filter viajes.BalanceFilter) ([]viajes.Viaje, error) {
	f.calls++
	var out []viajes.Viaje
	for _, v := range f.items {
		if filter.MinaID != nil && v.MinaID != *filter.MinaID {
			continue
		}
		if filter.CompradorID != nil && v.CompradorID != *filter.CompradorID {
			continue
		}
		if filter.VolqueteroID != nil && v.VolqueteroID != *filter.VolqueteroID {
			continue
		}
		out = append(out, v)
	}
	return out, nil
}

type fakeMoves struct {
	items []transacciones.Transaccion
}

func (f *fakeMoves) ListAll(ctx context.Context, filter transacciones.BalanceFilter) ([]transacciones.Transaccion, error) {
	var out []transacciones.Transaccion
	for _, t := range f.items {
		if filter.Socio != nil && !t.Origen.Es(filter.Socio.Tipo, filter.Socio.ID) && !t.Destino.Es(filter.Socio.Tipo, filter.Socio.ID) {
			continue
		}
		if len(filter.CuentaRefs) > 0 && !touchesCuenta(t.Origen, filter.CuentaRefs) && !touchesCuenta(t.Destino, filter.CuentaRefs) {
			continue
		}
		out = append(out, t)
	}
	return out, nil
}

// touchesCuenta mirrors the repository predicate: cuenta and banco rows both
// address the internal sub-accounts.
func touchesCuenta(p transacciones.Parte, refs []string) bool {
	if p.Tipo != socios.PartyCuenta && p.Tipo != socios.PartyBanco {
		return false
	}
	for _, ref := range refs {
		if transacciones.NormalizaID(p.ID) == transacciones.NormalizaID(ref) {
			return true
		}
	}
	return false
}

type fakeDirs struct {
	dir *socios.Directory
}

func (f fakeDirs) Directory(ctx context.Context) (*socios.Directory, error) {
	return f.dir, nil
}

func newTestDirectory() *socios.Directory {
	return socios.NewDirectory(
		[]socios.Mina{{ID: 3, Nombre: "Mina Norte"}},
		[]socios.Comprador{{ID: 7, Nombre: "ACME"}},
		[]socios.Volquetero{{ID: 9, Nombre: "Pedro Rojas"}},
		nil,
		[]socios.Cuenta{
			{ID: 2, Nombre: "Ferreteria RodMar", Codigo: "FERRE", SlugsLegados: []string{socios.CuentaFerreteriaSlug}},
		},
	)
}

func newTestService(t *testing.T, trips *fakeTrips, moves *fakeMoves) (*Service, *invalidation.Cache) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	cache := invalidation.NewCache(client, time.Minute)
	return NewService(trips, moves, fakeDirs{dir: newTestDirectory()}, cache, slog.Default()), cache
}

func completedMinaViaje(minaID int64, totalCompra int64) viajes.Viaje {
	descargue := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	return viajes.Viaje{
		MinaID:         minaID,
		CompradorID:    7,
		VolqueteroID:   9,
		TotalCompra:    decimal.NewFromInt(totalCompra),
		PagaFlete:      viajes.FleteEmpresa,
		Estado:         viajes.EstadoCompletado,
		FechaDescargue: &descargue,
	}
}

func TestSaldoComputesAndNames(t *testing.T) {
	trips := &fakeTrips{items: []viajes.Viaje{completedMinaViaje(3, 500000)}}
	moves := &fakeMoves{}
	svc, _ := newTestService(t, trips, moves)

	out, err := svc.Saldo(context.Background(), socios.PartyMina, "3")
	require.NoError(t, err)

	assert.Equal(t, "Mina Norte", out.Nombre)
	assert.True(t, out.Net.Equal(decimal.NewFromInt(500000)), "net %s", out.Net)
}

func TestSaldoCachesUntilBump(t *testing.T) {
	trips := &fakeTrips{items: []viajes.Viaje{completedMinaViaje(3, 500000)}}
	moves := &fakeMoves{}
	svc, cache := newTestService(t, trips, moves)
	ctx := context.Background()

	first, err := svc.Saldo(ctx, socios.PartyMina, "3")
	require.NoError(t, err)
	require.True(t, first.Net.Equal(decimal.NewFromInt(500000)))

	// Underlying data changes but no scope was bumped: stale read.
	trips.items = append(trips.items, completedMinaViaje(3, 100000))
	stale, err := svc.Saldo(ctx, socios.PartyMina, "3")
	require.NoError(t, err)
	assert.True(t, stale.Net.Equal(decimal.NewFromInt(500000)), "net %s", stale.Net)

	require.NoError(t, cache.Bump(ctx, invalidation.ScopeSocio("mina", "3")))

	fresh, err := svc.Saldo(ctx, socios.PartyMina, "3")
	require.NoError(t, err)
	assert.True(t, fresh.Net.Equal(decimal.NewFromInt(600000)), "net %s", fresh.Net)
}

func TestSaldoCuentaResolvesSlug(t *testing.T) {
	moves := &fakeMoves{items: []transacciones.Transaccion{
		{
			Origen:  transacciones.Parte{Tipo: socios.PartyComprador, ID: "7"},
			Destino: transacciones.Parte{Tipo: socios.PartyCuenta, ID: "ferreteria"},
			Monto:   decimal.NewFromInt(30000),
			Estado:  transacciones.EstadoNormal,
		},
	}}
	svc, _ := newTestService(t, &fakeTrips{}, moves)

	out, err := svc.Saldo(context.Background(), socios.PartyCuenta, "ferreteria")
	require.NoError(t, err)

	assert.Equal(t, "2", out.ID, "balance keys on the canonical numeric id")
	assert.Equal(t, "Ferreteria RodMar", out.Nombre)
	assert.True(t, out.Outflow.Equal(decimal.NewFromInt(30000)), "outflow %s", out.Outflow)
}

func TestSaldoBancoCountsBancoTypedMovements(t *testing.T) {
	moves := &fakeMoves{items: []transacciones.Transaccion{
		{
			Origen:  transacciones.Parte{Tipo: socios.PartyBanco, ID: "2"},
			Destino: transacciones.Parte{Tipo: socios.PartyMina, ID: "3"},
			Monto:   decimal.NewFromInt(80000),
			Estado:  transacciones.EstadoNormal,
		},
		{
			Origen:  transacciones.Parte{Tipo: socios.PartyComprador, ID: "7"},
			Destino: transacciones.Parte{Tipo: socios.PartyCuenta, ID: "ferreteria"},
			Monto:   decimal.NewFromInt(30000),
			Estado:  transacciones.EstadoNormal,
		},
	}}
	svc, _ := newTestService(t, &fakeTrips{}, moves)

	out, err := svc.Saldo(context.Background(), socios.PartyBanco, "2")
	require.NoError(t, err)

	assert.Equal(t, socios.PartyBanco, out.Tipo)
	assert.Equal(t, "2", out.ID)
	assert.True(t, out.Inflow.Equal(decimal.NewFromInt(80000)), "inflow %s", out.Inflow)
	assert.True(t, out.Outflow.Equal(decimal.NewFromInt(30000)), "outflow %s", out.Outflow)
}

func TestSaldoCuentaUnknownReturnsNotFound(t *testing.T) {
	svc, _ := newTestService(t, &fakeTrips{}, &fakeMoves{})

	_, err := svc.Saldo(context.Background(), socios.PartyCuenta, "no-existe")
	assert.ErrorIs(t, err, httpx.ErrNotFound)
}

func TestResumenSumsEveryRegisteredSocio(t *testing.T) {
	trips := &fakeTrips{items: []viajes.Viaje{completedMinaViaje(3, 500000)}}
	moves := &fakeMoves{}
	svc, _ := newTestService(t, trips, moves)

	res, err := svc.Resumen(context.Background(), socios.PartyMina)
	require.NoError(t, err)

	require.Len(t, res.Saldos, 1)
	assert.Equal(t, "Mina Norte", res.Saldos[0].Nombre)
	assert.True(t, res.Total.Equal(decimal.NewFromInt(500000)), "total %s", res.Total)
}
