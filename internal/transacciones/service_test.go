package transacciones

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rodmar-transportes/rodmar-backend/internal/invalidation"
	"github.com/rodmar-transportes/rodmar-backend/internal/platform/httpx"
	"github.com/rodmar-transportes/rodmar-backend/internal/socios"
)

type mockRepository struct {
	items  map[int64]*Transaccion
	nextID int64
}

func newMockRepository() *mockRepository {
	return &mockRepository{items: make(map[int64]*Transaccion), nextID: 1}
}

func (m *mockRepository) Get(ctx context.Context, id int64) (*Transaccion, error) {
	t, ok := m.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	clone := *t
	return &clone, nil
}

func (m *mockRepository) List(ctx context.Context, req ListTransaccionesRequest) ([]Transaccion, int, error) {
	var out []Transaccion
	for _, t := range m.items {
		if req.Estado != nil && t.Estado != *req.Estado {
			continue
		}
		if !req.IncludeHidden && t.Oculto {
			continue
		}
		if req.Socio != nil && !t.Origen.Es(req.Socio.Tipo, req.Socio.ID) && !t.Destino.Es(req.Socio.Tipo, req.Socio.ID) {
			continue
		}
		out = append(out, *t)
	}
	return out, len(out), nil
}

func (m *mockRepository) ListAll(ctx context.Context, filter BalanceFilter) ([]Transaccion, error) {
	var out []Transaccion
	for _, t := range m.items {
		out = append(out, *t)
	}
	return out, nil
}

func (m *mockRepository) CountHidden(ctx context.Context, req ListTransaccionesRequest) (int, error) {
	n := 0
	for _, t := range m.items {
		if t.Oculto {
			n++
		}
	}
	return n, nil
}

func (m *mockRepository) Create(ctx context.Context, t Transaccion) (int64, error) {
	id := m.nextID
	m.nextID++
	t.ID = id
	m.items[id] = &t
	return id, nil
}

func (m *mockRepository) Update(ctx context.Context, t Transaccion) error {
	if _, ok := m.items[t.ID]; !ok {
		return ErrNotFound
	}
	m.items[t.ID] = &t
	return nil
}

func (m *mockRepository) Delete(ctx context.Context, id int64) error {
	if _, ok := m.items[id]; !ok {
		return ErrNotFound
	}
	delete(m.items, id)
	return nil
}

func (m *mockRepository) SetOculto(ctx context.Context, id int64, oculto bool) error {
	t, ok := m.items[id]
	if !ok {
		return ErrNotFound
	}
	t.Oculto = oculto
	return nil
}

func (m *mockRepository) RestoreScope(ctx context.Context, socio *Parte, cuentaRefs []string) (int64, error) {
	var n int64
	for _, t := range m.items {
		if !t.Oculto {
			continue
		}
		if socio != nil && !t.Origen.Es(socio.Tipo, socio.ID) && !t.Destino.Es(socio.Tipo, socio.ID) {
			continue
		}
		t.Oculto = false
		n++
	}
	return n, nil
}

func (m *mockRepository) InTx(ctx context.Context, fn func(Repository) error) error {
	return fn(m)
}

type spyInvalidator struct {
	scopes [][]string
}

func (s *spyInvalidator) Bump(ctx context.Context, scopes ...string) error {
	s.scopes = append(s.scopes, scopes)
	return nil
}

func (s *spyInvalidator) all() []string {
	var out []string
	for _, batch := range s.scopes {
		out = append(out, batch...)
	}
	return out
}

type stubDirs struct{}

func (stubDirs) Directory(ctx context.Context) (*socios.Directory, error) {
	return testDirectory(), nil
}

type spyEnqueuer struct {
	tipos [][]string
}

func (s *spyEnqueuer) EnqueueSaldosWarmup(ctx context.Context, tipos ...string) error {
	s.tipos = append(s.tipos, tipos)
	return nil
}

func newTestService(repo *mockRepository) (*Service, *spyInvalidator, *spyEnqueuer) {
	spy := &spyInvalidator{}
	enq := &spyEnqueuer{}
	svc := NewService(repo, stubDirs{}, spy, enq, slog.Default())
	return svc, spy, enq
}

func validCreate() CrearTransaccionRequest {
	monto := decimal.NewFromInt(100000)
	return CrearTransaccionRequest{
		OrigenTipo:  "mina",
		OrigenID:    "3",
		DestinoTipo: "comprador",
		DestinoID:   "7",
		Monto:       &monto,
		Fecha:       time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
		MetodoPago:  "Efectivo",
	}
}

func TestCrearGeneratesConceptoAndComprobante(t *testing.T) {
	svc, spy, enq := newTestService(newMockRepository())

	tx, err := svc.Crear(context.Background(), validCreate())
	require.NoError(t, err)

	assert.Equal(t, "Efectivo de Mina (Mina Norte) a Comprador (ACME)", tx.Concepto)
	require.NotNil(t, tx.Comprobante)
	assert.NotEmpty(t, *tx.Comprobante)

	assert.Contains(t, spy.all(), invalidation.ScopeTransacciones)
	assert.Contains(t, spy.all(), invalidation.ScopeSocio("mina", "3"))
	assert.Contains(t, spy.all(), invalidation.ScopeSocio("comprador", "7"))
	require.Len(t, enq.tipos, 1)
	assert.ElementsMatch(t, []string{"mina", "comprador"}, enq.tipos[0])
}

func TestCrearKeepsClientConcepto(t *testing.T) {
	svc, _, _ := newTestService(newMockRepository())

	req := validCreate()
	req.Concepto = "Pago manual"
	tx, err := svc.Crear(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "Pago manual", tx.Concepto)
}

func TestCrearRejectsNormalWithoutMonto(t *testing.T) {
	svc, _, _ := newTestService(newMockRepository())

	req := validCreate()
	req.Monto = nil
	_, err := svc.Crear(context.Background(), req)
	assert.ErrorIs(t, err, httpx.ErrValidation)
}

func TestCrearPendienteAllowsMissingMonto(t *testing.T) {
	svc, spy, _ := newTestService(newMockRepository())

	req := validCreate()
	req.Monto = nil
	req.MetodoPago = ""
	req.Pendiente = true
	tx, err := svc.Crear(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, EstadoPendiente, tx.Estado)
	assert.Empty(t, tx.Concepto, "pending requests defer concepto until completion")
	assert.Contains(t, spy.all(), invalidation.ScopePendientes)
}

func TestActualizarMovingDestinoBumpsBothCounterparties(t *testing.T) {
	repo := newMockRepository()
	svc, spy, _ := newTestService(repo)

	tx, err := svc.Crear(context.Background(), validCreate())
	require.NoError(t, err)
	spy.scopes = nil

	destinoTipo := "mina"
	destinoID := "9"
	_, err = svc.Actualizar(context.Background(), tx.ID, ActualizarTransaccionRequest{
		DestinoTipo: &destinoTipo,
		DestinoID:   &destinoID,
	})
	require.NoError(t, err)

	scopes := spy.all()
	assert.Contains(t, scopes, invalidation.ScopeSocio("comprador", "7"), "old destino must go stale")
	assert.Contains(t, scopes, invalidation.ScopeSocio("mina", "9"), "new destino must go stale")
	assert.Contains(t, scopes, invalidation.ScopeSocio("mina", "3"))
	assert.Contains(t, scopes, invalidation.ScopeSaldos("mina"))
}

func TestCompletarFillsMissingFields(t *testing.T) {
	svc, _, _ := newTestService(newMockRepository())

	req := validCreate()
	req.Monto = nil
	req.MetodoPago = ""
	req.Concepto = ""
	req.Pendiente = true
	tx, err := svc.Crear(context.Background(), req)
	require.NoError(t, err)

	monto := decimal.NewFromInt(75000)
	metodo := "Transferencia"
	done, err := svc.Completar(context.Background(), tx.ID, CompletarRequest{Monto: &monto, MetodoPago: &metodo})
	require.NoError(t, err)

	assert.Equal(t, EstadoNormal, done.Estado)
	assert.True(t, done.Monto.Equal(monto))
	assert.Equal(t, "Transferencia de Mina (Mina Norte) a Comprador (ACME)", done.Concepto)
}

func TestCompletarRejectsNonPending(t *testing.T) {
	svc, _, _ := newTestService(newMockRepository())

	tx, err := svc.Crear(context.Background(), validCreate())
	require.NoError(t, err)

	_, err = svc.Completar(context.Background(), tx.ID, CompletarRequest{})
	assert.ErrorIs(t, err, httpx.ErrValidation)
}

func TestOcultarKeepsRecordAndBumps(t *testing.T) {
	repo := newMockRepository()
	svc, spy, _ := newTestService(repo)

	tx, err := svc.Crear(context.Background(), validCreate())
	require.NoError(t, err)
	spy.scopes = nil

	require.NoError(t, svc.Ocultar(context.Background(), tx.ID))

	hidden, err := repo.Get(context.Background(), tx.ID)
	require.NoError(t, err)
	assert.True(t, hidden.Oculto)
	assert.Contains(t, spy.all(), invalidation.ScopeSocio("mina", "3"))
}

func TestRestaurarSocioRestoresHiddenRows(t *testing.T) {
	repo := newMockRepository()
	svc, spy, _ := newTestService(repo)

	tx, err := svc.Crear(context.Background(), validCreate())
	require.NoError(t, err)
	require.NoError(t, svc.Ocultar(context.Background(), tx.ID))
	spy.scopes = nil

	n, err := svc.RestaurarSocio(context.Background(), SocioRef{Tipo: socios.PartyMina, ID: "3"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	restored, err := repo.Get(context.Background(), tx.ID)
	require.NoError(t, err)
	assert.False(t, restored.Oculto)
	assert.Contains(t, spy.all(), invalidation.ScopeSocio("mina", "3"))
}

func TestScopesForResolvesCuentaToCanonicalID(t *testing.T) {
	cuentas := testDirectory().Cuentas()
	antes := &Transaccion{
		Origen:  Parte{Tipo: socios.PartyComprador, ID: "7"},
		Destino: Parte{Tipo: socios.PartyCuenta, ID: "ferreteria"},
	}

	scopes := scopesFor(antes, nil, cuentas)

	assert.Contains(t, scopes, invalidation.ScopeCuenta("2"), "legacy slug must map to the numeric scope")
	assert.NotContains(t, scopes, invalidation.ScopeCuenta("ferreteria"))
}

func TestScopesForDeduplicates(t *testing.T) {
	tx := &Transaccion{
		Origen:  Parte{Tipo: socios.PartyMina, ID: "3"},
		Destino: Parte{Tipo: socios.PartyMina, ID: "3"},
	}

	scopes := scopesFor(tx, tx, nil)

	seen := make(map[string]int)
	for _, s := range scopes {
		seen[s]++
	}
	for s, n := range seen {
		assert.Equal(t, 1, n, "scope %s duplicated", s)
	}
}
