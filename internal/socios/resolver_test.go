package socios

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCuentas() []Cuenta {
	return []Cuenta{
		{ID: 1, Nombre: "RodMar", Codigo: "RM", SlugsLegados: []string{CuentaPrincipalSlug}},
		{ID: 2, Nombre: "Ferretería RodMar", Codigo: "FERRE", SlugsLegados: []string{CuentaFerreteriaSlug}},
		{ID: 3, Nombre: "Combustible", Codigo: "COMB", SlugsLegados: []string{CuentaCombustibleSlug}},
	}
}

func TestSlugify(t *testing.T) {
	assert.Equal(t, "ferreteria-rodmar", Slugify("Ferretería RodMar"))
	assert.Equal(t, "combustible", Slugify("  Combustible  "))
	assert.Equal(t, "pena-blanca", Slugify("Peña Blanca"))
	assert.Equal(t, "", Slugify("¡¿!"))
}

func TestResolveCuentaPrecedence(t *testing.T) {
	cuentas := testCuentas()

	byID, ok := ResolveCuenta(cuentas, "2")
	require.True(t, ok)
	assert.Equal(t, int64(2), byID.ID)

	byCodigo, ok := ResolveCuenta(cuentas, "ferre")
	require.True(t, ok)
	assert.Equal(t, int64(2), byCodigo.ID)

	bySlug, ok := ResolveCuenta(cuentas, "ferreteria")
	require.True(t, ok)
	assert.Equal(t, int64(2), bySlug.ID)

	byNombre, ok := ResolveCuenta(cuentas, "Ferretería RodMar")
	require.True(t, ok)
	assert.Equal(t, int64(2), byNombre.ID)
}

func TestResolveCuentaNumericWinsOverSlug(t *testing.T) {
	// A cuenta whose legacy slug happens to be another cuenta's numeric id
	// must lose to the numeric match.
	cuentas := []Cuenta{
		{ID: 7, Nombre: "Siete"},
		{ID: 8, Nombre: "Ocho", SlugsLegados: []string{"7"}},
	}
	c, ok := ResolveCuenta(cuentas, "7")
	require.True(t, ok)
	assert.Equal(t, int64(7), c.ID)
}

func TestResolveCuentaUnknown(t *testing.T) {
	_, ok := ResolveCuenta(testCuentas(), "no-existe")
	assert.False(t, ok)
	_, ok = ResolveCuenta(testCuentas(), "")
	assert.False(t, ok)
}

func TestCuentaRefs(t *testing.T) {
	refs := CuentaRefs(testCuentas()[1])
	assert.Contains(t, refs, "2")
	assert.Contains(t, refs, "FERRE")
	assert.Contains(t, refs, "ferreteria")
	assert.Contains(t, refs, "ferreteria-rodmar")
}

func TestDirectoryNombreFallsBack(t *testing.T) {
	dir := NewDirectory(
		[]Mina{{ID: 3, Nombre: "Mina Norte"}},
		nil, nil, nil,
		testCuentas(),
	)

	assert.Equal(t, "Mina Norte", dir.Nombre(PartyMina, "3"))
	assert.Equal(t, NombreDesconocido, dir.Nombre(PartyMina, "404"))
	assert.Equal(t, "Ferretería RodMar", dir.Nombre(PartyCuenta, "ferreteria"))

	var nilDir *Directory
	assert.Equal(t, NombreDesconocido, nilDir.Nombre(PartyMina, "3"))
}

func TestPadronSortsNumerically(t *testing.T) {
	dir := NewDirectory(
		[]Mina{{ID: 10, Nombre: "Diez"}, {ID: 2, Nombre: "Dos"}},
		nil, nil, nil, nil,
	)

	padron := dir.Padron(PartyMina)
	require.Len(t, padron, 2)
	assert.Equal(t, "2", padron[0].ID)
	assert.Equal(t, "10", padron[1].ID)
}
