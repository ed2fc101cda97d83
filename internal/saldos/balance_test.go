package saldos

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rodmar-transportes/rodmar-backend/internal/socios"
	"github.com/rodmar-transportes/rodmar-backend/internal/transacciones"
	"github.com/rodmar-transportes/rodmar-backend/internal/viajes"
)

func completedViaje(minaID, compradorID, volqueteroID int64) viajes.Viaje {
	descargue := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	return viajes.Viaje{
		MinaID:         minaID,
		CompradorID:    compradorID,
		VolqueteroID:   volqueteroID,
		PagaFlete:      viajes.FleteEmpresa,
		Estado:         viajes.EstadoCompletado,
		FechaDescargue: &descargue,
	}
}

func movimiento(origen, destino transacciones.Parte, monto int64) transacciones.Transaccion {
	return transacciones.Transaccion{
		Origen:  origen,
		Destino: destino,
		Monto:   decimal.NewFromInt(monto),
		Estado:  transacciones.EstadoNormal,
	}
}

func TestComputeMinaTripAddsTotalCompra(t *testing.T) {
	v := completedViaje(3, 7, 9)
	v.TotalCompra = decimal.NewFromInt(500000)

	b := Compute(socios.PartyMina, "3", []viajes.Viaje{v}, nil, DefaultSignPolicy())

	assert.True(t, b.Inflow.Equal(decimal.NewFromInt(500000)), "inflow %s", b.Inflow)
	assert.True(t, b.Outflow.IsZero())
	assert.True(t, b.Net.Equal(decimal.NewFromInt(500000)), "net %s", b.Net)
}

func TestComputeMinaTransactionSigns(t *testing.T) {
	v := completedViaje(3, 7, 9)
	v.TotalCompra = decimal.NewFromInt(500000)

	mina := transacciones.Parte{Tipo: socios.PartyMina, ID: "3"}
	banco := transacciones.Parte{Tipo: socios.PartyBanco, ID: "1"}
	movs := []transacciones.Transaccion{
		movimiento(mina, banco, 100000),
		movimiento(banco, mina, 40000),
	}

	b := Compute(socios.PartyMina, "3", []viajes.Viaje{v}, movs, DefaultSignPolicy())

	assert.True(t, b.Inflow.Equal(decimal.NewFromInt(600000)), "inflow %s", b.Inflow)
	assert.True(t, b.Outflow.Equal(decimal.NewFromInt(40000)), "outflow %s", b.Outflow)
	assert.True(t, b.Net.Equal(decimal.NewFromInt(560000)), "net %s", b.Net)
}

func TestComputeVolqueteroBothRoles(t *testing.T) {
	v := completedViaje(3, 7, 9)
	v.TotalFlete = decimal.NewFromInt(200000)

	volquetero := transacciones.Parte{Tipo: socios.PartyVolquetero, ID: "9"}
	cuenta := transacciones.Parte{Tipo: socios.PartyCuenta, ID: "1"}
	movs := []transacciones.Transaccion{
		movimiento(volquetero, cuenta, 50000),
		movimiento(cuenta, volquetero, 80000),
	}

	b := Compute(socios.PartyVolquetero, "9", []viajes.Viaje{v}, movs, DefaultSignPolicy())

	assert.True(t, b.Inflow.Equal(decimal.NewFromInt(250000)), "inflow %s", b.Inflow)
	assert.True(t, b.Outflow.Equal(decimal.NewFromInt(80000)), "outflow %s", b.Outflow)
	assert.True(t, b.Net.Equal(decimal.NewFromInt(170000)), "net %s", b.Net)
}

func TestComputeVolqueteroFleteCompradorDoesNotCount(t *testing.T) {
	v := completedViaje(3, 7, 9)
	v.TotalFlete = decimal.NewFromInt(200000)
	v.PagaFlete = viajes.FleteComprador

	b := Compute(socios.PartyVolquetero, "9", []viajes.Viaje{v}, nil, DefaultSignPolicy())

	assert.True(t, b.Net.IsZero(), "net %s", b.Net)
}

func TestComputeSkipsPendingTransactions(t *testing.T) {
	mina := transacciones.Parte{Tipo: socios.PartyMina, ID: "3"}
	banco := transacciones.Parte{Tipo: socios.PartyBanco, ID: "1"}
	pendiente := movimiento(banco, mina, 99999)
	pendiente.Estado = transacciones.EstadoPendiente

	b := Compute(socios.PartyMina, "3", nil, []transacciones.Transaccion{
		movimiento(mina, banco, 100000),
		pendiente,
	}, DefaultSignPolicy())

	assert.True(t, b.Inflow.Equal(decimal.NewFromInt(100000)), "inflow %s", b.Inflow)
	assert.True(t, b.Outflow.IsZero())
}

func TestComputeSkipsIncompleteTrips(t *testing.T) {
	v := completedViaje(3, 7, 9)
	v.TotalCompra = decimal.NewFromInt(500000)
	v.FechaDescargue = nil
	v.Estado = viajes.EstadoPendiente

	b := Compute(socios.PartyMina, "3", []viajes.Viaje{v}, nil, DefaultSignPolicy())

	assert.True(t, b.Net.IsZero(), "net %s", b.Net)
}

func TestComputeSelfTransferCountsOnce(t *testing.T) {
	mina := transacciones.Parte{Tipo: socios.PartyMina, ID: "3"}
	movs := []transacciones.Transaccion{movimiento(mina, mina, 70000)}

	b := Compute(socios.PartyMina, "3", nil, movs, DefaultSignPolicy())

	assert.True(t, b.Inflow.Equal(decimal.NewFromInt(70000)), "inflow %s", b.Inflow)
	assert.True(t, b.Outflow.IsZero(), "outflow %s", b.Outflow)
}

func TestComputeIncludesHiddenRecords(t *testing.T) {
	mina := transacciones.Parte{Tipo: socios.PartyMina, ID: "3"}
	banco := transacciones.Parte{Tipo: socios.PartyBanco, ID: "1"}
	hidden := movimiento(mina, banco, 25000)
	hidden.Oculto = true

	b := Compute(socios.PartyMina, "3", nil, []transacciones.Transaccion{hidden}, DefaultSignPolicy())

	assert.True(t, b.Inflow.Equal(decimal.NewFromInt(25000)), "inflow %s", b.Inflow)
}

func TestComputeNormalisesPartyIDs(t *testing.T) {
	mina := transacciones.Parte{Tipo: socios.PartyMina, ID: " 003 "}
	banco := transacciones.Parte{Tipo: socios.PartyBanco, ID: "1"}

	b := Compute(socios.PartyMina, "3", nil, []transacciones.Transaccion{movimiento(mina, banco, 10000)}, DefaultSignPolicy())

	assert.True(t, b.Inflow.Equal(decimal.NewFromInt(10000)), "inflow %s", b.Inflow)
}

func TestDefaultSignPolicyCoversEveryType(t *testing.T) {
	policy := DefaultSignPolicy()
	for _, tipo := range []socios.PartyType{
		socios.PartyMina, socios.PartyComprador, socios.PartyVolquetero,
		socios.PartyTercero, socios.PartyCuenta, socios.PartyBanco,
	} {
		signs, ok := policy[tipo]
		require.True(t, ok, "missing row for %s", tipo)
		assert.Equal(t, RoleSigns{Origen: +1, Destino: -1}, signs)
	}
}
