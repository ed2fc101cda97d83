package viajes

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestRecalcularTotalesFleteEmpresa(t *testing.T) {
	v := Viaje{
		Peso:         decimal.NewFromInt(30),
		PrecioCompra: decimal.NewFromInt(10000),
		PrecioVenta:  decimal.NewFromInt(15000),
		PrecioFlete:  decimal.NewFromInt(2000),
		PagaFlete:    FleteEmpresa,
	}
	v.RecalcularTotales()

	assert.True(t, v.TotalCompra.Equal(decimal.NewFromInt(300000)), "totalCompra %s", v.TotalCompra)
	assert.True(t, v.TotalVenta.Equal(decimal.NewFromInt(450000)), "totalVenta %s", v.TotalVenta)
	assert.True(t, v.TotalFlete.Equal(decimal.NewFromInt(60000)), "totalFlete %s", v.TotalFlete)
	assert.True(t, v.MontoConsignar.Equal(decimal.NewFromInt(450000)), "montoConsignar %s", v.MontoConsignar)
	assert.True(t, v.Ganancia.Equal(decimal.NewFromInt(90000)), "ganancia %s", v.Ganancia)
}

func TestRecalcularTotalesFleteComprador(t *testing.T) {
	v := Viaje{
		Peso:         decimal.NewFromInt(30),
		PrecioCompra: decimal.NewFromInt(10000),
		PrecioVenta:  decimal.NewFromInt(15000),
		PrecioFlete:  decimal.NewFromInt(2000),
		PagaFlete:    FleteComprador,
	}
	v.RecalcularTotales()

	assert.True(t, v.MontoConsignar.Equal(decimal.NewFromInt(390000)), "montoConsignar %s", v.MontoConsignar)
	assert.True(t, v.Ganancia.Equal(decimal.NewFromInt(150000)), "ganancia %s", v.Ganancia)
}

func TestCompletadoRequiresDescargueAndEstado(t *testing.T) {
	descargue := time.Now()

	assert.False(t, Viaje{Estado: EstadoPendiente}.Completado())
	assert.False(t, Viaje{Estado: EstadoCompletado}.Completado(), "estado alone is not enough")
	assert.False(t, Viaje{Estado: EstadoPendiente, FechaDescargue: &descargue}.Completado())
	assert.True(t, Viaje{Estado: EstadoCompletado, FechaDescargue: &descargue}.Completado())
}
