// Package viajes manages trip (haul) records: the cargue registration, the
// descargue completion that adds the sale side, soft-hide and restore.
package viajes

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estado enumerates trip lifecycle states.
type Estado string

const (
	EstadoPendiente  Estado = "pendiente"
	EstadoCompletado Estado = "completado"
)

// PagaFlete says who pays the freight leg of a trip.
type PagaFlete string

const (
	FleteEmpresa   PagaFlete = "empresa"
	FleteComprador PagaFlete = "comprador"
)

// Viaje is a single truck haul. FechaDescargue is nil while the trip is still
// on the road; totals are recomputed server-side on every write.
type Viaje struct {
	ID             int64           `json:"id"`
	FechaCargue    time.Time       `json:"fechaCargue"`
	FechaDescargue *time.Time      `json:"fechaDescargue,omitempty"`
	Conductor      string          `json:"conductor"`
	Placa          string          `json:"placa"`
	TipoVehiculo   string          `json:"tipoVehiculo"`
	MinaID         int64           `json:"minaId"`
	CompradorID    int64           `json:"compradorId"`
	VolqueteroID   int64           `json:"volqueteroId"`
	Peso           decimal.Decimal `json:"peso"`
	PrecioCompra   decimal.Decimal `json:"precioCompra"`
	PrecioVenta    decimal.Decimal `json:"precioVenta"`
	PrecioFlete    decimal.Decimal `json:"precioFlete"`
	TotalCompra    decimal.Decimal `json:"totalCompra"`
	TotalVenta     decimal.Decimal `json:"totalVenta"`
	TotalFlete     decimal.Decimal `json:"totalFlete"`
	MontoConsignar decimal.Decimal `json:"montoConsignar"`
	Ganancia       decimal.Decimal `json:"ganancia"`
	PagaFlete      PagaFlete       `json:"pagaFlete"`
	Comprobante    *string         `json:"comprobante,omitempty"`
	Oculto         bool            `json:"oculto"`
	Estado         Estado          `json:"estado"`
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`
}

// RecalcularTotales derives the money totals from weight and unit prices.
// MontoConsignar is what the buyer deposits: total sale minus the freight the
// buyer settles directly with the trucker when PagaFlete is comprador.
// Ganancia subtracts freight only when the company carries it.
func (v *Viaje) RecalcularTotales() {
	v.TotalCompra = v.Peso.Mul(v.PrecioCompra)
	v.TotalVenta = v.Peso.Mul(v.PrecioVenta)
	v.TotalFlete = v.Peso.Mul(v.PrecioFlete)

	v.MontoConsignar = v.TotalVenta
	v.Ganancia = v.TotalVenta.Sub(v.TotalCompra)
	switch v.PagaFlete {
	case FleteComprador:
		v.MontoConsignar = v.TotalVenta.Sub(v.TotalFlete)
	case FleteEmpresa:
		v.Ganancia = v.Ganancia.Sub(v.TotalFlete)
	}
}

// Completado reports whether the trip counts toward balances: the descargue
// happened and the state moved to completado.
func (v Viaje) Completado() bool {
	return v.Estado == EstadoCompletado && v.FechaDescargue != nil
}
