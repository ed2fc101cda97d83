package viajes

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/rodmar-transportes/rodmar-backend/internal/shared"
)

// CrearViajeRequest registers the cargue leg of a trip.
type CrearViajeRequest struct {
	FechaCargue  time.Time       `json:"fechaCargue" validate:"required"`
	Conductor    string          `json:"conductor" validate:"required"`
	Placa        string          `json:"placa" validate:"required"`
	TipoVehiculo string          `json:"tipoVehiculo" validate:"required"`
	MinaID       int64           `json:"minaId" validate:"required,gt=0"`
	CompradorID  int64           `json:"compradorId" validate:"required,gt=0"`
	VolqueteroID int64           `json:"volqueteroId" validate:"required,gt=0"`
	Peso         decimal.Decimal `json:"peso" validate:"required"`
	PrecioCompra decimal.Decimal `json:"precioCompra" validate:"required"`
	PrecioFlete  decimal.Decimal `json:"precioFlete"`
	PagaFlete    PagaFlete       `json:"pagaFlete" validate:"required,oneof=empresa comprador"`
	Comprobante  *string         `json:"comprobante,omitempty"`
}

// ActualizarViajeRequest edits a trip. Setting FechaDescargue performs the
// descargue completion and requires the sale-side price.
type ActualizarViajeRequest struct {
	FechaCargue    *time.Time       `json:"fechaCargue,omitempty"`
	FechaDescargue *time.Time       `json:"fechaDescargue,omitempty"`
	Conductor      *string          `json:"conductor,omitempty"`
	Placa          *string          `json:"placa,omitempty"`
	TipoVehiculo   *string          `json:"tipoVehiculo,omitempty"`
	MinaID         *int64           `json:"minaId,omitempty" validate:"omitempty,gt=0"`
	CompradorID    *int64           `json:"compradorId,omitempty" validate:"omitempty,gt=0"`
	VolqueteroID   *int64           `json:"volqueteroId,omitempty" validate:"omitempty,gt=0"`
	Peso           *decimal.Decimal `json:"peso,omitempty"`
	PrecioCompra   *decimal.Decimal `json:"precioCompra,omitempty"`
	PrecioVenta    *decimal.Decimal `json:"precioVenta,omitempty"`
	PrecioFlete    *decimal.Decimal `json:"precioFlete,omitempty"`
	PagaFlete      *PagaFlete       `json:"pagaFlete,omitempty" validate:"omitempty,oneof=empresa comprador"`
	Comprobante    *string          `json:"comprobante,omitempty"`
}

// ListViajesRequest filters the paginated trip listing.
type ListViajesRequest struct {
	MinaID        *int64
	CompradorID   *int64
	VolqueteroID  *int64
	Estado        *Estado
	IncludeHidden bool
	Page          int
	PerPage       int
}

// ListViajesResponse is the paginated listing plus the hidden-count badge the
// UI renders without a second includeHidden fetch.
type ListViajesResponse struct {
	Viajes      []Viaje           `json:"viajes"`
	Pagination  shared.Pagination `json:"pagination"`
	HiddenCount int               `json:"hiddenCount"`
}

// RestaurarRequest limits a restore-all to one filter scope.
type RestaurarRequest struct {
	MinaID       *int64 `json:"minaId,omitempty"`
	CompradorID  *int64 `json:"compradorId,omitempty"`
	VolqueteroID *int64 `json:"volqueteroId,omitempty"`
}
