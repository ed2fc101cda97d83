package transacciones

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/rodmar-transportes/rodmar-backend/internal/shared"
	"github.com/rodmar-transportes/rodmar-backend/internal/socios"
)

// CrearTransaccionRequest creates a movement. When Pendiente is true the
// request may omit monto and metodoPago; completing it later fills them in.
type CrearTransaccionRequest struct {
	OrigenTipo  string           `json:"origenTipo" validate:"required"`
	OrigenID    string           `json:"origenId" validate:"required"`
	DestinoTipo string           `json:"destinoTipo" validate:"required"`
	DestinoID   string           `json:"destinoId" validate:"required"`
	Monto       *decimal.Decimal `json:"monto,omitempty"`
	Fecha       time.Time        `json:"fecha" validate:"required"`
	MetodoPago  string           `json:"metodoPago"`
	Concepto    string           `json:"concepto"`
	Comprobante *string          `json:"comprobante,omitempty"`
	Comentario  *string          `json:"comentario,omitempty"`
	Pendiente   bool             `json:"pendiente"`
}

// ActualizarTransaccionRequest edits a movement. Nil fields are untouched.
type ActualizarTransaccionRequest struct {
	OrigenTipo  *string          `json:"origenTipo,omitempty"`
	OrigenID    *string          `json:"origenId,omitempty"`
	DestinoTipo *string          `json:"destinoTipo,omitempty"`
	DestinoID   *string          `json:"destinoId,omitempty"`
	Monto       *decimal.Decimal `json:"monto,omitempty"`
	Fecha       *time.Time       `json:"fecha,omitempty"`
	MetodoPago  *string          `json:"metodoPago,omitempty"`
	Concepto    *string          `json:"concepto,omitempty"`
	Comprobante *string          `json:"comprobante,omitempty"`
	Comentario  *string          `json:"comentario,omitempty"`
}

// CompletarRequest confirms a pending request, supplying whatever was missing.
type CompletarRequest struct {
	Monto      *decimal.Decimal `json:"monto,omitempty"`
	MetodoPago *string          `json:"metodoPago,omitempty"`
	Fecha      *time.Time       `json:"fecha,omitempty"`
}

// ListTransaccionesRequest filters the paginated listing.
type ListTransaccionesRequest struct {
	Estado        *Estado
	Socio         *Parte   // matches origen OR destino
	CuentaRefs    []string // every reference string of one cuenta
	IncludeHidden bool
	Page          int
	PerPage       int
}

// ListTransaccionesResponse carries the page plus the hidden-count badge.
type ListTransaccionesResponse struct {
	Transacciones []Transaccion     `json:"transacciones"`
	Pagination    shared.Pagination `json:"pagination"`
	HiddenCount   int               `json:"hiddenCount"`
}

// SocioRef is a parsed socio path reference.
type SocioRef struct {
	Tipo socios.PartyType
	ID   string
}
