// Package transacciones manages directed money movements between
// counterparties, including the pending-request flow and soft-hide.
package transacciones

import (
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rodmar-transportes/rodmar-backend/internal/socios"
)

// Estado enumerates transaction states. Pendiente marks an unconfirmed
// request that is excluded from all balance math.
type Estado string

const (
	EstadoNormal    Estado = "normal"
	EstadoPendiente Estado = "pendiente"
)

// Parte identifies one end of a movement. ID stays an untyped string at the
// transfer boundary: old records carry slugs and stringified numbers.
type Parte struct {
	Tipo socios.PartyType `json:"tipo"`
	ID   string           `json:"id"`
}

// NormalizaID canonicalises a party id for comparison. Numeric ids are
// re-rendered to shed leading zeros and whitespace.
func NormalizaID(id string) string {
	id = strings.TrimSpace(id)
	if n, err := strconv.ParseInt(id, 10, 64); err == nil {
		return strconv.FormatInt(n, 10)
	}
	return strings.ToLower(id)
}

// Es reports whether the parte references the given counterparty.
func (p Parte) Es(tipo socios.PartyType, id string) bool {
	return p.Tipo == tipo && NormalizaID(p.ID) == NormalizaID(id)
}

// Transaccion is a directed money movement.
type Transaccion struct {
	ID          int64           `json:"id"`
	Origen      Parte           `json:"origen"`
	Destino     Parte           `json:"destino"`
	Monto       decimal.Decimal `json:"monto"`
	Fecha       time.Time       `json:"fecha"`
	MetodoPago  string          `json:"metodoPago"`
	Concepto    string          `json:"concepto"`
	Comprobante *string         `json:"comprobante,omitempty"`
	Comentario  *string         `json:"comentario,omitempty"`
	Oculto      bool            `json:"oculto"`
	Estado      Estado          `json:"estado"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// Pendiente reports whether the transaction is an unconfirmed request.
func (t Transaccion) Pendiente() bool {
	return t.Estado == EstadoPendiente
}
