// Package socios holds the counterparty reference records the ledger operates
// against: minas, compradores, volqueteros, terceros and the RodMar internal
// sub-accounts (cuentas).
package socios

import (
	"fmt"
	"strings"
	"time"
)

// PartyType enumerates the kinds of counterparties a transaction can reference.
type PartyType string

const (
	PartyMina       PartyType = "mina"
	PartyComprador  PartyType = "comprador"
	PartyVolquetero PartyType = "volquetero"
	PartyTercero    PartyType = "tercero"
	PartyCuenta     PartyType = "cuenta"
	PartyBanco      PartyType = "banco"
)

// Well-known cuenta slugs. The two merchant sub-ledgers predate the cuentas
// table and older transactions reference them by slug instead of numeric id.
const (
	CuentaPrincipalSlug   = "rodmar"
	CuentaFerreteriaSlug  = "ferreteria"
	CuentaCombustibleSlug = "combustible"
)

// ParsePartyType normalises and validates a party type string.
func ParsePartyType(s string) (PartyType, error) {
	switch t := PartyType(strings.ToLower(strings.TrimSpace(s))); t {
	case PartyMina, PartyComprador, PartyVolquetero, PartyTercero, PartyCuenta, PartyBanco:
		return t, nil
	default:
		return "", fmt.Errorf("socios: unknown party type %q", s)
	}
}

// Display returns the capitalised Spanish label used in generated concepts.
func (t PartyType) Display() string {
	switch t {
	case PartyMina:
		return "Mina"
	case PartyComprador:
		return "Comprador"
	case PartyVolquetero:
		return "Volquetero"
	case PartyTercero:
		return "Tercero"
	case PartyCuenta:
		return "Cuenta"
	case PartyBanco:
		return "Banco"
	default:
		return "Desconocido"
	}
}

// Mina is an origin mine reference record.
type Mina struct {
	ID        int64     `json:"id"`
	Nombre    string    `json:"nombre"`
	CreatedAt time.Time `json:"createdAt"`
}

// Comprador is a destination buyer reference record.
type Comprador struct {
	ID        int64     `json:"id"`
	Nombre    string    `json:"nombre"`
	CreatedAt time.Time `json:"createdAt"`
}

// Volquetero is a trucker reference record.
type Volquetero struct {
	ID        int64     `json:"id"`
	Nombre    string    `json:"nombre"`
	Placa     *string   `json:"placa,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// Tercero is a third-party reference record.
type Tercero struct {
	ID        int64     `json:"id"`
	Nombre    string    `json:"nombre"`
	CreatedAt time.Time `json:"createdAt"`
}

// Cuenta is a RodMar internal sub-account. Codigo is the short accounting
// code; SlugsLegados carries the string slugs older transaction rows used
// before cuentas got numeric ids.
type Cuenta struct {
	ID           int64     `json:"id"`
	Nombre       string    `json:"nombre"`
	Codigo       string    `json:"codigo"`
	SlugsLegados []string  `json:"slugsLegados,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}
