package saldos

import (
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/rodmar-transportes/rodmar-backend/internal/socios"
	"github.com/rodmar-transportes/rodmar-backend/internal/transacciones"
	"github.com/rodmar-transportes/rodmar-backend/internal/viajes"
)

// Balance is the derived monetary position of one counterparty.
type Balance struct {
	Tipo    socios.PartyType `json:"tipo"`
	ID      string           `json:"id"`
	Inflow  decimal.Decimal  `json:"inflow"`
	Outflow decimal.Decimal  `json:"outflow"`
	Net     decimal.Decimal  `json:"net"`
}

// Compute aggregates trips and transactions into a balance.
//
// Rules, all of them deliberate product behavior:
//   - trips count only once completed (descargue registered);
//   - pending transactions are unconfirmed requests and never count;
//   - hidden records still count; hiding is a display toggle and balances
//     must not move when rows are hidden or restored;
//   - a self-transfer counts as inflow only, the origen check runs first;
//   - party ids compare string-normalised because the transfer boundary
//     carries them untyped.
func Compute(tipo socios.PartyType, id string, trips []viajes.Viaje, movimientos []transacciones.Transaccion, policy SignPolicy) Balance {
	b := Balance{Tipo: tipo, ID: transacciones.NormalizaID(id), Inflow: decimal.Zero, Outflow: decimal.Zero}
	signs := policy.For(tipo)

	for _, v := range trips {
		if !v.Completado() {
			continue
		}
		monto, ok := tripAmount(tipo, b.ID, v)
		if !ok {
			continue
		}
		b.Inflow = b.Inflow.Add(monto)
	}

	for _, t := range movimientos {
		if t.Pendiente() {
			continue
		}
		switch {
		case t.Origen.Es(tipo, b.ID):
			b.apply(signs.Origen, t.Monto)
		case t.Destino.Es(tipo, b.ID):
			b.apply(signs.Destino, t.Monto)
		}
	}

	b.Net = b.Inflow.Sub(b.Outflow)
	return b
}

func (b *Balance) apply(sign int, monto decimal.Decimal) {
	if sign >= 0 {
		b.Inflow = b.Inflow.Add(monto)
	} else {
		b.Outflow = b.Outflow.Add(monto)
	}
}

// tripAmount picks the trip total a counterparty type accrues: the purchase
// side for the mine, the freight the company owes the trucker, and the
// deposit the buyer must consign.
func tripAmount(tipo socios.PartyType, id string, v viajes.Viaje) (decimal.Decimal, bool) {
	switch tipo {
	case socios.PartyMina:
		if strconv.FormatInt(v.MinaID, 10) == id {
			return v.TotalCompra, true
		}
	case socios.PartyVolquetero:
		if strconv.FormatInt(v.VolqueteroID, 10) == id && v.PagaFlete == viajes.FleteEmpresa {
			return v.TotalFlete, true
		}
	case socios.PartyComprador:
		if strconv.FormatInt(v.CompradorID, 10) == id {
			return v.MontoConsignar, true
		}
	}
	return decimal.Zero, false
}
