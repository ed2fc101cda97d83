package socios

import (
	"sort"
	"strconv"
)

// NombreDesconocido is the fallback label when a referenced party cannot be
// found in the loaded reference lists. Rendering never rejects a transaction
// over a dangling reference.
const NombreDesconocido = "Desconocido"

// Directory resolves (type, id) pairs to display names. Party ids arrive as
// untyped strings at the transfer boundary, so lookups normalise both sides.
type Directory struct {
	minas       map[string]string
	compradores map[string]string
	volqueteros map[string]string
	terceros    map[string]string
	cuentas     []Cuenta
}

// NewDirectory indexes the reference lists for label resolution.
func NewDirectory(minas []Mina, compradores []Comprador, volqueteros []Volquetero, terceros []Tercero, cuentas []Cuenta) *Directory {
	d := &Directory{
		minas:       make(map[string]string, len(minas)),
		compradores: make(map[string]string, len(compradores)),
		volqueteros: make(map[string]string, len(volqueteros)),
		terceros:    make(map[string]string, len(terceros)),
		cuentas:     cuentas,
	}
	for _, m := range minas {
		d.minas[strconv.FormatInt(m.ID, 10)] = m.Nombre
	}
	for _, c := range compradores {
		d.compradores[strconv.FormatInt(c.ID, 10)] = c.Nombre
	}
	for _, v := range volqueteros {
		d.volqueteros[strconv.FormatInt(v.ID, 10)] = v.Nombre
	}
	for _, t := range terceros {
		d.terceros[strconv.FormatInt(t.ID, 10)] = t.Nombre
	}
	return d
}

// Nombre returns the display name for a party, falling back to Desconocido.
func (d *Directory) Nombre(tipo PartyType, id string) string {
	if d == nil {
		return NombreDesconocido
	}
	switch tipo {
	case PartyMina:
		if n, ok := d.minas[id]; ok {
			return n
		}
	case PartyComprador:
		if n, ok := d.compradores[id]; ok {
			return n
		}
	case PartyVolquetero:
		if n, ok := d.volqueteros[id]; ok {
			return n
		}
	case PartyTercero:
		if n, ok := d.terceros[id]; ok {
			return n
		}
	case PartyCuenta, PartyBanco:
		if c, ok := ResolveCuenta(d.cuentas, id); ok {
			return c.Nombre
		}
	}
	return NombreDesconocido
}

// Ref is one entry of a reference list, used when a caller needs to walk
// every registered party of a type.
type Ref struct {
	ID     string
	Nombre string
}

// Padron lists every registered party of a type, sorted by numeric id.
// Cuentas appear under both the cuenta and banco types.
func (d *Directory) Padron(tipo PartyType) []Ref {
	if d == nil {
		return nil
	}
	var out []Ref
	switch tipo {
	case PartyMina:
		out = refsFromMap(d.minas)
	case PartyComprador:
		out = refsFromMap(d.compradores)
	case PartyVolquetero:
		out = refsFromMap(d.volqueteros)
	case PartyTercero:
		out = refsFromMap(d.terceros)
	case PartyCuenta, PartyBanco:
		out = make([]Ref, 0, len(d.cuentas))
		for _, c := range d.cuentas {
			out = append(out, Ref{ID: strconv.FormatInt(c.ID, 10), Nombre: c.Nombre})
		}
	}
	return out
}

func refsFromMap(m map[string]string) []Ref {
	out := make([]Ref, 0, len(m))
	for id, nombre := range m {
		out = append(out, Ref{ID: id, Nombre: nombre})
	}
	sort.Slice(out, func(i, j int) bool {
		a, errA := strconv.ParseInt(out[i].ID, 10, 64)
		b, errB := strconv.ParseInt(out[j].ID, 10, 64)
		if errA == nil && errB == nil {
			return a < b
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// Cuentas exposes the loaded cuenta records for scope matching.
func (d *Directory) Cuentas() []Cuenta {
	if d == nil {
		return nil
	}
	return d.cuentas
}
