package transacciones

import (
	"fmt"

	"github.com/rodmar-transportes/rodmar-backend/internal/socios"
)

// Labeler resolves party display names for concept generation.
type Labeler interface {
	Nombre(tipo socios.PartyType, id string) string
}

// GenerarConcepto synthesises the human-readable concept stored with a
// transaction: "{metodo} de {TipoOrigen} ({NombreOrigen}) a {TipoDestino}
// ({NombreDestino})". Unresolvable parties fall back to Desconocido; the
// string is stored verbatim and never regenerated afterwards.
func GenerarConcepto(metodoPago string, origen, destino Parte, labels Labeler) string {
	return fmt.Sprintf("%s de %s (%s) a %s (%s)",
		metodoPago,
		origen.Tipo.Display(), nombreDe(labels, origen),
		destino.Tipo.Display(), nombreDe(labels, destino),
	)
}

func nombreDe(labels Labeler, p Parte) string {
	if labels == nil {
		return socios.NombreDesconocido
	}
	return labels.Nombre(p.Tipo, p.ID)
}
