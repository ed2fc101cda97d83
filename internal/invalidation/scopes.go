package invalidation

import (
	"sort"
	"strings"
)

// Scope name helpers. A scope is a coarse slice of the data set whose cached
// views must be recomputed together after a mutation.
const (
	ScopeViajes        = "viajes"
	ScopeTransacciones = "transacciones"
	ScopePendientes    = "transacciones:pendientes"
)

// ScopeSocio names the per-counterparty detail scope.
func ScopeSocio(tipo, id string) string {
	return "socio:" + strings.ToLower(tipo) + ":" + id
}

// ScopeCuenta names the internal sub-account scope, keyed by slug.
func ScopeCuenta(slug string) string {
	return "cuenta:" + strings.ToLower(slug)
}

// ScopeSaldos names the aggregate balance bucket for a counterparty type.
func ScopeSaldos(tipo string) string {
	return "saldos:" + strings.ToLower(tipo)
}

// Dedupe returns the scope set sorted and without duplicates. Mutations that
// touch the same counterparty before and after must bump it once.
func Dedupe(scopes []string) []string {
	seen := make(map[string]struct{}, len(scopes))
	out := make([]string, 0, len(scopes))
	for _, s := range scopes {
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}
