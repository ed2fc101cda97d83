package socios

import (
	"strconv"
	"strings"
)

// Slugify derives the URL slug form of a cuenta name: lowercased, accents
// stripped, spaces collapsed to hyphens.
func Slugify(nombre string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(nombre)) {
		switch r {
		case 'á':
			b.WriteRune('a')
		case 'é':
			b.WriteRune('e')
		case 'í':
			b.WriteRune('i')
		case 'ó':
			b.WriteRune('o')
		case 'ú', 'ü':
			b.WriteRune('u')
		case 'ñ':
			b.WriteRune('n')
		case ' ', '_':
			b.WriteRune('-')
		default:
			if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-' {
				b.WriteRune(r)
			}
		}
	}
	return strings.Trim(b.String(), "-")
}

// ResolveCuenta finds the cuenta a reference string points at. Older records
// address cuentas by slug or even by display name, so the match precedence is
// fixed: numeric id, then codigo, then legacy slug, then name-derived slug.
func ResolveCuenta(cuentas []Cuenta, ref string) (Cuenta, bool) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return Cuenta{}, false
	}

	if id, err := strconv.ParseInt(ref, 10, 64); err == nil {
		for _, c := range cuentas {
			if c.ID == id {
				return c, true
			}
		}
	}

	lowered := strings.ToLower(ref)
	for _, c := range cuentas {
		if strings.EqualFold(c.Codigo, lowered) {
			return c, true
		}
	}

	for _, c := range cuentas {
		for _, slug := range c.SlugsLegados {
			if strings.EqualFold(slug, lowered) {
				return c, true
			}
		}
	}

	refSlug := Slugify(ref)
	for _, c := range cuentas {
		if Slugify(c.Nombre) == refSlug {
			return c, true
		}
	}

	return Cuenta{}, false
}

// CuentaRefs returns every reference string known to address the cuenta,
// numeric id included. Used when matching stored transaction party ids.
func CuentaRefs(c Cuenta) []string {
	refs := []string{strconv.FormatInt(c.ID, 10)}
	if c.Codigo != "" {
		refs = append(refs, c.Codigo)
	}
	refs = append(refs, c.SlugsLegados...)
	if slug := Slugify(c.Nombre); slug != "" {
		refs = append(refs, slug)
	}
	return refs
}
