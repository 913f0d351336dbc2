package oauth

import (
	"fmt"
	"strings"
)

// Normalize convierte el payload de user-info de un proveedor en una Identity
// canónica. Cada proveedor expone los atributos con otra forma: naver anida
// los campos reales bajo "response"; google los expone como claims top-level
// ("sub"/"email"/"name"). Name y Phone son best-effort: su ausencia es válida.
// El email sale canónico (lowercase, sin espacios): el linking de cuentas por
// email depende de que ambos caminos de login usen la misma key.
func Normalize(provider string, attrs map[string]any) (*Identity, error) {
	switch strings.ToLower(strings.TrimSpace(provider)) {
	case "naver":
		resp, _ := attrs["response"].(map[string]any)
		if resp == nil {
			return nil, fmt.Errorf("%w: naver payload sin objeto response", ErrMalformedProfile)
		}
		id := &Identity{
			Provider:   "naver",
			ProviderID: str(resp, "id"),
			Email:      canonicalEmail(str(resp, "email")),
			Name:       str(resp, "name"),
			Phone:      str(resp, "mobile"),
		}
		return id, id.validate()

	case "google":
		id := &Identity{
			Provider:   "google",
			ProviderID: str(attrs, "sub"),
			Email:      canonicalEmail(str(attrs, "email")),
			Name:       str(attrs, "name"),
		}
		return id, id.validate()

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedProvider, provider)
	}
}

func (i *Identity) validate() error {
	if i.ProviderID == "" {
		return fmt.Errorf("%w: falta subject id", ErrMalformedProfile)
	}
	if i.Email == "" {
		return fmt.Errorf("%w: falta email", ErrMalformedProfile)
	}
	return nil
}

func canonicalEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func str(m map[string]any, k string) string {
	s, _ := m[k].(string)
	return s
}
