// Package oauth implements the federated-login provider layer: authorize-URL
// building, authorization-code exchange, profile fetch and token revocation
// for each supported provider, plus normalization of provider profiles into a
// provider-agnostic identity.
package oauth

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"
)

var (
	// ErrUnsupportedProvider indica un nombre de proveedor desconocido.
	ErrUnsupportedProvider = errors.New("unsupported oauth provider")

	// ErrExchange indica que el intercambio code→token falló (transporte o
	// respuesta no exitosa). No se reintenta: un intento, propagar.
	ErrExchange = errors.New("provider code exchange failed")

	// ErrRevocation indica que el revoke del lado del proveedor falló.
	// El caller NO debe borrar estado local: la operación queda reintentable.
	ErrRevocation = errors.New("provider token revocation failed")

	// ErrMalformedProfile indica que el perfil del proveedor no trae los
	// campos mínimos (subject id y email).
	ErrMalformedProfile = errors.New("malformed provider profile")
)

// Grant es el resultado del intercambio de código.
type Grant struct {
	AccessToken  string
	RefreshToken string     // vacío si el proveedor no lo emitió
	ExpiresAt    *time.Time // nil si el proveedor no informó expiry
}

// Identity es la forma canónica, agnóstica del proveedor, extraída del perfil.
// Sólo Provider, ProviderID y Email están garantizados; Name y Phone son
// best-effort.
type Identity struct {
	Provider   string
	ProviderID string
	Email      string
	Name       string
	Phone      string
}

// Provider es un proveedor de identidad federada.
type Provider interface {
	Name() string

	// AuthorizeURL construye la URL de autorización del proveedor.
	AuthorizeURL(state string) string

	// ExchangeCode intercambia el authorization code por tokens.
	// Un solo intento; falla con ErrExchange.
	ExchangeCode(ctx context.Context, code, state string) (*Grant, error)

	// FetchProfile obtiene el payload crudo de user-info con bearer token.
	FetchProfile(ctx context.Context, accessToken string) (map[string]any, error)

	// Revoke invalida el access token en el proveedor y, si corresponde,
	// también el refresh token. Todo-o-nada: cualquier fallo es ErrRevocation.
	Revoke(ctx context.Context, accessToken, refreshToken string) error
}

// Registry resuelve proveedores por nombre (case-insensitive).
type Registry struct {
	providers map[string]Provider
}

func NewRegistry(ps ...Provider) *Registry {
	r := &Registry{providers: make(map[string]Provider, len(ps))}
	for _, p := range ps {
		r.providers[strings.ToLower(p.Name())] = p
	}
	return r
}

// Get retorna el proveedor o ErrUnsupportedProvider.
func (r *Registry) Get(name string) (Provider, error) {
	p, ok := r.providers[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, ErrUnsupportedProvider
	}
	return p, nil
}

// Names retorna los nombres registrados, ordenados.
func (r *Registry) Names() []string {
	out := make([]string, 0, len(r.providers))
	for n := range r.providers {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}
