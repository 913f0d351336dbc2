// Package auth implementa el núcleo de autenticación: registro y login
// local, login federado (link de cuentas) y desvinculación de proveedores.
package auth

import (
	"context"
)

// PrincipalKind distingue cómo se autenticó el request actual.
type PrincipalKind string

const (
	// PrincipalLocal: credencial email+password.
	PrincipalLocal PrincipalKind = "LOCAL"
	// PrincipalFederated: login vía proveedor OAuth.
	PrincipalFederated PrincipalKind = "FEDERATED"
)

// Principal es la identidad autenticada de un request.
// Provider solo viene poblado cuando Kind es PrincipalFederated.
type Principal struct {
	AccountID string
	Email     string
	Roles     []string
	Kind      PrincipalKind
	Provider  string
}

// HasRole verifica pertenencia a un rol.
func (p *Principal) HasRole(role string) bool {
	for _, r := range p.Roles {
		if r == role {
			return true
		}
	}
	return false
}

type ctxKey struct{}

// WithPrincipal adjunta el principal al contexto.
func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, ctxKey{}, p)
}

// PrincipalFrom extrae el principal del contexto.
// Retorna (nil, false) en requests anónimos.
func PrincipalFrom(ctx context.Context) (*Principal, bool) {
	p, ok := ctx.Value(ctxKey{}).(*Principal)
	if !ok || p == nil {
		return nil, false
	}
	return p, true
}
