package repository

import (
	"context"
	"time"
)

// ProviderToken es el grant de un proveedor federado ligado a una cuenta.
// El par (provider, provider_id) es único globalmente: es la join key para
// reconocer a un usuario federado que vuelve, aunque cambie su email en el
// proveedor.
type ProviderToken struct {
	ID           string
	AccountID    string
	Provider     string // "google" | "naver"
	ProviderID   string // subject id asignado por el proveedor
	AccessToken  string
	RefreshToken *string
	ExpiresAt    *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// CreateProviderTokenInput contiene los datos para crear un ProviderToken.
type CreateProviderTokenInput struct {
	AccountID    string
	Provider     string
	ProviderID   string
	AccessToken  string
	RefreshToken *string
	ExpiresAt    *time.Time
}

// UpdateProviderTokenValues pisa los valores del grant (refresh-on-login).
type UpdateProviderTokenValues struct {
	AccessToken  string
	RefreshToken *string
	ExpiresAt    *time.Time
}

// ProviderTokenRepository define operaciones sobre tokens federados.
type ProviderTokenRepository interface {
	// Create inserta un token nuevo.
	// Retorna ErrConflict si ya existe un token para (provider, providerID):
	// dos primeros logins concurrentes deben resolverse re-buscando, no fallar.
	Create(ctx context.Context, input CreateProviderTokenInput) (*ProviderToken, error)

	// GetByProvider busca por la join key (provider, providerID).
	// Retorna ErrNotFound si no existe.
	GetByProvider(ctx context.Context, provider, providerID string) (*ProviderToken, error)

	// GetByAccountAndProvider busca la federación de una cuenta con un proveedor.
	// A lo sumo hay una por (cuenta, proveedor). Retorna ErrNotFound si no existe.
	GetByAccountAndProvider(ctx context.Context, accountID, provider string) (*ProviderToken, error)

	// ListByAccount lista las federaciones de una cuenta.
	ListByAccount(ctx context.Context, accountID string) ([]ProviderToken, error)

	// UpdateValues actualiza access/refresh/expiry de un token existente.
	UpdateValues(ctx context.Context, id string, values UpdateProviderTokenValues) error

	// Delete elimina un token por ID. Retorna ErrNotFound si no existe.
	Delete(ctx context.Context, id string) error
}
