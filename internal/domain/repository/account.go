package repository

import (
	"context"
	"time"
)

// AccountKind distingue cuentas creadas con password de cuentas creadas
// por un primer login federado.
type AccountKind string

const (
	KindLocal AccountKind = "LOCAL"
	KindOAuth AccountKind = "OAUTH"
)

// Account representa un usuario del sistema.
// El email es único globalmente, sin importar el kind.
type Account struct {
	ID           string
	Name         string
	Email        string
	PasswordHash *string // nil para cuentas puramente federadas
	Phone        *string
	Kind         AccountKind
	Enabled      bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// HasLocalCredential indica si la cuenta puede autenticarse con password.
func (a *Account) HasLocalCredential() bool {
	return a.PasswordHash != nil && *a.PasswordHash != ""
}

// CreateAccountInput contiene los datos para crear una cuenta.
type CreateAccountInput struct {
	Name         string
	Email        string
	PasswordHash *string
	Phone        *string
	Kind         AccountKind
	Enabled      bool
}

// UpdateAccountInput contiene los campos actualizables de una cuenta.
// Los punteros nil se ignoran.
type UpdateAccountInput struct {
	Name         *string
	Phone        *string
	PasswordHash *string
}

// AccountFilter opciones para listados administrativos.
type AccountFilter struct {
	Enabled *bool
	Kind    *AccountKind
	Limit   int // default 50, max 200
	Offset  int
}

// AccountRepository define operaciones sobre cuentas.
type AccountRepository interface {
	// Create crea una cuenta nueva.
	// Retorna ErrConflict si el email ya existe.
	Create(ctx context.Context, input CreateAccountInput) (*Account, error)

	// GetByID busca una cuenta por ID. Retorna ErrNotFound si no existe.
	GetByID(ctx context.Context, id string) (*Account, error)

	// GetByEmail busca una cuenta por email. Retorna ErrNotFound si no existe.
	GetByEmail(ctx context.Context, email string) (*Account, error)

	// Update actualiza campos de una cuenta. Retorna ErrNotFound si no existe.
	Update(ctx context.Context, id string, input UpdateAccountInput) error

	// Delete elimina una cuenta por ID (y sus tokens federados en cascada).
	// Retorna ErrNotFound si no existe.
	Delete(ctx context.Context, id string) error

	// List lista cuentas con filtros administrativos.
	List(ctx context.Context, filter AccountFilter) ([]Account, error)
}
