package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/dropDatabas3/quicklendar/internal/domain/repository"
	"github.com/dropDatabas3/quicklendar/internal/oauth"
	"github.com/dropDatabas3/quicklendar/internal/observability/logger"
)

// Linker resuelve una identidad federada contra el storage local.
//
// La join key es (provider, provider_id): un usuario federado que vuelve se
// reconoce por ella aunque haya cambiado el email en el proveedor. Cuando la
// identidad es nueva se busca o crea la cuenta por email y se inserta el
// token del grant.
type Linker struct {
	Accounts repository.AccountRepository
	Tokens   repository.ProviderTokenRepository

	// RefreshTokenValues pisa access/refresh/expiry del token guardado en
	// cada login repetido. Apagado, el grant guardado queda congelado en el
	// del primer login.
	RefreshTokenValues bool
}

// Resolve busca o crea la cuenta y el token federado para la identidad dada.
// Retorna siempre la cuenta dueña de la federación.
func (l *Linker) Resolve(ctx context.Context, id *oauth.Identity, grant *oauth.Grant) (*repository.Account, error) {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("auth.linker"),
		logger.Provider(id.Provider),
	)

	tok, err := l.Tokens.GetByProvider(ctx, id.Provider, id.ProviderID)
	switch {
	case err == nil:
		// Federación conocida: login repetido
		if l.RefreshTokenValues {
			if err := l.Tokens.UpdateValues(ctx, tok.ID, repository.UpdateProviderTokenValues{
				AccessToken:  grant.AccessToken,
				RefreshToken: nilIfEmpty(grant.RefreshToken),
				ExpiresAt:    grant.ExpiresAt,
			}); err != nil {
				return nil, fmt.Errorf("refresh token values: %w", err)
			}
		}
		acc, err := l.Accounts.GetByID(ctx, tok.AccountID)
		if err != nil {
			return nil, fmt.Errorf("load linked account: %w", err)
		}
		return acc, nil

	case errors.Is(err, repository.ErrNotFound):
		// Primer login de esta federación
		acc, err := l.resolveAccount(ctx, id)
		if err != nil {
			return nil, err
		}
		_, err = l.Tokens.Create(ctx, repository.CreateProviderTokenInput{
			AccountID:    acc.ID,
			Provider:     id.Provider,
			ProviderID:   id.ProviderID,
			AccessToken:  grant.AccessToken,
			RefreshToken: nilIfEmpty(grant.RefreshToken),
			ExpiresAt:    grant.ExpiresAt,
		})
		if errors.Is(err, repository.ErrConflict) {
			// Otro login concurrente ganó la carrera: la federación ya
			// existe, resolver de nuevo por la join key.
			log.Debug("concurrent first login, re-resolving")
			won, err := l.Tokens.GetByProvider(ctx, id.Provider, id.ProviderID)
			if err != nil {
				return nil, fmt.Errorf("re-resolve after conflict: %w", err)
			}
			return l.Accounts.GetByID(ctx, won.AccountID)
		}
		if err != nil {
			return nil, fmt.Errorf("create provider token: %w", err)
		}
		log.Info("federation linked", logger.UserID(acc.ID))
		return acc, nil

	default:
		return nil, fmt.Errorf("lookup federation: %w", err)
	}
}

// resolveAccount busca la cuenta por email o la crea como cuenta OAUTH.
func (l *Linker) resolveAccount(ctx context.Context, id *oauth.Identity) (*repository.Account, error) {
	acc, err := l.Accounts.GetByEmail(ctx, id.Email)
	if err == nil {
		return acc, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("lookup account by email: %w", err)
	}

	acc, err = l.Accounts.Create(ctx, repository.CreateAccountInput{
		Name:    id.Name,
		Email:   id.Email,
		Phone:   nilIfEmpty(id.Phone),
		Kind:    repository.KindOAuth,
		Enabled: true,
	})
	if errors.Is(err, repository.ErrConflict) {
		// Carrera sobre el email: alguien la creó primero
		return l.Accounts.GetByEmail(ctx, id.Email)
	}
	if err != nil {
		return nil, fmt.Errorf("create account: %w", err)
	}
	return acc, nil
}

// Unlink revoca el grant con el proveedor y borra la federación.
// La revocación remota va primero: si falla, el estado local queda intacto
// y el usuario puede reintentar.
func (l *Linker) Unlink(ctx context.Context, p oauth.Provider, accountID string, keepAccount bool) error {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("auth.linker"),
		logger.Provider(p.Name()),
		logger.UserID(accountID),
	)

	tok, err := l.Tokens.GetByAccountAndProvider(ctx, accountID, p.Name())
	if err != nil {
		return err
	}

	refresh := ""
	if tok.RefreshToken != nil {
		refresh = *tok.RefreshToken
	}
	if err := p.Revoke(ctx, tok.AccessToken, refresh); err != nil {
		log.Warn("provider revocation failed, keeping local state", logger.Err(err))
		return err
	}

	if err := l.Tokens.Delete(ctx, tok.ID); err != nil && !errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("delete provider token: %w", err)
	}
	if !keepAccount {
		if err := l.Accounts.Delete(ctx, accountID); err != nil && !errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("delete account: %w", err)
		}
	}
	log.Info("federation unlinked", logger.Bool("account_kept", keepAccount))
	return nil
}

func nilIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
