package pg

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dropDatabas3/quicklendar/internal/domain/repository"
)

type providerTokenRepo struct{ pool *pgxpool.Pool }

const tokenCols = `id, account_id, provider, provider_id, access_token, refresh_token, expires_at, created_at, updated_at`

func scanToken(row pgx.Row) (*repository.ProviderToken, error) {
	var t repository.ProviderToken
	err := row.Scan(
		&t.ID, &t.AccountID, &t.Provider, &t.ProviderID,
		&t.AccessToken, &t.RefreshToken, &t.ExpiresAt,
		&t.CreatedAt, &t.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *providerTokenRepo) Create(ctx context.Context, input repository.CreateProviderTokenInput) (*repository.ProviderToken, error) {
	const query = `
		INSERT INTO oauth_token (account_id, provider, provider_id, access_token, refresh_token, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + tokenCols

	tok, err := scanToken(r.pool.QueryRow(ctx, query,
		input.AccountID, input.Provider, input.ProviderID,
		input.AccessToken, input.RefreshToken, input.ExpiresAt,
	))
	if isUniqueViolation(err) {
		return nil, repository.ErrConflict
	}
	if err != nil {
		return nil, fmt.Errorf("pg: create oauth token: %w", err)
	}
	return tok, nil
}

func (r *providerTokenRepo) GetByProvider(ctx context.Context, provider, providerID string) (*repository.ProviderToken, error) {
	const query = `SELECT ` + tokenCols + ` FROM oauth_token WHERE provider = $1 AND provider_id = $2`
	return scanToken(r.pool.QueryRow(ctx, query, provider, providerID))
}

func (r *providerTokenRepo) GetByAccountAndProvider(ctx context.Context, accountID, provider string) (*repository.ProviderToken, error) {
	const query = `SELECT ` + tokenCols + ` FROM oauth_token WHERE account_id = $1 AND provider = $2`
	return scanToken(r.pool.QueryRow(ctx, query, accountID, provider))
}

func (r *providerTokenRepo) ListByAccount(ctx context.Context, accountID string) ([]repository.ProviderToken, error) {
	const query = `SELECT ` + tokenCols + ` FROM oauth_token WHERE account_id = $1 ORDER BY created_at`
	rows, err := r.pool.Query(ctx, query, accountID)
	if err != nil {
		return nil, fmt.Errorf("pg: list oauth tokens: %w", err)
	}
	defer rows.Close()

	var toks []repository.ProviderToken
	for rows.Next() {
		var t repository.ProviderToken
		if err := rows.Scan(
			&t.ID, &t.AccountID, &t.Provider, &t.ProviderID,
			&t.AccessToken, &t.RefreshToken, &t.ExpiresAt,
			&t.CreatedAt, &t.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("pg: scan oauth token: %w", err)
		}
		toks = append(toks, t)
	}
	return toks, rows.Err()
}

func (r *providerTokenRepo) UpdateValues(ctx context.Context, id string, values repository.UpdateProviderTokenValues) error {
	const query = `
		UPDATE oauth_token
		SET access_token = $2, refresh_token = $3, expires_at = $4, updated_at = NOW()
		WHERE id = $1
	`
	tag, err := r.pool.Exec(ctx, query, id, values.AccessToken, values.RefreshToken, values.ExpiresAt)
	if err != nil {
		return fmt.Errorf("pg: update oauth token: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *providerTokenRepo) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM oauth_token WHERE id = $1`
	tag, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("pg: delete oauth token: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}
