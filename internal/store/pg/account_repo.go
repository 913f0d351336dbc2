package pg

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dropDatabas3/quicklendar/internal/domain/repository"
)

type accountRepo struct{ pool *pgxpool.Pool }

const accountCols = `id, name, email, password_hash, phone, kind, enabled, created_at, updated_at`

func scanAccount(row pgx.Row) (*repository.Account, error) {
	var a repository.Account
	err := row.Scan(
		&a.ID, &a.Name, &a.Email, &a.PasswordHash, &a.Phone,
		&a.Kind, &a.Enabled, &a.CreatedAt, &a.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *accountRepo) Create(ctx context.Context, input repository.CreateAccountInput) (*repository.Account, error) {
	const query = `
		INSERT INTO account (name, email, password_hash, phone, kind, enabled)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + accountCols

	acc, err := scanAccount(r.pool.QueryRow(ctx, query,
		input.Name, input.Email, input.PasswordHash, input.Phone, input.Kind, input.Enabled,
	))
	if isUniqueViolation(err) {
		return nil, repository.ErrConflict
	}
	if err != nil {
		return nil, fmt.Errorf("pg: create account: %w", err)
	}
	return acc, nil
}

func (r *accountRepo) GetByID(ctx context.Context, id string) (*repository.Account, error) {
	const query = `SELECT ` + accountCols + ` FROM account WHERE id = $1`
	return scanAccount(r.pool.QueryRow(ctx, query, id))
}

func (r *accountRepo) GetByEmail(ctx context.Context, email string) (*repository.Account, error) {
	const query = `SELECT ` + accountCols + ` FROM account WHERE email = $1`
	return scanAccount(r.pool.QueryRow(ctx, query, email))
}

func (r *accountRepo) Update(ctx context.Context, id string, input repository.UpdateAccountInput) error {
	setClauses := []string{"updated_at = NOW()"}
	args := []any{id}
	argIdx := 2

	if input.Name != nil {
		setClauses = append(setClauses, fmt.Sprintf("name = $%d", argIdx))
		args = append(args, *input.Name)
		argIdx++
	}
	if input.Phone != nil {
		setClauses = append(setClauses, fmt.Sprintf("phone = $%d", argIdx))
		args = append(args, nullIfEmpty(*input.Phone))
		argIdx++
	}
	if input.PasswordHash != nil {
		setClauses = append(setClauses, fmt.Sprintf("password_hash = $%d", argIdx))
		args = append(args, *input.PasswordHash)
		argIdx++
	}

	query := fmt.Sprintf("UPDATE account SET %s WHERE id = $1", strings.Join(setClauses, ", "))
	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("pg: update account: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *accountRepo) Delete(ctx context.Context, id string) error {
	// Los tokens federados caen por FK ON DELETE CASCADE
	const query = `DELETE FROM account WHERE id = $1`
	tag, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("pg: delete account: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *accountRepo) List(ctx context.Context, filter repository.AccountFilter) ([]repository.Account, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	if limit > 200 {
		limit = 200
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	where := []string{}
	args := []any{}
	argIdx := 1

	if filter.Enabled != nil {
		where = append(where, fmt.Sprintf("enabled = $%d", argIdx))
		args = append(args, *filter.Enabled)
		argIdx++
	}
	if filter.Kind != nil {
		where = append(where, fmt.Sprintf("kind = $%d", argIdx))
		args = append(args, *filter.Kind)
		argIdx++
	}

	query := `SELECT ` + accountCols + ` FROM account`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", argIdx, argIdx+1)
	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("pg: list accounts: %w", err)
	}
	defer rows.Close()

	var accounts []repository.Account
	for rows.Next() {
		var a repository.Account
		if err := rows.Scan(
			&a.ID, &a.Name, &a.Email, &a.PasswordHash, &a.Phone,
			&a.Kind, &a.Enabled, &a.CreatedAt, &a.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("pg: scan account: %w", err)
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}
