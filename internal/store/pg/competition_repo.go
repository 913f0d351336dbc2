package pg

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dropDatabas3/quicklendar/internal/domain/repository"
)

type competitionRepo struct{ pool *pgxpool.Pool }

// El contador de likes se deriva con un LEFT JOIN LATERAL barato por fila.
const competitionCols = `
	c.id, c.name, c.description, c.host, c.location, c.support, c.request_path,
	c.category, c.competition_type,
	c.start_date, c.end_date, c.request_start_date, c.request_end_date,
	l.likes, c.created_at, c.updated_at
`

const competitionFrom = `
	FROM competition c
	LEFT JOIN LATERAL (
		SELECT COUNT(*) AS likes FROM competition_like cl WHERE cl.competition_id = c.id
	) l ON true
`

func scanCompetition(row pgx.Row) (*repository.Competition, error) {
	var c repository.Competition
	err := row.Scan(
		&c.ID, &c.Name, &c.Description, &c.Host, &c.Location, &c.Support, &c.RequestPath,
		&c.Category, &c.CompetitionType,
		&c.StartDate, &c.EndDate, &c.RequestStartDate, &c.RequestEndDate,
		&c.Likes, &c.CreatedAt, &c.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *competitionRepo) Create(ctx context.Context, c *repository.Competition) (*repository.Competition, error) {
	const query = `
		INSERT INTO competition
			(name, description, host, location, support, request_path,
			 category, competition_type,
			 start_date, end_date, request_start_date, request_end_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id, created_at, updated_at
	`
	out := *c
	err := r.pool.QueryRow(ctx, query,
		c.Name, c.Description, c.Host, c.Location, c.Support, c.RequestPath,
		c.Category, c.CompetitionType,
		c.StartDate, c.EndDate, c.RequestStartDate, c.RequestEndDate,
	).Scan(&out.ID, &out.CreatedAt, &out.UpdatedAt)
	if isUniqueViolation(err) {
		return nil, repository.ErrConflict
	}
	if err != nil {
		return nil, fmt.Errorf("pg: create competition: %w", err)
	}
	return &out, nil
}

func (r *competitionRepo) GetByID(ctx context.Context, id string) (*repository.Competition, error) {
	query := `SELECT ` + competitionCols + competitionFrom + ` WHERE c.id = $1`
	return scanCompetition(r.pool.QueryRow(ctx, query, id))
}

func (r *competitionRepo) Update(ctx context.Context, c *repository.Competition) error {
	const query = `
		UPDATE competition SET
			name = $2, description = $3, host = $4, location = $5, support = $6,
			request_path = $7, category = $8, competition_type = $9,
			start_date = $10, end_date = $11, request_start_date = $12, request_end_date = $13,
			updated_at = NOW()
		WHERE id = $1
	`
	tag, err := r.pool.Exec(ctx, query,
		c.ID, c.Name, c.Description, c.Host, c.Location, c.Support,
		c.RequestPath, c.Category, c.CompetitionType,
		c.StartDate, c.EndDate, c.RequestStartDate, c.RequestEndDate,
	)
	if err != nil {
		return fmt.Errorf("pg: update competition: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *competitionRepo) Delete(ctx context.Context, id string) error {
	// Los likes caen por FK ON DELETE CASCADE
	const query = `DELETE FROM competition WHERE id = $1`
	tag, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("pg: delete competition: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// sortColumns es la lista blanca de columnas ordenables.
var sortColumns = map[string]string{
	"start_date":         "c.start_date",
	"end_date":           "c.end_date",
	"request_start_date": "c.request_start_date",
	"request_end_date":   "c.request_end_date",
	"likes":              "l.likes",
	"created_at":         "c.created_at",
}

func (r *competitionRepo) List(ctx context.Context, filter repository.CompetitionFilter) ([]repository.Competition, error) {
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

	if filter.Category != nil {
		where = append(where, fmt.Sprintf("c.category = $%d", argIdx))
		args = append(args, *filter.Category)
		argIdx++
	}
	if filter.CompetitionType != nil {
		where = append(where, fmt.Sprintf("c.competition_type = $%d", argIdx))
		args = append(args, *filter.CompetitionType)
		argIdx++
	}
	if filter.Host != "" {
		where = append(where, fmt.Sprintf("c.host = $%d", argIdx))
		args = append(args, filter.Host)
		argIdx++
	}

	orderCol, ok := sortColumns[filter.SortBy]
	if !ok {
		orderCol = "c.created_at"
	}
	dir := "DESC"
	if filter.Ascending {
		dir = "ASC"
	}

	query := `SELECT ` + competitionCols + competitionFrom
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += fmt.Sprintf(" ORDER BY %s %s, c.id LIMIT $%d OFFSET $%d", orderCol, dir, argIdx, argIdx+1)
	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("pg: list competitions: %w", err)
	}
	defer rows.Close()

	var comps []repository.Competition
	for rows.Next() {
		var c repository.Competition
		if err := rows.Scan(
			&c.ID, &c.Name, &c.Description, &c.Host, &c.Location, &c.Support, &c.RequestPath,
			&c.Category, &c.CompetitionType,
			&c.StartDate, &c.EndDate, &c.RequestStartDate, &c.RequestEndDate,
			&c.Likes, &c.CreatedAt, &c.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("pg: scan competition: %w", err)
		}
		comps = append(comps, c)
	}
	return comps, rows.Err()
}

func (r *competitionRepo) ListHosts(ctx context.Context) ([]string, error) {
	const query = `SELECT DISTINCT host FROM competition ORDER BY host`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("pg: list hosts: %w", err)
	}
	defer rows.Close()

	var hosts []string
	for rows.Next() {
		var h string
		if err := rows.Scan(&h); err != nil {
			return nil, err
		}
		hosts = append(hosts, h)
	}
	return hosts, rows.Err()
}

// ─── LikeRepository ───

type likeRepo struct{ pool *pgxpool.Pool }

func (r *likeRepo) Like(ctx context.Context, competitionID, accountID string) error {
	const query = `
		INSERT INTO competition_like (competition_id, account_id)
		VALUES ($1, $2)
		ON CONFLICT (competition_id, account_id) DO NOTHING
	`
	_, err := r.pool.Exec(ctx, query, competitionID, accountID)
	if err != nil {
		return fmt.Errorf("pg: like: %w", err)
	}
	return nil
}

func (r *likeRepo) Unlike(ctx context.Context, competitionID, accountID string) error {
	const query = `DELETE FROM competition_like WHERE competition_id = $1 AND account_id = $2`
	tag, err := r.pool.Exec(ctx, query, competitionID, accountID)
	if err != nil {
		return fmt.Errorf("pg: unlike: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *likeRepo) Count(ctx context.Context, competitionID string) (int64, error) {
	const query = `SELECT COUNT(*) FROM competition_like WHERE competition_id = $1`
	var n int64
	if err := r.pool.QueryRow(ctx, query, competitionID).Scan(&n); err != nil {
		return 0, fmt.Errorf("pg: count likes: %w", err)
	}
	return n, nil
}

func (r *likeRepo) Liked(ctx context.Context, competitionID, accountID string) (bool, error) {
	const query = `SELECT EXISTS(SELECT 1 FROM competition_like WHERE competition_id = $1 AND account_id = $2)`
	var liked bool
	if err := r.pool.QueryRow(ctx, query, competitionID, accountID).Scan(&liked); err != nil {
		return false, fmt.Errorf("pg: liked: %w", err)
	}
	return liked, nil
}
