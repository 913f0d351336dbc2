// Package pg implementa los repositorios sobre PostgreSQL usando pgxpool.
package pg

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dropDatabas3/quicklendar/internal/domain/repository"
)

// Store agrupa el pool y expone los repositorios.
type Store struct {
	pool *pgxpool.Pool
}

// Options parametriza la conexión.
type Options struct {
	DSN             string
	MaxConns        int
	ConnMaxLifetime time.Duration
}

// Connect crea el pool y verifica la conexión.
func Connect(ctx context.Context, opts Options) (*Store, error) {
	poolCfg, err := pgxpool.ParseConfig(opts.DSN)
	if err != nil {
		return nil, fmt.Errorf("pg: parse DSN: %w", err)
	}

	if opts.MaxConns > 0 {
		poolCfg.MaxConns = int32(opts.MaxConns)
	} else {
		poolCfg.MaxConns = 10
	}
	if opts.ConnMaxLifetime > 0 {
		poolCfg.MaxConnLifetime = opts.ConnMaxLifetime
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("pg: create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pg: ping failed: %w", err)
	}

	return &Store{pool: pool}, nil
}

func (s *Store) Ping(ctx context.Context) error { return s.pool.Ping(ctx) }

func (s *Store) Close() { s.pool.Close() }

// Pool expone el pool para el runner de migraciones.
func (s *Store) Pool() *pgxpool.Pool { return s.pool }

// ─── Repositorios ───

func (s *Store) Accounts() repository.AccountRepository { return &accountRepo{pool: s.pool} }
func (s *Store) Tokens() repository.ProviderTokenRepository {
	return &providerTokenRepo{pool: s.pool}
}
func (s *Store) Competitions() repository.CompetitionRepository {
	return &competitionRepo{pool: s.pool}
}
func (s *Store) Likes() repository.LikeRepository { return &likeRepo{pool: s.pool} }

// isUniqueViolation detecta el código 23505 de PostgreSQL.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
