// Package postgres implements core.Store on PostgreSQL through a pgx pool.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/JonMunkholm/scidesk/internal/core"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const schema = `
CREATE TABLE IF NOT EXISTS form_records (
	id         BIGSERIAL PRIMARY KEY,
	kind       TEXT NOT NULL,
	owner      TEXT NOT NULL DEFAULT '',
	fields     JSONB NOT NULL DEFAULT '{}'::jsonb,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS form_records_kind_owner ON form_records (kind, owner);
CREATE TABLE IF NOT EXISTS users (
	id                BIGSERIAL PRIMARY KEY,
	identifier        TEXT NOT NULL UNIQUE,
	email             TEXT NOT NULL UNIQUE,
	alternative_email TEXT NOT NULL UNIQUE,
	first_name        TEXT NOT NULL DEFAULT '',
	last_name         TEXT NOT NULL DEFAULT '',
	role              TEXT NOT NULL,
	created_at        TIMESTAMPTZ NOT NULL DEFAULT now()
);`

// uniqueViolation is the PostgreSQL SQLSTATE for unique_violation.
const uniqueViolation = "23505"

// Options configures the connection pool.
type Options struct {
	URL             string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// Store is a PostgreSQL-backed core.Store.
type Store struct {
	pool *pgxpool.Pool
}

var _ core.Store = (*Store)(nil)

// Open creates the pool, verifies connectivity and applies the schema.
func Open(ctx context.Context, opts Options) (*Store, error) {
	poolConfig, err := pgxpool.ParseConfig(opts.URL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}
	if opts.MaxConns > 0 {
		poolConfig.MaxConns = opts.MaxConns
	}
	if opts.MinConns > 0 {
		poolConfig.MinConns = opts.MinConns
	}
	if opts.MaxConnLifetime > 0 {
		poolConfig.MaxConnLifetime = opts.MaxConnLifetime
	}
	if opts.MaxConnIdleTime > 0 {
		poolConfig.MaxConnIdleTime = opts.MaxConnIdleTime
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	s := &Store{pool: pool}
	if err := s.Migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	slog.Info("database connected",
		"database", databaseName(opts.URL),
		"max_conns", poolConfig.MaxConns,
		"min_conns", poolConfig.MinConns,
	)
	return s, nil
}

// Migrate creates the tables when missing.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

func (s *Store) ListRecords(ctx context.Context, f core.RecordFilter) ([]core.Record, error) {
	var (
		where []string
		args  []any
	)
	add := func(cond string, v any) {
		args = append(args, v)
		where = append(where, fmt.Sprintf(cond, len(args)))
	}
	if f.Kind != "" {
		add("kind = $%d", f.Kind)
	}
	if f.Owner != "" {
		add("owner = $%d", f.Owner)
	}

	query := `SELECT id, kind, owner, fields, created_at, updated_at FROM form_records`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY id"

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	defer rows.Close()

	var out []core.Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (s *Store) GetRecord(ctx context.Context, kind, owner string, id int64) (core.Record, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, kind, owner, fields, created_at, updated_at FROM form_records
		 WHERE id = $1 AND kind = $2 AND ($3 = '' OR owner = $3)`,
		id, kind, owner)
	return scanRecord(row)
}

func (s *Store) CreateRecord(ctx context.Context, rec core.Record) (core.Record, error) {
	fields := rec.Fields
	if fields == nil {
		fields = core.Fields{}
	}
	row := s.pool.QueryRow(ctx,
		`INSERT INTO form_records (kind, owner, fields) VALUES ($1, $2, $3)
		 RETURNING id, kind, owner, fields, created_at, updated_at`,
		rec.Kind, rec.Owner, map[string]any(fields))
	return scanRecord(row)
}

func (s *Store) UpdateRecord(ctx context.Context, rec core.Record) (core.Record, error) {
	fields := rec.Fields
	if fields == nil {
		fields = core.Fields{}
	}
	row := s.pool.QueryRow(ctx,
		`UPDATE form_records SET fields = $1, updated_at = now()
		 WHERE id = $2 AND kind = $3 AND ($4 = '' OR owner = $4)
		 RETURNING id, kind, owner, fields, created_at, updated_at`,
		map[string]any(fields), rec.ID, rec.Kind, rec.Owner)
	return scanRecord(row)
}

func (s *Store) DeleteRecord(ctx context.Context, kind, owner string, id int64) error {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM form_records WHERE id = $1 AND kind = $2 AND ($3 = '' OR owner = $3)`,
		id, kind, owner)
	if err != nil {
		return fmt.Errorf("delete record: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return core.ErrNotFound
	}
	return nil
}

func (s *Store) CreateUser(ctx context.Context, u core.User) (core.User, error) {
	row := s.pool.QueryRow(ctx,
		`INSERT INTO users (identifier, email, alternative_email, first_name, last_name, role)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, identifier, email, alternative_email, first_name, last_name, role, created_at`,
		u.Identifier, u.Email, u.AlternativeEmail, u.FirstName, u.LastName, string(u.Role))
	created, err := scanUser(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return core.User{}, fmt.Errorf("insert user: %w", core.ErrConflict)
		}
		return core.User{}, err
	}
	return created, nil
}

func (s *Store) GetUser(ctx context.Context, id int64) (core.User, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, identifier, email, alternative_email, first_name, last_name, role, created_at
		 FROM users WHERE id = $1`, id)
	return scanUser(row)
}

func (s *Store) UserExists(ctx context.Context, identifier, email, alternativeEmail string) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM users WHERE identifier = $1 OR email = $2 OR alternative_email = $3)`,
		identifier, email, alternativeEmail).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("user exists: %w", err)
	}
	return exists, nil
}

func (s *Store) ListUsers(ctx context.Context, excludeID int64) ([]core.User, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, identifier, email, alternative_email, first_name, last_name, role, created_at
		 FROM users WHERE id <> $1 ORDER BY id`, excludeID)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var out []core.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (s *Store) DeleteUser(ctx context.Context, id int64) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return core.ErrNotFound
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error { return s.pool.Ping(ctx) }

func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

func scanRecord(row pgx.Row) (core.Record, error) {
	var (
		rec    core.Record
		fields map[string]any
	)
	if err := row.Scan(&rec.ID, &rec.Kind, &rec.Owner, &fields, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return core.Record{}, core.ErrNotFound
		}
		return core.Record{}, fmt.Errorf("scan record: %w", err)
	}
	rec.Fields = core.Fields(fields)
	return rec, nil
}

func scanUser(row pgx.Row) (core.User, error) {
	var (
		u    core.User
		role string
	)
	if err := row.Scan(&u.ID, &u.Identifier, &u.Email, &u.AlternativeEmail,
		&u.FirstName, &u.LastName, &role, &u.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return core.User{}, core.ErrNotFound
		}
		return core.User{}, err
	}
	u.Role = core.Role(role)
	return u, nil
}

// databaseName extracts the database name from a connection URL for logging.
func databaseName(dbURL string) string {
	u, err := url.Parse(dbURL)
	if err != nil {
		return "unknown"
	}
	return strings.TrimPrefix(u.Path, "/")
}
