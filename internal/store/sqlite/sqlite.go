// Package sqlite implements core.Store on an embedded SQLite database.
// It backs local development, the admin CLI and store tests.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/JonMunkholm/scidesk/internal/core"
	_ "modernc.org/sqlite" // pure go sqlite driver
)

const schema = `
CREATE TABLE IF NOT EXISTS form_records (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	kind       TEXT NOT NULL,
	owner      TEXT NOT NULL DEFAULT '',
	fields     TEXT NOT NULL,
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS form_records_kind_owner ON form_records (kind, owner);
CREATE TABLE IF NOT EXISTS users (
	id                INTEGER PRIMARY KEY AUTOINCREMENT,
	identifier        TEXT NOT NULL UNIQUE,
	email             TEXT NOT NULL UNIQUE,
	alternative_email TEXT NOT NULL UNIQUE,
	first_name        TEXT NOT NULL DEFAULT '',
	last_name         TEXT NOT NULL DEFAULT '',
	role              TEXT NOT NULL,
	created_at        TEXT NOT NULL
);`

const timeLayout = time.RFC3339Nano

// Store is a SQLite-backed core.Store.
type Store struct {
	db *sql.DB
}

var _ core.Store = (*Store)(nil)

// Open opens (creating if needed) the database at path and applies the
// schema. Use ":memory:" for a private in-memory database.
func Open(ctx context.Context, path string) (*Store, error) {
	if path == "" {
		path = "scidesk.db"
	}
	if path != ":memory:" && !strings.HasPrefix(path, "file:") {
		if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil && !errors.Is(err, os.ErrExist) {
			return nil, fmt.Errorf("create dirs: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// A single connection keeps ":memory:" databases shared and serializes writers.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) ListRecords(ctx context.Context, f core.RecordFilter) ([]core.Record, error) {
	query := `SELECT id, kind, owner, fields, created_at, updated_at FROM form_records WHERE 1=1`
	var args []any
	if f.Kind != "" {
		query += ` AND kind = ?`
		args = append(args, f.Kind)
	}
	if f.Owner != "" {
		query += ` AND owner = ?`
		args = append(args, f.Owner)
	}
	query += ` ORDER BY id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	defer func() { _ = rows.Close() }()

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
	row := s.db.QueryRowContext(ctx,
		`SELECT id, kind, owner, fields, created_at, updated_at FROM form_records
		 WHERE id = ? AND kind = ? AND (? = '' OR owner = ?)`,
		id, kind, owner, owner)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Record{}, core.ErrNotFound
	}
	return rec, err
}

func (s *Store) CreateRecord(ctx context.Context, rec core.Record) (core.Record, error) {
	payload, err := json.Marshal(rec.Fields)
	if err != nil {
		return core.Record{}, fmt.Errorf("encode fields: %w", err)
	}
	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO form_records (kind, owner, fields, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		rec.Kind, rec.Owner, string(payload), now.Format(timeLayout), now.Format(timeLayout))
	if err != nil {
		return core.Record{}, fmt.Errorf("insert record: %w", err)
	}
	if rec.ID, err = res.LastInsertId(); err != nil {
		return core.Record{}, fmt.Errorf("insert record: %w", err)
	}
	rec.CreatedAt, rec.UpdatedAt = now, now
	return rec, nil
}

func (s *Store) UpdateRecord(ctx context.Context, rec core.Record) (core.Record, error) {
	payload, err := json.Marshal(rec.Fields)
	if err != nil {
		return core.Record{}, fmt.Errorf("encode fields: %w", err)
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE form_records SET fields = ?, updated_at = ?
		 WHERE id = ? AND kind = ? AND (? = '' OR owner = ?)`,
		string(payload), time.Now().UTC().Format(timeLayout), rec.ID, rec.Kind, rec.Owner, rec.Owner)
	if err != nil {
		return core.Record{}, fmt.Errorf("update record: %w", err)
	}
	if err := requireAffected(res); err != nil {
		return core.Record{}, err
	}
	return s.GetRecord(ctx, rec.Kind, rec.Owner, rec.ID)
}

func (s *Store) DeleteRecord(ctx context.Context, kind, owner string, id int64) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM form_records WHERE id = ? AND kind = ? AND (? = '' OR owner = ?)`,
		id, kind, owner, owner)
	if err != nil {
		return fmt.Errorf("delete record: %w", err)
	}
	return requireAffected(res)
}

func (s *Store) CreateUser(ctx context.Context, u core.User) (core.User, error) {
	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO users (identifier, email, alternative_email, first_name, last_name, role, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		u.Identifier, u.Email, u.AlternativeEmail, u.FirstName, u.LastName, string(u.Role), now.Format(timeLayout))
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return core.User{}, fmt.Errorf("insert user: %w", core.ErrConflict)
		}
		return core.User{}, fmt.Errorf("insert user: %w", err)
	}
	if u.ID, err = res.LastInsertId(); err != nil {
		return core.User{}, fmt.Errorf("insert user: %w", err)
	}
	u.CreatedAt = now
	return u, nil
}

func (s *Store) GetUser(ctx context.Context, id int64) (core.User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, identifier, email, alternative_email, first_name, last_name, role, created_at
		 FROM users WHERE id = ?`, id)
	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.User{}, core.ErrNotFound
	}
	return u, err
}

func (s *Store) UserExists(ctx context.Context, identifier, email, alternativeEmail string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM users WHERE identifier = ? OR email = ? OR alternative_email = ?`,
		identifier, email, alternativeEmail).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("user exists: %w", err)
	}
	return n > 0, nil
}

func (s *Store) ListUsers(ctx context.Context, excludeID int64) ([]core.User, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, identifier, email, alternative_email, first_name, last_name, role, created_at
		 FROM users WHERE id <> ? ORDER BY id`, excludeID)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer func() { _ = rows.Close() }()

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
	res, err := s.db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return requireAffected(res)
}

func (s *Store) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }

func (s *Store) Close() error { return s.db.Close() }

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (core.Record, error) {
	var (
		rec              core.Record
		payload          string
		created, updated string
	)
	if err := row.Scan(&rec.ID, &rec.Kind, &rec.Owner, &payload, &created, &updated); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.Record{}, err
		}
		return core.Record{}, fmt.Errorf("scan record: %w", err)
	}
	if err := json.Unmarshal([]byte(payload), &rec.Fields); err != nil {
		return core.Record{}, fmt.Errorf("decode fields of record %d: %w", rec.ID, err)
	}
	rec.CreatedAt, _ = time.Parse(timeLayout, created)
	rec.UpdatedAt, _ = time.Parse(timeLayout, updated)
	return rec, nil
}

func scanUser(row scanner) (core.User, error) {
	var (
		u       core.User
		role    string
		created string
	)
	if err := row.Scan(&u.ID, &u.Identifier, &u.Email, &u.AlternativeEmail,
		&u.FirstName, &u.LastName, &role, &created); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.User{}, err
		}
		return core.User{}, fmt.Errorf("scan user: %w", err)
	}
	u.Role = core.Role(role)
	u.CreatedAt, _ = time.Parse(timeLayout, created)
	return u, nil
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return core.ErrNotFound
	}
	return nil
}
