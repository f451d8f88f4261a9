// Package sqlite keeps a local index of generation runs in a SQLite file,
// for single-machine use without a database server.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/cory-johannsen/raidloot/internal/storage"
)

// Store is a SQLite-backed storage.RunStore.
type Store struct {
	db *sql.DB
}

// Open opens or creates the database at path and ensures the schema exists.
//
// Precondition: path must be non-empty.
// Postcondition: Returns a ready Store or a non-nil error.
func Open(path string) (*Store, error) {
	if path == "" {
		return nil, errors.New("sqlite: empty database path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("sqlite: creating database directory: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening %q: %w", path, err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

func initPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return fmt.Errorf("sqlite: %s: %w", p, err)
		}
	}
	return nil
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS generation_runs (
			id           INTEGER PRIMARY KEY AUTOINCREMENT,
			location     TEXT    NOT NULL,
			seed         INTEGER NOT NULL,
			containers   INTEGER NOT NULL DEFAULT 0,
			spawn_points INTEGER NOT NULL DEFAULT 0,
			items        INTEGER NOT NULL DEFAULT 0,
			archive_path TEXT    NOT NULL DEFAULT '',
			elapsed_us   INTEGER NOT NULL DEFAULT 0,
			created_at   TEXT    NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_generation_runs_location ON generation_runs (location, id);`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return fmt.Errorf("sqlite: creating schema: %w", err)
		}
	}
	return nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

const runColumns = `id, location, seed, containers, spawn_points, items, archive_path, elapsed_us, created_at`

// SaveRun inserts a run record.
//
// Postcondition: Returns the stored Run with ID and CreatedAt set.
func (s *Store) SaveRun(ctx context.Context, r storage.Run) (storage.Run, error) {
	r.CreatedAt = time.Now().UTC()
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO generation_runs (location, seed, containers, spawn_points, items, archive_path, elapsed_us, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		r.Location, int64(r.Seed), r.Containers, r.SpawnPoints, r.Items,
		r.ArchivePath, r.Elapsed.Microseconds(), r.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return storage.Run{}, fmt.Errorf("sqlite: inserting generation run: %w", err)
	}
	r.ID, err = res.LastInsertId()
	if err != nil {
		return storage.Run{}, fmt.Errorf("sqlite: reading run id: %w", err)
	}
	return r, nil
}

// GetRun retrieves a run by id.
//
// Postcondition: Returns the Run or storage.ErrRunNotFound.
func (s *Store) GetRun(ctx context.Context, id int64) (storage.Run, error) {
	r, err := scanRun(s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM generation_runs WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return storage.Run{}, storage.ErrRunNotFound
	}
	if err != nil {
		return storage.Run{}, fmt.Errorf("sqlite: querying generation run: %w", err)
	}
	return r, nil
}

// LatestRuns returns up to limit runs for location, newest first.
func (s *Store) LatestRuns(ctx context.Context, location string, limit int) ([]storage.Run, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+runColumns+` FROM generation_runs WHERE location = ? ORDER BY id DESC LIMIT ?`,
		location, limit)
	if err != nil {
		return nil, fmt.Errorf("sqlite: querying generation runs: %w", err)
	}
	defer rows.Close()

	var out []storage.Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning generation run: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (storage.Run, error) {
	var (
		r         storage.Run
		seed      int64
		elapsedUS int64
		created   string
	)
	if err := row.Scan(&r.ID, &r.Location, &seed, &r.Containers, &r.SpawnPoints,
		&r.Items, &r.ArchivePath, &elapsedUS, &created); err != nil {
		return storage.Run{}, err
	}
	r.Seed = uint64(seed)
	r.Elapsed = time.Duration(elapsedUS) * time.Microsecond
	t, err := time.Parse(time.RFC3339Nano, created)
	if err != nil {
		return storage.Run{}, fmt.Errorf("parsing created_at %q: %w", created, err)
	}
	r.CreatedAt = t
	return r, nil
}
