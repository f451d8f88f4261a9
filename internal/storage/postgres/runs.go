package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cory-johannsen/raidloot/internal/storage"
)

const runColumns = `id, location, seed, containers, spawn_points, items, archive_path, elapsed_us, created_at`

// RunRepository persists generation runs in PostgreSQL.
type RunRepository struct {
	db *pgxpool.Pool
}

// NewRunRepository creates a RunRepository backed by the given pool.
//
// Precondition: db must be a valid, open connection pool.
func NewRunRepository(db *pgxpool.Pool) *RunRepository {
	return &RunRepository{db: db}
}

// SaveRun inserts a run record.
//
// Precondition: r.Location must be non-empty.
// Postcondition: Returns the stored Run with ID and CreatedAt set.
func (r *RunRepository) SaveRun(ctx context.Context, run storage.Run) (storage.Run, error) {
	row := r.db.QueryRow(ctx,
		`INSERT INTO generation_runs (location, seed, containers, spawn_points, items, archive_path, elapsed_us)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING `+runColumns,
		run.Location, int64(run.Seed), run.Containers, run.SpawnPoints, run.Items,
		run.ArchivePath, run.Elapsed.Microseconds(),
	)
	saved, err := scanRun(row)
	if err != nil {
		return storage.Run{}, fmt.Errorf("inserting generation run: %w", err)
	}
	return saved, nil
}

// GetRun retrieves a run by id.
//
// Postcondition: Returns the Run or storage.ErrRunNotFound.
func (r *RunRepository) GetRun(ctx context.Context, id int64) (storage.Run, error) {
	run, err := scanRun(r.db.QueryRow(ctx,
		`SELECT `+runColumns+` FROM generation_runs WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return storage.Run{}, storage.ErrRunNotFound
		}
		return storage.Run{}, fmt.Errorf("querying generation run: %w", err)
	}
	return run, nil
}

// LatestRuns returns up to limit runs for location, newest first.
//
// Precondition: limit > 0.
func (r *RunRepository) LatestRuns(ctx context.Context, location string, limit int) ([]storage.Run, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+runColumns+` FROM generation_runs
		 WHERE location = $1
		 ORDER BY created_at DESC, id DESC
		 LIMIT $2`,
		location, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("querying generation runs: %w", err)
	}
	defer rows.Close()

	var out []storage.Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning generation run: %w", err)
		}
		out = append(out, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating generation runs: %w", err)
	}
	return out, nil
}

func scanRun(row pgx.Row) (storage.Run, error) {
	var (
		run       storage.Run
		seed      int64
		elapsedUS int64
	)
	err := row.Scan(&run.ID, &run.Location, &seed, &run.Containers, &run.SpawnPoints,
		&run.Items, &run.ArchivePath, &elapsedUS, &run.CreatedAt)
	if err != nil {
		return storage.Run{}, err
	}
	run.Seed = uint64(seed)
	run.Elapsed = time.Duration(elapsedUS) * time.Microsecond
	return run, nil
}
