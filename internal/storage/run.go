// Package storage defines the generation run record shared by the run stores.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/cory-johannsen/raidloot/internal/game/location"
)

// ErrRunNotFound is returned when a run lookup yields no results.
var ErrRunNotFound = errors.New("generation run not found")

// Run is the persisted summary of one generation.
type Run struct {
	ID       int64
	Location string
	// Seed replays the run. Stores keep it as a signed 64-bit column; the
	// conversion preserves every bit.
	Seed        uint64
	Containers  int
	SpawnPoints int
	Items       int
	// ArchivePath is where the full payload was written, if anywhere.
	ArchivePath string
	Elapsed     time.Duration
	CreatedAt   time.Time
}

// RunFromPayload summarises a generated payload.
func RunFromPayload(p *location.Payload, elapsed time.Duration, archivePath string) Run {
	containers := 0
	for _, l := range p.Static {
		if l.IsContainer {
			containers++
		}
	}
	return Run{
		Location:    p.Location,
		Seed:        p.Seed,
		Containers:  containers,
		SpawnPoints: len(p.Dynamic),
		Items:       p.ItemCount(),
		ArchivePath: archivePath,
		Elapsed:     elapsed,
	}
}

// RunStore persists generation runs.
type RunStore interface {
	// SaveRun inserts r and returns it with ID and CreatedAt set.
	SaveRun(ctx context.Context, r Run) (Run, error)
	// GetRun returns the run with id or ErrRunNotFound.
	GetRun(ctx context.Context, id int64) (Run, error)
	// LatestRuns returns up to limit runs for location, newest first.
	LatestRuns(ctx context.Context, location string, limit int) ([]Run, error)
}
