package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/cory-johannsen/raidloot/internal/config"
	"github.com/cory-johannsen/raidloot/internal/game/catalog"
	"github.com/cory-johannsen/raidloot/internal/game/location"
	"github.com/cory-johannsen/raidloot/internal/observability"
	"github.com/cory-johannsen/raidloot/internal/storage"
	"github.com/cory-johannsen/raidloot/internal/storage/archive"
	"github.com/cory-johannsen/raidloot/internal/storage/postgres"
	"github.com/cory-johannsen/raidloot/internal/storage/sqlite"
)

// options are the per-invocation choices taken from flags.
type options struct {
	Location string
	Seed     uint64
	Crates   []string
	Seasonal bool
	Stdout   bool
	History  int
}

// run loads content, generates one location and records the result.
//
// Precondition: cfg passed validation.
// Postcondition: on success the payload is written and, when storage is
// configured, a run record is saved.
func run(ctx context.Context, cfg config.Config, opts options, out io.Writer, logger *zap.Logger) error {
	store, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	if opts.History > 0 {
		return printHistory(ctx, store, opts.Location, opts.History, out)
	}

	loadStart := time.Now()
	cat, err := catalog.LoadDir(cfg.Content.CatalogDir)
	if err != nil {
		return fmt.Errorf("loading catalog: %w", err)
	}
	locations, err := location.LoadDir(cfg.Content.LocationDir)
	if err != nil {
		return fmt.Errorf("loading locations: %w", err)
	}
	data, ok := locations[opts.Location]
	if !ok {
		return fmt.Errorf("location %q: %w", opts.Location, location.ErrNoLocation)
	}
	logger.Info("content loaded",
		zap.Int("templates", cat.Len()),
		zap.Int("locations", len(locations)),
		zap.Duration("elapsed", time.Since(loadStart)),
	)

	crates, err := selectCrates(cfg.Loot.Crates, opts.Crates)
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	metrics, err := observability.NewGenerationMetrics(reg)
	if err != nil {
		return err
	}
	gen := location.NewGenerator(location.NewContext(cat, cfg.Loot, logger), metrics)

	genStart := time.Now()
	payload, err := gen.Generate(ctx, location.Request{
		Location:       data,
		Seed:           opts.Seed,
		SeasonalActive: opts.Seasonal,
		Crates:         crates,
	})
	if err != nil {
		return err
	}
	elapsed := time.Since(genStart)

	w := archive.NewWriter(cfg.Output)
	archivePath := ""
	if opts.Stdout {
		if err := w.Encode(out, payload); err != nil {
			return err
		}
	} else {
		if archivePath, err = w.WriteFile(payload); err != nil {
			return err
		}
		logger.Info("payload written", zap.String("path", archivePath))
	}

	if store != nil {
		saved, err := store.SaveRun(ctx, storage.RunFromPayload(payload, elapsed, archivePath))
		if err != nil {
			return fmt.Errorf("saving run: %w", err)
		}
		logger.Info("run recorded", zap.Int64("run_id", saved.ID), zap.String("driver", cfg.Storage.Driver))
	}

	if cfg.Metrics.TextfilePath != "" {
		if err := observability.WriteTextfile(cfg.Metrics.TextfilePath, reg); err != nil {
			return err
		}
	}
	return nil
}

// openStore opens the configured run store. The returned close function is
// always safe to call.
func openStore(ctx context.Context, cfg config.Config, logger *zap.Logger) (storage.RunStore, func(), error) {
	switch cfg.Storage.Driver {
	case config.StoragePostgres:
		pool, err := postgres.NewPool(ctx, cfg.Database, logger)
		if err != nil {
			return nil, func() {}, fmt.Errorf("opening run database: %w", err)
		}
		return pool.Runs(), pool.Close, nil
	case config.StorageSQLite:
		s, err := sqlite.Open(cfg.Storage.SQLitePath)
		if err != nil {
			return nil, func() {}, err
		}
		return s, func() { _ = s.Close() }, nil
	}
	return nil, func() {}, nil
}

// selectCrates resolves crate names against the configured crates. The
// single name "all" selects every configured crate.
func selectCrates(configured map[string]config.CrateConfig, names []string) (map[string]location.CratePolicy, error) {
	if len(names) == 0 {
		return nil, nil
	}
	if slices.Equal(names, []string{"all"}) {
		names = nil
		for name := range configured {
			names = append(names, name)
		}
	}
	out := make(map[string]location.CratePolicy, len(names))
	var missing []string
	for _, name := range names {
		c, ok := configured[name]
		if !ok {
			missing = append(missing, name)
			continue
		}
		out[name] = location.CratePolicyFrom(c)
	}
	if len(missing) > 0 {
		slices.Sort(missing)
		return nil, fmt.Errorf("unknown crates %v", missing)
	}
	return out, nil
}

func printHistory(ctx context.Context, store storage.RunStore, loc string, limit int, out io.Writer) error {
	if store == nil {
		return errors.New("-history needs storage.driver set to postgres or sqlite")
	}
	runs, err := store.LatestRuns(ctx, loc, limit)
	if err != nil {
		return err
	}
	for _, r := range runs {
		fmt.Fprintf(out, "%d\t%s\tseed=%d\tcontainers=%d\tspawn_points=%d\titems=%d\t%s\t%s\n",
			r.ID, r.CreatedAt.Format(time.RFC3339), r.Seed, r.Containers, r.SpawnPoints, r.Items, r.Elapsed, r.ArchivePath)
	}
	return nil
}
