// Package main provides the loot generator binary: it loads the item catalog
// and a location, populates the location's loot for a seed and writes the
// payload to disk or stdout.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/raidloot/internal/config"
	"github.com/cory-johannsen/raidloot/internal/observability"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	locationID := flag.String("location", "", "location id to generate (required)")
	seed := flag.Uint64("seed", 0, "generation seed; 0 picks a random seed")
	crates := flag.String("crates", "", "comma-separated configured crate names to fill; \"all\" fills every crate")
	seasonal := flag.Bool("seasonal", false, "treat the seasonal event as active")
	stdout := flag.Bool("stdout", false, "write the payload to stdout instead of the output directory")
	history := flag.Int("history", 0, "print the N most recent stored runs for the location and exit")
	timeout := flag.Duration("timeout", 30*time.Second, "generation deadline")
	flag.Parse()

	if *locationID == "" {
		log.Fatalf("-location is required")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	opts := options{
		Location: *locationID,
		Seed:     *seed,
		Crates:   splitList(*crates),
		Seasonal: *seasonal,
		Stdout:   *stdout,
		History:  *history,
	}
	if err := run(ctx, cfg, opts, os.Stdout, logger); err != nil {
		logger.Fatal("loot generation failed", zap.Error(err), zap.Duration("elapsed", time.Since(start)))
	}
	logger.Debug("done", zap.Duration("elapsed", time.Since(start)))
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
