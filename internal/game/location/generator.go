package location

import (
	"context"
	"fmt"
	"slices"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/raidloot/internal/game/catalog"
	"github.com/cory-johannsen/raidloot/internal/game/dice"
)

// Recorder receives generation metrics.
//
// Implementations MUST be safe for concurrent use.
type Recorder interface {
	// ObserveGeneration records one completed generation.
	ObserveGeneration(location string, elapsed time.Duration, static, dynamic Stats)
}

type nopRecorder struct{}

func (nopRecorder) ObserveGeneration(string, time.Duration, Stats, Stats) {}

// Request is one map generation call.
type Request struct {
	Location *Data
	// Ammo overrides Location.StaticAmmo when non-nil.
	Ammo catalog.AmmoDistribution
	// Seed makes the run reproducible; zero picks a random seed, which is
	// reported in the payload.
	Seed           uint64
	SeasonalActive bool
	// Crates lists crate types to fill alongside the map loot, keyed by the
	// name reported as the crate's spawn id.
	Crates map[string]CratePolicy
}

// Generator runs the static and dynamic populators for a map.
//
// Invariant: a Generator holds no per-call state; concurrent Generate calls
// are independent.
type Generator struct {
	env     *Context
	metrics Recorder
}

// NewGenerator creates a Generator. A nil metrics recorder discards metrics.
//
// Precondition: env must be non-nil.
func NewGenerator(env *Context, metrics Recorder) *Generator {
	if metrics == nil {
		metrics = nopRecorder{}
	}
	return &Generator{env: env, metrics: metrics}
}

// Generate populates the requested map.
//
// Precondition: ctx must be non-nil.
// Postcondition: returns a payload whose Seed replays the same structure,
// or an error when the request is invalid or ctx is done.
func (g *Generator) Generate(ctx context.Context, req Request) (*Payload, error) {
	if req.Location == nil {
		return nil, ErrNoLocation
	}
	if err := req.Location.Validate(); err != nil {
		return nil, fmt.Errorf("generate: %w", err)
	}
	seed := req.Seed
	if seed == 0 {
		seed = dice.NewSeed()
	}
	ammo := req.Ammo
	if ammo == nil {
		ammo = req.Location.StaticAmmo
	}

	start := time.Now()
	src := dice.NewSeededSource(seed)

	static := NewStaticPopulator(g.env, src, req.SeasonalActive)
	staticLoot, err := static.Populate(ctx, req.Location, ammo)
	if err != nil {
		return nil, fmt.Errorf("generate: static loot: %w", err)
	}
	dynamic := NewDynamicPopulator(g.env, src, req.SeasonalActive)
	dynamicLoot, err := dynamic.Populate(ctx, req.Location, ammo)
	if err != nil {
		return nil, fmt.Errorf("generate: dynamic loot: %w", err)
	}

	staticStats := static.Stats()
	if len(req.Crates) > 0 {
		filler := NewCrateFiller(g.env, src)
		for _, name := range sortedKeys(req.Crates) {
			crate, err := filler.Fill(req.Crates[name], ammo)
			if err != nil {
				g.env.Logger.Warn("crate not filled", zap.String("crate", name), zap.Error(err))
				if crate.Root == "" {
					staticStats.Skipped++
					continue
				}
			}
			crate.ID = name
			staticLoot = append(staticLoot, crate)
			staticStats.Spawned++
			staticStats.Items += crate.ItemCount()
		}
	}

	payload := &Payload{
		Location: req.Location.ID,
		Seed:     seed,
		Static:   staticLoot,
		Dynamic:  dynamicLoot,
	}
	elapsed := time.Since(start)
	g.metrics.ObserveGeneration(req.Location.ID, elapsed, staticStats, dynamic.Stats())
	g.env.Logger.Info("loot generated",
		zap.String("location", req.Location.ID),
		zap.Uint64("seed", seed),
		zap.Int("containers", staticStats.Spawned),
		zap.Int("spawn_points", len(dynamicLoot)),
		zap.Int("items", payload.ItemCount()),
		zap.Duration("elapsed", elapsed),
	)
	return payload, nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
