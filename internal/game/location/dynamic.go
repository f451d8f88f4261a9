package location

import (
	"context"
	"math"
	"slices"

	"go.uber.org/zap"

	"github.com/cory-johannsen/raidloot/internal/game/assembler"
	"github.com/cory-johannsen/raidloot/internal/game/catalog"
	"github.com/cory-johannsen/raidloot/internal/game/dice"
	"github.com/cory-johannsen/raidloot/internal/game/item"
	"github.com/cory-johannsen/raidloot/internal/game/weighted"
)

// DynamicPopulator activates loose-loot spawn points and assigns one item to each.
//
// A DynamicPopulator serves one generation pass and is not safe for concurrent use.
type DynamicPopulator struct {
	env       *Context
	src       dice.Source
	asm       *assembler.Assembler
	policy    assembler.Policy
	season    seasonal
	blacklist map[string]bool
	stats     Stats
}

// NewDynamicPopulator creates a populator drawing from src.
//
// Precondition: env and src must be non-nil.
func NewDynamicPopulator(env *Context, src dice.Source, seasonalActive bool) *DynamicPopulator {
	blacklist := make(map[string]bool, len(env.Loot.ItemBlacklist))
	for _, tpl := range env.Loot.ItemBlacklist {
		blacklist[tpl] = true
	}
	return &DynamicPopulator{
		env:       env,
		src:       src,
		asm:       env.assembler(src),
		policy:    env.Policy(),
		season:    newSeasonal(env.Loot.Seasonal, seasonalActive),
		blacklist: blacklist,
	}
}

// Stats returns the counters accumulated by Populate.
func (p *DynamicPopulator) Stats() Stats { return p.stats }

// Populate returns forced loot plus one item for every activated spawn point.
//
// Precondition: data passed Validate.
// Postcondition: returns a non-nil error only when ctx is done. No two
// returned spawn points share a location id.
func (p *DynamicPopulator) Populate(ctx context.Context, data *Data, ammo catalog.AmmoDistribution) ([]SpawnedLoot, error) {
	dist := data.DynamicLoot
	forced := slices.Clone(dist.ForcedSpawnPoints)
	for _, sp := range dist.SpawnPoints {
		if sp.AlwaysSpawn {
			forced = append(forced, sp)
		}
	}
	out := p.forcedLoot(data.ID, forced)

	blocked := make(map[string]bool)
	for _, id := range p.env.Loot.LooseLootBlacklistFor(data.ID) {
		blocked[id] = true
	}
	var guaranteed []SpawnPoint
	pool := weighted.New[int, SpawnPoint]()
	for i, sp := range dist.SpawnPoints {
		if blocked[sp.ID] || blocked[sp.LocationID] {
			p.env.Logger.Debug("spawn point blacklisted", zap.String("location", data.ID), zap.String("spawn_point", sp.ID))
			continue
		}
		if sp.AlwaysSpawn {
			continue
		}
		if sp.Probability >= 1 {
			guaranteed = append(guaranteed, sp)
			continue
		}
		pool.Push(i, sp.Probability, sp)
	}

	desired := int(math.Round(p.env.Loot.LooseMultiplier(data.ID) *
		dice.Normal(p.src, dist.SpawnPointCount.Mean, dist.SpawnPointCount.Std)))
	chosen := guaranteed
	if extra := desired - len(guaranteed); extra > 0 && pool.Len() > 0 {
		for _, key := range pool.Draw(p.src, extra, false) {
			sp, _ := pool.Data(key)
			chosen = append(chosen, sp)
		}
	}
	chosen = uniqueLocations(chosen)
	if len(chosen) < desired {
		p.env.Logger.Debug("fewer spawn points available than requested",
			zap.String("location", data.ID), zap.Int("desired", desired), zap.Int("chosen", len(chosen)))
	}

	for _, sp := range chosen {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		loot, ok := p.spawn(data.ID, sp, ammo)
		if !ok {
			p.stats.Skipped++
			continue
		}
		out = append(out, loot)
	}
	p.stats.Spawned = len(out)
	for _, l := range out {
		p.stats.Items += l.ItemCount()
	}
	return out, nil
}

// forcedLoot emits forced spawn points. Templates configured as single-spawn
// appear at exactly one of their forced positions, chosen by position
// probability.
func (p *DynamicPopulator) forcedLoot(location string, forced []SpawnPoint) []SpawnedLoot {
	var out []SpawnedLoot
	seen := make(map[string]bool)
	single := p.env.Loot.ForcedSingleSpawnFor(location)
	for _, tpl := range single {
		pool := weighted.New[int, SpawnPoint]()
		for i, sp := range forced {
			if len(sp.Items) > 0 && sp.Items[0].Tpl == tpl {
				pool.Push(i, sp.Probability, sp)
			}
		}
		if pool.Len() == 0 {
			p.env.Logger.Debug("single-spawn forced item has no position", zap.String("location", location), zap.String("tpl", tpl))
			continue
		}
		key, ok := pool.DrawOne(p.src)
		if !ok {
			// Every position has zero weight; fall back to a uniform pick.
			keys := pool.Keys()
			key = keys[p.src.Intn(len(keys))]
		}
		sp, _ := pool.Data(key)
		seen[sp.ID] = true
		out = append(out, p.passthrough(sp))
	}

	for _, sp := range forced {
		if len(sp.Items) == 0 {
			continue
		}
		tpl := sp.Items[0].Tpl
		if slices.Contains(single, tpl) || p.season.excludesItem(tpl) {
			continue
		}
		if seen[sp.ID] {
			p.env.Logger.Debug("forced spawn point already added", zap.String("location", location), zap.String("spawn_point", sp.ID))
			continue
		}
		seen[sp.ID] = true
		out = append(out, p.passthrough(sp))
	}
	return out
}

// passthrough copies a forced spawn point's item tree under fresh ids.
func (p *DynamicPopulator) passthrough(sp SpawnPoint) SpawnedLoot {
	items := item.ReplaceIDs(sp.Items, p.env.Minter)
	items[0].ParentID = ""
	return SpawnedLoot{
		ID:         sp.ID,
		LocationID: sp.LocationID,
		Root:       items[0].ID,
		Position:   sp.Position,
		Rotation:   sp.Rotation,
		Items:      items,
	}
}

// spawn filters a spawn point's candidates, draws one and assembles it.
func (p *DynamicPopulator) spawn(location string, sp SpawnPoint, ammo catalog.AmmoDistribution) (SpawnedLoot, bool) {
	log := p.env.Logger.With(zap.String("location", location), zap.String("spawn_point", sp.ID))
	candidates, roots := p.filterCandidates(sp.Items)
	if len(candidates) == 0 {
		log.Debug("spawn point has no items after filtering")
		return SpawnedLoot{}, false
	}

	valid := make(map[string]bool, len(candidates))
	for _, it := range candidates {
		valid[it.ID] = true
	}
	pool := weighted.New[string, struct{}]()
	if len(sp.ItemDistribution) == 0 {
		for _, id := range roots {
			pool.Push(id, 1)
		}
	}
	for _, kw := range sp.ItemDistribution {
		if valid[kw.Key] {
			pool.Push(kw.Key, kw.RelativeProbability)
		}
	}
	key, ok := pool.DrawOne(p.src)
	if !ok {
		log.Warn("spawn point has no drawable item", zap.Error(ErrEmptyPool))
		return SpawnedLoot{}, false
	}

	res, err := p.asm.AssembleFromTree(key, candidates, ammo, p.policy)
	if err != nil {
		log.Warn("skipping spawn point item that could not be assembled", zap.String("item", key), zap.Error(err))
		return SpawnedLoot{}, false
	}
	return SpawnedLoot{
		ID:         sp.ID,
		LocationID: sp.LocationID,
		Root:       res.RootID(),
		Position:   sp.Position,
		Rotation:   sp.Rotation,
		Items:      res.Items,
	}, true
}

// filterCandidates drops blacklisted and out-of-season items together with
// everything attached below them. roots lists the surviving candidates that
// are roots in the unfiltered tree.
func (p *DynamicPopulator) filterCandidates(items item.Tree) (kept item.Tree, roots []string) {
	byID := make(map[string]item.Item, len(items))
	for _, it := range items {
		byID[it.ID] = it
	}
	excluded := func(tpl string) bool {
		return p.blacklist[tpl] || p.season.excludesItem(tpl)
	}
	survives := func(it item.Item) bool {
		for range len(byID) + 1 {
			if excluded(it.Tpl) {
				return false
			}
			parent, ok := byID[it.ParentID]
			if it.ParentID == "" || !ok {
				return true
			}
			it = parent
		}
		// parent cycle
		return false
	}
	for _, it := range items {
		if !survives(it) {
			continue
		}
		kept = append(kept, it.Clone())
		if _, ok := byID[it.ParentID]; it.ParentID == "" || !ok {
			roots = append(roots, it.ID)
		}
	}
	return kept, roots
}

// uniqueLocations keeps the first spawn point for every location id.
func uniqueLocations(points []SpawnPoint) []SpawnPoint {
	seen := make(map[string]bool, len(points))
	out := make([]SpawnPoint, 0, len(points))
	for _, sp := range points {
		key := sp.LocationID
		if key == "" {
			key = sp.ID
		}
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, sp)
	}
	return out
}
