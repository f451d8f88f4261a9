package location

import (
	"context"
	"math"
	"slices"

	"go.uber.org/zap"

	"github.com/cory-johannsen/raidloot/internal/game/assembler"
	"github.com/cory-johannsen/raidloot/internal/game/catalog"
	"github.com/cory-johannsen/raidloot/internal/game/dice"
	"github.com/cory-johannsen/raidloot/internal/game/grid"
	"github.com/cory-johannsen/raidloot/internal/game/item"
	"github.com/cory-johannsen/raidloot/internal/game/weighted"
)

// StaticPopulator chooses which static containers spawn on a map and fills them.
//
// A StaticPopulator serves one generation pass and is not safe for concurrent use.
type StaticPopulator struct {
	env    *Context
	src    dice.Source
	asm    *assembler.Assembler
	policy assembler.Policy
	season seasonal
	money  []string
	stats  Stats
}

// NewStaticPopulator creates a populator drawing from src.
//
// Precondition: env and src must be non-nil.
func NewStaticPopulator(env *Context, src dice.Source, seasonalActive bool) *StaticPopulator {
	return &StaticPopulator{
		env:    env,
		src:    src,
		asm:    env.assembler(src),
		policy: env.Policy(),
		season: newSeasonal(env.Loot.Seasonal, seasonalActive),
		money:  env.Catalog.ByKind(catalog.KindMoney),
	}
}

// Stats returns the counters accumulated by Populate.
func (p *StaticPopulator) Stats() Stats { return p.stats }

// Populate returns the map's static weapons and every spawned, filled container.
//
// Precondition: data passed Validate.
// Postcondition: returns a non-nil error only when ctx is done. No two items
// placed in the same container overlap.
func (p *StaticPopulator) Populate(ctx context.Context, data *Data, ammo catalog.AmmoDistribution) ([]SpawnedLoot, error) {
	out := make([]SpawnedLoot, 0, len(data.StaticWeapons)+len(data.StaticContainers))
	for _, w := range data.StaticWeapons {
		w.Items = w.Items.Clone()
		p.stats.Items += w.ItemCount()
		out = append(out, w)
	}

	var guaranteed, randomisable []StaticContainer
	for _, c := range data.StaticContainers {
		if p.season.excludesContainer(c.Tpl) {
			continue
		}
		if p.isGuaranteed(c) {
			guaranteed = append(guaranteed, c)
		} else {
			randomisable = append(randomisable, c)
		}
	}

	chosen := guaranteed
	if p.env.Loot.RandomiseContainers(data.ID) {
		chosen = append(chosen, p.chooseContainers(data, randomisable)...)
	} else {
		chosen = append(chosen, randomisable...)
	}

	forced := make(map[string][]string)
	for _, f := range data.StaticForced {
		forced[f.ContainerID] = append(forced[f.ContainerID], f.Tpl)
	}

	for _, c := range chosen {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		loot, ok := p.fill(c, data, ammo, forced[c.ID])
		if !ok {
			p.stats.Skipped++
			continue
		}
		p.stats.Spawned++
		p.stats.Items += loot.ItemCount()
		out = append(out, loot)
	}
	return out, nil
}

func (p *StaticPopulator) isGuaranteed(c StaticContainer) bool {
	return c.Probability >= 1 || c.AlwaysSpawn ||
		slices.Contains(p.env.Loot.ContainerRandomisation.ContainerTypesToNotRandomise, c.Tpl)
}

type groupBucket struct {
	target int
	pool   *weighted.Pool[string, StaticContainer]
}

// chooseContainers applies group spawn policy to the randomisable containers.
func (p *StaticPopulator) chooseContainers(data *Data, containers []StaticContainer) []StaticContainer {
	cr := p.env.Loot.ContainerRandomisation
	groupIDs := make([]string, 0, len(data.ContainerGroups))
	for id := range data.ContainerGroups {
		groupIDs = append(groupIDs, id)
	}
	slices.Sort(groupIDs)

	buckets := make(map[string]*groupBucket, len(groupIDs))
	for _, id := range groupIDs {
		g := data.ContainerGroups[id]
		if g.MinContainers < 0 || g.MaxContainers < g.MinContainers {
			p.env.Logger.Warn("malformed container group, no containers will spawn from it",
				zap.String("location", data.ID), zap.String("group", id),
				zap.Int("min", g.MinContainers), zap.Int("max", g.MaxContainers))
			buckets[id] = &groupBucket{pool: weighted.New[string, StaticContainer]()}
			continue
		}
		lo := int(math.Round(float64(g.MinContainers) * cr.ContainerGroupMinSizeMultiplier))
		hi := int(math.Round(float64(g.MaxContainers) * cr.ContainerGroupMaxSizeMultiplier))
		buckets[id] = &groupBucket{
			target: dice.IntBetween(p.src, lo, hi),
			pool:   weighted.New[string, StaticContainer](),
		}
	}

	ungrouped := weighted.New[string, StaticContainer]()
	for _, c := range containers {
		m, ok := data.ContainerMembership[c.ID]
		if !ok {
			p.env.Logger.Warn("container has no group membership, skipping",
				zap.String("location", data.ID), zap.String("container", c.ID))
			p.stats.Skipped++
			continue
		}
		b, known := buckets[m.GroupID]
		if m.GroupID == "" || !known {
			ungrouped.Push(c.ID, c.Probability, c)
			continue
		}
		b.pool.Push(c.ID, c.Probability, c)
	}

	var chosen []StaticContainer
	// Containers without usable group data are known-bad upstream data. They
	// do not share a quota; each rolls its own probability.
	for _, e := range ungrouped.Entries() {
		if dice.Chance100(p.src, e.Weight*100) {
			chosen = append(chosen, e.Data)
		}
	}

	for _, id := range groupIDs {
		b := buckets[id]
		if b.target <= 0 || b.pool.Len() == 0 {
			continue
		}
		if b.target >= b.pool.Len() {
			for _, e := range b.pool.Entries() {
				chosen = append(chosen, e.Data)
			}
			continue
		}
		for _, key := range b.pool.Draw(p.src, b.target, false) {
			c, _ := b.pool.Data(key)
			chosen = append(chosen, c)
		}
	}
	return chosen
}

// fill creates a container instance with a fresh root id and packs loot into it.
// ok is false when the container itself cannot be built.
func (p *StaticPopulator) fill(c StaticContainer, data *Data, ammo catalog.AmmoDistribution, forced []string) (SpawnedLoot, bool) {
	log := p.env.Logger.With(zap.String("location", data.ID), zap.String("container", c.ID), zap.String("tpl", c.Tpl))
	tpl, err := p.env.Catalog.Get(c.Tpl)
	if err != nil {
		log.Warn("container template not found", zap.Error(err))
		return SpawnedLoot{}, false
	}
	if len(tpl.Grids) == 0 {
		log.Warn("container template has no grid")
		return SpawnedLoot{}, false
	}
	g := grid.New(tpl.Grids[0].Width, tpl.Grids[0].Height)
	rootID := p.env.Minter.NewID()
	loot := SpawnedLoot{
		ID:          c.ID,
		Root:        rootID,
		IsContainer: true,
		Position:    c.Position,
		Rotation:    c.Rotation,
		Items:       item.Tree{{ID: rootID, Tpl: c.Tpl}},
	}

	var drawn []string
	if dist, ok := data.StaticLoot[c.Tpl]; ok {
		count := p.itemCount(dist, data.ID)
		pool := p.itemPool(dist)
		if count > 0 && pool.Len() > 0 {
			drawn = pool.Draw(p.src, count, p.env.Loot.AllowDuplicateItemsInStaticContainers, p.money...)
		}
	} else {
		log.Warn("no static loot distribution for container type")
	}
	drawn = slices.DeleteFunc(drawn, func(t string) bool { return slices.Contains(forced, t) })
	tpls := append(slices.Clone(forced), drawn...)

	budget := p.env.Loot.BudgetFor(c.Tpl)
	spent, failures := 0, 0
	for _, t := range tpls {
		if budget > 0 && spent >= budget {
			log.Debug("container budget reached", zap.Int("budget", budget), zap.Int("spent", spent))
			break
		}
		res, err := p.asm.Assemble(t, ammo, p.policy)
		if err != nil {
			log.Warn("skipping item that could not be assembled", zap.String("item", t), zap.Error(err))
			p.stats.Skipped++
			continue
		}
		slot, ok := g.FindFreeSlot(res.Width, res.Height)
		if !ok {
			p.stats.FitFailures++
			// One counter is shared by every item of this fill.
			if failures >= p.env.Loot.FitLootIntoContainerAttempts {
				log.Debug("fit attempts exhausted", zap.Int("attempts", failures))
				break
			}
			failures++
			continue
		}
		g.Commit(slot, res.Width, res.Height)
		place(res.Items, rootID, slot)
		loot.Items = append(loot.Items, res.Items...)
		spent += p.env.Catalog.TreePrice(res.Items)
	}
	return loot, true
}

// itemCount draws an item count scaled by the location's static multiplier.
func (p *StaticPopulator) itemCount(dist StaticLootDistribution, location string) int {
	pool := weighted.New[int, struct{}]()
	for _, cw := range dist.ItemCountDistribution {
		pool.Push(cw.Count, cw.RelativeProbability)
	}
	count, ok := pool.DrawOne(p.src)
	if !ok {
		return 0
	}
	return int(math.Round(p.env.Loot.StaticMultiplier(location) * float64(count)))
}

// itemPool builds the item distribution without inactive seasonal items.
func (p *StaticPopulator) itemPool(dist StaticLootDistribution) *weighted.Pool[string, struct{}] {
	pool := weighted.New[string, struct{}]()
	for _, tw := range dist.ItemDistribution {
		if p.season.excludesItem(tw.Tpl) {
			continue
		}
		pool.Push(tw.Tpl, tw.RelativeProbability)
	}
	return pool
}

// place parents an assembled tree's root into a container grid slot.
func place(tree item.Tree, containerID string, slot grid.Slot) {
	r := item.Horizontal
	if slot.Rotated {
		r = item.Vertical
	}
	tree[0].ParentID = containerID
	tree[0].SlotID = item.SlotMain
	tree[0].Location = &item.Location{X: slot.X, Y: slot.Y, R: r}
}
