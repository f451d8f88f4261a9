package location

import (
	"fmt"
	"slices"
	"strings"

	"go.uber.org/zap"

	"github.com/cory-johannsen/raidloot/internal/config"
	"github.com/cory-johannsen/raidloot/internal/game/assembler"
	"github.com/cory-johannsen/raidloot/internal/game/catalog"
	"github.com/cory-johannsen/raidloot/internal/game/dice"
	"github.com/cory-johannsen/raidloot/internal/game/grid"
	"github.com/cory-johannsen/raidloot/internal/game/item"
	"github.com/cory-johannsen/raidloot/internal/game/weighted"
)

// maxCrateDraws bounds reward draws when a crate has a budget but no item cap.
const maxCrateDraws = 256

// CratePolicy describes how one crate is filled.
type CratePolicy struct {
	ContainerTpl    string
	ItemCountMin    int
	ItemCountMax    int
	Budget          int
	Rewards         []TplWeight
	AllowDuplicates bool
}

// CratePolicyFrom converts a configured crate. Rewards are ordered by
// template id so draws are reproducible.
func CratePolicyFrom(cfg config.CrateConfig) CratePolicy {
	rewards := make([]TplWeight, 0, len(cfg.Rewards))
	for _, r := range cfg.Rewards {
		rewards = append(rewards, TplWeight{Tpl: r.Tpl, RelativeProbability: r.Weight})
	}
	slices.SortStableFunc(rewards, func(a, b TplWeight) int { return strings.Compare(a.Tpl, b.Tpl) })
	return CratePolicy{
		ContainerTpl:    cfg.ContainerTpl,
		ItemCountMin:    cfg.ItemCountMin,
		ItemCountMax:    cfg.ItemCountMax,
		Budget:          cfg.Budget,
		Rewards:         rewards,
		AllowDuplicates: cfg.AllowDuplicates,
	}
}

// CrateFiller fills single crates from a weighted reward pool under a rouble budget.
//
// A CrateFiller serves one generation pass and is not safe for concurrent use.
type CrateFiller struct {
	env    *Context
	src    dice.Source
	asm    *assembler.Assembler
	policy assembler.Policy
}

// NewCrateFiller creates a filler drawing from src.
func NewCrateFiller(env *Context, src dice.Source) *CrateFiller {
	return &CrateFiller{env: env, src: src, asm: env.assembler(src), policy: env.Policy()}
}

// Fill draws rewards until the budget is met or the item count is reached,
// drops rewards from the end until the rest fit the crate grid, and packs them.
//
// Postcondition: the summed reward price exceeds a non-zero budget by at most
// the price of the last reward. When the reward pool is empty the empty crate
// is returned together with an error wrapping ErrEmptyPool.
func (f *CrateFiller) Fill(crate CratePolicy, ammo catalog.AmmoDistribution) (SpawnedLoot, error) {
	tpl, err := f.env.Catalog.Get(crate.ContainerTpl)
	if err != nil {
		return SpawnedLoot{}, fmt.Errorf("crate: %w", err)
	}
	if len(tpl.Grids) == 0 {
		return SpawnedLoot{}, fmt.Errorf("crate: template %q has no grid", tpl.ID)
	}
	rootID := f.env.Minter.NewID()
	loot := SpawnedLoot{ID: rootID, Root: rootID, IsContainer: true, Items: item.Tree{{ID: rootID, Tpl: tpl.ID}}}

	pool := weighted.New[string, struct{}]()
	for _, r := range crate.Rewards {
		if _, ok := f.env.Catalog.Template(r.Tpl); !ok {
			f.env.Logger.Warn("crate reward template not found", zap.String("tpl", r.Tpl))
			continue
		}
		pool.Push(r.Tpl, r.RelativeProbability)
	}

	if pool.TotalWeight() <= 0 {
		return loot, fmt.Errorf("crate %q: %w", tpl.ID, ErrEmptyPool)
	}

	limit := maxCrateDraws
	if crate.ItemCountMax > 0 {
		limit = dice.IntBetween(f.src, crate.ItemCountMin, crate.ItemCountMax)
	}
	var rewards []assembler.Result
	spent := 0
	for len(rewards) < limit && (crate.Budget <= 0 || spent < crate.Budget) {
		tplID, ok := pool.DrawOne(f.src)
		if !ok {
			break
		}
		if !crate.AllowDuplicates {
			pool = pool.Drop(tplID)
		}
		res, err := f.asm.Assemble(tplID, ammo, f.policy)
		if err != nil {
			f.env.Logger.Warn("skipping crate reward that could not be assembled", zap.String("tpl", tplID), zap.Error(err))
			continue
		}
		rewards = append(rewards, res)
		spent += f.env.Catalog.TreePrice(res.Items)
	}
	g := grid.New(tpl.Grids[0].Width, tpl.Grids[0].Height)
	sizes := make([]grid.Size, len(rewards))
	for i, r := range rewards {
		sizes[i] = grid.Size{Width: r.Width, Height: r.Height}
	}
	for len(sizes) > 0 && !g.FitAll(sizes) {
		sizes = sizes[:len(sizes)-1]
		rewards = rewards[:len(rewards)-1]
	}
	for _, r := range rewards {
		slot, ok := g.FindFreeSlot(r.Width, r.Height)
		if !ok {
			break
		}
		g.Commit(slot, r.Width, r.Height)
		place(r.Items, rootID, slot)
		loot.Items = append(loot.Items, r.Items...)
	}
	return loot, nil
}
