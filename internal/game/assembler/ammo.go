package assembler

import (
	"fmt"
	"slices"

	"go.uber.org/zap"

	"github.com/cory-johannsen/raidloot/internal/game/catalog"
	"github.com/cory-johannsen/raidloot/internal/game/dice"
	"github.com/cory-johannsen/raidloot/internal/game/item"
	"github.com/cory-johannsen/raidloot/internal/game/weighted"
)

// ammoBox builds an ammo box root plus cartridge stacks filling its capacity.
// The first stack carries no index.
func (a *Assembler) ammoBox(t *catalog.Template) item.Tree {
	root := item.Item{ID: a.minter.NewID(), Tpl: t.ID}
	tree := item.Tree{root}
	if t.StackSlots == nil || len(t.StackSlots.Filter) == 0 {
		a.logger.Warn("ammo box has no cartridge definition", zap.String("tpl", t.ID))
		return tree
	}
	cartridge := t.StackSlots.Filter[0]
	stackMax := t.StackSlots.MaxCount
	if ct, ok := a.catalog.Template(cartridge); ok && ct.StackMaxSize > 0 {
		stackMax = ct.StackMaxSize
	}
	for i, remaining := 0, t.StackSlots.MaxCount; remaining > 0; i++ {
		n := min(remaining, stackMax)
		child := item.Item{
			ID:       a.minter.NewID(),
			Tpl:      cartridge,
			ParentID: root.ID,
			SlotID:   item.SlotCartridges,
			Upd:      &item.Upd{StackObjectsCount: n},
		}
		if i > 0 {
			idx := i
			child.StackIndex = &idx
		}
		tree = append(tree, child)
		remaining -= n
	}
	return tree
}

// fillMagazine returns cartridge children for the magazine magID. When
// caliber is empty one is picked from the calibers the magazine accepts.
// weapon, when non-nil, supplies the chamber whitelist and fallback ammo.
//
// Postcondition: the cartridge count is in [round(minFillPercent% of
// capacity), capacity], or zero when no cartridge could be chosen.
func (a *Assembler) fillMagazine(magID string, mag *catalog.Template, caliber string, weapon *catalog.Template, ammo catalog.AmmoDistribution, minFillPercent float64, policy Policy) []item.Item {
	capacity := mag.MagazineCapacity()
	if capacity <= 0 {
		return nil
	}
	if caliber == "" {
		calibers := a.catalog.CalibersOf(mag.CartridgeFilter())
		if len(calibers) == 0 {
			a.logger.Debug("magazine accepts no known caliber", zap.String("tpl", mag.ID))
			return nil
		}
		caliber = calibers[a.src.Intn(len(calibers))]
	}
	if alias, ok := policy.CaliberAliases[caliber]; ok {
		caliber = alias
	}

	var fallback string
	whitelist := mag.CartridgeFilter()
	if weapon != nil {
		fallback = weapon.DefaultAmmo
		if chamber := weapon.ChamberFilter(); len(chamber) > 0 {
			whitelist = chamber
		}
	}
	if fallback == "" {
		fallback = a.firstOfCaliber(mag.CartridgeFilter(), caliber)
	}
	cartridge, err := a.drawCartridge(caliber, ammo, fallback, whitelist, policy)
	if err != nil {
		a.logger.Debug("magazine left empty", zap.String("tpl", mag.ID), zap.Error(err))
		return nil
	}

	count := dice.IntBetween(a.src, percentOf(minFillPercent, capacity), capacity)
	return a.cartridges(magID, mag, cartridge, count)
}

// cartridges splits count rounds of tpl into children of magID. Cylinders
// get one round per camora slot; box magazines get indexed stacks no larger
// than the cartridge's stack size.
func (a *Assembler) cartridges(magID string, mag *catalog.Template, tpl string, count int) []item.Item {
	var out []item.Item
	if mag.IsCylinder() {
		for i := 0; i < count && i < len(mag.Slots); i++ {
			out = append(out, item.Item{
				ID:       a.minter.NewID(),
				Tpl:      tpl,
				ParentID: magID,
				SlotID:   item.SlotID(mag.Slots[i].Name),
				Upd:      &item.Upd{StackObjectsCount: 1},
			})
		}
		return out
	}
	stackMax := count
	if ct, ok := a.catalog.Template(tpl); ok && ct.StackMaxSize > 0 {
		stackMax = ct.StackMaxSize
	}
	for i, remaining := 0, count; remaining > 0; i++ {
		n := min(remaining, stackMax)
		idx := i
		out = append(out, item.Item{
			ID:         a.minter.NewID(),
			Tpl:        tpl,
			ParentID:   magID,
			SlotID:     item.SlotCartridges,
			StackIndex: &idx,
			Upd:        &item.Upd{StackObjectsCount: n},
		})
		remaining -= n
	}
	return out
}

// drawCartridge picks a cartridge for caliber from the ammo distribution,
// restricted to whitelist when it is non-empty. fallback is used when the
// distribution has nothing usable.
func (a *Assembler) drawCartridge(caliber string, ammo catalog.AmmoDistribution, fallback string, whitelist []string, policy Policy) (string, error) {
	pool := weighted.New[string, struct{}]()
	for _, e := range ammo.ForCaliber(caliber, policy.CaliberAliases) {
		if len(whitelist) > 0 && !slices.Contains(whitelist, e.Tpl) {
			continue
		}
		pool.Push(e.Tpl, e.RelativeProbability)
	}
	if tpl, ok := pool.DrawOne(a.src); ok {
		return tpl, nil
	}
	if fallback != "" {
		a.logger.Debug("no ammo distribution entry, using fallback cartridge",
			zap.String("caliber", caliber), zap.String("cartridge", fallback))
		return fallback, nil
	}
	return "", fmt.Errorf("%w: %q", ErrNoCartridge, caliber)
}

// firstOfCaliber returns the first template in filter whose caliber matches.
func (a *Assembler) firstOfCaliber(filter []string, caliber string) string {
	for _, tpl := range filter {
		if t, ok := a.catalog.Template(tpl); ok && t.Caliber == caliber {
			return tpl
		}
	}
	return ""
}
