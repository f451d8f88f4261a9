package assembler

import (
	"math"
	"strings"

	"go.uber.org/zap"

	"github.com/cory-johannsen/raidloot/internal/game/catalog"
	"github.com/cory-johannsen/raidloot/internal/game/dice"
	"github.com/cory-johannsen/raidloot/internal/game/item"
)

// armor assembles an armored item from its default preset, or synthesises
// its plates and inserts from the slot filters.
func (a *Assembler) armor(t *catalog.Template, policy Policy) item.Tree {
	rootID := a.minter.NewID()
	if preset, ok := a.catalog.DefaultPreset(t.ID); ok {
		return item.Reparent(preset.Items, rootID, "", "", a.minter)
	}
	tree := item.Tree{{ID: rootID, Tpl: t.ID}}
	return append(tree, a.slotChildren(rootID, t, false, policy)...)
}

// slotChildren picks one template per slot of t. Required slots are always
// filled; optional slots are skipped when requiredOnly is set, otherwise
// rolled against the slot's spawn chance. Templates conflicting with the
// host or an earlier pick are never chosen. Children with durability get a
// value inside the configured band.
func (a *Assembler) slotChildren(parentID string, t *catalog.Template, requiredOnly bool, policy Policy) []item.Item {
	excluded := make(map[string]bool, len(t.ConflictingItems))
	for _, c := range t.ConflictingItems {
		excluded[c] = true
	}
	var out []item.Item
	for _, slot := range t.Slots {
		if !slot.Required {
			if requiredOnly {
				continue
			}
			if chance, ok := modChance(policy, slot.Name); ok && !dice.Chance100(a.src, chance) {
				continue
			}
		}
		var options []*catalog.Template
		for _, tpl := range slot.Filter {
			if excluded[tpl] {
				continue
			}
			if ct, ok := a.catalog.Template(tpl); ok {
				options = append(options, ct)
			}
		}
		if len(options) == 0 {
			if slot.Required {
				a.logger.Warn("required slot has no usable template",
					zap.String("tpl", t.ID), zap.String("slot", slot.Name))
			}
			continue
		}
		chosen := options[a.src.Intn(len(options))]
		for _, c := range chosen.ConflictingItems {
			excluded[c] = true
		}
		child := item.Item{
			ID:       a.minter.NewID(),
			Tpl:      chosen.ID,
			ParentID: parentID,
			SlotID:   item.SlotID(slot.Name),
		}
		if chosen.MaxDurability > 0 {
			child.Upd = &item.Upd{Repairable: a.durability(chosen.MaxDurability, policy)}
		}
		out = append(out, child)
	}
	return out
}

func modChance(policy Policy, slot string) (float64, bool) {
	if c, ok := policy.ModSpawnChancePercent[slot]; ok {
		return c, true
	}
	c, ok := policy.ModSpawnChancePercent[strings.ToLower(slot)]
	return c, ok
}

// durability rolls a durability in the policy band, rounded to two decimals.
func (a *Assembler) durability(maxDurability float64, policy Policy) *item.Repairable {
	lo, hi := policy.ArmorDurabilityMinPercent, policy.ArmorDurabilityMaxPercent
	if hi <= 0 {
		lo, hi = 100, 100
	}
	pct := dice.FloatBetween(a.src, lo, hi)
	d := math.Round(maxDurability*pct) / 100
	return &item.Repairable{Durability: min(d, maxDurability), MaxDurability: maxDurability}
}
