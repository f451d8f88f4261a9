package assembler

import (
	"go.uber.org/zap"

	"github.com/cory-johannsen/raidloot/internal/game/catalog"
	"github.com/cory-johannsen/raidloot/internal/game/item"
)

// weapon assembles a weapon from its default preset, or from its required
// slots when it has no preset, then loads its magazine and any sub-weapons.
func (a *Assembler) weapon(t *catalog.Template, ammo catalog.AmmoDistribution, policy Policy) (item.Tree, error) {
	rootID := a.minter.NewID()
	var tree item.Tree
	if preset, ok := a.catalog.DefaultPreset(t.ID); ok {
		tree = item.Reparent(preset.Items, rootID, "", "", a.minter)
	} else if len(t.Slots) > 0 {
		a.logger.Debug("weapon has no preset, synthesising required slots", zap.String("tpl", t.ID))
		tree = item.Tree{{ID: rootID, Tpl: t.ID}}
		tree = append(tree, a.slotChildren(rootID, t, true, policy)...)
	} else {
		return nil, &MissingPresetError{Tpl: t.ID}
	}

	tree = a.loadWeapon(tree, rootID, t, ammo, policy, false)
	// Underbarrel launchers and other nested weapons carry their own ammo.
	nested := tree[1:].Clone()
	for _, child := range nested {
		ct, ok := a.catalog.Template(child.Tpl)
		if !ok || ct.Kind() != catalog.KindWeapon {
			continue
		}
		tree = a.loadWeapon(tree, child.ID, ct, ammo, policy, true)
	}
	return tree, nil
}

// loadWeapon fills the magazine mounted on weaponID. When chamber is true and
// the weapon has no magazine, a single round is chambered instead.
func (a *Assembler) loadWeapon(tree item.Tree, weaponID string, t *catalog.Template, ammo catalog.AmmoDistribution, policy Policy, chamber bool) item.Tree {
	if mag, ok := tree.InSlot(weaponID, item.SlotMagazine); ok {
		magTpl, ok := a.catalog.Template(mag.Tpl)
		if !ok {
			a.logger.Warn("weapon magazine template not found",
				zap.String("weapon", t.ID), zap.String("tpl", mag.Tpl))
			return tree
		}
		if magTpl.Kind() != catalog.KindMagazine || len(tree.Children(mag.ID)) > 0 {
			return tree
		}
		return append(tree, a.fillMagazine(mag.ID, magTpl, t.AmmoCaliber, t, ammo, policy.WeaponMagazineMinFillPercent, policy)...)
	}
	if !chamber || len(t.Chambers) == 0 {
		return tree
	}
	if _, loaded := tree.InSlot(weaponID, item.SlotChamber); loaded {
		return tree
	}
	caliber := t.AmmoCaliber
	if alias, ok := policy.CaliberAliases[caliber]; ok {
		caliber = alias
	}
	cartridge, err := a.drawCartridge(caliber, ammo, t.DefaultAmmo, t.ChamberFilter(), policy)
	if err != nil {
		a.logger.Debug("chamber left empty", zap.String("tpl", t.ID), zap.Error(err))
		return tree
	}
	return append(tree, item.Item{
		ID:       a.minter.NewID(),
		Tpl:      cartridge,
		ParentID: weaponID,
		SlotID:   item.SlotChamber,
		Upd:      &item.Upd{StackObjectsCount: 1},
	})
}
