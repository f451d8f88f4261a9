// Package assembler builds fully hydrated item trees from template ids:
// stacked money and ammo, filled ammo boxes and magazines, weapons from
// their default presets with loaded magazines and launchers, and armor with
// synthesised plates and inserts.
package assembler

import (
	"fmt"
	"math"
	"slices"

	"go.uber.org/zap"

	"github.com/cory-johannsen/raidloot/internal/game/catalog"
	"github.com/cory-johannsen/raidloot/internal/game/dice"
	"github.com/cory-johannsen/raidloot/internal/game/item"
)

// Policy holds the fill parameters applied while assembling.
type Policy struct {
	// MagazineAmmoChancePercent is the chance a loose magazine is loaded.
	MagazineAmmoChancePercent float64
	// MinFillMagazinePercent is the lower fill bound for loose magazines.
	MinFillMagazinePercent float64
	// WeaponMagazineMinFillPercent is the lower fill bound for a weapon's magazine.
	WeaponMagazineMinFillPercent float64
	// ModSpawnChancePercent maps a lower-case slot name to the chance an
	// optional armor slot is populated. Slots without an entry always spawn.
	ModSpawnChancePercent map[string]float64
	// ArmorDurabilityMinPercent and ArmorDurabilityMaxPercent bound the
	// durability rolled for synthesised armor children.
	ArmorDurabilityMinPercent float64
	ArmorDurabilityMaxPercent float64
	// CaliberAliases corrects known caliber typos before ammo lookup.
	CaliberAliases map[string]string
	// StripChildrenTpls lists templates whose spawn-point children are dropped.
	StripChildrenTpls []string
}

// DefaultPolicy returns the fill parameters used when no configuration overrides them.
func DefaultPolicy() Policy {
	return Policy{
		MagazineAmmoChancePercent:    50,
		MinFillMagazinePercent:       25,
		WeaponMagazineMinFillPercent: 25,
		ArmorDurabilityMinPercent:    70,
		ArmorDurabilityMaxPercent:    100,
		CaliberAliases:               map[string]string{"Caliber9x18PMM": "Caliber9x18PM"},
	}
}

// Result is an assembled item tree and its inventory footprint.
type Result struct {
	Items  item.Tree
	Width  int
	Height int
}

// RootID returns the id of the assembled root item.
func (r Result) RootID() string { return r.Items.Root().ID }

// Assembler turns template ids into composed item trees.
//
// An Assembler is bound to one generation pass: it shares that pass's
// randomness source and is not safe for concurrent use.
type Assembler struct {
	catalog *catalog.Catalog
	minter  item.IDMinter
	src     dice.Source
	logger  *zap.Logger
}

// New creates an Assembler.
//
// Precondition: c, minter, src and logger must be non-nil.
func New(c *catalog.Catalog, minter item.IDMinter, src dice.Source, logger *zap.Logger) *Assembler {
	return &Assembler{catalog: c, minter: minter, src: src, logger: logger}
}

// Assemble builds a new item tree rooted at a freshly minted id for tpl.
//
// Precondition: ammo may be nil; policy percentages are in [0, 100].
// Postcondition: on success result.Items.Validate() == nil and every id in
// the tree is newly minted. Returns an error wrapping
// catalog.ErrTemplateNotFound for unknown templates and a *MissingPresetError
// for weapons that can be neither loaded from a preset nor synthesised.
func (a *Assembler) Assemble(tpl string, ammo catalog.AmmoDistribution, policy Policy) (Result, error) {
	t, err := a.catalog.Get(tpl)
	if err != nil {
		return Result{}, fmt.Errorf("assemble: %w", err)
	}
	var tree item.Tree
	switch t.Kind() {
	case catalog.KindMoney, catalog.KindAmmo:
		tree = item.Tree{a.stack(t)}
	case catalog.KindAmmoBox:
		tree = a.ammoBox(t)
	case catalog.KindMagazine:
		root := item.Item{ID: a.minter.NewID(), Tpl: t.ID}
		tree = item.Tree{root}
		if dice.Chance100(a.src, policy.MagazineAmmoChancePercent) {
			tree = append(tree, a.fillMagazine(root.ID, t, "", nil, ammo, policy.MinFillMagazinePercent, policy)...)
		}
	case catalog.KindWeapon:
		tree, err = a.weapon(t, ammo, policy)
		if err != nil {
			return Result{}, err
		}
	case catalog.KindArmor:
		tree = a.armor(t, policy)
	case catalog.KindNode:
		return Result{}, fmt.Errorf("assemble: template %q is a node, not an item", tpl)
	default:
		tree = item.Tree{{ID: a.minter.NewID(), Tpl: t.ID}}
	}
	return a.result(tree), nil
}

// AssembleFromTree builds an item from a pre-composed candidate tree, as
// carried by a loose-loot spawn point. Money, ammo, ammo boxes and magazines
// are regenerated from their template; everything else is copied with fresh
// ids, children included unless the template is in policy.StripChildrenTpls.
//
// Postcondition: on success the candidates are unchanged and
// result.Items.Validate() == nil.
func (a *Assembler) AssembleFromTree(rootID string, candidates item.Tree, ammo catalog.AmmoDistribution, policy Policy) (Result, error) {
	chosen, ok := candidates.ByID(rootID)
	if !ok {
		return Result{}, fmt.Errorf("assemble: %w: %q", ErrCandidateNotFound, rootID)
	}
	t, err := a.catalog.Get(chosen.Tpl)
	if err != nil {
		return Result{}, fmt.Errorf("assemble: %w", err)
	}
	switch t.Kind() {
	case catalog.KindMoney, catalog.KindAmmo, catalog.KindAmmoBox, catalog.KindMagazine:
		return a.Assemble(t.ID, ammo, policy)
	}
	sub := candidates.Subtree(rootID)
	if slices.Contains(policy.StripChildrenTpls, t.ID) {
		sub = sub[:1]
	}
	tree := item.ReplaceIDs(sub, a.minter)
	tree[0].ParentID = ""
	tree[0].SlotID = ""
	tree[0].Location = nil
	return a.result(tree), nil
}

func (a *Assembler) result(tree item.Tree) Result {
	w, h := a.catalog.ItemSize(tree, tree.Root().ID)
	return Result{Items: tree, Width: w, Height: h}
}

// stack builds a single money or ammo node with a randomised stack count.
func (a *Assembler) stack(t *catalog.Template) item.Item {
	count := 1
	if t.StackMaxSize != 1 && t.StackMaxRandom > 0 {
		count = max(dice.IntBetween(a.src, t.StackMinRandom, t.StackMaxRandom), 1)
	}
	return item.Item{ID: a.minter.NewID(), Tpl: t.ID, Upd: &item.Upd{StackObjectsCount: count}}
}

// percentOf returns round(percent% of n).
func percentOf(percent float64, n int) int {
	return int(math.Round(percent / 100 * float64(n)))
}
