package location

import (
	"go.uber.org/zap"

	"github.com/cory-johannsen/raidloot/internal/config"
	"github.com/cory-johannsen/raidloot/internal/game/assembler"
	"github.com/cory-johannsen/raidloot/internal/game/catalog"
	"github.com/cory-johannsen/raidloot/internal/game/dice"
	"github.com/cory-johannsen/raidloot/internal/game/item"
)

// Context carries the read-only collaborators every populator needs.
//
// Invariant: a Context is never mutated after construction and may be
// shared by concurrent generation calls.
type Context struct {
	Catalog *catalog.Catalog
	Loot    config.LootConfig
	Minter  item.IDMinter
	Logger  *zap.Logger
}

// NewContext builds a Context with a UUID minter.
//
// Precondition: c and logger must be non-nil.
func NewContext(c *catalog.Catalog, loot config.LootConfig, logger *zap.Logger) *Context {
	return &Context{Catalog: c, Loot: loot, Minter: item.NewUUIDMinter(), Logger: logger}
}

// Policy derives the assembler fill policy from the loot configuration.
func (c *Context) Policy() assembler.Policy {
	l := c.Loot
	return assembler.Policy{
		MagazineAmmoChancePercent:    l.MagazineLootHasAmmoChancePercent,
		MinFillMagazinePercent:       l.MinFillLooseMagazinePercent,
		WeaponMagazineMinFillPercent: l.MinFillWeaponMagazinePercent,
		ModSpawnChancePercent:        l.ModSpawnChancePercent,
		ArmorDurabilityMinPercent:    l.ArmorDurability.MinPercent,
		ArmorDurabilityMaxPercent:    l.ArmorDurability.MaxPercent,
		CaliberAliases:               l.AliasMap(),
		StripChildrenTpls:            l.TplsToStripChildItemsFrom,
	}
}

func (c *Context) assembler(src dice.Source) *assembler.Assembler {
	return assembler.New(c.Catalog, c.Minter, src, c.Logger)
}

// seasonal filters event-only content while the event is inactive.
type seasonal struct {
	active     bool
	items      map[string]bool
	containers map[string]bool
}

func newSeasonal(cfg config.SeasonalConfig, active bool) seasonal {
	s := seasonal{active: active, items: map[string]bool{}, containers: map[string]bool{}}
	for _, tpl := range cfg.ItemTpls {
		s.items[tpl] = true
	}
	for _, tpl := range cfg.ContainerTpls {
		s.containers[tpl] = true
	}
	return s
}

func (s seasonal) excludesItem(tpl string) bool      { return !s.active && s.items[tpl] }
func (s seasonal) excludesContainer(tpl string) bool { return !s.active && s.containers[tpl] }
