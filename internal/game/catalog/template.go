// Package catalog provides the read-only item template catalog: template
// definitions, base-class lookups, default presets, inventory size
// computation, and loaders for YAML and JSON content.
package catalog

import (
	"errors"
	"fmt"
)

// Type constants for Template.Type.
const (
	TypeItem = "item"
	TypeNode = "node"
)

// BaseClass identifies a node template in the parent chain.
type BaseClass string

// Well-known base classes the engine dispatches on.
const (
	BaseMoney               BaseClass = "543be5dd4bdc2deb348b4569"
	BaseAmmo                BaseClass = "5485a8684bdc2da71d8b4567"
	BaseAmmoBox             BaseClass = "543be5cb4bdc2deb348b4568"
	BaseMagazine            BaseClass = "5448bc234bdc2d3c308b4569"
	BaseCylinderMagazine    BaseClass = "610720f290b2c3300a7c2d6b"
	BaseWeapon              BaseClass = "5422acb9af1c889c16000029"
	BaseArmor               BaseClass = "5448e54d4bdc2dcc718b4568"
	BaseVest                BaseClass = "5448e5284bdc2dcb718b4567"
	BaseHeadwear            BaseClass = "5a341c4086f77401f2541505"
	BaseArmorPlate          BaseClass = "644120aa86ffbe10ee032b6f"
	BaseBackpack            BaseClass = "5448e53e4bdc2d60728b4567"
	BaseSearchableItem      BaseClass = "566168634bdc2d144c8b456c"
	BaseSimpleContainer     BaseClass = "5795f317245977243854e041"
	BaseLootContainer       BaseClass = "566965d44bdc2d814c8b4571"
	BaseStationaryContainer BaseClass = "567583764bdc2d98058b456e"
)

// Kind is the dispatch tag the assembler switches on. It is computed once per
// template when the catalog is built.
type Kind int

const (
	KindOther Kind = iota
	KindNode
	KindMoney
	KindAmmo
	KindAmmoBox
	KindMagazine
	KindWeapon
	KindArmor
	KindContainer
)

var kindNames = map[Kind]string{
	KindOther:     "other",
	KindNode:      "node",
	KindMoney:     "money",
	KindAmmo:      "ammo",
	KindAmmoBox:   "ammo_box",
	KindMagazine:  "magazine",
	KindWeapon:    "weapon",
	KindArmor:     "armor",
	KindContainer: "container",
}

// String returns the lower-case kind name.
func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// ExtraSize is the footprint a mod adds to its host item.
type ExtraSize struct {
	Left     int  `yaml:"left" json:"left"`
	Right    int  `yaml:"right" json:"right"`
	Up       int  `yaml:"up" json:"up"`
	Down     int  `yaml:"down" json:"down"`
	ForceAdd bool `yaml:"force_add" json:"force_add"`
}

// Slot is a child socket definition.
type Slot struct {
	Name     string   `yaml:"name" json:"name"`
	Required bool     `yaml:"required" json:"required"`
	Filter   []string `yaml:"filter" json:"filter"`
}

// Capacity is a cartridge holder definition (magazine or ammo box).
type Capacity struct {
	MaxCount int      `yaml:"max_count" json:"max_count"`
	Filter   []string `yaml:"filter" json:"filter"`
}

// GridDef is one storage grid of a container template.
type GridDef struct {
	Name   string   `yaml:"name" json:"name"`
	Width  int      `yaml:"width" json:"width"`
	Height int      `yaml:"height" json:"height"`
	Filter []string `yaml:"filter" json:"filter"`
}

// Template defines the static properties of an item loaded from content.
//
// Invariant: a Template is never mutated after the Catalog that owns it is built.
type Template struct {
	ID               string    `yaml:"id" json:"id"`
	Name             string    `yaml:"name" json:"name"`
	Parent           string    `yaml:"parent" json:"parent"`
	Type             string    `yaml:"type" json:"type"`
	Width            int       `yaml:"width" json:"width"`
	Height           int       `yaml:"height" json:"height"`
	ExtraSize        ExtraSize `yaml:"extra_size" json:"extra_size"`
	Slots            []Slot    `yaml:"slots" json:"slots"`
	Chambers         []Slot    `yaml:"chambers" json:"chambers"`
	Cartridges       *Capacity `yaml:"cartridges" json:"cartridges"`
	StackSlots       *Capacity `yaml:"stack_slots" json:"stack_slots"`
	Grids            []GridDef `yaml:"grids" json:"grids"`
	StackMaxSize     int       `yaml:"stack_max_size" json:"stack_max_size"`
	StackMinRandom   int       `yaml:"stack_min_random" json:"stack_min_random"`
	StackMaxRandom   int       `yaml:"stack_max_random" json:"stack_max_random"`
	Caliber          string    `yaml:"caliber" json:"caliber"`
	AmmoCaliber      string    `yaml:"ammo_caliber" json:"ammo_caliber"`
	DefaultAmmo      string    `yaml:"default_ammo" json:"default_ammo"`
	MaxDurability    float64   `yaml:"max_durability" json:"max_durability"`
	ConflictingItems []string  `yaml:"conflicting_items" json:"conflicting_items"`
	Price            int       `yaml:"price" json:"price"`

	kind     Kind
	cylinder bool
}

// Kind returns the dispatch tag computed at catalog build time.
func (t *Template) Kind() Kind { return t.kind }

// IsCylinder reports whether a magazine template is a revolver cylinder.
func (t *Template) IsCylinder() bool { return t.cylinder }

// MagazineCapacity returns the number of cartridges a magazine holds. A
// cylinder's capacity is its chamber slot count.
func (t *Template) MagazineCapacity() int {
	if t.cylinder {
		return len(t.Slots)
	}
	if t.Cartridges == nil {
		return 0
	}
	return t.Cartridges.MaxCount
}

// CartridgeFilter returns the magazine's allowed cartridge templates.
func (t *Template) CartridgeFilter() []string {
	if t.Cartridges != nil && len(t.Cartridges.Filter) > 0 {
		return t.Cartridges.Filter
	}
	if t.cylinder && len(t.Slots) > 0 {
		return t.Slots[0].Filter
	}
	return nil
}

// ChamberFilter returns the weapon's first chamber whitelist, or nil.
func (t *Template) ChamberFilter() []string {
	if len(t.Chambers) == 0 {
		return nil
	}
	return t.Chambers[0].Filter
}

// Validate checks that the Template satisfies its invariants.
//
// Precondition: t is non-nil.
// Postcondition: returns nil iff all fields are valid.
func (t *Template) Validate() error {
	var errs []error
	if t.ID == "" {
		errs = append(errs, errors.New("id must not be empty"))
	}
	if t.Type != TypeItem && t.Type != TypeNode {
		errs = append(errs, fmt.Errorf("type must be one of item, node; got %q", t.Type))
	}
	if t.Type == TypeItem {
		if t.Width < 1 || t.Height < 1 {
			errs = append(errs, fmt.Errorf("width and height must be >= 1, got %dx%d", t.Width, t.Height))
		}
		if t.Parent == "" {
			errs = append(errs, errors.New("parent is required for item templates"))
		}
	}
	if t.StackMaxSize < 0 {
		errs = append(errs, errors.New("stack_max_size must be >= 0"))
	}
	if t.StackMinRandom > t.StackMaxRandom && t.StackMaxRandom > 0 {
		errs = append(errs, fmt.Errorf("stack_min_random (%d) must be <= stack_max_random (%d)", t.StackMinRandom, t.StackMaxRandom))
	}
	if t.Cartridges != nil && t.Cartridges.MaxCount < 0 {
		errs = append(errs, errors.New("cartridges.max_count must be >= 0"))
	}
	if t.StackSlots != nil && t.StackSlots.MaxCount < 1 {
		errs = append(errs, errors.New("stack_slots.max_count must be >= 1"))
	}
	for i, g := range t.Grids {
		if g.Width < 0 || g.Height < 0 {
			errs = append(errs, fmt.Errorf("grids[%d] has negative geometry", i))
		}
	}
	if t.MaxDurability < 0 {
		errs = append(errs, errors.New("max_durability must be >= 0"))
	}
	if t.Price < 0 {
		errs = append(errs, errors.New("price must be >= 0"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("template %q validation failed: %v", t.ID, errs)
	}
	return nil
}
