package config

import (
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/viper"
)

// ContainerRandomisationConfig controls how grouped static containers are chosen.
type ContainerRandomisationConfig struct {
	// Enabled turns group-based container selection on globally.
	Enabled bool `mapstructure:"enabled"`
	// Maps enables group-based selection per location. A location missing
	// from the map spawns every container.
	Maps map[string]bool `mapstructure:"maps"`
	// ContainerGroupMinSizeMultiplier scales each group's minimum count.
	ContainerGroupMinSizeMultiplier float64 `mapstructure:"container_group_min_size_multiplier"`
	// ContainerGroupMaxSizeMultiplier scales each group's maximum count.
	ContainerGroupMaxSizeMultiplier float64 `mapstructure:"container_group_max_size_multiplier"`
	// ContainerTypesToNotRandomise lists container templates that always spawn.
	ContainerTypesToNotRandomise []string `mapstructure:"container_types_to_not_randomise"`
}

// DurabilityBand bounds a rolled durability as a percentage of maximum.
type DurabilityBand struct {
	MinPercent float64 `mapstructure:"min_percent"`
	MaxPercent float64 `mapstructure:"max_percent"`
}

// SeasonalConfig lists content that only spawns while a seasonal event is active.
type SeasonalConfig struct {
	ItemTpls      []string `mapstructure:"item_tpls"`
	ContainerTpls []string `mapstructure:"container_tpls"`
}

// CaliberAlias renames a caliber before ammo lookup. Aliases are a list
// rather than a map because viper lower-cases map keys.
type CaliberAlias struct {
	From string `mapstructure:"from"`
	To   string `mapstructure:"to"`
}

// ContainerBudget caps the rouble value of one container type's fill.
type ContainerBudget struct {
	Tpl    string `mapstructure:"tpl"`
	Budget int    `mapstructure:"budget"`
}

// RewardWeight is one crate reward template and its relative weight.
type RewardWeight struct {
	Tpl    string  `mapstructure:"tpl"`
	Weight float64 `mapstructure:"weight"`
}

// CrateConfig describes one budget-driven crate type.
type CrateConfig struct {
	// ContainerTpl is the crate's container template.
	ContainerTpl string `mapstructure:"container_tpl"`
	// ItemCountMin and ItemCountMax bound the number of rewards drawn.
	ItemCountMin int `mapstructure:"item_count_min"`
	ItemCountMax int `mapstructure:"item_count_max"`
	// Budget is the rouble value to reach; 0 disables the budget.
	Budget int `mapstructure:"budget"`
	// Rewards lists reward templates with relative weights. Template ids
	// are case-sensitive, so they are list entries rather than map keys.
	Rewards []RewardWeight `mapstructure:"rewards"`
	// AllowDuplicates permits drawing a reward more than once.
	AllowDuplicates bool `mapstructure:"allow_duplicates"`
}

// LootConfig holds the loot generation settings. Location keys are
// lower-case location ids.
type LootConfig struct {
	StaticLootMultiplier   map[string]float64           `mapstructure:"static_loot_multiplier"`
	LooseLootMultiplier    map[string]float64           `mapstructure:"loose_loot_multiplier"`
	ContainerRandomisation ContainerRandomisationConfig `mapstructure:"container_randomisation"`
	// FitLootIntoContainerAttempts caps failed placements per container fill.
	// The counter is shared by every item of the fill.
	FitLootIntoContainerAttempts          int  `mapstructure:"fit_loot_into_container_attempts"`
	AllowDuplicateItemsInStaticContainers bool `mapstructure:"allow_duplicate_items_in_static_containers"`

	MagazineLootHasAmmoChancePercent float64            `mapstructure:"magazine_loot_has_ammo_chance_percent"`
	MinFillLooseMagazinePercent      float64            `mapstructure:"min_fill_loose_magazine_percent"`
	MinFillWeaponMagazinePercent     float64            `mapstructure:"min_fill_weapon_magazine_percent"`
	ArmorDurability                  DurabilityBand     `mapstructure:"armor_durability"`
	ModSpawnChancePercent            map[string]float64 `mapstructure:"mod_spawn_chance_percent"`
	CaliberAliases                   []CaliberAlias     `mapstructure:"caliber_aliases"`

	// LooseLootBlacklist maps a location to spawn point ids that never activate.
	LooseLootBlacklist map[string][]string `mapstructure:"loose_loot_blacklist"`
	// ItemBlacklist lists templates never spawned as loose loot.
	ItemBlacklist []string `mapstructure:"item_blacklist"`
	// ForcedLootSingleSpawnByID maps a location to templates that appear at
	// several forced positions but spawn at only one.
	ForcedLootSingleSpawnByID map[string][]string `mapstructure:"forced_loot_single_spawn_by_id"`
	TplsToStripChildItemsFrom []string            `mapstructure:"tpls_to_strip_child_items_from"`
	Seasonal                  SeasonalConfig      `mapstructure:"seasonal"`
	// ContainerBudgets lists rouble budgets per container template.
	ContainerBudgets []ContainerBudget `mapstructure:"container_budgets"`
	// Crates maps a crate type name to its fill settings.
	Crates map[string]CrateConfig `mapstructure:"crates"`
}

// StaticMultiplier returns the static loot multiplier for location, 1 when unset.
func (l LootConfig) StaticMultiplier(location string) float64 {
	return multiplier(l.StaticLootMultiplier, location)
}

// LooseMultiplier returns the loose loot multiplier for location, 1 when unset.
func (l LootConfig) LooseMultiplier(location string) float64 {
	return multiplier(l.LooseLootMultiplier, location)
}

func multiplier(m map[string]float64, location string) float64 {
	if v, ok := m[strings.ToLower(location)]; ok {
		return v
	}
	return 1
}

// RandomiseContainers reports whether group-based container selection
// applies to location.
func (l LootConfig) RandomiseContainers(location string) bool {
	return l.ContainerRandomisation.Enabled && l.ContainerRandomisation.Maps[strings.ToLower(location)]
}

// LooseLootBlacklistFor returns the blacklisted spawn point ids for location.
func (l LootConfig) LooseLootBlacklistFor(location string) []string {
	return l.LooseLootBlacklist[strings.ToLower(location)]
}

// ForcedSingleSpawnFor returns the single-spawn forced templates for location.
func (l LootConfig) ForcedSingleSpawnFor(location string) []string {
	return l.ForcedLootSingleSpawnByID[strings.ToLower(location)]
}

// BudgetFor returns the fill budget for a container template, 0 when unset.
func (l LootConfig) BudgetFor(tpl string) int {
	for _, b := range l.ContainerBudgets {
		if b.Tpl == tpl {
			return b.Budget
		}
	}
	return 0
}

// AliasMap returns CaliberAliases as a lookup table.
func (l LootConfig) AliasMap() map[string]string {
	out := make(map[string]string, len(l.CaliberAliases))
	for _, a := range l.CaliberAliases {
		out[a.From] = a.To
	}
	return out
}

// Validate checks the loot settings.
//
// Postcondition: Returns nil if valid, or an error describing all violations.
func (l LootConfig) Validate() error {
	var errs []string
	percent := func(name string, v float64) {
		if v < 0 || v > 100 {
			errs = append(errs, fmt.Sprintf("loot.%s must be 0-100, got %g", name, v))
		}
	}
	percent("magazine_loot_has_ammo_chance_percent", l.MagazineLootHasAmmoChancePercent)
	percent("min_fill_loose_magazine_percent", l.MinFillLooseMagazinePercent)
	percent("min_fill_weapon_magazine_percent", l.MinFillWeaponMagazinePercent)
	percent("armor_durability.min_percent", l.ArmorDurability.MinPercent)
	percent("armor_durability.max_percent", l.ArmorDurability.MaxPercent)
	if l.ArmorDurability.MinPercent > l.ArmorDurability.MaxPercent {
		errs = append(errs, "loot.armor_durability.min_percent must not exceed max_percent")
	}
	for _, slot := range sortedKeys(l.ModSpawnChancePercent) {
		percent("mod_spawn_chance_percent."+slot, l.ModSpawnChancePercent[slot])
	}
	if l.FitLootIntoContainerAttempts < 0 {
		errs = append(errs, fmt.Sprintf("loot.fit_loot_into_container_attempts must be >= 0, got %d", l.FitLootIntoContainerAttempts))
	}
	for _, loc := range sortedKeys(l.StaticLootMultiplier) {
		if l.StaticLootMultiplier[loc] < 0 {
			errs = append(errs, fmt.Sprintf("loot.static_loot_multiplier.%s must be >= 0", loc))
		}
	}
	for _, loc := range sortedKeys(l.LooseLootMultiplier) {
		if l.LooseLootMultiplier[loc] < 0 {
			errs = append(errs, fmt.Sprintf("loot.loose_loot_multiplier.%s must be >= 0", loc))
		}
	}
	cr := l.ContainerRandomisation
	if cr.ContainerGroupMinSizeMultiplier < 0 || cr.ContainerGroupMaxSizeMultiplier < 0 {
		errs = append(errs, "loot.container_randomisation size multipliers must be >= 0")
	}
	for i, a := range l.CaliberAliases {
		if a.From == "" || a.To == "" {
			errs = append(errs, fmt.Sprintf("loot.caliber_aliases[%d] must have from and to", i))
		}
	}
	for i, b := range l.ContainerBudgets {
		if b.Tpl == "" || b.Budget < 0 {
			errs = append(errs, fmt.Sprintf("loot.container_budgets[%d] must have a tpl and a budget >= 0", i))
		}
	}
	for _, name := range sortedKeys(l.Crates) {
		c := l.Crates[name]
		if c.ContainerTpl == "" {
			errs = append(errs, fmt.Sprintf("loot.crates.%s.container_tpl must not be empty", name))
		}
		if c.ItemCountMin < 0 || c.ItemCountMax < c.ItemCountMin {
			errs = append(errs, fmt.Sprintf("loot.crates.%s item count range [%d, %d] is invalid", name, c.ItemCountMin, c.ItemCountMax))
		}
		if c.Budget < 0 {
			errs = append(errs, fmt.Sprintf("loot.crates.%s.budget must be >= 0", name))
		}
		if len(c.Rewards) == 0 {
			errs = append(errs, fmt.Sprintf("loot.crates.%s.rewards must not be empty", name))
		}
		for i, r := range c.Rewards {
			if r.Tpl == "" || r.Weight < 0 {
				errs = append(errs, fmt.Sprintf("loot.crates.%s.rewards[%d] must have a tpl and a weight >= 0", name, i))
			}
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

func setLootDefaults(v *viper.Viper) {
	v.SetDefault("loot.container_randomisation.enabled", true)
	v.SetDefault("loot.container_randomisation.maps", map[string]bool{
		"bigmap": true, "woods": true, "shoreline": true, "interchange": true,
		"lighthouse": true, "rezervbase": true, "tarkovstreets": true, "sandbox": true,
	})
	v.SetDefault("loot.container_randomisation.container_group_min_size_multiplier", 1.0)
	v.SetDefault("loot.container_randomisation.container_group_max_size_multiplier", 1.0)
	v.SetDefault("loot.fit_loot_into_container_attempts", 3)
	v.SetDefault("loot.allow_duplicate_items_in_static_containers", true)
	v.SetDefault("loot.magazine_loot_has_ammo_chance_percent", 50.0)
	v.SetDefault("loot.min_fill_loose_magazine_percent", 50.0)
	v.SetDefault("loot.min_fill_weapon_magazine_percent", 25.0)
	v.SetDefault("loot.armor_durability.min_percent", 70.0)
	v.SetDefault("loot.armor_durability.max_percent", 100.0)
	v.SetDefault("loot.caliber_aliases", []map[string]string{{"from": "Caliber9x18PMM", "to": "Caliber9x18PM"}})
}
