// Package location populates a map's world loot: static containers chosen by
// group policy and filled by weighted draws and grid packing, loose-loot
// spawn points activated around a target count, and budget-driven crates.
package location

import (
	"errors"
	"fmt"
	"strings"

	"github.com/cory-johannsen/raidloot/internal/game/catalog"
	"github.com/cory-johannsen/raidloot/internal/game/item"
)

// Vector3 is a world-space position or rotation.
type Vector3 struct {
	X float64 `yaml:"x" json:"x"`
	Y float64 `yaml:"y" json:"y"`
	Z float64 `yaml:"z" json:"z"`
}

// StaticContainer is a container placed on the map.
type StaticContainer struct {
	// ID is the map-unique container id.
	ID string `yaml:"id" json:"id"`
	// Tpl is the container template.
	Tpl         string  `yaml:"tpl" json:"tpl"`
	Probability float64 `yaml:"probability" json:"probability"`
	AlwaysSpawn bool    `yaml:"always_spawn" json:"alwaysSpawn"`
	Position    Vector3 `yaml:"position" json:"position"`
	Rotation    Vector3 `yaml:"rotation" json:"rotation"`
}

// ContainerGroup bounds how many member containers spawn.
type ContainerGroup struct {
	MinContainers int `yaml:"min_containers" json:"minContainers"`
	MaxContainers int `yaml:"max_containers" json:"maxContainers"`
}

// GroupMembership assigns a container to a group. An empty GroupID marks a
// container whose upstream group data is missing.
type GroupMembership struct {
	GroupID     string  `yaml:"group_id" json:"groupId"`
	Probability float64 `yaml:"probability" json:"probability"`
}

// CountWeight is one entry of an item count distribution.
type CountWeight struct {
	Count               int     `yaml:"count" json:"count"`
	RelativeProbability float64 `yaml:"relative_probability" json:"relativeProbability"`
}

// TplWeight is one entry of an item distribution.
type TplWeight struct {
	Tpl                 string  `yaml:"tpl" json:"tpl"`
	RelativeProbability float64 `yaml:"relative_probability" json:"relativeProbability"`
}

// StaticLootDistribution is the fill policy for one container template.
type StaticLootDistribution struct {
	ItemCountDistribution []CountWeight `yaml:"item_count_distribution" json:"itemcountDistribution"`
	ItemDistribution      []TplWeight   `yaml:"item_distribution" json:"itemDistribution"`
}

// ForcedStatic forces an item into a specific container.
type ForcedStatic struct {
	ContainerID string `yaml:"container_id" json:"containerId"`
	Tpl         string `yaml:"tpl" json:"itemTpl"`
}

// ComposedKeyWeight weights one candidate root item of a spawn point.
type ComposedKeyWeight struct {
	Key                 string  `yaml:"key" json:"key"`
	RelativeProbability float64 `yaml:"relative_probability" json:"relativeProbability"`
}

// SpawnPoint is a loose-loot position with its candidate items.
type SpawnPoint struct {
	// LocationID identifies the physical position; several spawn points
	// may share one.
	LocationID  string  `yaml:"location_id" json:"locationId"`
	ID          string  `yaml:"id" json:"id"`
	Probability float64 `yaml:"probability" json:"probability"`
	AlwaysSpawn bool    `yaml:"always_spawn" json:"alwaysSpawn"`
	Position    Vector3 `yaml:"position" json:"position"`
	Rotation    Vector3 `yaml:"rotation" json:"rotation"`
	// Items holds every candidate item tree, flattened together.
	Items item.Tree `yaml:"items" json:"items"`
	// ItemDistribution weights candidate root ids. When empty every root
	// in Items is equally likely.
	ItemDistribution []ComposedKeyWeight `yaml:"item_distribution" json:"itemDistribution"`
}

// SpawnPointCount is the normal distribution of activated spawn points.
type SpawnPointCount struct {
	Mean float64 `yaml:"mean" json:"mean"`
	Std  float64 `yaml:"std" json:"std"`
}

// DynamicLootDistribution is a map's loose-loot table.
type DynamicLootDistribution struct {
	SpawnPointCount   SpawnPointCount `yaml:"spawn_point_count" json:"spawnpointCount"`
	SpawnPoints       []SpawnPoint    `yaml:"spawn_points" json:"spawnpoints"`
	ForcedSpawnPoints []SpawnPoint    `yaml:"forced_spawn_points" json:"spawnpointsForced"`
}

// Data is everything the engine needs to populate one map.
type Data struct {
	// ID is the location id, e.g. "bigmap".
	ID               string            `yaml:"id" json:"id"`
	StaticContainers []StaticContainer `yaml:"static_containers" json:"staticContainers"`
	// StaticWeapons are mounted weapons emitted unchanged.
	StaticWeapons       []SpawnedLoot                     `yaml:"static_weapons" json:"staticWeapons"`
	ContainerGroups     map[string]ContainerGroup         `yaml:"container_groups" json:"containersGroups"`
	ContainerMembership map[string]GroupMembership        `yaml:"container_membership" json:"containers"`
	StaticLoot          map[string]StaticLootDistribution `yaml:"static_loot" json:"staticLoot"`
	StaticForced        []ForcedStatic                    `yaml:"static_forced" json:"staticForced"`
	StaticAmmo          catalog.AmmoDistribution          `yaml:"static_ammo" json:"staticAmmo"`
	DynamicLoot         DynamicLootDistribution           `yaml:"dynamic_loot" json:"dynamicLoot"`
}

// Validate checks structural invariants: a location id, non-empty unique
// container ids with templates, and spawn points with non-empty unique
// item ids. Questionable policy values are tolerated and handled at
// generation time.
//
// Postcondition: returns nil iff the data is structurally sound.
func (d *Data) Validate() error {
	var errs []string
	if d.ID == "" {
		errs = append(errs, "location id must not be empty")
	}
	seen := make(map[string]bool, len(d.StaticContainers))
	for i, c := range d.StaticContainers {
		if c.ID == "" || c.Tpl == "" {
			errs = append(errs, fmt.Sprintf("static_containers[%d] must have id and tpl", i))
			continue
		}
		if seen[c.ID] {
			errs = append(errs, fmt.Sprintf("static container id %q is duplicated", c.ID))
		}
		seen[c.ID] = true
	}
	for i, w := range d.StaticWeapons {
		if err := w.Items.Validate(); err != nil {
			errs = append(errs, fmt.Sprintf("static_weapons[%d]: %v", i, err))
		}
	}
	checkPoints := func(name string, points []SpawnPoint) {
		for i, sp := range points {
			ids := make(map[string]bool, len(sp.Items))
			for _, it := range sp.Items {
				if it.ID == "" || ids[it.ID] {
					errs = append(errs, fmt.Sprintf("%s[%d] (%s) has an empty or duplicate item id", name, i, sp.ID))
					break
				}
				ids[it.ID] = true
			}
		}
	}
	checkPoints("spawn_points", d.DynamicLoot.SpawnPoints)
	checkPoints("forced_spawn_points", d.DynamicLoot.ForcedSpawnPoints)
	if len(errs) > 0 {
		return fmt.Errorf("location %q validation failed: %s", d.ID, strings.Join(errs, "; "))
	}
	return nil
}

// SpawnedLoot is one populated container or spawn point.
type SpawnedLoot struct {
	// ID is the container or spawn point id.
	ID          string    `yaml:"id" json:"id"`
	LocationID  string    `yaml:"location_id,omitempty" json:"locationId,omitempty"`
	Root        string    `yaml:"root" json:"root"`
	IsContainer bool      `yaml:"is_container" json:"isContainer"`
	Position    Vector3   `yaml:"position" json:"position"`
	Rotation    Vector3   `yaml:"rotation" json:"rotation"`
	Items       item.Tree `yaml:"items" json:"items"`
}

// Payload is the generated loot for one map.
type Payload struct {
	Location string        `json:"location"`
	Seed     uint64        `json:"seed"`
	Static   []SpawnedLoot `json:"static"`
	Dynamic  []SpawnedLoot `json:"dynamic"`
}

// ItemCount returns the number of item nodes, the container root excluded.
func (l SpawnedLoot) ItemCount() int {
	if l.IsContainer {
		return len(l.Items) - 1
	}
	return len(l.Items)
}

// ItemCount returns the number of item nodes in the payload, container
// roots excluded.
func (p *Payload) ItemCount() int {
	n := 0
	for _, group := range [][]SpawnedLoot{p.Static, p.Dynamic} {
		for _, l := range group {
			n += l.ItemCount()
		}
	}
	return n
}

// Stats counts what a populator produced and dropped.
type Stats struct {
	Spawned     int
	// Items counts item nodes as SpawnedLoot.ItemCount does, so the static
	// and dynamic counts sum to Payload.ItemCount.
	Items       int
	Skipped     int
	FitFailures int
}

var (
	// ErrEmptyPool is reported when a mandatory reward pool has no drawable entry.
	ErrEmptyPool = errors.New("location: reward pool is empty")
	// ErrNoLocation is returned when a generation request carries no location data.
	ErrNoLocation = errors.New("location: no location data")
)
