package location_test

import (
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/cory-johannsen/raidloot/internal/config"
	"github.com/cory-johannsen/raidloot/internal/game/catalog"
	"github.com/cory-johannsen/raidloot/internal/game/catalog/catalogtest"
	"github.com/cory-johannsen/raidloot/internal/game/item"
	"github.com/cory-johannsen/raidloot/internal/game/location"
)

const testMap = "testmap"

var fixture = catalogtest.MustCatalog()

// lootConfig returns default loot settings with group randomisation on for testMap.
func lootConfig() config.LootConfig {
	l := config.Default().Loot
	l.ContainerRandomisation.Maps = map[string]bool{testMap: true}
	return l
}

func newEnv(loot config.LootConfig) *location.Context {
	return location.NewContext(fixture, loot, zap.NewNop())
}

func newObservedEnv(loot config.LootConfig) (*location.Context, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return location.NewContext(fixture, loot, zap.New(core)), logs
}

func jacketData() *location.Data {
	return &location.Data{
		ID: testMap,
		StaticContainers: []location.StaticContainer{
			{ID: "jacket_1", Tpl: catalogtest.Jacket, Probability: 1},
		},
		StaticLoot: map[string]location.StaticLootDistribution{
			catalogtest.Jacket: {
				ItemCountDistribution: []location.CountWeight{{Count: 1, RelativeProbability: 100}},
				ItemDistribution: []location.TplWeight{
					{Tpl: catalogtest.Bandage, RelativeProbability: 5},
					{Tpl: catalogtest.Painkiller, RelativeProbability: 1},
				},
			},
		},
	}
}

// byID indexes spawned loot by its id.
func byID(loot []location.SpawnedLoot) map[string]location.SpawnedLoot {
	out := make(map[string]location.SpawnedLoot, len(loot))
	for _, l := range loot {
		out[l.ID] = l
	}
	return out
}

// contents returns the direct children of a container.
func contents(l location.SpawnedLoot) []item.Item {
	return l.Items.Children(l.Root)
}

// assertPacked checks that every item placed in a container lies inside its
// grid and that no two placements share a cell.
func assertPacked(t assert.TestingT, c *catalog.Catalog, l location.SpawnedLoot) {
	tpl, ok := c.Template(l.Items.Root().Tpl)
	if !assert.True(t, ok) || !assert.NotEmpty(t, tpl.Grids) {
		return
	}
	gw, gh := tpl.Grids[0].Width, tpl.Grids[0].Height
	cells := make([][]bool, gh)
	for y := range cells {
		cells[y] = make([]bool, gw)
	}
	for _, it := range contents(l) {
		if !assert.NotNil(t, it.Location, "placed item %s has no location", it.ID) {
			continue
		}
		assert.Equal(t, item.SlotMain, it.SlotID)
		w, h := c.ItemSize(l.Items, it.ID)
		if it.Location.R == item.Vertical {
			w, h = h, w
		}
		for y := it.Location.Y; y < it.Location.Y+h; y++ {
			for x := it.Location.X; x < it.Location.X+w; x++ {
				if !assert.True(t, x >= 0 && y >= 0 && x < gw && y < gh, "cell %d,%d out of bounds", x, y) {
					return
				}
				assert.False(t, cells[y][x], "cell %d,%d occupied twice", x, y)
				cells[y][x] = true
			}
		}
	}
}
