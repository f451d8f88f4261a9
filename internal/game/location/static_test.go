package location_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/raidloot/internal/config"
	"github.com/cory-johannsen/raidloot/internal/game/catalog/catalogtest"
	"github.com/cory-johannsen/raidloot/internal/game/dice"
	"github.com/cory-johannsen/raidloot/internal/game/item"
	"github.com/cory-johannsen/raidloot/internal/game/location"
)

func populateStatic(t *testing.T, env *location.Context, data *location.Data, seed uint64) ([]location.SpawnedLoot, location.Stats) {
	t.Helper()
	p := location.NewStaticPopulator(env, dice.NewSeededSource(seed), false)
	loot, err := p.Populate(context.Background(), data, nil)
	require.NoError(t, err)
	return loot, p.Stats()
}

func TestStatic_JacketDrawsFollowWeights(t *testing.T) {
	env := newEnv(lootConfig())
	data := jacketData()
	p := location.NewStaticPopulator(env, dice.NewSeededSource(7), false)

	const runs = 3000
	bandages := 0
	for range runs {
		loot, err := p.Populate(context.Background(), data, nil)
		require.NoError(t, err)
		require.Len(t, loot, 1)
		items := contents(loot[0])
		require.Len(t, items, 1)
		if items[0].Tpl == catalogtest.Bandage {
			bandages++
		} else {
			assert.Equal(t, catalogtest.Painkiller, items[0].Tpl)
		}
	}
	assert.InDelta(t, 5.0/6.0, float64(bandages)/runs, 0.04)
	assert.Equal(t, runs, p.Stats().Spawned)
	assert.Equal(t, runs, p.Stats().Items)
}

func TestStatic_ContainerRootIsFreshAndItemsParented(t *testing.T) {
	env := newEnv(lootConfig())
	loot, _ := populateStatic(t, env, jacketData(), 1)
	require.Len(t, loot, 1)
	l := loot[0]
	assert.Equal(t, "jacket_1", l.ID)
	assert.True(t, l.IsContainer)
	assert.NotEqual(t, "jacket_1", l.Root)
	assert.Equal(t, l.Root, l.Items.Root().ID)
	require.NoError(t, l.Items.Validate())
	for _, it := range contents(l) {
		assert.Equal(t, item.SlotMain, it.SlotID)
		require.NotNil(t, it.Location)
	}
}

func TestStatic_GroupTargetLargerThanPoolSpawnsEveryMember(t *testing.T) {
	env := newEnv(lootConfig())
	data := jacketData()
	data.StaticContainers[0].Probability = 0.1
	data.ContainerGroups = map[string]location.ContainerGroup{"g1": {MinContainers: 2, MaxContainers: 2}}
	data.ContainerMembership = map[string]location.GroupMembership{"jacket_1": {GroupID: "g1", Probability: 0.1}}

	for seed := uint64(1); seed <= 50; seed++ {
		loot, _ := populateStatic(t, env, data, seed)
		require.Len(t, loot, 1, "seed %d", seed)
		assert.Equal(t, "jacket_1", loot[0].ID)
	}
}

func TestStatic_GroupDrawsTargetWithoutReplacement(t *testing.T) {
	env := newEnv(lootConfig())
	data := jacketData()
	data.StaticContainers = nil
	data.ContainerMembership = map[string]location.GroupMembership{}
	for i := range 5 {
		id := fmt.Sprintf("jacket_%d", i)
		data.StaticContainers = append(data.StaticContainers, location.StaticContainer{ID: id, Tpl: catalogtest.Jacket, Probability: 0.5})
		data.ContainerMembership[id] = location.GroupMembership{GroupID: "g1", Probability: 0.5}
	}
	data.ContainerGroups = map[string]location.ContainerGroup{"g1": {MinContainers: 2, MaxContainers: 3}}

	rapid.Check(t, func(rt *rapid.T) {
		seed := rapid.Uint64Min(1).Draw(rt, "seed")
		p := location.NewStaticPopulator(env, dice.NewSeededSource(seed), false)
		loot, err := p.Populate(context.Background(), data, nil)
		require.NoError(rt, err)
		assert.GreaterOrEqual(rt, len(loot), 2)
		assert.LessOrEqual(rt, len(loot), 3)
		assert.Len(rt, byID(loot), len(loot), "a container spawned twice")
	})
}

func TestStatic_ZeroTargetGroupSpawnsNothing(t *testing.T) {
	env := newEnv(lootConfig())
	data := jacketData()
	data.StaticContainers[0].Probability = 0.9
	data.ContainerGroups = map[string]location.ContainerGroup{"g1": {MinContainers: 0, MaxContainers: 0}}
	data.ContainerMembership = map[string]location.GroupMembership{"jacket_1": {GroupID: "g1", Probability: 0.9}}

	loot, _ := populateStatic(t, env, data, 3)
	assert.Empty(t, loot)
}

func TestStatic_MalformedGroupWarnsAndSpawnsNothing(t *testing.T) {
	env, logs := newObservedEnv(lootConfig())
	data := jacketData()
	data.StaticContainers[0].Probability = 0.9
	data.ContainerGroups = map[string]location.ContainerGroup{"g1": {MinContainers: 3, MaxContainers: 1}}
	data.ContainerMembership = map[string]location.GroupMembership{"jacket_1": {GroupID: "g1", Probability: 0.9}}

	loot, _ := populateStatic(t, env, data, 3)
	assert.Empty(t, loot)
	assert.Equal(t, 1, logs.FilterMessage("malformed container group, no containers will spawn from it").Len())
}

func TestStatic_UngroupedContainersRollIndividually(t *testing.T) {
	env := newEnv(lootConfig())
	data := jacketData()
	data.StaticContainers = []location.StaticContainer{
		{ID: "never", Tpl: catalogtest.Jacket, Probability: 0},
		{ID: "half", Tpl: catalogtest.Jacket, Probability: 0.5},
		{ID: "orphan", Tpl: catalogtest.Jacket, Probability: 0.5},
	}
	data.ContainerGroups = map[string]location.ContainerGroup{}
	data.ContainerMembership = map[string]location.GroupMembership{
		"never":  {GroupID: "", Probability: 0},
		"half":   {GroupID: "", Probability: 0.5},
		"orphan": {GroupID: "missing_group", Probability: 0.5},
	}

	p := location.NewStaticPopulator(env, dice.NewSeededSource(11), false)
	const runs = 2000
	counts := map[string]int{}
	for range runs {
		loot, err := p.Populate(context.Background(), data, nil)
		require.NoError(t, err)
		for _, l := range loot {
			counts[l.ID]++
		}
	}
	assert.Zero(t, counts["never"])
	assert.InDelta(t, 0.5, float64(counts["half"])/runs, 0.05)
	assert.InDelta(t, 0.5, float64(counts["orphan"])/runs, 0.05)
}

func TestStatic_MissingMembershipWarnsAndSkips(t *testing.T) {
	env, logs := newObservedEnv(lootConfig())
	data := jacketData()
	data.StaticContainers[0].Probability = 0.5

	loot, stats := populateStatic(t, env, data, 5)
	assert.Empty(t, loot)
	assert.Equal(t, 1, stats.Skipped)
	assert.Equal(t, 1, logs.FilterMessage("container has no group membership, skipping").Len())
}

func TestStatic_GuaranteedContainersBypassGroups(t *testing.T) {
	loot := lootConfig()
	loot.ContainerRandomisation.ContainerTypesToNotRandomise = []string{catalogtest.Toolbox}
	env := newEnv(loot)
	data := jacketData()
	data.StaticContainers = []location.StaticContainer{
		{ID: "always", Tpl: catalogtest.Jacket, Probability: 0, AlwaysSpawn: true},
		{ID: "certain", Tpl: catalogtest.Jacket, Probability: 1},
		{ID: "toolbox", Tpl: catalogtest.Toolbox, Probability: 0},
	}
	data.ContainerGroups = map[string]location.ContainerGroup{"g1": {}}
	data.ContainerMembership = map[string]location.GroupMembership{
		"always": {GroupID: "g1"}, "certain": {GroupID: "g1"}, "toolbox": {GroupID: "g1"},
	}

	got, _ := populateStatic(t, env, data, 9)
	ids := byID(got)
	assert.Len(t, ids, 3)
	assert.Contains(t, ids, "always")
	assert.Contains(t, ids, "certain")
	assert.Contains(t, ids, "toolbox")
}

func TestStatic_RandomisationDisabledSpawnsEveryContainer(t *testing.T) {
	loot := lootConfig()
	loot.ContainerRandomisation.Maps = map[string]bool{}
	env := newEnv(loot)
	data := jacketData()
	data.StaticContainers = []location.StaticContainer{
		{ID: "a", Tpl: catalogtest.Jacket, Probability: 0},
		{ID: "b", Tpl: catalogtest.Jacket, Probability: 0.01},
	}

	got, _ := populateStatic(t, env, data, 2)
	assert.Len(t, got, 2)
}

func TestStatic_PackedItemsNeverOverlap(t *testing.T) {
	env := newEnv(lootConfig())
	data := &location.Data{
		ID:               testMap,
		StaticContainers: []location.StaticContainer{{ID: "crate_1", Tpl: catalogtest.Crate, Probability: 1}},
		StaticLoot: map[string]location.StaticLootDistribution{
			catalogtest.Crate: {
				ItemCountDistribution: []location.CountWeight{{Count: 6, RelativeProbability: 1}, {Count: 14, RelativeProbability: 1}},
				ItemDistribution: []location.TplWeight{
					{Tpl: catalogtest.Bandage, RelativeProbability: 4},
					{Tpl: catalogtest.AK74, RelativeProbability: 2},
					{Tpl: catalogtest.Mag545x30, RelativeProbability: 2},
					{Tpl: catalogtest.Vest, RelativeProbability: 1},
					{Tpl: catalogtest.Rifle2x5, RelativeProbability: 1},
					{Tpl: catalogtest.AmmoBox545, RelativeProbability: 1},
				},
			},
		},
		StaticAmmo: catalogtest.AmmoDistribution(),
	}

	rapid.Check(t, func(rt *rapid.T) {
		seed := rapid.Uint64Min(1).Draw(rt, "seed")
		p := location.NewStaticPopulator(env, dice.NewSeededSource(seed), false)
		loot, err := p.Populate(context.Background(), data, data.StaticAmmo)
		require.NoError(rt, err)
		require.Len(rt, loot, 1)
		require.NoError(rt, loot[0].Items.Validate())
		assertPacked(rt, fixture, loot[0])
	})
}

func TestStatic_FitAttemptCeiling(t *testing.T) {
	for _, tc := range []struct {
		attempts int
		failures int
	}{
		{attempts: 0, failures: 1},
		{attempts: 3, failures: 4},
	} {
		t.Run(fmt.Sprintf("attempts=%d", tc.attempts), func(t *testing.T) {
			cfg := lootConfig()
			cfg.FitLootIntoContainerAttempts = tc.attempts
			env := newEnv(cfg)
			data := jacketData()
			data.StaticLoot[catalogtest.Jacket] = location.StaticLootDistribution{
				ItemCountDistribution: []location.CountWeight{{Count: 10, RelativeProbability: 1}},
				ItemDistribution:      []location.TplWeight{{Tpl: catalogtest.Rifle2x5, RelativeProbability: 1}},
			}

			loot, stats := populateStatic(t, env, data, 4)
			require.Len(t, loot, 1)
			assert.Empty(t, contents(loot[0]))
			assert.Equal(t, tc.failures, stats.FitFailures)
		})
	}
}

func TestStatic_BudgetStopsFill(t *testing.T) {
	cfg := lootConfig()
	cfg.ContainerBudgets = []config.ContainerBudget{{Tpl: catalogtest.Crate, Budget: 2000}}
	env := newEnv(cfg)
	data := &location.Data{
		ID:               testMap,
		StaticContainers: []location.StaticContainer{{ID: "crate_1", Tpl: catalogtest.Crate, Probability: 1}},
		StaticLoot: map[string]location.StaticLootDistribution{
			catalogtest.Crate: {
				ItemCountDistribution: []location.CountWeight{{Count: 16, RelativeProbability: 1}},
				ItemDistribution: []location.TplWeight{
					{Tpl: catalogtest.Bandage, RelativeProbability: 1},
					{Tpl: catalogtest.Painkiller, RelativeProbability: 1},
				},
			},
		},
	}

	rapid.Check(t, func(rt *rapid.T) {
		seed := rapid.Uint64Min(1).Draw(rt, "seed")
		p := location.NewStaticPopulator(env, dice.NewSeededSource(seed), false)
		loot, err := p.Populate(context.Background(), data, nil)
		require.NoError(rt, err)
		require.Len(rt, loot, 1)
		spent := 0
		for _, it := range contents(loot[0]) {
			spent += fixture.Price(it.Tpl)
		}
		assert.GreaterOrEqual(rt, spent, 2000)
		assert.Less(rt, spent, 2000+900)
	})
}

func TestStatic_ForcedItemsComeFirstOnce(t *testing.T) {
	env := newEnv(lootConfig())
	data := jacketData()
	data.StaticLoot[catalogtest.Jacket] = location.StaticLootDistribution{
		ItemCountDistribution: []location.CountWeight{{Count: 3, RelativeProbability: 1}},
		ItemDistribution: []location.TplWeight{
			{Tpl: catalogtest.Bandage, RelativeProbability: 1},
			{Tpl: catalogtest.Painkiller, RelativeProbability: 1},
		},
	}
	data.StaticForced = []location.ForcedStatic{{ContainerID: "jacket_1", Tpl: catalogtest.Garland}}

	for seed := uint64(1); seed <= 20; seed++ {
		loot, _ := populateStatic(t, env, data, seed)
		require.Len(t, loot, 1)
		items := contents(loot[0])
		require.NotEmpty(t, items)
		assert.Equal(t, catalogtest.Garland, items[0].Tpl)
		garlands := 0
		for _, it := range items {
			if it.Tpl == catalogtest.Garland {
				garlands++
			}
		}
		assert.Equal(t, 1, garlands)
	}
}

func TestStatic_NoDuplicatesExceptMoney(t *testing.T) {
	cfg := lootConfig()
	cfg.AllowDuplicateItemsInStaticContainers = false
	env := newEnv(cfg)
	data := &location.Data{
		ID:               testMap,
		StaticContainers: []location.StaticContainer{{ID: "crate_1", Tpl: catalogtest.Crate, Probability: 1}},
		StaticLoot: map[string]location.StaticLootDistribution{
			catalogtest.Crate: {
				ItemCountDistribution: []location.CountWeight{{Count: 6, RelativeProbability: 1}},
				ItemDistribution: []location.TplWeight{
					{Tpl: catalogtest.Roubles, RelativeProbability: 10},
					{Tpl: catalogtest.Bandage, RelativeProbability: 1},
				},
			},
		},
	}

	for seed := uint64(1); seed <= 30; seed++ {
		loot, _ := populateStatic(t, env, data, seed)
		require.Len(t, loot, 1)
		bandages := 0
		for _, it := range contents(loot[0]) {
			if it.Tpl == catalogtest.Bandage {
				bandages++
			}
		}
		assert.LessOrEqual(t, bandages, 1, "seed %d", seed)
		assert.Len(t, contents(loot[0]), 6, "money stays drawable, seed %d", seed)
	}
}

func TestStatic_SeasonalContent(t *testing.T) {
	cfg := lootConfig()
	cfg.Seasonal.ItemTpls = []string{catalogtest.Garland}
	cfg.Seasonal.ContainerTpls = []string{catalogtest.Toolbox}
	env := newEnv(cfg)
	data := jacketData()
	data.StaticContainers = append(data.StaticContainers, location.StaticContainer{ID: "toolbox_1", Tpl: catalogtest.Toolbox, Probability: 1})
	data.StaticLoot[catalogtest.Jacket] = location.StaticLootDistribution{
		ItemCountDistribution: []location.CountWeight{{Count: 1, RelativeProbability: 1}},
		ItemDistribution:      []location.TplWeight{{Tpl: catalogtest.Garland, RelativeProbability: 1}},
	}

	for _, active := range []bool{false, true} {
		p := location.NewStaticPopulator(env, dice.NewSeededSource(1), active)
		loot, err := p.Populate(context.Background(), data, nil)
		require.NoError(t, err)
		ids := byID(loot)
		require.Contains(t, ids, "jacket_1")
		if active {
			assert.Contains(t, ids, "toolbox_1")
			require.Len(t, contents(ids["jacket_1"]), 1)
			assert.Equal(t, catalogtest.Garland, contents(ids["jacket_1"])[0].Tpl)
		} else {
			assert.NotContains(t, ids, "toolbox_1")
			assert.Empty(t, contents(ids["jacket_1"]))
		}
	}
}

func TestStatic_UnassemblableItemIsSkipped(t *testing.T) {
	env, logs := newObservedEnv(lootConfig())
	data := jacketData()
	data.StaticLoot[catalogtest.Jacket] = location.StaticLootDistribution{
		ItemCountDistribution: []location.CountWeight{{Count: 1, RelativeProbability: 1}},
		ItemDistribution:      []location.TplWeight{{Tpl: catalogtest.RSP, RelativeProbability: 1}},
	}

	loot, stats := populateStatic(t, env, data, 1)
	require.Len(t, loot, 1)
	assert.Empty(t, contents(loot[0]))
	assert.Equal(t, 1, stats.Skipped)
	assert.Equal(t, 1, logs.FilterMessage("skipping item that could not be assembled").Len())
}

func TestStatic_UnknownContainerTemplateIsSkipped(t *testing.T) {
	env := newEnv(lootConfig())
	data := jacketData()
	data.StaticContainers[0].Tpl = "no_such_container"

	loot, stats := populateStatic(t, env, data, 1)
	assert.Empty(t, loot)
	assert.Equal(t, 1, stats.Skipped)
}

func TestStatic_StaticWeaponsPassThrough(t *testing.T) {
	env := newEnv(lootConfig())
	data := jacketData()
	weapon := location.SpawnedLoot{
		ID:   "mounted_1",
		Root: "w1",
		Items: item.Tree{
			{ID: "w1", Tpl: catalogtest.AK74},
			{ID: "w2", Tpl: catalogtest.Mag545x30, ParentID: "w1", SlotID: "mod_magazine"},
		},
	}
	data.StaticWeapons = []location.SpawnedLoot{weapon}

	loot, _ := populateStatic(t, env, data, 1)
	ids := byID(loot)
	require.Contains(t, ids, "mounted_1")
	assert.Equal(t, weapon.Items, ids["mounted_1"].Items)
}

func TestStatic_CancelledContext(t *testing.T) {
	env := newEnv(lootConfig())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	p := location.NewStaticPopulator(env, dice.NewSeededSource(1), false)
	_, err := p.Populate(ctx, jacketData(), nil)
	assert.ErrorIs(t, err, context.Canceled)
}
