package catalog_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/raidloot/internal/game/catalog"
	"github.com/cory-johannsen/raidloot/internal/game/catalog/catalogtest"
	"github.com/cory-johannsen/raidloot/internal/game/item"
)

func TestBuild_ClassifiesKinds(t *testing.T) {
	c := catalogtest.MustCatalog()
	cases := map[string]catalog.Kind{
		catalogtest.Roubles:    catalog.KindMoney,
		catalogtest.Ammo545PS:  catalog.KindAmmo,
		catalogtest.AmmoBox545: catalog.KindAmmoBox,
		catalogtest.Mag545x30:  catalog.KindMagazine,
		catalogtest.Cylinder:   catalog.KindMagazine,
		catalogtest.AK74:       catalog.KindWeapon,
		catalogtest.Vest:       catalog.KindArmor,
		catalogtest.Helmet:     catalog.KindArmor,
		catalogtest.Jacket:     catalog.KindContainer,
		catalogtest.Bandage:    catalog.KindOther,
		catalogtest.PlateFront: catalog.KindOther,
		"item":                 catalog.KindNode,
	}
	for id, want := range cases {
		tpl, err := c.Get(id)
		require.NoError(t, err, id)
		assert.Equal(t, want, tpl.Kind(), id)
	}
}

func TestBuild_CylinderCapacity(t *testing.T) {
	c := catalogtest.MustCatalog()
	cyl, err := c.Get(catalogtest.Cylinder)
	require.NoError(t, err)
	assert.True(t, cyl.IsCylinder())
	assert.Equal(t, 5, cyl.MagazineCapacity())
	assert.Equal(t, []string{catalogtest.Ammo9x18}, cyl.CartridgeFilter())

	mag, err := c.Get(catalogtest.Mag545x30)
	require.NoError(t, err)
	assert.False(t, mag.IsCylinder())
	assert.Equal(t, 30, mag.MagazineCapacity())
}

func TestBuild_DuplicateID(t *testing.T) {
	ts := catalogtest.Templates()
	ts = append(ts, &catalog.Template{ID: catalogtest.Bandage, Name: "dup", Type: catalog.TypeItem, Parent: "meds", Width: 1, Height: 1})
	_, err := catalog.Build(ts, nil)
	assert.ErrorContains(t, err, "already registered")
}

func TestBuild_UnknownParent(t *testing.T) {
	ts := catalogtest.Templates()
	ts = append(ts, &catalog.Template{ID: "orphan", Type: catalog.TypeItem, Parent: "nowhere", Width: 1, Height: 1})
	_, err := catalog.Build(ts, nil)
	assert.ErrorContains(t, err, "unknown parent")
}

func TestBuild_ParentCycle(t *testing.T) {
	ts := []*catalog.Template{
		{ID: "a", Type: catalog.TypeNode, Parent: "b"},
		{ID: "b", Type: catalog.TypeNode, Parent: "a"},
	}
	_, err := catalog.Build(ts, nil)
	assert.ErrorContains(t, err, "cycle")
}

func TestBuild_PresetForUnknownTemplate(t *testing.T) {
	presets := append(catalogtest.Presets(), &catalog.Preset{
		ID: "ghost", Tpl: "ghost_gun", Items: item.Tree{{ID: "x", Tpl: "ghost_gun"}},
	})
	_, err := catalog.Build(catalogtest.Templates(), presets)
	assert.ErrorContains(t, err, "ghost_gun")
}

func TestBuild_PresetRootMismatch(t *testing.T) {
	presets := []*catalog.Preset{{
		ID: "bad", Tpl: catalogtest.AK74, Items: item.Tree{{ID: "x", Tpl: catalogtest.RSP}},
	}}
	_, err := catalog.Build(catalogtest.Templates(), presets)
	assert.ErrorContains(t, err, "does not match")
}

func TestGet_NotFound(t *testing.T) {
	c := catalogtest.MustCatalog()
	_, err := c.Get("missing")
	assert.True(t, errors.Is(err, catalog.ErrTemplateNotFound))
	_, ok := c.Template("missing")
	assert.False(t, ok)
}

func TestIsOfBaseClass(t *testing.T) {
	c := catalogtest.MustCatalog()
	assert.True(t, c.IsOfBaseClass(catalogtest.Cylinder, catalog.BaseMagazine))
	assert.True(t, c.IsOfBaseClass(catalogtest.Cylinder, catalog.BaseCylinderMagazine))
	assert.True(t, c.IsOfBaseClass(catalogtest.Roubles, catalog.BaseAmmo, catalog.BaseMoney))
	assert.False(t, c.IsOfBaseClass(catalogtest.Bandage, catalog.BaseMoney))
	assert.True(t, c.IsOfBaseClass(string(catalog.BaseMoney), catalog.BaseMoney))
}

func TestDefaultPreset(t *testing.T) {
	c := catalogtest.MustCatalog()
	p, ok := c.DefaultPreset(catalogtest.AK74)
	require.True(t, ok)
	assert.Equal(t, "preset_ak74", p.ID)

	_, ok = c.DefaultPreset(catalogtest.RSP)
	assert.False(t, ok)
}

func TestDefaultPreset_FallsBackToFirst(t *testing.T) {
	presets := []*catalog.Preset{
		{ID: "first", Tpl: catalogtest.RSP, Items: item.Tree{{ID: "a", Tpl: catalogtest.RSP}}},
		{ID: "second", Tpl: catalogtest.RSP, Items: item.Tree{{ID: "b", Tpl: catalogtest.RSP}}},
	}
	c, err := catalog.Build(catalogtest.Templates(), presets)
	require.NoError(t, err)
	p, ok := c.DefaultPreset(catalogtest.RSP)
	require.True(t, ok)
	assert.Equal(t, "first", p.ID)
}

func TestCalibersOf_SortedDistinct(t *testing.T) {
	c := catalogtest.MustCatalog()
	got := c.CalibersOf([]string{catalogtest.Ammo9x18, catalogtest.Ammo545BP, catalogtest.Ammo545PS, "unknown"})
	assert.Equal(t, []string{"Caliber545x39", "Caliber9x18PM"}, got)
}

func TestTreePrice(t *testing.T) {
	c := catalogtest.MustCatalog()
	tree := item.Tree{
		{ID: "m", Tpl: catalogtest.Mag545x30},
		{ID: "c", Tpl: catalogtest.Ammo545PS, ParentID: "m", SlotID: item.SlotCartridges, Upd: &item.Upd{StackObjectsCount: 10}},
	}
	assert.Equal(t, 1500+10*100, c.TreePrice(tree))
	assert.Equal(t, 0, c.Price("unknown"))
}

func TestByKind(t *testing.T) {
	c := catalogtest.MustCatalog()
	assert.Equal(t, []string{catalogtest.Dollars, catalogtest.Roubles}, c.ByKind(catalog.KindMoney))
}

func TestTemplateValidate(t *testing.T) {
	valid := &catalog.Template{ID: "x", Type: catalog.TypeItem, Parent: "p", Width: 1, Height: 1}
	assert.NoError(t, valid.Validate())

	assert.ErrorContains(t, (&catalog.Template{Type: catalog.TypeItem, Parent: "p", Width: 1, Height: 1}).Validate(), "id")
	assert.ErrorContains(t, (&catalog.Template{ID: "x", Type: "thing"}).Validate(), "type")
	assert.ErrorContains(t, (&catalog.Template{ID: "x", Type: catalog.TypeItem, Parent: "p"}).Validate(), "width")
	assert.ErrorContains(t, (&catalog.Template{ID: "x", Type: catalog.TypeItem, Width: 1, Height: 1}).Validate(), "parent")
	assert.ErrorContains(t, (&catalog.Template{ID: "x", Type: catalog.TypeItem, Parent: "p", Width: 1, Height: 1, StackMinRandom: 5, StackMaxRandom: 2}).Validate(), "stack_min_random")
	assert.ErrorContains(t, (&catalog.Template{ID: "x", Type: catalog.TypeItem, Parent: "p", Width: 1, Height: 1, Price: -1}).Validate(), "price")
}

func TestAmmoDistribution_ForCaliber(t *testing.T) {
	d := catalogtest.AmmoDistribution()
	aliases := map[string]string{"Caliber9x18PMM": "Caliber9x18PM"}

	assert.Len(t, d.ForCaliber("Caliber545x39", aliases), 2)
	got := d.ForCaliber("Caliber9x18PMM", aliases)
	require.Len(t, got, 1)
	assert.Equal(t, catalogtest.Ammo9x18, got[0].Tpl)
	assert.Nil(t, d.ForCaliber("Caliber12g", aliases))
}

func TestItemSize_PlainItem(t *testing.T) {
	c := catalogtest.MustCatalog()
	w, h := c.ItemSize(item.Tree{{ID: "r", Tpl: catalogtest.Rifle2x5}}, "r")
	assert.Equal(t, 2, w)
	assert.Equal(t, 5, h)
}

func TestItemSize_ModsTakeMaxPerSide(t *testing.T) {
	c := catalogtest.MustCatalog()
	tree := item.Tree{
		{ID: "w", Tpl: catalogtest.AK74},
		{ID: "s", Tpl: catalogtest.StockAK, ParentID: "w", SlotID: "mod_stock"},
		{ID: "f", Tpl: catalogtest.StockFolding, ParentID: "s", SlotID: "mod_stock_adapter"},
		{ID: "m", Tpl: catalogtest.Mag545x30, ParentID: "w", SlotID: item.SlotMagazine},
	}
	w, h := c.ItemSize(tree, "w")
	assert.Equal(t, 3+2, w, "largest right extension wins")
	assert.Equal(t, 1+1, h, "magazine extends down")
}

func TestItemSize_ForceAddSums(t *testing.T) {
	c := catalogtest.MustCatalog()
	tree := item.Tree{
		{ID: "w", Tpl: catalogtest.AK74},
		{ID: "s", Tpl: catalogtest.StockAK, ParentID: "w", SlotID: "mod_stock"},
		{ID: "x", Tpl: catalogtest.Silencer, ParentID: "w", SlotID: "mod_muzzle"},
	}
	w, h := c.ItemSize(tree, "w")
	assert.Equal(t, 3+1+1, w)
	assert.Equal(t, 1, h)
}

func TestItemSize_IgnoresNonModChildren(t *testing.T) {
	c := catalogtest.MustCatalog()
	tree := item.Tree{
		{ID: "w", Tpl: catalogtest.AK74},
		{ID: "c", Tpl: catalogtest.Mag545x30, ParentID: "w", SlotID: item.SlotChamber},
	}
	w, h := c.ItemSize(tree, "w")
	assert.Equal(t, 3, w)
	assert.Equal(t, 1, h)
}

func TestItemSize_ContainerSkipsContents(t *testing.T) {
	c := catalogtest.MustCatalog()
	tree := item.Tree{
		{ID: "b", Tpl: catalogtest.Backpack},
		{ID: "s", Tpl: catalogtest.StockFolding, ParentID: "b", SlotID: "mod_stock"},
	}
	w, h := c.ItemSize(tree, "b")
	assert.Equal(t, 5, w)
	assert.Equal(t, 6, h)
}

func TestItemSize_UnknownIsOneByOne(t *testing.T) {
	c := catalogtest.MustCatalog()
	w, h := c.ItemSize(item.Tree{{ID: "u", Tpl: "unknown"}}, "u")
	assert.Equal(t, 1, w)
	assert.Equal(t, 1, h)
	w, h = c.ItemSize(nil, "nothing")
	assert.Equal(t, 1, w)
	assert.Equal(t, 1, h)
}

func TestItemSize_NeverBelowBase(t *testing.T) {
	c := catalogtest.MustCatalog()
	mods := []string{catalogtest.StockAK, catalogtest.StockFolding, catalogtest.Silencer, catalogtest.Mag545x30}
	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(0, 6).Draw(rt, "n")
		tree := item.Tree{{ID: "root", Tpl: catalogtest.AK74}}
		for i := 0; i < n; i++ {
			tpl := rapid.SampledFrom(mods).Draw(rt, "mod")
			tree = append(tree, item.Item{ID: "m" + string(rune('a'+i)), Tpl: tpl, ParentID: "root", SlotID: "mod_x"})
		}
		w, h := c.ItemSize(tree, "root")
		assert.GreaterOrEqual(rt, w, 3)
		assert.GreaterOrEqual(rt, h, 1)
	})
}
