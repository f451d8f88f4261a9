// Package catalogtest builds a small, fully cross-referenced item catalog for
// tests across the engine packages.
package catalogtest

import (
	"github.com/cory-johannsen/raidloot/internal/game/catalog"
	"github.com/cory-johannsen/raidloot/internal/game/item"
)

// Template ids in the fixture catalog.
const (
	Roubles      = "roubles"
	Dollars      = "dollars"
	Ammo545PS    = "ammo_545_ps"
	Ammo545BP    = "ammo_545_bp"
	Ammo9x18     = "ammo_9x18_pm"
	Grenade40    = "ammo_40mm_vog"
	AmmoBox545   = "ammobox_545_ps_120"
	Mag545x30    = "mag_ak74_30"
	Mag9x18PMM   = "mag_pp9_30"
	Cylinder     = "cyl_rsh12"
	AK74         = "weapon_ak74"
	GP25         = "launcher_gp25"
	AKWithGP     = "weapon_ak74_gp"
	RSP          = "weapon_rsp30"
	SKS          = "weapon_sks"
	StockAK      = "stock_ak"
	StockFolding = "stock_folding"
	Silencer     = "silencer_545"
	Receiver     = "receiver_sks"
	Vest         = "vest_6b13"
	PlateFront   = "plate_front"
	PlateBack    = "plate_back"
	SoftInsert   = "soft_insert"
	PlateHeavy   = "plate_heavy"
	Helmet       = "helmet_6b47"
	Visor        = "visor_6b47"
	Bandage      = "bandage"
	Painkiller   = "painkiller"
	Rifle2x5     = "big_rifle"
	Jacket       = "container_jacket"
	Crate        = "container_crate"
	Toolbox      = "container_toolbox"
	Backpack     = "backpack_pilgrim"
	Garland      = "xmas_garland"
)

func node(id string, parent catalog.BaseClass) *catalog.Template {
	return &catalog.Template{ID: id, Name: id, Parent: string(parent), Type: catalog.TypeNode}
}

func itm(id, parent string, w, h, price int) *catalog.Template {
	return &catalog.Template{ID: id, Name: id, Parent: parent, Type: catalog.TypeItem, Width: w, Height: h, Price: price}
}

// Templates returns fresh template definitions for the fixture catalog.
func Templates() []*catalog.Template {
	var ts []*catalog.Template
	add := func(t ...*catalog.Template) { ts = append(ts, t...) }

	add(
		&catalog.Template{ID: "item", Name: "Item", Type: catalog.TypeNode},
		node(string(catalog.BaseMoney), "item"),
		node(string(catalog.BaseAmmo), "item"),
		node(string(catalog.BaseAmmoBox), "item"),
		node(string(catalog.BaseMagazine), "item"),
		node(string(catalog.BaseCylinderMagazine), catalog.BaseMagazine),
		node(string(catalog.BaseWeapon), "item"),
		node(string(catalog.BaseArmor), "item"),
		node(string(catalog.BaseVest), "item"),
		node(string(catalog.BaseHeadwear), "item"),
		node(string(catalog.BaseArmorPlate), "item"),
		node(string(catalog.BaseBackpack), "item"),
		node(string(catalog.BaseLootContainer), "item"),
		node("mod", "item"),
		node("meds", "item"),
		node("barter", "item"),
	)

	money := func(id string, price int) *catalog.Template {
		t := itm(id, string(catalog.BaseMoney), 1, 1, price)
		t.StackMaxSize, t.StackMinRandom, t.StackMaxRandom = 500000, 100, 5000
		return t
	}
	add(money(Roubles, 1), money(Dollars, 140))

	ammo := func(id, caliber string, price int) *catalog.Template {
		t := itm(id, string(catalog.BaseAmmo), 1, 1, price)
		t.Caliber = caliber
		t.StackMaxSize, t.StackMinRandom, t.StackMaxRandom = 60, 10, 40
		return t
	}
	vog := ammo(Grenade40, "Caliber40x46", 3000)
	vog.StackMaxSize, vog.StackMinRandom, vog.StackMaxRandom = 1, 1, 1
	add(ammo(Ammo545PS, "Caliber545x39", 100), ammo(Ammo545BP, "Caliber545x39", 300), ammo(Ammo9x18, "Caliber9x18PM", 50), vog)

	box := itm(AmmoBox545, string(catalog.BaseAmmoBox), 1, 1, 12000)
	box.StackSlots = &catalog.Capacity{MaxCount: 120, Filter: []string{Ammo545PS}}
	add(box)

	mag := itm(Mag545x30, string(catalog.BaseMagazine), 1, 2, 1500)
	mag.Cartridges = &catalog.Capacity{MaxCount: 30, Filter: []string{Ammo545PS, Ammo545BP}}
	mag.ExtraSize = catalog.ExtraSize{Down: 1}
	pp9 := itm(Mag9x18PMM, string(catalog.BaseMagazine), 1, 1, 900)
	pp9.Cartridges = &catalog.Capacity{MaxCount: 30, Filter: []string{Ammo9x18}}
	cyl := itm(Cylinder, string(catalog.BaseCylinderMagazine), 1, 1, 2000)
	cylSlot := catalog.Slot{Filter: []string{Ammo9x18}}
	for _, name := range []string{"camora_000", "camora_001", "camora_002", "camora_003", "camora_004"} {
		s := cylSlot
		s.Name = name
		cyl.Slots = append(cyl.Slots, s)
	}
	add(mag, pp9, cyl)

	stock := itm(StockAK, "mod", 1, 1, 2000)
	stock.ExtraSize = catalog.ExtraSize{Right: 1}
	folding := itm(StockFolding, "mod", 1, 1, 2500)
	folding.ExtraSize = catalog.ExtraSize{Right: 2}
	silencer := itm(Silencer, "mod", 1, 1, 9000)
	silencer.ExtraSize = catalog.ExtraSize{Left: 1, ForceAdd: true}
	receiver := itm(Receiver, "mod", 1, 1, 4000)
	add(stock, folding, silencer, receiver)

	ak := itm(AK74, string(catalog.BaseWeapon), 3, 1, 30000)
	ak.AmmoCaliber = "Caliber545x39"
	ak.DefaultAmmo = Ammo545PS
	ak.Chambers = []catalog.Slot{{Name: "patron_in_weapon", Filter: []string{Ammo545PS, Ammo545BP}}}
	ak.Slots = []catalog.Slot{
		{Name: "mod_magazine", Filter: []string{Mag545x30}},
		{Name: "mod_stock", Filter: []string{StockAK, StockFolding}},
		{Name: "mod_muzzle", Filter: []string{Silencer}},
	}
	gp := itm(GP25, string(catalog.BaseWeapon), 1, 1, 20000)
	gp.AmmoCaliber = "Caliber40x46"
	gp.DefaultAmmo = Grenade40
	gp.Chambers = []catalog.Slot{{Name: "patron_in_weapon", Filter: []string{Grenade40}}}
	akgp := itm(AKWithGP, string(catalog.BaseWeapon), 3, 1, 50000)
	akgp.AmmoCaliber = "Caliber545x39"
	akgp.DefaultAmmo = Ammo545PS
	akgp.Slots = []catalog.Slot{
		{Name: "mod_magazine", Filter: []string{Mag545x30}},
		{Name: "mod_launcher", Filter: []string{GP25}},
	}
	rsp := itm(RSP, string(catalog.BaseWeapon), 2, 1, 5000)
	sks := itm(SKS, string(catalog.BaseWeapon), 4, 1, 25000)
	sks.Slots = []catalog.Slot{
		{Name: "mod_reciever", Required: true, Filter: []string{Receiver}},
		{Name: "mod_stock", Filter: []string{StockAK}},
	}
	add(ak, gp, akgp, rsp, sks)

	plate := func(id string, dur float64, conflicts ...string) *catalog.Template {
		t := itm(id, string(catalog.BaseArmorPlate), 1, 1, 10000)
		t.MaxDurability = dur
		t.ConflictingItems = conflicts
		return t
	}
	add(plate(PlateFront, 50), plate(PlateBack, 50), plate(SoftInsert, 40), plate(PlateHeavy, 80, PlateBack))

	vest := itm(Vest, string(catalog.BaseArmor), 3, 3, 60000)
	vest.MaxDurability = 60
	vest.Slots = []catalog.Slot{
		{Name: "Soft_armor_front", Required: true, Filter: []string{SoftInsert}},
		{Name: "Front_plate", Filter: []string{PlateHeavy, PlateFront}},
		{Name: "Back_plate", Filter: []string{PlateBack}},
	}
	helmet := itm(Helmet, string(catalog.BaseHeadwear), 2, 2, 40000)
	helmet.Slots = []catalog.Slot{{Name: "mod_equipment", Filter: []string{Visor}}}
	visor := itm(Visor, "mod", 1, 1, 8000)
	visor.MaxDurability = 30
	add(vest, helmet, visor)

	add(
		itm(Bandage, "meds", 1, 1, 400),
		itm(Painkiller, "meds", 1, 1, 900),
		itm(Rifle2x5, "barter", 2, 5, 70000),
		itm(Garland, "barter", 1, 1, 5000),
	)

	container := func(id string, w, h int) *catalog.Template {
		t := itm(id, string(catalog.BaseLootContainer), w, h, 0)
		t.Grids = []catalog.GridDef{{Name: "main", Width: w, Height: h}}
		return t
	}
	pack := itm(Backpack, string(catalog.BaseBackpack), 5, 6, 30000)
	pack.Grids = []catalog.GridDef{{Name: "main", Width: 5, Height: 6}}
	add(container(Jacket, 2, 2), container(Crate, 4, 4), container(Toolbox, 3, 2), pack)
	return ts
}

// Presets returns fresh preset definitions for the fixture catalog.
func Presets() []*catalog.Preset {
	return []*catalog.Preset{
		{
			ID: "preset_ak74", Name: "AK-74 default", Tpl: AK74, Default: true,
			Items: item.Tree{
				{ID: "p_ak", Tpl: AK74},
				{ID: "p_ak_mag", Tpl: Mag545x30, ParentID: "p_ak", SlotID: item.SlotMagazine},
				{ID: "p_ak_stock", Tpl: StockAK, ParentID: "p_ak", SlotID: "mod_stock"},
			},
		},
		{
			ID: "preset_ak74_folding", Name: "AK-74 folding", Tpl: AK74,
			Items: item.Tree{
				{ID: "pf_ak", Tpl: AK74},
				{ID: "pf_ak_stock", Tpl: StockFolding, ParentID: "pf_ak", SlotID: "mod_stock"},
			},
		},
		{
			ID: "preset_ak74_gp", Name: "AK-74 with GP-25", Tpl: AKWithGP, Default: true,
			Items: item.Tree{
				{ID: "g_ak", Tpl: AKWithGP},
				{ID: "g_mag", Tpl: Mag545x30, ParentID: "g_ak", SlotID: item.SlotMagazine},
				{ID: "g_gp", Tpl: GP25, ParentID: "g_ak", SlotID: item.SlotLauncher},
			},
		},
		{
			ID: "preset_helmet", Name: "6B47 default", Tpl: Helmet, Default: true,
			Items: item.Tree{
				{ID: "h_root", Tpl: Helmet},
				{ID: "h_visor", Tpl: Visor, ParentID: "h_root", SlotID: "mod_equipment"},
			},
		},
	}
}

// MustCatalog builds the fixture catalog and panics on error.
func MustCatalog() *catalog.Catalog {
	c, err := catalog.Build(Templates(), Presets())
	if err != nil {
		panic("catalogtest: " + err.Error())
	}
	return c
}

// AmmoDistribution returns a static ammo distribution covering the fixture calibers.
func AmmoDistribution() catalog.AmmoDistribution {
	return catalog.AmmoDistribution{
		"Caliber545x39": {{Tpl: Ammo545PS, RelativeProbability: 3}, {Tpl: Ammo545BP, RelativeProbability: 1}},
		"Caliber9x18PM": {{Tpl: Ammo9x18, RelativeProbability: 1}},
		"Caliber40x46":  {{Tpl: Grenade40, RelativeProbability: 1}},
	}
}
