package item_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/raidloot/internal/game/item"
)

// seqMinter issues predictable ids for assertions.
type seqMinter struct{ n int }

func (s *seqMinter) NewID() string {
	s.n++
	return fmt.Sprintf("id%d", s.n)
}

func rifleTree() item.Tree {
	return item.Tree{
		{ID: "w", Tpl: "rifle", ParentID: "crate", SlotID: item.SlotMain},
		{ID: "m", Tpl: "mag", ParentID: "w", SlotID: item.SlotMagazine},
		{ID: "c", Tpl: "round", ParentID: "m", SlotID: item.SlotCartridges, Upd: &item.Upd{StackObjectsCount: 30}},
		{ID: "s", Tpl: "stock", ParentID: "w", SlotID: "mod_stock"},
	}
}

func TestTree_Validate(t *testing.T) {
	require.NoError(t, rifleTree().Validate())

	assert.ErrorIs(t, item.Tree{}.Validate(), item.ErrEmptyTree)

	orphan := rifleTree()
	orphan[3].ParentID = "nope"
	assert.Error(t, orphan.Validate())

	dup := rifleTree()
	dup[2].ID = "m"
	assert.Error(t, dup.Validate())

	cyclicRoot := rifleTree()
	cyclicRoot[0].ParentID = "s"
	assert.Error(t, cyclicRoot.Validate())
}

func TestTree_ChildrenAndSlots(t *testing.T) {
	tr := rifleTree()
	kids := tr.Children("w")
	require.Len(t, kids, 2)
	assert.Equal(t, "mag", kids[0].Tpl)

	mag, ok := tr.InSlot("w", item.SlotMagazine)
	require.True(t, ok)
	assert.Equal(t, "m", mag.ID)

	_, ok = tr.InSlot("w", item.SlotChamber)
	assert.False(t, ok)
}

func TestTree_Subtree(t *testing.T) {
	sub := rifleTree().Subtree("m")
	assert.Equal(t, []string{"mag", "round"}, sub.Tpls())
	assert.Empty(t, rifleTree().Subtree("missing"))
}

func TestTree_Subtree_ChildBeforeParent(t *testing.T) {
	tr := item.Tree{
		{ID: "c", Tpl: "round", ParentID: "m"},
		{ID: "w", Tpl: "rifle"},
		{ID: "m", Tpl: "mag", ParentID: "w"},
	}
	assert.Equal(t, []string{"rifle", "round", "mag"}, tr.Subtree("w").Tpls())
}

func TestReplaceIDs_PreservesShape(t *testing.T) {
	tr := rifleTree()
	out := item.ReplaceIDs(tr, &seqMinter{})
	require.NoError(t, out.Validate())
	assert.Equal(t, tr.Shape(), out.Shape())
	assert.Equal(t, "crate", out[0].ParentID, "external root parent must be preserved")
	for _, it := range out {
		_, clash := tr.ByID(it.ID)
		assert.False(t, clash)
	}
	assert.Equal(t, "w", tr[0].ID, "input must not be mutated")
}

func TestReparent(t *testing.T) {
	out := item.Reparent(rifleTree(), "root", "", "", &seqMinter{})
	require.NoError(t, out.Validate())
	assert.Equal(t, "root", out[0].ID)
	assert.Empty(t, out[0].ParentID)
	assert.Equal(t, "root", out[1].ParentID)
	assert.Equal(t, "root", out[3].ParentID)
}

func TestUUIDMinter_Unique(t *testing.T) {
	m := item.NewUUIDMinter()
	seen := map[string]bool{}
	for i := 0; i < 1000; i++ {
		id := m.NewID()
		require.Len(t, id, 32)
		require.False(t, seen[id])
		seen[id] = true
	}
}

func TestSlotID_IsMod(t *testing.T) {
	assert.True(t, item.SlotMagazine.IsMod())
	assert.True(t, item.SlotLauncher.IsMod())
	assert.False(t, item.SlotCartridges.IsMod())
	assert.False(t, item.SlotChamber.IsMod())
}

func TestItem_CloneIsDeep(t *testing.T) {
	idx := 2
	it := item.Item{
		ID: "a", Tpl: "b",
		Location:   &item.Location{X: 1},
		StackIndex: &idx,
		Upd:        &item.Upd{StackObjectsCount: 5, Repairable: &item.Repairable{Durability: 10}},
	}
	c := it.Clone()
	c.Location.X = 9
	*c.StackIndex = 9
	c.Upd.Repairable.Durability = 1
	assert.Equal(t, 1, it.Location.X)
	assert.Equal(t, 2, *it.StackIndex)
	assert.Equal(t, 10.0, it.Upd.Repairable.Durability)
	assert.Equal(t, 5, it.StackCount())
	assert.Equal(t, 1, item.Item{}.StackCount())
}

// TestReplaceIDs_Property verifies that re-iding any valid chain tree keeps it
// valid and shape-equal.
func TestReplaceIDs_Property(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(1, 15).Draw(rt, "n")
		tr := item.Tree{{ID: "n0", Tpl: "t0"}}
		for i := 1; i < n; i++ {
			parent := rapid.IntRange(0, i-1).Draw(rt, "parent")
			tr = append(tr, item.Item{ID: fmt.Sprintf("n%d", i), Tpl: fmt.Sprintf("t%d", i), ParentID: fmt.Sprintf("n%d", parent)})
		}
		out := item.ReplaceIDs(tr, item.NewUUIDMinter())
		assert.NoError(rt, out.Validate())
		assert.Equal(rt, tr.Shape(), out.Shape())
	})
}
