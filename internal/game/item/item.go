// Package item defines the flattened, parent-linked item trees produced by the
// loot engine and the helpers that copy, re-id and reparent them.
package item

import (
	"errors"
	"fmt"
)

// SlotID names the socket an item occupies inside its parent.
type SlotID string

const (
	// SlotMain is a grid slot inside a container.
	SlotMain SlotID = "main"
	// SlotCartridges holds cartridge stacks inside magazines and ammo boxes.
	SlotCartridges SlotID = "cartridges"
	// SlotMagazine is a weapon's magazine socket.
	SlotMagazine SlotID = "mod_magazine"
	// SlotChamber is a weapon's chamber.
	SlotChamber SlotID = "patron_in_weapon"
	// SlotLauncher is an underbarrel launcher socket.
	SlotLauncher SlotID = "mod_launcher"
)

// IsMod reports whether the slot is a weapon/armor modification socket.
// Only mods contribute to an item's inventory footprint.
func (s SlotID) IsMod() bool {
	return len(s) >= 4 && s[:4] == "mod_"
}

// Rotation is a grid placement orientation.
type Rotation int

const (
	// Horizontal is the unrotated orientation.
	Horizontal Rotation = 0
	// Vertical is rotated by 90 degrees.
	Vertical Rotation = 1
)

// Location is a grid placement inside a container.
type Location struct {
	X int      `json:"x" yaml:"x"`
	Y int      `json:"y" yaml:"y"`
	R Rotation `json:"r" yaml:"r"`
}

// Repairable holds durability values.
type Repairable struct {
	Durability    float64 `json:"Durability" yaml:"durability"`
	MaxDurability float64 `json:"MaxDurability" yaml:"max_durability"`
}

// Upd holds per-instance mutable properties.
type Upd struct {
	StackObjectsCount int         `json:"StackObjectsCount,omitempty" yaml:"stack_objects_count,omitempty"`
	SpawnedInSession  bool        `json:"SpawnedInSession,omitempty" yaml:"spawned_in_session,omitempty"`
	Repairable        *Repairable `json:"Repairable,omitempty" yaml:"repairable,omitempty"`
}

// Item is one node of a flattened item tree.
type Item struct {
	ID       string    `json:"_id" yaml:"id"`
	Tpl      string    `json:"_tpl" yaml:"tpl"`
	ParentID string    `json:"parentId,omitempty" yaml:"parent_id,omitempty"`
	SlotID   SlotID    `json:"slotId,omitempty" yaml:"slot_id,omitempty"`
	Location *Location `json:"location,omitempty" yaml:"location,omitempty"`
	// StackIndex orders cartridge stacks inside a magazine or ammo box.
	StackIndex *int `json:"stackIndex,omitempty" yaml:"stack_index,omitempty"`
	Upd        *Upd `json:"upd,omitempty" yaml:"upd,omitempty"`
}

// StackCount returns the stack size, treating a missing upd as 1.
func (it Item) StackCount() int {
	if it.Upd == nil || it.Upd.StackObjectsCount == 0 {
		return 1
	}
	return it.Upd.StackObjectsCount
}

// Clone returns a deep copy of the item.
func (it Item) Clone() Item {
	out := it
	if it.Location != nil {
		loc := *it.Location
		out.Location = &loc
	}
	if it.StackIndex != nil {
		idx := *it.StackIndex
		out.StackIndex = &idx
	}
	if it.Upd != nil {
		upd := *it.Upd
		if it.Upd.Repairable != nil {
			rep := *it.Upd.Repairable
			upd.Repairable = &rep
		}
		out.Upd = &upd
	}
	return out
}

// ErrEmptyTree is returned for a tree with no nodes.
var ErrEmptyTree = errors.New("item: tree is empty")

// Tree is a flattened item tree. By convention the root is Tree[0].
type Tree []Item

// Root returns the first node.
//
// Precondition: len(t) > 0.
func (t Tree) Root() Item { return t[0] }

// Clone returns a deep copy of the tree.
func (t Tree) Clone() Tree {
	out := make(Tree, len(t))
	for i, it := range t {
		out[i] = it.Clone()
	}
	return out
}

// Tpls returns the template ids in tree order.
func (t Tree) Tpls() []string {
	out := make([]string, len(t))
	for i, it := range t {
		out[i] = it.Tpl
	}
	return out
}

// ByID returns the node with the given id.
func (t Tree) ByID(id string) (Item, bool) {
	for _, it := range t {
		if it.ID == id {
			return it, true
		}
	}
	return Item{}, false
}

// Children returns the direct children of parentID in tree order.
func (t Tree) Children(parentID string) []Item {
	var out []Item
	for _, it := range t {
		if it.ParentID == parentID && it.ID != parentID {
			out = append(out, it)
		}
	}
	return out
}

// InSlot returns the first direct child of parentID in slot.
func (t Tree) InSlot(parentID string, slot SlotID) (Item, bool) {
	for _, it := range t {
		if it.ParentID == parentID && it.SlotID == slot {
			return it, true
		}
	}
	return Item{}, false
}

// Subtree returns rootID and all of its descendants, root first, preserving
// tree order for the descendants.
//
// Postcondition: result is empty when rootID is not present.
func (t Tree) Subtree(rootID string) Tree {
	root, ok := t.ByID(rootID)
	if !ok {
		return nil
	}
	keep := map[string]bool{rootID: true}
	out := Tree{root}
	// Children can precede their parents in source data, so iterate until stable.
	for changed := true; changed; {
		changed = false
		for _, it := range t {
			if keep[it.ID] || !keep[it.ParentID] {
				continue
			}
			keep[it.ID] = true
			changed = true
		}
	}
	for _, it := range t {
		if it.ID != rootID && keep[it.ID] {
			out = append(out, it)
		}
	}
	return out
}

// Shape is the id-free structure of a tree: each node's tpl, slot and the
// index of its parent (-1 for the root). Two trees with the same Shape differ
// only by ids.
type Shape []ShapeNode

// ShapeNode is one entry of a Shape.
type ShapeNode struct {
	Tpl    string
	Slot   SlotID
	Parent int
	Count  int
}

// Shape returns the id-free structure of the tree.
func (t Tree) Shape() Shape {
	index := make(map[string]int, len(t))
	for i, it := range t {
		index[it.ID] = i
	}
	out := make(Shape, len(t))
	for i, it := range t {
		parent := -1
		if p, ok := index[it.ParentID]; ok {
			parent = p
		}
		out[i] = ShapeNode{Tpl: it.Tpl, Slot: it.SlotID, Parent: parent, Count: it.StackCount()}
	}
	return out
}

// Validate checks the composed-item invariants: exactly one node whose parent
// is outside the tree (the root, at index 0), unique ids, and every other
// node's parent present in the tree.
//
// Postcondition: returns nil iff the invariants hold.
func (t Tree) Validate() error {
	if len(t) == 0 {
		return ErrEmptyTree
	}
	ids := make(map[string]bool, len(t))
	for _, it := range t {
		if it.ID == "" {
			return fmt.Errorf("item: node with tpl %q has an empty id", it.Tpl)
		}
		if ids[it.ID] {
			return fmt.Errorf("item: duplicate id %q", it.ID)
		}
		ids[it.ID] = true
	}
	if ids[t[0].ParentID] {
		return fmt.Errorf("item: root %q has a parent inside the tree", t[0].ID)
	}
	for _, it := range t[1:] {
		if !ids[it.ParentID] {
			return fmt.Errorf("item: node %q references missing parent %q", it.ID, it.ParentID)
		}
	}
	return nil
}
