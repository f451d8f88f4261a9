package catalog

import "github.com/cory-johannsen/raidloot/internal/game/item"

// ItemSize returns the inventory footprint of the subtree rooted at rootID.
// Mods (children in mod_ slots, recursively) extend the host by their extra
// size: the largest extension per side wins, except ForceAdd mods which always
// add. Container-like roots (backpacks, searchable and simple containers)
// ignore their contents. Unknown templates count as 1x1.
//
// Postcondition: width >= 1 and height >= 1.
func (c *Catalog) ItemSize(t item.Tree, rootID string) (width, height int) {
	root, ok := t.ByID(rootID)
	if !ok {
		return 1, 1
	}
	tpl, ok := c.templates[root.Tpl]
	if !ok {
		return 1, 1
	}
	width, height = tpl.Width, tpl.Height
	if c.IsOfBaseClass(tpl.ID, BaseBackpack, BaseSearchableItem, BaseSimpleContainer) {
		return max(width, 1), max(height, 1)
	}

	var best, forced ExtraSize
	todo := []string{rootID}
	for len(todo) > 0 {
		parent := todo[0]
		todo = todo[1:]
		for _, child := range t.Children(parent) {
			if !child.SlotID.IsMod() {
				continue
			}
			todo = append(todo, child.ID)
			mod, ok := c.templates[child.Tpl]
			if !ok {
				continue
			}
			es := mod.ExtraSize
			if es.ForceAdd {
				forced.Left += es.Left
				forced.Right += es.Right
				forced.Up += es.Up
				forced.Down += es.Down
				continue
			}
			best.Left = max(best.Left, es.Left)
			best.Right = max(best.Right, es.Right)
			best.Up = max(best.Up, es.Up)
			best.Down = max(best.Down, es.Down)
		}
	}
	width += best.Left + best.Right + forced.Left + forced.Right
	height += best.Up + best.Down + forced.Up + forced.Down
	return max(width, 1), max(height, 1)
}
