// Package grid models a container's 2-D cell occupancy and finds free
// rectangular regions for items, including 90 degree rotated placement.
package grid

import (
	"fmt"
	"strings"
)

// Slot is the top-left coordinate of a placement.
type Slot struct {
	X       int
	Y       int
	Rotated bool
}

// Size is an item's footprint in cells before rotation.
type Size struct {
	Width  int
	Height int
}

// Grid is a row-major occupancy map. Cells are either free or occupied.
//
// Invariant: cells only transition free -> occupied; committed rectangles never
// overlap as long as Commit is only called with a slot FindFreeSlot returned
// for the same grid state.
type Grid struct {
	width  int
	height int
	cells  [][]bool
}

// New returns an empty Grid of width columns and height rows.
//
// Precondition: width >= 0 and height >= 0.
// Postcondition: every cell is free.
func New(width, height int) *Grid {
	cells := make([][]bool, height)
	for y := range cells {
		cells[y] = make([]bool, width)
	}
	return &Grid{width: width, height: height, cells: cells}
}

// Width returns the number of columns.
func (g *Grid) Width() int { return g.width }

// Height returns the number of rows.
func (g *Grid) Height() int { return g.height }

// IsOccupied reports whether the cell at (x, y) is taken.
// Out of range coordinates count as occupied.
func (g *Grid) IsOccupied(x, y int) bool {
	if x < 0 || y < 0 || x >= g.width || y >= g.height {
		return true
	}
	return g.cells[y][x]
}

// Occupied returns the number of taken cells.
func (g *Grid) Occupied() int {
	n := 0
	for _, row := range g.cells {
		for _, c := range row {
			if c {
				n++
			}
		}
	}
	return n
}

// Full reports whether every cell is taken.
func (g *Grid) Full() bool {
	return g.Occupied() == g.width*g.height
}

func rowFull(row []bool) bool {
	for _, c := range row {
		if !c {
			return false
		}
	}
	return true
}

// FindFreeSlot scans rows top to bottom and columns left to right for the
// first coordinate where a width x height rectangle is entirely free. At each
// coordinate the unrotated footprint is tried first; the rotated footprint is
// tried only when it fails and width != height.
//
// Postcondition: ok is false when no placement exists; the grid is unchanged.
func (g *Grid) FindFreeSlot(width, height int) (Slot, bool) {
	if width <= 0 || height <= 0 || g.width == 0 || g.height == 0 || g.Full() {
		return Slot{}, false
	}
	minSide := min(width, height) - 1
	limitY := g.height - minSide
	limitX := g.width - minSide
	for y := 0; y < limitY; y++ {
		if rowFull(g.cells[y]) {
			continue
		}
		for x := 0; x < limitX; x++ {
			if g.fits(x, y, width, height) {
				return Slot{X: x, Y: y}, true
			}
			if width != height && g.fits(x, y, height, width) {
				return Slot{X: x, Y: y, Rotated: true}, true
			}
		}
	}
	return Slot{}, false
}

// fits reports whether a w x h rectangle with top-left (x, y) is in bounds and free.
func (g *Grid) fits(x, y, w, h int) bool {
	if x+w > g.width || y+h > g.height {
		return false
	}
	for dy := 0; dy < h; dy++ {
		row := g.cells[y+dy]
		for dx := 0; dx < w; dx++ {
			if row[x+dx] {
				return false
			}
		}
	}
	return true
}

// Commit marks the footprint of a width x height item placed at slot as
// occupied. A rotated slot occupies height columns and width rows.
//
// Precondition: slot was just returned by FindFreeSlot(width, height) on this
// grid (or an identical clone). Commit does not re-validate.
// Postcondition: Occupied() grows by width*height.
func (g *Grid) Commit(slot Slot, width, height int) {
	w, h := width, height
	if slot.Rotated {
		w, h = height, width
	}
	for y := slot.Y; y < slot.Y+h; y++ {
		for x := slot.X; x < slot.X+w; x++ {
			g.cells[y][x] = true
		}
	}
}

// Place finds a slot for the item and commits it in one step.
//
// Postcondition: on ok the footprint is occupied; otherwise the grid is unchanged.
func (g *Grid) Place(width, height int) (Slot, bool) {
	slot, ok := g.FindFreeSlot(width, height)
	if !ok {
		return Slot{}, false
	}
	g.Commit(slot, width, height)
	return slot, true
}

// Clone returns an independent copy of the grid for speculative placement.
func (g *Grid) Clone() *Grid {
	c := New(g.width, g.height)
	for y, row := range g.cells {
		copy(c.cells[y], row)
	}
	return c
}

// FitAll reports whether every size can be placed, in order, on a clone of the
// grid. The receiver is never modified.
func (g *Grid) FitAll(sizes []Size) bool {
	c := g.Clone()
	for _, s := range sizes {
		if _, ok := c.Place(s.Width, s.Height); !ok {
			return false
		}
	}
	return true
}

// String renders the grid with '#' for occupied and '.' for free cells.
func (g *Grid) String() string {
	var b strings.Builder
	for _, row := range g.cells {
		for _, c := range row {
			if c {
				b.WriteByte('#')
			} else {
				b.WriteByte('.')
			}
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// GoString includes the dimensions, for test failure output.
func (g *Grid) GoString() string {
	return fmt.Sprintf("grid.Grid{%dx%d}\n%s", g.width, g.height, g.String())
}
