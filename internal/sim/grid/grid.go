// Package grid provides the sparse occupancy store for the sidewalk: a
// bounded integer lattice where every cell holds at most one occupant and
// every stored occupant sits on exactly one cell.
package grid

import (
	"errors"
	"fmt"
	"sort"
)

// ErrOutOfBounds is returned (wrapped, with the offending coordinate) when a
// write targets a cell outside the grid.
var ErrOutOfBounds = errors.New("coordinate out of bounds")

// Coord is an integer cell address. X runs along the travel axis, Y across it.
type Coord struct {
	X int
	Y int
}

// Grid maps coordinates to occupants. A reverse index keeps removal and
// relocation O(1) regardless of occupancy.
//
// Reads accept any integer coordinate and report empty for cells outside the
// grid. Writes are stricter: Put rejects out-of-bounds targets with an error,
// while Relocate and Remove panic on misuse, since their callers are required
// to have validated the target first and a violation means the simulation's
// occupancy invariant is already broken.
type Grid[T comparable] struct {
	length int
	width  int
	cells  map[Coord]T
	at     map[T]Coord
}

func New[T comparable](length, width int) *Grid[T] {
	if length <= 0 || width <= 0 {
		panic(fmt.Sprintf("grid: invalid dimensions %dx%d", length, width))
	}
	return &Grid[T]{
		length: length,
		width:  width,
		cells:  map[Coord]T{},
		at:     map[T]Coord{},
	}
}

func (g *Grid[T]) Length() int { return g.length }
func (g *Grid[T]) Width() int  { return g.width }

func (g *Grid[T]) InBounds(x, y int) bool {
	return x >= 0 && x < g.length && y >= 0 && y < g.width
}

// IsOccupied reports whether a cell currently holds an occupant. Cells
// outside the grid are never occupied.
func (g *Grid[T]) IsOccupied(x, y int) bool {
	_, ok := g.cells[Coord{X: x, Y: y}]
	return ok
}

// Get returns the occupant at (x, y), if any.
func (g *Grid[T]) Get(x, y int) (T, bool) {
	v, ok := g.cells[Coord{X: x, Y: y}]
	return v, ok
}

// Put inserts item at (x, y). It returns an ErrOutOfBounds-wrapped error for
// an invalid target and (false, nil) if the cell is already taken; contention
// is a normal outcome, not an error.
func (g *Grid[T]) Put(x, y int, item T) (bool, error) {
	if !g.InBounds(x, y) {
		return false, fmt.Errorf("%w: (%d,%d)", ErrOutOfBounds, x, y)
	}
	c := Coord{X: x, Y: y}
	if _, taken := g.cells[c]; taken {
		return false, nil
	}
	if old, present := g.at[item]; present {
		panic(fmt.Sprintf("grid: put of item already stored at (%d,%d)", old.X, old.Y))
	}
	g.cells[c] = item
	g.at[item] = c
	return true, nil
}

// Relocate moves an already-stored item to (x, y) atomically. The caller must
// have verified the target is in bounds and free; a violation is an invariant
// breach and panics with the offending coordinate.
func (g *Grid[T]) Relocate(x, y int, item T) {
	if !g.InBounds(x, y) {
		panic(fmt.Sprintf("grid: relocate out of bounds: (%d,%d)", x, y))
	}
	c := Coord{X: x, Y: y}
	if _, taken := g.cells[c]; taken {
		panic(fmt.Sprintf("grid: relocate onto occupied cell (%d,%d)", x, y))
	}
	old, present := g.at[item]
	if !present {
		panic(fmt.Sprintf("grid: relocate of unknown item to (%d,%d)", x, y))
	}
	delete(g.cells, old)
	g.cells[c] = item
	g.at[item] = c
}

// Remove deletes the item's entry. Removing an item that is not stored is a
// programming error and panics.
func (g *Grid[T]) Remove(item T) {
	c, present := g.at[item]
	if !present {
		panic("grid: remove of item with no entry")
	}
	delete(g.cells, c)
	delete(g.at, item)
}

// At returns the current coordinate of a stored item.
func (g *Grid[T]) At(item T) (Coord, bool) {
	c, ok := g.at[item]
	return c, ok
}

func (g *Grid[T]) Len() int { return len(g.cells) }

// Snapshot returns all occupants ordered by coordinate (x, then y). The order
// is deterministic for a given grid state; it carries no meaning across ticks.
func (g *Grid[T]) Snapshot() []T {
	coords := make([]Coord, 0, len(g.cells))
	for c := range g.cells {
		coords = append(coords, c)
	}
	sort.Slice(coords, func(i, j int) bool {
		if coords[i].X != coords[j].X {
			return coords[i].X < coords[j].X
		}
		return coords[i].Y < coords[j].Y
	})
	out := make([]T, len(coords))
	for i, c := range coords {
		out[i] = g.cells[c]
	}
	return out
}
