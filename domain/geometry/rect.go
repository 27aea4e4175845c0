// Package geometry implements the pure, side-effect-free layout primitives
// of §4.3: de-overlap, grid, hierarchical (Sugiyama-style), compact, the
// pin-constraint resolver, and orthogonal edge routing. Every function here
// is a deterministic function of its input order and values — no I/O, no
// randomness, no wall-clock reads — so it can be driven directly from
// table-driven tests and from the layout-actions facade alike.
package geometry

import "sort"

// Item is the flat geometry input every primitive in this package consumes:
// an id plus an axis-aligned bounding box. Nested node trees are flattened
// into Items by application/layoutglue before reaching this package.
type Item struct {
	ID     string
	X      float64
	Y      float64
	Width  float64
	Height float64
}

// Point is a 2D coordinate.
type Point struct {
	X float64
	Y float64
}

// Rect is an axis-aligned bounding box.
type Rect struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

// Right returns the rectangle's right edge.
func (r Rect) Right() float64 { return r.X + r.Width }

// Bottom returns the rectangle's bottom edge.
func (r Rect) Bottom() float64 { return r.Y + r.Height }

// CenterX returns the rectangle's horizontal center.
func (r Rect) CenterX() float64 { return r.X + r.Width/2 }

// CenterY returns the rectangle's vertical center.
func (r Rect) CenterY() float64 { return r.Y + r.Height/2 }

// Overlaps reports whether r and o share any interior area.
func (r Rect) Overlaps(o Rect) bool {
	return r.X < o.Right() && o.X < r.Right() && r.Y < o.Bottom() && o.Y < r.Bottom()
}

// Rect returns the Item's bounding box.
func (it Item) Rect() Rect {
	return Rect{X: it.X, Y: it.Y, Width: it.Width, Height: it.Height}
}

// Bounds computes the smallest rectangle enclosing every item. It panics on
// an empty slice; callers must check length first (every call site in this
// package already guards on len(items) == 0 before calling Bounds).
func Bounds(items []Item) Rect {
	minX, minY := items[0].X, items[0].Y
	maxX, maxY := items[0].X+items[0].Width, items[0].Y+items[0].Height
	for _, it := range items[1:] {
		if it.X < minX {
			minX = it.X
		}
		if it.Y < minY {
			minY = it.Y
		}
		if it.X+it.Width > maxX {
			maxX = it.X + it.Width
		}
		if it.Y+it.Height > maxY {
			maxY = it.Y + it.Height
		}
	}
	return Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}

// positionsByID is a small helper every primitive uses to build its return
// value in a single place.
func positionsByID(items []Item, at func(Item) Point) map[string]Point {
	out := make(map[string]Point, len(items))
	for _, it := range items {
		out[it.ID] = at(it)
	}
	return out
}

// stableOrder returns the indices of items sorted by less, breaking ties by
// original input order (a stable sort already does this, but the helper
// documents the determinism guarantee every primitive relies on).
func stableOrder(items []Item, less func(a, b Item) bool) []int {
	idx := make([]int, len(items))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(i, j int) bool {
		return less(items[idx[i]], items[idx[j]])
	})
	return idx
}
