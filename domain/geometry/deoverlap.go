package geometry

import "math"

// deoverlapGap is the minimum clearance de-overlap leaves between two items
// once resolved. It is independent of the padding grid.go and the
// container-fit primitive use.
const deoverlapGap = 10.0

// DeOverlap returns a placement for items with no two rectangles
// overlapping, minimizing total movement from the input positions. Ties are
// broken by input order: when two items are resolved the earlier one in
// `items` is preferred to stay put and the later one moves.
//
// The algorithm is a bounded number of passes of pairwise separation, the
// standard approach for small-to-medium interactive diagrams (tens to a few
// hundred nodes) where an exact minimum-movement solution is not worth the
// cost: each pass pushes every overlapping pair apart along whichever axis
// needs the smaller displacement, and passes repeat until no pair overlaps
// or a bound on iterations is hit (malformed/degenerate input must still
// terminate).
func DeOverlap(items []Item) map[string]Point {
	if len(items) == 0 {
		return map[string]Point{}
	}

	working := make([]Item, len(items))
	copy(working, items)

	maxPasses := len(working)*len(working) + 8
	for pass := 0; pass < maxPasses; pass++ {
		moved := false
		for i := 0; i < len(working); i++ {
			for j := i + 1; j < len(working); j++ {
				if !working[i].Rect().Overlaps(working[j].Rect()) {
					continue
				}
				moved = true
				separate(&working[i], &working[j])
			}
		}
		if !moved {
			break
		}
	}

	return positionsByID(working, func(it Item) Point { return Point{X: it.X, Y: it.Y} })
}

// separate pushes b away from a along the axis with the smaller required
// displacement, moving only b so earlier items (lower index, i.e. earlier in
// input order) keep their position.
func separate(a, b *Item) {
	ar, br := a.Rect(), b.Rect()

	overlapX := math.Min(ar.Right(), br.Right()) - math.Max(ar.X, br.X)
	overlapY := math.Min(ar.Bottom(), br.Bottom()) - math.Max(ar.Y, br.Y)

	if overlapX <= 0 || overlapY <= 0 {
		return
	}

	if overlapX < overlapY {
		push := overlapX + deoverlapGap
		if br.CenterX() >= ar.CenterX() {
			b.X += push
		} else {
			b.X -= push
		}
		return
	}

	push := overlapY + deoverlapGap
	if br.CenterY() >= ar.CenterY() {
		b.Y += push
	} else {
		b.Y -= push
	}
}
