package geometry

import "sort"

// compactGap is the clearance compaction leaves between two items that end
// up adjacent along an axis.
const compactGap = 20.0

// Compact removes whitespace between top-level items while preserving their
// spatial order along both axes: two items keep left-of/right-of and
// above/below relationships, but glued-together bands of consistently empty
// space are squeezed out independently on x and y.
//
// Each axis is compacted independently by collapsing maximal runs of items
// that do not overlap the next run's span on that axis, keeping
// compactGap between runs that were previously further apart and leaving
// touching/overlapping runs exactly as close as they already were (never
// pulling items into new overlaps).
func Compact(items []Item) map[string]Point {
	if len(items) == 0 {
		return map[string]Point{}
	}

	xs := compactAxis(items, func(it Item) (float64, float64) { return it.X, it.X + it.Width })
	ys := compactAxis(items, func(it Item) (float64, float64) { return it.Y, it.Y + it.Height })

	out := make(map[string]Point, len(items))
	for _, it := range items {
		out[it.ID] = Point{X: xs[it.ID], Y: ys[it.ID]}
	}
	return out
}

// compactAxis computes new start coordinates for one axis. span returns an
// item's (start, end) interval on that axis.
func compactAxis(items []Item, span func(Item) (float64, float64)) map[string]float64 {
	type bound struct {
		id         string
		start, end float64
	}
	bounds := make([]bound, len(items))
	for i, it := range items {
		s, e := span(it)
		bounds[i] = bound{id: it.ID, start: s, end: e}
	}

	order := make([]int, len(bounds))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return bounds[order[a]].start < bounds[order[b]].start
	})

	out := make(map[string]float64, len(bounds))
	var prevEnd float64
	first := true
	var shift float64

	for _, idx := range order {
		b := bounds[idx]
		if first {
			shift = 0
			out[b.id] = b.start
			prevEnd = b.end - shift
			first = false
			continue
		}
		gapBefore := (b.start - shift) - prevEnd
		if gapBefore > compactGap {
			shift += gapBefore - compactGap
		}
		newStart := b.start - shift
		out[b.id] = newStart
		end := b.end - shift
		if end > prevEnd {
			prevEnd = end
		}
	}

	return out
}
