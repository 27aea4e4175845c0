package geometry

import "math"

// gridCellPadding is added to the widest/tallest item in the set to get the
// column width / row height (§4.3).
const gridCellPadding = 30.0

// GridOptions configures Grid.
type GridOptions struct {
	// Columns overrides the default ceil(sqrt(n)) column count. Zero means
	// "use the default".
	Columns int
	// OriginX/OriginY place the top-left cell; both default to 0.
	OriginX float64
	OriginY float64
}

// Grid arranges items into a grid in input order, row-major: column width is
// the widest item's width plus gridCellPadding, row height is the tallest
// item's height plus gridCellPadding — a uniform cell size, not a packed
// one, so rows and columns stay aligned regardless of per-item size.
func Grid(items []Item, opts GridOptions) map[string]Point {
	if len(items) == 0 {
		return map[string]Point{}
	}

	cols := opts.Columns
	if cols <= 0 {
		cols = int(math.Ceil(math.Sqrt(float64(len(items)))))
		if cols < 1 {
			cols = 1
		}
	}

	var maxW, maxH float64
	for _, it := range items {
		if it.Width > maxW {
			maxW = it.Width
		}
		if it.Height > maxH {
			maxH = it.Height
		}
	}
	colWidth := maxW + gridCellPadding
	rowHeight := maxH + gridCellPadding

	return positionsByID(items, func(it Item) Point {
		idx := indexOf(items, it.ID)
		row := idx / cols
		col := idx % cols
		return Point{
			X: opts.OriginX + float64(col)*colWidth,
			Y: opts.OriginY + float64(row)*rowHeight,
		}
	})
}

func indexOf(items []Item, id string) int {
	for i, it := range items {
		if it.ID == id {
			return i
		}
	}
	return -1
}
