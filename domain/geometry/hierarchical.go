package geometry

// Edge is the minimal edge shape the hierarchical layout and orthogonal
// router need: just the two endpoint ids. Domain edges carry much more
// (waypoints, handles, data) but layout primitives never see that — it is
// stripped by application/layoutactions before the call.
type Edge struct {
	Source string
	Target string
}

// HierarchicalOptions configures Hierarchical.
type HierarchicalOptions struct {
	// LayerGap is the vertical gap between layers. Zero means the default, 60.
	LayerGap float64
	// IntraLayerGap is the horizontal gap between items in the same layer.
	// Zero means the default, 30.
	IntraLayerGap float64
	OriginX       float64
	OriginY       float64
}

const (
	defaultLayerGap      = 60.0
	defaultIntraLayerGap = 30.0
)

// Hierarchical lays items out top-to-bottom in layers assigned by longest
// path from a source-free node (a node with no incoming edge in the given
// edge set); within a layer, items keep input order. y is strictly
// increasing per layer; items in the same layer share the layer's y.
func Hierarchical(items []Item, edges []Edge, opts HierarchicalOptions) map[string]Point {
	if len(items) == 0 {
		return map[string]Point{}
	}
	layerGap := opts.LayerGap
	if layerGap == 0 {
		layerGap = defaultLayerGap
	}
	gap := opts.IntraLayerGap
	if gap == 0 {
		gap = defaultIntraLayerGap
	}

	layer := longestPathLayers(items, edges)

	maxLayer := 0
	for _, l := range layer {
		if l > maxLayer {
			maxLayer = l
		}
	}

	// group items by layer, preserving input order within each layer.
	byLayer := make([][]Item, maxLayer+1)
	for _, it := range items {
		l := layer[it.ID]
		byLayer[l] = append(byLayer[l], it)
	}

	result := make(map[string]Point, len(items))
	y := opts.OriginY
	for l := 0; l <= maxLayer; l++ {
		row := byLayer[l]
		if len(row) == 0 {
			continue
		}
		rowMaxHeight := 0.0
		x := opts.OriginX
		for _, it := range row {
			result[it.ID] = Point{X: x, Y: y}
			x += it.Width + gap
			if it.Height > rowMaxHeight {
				rowMaxHeight = it.Height
			}
		}
		y += rowMaxHeight + layerGap
	}

	return result
}

// longestPathLayers assigns each item's layer as the length of the longest
// path reaching it from any source-free node (topological longest path).
// Cycles are broken by tracking the nodes on the current DFS stack: a node
// already on the stack is treated as having no further in-edges to walk, so
// malformed cyclic input still terminates and produces a layering rather
// than looping.
func longestPathLayers(items []Item, edges []Edge) map[string]int {
	ids := make(map[string]bool, len(items))
	for _, it := range items {
		ids[it.ID] = true
	}

	incoming := make(map[string][]string) // target -> sources
	hasIncoming := make(map[string]bool)
	for _, e := range edges {
		if !ids[e.Source] || !ids[e.Target] || e.Source == e.Target {
			continue
		}
		incoming[e.Target] = append(incoming[e.Target], e.Source)
		hasIncoming[e.Target] = true
	}

	layer := make(map[string]int, len(items))
	computing := make(map[string]bool, len(items))

	var layerOf func(id string) int
	layerOf = func(id string) int {
		if l, ok := layer[id]; ok {
			return l
		}
		if computing[id] {
			// cycle: treat this edge as not constraining further.
			return -1
		}
		computing[id] = true
		best := -1
		for _, src := range incoming[id] {
			l := layerOf(src)
			if l > best {
				best = l
			}
		}
		result := best + 1
		layer[id] = result
		computing[id] = false
		return result
	}

	for _, it := range items {
		layerOf(it.ID)
	}
	return layer
}
