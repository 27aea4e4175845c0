package geometry

// RouteEdge is the input to Route: an edge between two node rectangles,
// identified by the ids of items already present in the `items` slice
// passed to Route.
type RouteEdge struct {
	ID     string
	Source string
	Target string
}

// routeMargin is the clearance a routed segment keeps from an obstacle it
// detours around.
const routeMargin = 15.0

// Route computes an orthogonal (axis-aligned only) waypoint path for every
// edge, routing each one clear of every item's interior except its own
// endpoints (§4.3). Routing is deterministic: edges are processed in input
// order and each edge's path depends only on item geometry, never on the
// paths chosen for other edges.
//
// The path for an edge is, by default, a single-bend "L" route: a
// horizontal leg from the source's exit side to the target's column
// (or a vertical leg first, chosen by whichever axis has the larger gap
// between the two rectangles, for a stable and visually direct default).
// If that bend point's legs cross an obstacle's interior, the bend is
// pushed outward step by step, in routeMargin increments, until both legs
// clear every obstacle or a bounded number of attempts is exhausted — at
// which point the last attempted (possibly still-crossing) route is kept
// rather than looping forever, since routing every case perfectly around
// arbitrary obstacle fields is not guaranteed to terminate on a single
// bend.
func Route(items []Item, edges []RouteEdge) map[string][]Point {
	byID := make(map[string]Item, len(items))
	for _, it := range items {
		byID[it.ID] = it
	}

	result := make(map[string][]Point, len(edges))
	for _, e := range edges {
		src, ok1 := byID[e.Source]
		tgt, ok2 := byID[e.Target]
		if !ok1 || !ok2 {
			result[e.ID] = nil
			continue
		}
		obstacles := make([]Rect, 0, len(items))
		for _, it := range items {
			if it.ID == e.Source || it.ID == e.Target {
				continue
			}
			obstacles = append(obstacles, it.Rect())
		}
		result[e.ID] = routeOne(src.Rect(), tgt.Rect(), obstacles)
	}
	return result
}

// routeOne computes the waypoints for a single edge between src and tgt,
// avoiding the given obstacles.
func routeOne(src, tgt Rect, obstacles []Rect) []Point {
	start := exitPoint(src, tgt)
	end := exitPoint(tgt, src)

	horizontalFirst := absf(end.X-start.X) >= absf(end.Y-start.Y)

	path := directPath(start, end, horizontalFirst)
	if !pathCrossesAny(path, obstacles, src, tgt) {
		return path
	}

	const maxAttempts = 8
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		offset := float64(attempt) * routeMargin
		candidate := jogPath(start, end, horizontalFirst, offset)
		if !pathCrossesAny(candidate, obstacles, src, tgt) {
			return candidate
		}
		path = candidate
	}

	return path
}

// directPath is the plain single-bend "L" route between start and end.
func directPath(start, end Point, horizontalFirst bool) []Point {
	if horizontalFirst {
		return []Point{start, {X: end.X, Y: start.Y}, end}
	}
	return []Point{start, {X: start.X, Y: end.Y}, end}
}

// jogPath is a three-segment, axis-aligned detour that travels through an
// intermediate level offset from the direct route's bend, so every leg stays
// axis-aligned even while the route is pushed clear of an obstacle.
func jogPath(start, end Point, horizontalFirst bool, offset float64) []Point {
	if horizontalFirst {
		y := start.Y + offset
		return []Point{start, {X: start.X, Y: y}, {X: end.X, Y: y}, end}
	}
	x := start.X + offset
	return []Point{start, {X: x, Y: start.Y}, {X: x, Y: end.Y}, end}
}

// exitPoint returns the point on `from`'s boundary closest to `toward`'s
// center, on whichever side faces it.
func exitPoint(from, toward Rect) Point {
	tx, ty := toward.CenterX(), toward.CenterY()
	dx := tx - from.CenterX()
	dy := ty - from.CenterY()

	if absf(dx) >= absf(dy) {
		if dx >= 0 {
			return Point{X: from.Right(), Y: from.CenterY()}
		}
		return Point{X: from.X, Y: from.CenterY()}
	}
	if dy >= 0 {
		return Point{X: from.CenterX(), Y: from.Bottom()}
	}
	return Point{X: from.CenterX(), Y: from.Y}
}

// pathCrossesAny reports whether any segment of path passes through the
// interior of any obstacle, ignoring the endpoint rectangles themselves
// (a route is allowed, and expected, to touch src/tgt at its ends).
func pathCrossesAny(path []Point, obstacles []Rect, src, tgt Rect) bool {
	for i := 0; i+1 < len(path); i++ {
		for _, o := range obstacles {
			if segmentCrossesRect(path[i], path[i+1], o) {
				return true
			}
		}
	}
	_ = src
	_ = tgt
	return false
}

// segmentCrossesRect reports whether the axis-aligned segment a-b passes
// through r's interior. Segments are always axis-aligned in this package.
func segmentCrossesRect(a, b Point, r Rect) bool {
	minX, maxX := a.X, b.X
	if minX > maxX {
		minX, maxX = maxX, minX
	}
	minY, maxY := a.Y, b.Y
	if minY > maxY {
		minY, maxY = maxY, minY
	}
	segRect := Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
	if segRect.Width == 0 {
		segRect.Width = 0.0001
	}
	if segRect.Height == 0 {
		segRect.Height = 0.0001
	}
	return segRect.Overlaps(r)
}

func absf(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
