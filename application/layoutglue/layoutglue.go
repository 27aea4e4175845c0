// Package layoutglue converts a container's nested, parent-relative node
// tree into the flat geometry.Item inputs the pure primitives in
// domain/geometry require, and converts their outputs back. It is the
// "wagon-aware" layer named in §4.4: a construct with an attached wagon (or
// any ordinary organizer with its own children) is flattened into a single
// layout unit whose bounding box encloses its entire subtree, so the
// primitive sees one rectangle per top-level child and never needs to know
// about nesting.
package layoutglue

import (
	"github.com/carta-systems/carta-core/domain/core/entities"
	"github.com/carta-systems/carta-core/domain/core/valueobjects"
	"github.com/carta-systems/carta-core/domain/geometry"
)

// MaxDepth bounds the subtree walk (§9's depth-20 guard).
const MaxDepth = 20

// LayoutUnits is the result of GetChildLayoutUnits: one geometry.Item per
// direct child of the container, plus the offset needed to recover the
// child's own position from the item's chosen position.
type LayoutUnits struct {
	Items   []geometry.Item
	Offsets map[valueobjects.NodeID]valueobjects.Point
}

// childrenIndex groups nodes by parent id once, for O(1) child lookup
// during the subtree walk.
func childrenIndex(allNodes map[valueobjects.NodeID]*entities.Node) map[valueobjects.NodeID][]*entities.Node {
	idx := make(map[valueobjects.NodeID][]*entities.Node)
	for _, n := range allNodes {
		if n.ParentID != nil {
			idx[*n.ParentID] = append(idx[*n.ParentID], n)
		}
	}
	return idx
}

// subtreeRects walks a child's full descendant subtree (constructs,
// organizers, and any wagons tethered within it), accumulating each
// descendant's position in the child's own local frame — the child itself
// sits at local origin (0,0) regardless of its real position, so the
// resulting rectangles describe the layout unit's internal shape
// independent of where it ends up being placed.
func subtreeRects(child *entities.Node, idx map[valueobjects.NodeID][]*entities.Node) []geometry.Item {
	localPos := map[valueobjects.NodeID]valueobjects.Point{child.ID: {}}
	items := []geometry.Item{{
		ID: child.ID.String(), X: 0, Y: 0,
		Width: child.EffectiveSize().Width, Height: child.EffectiveSize().Height,
	}}

	frontier := []*entities.Node{child}
	for depth := 0; depth < MaxDepth && len(frontier) > 0; depth++ {
		var next []*entities.Node
		for _, n := range frontier {
			base := localPos[n.ID]
			for _, c := range idx[n.ID] {
				pos := valueobjects.Point{X: base.X + c.Position.X, Y: base.Y + c.Position.Y}
				localPos[c.ID] = pos
				size := c.EffectiveSize()
				items = append(items, geometry.Item{ID: c.ID.String(), X: pos.X, Y: pos.Y, Width: size.Width, Height: size.Height})
				next = append(next, c)
			}
		}
		frontier = next
	}
	return items
}

// GetChildLayoutUnits computes, for every direct child of containerID, a
// layout-unit bound enclosing the child plus its entire wagon subtree
// (§4.4). Offsets record, per child, the vector from the child's own local
// origin to the layout unit's top-left — negative when the subtree extends
// above or to the left of the child itself (e.g. a wagon pinned above its
// construct). This resolves §9's open sign-convention question:
// unitPosition = childPosition + offset, and ConvertToConstructPositions
// always subtracts offset back off a chosen layout position to recover the
// child's position, so the round trip holds regardless of which way the
// offset points.
func GetChildLayoutUnits(allNodes map[valueobjects.NodeID]*entities.Node, containerID valueobjects.NodeID) LayoutUnits {
	idx := childrenIndex(allNodes)
	children := idx[containerID]

	items := make([]geometry.Item, 0, len(children))
	offsets := make(map[valueobjects.NodeID]valueobjects.Point, len(children))

	for _, child := range children {
		rects := subtreeRects(child, idx)
		bound := geometry.Bounds(rects)

		items = append(items, geometry.Item{
			ID:     child.ID.String(),
			X:      child.Position.X + bound.X,
			Y:      child.Position.Y + bound.Y,
			Width:  bound.Width,
			Height: bound.Height,
		})
		offsets[child.ID] = valueobjects.Point{X: bound.X, Y: bound.Y}
	}

	return LayoutUnits{Items: items, Offsets: offsets}
}

// ConvertToConstructPositions inverts GetChildLayoutUnits: given positions a
// layout primitive chose for the layout units (keyed by item id, i.e. the
// child's NodeID string form) and the offsets GetChildLayoutUnits returned,
// it returns the child's own new Position. Descendants of the child (wagons
// included) need no adjustment of their own: their Position is relative to
// the child and therefore already follows it.
func ConvertToConstructPositions(
	layoutPositions map[string]geometry.Point,
	offsets map[valueobjects.NodeID]valueobjects.Point,
) map[valueobjects.NodeID]valueobjects.Point {
	out := make(map[valueobjects.NodeID]valueobjects.Point, len(offsets))
	for id, offset := range offsets {
		p, ok := layoutPositions[id.String()]
		if !ok {
			continue
		}
		out[id] = valueobjects.Point{X: p.X - offset.X, Y: p.Y - offset.Y}
	}
	return out
}

// GetChildVisualFootprints is like GetChildLayoutUnits but returns every
// descendant's own rectangle (not just the merged bound), in
// container-relative coordinates, for use as an obstacle map by the
// orthogonal router.
func GetChildVisualFootprints(allNodes map[valueobjects.NodeID]*entities.Node, containerID valueobjects.NodeID) []geometry.Item {
	idx := childrenIndex(allNodes)
	var out []geometry.Item
	for _, child := range idx[containerID] {
		for _, item := range subtreeRects(child, idx) {
			out = append(out, geometry.Item{
				ID:     item.ID,
				X:      item.X + child.Position.X,
				Y:      item.Y + child.Position.Y,
				Width:  item.Width,
				Height: item.Height,
			})
		}
	}
	return out
}
