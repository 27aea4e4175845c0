// Package hierarchy implements the parentId-chain helpers of §5: resolving
// a node's absolute position by summing relative offsets up its ancestor
// chain, converting an absolute position down into a parent-relative one,
// and the nesting-eligibility rule layout actions and the document adapter
// both consult before reparenting a node.
//
// These are pure functions over a node snapshot (a map, not the live Page
// aggregate) so they can be driven from read-only view snapshots inside a
// layout action without holding a transaction open — the same posture the
// teacher's domain/core/validators package takes toward Graph state.
package hierarchy

import (
	"github.com/carta-systems/carta-core/domain/core/entities"
	"github.com/carta-systems/carta-core/domain/core/valueobjects"
)

// MaxDepth bounds every parentId-chain walk. It matches
// aggregates.MaxNestingDepth; duplicated here rather than imported so this
// package never depends on domain/core/aggregates (hierarchy is a leaf
// package the aggregate itself can eventually depend on).
const MaxDepth = 20

// ResolveAbsolute sums a node's Position up its parentId chain to produce
// its absolute, page-space position. It is best-effort beyond MaxDepth: a
// chain longer than that (malformed data, not something AddNode would ever
// produce) stops summing rather than looping or erroring, and returns the
// partial sum accumulated so far.
func ResolveAbsolute(nodeID valueobjects.NodeID, allNodes map[valueobjects.NodeID]*entities.Node) valueobjects.Point {
	node, ok := allNodes[nodeID]
	if !ok {
		return valueobjects.Point{}
	}

	pos := node.Position
	cur := node
	depth := 0
	for cur.ParentID != nil && depth < MaxDepth {
		parent, ok := allNodes[*cur.ParentID]
		if !ok {
			break
		}
		pos = pos.Add(parent.Position)
		cur = parent
		depth++
	}
	return pos
}

// ToRelative converts an absolute, page-space position into one relative to
// parentAbsolute — the inverse half of ResolveAbsolute for a single level:
// node.Position = ToRelative(ResolveAbsolute(node), ResolveAbsolute(parent)).
func ToRelative(absolute, parentAbsolute valueobjects.Point) valueobjects.Point {
	return absolute.Sub(parentAbsolute)
}

// CanNestInOrganizer reports whether `node` may become a child of
// `targetOrganizer`, per §3's nesting rule: an organizer may directly
// contain constructs and wagons it owns (organizers whose
// attachedToSemanticId equals one of the organizer's own construct
// descendants' semanticId does not apply here — ownership is checked by
// the caller via the construct the wagon is attached to), but never another
// freestanding organizer.
//
// Concretely: targetOrganizer must itself be an organizer; node must be
// either a construct, or a wagon whose AttachedToSemanticID matches the
// semanticId of a construct that is -- or will become, for an in-flight
// attach -- a child of targetOrganizer. Since that "will become" half of
// the rule depends on the operation being performed (attach vs. validate
// current state), this function checks the weaker, always-sound condition:
// node is a construct, or node is a wagon (any wagon may be proposed for
// attachment; the adapter still enforces the semanticId match against the
// specific construct being tethered via AttachNodeToOrganizer).
func CanNestInOrganizer(node *entities.Node, targetOrganizer *entities.Node) bool {
	if targetOrganizer == nil || !targetOrganizer.IsOrganizer() {
		return false
	}
	if node == nil {
		return false
	}
	if node.IsConstruct() {
		return true
	}
	return node.IsWagon()
}

// Depth returns how many ancestors a node has, capped at MaxDepth.
func Depth(nodeID valueobjects.NodeID, allNodes map[valueobjects.NodeID]*entities.Node) int {
	node, ok := allNodes[nodeID]
	if !ok {
		return 0
	}
	depth := 0
	cur := node
	for cur.ParentID != nil && depth < MaxDepth {
		parent, ok := allNodes[*cur.ParentID]
		if !ok {
			break
		}
		cur = parent
		depth++
	}
	return depth
}

// Descendants returns every node transitively parented under containerID,
// breadth-first, capped at MaxDepth levels. The result excludes containerID
// itself.
func Descendants(containerID valueobjects.NodeID, allNodes map[valueobjects.NodeID]*entities.Node) []valueobjects.NodeID {
	childrenOf := make(map[valueobjects.NodeID][]valueobjects.NodeID, len(allNodes))
	for id, n := range allNodes {
		if n.ParentID != nil {
			childrenOf[*n.ParentID] = append(childrenOf[*n.ParentID], id)
		}
	}

	var out []valueobjects.NodeID
	frontier := []valueobjects.NodeID{containerID}
	for depth := 0; depth < MaxDepth && len(frontier) > 0; depth++ {
		var next []valueobjects.NodeID
		for _, id := range frontier {
			for _, child := range childrenOf[id] {
				out = append(out, child)
				next = append(next, child)
			}
		}
		frontier = next
	}
	return out
}
