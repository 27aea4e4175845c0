// Package presentation implements the four-stage presentation pipeline of
// §4.6: a pure, total function of (nodes, edges) that resolves which nodes
// are hidden behind a collapsed organizer, remaps edges whose endpoints are
// hidden to the topmost collapsed ancestor, and aggregates the resulting
// cross-container edges with a bundle count.
//
// Like domain/geometry this package is side-effect-free; the document
// adapter's current page snapshot is the only input, never the adapter
// itself, so the pipeline can be unit tested without any CRDT machinery —
// the same separation the teacher draws between its domain/core/validators
// (pure) and application/services (effectful) layers.
package presentation

import (
	"github.com/carta-systems/carta-core/domain/core/entities"
	"github.com/carta-systems/carta-core/domain/core/valueobjects"
)

// MaxDepth bounds the hidden-descendants BFS and the ancestor walk (§9's
// depth-20 guard).
const MaxDepth = 20

// ProcessedNode is a node annotated with its presentation-layer visibility.
type ProcessedNode struct {
	Node   *entities.Node
	Hidden bool
}

// ProcessedEdge is an edge after remap and aggregation. BundleCount is the
// number of original edges this one represents; 1 for an edge that was
// never remapped.
type ProcessedEdge struct {
	Source      valueobjects.NodeID
	Target      valueobjects.NodeID
	Data        entities.EdgeData
	BundleCount int
}

// Result is the pipeline's output.
type Result struct {
	ProcessedNodes []ProcessedNode
	ProcessedEdges []ProcessedEdge
	// EdgeRemap maps every node id to its effective presentation endpoint:
	// itself if visible or selected, otherwise its topmost collapsed
	// ancestor.
	EdgeRemap map[valueobjects.NodeID]valueobjects.NodeID
}

// Compute runs the full pipeline. selected marks nodes the caller has
// selected in the view; selected nodes are exempted from remap so the user
// always sees the real edges of what they are actively working on.
func Compute(
	nodes map[valueobjects.NodeID]*entities.Node,
	edges map[valueobjects.EdgeID]*entities.Edge,
	selected map[valueobjects.NodeID]bool,
) Result {
	return ComputeWithMaxDepth(nodes, edges, selected, MaxDepth)
}

// ComputeWithMaxDepth is Compute with an explicit depth-guard bound, for
// callers (infrastructure/di, cmd/cartadoc) that source it from
// infrastructure/config rather than accepting the package default. maxDepth
// <= 0 falls back to MaxDepth.
func ComputeWithMaxDepth(
	nodes map[valueobjects.NodeID]*entities.Node,
	edges map[valueobjects.EdgeID]*entities.Edge,
	selected map[valueobjects.NodeID]bool,
	maxDepth int,
) Result {
	if maxDepth <= 0 {
		maxDepth = MaxDepth
	}
	collapsed := collapsedSet(nodes)
	hidden := hiddenDescendants(nodes, collapsed, maxDepth)
	remap := buildRemap(nodes, hidden, collapsed, selected, maxDepth)

	processedNodes := make([]ProcessedNode, 0, len(nodes))
	for _, n := range nodes {
		processedNodes = append(processedNodes, ProcessedNode{Node: n, Hidden: hidden[n.ID]})
	}

	processedEdges := aggregateEdges(edges, remap)

	return Result{ProcessedNodes: processedNodes, ProcessedEdges: processedEdges, EdgeRemap: remap}
}

// collapsedSet returns the ids of organizers whose data.collapsed is true.
func collapsedSet(nodes map[valueobjects.NodeID]*entities.Node) map[valueobjects.NodeID]bool {
	out := make(map[valueobjects.NodeID]bool)
	for id, n := range nodes {
		if n.IsOrganizer() && n.Organizer != nil && n.Organizer.Collapsed {
			out[id] = true
		}
	}
	return out
}

// hiddenDescendants BFS-walks parentId from every collapsed organizer,
// marking every descendant hidden, bounded to maxDepth levels.
func hiddenDescendants(nodes map[valueobjects.NodeID]*entities.Node, collapsed map[valueobjects.NodeID]bool, maxDepth int) map[valueobjects.NodeID]bool {
	childrenOf := make(map[valueobjects.NodeID][]valueobjects.NodeID, len(nodes))
	for id, n := range nodes {
		if n.ParentID != nil {
			childrenOf[*n.ParentID] = append(childrenOf[*n.ParentID], id)
		}
	}

	hidden := make(map[valueobjects.NodeID]bool)
	for root := range collapsed {
		frontier := []valueobjects.NodeID{root}
		for depth := 0; depth < maxDepth && len(frontier) > 0; depth++ {
			var next []valueobjects.NodeID
			for _, id := range frontier {
				for _, child := range childrenOf[id] {
					if !hidden[child] {
						hidden[child] = true
						next = append(next, child)
					}
				}
			}
			frontier = next
		}
	}
	return hidden
}

// buildRemap maps every node to its effective presentation endpoint: itself
// if not hidden or if selected, otherwise the topmost (root-most) collapsed
// ancestor found by walking its parentId chain.
func buildRemap(
	nodes map[valueobjects.NodeID]*entities.Node,
	hidden map[valueobjects.NodeID]bool,
	collapsed map[valueobjects.NodeID]bool,
	selected map[valueobjects.NodeID]bool,
	maxDepth int,
) map[valueobjects.NodeID]valueobjects.NodeID {
	remap := make(map[valueobjects.NodeID]valueobjects.NodeID, len(nodes))
	for id, n := range nodes {
		if !hidden[id] || selected[id] {
			remap[id] = id
			continue
		}
		topmost := id
		cur := n
		depth := 0
		for cur.ParentID != nil && depth < maxDepth {
			parent, ok := nodes[*cur.ParentID]
			if !ok {
				break
			}
			if collapsed[parent.ID] {
				topmost = parent.ID
			}
			cur = parent
			depth++
		}
		remap[id] = topmost
	}
	return remap
}

// aggregateEdges applies stage 4: remap each edge's endpoints, drop
// self-loops, pass unremapped edges through individually, and group
// remapped edges by (source', target') with a bundle count.
func aggregateEdges(edges map[valueobjects.EdgeID]*entities.Edge, remap map[valueobjects.NodeID]valueobjects.NodeID) []ProcessedEdge {
	type key struct{ source, target valueobjects.NodeID }
	groups := make(map[key]int)
	groupData := make(map[key]entities.EdgeData)
	var individual []ProcessedEdge
	var order []key

	for _, e := range edges {
		sa, ok := remap[e.Source]
		if !ok {
			sa = e.Source
		}
		ta, ok := remap[e.Target]
		if !ok {
			ta = e.Target
		}
		if sa.Equals(ta) {
			continue // self-loop after remap
		}
		if sa.Equals(e.Source) && ta.Equals(e.Target) {
			individual = append(individual, ProcessedEdge{Source: sa, Target: ta, Data: e.Data, BundleCount: 1})
			continue
		}
		k := key{sa, ta}
		if _, exists := groups[k]; !exists {
			order = append(order, k)
			groupData[k] = e.Data
		}
		groups[k]++
	}

	out := individual
	for _, k := range order {
		out = append(out, ProcessedEdge{Source: k.source, Target: k.target, Data: groupData[k], BundleCount: groups[k]})
	}
	return out
}

// TraceResult is the output of TraceGraph.
type TraceResult struct {
	Distances    map[valueobjects.NodeID]int
	EdgeDistance map[valueobjects.EdgeID]int
	MaxDepth     int
}

// TraceGraph returns BFS shortest-path distances from startNode over edges,
// treated as undirected for reachability, plus per-edge distance (the
// distance of the edge's target) and the maximum distance reached. Cycles
// are handled naturally by the visited set.
func TraceGraph(startNode valueobjects.NodeID, edges map[valueobjects.EdgeID]*entities.Edge) TraceResult {
	adjacency := make(map[valueobjects.NodeID][]valueobjects.NodeID)
	edgesByID := make(map[valueobjects.EdgeID]*entities.Edge, len(edges))
	for id, e := range edges {
		adjacency[e.Source] = append(adjacency[e.Source], e.Target)
		adjacency[e.Target] = append(adjacency[e.Target], e.Source)
		edgesByID[id] = e
	}

	distances := map[valueobjects.NodeID]int{startNode: 0}
	frontier := []valueobjects.NodeID{startNode}
	maxDepth := 0
	for len(frontier) > 0 {
		var next []valueobjects.NodeID
		for _, id := range frontier {
			d := distances[id]
			for _, neighbor := range adjacency[id] {
				if _, seen := distances[neighbor]; seen {
					continue
				}
				distances[neighbor] = d + 1
				if d+1 > maxDepth {
					maxDepth = d + 1
				}
				next = append(next, neighbor)
			}
		}
		frontier = next
	}

	edgeDistance := make(map[valueobjects.EdgeID]int, len(edgesByID))
	for id, e := range edgesByID {
		if d, ok := distances[e.Target]; ok {
			edgeDistance[id] = d
		} else if d, ok := distances[e.Source]; ok {
			edgeDistance[id] = d
		}
	}

	return TraceResult{Distances: distances, EdgeDistance: edgeDistance, MaxDepth: maxDepth}
}

// ConnectedComponents is a supplemental diagnostic (SPEC_FULL.md) that
// partitions nodes into connected components by edge adjacency, useful for
// surfacing orphaned subgraphs in a large document. It reuses TraceGraph's
// adjacency-building approach rather than duplicating it.
func ConnectedComponents(nodes map[valueobjects.NodeID]*entities.Node, edges map[valueobjects.EdgeID]*entities.Edge) [][]valueobjects.NodeID {
	adjacency := make(map[valueobjects.NodeID][]valueobjects.NodeID)
	for _, e := range edges {
		adjacency[e.Source] = append(adjacency[e.Source], e.Target)
		adjacency[e.Target] = append(adjacency[e.Target], e.Source)
	}

	visited := make(map[valueobjects.NodeID]bool, len(nodes))
	var components [][]valueobjects.NodeID
	for id := range nodes {
		if visited[id] {
			continue
		}
		var component []valueobjects.NodeID
		frontier := []valueobjects.NodeID{id}
		visited[id] = true
		for len(frontier) > 0 {
			var next []valueobjects.NodeID
			for _, cur := range frontier {
				component = append(component, cur)
				for _, neighbor := range adjacency[cur] {
					if !visited[neighbor] {
						visited[neighbor] = true
						next = append(next, neighbor)
					}
				}
			}
			frontier = next
		}
		components = append(components, component)
	}
	return components
}
