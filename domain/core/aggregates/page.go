// Package aggregates holds the Document and Page aggregate roots: the
// in-memory shape the CRDT store (infrastructure/crdtstore) materializes on
// each read and the application/adapter package mutates inside transactions.
//
// This generalizes the teacher's Graph aggregate (domain/core/aggregates in
// the teacher repo): where Graph owned a flat node/edge map with a single
// nesting-free topology, Page owns a parentId-linked forest of
// constructs/organizers/wagons plus pin constraints, and Document owns an
// ordered list of Pages plus the registries shared across all of them.
package aggregates

import (
	"github.com/carta-systems/carta-core/domain/core/entities"
	"github.com/carta-systems/carta-core/domain/core/valueobjects"
	apperrors "github.com/carta-systems/carta-core/pkg/errors"
)

// MaxNestingDepth bounds every ancestor/descendant traversal over parentId
// (§3, §5): it makes malformed data safe to process without looping forever.
// A genuine cycle is refused at write time; this guard covers data that
// arrived pre-formed (import, migration, a bug in a prior version).
const MaxNestingDepth = 20

// Page is a single canvas: its own nodes, edges and pin constraints.
// Deleting a page deletes everything it owns (§3).
type Page struct {
	ID             valueobjects.PageID
	Name           string
	Nodes          map[valueobjects.NodeID]*entities.Node
	Edges          map[valueobjects.EdgeID]*entities.Edge
	PinConstraints []entities.PinConstraint
	// insertionOrder preserves "parent-before-children order in the page's
	// insertion sequence" (§3) for snapshot determinism.
	insertionOrder []valueobjects.NodeID
}

// NewPage creates an empty page.
func NewPage(id valueobjects.PageID, name string) *Page {
	return &Page{
		ID:    id,
		Name:  name,
		Nodes: make(map[valueobjects.NodeID]*entities.Node),
		Edges: make(map[valueobjects.EdgeID]*entities.Edge),
	}
}

// OrderedNodeIDs returns node ids in insertion order.
func (p *Page) OrderedNodeIDs() []valueobjects.NodeID {
	out := make([]valueobjects.NodeID, 0, len(p.insertionOrder))
	for _, id := range p.insertionOrder {
		if _, ok := p.Nodes[id]; ok {
			out = append(out, id)
		}
	}
	return out
}

// AddNode inserts a node, enforcing: parent (if any) must exist on this
// page, a non-wagon organizer may never have a non-construct parent, a
// wagon's parentId must equal the id of the construct carrying its
// semanticId, and no cycle may result.
func (p *Page) AddNode(node *entities.Node) error {
	if node == nil {
		return apperrors.NewInvalidShape("node cannot be nil")
	}
	if node.ID.IsZero() {
		return apperrors.NewInvalidShape("node id cannot be empty")
	}
	if _, exists := p.Nodes[node.ID]; exists {
		return apperrors.NewInvariantViolation("node already exists on page")
	}

	if node.ParentID != nil {
		parent, ok := p.Nodes[*node.ParentID]
		if !ok {
			return apperrors.NewInvariantViolation("parentId references a node not on this page")
		}
		if err := p.validateNesting(node, parent); err != nil {
			return err
		}
	}

	p.Nodes[node.ID] = node
	p.insertionOrder = append(p.insertionOrder, node.ID)
	return nil
}

func (p *Page) validateNesting(node *entities.Node, parent *entities.Node) error {
	if node.IsOrganizer() && !node.IsWagon() {
		if !parent.IsConstruct() {
			return apperrors.NewInvariantViolation("a non-wagon organizer may never have a non-construct parent")
		}
	}
	if node.IsWagon() {
		if !parent.IsConstruct() {
			return apperrors.NewInvariantViolation("a wagon's parentId must be a construct")
		}
		semID := ""
		if node.Organizer.AttachedToSemanticID != nil {
			semID = *node.Organizer.AttachedToSemanticID
		}
		if parent.SemanticID() != semID {
			return apperrors.NewInvariantViolation("a wagon's parentId must equal the id of the construct whose semanticId it carries")
		}
	}
	// cycle check: walking up from parent must never reach node.
	seen := map[valueobjects.NodeID]bool{node.ID: true}
	cur := parent
	depth := 0
	for cur != nil && cur.ParentID != nil && depth < MaxNestingDepth {
		if seen[cur.ID] {
			return apperrors.NewInvariantViolation("cycle detected in parentId chain")
		}
		seen[cur.ID] = true
		next, ok := p.Nodes[*cur.ParentID]
		if !ok {
			break
		}
		if next.ID.Equals(node.ID) {
			return apperrors.NewInvariantViolation("cycle detected in parentId chain")
		}
		cur = next
		depth++
	}
	return nil
}

// SetParent reparents an existing node, running the same checks as AddNode.
// It never changes Position — callers that want absolute position preserved
// across a reparent should adjust Position themselves (see
// domain/hierarchy and application/layoutactions attach/detach).
func (p *Page) SetParent(nodeID valueobjects.NodeID, parentID *valueobjects.NodeID) error {
	node, ok := p.Nodes[nodeID]
	if !ok {
		return apperrors.NewUnknownID("node", nodeID.String())
	}
	if parentID == nil {
		node.ParentID = nil
		return nil
	}
	parent, ok := p.Nodes[*parentID]
	if !ok {
		return apperrors.NewInvariantViolation("parentId references a node not on this page")
	}
	old := node.ParentID
	node.ParentID = parentID
	if err := p.validateNesting(node, parent); err != nil {
		node.ParentID = old
		return err
	}
	return nil
}

// RemoveNode deletes a node. It does not cascade to children or wagons —
// callers (application/adapter) decide cascade policy per operation; this
// keeps the aggregate's invariant surface small and testable.
func (p *Page) RemoveNode(id valueobjects.NodeID) error {
	if _, ok := p.Nodes[id]; !ok {
		return apperrors.NewUnknownID("node", id.String())
	}
	delete(p.Nodes, id)
	for i, oid := range p.insertionOrder {
		if oid.Equals(id) {
			p.insertionOrder = append(p.insertionOrder[:i], p.insertionOrder[i+1:]...)
			break
		}
	}
	return nil
}

// AddEdge inserts an edge, enforcing that both endpoints exist on this page.
func (p *Page) AddEdge(edge *entities.Edge) error {
	if edge == nil {
		return apperrors.NewInvalidShape("edge cannot be nil")
	}
	if edge.ID.IsZero() {
		return apperrors.NewInvalidShape("edge id cannot be empty")
	}
	if _, ok := p.Nodes[edge.Source]; !ok {
		return apperrors.NewInvariantViolation("edge source must reference a node on the same page")
	}
	if _, ok := p.Nodes[edge.Target]; !ok {
		return apperrors.NewInvariantViolation("edge target must reference a node on the same page")
	}
	if _, exists := p.Edges[edge.ID]; exists {
		return apperrors.NewInvariantViolation("edge already exists on page")
	}
	p.Edges[edge.ID] = edge
	return nil
}

// RemoveEdge deletes an edge.
func (p *Page) RemoveEdge(id valueobjects.EdgeID) error {
	if _, ok := p.Edges[id]; !ok {
		return apperrors.NewUnknownID("edge", id.String())
	}
	delete(p.Edges, id)
	return nil
}

// Children returns the direct children of containerID in insertion order.
func (p *Page) Children(containerID valueobjects.NodeID) []*entities.Node {
	var out []*entities.Node
	for _, id := range p.insertionOrder {
		n, ok := p.Nodes[id]
		if !ok || n.ParentID == nil {
			continue
		}
		if n.ParentID.Equals(containerID) {
			out = append(out, n)
		}
	}
	return out
}

// Validate checks the page's structural invariants hold (§8): every edge's
// endpoints exist, every parentId resolves and contains no cycle.
func (p *Page) Validate() error {
	for _, e := range p.Edges {
		if _, ok := p.Nodes[e.Source]; !ok {
			return apperrors.NewInvariantViolation("edge references missing source node")
		}
		if _, ok := p.Nodes[e.Target]; !ok {
			return apperrors.NewInvariantViolation("edge references missing target node")
		}
	}
	for _, n := range p.Nodes {
		if n.ParentID == nil {
			continue
		}
		seen := map[valueobjects.NodeID]bool{}
		cur := n
		depth := 0
		for cur.ParentID != nil && depth < MaxNestingDepth {
			if seen[cur.ID] {
				return apperrors.NewInvariantViolation("cycle in parentId chain")
			}
			seen[cur.ID] = true
			next, ok := p.Nodes[*cur.ParentID]
			if !ok {
				return apperrors.NewInvariantViolation("parentId references missing node")
			}
			cur = next
			depth++
		}
	}
	return nil
}
