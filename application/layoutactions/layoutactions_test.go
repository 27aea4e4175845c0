package layoutactions

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carta-systems/carta-core/application/adapter"
	"github.com/carta-systems/carta-core/domain/core/aggregates"
	"github.com/carta-systems/carta-core/domain/core/entities"
	"github.com/carta-systems/carta-core/domain/core/valueobjects"
)

func newTestAdapter(t *testing.T) *adapter.Adapter {
	t.Helper()
	doc := aggregates.NewDocument("untitled")
	doc.CreatePage("Page 1")
	return adapter.New(doc, "replica-1", nil)
}

func construct(id valueobjects.NodeID, parent *valueobjects.NodeID, x, y float64) *entities.Node {
	return &entities.Node{
		ID: id, Type: entities.NodeTypeConstruct, ParentID: parent,
		Position:  valueobjects.Point{X: x, Y: y},
		Construct: &entities.ConstructData{ConstructType: "service", SemanticID: "s-" + id.String()},
	}
}

func organizer(id valueobjects.NodeID, parent *valueobjects.NodeID, x, y, w, h float64) *entities.Node {
	return &entities.Node{
		ID: id, Type: entities.NodeTypeOrganizer, ParentID: parent,
		Position:  valueobjects.Point{X: x, Y: y},
		Width:     &w, Height: &h,
		Organizer: &entities.OrganizerData{IsOrganizer: true, Name: "group"},
	}
}

// TestAttachDetach_PreservesAbsolutePosition matches §8 scenario 1: a node
// at absolute (250,300) attached to a container at (100,100) ends up at
// relative (150,200); detaching restores (250,300).
func TestAttachDetach_PreservesAbsolutePosition(t *testing.T) {
	a := newTestAdapter(t)
	containerID := valueobjects.NewNodeID()
	nodeID := valueobjects.NewNodeID()

	require.NoError(t, a.AddNode(adapter.OriginUser, organizer(containerID, nil, 100, 100, 400, 300)))
	require.NoError(t, a.AddNode(adapter.OriginUser, construct(nodeID, nil, 250, 300)))

	actions := New(a)
	require.NoError(t, actions.AttachNodeToOrganizer(nodeID, containerID))

	nodes, err := a.GetNodes()
	require.NoError(t, err)
	var attached *entities.Node
	for _, n := range nodes {
		if n.ID.Equals(nodeID) {
			attached = n
		}
	}
	require.NotNil(t, attached)
	require.NotNil(t, attached.ParentID)
	assert.True(t, attached.ParentID.Equals(containerID))
	assert.Equal(t, 150.0, attached.Position.X)
	assert.Equal(t, 200.0, attached.Position.Y)

	require.NoError(t, actions.DetachNodeFromOrganizer(nodeID))

	nodes, err = a.GetNodes()
	require.NoError(t, err)
	for _, n := range nodes {
		if n.ID.Equals(nodeID) {
			attached = n
		}
	}
	assert.Nil(t, attached.ParentID)
	assert.Equal(t, 250.0, attached.Position.X)
	assert.Equal(t, 300.0, attached.Position.Y)
}

func TestGridLayoutChildren_ArrangesIntoGrid(t *testing.T) {
	a := newTestAdapter(t)
	containerID := valueobjects.NewNodeID()
	require.NoError(t, a.AddNode(adapter.OriginUser, organizer(containerID, nil, 0, 0, 400, 300)))

	var childIDs []valueobjects.NodeID
	for i := 0; i < 4; i++ {
		id := valueobjects.NewNodeID()
		childIDs = append(childIDs, id)
		require.NoError(t, a.AddNode(adapter.OriginUser, construct(id, &containerID, float64(i)*10, float64(i)*10)))
	}

	actions := New(a)
	require.NoError(t, actions.GridLayoutChildren(containerID, 2))

	nodes, err := a.GetNodes()
	require.NoError(t, err)
	byID := map[valueobjects.NodeID]*entities.Node{}
	for _, n := range nodes {
		byID[n.ID] = n
	}

	// A 2-column grid of 4 items occupies exactly 2 distinct rows and 2
	// distinct columns, regardless of which input child lands in which cell.
	rows, cols := map[float64]bool{}, map[float64]bool{}
	for _, id := range childIDs {
		rows[byID[id].Position.Y] = true
		cols[byID[id].Position.X] = true
	}
	assert.Len(t, rows, 2)
	assert.Len(t, cols, 2)
}

func TestSpreadChildren_RemovesOverlap(t *testing.T) {
	a := newTestAdapter(t)
	containerID := valueobjects.NewNodeID()
	require.NoError(t, a.AddNode(adapter.OriginUser, organizer(containerID, nil, 0, 0, 400, 300)))

	c1, c2 := valueobjects.NewNodeID(), valueobjects.NewNodeID()
	require.NoError(t, a.AddNode(adapter.OriginUser, construct(c1, &containerID, 10, 10)))
	require.NoError(t, a.AddNode(adapter.OriginUser, construct(c2, &containerID, 20, 20)))

	actions := New(a)
	require.NoError(t, actions.SpreadChildren(containerID))

	nodes, err := a.GetNodes()
	require.NoError(t, err)
	var p1, p2 valueobjects.Point
	for _, n := range nodes {
		if n.ID.Equals(c1) {
			p1 = n.Position
		}
		if n.ID.Equals(c2) {
			p2 = n.Position
		}
	}
	overlapX := p1.X < p2.X+200 && p2.X < p1.X+200
	overlapY := p1.Y < p2.Y+100 && p2.Y < p1.Y+100
	assert.False(t, overlapX && overlapY, "spread must remove the overlap")
}

func TestFitToChildren_ResizesContainer(t *testing.T) {
	a := newTestAdapter(t)
	containerID := valueobjects.NewNodeID()
	require.NoError(t, a.AddNode(adapter.OriginUser, organizer(containerID, nil, 0, 0, 50, 50)))

	childID := valueobjects.NewNodeID()
	require.NoError(t, a.AddNode(adapter.OriginUser, construct(childID, &containerID, 500, 500)))

	actions := New(a)
	require.NoError(t, actions.FitToChildren(containerID))

	nodes, err := a.GetNodes()
	require.NoError(t, err)
	for _, n := range nodes {
		if n.ID.Equals(containerID) {
			require.NotNil(t, n.Style.Width)
			require.NotNil(t, n.Style.Height)
			assert.Greater(t, *n.Style.Width, 50.0)
			assert.Greater(t, *n.Style.Height, 50.0)
		}
	}
}

func TestAlignNodes_RequiresAtLeastTwo(t *testing.T) {
	a := newTestAdapter(t)
	actions := New(a)
	err := actions.AlignNodes([]valueobjects.NodeID{valueobjects.NewNodeID()}, AlignLeft)
	assert.Error(t, err)
}

func TestAlignNodes_LeftAlignsToLeftmost(t *testing.T) {
	a := newTestAdapter(t)
	n1, n2 := valueobjects.NewNodeID(), valueobjects.NewNodeID()
	require.NoError(t, a.AddNode(adapter.OriginUser, construct(n1, nil, 10, 0)))
	require.NoError(t, a.AddNode(adapter.OriginUser, construct(n2, nil, 90, 50)))

	actions := New(a)
	require.NoError(t, actions.AlignNodes([]valueobjects.NodeID{n1, n2}, AlignLeft))

	nodes, err := a.GetNodes()
	require.NoError(t, err)
	for _, n := range nodes {
		assert.Equal(t, 10.0, n.Position.X)
	}
}

func TestDistributeNodes_RequiresAtLeastThree(t *testing.T) {
	a := newTestAdapter(t)
	actions := New(a)
	err := actions.DistributeNodes([]valueobjects.NodeID{valueobjects.NewNodeID(), valueobjects.NewNodeID()}, DistributeHorizontal)
	assert.Error(t, err)
}

func TestDistributeNodes_EvenlySpacesAlongAxis(t *testing.T) {
	a := newTestAdapter(t)
	n1, n2, n3 := valueobjects.NewNodeID(), valueobjects.NewNodeID(), valueobjects.NewNodeID()
	require.NoError(t, a.AddNode(adapter.OriginUser, construct(n1, nil, 0, 0)))
	require.NoError(t, a.AddNode(adapter.OriginUser, construct(n2, nil, 10, 0)))
	require.NoError(t, a.AddNode(adapter.OriginUser, construct(n3, nil, 100, 0)))

	actions := New(a)
	require.NoError(t, actions.DistributeNodes([]valueobjects.NodeID{n1, n2, n3}, DistributeHorizontal))

	nodes, err := a.GetNodes()
	require.NoError(t, err)
	byID := map[valueobjects.NodeID]*entities.Node{}
	for _, n := range nodes {
		byID[n.ID] = n
	}
	assert.Equal(t, 0.0, byID[n1].Position.X)
	assert.Equal(t, 100.0, byID[n3].Position.X)
	assert.Equal(t, 50.0, byID[n2].Position.X)
}

func TestRouteEdges_SkipsSameContainerEdges(t *testing.T) {
	a := newTestAdapter(t)
	containerID := valueobjects.NewNodeID()
	require.NoError(t, a.AddNode(adapter.OriginUser, organizer(containerID, nil, 0, 0, 400, 300)))
	c1, c2 := valueobjects.NewNodeID(), valueobjects.NewNodeID()
	require.NoError(t, a.AddNode(adapter.OriginUser, construct(c1, &containerID, 10, 10)))
	require.NoError(t, a.AddNode(adapter.OriginUser, construct(c2, &containerID, 200, 200)))
	require.NoError(t, a.AddEdge(adapter.OriginUser, &entities.Edge{ID: valueobjects.NewEdgeID(), Source: c1, Target: c2}))

	actions := New(a)
	require.NoError(t, actions.RouteEdges())

	edges, err := a.GetEdges()
	require.NoError(t, err)
	require.Len(t, edges, 1)
	assert.Empty(t, edges[0].Data.Waypoints, "an edge collapsing to a self-loop at top-level scope must not be routed")
}

func TestRouteEdges_RoutesCrossContainerEdges(t *testing.T) {
	a := newTestAdapter(t)
	c1, c2 := valueobjects.NewNodeID(), valueobjects.NewNodeID()
	require.NoError(t, a.AddNode(adapter.OriginUser, construct(c1, nil, 0, 0)))
	require.NoError(t, a.AddNode(adapter.OriginUser, construct(c2, nil, 400, 400)))
	require.NoError(t, a.AddEdge(adapter.OriginUser, &entities.Edge{ID: valueobjects.NewEdgeID(), Source: c1, Target: c2}))

	actions := New(a)
	require.NoError(t, actions.RouteEdges())

	edges, err := a.GetEdges()
	require.NoError(t, err)
	require.Len(t, edges, 1)
	assert.NotEmpty(t, edges[0].Data.Waypoints)
}

func TestClearRoutes_WipesAllWaypoints(t *testing.T) {
	a := newTestAdapter(t)
	c1, c2 := valueobjects.NewNodeID(), valueobjects.NewNodeID()
	require.NoError(t, a.AddNode(adapter.OriginUser, construct(c1, nil, 0, 0)))
	require.NoError(t, a.AddNode(adapter.OriginUser, construct(c2, nil, 400, 400)))
	require.NoError(t, a.AddEdge(adapter.OriginUser, &entities.Edge{
		ID: valueobjects.NewEdgeID(), Source: c1, Target: c2,
		Data: entities.EdgeData{Waypoints: []valueobjects.Point{{X: 1, Y: 1}}},
	}))

	actions := New(a)
	require.NoError(t, actions.ClearRoutes())

	edges, err := a.GetEdges()
	require.NoError(t, err)
	assert.Empty(t, edges[0].Data.Waypoints)
}

func TestApplyPinLayout_PinsTargetToSourceSide(t *testing.T) {
	a := newTestAdapter(t)
	src, tgt := valueobjects.NewNodeID(), valueobjects.NewNodeID()
	require.NoError(t, a.AddNode(adapter.OriginUser, organizer(src, nil, 0, 0, 200, 100)))
	require.NoError(t, a.AddNode(adapter.OriginUser, organizer(tgt, nil, 900, 900, 150, 80)))
	require.NoError(t, a.AddPinConstraint(entities.PinConstraint{
		ID: valueobjects.NewPinConstraintID(), SourceOrganizerID: src, TargetOrganizerID: tgt,
		Direction: entities.PinEast,
	}))

	actions := New(a)
	warnings, err := actions.ApplyPinLayout()
	require.NoError(t, err)
	assert.Empty(t, warnings)

	nodes, err := a.GetNodes()
	require.NoError(t, err)
	byID := map[valueobjects.NodeID]*entities.Node{}
	for _, n := range nodes {
		byID[n.ID] = n
	}
	assert.Equal(t, 220.0, byID[tgt].Position.X)
	assert.Equal(t, 10.0, byID[tgt].Position.Y)
}

func TestSpreadSelected_NoopBelowTwoNodes(t *testing.T) {
	a := newTestAdapter(t)
	id := valueobjects.NewNodeID()
	require.NoError(t, a.AddNode(adapter.OriginUser, construct(id, nil, 5, 5)))

	actions := New(a)
	require.NoError(t, actions.SpreadSelected([]valueobjects.NodeID{id}))

	nodes, err := a.GetNodes()
	require.NoError(t, err)
	assert.Equal(t, 5.0, nodes[0].Position.X)
}

func TestHierarchicalLayout_OrdersTopLevelNodesByLongestPath(t *testing.T) {
	a := newTestAdapter(t)
	root, mid, leaf := valueobjects.NewNodeID(), valueobjects.NewNodeID(), valueobjects.NewNodeID()
	require.NoError(t, a.AddNode(adapter.OriginUser, construct(root, nil, 0, 0)))
	require.NoError(t, a.AddNode(adapter.OriginUser, construct(mid, nil, 0, 0)))
	require.NoError(t, a.AddNode(adapter.OriginUser, construct(leaf, nil, 0, 0)))
	require.NoError(t, a.AddEdge(adapter.OriginUser, &entities.Edge{ID: valueobjects.NewEdgeID(), Source: root, Target: mid}))
	require.NoError(t, a.AddEdge(adapter.OriginUser, &entities.Edge{ID: valueobjects.NewEdgeID(), Source: mid, Target: leaf}))

	actions := New(a)
	require.NoError(t, actions.HierarchicalLayout())

	nodes, err := a.GetNodes()
	require.NoError(t, err)
	byID := map[valueobjects.NodeID]*entities.Node{}
	for _, n := range nodes {
		byID[n.ID] = n
	}
	assert.Less(t, byID[root].Position.Y, byID[mid].Position.Y)
	assert.Less(t, byID[mid].Position.Y, byID[leaf].Position.Y)
}
