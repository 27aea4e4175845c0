package presentation

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/carta-systems/carta-core/domain/core/entities"
	"github.com/carta-systems/carta-core/domain/core/valueobjects"
)

func organizer(id valueobjects.NodeID, parent *valueobjects.NodeID, collapsed bool) *entities.Node {
	return &entities.Node{
		ID: id, Type: entities.NodeTypeOrganizer, ParentID: parent,
		Organizer: &entities.OrganizerData{Collapsed: collapsed},
	}
}

func construct(id valueobjects.NodeID, parent *valueobjects.NodeID) *entities.Node {
	return &entities.Node{
		ID: id, Type: entities.NodeTypeConstruct, ParentID: parent,
		Construct: &entities.ConstructData{},
	}
}

func TestCompute_EdgeAggregationAcrossCollapsedOrganizers(t *testing.T) {
	o1 := valueobjects.NewNodeID()
	o2 := valueobjects.NewNodeID()
	a1 := valueobjects.NewNodeID()
	a2 := valueobjects.NewNodeID()
	b1 := valueobjects.NewNodeID()

	nodes := map[valueobjects.NodeID]*entities.Node{
		o1: organizer(o1, nil, true),
		o2: organizer(o2, nil, true),
		a1: construct(a1, &o1),
		a2: construct(a2, &o1),
		b1: construct(b1, &o2),
	}
	e1ID := valueobjects.NewEdgeID()
	e2ID := valueobjects.NewEdgeID()
	edges := map[valueobjects.EdgeID]*entities.Edge{
		e1ID: {ID: e1ID, Source: a1, Target: b1},
		e2ID: {ID: e2ID, Source: a2, Target: b1},
	}

	result := Compute(nodes, edges, nil)

	assert.True(t, result.EdgeRemap[a1].Equals(o1))
	assert.True(t, result.EdgeRemap[a2].Equals(o1))
	assert.True(t, result.EdgeRemap[b1].Equals(o2))

	assert.Len(t, result.ProcessedEdges, 1)
	pe := result.ProcessedEdges[0]
	assert.True(t, pe.Source.Equals(o1))
	assert.True(t, pe.Target.Equals(o2))
	assert.Equal(t, 2, pe.BundleCount)
}

func TestCompute_RemapsToTopmostCollapsedAncestor(t *testing.T) {
	outer := valueobjects.NewNodeID()
	inner := valueobjects.NewNodeID()
	deep := valueobjects.NewNodeID()

	nodes := map[valueobjects.NodeID]*entities.Node{
		outer: organizer(outer, nil, true),
		inner: organizer(inner, &outer, true),
		deep:  construct(deep, &inner),
	}

	result := Compute(nodes, nil, nil)

	assert.True(t, result.EdgeRemap[deep].Equals(outer))
	assert.True(t, result.EdgeRemap[inner].Equals(outer))

	for _, pn := range result.ProcessedNodes {
		if pn.Node.ID.Equals(deep) || pn.Node.ID.Equals(inner) {
			assert.True(t, pn.Hidden)
		}
		if pn.Node.ID.Equals(outer) {
			assert.False(t, pn.Hidden)
		}
	}
}

func TestCompute_SelfLoopAfterRemapIsDropped(t *testing.T) {
	o1 := valueobjects.NewNodeID()
	a1 := valueobjects.NewNodeID()
	a2 := valueobjects.NewNodeID()

	nodes := map[valueobjects.NodeID]*entities.Node{
		o1: organizer(o1, nil, true),
		a1: construct(a1, &o1),
		a2: construct(a2, &o1),
	}
	eID := valueobjects.NewEdgeID()
	edges := map[valueobjects.EdgeID]*entities.Edge{
		eID: {ID: eID, Source: a1, Target: a2},
	}

	result := Compute(nodes, edges, nil)
	assert.Empty(t, result.ProcessedEdges)
}

func TestCompute_SelectedNodeIsUnwrapped(t *testing.T) {
	o1 := valueobjects.NewNodeID()
	a1 := valueobjects.NewNodeID()

	nodes := map[valueobjects.NodeID]*entities.Node{
		o1: organizer(o1, nil, true),
		a1: construct(a1, &o1),
	}

	result := Compute(nodes, nil, map[valueobjects.NodeID]bool{a1: true})

	assert.True(t, result.EdgeRemap[a1].Equals(a1))
}

func TestCompute_UnremappedEdgeStaysIndividual(t *testing.T) {
	a := valueobjects.NewNodeID()
	b := valueobjects.NewNodeID()
	nodes := map[valueobjects.NodeID]*entities.Node{
		a: construct(a, nil),
		b: construct(b, nil),
	}
	eID := valueobjects.NewEdgeID()
	edges := map[valueobjects.EdgeID]*entities.Edge{
		eID: {ID: eID, Source: a, Target: b, Data: entities.EdgeData{Label: "direct"}},
	}

	result := Compute(nodes, edges, nil)
	assert.Len(t, result.ProcessedEdges, 1)
	assert.Equal(t, 1, result.ProcessedEdges[0].BundleCount)
	assert.Equal(t, "direct", result.ProcessedEdges[0].Data.Label)
}

func TestTraceGraph_BFSDistances(t *testing.T) {
	a := valueobjects.NewNodeID()
	b := valueobjects.NewNodeID()
	c := valueobjects.NewNodeID()
	e1 := valueobjects.NewEdgeID()
	e2 := valueobjects.NewEdgeID()
	edges := map[valueobjects.EdgeID]*entities.Edge{
		e1: {ID: e1, Source: a, Target: b},
		e2: {ID: e2, Source: b, Target: c},
	}

	result := TraceGraph(a, edges)

	assert.Equal(t, 0, result.Distances[a])
	assert.Equal(t, 1, result.Distances[b])
	assert.Equal(t, 2, result.Distances[c])
	assert.Equal(t, 2, result.MaxDepth)
}

func TestConnectedComponents_PartitionsDisjointGraphs(t *testing.T) {
	a := valueobjects.NewNodeID()
	b := valueobjects.NewNodeID()
	c := valueobjects.NewNodeID()
	nodes := map[valueobjects.NodeID]*entities.Node{
		a: construct(a, nil), b: construct(b, nil), c: construct(c, nil),
	}
	eID := valueobjects.NewEdgeID()
	edges := map[valueobjects.EdgeID]*entities.Edge{
		eID: {ID: eID, Source: a, Target: b},
	}

	components := ConnectedComponents(nodes, edges)
	assert.Len(t, components, 2)
}
