package adapter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carta-systems/carta-core/domain/core/aggregates"
	"github.com/carta-systems/carta-core/domain/core/entities"
	"github.com/carta-systems/carta-core/domain/core/valueobjects"
)

func newTestAdapter(t *testing.T) *Adapter {
	t.Helper()
	doc := aggregates.NewDocument("untitled")
	doc.CreatePage("Page 1")
	return New(doc, "replica-1", nil)
}

func construct(id valueobjects.NodeID, parent *valueobjects.NodeID, x, y float64) *entities.Node {
	return &entities.Node{
		ID: id, Type: entities.NodeTypeConstruct, ParentID: parent,
		Position:  valueobjects.Point{X: x, Y: y},
		Construct: &entities.ConstructData{ConstructType: "service", SemanticID: "s-" + id.String()},
	}
}

func TestSetTitle_NotifiesGeneralSubscriber(t *testing.T) {
	a := newTestAdapter(t)
	fired := 0
	unsub := a.Subscribe(func() { fired++ })
	defer unsub()

	require.NoError(t, a.SetTitle("New Title"))
	assert.Equal(t, "New Title", a.GetTitle())
	assert.Equal(t, 1, fired)
}

func TestTransaction_NestedCallsJoinOuterAndNotifyOnce(t *testing.T) {
	a := newTestAdapter(t)
	fired := 0
	unsub := a.Subscribe(func() { fired++ })
	defer unsub()

	err := a.Transaction(OriginUser, func() error {
		return a.Transaction(OriginLayout, func() error {
			return a.SetTitle("nested")
		})
	})
	require.NoError(t, err)
	assert.Equal(t, "nested", a.GetTitle())
	assert.Equal(t, 1, fired, "nested transactions must notify exactly once, at the outermost commit")
}

func TestTransaction_ErrorAbortsWithoutNotifying(t *testing.T) {
	a := newTestAdapter(t)
	fired := 0
	unsub := a.Subscribe(func() { fired++ })
	defer unsub()

	page := a.GetActivePage()
	err := a.AddNode(OriginUser, construct(valueobjects.NewNodeID(), nil, 0, 0))
	require.NoError(t, err)
	assert.Equal(t, 1, fired)

	missingParent := valueobjects.NewNodeID()
	badNode := construct(valueobjects.NewNodeID(), &missingParent, 0, 0)
	err = a.AddNode(OriginUser, badNode)
	assert.Error(t, err)
	assert.Equal(t, 1, fired, "a failed transaction must not notify subscribers")
	assert.Len(t, page.Nodes, 1)
}

func TestGranularSubscription_OnlyFiresForItsOwnKey(t *testing.T) {
	a := newTestAdapter(t)
	nodeFired, edgeFired := 0, 0
	unsub1 := a.SubscribeToNodes(func() { nodeFired++ })
	unsub2 := a.SubscribeToEdges(func() { edgeFired++ })
	defer unsub1()
	defer unsub2()

	require.NoError(t, a.AddNode(OriginUser, construct(valueobjects.NewNodeID(), nil, 0, 0)))
	assert.Equal(t, 1, nodeFired)
	assert.Equal(t, 0, edgeFired)
}

func TestPatchNodes_SilentlySkipsMissingID(t *testing.T) {
	a := newTestAdapter(t)
	id := valueobjects.NewNodeID()
	require.NoError(t, a.AddNode(OriginUser, construct(id, nil, 10, 10)))

	missing := valueobjects.NewNodeID()
	newPos := valueobjects.Point{X: 99, Y: 99}
	err := a.PatchNodes(OriginLayout, []NodePatch{
		{ID: missing, Position: &newPos},
		{ID: id, Position: &newPos},
	})
	require.NoError(t, err)

	nodes, err := a.GetNodes()
	require.NoError(t, err)
	require.Len(t, nodes, 1)
	assert.Equal(t, newPos, nodes[0].Position)
}

func TestPatchEdgeData_UpsertAndClearRoute(t *testing.T) {
	a := newTestAdapter(t)
	n1, n2 := valueobjects.NewNodeID(), valueobjects.NewNodeID()
	require.NoError(t, a.AddNode(OriginUser, construct(n1, nil, 0, 0)))
	require.NoError(t, a.AddNode(OriginUser, construct(n2, nil, 100, 0)))

	eID := valueobjects.NewEdgeID()
	edge := &entities.Edge{ID: eID, Source: n1, Target: n2, Data: entities.EdgeData{
		Waypoints: []valueobjects.Point{{X: 1, Y: 1}},
	}}
	require.NoError(t, a.AddEdge(OriginUser, edge))

	label := "renamed"
	require.NoError(t, a.PatchEdgeData(OriginUser, []EdgeDataPatch{
		{ID: eID, Label: &label, ClearRoute: true},
	}))

	edges, err := a.GetEdges()
	require.NoError(t, err)
	require.Len(t, edges, 1)
	assert.Equal(t, "renamed", edges[0].Data.Label)
	assert.Empty(t, edges[0].Data.Waypoints)
}

func TestPinConstraints_AddListRemove(t *testing.T) {
	a := newTestAdapter(t)
	o1, o2 := valueobjects.NewNodeID(), valueobjects.NewNodeID()
	c := entities.PinConstraint{
		ID: valueobjects.NewPinConstraintID(), SourceOrganizerID: o1, TargetOrganizerID: o2,
		Direction: entities.PinEast,
	}
	require.NoError(t, a.AddPinConstraint(c))

	pageID := a.GetActivePage().ID
	list, err := a.ListPinConstraints(pageID)
	require.NoError(t, err)
	require.Len(t, list, 1)

	require.NoError(t, a.RemovePinConstraint(c.ID))
	list, err = a.ListPinConstraints(pageID)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestRegistryCRUD_SchemaAndPortSchema(t *testing.T) {
	a := newTestAdapter(t)
	schemaFired := 0
	unsub := a.SubscribeToSchemas(func() { schemaFired++ })
	defer unsub()

	require.NoError(t, a.AddSchema(entities.Schema{Type: "service", DisplayName: "Service"}))
	assert.Equal(t, 1, schemaFired)

	s, ok := a.GetSchema("service")
	require.True(t, ok)
	assert.Equal(t, "Service", s.DisplayName)

	require.NoError(t, a.UpdateSchema(entities.Schema{Type: "service", DisplayName: "Renamed"}))
	s, _ = a.GetSchema("service")
	assert.Equal(t, "Renamed", s.DisplayName)

	require.NoError(t, a.RemoveSchema("service"))
	_, ok = a.GetSchema("service")
	assert.False(t, ok)

	err := a.RemoveSchema("service")
	assert.Error(t, err)

	require.NoError(t, a.AddPortSchema(entities.PortSchema{ID: "out-1", Polarity: entities.PolaritySource}))
	ps, ok := a.GetPortSchema("out-1")
	require.True(t, ok)
	assert.Equal(t, entities.PolaritySource, ps.Polarity)
}

func TestDeployable_ScopedByPage(t *testing.T) {
	a := newTestAdapter(t)
	pageID := a.GetActivePage().ID

	require.NoError(t, a.AddDeployable(pageID, entities.Deployable{ID: "dep-1", Name: "prod"}))
	d, ok := a.GetDeployable(pageID, "dep-1")
	require.True(t, ok)
	assert.Equal(t, "prod", d.Name)

	otherPage := valueobjects.NewPageID()
	err := a.AddDeployable(otherPage, entities.Deployable{ID: "dep-2", Name: "staging"})
	assert.Error(t, err, "adding to an unknown page must fail")
}

func TestGetLastOrigin_ReflectsMostRecentNodeCommit(t *testing.T) {
	a := newTestAdapter(t)
	require.NoError(t, a.AddNode(OriginUser, construct(valueobjects.NewNodeID(), nil, 0, 0)))
	origin, ok := a.GetLastOrigin()
	require.True(t, ok)
	assert.Equal(t, OriginUser, origin)

	require.NoError(t, a.PatchNodes(OriginLayout, nil))
	origin, ok = a.GetLastOrigin()
	require.True(t, ok)
	assert.Equal(t, OriginLayout, origin)
}

func TestCreateAndDeletePage_PicksNewActivePage(t *testing.T) {
	a := newTestAdapter(t)
	second, err := a.CreatePage("Page 2")
	require.NoError(t, err)

	first := a.GetPages()[0]
	ok, err := a.DeletePage(first.ID)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, a.GetActivePage().ID.Equals(second.ID))
}

func TestSetActivePage_UnknownIDFails(t *testing.T) {
	a := newTestAdapter(t)
	err := a.SetActivePage(valueobjects.NewPageID())
	assert.Error(t, err)
}
