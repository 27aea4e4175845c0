package layoutglue

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/carta-systems/carta-core/domain/core/entities"
	"github.com/carta-systems/carta-core/domain/core/valueobjects"
	"github.com/carta-systems/carta-core/domain/geometry"
)

func constructAt(id valueobjects.NodeID, parent *valueobjects.NodeID, x, y float64) *entities.Node {
	return &entities.Node{
		ID: id, Type: entities.NodeTypeConstruct, ParentID: parent,
		Position:  valueobjects.Point{X: x, Y: y},
		Construct: &entities.ConstructData{},
	}
}

func TestGetChildLayoutUnits_NoWagonsMatchesOwnRect(t *testing.T) {
	container := valueobjects.NewNodeID()
	child := valueobjects.NewNodeID()

	nodes := map[valueobjects.NodeID]*entities.Node{
		child: constructAt(child, &container, 50, 60),
	}

	units := GetChildLayoutUnits(nodes, container)

	assert.Len(t, units.Items, 1)
	assert.Equal(t, 50.0, units.Items[0].X)
	assert.Equal(t, 60.0, units.Items[0].Y)
	assert.Equal(t, valueobjects.Point{}, units.Offsets[child])
}

func TestGetChildLayoutUnits_WagonAboveProducesNegativeOffset(t *testing.T) {
	container := valueobjects.NewNodeID()
	constructID := valueobjects.NewNodeID()
	wagonID := valueobjects.NewNodeID()

	c := constructAt(constructID, &container, 100, 100)
	semID := "sem-1"
	c.Construct.SemanticID = semID

	w := &entities.Node{
		ID: wagonID, Type: entities.NodeTypeOrganizer, ParentID: &constructID,
		Position:  valueobjects.Point{X: 0, Y: -80}, // above the construct
		Organizer: &entities.OrganizerData{IsOrganizer: true, AttachedToSemanticID: &semID},
	}

	nodes := map[valueobjects.NodeID]*entities.Node{
		constructID: c,
		wagonID:     w,
	}

	units := GetChildLayoutUnits(nodes, container)

	offset := units.Offsets[constructID]
	assert.Less(t, offset.Y, 0.0, "wagon above construct must produce a negative y offset")
}

func TestRoundTrip_IdentityLayoutPreservesPosition(t *testing.T) {
	container := valueobjects.NewNodeID()
	constructID := valueobjects.NewNodeID()
	wagonID := valueobjects.NewNodeID()

	c := constructAt(constructID, &container, 100, 100)
	semID := "sem-1"
	c.Construct.SemanticID = semID
	w := &entities.Node{
		ID: wagonID, Type: entities.NodeTypeOrganizer, ParentID: &constructID,
		Position:  valueobjects.Point{X: 50, Y: 0},
		Organizer: &entities.OrganizerData{IsOrganizer: true, AttachedToSemanticID: &semID},
	}
	nodes := map[valueobjects.NodeID]*entities.Node{constructID: c, wagonID: w}

	units := GetChildLayoutUnits(nodes, container)

	identity := make(map[string]geometry.Point, len(units.Items))
	for _, it := range units.Items {
		identity[it.ID] = geometry.Point{X: it.X, Y: it.Y}
	}

	result := ConvertToConstructPositions(identity, units.Offsets)
	assert.Equal(t, c.Position, result[constructID])
}

func TestGetChildVisualFootprints_IncludesDescendants(t *testing.T) {
	container := valueobjects.NewNodeID()
	constructID := valueobjects.NewNodeID()
	wagonID := valueobjects.NewNodeID()

	c := constructAt(constructID, &container, 10, 10)
	semID := "sem-1"
	c.Construct.SemanticID = semID
	w := &entities.Node{
		ID: wagonID, Type: entities.NodeTypeOrganizer, ParentID: &constructID,
		Position:  valueobjects.Point{X: 200, Y: 0},
		Organizer: &entities.OrganizerData{IsOrganizer: true, AttachedToSemanticID: &semID},
	}
	nodes := map[valueobjects.NodeID]*entities.Node{constructID: c, wagonID: w}

	footprints := GetChildVisualFootprints(nodes, container)
	assert.Len(t, footprints, 2)

	byID := map[string]geometry.Item{}
	for _, f := range footprints {
		byID[f.ID] = f
	}
	assert.Equal(t, 10.0, byID[constructID.String()].X)
	assert.Equal(t, 210.0, byID[wagonID.String()].X)
}
