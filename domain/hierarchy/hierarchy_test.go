package hierarchy

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/carta-systems/carta-core/domain/core/entities"
	"github.com/carta-systems/carta-core/domain/core/valueobjects"
)

func buildNode(id valueobjects.NodeID, parent *valueobjects.NodeID, pos valueobjects.Point, typ entities.NodeType) *entities.Node {
	return &entities.Node{ID: id, ParentID: parent, Position: pos, Type: typ}
}

func TestResolveAbsolute_SumsUpChain(t *testing.T) {
	root := valueobjects.NewNodeID()
	mid := valueobjects.NewNodeID()
	leaf := valueobjects.NewNodeID()

	nodes := map[valueobjects.NodeID]*entities.Node{
		root: buildNode(root, nil, valueobjects.Point{X: 100, Y: 100}, entities.NodeTypeOrganizer),
		mid:  buildNode(mid, &root, valueobjects.Point{X: 10, Y: 10}, entities.NodeTypeOrganizer),
		leaf: buildNode(leaf, &mid, valueobjects.Point{X: 5, Y: 5}, entities.NodeTypeConstruct),
	}

	abs := ResolveAbsolute(leaf, nodes)
	assert.Equal(t, valueobjects.Point{X: 115, Y: 115}, abs)
}

func TestResolveAbsolute_UnknownNodeIsZero(t *testing.T) {
	abs := ResolveAbsolute(valueobjects.NewNodeID(), map[valueobjects.NodeID]*entities.Node{})
	assert.Equal(t, valueobjects.Point{}, abs)
}

func TestToRelative_InversesResolveAbsolute(t *testing.T) {
	parentAbs := valueobjects.Point{X: 50, Y: 50}
	nodeAbs := valueobjects.Point{X: 80, Y: 65}
	rel := ToRelative(nodeAbs, parentAbs)
	assert.Equal(t, valueobjects.Point{X: 30, Y: 15}, rel)
	assert.Equal(t, nodeAbs, parentAbs.Add(rel))
}

func TestCanNestInOrganizer_ConstructAlwaysAllowed(t *testing.T) {
	org := &entities.Node{Type: entities.NodeTypeOrganizer, Organizer: &entities.OrganizerData{}}
	construct := &entities.Node{Type: entities.NodeTypeConstruct}
	assert.True(t, CanNestInOrganizer(construct, org))
}

func TestCanNestInOrganizer_FreestandingOrganizerRejected(t *testing.T) {
	org := &entities.Node{Type: entities.NodeTypeOrganizer, Organizer: &entities.OrganizerData{}}
	otherOrg := &entities.Node{Type: entities.NodeTypeOrganizer, Organizer: &entities.OrganizerData{}}
	assert.False(t, CanNestInOrganizer(otherOrg, org))
}

func TestCanNestInOrganizer_WagonAllowed(t *testing.T) {
	org := &entities.Node{Type: entities.NodeTypeOrganizer, Organizer: &entities.OrganizerData{}}
	semID := "sem-1"
	wagon := &entities.Node{Type: entities.NodeTypeOrganizer, Organizer: &entities.OrganizerData{AttachedToSemanticID: &semID}}
	assert.True(t, CanNestInOrganizer(wagon, org))
}

func TestCanNestInOrganizer_TargetMustBeOrganizer(t *testing.T) {
	notOrg := &entities.Node{Type: entities.NodeTypeConstruct}
	construct := &entities.Node{Type: entities.NodeTypeConstruct}
	assert.False(t, CanNestInOrganizer(construct, notOrg))
}

func TestDescendants_BFSExcludesSelf(t *testing.T) {
	root := valueobjects.NewNodeID()
	childA := valueobjects.NewNodeID()
	childB := valueobjects.NewNodeID()
	grandchild := valueobjects.NewNodeID()

	nodes := map[valueobjects.NodeID]*entities.Node{
		root:       buildNode(root, nil, valueobjects.Point{}, entities.NodeTypeOrganizer),
		childA:     buildNode(childA, &root, valueobjects.Point{}, entities.NodeTypeConstruct),
		childB:     buildNode(childB, &root, valueobjects.Point{}, entities.NodeTypeConstruct),
		grandchild: buildNode(grandchild, &childA, valueobjects.Point{}, entities.NodeTypeConstruct),
	}

	desc := Descendants(root, nodes)
	assert.ElementsMatch(t, []valueobjects.NodeID{childA, childB, grandchild}, desc)
}

func TestDepth_ComputesAncestorCount(t *testing.T) {
	root := valueobjects.NewNodeID()
	mid := valueobjects.NewNodeID()
	leaf := valueobjects.NewNodeID()
	nodes := map[valueobjects.NodeID]*entities.Node{
		root: buildNode(root, nil, valueobjects.Point{}, entities.NodeTypeOrganizer),
		mid:  buildNode(mid, &root, valueobjects.Point{}, entities.NodeTypeOrganizer),
		leaf: buildNode(leaf, &mid, valueobjects.Point{}, entities.NodeTypeConstruct),
	}
	assert.Equal(t, 0, Depth(root, nodes))
	assert.Equal(t, 1, Depth(mid, nodes))
	assert.Equal(t, 2, Depth(leaf, nodes))
}
