package migrations

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carta-systems/carta-core/application/adapter"
	"github.com/carta-systems/carta-core/domain/core/aggregates"
	"github.com/carta-systems/carta-core/domain/core/entities"
	"github.com/carta-systems/carta-core/domain/core/valueobjects"
)

func legacyDocument(t *testing.T) (*adapter.Adapter, *aggregates.Document) {
	t.Helper()
	doc := aggregates.NewDocument("legacy")
	doc.MigrationVersion = 3
	doc.PortSchemas[legacyForwardPortID] = entities.PortSchema{
		ID: legacyForwardPortID, Polarity: entities.Polarity(legacyForwardPortID),
	}
	doc.PortSchemas["data-in"] = entities.PortSchema{
		ID: "data-in", Polarity: entities.PolaritySink,
		CompatibleWith: []string{legacyForwardPortID, legacyWildcardForm, "data-out"},
	}

	page := doc.CreatePage("Page 1")
	nodeID := valueobjects.NewNodeID()
	require.NoError(t, page.AddNode(&entities.Node{
		ID: nodeID, Type: entities.NodeTypeConstruct,
		Construct: &entities.ConstructData{
			ConstructType: "service", SemanticID: "svc-1",
			Connections: []string{legacyForwardPortID, "data-out"},
		},
	}))

	a := adapter.New(doc, "replica-1", nil)
	return a, doc
}

func TestRun_RenamesForwardPortToRelay(t *testing.T) {
	a, doc := legacyDocument(t)

	fired := 0
	unsub := a.Subscribe(func() { fired++ })
	defer unsub()

	require.NoError(t, Run(a))

	assert.Equal(t, aggregates.CurrentSchemaVersion, doc.MigrationVersion)
	_, hasOld := doc.PortSchemas[legacyForwardPortID]
	assert.False(t, hasOld)
	renamed, ok := doc.PortSchemas[renamedRelayPortID]
	require.True(t, ok)
	assert.Equal(t, entities.PolarityRelay, renamed.Polarity)

	dataIn := doc.PortSchemas["data-in"]
	assert.NotContains(t, dataIn.CompatibleWith, legacyWildcardForm)
	assert.Contains(t, dataIn.CompatibleWith, renamedRelayPortID)

	for _, page := range doc.Pages {
		for _, n := range page.Nodes {
			assert.NotContains(t, n.Construct.Connections, legacyForwardPortID)
			assert.Contains(t, n.Construct.Connections, renamedRelayPortID)
		}
	}

	assert.Equal(t, 1, fired, "migration must notify exactly once")
	origin, ok := a.GetLastOrigin()
	require.True(t, ok)
	assert.Equal(t, adapter.OriginMigration, origin)
}

func TestRun_NoOpWhenAlreadyCurrent(t *testing.T) {
	doc := aggregates.NewDocument("current")
	a := adapter.New(doc, "replica-1", nil)
	fired := 0
	unsub := a.Subscribe(func() { fired++ })
	defer unsub()

	require.NoError(t, Run(a))
	assert.Equal(t, 0, fired, "a document already at the current version must not open a transaction")
}

func TestRun_FailedTransformRestoresPreMigrationState(t *testing.T) {
	a, doc := legacyDocument(t)

	original := Ordered
	Ordered = []Transform{
		{ToVersion: 4, Name: "boom", Apply: func(doc *aggregates.Document) error {
			return errors.New("boom")
		}},
	}
	defer func() { Ordered = original }()

	err := Run(a)
	require.Error(t, err)
	assert.Equal(t, 3, doc.MigrationVersion, "document must be left at its pre-migration version")
	_, stillLegacy := doc.PortSchemas[legacyForwardPortID]
	assert.True(t, stillLegacy)
}
