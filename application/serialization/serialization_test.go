package serialization

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carta-systems/carta-core/application/adapter"
	"github.com/carta-systems/carta-core/domain/core/aggregates"
	"github.com/carta-systems/carta-core/domain/core/entities"
)

func newTestAdapter(t *testing.T) *adapter.Adapter {
	t.Helper()
	doc := aggregates.NewDocument("Doc")
	doc.CreatePage("Page 1")
	return adapter.New(doc, "replica-1", nil)
}

func TestSnapshot_AlwaysPresentEmptyArrays(t *testing.T) {
	a := newTestAdapter(t)
	snap := Snapshot(a)

	assert.Equal(t, aggregates.CurrentSchemaVersion, snap.Version)
	assert.NotNil(t, snap.Schemas)
	assert.Empty(t, snap.Schemas)
	require.Len(t, snap.Pages, 1)
	assert.NotNil(t, snap.Pages[0].Nodes)
	assert.NotNil(t, snap.Pages[0].Edges)
}

func TestToJSON_RoundTripsThroughSnapshot(t *testing.T) {
	a := newTestAdapter(t)
	require.NoError(t, a.SetTitle("Round Trip"))

	raw, err := ToJSON(a)
	require.NoError(t, err)

	var decoded DocumentSnapshot
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, "Round Trip", decoded.Title)
}

func TestExportThenImportSchemaLibrary_RoundTrips(t *testing.T) {
	a := newTestAdapter(t)
	require.NoError(t, a.AddSchema(entities.Schema{Type: "service", DisplayName: "Service", Color: "#fff"}))
	require.NoError(t, a.AddPortSchema(entities.PortSchema{
		ID: "data-out", DisplayName: "Data Out", Polarity: entities.PolaritySource, CompatibleWith: []string{"data-in"},
	}))
	require.NoError(t, a.AddSchemaGroup(entities.SchemaGroup{ID: "grp-1", Name: "Group 1"}))

	file := ExportSchemaLibrary(a, "My Library", "desc", "1.0.0", "", time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	raw, err := json.Marshal(file)
	require.NoError(t, err)

	fresh := newTestAdapter(t)
	require.NoError(t, ImportSchemaLibrary(fresh, raw))

	s, ok := fresh.GetSchema("service")
	require.True(t, ok)
	assert.Equal(t, "Service", s.DisplayName)

	p, ok := fresh.GetPortSchema("data-out")
	require.True(t, ok)
	assert.Equal(t, entities.PolaritySource, p.Polarity)

	g, ok := fresh.GetSchemaGroup("grp-1")
	require.True(t, ok)
	assert.Equal(t, "Group 1", g.Name)
}

func TestParseSchemaLibrary_RejectsWrongFormatVersion(t *testing.T) {
	raw := []byte(`{"formatVersion": 2, "name": "x", "version": "1.0.0"}`)
	_, err := ParseSchemaLibrary(raw)
	assert.Error(t, err)
}

func TestParseSchemaLibrary_RejectsInvalidPolarity(t *testing.T) {
	raw := []byte(`{
		"formatVersion": 1, "name": "x", "version": "1.0.0",
		"portSchemas": [{"id": "p1", "displayName": "P1", "polarity": "nonsense"}]
	}`)
	_, err := ParseSchemaLibrary(raw)
	assert.Error(t, err)
}

func TestParseSchemaLibrary_RejectsMissingRequiredField(t *testing.T) {
	raw := []byte(`{"formatVersion": 1, "version": "1.0.0"}`)
	_, err := ParseSchemaLibrary(raw)
	assert.Error(t, err)
}

func TestImportSchemaLibrary_InvalidInputTouchesNoState(t *testing.T) {
	a := newTestAdapter(t)
	fired := 0
	unsub := a.Subscribe(func() { fired++ })
	defer unsub()

	raw := []byte(`{"formatVersion": 1, "version": "1.0.0"}`)
	err := ImportSchemaLibrary(a, raw)
	assert.Error(t, err)
	assert.Equal(t, 0, fired)
	assert.Empty(t, a.GetSchemas())
}
