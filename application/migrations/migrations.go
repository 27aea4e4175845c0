// Package migrations runs the forward-only, versioned transforms of §4.7 on
// document load, inside a single "migration"-origin transaction so they
// never pollute undo history. This mirrors the teacher's own versioned
// schema-migration posture (infrastructure/persistence carries a similar
// apply-in-order-or-abort convention for its DynamoDB item shape upgrades)
// generalized to the in-memory aggregates.Document this module uses instead
// of a DynamoDB item.
package migrations

import (
	"github.com/carta-systems/carta-core/application/adapter"
	"github.com/carta-systems/carta-core/domain/core/aggregates"
	"github.com/carta-systems/carta-core/domain/core/entities"
	"github.com/carta-systems/carta-core/domain/core/valueobjects"
	apperrors "github.com/carta-systems/carta-core/pkg/errors"
)

// Transform is one versioned migration step: applying it must bring the
// document from ToVersion-1 to ToVersion.
type Transform struct {
	ToVersion int
	Name      string
	Apply     func(doc *aggregates.Document) error
}

// legacyForwardPortID is the worked example named in §4.7: a PortSchema
// originally authored with polarity and id both "forward" is renamed to
// "relay" to match the current Polarity vocabulary, and every construct's
// Connections list is rewritten to follow the rename.
const (
	legacyForwardPortID = "forward"
	renamedRelayPortID  = "relay"
	legacyWildcardForm  = "*legacy*"
)

// renameForwardToRelay is the v4 transform: renames the legacy "forward"
// port schema (id and polarity) to "relay", drops the stale "*legacy*"
// wildcard form from every remaining port's CompatibleWith list, and
// rewrites node connections that referenced the old id.
func renameForwardToRelay(doc *aggregates.Document) error {
	if old, ok := doc.PortSchemas[legacyForwardPortID]; ok {
		renamed := old
		renamed.ID = renamedRelayPortID
		renamed.Polarity = entities.PolarityRelay
		delete(doc.PortSchemas, legacyForwardPortID)
		doc.PortSchemas[renamedRelayPortID] = renamed
	}

	for id, p := range doc.PortSchemas {
		filtered := p.CompatibleWith[:0:0]
		changed := false
		for _, c := range p.CompatibleWith {
			if c == legacyWildcardForm {
				changed = true
				continue
			}
			if c == legacyForwardPortID {
				c = renamedRelayPortID
				changed = true
			}
			filtered = append(filtered, c)
		}
		if changed {
			p.CompatibleWith = filtered
			doc.PortSchemas[id] = p
		}
	}

	for _, page := range doc.Pages {
		for _, node := range page.Nodes {
			if node.Construct == nil {
				continue
			}
			for i, c := range node.Construct.Connections {
				if c == legacyForwardPortID {
					node.Construct.Connections[i] = renamedRelayPortID
				}
			}
		}
	}
	return nil
}

// Ordered is every transform, in application order, from v1 upward.
// Versions before the first transform that needs no data change are
// omitted: a document migrating from v1 or v2 simply has no transform to
// run until it reaches v3->v4.
var Ordered = []Transform{
	{ToVersion: 4, Name: "rename-forward-port-to-relay", Apply: renameForwardToRelay},
}

// cloneDocument deep-copies every field a transform can mutate, so a failed
// migration can be rolled back without leaving partial writes from the
// transform that threw.
func cloneDocument(doc *aggregates.Document) *aggregates.Document {
	clone := *doc

	clone.Pages = make([]*aggregates.Page, len(doc.Pages))
	for i, p := range doc.Pages {
		clone.Pages[i] = clonePage(p)
	}

	clone.Schemas = cloneMap(doc.Schemas)
	clone.PortSchemas = cloneMap(doc.PortSchemas)
	clone.SchemaGroups = cloneMap(doc.SchemaGroups)
	clone.SchemaPackages = cloneMap(doc.SchemaPackages)
	clone.SchemaRelationships = cloneMap(doc.SchemaRelationships)
	clone.PackageManifest = cloneMap(doc.PackageManifest)

	clone.Deployables = make(map[valueobjects.PageID]map[string]entities.Deployable, len(doc.Deployables))
	for pageID, byID := range doc.Deployables {
		clone.Deployables[pageID] = cloneMap(byID)
	}
	return &clone
}

func cloneMap[T any](m map[string]T) map[string]T {
	out := make(map[string]T, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func clonePage(p *aggregates.Page) *aggregates.Page {
	pc := aggregates.NewPage(p.ID, p.Name)
	for _, id := range p.OrderedNodeIDs() {
		// AddNode re-establishes insertionOrder; parents are guaranteed to
		// already be present because OrderedNodeIDs preserves
		// parent-before-children order (§3).
		_ = pc.AddNode(p.Nodes[id].Clone())
	}
	for id, e := range p.Edges {
		pc.Edges[id] = e.Clone()
	}
	pc.PinConstraints = append([]entities.PinConstraint(nil), p.PinConstraints...)
	return pc
}

// Run brings doc up to aggregates.CurrentSchemaVersion if it is behind,
// executing every pending transform inside a single "migration" transaction.
// On success MigrationVersion is advanced to CurrentSchemaVersion; on
// failure the document is restored to its pre-migration state and
// MigrationFailed is returned, per §4.7/§7.
func Run(a *adapter.Adapter) error {
	doc := a.Document()
	if doc.MigrationVersion >= aggregates.CurrentSchemaVersion {
		return nil
	}

	fromVersion := doc.MigrationVersion
	snapshot := cloneDocument(doc)

	return a.Transaction(adapter.OriginMigration, func() error {
		ran := false
		for _, t := range Ordered {
			if t.ToVersion <= doc.MigrationVersion {
				continue
			}
			if err := t.Apply(doc); err != nil {
				restoreDocument(doc, snapshot)
				return apperrors.NewMigrationFailed(fromVersion, t.ToVersion, err)
			}
			doc.MigrationVersion = t.ToVersion
			ran = true
		}
		if ran {
			a.MarkChanged(adapter.KeyPortSchemas, adapter.KeyNodes, adapter.KeyLevels)
		}
		return nil
	})
}

// restoreDocument overwrites doc's fields in place with snapshot's, so the
// adapter's existing *Document pointer stays valid for callers that hold it.
func restoreDocument(doc, snapshot *aggregates.Document) {
	*doc = *snapshot
}
