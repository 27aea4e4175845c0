// Package serialization implements the canonical document snapshot and
// schema-library file formats of §6, grounded on the teacher's
// pkg/utils.ValidateStruct posture (go-playground/validator struct tags)
// for the schema-library import path's validation.
package serialization

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/carta-systems/carta-core/application/adapter"
	"github.com/carta-systems/carta-core/domain/core/aggregates"
	"github.com/carta-systems/carta-core/domain/core/entities"
	"github.com/carta-systems/carta-core/domain/core/valueobjects"
	apperrors "github.com/carta-systems/carta-core/pkg/errors"
)

var validate = validator.New()

// PageSnapshot is one page's wire shape within the canonical document
// snapshot.
type PageSnapshot struct {
	ID    string           `json:"id"`
	Name  string           `json:"name"`
	Nodes []*entities.Node `json:"nodes"`
	Edges []*entities.Edge `json:"edges"`
}

// DocumentSnapshot is the canonical toJSON output (§6), version 4. All
// listed fields are always present; empty arrays rather than omitted when
// there is nothing to report, matching the contract's "all listed fields
// always present" rule.
type DocumentSnapshot struct {
	Version             int                               `json:"version"`
	Title               string                            `json:"title"`
	Description         string                            `json:"description,omitempty"`
	Pages               []PageSnapshot                    `json:"pages"`
	ActivePage          string                            `json:"activePage,omitempty"`
	Schemas             []entities.Schema                 `json:"schemas"`
	PortSchemas         []entities.PortSchema              `json:"portSchemas"`
	SchemaGroups        []entities.SchemaGroup             `json:"schemaGroups"`
	SchemaPackages      []entities.SchemaPackage           `json:"schemaPackages"`
	SchemaRelationships []entities.SchemaRelationship       `json:"schemaRelationships"`
	PackageManifest     []entities.PackageManifestEntry     `json:"packageManifest"`
}

// Snapshot builds the canonical document snapshot directly off the
// aggregate. It does not go through crdtstore.Store.Snapshot() because the
// adapter's CRDT keys are coarse change-tracking tokens, not a value-level
// mirror of the document — the aggregate itself is the source of truth for
// serialization (§3's "ownership" note).
func Snapshot(a *adapter.Adapter) DocumentSnapshot {
	doc := a.Document()

	pages := make([]PageSnapshot, 0, len(doc.Pages))
	for _, p := range doc.Pages {
		ps := PageSnapshot{ID: p.ID.String(), Name: p.Name, Nodes: []*entities.Node{}, Edges: []*entities.Edge{}}
		for _, id := range p.OrderedNodeIDs() {
			ps.Nodes = append(ps.Nodes, p.Nodes[id])
		}
		for _, e := range p.Edges {
			ps.Edges = append(ps.Edges, e)
		}
		pages = append(pages, ps)
	}

	snap := DocumentSnapshot{
		Version:             doc.Version,
		Title:               doc.Title,
		Description:         doc.Description,
		Pages:               pages,
		Schemas:             registryValues(doc.Schemas),
		PortSchemas:         registryValues(doc.PortSchemas),
		SchemaGroups:        registryValues(doc.SchemaGroups),
		SchemaPackages:      registryValues(doc.SchemaPackages),
		SchemaRelationships: registryValues(doc.SchemaRelationships),
		PackageManifest:     registryValues(doc.PackageManifest),
	}
	if doc.ActivePageID != nil {
		snap.ActivePage = doc.ActivePageID.String()
	}
	return snap
}

// FromSnapshot rebuilds a Document from its canonical snapshot, the inverse
// of Snapshot. Pages/nodes/edges are replayed through Page.AddNode/AddEdge
// rather than assigned directly, since snapshot order is parent-before-child
// (the same invariant Page.AddNode enforces) and replaying re-derives the
// unexported insertion-order bookkeeping Snapshot itself reads.
func FromSnapshot(snap DocumentSnapshot) (*aggregates.Document, error) {
	doc := aggregates.NewDocument(snap.Title)
	doc.Version = snap.Version
	doc.Description = snap.Description
	doc.MigrationVersion = snap.Version

	for _, ps := range snap.Pages {
		pageID, err := valueobjects.PageIDFromString(ps.ID)
		if err != nil {
			return nil, fmt.Errorf("page %q: %w", ps.ID, err)
		}
		page := aggregates.NewPage(pageID, ps.Name)
		for _, n := range ps.Nodes {
			if err := page.AddNode(n); err != nil {
				return nil, fmt.Errorf("page %q node %q: %w", ps.ID, n.ID, err)
			}
		}
		for _, e := range ps.Edges {
			if err := page.AddEdge(e); err != nil {
				return nil, fmt.Errorf("page %q edge %q: %w", ps.ID, e.ID, err)
			}
		}
		doc.Pages = append(doc.Pages, page)
	}
	if snap.ActivePage != "" {
		activeID, err := valueobjects.PageIDFromString(snap.ActivePage)
		if err != nil {
			return nil, fmt.Errorf("activePage %q: %w", snap.ActivePage, err)
		}
		doc.ActivePageID = &activeID
	}

	for _, s := range snap.Schemas {
		doc.Schemas[s.Type] = s
	}
	for _, p := range snap.PortSchemas {
		doc.PortSchemas[p.ID] = p
	}
	for _, g := range snap.SchemaGroups {
		doc.SchemaGroups[g.ID] = g
	}
	for _, p := range snap.SchemaPackages {
		doc.SchemaPackages[p.ID] = p
	}
	for _, r := range snap.SchemaRelationships {
		doc.SchemaRelationships[r.ID] = r
	}
	for _, m := range snap.PackageManifest {
		doc.PackageManifest[m.ID] = m
	}

	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return doc, nil
}

// FromJSON parses the canonical snapshot wire format (§6) produced by ToJSON
// back into a Document, for a persistence layer resuming a stored session.
func FromJSON(raw []byte) (*aggregates.Document, error) {
	var snap DocumentSnapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return nil, fmt.Errorf("unmarshal document snapshot: %w", err)
	}
	return FromSnapshot(snap)
}

func registryValues[T any](m map[string]T) []T {
	out := make([]T, 0, len(m))
	for _, v := range m {
		out = append(out, v)
	}
	return out
}

// ToJSON marshals the canonical snapshot (§6).
func ToJSON(a *adapter.Adapter) ([]byte, error) {
	return json.Marshal(Snapshot(a))
}

// SchemaLibraryFormatVersion is the only supported .carta-schemas format
// version.
const SchemaLibraryFormatVersion = 1

// schemaDTO/portSchemaDTO/schemaGroupDTO mirror §6's required-field lists
// exactly, with validator tags enforcing "required fields present" and the
// polarity enum before any state is touched.
type schemaDTO struct {
	Type        string                   `json:"type" validate:"required"`
	DisplayName string                   `json:"displayName" validate:"required"`
	Color       string                   `json:"color" validate:"required"`
	Fields      []map[string]interface{} `json:"fields"`
	Compilation map[string]interface{}   `json:"compilation"`
}

type portSchemaDTO struct {
	ID                  string   `json:"id" validate:"required"`
	DisplayName         string   `json:"displayName" validate:"required"`
	SemanticDescription string   `json:"semanticDescription"`
	Polarity            string   `json:"polarity" validate:"required,oneof=source sink bidirectional relay intercept"`
	CompatibleWith      []string `json:"compatibleWith"`
	Color               string   `json:"color"`
}

type schemaGroupDTO struct {
	ID      string   `json:"id" validate:"required"`
	Name    string   `json:"name" validate:"required"`
	Members []string `json:"members"`
}

// SchemaLibraryFile is the §6 .carta-schemas wire format.
type SchemaLibraryFile struct {
	FormatVersion int              `json:"formatVersion"`
	Name          string           `json:"name"`
	Description   string           `json:"description,omitempty"`
	Version       string           `json:"version"`
	Changelog     string           `json:"changelog,omitempty"`
	Schemas       []schemaDTO      `json:"schemas"`
	PortSchemas   []portSchemaDTO  `json:"portSchemas"`
	SchemaGroups  []schemaGroupDTO `json:"schemaGroups"`
	ExportedAt    string           `json:"exportedAt"`
}

type schemaLibraryEnvelope struct {
	FormatVersion *int             `json:"formatVersion"`
	Name          *string          `json:"name"`
	Description   string           `json:"description"`
	Version       *string          `json:"version"`
	Changelog     string           `json:"changelog"`
	Schemas       []schemaDTO      `json:"schemas"`
	PortSchemas   []portSchemaDTO  `json:"portSchemas"`
	SchemaGroups  []schemaGroupDTO `json:"schemaGroups"`
	ExportedAt    string           `json:"exportedAt"`
}

// ExportSchemaLibrary builds a .carta-schemas file from the document's
// current registries.
func ExportSchemaLibrary(a *adapter.Adapter, name, description, version, changelog string, now time.Time) SchemaLibraryFile {
	doc := a.Document()

	schemas := make([]schemaDTO, 0, len(doc.Schemas))
	for _, s := range doc.Schemas {
		schemas = append(schemas, schemaDTO{Type: s.Type, DisplayName: s.DisplayName, Color: s.Color, Fields: s.Fields, Compilation: s.Compilation})
	}
	ports := make([]portSchemaDTO, 0, len(doc.PortSchemas))
	for _, p := range doc.PortSchemas {
		ports = append(ports, portSchemaDTO{
			ID: p.ID, DisplayName: p.DisplayName, SemanticDescription: p.SemanticDescription,
			Polarity: string(p.Polarity), CompatibleWith: p.CompatibleWith, Color: p.Color,
		})
	}
	groups := make([]schemaGroupDTO, 0, len(doc.SchemaGroups))
	for _, g := range doc.SchemaGroups {
		groups = append(groups, schemaGroupDTO{ID: g.ID, Name: g.Name, Members: g.Members})
	}

	return SchemaLibraryFile{
		FormatVersion: SchemaLibraryFormatVersion,
		Name:          name,
		Description:   description,
		Version:       version,
		Changelog:     changelog,
		Schemas:       schemas,
		PortSchemas:   ports,
		SchemaGroups:  groups,
		ExportedAt:    now.Format(time.RFC3339),
	}
}

// ParseSchemaLibrary validates raw against §6's .carta-schemas contract
// without touching any document state. It rejects the input wholesale on
// the first violation ("Invalid input rejected with a descriptive error
// before any state is touched").
func ParseSchemaLibrary(raw []byte) (*SchemaLibraryFile, error) {
	var env schemaLibraryEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, apperrors.NewValidationError(fmt.Sprintf("schema library file is not a valid object: %v", err))
	}
	if env.FormatVersion == nil || *env.FormatVersion != SchemaLibraryFormatVersion {
		return nil, apperrors.NewValidationError(fmt.Sprintf("unsupported formatVersion, expected %d", SchemaLibraryFormatVersion))
	}
	if env.Name == nil || *env.Name == "" {
		return nil, apperrors.NewValidationError("schema library file is missing required field: name")
	}
	if env.Version == nil || *env.Version == "" {
		return nil, apperrors.NewValidationError("schema library file is missing required field: version")
	}

	for i, s := range env.Schemas {
		if err := validate.Struct(s); err != nil {
			return nil, apperrors.NewValidationError(fmt.Sprintf("schemas[%d]: %v", i, err))
		}
	}
	for i, p := range env.PortSchemas {
		if err := validate.Struct(p); err != nil {
			return nil, apperrors.NewValidationError(fmt.Sprintf("portSchemas[%d]: %v", i, err))
		}
	}
	for i, g := range env.SchemaGroups {
		if err := validate.Struct(g); err != nil {
			return nil, apperrors.NewValidationError(fmt.Sprintf("schemaGroups[%d]: %v", i, err))
		}
	}

	return &SchemaLibraryFile{
		FormatVersion: *env.FormatVersion,
		Name:          *env.Name,
		Description:   env.Description,
		Version:       *env.Version,
		Changelog:     env.Changelog,
		Schemas:       env.Schemas,
		PortSchemas:   env.PortSchemas,
		SchemaGroups:  env.SchemaGroups,
		ExportedAt:    env.ExportedAt,
	}, nil
}

// ImportSchemaLibrary parses and validates raw, then writes every schema,
// portSchema and schemaGroup into the document under a single user
// transaction. Existing entries with the same id are overwritten.
func ImportSchemaLibrary(a *adapter.Adapter, raw []byte) error {
	file, err := ParseSchemaLibrary(raw)
	if err != nil {
		return err
	}

	return a.Transaction(adapter.OriginUser, func() error {
		doc := a.Document()
		for _, s := range file.Schemas {
			doc.Schemas[s.Type] = entities.Schema{Type: s.Type, DisplayName: s.DisplayName, Color: s.Color, Fields: s.Fields, Compilation: s.Compilation}
		}
		for _, p := range file.PortSchemas {
			doc.PortSchemas[p.ID] = entities.PortSchema{
				ID: p.ID, DisplayName: p.DisplayName, SemanticDescription: p.SemanticDescription,
				Polarity: entities.Polarity(p.Polarity), CompatibleWith: p.CompatibleWith, Color: p.Color,
			}
		}
		for _, g := range file.SchemaGroups {
			doc.SchemaGroups[g.ID] = entities.SchemaGroup{ID: g.ID, Name: g.Name, Members: g.Members}
		}
		a.MarkChanged(adapter.KeySchemas, adapter.KeyPortSchemas, adapter.KeySchemaGroups)
		return nil
	})
}
