package aggregates

import (
	"github.com/carta-systems/carta-core/domain/core/entities"
	"github.com/carta-systems/carta-core/domain/core/valueobjects"
	apperrors "github.com/carta-systems/carta-core/pkg/errors"
)

// CurrentSchemaVersion is the current canonical document version (§6).
const CurrentSchemaVersion = 4

// Document is the versioned root: an ordered list of pages plus the
// registries shared across all of them (§3).
type Document struct {
	Version      int
	Title        string
	Description  string
	Pages        []*Page
	ActivePageID *valueobjects.PageID

	Schemas              map[string]entities.Schema
	PortSchemas          map[string]entities.PortSchema
	SchemaGroups         map[string]entities.SchemaGroup
	SchemaPackages       map[string]entities.SchemaPackage
	SchemaRelationships  map[string]entities.SchemaRelationship
	PackageManifest      map[string]entities.PackageManifestEntry
	Deployables          map[valueobjects.PageID]map[string]entities.Deployable

	// MigrationVersion tracks the last migration applied (§4.7), distinct
	// from Version which is the canonical document-format version.
	MigrationVersion int
}

// NewDocument creates an empty document at the current schema version.
func NewDocument(title string) *Document {
	return &Document{
		Version:             CurrentSchemaVersion,
		Title:               title,
		Schemas:             make(map[string]entities.Schema),
		PortSchemas:         make(map[string]entities.PortSchema),
		SchemaGroups:        make(map[string]entities.SchemaGroup),
		SchemaPackages:      make(map[string]entities.SchemaPackage),
		SchemaRelationships: make(map[string]entities.SchemaRelationship),
		PackageManifest:     make(map[string]entities.PackageManifestEntry),
		Deployables:         make(map[valueobjects.PageID]map[string]entities.Deployable),
		MigrationVersion:    CurrentSchemaVersion,
	}
}

// FindPage returns the page with the given id, or nil.
func (d *Document) FindPage(id valueobjects.PageID) *Page {
	for _, p := range d.Pages {
		if p.ID.Equals(id) {
			return p
		}
	}
	return nil
}

// CreatePage appends a new page and, if no active page is set, activates it.
func (d *Document) CreatePage(name string) *Page {
	page := NewPage(valueobjects.NewPageID(), name)
	d.Pages = append(d.Pages, page)
	if d.ActivePageID == nil {
		id := page.ID
		d.ActivePageID = &id
	}
	return page
}

// DeletePage removes a page and everything it owns. If it was active, the
// active page is cleared (the caller, typically the adapter, is expected to
// pick a new one, e.g. the first remaining page).
func (d *Document) DeletePage(id valueobjects.PageID) bool {
	for i, p := range d.Pages {
		if p.ID.Equals(id) {
			d.Pages = append(d.Pages[:i], d.Pages[i+1:]...)
			delete(d.Deployables, id)
			if d.ActivePageID != nil && d.ActivePageID.Equals(id) {
				d.ActivePageID = nil
			}
			return true
		}
	}
	return false
}

// ActivePage returns the active page, or nil if none is set or it no longer
// exists.
func (d *Document) ActivePage() *Page {
	if d.ActivePageID == nil {
		return nil
	}
	return d.FindPage(*d.ActivePageID)
}

// SetActivePage validates that id references an existing page (§3 invariant)
// before switching.
func (d *Document) SetActivePage(id valueobjects.PageID) error {
	if d.FindPage(id) == nil {
		return apperrors.NewUnknownID("page", id.String())
	}
	d.ActivePageID = &id
	return nil
}

// Validate checks document-wide invariants: Version is monotone-positive,
// ActivePageID (if set) references an existing page, and every page
// validates internally.
func (d *Document) Validate() error {
	if d.Version <= 0 {
		return apperrors.NewInvariantViolation("document version must be positive")
	}
	if d.ActivePageID != nil && d.FindPage(*d.ActivePageID) == nil {
		return apperrors.NewInvariantViolation("activePageId references a missing page")
	}
	for _, p := range d.Pages {
		if err := p.Validate(); err != nil {
			return err
		}
	}
	return nil
}
