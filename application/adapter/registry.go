package adapter

import (
	"github.com/carta-systems/carta-core/domain/core/entities"
	"github.com/carta-systems/carta-core/domain/core/valueobjects"
	apperrors "github.com/carta-systems/carta-core/pkg/errors"
)

// registryGet, registryList, registryAdd, registryUpdate and registryRemove
// are the shared get/list/add/update/remove shape behind the six id-keyed
// registries (Schema, PortSchema, SchemaGroup, SchemaPackage,
// SchemaRelationship, PackageManifest); Deployables nest by page and apply
// the same helpers to their per-page map. Generics are used here rather
// than six hand-written copies because the six registries are structurally
// identical map[string]T stores with no per-kind behavior to diverge on.
func registryGet[T any](m map[string]T, id string) (T, bool) {
	v, ok := m[id]
	return v, ok
}

func registryList[T any](m map[string]T) []T {
	out := make([]T, 0, len(m))
	for _, v := range m {
		out = append(out, v)
	}
	return out
}

func registryAdd[T any](m map[string]T, id string, kind string, v T) error {
	if id == "" {
		return apperrors.NewInvalidShape(kind + " id cannot be empty")
	}
	if _, exists := m[id]; exists {
		return apperrors.NewInvariantViolation(kind + " already exists: " + id)
	}
	m[id] = v
	return nil
}

func registryUpdate[T any](m map[string]T, id string, kind string, v T) error {
	if _, ok := m[id]; !ok {
		return apperrors.NewUnknownID(kind, id)
	}
	m[id] = v
	return nil
}

func registryRemove[T any](m map[string]T, id string, kind string) error {
	if _, ok := m[id]; !ok {
		return apperrors.NewUnknownID(kind, id)
	}
	delete(m, id)
	return nil
}

// ---- Schemas ----

func (a *Adapter) GetSchema(id string) (entities.Schema, bool) { return registryGet(a.doc.Schemas, id) }
func (a *Adapter) GetSchemas() []entities.Schema                { return registryList(a.doc.Schemas) }

func (a *Adapter) AddSchema(s entities.Schema) error {
	return a.Transaction(OriginUser, func() error {
		if err := registryAdd(a.doc.Schemas, s.Type, "schema", s); err != nil {
			return err
		}
		a.touch(KeySchemas)
		return nil
	})
}

func (a *Adapter) UpdateSchema(s entities.Schema) error {
	return a.Transaction(OriginUser, func() error {
		if err := registryUpdate(a.doc.Schemas, s.Type, "schema", s); err != nil {
			return err
		}
		a.touch(KeySchemas)
		return nil
	})
}

func (a *Adapter) RemoveSchema(id string) error {
	return a.Transaction(OriginUser, func() error {
		if err := registryRemove(a.doc.Schemas, id, "schema"); err != nil {
			return err
		}
		a.touch(KeySchemas)
		return nil
	})
}

// ---- PortSchemas ----

func (a *Adapter) GetPortSchema(id string) (entities.PortSchema, bool) {
	return registryGet(a.doc.PortSchemas, id)
}
func (a *Adapter) GetPortSchemas() []entities.PortSchema { return registryList(a.doc.PortSchemas) }

func (a *Adapter) AddPortSchema(p entities.PortSchema) error {
	return a.Transaction(OriginUser, func() error {
		if err := registryAdd(a.doc.PortSchemas, p.ID, "portSchema", p); err != nil {
			return err
		}
		a.touch(KeyPortSchemas)
		return nil
	})
}

func (a *Adapter) UpdatePortSchema(p entities.PortSchema) error {
	return a.Transaction(OriginUser, func() error {
		if err := registryUpdate(a.doc.PortSchemas, p.ID, "portSchema", p); err != nil {
			return err
		}
		a.touch(KeyPortSchemas)
		return nil
	})
}

func (a *Adapter) RemovePortSchema(id string) error {
	return a.Transaction(OriginUser, func() error {
		if err := registryRemove(a.doc.PortSchemas, id, "portSchema"); err != nil {
			return err
		}
		a.touch(KeyPortSchemas)
		return nil
	})
}

// ---- SchemaGroups ----

func (a *Adapter) GetSchemaGroup(id string) (entities.SchemaGroup, bool) {
	return registryGet(a.doc.SchemaGroups, id)
}
func (a *Adapter) GetSchemaGroups() []entities.SchemaGroup { return registryList(a.doc.SchemaGroups) }

func (a *Adapter) AddSchemaGroup(g entities.SchemaGroup) error {
	return a.Transaction(OriginUser, func() error {
		if err := registryAdd(a.doc.SchemaGroups, g.ID, "schemaGroup", g); err != nil {
			return err
		}
		a.touch(KeySchemaGroups)
		return nil
	})
}

func (a *Adapter) UpdateSchemaGroup(g entities.SchemaGroup) error {
	return a.Transaction(OriginUser, func() error {
		if err := registryUpdate(a.doc.SchemaGroups, g.ID, "schemaGroup", g); err != nil {
			return err
		}
		a.touch(KeySchemaGroups)
		return nil
	})
}

func (a *Adapter) RemoveSchemaGroup(id string) error {
	return a.Transaction(OriginUser, func() error {
		if err := registryRemove(a.doc.SchemaGroups, id, "schemaGroup"); err != nil {
			return err
		}
		a.touch(KeySchemaGroups)
		return nil
	})
}

// ---- SchemaPackages ----
//
// SchemaPackages and SchemaRelationships are part of the package manifest
// concern (§6's schema-library import/export) so both are notified under
// KeyPackageManifest alongside PackageManifestEntry itself.

func (a *Adapter) GetSchemaPackage(id string) (entities.SchemaPackage, bool) {
	return registryGet(a.doc.SchemaPackages, id)
}
func (a *Adapter) GetSchemaPackages() []entities.SchemaPackage {
	return registryList(a.doc.SchemaPackages)
}

func (a *Adapter) AddSchemaPackage(p entities.SchemaPackage) error {
	return a.Transaction(OriginUser, func() error {
		if err := registryAdd(a.doc.SchemaPackages, p.ID, "schemaPackage", p); err != nil {
			return err
		}
		a.touch(KeyPackageManifest)
		return nil
	})
}

func (a *Adapter) UpdateSchemaPackage(p entities.SchemaPackage) error {
	return a.Transaction(OriginUser, func() error {
		if err := registryUpdate(a.doc.SchemaPackages, p.ID, "schemaPackage", p); err != nil {
			return err
		}
		a.touch(KeyPackageManifest)
		return nil
	})
}

func (a *Adapter) RemoveSchemaPackage(id string) error {
	return a.Transaction(OriginUser, func() error {
		if err := registryRemove(a.doc.SchemaPackages, id, "schemaPackage"); err != nil {
			return err
		}
		a.touch(KeyPackageManifest)
		return nil
	})
}

// ---- SchemaRelationships ----

func (a *Adapter) GetSchemaRelationship(id string) (entities.SchemaRelationship, bool) {
	return registryGet(a.doc.SchemaRelationships, id)
}
func (a *Adapter) GetSchemaRelationships() []entities.SchemaRelationship {
	return registryList(a.doc.SchemaRelationships)
}

func (a *Adapter) AddSchemaRelationship(r entities.SchemaRelationship) error {
	return a.Transaction(OriginUser, func() error {
		if err := registryAdd(a.doc.SchemaRelationships, r.ID, "schemaRelationship", r); err != nil {
			return err
		}
		a.touch(KeyPackageManifest)
		return nil
	})
}

func (a *Adapter) UpdateSchemaRelationship(r entities.SchemaRelationship) error {
	return a.Transaction(OriginUser, func() error {
		if err := registryUpdate(a.doc.SchemaRelationships, r.ID, "schemaRelationship", r); err != nil {
			return err
		}
		a.touch(KeyPackageManifest)
		return nil
	})
}

func (a *Adapter) RemoveSchemaRelationship(id string) error {
	return a.Transaction(OriginUser, func() error {
		if err := registryRemove(a.doc.SchemaRelationships, id, "schemaRelationship"); err != nil {
			return err
		}
		a.touch(KeyPackageManifest)
		return nil
	})
}

// ---- PackageManifest ----

func (a *Adapter) GetPackageManifestEntry(id string) (entities.PackageManifestEntry, bool) {
	return registryGet(a.doc.PackageManifest, id)
}
func (a *Adapter) GetPackageManifest() []entities.PackageManifestEntry {
	return registryList(a.doc.PackageManifest)
}

func (a *Adapter) AddPackageManifestEntry(e entities.PackageManifestEntry) error {
	return a.Transaction(OriginUser, func() error {
		if err := registryAdd(a.doc.PackageManifest, e.ID, "packageManifestEntry", e); err != nil {
			return err
		}
		a.touch(KeyPackageManifest)
		return nil
	})
}

func (a *Adapter) UpdatePackageManifestEntry(e entities.PackageManifestEntry) error {
	return a.Transaction(OriginUser, func() error {
		if err := registryUpdate(a.doc.PackageManifest, e.ID, "packageManifestEntry", e); err != nil {
			return err
		}
		a.touch(KeyPackageManifest)
		return nil
	})
}

func (a *Adapter) RemovePackageManifestEntry(id string) error {
	return a.Transaction(OriginUser, func() error {
		if err := registryRemove(a.doc.PackageManifest, id, "packageManifestEntry"); err != nil {
			return err
		}
		a.touch(KeyPackageManifest)
		return nil
	})
}

// ---- Deployables ----
//
// Deployables nest by page (doc.Deployables[pageID][id]) so they get their
// own page-scoped methods, which apply the shared registry helpers to the
// per-page map.

func (a *Adapter) GetDeployable(pageID valueobjects.PageID, id string) (entities.Deployable, bool) {
	byID, ok := a.doc.Deployables[pageID]
	if !ok {
		return entities.Deployable{}, false
	}
	d, ok := byID[id]
	return d, ok
}

func (a *Adapter) GetDeployables(pageID valueobjects.PageID) []entities.Deployable {
	return registryList(a.doc.Deployables[pageID])
}

func (a *Adapter) AddDeployable(pageID valueobjects.PageID, d entities.Deployable) error {
	return a.Transaction(OriginUser, func() error {
		if a.doc.FindPage(pageID) == nil {
			return apperrors.NewUnknownID("page", pageID.String())
		}
		if a.doc.Deployables[pageID] == nil {
			a.doc.Deployables[pageID] = make(map[string]entities.Deployable)
		}
		if err := registryAdd(a.doc.Deployables[pageID], d.ID, "deployable", d); err != nil {
			return err
		}
		a.touch(KeyDeployables)
		return nil
	})
}

func (a *Adapter) UpdateDeployable(pageID valueobjects.PageID, d entities.Deployable) error {
	return a.Transaction(OriginUser, func() error {
		byID, ok := a.doc.Deployables[pageID]
		if !ok {
			return apperrors.NewUnknownID("deployable", d.ID)
		}
		if err := registryUpdate(byID, d.ID, "deployable", d); err != nil {
			return err
		}
		a.touch(KeyDeployables)
		return nil
	})
}

func (a *Adapter) RemoveDeployable(pageID valueobjects.PageID, id string) error {
	return a.Transaction(OriginUser, func() error {
		byID, ok := a.doc.Deployables[pageID]
		if !ok {
			return apperrors.NewUnknownID("deployable", id)
		}
		if err := registryRemove(byID, id, "deployable"); err != nil {
			return err
		}
		a.touch(KeyDeployables)
		return nil
	})
}
