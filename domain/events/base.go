// Package events carries the coarse, out-of-process notifications the
// document adapter publishes through application/ports.EventPublisher (§9,
// "Supplemental features" in SPEC_FULL.md). These are distinct from the
// in-process granular subscriptions of application/adapter, which deliver no
// payload at all and simply invalidate a caller's cached snapshot.
package events

import (
	"time"

	"github.com/carta-systems/carta-core/domain/core/valueobjects"
)

// DomainEvent is the common interface for every event raised by the core.
type DomainEvent interface {
	GetAggregateID() string
	GetEventType() string
	GetTimestamp() time.Time
	GetOrigin() string
}

// BaseEvent provides the fields common to every event.
type BaseEvent struct {
	AggregateID string    `json:"aggregateId"`
	EventType   string    `json:"eventType"`
	Timestamp   time.Time `json:"timestamp"`
	Origin      string    `json:"origin"`
}

func (e BaseEvent) GetAggregateID() string  { return e.AggregateID }
func (e BaseEvent) GetEventType() string    { return e.EventType }
func (e BaseEvent) GetTimestamp() time.Time { return e.Timestamp }
func (e BaseEvent) GetOrigin() string       { return e.Origin }

// DocumentChanged is raised once per committed transaction and carries just
// enough to let an out-of-process collaborator (sync transport, activity
// feed) decide whether to re-fetch: which document, which page (if any) and
// under what origin.
type DocumentChanged struct {
	BaseEvent
	DocumentID valueobjects.DocumentID `json:"documentId"`
	PageID     *valueobjects.PageID    `json:"pageId,omitempty"`
	// UndoTracked tells an out-of-process collaborator (activity feed, sync
	// transport) whether the user-facing undo stack would have recorded this
	// transaction — always true for "user" origin, always false for
	// "layout"/"migration"/"sync", and config-driven for "ai-mcp" (§9's
	// bypass flag; see infrastructure/config.Config.AIMCPBypassesUndoTracking).
	UndoTracked bool `json:"undoTracked"`
}

// NewDocumentChanged builds a DocumentChanged event.
func NewDocumentChanged(docID valueobjects.DocumentID, pageID *valueobjects.PageID, origin string, undoTracked bool, ts time.Time) DocumentChanged {
	return DocumentChanged{
		BaseEvent: BaseEvent{
			AggregateID: docID.String(),
			EventType:   "document.changed",
			Timestamp:   ts,
			Origin:      origin,
		},
		DocumentID:  docID,
		PageID:      pageID,
		UndoTracked: undoTracked,
	}
}

// PageCreated is raised when a new page is added to a document.
type PageCreated struct {
	BaseEvent
	PageID valueobjects.PageID `json:"pageId"`
	Name   string              `json:"name"`
}

// PageDeleted is raised when a page (and its nodes/edges) is removed.
type PageDeleted struct {
	BaseEvent
	PageID valueobjects.PageID `json:"pageId"`
}

// MigrationApplied is raised once per forward migration step run on load.
type MigrationApplied struct {
	BaseEvent
	FromVersion int `json:"fromVersion"`
	ToVersion   int `json:"toVersion"`
}
