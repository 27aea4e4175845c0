// Package ports declares the interfaces application/adapter and its
// surrounding infrastructure depend on, in the teacher's hexagonal style
// (application/ports in the teacher repo plays the identical role for its
// repositories and unit-of-work). Every port here is implemented by an
// infrastructure adapter and consumed only through its interface.
package ports

import (
	"context"
	"time"

	"github.com/carta-systems/carta-core/domain/core/valueobjects"
	"github.com/carta-systems/carta-core/domain/events"
)

// EventPublisher delivers coarse domain events to out-of-process
// collaborators (activity feeds, sync transports) after a transaction
// commits. This is distinct from the adapter's in-process subscriptions,
// which carry no payload — see application/adapter.
type EventPublisher interface {
	Publish(ctx context.Context, event events.DomainEvent) error
}

// SnapshotStore persists a document's canonical snapshot (§6) with
// optimistic concurrency: Save fails if the stored version has moved past
// expectedVersion since the caller last loaded it.
type SnapshotStore interface {
	Load(ctx context.Context, id valueobjects.DocumentID) (snapshot []byte, version int64, err error)
	Save(ctx context.Context, id valueobjects.DocumentID, snapshot []byte, expectedVersion int64) (newVersion int64, err error)
}

// SyncTransport is the consumed-not-owned collaborator of §6: it applies
// remote CRDT updates under origin "sync" and forwards local updates
// outward. The core only needs a narrow attachment surface; the transport
// itself (WebSocket, polling, etc.) lives entirely outside this module.
type SyncTransport interface {
	// Attach registers the handler the transport calls with remote deltas.
	Attach(onRemoteDelta func(origin string, deltas []byte)) error
	// Send forwards a local delta outward; origin is always "user" or
	// "ai-mcp" — layout/migration-origin changes are not synced raw, they
	// arrive at remote replicas as already-applied document state.
	Send(ctx context.Context, origin string, delta []byte) error
}

// Clock abstracts wall-clock reads the adapter needs for event timestamps,
// so tests can supply a fixed time instead of depending on time.Now (the
// workflow harness this module itself is built under disallows exactly
// that nondeterminism in tests, and the teacher's own services take the
// same stance via injected clocks in their saga/test harnesses).
type Clock interface {
	Now() time.Time
}
