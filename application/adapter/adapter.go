// Package adapter implements the document adapter of §4.1: the single
// interface through which every other component reads and writes document
// state. It owns the in-memory aggregates.Document, wraps every mutation in
// a named-origin transaction, and drives granular and general
// subscriptions through infrastructure/crdtstore — generalizing the
// teacher's application/services layer (which wraps aggregates.Graph with
// transactional command handlers) to this module's CRDT-backed,
// subscription-driven document model.
package adapter

import (
	"context"
	"sync"
	"time"

	"github.com/carta-systems/carta-core/application/ports"
	"github.com/carta-systems/carta-core/domain/core/aggregates"
	"github.com/carta-systems/carta-core/domain/core/entities"
	"github.com/carta-systems/carta-core/domain/core/valueobjects"
	"github.com/carta-systems/carta-core/domain/events"
	"github.com/carta-systems/carta-core/infrastructure/config"
	"github.com/carta-systems/carta-core/infrastructure/crdtstore"
	apperrors "github.com/carta-systems/carta-core/pkg/errors"
	"github.com/carta-systems/carta-core/pkg/observability"
	"go.uber.org/zap"
)

// Origin names an actor class for a transaction (§2, §9).
type Origin string

const (
	OriginUser      Origin = "user"
	OriginAIMCP     Origin = "ai-mcp"
	OriginMigration Origin = "migration"
	OriginLayout    Origin = "layout"
	OriginSync      Origin = "sync"
)

// Granular subscription keys (§4.1): one per slice a subscriber can narrow
// to, backed by crdtstore's key-based notification filter.
const (
	KeyNodes           = "nodes"
	KeyEdges           = "edges"
	KeySchemas         = "schemas"
	KeyPortSchemas     = "portSchemas"
	KeySchemaGroups    = "schemaGroups"
	KeyPackageManifest = "packageManifest"
	KeyDeployables     = "deployables"
	KeyLevels          = "levels" // pages / activePage
)

// Adapter is the document adapter. It is safe for concurrent use; per §5
// all mutation is serialized by txnMu so the single-threaded cooperative
// model the spec describes holds even if callers invoke it from multiple
// goroutines (e.g. an HTTP handler per request).
type Adapter struct {
	txnMu sync.Mutex
	doc   *aggregates.Document
	store *crdtstore.Store
	log   *zap.Logger

	docID     valueobjects.DocumentID
	cfg       *config.Config
	publisher ports.EventPublisher
	clock     ports.Clock
	tracer    *observability.Tracer
	metrics   *observability.Metrics

	// txn is non-nil while a transaction body is executing; nested
	// Transaction calls detect it and join rather than starting a new one.
	txn *txnState
}

type txnState struct {
	origin  Origin
	batch   *crdtstore.Batch
	touched map[string]bool
}

// Option configures optional Adapter collaborators beyond the document,
// replica id and logger every caller needs. Tests and the CLI construct a
// bare Adapter via New with no options; infrastructure/di wires the rest for
// the HTTP/Lambda front doors.
type Option func(*Adapter)

// WithConfig sources layout defaults (gaps, padding, pin clearance,
// depth-guard bound) and the ai-mcp undo-tracking bypass flag from cfg
// instead of config.Default().
func WithConfig(cfg *config.Config) Option {
	return func(a *Adapter) { a.cfg = cfg }
}

// WithEventPublisher wires a coarse out-of-process notification sink (§9's
// supplemental DocumentChanged fan-out); every committed transaction
// publishes one event to it, best-effort.
func WithEventPublisher(p ports.EventPublisher) Option {
	return func(a *Adapter) { a.publisher = p }
}

// WithClock overrides the wall-clock source used for published events' ts.
func WithClock(c ports.Clock) Option {
	return func(a *Adapter) { a.clock = c }
}

// WithTracer wraps every committed transaction in an X-Ray subsegment named
// after its origin, mirroring the teacher's Tracer.TraceFunction around its
// command handlers.
func WithTracer(t *observability.Tracer) Option {
	return func(a *Adapter) { a.tracer = t }
}

// WithMetrics records one Transactions count per Transaction call, tagged by
// origin and commit/rollback outcome.
func WithMetrics(m *observability.Metrics) Option {
	return func(a *Adapter) { a.metrics = m }
}

// WithDocumentID stamps the adapter with the persistence-layer identity of
// the document it wraps, used as DocumentChanged.DocumentID and as the
// persistence/eventbus key. Callers that never publish (most tests) can
// leave this unset; New mints a fresh random id so publishChange always has
// something stable to report.
func WithDocumentID(id valueobjects.DocumentID) Option {
	return func(a *Adapter) { a.docID = id }
}

// New creates an adapter over doc, backed by a fresh crdtstore replica
// identified by replicaID.
func New(doc *aggregates.Document, replicaID string, log *zap.Logger, opts ...Option) *Adapter {
	if log == nil {
		log = zap.NewNop()
	}
	a := &Adapter{
		doc:   doc,
		store: crdtstore.NewStore(replicaID),
		log:   log,
		cfg:   config.Default(),
		docID: valueobjects.NewDocumentID(),
		clock: systemClock{},
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// touch marks a slice as changed in the current transaction. It must be
// called from within Transaction; calling it outside one is a programming
// error, since every mutating method below always wraps itself in a
// default "user" transaction if the caller didn't already start one.
func (a *Adapter) touch(key string) {
	a.txn.touched[key] = true
	a.txn.batch.Set(key, struct{}{})
}

// MarkChanged lets an orchestrator that mutates Document() directly inside
// a Transaction body (application/migrations, application/layoutactions)
// declare which slices it touched, so granular subscribers still fire. It
// panics if called outside an active transaction — that would silently
// drop the notification.
func (a *Adapter) MarkChanged(keys ...string) {
	if a.txn == nil {
		panic("adapter: MarkChanged called outside a transaction")
	}
	for _, k := range keys {
		a.touch(k)
	}
}

// Transaction runs body atomically under origin (defaulting to OriginUser
// if empty). Nested calls join the outer transaction: origin is taken from
// the outermost call, and only the outermost call commits and notifies
// subscribers (§4.1, §5).
func (a *Adapter) Transaction(origin Origin, body func() error) error {
	a.txnMu.Lock()
	if a.txn != nil {
		a.txnMu.Unlock()
		return body()
	}
	if origin == "" {
		origin = OriginUser
	}
	a.txn = &txnState{origin: origin, batch: crdtstore.NewBatch(), touched: map[string]bool{}}
	a.txnMu.Unlock()

	var err error
	if a.tracer != nil {
		err = a.tracer.TraceFunction(context.Background(), "adapter.transaction."+string(origin), func(context.Context) error {
			return body()
		})
	} else {
		err = body()
	}

	a.txnMu.Lock()
	txn := a.txn
	a.txn = nil
	a.txnMu.Unlock()

	if a.metrics != nil {
		a.metrics.RecordTransaction(context.Background(), string(txn.origin), err == nil)
	}
	if err != nil {
		return err
	}
	if len(txn.touched) > 0 {
		a.store.Commit(string(txn.origin), txn.batch)
		a.publishChange(txn.origin)
	}
	return nil
}

// IsUndoTracked reports whether a transaction committed under origin would
// be recorded onto the (externally-owned) undo stack per spec.md §5: only
// "user" is always tracked; "layout", "migration" and "sync" never are;
// "ai-mcp" is gated by cfg.AIMCPBypassesUndoTracking.
func (a *Adapter) IsUndoTracked(origin Origin) bool {
	switch origin {
	case OriginUser:
		return true
	case OriginAIMCP:
		return !a.cfg.AIMCPBypassesUndoTracking
	default:
		return false
	}
}

// publishChange fans the commit out to the optional EventPublisher as a
// coarse DocumentChanged notification (§9's supplemental out-of-process
// fan-out). Publish errors are logged, not returned — a collaborator that
// cannot be reached must never fail the transaction that already committed.
func (a *Adapter) publishChange(origin Origin) {
	if a.publisher == nil {
		return
	}
	now := time.Now()
	if a.clock != nil {
		now = a.clock.Now()
	}
	var pageID *valueobjects.PageID
	if p := a.doc.ActivePage(); p != nil {
		pid := p.ID
		pageID = &pid
	}
	evt := events.NewDocumentChanged(a.docID, pageID, string(origin), a.IsUndoTracked(origin), now)
	if err := a.publisher.Publish(context.Background(), evt); err != nil {
		a.log.Warn("publish document changed event failed", zap.String("origin", string(origin)), zap.Error(err))
	}
}

// GetLastOrigin returns the origin of the most recently committed
// transaction's node slice, the probe subscribers use to decide whether a
// change should be undo-tracked (§4.1, §9).
func (a *Adapter) GetLastOrigin() (Origin, bool) {
	o, ok := a.store.LastOrigin(KeyNodes)
	return Origin(o), ok
}

// ---- Document-level ----

func (a *Adapter) GetTitle() string { return a.doc.Title }

func (a *Adapter) SetTitle(title string) error {
	return a.Transaction(OriginUser, func() error {
		a.doc.Title = title
		a.touch(KeyLevels)
		return nil
	})
}

func (a *Adapter) GetDescription() string { return a.doc.Description }

func (a *Adapter) SetDescription(description string) error {
	return a.Transaction(OriginUser, func() error {
		a.doc.Description = description
		a.touch(KeyLevels)
		return nil
	})
}

// Document exposes the underlying aggregate read-only, for callers (layout
// glue, presentation, serialization) that need direct structural access
// rather than a narrow getter. Mutating the returned pointer's fields
// outside a Transaction bypasses notification and is a caller bug.
func (a *Adapter) Document() *aggregates.Document { return a.doc }

// ---- Pages ----

func (a *Adapter) GetPages() []*aggregates.Page { return a.doc.Pages }

func (a *Adapter) CreatePage(name string) (*aggregates.Page, error) {
	var page *aggregates.Page
	err := a.Transaction(OriginUser, func() error {
		page = a.doc.CreatePage(name)
		a.touch(KeyLevels)
		return nil
	})
	return page, err
}

func (a *Adapter) DeletePage(id valueobjects.PageID) (bool, error) {
	var ok bool
	err := a.Transaction(OriginUser, func() error {
		ok = a.doc.DeletePage(id)
		if ok {
			if a.doc.ActivePageID == nil && len(a.doc.Pages) > 0 {
				first := a.doc.Pages[0].ID
				a.doc.ActivePageID = &first
			}
			a.touch(KeyLevels)
			a.touch(KeyNodes)
			a.touch(KeyEdges)
		}
		return nil
	})
	return ok, err
}

func (a *Adapter) GetActivePage() *aggregates.Page { return a.doc.ActivePage() }

func (a *Adapter) SetActivePage(id valueobjects.PageID) error {
	return a.Transaction(OriginUser, func() error {
		if err := a.doc.SetActivePage(id); err != nil {
			return err
		}
		a.touch(KeyLevels)
		return nil
	})
}

func (a *Adapter) activePageOrErr() (*aggregates.Page, error) {
	p := a.doc.ActivePage()
	if p == nil {
		return nil, apperrors.NewInvariantViolation("no active page")
	}
	return p, nil
}

// ---- Nodes ----

// GetNodes returns a defensive copy of every node on the active page.
func (a *Adapter) GetNodes() ([]*entities.Node, error) {
	page, err := a.activePageOrErr()
	if err != nil {
		return nil, err
	}
	out := make([]*entities.Node, 0, len(page.Nodes))
	for _, id := range page.OrderedNodeIDs() {
		out = append(out, page.Nodes[id].Clone())
	}
	return out, nil
}

// SetNodes replaces the active page's node list under origin (defaulting to
// user).
func (a *Adapter) SetNodes(origin Origin, nodes []*entities.Node) error {
	return a.Transaction(origin, func() error {
		page, err := a.activePageOrErr()
		if err != nil {
			return err
		}
		page.Nodes = make(map[valueobjects.NodeID]*entities.Node, len(nodes))
		for _, n := range nodes {
			if n == nil || n.ID.IsZero() {
				return apperrors.NewInvalidShape("node cannot be nil or have an empty id")
			}
			page.Nodes[n.ID] = n
		}
		a.touch(KeyNodes)
		return nil
	})
}

// UpdateNode applies updater to the node with id on the active page.
// UnknownID if the node does not exist.
func (a *Adapter) UpdateNode(id valueobjects.NodeID, updater func(*entities.Node)) error {
	return a.Transaction(OriginUser, func() error {
		page, err := a.activePageOrErr()
		if err != nil {
			return err
		}
		n, ok := page.Nodes[id]
		if !ok {
			return apperrors.NewUnknownID("node", id.String())
		}
		updater(n)
		a.touch(KeyNodes)
		return nil
	})
}

// NodePatch is one entry of a PatchNodes batch: only the non-nil fields are
// applied.
type NodePatch struct {
	ID       valueobjects.NodeID
	Position *valueobjects.Point
	Style    *entities.Style
}

// PatchNodes applies fine-grained position/style patches under origin
// (typically OriginLayout or OriginUser). A patch targeting a missing id is
// a silent no-op for that entry only (§4.1, §7's UnknownId policy); other
// entries in the batch still apply.
func (a *Adapter) PatchNodes(origin Origin, patches []NodePatch) error {
	return a.Transaction(origin, func() error {
		page, err := a.activePageOrErr()
		if err != nil {
			return err
		}
		for _, p := range patches {
			n, ok := page.Nodes[p.ID]
			if !ok {
				continue
			}
			if p.Position != nil {
				n.Position = *p.Position
			}
			if p.Style != nil {
				n.Style = *p.Style
			}
		}
		a.touch(KeyNodes)
		return nil
	})
}

// GenerateNodeID mints a fresh, globally unique node id.
func (a *Adapter) GenerateNodeID() valueobjects.NodeID { return valueobjects.NewNodeID() }

// AddNode inserts a node onto the active page, enforcing the aggregate's
// structural invariants (parent existence, wagon tether, cycle-freedom).
func (a *Adapter) AddNode(origin Origin, node *entities.Node) error {
	return a.Transaction(origin, func() error {
		page, err := a.activePageOrErr()
		if err != nil {
			return err
		}
		if err := page.AddNode(node); err != nil {
			return err
		}
		a.touch(KeyNodes)
		return nil
	})
}

// RemoveNode deletes a node from the active page.
func (a *Adapter) RemoveNode(origin Origin, id valueobjects.NodeID) error {
	return a.Transaction(origin, func() error {
		page, err := a.activePageOrErr()
		if err != nil {
			return err
		}
		if err := page.RemoveNode(id); err != nil {
			return err
		}
		a.touch(KeyNodes)
		return nil
	})
}

// ---- Edges ----

func (a *Adapter) GetEdges() ([]*entities.Edge, error) {
	page, err := a.activePageOrErr()
	if err != nil {
		return nil, err
	}
	out := make([]*entities.Edge, 0, len(page.Edges))
	for _, e := range page.Edges {
		out = append(out, e.Clone())
	}
	return out, nil
}

func (a *Adapter) SetEdges(origin Origin, edges []*entities.Edge) error {
	return a.Transaction(origin, func() error {
		page, err := a.activePageOrErr()
		if err != nil {
			return err
		}
		page.Edges = make(map[valueobjects.EdgeID]*entities.Edge, len(edges))
		for _, e := range edges {
			if e == nil || e.ID.IsZero() {
				return apperrors.NewInvalidShape("edge cannot be nil or have an empty id")
			}
			page.Edges[e.ID] = e
		}
		a.touch(KeyEdges)
		return nil
	})
}

func (a *Adapter) AddEdge(origin Origin, edge *entities.Edge) error {
	return a.Transaction(origin, func() error {
		page, err := a.activePageOrErr()
		if err != nil {
			return err
		}
		if err := page.AddEdge(edge); err != nil {
			return err
		}
		a.touch(KeyEdges)
		return nil
	})
}

func (a *Adapter) RemoveEdge(origin Origin, id valueobjects.EdgeID) error {
	return a.Transaction(origin, func() error {
		page, err := a.activePageOrErr()
		if err != nil {
			return err
		}
		if err := page.RemoveEdge(id); err != nil {
			return err
		}
		a.touch(KeyEdges)
		return nil
	})
}

// EdgeDataPatch is one entry of a PatchEdgeData batch. A nil Label or
// BundleCount leaves that field as-is and any other value sets it;
// Waypoints and ClearRoute behave as noted on their fields.
type EdgeDataPatch struct {
	ID          valueobjects.EdgeID
	Waypoints   *[]valueobjects.Point // nil = leave as-is; pointer-to-nil-slice = clear
	ClearRoute  bool
	Label       *string
	BundleCount *int
}

// PatchEdgeData applies fine-grained data patches, silently skipping
// entries targeting a missing edge id (§4.1, §7).
func (a *Adapter) PatchEdgeData(origin Origin, patches []EdgeDataPatch) error {
	return a.Transaction(origin, func() error {
		page, err := a.activePageOrErr()
		if err != nil {
			return err
		}
		for _, p := range patches {
			e, ok := page.Edges[p.ID]
			if !ok {
				continue
			}
			if p.ClearRoute {
				e.Data.Waypoints = nil
			} else if p.Waypoints != nil {
				e.Data.Waypoints = *p.Waypoints
			}
			if p.Label != nil {
				e.Data.Label = *p.Label
			}
			if p.BundleCount != nil {
				e.Data.BundleCount = *p.BundleCount
			}
		}
		a.touch(KeyEdges)
		return nil
	})
}

// ---- Pins ----

func (a *Adapter) AddPinConstraint(c entities.PinConstraint) error {
	return a.Transaction(OriginUser, func() error {
		page, err := a.activePageOrErr()
		if err != nil {
			return err
		}
		page.PinConstraints = append(page.PinConstraints, c)
		a.touch(KeyLevels)
		return nil
	})
}

func (a *Adapter) RemovePinConstraint(id valueobjects.PinConstraintID) error {
	return a.Transaction(OriginUser, func() error {
		page, err := a.activePageOrErr()
		if err != nil {
			return err
		}
		for i, c := range page.PinConstraints {
			if c.ID.String() == id.String() {
				page.PinConstraints = append(page.PinConstraints[:i], page.PinConstraints[i+1:]...)
				a.touch(KeyLevels)
				return nil
			}
		}
		return apperrors.NewUnknownID("pinConstraint", id.String())
	})
}

func (a *Adapter) ListPinConstraints(pageID valueobjects.PageID) ([]entities.PinConstraint, error) {
	page := a.doc.FindPage(pageID)
	if page == nil {
		return nil, apperrors.NewUnknownID("page", pageID.String())
	}
	return append([]entities.PinConstraint(nil), page.PinConstraints...), nil
}

// ---- Subscriptions ----

// Subscribe registers a general handler, fired once per committed
// transaction regardless of which slice changed. Handlers receive no
// arguments; per §4.1 they must read fresh state via the getters.
func (a *Adapter) Subscribe(handler func()) func() {
	return a.store.Subscribe(nil, func(changed []string, origin string) { handler() })
}

func (a *Adapter) subscribeToKey(key string, handler func()) func() {
	return a.store.Subscribe([]string{key}, func(changed []string, origin string) { handler() })
}

func (a *Adapter) SubscribeToNodes(h func()) func()           { return a.subscribeToKey(KeyNodes, h) }
func (a *Adapter) SubscribeToEdges(h func()) func()           { return a.subscribeToKey(KeyEdges, h) }
func (a *Adapter) SubscribeToSchemas(h func()) func()         { return a.subscribeToKey(KeySchemas, h) }
func (a *Adapter) SubscribeToPortSchemas(h func()) func()     { return a.subscribeToKey(KeyPortSchemas, h) }
func (a *Adapter) SubscribeToSchemaGroups(h func()) func()    { return a.subscribeToKey(KeySchemaGroups, h) }
func (a *Adapter) SubscribeToPackageManifest(h func()) func() { return a.subscribeToKey(KeyPackageManifest, h) }
func (a *Adapter) SubscribeToDeployables(h func()) func()     { return a.subscribeToKey(KeyDeployables, h) }
func (a *Adapter) SubscribeToLevels(h func()) func()          { return a.subscribeToKey(KeyLevels, h) }
