// Package layoutactions is the §4.5 façade: it orchestrates the pure
// primitives in domain/geometry, the wagon-aware flattening in
// application/layoutglue, and the document adapter's transactional writes
// behind the three-layer sync discipline — read current positions, run a
// pure primitive, commit the result as position/style patches under origin
// "layout" so they never contaminate undo history. This generalizes the
// teacher's application/services orchestration layer (which sequences
// domain calls behind a single transactional command) to a layout-specific
// read-compute-patch cycle.
//
// The view layer that would normally supply "the view's current measured
// state" is out of scope for this module (§1's non-goals list rendering
// widgets as an external collaborator); every action here reads its
// geometry snapshot from the document adapter's current Node.Position and
// EffectiveSize instead, which is this module's stand-in ground truth.
package layoutactions

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/carta-systems/carta-core/application/adapter"
	"github.com/carta-systems/carta-core/application/layoutglue"
	"github.com/carta-systems/carta-core/domain/core/entities"
	"github.com/carta-systems/carta-core/domain/core/valueobjects"
	"github.com/carta-systems/carta-core/domain/geometry"
	"github.com/carta-systems/carta-core/domain/hierarchy"
	"github.com/carta-systems/carta-core/infrastructure/config"
	apperrors "github.com/carta-systems/carta-core/pkg/errors"
	"github.com/carta-systems/carta-core/pkg/observability"
)

// MaxDepth bounds every ancestor walk this package performs directly
// (§9's depth-20 guard) when the façade's config has no positive MaxDepth.
const MaxDepth = 20

// Actions is the layout-actions façade over a single document adapter.
type Actions struct {
	adapter *adapter.Adapter
	cfg     *config.Config
	metrics *observability.Metrics
}

// WithMetrics attaches a CloudWatch sink recording a LayoutDurationMillis
// timing for each whole-graph layout action this façade runs (Hierarchical,
// Flow and pin-constraint layout, edge routing), dimensioned by action name.
func (a *Actions) WithMetrics(m *observability.Metrics) *Actions {
	a.metrics = m
	return a
}

func (a *Actions) recordDuration(action string, start time.Time) {
	if a.metrics != nil {
		a.metrics.RecordLayoutDuration(context.Background(), action, time.Since(start))
	}
}

// New creates a façade over a, using config.Default() for layout gaps,
// container padding/header height, pin clearance and the depth-guard bound.
func New(a *adapter.Adapter) *Actions {
	return &Actions{adapter: a, cfg: config.Default()}
}

// NewWithConfig creates a façade sourcing its layout defaults from cfg, for
// callers (infrastructure/di, cmd/cartadoc) that loaded configuration from
// the environment instead of accepting the package defaults.
func NewWithConfig(a *adapter.Adapter, cfg *config.Config) *Actions {
	if cfg == nil {
		cfg = config.Default()
	}
	return &Actions{adapter: a, cfg: cfg}
}

func (a *Actions) activeNodes() (map[valueobjects.NodeID]*entities.Node, error) {
	page := a.adapter.Document().ActivePage()
	if page == nil {
		return nil, apperrors.NewInvariantViolation("no active page")
	}
	return page.Nodes, nil
}

func vpt(p geometry.Point) valueobjects.Point { return valueobjects.Point{X: p.X, Y: p.Y} }

// ---- Organizer-scoped actions ----

// runOrganizerLayout flattens containerID's children into layout units,
// applies primitive to choose new layout-unit positions, reprojects those
// back to child positions, fits the container to its new content via
// ComputeContainerFit, and commits both in one "layout" transaction.
func (a *Actions) runOrganizerLayout(containerID valueobjects.NodeID, primitive func([]geometry.Item) map[string]geometry.Point) error {
	nodes, err := a.activeNodes()
	if err != nil {
		return err
	}
	container, ok := nodes[containerID]
	if !ok {
		return apperrors.NewUnknownID("node", containerID.String())
	}

	units := layoutglue.GetChildLayoutUnits(nodes, containerID)
	if len(units.Items) == 0 {
		return nil
	}

	chosen := primitive(units.Items)
	childPositions := layoutglue.ConvertToConstructPositions(chosen, units.Offsets)

	fitItems := make([]geometry.Item, 0, len(units.Items))
	for _, it := range units.Items {
		p := chosen[it.ID]
		fitItems = append(fitItems, geometry.Item{ID: it.ID, X: p.X, Y: p.Y, Width: it.Width, Height: it.Height})
	}
	fit := geometry.ComputeContainerFit(fitItems, geometry.ContainerFitOptions{
		Padding: a.cfg.ContainerPadding, HeaderHeight: a.cfg.HeaderHeight,
	})

	return a.adapter.Transaction(adapter.OriginLayout, func() error {
		patches := make([]adapter.NodePatch, 0, len(childPositions))
		for id, pos := range childPositions {
			final := valueobjects.Point{X: pos.X + fit.ChildPositionDelta.X, Y: pos.Y + fit.ChildPositionDelta.Y}
			patches = append(patches, adapter.NodePatch{ID: id, Position: &final})
		}
		style := entities.Style{Width: &fit.Size.Width, Height: &fit.Size.Height}
		containerPos := valueobjects.Point{X: container.Position.X + fit.PositionDelta.X, Y: container.Position.Y + fit.PositionDelta.Y}
		patches = append(patches, adapter.NodePatch{ID: containerID, Position: &containerPos, Style: &style})

		return a.adapter.PatchNodes(adapter.OriginLayout, patches)
	})
}

// SpreadChildren de-overlaps containerID's direct children (wagon-aware).
func (a *Actions) SpreadChildren(containerID valueobjects.NodeID) error {
	return a.runOrganizerLayout(containerID, geometry.DeOverlap)
}

// GridLayoutChildren arranges containerID's direct children into a grid.
// cols <= 0 uses Grid's default ceil(sqrt(n)) column count.
func (a *Actions) GridLayoutChildren(containerID valueobjects.NodeID, cols int) error {
	return a.runOrganizerLayout(containerID, func(items []geometry.Item) map[string]geometry.Point {
		return geometry.Grid(items, geometry.GridOptions{Columns: cols})
	})
}

// FlowLayoutChildren lays containerID's direct children out top-to-bottom by
// longest path over the edges between them.
func (a *Actions) FlowLayoutChildren(containerID valueobjects.NodeID) error {
	nodes, err := a.activeNodes()
	if err != nil {
		return err
	}
	page := a.adapter.Document().ActivePage()
	edges := geometryEdgesAmong(page.Edges, childIDSet(nodes, containerID))

	return a.runOrganizerLayout(containerID, func(items []geometry.Item) map[string]geometry.Point {
		return geometry.Hierarchical(items, edges, geometry.HierarchicalOptions{LayerGap: a.cfg.LayerGap, IntraLayerGap: a.cfg.IntraLayerGap})
	})
}

func childIDSet(nodes map[valueobjects.NodeID]*entities.Node, containerID valueobjects.NodeID) map[valueobjects.NodeID]bool {
	set := map[valueobjects.NodeID]bool{}
	for id, n := range nodes {
		if n.ParentID != nil && n.ParentID.Equals(containerID) {
			set[id] = true
		}
	}
	return set
}

func geometryEdgesAmong(edges map[valueobjects.EdgeID]*entities.Edge, within map[valueobjects.NodeID]bool) []geometry.Edge {
	var out []geometry.Edge
	for _, e := range edges {
		if within[e.Source] && within[e.Target] {
			out = append(out, geometry.Edge{Source: e.Source.String(), Target: e.Target.String()})
		}
	}
	return out
}

// FitToChildren resizes and repositions containerID to exactly enclose its
// current children, without otherwise rearranging them.
func (a *Actions) FitToChildren(containerID valueobjects.NodeID) error {
	return a.runOrganizerLayout(containerID, func(items []geometry.Item) map[string]geometry.Point {
		out := make(map[string]geometry.Point, len(items))
		for _, it := range items {
			out[it.ID] = geometry.Point{X: it.X, Y: it.Y}
		}
		return out
	})
}

// ---- Top-level actions ----

// sentinelRoot lets the façade reuse layoutglue's child-flattening API for
// the page's top-level nodes (parentId == nil) by wiring them, in a scratch
// copy of the node map, as children of a synthetic root id that is never
// written back.
func sentinelRoot(nodes map[valueobjects.NodeID]*entities.Node) (map[valueobjects.NodeID]*entities.Node, valueobjects.NodeID) {
	root := valueobjects.NewNodeID()
	scratch := make(map[valueobjects.NodeID]*entities.Node, len(nodes)+1)
	for id, n := range nodes {
		if n.ParentID == nil {
			cp := *n
			cp.ParentID = &root
			scratch[id] = &cp
		} else {
			scratch[id] = n
		}
	}
	return scratch, root
}

// groupsByParent partitions nodes into (parent, children) groups, with nil
// parent represented by the zero NodeID, for SpreadAll/CompactAll's
// "each organizer's children as an independent group" semantics.
func groupsByParent(nodes map[valueobjects.NodeID]*entities.Node) map[valueobjects.NodeID][]valueobjects.NodeID {
	groups := map[valueobjects.NodeID][]valueobjects.NodeID{}
	for id, n := range nodes {
		var key valueobjects.NodeID
		if n.ParentID != nil {
			key = *n.ParentID
		}
		groups[key] = append(groups[key], id)
	}
	return groups
}

// SpreadSelected de-overlaps the given nodes by absolute canvas position,
// regardless of whether they share a parent, and preserves each node's
// parent (only its relative Position changes).
func (a *Actions) SpreadSelected(selected []valueobjects.NodeID) error {
	if len(selected) < 2 {
		return nil
	}
	nodes, err := a.activeNodes()
	if err != nil {
		return err
	}

	items := make([]geometry.Item, 0, len(selected))
	for _, id := range selected {
		n, ok := nodes[id]
		if !ok {
			continue
		}
		abs := hierarchy.ResolveAbsolute(id, nodes)
		size := n.EffectiveSize()
		items = append(items, geometry.Item{ID: id.String(), X: abs.X, Y: abs.Y, Width: size.Width, Height: size.Height})
	}
	positions := geometry.DeOverlap(items)

	return a.adapter.Transaction(adapter.OriginLayout, func() error {
		patches := make([]adapter.NodePatch, 0, len(positions))
		for _, id := range selected {
			n, ok := nodes[id]
			if !ok {
				continue
			}
			newAbs := positions[id.String()]
			var parentAbs valueobjects.Point
			if n.ParentID != nil {
				parentAbs = hierarchy.ResolveAbsolute(*n.ParentID, nodes)
			}
			rel := hierarchy.ToRelative(vpt(newAbs), parentAbs)
			patches = append(patches, adapter.NodePatch{ID: id, Position: &rel})
		}
		return a.adapter.PatchNodes(adapter.OriginLayout, patches)
	})
}

// SpreadAll de-overlaps every organizer's children as an independent group,
// plus the page's top-level nodes as their own group.
func (a *Actions) SpreadAll() error {
	return a.runEveryGroup(geometry.DeOverlap)
}

// CompactAll removes whitespace between top-level items within each group
// while preserving spatial order along both axes.
func (a *Actions) CompactAll() error {
	return a.runEveryGroup(geometry.Compact)
}

func (a *Actions) runEveryGroup(primitive func([]geometry.Item) map[string]geometry.Point) error {
	nodes, err := a.activeNodes()
	if err != nil {
		return err
	}
	groups := groupsByParent(nodes)

	return a.adapter.Transaction(adapter.OriginLayout, func() error {
		var allPatches []adapter.NodePatch
		for parentID, childIDs := range groups {
			if len(childIDs) == 0 {
				continue
			}
			var containerID valueobjects.NodeID
			var isRoot bool
			var units layoutglue.LayoutUnits
			if parentID.IsZero() {
				isRoot = true
				scratch, root := sentinelRoot(nodes)
				units = layoutglue.GetChildLayoutUnits(scratch, root)
			} else {
				containerID = parentID
				units = layoutglue.GetChildLayoutUnits(nodes, containerID)
			}
			if len(units.Items) == 0 {
				continue
			}
			chosen := primitive(units.Items)
			childPositions := layoutglue.ConvertToConstructPositions(chosen, units.Offsets)
			for id, pos := range childPositions {
				p := pos
				allPatches = append(allPatches, adapter.NodePatch{ID: id, Position: &p})
			}
			if !isRoot {
				fitItems := make([]geometry.Item, 0, len(units.Items))
				for _, it := range units.Items {
					p := chosen[it.ID]
					fitItems = append(fitItems, geometry.Item{ID: it.ID, X: p.X, Y: p.Y, Width: it.Width, Height: it.Height})
				}
				fit := geometry.ComputeContainerFit(fitItems, geometry.ContainerFitOptions{
					Padding: a.cfg.ContainerPadding, HeaderHeight: a.cfg.HeaderHeight,
				})
				container := nodes[containerID]
				containerPos := valueobjects.Point{X: container.Position.X + fit.PositionDelta.X, Y: container.Position.Y + fit.PositionDelta.Y}
				style := entities.Style{Width: &fit.Size.Width, Height: &fit.Size.Height}
				allPatches = append(allPatches, adapter.NodePatch{ID: containerID, Position: &containerPos, Style: &style})
			}
		}
		return a.adapter.PatchNodes(adapter.OriginLayout, allPatches)
	})
}

// topLevelAncestor walks up the parentId chain to the root-most node, for
// the flow/hierarchical cross-scope edge rule (§4.5) and edge routing.
// maxDepth <= 0 falls back to the package MaxDepth constant.
func topLevelAncestor(id valueobjects.NodeID, nodes map[valueobjects.NodeID]*entities.Node, maxDepth int) valueobjects.NodeID {
	if maxDepth <= 0 {
		maxDepth = MaxDepth
	}
	cur := id
	for depth := 0; depth < maxDepth; depth++ {
		n, ok := nodes[cur]
		if !ok || n.ParentID == nil {
			return cur
		}
		cur = *n.ParentID
	}
	return cur
}

// crossScopeEdges applies §4.5's rule: same-container edges are dropped,
// cross-container edges are remapped to each endpoint's top-level ancestor
// id and deduplicated.
func crossScopeEdges(edges map[valueobjects.EdgeID]*entities.Edge, nodes map[valueobjects.NodeID]*entities.Node, maxDepth int) []geometry.Edge {
	seen := map[[2]string]bool{}
	var out []geometry.Edge
	for _, e := range edges {
		s := topLevelAncestor(e.Source, nodes, maxDepth)
		t := topLevelAncestor(e.Target, nodes, maxDepth)
		if s.Equals(t) {
			continue
		}
		key := [2]string{s.String(), t.String()}
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, geometry.Edge{Source: s.String(), Target: t.String()})
	}
	return out
}

// HierarchicalLayout lays out the page's top-level nodes (and their wagon
// subtrees) in Sugiyama layers by longest path over their cross-scope edges.
func (a *Actions) HierarchicalLayout() error {
	defer a.recordDuration("hierarchical", time.Now())
	return a.runTopLevel(func(items []geometry.Item, edges []geometry.Edge) map[string]geometry.Point {
		return geometry.Hierarchical(items, edges, geometry.HierarchicalOptions{LayerGap: a.cfg.LayerGap, IntraLayerGap: a.cfg.IntraLayerGap})
	})
}

func (a *Actions) runTopLevel(primitive func(items []geometry.Item, edges []geometry.Edge) map[string]geometry.Point) error {
	nodes, err := a.activeNodes()
	if err != nil {
		return err
	}
	page := a.adapter.Document().ActivePage()
	scratch, root := sentinelRoot(nodes)
	units := layoutglue.GetChildLayoutUnits(scratch, root)
	if len(units.Items) == 0 {
		return nil
	}
	edges := crossScopeEdges(page.Edges, nodes, a.cfg.MaxDepth)

	chosen := primitive(units.Items, edges)
	childPositions := layoutglue.ConvertToConstructPositions(chosen, units.Offsets)

	return a.adapter.Transaction(adapter.OriginLayout, func() error {
		patches := make([]adapter.NodePatch, 0, len(childPositions))
		for id, pos := range childPositions {
			p := pos
			patches = append(patches, adapter.NodePatch{ID: id, Position: &p})
		}
		return a.adapter.PatchNodes(adapter.OriginLayout, patches)
	})
}

// FlowDirection is the toolbar flow-layout direction.
type FlowDirection string

const (
	FlowLeftToRight FlowDirection = "LR"
	FlowRightToLeft FlowDirection = "RL"
	FlowTopToBottom FlowDirection = "TB"
	FlowBottomToTop FlowDirection = "BT"
)

// FlowLayout runs hierarchical layout and then transforms coordinates to
// match dir; TB is hierarchical's native orientation and needs no
// transform.
func (a *Actions) FlowLayout(dir FlowDirection) error {
	defer a.recordDuration("flow", time.Now())
	return a.runTopLevel(func(items []geometry.Item, edges []geometry.Edge) map[string]geometry.Point {
		base := geometry.Hierarchical(items, edges, geometry.HierarchicalOptions{LayerGap: a.cfg.LayerGap, IntraLayerGap: a.cfg.IntraLayerGap})
		return transformFlow(base, items, dir)
	})
}

func transformFlow(base map[string]geometry.Point, items []geometry.Item, dir FlowDirection) map[string]geometry.Point {
	if dir == FlowTopToBottom || dir == "" {
		return base
	}
	bound := geometry.Bounds(rectsAt(items, base))
	out := make(map[string]geometry.Point, len(base))
	for id, p := range base {
		switch dir {
		case FlowBottomToTop:
			out[id] = geometry.Point{X: p.X, Y: bound.Y + bound.Height - (p.Y - bound.Y)}
		case FlowLeftToRight:
			out[id] = geometry.Point{X: p.Y, Y: p.X}
		case FlowRightToLeft:
			transposed := geometry.Point{X: p.Y, Y: p.X}
			out[id] = geometry.Point{X: bound.Y + bound.Height - (transposed.X - bound.Y), Y: transposed.Y}
		default:
			out[id] = p
		}
	}
	return out
}

func rectsAt(items []geometry.Item, positions map[string]geometry.Point) []geometry.Item {
	out := make([]geometry.Item, len(items))
	for i, it := range items {
		p := positions[it.ID]
		out[i] = geometry.Item{ID: it.ID, X: p.X, Y: p.Y, Width: it.Width, Height: it.Height}
	}
	return out
}

// ---- Toolbar actions ----

// AlignAxis is the toolbar align action's axis.
type AlignAxis string

const (
	AlignLeft   AlignAxis = "left"
	AlignCenter AlignAxis = "center"
	AlignRight  AlignAxis = "right"
	AlignTop    AlignAxis = "top"
	AlignMiddle AlignAxis = "middle"
	AlignBottom AlignAxis = "bottom"
)

// AlignNodes aligns at least two nodes along axis, by absolute position.
func (a *Actions) AlignNodes(ids []valueobjects.NodeID, axis AlignAxis) error {
	if len(ids) < 2 {
		return apperrors.NewInvalidShape("alignNodes requires at least 2 nodes")
	}
	nodes, err := a.activeNodes()
	if err != nil {
		return err
	}

	type entry struct {
		id   valueobjects.NodeID
		abs  valueobjects.Point
		size valueobjects.Size
	}
	entries := make([]entry, 0, len(ids))
	for _, id := range ids {
		n, ok := nodes[id]
		if !ok {
			continue
		}
		entries = append(entries, entry{id: id, abs: hierarchy.ResolveAbsolute(id, nodes), size: n.EffectiveSize()})
	}
	if len(entries) < 2 {
		return apperrors.NewInvalidShape("alignNodes requires at least 2 resolvable nodes")
	}

	target := 0.0
	switch axis {
	case AlignLeft:
		target = math.MaxFloat64
		for _, e := range entries {
			target = math.Min(target, e.abs.X)
		}
	case AlignRight:
		for _, e := range entries {
			target = math.Max(target, e.abs.X+e.size.Width)
		}
	case AlignCenter:
		sum := 0.0
		for _, e := range entries {
			sum += e.abs.X + e.size.Width/2
		}
		target = sum / float64(len(entries))
	case AlignTop:
		target = math.MaxFloat64
		for _, e := range entries {
			target = math.Min(target, e.abs.Y)
		}
	case AlignBottom:
		for _, e := range entries {
			target = math.Max(target, e.abs.Y+e.size.Height)
		}
	case AlignMiddle:
		sum := 0.0
		for _, e := range entries {
			sum += e.abs.Y + e.size.Height/2
		}
		target = sum / float64(len(entries))
	default:
		return apperrors.NewInvalidShape("unknown align axis: " + string(axis))
	}

	return a.adapter.Transaction(adapter.OriginLayout, func() error {
		patches := make([]adapter.NodePatch, 0, len(entries))
		for _, e := range entries {
			n := nodes[e.id]
			newAbs := e.abs
			switch axis {
			case AlignLeft:
				newAbs.X = target
			case AlignRight:
				newAbs.X = target - e.size.Width
			case AlignCenter:
				newAbs.X = target - e.size.Width/2
			case AlignTop:
				newAbs.Y = target
			case AlignBottom:
				newAbs.Y = target - e.size.Height
			case AlignMiddle:
				newAbs.Y = target - e.size.Height/2
			}
			var parentAbs valueobjects.Point
			if n.ParentID != nil {
				parentAbs = hierarchy.ResolveAbsolute(*n.ParentID, nodes)
			}
			rel := hierarchy.ToRelative(newAbs, parentAbs)
			patches = append(patches, adapter.NodePatch{ID: e.id, Position: &rel})
		}
		return a.adapter.PatchNodes(adapter.OriginLayout, patches)
	})
}

// DistributeAxis is the toolbar distribute action's axis.
type DistributeAxis string

const (
	DistributeHorizontal DistributeAxis = "horizontal"
	DistributeVertical   DistributeAxis = "vertical"
)

// DistributeNodes evenly spaces at least three nodes' absolute positions
// along axis, keeping the two extreme nodes fixed.
func (a *Actions) DistributeNodes(ids []valueobjects.NodeID, axis DistributeAxis) error {
	if len(ids) < 3 {
		return apperrors.NewInvalidShape("distributeNodes requires at least 3 nodes")
	}
	nodes, err := a.activeNodes()
	if err != nil {
		return err
	}

	type entry struct {
		id  valueobjects.NodeID
		abs valueobjects.Point
	}
	entries := make([]entry, 0, len(ids))
	for _, id := range ids {
		if _, ok := nodes[id]; ok {
			entries = append(entries, entry{id: id, abs: hierarchy.ResolveAbsolute(id, nodes)})
		}
	}
	if len(entries) < 3 {
		return apperrors.NewInvalidShape("distributeNodes requires at least 3 resolvable nodes")
	}

	coord := func(p valueobjects.Point) float64 {
		if axis == DistributeHorizontal {
			return p.X
		}
		return p.Y
	}
	sort.Slice(entries, func(i, j int) bool { return coord(entries[i].abs) < coord(entries[j].abs) })

	first, last := coord(entries[0].abs), coord(entries[len(entries)-1].abs)
	step := (last - first) / float64(len(entries)-1)

	return a.adapter.Transaction(adapter.OriginLayout, func() error {
		patches := make([]adapter.NodePatch, 0, len(entries))
		for i, e := range entries {
			n := nodes[e.id]
			newAbs := e.abs
			v := first + step*float64(i)
			if axis == DistributeHorizontal {
				newAbs.X = v
			} else {
				newAbs.Y = v
			}
			var parentAbs valueobjects.Point
			if n.ParentID != nil {
				parentAbs = hierarchy.ResolveAbsolute(*n.ParentID, nodes)
			}
			rel := hierarchy.ToRelative(newAbs, parentAbs)
			patches = append(patches, adapter.NodePatch{ID: e.id, Position: &rel})
		}
		return a.adapter.PatchNodes(adapter.OriginLayout, patches)
	})
}

// ---- Membership actions ----

// AttachNodeToOrganizer reparents nodeID under organizerID, preserving
// nodeID's absolute canvas position, then fits organizerID to its new
// children.
func (a *Actions) AttachNodeToOrganizer(nodeID, organizerID valueobjects.NodeID) error {
	nodes, err := a.activeNodes()
	if err != nil {
		return err
	}
	node, ok := nodes[nodeID]
	if !ok {
		return apperrors.NewUnknownID("node", nodeID.String())
	}
	organizer, ok := nodes[organizerID]
	if !ok {
		return apperrors.NewUnknownID("node", organizerID.String())
	}
	if !hierarchy.CanNestInOrganizer(node, organizer) {
		return apperrors.NewInvariantViolation("node cannot nest inside target organizer")
	}

	absolute := hierarchy.ResolveAbsolute(nodeID, nodes)
	organizerAbsolute := hierarchy.ResolveAbsolute(organizerID, nodes)
	newRelative := hierarchy.ToRelative(absolute, organizerAbsolute)

	err = a.adapter.Transaction(adapter.OriginLayout, func() error {
		page := a.adapter.Document().ActivePage()
		if err := page.SetParent(nodeID, &organizerID); err != nil {
			return err
		}
		node.Position = newRelative
		a.adapter.MarkChanged(adapter.KeyNodes)
		return nil
	})
	if err != nil {
		return err
	}
	return a.FitToChildren(organizerID)
}

// DetachNodeFromOrganizer clears nodeID's parentId, preserving its absolute
// canvas position, then fits the former parent to its remaining children.
func (a *Actions) DetachNodeFromOrganizer(nodeID valueobjects.NodeID) error {
	nodes, err := a.activeNodes()
	if err != nil {
		return err
	}
	node, ok := nodes[nodeID]
	if !ok {
		return apperrors.NewUnknownID("node", nodeID.String())
	}
	if node.ParentID == nil {
		return nil
	}
	oldParent := *node.ParentID
	absolute := hierarchy.ResolveAbsolute(nodeID, nodes)

	err = a.adapter.Transaction(adapter.OriginLayout, func() error {
		page := a.adapter.Document().ActivePage()
		if err := page.SetParent(nodeID, nil); err != nil {
			return err
		}
		node.Position = absolute
		a.adapter.MarkChanged(adapter.KeyNodes)
		return nil
	})
	if err != nil {
		return err
	}
	if _, stillExists := nodes[oldParent]; stillExists {
		return a.FitToChildren(oldParent)
	}
	return nil
}

// ---- Edge routes ----

// RouteEdges computes orthogonal waypoints for every edge whose endpoints
// resolve to distinct top-level rectangles; edges that collapse to a
// self-loop at top-level scope are skipped.
func (a *Actions) RouteEdges() error {
	defer a.recordDuration("route-edges", time.Now())
	nodes, err := a.activeNodes()
	if err != nil {
		return err
	}
	page := a.adapter.Document().ActivePage()

	scratch, root := sentinelRoot(nodes)
	units := layoutglue.GetChildLayoutUnits(scratch, root)
	obstacles := make([]geometry.Item, 0, len(units.Items))
	for _, it := range units.Items {
		abs := hierarchy.ResolveAbsolute(mustParse(it.ID), nodes)
		obstacles = append(obstacles, geometry.Item{ID: it.ID, X: abs.X, Y: abs.Y, Width: it.Width, Height: it.Height})
	}

	var routeEdges []geometry.RouteEdge
	for _, e := range page.Edges {
		s := topLevelAncestor(e.Source, nodes, a.cfg.MaxDepth)
		t := topLevelAncestor(e.Target, nodes, a.cfg.MaxDepth)
		if s.Equals(t) {
			continue
		}
		routeEdges = append(routeEdges, geometry.RouteEdge{ID: e.ID.String(), Source: s.String(), Target: t.String()})
	}
	if len(routeEdges) == 0 {
		return nil
	}

	routes := geometry.Route(obstacles, routeEdges)

	return a.adapter.Transaction(adapter.OriginLayout, func() error {
		patches := make([]adapter.EdgeDataPatch, 0, len(routes))
		for _, re := range routeEdges {
			pts, ok := routes[re.ID]
			if !ok {
				continue
			}
			waypoints := make([]valueobjects.Point, len(pts))
			for i, p := range pts {
				waypoints[i] = vpt(p)
			}
			eid, _ := valueobjects.EdgeIDFromString(re.ID)
			patches = append(patches, adapter.EdgeDataPatch{ID: eid, Waypoints: &waypoints})
		}
		return a.adapter.PatchEdgeData(adapter.OriginLayout, patches)
	})
}

func mustParse(id string) valueobjects.NodeID {
	nid, _ := valueobjects.NodeIDFromString(id)
	return nid
}

// ClearRoutes wipes waypoints from every edge on the active page.
func (a *Actions) ClearRoutes() error {
	page := a.adapter.Document().ActivePage()
	if page == nil {
		return apperrors.NewInvariantViolation("no active page")
	}
	patches := make([]adapter.EdgeDataPatch, 0, len(page.Edges))
	for id := range page.Edges {
		patches = append(patches, adapter.EdgeDataPatch{ID: id, ClearRoute: true})
	}
	return a.adapter.PatchEdgeData(adapter.OriginLayout, patches)
}

// ---- Pin layout ----

// ApplyPinLayout resolves the active page's pin constraints, writes the
// resolved positions back, and de-overlaps the remaining free nodes against
// them. Warnings from conflicting constraints are returned, not thrown —
// the resolver tolerates conflicts per §4.3.
func (a *Actions) ApplyPinLayout() ([]geometry.PinWarning, error) {
	defer a.recordDuration("apply-pins", time.Now())
	nodes, err := a.activeNodes()
	if err != nil {
		return nil, err
	}
	page := a.adapter.Document().ActivePage()

	involved := map[valueobjects.NodeID]bool{}
	constraints := make([]geometry.PinConstraint, 0, len(page.PinConstraints))
	for _, c := range page.PinConstraints {
		constraints = append(constraints, geometry.PinConstraint{
			ID: c.ID.String(), SourceID: c.SourceOrganizerID.String(), TargetID: c.TargetOrganizerID.String(),
			Direction: geometry.PinDirection(c.Direction),
		})
		involved[c.SourceOrganizerID] = true
		involved[c.TargetOrganizerID] = true
	}

	items := make([]geometry.Item, 0, len(nodes))
	for id, n := range nodes {
		abs := hierarchy.ResolveAbsolute(id, nodes)
		size := n.EffectiveSize()
		items = append(items, geometry.Item{ID: id.String(), X: abs.X, Y: abs.Y, Width: size.Width, Height: size.Height})
	}

	pinned, warnings := geometry.ResolvePinsWithGap(items, constraints, a.cfg.PinGap)

	freeItems := make([]geometry.Item, 0, len(items))
	for _, it := range items {
		p := pinned[it.ID]
		freeItems = append(freeItems, geometry.Item{ID: it.ID, X: p.X, Y: p.Y, Width: it.Width, Height: it.Height})
	}
	settled := geometry.DeOverlap(freeItems)

	final := map[string]geometry.Point{}
	for id, p := range settled {
		if involved[mustParse(id)] {
			final[id] = pinned[id]
		} else {
			final[id] = p
		}
	}

	err = a.adapter.Transaction(adapter.OriginLayout, func() error {
		patches := make([]adapter.NodePatch, 0, len(final))
		for id, n := range nodes {
			abs := final[id.String()]
			var parentAbs valueobjects.Point
			if n.ParentID != nil {
				parentAbs = hierarchy.ResolveAbsolute(*n.ParentID, nodes)
			}
			rel := hierarchy.ToRelative(vpt(abs), parentAbs)
			patches = append(patches, adapter.NodePatch{ID: id, Position: &rel})
		}
		return a.adapter.PatchNodes(adapter.OriginLayout, patches)
	})
	return warnings, err
}
