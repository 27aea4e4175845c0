package handlers

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/carta-systems/carta-core/application/layoutactions"
	"github.com/carta-systems/carta-core/domain/core/valueobjects"
	"github.com/carta-systems/carta-core/domain/geometry"
)

// LayoutHandler exposes the §4.5 layout actions façade: whole-graph and
// organizer-scoped layout runs, alignment/distribution, edge routing and pin
// resolution. Every action runs under the "layout" transaction origin
// (application/adapter.OriginLayout), so none of it pollutes undo history.
type LayoutHandler struct {
	actions *layoutactions.Actions
	logger  *zap.Logger
}

func NewLayoutHandler(a *layoutactions.Actions, logger *zap.Logger) *LayoutHandler {
	return &LayoutHandler{actions: a, logger: logger}
}

type layoutRequest struct {
	ContainerID string   `json:"containerId,omitempty"`
	NodeIDs     []string `json:"nodeIds,omitempty"`
	Columns     int      `json:"columns,omitempty"`
	Direction   string   `json:"direction,omitempty"`
	Axis        string   `json:"axis,omitempty"`
}

func parseNodeIDs(raw []string) ([]valueobjects.NodeID, error) {
	out := make([]valueobjects.NodeID, 0, len(raw))
	for _, s := range raw {
		id, err := valueobjects.NodeIDFromString(s)
		if err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, nil
}

// HierarchicalLayout handles POST /layout/hierarchical.
func (h *LayoutHandler) HierarchicalLayout(w http.ResponseWriter, r *http.Request) {
	h.run(w, h.actions.HierarchicalLayout())
}

// FlowLayout handles POST /layout/flow.
func (h *LayoutHandler) FlowLayout(w http.ResponseWriter, r *http.Request) {
	var req layoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	dir := layoutactions.FlowDirection(req.Direction)
	if dir == "" {
		dir = layoutactions.FlowTopToBottom
	}
	h.run(w, h.actions.FlowLayout(dir))
}

// SpreadAll handles POST /layout/spread-all.
func (h *LayoutHandler) SpreadAll(w http.ResponseWriter, r *http.Request) {
	h.run(w, h.actions.SpreadAll())
}

// CompactAll handles POST /layout/compact-all.
func (h *LayoutHandler) CompactAll(w http.ResponseWriter, r *http.Request) {
	h.run(w, h.actions.CompactAll())
}

// SpreadChildren handles POST /layout/spread-children.
func (h *LayoutHandler) SpreadChildren(w http.ResponseWriter, r *http.Request) {
	req, containerID, ok := h.decodeContainerRequest(w, r)
	if !ok {
		return
	}
	_ = req
	h.run(w, h.actions.SpreadChildren(containerID))
}

// GridLayoutChildren handles POST /layout/grid-children.
func (h *LayoutHandler) GridLayoutChildren(w http.ResponseWriter, r *http.Request) {
	req, containerID, ok := h.decodeContainerRequest(w, r)
	if !ok {
		return
	}
	cols := req.Columns
	if cols <= 0 {
		cols = 1
	}
	h.run(w, h.actions.GridLayoutChildren(containerID, cols))
}

// FlowLayoutChildren handles POST /layout/flow-children.
func (h *LayoutHandler) FlowLayoutChildren(w http.ResponseWriter, r *http.Request) {
	_, containerID, ok := h.decodeContainerRequest(w, r)
	if !ok {
		return
	}
	h.run(w, h.actions.FlowLayoutChildren(containerID))
}

// FitToChildren handles POST /layout/fit-to-children.
func (h *LayoutHandler) FitToChildren(w http.ResponseWriter, r *http.Request) {
	_, containerID, ok := h.decodeContainerRequest(w, r)
	if !ok {
		return
	}
	h.run(w, h.actions.FitToChildren(containerID))
}

func (h *LayoutHandler) decodeContainerRequest(w http.ResponseWriter, r *http.Request) (layoutRequest, valueobjects.NodeID, bool) {
	var req layoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return req, valueobjects.NodeID{}, false
	}
	containerID, err := valueobjects.NodeIDFromString(req.ContainerID)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid containerId")
		return req, valueobjects.NodeID{}, false
	}
	return req, containerID, true
}

// AlignNodes handles POST /layout/align.
func (h *LayoutHandler) AlignNodes(w http.ResponseWriter, r *http.Request) {
	var req layoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	ids, err := parseNodeIDs(req.NodeIDs)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid nodeIds")
		return
	}
	h.run(w, h.actions.AlignNodes(ids, layoutactions.AlignAxis(req.Axis)))
}

// DistributeNodes handles POST /layout/distribute.
func (h *LayoutHandler) DistributeNodes(w http.ResponseWriter, r *http.Request) {
	var req layoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	ids, err := parseNodeIDs(req.NodeIDs)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid nodeIds")
		return
	}
	h.run(w, h.actions.DistributeNodes(ids, layoutactions.DistributeAxis(req.Axis)))
}

// RouteEdges handles POST /layout/route-edges.
func (h *LayoutHandler) RouteEdges(w http.ResponseWriter, r *http.Request) {
	h.run(w, h.actions.RouteEdges())
}

// ClearRoutes handles POST /layout/clear-routes.
func (h *LayoutHandler) ClearRoutes(w http.ResponseWriter, r *http.Request) {
	h.run(w, h.actions.ClearRoutes())
}

// ApplyPinLayout handles POST /layout/apply-pins, returning any resolver
// warnings alongside a 200 (warnings never fail the request; §4.3).
func (h *LayoutHandler) ApplyPinLayout(w http.ResponseWriter, r *http.Request) {
	warnings, err := h.actions.ApplyPinLayout()
	if err != nil {
		respondErr(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string][]geometry.PinWarning{"warnings": warnings})
}

func (h *LayoutHandler) run(w http.ResponseWriter, err error) {
	if err != nil {
		respondErr(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
