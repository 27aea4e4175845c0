package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/carta-systems/carta-core/application/adapter"
	"github.com/carta-systems/carta-core/domain/core/entities"
	"github.com/carta-systems/carta-core/domain/core/valueobjects"
)

// EdgeHandler exposes CRUD over the active page's edges.
type EdgeHandler struct {
	adapter *adapter.Adapter
	logger  *zap.Logger
}

func NewEdgeHandler(a *adapter.Adapter, logger *zap.Logger) *EdgeHandler {
	return &EdgeHandler{adapter: a, logger: logger}
}

// ListEdges handles GET /edges.
func (h *EdgeHandler) ListEdges(w http.ResponseWriter, r *http.Request) {
	edges, err := h.adapter.GetEdges()
	if err != nil {
		respondErr(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, edges)
}

// AddEdge handles POST /edges. The request body is a full entities.Edge.
func (h *EdgeHandler) AddEdge(w http.ResponseWriter, r *http.Request) {
	var edge entities.Edge
	if err := json.NewDecoder(r.Body).Decode(&edge); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if edge.ID.IsZero() {
		edge.ID = valueobjects.NewEdgeID()
	}
	if err := h.adapter.AddEdge(originFromRequest(r), &edge); err != nil {
		respondErr(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusCreated, &edge)
}

// RemoveEdge handles DELETE /edges/{edgeID}.
func (h *EdgeHandler) RemoveEdge(w http.ResponseWriter, r *http.Request) {
	id, err := valueobjects.EdgeIDFromString(chi.URLParam(r, "edgeID"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid edge id")
		return
	}
	if err := h.adapter.RemoveEdge(originFromRequest(r), id); err != nil {
		respondErr(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type patchEdgeDataRequest struct {
	Label       *string `json:"label,omitempty"`
	BundleCount *int    `json:"bundleCount,omitempty"`
	ClearRoute  bool    `json:"clearRoute,omitempty"`
}

// PatchEdgeData handles PATCH /edges/{edgeID}/data.
func (h *EdgeHandler) PatchEdgeData(w http.ResponseWriter, r *http.Request) {
	id, err := valueobjects.EdgeIDFromString(chi.URLParam(r, "edgeID"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid edge id")
		return
	}
	var req patchEdgeDataRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	patch := adapter.EdgeDataPatch{ID: id, Label: req.Label, BundleCount: req.BundleCount, ClearRoute: req.ClearRoute}
	if err := h.adapter.PatchEdgeData(originFromRequest(r), []adapter.EdgeDataPatch{patch}); err != nil {
		respondErr(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
