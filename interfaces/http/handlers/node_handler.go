package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/carta-systems/carta-core/application/adapter"
	"github.com/carta-systems/carta-core/domain/core/entities"
	"github.com/carta-systems/carta-core/domain/core/valueobjects"
	"github.com/carta-systems/carta-core/pkg/auth"
)

// NodeHandler exposes CRUD over the active page's nodes. Every mutating
// method resolves the caller's transaction origin from the authenticated
// claims (pkg/auth.Claims.Kind), so an ai-mcp collaborator's writes are
// tagged OriginAIMCP rather than OriginUser even though both hit the same
// route.
type NodeHandler struct {
	adapter *adapter.Adapter
	logger  *zap.Logger
}

func NewNodeHandler(a *adapter.Adapter, logger *zap.Logger) *NodeHandler {
	return &NodeHandler{adapter: a, logger: logger}
}

func originFromRequest(r *http.Request) adapter.Origin {
	if claims, ok := auth.ClaimsFromContext(r.Context()); ok && claims.Kind == auth.CallerAIMCP {
		return adapter.OriginAIMCP
	}
	return adapter.OriginUser
}

// ListNodes handles GET /nodes.
func (h *NodeHandler) ListNodes(w http.ResponseWriter, r *http.Request) {
	nodes, err := h.adapter.GetNodes()
	if err != nil {
		respondErr(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, nodes)
}

// AddNode handles POST /nodes. The request body is a full entities.Node.
func (h *NodeHandler) AddNode(w http.ResponseWriter, r *http.Request) {
	var node entities.Node
	if err := json.NewDecoder(r.Body).Decode(&node); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if node.ID.IsZero() {
		node.ID = h.adapter.GenerateNodeID()
	}
	if err := h.adapter.AddNode(originFromRequest(r), &node); err != nil {
		respondErr(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusCreated, &node)
}

// UpdateNode handles PUT /nodes/{nodeID}: the body replaces the node's
// position and style, the two fields a layout-driving client mutates.
func (h *NodeHandler) UpdateNode(w http.ResponseWriter, r *http.Request) {
	id, err := valueobjects.NodeIDFromString(chi.URLParam(r, "nodeID"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid node id")
		return
	}
	var patch struct {
		Position *valueobjects.Point `json:"position,omitempty"`
		Style    *entities.Style     `json:"style,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	origin := originFromRequest(r)
	patches := []adapter.NodePatch{{ID: id, Position: patch.Position, Style: patch.Style}}
	if err := h.adapter.PatchNodes(origin, patches); err != nil {
		respondErr(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// RemoveNode handles DELETE /nodes/{nodeID}.
func (h *NodeHandler) RemoveNode(w http.ResponseWriter, r *http.Request) {
	id, err := valueobjects.NodeIDFromString(chi.URLParam(r, "nodeID"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid node id")
		return
	}
	if err := h.adapter.RemoveNode(originFromRequest(r), id); err != nil {
		respondErr(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
