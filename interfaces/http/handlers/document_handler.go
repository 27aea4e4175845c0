package handlers

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/carta-systems/carta-core/application/adapter"
	"github.com/carta-systems/carta-core/application/serialization"
	"github.com/carta-systems/carta-core/pkg/utils"
)

// DocumentHandler exposes the document-level surface: the canonical
// snapshot (§6) and the title/description fields.
type DocumentHandler struct {
	adapter *adapter.Adapter
	logger  *zap.Logger
}

func NewDocumentHandler(a *adapter.Adapter, logger *zap.Logger) *DocumentHandler {
	return &DocumentHandler{adapter: a, logger: logger}
}

// GetSnapshot handles GET /document, returning the §6 canonical snapshot.
func (h *DocumentHandler) GetSnapshot(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, serialization.Snapshot(h.adapter))
}

type setTitleRequest struct {
	Title string `json:"title" validate:"required,max=200"`
}

// SetTitle handles PUT /document/title.
func (h *DocumentHandler) SetTitle(w http.ResponseWriter, r *http.Request) {
	var req setTitleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.adapter.SetTitle(req.Title); err != nil {
		respondErr(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"title": req.Title})
}

type setDescriptionRequest struct {
	Description string `json:"description" validate:"max=2000"`
}

// SetDescription handles PUT /document/description.
func (h *DocumentHandler) SetDescription(w http.ResponseWriter, r *http.Request) {
	var req setDescriptionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.adapter.SetDescription(req.Description); err != nil {
		respondErr(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"description": req.Description})
}
