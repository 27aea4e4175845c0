package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/carta-systems/carta-core/application/adapter"
	"github.com/carta-systems/carta-core/domain/core/valueobjects"
	"github.com/carta-systems/carta-core/pkg/utils"
)

// PageHandler exposes page creation, deletion and active-page selection.
type PageHandler struct {
	adapter *adapter.Adapter
	logger  *zap.Logger
}

func NewPageHandler(a *adapter.Adapter, logger *zap.Logger) *PageHandler {
	return &PageHandler{adapter: a, logger: logger}
}

// ListPages handles GET /pages.
func (h *PageHandler) ListPages(w http.ResponseWriter, r *http.Request) {
	pages := h.adapter.GetPages()
	out := make([]map[string]string, 0, len(pages))
	for _, p := range pages {
		out = append(out, map[string]string{"id": p.ID.String(), "name": p.Name})
	}
	respondJSON(w, http.StatusOK, out)
}

type createPageRequest struct {
	Name string `json:"name" validate:"required,max=200"`
}

// CreatePage handles POST /pages.
func (h *PageHandler) CreatePage(w http.ResponseWriter, r *http.Request) {
	var req createPageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	page, err := h.adapter.CreatePage(req.Name)
	if err != nil {
		respondErr(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]string{"id": page.ID.String(), "name": page.Name})
}

// DeletePage handles DELETE /pages/{pageID}.
func (h *PageHandler) DeletePage(w http.ResponseWriter, r *http.Request) {
	id, err := valueobjects.PageIDFromString(chi.URLParam(r, "pageID"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid page id")
		return
	}
	ok, err := h.adapter.DeletePage(id)
	if err != nil {
		respondErr(w, h.logger, err)
		return
	}
	if !ok {
		respondError(w, http.StatusNotFound, "page not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type setActivePageRequest struct {
	PageID string `json:"pageId" validate:"required"`
}

// SetActivePage handles PUT /pages/active.
func (h *PageHandler) SetActivePage(w http.ResponseWriter, r *http.Request) {
	var req setActivePageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	id, err := valueobjects.PageIDFromString(req.PageID)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid page id")
		return
	}
	if err := h.adapter.SetActivePage(id); err != nil {
		respondErr(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
