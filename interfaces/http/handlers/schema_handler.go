package handlers

import (
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/carta-systems/carta-core/application/adapter"
	"github.com/carta-systems/carta-core/application/serialization"
)

// SchemaHandler exposes the §6 .carta-schemas export/import surface.
type SchemaHandler struct {
	adapter *adapter.Adapter
	logger  *zap.Logger
}

func NewSchemaHandler(a *adapter.Adapter, logger *zap.Logger) *SchemaHandler {
	return &SchemaHandler{adapter: a, logger: logger}
}

// ExportLibrary handles GET /schemas/export.
func (h *SchemaHandler) ExportLibrary(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	file := serialization.ExportSchemaLibrary(h.adapter, q.Get("name"), q.Get("description"), q.Get("version"), q.Get("changelog"), time.Now())
	w.Header().Set("Content-Disposition", `attachment; filename="library.carta-schemas"`)
	respondJSON(w, http.StatusOK, file)
}

// ImportLibrary handles POST /schemas/import. The request body is a
// .carta-schemas file; a malformed or non-conformant file leaves the
// document untouched (§6's "rejected before any state is touched" rule).
func (h *SchemaHandler) ImportLibrary(w http.ResponseWriter, r *http.Request) {
	raw, err := io.ReadAll(r.Body)
	if err != nil {
		respondError(w, http.StatusBadRequest, "failed to read request body")
		return
	}
	if err := serialization.ImportSchemaLibrary(h.adapter, raw); err != nil {
		respondErr(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
