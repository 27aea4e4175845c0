package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/carta-systems/carta-core/application/adapter"
	"github.com/carta-systems/carta-core/application/migrations"
)

// MigrationHandler exposes the forward-migration-on-load step (§8) as an
// explicit endpoint for a client that loaded a document snapshot itself
// (e.g. from local storage while offline) and needs the core to bring it
// up to the current schema version before resuming editing.
type MigrationHandler struct {
	adapter *adapter.Adapter
	logger  *zap.Logger
}

func NewMigrationHandler(a *adapter.Adapter, logger *zap.Logger) *MigrationHandler {
	return &MigrationHandler{adapter: a, logger: logger}
}

// Run handles POST /migrations/run.
func (h *MigrationHandler) Run(w http.ResponseWriter, r *http.Request) {
	if err := migrations.Run(h.adapter); err != nil {
		respondErr(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]int{"migrationVersion": h.adapter.Document().MigrationVersion})
}
