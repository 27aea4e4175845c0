// Package handlers implements the REST surface over application/adapter,
// application/layoutactions, application/serialization and
// application/migrations — one handler type per §4 concern, generalized
// from the teacher's interfaces/http/rest/handlers package (which exposed
// the same shape of CRUD + action endpoints over its CQRS buses) to this
// module's direct document-adapter calls.
package handlers

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	apperrors "github.com/carta-systems/carta-core/pkg/errors"
)

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]interface{}{
		"error":   true,
		"message": message,
		"code":    status,
	})
}

// respondErr maps err to an HTTP status using its *apperrors.AppError
// classification when present, falling back to 500 for anything else.
func respondErr(w http.ResponseWriter, logger *zap.Logger, err error) {
	if appErr, ok := err.(*apperrors.AppError); ok {
		status := appErr.HTTPStatus
		if status == 0 {
			status = http.StatusInternalServerError
		}
		respondError(w, status, appErr.Error())
		return
	}
	logger.Error("unclassified handler error", zap.Error(err))
	respondError(w, http.StatusInternalServerError, "internal server error")
}
