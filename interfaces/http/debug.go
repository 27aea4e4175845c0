package http

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/carta-systems/carta-core/application/adapter"
)

// pageSummary is the read-only shape /debug/pages reports for one page.
type pageSummary struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	NodeCt   int    `json:"nodeCount"`
	EdgeCt   int    `json:"edgeCount"`
	IsActive bool   `json:"isActive"`
}

// NewDebugRouter builds a small read-only diagnostics router, generalizing
// the teacher's interfaces/http/rest/v1.NewRouter (a gorilla/mux router
// mounted alongside the chi-based v2 API during its migration) into a
// standalone operator surface: Router.Setup mounts it at /debug, outside the
// /api/v1 group and its authentication, so a developer can inspect
// document/page state without going through the versioned routes or a
// client app.
func NewDebugRouter(a *adapter.Adapter) *mux.Router {
	router := mux.NewRouter()
	router.HandleFunc("/document", debugDocumentHandler(a)).Methods(http.MethodGet)
	router.HandleFunc("/pages", debugPagesHandler(a)).Methods(http.MethodGet)
	return router
}

func debugDocumentHandler(a *adapter.Adapter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		doc := a.Document()
		writeJSON(w, map[string]interface{}{
			"title":            doc.Title,
			"description":      doc.Description,
			"version":          doc.Version,
			"migrationVersion": doc.MigrationVersion,
			"pageCount":        len(doc.Pages),
		})
	}
}

func debugPagesHandler(a *adapter.Adapter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		active := a.GetActivePage()
		pages := a.GetPages()
		summaries := make([]pageSummary, 0, len(pages))
		for _, p := range pages {
			summaries = append(summaries, pageSummary{
				ID:       p.ID.String(),
				Name:     p.Name,
				NodeCt:   len(p.Nodes),
				EdgeCt:   len(p.Edges),
				IsActive: active != nil && active.ID == p.ID,
			})
		}
		writeJSON(w, summaries)
	}
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
