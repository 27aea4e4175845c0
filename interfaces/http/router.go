// Package http wires chi + go-chi/cors + the document adapter's handlers
// into a single mux, generalizing the teacher's interfaces/http/rest.Router
// (which wired its command/query buses the same way) to this module's
// direct-adapter-call handlers.
package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/carta-systems/carta-core/application/adapter"
	"github.com/carta-systems/carta-core/application/layoutactions"
	"github.com/carta-systems/carta-core/infrastructure/config"
	"github.com/carta-systems/carta-core/interfaces/http/handlers"
	"github.com/carta-systems/carta-core/interfaces/http/middleware"
	"github.com/carta-systems/carta-core/pkg/auth"
)

// Router builds the document core's HTTP surface over a single document
// adapter. A deployment that serves many documents (the HTTP front door in
// front of DynamoDB-backed persistence) constructs one Router per opened
// document session; this module's adapter is itself single-document (§2).
type Router struct {
	adapter       *adapter.Adapter
	actions       *layoutactions.Actions
	authenticator *auth.JWTAuthenticator
	userLimiter   middleware.RateLimiter
	aimcpLimiter  middleware.RateLimiter
	cfg           *config.Config
	logger        *zap.Logger
}

// NewRouter creates a Router over a, authenticating with authenticator (nil
// means every route below /api/v1 runs unauthenticated — cmd/cartadoc's
// local-only server, never cmd/api or cmd/lambda) and rate-limiting with
// userLimiter/aimcpLimiter. A Lambda deployment passes
// pkg/auth.DistributedRateLimiter instances (state shared across concurrent
// invocations via DynamoDB); a single long-running process can pass the
// in-process pkg/auth.UserRateLimiter/AIMCPRateLimiter instead, or nil for
// either to fall back to one of those in-process limiters.
func NewRouter(a *adapter.Adapter, acts *layoutactions.Actions, authenticator *auth.JWTAuthenticator, userLimiter, aimcpLimiter middleware.RateLimiter, cfg *config.Config, logger *zap.Logger) *Router {
	if cfg == nil {
		cfg = config.Default()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if userLimiter == nil {
		userLimiter = auth.NewUserRateLimiter(200)
	}
	if aimcpLimiter == nil {
		aimcpLimiter = auth.NewAIMCPRateLimiter(cfg.AIMCPRateLimitPerMinute)
	}
	return &Router{
		adapter:       a,
		actions:       acts,
		authenticator: authenticator,
		userLimiter:   userLimiter,
		aimcpLimiter:  aimcpLimiter,
		cfg:           cfg,
		logger:        logger,
	}
}

// Setup builds the configured mux.
func (rt *Router) Setup() http.Handler {
	router := chi.NewRouter()

	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.Recoverer)
	router.Use(middleware.Logger(rt.logger))
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   rt.cfg.CORSAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	router.Get("/health", rt.healthCheck)
	router.Mount("/debug", NewDebugRouter(rt.adapter))

	router.Route("/api/v1", func(r chi.Router) {
		if rt.authenticator != nil {
			r.Use(middleware.Authenticate(rt.authenticator, rt.userLimiter, rt.aimcpLimiter, rt.logger))
		}

		docHandler := handlers.NewDocumentHandler(rt.adapter, rt.logger)
		r.Get("/document", docHandler.GetSnapshot)
		r.Put("/document/title", docHandler.SetTitle)
		r.Put("/document/description", docHandler.SetDescription)

		pageHandler := handlers.NewPageHandler(rt.adapter, rt.logger)
		r.Route("/pages", func(r chi.Router) {
			r.Get("/", pageHandler.ListPages)
			r.Post("/", pageHandler.CreatePage)
			r.Delete("/{pageID}", pageHandler.DeletePage)
			r.Put("/active", pageHandler.SetActivePage)
		})

		nodeHandler := handlers.NewNodeHandler(rt.adapter, rt.logger)
		r.Route("/nodes", func(r chi.Router) {
			r.Get("/", nodeHandler.ListNodes)
			r.Post("/", nodeHandler.AddNode)
			r.Put("/{nodeID}", nodeHandler.UpdateNode)
			r.Delete("/{nodeID}", nodeHandler.RemoveNode)
		})

		edgeHandler := handlers.NewEdgeHandler(rt.adapter, rt.logger)
		r.Route("/edges", func(r chi.Router) {
			r.Get("/", edgeHandler.ListEdges)
			r.Post("/", edgeHandler.AddEdge)
			r.Delete("/{edgeID}", edgeHandler.RemoveEdge)
			r.Patch("/{edgeID}/data", edgeHandler.PatchEdgeData)
		})

		if rt.actions != nil {
			layoutHandler := handlers.NewLayoutHandler(rt.actions, rt.logger)
			r.Route("/layout", func(r chi.Router) {
				r.Post("/hierarchical", layoutHandler.HierarchicalLayout)
				r.Post("/flow", layoutHandler.FlowLayout)
				r.Post("/spread-all", layoutHandler.SpreadAll)
				r.Post("/compact-all", layoutHandler.CompactAll)
				r.Post("/spread-children", layoutHandler.SpreadChildren)
				r.Post("/grid-children", layoutHandler.GridLayoutChildren)
				r.Post("/flow-children", layoutHandler.FlowLayoutChildren)
				r.Post("/fit-to-children", layoutHandler.FitToChildren)
				r.Post("/align", layoutHandler.AlignNodes)
				r.Post("/distribute", layoutHandler.DistributeNodes)
				r.Post("/route-edges", layoutHandler.RouteEdges)
				r.Post("/clear-routes", layoutHandler.ClearRoutes)
				r.Post("/apply-pins", layoutHandler.ApplyPinLayout)
			})
		}

		schemaHandler := handlers.NewSchemaHandler(rt.adapter, rt.logger)
		r.Route("/schemas", func(r chi.Router) {
			r.Get("/export", schemaHandler.ExportLibrary)
			r.Post("/import", schemaHandler.ImportLibrary)
		})

		migrationHandler := handlers.NewMigrationHandler(rt.adapter, rt.logger)
		r.Post("/migrations/run", migrationHandler.Run)
	})

	return router
}

func (rt *Router) healthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"healthy","time":"` + time.Now().UTC().Format(time.RFC3339) + `"}`))
}
