package rest

import (
	"net/http"

	"wikigraph-backend/infrastructure/di"
	"wikigraph-backend/interfaces/http/rest/handlers"
	"wikigraph-backend/interfaces/http/rest/middleware"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// Router creates and configures the HTTP router
type Router struct {
	container *di.Container
}

// NewRouter creates a new router instance
func NewRouter(container *di.Container) *Router {
	return &Router{container: container}
}

// Setup configures all routes and middleware
func (rt *Router) Setup() http.Handler {
	router := chi.NewRouter()

	// Global middleware
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.Recoverer)
	router.Use(middleware.Logger(rt.container.Logger))

	if rt.container.Config.EnableCORS {
		router.Use(cors.Handler(cors.Options{
			AllowedOrigins:   []string{"http://localhost:3000", "https://*.wikigraph.app"},
			AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
			ExposedHeaders:   []string{"X-Request-ID"},
			AllowCredentials: false,
			MaxAge:           300,
		}))
	}

	// Health check
	router.Get("/health", rt.healthCheck)
	router.Get("/ready", rt.readinessCheck)

	if rt.container.Config.EnableMetrics {
		router.Handle("/metrics", rt.container.Metrics.Handler())
	}

	// API v1 routes
	router.Route("/api/v1", func(r chi.Router) {
		graphHandler := handlers.NewGraphHandler(
			rt.container.Linker,
			rt.container.Graph,
			rt.container.Logger,
		)
		shareHandler := handlers.NewShareHandler(
			rt.container.Share,
			rt.container.Replay,
			rt.container.Logger,
		)

		// Exploration endpoints
		r.Route("/graph", func(r chi.Router) {
			r.Get("/", graphHandler.GetGraph)
			r.Get("/current", graphHandler.Current)
			r.Post("/navigate", graphHandler.Navigate)
			r.Post("/augment", graphHandler.Augment)
			r.Post("/back", graphHandler.Back)

			r.Route("/nodes", func(r chi.Router) {
				r.Get("/{nodeID}", graphHandler.GetNode)
				r.Post("/{nodeID}/expand", graphHandler.ExpandNode)
				r.Delete("/{nodeID}", graphHandler.RemoveNode)
			})
		})

		// Snapshot endpoints
		r.Route("/snapshots", func(r chi.Router) {
			r.Post("/", shareHandler.Share)
			r.Get("/{snapshotID}", shareHandler.GetSnapshot)
			r.Post("/{snapshotID}/load", shareHandler.LoadSnapshot)
			r.Post("/{snapshotID}/fork", shareHandler.Fork)
			r.Get("/{snapshotID}/stats", shareHandler.SnapshotStats)
		})

		// Replay control
		r.Post("/replay/cancel", shareHandler.CancelReplay)

		// Cross-snapshot aggregates
		r.Get("/stats/articles", shareHandler.ArticleStats)
	})

	return router
}

// healthCheck handles health check requests
func (rt *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"healthy"}`))
}

// readinessCheck handles readiness check requests
func (rt *Router) readinessCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ready"}`))
}
