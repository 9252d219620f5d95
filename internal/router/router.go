// Package router wires the HTTP surface: chat and health, plus
// logging/CORS/monitoring middleware.
package router

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/joseon-annals/rag-service/internal/handler"
	"github.com/joseon-annals/rag-service/internal/middleware"
)

// Dependencies holds all injected services needed by the router.
type Dependencies struct {
	FrontendURL string
	Metrics     *middleware.Metrics
	MetricsReg  *prometheus.Registry
	ChatDeps    handler.ChatDeps
}

// New creates and configures the Chi router with all routes.
func New(deps *Dependencies) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.Logging)
	r.Use(middleware.CORS(deps.FrontendURL))
	if deps.Metrics != nil {
		r.Use(middleware.Monitoring(deps.Metrics))
	}

	r.Get("/api/health", handler.Health())
	if deps.MetricsReg != nil {
		r.Handle("/metrics", middleware.MetricsHandler(deps.MetricsReg))
	}

	r.Post("/api/chat", handler.Chat(deps.ChatDeps))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]any{
			"success": false,
			"error":   "route not found",
		})
	})

	return r
}
