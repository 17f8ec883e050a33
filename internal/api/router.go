package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"trip-fusion-service/internal/api/handlers"
	"trip-fusion-service/internal/services"
)

// NewRouter wires HTTP handlers with their dependencies and returns an
// http.Handler. This is the API composition root; handlers stay unaware of
// concrete adapters.
func NewRouter(planners handlers.PlannerSet, selectors []services.Selector, loc *time.Location) http.Handler {
	planHandler := &handlers.PlanHandler{
		Planners:  planners,
		Selectors: selectors,
		Location:  loc,
	}

	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(loggingMiddleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "X-Request-ID"},
	}))

	r.Get("/health", handlers.Health)
	r.Post("/plan", planHandler.Plan)

	return r
}
