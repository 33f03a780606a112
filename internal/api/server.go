package api

import (
	"net/http"
	"time"

	briefingapi "github.com/docbrief/nlp-engine/internal/api/briefing"
	"github.com/docbrief/nlp-engine/internal/api/docs"
	"github.com/docbrief/nlp-engine/internal/api/middleware"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// SetupRouter creates and configures the HTTP router
func SetupRouter(briefingHandler *briefingapi.Handler, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	// Middleware stack
	r.Use(chimiddleware.Recoverer)   // Recover from panics
	r.Use(chimiddleware.RequestID)   // Add request ID
	r.Use(middleware.Logger(logger)) // Log requests
	r.Use(middleware.CORS)           // Handle CORS
	// Generation calls run up to two minutes, leave retry headroom.
	r.Use(chimiddleware.Timeout(5 * time.Minute))

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok","service":"nlp-engine","endpoints":["/process","/ask","/summarize","/extract"]}`))
	})

	// Swagger documentation endpoints
	docs.RegisterRoutes(r)

	// Register routes
	briefingapi.RegisterRoutes(r, briefingHandler)

	return r
}
