package briefing

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers the engine endpoints on the router.
func RegisterRoutes(r chi.Router, h *Handler) {
	r.Post("/process", h.Process)
	r.Post("/ask", h.Ask)
	r.Post("/summarize", h.Summarize)
	r.Post("/extract", h.Extract)
	r.Post("/extract-file", h.ExtractFile)
	r.Post("/export", h.Export)
	r.Post("/index/reset", h.ResetIndex)
}
