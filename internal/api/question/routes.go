package question

import (
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

// RegisterRoutes registers question routes. The streaming route is left
// without a handler timeout.
func RegisterRoutes(r chi.Router, h *Handler, timeout time.Duration) {
	r.Route("/api", func(r chi.Router) {
		r.Get("/awake", h.Awake)
		r.Post("/ask/stream", h.AskStream)

		r.Group(func(r chi.Router) {
			r.Use(chimiddleware.Timeout(timeout))
			r.Post("/ask", h.Ask)
			r.Post("/ask/upload", h.AskUpload)
			r.Post("/ask/export", h.Export)
		})
	})
}
