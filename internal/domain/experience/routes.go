package experience

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Routes registers work experience routes. Reads are public; writes go
// through authMiddleware and then adminMiddleware.
func (h *Handler) Routes(authMiddleware, adminMiddleware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	// Public routes
	r.Get("/", h.List)
	r.Get("/recent", h.Recent)
	r.Get("/locations", h.Locations)
	r.Get("/{id}", h.GetByID)

	// Admin routes
	r.Group(func(r chi.Router) {
		r.Use(authMiddleware)
		r.Use(adminMiddleware)
		r.Post("/", h.Create)
		r.Put("/{id}", h.Update)
		r.Patch("/{id}", h.Update)
		r.Delete("/{id}", h.Delete)
	})

	return r
}
