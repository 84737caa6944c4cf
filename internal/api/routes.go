package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NewRouter creates a new router with all routes configured
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware (all routes)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(LoggingMiddleware)
	r.Use(middleware.Recoverer)

	r.Route("/api/v1", func(r chi.Router) {
		// Public routes (no auth required)
		r.Get("/health", h.Health)

		// Protected routes (auth required)
		r.Group(func(r chi.Router) {
			r.Use(AuthMiddleware(h.apiKey))
			r.Use(UserMiddleware)

			r.Post("/habits", h.CreateHabit)
			r.Get("/habits", h.ListHabits)
			r.Get("/habits/streaks", h.GetStreaks)
			r.Get("/habits/{id}", h.GetHabit)
			r.Put("/habits/{id}", h.UpdateHabit)
			r.Delete("/habits/{id}", h.DeactivateHabit)
			r.Post("/habits/{id}/complete", h.CompleteHabit)

			r.Post("/routines/generate", h.GenerateRoutine)
			r.Get("/routines/{day}", h.GetRoutine)
			r.Patch("/routines/{routineID}/segments/{segmentID}", h.UpdateSegment)

			r.Post("/reviews", h.CreateReview)
			r.Get("/reviews/{day}", h.GetReview)

			r.Get("/profile", h.GetProfile)
			r.Put("/profile", h.PutProfile)
		})
	})

	return r
}
