package wire

import (
	"movie-ticket/internal/adaptor"

	"github.com/go-chi/chi/v5"
)

// CatalogRoutes exposes the public browse surface: movies, showtimes and
// seat availability need no session.
func CatalogRoutes(r chi.Router, h *adaptor.Handler) {
	r.Route("/movies", func(movies chi.Router) {
		movies.Get("/", h.Movie.List)
		movies.Get("/{id}", h.Movie.GetByID)
		movies.Get("/{id}/showtimes", h.Movie.ListShowTimes)
	})

	r.Route("/showtimes", func(showTimes chi.Router) {
		showTimes.Get("/", h.ShowTime.ListAvailable)
		showTimes.Get("/{id}", h.ShowTime.GetByID)
		showTimes.Get("/{id}/seats", h.ShowTime.SeatAvailability)
	})

	r.Get("/banks", h.Booking.Banks)
}
