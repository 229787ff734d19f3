package wire

import (
	"net/http"

	"movie-ticket/internal/adaptor"
	"movie-ticket/pkg/middleware"

	"github.com/go-chi/chi/v5"
)

func AdminRoutes(r chi.Router, h *adaptor.Handler, authMW func(http.Handler) http.Handler) {
	r.Route("/admin", func(admin chi.Router) {
		admin.Use(authMW)
		admin.Use(middleware.AdminOnly)

		admin.Route("/movies", func(movies chi.Router) {
			movies.Post("/", h.Movie.Create)
			movies.Put("/{id}", h.Movie.Update)
			movies.Delete("/{id}", h.Movie.Delete)
		})

		admin.Route("/rooms", func(rooms chi.Router) {
			rooms.Post("/", h.Room.Create)
			rooms.Get("/", h.Room.List)
			rooms.Get("/{id}", h.Room.GetByID)
			rooms.Put("/{id}", h.Room.Update)
			rooms.Delete("/{id}", h.Room.Delete)
		})

		admin.Route("/showtimes", func(showTimes chi.Router) {
			showTimes.Post("/", h.ShowTime.Create)
			showTimes.Put("/{id}", h.ShowTime.Update)
			showTimes.Delete("/{id}", h.ShowTime.Delete)
		})

		admin.Route("/bookings", func(bookings chi.Router) {
			bookings.Get("/", h.Booking.ListAll)
			bookings.Get("/{id}", h.Booking.GetByID)
			bookings.Post("/{id}/cancel", h.Booking.Cancel)
		})

		admin.Route("/users", func(users chi.Router) {
			users.Get("/", h.User.List)
			users.Patch("/{id}/active", h.User.SetActive)
		})
	})
}
