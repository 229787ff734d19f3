package wire

import (
	"net/http"

	"movie-ticket/internal/adaptor"

	"github.com/go-chi/chi/v5"
)

func BookingRoutes(r chi.Router, h *adaptor.Handler, authMW func(http.Handler) http.Handler) {
	r.Route("/bookings", func(bookings chi.Router) {
		bookings.Use(authMW)

		bookings.Post("/", h.Booking.Create)
		bookings.Get("/", h.Booking.ListMine)
		bookings.Get("/{id}", h.Booking.GetByID)
		bookings.Get("/{id}/payment", h.Booking.PaymentInstructions)
		bookings.Post("/{id}/confirm", h.Booking.ConfirmPayment)
		bookings.Post("/{id}/cancel", h.Booking.Cancel)
	})
}
