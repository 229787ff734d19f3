package wire

import (
	"net/http"

	"movie-ticket/internal/adaptor"

	"github.com/go-chi/chi/v5"
)

func AuthRoutes(r chi.Router, h *adaptor.Handler, authMW func(http.Handler) http.Handler) {
	r.Route("/auth", func(auth chi.Router) {
		auth.Post("/register", h.Auth.Register)
		auth.Post("/login", h.Auth.Login)
		auth.Post("/forgot-password", h.Auth.ForgotPassword)
		auth.Post("/reset-password", h.Auth.ResetPassword)

		auth.Group(func(protected chi.Router) {
			protected.Use(authMW)
			protected.Post("/logout", h.Auth.Logout)
		})
	})

	r.Group(func(protected chi.Router) {
		protected.Use(authMW)
		protected.Get("/users/me", h.User.Me)
	})
}
