package router

import "github.com/go-chi/chi/v5"

func registerAuthRoutes(r chi.Router, d Deps) {
	c := d.Auth

	// Públicas
	r.Post("/auth/login", c.Login.Login)
	r.Post("/auth/logout", c.Logout.Logout)
	r.Get("/status", d.Health.Health.Status)

	r.Group(func(r chi.Router) {
		r.Use(requireSession(d))
		r.Get("/auth/me", c.Me.Me)
	})
}
