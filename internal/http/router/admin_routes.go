package router

import (
	"github.com/go-chi/chi/v5"

	mw "github.com/dropDatabas3/datagate/internal/http/middlewares"
)

func registerAdminRoutes(r chi.Router, d Deps) {
	c := d.Admin.Users

	r.Route("/admin", func(r chi.Router) {
		r.Use(requireSession(d), mw.RequireAdmin())
		r.Get("/users", c.List)
		r.Post("/users", c.Create)
		r.Delete("/users/{username}", c.Delete)
		r.Get("/users/{username}/access", c.GetAccess)
		r.Put("/users/{username}/access", c.PutAccess)
	})
}
