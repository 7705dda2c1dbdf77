package router

import "github.com/go-chi/chi/v5"

func registerDataRoutes(r chi.Router, d Deps) {
	c := d.Data.Data

	r.Group(func(r chi.Router) {
		r.Use(requireSession(d))
		r.Get("/dashboard", c.Dashboard)
		r.Get("/tables", c.Tables)
		r.Get("/tables/{table}/rows", c.Rows)
	})
}
