package router

import "github.com/go-chi/chi/v5"

// registerHealthRoutes: /readyz y /metrics son públicos y sin logging (muy frecuentes).
// /v1/status vive bajo /v1 porque lo usa la pantalla de login.
func registerHealthRoutes(r chi.Router, d Deps) {
	r.Get("/readyz", d.Health.Health.Readyz)
	if d.Metrics != nil {
		r.Method("GET", "/metrics", d.Metrics)
	}
}
