// Package health contiene los controllers de status y readyz.
package health

import (
	"net/http"

	"github.com/dropDatabas3/datagate/internal/http/helpers"
	svc "github.com/dropDatabas3/datagate/internal/http/services/health"
)

// Controllers agrupa los controllers del dominio health.
type Controllers struct {
	Health *HealthController
}

// NewControllers crea el agregador de controllers health.
func NewControllers(s svc.Services) *Controllers {
	return &Controllers{Health: &HealthController{service: s.Health}}
}

type HealthController struct {
	service svc.HealthService
}

// Status GET /v1/status. Siempre 200: modo demo no es un error.
func (c *HealthController) Status(w http.ResponseWriter, r *http.Request) {
	helpers.WriteJSON(w, http.StatusOK, c.service.Status(r.Context()))
}

// Readyz GET /readyz. 503 sólo si falta una dependencia obligatoria.
func (c *HealthController) Readyz(w http.ResponseWriter, r *http.Request) {
	out := c.service.Readyz(r.Context())
	status := http.StatusOK
	if out.Status == "unavailable" {
		status = http.StatusServiceUnavailable
	}
	helpers.WriteJSON(w, status, out)
}
