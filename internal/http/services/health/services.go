// Package health reporta conectividad con el warehouse y el estado de las
// dependencias del proceso.
package health

import (
	"context"
	"os"
	"time"

	"github.com/dropDatabas3/datagate/internal/cache"
	dto "github.com/dropDatabas3/datagate/internal/http/dto/health"
	"github.com/dropDatabas3/datagate/internal/observability/logger"
	"github.com/dropDatabas3/datagate/internal/warehouse"
)

// Deps dependencias del dominio health. Warehouse puede ser nil (modo demo).
type Deps struct {
	Warehouse warehouse.Client
	Driver    string
	Dataset   string
	Cache     cache.Client
	UsersFile string
	Version   string
}

// HealthService chequea las dependencias.
type HealthService interface {
	Status(ctx context.Context) dto.StatusResponse
	Readyz(ctx context.Context) dto.ReadyzResponse
}

// Services agrupa los services del dominio health.
type Services struct {
	Health HealthService
}

// NewServices crea el agregador de services health.
func NewServices(d Deps) Services {
	return Services{Health: &healthService{deps: d}}
}

type healthService struct {
	deps Deps
}

const probeTimeout = 3 * time.Second

// Status replica el chequeo de la pantalla de login: sin cliente o con el
// ping fallido el dashboard opera en modo demo.
func (s *healthService) Status(ctx context.Context) dto.StatusResponse {
	out := dto.StatusResponse{Driver: s.deps.Driver, Dataset: s.deps.Dataset, Mode: "demo"}
	if s.deps.Warehouse == nil {
		out.Message = "Warehouse connection not available. The dashboard will operate in demo mode."
		return out
	}

	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()
	if err := s.deps.Warehouse.Ping(ctx); err != nil {
		logger.From(ctx).Warn("warehouse ping failed", logger.Op("health.Status"), logger.Err(err))
		out.Message = "Warehouse connection test failed: " + err.Error() + ". The dashboard will operate in demo mode."
		return out
	}
	out.Connected = true
	out.Mode = "connected"
	out.Message = "Connected to the warehouse successfully."
	return out
}

// Readyz: el archivo de usuarios y el cache son obligatorios; el warehouse
// caído sólo degrada (hay fallback a demo).
func (s *healthService) Readyz(ctx context.Context) dto.ReadyzResponse {
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	out := dto.ReadyzResponse{Status: "ready", Version: s.deps.Version, Components: map[string]string{}}

	if s.deps.Cache != nil {
		if err := s.deps.Cache.Ping(ctx); err != nil {
			out.Components["cache"] = "error: " + err.Error()
			out.Status = "unavailable"
		} else {
			out.Components["cache"] = "ok"
		}
	}

	if s.deps.UsersFile != "" {
		if _, err := os.Stat(s.deps.UsersFile); err != nil {
			out.Components["users"] = "error: " + err.Error()
			out.Status = "unavailable"
		} else {
			out.Components["users"] = "ok"
		}
	}

	switch {
	case s.deps.Warehouse == nil:
		out.Components["warehouse"] = "demo"
	default:
		if err := s.deps.Warehouse.Ping(ctx); err != nil {
			out.Components["warehouse"] = "error: " + err.Error()
		} else {
			out.Components["warehouse"] = "ok"
		}
	}
	if out.Status == "ready" && out.Components["warehouse"] != "ok" {
		out.Status = "degraded"
	}
	return out
}
