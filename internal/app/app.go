package app

import (
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"

	httpx "github.com/dropDatabas3/datagate/internal/http"
	adminctrl "github.com/dropDatabas3/datagate/internal/http/controllers/admin"
	authctrl "github.com/dropDatabas3/datagate/internal/http/controllers/auth"
	datactrl "github.com/dropDatabas3/datagate/internal/http/controllers/data"
	healthctrl "github.com/dropDatabas3/datagate/internal/http/controllers/health"
	"github.com/dropDatabas3/datagate/internal/http/router"
	"github.com/dropDatabas3/datagate/internal/http/services"
	"github.com/dropDatabas3/datagate/internal/warehouse/pg"
)

// Options ajustes del handler que no vienen de la config.
type Options struct {
	Version string
	// Registry/Gatherer para /metrics. nil = default de prometheus.
	Registry prometheus.Registerer
	Gatherer prometheus.Gatherer
}

// App es la aplicación HTTP ya cableada.
type App struct {
	Handler http.Handler
}

// New construye services, controllers y rutas sobre el container.
func New(c *Container, opts Options) (*App, error) {
	cfg := c.Config

	// 1. Services
	svcs := services.New(services.Deps{
		Users:          c.Users,
		Access:         c.Access,
		Sessions:       c.Sessions,
		PasswordScheme: c.PasswordScheme,
		Warehouse:      c.Warehouse,
		Driver:         cfg.Warehouse.Driver,
		Cache:          c.Cache,
		UsersFile:      cfg.UsersFile,
		Version:        opts.Version,
	})

	// 2. Metrics
	mcfg := httpx.MetricsConfig{Registry: opts.Registry, Gatherer: opts.Gatherer}
	if p, ok := c.Warehouse.(*pg.Client); ok {
		mcfg.PoolStat = func() *pgxpool.Stat { return p.Stat() }
	}
	metricsHandler, err := httpx.RegisterMetrics(mcfg)
	if err != nil {
		return nil, err
	}

	// 3. Controllers + rutas
	handler := router.New(router.Deps{
		Auth: authctrl.NewControllers(svcs.Auth, authctrl.CookieConfig{
			Name:   cfg.Auth.CookieName,
			Secure: cfg.Auth.Secure,
		}),
		Data:       datactrl.NewControllers(svcs.Data),
		Admin:      adminctrl.NewControllers(svcs.Admin),
		Health:     healthctrl.NewControllers(svcs.Health),
		Sessions:   c.Sessions,
		Users:      c.Users,
		CookieName: cfg.Auth.CookieName,
		Metrics:    metricsHandler,
	})

	return &App{Handler: handler}, nil
}
