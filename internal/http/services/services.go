// Package services agrupa los services de todos los dominios HTTP.
package services

import (
	"github.com/dropDatabas3/datagate/internal/access"
	"github.com/dropDatabas3/datagate/internal/cache"
	"github.com/dropDatabas3/datagate/internal/domain/repository"
	"github.com/dropDatabas3/datagate/internal/http/services/admin"
	"github.com/dropDatabas3/datagate/internal/http/services/auth"
	"github.com/dropDatabas3/datagate/internal/http/services/data"
	"github.com/dropDatabas3/datagate/internal/http/services/health"
	"github.com/dropDatabas3/datagate/internal/security/password"
	"github.com/dropDatabas3/datagate/internal/warehouse"
)

// Deps es todo lo que necesitan los services.
type Deps struct {
	Users          repository.UserRepository
	Access         *access.Service
	Sessions       auth.SessionIssuer
	PasswordScheme password.Scheme

	Warehouse warehouse.Client // nil = modo demo
	Driver    string
	Cache     cache.Client
	UsersFile string
	Version   string
}

// Services agregador por dominio.
type Services struct {
	Auth   auth.Services
	Data   data.Services
	Admin  admin.Services
	Health health.Services
}

// New construye todos los services.
func New(d Deps) Services {
	return Services{
		Auth: auth.NewServices(auth.Deps{Users: d.Users, Sessions: d.Sessions}),
		Data: data.NewServices(data.Deps{Users: d.Users, Access: d.Access}),
		Admin: admin.NewServices(admin.Deps{
			Users:          d.Users,
			Access:         d.Access,
			PasswordScheme: d.PasswordScheme,
		}),
		Health: health.NewServices(health.Deps{
			Warehouse: d.Warehouse,
			Driver:    d.Driver,
			Dataset:   d.Access.Catalog().Dataset(),
			Cache:     d.Cache,
			UsersFile: d.UsersFile,
			Version:   d.Version,
		}),
	}
}
