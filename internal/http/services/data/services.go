// Package data expone el dashboard y las consultas de tablas para el usuario
// de la sesión.
package data

import (
	"context"
	"errors"
	"fmt"

	"github.com/dropDatabas3/datagate/internal/access"
	"github.com/dropDatabas3/datagate/internal/domain/repository"
	dto "github.com/dropDatabas3/datagate/internal/http/dto/data"
	"github.com/dropDatabas3/datagate/internal/observability/logger"
)

// ErrUserGone: la sesión es válida pero el usuario ya no está en el archivo.
var ErrUserGone = errors.New("session user no longer exists")

// Deps dependencias del dominio data.
type Deps struct {
	Users  repository.UserRepository
	Access *access.Service
}

// DataService arma las vistas. El usuario se relee en cada request para que
// los cambios de permisos apliquen sin re-login.
type DataService interface {
	Dashboard(ctx context.Context, username string) (*access.Dashboard, error)
	Tables(ctx context.Context, username string) (*dto.TablesResponse, error)
	Rows(ctx context.Context, username, table string) (*access.Result, error)
}

// Services agrupa los services del dominio data.
type Services struct {
	Data DataService
}

// NewServices crea el agregador de services data.
func NewServices(d Deps) Services {
	return Services{Data: &dataService{deps: d}}
}

type dataService struct {
	deps Deps
}

func (s *dataService) user(ctx context.Context, username string) (*repository.User, error) {
	u, err := s.deps.Users.Get(ctx, username)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrUserGone
		}
		return nil, fmt.Errorf("load user: %w", err)
	}
	return u, nil
}

func (s *dataService) Dashboard(ctx context.Context, username string) (*access.Dashboard, error) {
	u, err := s.user(ctx, username)
	if err != nil {
		return nil, err
	}
	d := s.deps.Access.BuildDashboard(ctx, *u)
	return &d, nil
}

func (s *dataService) Tables(ctx context.Context, username string) (*dto.TablesResponse, error) {
	u, err := s.user(ctx, username)
	if err != nil {
		return nil, err
	}

	out := &dto.TablesResponse{Notices: []access.Notice{}}
	if u.IsAdmin() {
		l := s.deps.Access.Catalog().AdminListing(ctx)
		out.Tables, out.Demo = l.Tables, l.Demo
		if l.Err != nil {
			out.Notices = append(out.Notices, access.Notice{
				Level: access.LevelWarning,
				Text:  "Could not fetch real tables from the warehouse: " + l.Err.Error(),
			})
		}
		if l.Demo {
			out.Notices = append(out.Notices, access.Notice{
				Level: access.LevelInfo,
				Text:  "Using demo tables for demonstration purposes.",
			})
		}
		return out, nil
	}

	out.Tables = s.deps.Access.ResolveAccessibleTables(ctx, *u)
	if len(out.Tables) == 0 {
		out.Notices = append(out.Notices, access.Notice{
			Level: access.LevelWarning,
			Text:  "You don't have access to any data tables. Please contact an administrator.",
		})
	}
	return out, nil
}

func (s *dataService) Rows(ctx context.Context, username, table string) (*access.Result, error) {
	u, err := s.user(ctx, username)
	if err != nil {
		return nil, err
	}
	res := s.deps.Access.QueryTable(ctx, *u, table)
	logger.From(ctx).Debug("table query",
		logger.Layer("service"),
		logger.Op("data.Rows"),
		logger.Table(table),
		logger.Outcome(string(res.Kind)),
	)
	return &res, nil
}
