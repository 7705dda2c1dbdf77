// Package admin implementa la gestión de usuarios y permisos (sólo admins).
package admin

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/dropDatabas3/datagate/internal/access"
	"github.com/dropDatabas3/datagate/internal/domain/repository"
	dto "github.com/dropDatabas3/datagate/internal/http/dto/admin"
	"github.com/dropDatabas3/datagate/internal/observability/logger"
	"github.com/dropDatabas3/datagate/internal/security/password"
)

var ErrMissingFields = errors.New("username and password are required")

// Deps dependencias del dominio admin.
type Deps struct {
	Users          repository.UserRepository
	Access         *access.Service
	PasswordScheme password.Scheme
}

// AdminService opera sobre el archivo de usuarios.
type AdminService interface {
	ListUsers(ctx context.Context) ([]repository.UserSummary, error)
	CreateUser(ctx context.Context, in dto.CreateUserRequest) (*repository.UserSummary, error)
	DeleteUser(ctx context.Context, username string) error
	GetAccess(ctx context.Context, username string) (*dto.AccessResponse, error)
	UpdateAccess(ctx context.Context, username string, in dto.UpdateAccessRequest) (*dto.AccessResponse, error)
}

// Services agrupa los services del dominio admin.
type Services struct {
	Users AdminService
}

// NewServices crea el agregador de services admin.
func NewServices(d Deps) Services {
	return Services{Users: &adminService{deps: d}}
}

type adminService struct {
	deps Deps
}

func (s *adminService) log(ctx context.Context, op string) *zap.Logger {
	return logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("admin.users"),
		logger.Op(op),
	)
}

func (s *adminService) ListUsers(ctx context.Context) ([]repository.UserSummary, error) {
	users, err := s.deps.Users.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]repository.UserSummary, 0, len(users))
	for _, u := range users {
		out = append(out, u.Summary())
	}
	return out, nil
}

// CreateUser hashea con el esquema configurado. Un admin nuevo recibe la
// lista de tablas actual (snapshot), un user arranca sin tablas.
func (s *adminService) CreateUser(ctx context.Context, in dto.CreateUserRequest) (*repository.UserSummary, error) {
	log := s.log(ctx, "CreateUser")

	if strings.TrimSpace(in.Username) == "" || in.Password == "" {
		return nil, ErrMissingFields
	}
	role := repository.RoleUser
	if in.Role != "" {
		r, err := repository.ParseRole(in.Role)
		if err != nil {
			return nil, err
		}
		role = r
	}

	hash, err := password.Hash(s.deps.PasswordScheme, in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	var tables []string
	if role == repository.RoleAdmin {
		tables = s.deps.Access.Catalog().AdminTables(ctx)
	}

	u, err := s.deps.Users.Create(ctx, repository.CreateUserInput{
		Username:     in.Username,
		PasswordHash: hash,
		Role:         role,
		Tables:       tables,
	})
	if err != nil {
		return nil, err
	}
	log.Info("user created", logger.Username(u.Username), logger.Role(string(u.Role)))
	sum := u.Summary()
	return &sum, nil
}

func (s *adminService) DeleteUser(ctx context.Context, username string) error {
	if err := s.deps.Users.Delete(ctx, username); err != nil {
		return err
	}
	s.log(ctx, "DeleteUser").Info("user deleted", logger.Username(username))
	return nil
}

// GetAccess devuelve el estado del editor: lo guardado, lo que sigue
// existiendo (preselección) y lo disponible.
func (s *adminService) GetAccess(ctx context.Context, username string) (*dto.AccessResponse, error) {
	u, err := s.deps.Users.Get(ctx, username)
	if err != nil {
		return nil, err
	}
	return s.accessView(ctx, u), nil
}

func (s *adminService) UpdateAccess(ctx context.Context, username string, in dto.UpdateAccessRequest) (*dto.AccessResponse, error) {
	log := s.log(ctx, "UpdateAccess")

	da := repository.DataAccess{Tables: in.Tables, RowFilters: in.RowFilters}.Normalize()
	if err := s.deps.Access.ValidateAccess(da); err != nil {
		return nil, err
	}
	u, err := s.deps.Users.UpdateAccess(ctx, username, da)
	if err != nil {
		return nil, err
	}
	log.Info("access updated",
		logger.Username(username),
		logger.Count(len(u.DataAccess.Tables)),
		logger.Int("row_filters", len(u.DataAccess.RowFilters)),
	)
	return s.accessView(ctx, u), nil
}

func (s *adminService) accessView(ctx context.Context, u *repository.User) *dto.AccessResponse {
	available := s.deps.Access.Catalog().Available(ctx)
	set := make(map[string]struct{}, len(available))
	for _, t := range available {
		set[t] = struct{}{}
	}
	selected := []string{}
	for _, t := range u.DataAccess.Tables {
		if _, ok := set[t]; ok {
			selected = append(selected, t)
		}
	}
	da := u.DataAccess.Normalize()
	return &dto.AccessResponse{
		Username:   u.Username,
		Role:       string(u.Role),
		Tables:     da.Tables,
		Selected:   selected,
		Available:  available,
		RowFilters: da.RowFilters,
		FilterMode: string(s.deps.Access.Mode()),
	}
}
