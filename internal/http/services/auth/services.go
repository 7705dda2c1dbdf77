// Package auth contiene el login por usuario/contraseña y el logout.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dropDatabas3/datagate/internal/domain/repository"
	dto "github.com/dropDatabas3/datagate/internal/http/dto/auth"
	"github.com/dropDatabas3/datagate/internal/metrics"
	"github.com/dropDatabas3/datagate/internal/observability/logger"
	"github.com/dropDatabas3/datagate/internal/security/password"
	"github.com/dropDatabas3/datagate/internal/session"
)

var (
	ErrMissingFields      = errors.New("missing required fields")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// SessionIssuer abre y cierra sesiones.
type SessionIssuer interface {
	Create(ctx context.Context, u repository.User) (string, session.Session, error)
	Revoke(ctx context.Context, token string) error
}

// Deps dependencias del dominio auth.
type Deps struct {
	Users    repository.UserRepository
	Sessions SessionIssuer
}

// LoginResult token firmado y la sesión creada.
type LoginResult struct {
	Token   string
	Session session.Session
}

// AuthService autentica usuarios del archivo de usuarios.
type AuthService interface {
	Login(ctx context.Context, in dto.LoginRequest) (*LoginResult, error)
	Logout(ctx context.Context, token string) error
}

// Services agrupa los services del dominio auth.
type Services struct {
	Auth AuthService
}

// NewServices crea el agregador de services auth.
func NewServices(d Deps) Services {
	return Services{Auth: &authService{deps: d}}
}

type authService struct {
	deps Deps
}

// Login busca el usuario por clave exacta y compara el hash. No hay lockout
// ni normalización: "Admin" y "admin" son usuarios distintos.
func (s *authService) Login(ctx context.Context, in dto.LoginRequest) (*LoginResult, error) {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("auth.login"),
		logger.Op("Login"),
	)

	if strings.TrimSpace(in.Username) == "" || in.Password == "" {
		return nil, ErrMissingFields
	}

	// Paso 1: lookup exacto
	u, err := s.deps.Users.Get(ctx, in.Username)
	if err != nil {
		if repository.IsNotFound(err) {
			metrics.LoginsTotal.WithLabelValues("failure").Inc()
			log.Debug("unknown user")
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("load user: %w", err)
	}

	// Paso 2: password
	if !password.Verify(in.Password, u.PasswordHash) {
		metrics.LoginsTotal.WithLabelValues("failure").Inc()
		log.Debug("password mismatch", logger.Username(u.Username))
		return nil, ErrInvalidCredentials
	}

	// Paso 3: sesión con el rol guardado
	token, sess, err := s.deps.Sessions.Create(ctx, *u)
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	metrics.LoginsTotal.WithLabelValues("success").Inc()
	log.Info("login ok", logger.Username(u.Username), logger.Role(string(u.Role)))
	return &LoginResult{Token: token, Session: sess}, nil
}

func (s *authService) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return s.deps.Sessions.Revoke(ctx, token)
}
