// Package auth contiene los controllers de login, logout y me.
package auth

import (
	"errors"
	"net/http"

	dto "github.com/dropDatabas3/datagate/internal/http/dto/auth"
	httperrors "github.com/dropDatabas3/datagate/internal/http/errors"
	"github.com/dropDatabas3/datagate/internal/http/helpers"
	svc "github.com/dropDatabas3/datagate/internal/http/services/auth"
	"github.com/dropDatabas3/datagate/internal/observability/logger"
	"github.com/dropDatabas3/datagate/internal/session"
)

// CookieConfig configura la cookie de sesión.
type CookieConfig struct {
	Name   string
	Secure bool
}

// Controllers agrupa los controllers del dominio auth.
type Controllers struct {
	Login  *LoginController
	Logout *LogoutController
	Me     *MeController
}

// NewControllers crea el agregador de controllers auth.
func NewControllers(s svc.Services, ck CookieConfig) *Controllers {
	return &Controllers{
		Login:  &LoginController{service: s.Auth, cookie: ck},
		Logout: &LogoutController{service: s.Auth, cookie: ck},
		Me:     &MeController{},
	}
}

// LoginController maneja POST /v1/auth/login.
type LoginController struct {
	service svc.AuthService
	cookie  CookieConfig
}

func (c *LoginController) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("LoginController.Login"))

	var req dto.LoginRequest
	if err := helpers.ReadJSON(w, r, &req); err != nil {
		httperrors.WriteError(w, err)
		return
	}

	res, err := c.service.Login(ctx, req)
	if err != nil {
		switch {
		case errors.Is(err, svc.ErrMissingFields):
			httperrors.WriteError(w, httperrors.ErrMissingFields.WithDetail("username and password are required"))
		case errors.Is(err, svc.ErrInvalidCredentials):
			httperrors.WriteError(w, httperrors.ErrInvalidCredentials)
		default:
			log.Error("login failed", logger.Err(err))
			httperrors.WriteError(w, httperrors.ErrInternalServerError.WithCause(err))
		}
		return
	}

	http.SetCookie(w, helpers.BuildCookie(c.cookie.Name, res.Token, c.cookie.Secure, res.Session.ExpiresAt.Sub(res.Session.IssuedAt)))
	helpers.WriteJSON(w, http.StatusOK, dto.LoginResponse{
		Token:     res.Token,
		TokenType: "Bearer",
		Username:  res.Session.Username,
		Role:      string(res.Session.Role),
		ExpiresAt: res.Session.ExpiresAt,
	})
}

// LogoutController maneja POST /v1/auth/logout. Idempotente.
type LogoutController struct {
	service svc.AuthService
	cookie  CookieConfig
}

func (c *LogoutController) Logout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	token := helpers.SessionToken(r, c.cookie.Name)
	if err := c.service.Logout(ctx, token); err != nil {
		logger.From(ctx).Warn("logout: revoke failed",
			logger.Layer("controller"), logger.Op("LogoutController.Logout"), logger.Err(err))
	}
	http.SetCookie(w, helpers.BuildDeletionCookie(c.cookie.Name, c.cookie.Secure))
	w.WriteHeader(http.StatusNoContent)
}

// MeController maneja GET /v1/auth/me.
type MeController struct{}

func (c *MeController) Me(w http.ResponseWriter, r *http.Request) {
	s, ok := session.FromContext(r.Context())
	if !ok {
		httperrors.WriteError(w, httperrors.ErrUnauthorized)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, dto.MeResponse{
		Authenticated: s.Authenticated,
		Username:      s.Username,
		Role:          string(s.Role),
		ExpiresAt:     s.ExpiresAt,
	})
}
