// Package admin contiene los controllers de gestión de usuarios.
package admin

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dropDatabas3/datagate/internal/domain/repository"
	dto "github.com/dropDatabas3/datagate/internal/http/dto/admin"
	httperrors "github.com/dropDatabas3/datagate/internal/http/errors"
	"github.com/dropDatabas3/datagate/internal/http/helpers"
	svc "github.com/dropDatabas3/datagate/internal/http/services/admin"
	"github.com/dropDatabas3/datagate/internal/observability/logger"
)

// Controllers agrupa los controllers del dominio admin.
type Controllers struct {
	Users *UsersController
}

// NewControllers crea el agregador de controllers admin.
func NewControllers(s svc.Services) *Controllers {
	return &Controllers{Users: &UsersController{service: s.Users}}
}

// UsersController maneja /v1/admin/users.
type UsersController struct {
	service svc.AdminService
}

func (c *UsersController) List(w http.ResponseWriter, r *http.Request) {
	users, err := c.service.ListUsers(r.Context())
	if err != nil {
		writeAdminError(w, r, "UsersController.List", err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, dto.UserListResponse{Users: users})
}

func (c *UsersController) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateUserRequest
	if err := helpers.ReadJSON(w, r, &req); err != nil {
		httperrors.WriteError(w, err)
		return
	}
	sum, err := c.service.CreateUser(r.Context(), req)
	if err != nil {
		writeAdminError(w, r, "UsersController.Create", err)
		return
	}
	helpers.WriteJSON(w, http.StatusCreated, sum)
}

func (c *UsersController) Delete(w http.ResponseWriter, r *http.Request) {
	if err := c.service.DeleteUser(r.Context(), chi.URLParam(r, "username")); err != nil {
		writeAdminError(w, r, "UsersController.Delete", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (c *UsersController) GetAccess(w http.ResponseWriter, r *http.Request) {
	out, err := c.service.GetAccess(r.Context(), chi.URLParam(r, "username"))
	if err != nil {
		writeAdminError(w, r, "UsersController.GetAccess", err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, out)
}

func (c *UsersController) PutAccess(w http.ResponseWriter, r *http.Request) {
	var req dto.UpdateAccessRequest
	if err := helpers.ReadJSON(w, r, &req); err != nil {
		httperrors.WriteError(w, err)
		return
	}
	out, err := c.service.UpdateAccess(r.Context(), chi.URLParam(r, "username"), req)
	if err != nil {
		writeAdminError(w, r, "UsersController.PutAccess", err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, out)
}

// writeAdminError mapea errores de dominio a AppError.
func writeAdminError(w http.ResponseWriter, r *http.Request, op string, err error) {
	switch {
	case errors.Is(err, svc.ErrMissingFields):
		httperrors.WriteError(w, httperrors.ErrMissingFields.WithDetail(err.Error()))
	case errors.Is(err, repository.ErrReservedUser):
		httperrors.WriteError(w, httperrors.ErrReservedUser)
	case errors.Is(err, repository.ErrNotFound):
		httperrors.WriteError(w, httperrors.ErrUserNotFound)
	case errors.Is(err, repository.ErrConflict):
		httperrors.WriteError(w, httperrors.ErrUsernameTaken)
	case errors.Is(err, repository.ErrFilterWithoutTable), errors.Is(err, repository.ErrInvalidInput):
		httperrors.WriteError(w, httperrors.ErrUnprocessableEntity.WithDetail(err.Error()))
	default:
		logger.From(r.Context()).Error("admin request failed",
			logger.Layer("controller"), logger.Op(op), logger.Err(err))
		httperrors.WriteError(w, httperrors.ErrInternalServerError.WithCause(err))
	}
}
