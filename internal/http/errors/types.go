package errors

import (
	"fmt"
	"net/http"
)

// AppError es el error estándar que la capa HTTP devuelve al cliente.
type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	Detail     string `json:"detail,omitempty"`
	HTTPStatus int    `json:"-"`
	Err        error  `json:"-"` // causa, sólo para logs
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New crea un AppError.
func New(status int, code, message string) *AppError {
	return &AppError{Code: code, Message: message, HTTPStatus: status}
}

// FromError convierte cualquier error en AppError. Lo que no es AppError
// se reporta como error interno conservando la causa.
func FromError(err error) *AppError {
	if appErr, ok := err.(*AppError); ok {
		return appErr
	}
	return ErrInternalServerError.WithCause(err)
}

// WithDetail devuelve una COPIA con el detalle, para no mutar los errores base.
func (e *AppError) WithDetail(detail string) *AppError {
	newErr := *e
	newErr.Detail = detail
	return &newErr
}

// WithCause devuelve una COPIA con la causa.
func (e *AppError) WithCause(err error) *AppError {
	newErr := *e
	newErr.Err = err
	return &newErr
}

// =================================================================================
// ERRORES PREDEFINIDOS
// =================================================================================

// 400
var (
	ErrBadRequest = &AppError{
		Code:       "BAD_REQUEST",
		Message:    "La solicitud es inválida.",
		HTTPStatus: http.StatusBadRequest,
	}
	ErrInvalidJSON = &AppError{
		Code:       "INVALID_JSON",
		Message:    "El cuerpo de la solicitud no es un JSON válido.",
		HTTPStatus: http.StatusBadRequest,
	}
	ErrMissingFields = &AppError{
		Code:       "MISSING_FIELDS",
		Message:    "Faltan campos obligatorios.",
		HTTPStatus: http.StatusBadRequest,
	}
	ErrInvalidParameter = &AppError{
		Code:       "INVALID_PARAMETER",
		Message:    "Uno de los parámetros es inválido.",
		HTTPStatus: http.StatusBadRequest,
	}
	ErrBodyTooLarge = &AppError{
		Code:       "BODY_TOO_LARGE",
		Message:    "El cuerpo de la solicitud es demasiado grande.",
		HTTPStatus: http.StatusRequestEntityTooLarge,
	}
)

// 401
var (
	ErrUnauthorized = &AppError{
		Code:       "UNAUTHORIZED",
		Message:    "No autorizado.",
		HTTPStatus: http.StatusUnauthorized,
	}
	ErrInvalidCredentials = &AppError{
		Code:       "INVALID_CREDENTIALS",
		Message:    "Invalid username or password",
		HTTPStatus: http.StatusUnauthorized,
	}
	ErrTokenMissing = &AppError{
		Code:       "TOKEN_MISSING",
		Message:    "Falta el token de sesión.",
		HTTPStatus: http.StatusUnauthorized,
	}
	ErrSessionExpired = &AppError{
		Code:       "SESSION_EXPIRED",
		Message:    "La sesión expiró o fue cerrada.",
		HTTPStatus: http.StatusUnauthorized,
	}
)

// 403
var (
	ErrForbidden = &AppError{
		Code:       "FORBIDDEN",
		Message:    "No tenés permisos para esta operación.",
		HTTPStatus: http.StatusForbidden,
	}
	ErrReservedUser = &AppError{
		Code:       "RESERVED_USER",
		Message:    "Cannot delete admin user",
		HTTPStatus: http.StatusForbidden,
	}
)

// 404 / 405
var (
	ErrNotFound = &AppError{
		Code:       "NOT_FOUND",
		Message:    "Recurso no encontrado.",
		HTTPStatus: http.StatusNotFound,
	}
	ErrUserNotFound = &AppError{
		Code:       "USER_NOT_FOUND",
		Message:    "User not found",
		HTTPStatus: http.StatusNotFound,
	}
	ErrRouteNotFound = &AppError{
		Code:       "ROUTE_NOT_FOUND",
		Message:    "La ruta solicitada no existe.",
		HTTPStatus: http.StatusNotFound,
	}
	ErrMethodNotAllowed = &AppError{
		Code:       "METHOD_NOT_ALLOWED",
		Message:    "Método HTTP no permitido.",
		HTTPStatus: http.StatusMethodNotAllowed,
	}
)

// 409 / 422
var (
	ErrConflict = &AppError{
		Code:       "CONFLICT",
		Message:    "Conflicto con el estado actual del recurso.",
		HTTPStatus: http.StatusConflict,
	}
	ErrUsernameTaken = &AppError{
		Code:       "USERNAME_TAKEN",
		Message:    "Username already exists",
		HTTPStatus: http.StatusConflict,
	}
	ErrUnprocessableEntity = &AppError{
		Code:       "UNPROCESSABLE_ENTITY",
		Message:    "La solicitud no se pudo procesar.",
		HTTPStatus: http.StatusUnprocessableEntity,
	}
)

// 5xx
var (
	ErrInternalServerError = &AppError{
		Code:       "INTERNAL_SERVER_ERROR",
		Message:    "Ocurrió un error interno.",
		HTTPStatus: http.StatusInternalServerError,
	}
	ErrServiceUnavailable = &AppError{
		Code:       "SERVICE_UNAVAILABLE",
		Message:    "El servicio no está disponible.",
		HTTPStatus: http.StatusServiceUnavailable,
	}
)
