package middlewares

import (
	"context"
	stderrors "errors"
	"net/http"

	"github.com/dropDatabas3/datagate/internal/domain/repository"
	"github.com/dropDatabas3/datagate/internal/http/errors"
	"github.com/dropDatabas3/datagate/internal/http/helpers"
	"github.com/dropDatabas3/datagate/internal/observability/logger"
	"github.com/dropDatabas3/datagate/internal/session"
)

// SessionResolver valida un token y devuelve la sesión.
type SessionResolver interface {
	Resolve(ctx context.Context, token string) (*session.Session, error)
}

// UserLoader relee al usuario de la sesión desde el archivo de usuarios.
type UserLoader interface {
	Get(ctx context.Context, username string) (*repository.User, error)
}

// RequireSession exige una sesión válida (Bearer o cookie) y la deja en el
// contexto. El usuario se relee en cada request: si ya no existe la sesión
// no sirve (401) y el role es el del archivo, no el del login.
func RequireSession(resolver SessionResolver, users UserLoader, cookieName string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := helpers.SessionToken(r, cookieName)
			if token == "" {
				errors.WriteError(w, errors.ErrTokenMissing)
				return
			}

			s, err := resolver.Resolve(r.Context(), token)
			if err != nil {
				if stderrors.Is(err, session.ErrInvalidSession) {
					errors.WriteError(w, errors.ErrSessionExpired)
					return
				}
				logger.From(r.Context()).Error("session lookup failed", logger.Op("RequireSession"), logger.Err(err))
				errors.WriteError(w, errors.ErrServiceUnavailable.WithDetail("session store unavailable"))
				return
			}

			u, err := users.Get(r.Context(), s.Username)
			if err != nil {
				if repository.IsNotFound(err) {
					errors.WriteError(w, errors.ErrSessionExpired.WithDetail("user no longer exists"))
					return
				}
				logger.From(r.Context()).Error("user reload failed", logger.Op("RequireSession"),
					logger.Username(s.Username), logger.Err(err))
				errors.WriteError(w, errors.ErrInternalServerError)
				return
			}
			current := *s
			current.Role = u.Role

			ctx := session.WithSession(r.Context(), &current)
			ctx = logger.WithFields(ctx, logger.Username(current.Username), logger.Role(string(current.Role)))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin corta con 403 si la sesión no es de un admin.
// Debe ir después de RequireSession.
func RequireAdmin() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			s, ok := session.FromContext(r.Context())
			if !ok {
				errors.WriteError(w, errors.ErrUnauthorized)
				return
			}
			if !s.IsAdmin() {
				errors.WriteError(w, errors.ErrForbidden.WithDetail("admin role required"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
