// Package router arma el árbol de rutas chi de la API.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	httpx "github.com/dropDatabas3/datagate/internal/http"
	adminctrl "github.com/dropDatabas3/datagate/internal/http/controllers/admin"
	authctrl "github.com/dropDatabas3/datagate/internal/http/controllers/auth"
	datactrl "github.com/dropDatabas3/datagate/internal/http/controllers/data"
	healthctrl "github.com/dropDatabas3/datagate/internal/http/controllers/health"
	httperrors "github.com/dropDatabas3/datagate/internal/http/errors"
	mw "github.com/dropDatabas3/datagate/internal/http/middlewares"
)

// Deps contiene los controllers y middlewares que necesita el router.
type Deps struct {
	Auth   *authctrl.Controllers
	Data   *datactrl.Controllers
	Admin  *adminctrl.Controllers
	Health *healthctrl.Controllers

	Sessions   mw.SessionResolver
	Users      mw.UserLoader
	CookieName string

	// Metrics es el handler de /metrics. nil = no se expone.
	Metrics http.Handler
}

// New registra todas las rutas.
func New(d Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(mw.WithRecover(), mw.WithRequestID(), httpx.WithMetrics)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		httperrors.WriteError(w, httperrors.ErrRouteNotFound)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		httperrors.WriteError(w, httperrors.ErrMethodNotAllowed)
	})

	registerHealthRoutes(r, d)

	r.Route("/v1", func(r chi.Router) {
		r.Use(mw.API()...)
		registerAuthRoutes(r, d)
		registerDataRoutes(r, d)
		registerAdminRoutes(r, d)
	})
	return r
}

func requireSession(d Deps) mw.Middleware {
	return mw.RequireSession(d.Sessions, d.Users, d.CookieName)
}
