// Package data contiene los controllers del dashboard y las tablas.
package data

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	httperrors "github.com/dropDatabas3/datagate/internal/http/errors"
	"github.com/dropDatabas3/datagate/internal/http/helpers"
	svc "github.com/dropDatabas3/datagate/internal/http/services/data"
	"github.com/dropDatabas3/datagate/internal/observability/logger"
	"github.com/dropDatabas3/datagate/internal/session"
)

// Controllers agrupa los controllers del dominio data.
type Controllers struct {
	Data *DataController
}

// NewControllers crea el agregador de controllers data.
func NewControllers(s svc.Services) *Controllers {
	return &Controllers{Data: &DataController{service: s.Data}}
}

// DataController atiende /v1/dashboard y /v1/tables/*. Las fallas del
// warehouse no son errores HTTP: vuelven como resultado placeholder.
type DataController struct {
	service svc.DataService
}

func (c *DataController) Dashboard(w http.ResponseWriter, r *http.Request) {
	s, ok := session.FromContext(r.Context())
	if !ok {
		httperrors.WriteError(w, httperrors.ErrUnauthorized)
		return
	}
	d, err := c.service.Dashboard(r.Context(), s.Username)
	if err != nil {
		writeError(w, r, "DataController.Dashboard", err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, d)
}

func (c *DataController) Tables(w http.ResponseWriter, r *http.Request) {
	s, ok := session.FromContext(r.Context())
	if !ok {
		httperrors.WriteError(w, httperrors.ErrUnauthorized)
		return
	}
	out, err := c.service.Tables(r.Context(), s.Username)
	if err != nil {
		writeError(w, r, "DataController.Tables", err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, out)
}

// Rows GET /v1/tables/{table}/rows. Denied también es 200 con kind=denied,
// igual que cualquier otro resultado de la consulta.
func (c *DataController) Rows(w http.ResponseWriter, r *http.Request) {
	s, ok := session.FromContext(r.Context())
	if !ok {
		httperrors.WriteError(w, httperrors.ErrUnauthorized)
		return
	}
	table := chi.URLParam(r, "table")
	if table == "" {
		httperrors.WriteError(w, httperrors.ErrInvalidParameter.WithDetail("table is required"))
		return
	}
	res, err := c.service.Rows(r.Context(), s.Username, table)
	if err != nil {
		writeError(w, r, "DataController.Rows", err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, res)
}

func writeError(w http.ResponseWriter, r *http.Request, op string, err error) {
	if errors.Is(err, svc.ErrUserGone) {
		httperrors.WriteError(w, httperrors.ErrSessionExpired.WithDetail("user no longer exists"))
		return
	}
	logger.From(r.Context()).Error("data request failed",
		logger.Layer("controller"), logger.Op(op), logger.Err(err))
	httperrors.WriteError(w, httperrors.ErrInternalServerError.WithCause(err))
}
