package helpers

import (
	"encoding/json"
	stderrors "errors"
	"io"
	"net/http"

	httperrors "github.com/dropDatabas3/datagate/internal/http/errors"
)

// MaxBodySize es el límite para los bodies JSON de la API.
const MaxBodySize = 64 * 1024

// ReadJSON decodifica el body en dst. Devuelve un AppError listo para WriteError.
func ReadJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodySize)
	defer r.Body.Close()

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case stderrors.As(err, &tooLarge):
			return httperrors.ErrBodyTooLarge
		case stderrors.Is(err, io.EOF):
			return httperrors.ErrInvalidJSON.WithDetail("empty body")
		default:
			return httperrors.ErrInvalidJSON.WithDetail(err.Error())
		}
	}
	return nil
}

// WriteJSON escribe v con el status indicado.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
