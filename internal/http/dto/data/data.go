// Package data contiene los DTOs del dashboard y las tablas.
package data

import "github.com/dropDatabas3/datagate/internal/access"

// TablesResponse lista las tablas que el usuario puede abrir.
type TablesResponse struct {
	Tables []string `json:"tables"`
	// Demo: los nombres son de demo, no existen en el warehouse.
	Demo    bool            `json:"demo"`
	Notices []access.Notice `json:"notices"`
}
