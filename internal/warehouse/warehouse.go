// Package warehouse abstrae el data warehouse donde viven las tablas del
// dashboard. Hay un driver por backend (bigquery, pg) y un set de datos de
// demo para cuando no hay warehouse disponible.
package warehouse

import (
	"context"
	"fmt"
	"io"
	"strings"
)

// Dialect identifica el SQL que entiende el backend.
type Dialect string

const (
	DialectBigQuery Dialect = "bigquery"
	DialectPostgres Dialect = "postgres"
)

// Table es un resultado tabular en memoria.
type Table struct {
	Columns []string `json:"columns"`
	Rows    [][]any  `json:"rows"`
}

// Len devuelve la cantidad de filas.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// LoadJob describe una carga de CSV a una tabla.
type LoadJob struct {
	Dataset string
	Table   string
	Source  io.Reader
	// SkipLeadingRows filas a ignorar (1 = header).
	SkipLeadingRows int
	// Autodetect infiere el schema desde los datos.
	Autodetect bool
}

// LoadResult es lo que reporta el backend al terminar la carga.
type LoadResult struct {
	Dataset string
	Table   string
	Rows    int64
}

// Client es el contrato que implementan los drivers.
type Client interface {
	Dialect() Dialect

	// CreateDataset crea el dataset si no existe (exists-ok).
	CreateDataset(ctx context.Context, dataset, location string) error

	// LoadCSV carga un CSV y espera a que termine.
	LoadCSV(ctx context.Context, job LoadJob) (LoadResult, error)

	// ListTables devuelve los nombres calificados "dataset.table".
	ListTables(ctx context.Context, dataset string) ([]string, error)

	TableExists(ctx context.Context, dataset, table string) (bool, error)

	// Query ejecuta sql y trae todas las filas.
	Query(ctx context.Context, sql string) (*Table, error)

	// Ping verifica credenciales y conectividad.
	Ping(ctx context.Context) error

	// QualifiedName devuelve la referencia a la tabla lista para interpolar en SQL.
	QualifiedName(dataset, table string) string

	Close() error
}

// SplitTableName separa "dataset.table". Exige exactamente un punto y ambas partes no vacías.
func SplitTableName(name string) (dataset, table string, err error) {
	parts := strings.Split(name, ".")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("invalid table name format: %s. Expected format: dataset.table", name)
	}
	return parts[0], parts[1], nil
}
