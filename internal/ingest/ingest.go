// Package ingest carga un CSV local en una tabla del warehouse.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/dropDatabas3/datagate/internal/observability/logger"
	"github.com/dropDatabas3/datagate/internal/warehouse"
)

// Job describe una carga.
type Job struct {
	Dataset  string
	Table    string
	Location string
	CSVPath  string
}

// Report es el resultado que se imprime al terminar.
type Report struct {
	Dataset string `json:"dataset"`
	Table   string `json:"table"`
	Rows    int64  `json:"rows"`
}

// Qualified devuelve "dataset.table".
func (r Report) Qualified() string { return r.Dataset + "." + r.Table }

func (j Job) validate() error {
	if strings.TrimSpace(j.CSVPath) == "" {
		return errors.New("ingest: csv path is required")
	}
	if j.Dataset == "" || strings.Contains(j.Dataset, ".") {
		return fmt.Errorf("ingest: invalid dataset %q", j.Dataset)
	}
	if j.Table == "" || strings.Contains(j.Table, ".") {
		return fmt.Errorf("ingest: invalid table %q", j.Table)
	}
	return nil
}

// Run crea el dataset (si no existe), carga el CSV salteando el header con
// schema autodetectado y espera a que termine.
func Run(ctx context.Context, wh warehouse.Client, job Job) (Report, error) {
	if err := job.validate(); err != nil {
		return Report{}, err
	}
	if job.Location == "" {
		job.Location = "US"
	}
	log := logger.From(ctx).With(logger.Component("ingest"), logger.Dataset(job.Dataset), logger.Table(job.Table))

	f, err := os.Open(job.CSVPath)
	if err != nil {
		return Report{}, fmt.Errorf("ingest: open csv: %w", err)
	}
	defer f.Close()

	if err := wh.CreateDataset(ctx, job.Dataset, job.Location); err != nil {
		return Report{}, fmt.Errorf("ingest: create dataset: %w", err)
	}
	log.Info("dataset ready", logger.String("location", job.Location))

	res, err := wh.LoadCSV(ctx, warehouse.LoadJob{
		Dataset:         job.Dataset,
		Table:           job.Table,
		Source:          f,
		SkipLeadingRows: 1,
		Autodetect:      true,
	})
	if err != nil {
		return Report{}, fmt.Errorf("ingest: load: %w", err)
	}
	log.Info("csv loaded", logger.Int64("rows", res.Rows))

	return Report{Dataset: job.Dataset, Table: job.Table, Rows: res.Rows}, nil
}
