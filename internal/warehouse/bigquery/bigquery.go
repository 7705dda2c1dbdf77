// Package bigquery implementa warehouse.Client sobre Google BigQuery.
// Usa las credenciales ambientales de Google (ADC).
package bigquery

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	bq "cloud.google.com/go/bigquery"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/iterator"

	"github.com/dropDatabas3/datagate/internal/warehouse"
)

// Client implementa warehouse.Client.
type Client struct {
	bq      *bq.Client
	project string
}

var _ warehouse.Client = (*Client)(nil)

// New crea el cliente. No valida credenciales; para eso está Ping.
func New(ctx context.Context, project, location string) (*Client, error) {
	if project == "" {
		project = bq.DetectProjectID
	}
	c, err := bq.NewClient(ctx, project)
	if err != nil {
		return nil, classify("client", err)
	}
	c.Location = location
	return &Client{bq: c, project: c.Project()}, nil
}

func (c *Client) Dialect() warehouse.Dialect { return warehouse.DialectBigQuery }

func (c *Client) CreateDataset(ctx context.Context, dataset, location string) error {
	err := c.bq.Dataset(dataset).Create(ctx, &bq.DatasetMetadata{Location: location})
	var gerr *googleapi.Error
	if errors.As(err, &gerr) && gerr.Code == http.StatusConflict {
		return nil // exists_ok
	}
	return classify("create_dataset", err)
}

func (c *Client) LoadCSV(ctx context.Context, job warehouse.LoadJob) (warehouse.LoadResult, error) {
	src := bq.NewReaderSource(job.Source)
	src.SourceFormat = bq.CSV
	src.SkipLeadingRows = int64(job.SkipLeadingRows)
	src.AutoDetect = job.Autodetect

	loader := c.bq.Dataset(job.Dataset).Table(job.Table).LoaderFrom(src)
	j, err := loader.Run(ctx)
	if err != nil {
		return warehouse.LoadResult{}, classify("load", err)
	}
	status, err := j.Wait(ctx)
	if err != nil {
		return warehouse.LoadResult{}, classify("load", err)
	}
	if err := status.Err(); err != nil {
		return warehouse.LoadResult{}, classify("load", err)
	}

	res := warehouse.LoadResult{Dataset: job.Dataset, Table: job.Table}
	if status.Statistics != nil {
		if ls, ok := status.Statistics.Details.(*bq.LoadStatistics); ok {
			res.Rows = ls.OutputRows
		}
	}
	return res, nil
}

func (c *Client) ListTables(ctx context.Context, dataset string) ([]string, error) {
	it := c.bq.Dataset(dataset).Tables(ctx)
	var out []string
	for {
		t, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, classify("list_tables", err)
		}
		out = append(out, dataset+"."+t.TableID)
	}
	return out, nil
}

func (c *Client) TableExists(ctx context.Context, dataset, table string) (bool, error) {
	_, err := c.bq.Dataset(dataset).Table(table).Metadata(ctx)
	if err == nil {
		return true, nil
	}
	if warehouse.KindOf(classify("table_exists", err)) == warehouse.KindNotFound {
		return false, nil
	}
	return false, classify("table_exists", err)
}

func (c *Client) Query(ctx context.Context, sql string) (*warehouse.Table, error) {
	it, err := c.bq.Query(sql).Read(ctx)
	if err != nil {
		return nil, classify("query", err)
	}

	out := &warehouse.Table{Rows: [][]any{}}
	for {
		var row []bq.Value
		err := it.Next(&row)
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, classify("query", err)
		}
		vals := make([]any, len(row))
		for i, v := range row {
			vals[i] = plain(v)
		}
		out.Rows = append(out.Rows, vals)
	}
	for _, f := range it.Schema {
		out.Columns = append(out.Columns, f.Name)
	}
	return out, nil
}

// Ping lista un dataset; alcanza para validar credenciales y red.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.bq.Datasets(ctx).Next()
	if err == nil || errors.Is(err, iterator.Done) {
		return nil
	}
	return classify("ping", err)
}

func (c *Client) QualifiedName(dataset, table string) string {
	return fmt.Sprintf("`%s.%s.%s`", c.project, dataset, table)
}

func (c *Client) Close() error { return c.bq.Close() }

// plain convierte []bq.Value (REPEATED) en []any para que el resto del código
// no dependa de los tipos del SDK.
func plain(v bq.Value) any {
	switch x := v.(type) {
	case []bq.Value:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = plain(e)
		}
		return out
	default:
		return x
	}
}

// classify mapea códigos HTTP de la API de Google a warehouse.Kind.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		switch {
		case gerr.Code == http.StatusNotFound:
			return warehouse.Wrap(op, warehouse.KindNotFound, err)
		case gerr.Code == http.StatusBadRequest:
			return warehouse.Wrap(op, warehouse.KindMalformed, err)
		case gerr.Code == http.StatusForbidden, gerr.Code == http.StatusUnauthorized:
			return warehouse.Wrap(op, warehouse.KindForbidden, err)
		case gerr.Code == http.StatusTooManyRequests, gerr.Code >= 500:
			return warehouse.Wrap(op, warehouse.KindUnavailable, err)
		}
	}
	return warehouse.Wrap(op, warehouse.KindOf(err), err)
}
