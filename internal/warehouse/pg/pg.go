// Package pg implementa warehouse.Client sobre PostgreSQL. Un dataset es un
// schema; LoadCSV crea la tabla desde el header (tipos inferidos) y carga con COPY.
package pg

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dropDatabas3/datagate/internal/warehouse"
)

// Client implementa warehouse.Client.
type Client struct{ pool *pgxpool.Pool }

var _ warehouse.Client = (*Client)(nil)

// New abre el pool. Límites conservadores: el dashboard hace pocas queries.
func New(ctx context.Context, dsn string) (*Client, error) {
	pcfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, warehouse.Wrap("connect", warehouse.KindMalformed, err)
	}
	if pcfg.MaxConns == 0 || pcfg.MaxConns > 8 {
		pcfg.MaxConns = 8
	}
	pool, err := pgxpool.NewWithConfig(ctx, pcfg)
	if err != nil {
		return nil, classify("connect", err)
	}
	return &Client{pool: pool}, nil
}

func (c *Client) Dialect() warehouse.Dialect { return warehouse.DialectPostgres }

// CreateDataset crea el schema. location no aplica en Postgres.
func (c *Client) CreateDataset(ctx context.Context, dataset, _ string) error {
	_, err := c.pool.Exec(ctx, "CREATE SCHEMA IF NOT EXISTS "+pgx.Identifier{dataset}.Sanitize())
	return classify("create_dataset", err)
}

func (c *Client) LoadCSV(ctx context.Context, job warehouse.LoadJob) (warehouse.LoadResult, error) {
	res := warehouse.LoadResult{Dataset: job.Dataset, Table: job.Table}

	header, records, err := readCSV(job.Source, job.SkipLeadingRows)
	if err != nil {
		return res, warehouse.Wrap("load", warehouse.KindMalformed, err)
	}
	types := make([]string, len(header))
	for i := range header {
		if job.Autodetect {
			types[i] = inferType(records, i)
		} else {
			types[i] = "TEXT"
		}
	}

	tx, err := c.pool.Begin(ctx)
	if err != nil {
		return res, classify("load", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if _, err := tx.Exec(ctx, createTableSQL(job.Dataset, job.Table, header, types)); err != nil {
		return res, classify("load", err)
	}

	rows := make([][]any, 0, len(records))
	for _, rec := range records {
		row := make([]any, len(header))
		for i := range header {
			row[i] = convert(rec[i], types[i])
		}
		rows = append(rows, row)
	}
	n, err := tx.CopyFrom(ctx, pgx.Identifier{job.Dataset, job.Table}, header, pgx.CopyFromRows(rows))
	if err != nil {
		return res, classify("load", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return res, classify("load", err)
	}
	res.Rows = n
	return res, nil
}

func (c *Client) ListTables(ctx context.Context, dataset string) ([]string, error) {
	rows, err := c.pool.Query(ctx,
		`SELECT table_name FROM information_schema.tables WHERE table_schema = $1 ORDER BY table_name`, dataset)
	if err != nil {
		return nil, classify("list_tables", err)
	}
	names, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, classify("list_tables", err)
	}
	out := make([]string, 0, len(names))
	for _, n := range names {
		out = append(out, dataset+"."+n)
	}
	return out, nil
}

func (c *Client) TableExists(ctx context.Context, dataset, table string) (bool, error) {
	var ok bool
	err := c.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM information_schema.tables WHERE table_schema = $1 AND table_name = $2)`,
		dataset, table).Scan(&ok)
	if err != nil {
		return false, classify("table_exists", err)
	}
	return ok, nil
}

func (c *Client) Query(ctx context.Context, sql string) (*warehouse.Table, error) {
	rows, err := c.pool.Query(ctx, sql)
	if err != nil {
		return nil, classify("query", err)
	}
	defer rows.Close()

	out := &warehouse.Table{Rows: [][]any{}}
	for _, fd := range rows.FieldDescriptions() {
		out.Columns = append(out.Columns, fd.Name)
	}
	for rows.Next() {
		vals, err := rows.Values()
		if err != nil {
			return nil, classify("query", err)
		}
		out.Rows = append(out.Rows, vals)
	}
	if err := rows.Err(); err != nil {
		return nil, classify("query", err)
	}
	return out, nil
}

func (c *Client) Ping(ctx context.Context) error {
	return classify("ping", c.pool.Ping(ctx))
}

func (c *Client) QualifiedName(dataset, table string) string {
	return pgx.Identifier{dataset, table}.Sanitize()
}

// Stat expone el estado del pool para /metrics.
func (c *Client) Stat() *pgxpool.Stat { return c.pool.Stat() }

func (c *Client) Close() error {
	c.pool.Close()
	return nil
}

// readCSV lee todo el CSV. La primera fila saltada se usa como header;
// sin filas a saltar las columnas se nombran c1..cN.
func readCSV(r io.Reader, skip int) ([]string, [][]string, error) {
	cr := csv.NewReader(r)
	all, err := cr.ReadAll()
	if err != nil {
		return nil, nil, err
	}
	if len(all) == 0 {
		return nil, nil, errors.New("empty csv")
	}
	var header []string
	if skip > 0 {
		if skip > len(all) {
			skip = len(all)
		}
		header = all[0]
		all = all[skip:]
	} else {
		for i := range all[0] {
			header = append(header, fmt.Sprintf("c%d", i+1))
		}
	}
	for i, h := range header {
		h = strings.TrimSpace(h)
		if h == "" {
			h = fmt.Sprintf("c%d", i+1)
		}
		header[i] = h
	}
	return header, all, nil
}

func createTableSQL(dataset, table string, cols, types []string) string {
	var b strings.Builder
	b.WriteString("CREATE TABLE IF NOT EXISTS ")
	b.WriteString(pgx.Identifier{dataset, table}.Sanitize())
	b.WriteString(" (")
	for i, c := range cols {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(pgx.Identifier{c}.Sanitize())
		b.WriteString(" ")
		b.WriteString(types[i])
	}
	b.WriteString(")")
	return b.String()
}

// classify mapea SQLSTATE a warehouse.Kind.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case pgErr.Code == "42P01", pgErr.Code == "3F000": // undefined_table, invalid_schema_name
			return warehouse.Wrap(op, warehouse.KindNotFound, err)
		case pgErr.Code == "42501": // insufficient_privilege
			return warehouse.Wrap(op, warehouse.KindForbidden, err)
		case strings.HasPrefix(pgErr.Code, "28"): // invalid authorization
			return warehouse.Wrap(op, warehouse.KindForbidden, err)
		case strings.HasPrefix(pgErr.Code, "42"), strings.HasPrefix(pgErr.Code, "22"):
			return warehouse.Wrap(op, warehouse.KindMalformed, err)
		case strings.HasPrefix(pgErr.Code, "08"), strings.HasPrefix(pgErr.Code, "57"), strings.HasPrefix(pgErr.Code, "53"):
			return warehouse.Wrap(op, warehouse.KindUnavailable, err)
		}
	}
	if pgconn.Timeout(err) {
		return warehouse.Wrap(op, warehouse.KindUnavailable, err)
	}
	return warehouse.Wrap(op, warehouse.KindOf(err), err)
}
