// Package warehousetest provee un warehouse.Client en memoria para tests.
package warehousetest

import (
	"context"
	"io"
	"sort"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/dropDatabas3/datagate/internal/warehouse"
)

// Fake implementa warehouse.Client. Los campos *Err fuerzan fallas.
type Fake struct {
	mu sync.Mutex

	// Tables son los nombres calificados existentes.
	Tables []string
	// Results por SQL exacto; si no hay match se usa Default.
	Results map[string]*warehouse.Table
	Default *warehouse.Table

	ListErr   error
	ExistsErr error
	QueryErr  error
	PingErr   error
	LoadErr   error

	// Registro de llamadas
	Queries    []string
	ListCalls  atomic.Int64
	Datasets   []string
	LoadedCSV  string
	LoadedRows int64
}

var _ warehouse.Client = (*Fake)(nil)

func (f *Fake) Dialect() warehouse.Dialect { return warehouse.DialectBigQuery }

func (f *Fake) CreateDataset(_ context.Context, dataset, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Datasets = append(f.Datasets, dataset)
	return nil
}

func (f *Fake) LoadCSV(_ context.Context, job warehouse.LoadJob) (warehouse.LoadResult, error) {
	if f.LoadErr != nil {
		return warehouse.LoadResult{}, f.LoadErr
	}
	b, err := io.ReadAll(job.Source)
	if err != nil {
		return warehouse.LoadResult{}, err
	}
	lines := strings.Split(strings.TrimRight(string(b), "\n"), "\n")
	n := int64(len(lines) - job.SkipLeadingRows)
	if n < 0 {
		n = 0
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.LoadedCSV = string(b)
	f.LoadedRows = n
	name := job.Dataset + "." + job.Table
	found := false
	for _, t := range f.Tables {
		if t == name {
			found = true
		}
	}
	if !found {
		f.Tables = append(f.Tables, name)
	}
	return warehouse.LoadResult{Dataset: job.Dataset, Table: job.Table, Rows: n}, nil
}

func (f *Fake) ListTables(_ context.Context, dataset string) ([]string, error) {
	f.ListCalls.Add(1)
	if f.ListErr != nil {
		return nil, f.ListErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, t := range f.Tables {
		if strings.HasPrefix(t, dataset+".") {
			out = append(out, t)
		}
	}
	sort.Strings(out)
	return out, nil
}

func (f *Fake) TableExists(_ context.Context, dataset, table string) (bool, error) {
	if f.ExistsErr != nil {
		return false, f.ExistsErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, t := range f.Tables {
		if t == dataset+"."+table {
			return true, nil
		}
	}
	return false, nil
}

func (f *Fake) Query(_ context.Context, sql string) (*warehouse.Table, error) {
	f.mu.Lock()
	f.Queries = append(f.Queries, sql)
	f.mu.Unlock()
	if f.QueryErr != nil {
		return nil, f.QueryErr
	}
	if t, ok := f.Results[sql]; ok {
		return t, nil
	}
	if f.Default != nil {
		return f.Default, nil
	}
	return &warehouse.Table{Rows: [][]any{}}, nil
}

func (f *Fake) Ping(context.Context) error { return f.PingErr }

func (f *Fake) QualifiedName(dataset, table string) string {
	return "`proj." + dataset + "." + table + "`"
}

func (f *Fake) Close() error { return nil }

// LastQuery devuelve el último SQL ejecutado ("" si ninguno).
func (f *Fake) LastQuery() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.Queries) == 0 {
		return ""
	}
	return f.Queries[len(f.Queries)-1]
}
