package access

import (
	"context"
	"time"

	"github.com/dropDatabas3/datagate/internal/metrics"
	"github.com/dropDatabas3/datagate/internal/warehouse"
	"github.com/dropDatabas3/datagate/internal/warehouse/demo"
)

// Source es de dónde salen las filas de una tabla. Las tablas se nombran
// "dataset.table".
type Source interface {
	// Live es false para la fuente estática de demo.
	Live() bool
	TableExists(ctx context.Context, table string) (bool, error)
	// Select ejecuta BuildSelect y devuelve filas + el SQL usado.
	Select(ctx context.Context, table, filter string) (*warehouse.Table, string, error)
}

// NewSource elige la fuente: live si hay cliente, estática si no.
func NewSource(wh warehouse.Client, timeout time.Duration) Source {
	if wh == nil {
		return staticSource{}
	}
	return liveSource{wh: wh, timeout: timeout}
}

type liveSource struct {
	wh      warehouse.Client
	timeout time.Duration
}

func (liveSource) Live() bool { return true }

func (s liveSource) TableExists(ctx context.Context, table string) (bool, error) {
	dataset, name, err := warehouse.SplitTableName(table)
	if err != nil {
		return false, warehouse.Wrap("table_exists", warehouse.KindMalformed, err)
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	return s.wh.TableExists(ctx, dataset, name)
}

func (s liveSource) Select(ctx context.Context, table, filter string) (*warehouse.Table, string, error) {
	dataset, name, err := warehouse.SplitTableName(table)
	if err != nil {
		return nil, "", warehouse.Wrap("query", warehouse.KindMalformed, err)
	}
	sql := BuildSelect(s.wh.QualifiedName(dataset, name), filter)

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	start := time.Now()
	t, err := s.wh.Query(ctx, sql)
	metrics.TableQueryLatency.Observe(time.Since(start).Seconds())
	return t, sql, err
}

func (s liveSource) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.timeout)
}

// staticSource devuelve siempre datos de demo.
type staticSource struct{}

func (staticSource) Live() bool { return false }

func (staticSource) TableExists(context.Context, string) (bool, error) {
	return false, warehouse.ErrUnavailable
}

func (staticSource) Select(_ context.Context, table, _ string) (*warehouse.Table, string, error) {
	return demo.Data(table), "", nil
}
