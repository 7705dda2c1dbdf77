// Package catalog mantiene la lista de tablas del dataset configurado.
//
// La lista se cachea con TTL (1h por default) y las cargas concurrentes se
// colapsan con singleflight, así un pico de requests consulta el warehouse
// una sola vez. Los errores no se cachean.
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/dropDatabas3/datagate/internal/cache"
	"github.com/dropDatabas3/datagate/internal/metrics"
	"github.com/dropDatabas3/datagate/internal/observability/logger"
	"github.com/dropDatabas3/datagate/internal/warehouse"
	"github.com/dropDatabas3/datagate/internal/warehouse/demo"
)

// DefaultTTL es el tiempo que se reutiliza una lista cargada.
const DefaultTTL = time.Hour

// Catalog lista las tablas existentes.
type Catalog struct {
	wh      warehouse.Client // nil => sin warehouse
	dataset string
	cache   cache.Client
	ttl     time.Duration
	sf      singleflight.Group
}

// New crea el catálogo. wh puede ser nil (modo demo).
func New(wh warehouse.Client, dataset string, c cache.Client, ttl time.Duration) *Catalog {
	if c == nil {
		c = cache.NewMemory("")
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Catalog{wh: wh, dataset: dataset, cache: c, ttl: ttl}
}

// Dataset devuelve el dataset que se lista.
func (c *Catalog) Dataset() string { return c.dataset }

func (c *Catalog) key() string { return "tables:" + c.dataset }

// Tables devuelve la lista viva. Error si no hay warehouse o si el listado falla.
func (c *Catalog) Tables(ctx context.Context) ([]string, error) {
	if c.wh == nil {
		return nil, warehouse.ErrUnavailable
	}
	if raw, err := c.cache.Get(ctx, c.key()); err == nil {
		var cached []string
		if json.Unmarshal([]byte(raw), &cached) == nil {
			return cached, nil
		}
	}

	v, err, _ := c.sf.Do(c.key(), func() (any, error) {
		return c.load(ctx)
	})
	if err != nil {
		return nil, err
	}
	tables := v.([]string)
	return append([]string(nil), tables...), nil
}

func (c *Catalog) load(ctx context.Context) ([]string, error) {
	log := logger.From(ctx).With(logger.Component("catalog"), logger.Dataset(c.dataset))

	tables, err := c.wh.ListTables(ctx, c.dataset)
	if err != nil {
		metrics.TableListLoadsTotal.WithLabelValues("error").Inc()
		log.Warn("could not fetch tables from warehouse", logger.Err(err))
		return nil, err
	}
	if tables == nil {
		tables = []string{}
	}
	metrics.TableListLoadsTotal.WithLabelValues("ok").Inc()

	if b, err := json.Marshal(tables); err == nil {
		if err := c.cache.Set(ctx, c.key(), string(b), c.ttl); err != nil {
			log.Debug("table list not cached", logger.Err(err))
		}
	}
	log.Debug("table list loaded", logger.Count(len(tables)))
	return tables, nil
}

// Available devuelve la lista viva o vacío si no se pudo listar. Nunca falla.
func (c *Catalog) Available(ctx context.Context) []string {
	tables, err := c.Tables(ctx)
	if err != nil {
		return []string{}
	}
	return tables
}

// Listing es la lista que ve un admin.
type Listing struct {
	Tables []string
	// Demo indica que Tables son los nombres de demo.
	Demo bool
	// Err es el motivo por el que no hay lista viva (nil si simplemente está vacía).
	Err error
}

// AdminListing devuelve la lista viva o, si está vacía o falló, los nombres de demo.
func (c *Catalog) AdminListing(ctx context.Context) Listing {
	tables, err := c.Tables(ctx)
	if err == nil && len(tables) > 0 {
		return Listing{Tables: tables}
	}
	return Listing{
		Tables: append([]string(nil), demo.TableNames...),
		Demo:   true,
		Err:    err,
	}
}

// AdminTables es la lista con la que se inicializa a un admin: la viva o,
// sin warehouse, los nombres de demo.
func (c *Catalog) AdminTables(ctx context.Context) []string {
	return c.AdminListing(ctx).Tables
}

// Invalidate descarta la lista cacheada (por ejemplo después de un ingest).
func (c *Catalog) Invalidate(ctx context.Context) {
	if err := c.cache.Delete(ctx, c.key()); err != nil && !errors.Is(err, cache.ErrNotFound) {
		logger.From(ctx).Warn("catalog invalidate failed", logger.Err(err))
	}
}
