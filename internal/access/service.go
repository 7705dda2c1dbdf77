// Package access decide qué tablas puede ver cada usuario y ejecuta las
// consultas aplicando sus row filters. Las fallas del warehouse nunca se
// propagan: se convierten en datos de demo etiquetados como Placeholder.
package access

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/dropDatabas3/datagate/internal/catalog"
	"github.com/dropDatabas3/datagate/internal/domain/repository"
	"github.com/dropDatabas3/datagate/internal/metrics"
	"github.com/dropDatabas3/datagate/internal/observability/logger"
	"github.com/dropDatabas3/datagate/internal/warehouse"
	"github.com/dropDatabas3/datagate/internal/warehouse/demo"
)

// Service resuelve acceso y consultas.
type Service struct {
	catalog *catalog.Catalog
	source  Source
	mode    FilterMode
}

// NewService crea el servicio. mode vacío => raw.
func NewService(cat *catalog.Catalog, src Source, mode FilterMode) *Service {
	if mode == "" {
		mode = FilterRaw
	}
	return &Service{catalog: cat, source: src, mode: mode}
}

// Mode devuelve el modo de filtros configurado.
func (s *Service) Mode() FilterMode { return s.mode }

// Live indica si hay warehouse o se opera en modo demo.
func (s *Service) Live() bool { return s.source.Live() }

// Catalog expone el catálogo de tablas.
func (s *Service) Catalog() *catalog.Catalog { return s.catalog }

// ResolveAccessibleTables devuelve las tablas de la allow-list que existen,
// en el orden del usuario. Si el listado falla el resultado es vacío.
func (s *Service) ResolveAccessibleTables(ctx context.Context, u repository.User) []string {
	existing := s.catalog.Available(ctx)
	set := make(map[string]struct{}, len(existing))
	for _, t := range existing {
		set[t] = struct{}{}
	}
	out := []string{}
	for _, t := range u.DataAccess.Tables {
		if _, ok := set[t]; ok {
			out = append(out, t)
		}
	}
	return out
}

// ValidateAccess chequea filtros al guardar. En modo raw sólo aplica la
// regla de que cada filtro tenga su tabla.
func (s *Service) ValidateAccess(access repository.DataAccess) error {
	access = access.Normalize()
	if err := access.Validate(); err != nil {
		return err
	}
	if s.mode != FilterStrict {
		return nil
	}
	for table, f := range access.RowFilters {
		if _, err := ParseFilter(f); err != nil {
			return fmt.Errorf("%w: %s: %v", repository.ErrInvalidInput, table, err)
		}
	}
	return nil
}

// filterFor devuelve el filtro a interpolar para table.
func (s *Service) filterFor(u repository.User, table string) (string, error) {
	raw := u.DataAccess.RowFilters[table]
	if raw == "" || s.mode != FilterStrict {
		return raw, nil
	}
	f, err := ParseFilter(raw)
	if err != nil {
		return "", err
	}
	return f.String(), nil
}

// QueryTable trae hasta RowLimit filas de table para u.
func (s *Service) QueryTable(ctx context.Context, u repository.User, table string) Result {
	log := logger.From(ctx).With(
		logger.Component("access"),
		logger.Username(u.Username),
		logger.Table(table),
	)
	res := s.queryTable(ctx, log, u, table)
	metrics.TableQueriesTotal.WithLabelValues(string(res.Kind)).Inc()
	log.Debug("table query", logger.Outcome(string(res.Kind)))
	return res
}

func (s *Service) queryTable(ctx context.Context, log *zap.Logger, u repository.User, table string) Result {
	res := Result{Table: table, Notices: []Notice{}}

	// 1) allow-list (admin no la mira)
	if !u.IsAdmin() && !u.DataAccess.HasTable(table) {
		res.Kind = KindDenied
		res.Message = fmt.Sprintf("You don't have access to %s.", table)
		return res
	}

	// 2) sin warehouse => demo
	if !s.source.Live() {
		res.notice(LevelWarning, "Warehouse client is not available. Using demo data instead.")
		return placeholder(res, table)
	}

	// 3) formato dataset.table
	if _, _, err := warehouse.SplitTableName(table); err != nil {
		res.notice(LevelError, err.Error())
		return placeholder(res, table)
	}

	// 4) existencia
	exists, err := s.source.TableExists(ctx, table)
	if err != nil {
		log.Warn("table existence check failed", logger.Err(err))
		s.errorNotice(&res, table, err)
		return placeholder(res, table)
	}
	if !exists {
		res.notice(LevelWarning, fmt.Sprintf("Table %s does not exist in the warehouse. Using demo data instead.", table))
		return placeholder(res, table)
	}

	// 5) row filter
	filter, err := s.filterFor(u, table)
	if err != nil {
		log.Warn("row filter rejected", logger.Err(err))
		res.notice(LevelError, fmt.Sprintf("Query error: %v", err))
		return placeholder(res, table)
	}

	// 6) query; sin reintento sin filtro
	data, _, err := s.source.Select(ctx, table, filter)
	if err != nil {
		log.Warn("table query failed", logger.Err(err))
		s.errorNotice(&res, table, err)
		return placeholder(res, table)
	}

	res.Kind = KindLive
	res.Data = data
	if filter != "" && !u.IsAdmin() {
		res.Filter = filter
		res.notice(LevelInfo, fmt.Sprintf("Note: Data is filtered with condition: %s", filter))
	}
	return res
}

// errorNotice traduce un error del warehouse al aviso que ve el usuario.
func (s *Service) errorNotice(res *Result, table string, err error) {
	kind := warehouse.KindOf(err)
	metrics.TableQueryErrorsTotal.WithLabelValues(kind.String()).Inc()

	switch kind {
	case warehouse.KindNotFound:
		res.notice(LevelWarning, fmt.Sprintf("Table %s not found. Using demo data instead.", table))
	case warehouse.KindMalformed:
		res.notice(LevelError, fmt.Sprintf("Query error: %v", unwrapWarehouse(err)))
	case warehouse.KindForbidden:
		res.notice(LevelError, fmt.Sprintf("Access denied to warehouse table: %v", unwrapWarehouse(err)))
	case warehouse.KindUnavailable:
		res.notice(LevelError, fmt.Sprintf("Warehouse unavailable: %v", unwrapWarehouse(err)))
	default:
		res.notice(LevelError, fmt.Sprintf("Error querying table %s: %v", table, unwrapWarehouse(err)))
	}
}

func unwrapWarehouse(err error) error {
	var we *warehouse.Error
	if errors.As(err, &we) && we.Err != nil {
		return we.Err
	}
	return err
}

func placeholder(res Result, table string) Result {
	res.Kind = KindPlaceholder
	res.Data = demo.Data(table)
	return res
}

// Dashboard es la vista inicial de un usuario logueado.
type Dashboard struct {
	Username string          `json:"username"`
	Role     repository.Role `json:"role"`
	Tables   []string        `json:"tables"`
	// Demo indica que Tables son nombres de demo (admin sin tablas reales).
	Demo    bool     `json:"demo"`
	Notices []Notice `json:"notices"`
	// Status se completa cuando el usuario no tiene tablas (Kind Empty).
	Status *Result `json:"status,omitempty"`
	// Sample son datos de demo que se muestran cuando no hay tablas.
	Sample *Result `json:"sample,omitempty"`
}

// BuildDashboard arma la vista según el rol.
func (s *Service) BuildDashboard(ctx context.Context, u repository.User) Dashboard {
	d := Dashboard{Username: u.Username, Role: u.Role, Notices: []Notice{}}

	if u.IsAdmin() {
		if !s.source.Live() {
			d.Notices = append(d.Notices,
				Notice{LevelError, "Warehouse client could not be initialized. Check your credentials."},
				Notice{LevelInfo, "Showing demo data for demonstration purposes."})
		}
		l := s.catalog.AdminListing(ctx)
		d.Tables = l.Tables
		d.Demo = l.Demo
		if l.Demo {
			d.Notices = append(d.Notices,
				Notice{LevelWarning, "No tables found in the warehouse. Check your project and dataset configuration."},
				Notice{LevelInfo, "Showing demo tables for demonstration."})
		}
		return d
	}

	d.Tables = s.ResolveAccessibleTables(ctx, u)
	if len(d.Tables) > 0 {
		return d
	}

	msg := "You don't have access to any data tables."
	if len(u.DataAccess.Tables) > 0 {
		msg = "None of your accessible tables currently exist."
	}
	d.Status = &Result{Kind: KindEmpty, Message: msg, Notices: []Notice{}}
	d.Notices = append(d.Notices,
		Notice{LevelWarning, "You don't have access to any data tables. Please contact an administrator."})
	d.Sample = &Result{
		Kind:    KindPlaceholder,
		Table:   demo.TableNames[0],
		Data:    demo.Data(demo.TableNames[0]),
		Notices: []Notice{{LevelInfo, "This is sample data shown for demonstration purposes only."}},
	}
	metrics.TableQueriesTotal.WithLabelValues(string(KindEmpty)).Inc()
	return d
}
