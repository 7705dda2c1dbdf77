package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Métricas de dominio. Viven en un paquete aparte para que catalog, access y
// session las usen sin importar internal/http.

var (
	LoginsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "datagate_logins_total",
		Help: "Intentos de login por resultado",
	}, []string{"result"}) // success|failure

	TableQueriesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "datagate_table_queries_total",
		Help: "Consultas de tabla por tipo de resultado",
	}, []string{"kind"}) // live|placeholder|denied|empty

	TableQueryErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "datagate_table_query_errors_total",
		Help: "Errores del warehouse por clasificación",
	}, []string{"kind"})

	TableListLoadsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "datagate_table_list_loads_total",
		Help: "Cargas de la lista de tablas contra el warehouse",
	}, []string{"result"}) // ok|error

	TableQueryLatency = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "datagate_table_query_duration_seconds",
		Help:    "Latencia de queries al warehouse",
		Buckets: prometheus.ExponentialBuckets(0.05, 2, 10),
	})
)

// Register registra las métricas de dominio en reg (o el default si es nil).
func Register(reg prometheus.Registerer) error {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	for _, c := range []prometheus.Collector{
		LoginsTotal, TableQueriesTotal, TableQueryErrorsTotal, TableListLoadsTotal, TableQueryLatency,
	} {
		if err := reg.Register(c); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); !ok {
				return err
			}
		}
	}
	return nil
}
