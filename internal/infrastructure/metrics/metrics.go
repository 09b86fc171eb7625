// Package metrics expone contadores Prometheus de las operaciones de ciclo de vida.
package metrics

import (
	"errors"
	"net/http"

	"github.com/jhoicas/textile-stock-api/internal/domain"
	"github.com/jhoicas/textile-stock-api/internal/domain/lifecycle"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Resultados posibles de una operación.
const (
	OutcomeOK       = "ok"
	OutcomeNotFound = "not_found"
	OutcomeInvalid  = "invalid"
	OutcomeError    = "error"
)

var _ lifecycle.Recorder = (*Metrics)(nil)

// Metrics registro propio con el contador de operaciones por colección.
type Metrics struct {
	registry   *prometheus.Registry
	operations *prometheus.CounterVec
}

// New crea un registro con las métricas de proceso/Go y el contador de operaciones.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	return &Metrics{
		registry: reg,
		operations: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "stock_lifecycle_operations_total",
			Help: "Operaciones de ciclo de vida por colección, operación y resultado",
		}, []string{"collection", "operation", "outcome"}),
	}
}

// Observe implementa lifecycle.Recorder.
func (m *Metrics) Observe(collection, operation string, err error) {
	m.operations.WithLabelValues(collection, operation, Outcome(err)).Inc()
}

// Outcome clasifica un error de dominio en una etiqueta de baja cardinalidad.
func Outcome(err error) string {
	switch {
	case err == nil:
		return OutcomeOK
	case errors.Is(err, domain.ErrNotFound):
		return OutcomeNotFound
	case errors.Is(err, domain.ErrInvalidInput), errors.Is(err, domain.ErrDuplicate):
		return OutcomeInvalid
	default:
		return OutcomeError
	}
}

// Handler sirve el registro en formato de texto Prometheus.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry acceso al registro (tests).
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
