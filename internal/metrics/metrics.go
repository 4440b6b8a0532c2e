// Package metrics exposes Prometheus instruments for reservations and the sweeper.
package metrics

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	domainErrors "github.com/polkiloo/ticketmart/internal/domain/errors"
)

// Metrics groups the instruments recorded by the coordinator and the sweeper.
type Metrics struct {
	Registry *prometheus.Registry

	operations *prometheus.CounterVec
	durations  *prometheus.HistogramVec
	sweeps     *prometheus.CounterVec
	expired    prometheus.Counter
}

// New registers instruments on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,
		operations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ticketmart_operations_total",
				Help: "Reservation operations by outcome",
			},
			[]string{"operation", "result"},
		),
		durations: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "ticketmart_operation_duration_seconds",
				Help:    "Latency of reservation operations including lock wait",
				Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
			},
			[]string{"operation"},
		),
		sweeps: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ticketmart_sweeps_total",
				Help: "Expiration sweep passes by outcome",
			},
			[]string{"result"},
		),
		expired: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "ticketmart_orders_expired_total",
				Help: "Orders expired by the sweeper",
			},
		),
	}
}

// ObserveOperation records the outcome of a coordinator call.
func (m *Metrics) ObserveOperation(op string, started time.Time, err error) {
	m.operations.WithLabelValues(op, Result(err)).Inc()
	m.durations.WithLabelValues(op).Observe(time.Since(started).Seconds())
}

// ObserveSweep records a sweep pass and how many orders it expired.
func (m *Metrics) ObserveSweep(expired int, err error) {
	m.sweeps.WithLabelValues(Result(err)).Inc()
	m.expired.Add(float64(expired))
}

// Result maps an error onto a bounded label value.
func Result(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domainErrors.ErrNotFound):
		return "not_found"
	case errors.Is(err, domainErrors.ErrWrongState):
		return "wrong_state"
	case errors.Is(err, domainErrors.ErrForbidden):
		return "forbidden"
	case errors.Is(err, domainErrors.ErrSelfTrade):
		return "self_trade"
	case errors.Is(err, domainErrors.ErrExpired):
		return "expired"
	case errors.Is(err, domainErrors.ErrDuplicatePayment):
		return "duplicate_payment"
	case errors.Is(err, domainErrors.ErrConflict):
		return "conflict"
	case errors.Is(err, domainErrors.ErrTimeout):
		return "timeout"
	case errors.Is(err, domainErrors.ErrStorageUnavailable):
		return "storage_unavailable"
	default:
		return "error"
	}
}
