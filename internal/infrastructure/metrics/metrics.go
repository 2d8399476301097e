package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/shopspring/decimal"

	"github.com/iho/textileledger/internal/domain"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Ledger metrics
	MovementsRecorded *prometheus.CounterVec
	MovementQuantity  *prometheus.HistogramVec
	MovementsRejected *prometheus.CounterVec
	BalanceResets     *prometheus.CounterVec

	// API metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec
	HTTPInFlight prometheus.Gauge

	// Authentication metrics
	AuthFailures *prometheus.CounterVec

	// Rate limiting metrics
	RateLimitHits prometheus.Counter

	// Outbox metrics
	EventsPublished *prometheus.CounterVec
}

// New creates and registers all Prometheus metrics with the default registerer.
func New() *Metrics {
	return NewWithRegisterer(prometheus.DefaultRegisterer)
}

// NewWithRegisterer creates and registers all Prometheus metrics with reg.
func NewWithRegisterer(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		// Ledger metrics
		MovementsRecorded: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "textileledger_movements_recorded_total",
				Help: "Total movements recorded by ledger and direction",
			},
			[]string{"kind", "direction"},
		),
		MovementQuantity: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "textileledger_movement_quantity",
				Help:    "Recorded movement quantities",
				Buckets: []float64{1, 10, 50, 100, 500, 1000, 5000, 10000},
			},
			[]string{"kind", "direction"},
		),
		MovementsRejected: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "textileledger_movements_rejected_total",
				Help: "Total movements rejected by ledger and reason",
			},
			[]string{"kind", "reason"},
		),
		BalanceResets: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "textileledger_balance_resets_total",
				Help: "Total balance resets by ledger",
			},
			[]string{"kind"},
		),

		// API metrics
		HTTPRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "textileledger_http_requests_total",
				Help: "Total HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "textileledger_http_duration_seconds",
				Help:    "HTTP request duration",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		HTTPInFlight: factory.NewGauge(prometheus.GaugeOpts{
			Name: "textileledger_http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		}),

		// Authentication metrics
		AuthFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "textileledger_auth_failures_total",
				Help: "Total authentication failures",
			},
			[]string{"reason"},
		),

		// Rate limiting metrics
		RateLimitHits: factory.NewCounter(prometheus.CounterOpts{
			Name: "textileledger_rate_limit_hits_total",
			Help: "Total requests rejected by the rate limiter",
		}),

		// Outbox metrics
		EventsPublished: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "textileledger_events_published_total",
				Help: "Total outbox events published by type",
			},
			[]string{"event_type"},
		),
	}
}

// MovementRecorded implements usecase.LedgerMetrics.
func (m *Metrics) MovementRecorded(kind domain.ItemKind, direction domain.Direction, quantity decimal.Decimal) {
	m.MovementsRecorded.WithLabelValues(string(kind), string(direction)).Inc()
	m.MovementQuantity.WithLabelValues(string(kind), string(direction)).Observe(quantity.InexactFloat64())
}

// MovementRejected implements usecase.LedgerMetrics.
func (m *Metrics) MovementRejected(kind domain.ItemKind, reason string) {
	m.MovementsRejected.WithLabelValues(string(kind), reason).Inc()
}

// BalanceReset implements usecase.LedgerMetrics.
func (m *Metrics) BalanceReset(kind domain.ItemKind) {
	m.BalanceResets.WithLabelValues(string(kind)).Inc()
}

// EventPublished counts a published outbox event.
func (m *Metrics) EventPublished(eventType string) {
	m.EventsPublished.WithLabelValues(eventType).Inc()
}
