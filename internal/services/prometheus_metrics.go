package services

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metric names understood by PrometheusMetrics
const (
	MetricAuthenticationEvent = "authentication_event"
	MetricDashboardRequest    = "dashboard_request"
	MetricDashboardDuration   = "dashboard_duration"
	MetricTransactionChange   = "transaction_change"
	MetricEventPublishFailed  = "event_publish_failed"
	MetricRecurringGenerated  = "recurring_generated"
	MetricRecurringDuration   = "recurring_duration"
	MetricRecurringDue        = "recurring_due"
)

type PrometheusMetrics struct {
	authenticationEventsTotal *prometheus.CounterVec
	dashboardRequestsTotal    *prometheus.CounterVec
	dashboardDuration         *prometheus.HistogramVec
	transactionChangesTotal   *prometheus.CounterVec
	eventPublishFailuresTotal prometheus.Counter
	recurringGeneratedTotal   prometheus.Counter
	recurringDuration         prometheus.Histogram
	recurringDue              prometheus.Gauge
}

// NewPrometheusMetrics registers the application collectors with reg.
// A nil reg uses the default registerer.
func NewPrometheusMetrics(reg prometheus.Registerer) MetricsRecorderInterface {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &PrometheusMetrics{
		authenticationEventsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "authentication_events_total",
				Help: "Total number of authentication events",
			},
			[]string{"event_type"},
		),
		dashboardRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dashboard_requests_total",
				Help: "Total number of dashboard aggregations by view and status",
			},
			[]string{"view", "status"},
		),
		dashboardDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "dashboard_duration_milliseconds",
				Help:    "Dashboard aggregation duration in milliseconds",
				Buckets: prometheus.ExponentialBuckets(1, 2, 12),
			},
			[]string{"view"},
		),
		transactionChangesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "transaction_changes_total",
				Help: "Total number of transaction writes by operation",
			},
			[]string{"operation"},
		),
		eventPublishFailuresTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "event_publish_failures_total",
				Help: "Total number of transaction events that could not be published",
			},
		),
		recurringGeneratedTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "recurring_transactions_generated_total",
				Help: "Total number of transactions materialised from recurring schedules",
			},
		),
		recurringDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "recurring_run_duration_seconds",
				Help:    "Duration of a recurring processor run in seconds",
				Buckets: prometheus.DefBuckets,
			},
		),
		recurringDue: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "recurring_transactions_due",
				Help: "Number of recurring schedules found due in the last run",
			},
		),
	}
}

func (m *PrometheusMetrics) IncrementCounter(name string, tags map[string]string) {
	switch name {
	case MetricAuthenticationEvent:
		if eventType := tags["event_type"]; eventType != "" {
			m.authenticationEventsTotal.WithLabelValues(eventType).Inc()
		}
	case MetricDashboardRequest:
		m.dashboardRequestsTotal.WithLabelValues(tags["view"], tags["status"]).Inc()
	case MetricTransactionChange:
		if operation := tags["operation"]; operation != "" {
			m.transactionChangesTotal.WithLabelValues(operation).Inc()
		}
	case MetricEventPublishFailed:
		m.eventPublishFailuresTotal.Inc()
	case MetricRecurringGenerated:
		m.recurringGeneratedTotal.Inc()
	}
}

func (m *PrometheusMetrics) RecordProcessingTime(name string, duration time.Duration) {
	switch name {
	case MetricRecurringDuration:
		m.recurringDuration.Observe(duration.Seconds())
	default:
		// dashboard views are recorded as "dashboard_duration.<view>"
		if view, ok := dashboardView(name); ok {
			m.dashboardDuration.WithLabelValues(view).Observe(float64(duration.Milliseconds()))
		}
	}
}

func (m *PrometheusMetrics) RecordGauge(name string, value float64, tags map[string]string) {
	switch name {
	case MetricRecurringDue:
		m.recurringDue.Set(value)
	}
}

func dashboardView(name string) (string, bool) {
	prefix := MetricDashboardDuration + "."
	if len(name) <= len(prefix) || name[:len(prefix)] != prefix {
		return "", false
	}
	return name[len(prefix):], true
}
