package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all scheduling service metrics
type Metrics struct {
	serviceName string
	registry    *prometheus.Registry

	// HTTP metrics
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge

	// Scheduling metrics
	ReflowRunsTotal       *prometheus.CounterVec
	ReflowRunDuration     *prometheus.HistogramVec
	WorkOrdersScheduled   *prometheus.CounterVec
	WorkOrdersFailed      *prometheus.CounterVec
	ScheduleDelayMinutes  *prometheus.HistogramVec
	WorkCenterUtilization *prometheus.GaugeVec
}

// Config holds metrics configuration
type Config struct {
	ServiceName string
	Namespace   string
}

// DefaultConfig returns default metrics configuration
func DefaultConfig(serviceName string) *Config {
	return &Config{
		ServiceName: serviceName,
		Namespace:   "mes",
	}
}

// New creates a new Metrics instance
func New(config *Config) *Metrics {
	registry := prometheus.NewRegistry()

	// Register standard Go metrics
	registry.MustRegister(prometheus.NewGoCollector())
	registry.MustRegister(prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}))

	m := &Metrics{
		serviceName: config.ServiceName,
		registry:    registry,
	}

	// HTTP metrics
	m.HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: config.Namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"service", "method", "path", "status"},
	)

	m.HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: config.Namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"service", "method", "path"},
	)

	m.HTTPRequestsInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Name:        "http_requests_in_flight",
			Help:        "Number of HTTP requests currently being processed",
			ConstLabels: prometheus.Labels{"service": config.ServiceName},
		},
	)

	// Scheduling metrics
	m.ReflowRunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: config.Namespace,
			Name:      "reflow_runs_total",
			Help:      "Total number of reflow scheduling runs",
		},
		[]string{"service", "status"},
	)

	m.ReflowRunDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: config.Namespace,
			Name:      "reflow_run_duration_seconds",
			Help:      "Reflow run duration in seconds",
			Buckets:   []float64{.001, .005, .01, .05, .1, .5, 1, 5, 10, 30},
		},
		[]string{"service"},
	)

	m.WorkOrdersScheduled = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: config.Namespace,
			Name:      "work_orders_scheduled_total",
			Help:      "Total number of work orders successfully scheduled",
		},
		[]string{"service", "changed"},
	)

	m.WorkOrdersFailed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: config.Namespace,
			Name:      "work_orders_failed_total",
			Help:      "Total number of work orders that failed a scheduling run",
		},
		[]string{"service", "code"},
	)

	m.ScheduleDelayMinutes = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: config.Namespace,
			Name:      "schedule_delay_minutes",
			Help:      "Delay introduced per rescheduled work order, in minutes",
			Buckets:   []float64{1, 5, 15, 30, 60, 120, 240, 480, 1440, 4320},
		},
		[]string{"service"},
	)

	m.WorkCenterUtilization = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: config.Namespace,
			Name:      "work_center_utilization_ratio",
			Help:      "Capacity utilization of a work center from the latest run (0-1)",
		},
		[]string{"service", "work_center"},
	)

	// Register all metrics
	registry.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.HTTPRequestsInFlight,
		m.ReflowRunsTotal,
		m.ReflowRunDuration,
		m.WorkOrdersScheduled,
		m.WorkOrdersFailed,
		m.ScheduleDelayMinutes,
		m.WorkCenterUtilization,
	)

	return m
}

// Handler returns an HTTP handler for metrics endpoint
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	})
}

// Registry returns the prometheus registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// RecordHTTPRequest records an HTTP request
func (m *Metrics) RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	statusStr := strconv.Itoa(status)
	m.HTTPRequestsTotal.WithLabelValues(m.serviceName, method, path, statusStr).Inc()
	m.HTTPRequestDuration.WithLabelValues(m.serviceName, method, path).Observe(duration.Seconds())
}

// RecordReflowRun records the outcome of one scheduling run
func (m *Metrics) RecordReflowRun(success bool, duration time.Duration) {
	status := "success"
	if !success {
		status = "failed"
	}
	m.ReflowRunsTotal.WithLabelValues(m.serviceName, status).Inc()
	m.ReflowRunDuration.WithLabelValues(m.serviceName).Observe(duration.Seconds())
}

// RecordWorkOrderScheduled records a successfully placed work order
func (m *Metrics) RecordWorkOrderScheduled(changed bool) {
	m.WorkOrdersScheduled.WithLabelValues(m.serviceName, strconv.FormatBool(changed)).Inc()
}

// RecordWorkOrderFailed records a work order that failed with a violation code
func (m *Metrics) RecordWorkOrderFailed(code string) {
	m.WorkOrdersFailed.WithLabelValues(m.serviceName, code).Inc()
}

// RecordScheduleDelay records the delay introduced for one rescheduled work order
func (m *Metrics) RecordScheduleDelay(minutes int) {
	m.ScheduleDelayMinutes.WithLabelValues(m.serviceName).Observe(float64(minutes))
}

// SetWorkCenterUtilization publishes a work center's utilization from the latest run
func (m *Metrics) SetWorkCenterUtilization(workCenterID string, utilization float64) {
	m.WorkCenterUtilization.WithLabelValues(m.serviceName, workCenterID).Set(utilization)
}

// IncrementHTTPRequestsInFlight increments in-flight requests
func (m *Metrics) IncrementHTTPRequestsInFlight() {
	m.HTTPRequestsInFlight.Inc()
}

// DecrementHTTPRequestsInFlight decrements in-flight requests
func (m *Metrics) DecrementHTTPRequestsInFlight() {
	m.HTTPRequestsInFlight.Dec()
}
