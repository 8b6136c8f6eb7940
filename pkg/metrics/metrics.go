// Package metrics exposes the service's prometheus instrumentation:
// HTTP, MongoDB and Kafka plumbing plus dispatch pipeline business
// counters.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Config holds metrics configuration
type Config struct {
	ServiceName string
	Namespace   string
}

// DefaultConfig returns a default metrics configuration
func DefaultConfig(serviceName string) *Config {
	return &Config{
		ServiceName: serviceName,
		Namespace:   "dispatch",
	}
}

// Metrics holds all prometheus collectors for the service
type Metrics struct {
	registry *prometheus.Registry

	httpRequestsTotal    *prometheus.CounterVec
	httpRequestDuration  *prometheus.HistogramVec
	httpRequestsInFlight prometheus.Gauge

	mongoOperationsTotal   *prometheus.CounterVec
	mongoOperationDuration *prometheus.HistogramVec

	kafkaPublishTotal    *prometheus.CounterVec
	kafkaPublishDuration *prometheus.HistogramVec

	ordersPunchedTotal    prometheus.Counter
	stageCompletionsTotal *prometheus.CounterVec
	dispatchesTotal       *prometheus.CounterVec
	delayedOrders         prometheus.Gauge
}

// New creates and registers all collectors
func New(config *Config) *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	constLabels := prometheus.Labels{"service": config.ServiceName}

	m := &Metrics{
		registry: registry,
		httpRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Name:        "http_requests_total",
			Help:        "Total HTTP requests processed",
			ConstLabels: constLabels,
		}, []string{"method", "path", "status"}),
		httpRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Name:        "http_request_duration_seconds",
			Help:        "HTTP request latency",
			ConstLabels: constLabels,
			Buckets:     prometheus.DefBuckets,
		}, []string{"method", "path"}),
		httpRequestsInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Name:        "http_requests_in_flight",
			Help:        "HTTP requests currently being served",
			ConstLabels: constLabels,
		}),
		mongoOperationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Name:        "mongodb_operations_total",
			Help:        "Total MongoDB operations",
			ConstLabels: constLabels,
		}, []string{"collection", "operation", "status"}),
		mongoOperationDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Name:        "mongodb_operation_duration_seconds",
			Help:        "MongoDB operation latency",
			ConstLabels: constLabels,
			Buckets:     []float64{.001, .005, .01, .05, .1, .5, 1, 5},
		}, []string{"collection", "operation"}),
		kafkaPublishTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Name:        "kafka_publish_total",
			Help:        "Total Kafka publish attempts",
			ConstLabels: constLabels,
		}, []string{"topic", "status"}),
		kafkaPublishDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Name:        "kafka_publish_duration_seconds",
			Help:        "Kafka publish latency",
			ConstLabels: constLabels,
			Buckets:     []float64{.001, .005, .01, .05, .1, .5, 1},
		}, []string{"topic"}),
		ordersPunchedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Name:        "orders_punched_total",
			Help:        "Orders punched into the pipeline",
			ConstLabels: constLabels,
		}),
		stageCompletionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Name:        "stage_completions_total",
			Help:        "Stage actuals stamped, by stage",
			ConstLabels: constLabels,
		}, []string{"stage"}),
		dispatchesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Name:        "dispatches_total",
			Help:        "Dispatch submissions, by completion",
			ConstLabels: constLabels,
		}, []string{"result"}),
		delayedOrders: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Name:        "delayed_orders",
			Help:        "Orders currently classified as delayed",
			ConstLabels: constLabels,
		}),
	}

	registry.MustRegister(
		m.httpRequestsTotal,
		m.httpRequestDuration,
		m.httpRequestsInFlight,
		m.mongoOperationsTotal,
		m.mongoOperationDuration,
		m.kafkaPublishTotal,
		m.kafkaPublishDuration,
		m.ordersPunchedTotal,
		m.stageCompletionsTotal,
		m.dispatchesTotal,
		m.delayedOrders,
	)

	return m
}

// Handler returns the prometheus scrape handler
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry returns the underlying registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// RecordHTTPRequest records one served request
func (m *Metrics) RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	m.httpRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.httpRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// IncrementHTTPRequestsInFlight bumps the in-flight gauge
func (m *Metrics) IncrementHTTPRequestsInFlight() { m.httpRequestsInFlight.Inc() }

// DecrementHTTPRequestsInFlight drops the in-flight gauge
func (m *Metrics) DecrementHTTPRequestsInFlight() { m.httpRequestsInFlight.Dec() }

// RecordMongoOperation records one MongoDB operation
func (m *Metrics) RecordMongoOperation(collection, operation string, success bool, duration time.Duration) {
	status := "success"
	if !success {
		status = "error"
	}
	m.mongoOperationsTotal.WithLabelValues(collection, operation, status).Inc()
	m.mongoOperationDuration.WithLabelValues(collection, operation).Observe(duration.Seconds())
}

// RecordKafkaPublish records one publish attempt
func (m *Metrics) RecordKafkaPublish(topic string, success bool, duration time.Duration) {
	status := "success"
	if !success {
		status = "error"
	}
	m.kafkaPublishTotal.WithLabelValues(topic, status).Inc()
	m.kafkaPublishDuration.WithLabelValues(topic).Observe(duration.Seconds())
}

// RecordOrderPunched counts a new order entering the pipeline
func (m *Metrics) RecordOrderPunched() {
	m.ordersPunchedTotal.Inc()
}

// RecordStageCompleted counts a stage actual being stamped
func (m *Metrics) RecordStageCompleted(stage string) {
	m.stageCompletionsTotal.WithLabelValues(stage).Inc()
}

// RecordDispatch counts a dispatch submission
func (m *Metrics) RecordDispatch(completed bool) {
	result := "partial"
	if completed {
		result = "completed"
	}
	m.dispatchesTotal.WithLabelValues(result).Inc()
}

// SetDelayedOrders updates the delayed-orders gauge
func (m *Metrics) SetDelayedOrders(count int) {
	m.delayedOrders.Set(float64(count))
}
