package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all application metrics
type Metrics struct {
	// Dispatch metrics
	MessagesDispatched *prometheus.CounterVec
	MessagesFailed     *prometheus.CounterVec
	GatewayChunksSent  *prometheus.CounterVec
	GatewayLatency     *prometheus.HistogramVec
	InvalidRecipients  prometheus.Counter

	// Scheduler metrics
	JobsProcessed    prometheus.Counter
	JobsFailed       prometheus.Counter
	JobLatency       prometheus.Histogram
	JobQueueSize     prometheus.Gauge
	BirthdayRuns     prometheus.Counter
	BirthdayMessages *prometheus.CounterVec

	// Database metrics
	DatabaseOperations *prometheus.CounterVec
}

// New creates and registers all application metrics under the given namespace.
func New(namespace string) *Metrics {
	return &Metrics{
		MessagesDispatched: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_dispatched_total",
			Help:      "Total number of messages dispatched per channel",
		}, []string{"channel"}),
		MessagesFailed: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_failed_total",
			Help:      "Total number of failed message dispatches per channel",
		}, []string{"channel"}),
		GatewayChunksSent: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "gateway_chunks_sent_total",
			Help:      "Total number of chunks/batches sent to providers",
		}, []string{"provider"}),
		GatewayLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "gateway_request_duration_seconds",
			Help:      "Time spent on provider HTTP requests",
			Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5, 10},
		}, []string{"provider"}),
		InvalidRecipients: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "invalid_recipients_total",
			Help:      "Total number of recipients filtered for invalid phone numbers",
		}),
		JobsProcessed: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "scheduled_jobs_processed_total",
			Help:      "Total number of successfully processed scheduled jobs",
		}),
		JobsFailed: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "scheduled_jobs_failed_total",
			Help:      "Total number of failed scheduled jobs",
		}),
		JobLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "scheduled_job_lag_seconds",
			Help:      "Time between a job's deadline and its execution",
			Buckets:   []float64{.1, .5, 1, 5, 15, 60, 300, 900},
		}),
		JobQueueSize: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "scheduled_jobs_pending",
			Help:      "Current number of pending scheduled jobs",
		}),
		BirthdayRuns: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "birthday_job_runs_total",
			Help:      "Total number of birthday job executions",
		}),
		BirthdayMessages: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "birthday_messages_total",
			Help:      "Total number of birthday messages dispatched per channel",
		}, []string{"channel"}),
		DatabaseOperations: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "database_operations_total",
			Help:      "Total number of database operations",
		}, []string{"operation", "status"}),
	}
}
