// Package metrics exposes Prometheus instrumentation for the notification
// pipeline.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	notificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notifications_total",
			Help: "Total notification delivery attempts labeled by kind, channel, and status",
		},
		[]string{"kind", "channel", "status"},
	)
	taskDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "notification_task_duration_seconds",
			Help:    "Duration of notification task executions in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"task_type"},
	)
	tasksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notification_tasks_total",
			Help: "Total notification task executions labeled by task type and status",
		},
		[]string{"task_type", "status"},
	)
	batchRecipients = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notification_batch_recipients_total",
			Help: "Total recipients processed by batch jobs labeled by job",
		},
		[]string{"job"},
	)
)

// RecordNotification increments the delivery attempt counter.
func RecordNotification(kind, channel, status string) {
	if status == "" {
		status = "unknown"
	}

	notificationsTotal.WithLabelValues(kind, channel, status).Inc()
}

// RecordTask records one task execution with its outcome and duration.
func RecordTask(taskType, status string, duration time.Duration) {
	if taskType == "" {
		taskType = "unknown"
	}
	if status == "" {
		status = "unknown"
	}

	tasksTotal.WithLabelValues(taskType, status).Inc()
	taskDurationSeconds.WithLabelValues(taskType).Observe(duration.Seconds())
}

// RecordBatchRecipients counts recipients handled by a batch job run.
func RecordBatchRecipients(job string, count int) {
	if count <= 0 {
		return
	}

	batchRecipients.WithLabelValues(job).Add(float64(count))
}
