package worker

import (
	"fmt"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/push"
	"go.uber.org/zap"
)

const jobName = "persona_agent_worker"

var (
	// Worker metrics live in their own registry so that only they are pushed.
	registry = prometheus.NewRegistry()

	tasksReceived = promauto.With(registry).NewCounter(prometheus.CounterOpts{
		Name: "persona_worker_tasks_received_total",
		Help: "Total number of task messages received.",
	})
	tasksProcessed = promauto.With(registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "persona_worker_tasks_processed_total",
			Help: "Total number of tasks processed, by strategy and result status.",
		},
		[]string{"strategy", "status"},
	)
	tasksRejected = promauto.With(registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "persona_worker_tasks_rejected_total",
			Help: "Total number of task messages dropped without processing.",
		},
		[]string{"reason"}, // error_unmarshal, error_invalid, error_unknown_strategy
	)
	taskDuration = promauto.With(registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "persona_worker_task_duration_seconds",
			Help:    "Duration of task processing.",
			Buckets: prometheus.ExponentialBuckets(0.25, 2, 10), // 0.25s .. ~2m
		},
		[]string{"strategy"},
	)
	publishErrors = promauto.With(registry).NewCounter(prometheus.CounterOpts{
		Name: "persona_worker_publish_result_errors_total",
		Help: "Total number of errors publishing task results.",
	})
)

// MetricsPusher pushes the worker registry to a Prometheus Pushgateway.
// A nil *MetricsPusher is valid and does nothing.
type MetricsPusher struct {
	pusher *push.Pusher
	logger *zap.Logger
}

// NewMetricsPusher returns nil when url is empty.
func NewMetricsPusher(url string, logger *zap.Logger) *MetricsPusher {
	if url == "" {
		return nil
	}
	hostname, err := os.Hostname()
	if err != nil {
		hostname = "unknown"
	}
	instanceID := fmt.Sprintf("%s-%d", hostname, os.Getpid())
	logger.Info("Prometheus pusher initialized", zap.String("url", url), zap.String("instance", instanceID))
	return &MetricsPusher{
		pusher: push.New(url, jobName).Gatherer(registry).Grouping("instance", instanceID),
		logger: logger,
	}
}

// Push sends the current values; failures are logged only.
func (p *MetricsPusher) Push() {
	if p == nil {
		return
	}
	if err := p.pusher.Push(); err != nil {
		p.logger.Error("Failed to push metrics to Pushgateway", zap.Error(err))
		return
	}
	p.logger.Debug("Metrics pushed to Pushgateway")
}

// Delete removes this instance's metrics from the Pushgateway.
func (p *MetricsPusher) Delete() {
	if p == nil {
		return
	}
	if err := p.pusher.Delete(); err != nil {
		p.logger.Error("Failed to delete metrics from Pushgateway", zap.Error(err))
	}
}
