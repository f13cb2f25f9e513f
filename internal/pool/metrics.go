package pool

import "github.com/prometheus/client_golang/prometheus"

// metrics is the pool's Prometheus collector: tasks submitted, active
// workers, tasks completed/failed, and batch-drain sizes. It exports no
// queue-depth gauge. It is grounded on
// jinterlante1206-AleutianLocal's use of github.com/prometheus/client_golang
// for service-level instrumentation, applied here to the worker pool.
type metrics struct {
	activeWorkers prometheus.Gauge
	queued        prometheus.Counter
	completed     prometheus.Counter
	failed        prometheus.Counter
	batchSizes    prometheus.Histogram
}

func newMetrics() *metrics {
	return &metrics{
		activeWorkers: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "gridwork",
			Subsystem: "pool",
			Name:      "active_workers",
			Help:      "Number of worker goroutines currently running.",
		}),
		queued: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "gridwork",
			Subsystem: "pool",
			Name:      "tasks_queued_total",
			Help:      "Total number of tasks submitted to the pool.",
		}),
		completed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "gridwork",
			Subsystem: "pool",
			Name:      "tasks_completed_total",
			Help:      "Total number of tasks that completed without error.",
		}),
		failed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "gridwork",
			Subsystem: "pool",
			Name:      "tasks_failed_total",
			Help:      "Total number of tasks that returned an error or panicked.",
		}),
		batchSizes: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "gridwork",
			Subsystem: "pool",
			Name:      "batch_drain_size",
			Help:      "Distribution of the number of tasks drained per batched tryPop.",
			Buckets:   prometheus.LinearBuckets(1, 4, 8),
		}),
	}
}

// Describe implements prometheus.Collector.
func (m *metrics) Describe(ch chan<- *prometheus.Desc) {
	ch <- m.activeWorkers.Desc()
	ch <- m.queued.Desc()
	ch <- m.completed.Desc()
	ch <- m.failed.Desc()
	m.batchSizes.Describe(ch)
}

// Collect implements prometheus.Collector.
func (m *metrics) Collect(ch chan<- prometheus.Metric) {
	ch <- m.activeWorkers
	ch <- m.queued
	ch <- m.completed
	ch <- m.failed
	ch <- m.batchSizes
}
