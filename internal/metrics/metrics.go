// Package metrics exposes the run's Prometheus counters/gauges/histograms,
// promauto-registered at package init the way a long-running service registers
// its HTTP/DB/cache metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Scheduler metrics (§4.10, §5).
	TimestampsAccepted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pm25_timestamps_accepted_total",
		Help: "Total number of timestamps that passed the completeness filter and were scheduled",
	})

	TimestampsCompleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pm25_timestamps_completed_total",
		Help: "Total number of timestamps whose IDW/aggregation task completed successfully",
	})

	TimestampsFailed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pm25_timestamps_failed_total",
		Help: "Total number of timestamps whose task failed, by reason",
	}, []string{"reason"})

	TaskDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pm25_task_duration_seconds",
			Help:    "Duration of a single per-timestamp IDW+aggregation task",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"stage"},
	)

	ActiveWorkers = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "pm25_active_workers",
		Help: "Number of worker goroutines currently processing a timestamp",
	})

	// Error-taxonomy counters (§7), one per recoverable apperr.Kind.
	InsufficientDataWarnings = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pm25_insufficient_data_warnings_total",
		Help: "Total number of timestamps dropped for failing the S_min completeness threshold",
	})

	TaskFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pm25_task_failures_total",
		Help: "Total number of per-timestamp task failures",
	})

	IOErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pm25_io_errors_total",
		Help: "Total number of output write failures",
	})

	// Loader/validator counters (§4.1).
	SensorsExcluded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pm25_sensors_excluded_total",
		Help: "Total number of sensor_ids that never got a valid, in-bbox coordinate and were dropped entirely",
	})

	SensorCoordinateMismatches = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pm25_sensor_coordinate_mismatches_total",
		Help: "Total number of rows for an already-known sensor_id whose coordinates disagreed with the first one kept",
	})

	RowsExcluded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pm25_rows_excluded_total",
		Help: "Total number of measurement rows dropped by the loader",
	})

	// Checkpoint cache (§4.12).
	CheckpointHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pm25_checkpoint_hits_total",
		Help: "Total number of timestamps served from the checkpoint cache instead of recomputed",
	})

	CheckpointMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pm25_checkpoint_misses_total",
		Help: "Total number of timestamps not found in the checkpoint cache",
	})

	// Run information.
	RunInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "pm25_run_info",
			Help: "Static information about the current run",
		},
		[]string{"interval", "k", "p", "date_from", "date_to"},
	)
)

// SetRunInfo records the elected run parameters as a single always-1 gauge.
func SetRunInfo(interval, k, p, dateFrom, dateTo string) {
	RunInfo.WithLabelValues(interval, k, p, dateFrom, dateTo).Set(1)
}
