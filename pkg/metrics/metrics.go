// Package metrics provides Prometheus instrumentation for poolman components.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Registry holds all metric instances for poolman components.
type Registry struct {
	// Pool Metrics
	PoolThreads *prometheus.GaugeVec
	PoolActive  *prometheus.GaugeVec
	PoolQueued  *prometheus.GaugeVec

	// Instruction Metrics
	InstructionsSubmitted *prometheus.CounterVec
	InstructionsRejected  *prometheus.CounterVec
	InstructionsExecuted  *prometheus.CounterVec
	InstructionsFailed    *prometheus.CounterVec
	InstructionsDropped   *prometheus.CounterVec
	InstructionDuration   *prometheus.HistogramVec
	QueueWaitDuration     *prometheus.HistogramVec

	// Scheduler Metrics
	SchedulerSubmissions *prometheus.CounterVec
	SchedulerFailures    *prometheus.CounterVec

	// Cleanup Metrics
	CleanupKeysEvicted *prometheus.CounterVec
}

// DefaultRegistry is the default metrics registry used by poolman components.
var DefaultRegistry *Registry

func init() {
	DefaultRegistry = NewRegistry(prometheus.DefaultRegisterer)
}

// NewRegistry creates a new metrics registry with the given Prometheus registerer
// under the default namespace.
func NewRegistry(reg prometheus.Registerer) *Registry {
	return NewRegistryWithConfig(Config{Enabled: true, Registry: reg})
}

// NewRegistryWithConfig creates a metrics registry from cfg. An empty
// namespace falls back to DefaultNamespace and a nil registerer to
// prometheus.DefaultRegisterer.
func NewRegistryWithConfig(cfg Config) *Registry {
	namespace := cfg.Namespace
	if namespace == "" {
		namespace = DefaultNamespace
	}
	reg := cfg.Registry
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Registry{
		PoolThreads: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace:   namespace,
				Subsystem:   "threadpool",
				Name:        "threads",
				Help:        "Number of worker threads in the live pool",
				ConstLabels: cfg.Labels,
			},
			[]string{"pool_name"},
		),

		PoolActive: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace:   namespace,
				Subsystem:   "threadpool",
				Name:        "active_workers",
				Help:        "Number of workers currently executing an instruction",
				ConstLabels: cfg.Labels,
			},
			[]string{"pool_name"},
		),

		PoolQueued: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace:   namespace,
				Subsystem:   "threadpool",
				Name:        "queued_instructions",
				Help:        "Number of instructions enqueued but not yet claimed",
				ConstLabels: cfg.Labels,
			},
			[]string{"pool_name"},
		),

		InstructionsSubmitted: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace:   namespace,
				Subsystem:   "threadpool",
				Name:        "instructions_submitted_total",
				Help:        "Total number of instructions accepted into the queue",
				ConstLabels: cfg.Labels,
			},
			[]string{"pool_name"},
		),

		InstructionsRejected: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace:   namespace,
				Subsystem:   "threadpool",
				Name:        "instructions_rejected_total",
				Help:        "Total number of submissions rejected by a closed or missing pool",
				ConstLabels: cfg.Labels,
			},
			[]string{"pool_name"},
		),

		InstructionsExecuted: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace:   namespace,
				Subsystem:   "threadpool",
				Name:        "instructions_executed_total",
				Help:        "Total number of instructions executed",
				ConstLabels: cfg.Labels,
			},
			[]string{"pool_name"},
		),

		InstructionsFailed: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace:   namespace,
				Subsystem:   "threadpool",
				Name:        "instructions_failed_total",
				Help:        "Total number of instructions whose work returned an error or panicked",
				ConstLabels: cfg.Labels,
			},
			[]string{"pool_name"},
		),

		InstructionsDropped: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace:   namespace,
				Subsystem:   "threadpool",
				Name:        "instructions_dropped_total",
				Help:        "Total number of queued instructions discarded at shutdown",
				ConstLabels: cfg.Labels,
			},
			[]string{"pool_name"},
		),

		InstructionDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace:   namespace,
				Subsystem:   "threadpool",
				Name:        "instruction_duration_seconds",
				Help:        "Time spent executing instruction work",
				Buckets:     prometheus.DefBuckets,
				ConstLabels: cfg.Labels,
			},
			[]string{"pool_name"},
		),

		QueueWaitDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace:   namespace,
				Subsystem:   "threadpool",
				Name:        "queue_wait_seconds",
				Help:        "Time an instruction spent queued before a worker claimed it",
				Buckets:     prometheus.DefBuckets,
				ConstLabels: cfg.Labels,
			},
			[]string{"pool_name"},
		),

		SchedulerSubmissions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace:   namespace,
				Subsystem:   "scheduler",
				Name:        "submissions_total",
				Help:        "Total number of scheduled jobs submitted to a pool",
				ConstLabels: cfg.Labels,
			},
			[]string{"scheduler_name"},
		),

		SchedulerFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace:   namespace,
				Subsystem:   "scheduler",
				Name:        "submit_failures_total",
				Help:        "Total number of scheduled jobs the pool refused",
				ConstLabels: cfg.Labels,
			},
			[]string{"scheduler_name"},
		),

		CleanupKeysEvicted: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace:   namespace,
				Subsystem:   "cleanup",
				Name:        "keys_evicted_total",
				Help:        "Total number of cache keys unlinked by evictors",
				ConstLabels: cfg.Labels,
			},
			[]string{"evictor_name"},
		),
	}
}
