package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initSimulationMetrics() {
	r.RunsStartedTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "simulation_runs_started_total",
			Help:      "Total number of simulation runs started",
		},
	)

	r.RunsRejectedTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "simulation_runs_rejected_total",
			Help:      "Total number of simulation runs rejected, by error code",
		},
		[]string{"code"},
	)

	r.RunsSettledTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "simulation_runs_settled_total",
			Help:      "Total number of simulation runs that reached the settled state",
		},
	)

	r.TicksTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "simulation_ticks_total",
			Help:      "Total number of simulation ticks applied",
		},
	)

	r.TickDuration = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "simulation_tick_duration_seconds",
			Help:      "Time spent applying one simulation tick",
			Buckets:   prometheus.ExponentialBuckets(0.00001, 4, 10),
		},
	)

	r.RunTicks = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "simulation_run_ticks",
			Help:      "Ticks needed for a run to settle",
			Buckets:   []float64{10, 50, 100, 200, 300, 400, 1000},
		},
	)

	r.RunDuration = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "simulation_run_duration_seconds",
			Help:      "Wall time from run start to settled",
			Buckets:   prometheus.DefBuckets,
		},
	)

	r.RunNodes = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "simulation_run_nodes",
			Help:      "Node count of started runs",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
		},
	)
}

func (r *Registry) initPipelineMetrics() {
	r.StagesTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pipeline_stages_total",
			Help:      "Total number of pipeline stages run, by stage and status",
		},
		[]string{"stage", "status"},
	)

	r.StageDuration = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "pipeline_stage_duration_seconds",
			Help:      "Pipeline stage latency in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"stage"},
	)

	r.FetchedNodes = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "pipeline_fetched_nodes",
			Help:      "Node count of graphs fetched from the analysis endpoint",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
		},
	)
}

func (r *Registry) initCacheMetrics() {
	r.CacheLookupsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_lookups_total",
			Help:      "Total number of cache lookups, by key type and result",
		},
		[]string{"key_type", "result"},
	)

	r.CacheWrittenBytes = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_written_bytes_total",
			Help:      "Total bytes written to the cache, by key type",
		},
		[]string{"key_type"},
	)
}
