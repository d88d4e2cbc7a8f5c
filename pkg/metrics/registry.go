package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/matzehuels/depforce/pkg/observability"
)

// namespace prefixes every metric name.
const namespace = "depforce"

// Registry holds all metrics for the application.
type Registry struct {
	// HTTP server metrics
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge
	SocketsOpen          prometheus.Gauge
	FramesSentTotal      prometheus.Counter

	// Simulation metrics
	RunsStartedTotal  prometheus.Counter
	RunsRejectedTotal *prometheus.CounterVec
	RunsSettledTotal  prometheus.Counter
	TicksTotal        prometheus.Counter
	TickDuration      prometheus.Histogram
	RunTicks          prometheus.Histogram
	RunDuration       prometheus.Histogram
	RunNodes          prometheus.Histogram

	// Pipeline metrics
	StagesTotal   *prometheus.CounterVec
	StageDuration *prometheus.HistogramVec
	FetchedNodes  prometheus.Histogram

	// Cache metrics
	CacheLookupsTotal *prometheus.CounterVec
	CacheWrittenBytes *prometheus.CounterVec

	// Outbound HTTP client metrics
	ClientRequestsTotal   *prometheus.CounterVec
	ClientRequestDuration *prometheus.HistogramVec
	ClientErrorsTotal     *prometheus.CounterVec

	registry *prometheus.Registry
}

var (
	defaultRegistry *Registry
	once            sync.Once
)

// DefaultRegistry returns the process-wide registry.
func DefaultRegistry() *Registry {
	once.Do(func() {
		defaultRegistry = NewRegistry()
	})
	return defaultRegistry
}

// NewRegistry creates a registry with all metrics initialized, plus the
// Go runtime and process collectors.
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	r := &Registry{registry: reg}
	r.initHTTPMetrics()
	r.initSimulationMetrics()
	r.initPipelineMetrics()
	r.initCacheMetrics()
	r.initClientMetrics()
	return r
}

// Prometheus returns the underlying Prometheus registry.
func (r *Registry) Prometheus() *prometheus.Registry {
	return r.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}

// Install routes the global observability hooks into r.
func (r *Registry) Install() {
	observability.SetSimulationHooks(r)
	observability.SetPipelineHooks(r)
	observability.SetCacheHooks(r)
	observability.SetHTTPHooks(r)
}

var (
	_ observability.SimulationHooks = (*Registry)(nil)
	_ observability.PipelineHooks   = (*Registry)(nil)
	_ observability.CacheHooks      = (*Registry)(nil)
	_ observability.HTTPHooks       = (*Registry)(nil)
)
