package metrics

import (
	"context"
	"strconv"
	"time"

	"github.com/matzehuels/depforce/pkg/errors"
)

// OnRunStart implements observability.SimulationHooks.
func (r *Registry) OnRunStart(_ string, nodes, _ int) {
	r.RunsStartedTotal.Inc()
	r.RunNodes.Observe(float64(nodes))
}

// OnRunRejected implements observability.SimulationHooks.
func (r *Registry) OnRunRejected(err error) {
	code := string(errors.GetCode(err))
	if code == "" {
		code = "unknown"
	}
	r.RunsRejectedTotal.WithLabelValues(code).Inc()
}

// OnTick implements observability.SimulationHooks.
func (r *Registry) OnTick(_ string, _ int, _ float64, d time.Duration) {
	r.TicksTotal.Inc()
	r.TickDuration.Observe(d.Seconds())
}

// OnSettled implements observability.SimulationHooks.
func (r *Registry) OnSettled(_ string, ticks int, d time.Duration) {
	r.RunsSettledTotal.Inc()
	r.RunTicks.Observe(float64(ticks))
	r.RunDuration.Observe(d.Seconds())
}

// OnFetchStart implements observability.PipelineHooks.
func (r *Registry) OnFetchStart(context.Context, string) {}

// OnFetchComplete implements observability.PipelineHooks.
func (r *Registry) OnFetchComplete(_ context.Context, _ string, nodes int, d time.Duration, err error) {
	r.recordStage("fetch", d, err)
	if err == nil {
		r.FetchedNodes.Observe(float64(nodes))
	}
}

// OnLayoutStart implements observability.PipelineHooks.
func (r *Registry) OnLayoutStart(context.Context, int) {}

// OnLayoutComplete implements observability.PipelineHooks.
func (r *Registry) OnLayoutComplete(_ context.Context, _ int, d time.Duration, err error) {
	r.recordStage("layout", d, err)
}

// OnRenderStart implements observability.PipelineHooks.
func (r *Registry) OnRenderStart(context.Context, []string) {}

// OnRenderComplete implements observability.PipelineHooks.
func (r *Registry) OnRenderComplete(_ context.Context, _ []string, d time.Duration, err error) {
	r.recordStage("render", d, err)
}

func (r *Registry) recordStage(stage string, d time.Duration, err error) {
	r.StagesTotal.WithLabelValues(stage, statusLabel(err)).Inc()
	r.StageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

// OnCacheHit implements observability.CacheHooks.
func (r *Registry) OnCacheHit(_ context.Context, keyType string) {
	r.CacheLookupsTotal.WithLabelValues(keyType, "hit").Inc()
}

// OnCacheMiss implements observability.CacheHooks.
func (r *Registry) OnCacheMiss(_ context.Context, keyType string) {
	r.CacheLookupsTotal.WithLabelValues(keyType, "miss").Inc()
}

// OnCacheSet implements observability.CacheHooks.
func (r *Registry) OnCacheSet(_ context.Context, keyType string, size int) {
	r.CacheWrittenBytes.WithLabelValues(keyType).Add(float64(size))
}

// OnRequest implements observability.HTTPHooks.
func (r *Registry) OnRequest(context.Context, string, string, string) {}

// OnResponse implements observability.HTTPHooks.
func (r *Registry) OnResponse(_ context.Context, method, host, _ string, status int, d time.Duration) {
	r.ClientRequestsTotal.WithLabelValues(method, host, strconv.Itoa(status)).Inc()
	r.ClientRequestDuration.WithLabelValues(method, host).Observe(d.Seconds())
}

// OnError implements observability.HTTPHooks.
func (r *Registry) OnError(_ context.Context, method, host, _ string, _ error) {
	r.ClientErrorsTotal.WithLabelValues(method, host).Inc()
}

// SocketOpened records a new live-view connection.
func (r *Registry) SocketOpened() { r.SocketsOpen.Inc() }

// SocketClosed records a closed live-view connection.
func (r *Registry) SocketClosed() { r.SocketsOpen.Dec() }

// FrameSent records one frame pushed to a live-view client.
func (r *Registry) FrameSent() { r.FramesSentTotal.Inc() }

func statusLabel(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
