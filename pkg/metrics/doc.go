// Package metrics exports Prometheus metrics for layout runs, the render
// pipeline, caches and HTTP traffic.
//
// A [Registry] implements every hook interface in
// [github.com/matzehuels/depforce/pkg/observability]; call [Registry.Install]
// to route those hooks into it. Inbound HTTP is measured by
// [Registry.Middleware] and the collected metrics are served by
// [Registry.Handler].
package metrics
