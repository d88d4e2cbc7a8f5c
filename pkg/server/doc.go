// Package server hosts the live layout view.
//
// The HTTP surface is a chi router:
//
//	GET  /                    interactive page
//	GET  /ws                  websocket stream of layout frames
//	GET  /api/graph           current snapshot (?refresh=1 refetches)
//	GET  /api/layout          settled layout of the current snapshot
//	POST /api/layout          settled layout of the posted snapshot
//	GET  /api/render.{format} rendered layout (svg, html, dot, png, jpg, json)
//	GET  /metrics             Prometheus metrics
//	GET  /healthz             liveness
//
// # Live protocol
//
// The page sends {"type":"viewport","width":W,"height":H,"theme":"dark"}
// on open, on resize and on color scheme changes, and {"type":"refresh"}
// to refetch the snapshot. Each connection owns a [sim.Controller]: a new
// run starts only when the snapshot or viewport changes, and a theme change
// redraws without restarting. The server answers with:
//
//	{"type":"scene", "run_id", "theme", "nodes", "edges", "radii", "max_depth", "width", "height"}
//	{"type":"frame", "frame": {...}}   one per tick, paced to Config.MaxFPS
//	{"type":"theme", "theme": {...}}
//	{"type":"error", "code", "message"}
//
// A scene always precedes the frames of its run.
package server
