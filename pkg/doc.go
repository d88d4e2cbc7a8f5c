// Package pkg provides the core libraries for depforce dependency graph layout.
//
// # Overview
//
// depforce takes a dependency graph snapshot produced by an analyzer, settles
// it with a force-directed simulation and draws the result. Roots are pinned
// near the top of the viewport and nodes sink by depth, so the picture reads
// as a dependency hierarchy even though every position is computed by forces.
//
// # Architecture
//
// The typical data flow:
//
//	Analyzer endpoint / JSON file
//	         ↓
//	    [source] package (fetch + retry + cache)
//	         ↓
//	    [sim] package (forces + ticks + controller)
//	         ↓
//	    [render] package (SVG, DOT, HTML, Graphviz)
//	         ↓
//	    [server] package (live frames over WebSocket)
//
// # Quick Start
//
//	data, _ := source.Load(ctx, "graph.json", false)
//	s, _ := sim.New(data, graph.Viewport{Width: 800, Height: 600})
//	s.Settle(1000)
//	svg := render.RenderSVG(s.Layout(), render.WithTheme(graph.Dark))
//
// # Main Packages
//
// [graph] - Graph snapshot, layout and theme types with their JSON encoding.
//
// [force] - Link, charge, collision and centering forces. Charge switches to
// a Barnes-Hut approximation when theta is positive.
//
// [sim] - The tick loop, initial placement, frames and the memoizing
// controller that restarts the simulation only when its inputs change.
//
// [pointer] - Hit testing, hover highlighting and tooltip placement.
//
// [render] - Static output formats built from a settled layout.
//
// [pipeline] - Fetch, layout and render in one place, shared by the CLI and
// the server so both cache and key artifacts the same way.
//
// [cache] - Memory, file, Redis and MongoDB backends behind one interface.
//
// [server] - HTTP API and live WebSocket sessions.
//
// [source]: https://pkg.go.dev/github.com/matzehuels/depforce/pkg/source
// [sim]: https://pkg.go.dev/github.com/matzehuels/depforce/pkg/sim
// [render]: https://pkg.go.dev/github.com/matzehuels/depforce/pkg/render
// [server]: https://pkg.go.dev/github.com/matzehuels/depforce/pkg/server
// [graph]: https://pkg.go.dev/github.com/matzehuels/depforce/pkg/graph
// [force]: https://pkg.go.dev/github.com/matzehuels/depforce/pkg/force
// [pointer]: https://pkg.go.dev/github.com/matzehuels/depforce/pkg/pointer
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/depforce/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/matzehuels/depforce/pkg/cache
package pkg
