// Package render draws force layouts.
//
// # Overview
//
//   - [RenderSVG]: a standalone SVG of a [graph.Layout]: arrow markers,
//     themed edges and nodes, and an optional tooltip overlay script
//   - [ToDOT] / [RenderGraphviz]: Graphviz export with node positions pinned,
//     rendered in-process by go-graphviz to SVG, PNG or JPG
//   - [LivePage]: the HTML page served by depforce serve; it receives frames
//     over a websocket and redraws on every tick
//
// [Render] dispatches on a [Format] name for the CLI and server.
//
// Drawing order matches the interactive view: edges first, nodes on top,
// so pointer hit testing in pkg/pointer and the page script agree on which
// element is under the pointer.
package render
