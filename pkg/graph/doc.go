// Package graph provides the data model shared by every depforce component.
//
// A [GraphData] is the immutable input snapshot for one layout run: an ordered
// list of [Node] records and an ordered list of [Edge] records that reference
// nodes by id. The JSON shape matches what the dependency analyzer serves:
//
//	{
//	  "nodesList": [{"id": "app@1.0.0", "name": "app", "depth": 2, ...}],
//	  "edgesList": [{"sourceId": "app@1.0.0", "targetId": "lib@2.1.0", ...}]
//	}
//
// # Identity
//
// Node ids are unique within a snapshot and the first node is the designated
// root. Edges are plain id references, never owned pointers, so graphs with
// cycles (see [Edge.IsCircular]) need no special lifetime handling. Call
// [GraphData.Index] once per run to resolve ids to positions in Nodes.
//
// # Validation
//
// [GraphData.Validate] rejects snapshots whose edges reference unknown ids.
// The error carries the MALFORMED_GRAPH code; a layout run must not start
// on such data.
//
// # Themes
//
// [Theme] holds the colors used to classify nodes and edges. The node fill
// precedence is fixed: index 0 is the root color, otherwise a node with
// multiple versions gets the conflict color, otherwise the default color.
//
// # Layouts
//
// [Layout] is the serialized result of a settled simulation: positioned nodes,
// radii, edges and the parameters that produced them. It is what the cache
// stores and what `depforce layout` writes.
package graph
