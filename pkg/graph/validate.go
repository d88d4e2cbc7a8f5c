package graph

import (
	"github.com/matzehuels/depforce/pkg/errors"
)

// Validate checks the snapshot invariants a layout run depends on:
// non-empty unique node ids, non-negative depths, and edges whose
// endpoints exist. Violations are MALFORMED_GRAPH errors.
//
// Duplicate edges and self loops are allowed.
func (g GraphData) Validate() error {
	_, err := g.Index()
	return err
}

// Index resolves node ids to their position in Nodes, validating the
// snapshot along the way. Build it once per run.
func (g GraphData) Index() (map[string]int, error) {
	index := make(map[string]int, len(g.Nodes))
	for i, n := range g.Nodes {
		if n.ID == "" {
			return nil, errors.New(errors.ErrCodeMalformedGraph, "node %d: empty id", i)
		}
		if n.Depth < 0 {
			return nil, errors.New(errors.ErrCodeMalformedGraph, "node %q: negative depth %d", n.ID, n.Depth)
		}
		if prev, dup := index[n.ID]; dup {
			return nil, errors.New(errors.ErrCodeMalformedGraph, "node %q: duplicate id (first seen at %d, again at %d)", n.ID, prev, i)
		}
		index[n.ID] = i
	}
	for i, e := range g.Edges {
		if _, ok := index[e.SourceID]; !ok {
			return nil, errors.New(errors.ErrCodeMalformedGraph, "edge %d: unknown source id %q", i, e.SourceID)
		}
		if _, ok := index[e.TargetID]; !ok {
			return nil, errors.New(errors.ErrCodeMalformedGraph, "edge %d: unknown target id %q", i, e.TargetID)
		}
	}
	return index, nil
}
