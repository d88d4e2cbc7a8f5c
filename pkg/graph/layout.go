package graph

import (
	"encoding/json"
	"os"

	"github.com/matzehuels/depforce/pkg/errors"
)

// =============================================================================
// Layout - Settled Simulation Result
// =============================================================================

// Layout is the serialization format for a computed force layout.
//
// Nodes carry their final positions; Radii is parallel to Nodes. The seed
// and tick count are recorded so that the same layout can be reproduced
// by running the simulation again.
type Layout struct {
	GraphHash string  `json:"graph_hash,omitempty" bson:"graph_hash,omitempty"`
	Width     float64 `json:"width" bson:"width"`
	Height    float64 `json:"height" bson:"height"`
	Seed      uint64  `json:"seed" bson:"seed"`
	Ticks     int     `json:"ticks" bson:"ticks"`
	Alpha     float64 `json:"alpha" bson:"alpha"`
	Settled   bool    `json:"settled" bson:"settled"`
	MaxDepth  int     `json:"max_depth" bson:"max_depth"`

	Nodes []Node    `json:"nodes" bson:"nodes"`
	Edges []Edge    `json:"edges" bson:"edges"`
	Radii []float64 `json:"radii" bson:"radii"`
}

// Viewport returns the frame the layout was computed for.
func (l Layout) Viewport() Viewport {
	return Viewport{Width: l.Width, Height: l.Height}
}

// Graph returns the positioned snapshot.
func (l Layout) Graph() GraphData {
	return GraphData{Nodes: l.Nodes, Edges: l.Edges}
}

// Validate checks structural consistency of a decoded layout.
func (l Layout) Validate() error {
	if err := l.Viewport().Validate(); err != nil {
		return err
	}
	if len(l.Radii) != len(l.Nodes) {
		return errors.New(errors.ErrCodeInvalidInput, "layout has %d radii for %d nodes", len(l.Radii), len(l.Nodes))
	}
	for _, n := range l.Nodes {
		if !n.HasPosition() {
			return errors.New(errors.ErrCodeInvalidInput, "layout node %q has no position", n.ID)
		}
	}
	return l.Graph().Validate()
}

// =============================================================================
// Layout Serialization API
// =============================================================================

// MarshalLayout serializes a Layout to pretty-printed JSON bytes.
func MarshalLayout(l Layout) ([]byte, error) {
	return json.MarshalIndent(l, "", "  ")
}

// UnmarshalLayout deserializes and validates a Layout.
func UnmarshalLayout(data []byte) (Layout, error) {
	var l Layout
	if err := json.Unmarshal(data, &l); err != nil {
		return Layout{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "unmarshal layout")
	}
	if err := l.Validate(); err != nil {
		return Layout{}, err
	}
	return l, nil
}

// WriteLayoutFile writes a Layout to a JSON file.
func WriteLayoutFile(l Layout, path string) error {
	data, err := MarshalLayout(l)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ReadLayoutFile reads a Layout from a JSON file.
func ReadLayoutFile(path string) (Layout, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Layout{}, errors.Wrap(errors.ErrCodeFileNotFound, err, "read %s", path)
	}
	return UnmarshalLayout(data)
}
