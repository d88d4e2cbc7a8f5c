package graph

import (
	"bytes"
	"encoding/json"
	"io"
	"os"

	"github.com/matzehuels/depforce/pkg/errors"
)

// =============================================================================
// Graph Serialization API
// =============================================================================

// MarshalGraph converts a snapshot to indented JSON bytes.
func MarshalGraph(g GraphData) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteGraph(&buf, g); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteGraph writes a snapshot as JSON to an io.Writer.
func WriteGraph(w io.Writer, g GraphData) error {
	if g.Nodes == nil {
		g.Nodes = []Node{}
	}
	if g.Edges == nil {
		g.Edges = []Edge{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(g); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "encode graph")
	}
	return nil
}

// WriteGraphFile writes a snapshot to a JSON file.
func WriteGraphFile(g GraphData, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidPath, err, "create %s", path)
	}
	defer f.Close()
	return WriteGraph(f, g)
}

// ReadGraph decodes a snapshot from an io.Reader and validates it.
// Decode failures are INVALID_INPUT, broken references MALFORMED_GRAPH.
func ReadGraph(r io.Reader) (GraphData, error) {
	var g GraphData
	if err := json.NewDecoder(r).Decode(&g); err != nil {
		return GraphData{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode graph")
	}
	if g.Nodes == nil {
		g.Nodes = []Node{}
	}
	if g.Edges == nil {
		g.Edges = []Edge{}
	}
	if err := g.Validate(); err != nil {
		return GraphData{}, err
	}
	return g, nil
}

// UnmarshalGraph decodes and validates a snapshot from bytes.
func UnmarshalGraph(data []byte) (GraphData, error) {
	return ReadGraph(bytes.NewReader(data))
}

// ReadGraphFile reads and validates a snapshot from a JSON file.
func ReadGraphFile(path string) (GraphData, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return GraphData{}, errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", path)
	}
	if err != nil {
		return GraphData{}, errors.Wrap(errors.ErrCodeInvalidPath, err, "open %s", path)
	}
	defer f.Close()
	return ReadGraph(f)
}
