package pointer

import (
	"fmt"
	"strings"

	"github.com/matzehuels/depforce/pkg/graph"
)

// NodeTooltip returns the node tooltip lines joined by newlines. Depth is
// shown counted from the leaves: maxDepth - depth.
func NodeTooltip(n graph.Node, maxDepth int) string {
	return strings.Join(NodeTooltipLines(n, maxDepth), "\n")
}

// NodeTooltipLines returns the node tooltip one field per line.
func NodeTooltipLines(n graph.Node, maxDepth int) []string {
	return []string{
		"Name: " + n.Name,
		"Version: " + n.Version,
		fmt.Sprintf("Depth: %d", maxDepth-n.Depth),
		"Description: " + n.Description,
		"Dir: " + n.Dir,
	}
}

// EdgeTooltip returns the edge tooltip lines joined by newlines.
func EdgeTooltip(e graph.Edge) string {
	return strings.Join(EdgeTooltipLines(e), "\n")
}

// EdgeTooltipLines returns the edge tooltip one field per line.
func EdgeTooltipLines(e graph.Edge) []string {
	return []string{"Source: " + e.SourceID, "Target: " + e.TargetID}
}
