package graph

import (
	"slices"
	"strings"

	"github.com/matzehuels/depforce/pkg/errors"
)

// Theme names.
const (
	ThemeDark  = "dark"
	ThemeLight = "light"
)

// Arrow marker ids referenced by edges in rendered output.
const (
	MarkerArrow         = "arrow"
	MarkerArrowCircular = "arrow-circular"
)

// Theme holds the colors used to classify nodes and edges.
type Theme struct {
	Name                   string   `json:"name" bson:"name"`
	ArrowColors            []string `json:"arrowColors" bson:"arrow_colors"` // [regular, circular]
	CircularEdgeColor      string   `json:"circularEdgeColor" bson:"circular_edge_color"`
	EdgeColor              string   `json:"edgeColor" bson:"edge_color"`
	RootNodeColor          string   `json:"rootNodeColor" bson:"root_node_color"`
	MultipleVersionsColor  string   `json:"multipleVersionsColor" bson:"multiple_versions_color"`
	NodeColor              string   `json:"nodeColor" bson:"node_color"`
	TooltipBorderColor     string   `json:"tooltipBorderColor" bson:"tooltip_border_color"`
	TooltipBackgroundColor string   `json:"tooltipBackgroundColor" bson:"tooltip_background_color"`
	TooltipTextColor       string   `json:"tooltipTextColor" bson:"tooltip_text_color"`
}

// Dark is the default theme.
var Dark = Theme{
	Name:                   ThemeDark,
	ArrowColors:            []string{"#0f0", "#f00"},
	CircularEdgeColor:      "#f00",
	EdgeColor:              "#0f0",
	RootNodeColor:          "#ffa500",
	MultipleVersionsColor:  "#f00",
	NodeColor:              "#fff",
	TooltipBorderColor:     "#ddd",
	TooltipBackgroundColor: "#000",
	TooltipTextColor:       "#fff",
}

// Light differs from Dark only in node and tooltip colors.
var Light = Theme{
	Name:                   ThemeLight,
	ArrowColors:            []string{"#0f0", "#f00"},
	CircularEdgeColor:      "#f00",
	EdgeColor:              "#0f0",
	RootNodeColor:          "#ffa500",
	MultipleVersionsColor:  "#f00",
	NodeColor:              "#000",
	TooltipBorderColor:     "#222",
	TooltipBackgroundColor: "#fff",
	TooltipTextColor:       "#000",
}

// ThemeNames lists the built-in theme names.
var ThemeNames = []string{ThemeDark, ThemeLight}

// ThemeByName returns a built-in theme. The empty name selects Dark.
func ThemeByName(name string) (Theme, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", ThemeDark:
		return Dark, nil
	case ThemeLight:
		return Light, nil
	}
	return Theme{}, errors.New(errors.ErrCodeInvalidTheme, "unknown theme %q (valid: %s)", name, strings.Join(ThemeNames, ", "))
}

// NodeFill returns the fill color for the node at index in its snapshot.
// Root beats conflict, conflict beats default.
func (t Theme) NodeFill(index int, n Node) string {
	switch {
	case index == 0:
		return t.RootNodeColor
	case n.IsMultipleVersions:
		return t.MultipleVersionsColor
	default:
		return t.NodeColor
	}
}

// EdgeStroke returns the stroke color for an edge.
func (t Theme) EdgeStroke(e Edge) string {
	if e.IsCircular {
		return t.CircularEdgeColor
	}
	return t.EdgeColor
}

// ArrowMarker returns the id of the marker drawn at the edge's target end.
func (t Theme) ArrowMarker(e Edge) string {
	if e.IsCircular {
		return MarkerArrowCircular
	}
	return MarkerArrow
}

// Markers pairs each marker id with its fill color.
func (t Theme) Markers() [][2]string {
	colors := slices.Clone(t.ArrowColors)
	for len(colors) < 2 {
		colors = append(colors, t.EdgeColor)
	}
	return [][2]string{
		{MarkerArrow, colors[0]},
		{MarkerArrowCircular, colors[1]},
	}
}
