package render

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/depforce/pkg/errors"
	"github.com/matzehuels/depforce/pkg/graph"
	"github.com/matzehuels/depforce/pkg/pointer"
)

// pointsPerInch converts layout units to Graphviz inches.
const pointsPerInch = 72.0

// DOTOptions configures ToDOT.
type DOTOptions struct {
	Theme graph.Theme

	// Labels prints node names next to the discs.
	Labels bool
}

// ToDOT converts l to Graphviz DOT with every node pinned at its layout
// position. Graphviz has y growing upward, so y is mirrored inside the
// layout height. Render the result with the neato engine so pins hold.
func ToDOT(l graph.Layout, opts DOTOptions) string {
	t := opts.Theme
	if t.Name == "" {
		t = graph.Dark
	}

	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  layout=neato;\n")
	buf.WriteString("  notranslate=true;\n")
	fmt.Fprintf(&buf, "  bb=\"0,0,%.2f,%.2f\";\n", l.Width, l.Height)
	fmt.Fprintf(&buf, "  bgcolor=%q;\n", t.TooltipBackgroundColor)
	buf.WriteString("  node [shape=circle, style=filled, fixedsize=true, penwidth=0];\n")
	fmt.Fprintf(&buf, "  edge [penwidth=%g, arrowsize=0.6];\n", pointer.EdgeStrokeWidth)
	buf.WriteString("\n")

	for i, n := range l.Nodes {
		p := n.Position()
		r := 0.0
		if i < len(l.Radii) {
			r = l.Radii[i]
		}
		attrs := []string{
			fmt.Sprintf("pos=\"%.2f,%.2f!\"", p.X, l.Height-p.Y),
			fmt.Sprintf("width=%.4f", 2*r/pointsPerInch),
			fmt.Sprintf("fillcolor=%q", t.NodeFill(i, n)),
			fmt.Sprintf("tooltip=%q", pointer.NodeTooltip(n, l.MaxDepth)),
		}
		if opts.Labels {
			attrs = append(attrs, fmt.Sprintf("xlabel=%q", n.Name), fmt.Sprintf("fontcolor=%q", t.TooltipTextColor))
		} else {
			attrs = append(attrs, `label=""`)
		}
		fmt.Fprintf(&buf, "  %q [%s];\n", n.ID, strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, e := range l.Edges {
		c := t.EdgeStroke(e)
		fmt.Fprintf(&buf, "  %q -> %q [color=%q, tooltip=%q];\n", e.SourceID, e.TargetID, c, pointer.EdgeTooltip(e))
	}

	buf.WriteString("}\n")
	return buf.String()
}

// RenderGraphviz renders DOT source with the neato engine in the given
// format (FormatSVG, FormatPNG or FormatJPG).
func RenderGraphviz(ctx context.Context, dot string, format Format) ([]byte, error) {
	var gvFormat graphviz.Format
	switch format {
	case FormatSVG:
		gvFormat = graphviz.SVG
	case FormatPNG:
		gvFormat = graphviz.PNG
	case FormatJPG:
		gvFormat = graphviz.JPG
	default:
		return nil, errors.New(errors.ErrCodeInvalidFormat, "graphviz cannot render %q", format)
	}

	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "init graphviz")
	}
	defer gv.Close()
	gv.SetLayout(graphviz.NEATO)

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse DOT")
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, gvFormat, &buf); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "render %s", format)
	}
	if format == FormatSVG {
		return normalizeViewBox(buf.Bytes()), nil
	}
	return buf.Bytes(), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's pt-sized root element with a
// unitless one so the SVG scales like RenderSVG output.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}
	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}
	root := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" xmlns:xlink="http://www.w3.org/1999/xlink" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`, w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(root))
}
