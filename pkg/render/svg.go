package render

import (
	"bytes"
	"fmt"
	"html"
	"strings"

	"github.com/matzehuels/depforce/pkg/graph"
	"github.com/matzehuels/depforce/pkg/pointer"
)

// Arrow marker geometry, shared by the SVG and the live page.
const (
	markerViewBox = "-0 -5 10 10"
	markerPath    = "M 0,-5 L 10 ,0 L 0,5"
	markerRefX    = 16
	markerSize    = 4
)

// tooltipCSS mirrors the live page's tooltip box.
const tooltipCSS = `
    .node, .link { cursor: pointer; }
    #tooltip { pointer-events: none; }`

// tooltipJS shows the hovered element's data-tooltip text next to the
// pointer, placed by the same rule as pointer.Place.
const tooltipJS = `
    const svg = document.querySelector('svg');
    const vb = svg.viewBox.baseVal;
    const tip = document.getElementById('tooltip');
    const box = tip.querySelector('rect');
    const text = tip.querySelector('text');
    const margin = %g;
    function place(p, size, extent) {
      let v = p + margin;
      if (v + size > extent) v = Math.max(0, p - size - margin);
      return v;
    }
    function show(ev) {
      const lines = ev.target.dataset.tooltip.split('\n');
      text.textContent = '';
      lines.forEach((line, i) => {
        const t = document.createElementNS('http://www.w3.org/2000/svg', 'tspan');
        t.setAttribute('x', 10);
        t.setAttribute('dy', i === 0 ? '1.2em' : '1.3em');
        t.textContent = line;
        text.appendChild(t);
      });
      tip.setAttribute('visibility', 'visible');
      const b = text.getBBox();
      const w = b.width + 20, h = b.height + 20;
      if (!(w > 0 && h > 0)) { tip.setAttribute('visibility', 'hidden'); return; }
      box.setAttribute('width', w);
      box.setAttribute('height', h);
      const m = svg.getScreenCTM().inverse();
      const p = new DOMPoint(ev.clientX, ev.clientY).matrixTransform(m);
      tip.setAttribute('transform', 'translate(' + place(p.x, w, vb.width).toFixed(1) + ',' + place(p.y, h, vb.height).toFixed(1) + ')');
    }
    document.querySelectorAll('[data-tooltip]').forEach(el => {
      el.addEventListener('mouseover', show);
      el.addEventListener('mousemove', show);
      el.addEventListener('mouseout', () => tip.setAttribute('visibility', 'hidden'));
    });`

// SVGOption configures RenderSVG.
type SVGOption func(*svgRenderer)

type svgRenderer struct {
	theme      graph.Theme
	tooltips   bool
	background bool
}

// WithTheme sets the color theme. The default is graph.Dark.
func WithTheme(t graph.Theme) SVGOption { return func(r *svgRenderer) { r.theme = t } }

// WithTooltips embeds the hover tooltip overlay and script.
func WithTooltips() SVGOption { return func(r *svgRenderer) { r.tooltips = true } }

// WithBackground fills the canvas with the theme's tooltip background color,
// which is the page background of the interactive view.
func WithBackground() SVGOption { return func(r *svgRenderer) { r.background = true } }

// RenderSVG draws l as a standalone SVG document.
func RenderSVG(l graph.Layout, opts ...SVGOption) []byte {
	r := svgRenderer{theme: graph.Dark}
	for _, opt := range opts {
		opt(&r)
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.1f %.1f" width="%.0f" height="%.0f" class="depforce theme-%s">`+"\n",
		l.Width, l.Height, l.Width, l.Height, attr(r.theme.Name))

	if r.background {
		fmt.Fprintf(&buf, "  <rect width=\"100%%\" height=\"100%%\" fill=\"%s\"/>\n", attr(r.theme.TooltipBackgroundColor))
	}
	writeMarkers(&buf, r.theme)
	r.writeLinks(&buf, l)
	r.writeNodes(&buf, l)
	if r.tooltips {
		r.writeTooltip(&buf)
	}

	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func writeMarkers(buf *bytes.Buffer, t graph.Theme) {
	buf.WriteString("  <defs>\n")
	for _, m := range t.Markers() {
		fmt.Fprintf(buf, `    <marker id="%s" viewBox="%s" refX="%d" refY="0" orient="auto" markerWidth="%d" markerHeight="%d" overflow="visible">`,
			m[0], markerViewBox, markerRefX, markerSize, markerSize)
		fmt.Fprintf(buf, `<path d="%s" fill="%s"/></marker>`+"\n", markerPath, attr(m[1]))
	}
	buf.WriteString("  </defs>\n")
}

func (r *svgRenderer) writeLinks(buf *bytes.Buffer, l graph.Layout) {
	index := make(map[string]int, len(l.Nodes))
	for i, n := range l.Nodes {
		index[n.ID] = i
	}

	buf.WriteString("  <g class=\"links\">\n")
	for i, e := range l.Edges {
		s, ok1 := index[e.SourceID]
		t, ok2 := index[e.TargetID]
		if !ok1 || !ok2 {
			continue
		}
		a, b := l.Nodes[s].Position(), l.Nodes[t].Position()
		fmt.Fprintf(buf, `    <line class="link" data-index="%d" x1="%.2f" y1="%.2f" x2="%.2f" y2="%.2f" stroke="%s" stroke-width="%g" marker-end="url(#%s)"`,
			i, a.X, a.Y, b.X, b.Y, attr(r.theme.EdgeStroke(e)), pointer.EdgeStrokeWidth, r.theme.ArrowMarker(e))
		r.writeTooltipAttr(buf, pointer.EdgeTooltip(e))
		buf.WriteString("/>\n")
	}
	buf.WriteString("  </g>\n")
}

func (r *svgRenderer) writeNodes(buf *bytes.Buffer, l graph.Layout) {
	maxDepth := l.MaxDepth
	buf.WriteString("  <g class=\"nodes\">\n")
	for i, n := range l.Nodes {
		p := n.Position()
		radius := 0.0
		if i < len(l.Radii) {
			radius = l.Radii[i]
		}
		fmt.Fprintf(buf, `    <circle class="node" id="node-%s" data-index="%d" cx="%.2f" cy="%.2f" r="%.2f" fill="%s"`,
			attr(n.ID), i, p.X, p.Y, radius, attr(r.theme.NodeFill(i, n)))
		r.writeTooltipAttr(buf, pointer.NodeTooltip(n, maxDepth))
		buf.WriteString("/>\n")
	}
	buf.WriteString("  </g>\n")
}

func (r *svgRenderer) writeTooltipAttr(buf *bytes.Buffer, text string) {
	if r.tooltips {
		fmt.Fprintf(buf, ` data-tooltip="%s"`, attr(text))
	}
}

func (r *svgRenderer) writeTooltip(buf *bytes.Buffer) {
	t := r.theme
	buf.WriteString("  <g id=\"tooltip\" visibility=\"hidden\">")
	fmt.Fprintf(buf, `<rect rx="5" ry="5" fill="%s" stroke="%s" stroke-width="1"/>`,
		attr(t.TooltipBackgroundColor), attr(t.TooltipBorderColor))
	fmt.Fprintf(buf, `<text fill="%s" font-family="sans-serif" font-size="14"></text>`, attr(t.TooltipTextColor))
	buf.WriteString("</g>\n")
	fmt.Fprintf(buf, "  <style>%s\n  </style>\n", tooltipCSS)
	fmt.Fprintf(buf, "  <script type=\"text/javascript\"><![CDATA[%s\n  ]]></script>\n", fmt.Sprintf(tooltipJS, pointer.Margin))
}

// attr escapes s for a double-quoted XML attribute; newlines survive as
// character references.
func attr(s string) string {
	return strings.ReplaceAll(html.EscapeString(s), "\n", "&#10;")
}
