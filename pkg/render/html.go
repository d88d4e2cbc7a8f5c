package render

import (
	"bytes"
	"html/template"

	"github.com/matzehuels/depforce/pkg/errors"
	"github.com/matzehuels/depforce/pkg/graph"
	"github.com/matzehuels/depforce/pkg/pointer"
)

var staticTmpl = template.Must(template.New("static").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
  html, body { margin: 0; background: {{.Theme.TooltipBackgroundColor}}; }
  svg { display: block; max-width: 100vw; height: auto; }
</style>
</head>
<body>
{{.SVG}}
</body>
</html>
`))

// StaticPage wraps the tooltip-enabled SVG of l in an HTML document.
func StaticPage(l graph.Layout, theme graph.Theme) ([]byte, error) {
	svg := RenderSVG(l, WithTheme(theme), WithBackground(), WithTooltips())
	var buf bytes.Buffer
	err := staticTmpl.Execute(&buf, struct {
		Title string
		Theme graph.Theme
		SVG   template.HTML
	}{"depforce", theme, template.HTML(svg)})
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "render page")
	}
	return buf.Bytes(), nil
}

// PageOptions configures LivePage.
type PageOptions struct {
	Title string
	// SocketPath is the websocket path relative to the page origin.
	SocketPath string
	// Themes are offered to the page; it picks one by prefers-color-scheme.
	Themes []graph.Theme
}

var liveTmpl = template.Must(template.New("live").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
  html, body { margin: 0; height: 100%; overflow: hidden; font-family: sans-serif; }
  #graph svg { display: block; }
  #status { position: fixed; left: 8px; bottom: 6px; font-size: 12px; opacity: 0.6; }
  #tooltip { display: none; position: fixed; box-sizing: border-box; padding: 10px; border-radius: 5px; white-space: pre-line; pointer-events: none; }
</style>
</head>
<body>
<div id="graph" data-testid="graph"></div>
<div id="tooltip" data-testid="tooltip"></div>
<div id="status"></div>
<script>
const THEMES = {{.Themes}};
const STROKE = {{.Stroke}};
const MARKER = {{.Marker}};
const SOCKET = {{.SocketPath}};
const NS = 'http://www.w3.org/2000/svg';

let ws, scene = null, theme = null, circles = [], lines = [];
const graphEl = document.getElementById('graph');
const tip = document.getElementById('tooltip');
const statusEl = document.getElementById('status');
const dark = window.matchMedia('(prefers-color-scheme: dark)');

function themeName() { return dark.matches ? 'dark' : 'light'; }

// Hover hit testing, tooltip text and placement run on the server against
// the latest frame. The page only measures the tooltip box.
let hoverAt = null, hoverQueued = false, sentSize = null;

function measure(text) {
  tip.textContent = text;
  tip.style.visibility = 'hidden';
  tip.style.display = 'block';
  const r = tip.getBoundingClientRect();
  return {width: r.width, height: r.height};
}

function sendHover(size) {
  if (!hoverAt || !ws || ws.readyState !== WebSocket.OPEN) return;
  sentSize = size;
  ws.send(JSON.stringify({type: 'hover', x: hoverAt.x, y: hoverAt.y, tooltip_width: size.width, tooltip_height: size.height}));
}

function hover(ev) {
  hoverAt = {x: ev.clientX, y: ev.clientY};
  if (hoverQueued) return;
  hoverQueued = true;
  requestAnimationFrame(() => {
    hoverQueued = false;
    sendHover(measure(tip.textContent || ' '));
  });
}

function hideTooltip() {
  tip.style.display = 'none';
  tip.style.visibility = 'hidden';
}

function showTooltip(t) {
  if (!hoverAt || !t.visible) { hideTooltip(); return; }
  const size = measure(t.text);
  if (sentSize && (Math.abs(size.width - sentSize.width) > 0.5 || Math.abs(size.height - sentSize.height) > 0.5)) {
    // Placed for a different box; ask again with the real size.
    sendHover(size);
    return;
  }
  tip.style.left = t.x + 'px';
  tip.style.top = t.y + 'px';
  tip.style.visibility = 'visible';
}

function fill(i, n) {
  if (i === 0) return theme.rootNodeColor;
  if (n.isMultipleVersions) return theme.multipleVersionsColor;
  return theme.nodeColor;
}

function applyTheme() {
  if (!scene || !theme) return;
  document.body.style.background = theme.tooltipBackgroundColor;
  statusEl.style.color = theme.tooltipTextColor;
  tip.style.border = '1px solid ' + theme.tooltipBorderColor;
  tip.style.background = theme.tooltipBackgroundColor;
  tip.style.color = theme.tooltipTextColor;
  const colors = theme.arrowColors || [];
  document.querySelectorAll('marker path').forEach((p, i) => p.setAttribute('fill', colors[i] || theme.edgeColor));
  lines.forEach((l, i) => {
    const e = scene.edges[i];
    l.setAttribute('stroke', e.isCircular ? theme.circularEdgeColor : theme.edgeColor);
  });
  circles.forEach((c, i) => c.setAttribute('fill', fill(i, scene.nodes[i])));
}

function build(msg) {
  scene = msg;
  graphEl.textContent = '';
  const svg = document.createElementNS(NS, 'svg');
  svg.setAttribute('width', msg.width);
  svg.setAttribute('height', msg.height);
  const defs = document.createElementNS(NS, 'defs');
  ['arrow', 'arrow-circular'].forEach(id => {
    const m = document.createElementNS(NS, 'marker');
    m.setAttribute('id', id);
    m.setAttribute('viewBox', MARKER.viewBox);
    m.setAttribute('refX', MARKER.refX);
    m.setAttribute('refY', 0);
    m.setAttribute('orient', 'auto');
    m.setAttribute('markerWidth', MARKER.size);
    m.setAttribute('markerHeight', MARKER.size);
    const p = document.createElementNS(NS, 'path');
    p.setAttribute('d', MARKER.path);
    m.appendChild(p);
    defs.appendChild(m);
  });
  svg.appendChild(defs);

  const index = new Map(msg.nodes.map((n, i) => [n.id, i]));
  const lg = document.createElementNS(NS, 'g');
  lines = msg.edges.map(e => {
    const l = document.createElementNS(NS, 'line');
    l.setAttribute('stroke-width', STROKE);
    l.setAttribute('marker-end', 'url(#' + (e.isCircular ? 'arrow-circular' : 'arrow') + ')');
    l.dataset.s = index.get(e.sourceId);
    l.dataset.t = index.get(e.targetId);
    lg.appendChild(l);
    return l;
  });
  svg.appendChild(lg);

  const ng = document.createElementNS(NS, 'g');
  circles = msg.nodes.map((n, i) => {
    const c = document.createElementNS(NS, 'circle');
    c.setAttribute('r', msg.radii[i]);
    ng.appendChild(c);
    return c;
  });
  svg.appendChild(ng);
  svg.addEventListener('mousemove', hover);
  svg.addEventListener('mouseleave', () => { hoverAt = null; hideTooltip(); });
  graphEl.appendChild(svg);
  applyTheme();
}

function draw(f) {
  if (!scene || f.run_id !== scene.run_id) return;
  const pos = f.positions;
  circles.forEach((c, i) => { c.setAttribute('cx', pos[i].x); c.setAttribute('cy', pos[i].y); });
  lines.forEach(l => {
    const s = pos[+l.dataset.s], t = pos[+l.dataset.t];
    l.setAttribute('x1', s.x); l.setAttribute('y1', s.y);
    l.setAttribute('x2', t.x); l.setAttribute('y2', t.y);
  });
  statusEl.textContent = f.state + ' · tick ' + f.tick + ' · alpha ' + f.alpha.toFixed(4);
}

function send() {
  if (!ws || ws.readyState !== WebSocket.OPEN) return;
  ws.send(JSON.stringify({type: 'viewport', width: window.innerWidth, height: window.innerHeight, theme: themeName()}));
}

function connect() {
  const proto = location.protocol === 'https:' ? 'wss://' : 'ws://';
  ws = new WebSocket(proto + location.host + SOCKET);
  ws.onopen = send;
  ws.onmessage = ev => {
    const msg = JSON.parse(ev.data);
    switch (msg.type) {
      case 'scene': theme = msg.theme; build(msg); break;
      case 'frame': draw(msg.frame); break;
      case 'theme': theme = msg.theme; applyTheme(); break;
      case 'tooltip': showTooltip(msg.tooltip); break;
      case 'error': statusEl.textContent = msg.code + ': ' + msg.message; break;
    }
  };
  ws.onclose = () => { statusEl.textContent = 'disconnected, retrying'; setTimeout(connect, 2000); };
}

let resizeTimer;
window.addEventListener('resize', () => { clearTimeout(resizeTimer); resizeTimer = setTimeout(send, 250); });
dark.addEventListener('change', send);
theme = THEMES[themeName()];
connect();
</script>
</body>
</html>
`))

type markerSpec struct {
	ViewBox string `json:"viewBox"`
	Path    string `json:"path"`
	RefX    int    `json:"refX"`
	Size    int    `json:"size"`
}

// LivePage renders the interactive page served at /.
func LivePage(opts PageOptions) ([]byte, error) {
	if opts.Title == "" {
		opts.Title = "depforce"
	}
	if opts.SocketPath == "" {
		opts.SocketPath = "/ws"
	}
	if len(opts.Themes) == 0 {
		opts.Themes = []graph.Theme{graph.Dark, graph.Light}
	}
	// The page script indexes THEMES by name.
	themes := make(map[string]graph.Theme, len(opts.Themes))
	for _, t := range opts.Themes {
		themes[t.Name] = t
	}

	var buf bytes.Buffer
	err := liveTmpl.Execute(&buf, map[string]any{
		"Title":      opts.Title,
		"SocketPath": opts.SocketPath,
		"Themes":     themes,
		"Stroke":     pointer.EdgeStrokeWidth,
		"Marker":     markerSpec{ViewBox: markerViewBox, Path: markerPath, RefX: markerRefX, Size: markerSize},
	})
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "render page")
	}
	return buf.Bytes(), nil
}
