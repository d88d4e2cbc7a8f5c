package render

import (
	"context"
	"slices"
	"strings"

	"github.com/matzehuels/depforce/pkg/errors"
	"github.com/matzehuels/depforce/pkg/graph"
)

// Format names an output format.
type Format string

// Output formats.
const (
	FormatSVG  Format = "svg"
	FormatHTML Format = "html"
	FormatDOT  Format = "dot"
	FormatPNG  Format = "png"
	FormatJPG  Format = "jpg"
	FormatJSON Format = "json"
)

// Formats lists every supported format.
var Formats = []Format{FormatSVG, FormatHTML, FormatDOT, FormatPNG, FormatJPG, FormatJSON}

// ParseFormat normalizes a format name; "jpeg" is accepted for jpg.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	if f == "jpeg" {
		f = FormatJPG
	}
	if !slices.Contains(Formats, f) {
		return "", errors.New(errors.ErrCodeInvalidFormat, "unknown format %q", s)
	}
	return f, nil
}

// Ext returns the file extension for f, including the dot.
func (f Format) Ext() string { return "." + string(f) }

// ContentType returns the MIME type served for f.
func (f Format) ContentType() string {
	switch f {
	case FormatSVG:
		return "image/svg+xml"
	case FormatHTML:
		return "text/html; charset=utf-8"
	case FormatDOT:
		return "text/vnd.graphviz; charset=utf-8"
	case FormatPNG:
		return "image/png"
	case FormatJPG:
		return "image/jpeg"
	default:
		return "application/json"
	}
}

// Options configures Render.
type Options struct {
	Theme    graph.Theme
	Tooltips bool
	Labels   bool
}

// Render produces l in format f. SVG and HTML are drawn natively; PNG and
// JPG go through Graphviz with pinned positions.
func Render(ctx context.Context, l graph.Layout, f Format, opts Options) ([]byte, error) {
	if opts.Theme.Name == "" {
		opts.Theme = graph.Dark
	}
	svgOpts := []SVGOption{WithTheme(opts.Theme), WithBackground()}
	if opts.Tooltips {
		svgOpts = append(svgOpts, WithTooltips())
	}

	switch f {
	case FormatSVG:
		return RenderSVG(l, svgOpts...), nil
	case FormatHTML:
		return StaticPage(l, opts.Theme)
	case FormatDOT:
		return []byte(ToDOT(l, DOTOptions{Theme: opts.Theme, Labels: opts.Labels})), nil
	case FormatPNG, FormatJPG:
		return RenderGraphviz(ctx, ToDOT(l, DOTOptions{Theme: opts.Theme, Labels: opts.Labels}), f)
	case FormatJSON:
		return graph.MarshalLayout(l)
	default:
		return nil, errors.New(errors.ErrCodeInvalidFormat, "unknown format %q", f)
	}
}
