package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/depforce/pkg/pipeline"
)

// layoutFlags are shared by every command that settles a layout. Config
// values apply unless a flag is set explicitly.
type layoutFlags struct {
	width     float64
	height    float64
	seed      uint64
	placement string
	maxTicks  int
	refresh   bool
	noCache   bool
}

func (f *layoutFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.Float64Var(&f.width, "width", pipeline.DefaultWidth, "viewport width")
	fs.Float64Var(&f.height, "height", pipeline.DefaultHeight, "viewport height")
	fs.Uint64Var(&f.seed, "seed", pipeline.DefaultSeed, "placement and tie-break seed")
	fs.StringVar(&f.placement, "placement", pipeline.DefaultPlacement, "initial placement: phyllotaxis, random")
	fs.IntVar(&f.maxTicks, "max-ticks", 0, "stop after this many ticks (0: until settled)")
	fs.BoolVar(&f.refresh, "refresh", false, "bypass cached analyzer responses and layouts")
	fs.BoolVar(&f.noCache, "no-cache", false, "disable caching")
	registerLayoutCompletions(cmd)
}

func (f *layoutFlags) apply(cmd *cobra.Command, opts *pipeline.Options) {
	fs := cmd.Flags()
	if fs.Changed("width") {
		opts.Width = f.width
	}
	if fs.Changed("height") {
		opts.Height = f.height
	}
	if fs.Changed("seed") {
		opts.Seed = f.seed
	}
	if fs.Changed("placement") {
		opts.Placement = f.placement
	}
	if fs.Changed("max-ticks") {
		opts.MaxTicks = f.maxTicks
	}
	opts.Refresh = f.refresh
}

// renderFlags select the artifacts to produce.
type renderFlags struct {
	output   string
	formats  string
	theme    string
	tooltips bool
	labels   bool
}

func (f *renderFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVarP(&f.output, "output", "o", "", "output file (single format) or base path (multiple)")
	fs.StringVarP(&f.formats, "format", "f", "", "output format(s): svg (default), html, dot, png, jpg, json (comma-separated)")
	fs.StringVar(&f.theme, "theme", "dark", "color theme: dark, light")
	fs.BoolVar(&f.tooltips, "tooltips", false, "embed node and edge tooltips in SVG output")
	fs.BoolVar(&f.labels, "labels", false, "label nodes in DOT and image output")
	registerRenderCompletions(cmd)
}

func (f *renderFlags) apply(cmd *cobra.Command, opts *pipeline.Options) {
	fs := cmd.Flags()
	if fs.Changed("format") {
		opts.Formats = parseFormats(f.formats)
	}
	if fs.Changed("theme") {
		opts.Theme = f.theme
	}
	if fs.Changed("tooltips") {
		opts.Tooltips = f.tooltips
	}
	if fs.Changed("labels") {
		opts.Labels = f.labels
	}
}
