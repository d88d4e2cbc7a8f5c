// Package pipeline runs the fetch → layout → render pipeline shared by the
// CLI and the server.
//
// # Stages
//
//  1. Fetch: read a dependency snapshot from the analyzer or a JSON file
//  2. Layout: run the force simulation until it settles
//  3. Render: produce SVG, HTML, DOT, PNG, JPG or JSON output
//
// Each stage can be run on its own. [Runner] adds caching: settled layouts
// are keyed by graph hash, viewport, seed and force parameters, and
// artifacts by layout hash, format and theme.
//
// # Usage
//
//	runner := pipeline.NewRunner(c, nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    Source:  "graph.json",
//	    Formats: []string{"svg"},
//	})
//	if err != nil {
//	    return err
//	}
//	svg := result.Artifacts["svg"]
package pipeline

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/depforce/internal/validation"
	"github.com/matzehuels/depforce/pkg/cache"
	"github.com/matzehuels/depforce/pkg/force"
	"github.com/matzehuels/depforce/pkg/graph"
	"github.com/matzehuels/depforce/pkg/render"
	"github.com/matzehuels/depforce/pkg/sim"
	"github.com/matzehuels/depforce/pkg/source"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and Server
// =============================================================================

const (
	// DefaultWidth is the default viewport width.
	DefaultWidth = 800.0

	// DefaultHeight is the default viewport height.
	DefaultHeight = 600.0

	// DefaultSeed is the default placement and tie-break seed.
	DefaultSeed = sim.DefaultSeed

	// DefaultPlacement seeds unplaced nodes on a phyllotaxis spiral.
	DefaultPlacement = string(sim.PlacementPhyllotaxis)
)

// DefaultFormats is rendered when no format is requested.
var DefaultFormats = []string{string(render.FormatSVG)}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for a pipeline run. It decodes from
// JSON request bodies.
type Options struct {
	// Fetch options
	Source  string `json:"source,omitempty"` // file path or URL; empty means source.DefaultEndpoint
	Refresh bool   `json:"refresh,omitempty"`

	// Layout options
	Width     float64       `json:"width,omitempty" validate:"gte=0,finite"`
	Height    float64       `json:"height,omitempty" validate:"gte=0,finite"`
	Seed      uint64        `json:"seed,omitempty"`
	Placement string        `json:"placement,omitempty" validate:"omitempty,oneof=phyllotaxis random"`
	MaxTicks  int           `json:"max_ticks,omitempty" validate:"gte=0"`
	Params    *force.Params `json:"params,omitempty"` // nil means force.DefaultParams

	// Render options
	Formats  []string `json:"formats,omitempty" validate:"dive,oneof=svg html dot png jpg json"`
	Theme    string   `json:"theme,omitempty" validate:"omitempty,oneof=dark light"`
	Tooltips bool     `json:"tooltips,omitempty"`
	Labels   bool     `json:"labels,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-" validate:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Graph is the fetched snapshot.
	Graph graph.GraphData

	// GraphHash is the content hash of the snapshot.
	GraphHash string

	// Layout is the settled layout.
	Layout graph.Layout

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	NodeCount  int
	EdgeCount  int
	FetchTime  time.Duration
	LayoutTime time.Duration
	RenderTime time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	LayoutHit bool // Whether the layout came from cache
	RenderHit bool // Whether all artifacts came from cache
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults applies defaults and validates every field. It is
// idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	o.SetLayoutDefaults()
	o.SetRenderDefaults()
	if err := o.Validate(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// Validate checks field ranges without applying defaults.
func (o *Options) Validate() error {
	return validation.Struct(o)
}

// SetLayoutDefaults fills unset layout fields.
func (o *Options) SetLayoutDefaults() {
	if o.Width == 0 {
		o.Width = DefaultWidth
	}
	if o.Height == 0 {
		o.Height = DefaultHeight
	}
	if o.Seed == 0 {
		o.Seed = DefaultSeed
	}
	if o.Placement == "" {
		o.Placement = DefaultPlacement
	}
	if o.Params == nil {
		p := force.DefaultParams()
		o.Params = &p
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForLayout applies layout defaults and validates.
func (o *Options) ValidateForLayout() error {
	o.SetLayoutDefaults()
	return o.Validate()
}

// SetRenderDefaults fills unset render fields.
func (o *Options) SetRenderDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = append([]string(nil), DefaultFormats...)
	}
	if o.Theme == "" {
		o.Theme = graph.ThemeDark
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForRender applies render defaults and validates.
func (o *Options) ValidateForRender() error {
	o.SetRenderDefaults()
	return o.Validate()
}

// SourceRef returns the snapshot location, defaulting to the analyzer.
func (o *Options) SourceRef() string {
	if o.Source == "" {
		return source.DefaultEndpoint
	}
	return o.Source
}

// Viewport returns the layout frame.
func (o *Options) Viewport() graph.Viewport {
	return graph.Viewport{Width: o.Width, Height: o.Height}
}

// SimOptions converts the layout options into simulation options.
func (o *Options) SimOptions() []sim.Option {
	opts := []sim.Option{
		sim.WithSeed(o.Seed),
		sim.WithPlacement(sim.Placement(o.Placement)),
		sim.WithLogger(o.Logger),
	}
	if o.Params != nil {
		opts = append(opts, sim.WithParams(*o.Params))
	}
	return opts
}

// RenderOptions converts the render options for pkg/render.
func (o *Options) RenderOptions() (render.Options, error) {
	theme, err := graph.ThemeByName(o.Theme)
	if err != nil {
		return render.Options{}, err
	}
	return render.Options{Theme: theme, Tooltips: o.Tooltips, Labels: o.Labels}, nil
}

// LayoutKeyOpts returns cache key options for layout computation.
func (o *Options) LayoutKeyOpts() cache.LayoutKeyOpts {
	return cache.LayoutKeyOpts{
		Width:     o.Width,
		Height:    o.Height,
		Seed:      o.Seed,
		Placement: o.Placement,
		MaxTicks:  o.MaxTicks,
		Params:    o.Params,
	}
}

// ArtifactKeyOpts returns cache key options for artifact rendering.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	k := cache.ArtifactKeyOpts{Format: format, Theme: o.Theme, Tooltips: o.Tooltips, Labels: o.Labels}
	switch render.Format(format) {
	case render.FormatPNG, render.FormatJPG:
		k.Engine = "neato"
	}
	return k
}
