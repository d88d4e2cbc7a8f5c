package pipeline

import (
	"context"
	"time"

	"github.com/matzehuels/depforce/pkg/graph"
	"github.com/matzehuels/depforce/pkg/observability"
	"github.com/matzehuels/depforce/pkg/render"
)

// RenderLayout renders l in every requested format.
func RenderLayout(ctx context.Context, l graph.Layout, opts Options) (map[string][]byte, error) {
	if err := opts.ValidateForRender(); err != nil {
		return nil, err
	}

	hooks := observability.Pipeline()
	hooks.OnRenderStart(ctx, opts.Formats)
	start := time.Now()

	artifacts, err := renderAll(ctx, l, opts)
	hooks.OnRenderComplete(ctx, opts.Formats, time.Since(start), err)
	return artifacts, err
}

func renderAll(ctx context.Context, l graph.Layout, opts Options) (map[string][]byte, error) {
	ropts, err := opts.RenderOptions()
	if err != nil {
		return nil, err
	}
	artifacts := make(map[string][]byte, len(opts.Formats))
	for _, name := range opts.Formats {
		f, err := render.ParseFormat(name)
		if err != nil {
			return nil, err
		}
		out, err := render.Render(ctx, l, f, ropts)
		if err != nil {
			return nil, err
		}
		artifacts[name] = out
	}
	return artifacts, nil
}
