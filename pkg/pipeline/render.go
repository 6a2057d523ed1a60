package pipeline

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/archviews/pkg/cache"
	"github.com/matzehuels/archviews/pkg/errors"
	"github.com/matzehuels/archviews/pkg/graph"
	"github.com/matzehuels/archviews/pkg/observability"
	"github.com/matzehuels/archviews/pkg/render/diagram"
	"github.com/matzehuels/archviews/pkg/render/nodelink"
	"github.com/matzehuels/archviews/pkg/workspace"
)

// RenderWithCacheInfo exports a laid-out graph in every requested format and
// reports whether all artifacts came from the cache.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, g *diagram.Graph, l graph.Layout, opts Options) (map[string][]byte, bool, error) {
	r.applyLogger(&opts)
	opts.SetDefaults()
	if err := ValidateFormats(opts.Formats); err != nil {
		return nil, false, err
	}

	// Compute cache key from layout data
	layoutData, err := graph.MarshalLayout(l)
	if err != nil {
		return nil, false, errors.Wrap(errors.ErrCodeInternal, err, "serialize layout for cache key")
	}
	layoutHash := cache.Hash(layoutData)

	// Try to get all formats from cache
	artifacts := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		key := r.Keyer.ArtifactKey(layoutHash, opts.ArtifactKeyOpts(format))
		data, hit, err := r.Cache.Get(ctx, key)
		if err != nil || !hit {
			break
		}
		artifacts[format] = data
	}
	if len(artifacts) == len(opts.Formats) {
		observability.Cache().OnCacheHit(ctx, "artifact")
		return artifacts, true, nil // All artifacts from cache
	}
	observability.Cache().OnCacheMiss(ctx, "artifact")

	// Render all formats
	hooks := observability.Pipeline()
	start := time.Now()
	hooks.OnRenderStart(ctx, opts.Formats)
	rendered, err := RenderFormats(ctx, g, l, opts)
	hooks.OnRenderComplete(ctx, opts.Formats, time.Since(start), err)
	if err != nil {
		return nil, false, err
	}

	// Cache each format
	for format, data := range rendered {
		key := r.Keyer.ArtifactKey(layoutHash, opts.ArtifactKeyOpts(format))
		if err := r.Cache.Set(ctx, key, data, cache.TTLArtifact); err == nil {
			observability.Cache().OnCacheSet(ctx, "artifact", len(data))
		}
	}
	return rendered, false, nil // Cache miss
}

// Render is a convenience wrapper that calls RenderWithCacheInfo and discards the cache hit info.
func (r *Runner) Render(ctx context.Context, g *diagram.Graph, l graph.Layout, opts Options) (map[string][]byte, error) {
	artifacts, _, err := r.RenderWithCacheInfo(ctx, g, l, opts)
	return artifacts, err
}

// RenderFormats renders g in every format of opts without caching. l is the
// serialized form of g, written for the json format and titling the SVG.
// Formats are rendered concurrently; the writers only read g.
func RenderFormats(ctx context.Context, g *diagram.Graph, l graph.Layout, opts Options) (map[string][]byte, error) {
	svgOpts := opts.svgOptions(l.View)
	results := make([][]byte, len(opts.Formats))

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(renderWorkers)
	for i, format := range opts.Formats {
		eg.Go(func() error {
			data, err := renderFormat(ctx, g, l, format, opts.Scale, svgOpts)
			if err != nil {
				if errors.GetCode(err) != "" {
					return err
				}
				return errors.Wrap(errors.ErrCodeExportFailed, err, "render %s", format)
			}
			results[i] = data
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	out := make(map[string][]byte, len(opts.Formats))
	for i, format := range opts.Formats {
		out[format] = results[i]
	}
	return out, nil
}

// renderWorkers bounds concurrent renders; pdf and png each spawn rsvg-convert.
const renderWorkers = 4

func renderFormat(ctx context.Context, g *diagram.Graph, l graph.Layout, format string, scale float64, svgOpts []nodelink.SVGOption) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	switch format {
	case FormatSVG:
		return nodelink.RenderSVG(g, svgOpts...)
	case FormatPDF:
		return nodelink.RenderPDF(ctx, g, svgOpts...)
	case FormatPNG:
		return nodelink.RenderPNG(ctx, g, scale, svgOpts...)
	case FormatDOT:
		return []byte(nodelink.ToDOT(g)), nil
	case FormatJSON:
		return graph.MarshalLayout(l)
	default:
		return nil, ValidateFormat(format)
	}
}

func (o *Options) svgOptions(title string) []nodelink.SVGOption {
	var opts []nodelink.SVGOption
	if title != "" {
		opts = append(opts, nodelink.WithTitle(title))
	}
	if o.Background != "" {
		opts = append(opts, nodelink.WithBackground(o.Background))
	}
	if o.Hover {
		opts = append(opts, nodelink.WithHover())
	}
	return opts
}

// ViewSVG lays out v and renders it as SVG, using the layout and artifact
// caches. The site exporter and the server draw views through it.
func (r *Runner) ViewSVG(ctx context.Context, v *workspace.View, opts Options) ([]byte, error) {
	g, l, err := r.Layout(ctx, v, v.Name, opts)
	if err != nil {
		return nil, err
	}
	opts.Formats = []string{FormatSVG}
	artifacts, err := r.Render(ctx, g, l, opts)
	if err != nil {
		return nil, err
	}
	return artifacts[FormatSVG], nil
}
