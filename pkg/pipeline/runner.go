package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/archviews/pkg/cache"
	"github.com/matzehuels/archviews/pkg/export/site"
	"github.com/matzehuels/archviews/pkg/render/diagram"
	"github.com/matzehuels/archviews/pkg/render/nodelink"
	"github.com/matzehuels/archviews/pkg/workspace"
)

// Runner encapsulates pipeline execution with caching.
// The CLI commands and the server use it so caching logic lives in one place.
//
// The Runner is stateless except for the cache, the engine and the logger -
// it doesn't store pipeline results. Multiple goroutines can safely use the
// same Runner with different options, each on its own workspace.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger

	// Engine lays out render graphs. Nil means a Graphviz [nodelink.Engine].
	Engine diagram.Engine
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs the complete analyze → view → layout → render pipeline with caching.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	result := &Result{}

	// Stage 1: Analyze
	analyzeStart := time.Now()
	a, analyzeHit, err := r.AnalyzeWithCacheInfo(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("analyze: %w", err)
	}
	m := a.Workspace.Model()
	result.Workspace = a.Workspace
	result.Resolution = a.Resolution
	result.Warnings = a.Warnings
	result.ModelHash = a.Hash
	result.Stats.AnalyzeTime = time.Since(analyzeStart)
	result.Stats.Elements = m.Len()
	result.Stats.Relationships = len(m.Relationships())
	result.Stats.Warnings = len(a.Warnings)
	result.CacheInfo.AnalyzeHit = analyzeHit

	r.Logger.Info("analyzed solution",
		"provider", a.Source.Name,
		"elements", result.Stats.Elements,
		"relationships", result.Stats.Relationships,
		"warnings", result.Stats.Warnings,
		"duration", result.Stats.AnalyzeTime)

	// Stage 2: View
	view, err := BuildView(a.Workspace, opts)
	if err != nil {
		return nil, fmt.Errorf("view: %w", err)
	}
	result.View = view
	result.Stats.ViewElements = view.Len()
	result.Stats.ViewRelationships = len(view.Relationships())

	// Stage 3: Layout
	layoutStart := time.Now()
	g, l, layoutHit, err := r.LayoutWithCacheInfo(ctx, view, view.Name, opts)
	if err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}
	result.Layout = l
	result.Stats.LayoutTime = time.Since(layoutStart)
	result.Stats.Strategy = l.Settings.String()
	result.CacheInfo.LayoutHit = layoutHit

	r.Logger.Info("computed layout",
		"view", view.Name,
		"nodes", g.NodeCount(),
		"edges", g.EdgeCount(),
		"settings", result.Stats.Strategy,
		"duration", result.Stats.LayoutTime)

	// Stage 4: Render
	renderStart := time.Now()
	artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, g, l, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	r.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// ExportSite writes the static site for ws into dir, drawing view and
// element diagrams through [Runner.ViewSVG].
func (r *Runner) ExportSite(ctx context.Context, ws *workspace.Workspace, dir string, siteOpts site.Options, opts Options) (site.Result, error) {
	r.applyLogger(&opts)
	opts.SetDefaults()
	renderer := site.RendererFunc(func(ctx context.Context, v *workspace.View) ([]byte, error) {
		return r.ViewSVG(ctx, v, opts)
	})
	start := time.Now()
	res, err := site.New(renderer, siteOpts).Export(ctx, ws, dir)
	if err != nil {
		return site.Result{}, fmt.Errorf("export site: %w", err)
	}
	r.Logger.Info("exported site",
		"dir", dir,
		"pages", len(res.Pages),
		"diagrams", len(res.Diagrams),
		"duration", time.Since(start))
	return res, nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

func (r *Runner) engine() diagram.Engine {
	if r.Engine != nil {
		return r.Engine
	}
	return nodelink.NewEngine()
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
