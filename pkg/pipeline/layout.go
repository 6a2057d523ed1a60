package pipeline

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/matzehuels/archviews/pkg/cache"
	"github.com/matzehuels/archviews/pkg/errors"
	"github.com/matzehuels/archviews/pkg/graph"
	"github.com/matzehuels/archviews/pkg/observability"
	"github.com/matzehuels/archviews/pkg/render/diagram"
	"github.com/matzehuels/archviews/pkg/render/nodelink"
)

// LayoutWithCacheInfo adapts src, lays it out and reports whether the
// geometry came from the cache. name labels the layout (usually the view
// name).
//
// The cache key is the hash of the decorated graph's DOT source plus the
// options that change geometry after the engine ran, so restyling a view
// invalidates its layout.
func (r *Runner) LayoutWithCacheInfo(ctx context.Context, src diagram.Source, name string, opts Options) (*diagram.Graph, graph.Layout, bool, error) {
	r.applyLogger(&opts)
	opts.SetDefaults()
	if err := opts.ValidateForLayout(); err != nil {
		return nil, graph.Layout{}, false, err
	}

	conv := opts.Converter(r.engine())
	adapted, err := conv.Adapt(src)
	if err != nil {
		return nil, graph.Layout{}, false, layoutError(err)
	}
	cacheKey := r.Keyer.LayoutKey(cache.Hash([]byte(nodelink.ToDOT(adapted))), opts.LayoutKeyOpts(adapted.Settings))

	// Try cache first
	if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
		if l, err := graph.UnmarshalLayout(data); err == nil {
			if g, err := graph.ToDiagram(l); err == nil {
				observability.Cache().OnCacheHit(ctx, "layout")
				return g, l, true, nil
			}
		}
		// If deserialization fails, fall through to recompute
	}
	observability.Cache().OnCacheMiss(ctx, "layout")

	hooks := observability.Pipeline()
	start := time.Now()
	hooks.OnLayoutStart(ctx, name, adapted.NodeCount(), adapted.EdgeCount())
	g, err := conv.Convert(ctx, src)
	hooks.OnLayoutComplete(ctx, name, adapted.Settings.String(), time.Since(start), err)
	if err != nil {
		return nil, graph.Layout{}, false, layoutError(err)
	}
	opts.Logger.Debug("laid out view", "view", name, "settings", g.Settings, "nodes", g.NodeCount(), "edges", g.EdgeCount())

	l := graph.FromDiagram(name, g)
	if data, err := graph.MarshalLayout(l); err == nil {
		if err := r.Cache.Set(ctx, cacheKey, data, cache.TTLLayout); err == nil {
			observability.Cache().OnCacheSet(ctx, "layout", len(data))
		}
	}
	return g, l, false, nil
}

// Layout is a convenience wrapper that calls LayoutWithCacheInfo and discards the cache hit info.
func (r *Runner) Layout(ctx context.Context, src diagram.Source, name string, opts Options) (*diagram.Graph, graph.Layout, error) {
	g, l, _, err := r.LayoutWithCacheInfo(ctx, src, name, opts)
	return g, l, err
}

// layoutError maps adapter and engine failures to error codes.
func layoutError(err error) error {
	var dup *diagram.DuplicateAliasError
	switch {
	case stderrors.As(err, &dup):
		return errors.Wrap(errors.ErrCodeDuplicateAlias, err, "adapt view")
	case stderrors.Is(err, context.Canceled), stderrors.Is(err, context.DeadlineExceeded):
		return errors.Wrap(errors.ErrCodeTimeout, err, "layout")
	default:
		return errors.Wrap(errors.ErrCodeLayoutFailed, err, "layout")
	}
}
