package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/archviews/pkg/cache"
	"github.com/matzehuels/archviews/pkg/render/diagram"
)

// plainFormat is Graphviz's line-oriented geometry output.
const plainFormat graphviz.Format = "plain"

// Engine lays out render graphs with Graphviz: dot for layered settings and
// neato (stress majorization seeded by MDS) for scaling settings.
//
// The raw layout output is cached by a hash of the DOT source, so an
// unchanged view is laid out once.
type Engine struct {
	cache cache.Cache
	keyer cache.Keyer
	ttl   time.Duration
}

// EngineOption configures an [Engine].
type EngineOption func(*Engine)

// WithCache caches layout output in c. A nil keyer uses the default keyer.
func WithCache(c cache.Cache, keyer cache.Keyer) EngineOption {
	return func(e *Engine) {
		e.cache = c
		if keyer != nil {
			e.keyer = keyer
		}
	}
}

// WithTTL sets how long cached layouts stay valid.
func WithTTL(ttl time.Duration) EngineOption { return func(e *Engine) { e.ttl = ttl } }

// NewEngine creates a Graphviz layout engine.
func NewEngine(opts ...EngineOption) *Engine {
	e := &Engine{
		cache: cache.NewNullCache(),
		keyer: cache.NewDefaultKeyer(),
		ttl:   cache.TTLLayout,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Layout implements [diagram.Engine].
func (e *Engine) Layout(ctx context.Context, g *diagram.Graph) error {
	plain, _, err := e.PlainWithCacheInfo(ctx, g)
	if err != nil {
		return err
	}
	return ApplyPlain(g, plain)
}

// PlainWithCacheInfo returns the Graphviz plain output for g and whether it
// came from the cache.
func (e *Engine) PlainWithCacheInfo(ctx context.Context, g *diagram.Graph) ([]byte, bool, error) {
	dot := ToDOT(g)
	prog := Program(g.Settings)
	key := e.keyer.LayoutKey(cache.Hash([]byte(dot)), cache.LayoutKeyOpts{Engine: string(prog)})

	if data, hit, err := e.cache.Get(ctx, key); err == nil && hit {
		return data, true, nil
	}

	data, err := runGraphviz(ctx, dot, prog, plainFormat)
	if err != nil {
		return nil, false, err
	}
	_ = e.cache.Set(ctx, key, data, e.ttl)
	return data, false, nil
}

// RenderNative renders g with Graphviz's own SVG writer instead of the one in
// this package. Useful for comparing output.
func RenderNative(ctx context.Context, g *diagram.Graph) ([]byte, error) {
	svg, err := runGraphviz(ctx, ToDOT(g), Program(g.Settings), graphviz.SVG)
	if err != nil {
		return nil, err
	}
	return normalizeViewBox(svg), nil
}

func runGraphviz(ctx context.Context, dot string, prog graphviz.Layout, format graphviz.Format) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	graph, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer graph.Close()

	var buf bytes.Buffer
	if err := gv.SetLayout(prog).Render(ctx, graph, format, &buf); err != nil {
		return nil, fmt.Errorf("%s layout: %w", prog, err)
	}
	return buf.Bytes(), nil
}

var _ diagram.Engine = (*Engine)(nil)
