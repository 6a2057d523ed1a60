package diagram

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/matzehuels/archviews/pkg/model"
	"github.com/matzehuels/archviews/pkg/render/layout"
)

// ErrNoEngine is returned by [Converter.Convert] when no layout engine is set.
var ErrNoEngine = errors.New("no layout engine configured")

// Source is the element and relationship set to draw. A workspace view
// satisfies it.
type Source interface {
	Elements() []*model.Element
	Relationships() []*model.Relationship
}

// Engine computes geometry for a render graph using g.Settings. It must set
// node positions and sizes, edge routes, g.Bounds and g.LaidOut.
type Engine interface {
	Layout(ctx context.Context, g *Graph) error
}

// Converter turns a [Source] into a positioned render graph.
type Converter struct {
	Nodes  NodeDecorator
	Edges  EdgeDecorator
	Engine Engine

	FontName      string
	FontSize      float64 // Label size while the engine measures nodes
	LabelFontSize float64 // Label size applied after layout

	PostLayout []Pass
}

// Option configures a [Converter].
type Option func(*Converter)

// WithNodeDecorator replaces the default node style.
func WithNodeDecorator(d NodeDecorator) Option { return func(c *Converter) { c.Nodes = d } }

// WithEdgeDecorator replaces the default edge style.
func WithEdgeDecorator(d EdgeDecorator) Option { return func(c *Converter) { c.Edges = d } }

// WithFont sets the font family and the pre- and post-layout sizes.
func WithFont(name string, size, labelSize float64) Option {
	return func(c *Converter) {
		c.FontName, c.FontSize, c.LabelFontSize = name, size, labelSize
	}
}

// WithPostLayout appends passes run after the post-layout font pass.
func WithPostLayout(passes ...Pass) Option {
	return func(c *Converter) { c.PostLayout = append(c.PostLayout, passes...) }
}

// NewConverter creates a converter with the default box and arrow styles.
func NewConverter(engine Engine, opts ...Option) *Converter {
	c := &Converter{
		Nodes:         DefaultNodeStyle,
		Edges:         DefaultEdgeStyle,
		Engine:        engine,
		FontName:      DefaultFontName,
		FontSize:      DefaultFontSize,
		LabelFontSize: DefaultLabelFontSize,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Adapt builds the decorated render graph for src and selects its layout
// settings. It does not run the engine.
//
// Nodes are keyed by element alias, or by element ID when the name is blank.
// Two elements with the same key yield a [*DuplicateAliasError].
// Relationships with an endpoint outside src are skipped.
func (c *Converter) Adapt(src Source) (*Graph, error) {
	g := NewGraph()

	for _, e := range src.Elements() {
		key := NodeKey(e)
		n, added := g.AddNode(key)
		if !added {
			if n.Element == e {
				continue
			}
			return nil, &DuplicateAliasError{Alias: key, First: n.Element, Second: e}
		}
		n.Element = e
		n.Label.Text = EscapeLabel(e.Name)
		n.Attr.URI = e.URL()
		if c.Nodes != nil {
			c.Nodes.DecorateNode(e, n)
		}
	}

	for _, r := range src.Relationships() {
		if r.Source == nil || r.Target == nil {
			continue
		}
		edge, err := g.AddEdge(NodeKey(r.Source), NodeKey(r.Target))
		if err != nil {
			continue
		}
		edge.Relationship = r
		if r.Label != "" {
			edge.Label = &Label{Text: EscapeLabel(r.Label)}
		}
		if c.Edges != nil {
			c.Edges.DecorateEdge(r, edge)
		}
	}

	SetFont(g, c.FontName, c.FontSize)
	g.Settings = layout.Pick(g.NodeCount(), g.EdgeCount())
	return g, nil
}

// NodeKey returns the render-graph key of e: its alias, or its ID when the
// alias is empty.
func NodeKey(e *model.Element) string {
	if alias := e.Alias(); alias != "" {
		return alias
	}
	return e.ID().String()
}

// Convert adapts src, lays it out with the engine and applies the
// post-layout passes. Engine failures are returned wrapped.
func (c *Converter) Convert(ctx context.Context, src Source) (*Graph, error) {
	if c.Engine == nil {
		return nil, ErrNoEngine
	}
	g, err := c.Adapt(src)
	if err != nil {
		return nil, err
	}
	if err := c.Engine.Layout(ctx, g); err != nil {
		return nil, fmt.Errorf("layout %s: %w", g.Settings, err)
	}
	SetFont(g, c.FontName, c.LabelFontSize)
	for _, pass := range c.PostLayout {
		pass(g)
	}
	return g, nil
}

var labelEscaper = strings.NewReplacer("<", "&lt;", ">", "&gt;")

// EscapeLabel escapes angle brackets so labels survive markup viewers.
func EscapeLabel(s string) string { return labelEscaper.Replace(s) }
