package diagram

import (
	"math"

	"github.com/matzehuels/archviews/pkg/model"
)

// Default decoration and typography.
const (
	DefaultMargin        = 10.0
	DefaultBorderWidth   = 2.0
	DefaultFontName      = "Consolas"
	DefaultFontSize      = 13.0
	DefaultLabelFontSize = 11.0
	EnlargedLabelMargin  = 8.0
)

// NodeDecorator styles the node created for an element.
type NodeDecorator interface {
	DecorateNode(e *model.Element, n *Node)
}

// EdgeDecorator styles the edge created for a relationship.
type EdgeDecorator interface {
	DecorateEdge(r *model.Relationship, e *Edge)
}

// NodeDecoratorFunc adapts a function to [NodeDecorator].
type NodeDecoratorFunc func(e *model.Element, n *Node)

func (f NodeDecoratorFunc) DecorateNode(e *model.Element, n *Node) { f(e, n) }

// EdgeDecoratorFunc adapts a function to [EdgeDecorator].
type EdgeDecoratorFunc func(r *model.Relationship, e *Edge)

func (f EdgeDecoratorFunc) DecorateEdge(r *model.Relationship, e *Edge) { f(r, e) }

// NodeStyle is a reusable node look.
type NodeStyle struct {
	Shape       Shape   `toml:"shape" json:"shape,omitempty"`
	Margin      float64 `toml:"margin" json:"margin,omitempty"`
	Radius      float64 `toml:"radius" json:"radius,omitempty"`
	FillColor   string  `toml:"fill" json:"fill,omitempty"`
	BorderColor string  `toml:"border" json:"border,omitempty"`
	BorderWidth float64 `toml:"border_width" json:"border_width,omitempty"`
}

// DefaultNodeStyle is a square-cornered box with a 2pt border.
var DefaultNodeStyle = NodeStyle{
	Shape:       ShapeBox,
	Margin:      DefaultMargin,
	Radius:      0,
	BorderWidth: DefaultBorderWidth,
}

// Apply copies the style onto n.
func (s NodeStyle) Apply(n *Node) {
	n.Attr.Shape = s.Shape
	n.Attr.Margin = s.Margin
	n.Attr.XRadius = s.Radius
	n.Attr.YRadius = s.Radius
	n.Attr.FillColor = s.FillColor
	n.Attr.Color = s.BorderColor
	n.Attr.LineWidth = s.BorderWidth
}

// DecorateNode implements [NodeDecorator].
func (s NodeStyle) DecorateNode(_ *model.Element, n *Node) { s.Apply(n) }

// EdgeStyle is a reusable edge look.
type EdgeStyle struct {
	Color       string  `toml:"color" json:"color,omitempty"`
	LineWidth   float64 `toml:"line_width" json:"line_width,omitempty"`
	SourceArrow Arrow   `toml:"source_arrow" json:"source_arrow,omitempty"`
	TargetArrow Arrow   `toml:"target_arrow" json:"target_arrow,omitempty"`
}

// DefaultEdgeStyle draws an arrowhead at the target only.
var DefaultEdgeStyle = EdgeStyle{
	SourceArrow: ArrowNone,
	TargetArrow: ArrowNormal,
}

// Apply copies the style onto e.
func (s EdgeStyle) Apply(e *Edge) {
	e.Attr.ArrowheadAtSource = s.SourceArrow
	e.Attr.ArrowheadAtTarget = s.TargetArrow
	e.Attr.LineWidth = s.LineWidth
	e.Attr.Color = s.Color
}

// DecorateEdge implements [EdgeDecorator].
func (s EdgeStyle) DecorateEdge(_ *model.Relationship, e *Edge) { s.Apply(e) }

// KindStyles picks a node style by element kind, falling back to Default.
type KindStyles struct {
	Default NodeStyle
	ByKind  map[model.Kind]NodeStyle
}

// DecorateNode implements [NodeDecorator].
func (k KindStyles) DecorateNode(e *model.Element, n *Node) {
	if s, ok := k.ByKind[e.Kind()]; ok {
		s.Apply(n)
		return
	}
	k.Default.Apply(n)
}

// SetFont sets the font of every label in g.
func SetFont(g *Graph, name string, size float64) {
	for _, l := range g.Labels() {
		l.FontName = name
		l.FontSize = size
	}
}

// Pass is a post-layout adjustment.
type Pass func(g *Graph)

// RoundCorners sets each node corner radius to a tenth of its smaller side.
func RoundCorners(g *Graph) {
	for _, n := range g.Nodes() {
		r := math.Min(n.Width, n.Height) / 10
		n.Attr.XRadius = r
		n.Attr.YRadius = r
	}
}

// EnlargeLabelMargins widens the space around every node label.
func EnlargeLabelMargins(g *Graph) {
	for _, n := range g.Nodes() {
		n.Attr.Margin = EnlargedLabelMargin
	}
}
