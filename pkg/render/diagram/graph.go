package diagram

import (
	"errors"
	"fmt"

	"github.com/matzehuels/archviews/pkg/model"
	"github.com/matzehuels/archviews/pkg/render/layout"
)

var (
	// ErrUnknownNode is returned by [Graph.AddEdge] when an endpoint has not
	// been added.
	ErrUnknownNode = errors.New("unknown node")
)

// DuplicateAliasError reports two distinct elements that map to the same node
// key.
type DuplicateAliasError struct {
	Alias  string
	First  *model.Element
	Second *model.Element
}

func (e *DuplicateAliasError) Error() string {
	return fmt.Sprintf("duplicate alias %q: %q and %q", e.Alias, e.First.Name, e.Second.Name)
}

// Shape is a node outline.
type Shape string

const (
	ShapeBox     Shape = "box"
	ShapeEllipse Shape = "ellipse"
	ShapeCircle  Shape = "circle"
	ShapeNote    Shape = "note"
)

// Arrow is an edge end decoration.
type Arrow string

const (
	ArrowNone    Arrow = "none"
	ArrowNormal  Arrow = "normal"
	ArrowOpen    Arrow = "empty"
	ArrowDiamond Arrow = "diamond"
)

// Point is a position in points, origin top-left, y growing downward.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Rect is an axis-aligned box.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Label is displayed text with its font.
type Label struct {
	Text     string
	FontName string
	FontSize float64
}

// NodeAttr holds the visual attributes of a node.
type NodeAttr struct {
	Shape     Shape
	XRadius   float64
	YRadius   float64
	Margin    float64 // Space inside the node around the label
	LineWidth float64
	FillColor string
	Color     string
	URI       string
}

// EdgeAttr holds the visual attributes of an edge.
type EdgeAttr struct {
	ArrowheadAtSource Arrow
	ArrowheadAtTarget Arrow
	LineWidth         float64
	Color             string
}

// Node is a render-graph vertex keyed by an element alias.
type Node struct {
	ID      string
	Label   *Label
	Attr    NodeAttr
	Element *model.Element

	// Geometry, filled in by an [Engine].
	Center Point
	Width  float64
	Height float64
}

// Bounds returns the node box.
func (n *Node) Bounds() Rect {
	return Rect{X: n.Center.X - n.Width/2, Y: n.Center.Y - n.Height/2, Width: n.Width, Height: n.Height}
}

// Edge is a render-graph arc between two node keys.
type Edge struct {
	Source       string
	Target       string
	Label        *Label // nil when unlabelled
	Attr         EdgeAttr
	Relationship *model.Relationship

	// Geometry, filled in by an [Engine]. Points are cubic Bézier control
	// points: the start point followed by three points per segment.
	Points   []Point
	LabelPos *Point
}

// Graph is the layout-engine-facing form of a view.
//
// The zero value is not usable; use [NewGraph].
type Graph struct {
	nodes []*Node
	index map[string]*Node
	edges []*Edge

	// Settings is the layout request chosen for this graph.
	Settings layout.Settings
	// Bounds is the drawing extent, filled in by an [Engine].
	Bounds Rect
	// LaidOut is set once an engine has produced geometry.
	LaidOut bool
}

// NewGraph creates an empty render graph.
func NewGraph() *Graph {
	return &Graph{index: make(map[string]*Node)}
}

// AddNode adds a node keyed by id. It returns the existing node and false if
// the key is taken.
func (g *Graph) AddNode(id string) (*Node, bool) {
	if n, ok := g.index[id]; ok {
		return n, false
	}
	n := &Node{ID: id, Label: &Label{Text: id}}
	g.index[id] = n
	g.nodes = append(g.nodes, n)
	return n, true
}

// AddEdge adds an edge between two existing nodes.
func (g *Graph) AddEdge(source, target string) (*Edge, error) {
	if _, ok := g.index[source]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownNode, source)
	}
	if _, ok := g.index[target]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownNode, target)
	}
	e := &Edge{Source: source, Target: target}
	g.edges = append(g.edges, e)
	return e, nil
}

// Node returns the node with the given key.
func (g *Graph) Node(id string) (*Node, bool) {
	n, ok := g.index[id]
	return n, ok
}

// Nodes returns nodes in insertion order.
func (g *Graph) Nodes() []*Node { return g.nodes }

// Edges returns edges in insertion order.
func (g *Graph) Edges() []*Edge { return g.edges }

// NodeCount returns the number of nodes.
func (g *Graph) NodeCount() int { return len(g.nodes) }

// EdgeCount returns the number of edges.
func (g *Graph) EdgeCount() int { return len(g.edges) }

// Labels returns every node and edge label.
func (g *Graph) Labels() []*Label {
	labels := make([]*Label, 0, len(g.nodes)+len(g.edges))
	for _, n := range g.nodes {
		if n.Label != nil {
			labels = append(labels, n.Label)
		}
	}
	for _, e := range g.edges {
		if e.Label != nil {
			labels = append(labels, e.Label)
		}
	}
	return labels
}
