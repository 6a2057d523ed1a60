package graph

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/matzehuels/archviews/pkg/render/diagram"
)

// ErrNoGeometry is returned when converting a graph that was never laid out.
var ErrNoGeometry = errors.New("layout has no geometry")

// =============================================================================
// Diagram ↔ Layout Conversion
// =============================================================================

// FromDiagram converts a laid-out render graph.
func FromDiagram(view string, g *diagram.Graph) Layout {
	l := Layout{
		View:     view,
		Settings: g.Settings,
		Width:    g.Bounds.Width,
		Height:   g.Bounds.Height,
		Nodes:    make([]Node, 0, g.NodeCount()),
		Edges:    make([]Edge, 0, g.EdgeCount()),
	}
	for _, n := range g.Nodes() {
		node := Node{
			ID:        n.ID,
			Label:     textFrom(n.Label),
			X:         n.Center.X,
			Y:         n.Center.Y,
			Width:     n.Width,
			Height:    n.Height,
			Shape:     string(n.Attr.Shape),
			Radius:    n.Attr.XRadius,
			Margin:    n.Attr.Margin,
			LineWidth: n.Attr.LineWidth,
			Fill:      n.Attr.FillColor,
			Color:     n.Attr.Color,
			URL:       n.Attr.URI,
		}
		if n.Element != nil {
			node.Kind = string(n.Element.Kind())
		}
		l.Nodes = append(l.Nodes, node)
	}
	for _, e := range g.Edges() {
		l.Edges = append(l.Edges, Edge{
			Source:      e.Source,
			Target:      e.Target,
			Label:       textFrom(e.Label),
			LabelPos:    e.LabelPos,
			Points:      e.Points,
			SourceArrow: string(e.Attr.ArrowheadAtSource),
			TargetArrow: string(e.Attr.ArrowheadAtTarget),
			LineWidth:   e.Attr.LineWidth,
			Color:       e.Attr.Color,
		})
	}
	return l
}

// ToDiagram rebuilds a laid-out render graph. Model back-references are not
// restored.
func ToDiagram(l Layout) (*diagram.Graph, error) {
	g := diagram.NewGraph()
	g.Settings = l.Settings
	g.Bounds = diagram.Rect{Width: l.Width, Height: l.Height}

	for _, nj := range l.Nodes {
		n, added := g.AddNode(nj.ID)
		if !added {
			return nil, fmt.Errorf("duplicate node %q", nj.ID)
		}
		if nj.Label != nil {
			n.Label = &diagram.Label{Text: nj.Label.Text, FontName: nj.Label.FontName, FontSize: nj.Label.FontSize}
		}
		n.Center = diagram.Point{X: nj.X, Y: nj.Y}
		n.Width, n.Height = nj.Width, nj.Height
		n.Attr = diagram.NodeAttr{
			Shape:     diagram.Shape(nj.Shape),
			XRadius:   nj.Radius,
			YRadius:   nj.Radius,
			Margin:    nj.Margin,
			LineWidth: nj.LineWidth,
			FillColor: nj.Fill,
			Color:     nj.Color,
			URI:       nj.URL,
		}
	}
	for _, ej := range l.Edges {
		e, err := g.AddEdge(ej.Source, ej.Target)
		if err != nil {
			return nil, err
		}
		if ej.Label != nil {
			e.Label = &diagram.Label{Text: ej.Label.Text, FontName: ej.Label.FontName, FontSize: ej.Label.FontSize}
		}
		e.LabelPos = ej.LabelPos
		e.Points = ej.Points
		e.Attr = diagram.EdgeAttr{
			ArrowheadAtSource: diagram.Arrow(ej.SourceArrow),
			ArrowheadAtTarget: diagram.Arrow(ej.TargetArrow),
			LineWidth:         ej.LineWidth,
			Color:             ej.Color,
		}
	}
	g.LaidOut = true
	return g, nil
}

func textFrom(l *diagram.Label) *Text {
	if l == nil {
		return nil
	}
	return &Text{Text: l.Text, FontName: l.FontName, FontSize: l.FontSize}
}

// =============================================================================
// Layout Serialization API
// =============================================================================

// MarshalLayout serializes a layout to indented JSON.
func MarshalLayout(l Layout) ([]byte, error) {
	return json.MarshalIndent(l, "", "  ")
}

// UnmarshalLayout decodes a layout. A layout with nodes but no extent is
// rejected.
func UnmarshalLayout(data []byte) (Layout, error) {
	var l Layout
	if err := json.Unmarshal(data, &l); err != nil {
		return Layout{}, fmt.Errorf("unmarshal layout: %w", err)
	}
	if len(l.Nodes) > 0 && (l.Width <= 0 || l.Height <= 0) {
		return Layout{}, ErrNoGeometry
	}
	return l, nil
}

// WriteLayoutFile writes a layout to a JSON file.
func WriteLayoutFile(l Layout, path string) error {
	data, err := MarshalLayout(l)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// ReadLayoutFile reads a layout from a JSON file.
func ReadLayoutFile(path string) (Layout, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Layout{}, fmt.Errorf("read %s: %w", path, err)
	}
	return UnmarshalLayout(data)
}
