package nodelink

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/archviews/pkg/render/diagram"
	"github.com/matzehuels/archviews/pkg/render/layout"
)

// pointsPerInch converts between Graphviz inches and diagram points.
const pointsPerInch = 72.0

// MDSSeed fixes the initial placement of the scaling layout so repeated runs
// produce the same picture.
const MDSSeed = 42

// Program returns the Graphviz layout program for the settings.
func Program(s layout.Settings) graphviz.Layout {
	if s.Strategy == layout.StrategyScaling {
		return graphviz.NEATO
	}
	return graphviz.DOT
}

// ToDOT converts a render graph to Graphviz DOT source. Node and edge
// attributes come from the decorated graph, graph attributes from
// g.Settings.
func ToDOT(g *diagram.Graph) string {
	var b strings.Builder
	b.WriteString("digraph G {\n")
	b.WriteString("  bgcolor=\"transparent\";\n")
	for _, attr := range graphAttrs(g.Settings) {
		fmt.Fprintf(&b, "  %s;\n", attr)
	}
	b.WriteString("\n")

	for _, n := range g.Nodes() {
		fmt.Fprintf(&b, "  %s [%s];\n", quote(n.ID), strings.Join(nodeAttrs(n), ", "))
	}

	if g.EdgeCount() > 0 {
		b.WriteString("\n")
	}
	for _, e := range g.Edges() {
		fmt.Fprintf(&b, "  %s -> %s [%s];\n", quote(e.Source), quote(e.Target), strings.Join(edgeAttrs(e), ", "))
	}

	b.WriteString("}\n")
	return b.String()
}

func graphAttrs(s layout.Settings) []string {
	var attrs []string
	switch s.Strategy {
	case layout.StrategyScaling:
		attrs = append(attrs,
			"model=mds",
			"start="+strconv.Itoa(MDSSeed),
			"overlap=scale",
			fmt.Sprintf("scale=%q", fmt.Sprintf("%s,%s", fmtFloat(s.ScaleX/layout.MinScale), fmtFloat(s.ScaleY/layout.MinScale))),
		)
	default:
		attrs = append(attrs, "rankdir=TB", "ranksep=0.5", "nodesep=0.3")
	}

	switch s.Routing {
	case layout.RoutingSpline:
		attrs = append(attrs, "splines=spline")
	case layout.RoutingSplineBundling:
		attrs = append(attrs, "splines=spline", "concentrate=true")
		if s.Bundling != nil {
			attrs = append(attrs, fmt.Sprintf("esep=%q", "+"+fmtFloat(s.Bundling.EdgeSeparation)))
		}
	}
	return attrs
}

func nodeAttrs(n *diagram.Node) []string {
	a := n.Attr
	shape := a.Shape
	if shape == "" {
		shape = diagram.ShapeBox
	}
	style := "filled"
	if a.XRadius > 0 || a.YRadius > 0 {
		style = "rounded,filled"
	}
	fill := a.FillColor
	if fill == "" {
		fill = "white"
	}

	attrs := []string{
		"label=" + quote(labelText(n.Label)),
		"shape=" + string(shape),
		"style=" + quote(style),
		"fillcolor=" + quote(fill),
	}
	attrs = append(attrs, fontAttrs(n.Label)...)
	if a.Margin > 0 {
		m := fmtFloat(a.Margin / pointsPerInch)
		attrs = append(attrs, "margin="+quote(m+","+m))
	}
	if a.LineWidth > 0 {
		attrs = append(attrs, "penwidth="+fmtFloat(a.LineWidth))
	}
	if a.Color != "" {
		attrs = append(attrs, "color="+quote(a.Color))
	}
	if a.URI != "" {
		attrs = append(attrs, "URL="+quote(a.URI))
	}
	return attrs
}

func edgeAttrs(e *diagram.Edge) []string {
	a := e.Attr
	attrs := []string{
		"dir=both",
		"arrowtail=" + string(arrowOrNone(a.ArrowheadAtSource)),
		"arrowhead=" + string(arrowOrNone(a.ArrowheadAtTarget)),
	}
	if e.Label != nil && e.Label.Text != "" {
		attrs = append(attrs, "label="+quote(e.Label.Text))
		attrs = append(attrs, fontAttrs(e.Label)...)
	}
	if a.LineWidth > 0 {
		attrs = append(attrs, "penwidth="+fmtFloat(a.LineWidth))
	}
	if a.Color != "" {
		attrs = append(attrs, "color="+quote(a.Color))
	}
	return attrs
}

func fontAttrs(l *diagram.Label) []string {
	if l == nil {
		return nil
	}
	var attrs []string
	if l.FontName != "" {
		attrs = append(attrs, "fontname="+quote(l.FontName))
	}
	if l.FontSize > 0 {
		attrs = append(attrs, "fontsize="+fmtFloat(l.FontSize))
	}
	return attrs
}

func labelText(l *diagram.Label) string {
	if l == nil {
		return ""
	}
	return l.Text
}

func arrowOrNone(a diagram.Arrow) diagram.Arrow {
	if a == "" {
		return diagram.ArrowNone
	}
	return a
}

var dotEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`)

// quote returns s as a DOT double-quoted string.
func quote(s string) string { return `"` + dotEscaper.Replace(s) + `"` }

func fmtFloat(f float64) string { return strconv.FormatFloat(f, 'f', -1, 64) }
