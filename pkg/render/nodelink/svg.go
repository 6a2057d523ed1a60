package nodelink

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html"
	"regexp"
	"strconv"
	"strings"

	"github.com/matzehuels/archviews/pkg/render"
	"github.com/matzehuels/archviews/pkg/render/diagram"
)

// ErrNotLaidOut is returned when rendering a graph without geometry.
var ErrNotLaidOut = errors.New("graph has not been laid out")

const defaultPadding = 8.0

const hoverCSS = `
    .node rect, .node ellipse { transition: stroke-width 0.2s ease; }
    .node:hover rect, .node:hover ellipse { stroke-width: 4; }
    .edge:hover path { stroke-width: 3; }
    a { cursor: pointer; }`

// SVGOption configures [RenderSVG].
type SVGOption func(*svgRenderer)

type svgRenderer struct {
	title      string
	background string
	padding    float64
	hover      bool
}

func WithTitle(title string) SVGOption      { return func(r *svgRenderer) { r.title = title } }
func WithBackground(color string) SVGOption { return func(r *svgRenderer) { r.background = color } }
func WithPadding(p float64) SVGOption       { return func(r *svgRenderer) { r.padding = p } }
func WithHover() SVGOption                  { return func(r *svgRenderer) { r.hover = true } }

// RenderSVG writes a laid-out graph as a standalone SVG document. Nodes with
// a URI are wrapped in links.
func RenderSVG(g *diagram.Graph, opts ...SVGOption) ([]byte, error) {
	if !g.LaidOut {
		return nil, ErrNotLaidOut
	}
	r := svgRenderer{padding: defaultPadding}
	for _, opt := range opts {
		opt(&r)
	}

	p := r.padding
	w, h := g.Bounds.Width+2*p, g.Bounds.Height+2*p

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" xmlns:xlink="http://www.w3.org/1999/xlink" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`+"\n",
		w, h, w, h)
	if r.title != "" {
		fmt.Fprintf(&buf, "  <title>%s</title>\n", xmlText(r.title))
	}
	if r.background != "" {
		fmt.Fprintf(&buf, `  <rect width="100%%" height="100%%" fill="%s"/>`+"\n", xmlAttr(r.background))
	}
	renderMarkers(&buf, g)
	if r.hover {
		fmt.Fprintf(&buf, "  <style>%s\n  </style>\n", hoverCSS)
	}

	fmt.Fprintf(&buf, `  <g transform="translate(%s %s)">`+"\n", num(p-g.Bounds.X), num(p-g.Bounds.Y))
	buf.WriteString("  <g class=\"edges\">\n")
	for _, e := range g.Edges() {
		renderEdge(&buf, e)
	}
	buf.WriteString("  </g>\n  <g class=\"nodes\">\n")
	for _, n := range g.Nodes() {
		renderNode(&buf, n)
	}
	buf.WriteString("  </g>\n  </g>\n</svg>\n")
	return buf.Bytes(), nil
}

// RenderPDF renders g to SVG and converts it with rsvg-convert.
func RenderPDF(ctx context.Context, g *diagram.Graph, opts ...SVGOption) ([]byte, error) {
	svg, err := RenderSVG(g, opts...)
	if err != nil {
		return nil, err
	}
	return render.ToPDF(ctx, svg)
}

// RenderPNG renders g to SVG and rasterizes it at the given scale.
func RenderPNG(ctx context.Context, g *diagram.Graph, scale float64, opts ...SVGOption) ([]byte, error) {
	svg, err := RenderSVG(g, opts...)
	if err != nil {
		return nil, err
	}
	return render.ToPNG(ctx, svg, scale)
}

func renderNode(buf *bytes.Buffer, n *diagram.Node) {
	a := n.Attr
	stroke := a.Color
	if stroke == "" {
		stroke = "black"
	}
	fill := a.FillColor
	if fill == "" {
		fill = "white"
	}
	lw := a.LineWidth
	if lw <= 0 {
		lw = 1
	}

	fmt.Fprintf(buf, `    <g class="node" id="node-%s">`+"\n", xmlAttr(n.ID))
	if a.URI != "" {
		fmt.Fprintf(buf, `    <a href="%s" xlink:href="%s" target="_blank">`+"\n", xmlAttr(a.URI), xmlAttr(a.URI))
	}

	b := n.Bounds()
	paint := fmt.Sprintf(`fill="%s" stroke="%s" stroke-width="%s"`, xmlAttr(fill), xmlAttr(stroke), num(lw))
	switch a.Shape {
	case diagram.ShapeEllipse, diagram.ShapeCircle:
		fmt.Fprintf(buf, `      <ellipse cx="%s" cy="%s" rx="%s" ry="%s" %s/>`+"\n",
			num(n.Center.X), num(n.Center.Y), num(n.Width/2), num(n.Height/2), paint)
	case diagram.ShapeNote:
		fold := min(b.Width, b.Height) / 5
		fmt.Fprintf(buf, `      <path d="M%s %s H%s L%s %s V%s H%s Z" %s/>`+"\n",
			num(b.X), num(b.Y), num(b.X+b.Width-fold), num(b.X+b.Width), num(b.Y+fold),
			num(b.Y+b.Height), num(b.X), paint)
	default:
		fmt.Fprintf(buf, `      <rect x="%s" y="%s" width="%s" height="%s" rx="%s" ry="%s" %s/>`+"\n",
			num(b.X), num(b.Y), num(b.Width), num(b.Height), num(a.XRadius), num(a.YRadius), paint)
	}

	renderText(buf, n.Label, n.Center)
	if a.URI != "" {
		buf.WriteString("    </a>\n")
	}
	buf.WriteString("    </g>\n")
}

func renderEdge(buf *bytes.Buffer, e *diagram.Edge) {
	if len(e.Points) < 2 {
		return
	}
	a := e.Attr
	stroke := a.Color
	if stroke == "" {
		stroke = "black"
	}
	lw := a.LineWidth
	if lw <= 0 {
		lw = 1
	}

	var d strings.Builder
	fmt.Fprintf(&d, "M%s %s", num(e.Points[0].X), num(e.Points[0].Y))
	rest := e.Points[1:]
	if len(rest)%3 == 0 {
		for i := 0; i < len(rest); i += 3 {
			fmt.Fprintf(&d, " C%s %s %s %s %s %s",
				num(rest[i].X), num(rest[i].Y), num(rest[i+1].X), num(rest[i+1].Y), num(rest[i+2].X), num(rest[i+2].Y))
		}
	} else {
		for _, pt := range rest {
			fmt.Fprintf(&d, " L%s %s", num(pt.X), num(pt.Y))
		}
	}

	fmt.Fprintf(buf, `    <g class="edge" data-source="%s" data-target="%s">`+"\n", xmlAttr(e.Source), xmlAttr(e.Target))
	fmt.Fprintf(buf, `      <path d="%s" fill="none" stroke="%s" stroke-width="%s"%s%s/>`+"\n",
		d.String(), xmlAttr(stroke), num(lw),
		markerRef("marker-start", a.ArrowheadAtSource, stroke),
		markerRef("marker-end", a.ArrowheadAtTarget, stroke))
	if e.Label != nil && e.LabelPos != nil {
		renderText(buf, e.Label, *e.LabelPos)
	}
	buf.WriteString("    </g>\n")
}

func renderText(buf *bytes.Buffer, l *diagram.Label, at diagram.Point) {
	if l == nil || l.Text == "" {
		return
	}
	lines := strings.Split(l.Text, "\n")
	size := l.FontSize
	if size <= 0 {
		size = diagram.DefaultLabelFontSize
	}
	y := at.Y - float64(len(lines)-1)*size*0.6

	fmt.Fprintf(buf, `      <text x="%s" y="%s" text-anchor="middle" dominant-baseline="central" font-family="%s" font-size="%s">`,
		num(at.X), num(y), xmlAttr(l.FontName), num(size))
	for i, line := range lines {
		dy := "0"
		if i > 0 {
			dy = num(size * 1.2)
		}
		fmt.Fprintf(buf, `<tspan x="%s" dy="%s">%s</tspan>`, num(at.X), dy, xmlText(line))
	}
	buf.WriteString("</text>\n")
}

// renderMarkers defines one marker per arrow kind and color in use.
func renderMarkers(buf *bytes.Buffer, g *diagram.Graph) {
	seen := map[string]bool{}
	var defs []string
	for _, e := range g.Edges() {
		stroke := e.Attr.Color
		if stroke == "" {
			stroke = "black"
		}
		for _, a := range []diagram.Arrow{e.Attr.ArrowheadAtSource, e.Attr.ArrowheadAtTarget} {
			if a == "" || a == diagram.ArrowNone {
				continue
			}
			id := markerID(a, stroke)
			if seen[id] {
				continue
			}
			seen[id] = true
			defs = append(defs, markerDef(id, a, stroke))
		}
	}
	if len(defs) == 0 {
		return
	}
	buf.WriteString("  <defs>\n")
	for _, d := range defs {
		buf.WriteString(d)
	}
	buf.WriteString("  </defs>\n")
}

func markerDef(id string, a diagram.Arrow, color string) string {
	var shape string
	switch a {
	case diagram.ArrowOpen:
		shape = fmt.Sprintf(`<path d="M0 0 L10 5 L0 10 Z" fill="white" stroke="%s"/>`, xmlAttr(color))
	case diagram.ArrowDiamond:
		shape = fmt.Sprintf(`<path d="M0 5 L5 0 L10 5 L5 10 Z" fill="%s"/>`, xmlAttr(color))
	default:
		shape = fmt.Sprintf(`<path d="M0 0 L10 5 L0 10 Z" fill="%s"/>`, xmlAttr(color))
	}
	return fmt.Sprintf(`    <marker id="%s" viewBox="0 0 10 10" refX="0" refY="5" markerWidth="10" markerHeight="10" markerUnits="userSpaceOnUse" orient="auto-start-reverse">%s</marker>`+"\n",
		id, shape)
}

func markerRef(attr string, a diagram.Arrow, color string) string {
	if a == "" || a == diagram.ArrowNone {
		return ""
	}
	return fmt.Sprintf(` %s="url(#%s)"`, attr, markerID(a, color))
}

var nonIdent = regexp.MustCompile(`[^A-Za-z0-9]+`)

func markerID(a diagram.Arrow, color string) string {
	return "arrow-" + string(a) + "-" + nonIdent.ReplaceAllString(color, "")
}

// xmlText escapes s for element content. Labels arrive with angle brackets
// already entity-encoded, so s is decoded first to avoid double escaping.
func xmlText(s string) string { return html.EscapeString(html.UnescapeString(s)) }

func xmlAttr(s string) string { return html.EscapeString(s) }

func num(f float64) string { return strconv.FormatFloat(f, 'f', 2, 64) }

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox rewrites the root tag of Graphviz SVG to a zero-origin
// viewBox with explicit pixel dimensions.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}
	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}
	root := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`, w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(root))
}
