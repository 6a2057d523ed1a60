// Package nodelink lays out and draws architecture diagrams as node-link
// pictures using Graphviz.
//
// # Layout
//
// [Engine] implements [diagram.Engine]. It converts a render graph to DOT with
// [ToDOT], runs Graphviz in-process via [github.com/goccy/go-graphviz], and
// reads geometry back from the "plain" output format with [ApplyPlain]:
//
//   - Layered settings run the dot program (top to bottom).
//   - Scaling settings run neato with MDS initial placement, a fixed seed and
//     overlap removal by scaling; the scale factor is ScaleX/400.
//   - Bundled routing sets concentrate=true so parallel edges share a path.
//
// Plain output is cached by DOT hash when the engine is built
// [WithCache].
//
// # Drawing
//
// [RenderSVG] writes a standalone SVG from the laid-out graph: boxes with
// the decorated border, fill and corner radius, cubic Bézier edges with
// arrowhead markers, and links for nodes with a URL. [RenderPDF] and
// [RenderPNG] convert that SVG with rsvg-convert (librsvg).
//
//	eng := nodelink.NewEngine()
//	g, err := diagram.NewConverter(eng).Convert(ctx, view)
//	svg, err := nodelink.RenderSVG(g, nodelink.WithTitle(view.Name))
package nodelink
