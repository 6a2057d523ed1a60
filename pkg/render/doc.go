// Package render turns laid-out architecture diagrams into files.
//
// The work is split across subpackages:
//
//   - [layout]: picks a layout strategy from a graph's size and density
//   - [diagram]: converts a view into a decorated render graph and drives
//     a layout engine
//   - [nodelink]: the Graphviz-backed engine and the SVG writer
//
// This package holds the format conversions shared by all writers. [ToPDF]
// and [ToPNG] shell out to rsvg-convert (librsvg):
//
//	svg, err := nodelink.RenderSVG(g)
//	pdf, err := render.ToPDF(ctx, svg)
//	png, err := render.ToPNG(ctx, svg, 2.0)
//
// [layout]: github.com/matzehuels/archviews/pkg/render/layout
// [diagram]: github.com/matzehuels/archviews/pkg/render/diagram
// [nodelink]: github.com/matzehuels/archviews/pkg/render/nodelink
package render
