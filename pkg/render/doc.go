// Package render turns computed layouts into images.
//
// # Renderers
//
// Two renderers consume a [graph.Layout]:
//
//   - [sink]: draws the grid directly as SVG, with no external tools
//   - [nodelink]: emits Graphviz DOT with every node pinned to its layout
//     position and renders it in-process with the neato engine
//
//	svg := sink.RenderSVG(l)
//	svg, err := nodelink.RenderSVG(ctx, nodelink.ToDOT(l, nodelink.Options{}))
//
// # Format Conversion
//
// [ToPDF] and [ToPNG] convert any SVG using the external rsvg-convert tool
// (from librsvg).
//
//	pdf, err := render.ToPDF(ctx, svg)
//	png, err := render.ToPNG(ctx, svg, 2.0) // 2x scale
//
// [graph.Layout]: github.com/matzehuels/stemma/pkg/graph
package render
