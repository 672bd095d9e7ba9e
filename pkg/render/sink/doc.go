// Package sink draws layouts as standalone SVG documents.
//
// [RenderSVG] maps every grid cell to a fixed-size box: generations become
// columns and Y values become rows, with smaller Y drawn higher. Individuals
// are labelled rounded rectangles, unions are dots, and every parent→child
// edge is a cubic curve between them.
//
//	svg := sink.RenderSVG(l, sink.WithCell(200, 48), sink.WithCoordinates())
//
// The output needs no external tools. Convert it with [render.ToPDF] or
// [render.ToPNG] for other formats.
//
// [render.ToPDF]: github.com/matzehuels/stemma/pkg/render
// [render.ToPNG]: github.com/matzehuels/stemma/pkg/render
package sink
