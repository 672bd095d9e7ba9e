// Package nodelink renders layouts as Graphviz node-link diagrams.
//
// # Overview
//
// Layout coordinates are computed by stemma, not by Graphviz. [ToDOT] pins
// every node with pos="x,y!" and [RenderSVG] runs the neato engine, which
// keeps pinned nodes in place and only routes the edges. Generations run
// left to right; smaller Y values are drawn higher.
//
//	dot := nodelink.ToDOT(l, nodelink.Options{})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// Individuals are rounded boxes, unions are small filled circles.
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering.
package nodelink
