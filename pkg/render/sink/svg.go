package sink

import (
	"bytes"
	"encoding/xml"
	"fmt"

	"github.com/matzehuels/stemma/pkg/graph"
)

// Default cell geometry, in pixels.
const (
	DefaultCellWidth  = 180.0
	DefaultCellHeight = 44.0
	DefaultMargin     = 24.0
)

const (
	boxRatio    = 0.8 // box width relative to the cell
	boxHeight   = 0.7 // box height relative to the cell
	unionRadius = 5.0
)

const styleCSS = `
    .person { fill: #fff; stroke: #333; stroke-width: 1.5; }
    .union { fill: #333; }
    .edge { fill: none; stroke: #888; stroke-width: 1.2; }
    .label { font-family: system-ui, sans-serif; fill: #222; dominant-baseline: central; text-anchor: middle; }
    .coord { font-family: monospace; fill: #999; }`

type SVGOption func(*svgRenderer)

type svgRenderer struct {
	cellW, cellH float64
	margin       float64
	coordinates  bool
	hideEdges    bool
}

func WithCell(width, height float64) SVGOption {
	return func(r *svgRenderer) { r.cellW, r.cellH = width, height }
}
func WithMargin(m float64) SVGOption { return func(r *svgRenderer) { r.margin = m } }
func WithCoordinates() SVGOption     { return func(r *svgRenderer) { r.coordinates = true } }
func WithoutEdges() SVGOption        { return func(r *svgRenderer) { r.hideEdges = true } }

// RenderSVG draws l as an SVG document.
func RenderSVG(l graph.Layout, opts ...SVGOption) []byte {
	r := svgRenderer{cellW: DefaultCellWidth, cellH: DefaultCellHeight, margin: DefaultMargin}
	for _, opt := range opts {
		opt(&r)
	}

	minX, minY, maxX, maxY := l.Bounds()
	width := 2*r.margin + float64(maxX-minX+1)*r.cellW
	height := 2*r.margin + float64(maxY-minY+1)*r.cellH
	if len(l.Nodes) == 0 {
		width, height = 2*r.margin, 2*r.margin
	}

	center := func(n graph.Node) (float64, float64) {
		cx := r.margin + (float64(n.X-minX)+0.5)*r.cellW
		cy := r.margin + (float64(n.Y-minY)+0.5)*r.cellH
		return cx, cy
	}

	byID := make(map[string]graph.Node, len(l.Nodes))
	for _, n := range l.Nodes {
		byID[n.ID] = n
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.1f %.1f" width="%.0f" height="%.0f">`+"\n",
		width, height, width, height)
	fmt.Fprintf(&buf, "  <style>%s\n  </style>\n", styleCSS)

	if !r.hideEdges {
		buf.WriteString("  <g class=\"edges\">\n")
		for _, e := range l.Edges {
			from, ok1 := byID[e.From]
			to, ok2 := byID[e.To]
			if !ok1 || !ok2 {
				continue
			}
			x1, y1 := center(from)
			x2, y2 := center(to)
			x1 += r.halfWidth(from)
			x2 -= r.halfWidth(to)
			mid := (x1 + x2) / 2
			fmt.Fprintf(&buf, `    <path class="edge" d="M %.1f %.1f C %.1f %.1f, %.1f %.1f, %.1f %.1f"/>`+"\n",
				x1, y1, mid, y1, mid, y2, x2, y2)
		}
		buf.WriteString("  </g>\n")
	}

	buf.WriteString("  <g class=\"nodes\">\n")
	for _, n := range l.Nodes {
		cx, cy := center(n)
		if n.IsUnion() {
			fmt.Fprintf(&buf, `    <circle id="node-%s" class="union" cx="%.1f" cy="%.1f" r="%.1f"/>`+"\n",
				escapeXML(n.ID), cx, cy, unionRadius)
			continue
		}
		w, h := r.cellW*boxRatio, r.cellH*boxHeight
		fmt.Fprintf(&buf, `    <rect id="node-%s" class="person" x="%.1f" y="%.1f" width="%.1f" height="%.1f" rx="6"/>`+"\n",
			escapeXML(n.ID), cx-w/2, cy-h/2, w, h)
		fmt.Fprintf(&buf, `    <text class="label" x="%.1f" y="%.1f" font-size="%.1f">%s</text>`+"\n",
			cx, cy, fontSize(w, h, n.DisplayLabel()), escapeXML(n.DisplayLabel()))
		if r.coordinates {
			fmt.Fprintf(&buf, `    <text class="coord" x="%.1f" y="%.1f" font-size="8">%d,%d</text>`+"\n",
				cx-w/2+2, cy-h/2+8, n.X, n.Y)
		}
	}
	buf.WriteString("  </g>\n")
	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func (r *svgRenderer) halfWidth(n graph.Node) float64 {
	if n.IsUnion() {
		return unionRadius
	}
	return r.cellW * boxRatio / 2
}

func escapeXML(s string) string {
	var buf bytes.Buffer
	xml.EscapeText(&buf, []byte(s))
	return buf.String()
}
