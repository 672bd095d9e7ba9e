package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/stemma/pkg/graph"
)

// Default spacing between grid cells, in inches.
const (
	DefaultColumnGap = 2.2
	DefaultRowGap    = 0.7
)

// Options configures node-link diagram rendering.
type Options struct {
	ColumnGap float64 // Inches between generations (default: DefaultColumnGap)
	RowGap    float64 // Inches between rows (default: DefaultRowGap)

	// Detailed adds the node ID and grid position to labels.
	Detailed bool
}

func (o *Options) setDefaults() {
	if o.ColumnGap <= 0 {
		o.ColumnGap = DefaultColumnGap
	}
	if o.RowGap <= 0 {
		o.RowGap = DefaultRowGap
	}
}

// ToDOT converts a layout to Graphviz DOT with every node pinned.
func ToDOT(l graph.Layout, opts Options) string {
	opts.setDefaults()

	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  splines=true;\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=12, width=1.6, height=0.4, fixedsize=true];\n")
	buf.WriteString("  edge [arrowsize=0.5];\n")
	buf.WriteString("\n")

	for _, n := range l.Nodes {
		x := float64(n.X) * opts.ColumnGap
		y := -float64(n.Y) * opts.RowGap
		attrs := []string{fmt.Sprintf("pos=\"%s,%s!\"", fmtFloat(x), fmtFloat(y))}
		if n.IsUnion() {
			attrs = append(attrs, `shape=circle`, `label=""`, `width=0.15`, `height=0.15`, `style=filled`, `fillcolor=black`)
		} else {
			attrs = append(attrs, fmt.Sprintf("label=%q", fmtLabel(n, opts.Detailed)))
		}
		fmt.Fprintf(&buf, "  %q [%s];\n", n.ID, strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, e := range l.Edges {
		fmt.Fprintf(&buf, "  %q -> %q;\n", e.From, e.To)
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtLabel(n graph.Node, detailed bool) string {
	if !detailed {
		return n.DisplayLabel()
	}
	return fmt.Sprintf("%s\n%s (%d, %d)", n.DisplayLabel(), n.ID, n.X, n.Y)
}

func fmtFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// RenderSVG renders pinned DOT to SVG with the neato engine.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()
	gv.SetLayout(graphviz.NEATO)

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces the Graphviz svg tag with one that scales.
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

	tag := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`, w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(tag))
}
