package pipeline

import (
	"context"
	"fmt"

	errs "github.com/matzehuels/stemma/pkg/errors"
	"github.com/matzehuels/stemma/pkg/graph"
	"github.com/matzehuels/stemma/pkg/render"
	"github.com/matzehuels/stemma/pkg/render/nodelink"
	"github.com/matzehuels/stemma/pkg/render/sink"
)

// Render generates output artifacts in the requested formats.
func Render(ctx context.Context, l graph.Layout, opts Options) (map[string][]byte, error) {
	if err := opts.ValidateForRender(); err != nil {
		return nil, err
	}

	artifacts := make(map[string][]byte, len(opts.Formats))
	var svg []byte
	svgOnce := func() ([]byte, error) {
		if svg != nil {
			return svg, nil
		}
		var err error
		svg, err = RenderSVG(ctx, l, opts)
		return svg, err
	}

	for _, format := range opts.Formats {
		var data []byte
		var err error

		switch format {
		case FormatSVG:
			data, err = svgOnce()
		case FormatPNG:
			if data, err = svgOnce(); err == nil {
				data, err = render.ToPNG(ctx, data, DefaultPNGScale)
			}
		case FormatPDF:
			if data, err = svgOnce(); err == nil {
				data, err = render.ToPDF(ctx, data)
			}
		case FormatDOT:
			data = []byte(nodelink.ToDOT(l, nodelink.Options{Detailed: opts.Detailed}))
		case FormatJSON:
			data, err = graph.MarshalLayout(l)
		default:
			return nil, errs.New(errs.ErrCodeInvalidFormat, "unsupported format: %s", format)
		}

		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}
	return artifacts, nil
}

// RenderSVG draws l with the configured renderer.
func RenderSVG(ctx context.Context, l graph.Layout, opts Options) ([]byte, error) {
	switch opts.Renderer {
	case RendererGraphviz:
		return nodelink.RenderSVG(ctx, nodelink.ToDOT(l, nodelink.Options{Detailed: opts.Detailed}))
	case RendererGrid, "":
		var svgOpts []sink.SVGOption
		if opts.Detailed {
			svgOpts = append(svgOpts, sink.WithCoordinates())
		}
		return sink.RenderSVG(l, svgOpts...), nil
	default:
		return nil, ValidateRenderer(opts.Renderer)
	}
}
