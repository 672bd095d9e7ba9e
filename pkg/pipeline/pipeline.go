// Package pipeline runs the load → layout → render chain for stemma.
//
// The CLI and the HTTP server both go through a [Runner], so caching,
// validation and defaults behave the same everywhere.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Load: read records from a file, an http(s) URL or an inline value
//  2. Layout: level, place and optimize the descent graph
//  3. Render: produce artifacts (SVG, PNG, PDF, DOT, JSON)
//
// Each stage caches its output under a content key, so an unchanged record
// set is laid out once.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    Source:  "family.json",
//	    Formats: []string{"svg"},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Artifacts["svg"]
package pipeline

import (
	"fmt"
	"io"
	"slices"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/stemma/pkg/cache"
	errs "github.com/matzehuels/stemma/pkg/errors"
	"github.com/matzehuels/stemma/pkg/graph"
	"github.com/matzehuels/stemma/pkg/layout/optimize"
	"github.com/matzehuels/stemma/pkg/tree"
)

// Format constants for output formats.
const (
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatPDF  = "pdf"
	FormatDOT  = "dot"
	FormatJSON = "json"
)

// Renderer names.
const (
	RendererGrid     = "grid"
	RendererGraphviz = "graphviz"
)

// DefaultRenderer draws SVG without external tools.
const DefaultRenderer = RendererGrid

// DefaultPNGScale is the resolution multiplier for PNG output.
const DefaultPNGScale = 2.0

// ValidFormats lists the supported output formats.
var ValidFormats = []string{FormatSVG, FormatPNG, FormatPDF, FormatDOT, FormatJSON}

// ValidRenderers lists the supported renderers.
var ValidRenderers = []string{RendererGrid, RendererGraphviz}

// Options contains all configuration for a pipeline run.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Load options
	Source  string         `json:"source,omitempty"`  // File path or http(s) URL
	Records *graph.Records `json:"records,omitempty"` // Inline records; wins over Source
	Refresh bool           `json:"refresh,omitempty"` // Bypass cached sources and layouts

	// Layout options
	MaxIterations int           `json:"max_iterations,omitempty"`
	Timeout       time.Duration `json:"timeout,omitempty"`
	Workers       int           `json:"workers,omitempty"`
	SkipOptimize  bool          `json:"skip_optimize,omitempty"`

	// Render options
	Formats  []string `json:"formats,omitempty"`
	Renderer string   `json:"renderer,omitempty"`
	Detailed bool     `json:"detailed,omitempty"` // Label nodes with their grid position

	// Runtime options (not serialized)
	Logger *log.Logger   `json:"-"`
	Sink   optimize.Sink `json:"-"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	Records     graph.Records
	RecordsHash string
	Warnings    []tree.Warning

	Layout    graph.Layout
	Artifacts map[string][]byte

	Stats     Stats
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Individuals int
	Unions      int
	LoadTime    time.Duration
	LayoutTime  time.Duration
	RenderTime  time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	LoadHit   bool
	LayoutHit bool
	RenderHit bool
}

// ValidateFormats checks that all formats are supported.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := errs.ValidateFormat(f, ValidFormats...); err != nil {
			return err
		}
	}
	return nil
}

// ValidateRenderer checks that a renderer name is supported.
func ValidateRenderer(renderer string) error {
	if !slices.Contains(ValidRenderers, renderer) {
		return errs.New(errs.ErrCodeInvalidInput, "invalid renderer %q (must be one of: grid, graphviz)", renderer)
	}
	return nil
}

// ValidateAndSetDefaults checks required fields and applies defaults for
// the full pipeline.
func (o *Options) ValidateAndSetDefaults() error {
	if err := o.ValidateForLoad(); err != nil {
		return err
	}
	o.SetLayoutDefaults()
	return o.ValidateForRender()
}

// ValidateForLoad checks that a record source is given.
func (o *Options) ValidateForLoad() error {
	if o.Records == nil && o.Source == "" {
		return errs.New(errs.ErrCodeInvalidInput, "source or records is required")
	}
	if o.Records == nil && errs.IsURL(o.Source) {
		if err := errs.ValidateURL(o.Source); err != nil {
			return err
		}
	}
	o.setLogger()
	return nil
}

// SetLayoutDefaults sets default values for layout computation.
func (o *Options) SetLayoutDefaults() {
	if o.MaxIterations <= 0 {
		o.MaxIterations = optimize.DefaultMaxIterations
	}
	o.setLogger()
}

// ValidateForRender validates and sets defaults for rendering.
func (o *Options) ValidateForRender() error {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	if o.Renderer == "" {
		o.Renderer = DefaultRenderer
	}
	o.setLogger()
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	return ValidateRenderer(o.Renderer)
}

func (o *Options) setLogger() {
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// LayoutKeyOpts returns cache key options for layout computation.
// Timeout and Workers are left out: they never change a converged layout.
func (o *Options) LayoutKeyOpts() cache.LayoutKeyOpts {
	return cache.LayoutKeyOpts{
		MaxIterations: o.MaxIterations,
		SkipOptimize:  o.SkipOptimize,
	}
}

// ArtifactKeyOpts returns cache key options for artifact rendering.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	return cache.ArtifactKeyOpts{
		Renderer: o.Renderer,
		Format:   format,
		Detailed: o.Detailed,
	}
}

func (o *Options) String() string {
	src := o.Source
	if o.Records != nil {
		src = "inline"
	}
	return fmt.Sprintf("source=%s formats=%v renderer=%s", src, o.Formats, o.Renderer)
}
