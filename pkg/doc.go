// Package pkg provides the core libraries for stemma descent-chart layout.
//
// # Overview
//
// Stemma places the individuals and unions of a family tree on an integer
// grid: X is the generation, Y the position within it. Parents sit to the
// left of their unions, unions to the left of their children, and the
// optimizer pulls related nodes together without letting two nodes share a
// cell.
//
// # Architecture
//
// The typical data flow through stemma:
//
//	Record document (JSON, file or URL)
//	         ↓
//	    [graph] package (records → tree)
//	         ↓
//	    [tree] package (arena of individuals and unions, generation leveler)
//	         ↓
//	    [layout] package (ordering → placement → optimize)
//	         ↓
//	    [graph] package (layout document)
//	         ↓
//	    [render] package (SVG, DOT, PDF, PNG)
//
// # Quick Start
//
//	recs, _ := graph.ReadRecordsFile("family.json")
//	t, warnings, _ := recs.ToTree()
//	l, _ := layout.Compute(ctx, t, layout.Options{})
//	doc := graph.FromLayout(l)
//	svg := sink.RenderSVG(doc)
//
// # Main Packages
//
// [tree] - Arena of individuals and unions addressed by [tree.NodeID], plus
// the generation leveler that assigns every node its X.
//
// [layout] - Runs the ordering, placement and optimize stages.
//
//   - [layout/ordering]: order-constraint graph over each generation
//   - [layout/placement]: initial Y for every node, with group interleaving
//   - [layout/optimize]: cost-driven local search with a move budget
//
// [graph] - Record and layout documents, and their JSON encoding.
//
// [gedate] - Parses the loose date strings found in genealogical records.
//
// [render] - Draws layouts as SVG directly ([render/sink]) or through
// Graphviz ([render/nodelink]), and converts SVG to PDF and PNG.
//
// ## Infrastructure
//
// [pipeline] - The load → layout → render chain used by the CLI and the
// HTTP server, with per-stage caching.
//
// [cache] - Content-keyed byte cache with file, Redis and no-op backends.
//
// [store] - Saved layouts in memory, on disk or in MongoDB.
//
// [config] - TOML configuration file.
//
// [errors] - Coded errors with user-facing messages and HTTP status mapping.
//
// [observability] - Hooks for tracing pipeline stages, optimizer moves,
// cache lookups and HTTP requests.
//
// [tree]: https://pkg.go.dev/github.com/matzehuels/stemma/pkg/tree
// [tree.NodeID]: https://pkg.go.dev/github.com/matzehuels/stemma/pkg/tree#NodeID
// [layout]: https://pkg.go.dev/github.com/matzehuels/stemma/pkg/layout
// [layout/ordering]: https://pkg.go.dev/github.com/matzehuels/stemma/pkg/layout/ordering
// [layout/placement]: https://pkg.go.dev/github.com/matzehuels/stemma/pkg/layout/placement
// [layout/optimize]: https://pkg.go.dev/github.com/matzehuels/stemma/pkg/layout/optimize
// [graph]: https://pkg.go.dev/github.com/matzehuels/stemma/pkg/graph
// [gedate]: https://pkg.go.dev/github.com/matzehuels/stemma/pkg/gedate
// [render]: https://pkg.go.dev/github.com/matzehuels/stemma/pkg/render
// [render/sink]: https://pkg.go.dev/github.com/matzehuels/stemma/pkg/render/sink
// [render/nodelink]: https://pkg.go.dev/github.com/matzehuels/stemma/pkg/render/nodelink
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/stemma/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/matzehuels/stemma/pkg/cache
// [store]: https://pkg.go.dev/github.com/matzehuels/stemma/pkg/store
// [config]: https://pkg.go.dev/github.com/matzehuels/stemma/pkg/config
// [errors]: https://pkg.go.dev/github.com/matzehuels/stemma/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/stemma/pkg/observability
package pkg
