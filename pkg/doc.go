// Package pkg provides the core libraries of TimeNexus.
//
// # Overview
//
// TimeNexus models time-series of networks as multilayer networks: one layer
// per time point, with inter-layer edges coupling consecutive layers. A
// multilayer network is flattened into a single graph whose node names carry
// their layer, and subnetworks connecting query nodes are extracted from it
// with PathLinker or ANAT.
//
// # Architecture
//
// The typical data flow through TimeNexus:
//
//	Node and edge tables (CSV, definition file)
//	         ↓
//	    [mln/tabular] package (tables → multilayer model)
//	         ↓
//	    [mln/transform] package (flatten, aggregate, derive layers)
//	         ↓
//	    [extract] package (strategy slices → service calls → merge)
//	         ↓
//	    [render/nodelink] package (flattened view as DOT/SVG)
//
// # Quick Start
//
//	import (
//	    tnio "github.com/timenexus/timenexus/pkg/io"
//	    "github.com/timenexus/timenexus/pkg/pipeline"
//	)
//
//	// 1. Build the collection from a definition
//	c, _ := tnio.BuildFile("network.toml")
//
//	// 2. Extract and render
//	runner := pipeline.NewRunner(nil, nil, logger)
//	res, _ := runner.Execute(ctx, pipeline.Options{
//	    Collection: c,
//	    Service:    pipeline.ServicePathLinker,
//	    Strategy:   "pairwise",
//	    Formats:    []string{pipeline.FormatSVG},
//	})
//
// # Main Packages
//
// ## Networks
//
// [graph] - Multigraph with typed node, edge and graph tables, the host of
// every network. [graph/normalize] sets edge directions and merges
// multi-edges.
//
// [mln] - Column-layer model of a multilayer network and the reserved column
// names. [mln/format] validates flattened, aggregated and layer graphs;
// [mln/transform] converts between them; [mln/tabular] reads the model from
// tables.
//
// ## Extraction
//
// [extract] - Extraction strategies (global, pairwise, one-by-one) and the
// orchestrator calling a service on each slice.
//
// [integrations] - HTTP clients of the PathLinker (Cytoscape CyREST) and ANAT
// (SOAP) services.
//
// ## Infrastructure
//
// [pipeline] - Load → extract → render pipeline shared by the CLI and the API.
//
// [cache] - Extraction result caches: file, LRU, Redis, with compression and
// metrics wrappers.
//
// [session] - Stored working sets of networks (memory, file, MongoDB).
//
// [io] - Definition files, CSV tables and collection directories.
//
// [observability] - Hooks for metrics and progress reporting.
//
// [graph]: https://pkg.go.dev/github.com/timenexus/timenexus/pkg/graph
// [graph/normalize]: https://pkg.go.dev/github.com/timenexus/timenexus/pkg/graph/normalize
// [mln]: https://pkg.go.dev/github.com/timenexus/timenexus/pkg/mln
// [mln/format]: https://pkg.go.dev/github.com/timenexus/timenexus/pkg/mln/format
// [mln/transform]: https://pkg.go.dev/github.com/timenexus/timenexus/pkg/mln/transform
// [mln/tabular]: https://pkg.go.dev/github.com/timenexus/timenexus/pkg/mln/tabular
// [extract]: https://pkg.go.dev/github.com/timenexus/timenexus/pkg/extract
// [integrations]: https://pkg.go.dev/github.com/timenexus/timenexus/pkg/integrations
// [render/nodelink]: https://pkg.go.dev/github.com/timenexus/timenexus/pkg/render/nodelink
// [pipeline]: https://pkg.go.dev/github.com/timenexus/timenexus/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/timenexus/timenexus/pkg/cache
// [session]: https://pkg.go.dev/github.com/timenexus/timenexus/pkg/session
// [io]: https://pkg.go.dev/github.com/timenexus/timenexus/pkg/io
// [observability]: https://pkg.go.dev/github.com/timenexus/timenexus/pkg/observability
package pkg
