// Package pipeline provides the build → extract → render pipeline of
// TimeNexus.
//
// This package implements the complete pipeline used by the CLI and the
// HTTP API, so both entry points load networks, call extraction services
// and render views the same way.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Load: build a collection from a network definition, or import a
//     flattened graph
//  2. Extract: optionally run an extraction strategy with PathLinker or
//     ANAT on the flattened graph
//  3. Render: generate the requested outputs (DOT, SVG, graph JSON) of the
//     resulting collection
//
// Each stage can be run independently or as part of the complete pipeline.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	runner.Services = pipeline.Services{PathLinker: pathlinker.DefaultOptions()}
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    DefinitionPath: "network.toml",
//	    Service:        pipeline.ServicePathLinker,
//	    Strategy:       "pairwise",
//	    Formats:        []string{"svg"},
//	})
//	svg := result.Artifacts["svg"]
package pipeline

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/timenexus/timenexus/pkg/errors"
	"github.com/timenexus/timenexus/pkg/extract"
	tnio "github.com/timenexus/timenexus/pkg/io"
	"github.com/timenexus/timenexus/pkg/mln"
	"github.com/timenexus/timenexus/pkg/mln/tabular"
	"github.com/timenexus/timenexus/pkg/observability"
	"github.com/timenexus/timenexus/pkg/render/nodelink"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and API
// =============================================================================

// DefaultStrategy is the default extraction strategy.
const DefaultStrategy = "global"

// DefaultCacheTTL is how long extraction results stay cached.
const DefaultCacheTTL = 7 * 24 * time.Hour

// Service names.
const (
	ServicePathLinker = "pathlinker"
	ServiceAnat       = "anat"
)

// Format constants for output formats.
const (
	FormatDOT  = "dot"
	FormatSVG  = "svg"
	FormatJSON = "json"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatDOT:  true,
	FormatSVG:  true,
	FormatJSON: true,
}

// ValidServices is the set of supported extraction services.
var ValidServices = map[string]bool{
	ServicePathLinker: true,
	ServiceAnat:       true,
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the pipeline.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Load options. Exactly one source is used, in this order: Collection,
	// Definition, DefinitionPath, GraphPath.
	Definition     *tnio.Definition `json:"definition,omitempty"`
	DefinitionPath string           `json:"-"`
	GraphPath      string           `json:"-"`
	Collection     *mln.Collection  `json:"-"`

	// Extraction options. An empty Service skips the extraction.
	Service      string         `json:"service,omitempty"`
	Strategy     string         `json:"strategy,omitempty"`
	Layers       []int          `json:"layers,omitempty"`
	QueryColumns map[int]string `json:"query_columns,omitempty"`
	SkipChecks   bool           `json:"skip_checks,omitempty"`
	Refresh      bool           `json:"refresh,omitempty"`

	// Render options. No format skips the rendering.
	Formats    []string           `json:"formats,omitempty"`
	ViewLayers []int              `json:"view_layers,omitempty"`
	Positions  nodelink.Positions `json:"positions,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger                  `json:"-"`
	Hooks  observability.ExtractionHooks `json:"-"`

	strategy  extract.Strategy
	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Input is the loaded collection.
	Input *mln.Collection

	// Extraction is nil when no service was requested.
	Extraction *extract.Result

	// Output is the extracted collection, or Input without extraction.
	Output *mln.Collection

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats
}

// Stats contains pipeline execution statistics.
type Stats struct {
	NodeCount   int
	EdgeCount   int
	LoadTime    time.Duration
	ExtractTime time.Duration
	RenderTime  time.Duration
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return fmt.Errorf("invalid format: %q (must be one of: dot, svg, json)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ValidateService checks that a service name is valid.
func ValidateService(name string) error {
	if !ValidServices[name] {
		return fmt.Errorf("invalid service: %q (must be one of: pathlinker, anat)", name)
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks the options and applies defaults.
// This method is idempotent - calling it multiple times has the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if o.Strategy == "" {
		o.Strategy = DefaultStrategy
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	hasSource := o.Collection != nil || o.Definition != nil || o.DefinitionPath != "" || o.GraphPath != ""
	err := validation.Errors{
		"source": validation.Validate(hasSource, validation.Required.Error("a definition or a graph is required")),
		"service": validation.Validate(o.Service,
			validation.When(o.Service != "", validation.By(func(any) error { return ValidateService(o.Service) }))),
		"formats": ValidateFormats(o.Formats),
		"layers":  validation.Validate(o.Layers, validation.Each(validation.Required, validation.Min(1))),
	}.Filter()
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "Invalid options", "%v", err)
	}
	s, err := extract.ParseStrategy(o.Strategy)
	if err != nil {
		return err
	}
	o.strategy = s
	o.validated = true
	return nil
}

// ExtractionStrategy returns the parsed strategy. Valid after
// ValidateAndSetDefaults.
func (o *Options) ExtractionStrategy() extract.Strategy { return o.strategy }

// SelectedLayers returns Layers, or every layer of c when Layers is empty.
func (o *Options) SelectedLayers(c *mln.Collection) []int {
	if len(o.Layers) > 0 {
		return o.Layers
	}
	return c.LayerIDs()
}

// Queries returns the query column of each layer: QueryColumns where set,
// otherwise the columns generated for definitions whose nodes are all
// queries.
func (o *Options) Queries(layers []int) extract.QueryColumns {
	out := make(extract.QueryColumns, len(layers))
	for _, k := range layers {
		if col, ok := o.QueryColumns[k]; ok {
			out[k] = col
		} else {
			out[k] = tabular.QueryColumn(k)
		}
	}
	return out
}
