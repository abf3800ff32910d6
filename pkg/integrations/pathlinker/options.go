package pathlinker

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// WeightType tells PathLinker how to read edge weights.
type WeightType string

const (
	Probabilities WeightType = "PROBABILITIES"
	Additive      WeightType = "ADDITIVE"
	Unweighted    WeightType = "UNWEIGHTED"
)

// DefaultBaseURL is the CyREST endpoint of a local Cytoscape.
const DefaultBaseURL = "http://localhost:1234"

// Options are the PathLinker run parameters.
type Options struct {
	BaseURL string `toml:"base_url" yaml:"base_url"`

	// K is the number of shortest paths to compute.
	K int `toml:"k" yaml:"k"`

	// EdgePenalty is added to every edge cost, favoring shorter paths.
	EdgePenalty float64 `toml:"edge_penalty" yaml:"edge_penalty"`

	EdgeWeightType   WeightType `toml:"edge_weight_type" yaml:"edge_weight_type"`
	EdgeWeightColumn string     `toml:"edge_weight_column" yaml:"edge_weight_column"`

	// Directed treats the network as directed. Edges of the other kind are
	// converted before the call.
	Directed bool `toml:"directed" yaml:"directed"`

	AllowSourcesTargetsInPaths bool `toml:"allow_sources_targets_in_paths" yaml:"allow_sources_targets_in_paths"`
	IncludeTiedPaths           bool `toml:"include_tied_paths" yaml:"include_tied_paths"`
}

// DefaultOptions returns the PathLinker defaults.
func DefaultOptions() Options {
	return Options{
		BaseURL:                    DefaultBaseURL,
		K:                          50,
		EdgePenalty:                1,
		EdgeWeightType:             Probabilities,
		EdgeWeightColumn:           "Weight",
		AllowSourcesTargetsInPaths: true,
	}
}

// Validate checks the options.
func (o *Options) Validate() error {
	return validation.ValidateStruct(o,
		validation.Field(&o.BaseURL, validation.Required),
		validation.Field(&o.K, validation.Required, validation.Min(1)),
		validation.Field(&o.EdgePenalty, validation.Min(0.0)),
		validation.Field(&o.EdgeWeightType, validation.Required,
			validation.In(Probabilities, Additive, Unweighted)),
		validation.Field(&o.EdgeWeightColumn, validation.Required),
	)
}

func (o Options) baseURL() string {
	return strings.TrimSuffix(o.BaseURL, "/")
}

// params returns the settings that change the result of a run.
func (o Options) params() map[string]any {
	return map[string]any{
		"k":                          o.K,
		"edgePenalty":                o.EdgePenalty,
		"edgeWeightType":             string(o.EdgeWeightType),
		"edgeWeightColumnName":       o.EdgeWeightColumn,
		"directed":                   o.Directed,
		"allowSourcesTargetsInPaths": o.AllowSourcesTargetsInPaths,
		"includeTiedPaths":           o.IncludeTiedPaths,
	}
}
