package anat

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Algorithm selects the ANAT computation.
type Algorithm string

const (
	// Anchored finds explanatory pathways from the source anchors to the
	// target terminals.
	Anchored Algorithm = "anchored"
	// General finds a Steiner tree connecting the query nodes.
	General Algorithm = "general"
	// Local returns the neighbourhood of the query nodes.
	Local Algorithm = "local"
	// Shortest finds the shortest paths between pairs of query nodes: a
	// query node's value names the other end of its path.
	Shortest Algorithm = "shortest"
)

// DefaultURL is the public ANAT server.
const DefaultURL = "http://anat.cs.tau.ac.il/AnatWeb/AnatServer"

// Options are the ANAT run parameters. EdgePenalty and Margin are in
// percent.
type Options struct {
	URL       string    `toml:"url" yaml:"url"`
	Algorithm Algorithm `toml:"algorithm" yaml:"algorithm"`

	// Approximate selects the approximate anchored algorithm instead of
	// the exact one.
	Approximate bool `toml:"approximate" yaml:"approximate"`

	EdgePenalty int `toml:"edge_penalty" yaml:"edge_penalty"`
	Margin      int `toml:"margin" yaml:"margin"`

	// NodePenalty enables Curvature and Dominance for the anchored and
	// shortest-paths algorithms.
	NodePenalty bool `toml:"node_penalty" yaml:"node_penalty"`
	Curvature   int  `toml:"curvature" yaml:"curvature"`
	Dominance   int  `toml:"dominance" yaml:"dominance"`

	// Alpha balances the local and global anchored algorithms.
	Alpha      float64 `toml:"alpha" yaml:"alpha"`
	Completion bool    `toml:"completion" yaml:"completion"`
	Propagate  bool    `toml:"propagate" yaml:"propagate"`

	Granularity int `toml:"granularity" yaml:"granularity"`
	Degree      int `toml:"degree" yaml:"degree"`

	// DefaultConfidence is the confidence of nodes and edges without a
	// weight.
	DefaultConfidence float64 `toml:"default_confidence" yaml:"default_confidence"`

	// Timeout bounds the wait for a result. 0 waits forever.
	Timeout time.Duration `toml:"timeout" yaml:"timeout"`
}

// DefaultOptions returns the ANAT defaults.
func DefaultOptions() Options {
	return Options{
		URL:               DefaultURL,
		Algorithm:         Anchored,
		Approximate:       true,
		EdgePenalty:       25,
		Curvature:         3,
		Dominance:         1,
		Alpha:             0.25,
		Degree:            1,
		DefaultConfidence: 0.5,
		Timeout:           30 * time.Minute,
	}
}

// Validate checks the options against the ranges ANAT accepts.
func (o *Options) Validate() error {
	return validation.ValidateStruct(o,
		validation.Field(&o.URL, validation.Required),
		validation.Field(&o.Algorithm, validation.Required, validation.In(Anchored, General, Local, Shortest)),
		validation.Field(&o.EdgePenalty, validation.Min(0), validation.Max(100)),
		validation.Field(&o.Margin, validation.Min(0), validation.Max(25)),
		validation.Field(&o.Curvature, validation.Min(0)),
		validation.Field(&o.Dominance, validation.Min(0)),
		validation.Field(&o.Alpha, validation.Min(0.0), validation.Max(0.5)),
		validation.Field(&o.Granularity, validation.Min(0), validation.Max(100)),
		validation.Field(&o.Degree, validation.Min(1), validation.Max(10)),
		validation.Field(&o.DefaultConfidence, validation.Min(0.0), validation.Max(1.0)),
		validation.Field(&o.Timeout, validation.Min(time.Duration(0))),
	)
}

func (o Options) params() map[string]any {
	p := map[string]any{
		"algorithm":         string(o.Algorithm),
		"defaultConfidence": o.DefaultConfidence,
	}
	switch o.Algorithm {
	case Anchored:
		p["approximate"], p["alpha"] = o.Approximate, o.Alpha
		p["completion"], p["propagate"] = o.Completion, o.Propagate
	case General:
		p["granularity"] = o.Granularity
	case Local:
		p["degree"] = o.Degree
	}
	if o.Algorithm != Local {
		p["edgePenalty"], p["margin"] = o.EdgePenalty, o.Margin
	}
	if o.NodePenalty && (o.Algorithm == Anchored || o.Algorithm == Shortest) {
		p["curvature"], p["dominance"] = o.Curvature, o.Dominance
	}
	return p
}
