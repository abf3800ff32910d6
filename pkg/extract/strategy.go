package extract

import (
	"strings"

	"github.com/timenexus/timenexus/pkg/errors"
)

// Strategy decides how the flattened graph is sliced for the service and
// which layers provide the query sources and targets of each slice.
type Strategy int

const (
	// Global makes one call on every selected layer. Sources come from the
	// first layer and targets from the last one.
	Global Strategy = iota
	// Pairwise makes one call per pair of consecutive layers (k, k+1).
	Pairwise
	// OneByOne makes one call per layer, with the same queries as sources
	// and targets.
	OneByOne
)

var strategyNames = map[Strategy]string{
	Global:   "global",
	Pairwise: "pairwise",
	OneByOne: "one-by-one",
}

func (s Strategy) String() string {
	if name, ok := strategyNames[s]; ok {
		return name
	}
	return "unknown"
}

// Title is the label shown while an extraction of this kind runs.
func (s Strategy) Title() string {
	switch s {
	case Global:
		return "TimeNexus global extraction"
	case Pairwise:
		return "TimeNexus pairwise extraction"
	case OneByOne:
		return "TimeNexus one-by-one extraction"
	}
	return "TimeNexus extraction"
}

// ParseStrategy reads a strategy name. Case, spaces, dashes and
// underscores are ignored, so "One By One" and "one-by-one" both give
// OneByOne.
func ParseStrategy(s string) (Strategy, error) {
	key := strings.NewReplacer(" ", "", "-", "", "_", "").Replace(strings.ToLower(s))
	switch key {
	case "global":
		return Global, nil
	case "pairwise":
		return Pairwise, nil
	case "onebyone":
		return OneByOne, nil
	}
	return 0, errors.New(errors.ErrCodeInvalidInput, "Unknown extraction",
		"Unknown extraction strategy %q: expected global, pairwise or one-by-one.", s)
}

// Slice is the part of the flattened graph handed to one service call.
type Slice struct {
	Layers      []int
	SourceLayer int
	TargetLayer int
}

// Plan returns the slices of layers, in call order. Pairwise needs two
// layers at least and returns no slice otherwise.
func (s Strategy) Plan(layers []int) []Slice {
	if len(layers) == 0 {
		return nil
	}
	switch s {
	case Global:
		return []Slice{{
			Layers:      append([]int(nil), layers...),
			SourceLayer: layers[0],
			TargetLayer: layers[len(layers)-1],
		}}
	case Pairwise:
		var out []Slice
		for i := 0; i+1 < len(layers); i++ {
			a, b := layers[i], layers[i+1]
			out = append(out, Slice{Layers: []int{a, b}, SourceLayer: a, TargetLayer: b})
		}
		return out
	case OneByOne:
		out := make([]Slice, len(layers))
		for i, k := range layers {
			out[i] = Slice{Layers: []int{k}, SourceLayer: k, TargetLayer: k}
		}
		return out
	}
	return nil
}

// Contiguous reports whether layers is an ascending run without gaps.
func Contiguous(layers []int) bool {
	for i := 0; i+1 < len(layers); i++ {
		if layers[i+1] != layers[i]+1 {
			return false
		}
	}
	return true
}
