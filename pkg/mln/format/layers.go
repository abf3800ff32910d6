package format

import (
	"fmt"
	"slices"

	"github.com/timenexus/timenexus/pkg/errors"
	"github.com/timenexus/timenexus/pkg/graph"
	"github.com/timenexus/timenexus/pkg/mln"
)

const layersTitle = "Format of tables related to layers is not valid"

// LayerID returns the "Layer ID" graph attribute of a layer graph. Graphs
// that are not flagged as part of a multilayer network have no layer ID.
func LayerID(g *graph.Graph) (int, bool) {
	if !g.Flag(mln.FlagMultilayer) {
		return 0, false
	}
	return g.Attrs().Int(graph.GraphRow, mln.ColLayerID)
}

// Layers returns the layer graphs among graphs, sorted by layer ID.
// Flattened and aggregated graphs, and graphs without a layer ID, are skipped.
func Layers(graphs []*graph.Graph) []*graph.Graph {
	var out []*graph.Graph
	for _, g := range graphs {
		if _, ok := LayerID(g); ok {
			out = append(out, g)
		}
	}
	slices.SortStableFunc(out, func(a, b *graph.Graph) int {
		ia, _ := LayerID(a)
		ib, _ := LayerID(b)
		return ia - ib
	})
	return out
}

// ValidateLayers checks a layered collection. Graphs that are not layers
// are ignored, as in [Layers].
//
// Layer IDs must be exactly 1..N and every boundary k/k+1 needs the table
// "k->k+1_Inter-Edge" on both layers. These two checks stop at the first
// violation. Required columns are then checked per layer and all problems
// of a layer are reported together. Finally node names must be unique
// within each layer.
func ValidateLayers(layers []*graph.Graph) error {
	layers = Layers(layers)
	if len(layers) == 0 {
		return errors.New(errors.ErrCodeFormat, "No layers within the multi-layer network",
			"No network-layers were identified within the selected multi-layer network.\n\n"+
				"Multi-layer network should be a collection of subnetworks whose some have\n"+
				"a column '%s' and a column '%s' within the network table.",
			mln.FlagMultilayer, mln.ColLayerID)
	}

	for i, g := range layers {
		id, _ := LayerID(g)
		if id != i+1 {
			return layerIDError(id, i+1)
		}
	}

	n := len(layers)
	for i, g := range layers {
		k := i + 1
		before := mln.InterTableName(k-1, k)
		after := mln.InterTableName(k, k+1)
		_, hasBefore := g.Table(before)
		_, hasAfter := g.Table(after)
		if (k > 1 && !hasBefore) || (k < n && !hasAfter) {
			expected := before + " and " + after
			switch k {
			case 1:
				expected = after
			case n:
				expected = before
			}
			return errors.New(errors.ErrCodeFormat, "Naming convention of the inter-layer edge table is not respected",
				"No inter-layer edge table for the layer ID '%d' was found, while it is expected to be '%s'.\n\n"+
					"Names of inter-layer edge tables must follow the rule: [layer N]->[layer N+1]_Inter-Edge.",
				k, expected)
		}
	}

	for i, g := range layers {
		k := i + 1
		p := mainColumns(g)
		if k < n {
			inter, _ := g.Table(mln.InterTableName(k, k+1))
			p.merge(interColumns(inter))
		}
		if err := p.err(layersTitle, fmt.Sprintf("within the layer %d", k)); err != nil {
			return err
		}
	}

	return CheckUniqueLayerNames(layers)
}

func layerIDError(got, want int) error {
	return errors.New(errors.ErrCodeFormat, "Naming convention of layer IDs is not respected",
		"The layer ID '%d' is expected to be '%d'.\n\n"+
			"Layer ID must be such as an ID of '1' means that the layer is the 1st layer"+
			" which is directly followed by the layers 2, 3 and so on,\n"+
			"until the last layer, without gaps. This way, the IDs represent the ranking of layers.",
		got, want)
}

// CheckUniqueLayerNames fails when a node name occurs twice in one layer.
func CheckUniqueLayerNames(layers []*graph.Graph) error {
	for _, g := range Layers(layers) {
		id, _ := LayerID(g)
		seen := make(map[string]bool, g.NodeCount())
		for _, n := range g.Nodes() {
			name := g.NodeName(n)
			if seen[name] {
				return errors.New(errors.ErrCodeFormat, "Node names are duplicated",
					"Some node names are duplicated within the layer %d.\n"+
						"It is expected that the column '%s' has unique elements.", id, mln.ColName)
			}
			seen[name] = true
		}
	}
	return nil
}
