package format

import (
	"slices"

	"github.com/timenexus/timenexus/pkg/errors"
	"github.com/timenexus/timenexus/pkg/graph"
	"github.com/timenexus/timenexus/pkg/mln"
)

const (
	flattenedTitle  = "Format of tables related to flattened network is not valid"
	aggregatedTitle = "Format of tables related to aggregated network is not valid"
	labelsTitle     = "Naming convention of edge labels is not respected"
	layerIDsTitle   = "Naming convention of layer IDs is not respected"
)

// ValidateFlattened checks that g is a well-formed flattened graph: both
// graph flags set, the main columns present, Integer "Layer ID" columns on
// nodes and edges, and an "Edge label" on every edge restricted to
// "intra-layer" and "inter-layer". Node names must be unique per layer.
func ValidateFlattened(g *graph.Graph) error {
	if !hasFlags(g, mln.FlagFlattened) {
		return errors.New(errors.ErrCodeFormat, "Unknown flattened network",
			"Current network was not recognized as flattened network.\n\n"+
				"Flattened network should have a network table with the boolean columns "+
				"'%s' and '%s' set as 'true'.", mln.FlagMultilayer, mln.FlagFlattened)
	}

	p := mainColumns(g)
	if p.empty() {
		nodes, edges := g.NodeTable(), g.EdgeTable()
		p.require(nodes, mln.ColLayerID, graph.IntType, "node table")
		p.require(edges, mln.ColLayerID, graph.IntType, "edge table")
		p.require(edges, mln.ColEdgeLabel, graph.StringType, "edge table")
		// Labels are checked only when the column has the right type.
		if p.empty() {
			if err := checkEdgeLabels(edges); err != nil {
				return err
			}
		}
	}
	if err := p.err(flattenedTitle, "for the flattened network"); err != nil {
		return err
	}
	return CheckUniqueFlattenedNames(g)
}

func checkEdgeLabels(edges *graph.Table) error {
	for _, r := range edges.Rows() {
		if edges.IsNull(r, mln.ColEdgeLabel) {
			return errors.New(errors.ErrCodeFormat, labelsTitle,
				"Column '%s' of the flattened network is expected to have a defined value in each cell.",
				mln.ColEdgeLabel)
		}
	}
	for _, r := range edges.Rows() {
		label, _ := edges.String(r, mln.ColEdgeLabel)
		if label != mln.LabelIntra && label != mln.LabelInter {
			return errors.New(errors.ErrCodeFormat, labelsTitle,
				"Column '%s' of the flattened network should only contain the values '%s' or '%s'.",
				mln.ColEdgeLabel, mln.LabelInter, mln.LabelIntra)
		}
	}
	return nil
}

// CheckUniqueFlattenedNames fails when a flattened node name occurs twice
// within the same layer.
func CheckUniqueFlattenedNames(g *graph.Graph) error {
	nodes := g.NodeTable()
	if _, err := LayerIDs(nodes); err != nil {
		return err
	}
	seen := make(map[int]map[string]bool)
	for _, n := range g.Nodes() {
		id, _ := nodes.Int(n, mln.ColLayerID)
		name := g.NodeName(n)
		if seen[id] == nil {
			seen[id] = make(map[string]bool)
		}
		if seen[id][name] {
			return errors.New(errors.ErrCodeFormat, "Duplicated node names",
				"The node name '%s' is duplicated within the layer %d of the flattened network.\n"+
					"It is expected that the column '%s' has unique elements. Please check the node table.",
				name, id, mln.ColName)
		}
		seen[id][name] = true
	}
	return nil
}

// ValidateAggregated checks that g is a well-formed aggregated graph. Its
// "Layer ID" columns hold lists of integers.
func ValidateAggregated(g *graph.Graph) error {
	if !hasFlags(g, mln.FlagAggregated) {
		return errors.New(errors.ErrCodeFormat, "Unknown aggregated network",
			"Current network was not recognized as aggregated network.\n\n"+
				"Aggregated network should have a network table with the boolean columns "+
				"'%s' and '%s' set as 'true'.", mln.FlagMultilayer, mln.FlagAggregated)
	}
	p := mainColumns(g)
	if p.empty() {
		list := graph.ListOf(graph.Int)
		p.require(g.NodeTable(), mln.ColLayerID, list, "node table")
		p.require(g.EdgeTable(), mln.ColLayerID, list, "edge table")
	}
	if err := p.err(aggregatedTitle, "for the aggregated network"); err != nil {
		return err
	}
	return CheckUniqueAggregatedNames(g)
}

// CheckUniqueAggregatedNames fails when a node name occurs twice in the
// aggregated graph, regardless of layers.
func CheckUniqueAggregatedNames(g *graph.Graph) error {
	seen := make(map[string]bool, g.NodeCount())
	for _, n := range g.Nodes() {
		name := g.NodeName(n)
		if seen[name] {
			return errors.New(errors.ErrCodeFormat, "Duplicated node names",
				"The node name %s is duplicated within the aggregated network, regardless the layer.\n"+
					"It is expected that the column '%s' has unique elements. Please check the node table.",
				name, mln.ColName)
		}
		seen[name] = true
	}
	return nil
}

// LayerIDs returns the sorted distinct values of the Integer "Layer ID"
// column of a flattened node or edge table. Every cell must be set.
func LayerIDs(t *graph.Table) ([]int, error) {
	var ids []int
	for _, r := range t.Rows() {
		id, ok := t.Int(r, mln.ColLayerID)
		if !ok {
			return nil, errors.New(errors.ErrCodeFormat, layerIDsTitle,
				"Column '%s' of the flattened network is expected to have a defined value in each cell.",
				mln.ColLayerID)
		}
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return slices.Compact(ids), nil
}

// AggregatedLayerIDs returns the sorted distinct layer IDs found in the
// list-valued "Layer ID" column of an aggregated node or edge table.
func AggregatedLayerIDs(t *graph.Table) ([]int, error) {
	var ids []int
	for _, r := range t.Rows() {
		list, ok := t.Ints(r, mln.ColLayerID)
		if !ok {
			return nil, errors.New(errors.ErrCodeFormat, layerIDsTitle,
				"Column '%s' of the aggregated network is expected to have a defined value in each cell.",
				mln.ColLayerID)
		}
		ids = append(ids, list...)
	}
	slices.Sort(ids)
	return slices.Compact(ids), nil
}

// LayerCount returns the highest layer ID of a flattened graph.
func LayerCount(flat *graph.Graph) (int, error) {
	ids, err := LayerIDs(flat.NodeTable())
	if err != nil || len(ids) == 0 {
		return 0, err
	}
	return ids[len(ids)-1], nil
}
