package transform

import (
	"slices"

	"github.com/timenexus/timenexus/pkg/graph"
	"github.com/timenexus/timenexus/pkg/mln"
	"github.com/timenexus/timenexus/pkg/mln/format"
)

// Aggregate collapses a flattened graph by original node name.
//
// Every original name becomes one node whose "Layer ID" lists the layers
// it occurs in. Intra-layer edges are grouped by the sorted pair of their
// original endpoint names; each group becomes one undirected edge listing
// its layers. Inter-layer edges and every other attribute are dropped.
func Aggregate(flat *graph.Graph) (*graph.Graph, error) {
	if _, err := format.LayerIDs(flat.NodeTable()); err != nil {
		return nil, err
	}
	if _, err := format.LayerIDs(flat.EdgeTable()); err != nil {
		return nil, err
	}

	var names []string
	nodeLayers := make(map[string][]int)
	for _, n := range flat.Nodes() {
		id, _ := flat.NodeTable().Int(n, mln.ColLayerID)
		name := mln.OriginalName(flat.NodeName(n))
		if _, ok := nodeLayers[name]; !ok {
			names = append(names, name)
		}
		nodeLayers[name] = append(nodeLayers[name], id)
	}

	var pairs [][2]string
	edgeLayers := make(map[[2]string][]int)
	for _, e := range flat.Edges() {
		if label, _ := flat.EdgeTable().String(e.ID, mln.ColEdgeLabel); label != mln.LabelIntra {
			continue
		}
		id, _ := flat.EdgeTable().Int(e.ID, mln.ColLayerID)
		pair := [2]string{mln.OriginalName(flat.NodeName(e.Source)), mln.OriginalName(flat.NodeName(e.Target))}
		if pair[1] < pair[0] {
			pair[0], pair[1] = pair[1], pair[0]
		}
		if _, ok := edgeLayers[pair]; !ok {
			pairs = append(pairs, pair)
		}
		edgeLayers[pair] = append(edgeLayers[pair], id)
	}

	agg := graph.New(mln.FlagAggregated)
	if err := agg.SetFlag(mln.FlagMultilayer, true); err != nil {
		return nil, err
	}
	if err := agg.SetFlag(mln.FlagAggregated, true); err != nil {
		return nil, err
	}
	nodes, edges := agg.NodeTable(), agg.EdgeTable()
	layerList := graph.ListOf(graph.Int)
	_ = nodes.CreateColumn(mln.ColWeight, graph.DoubleType)
	_ = nodes.CreateColumn(mln.ColLayerID, layerList)
	_ = edges.CreateColumn(mln.ColWeight, graph.DoubleType)
	_ = edges.CreateColumn(mln.ColDirection, graph.BoolType)
	_ = edges.CreateColumn(mln.ColLayerID, layerList)

	added := make(map[string]int64, len(names))
	for _, name := range names {
		n := agg.AddNamedNode(name)
		added[name] = n
		_ = nodes.Set(n, mln.ColLayerID, distinct(nodeLayers[name]))
	}
	for _, pair := range pairs {
		e, err := agg.AddEdge(added[pair[0]], added[pair[1]], false)
		if err != nil {
			return nil, err
		}
		_ = edges.Set(e, mln.ColName, mln.Interaction(pair[0], pair[1]))
		_ = edges.Set(e, mln.ColDirection, false)
		_ = edges.Set(e, mln.ColLayerID, distinct(edgeLayers[pair]))
	}
	return agg, nil
}

func distinct(ids []int) []int {
	out := slices.Clone(ids)
	slices.Sort(out)
	return slices.Compact(out)
}
