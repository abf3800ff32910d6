package transform

import (
	"slices"

	"github.com/timenexus/timenexus/pkg/graph"
	"github.com/timenexus/timenexus/pkg/mln"
)

// SelectLayers copies part of a flattened graph into a new flattened graph
// called name.
//
// A node is copied when its "Layer ID" is in layers and its flattened name
// is in nodes; a nil nodes slice selects every node. An edge is copied when
// both endpoints were copied and it is either an intra-layer edge of a
// selected layer or an inter-layer edge k->k+1 with both k and k+1
// selected. Every column is copied by name and type; "Layer ID" and "Edge
// label" are recreated on the copy.
func SelectLayers(flat *graph.Graph, layers []int, nodes []string, name string) (*graph.Graph, error) {
	var keep map[string]bool
	if nodes != nil {
		keep = make(map[string]bool, len(nodes))
		for _, n := range nodes {
			keep[n] = true
		}
	}
	selected := func(k int) bool { return slices.Contains(layers, k) }

	out := graph.New(name)
	if err := markFlattened(out); err != nil {
		return nil, err
	}
	srcNodes, srcEdges := flat.NodeTable(), flat.EdgeTable()
	dstNodes, dstEdges := out.NodeTable(), out.EdgeTable()
	dstNodes.CopyColumns(srcNodes, mln.ColLayerID, mln.ColEdgeLabel)
	dstEdges.CopyColumns(srcEdges, mln.ColLayerID, mln.ColEdgeLabel)
	_ = dstNodes.CreateColumn(mln.ColLayerID, graph.IntType)
	_ = dstEdges.CreateColumn(mln.ColLayerID, graph.IntType)
	_ = dstEdges.CreateColumn(mln.ColEdgeLabel, graph.StringType)

	added := make(map[int64]int64)
	for _, n := range flat.Nodes() {
		id, ok := srcNodes.Int(n, mln.ColLayerID)
		if !ok || !selected(id) {
			continue
		}
		if keep != nil && !keep[flat.NodeName(n)] {
			continue
		}
		c := out.AddNode()
		dstNodes.CopyRow(srcNodes, n, c)
		added[n] = c
	}

	for _, e := range flat.Edges() {
		label, _ := srcEdges.String(e.ID, mln.ColEdgeLabel)
		id, ok := srcEdges.Int(e.ID, mln.ColLayerID)
		if !ok {
			continue
		}
		switch label {
		case mln.LabelIntra:
			if !selected(id) {
				continue
			}
		case mln.LabelInter:
			if !selected(id) || !selected(id+1) {
				continue
			}
		default:
			continue
		}
		s, okS := added[e.Source]
		t, okT := added[e.Target]
		if !okS || !okT {
			continue
		}
		c, err := out.AddEdge(s, t, e.Directed)
		if err != nil {
			return nil, err
		}
		dstEdges.CopyRow(srcEdges, e.ID, c)
	}
	return out, nil
}

// NodeNames returns the name of every node of g, in node order.
func NodeNames(g *graph.Graph) []string {
	out := make([]string, 0, g.NodeCount())
	for _, n := range g.Nodes() {
		out = append(out, g.NodeName(n))
	}
	return out
}
