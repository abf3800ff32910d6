package transform

import (
	"github.com/timenexus/timenexus/pkg/graph"
	"github.com/timenexus/timenexus/pkg/mln"
	"github.com/timenexus/timenexus/pkg/mln/format"
)

// NodeLayers indexes the nodes of a flattened graph by layer ID and
// flattened name. A name occurring twice in one layer is an error.
func NodeLayers(flat *graph.Graph) (map[int]map[string]int64, error) {
	out := make(map[int]map[string]int64)
	for _, n := range flat.Nodes() {
		id, ok := flat.NodeTable().Int(n, mln.ColLayerID)
		if !ok {
			continue
		}
		if out[id] == nil {
			out[id] = make(map[string]int64)
		}
		name := flat.NodeName(n)
		if _, dup := out[id][name]; dup {
			return nil, writerError("Duplicated node names", "Node names not unique")
		}
		out[id][name] = n
	}
	return out, nil
}

// LayerNetworks builds one graph per layer ID in layers from a flattened
// graph. Node names lose their layer suffix and intra-layer edges are
// renamed after the original endpoint names. Layer graphs are named with
// [mln.LayerName] and carry the "Layer ID" graph attribute.
func LayerNetworks(flat *graph.Graph, layers []int) []*graph.Graph {
	srcNodes, srcEdges := flat.NodeTable(), flat.EdgeTable()
	out := make([]*graph.Graph, len(layers))
	for i, k := range layers {
		g := graph.New(mln.LayerName(k, len(layers)))
		_ = g.SetFlag(mln.FlagMultilayer, true)
		_ = g.Attrs().EnsureColumn(mln.ColLayerID, graph.IntType)
		_ = g.Attrs().Set(graph.GraphRow, mln.ColLayerID, k)
		nodes, edges := g.NodeTable(), g.EdgeTable()
		nodes.CopyColumns(srcNodes, mln.ColLayerID)
		edges.CopyColumns(srcEdges, mln.ColLayerID, mln.ColEdgeLabel)

		added := make(map[int64]int64)
		for _, n := range flat.Nodes() {
			if id, ok := srcNodes.Int(n, mln.ColLayerID); !ok || id != k {
				continue
			}
			c := g.AddNode()
			nodes.CopyRow(srcNodes, n, c, mln.ColLayerID)
			_ = nodes.Set(c, mln.ColName, mln.OriginalName(flat.NodeName(n)))
			added[n] = c
		}
		for _, e := range flat.Edges() {
			if !isLayerEdge(srcEdges, e.ID, mln.LabelIntra, k) {
				continue
			}
			s, okS := added[e.Source]
			t, okT := added[e.Target]
			if !okS || !okT {
				continue
			}
			c, _ := g.AddEdge(s, t, e.Directed)
			edges.CopyRow(srcEdges, e.ID, c, mln.ColLayerID, mln.ColEdgeLabel)
			_ = edges.Set(c, mln.ColName, mln.Interaction(g.NodeName(s), g.NodeName(t)))
		}
		out[i] = g
	}
	return out
}

// InterEdgeTables builds the inter-layer edge tables between consecutive
// entries of layers. Table i holds the inter-layer edges tagged with
// layers[i]; it is empty when layers[i+1] is not layers[i]+1. Rows carry
// the original endpoint names in "Source" and "Target".
func InterEdgeTables(flat *graph.Graph, layers []int) []*graph.Table {
	if len(layers) < 2 {
		return nil
	}
	srcEdges := flat.EdgeTable()
	out := make([]*graph.Table, len(layers)-1)
	for i := range out {
		k := layers[i]
		t := graph.NewTable()
		_ = t.CreateColumn(mln.ColName, graph.StringType)
		_ = t.CreateColumn(mln.ColSource, graph.StringType)
		_ = t.CreateColumn(mln.ColTarget, graph.StringType)
		t.CopyColumns(srcEdges, mln.ColLayerID, mln.ColEdgeLabel)

		if layers[i+1] == k+1 {
			var row int64
			for _, e := range flat.Edges() {
				if !isLayerEdge(srcEdges, e.ID, mln.LabelInter, k) {
					continue
				}
				row++
				s := mln.OriginalName(flat.NodeName(e.Source))
				tg := mln.OriginalName(flat.NodeName(e.Target))
				t.CopyRow(srcEdges, e.ID, row, mln.ColLayerID, mln.ColEdgeLabel)
				_ = t.Set(row, mln.ColName, mln.Interaction(s, tg))
				_ = t.Set(row, mln.ColSource, s)
				_ = t.Set(row, mln.ColTarget, tg)
			}
		}
		out[i] = t
	}
	return out
}

func isLayerEdge(edges *graph.Table, e int64, label string, k int) bool {
	l, _ := edges.String(e, mln.ColEdgeLabel)
	id, ok := edges.Int(e, mln.ColLayerID)
	return ok && l == label && id == k
}

// Derive rebuilds a whole collection from a flattened graph restricted to
// layers: the aggregated graph, one graph per layer, and the inter-layer
// tables, each attached to both layers it couples under
// [mln.InterTableName].
func Derive(flat *graph.Graph, layers []int) (*mln.Collection, error) {
	agg, err := Aggregate(flat)
	if err != nil {
		return nil, err
	}
	c := &mln.Collection{
		Name:       flat.Name(),
		Flattened:  flat,
		Aggregated: agg,
		Layers:     LayerNetworks(flat, layers),
	}
	for i, t := range InterEdgeTables(flat, layers) {
		k := layers[i]
		name := mln.InterTableName(k, k+1)
		c.Layers[i].AddTable(name, t)
		c.Layers[i+1].AddTable(name, t)
	}
	return c, nil
}

// ImportFlattened marks g as a flattened graph, validates it and derives
// the collection covering every layer ID found on its nodes.
func ImportFlattened(g *graph.Graph) (*mln.Collection, error) {
	if err := markFlattened(g); err != nil {
		return nil, err
	}
	if err := format.ValidateFlattened(g); err != nil {
		return nil, err
	}
	layers, err := format.LayerIDs(g.NodeTable())
	if err != nil {
		return nil, err
	}
	return Derive(g, layers)
}

// FromModel flattens m and derives its full collection. A non-empty name
// names both the collection and its flattened graph.
func FromModel(m *mln.Model, name string) (*mln.Collection, error) {
	flat, err := Flatten(m)
	if err != nil {
		return nil, err
	}
	if name != "" {
		flat.SetName(name)
	}
	layers := make([]int, m.LayerCount())
	for i := range layers {
		layers[i] = i + 1
	}
	return Derive(flat, layers)
}
