package mln

import (
	"github.com/timenexus/timenexus/pkg/graph"
)

// Collection is the set of graphs materialising one multilayer network:
// the flattened graph, the aggregated graph and one graph per layer. Layer
// graphs carry the inter-layer edge tables as auxiliary tables.
type Collection struct {
	Name       string
	Flattened  *graph.Graph
	Aggregated *graph.Graph
	Layers     []*graph.Graph
}

// Graphs returns every graph of the collection: flattened, aggregated, then layers.
func (c *Collection) Graphs() []*graph.Graph {
	var out []*graph.Graph
	if c.Flattened != nil {
		out = append(out, c.Flattened)
	}
	if c.Aggregated != nil {
		out = append(out, c.Aggregated)
	}
	return append(out, c.Layers...)
}

// Layer returns the layer graph whose "Layer ID" attribute is k.
func (c *Collection) Layer(k int) (*graph.Graph, bool) {
	for _, g := range c.Layers {
		if id, ok := g.Attrs().Int(graph.GraphRow, ColLayerID); ok && id == k {
			return g, true
		}
	}
	return nil, false
}

// InterTable returns the inter-layer edge table coupling k to k+1.
func (c *Collection) InterTable(k int) (*graph.Table, bool) {
	g, ok := c.Layer(k)
	if !ok {
		return nil, false
	}
	return g.Table(InterTableName(k, k+1))
}

// LayerIDs returns the "Layer ID" of every layer graph, in collection order.
func (c *Collection) LayerIDs() []int {
	var out []int
	for _, g := range c.Layers {
		if id, ok := g.Attrs().Int(graph.GraphRow, ColLayerID); ok {
			out = append(out, id)
		}
	}
	return out
}

// Register puts every graph of the collection into s.
func (c *Collection) Register(s graph.Store) {
	for _, g := range c.Graphs() {
		s.Put(g)
	}
}

// Unregister removes every graph of the collection from s.
func (c *Collection) Unregister(s graph.Store) {
	for _, g := range c.Graphs() {
		if g.ID() != "" {
			_ = s.Delete(g.ID())
		}
	}
}
