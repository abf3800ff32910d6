package normalize

import (
	"context"

	"github.com/timenexus/timenexus/pkg/errors"
	"github.com/timenexus/timenexus/pkg/graph"
	"github.com/timenexus/timenexus/pkg/mln"
)

// Classifier selects, among the edges connecting node to neighbor, the
// edges to merge into one. Directions are read from the "Direction"
// attribute.
type Classifier func(g *graph.Graph, node, neighbor int64) []int64

// Undirected selects the undirected edges of the pair.
func Undirected(g *graph.Graph, node, neighbor int64) []int64 {
	var out []int64
	for _, e := range g.ConnectingEdges(node, neighbor) {
		if !Directed(g, e.ID) {
			out = append(out, e.ID)
		}
	}
	return out
}

// Mixed selects every edge of the pair when at least one is undirected.
func Mixed(g *graph.Graph, node, neighbor int64) []int64 {
	if len(Undirected(g, node, neighbor)) == 0 {
		return nil
	}
	return All(g, node, neighbor)
}

// OppositeDirected selects every edge of the pair when two directed edges
// go in opposite directions.
func OppositeDirected(g *graph.Graph, node, neighbor int64) []int64 {
	var source int64
	var seen, opposite bool
	for _, e := range g.ConnectingEdges(node, neighbor) {
		if !Directed(g, e.ID) {
			continue
		}
		if !seen {
			source, seen = e.Source, true
		} else if e.Source != source {
			opposite = true
		}
	}
	if !opposite {
		return nil
	}
	return All(g, node, neighbor)
}

// Outgoing selects the directed edges going from node to neighbor.
func Outgoing(g *graph.Graph, node, neighbor int64) []int64 {
	var out []int64
	for _, e := range g.ConnectingEdges(node, neighbor) {
		if Directed(g, e.ID) && e.Source == node {
			out = append(out, e.ID)
		}
	}
	return out
}

// Incoming selects the directed edges going from neighbor to node.
func Incoming(g *graph.Graph, node, neighbor int64) []int64 {
	var out []int64
	for _, e := range g.ConnectingEdges(node, neighbor) {
		if Directed(g, e.ID) && e.Source == neighbor {
			out = append(out, e.ID)
		}
	}
	return out
}

// All selects every edge of the pair.
func All(g *graph.Graph, node, neighbor int64) []int64 {
	edges := g.ConnectingEdges(node, neighbor)
	out := make([]int64, len(edges))
	for i, e := range edges {
		out[i] = e.ID
	}
	return out
}

// HasMultiEdges reports whether two nodes are connected by more than one
// edge, whatever their directions.
func HasMultiEdges(g *graph.Graph) bool {
	for _, n := range g.Nodes() {
		if hasMultiEdges(g, n) {
			return true
		}
	}
	return false
}

func hasMultiEdges(g *graph.Graph, n int64) bool {
	return len(g.Neighbors(n)) < len(g.AdjacentEdges(n))
}

// AggregatedWeight returns the mean weight of edges. Null weights count as
// zero; an empty list weighs 0.
func AggregatedWeight(g *graph.Graph, edges []int64) float64 {
	if len(edges) == 0 {
		return 0
	}
	var sum float64
	for _, e := range edges {
		if w, ok := g.EdgeTable().Float(e, mln.ColWeight); ok {
			sum += w
		}
	}
	return sum / float64(len(edges))
}

// AggregateMultiEdges merges parallel edges. For every node with
// multi-edges and each of its neighbors, the classifiers run in order;
// when classifiers[j] selects two edges or more, the first one is kept
// with the mean weight and the direction directed[j], and the others are
// removed.
//
// Only the weight is aggregated: other cells of the kept edge are left
// as they were.
func AggregateMultiEdges(ctx context.Context, g *graph.Graph, classifiers []Classifier, directed []bool) error {
	if len(classifiers) != len(directed) {
		return errors.New(errors.ErrCodeInternal, "Invalid aggregation",
			"%d classifiers were given with %d directions.", len(classifiers), len(directed))
	}
	if err := g.EdgeTable().EnsureColumn(mln.ColWeight, graph.DoubleType); err != nil {
		return err
	}
	for _, n := range g.Nodes() {
		if err := errors.CheckContext(ctx); err != nil {
			return err
		}
		if !hasMultiEdges(g, n) {
			continue
		}
		for _, nb := range g.Neighbors(n) {
			for j, classify := range classifiers {
				edges := classify(g, n, nb)
				if len(edges) < 2 {
					continue
				}
				_ = g.EdgeTable().Set(edges[0], mln.ColWeight, AggregatedWeight(g, edges))
				for _, e := range edges[1:] {
					g.RemoveEdge(e)
				}
				if err := SetDirection(ctx, g, edges[:1], directed[j]); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// AggregateUndirected merges undirected multi-edges into undirected edges.
func AggregateUndirected(ctx context.Context, g *graph.Graph) error {
	return AggregateMultiEdges(ctx, g, []Classifier{Undirected}, []bool{false})
}

// AggregateIdenticallyDirected merges directed multi-edges going the same
// way into one directed edge.
func AggregateIdenticallyDirected(ctx context.Context, g *graph.Graph) error {
	return AggregateMultiEdges(ctx, g, []Classifier{Incoming, Outgoing}, []bool{true, true})
}

// AggregateMixed leaves at most one edge between two nodes: pairs with an
// undirected edge or with opposite directed edges become one undirected
// edge, and remaining directed multi-edges are merged per direction.
func AggregateMixed(ctx context.Context, g *graph.Graph) error {
	return AggregateMultiEdges(ctx, g,
		[]Classifier{Mixed, OppositeDirected, Incoming, Outgoing},
		[]bool{false, false, true, true})
}
