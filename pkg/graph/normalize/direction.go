package normalize

import (
	"context"

	"github.com/timenexus/timenexus/pkg/errors"
	"github.com/timenexus/timenexus/pkg/graph"
	"github.com/timenexus/timenexus/pkg/mln"
)

// Directed reports the declared direction of edge e: the "Direction"
// attribute, with nulls read as undirected.
func Directed(g *graph.Graph, e int64) bool {
	d, ok := g.EdgeTable().Bool(e, mln.ColDirection)
	return ok && d
}

// ResetDirection replaces edge e by an edge between the same endpoints with
// the requested structural orientation. Every cell of e is copied to the
// new edge, whose ID is returned.
func ResetDirection(g *graph.Graph, e int64, directed bool) (int64, error) {
	old, ok := g.Edge(e)
	if !ok {
		return 0, graph.ErrUnknownEdge
	}
	id, err := g.AddEdge(old.Source, old.Target, directed)
	if err != nil {
		return 0, err
	}
	g.EdgeTable().CopyRow(g.EdgeTable(), e, id)
	g.RemoveEdge(e)
	return id, nil
}

// SetDirection sets the "Direction" attribute of edges and replaces the
// edges whose structural orientation disagrees with it.
func SetDirection(ctx context.Context, g *graph.Graph, edges []int64, directed bool) error {
	t := g.EdgeTable()
	if err := t.EnsureColumn(mln.ColDirection, graph.BoolType); err != nil {
		return err
	}
	for _, id := range edges {
		if err := errors.CheckContext(ctx); err != nil {
			return err
		}
		e, ok := g.Edge(id)
		if !ok {
			continue
		}
		_ = t.Set(id, mln.ColDirection, directed)
		if e.Directed != directed {
			if _, err := ResetDirection(g, id, directed); err != nil {
				return err
			}
		}
	}
	return nil
}

// SetUndirected declares every edge of g undirected.
func SetUndirected(ctx context.Context, g *graph.Graph) error {
	return SetDirection(ctx, g, edgeIDs(g), false)
}

// SetDirected declares every edge of g directed. An edge that was
// undirected, or had no direction, is doubled by a directed edge going the
// opposite way, named after its new endpoints.
func SetDirected(ctx context.Context, g *graph.Graph) error {
	t := g.EdgeTable()
	if err := t.EnsureColumn(mln.ColDirection, graph.BoolType); err != nil {
		return err
	}
	for _, e := range g.Edges() {
		if err := errors.CheckContext(ctx); err != nil {
			return err
		}
		if Directed(g, e.ID) {
			continue
		}
		_ = t.Set(e.ID, mln.ColDirection, true)
		id := e.ID
		if !e.Directed {
			var err error
			if id, err = ResetDirection(g, e.ID, true); err != nil {
				return err
			}
		}
		rev, err := g.AddEdge(e.Target, e.Source, true)
		if err != nil {
			return err
		}
		t.CopyRow(t, id, rev)
		_ = t.Set(rev, mln.ColName, mln.Interaction(g.NodeName(e.Target), g.NodeName(e.Source)))
	}
	return nil
}

// DirectedIntraEdges returns the intra-layer edges of a flattened graph
// declared as directed.
func DirectedIntraEdges(g *graph.Graph) []int64 {
	var out []int64
	for _, e := range g.Edges() {
		label, _ := g.EdgeTable().String(e.ID, mln.ColEdgeLabel)
		if label == mln.LabelIntra && Directed(g, e.ID) {
			out = append(out, e.ID)
		}
	}
	return out
}

// HasUndirected reports whether some edge is declared undirected.
func HasUndirected(g *graph.Graph) bool {
	for _, e := range g.Edges() {
		if !Directed(g, e.ID) {
			return true
		}
	}
	return false
}

// HasDirected reports whether some edge is declared directed.
func HasDirected(g *graph.Graph) bool {
	for _, e := range g.Edges() {
		if Directed(g, e.ID) {
			return true
		}
	}
	return false
}

func edgeIDs(g *graph.Graph) []int64 {
	edges := g.Edges()
	out := make([]int64, len(edges))
	for i, e := range edges {
		out[i] = e.ID
	}
	return out
}
