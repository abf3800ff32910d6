package extract

import (
	"context"

	"github.com/timenexus/timenexus/pkg/graph"
	"github.com/timenexus/timenexus/pkg/mln"
)

// Queries maps the flattened name of a query node to an optional value.
// An empty value marks a boolean query.
type Queries map[string]string

// Names returns the query node names.
func (q Queries) Names() []string {
	out := make([]string, 0, len(q))
	for name := range q {
		out = append(out, name)
	}
	return out
}

// QueryColumns maps a layer ID to the node column holding its queries.
// A layer without an entry has no queries.
type QueryColumns map[int]string

// Service is an external subnetwork extraction capability.
type Service interface {
	// Name identifies the service in logs and titles.
	Name() string

	// CheckPreconditions reports the criteria g does not meet, or "" when
	// it meets them all. It may normalize g in place so that every
	// criterion holds afterwards; the orchestrator only hands it copies.
	CheckPreconditions(ctx context.Context, g *graph.Graph) (string, error)

	// Extract computes the subnetwork of g linking sources to targets.
	Extract(ctx context.Context, g *graph.Graph, sources, targets Queries) (*Network, error)
}

// QueriesFromLayer reads the query nodes of layer from column of a
// flattened graph. A boolean column selects its true cells with no value;
// a string column selects its non-empty cells with their value. A missing
// column, or one of another type, gives no query.
func QueriesFromLayer(g *graph.Graph, layer int, column string) Queries {
	out := make(Queries)
	t := g.NodeTable()
	col, ok := t.Column(column)
	if !ok {
		return out
	}
	for _, n := range g.Nodes() {
		if id, ok := t.Int(n, mln.ColLayerID); !ok || id != layer {
			continue
		}
		switch col.Type {
		case graph.BoolType:
			if v, ok := t.Bool(n, column); ok && v {
				out[g.NodeName(n)] = ""
			}
		case graph.StringType:
			if v, ok := t.String(n, column); ok && v != "" {
				out[g.NodeName(n)] = v
			}
		}
	}
	return out
}
