package transform

import (
	"github.com/timenexus/timenexus/pkg/errors"
	"github.com/timenexus/timenexus/pkg/graph"
	"github.com/timenexus/timenexus/pkg/mln"
	"github.com/timenexus/timenexus/pkg/mln/format"
)

// reserved columns are written by the converter itself; model columns with
// these names are not copied.
var reserved = map[string]bool{
	mln.ColName:      true,
	mln.ColWeight:    true,
	mln.ColDirection: true,
	mln.ColSource:    true,
	mln.ColTarget:    true,
	mln.ColLayerID:   true,
	mln.ColEdgeLabel: true,
}

func writerError(title, format string, args ...any) error {
	return errors.New(errors.ErrCodeWriter, title, format, args...)
}

// CheckNodeUniqueness fails when a node name occurs twice in a node layer.
func CheckNodeUniqueness(m *mln.Model) error {
	for k, l := range m.NodeLayers() {
		seen := make(map[string]bool, l.Len())
		for _, name := range l.NodeNames() {
			if seen[name] {
				return writerError("Duplicated node names", "Node names are not unique within the layer %d", k+1)
			}
			seen[name] = true
		}
	}
	return nil
}

// Flatten merges every layer of m into one graph.
//
// Node i of layer k becomes "name_k" with "Layer ID" k. Intra-layer edges
// keep their declared direction, are named after their flattened
// endpoints and labelled "intra-layer". Inter-layer edges k->k+1 resolve
// their source in layer k and their target in layer k+1, and get "Layer
// ID" k and the label "inter-layer".
func Flatten(m *mln.Model) (*graph.Graph, error) {
	if err := format.ValidateModel(m); err != nil {
		return nil, err
	}
	if err := CheckNodeUniqueness(m); err != nil {
		return nil, err
	}

	g := graph.New(mln.FlagFlattened)
	if err := markFlattened(g); err != nil {
		return nil, err
	}
	nodes, edges := g.NodeTable(), g.EdgeTable()
	_ = nodes.CreateColumn(mln.ColLayerID, graph.IntType)
	_ = nodes.CreateColumn(mln.ColWeight, graph.DoubleType)
	_ = edges.CreateColumn(mln.ColWeight, graph.DoubleType)
	_ = edges.CreateColumn(mln.ColDirection, graph.BoolType)
	_ = edges.CreateColumn(mln.ColLayerID, graph.IntType)
	_ = edges.CreateColumn(mln.ColEdgeLabel, graph.StringType)

	index := make([]map[string]int64, m.LayerCount())
	for i, l := range m.NodeLayers() {
		k := i + 1
		if err := createColumns(nodes, l.Others); err != nil {
			return nil, err
		}
		index[i] = make(map[string]int64, l.Len())
		for row, name := range l.NodeNames() {
			n := g.AddNamedNode(mln.FlatName(name, k))
			index[i][name] = n
			_ = nodes.Set(n, mln.ColLayerID, k)
			if l.Weights != nil {
				_ = nodes.Set(n, mln.ColWeight, l.Weights.Values[row])
			}
			setOthers(nodes, n, l.Others, row)
		}
	}

	for i, l := range m.IntraLayers() {
		if err := addEdges(g, index, l, mln.LabelIntra, i+1, i+1); err != nil {
			return nil, err
		}
	}
	for i, l := range m.InterLayers() {
		if err := addEdges(g, index, l, mln.LabelInter, i+1, i+2); err != nil {
			return nil, err
		}
	}
	return g, nil
}

func markFlattened(g *graph.Graph) error {
	if err := g.SetFlag(mln.FlagMultilayer, true); err != nil {
		return err
	}
	return g.SetFlag(mln.FlagFlattened, true)
}

func resolve(index []map[string]int64, name string, k int) (int64, error) {
	n, ok := index[k-1][name]
	if !ok {
		return 0, writerError("Node name not found", "The node name '%s' is not contained by the layer %d", name, k)
	}
	return n, nil
}

// addEdges adds the edges of l, resolving sources in layer sk and targets
// in layer tk. Edges are tagged with layer sk.
func addEdges(g *graph.Graph, index []map[string]int64, l *mln.EdgeLayer, label string, sk, tk int) error {
	edges := g.EdgeTable()
	if err := createColumns(edges, l.Others); err != nil {
		return err
	}
	sources, targets := l.SourceNames(), l.TargetNames()
	for row := range l.Len() {
		s, err := resolve(index, sources[row], sk)
		if err != nil {
			return err
		}
		t, err := resolve(index, targets[row], tk)
		if err != nil {
			return err
		}
		directed := false
		if l.Directions != nil {
			directed = l.Directions.Values[row]
		}
		e, err := g.AddEdge(s, t, directed)
		if err != nil {
			return err
		}
		_ = edges.Set(e, mln.ColName, mln.Interaction(mln.FlatName(sources[row], sk), mln.FlatName(targets[row], tk)))
		_ = edges.Set(e, mln.ColDirection, directed)
		_ = edges.Set(e, mln.ColLayerID, sk)
		_ = edges.Set(e, mln.ColEdgeLabel, label)
		if l.Weights != nil {
			_ = edges.Set(e, mln.ColWeight, l.Weights.Values[row])
		}
		setOthers(edges, e, l.Others, row)
	}
	return nil
}

// createColumns adds the non-reserved model columns to t. A column that
// already exists with another type is an error.
func createColumns(t *graph.Table, cols []mln.AnyColumn) error {
	for _, c := range cols {
		if reserved[c.ColumnName()] {
			continue
		}
		if err := t.EnsureColumn(c.ColumnName(), c.ColumnType()); err != nil {
			return writerError("Inconsistent column types",
				"The column '%s' does not have the same type in every layer.", c.ColumnName())
		}
	}
	return nil
}

func setOthers(t *graph.Table, id int64, cols []mln.AnyColumn, row int) {
	for _, c := range cols {
		if reserved[c.ColumnName()] {
			continue
		}
		_ = t.Set(id, c.ColumnName(), c.At(row))
	}
}
