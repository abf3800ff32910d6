package format

import (
	"github.com/timenexus/timenexus/pkg/errors"
	"github.com/timenexus/timenexus/pkg/graph"
	"github.com/timenexus/timenexus/pkg/mln"
)

// hostColumns are bookkeeping columns of imported graphs that never become
// model columns.
var hostColumns = map[string]bool{
	"SUID":               true,
	"shared name":        true,
	"selected":           true,
	"shared interaction": true,
	"interaction":        true,
}

// ValidateModel checks that every column of a layer has as many rows as
// the layer's first column, that node layers are named and weighted, and
// that edge layers have both endpoints, a weight and a direction.
func ValidateModel(m *mln.Model) error {
	for k, l := range m.NodeLayers() {
		if l.Names == nil && l.Len() > 0 {
			return modelError("The node table of the layer %d has no column '%s'.", k+1, mln.ColName)
		}
		if err := sameLength(l, mln.NodeTable, k+1); err != nil {
			return err
		}
		if l.Weights == nil && l.Len() > 0 {
			return modelError("The node table of the layer %d has no column '%s'.", k+1, mln.ColWeight)
		}
	}
	for _, kind := range []mln.TableKind{mln.IntraEdgeTable, mln.InterEdgeTable} {
		layers := m.IntraLayers()
		if kind == mln.InterEdgeTable {
			layers = m.InterLayers()
		}
		for k, l := range layers {
			if l.Len() > 0 && (l.Sources == nil || l.Targets == nil) {
				return modelError("The %s of the layer %d needs both a '%s' and a '%s' column.",
					kind, k+1, mln.ColSource, mln.ColTarget)
			}
			if err := sameLength(l, kind, k+1); err != nil {
				return err
			}
			if l.Len() == 0 {
				continue
			}
			if l.Weights == nil {
				return modelError("The %s of the layer %d has no column '%s'.", kind, k+1, mln.ColWeight)
			}
			if l.Directions == nil {
				return modelError("The %s of the layer %d has no column '%s'.", kind, k+1, mln.ColDirection)
			}
		}
	}
	return nil
}

func sameLength(l mln.Layer, kind mln.TableKind, k int) error {
	want := l.Len()
	for _, c := range l.Columns() {
		if c.Len() != want {
			return modelError("The column '%s' of the %s of the layer %d has %d rows, while %d are expected.",
				c.ColumnName(), kind, k, c.Len(), want)
		}
	}
	return nil
}

func modelError(format string, args ...any) error {
	return errors.New(errors.ErrCodeFormat, "Inconsistent multi-layer network", format, args...)
}

// ReadModel validates a layered collection and rebuilds the model it
// represents. Intra-layer endpoints come from the structural edges; inter
// endpoints come from the "Source" and "Target" columns of the inter table
// or, if those are absent, from its interaction names.
func ReadModel(layers []*graph.Graph) (*mln.Model, error) {
	if err := ValidateLayers(layers); err != nil {
		return nil, err
	}
	layers = Layers(layers)
	m, err := mln.NewModel(len(layers))
	if err != nil {
		return nil, err
	}
	for i, g := range layers {
		k := i + 1
		if err := readNodes(m, k, g); err != nil {
			return nil, err
		}
		if err := readIntraEdges(m, k, g); err != nil {
			return nil, err
		}
		if k < len(layers) {
			inter, _ := g.Table(mln.InterTableName(k, k+1))
			if err := readInterEdges(m, k, inter); err != nil {
				return nil, err
			}
		}
	}
	return m, ValidateModel(m)
}

func readNodes(m *mln.Model, k int, g *graph.Graph) error {
	t := g.NodeTable()
	rows := g.Nodes()
	names := make([]string, len(rows))
	for i, n := range rows {
		names[i] = g.NodeName(n)
	}
	if err := m.AddNodeColumn(mln.NodeTable, k, names); err != nil {
		return err
	}
	if err := m.AddWeight(mln.NodeTable, k, floats(t, rows, mln.ColWeight)); err != nil {
		return err
	}
	return addOthers(m, mln.NodeTable, k, t, rows, mln.ColName, mln.ColWeight, mln.ColLayerID)
}

func readIntraEdges(m *mln.Model, k int, g *graph.Graph) error {
	t := g.EdgeTable()
	edges := g.Edges()
	rows := make([]int64, len(edges))
	sources := make([]string, len(edges))
	targets := make([]string, len(edges))
	directed := make([]bool, len(edges))
	for i, e := range edges {
		rows[i] = e.ID
		sources[i] = g.NodeName(e.Source)
		targets[i] = g.NodeName(e.Target)
		if d, ok := t.Bool(e.ID, mln.ColDirection); ok {
			directed[i] = d
		} else {
			directed[i] = e.Directed
		}
	}
	if err := m.AddSourceColumn(mln.IntraEdgeTable, k, sources); err != nil {
		return err
	}
	if err := m.AddTargetColumn(mln.IntraEdgeTable, k, targets); err != nil {
		return err
	}
	if err := m.AddWeight(mln.IntraEdgeTable, k, floats(t, rows, mln.ColWeight)); err != nil {
		return err
	}
	if err := m.AddDirection(mln.IntraEdgeTable, k, directed); err != nil {
		return err
	}
	return addOthers(m, mln.IntraEdgeTable, k, t, rows,
		mln.ColName, mln.ColWeight, mln.ColDirection, mln.ColSource, mln.ColTarget, mln.ColLayerID, mln.ColEdgeLabel)
}

func readInterEdges(m *mln.Model, k int, t *graph.Table) error {
	rows := t.Rows()
	var sources, targets []string
	if t.HasColumn(mln.ColSource) && t.HasColumn(mln.ColTarget) {
		sources = strs(t, rows, mln.ColSource)
		targets = strs(t, rows, mln.ColTarget)
	} else {
		for _, r := range rows {
			name, _ := t.String(r, mln.ColName)
			s, tg, err := mln.ParseInteraction(name)
			if err != nil {
				return err
			}
			sources = append(sources, s)
			targets = append(targets, tg)
		}
	}
	if err := m.AddSourceColumn(mln.InterEdgeTable, k, sources); err != nil {
		return err
	}
	if err := m.AddTargetColumn(mln.InterEdgeTable, k, targets); err != nil {
		return err
	}
	if err := m.AddWeight(mln.InterEdgeTable, k, floats(t, rows, mln.ColWeight)); err != nil {
		return err
	}
	directed := make([]bool, len(rows))
	for i, r := range rows {
		directed[i], _ = t.Bool(r, mln.ColDirection)
	}
	if err := m.AddDirection(mln.InterEdgeTable, k, directed); err != nil {
		return err
	}
	return addOthers(m, mln.InterEdgeTable, k, t, rows,
		mln.ColName, mln.ColWeight, mln.ColDirection, mln.ColSource, mln.ColTarget, mln.ColLayerID, mln.ColEdgeLabel)
}

func addOthers(m *mln.Model, kind mln.TableKind, k int, t *graph.Table, rows []int64, reserved ...string) error {
	skip := make(map[string]bool, len(reserved))
	for _, r := range reserved {
		skip[r] = true
	}
	for _, c := range t.Columns() {
		if skip[c.Name] || hostColumns[c.Name] {
			continue
		}
		if err := m.AddOtherColumn(kind, k, ColumnFromTable(t, c, rows)); err != nil {
			return err
		}
	}
	return nil
}

// ColumnFromTable reads a table column into a typed model column, one value
// per row in rows. Null cells become zero values.
func ColumnFromTable(t *graph.Table, c graph.Column, rows []int64) mln.AnyColumn {
	switch c.Type {
	case graph.StringType:
		return readColumn[string](t, c.Name, rows)
	case graph.DoubleType:
		return readColumn[float64](t, c.Name, rows)
	case graph.IntType:
		return readColumn[int](t, c.Name, rows)
	case graph.BoolType:
		return readColumn[bool](t, c.Name, rows)
	case graph.ListOf(graph.String):
		return readColumn[[]string](t, c.Name, rows)
	case graph.ListOf(graph.Double):
		return readColumn[[]float64](t, c.Name, rows)
	case graph.ListOf(graph.Int):
		return readColumn[[]int](t, c.Name, rows)
	default:
		return readColumn[[]bool](t, c.Name, rows)
	}
}

func readColumn[E mln.Value](t *graph.Table, col string, rows []int64) *mln.Column[E] {
	values := make([]E, len(rows))
	for i, r := range rows {
		if v, ok := t.Get(r, col).(E); ok {
			values[i] = v
		}
	}
	return &mln.Column[E]{Name: col, Values: values}
}

func floats(t *graph.Table, rows []int64, col string) []float64 {
	return readColumn[float64](t, col, rows).Values
}

func strs(t *graph.Table, rows []int64, col string) []string {
	return readColumn[string](t, col, rows).Values
}
