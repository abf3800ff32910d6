package mln

import (
	"slices"

	"github.com/timenexus/timenexus/pkg/errors"
)

// TableKind addresses one of the three layer families of a [Model].
type TableKind int

const (
	NodeTable TableKind = iota + 1
	IntraEdgeTable
	InterEdgeTable
)

// String returns a readable kind name.
func (k TableKind) String() string {
	switch k {
	case NodeTable:
		return "node table"
	case IntraEdgeTable:
		return "intra-layer edge table"
	case InterEdgeTable:
		return "inter-layer edge table"
	}
	return "unknown table"
}

const builderTitle = "Conversion error"

func builderError(format string, args ...any) error {
	return errors.New(errors.ErrCodeBuilder, builderTitle, format, args...)
}

// Model is a multilayer network: N node layers, N intra-layer edge layers
// and N-1 inter-layer edge layers, where inter layer k couples layer k to
// layer k+1. Layer indices are 1-based.
//
// Columns are appended one at a time. Column lengths are not checked here;
// format.ValidateModel does it before conversion.
type Model struct {
	nodes []*NodeLayer
	intra []*EdgeLayer
	inter []*EdgeLayer
}

// NewModel creates an empty model with n layers.
func NewModel(n int) (*Model, error) {
	if n < 1 {
		return nil, builderError("A multi-layer network needs at least one layer, got %d.", n)
	}
	m := &Model{
		nodes: make([]*NodeLayer, n),
		intra: make([]*EdgeLayer, n),
		inter: make([]*EdgeLayer, n-1),
	}
	for i := range n {
		m.nodes[i] = &NodeLayer{}
		m.intra[i] = &EdgeLayer{}
	}
	for i := range n - 1 {
		m.inter[i] = &EdgeLayer{}
	}
	return m, nil
}

// LayerCount returns N.
func (m *Model) LayerCount() int { return len(m.nodes) }

// AddNodeColumn sets the node names of a node layer.
func (m *Model) AddNodeColumn(kind TableKind, layer int, names []string) error {
	if kind != NodeTable {
		return builderError("Add node column is possible only for node tables.")
	}
	l, err := m.nodeLayer(layer)
	if err != nil {
		return err
	}
	l.Names = NewColumn(ColName, names)
	return nil
}

// AddSourceColumn sets the source node names of an edge layer.
func (m *Model) AddSourceColumn(kind TableKind, layer int, sources []string) error {
	if kind == NodeTable {
		return builderError("Add source-node column is possible only for edge tables.")
	}
	l, err := m.edgeLayer(kind, layer)
	if err != nil {
		return err
	}
	l.Sources = NewColumn(ColSource, sources)
	return nil
}

// AddTargetColumn sets the target node names of an edge layer.
func (m *Model) AddTargetColumn(kind TableKind, layer int, targets []string) error {
	if kind == NodeTable {
		return builderError("Add target-node column is possible only for edge tables.")
	}
	l, err := m.edgeLayer(kind, layer)
	if err != nil {
		return err
	}
	l.Targets = NewColumn(ColTarget, targets)
	return nil
}

// AddDirection sets the direction column of an edge layer; true is directed.
func (m *Model) AddDirection(kind TableKind, layer int, directed []bool) error {
	if kind == NodeTable {
		return builderError("Add direction column is possible only for edge tables.")
	}
	l, err := m.edgeLayer(kind, layer)
	if err != nil {
		return err
	}
	l.Directions = NewColumn(ColDirection, directed)
	return nil
}

// AddWeight sets the weight column of any layer.
func (m *Model) AddWeight(kind TableKind, layer int, weights []float64) error {
	l, err := m.table(kind, layer)
	if err != nil {
		return err
	}
	col := NewColumn(ColWeight, weights)
	switch l := l.(type) {
	case *NodeLayer:
		l.Weights = col
	case *EdgeLayer:
		l.Weights = col
	}
	return nil
}

// AddOtherColumn appends a non-reserved column to any layer.
func (m *Model) AddOtherColumn(kind TableKind, layer int, col AnyColumn) error {
	l, err := m.table(kind, layer)
	if err != nil {
		return err
	}
	switch l := l.(type) {
	case *NodeLayer:
		l.Others = append(l.Others, col)
	case *EdgeLayer:
		l.Others = append(l.Others, col)
	}
	return nil
}

// Tables returns the layers of one kind.
func (m *Model) Tables(kind TableKind) ([]Layer, error) {
	var out []Layer
	switch kind {
	case NodeTable:
		for _, l := range m.nodes {
			out = append(out, l)
		}
	case IntraEdgeTable:
		for _, l := range m.intra {
			out = append(out, l)
		}
	case InterEdgeTable:
		for _, l := range m.inter {
			out = append(out, l)
		}
	default:
		return nil, builderError("Unknown requested table.")
	}
	return out, nil
}

// NodeLayers returns the N node layers.
func (m *Model) NodeLayers() []*NodeLayer { return m.nodes }

// IntraLayers returns the N intra-layer edge layers.
func (m *Model) IntraLayers() []*EdgeLayer { return m.intra }

// InterLayers returns the N-1 inter-layer edge layers.
func (m *Model) InterLayers() []*EdgeLayer { return m.inter }

// NodeLayer returns node layer k.
func (m *Model) NodeLayer(k int) (*NodeLayer, error) { return m.nodeLayer(k) }

// IntraLayer returns intra-layer edge layer k.
func (m *Model) IntraLayer(k int) (*EdgeLayer, error) { return m.edgeLayer(IntraEdgeTable, k) }

// InterLayer returns the inter-layer edge layer coupling k to k+1.
func (m *Model) InterLayer(k int) (*EdgeLayer, error) { return m.edgeLayer(InterEdgeTable, k) }

// NodeNames returns the node names of layer k.
func (m *Model) NodeNames(k int) []string {
	l, err := m.nodeLayer(k)
	if err != nil {
		return nil
	}
	return l.NodeNames()
}

// NodesAcrossLayers returns every distinct node name of the model, sorted.
func (m *Model) NodesAcrossLayers() []string {
	seen := make(map[string]bool)
	var out []string
	for _, l := range m.nodes {
		for _, n := range l.NodeNames() {
			if !seen[n] {
				seen[n] = true
				out = append(out, n)
			}
		}
	}
	slices.Sort(out)
	return out
}

// IntraSources returns the source names of intra-layer edges of layer k.
func (m *Model) IntraSources(k int) []string { return m.edgeNames(IntraEdgeTable, k, true) }

// IntraTargets returns the target names of intra-layer edges of layer k.
func (m *Model) IntraTargets(k int) []string { return m.edgeNames(IntraEdgeTable, k, false) }

// InterSources returns the source names of inter-layer edges k->k+1.
func (m *Model) InterSources(k int) []string { return m.edgeNames(InterEdgeTable, k, true) }

// InterTargets returns the target names of inter-layer edges k->k+1.
func (m *Model) InterTargets(k int) []string { return m.edgeNames(InterEdgeTable, k, false) }

func (m *Model) edgeNames(kind TableKind, k int, sources bool) []string {
	l, err := m.edgeLayer(kind, k)
	if err != nil {
		return nil
	}
	if sources {
		return l.SourceNames()
	}
	return l.TargetNames()
}

func (m *Model) table(kind TableKind, layer int) (Layer, error) {
	if kind == NodeTable {
		return m.nodeLayer(layer)
	}
	return m.edgeLayer(kind, layer)
}

func (m *Model) nodeLayer(k int) (*NodeLayer, error) {
	if k < 1 || k > len(m.nodes) {
		return nil, builderError("The layer %d is out of range [1, %d].", k, len(m.nodes))
	}
	return m.nodes[k-1], nil
}

func (m *Model) edgeLayer(kind TableKind, k int) (*EdgeLayer, error) {
	var layers []*EdgeLayer
	switch kind {
	case IntraEdgeTable:
		layers = m.intra
	case InterEdgeTable:
		layers = m.inter
	default:
		return nil, builderError("This is not an edge table.")
	}
	if k < 1 || k > len(layers) {
		return nil, builderError("The layer %d of the %s is out of range [1, %d].", k, kind, len(layers))
	}
	return layers[k-1], nil
}
