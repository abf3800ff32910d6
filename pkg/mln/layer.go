package mln

// Layer is the part shared by node and edge layers: a weight column and
// any number of other columns.
type Layer interface {
	// Weight returns the weight column, or nil if it was never added.
	Weight() *Column[float64]
	// OtherColumns returns the non-reserved columns in insertion order.
	OtherColumns() []AnyColumn
	// Columns returns every column that was added, reserved ones first.
	Columns() []AnyColumn
	// Len returns the number of rows, taken from the first column.
	Len() int
}

// NodeLayer holds the nodes of one layer.
type NodeLayer struct {
	Names   *Column[string]
	Weights *Column[float64]
	Others  []AnyColumn
}

// Weight implements Layer.
func (l *NodeLayer) Weight() *Column[float64] { return l.Weights }

// OtherColumns implements Layer.
func (l *NodeLayer) OtherColumns() []AnyColumn { return l.Others }

// Columns implements Layer.
func (l *NodeLayer) Columns() []AnyColumn {
	var out []AnyColumn
	if l.Names != nil {
		out = append(out, l.Names)
	}
	if l.Weights != nil {
		out = append(out, l.Weights)
	}
	return append(out, l.Others...)
}

// Len implements Layer.
func (l *NodeLayer) Len() int { return layerLen(l) }

// NodeNames returns the node names, or nil when the name column is missing.
func (l *NodeLayer) NodeNames() []string {
	if l.Names == nil {
		return nil
	}
	return l.Names.Values
}

// EdgeLayer holds intra-layer edges of one layer or the inter-layer edges
// coupling layer k to k+1.
type EdgeLayer struct {
	Sources    *Column[string]
	Targets    *Column[string]
	Weights    *Column[float64]
	Directions *Column[bool]
	Others     []AnyColumn
}

// Weight implements Layer.
func (l *EdgeLayer) Weight() *Column[float64] { return l.Weights }

// OtherColumns implements Layer.
func (l *EdgeLayer) OtherColumns() []AnyColumn { return l.Others }

// Columns implements Layer.
func (l *EdgeLayer) Columns() []AnyColumn {
	var out []AnyColumn
	if l.Sources != nil {
		out = append(out, l.Sources)
	}
	if l.Targets != nil {
		out = append(out, l.Targets)
	}
	if l.Weights != nil {
		out = append(out, l.Weights)
	}
	if l.Directions != nil {
		out = append(out, l.Directions)
	}
	return append(out, l.Others...)
}

// Len implements Layer.
func (l *EdgeLayer) Len() int { return layerLen(l) }

// SourceNames returns the source node names.
func (l *EdgeLayer) SourceNames() []string {
	if l.Sources == nil {
		return nil
	}
	return l.Sources.Values
}

// TargetNames returns the target node names.
func (l *EdgeLayer) TargetNames() []string {
	if l.Targets == nil {
		return nil
	}
	return l.Targets.Values
}

func layerLen(l Layer) int {
	cols := l.Columns()
	if len(cols) == 0 {
		return 0
	}
	return cols[0].Len()
}
