package extract

import (
	"github.com/timenexus/timenexus/pkg/errors"
	"github.com/timenexus/timenexus/pkg/mln"
)

// Network is the subnetwork returned by a service: flattened node names,
// edges as (source, target) pairs, and attributes aligned with them.
// Attribute values may be scalars or lists.
type Network struct {
	Nodes []string
	Edges [][2]string

	nodeAttrs []mln.AnyColumn
	edgeAttrs []mln.AnyColumn
}

// AddNodeAttribute attaches one value per node to n.
func AddNodeAttribute[E mln.Value](n *Network, name string, values []E) error {
	if len(values) != len(n.Nodes) {
		return attributeError("node", name, len(values), len(n.Nodes))
	}
	n.nodeAttrs = append(n.nodeAttrs, mln.NewColumn(name, values))
	return nil
}

// AddEdgeAttribute attaches one value per edge to n.
func AddEdgeAttribute[E mln.Value](n *Network, name string, values []E) error {
	if len(values) != len(n.Edges) {
		return attributeError("edge", name, len(values), len(n.Edges))
	}
	n.edgeAttrs = append(n.edgeAttrs, mln.NewColumn(name, values))
	return nil
}

func attributeError(kind, name string, got, want int) error {
	return errors.New(errors.ErrCodeAppCall, "Invalid extracted network",
		"The %s attribute '%s' has %d values for %d %ss.", kind, name, got, want, kind)
}

// NodeAttributes returns the node attributes in insertion order.
func (n *Network) NodeAttributes() []mln.AnyColumn { return n.nodeAttrs }

// EdgeAttributes returns the edge attributes in insertion order.
func (n *Network) EdgeAttributes() []mln.AnyColumn { return n.edgeAttrs }

// Validate checks that every attribute is aligned with its nodes or edges.
func (n *Network) Validate() error {
	for _, c := range n.nodeAttrs {
		if c.Len() != len(n.Nodes) {
			return attributeError("node", c.ColumnName(), c.Len(), len(n.Nodes))
		}
	}
	for _, c := range n.edgeAttrs {
		if c.Len() != len(n.Edges) {
			return attributeError("edge", c.ColumnName(), c.Len(), len(n.Edges))
		}
	}
	return nil
}
