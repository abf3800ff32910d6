package mln

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/timenexus/timenexus/pkg/errors"
	"github.com/timenexus/timenexus/pkg/graph"
)

// Reserved column names of layer tables.
const (
	ColName      = graph.NameColumn
	ColWeight    = "Weight"
	ColDirection = "Direction"
	ColSource    = "Source"
	ColTarget    = "Target"
)

// Columns and flags of derived graphs.
const (
	ColLayerID   = "Layer ID"
	ColEdgeLabel = "Edge label"
	ColIsQuery   = "isQuery"

	FlagMultilayer = "Multi-layer network"
	FlagFlattened  = "Flattened network"
	FlagAggregated = "Aggregated network"

	LabelIntra = "intra-layer"
	LabelInter = "inter-layer"
)

// InterTableName returns the name of the inter-layer edge table coupling two
// layers, e.g. "1->2_Inter-Edge".
func InterTableName(from, to int) string {
	return fmt.Sprintf("%d->%d_Inter-Edge", from, to)
}

// Interaction returns the edge name of a source/target pair.
func Interaction(source, target string) string {
	return source + " (interacts with) " + target
}

// ParseInteraction splits an edge name built by [Interaction].
func ParseInteraction(s string) (source, target string, err error) {
	parts := strings.Split(s, "interacts")
	if len(parts) != 2 || len(parts[0]) < 2 || len(parts[1]) < 7 {
		return "", "", errors.New(errors.ErrCodeFormat, "Invalid interaction name",
			"Values must be as <source-node name> (interacts with) <target-node name>.")
	}
	return parts[0][:len(parts[0])-2], parts[1][7:], nil
}

// FlatName returns the flattened name of a node of a layer, e.g. "a_2".
func FlatName(name string, layer int) string {
	return name + "_" + strconv.Itoa(layer)
}

// OriginalName strips the layer suffix from a flattened node name.
// Names without "_" map to "".
func OriginalName(flat string) string {
	i := strings.LastIndex(flat, "_")
	if i < 0 {
		return ""
	}
	return flat[:i]
}

// LayerName returns the name of a layer graph. The layer number is padded
// with zeros to the width of count, e.g. LayerName(3, 12) is "03_Layer".
func LayerName(layer, count int) string {
	width := len(strconv.Itoa(count))
	return fmt.Sprintf("%0*d_Layer", width, layer)
}
