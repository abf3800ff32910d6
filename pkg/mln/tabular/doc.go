// Package tabular converts raw tables into a multilayer network model.
//
// Each input [Sheet] is a header with string cells plus a role mapping
// that tells which columns hold node names, edge endpoints, weights,
// directions or any other attribute. A table kind (nodes, intra-layer
// edges, inter-layer edges) is described by one sheet per layer, or by a
// single sheet shared by every layer. Shared sheets may bind roles to one
// layer, e.g. "Node layer 2" or "Source node layer 1->2".
//
// Null weights and directions take the defaults of [Options]; sheets
// without a weight or direction column get a column of defaults. Weights
// and directions are parsed with strconv semantics. Other columns are
// typed after their cells.
//
// Every error returned by [Convert] has the CONVERTER code.
package tabular
