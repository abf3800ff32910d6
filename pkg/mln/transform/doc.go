// Package transform converts between a [mln.Model] and the graphs that
// materialise it.
//
// [Flatten] merges every layer of a model into one graph whose nodes are
// named "name_k" and tagged with their layer. [Aggregate] collapses a
// flattened graph by original node name. [SelectLayers] copies a subset
// of layers and nodes out of a flattened graph, and [Derive] rebuilds the
// whole [mln.Collection] (aggregated graph, layer graphs and inter-layer
// tables) from a flattened graph.
//
// Flattening is all-or-nothing: when an error is returned no graph is.
package transform
