// Package mln defines the multilayer network model of TimeNexus.
//
// A multilayer network has N layers, typically time slices. Each layer has
// a node table and an intra-layer edge table; consecutive layers k and k+1
// are coupled by an inter-layer edge table. [Model] holds this structure as
// typed columns and is built column by column:
//
//	m, _ := mln.NewModel(2)
//	m.AddNodeColumn(mln.NodeTable, 1, []string{"a", "b"})
//	m.AddWeight(mln.NodeTable, 1, []float64{1, 1})
//	m.AddSourceColumn(mln.InterEdgeTable, 1, []string{"a"})
//
// A model is never mutated after construction. It is materialised by
// package transform into a [Collection]: a flattened graph whose node names
// carry the layer suffix ("a_1"), an aggregated graph collapsing same-named
// nodes across layers, and one graph per layer.
//
// The reserved names in this package ([ColWeight], [ColLayerID],
// [FlagFlattened], ...) are the contract between the builder, the validator
// in package format and the converters.
package mln
