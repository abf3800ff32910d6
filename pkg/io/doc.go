// Package io reads network definitions and tables, and writes collections
// to disk.
//
// # Network Definitions
//
// A definition describes the raw tables of a multilayer network and the
// role of each of their columns. It is written in TOML or YAML, chosen by
// file extension:
//
//	name = "Cell cycle"
//	layers = 3
//	auto_coupling = true
//
//	[[nodes]]
//	file = "nodes.csv"
//	[nodes.columns]
//	protein = "Node"
//	score = "Node weight"
//
//	[[intra]]
//	file = "interactions.csv"
//	[intra.columns]
//	a = "Source node"
//	b = "Target node"
//	"layer 1 weight" = "Edge weight layer 1"
//
// Each table kind lists one sheet shared by every layer, or one sheet per
// layer. Column roles use the labels of [tabular.ParseRole]; unlisted
// columns are ignored. Sheet files are CSV, resolved relative to the
// definition file; a sheet may instead carry its CSV text inline in data.
//
// Use [LoadDefinition] to read a definition and [Build] to turn it into a
// [mln.Collection].
//
// # Collection Files
//
// [WriteCollection] stores every graph of a collection as a JSON file of
// a directory (flattened.json, aggregated.json, layer_<k>.json), writing
// the files concurrently. [ReadCollection] reads the flattened graph back
// and derives the rest of the collection from it.
//
// [tabular.ParseRole]: github.com/timenexus/timenexus/pkg/mln/tabular.ParseRole
// [mln.Collection]: github.com/timenexus/timenexus/pkg/mln.Collection
package io
