// Package graph provides the typed-column graph store that every other
// TimeNexus package reads and writes.
//
// # Model
//
// A [Graph] is a multigraph with three attribute tables:
//
//   - the node table, keyed by node ID
//   - the edge table, keyed by edge ID
//   - the graph attribute table, with a single row ([GraphRow])
//
// Tables hold named columns of a fixed [ColumnType]: scalars or lists of
// String, Double, Integer or Boolean. A cell that was never set is null.
// Graphs may also carry named auxiliary tables with rows that are not bound
// to structural edges; inter-layer edge tables are attached this way.
//
// # Store
//
// A [Store] tracks graphs by identifier. The extraction orchestrator uses
// it to register temporary slice graphs and to guarantee their deletion.
// [MemoryStore] is the in-process implementation.
//
// # Serialization
//
// [WriteGraph] and [ReadGraph] encode a graph as JSON, keeping column types
// so that list cells and integers survive the round trip:
//
//	{
//	  "name": "Flattened network",
//	  "nodes": [{"id": 1}],
//	  "edges": [{"id": 3, "source": 1, "target": 2, "directed": true}],
//	  "node_table": {"columns": [{"name": "name", "type": "String"}], "rows": [...]}
//	}
package graph
