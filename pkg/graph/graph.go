package graph

import (
	"errors"
	"slices"
)

// NameColumn is the column holding node, edge and graph names.
const NameColumn = "name"

// GraphRow is the single row key of a graph's attribute table.
const GraphRow int64 = 0

var (
	// ErrUnknownNode is returned by [Graph.AddEdge] when an endpoint does not exist.
	ErrUnknownNode = errors.New("unknown node")

	// ErrUnknownEdge is returned by operations addressing a missing edge.
	ErrUnknownEdge = errors.New("unknown edge")
)

// Edge is a connection between two nodes. Undirected edges still record
// the endpoint order they were created with.
type Edge struct {
	ID       int64
	Source   int64
	Target   int64
	Directed bool
}

// Other returns the endpoint of e that is not n. For self-loops it returns n.
func (e Edge) Other(n int64) int64 {
	if e.Source == n {
		return e.Target
	}
	return e.Source
}

// IsLoop reports whether the edge connects a node to itself.
func (e Edge) IsLoop() bool { return e.Source == e.Target }

// Graph is a multigraph with typed attribute tables for nodes, edges and the
// graph itself, plus named auxiliary edge tables that are not bound to
// structural edges (inter-layer edge tables are stored this way).
//
// Nodes and edges share one identifier sequence and keep insertion order.
// Parallel edges and self-loops are allowed.
//
// The zero value is not usable - use New to create a valid Graph.
// Graph is not safe for concurrent use without external synchronization.
type Graph struct {
	id     string
	nextID int64

	nodes []int64
	edges []int64
	edge  map[int64]*Edge
	adj   map[int64][]int64 // node -> adjacent edge IDs

	nodeTable *Table
	edgeTable *Table
	attrs     *Table

	tables     map[string]*Table
	tableOrder []string
}

// New creates an empty graph with the given name. The node and edge tables
// start with a String "name" column.
func New(name string) *Graph {
	g := &Graph{
		nextID:    1,
		edge:      make(map[int64]*Edge),
		adj:       make(map[int64][]int64),
		nodeTable: NewTable(),
		edgeTable: NewTable(),
		attrs:     NewTable(),
		tables:    make(map[string]*Table),
	}
	_ = g.nodeTable.CreateColumn(NameColumn, StringType)
	_ = g.edgeTable.CreateColumn(NameColumn, StringType)
	_ = g.attrs.CreateColumn(NameColumn, StringType)
	g.attrs.AddRow(GraphRow)
	g.SetName(name)
	return g
}

// ID returns the identifier assigned by a [Store], or "" if the graph was
// never stored.
func (g *Graph) ID() string { return g.id }

// Name returns the graph name.
func (g *Graph) Name() string {
	s, _ := g.attrs.String(GraphRow, NameColumn)
	return s
}

// SetName renames the graph.
func (g *Graph) SetName(name string) { _ = g.attrs.Set(GraphRow, NameColumn, name) }

// Attrs returns the graph-level attribute table. Its only row is [GraphRow].
func (g *Graph) Attrs() *Table { return g.attrs }

// NodeTable returns the node attribute table, keyed by node ID.
func (g *Graph) NodeTable() *Table { return g.nodeTable }

// EdgeTable returns the edge attribute table, keyed by edge ID.
func (g *Graph) EdgeTable() *Table { return g.edgeTable }

// Flag reports whether the boolean graph attribute col is set to true.
func (g *Graph) Flag(col string) bool {
	v, ok := g.attrs.Bool(GraphRow, col)
	return ok && v
}

// SetFlag sets a boolean graph attribute, creating the column if needed.
func (g *Graph) SetFlag(col string, v bool) error {
	if err := g.attrs.EnsureColumn(col, BoolType); err != nil {
		return err
	}
	return g.attrs.Set(GraphRow, col, v)
}

// =============================================================================
// Nodes
// =============================================================================

// AddNode creates a node and its (empty) row in the node table.
func (g *Graph) AddNode() int64 {
	id := g.allocID()
	g.insertNode(id)
	return id
}

// AddNamedNode creates a node and sets its name.
func (g *Graph) AddNamedNode(name string) int64 {
	id := g.AddNode()
	_ = g.nodeTable.Set(id, NameColumn, name)
	return id
}

func (g *Graph) insertNode(id int64) {
	g.nodes = append(g.nodes, id)
	g.adj[id] = nil
	g.nodeTable.AddRow(id)
	if id >= g.nextID {
		g.nextID = id + 1
	}
}

func (g *Graph) allocID() int64 {
	id := g.nextID
	g.nextID++
	return id
}

// HasNode reports whether the node exists.
func (g *Graph) HasNode(n int64) bool {
	_, ok := g.adj[n]
	return ok
}

// RemoveNode removes a node, its adjacent edges and their rows.
func (g *Graph) RemoveNode(n int64) {
	if !g.HasNode(n) {
		return
	}
	for _, e := range slices.Clone(g.adj[n]) {
		g.RemoveEdge(e)
	}
	delete(g.adj, n)
	g.nodes = slices.DeleteFunc(g.nodes, func(id int64) bool { return id == n })
	g.nodeTable.DeleteRow(n)
}

// Nodes returns node IDs in insertion order.
func (g *Graph) Nodes() []int64 { return slices.Clone(g.nodes) }

// NodeCount returns the number of nodes.
func (g *Graph) NodeCount() int { return len(g.nodes) }

// NodeName returns the name of a node, or "" when unset.
func (g *Graph) NodeName(n int64) string {
	s, _ := g.nodeTable.String(n, NameColumn)
	return s
}

// NodesByName returns every node whose name is name.
func (g *Graph) NodesByName(name string) []int64 {
	return g.nodeTable.MatchingRows(NameColumn, name)
}

// =============================================================================
// Edges
// =============================================================================

// AddEdge creates an edge between two existing nodes.
// Returns ErrUnknownNode if either endpoint does not exist.
func (g *Graph) AddEdge(source, target int64, directed bool) (int64, error) {
	if !g.HasNode(source) || !g.HasNode(target) {
		return 0, ErrUnknownNode
	}
	id := g.allocID()
	g.insertEdge(Edge{ID: id, Source: source, Target: target, Directed: directed})
	return id, nil
}

func (g *Graph) insertEdge(e Edge) {
	g.edge[e.ID] = &e
	g.edges = append(g.edges, e.ID)
	g.adj[e.Source] = append(g.adj[e.Source], e.ID)
	if e.Target != e.Source {
		g.adj[e.Target] = append(g.adj[e.Target], e.ID)
	}
	g.edgeTable.AddRow(e.ID)
	if e.ID >= g.nextID {
		g.nextID = e.ID + 1
	}
}

// RemoveEdge removes an edge and its row. Missing edges are ignored.
func (g *Graph) RemoveEdge(id int64) {
	e, ok := g.edge[id]
	if !ok {
		return
	}
	drop := func(x int64) bool { return x == id }
	g.adj[e.Source] = slices.DeleteFunc(g.adj[e.Source], drop)
	g.adj[e.Target] = slices.DeleteFunc(g.adj[e.Target], drop)
	g.edges = slices.DeleteFunc(g.edges, drop)
	delete(g.edge, id)
	g.edgeTable.DeleteRow(id)
}

// Edge returns the edge with the given ID.
func (g *Graph) Edge(id int64) (Edge, bool) {
	e, ok := g.edge[id]
	if !ok {
		return Edge{}, false
	}
	return *e, true
}

// HasEdge reports whether the edge exists.
func (g *Graph) HasEdge(id int64) bool {
	_, ok := g.edge[id]
	return ok
}

// Edges returns a copy of all edges in insertion order.
func (g *Graph) Edges() []Edge {
	out := make([]Edge, len(g.edges))
	for i, id := range g.edges {
		out[i] = *g.edge[id]
	}
	return out
}

// EdgeCount returns the number of edges.
func (g *Graph) EdgeCount() int { return len(g.edges) }

// AdjacentEdges returns the edges touching n. Self-loops appear once.
func (g *Graph) AdjacentEdges(n int64) []Edge {
	ids := g.adj[n]
	out := make([]Edge, len(ids))
	for i, id := range ids {
		out[i] = *g.edge[id]
	}
	return out
}

// Neighbors returns the distinct nodes adjacent to n, in edge order.
// A node with a self-loop is its own neighbor.
func (g *Graph) Neighbors(n int64) []int64 {
	var out []int64
	for _, id := range g.adj[n] {
		o := g.edge[id].Other(n)
		if !slices.Contains(out, o) {
			out = append(out, o)
		}
	}
	return out
}

// ConnectingEdges returns every edge between a and b, in either direction.
func (g *Graph) ConnectingEdges(a, b int64) []Edge {
	var out []Edge
	for _, id := range g.adj[a] {
		e := g.edge[id]
		if e.Other(a) == b {
			out = append(out, *e)
		}
	}
	return out
}

// =============================================================================
// Auxiliary Tables
// =============================================================================

// AddTable attaches a named table to the graph, replacing any table with
// the same name. The same table may be attached to several graphs.
func (g *Graph) AddTable(name string, t *Table) {
	if _, ok := g.tables[name]; !ok {
		g.tableOrder = append(g.tableOrder, name)
	}
	g.tables[name] = t
}

// Table returns a named auxiliary table.
func (g *Graph) Table(name string) (*Table, bool) {
	t, ok := g.tables[name]
	return t, ok
}

// RemoveTable detaches a named table. Missing names are ignored.
func (g *Graph) RemoveTable(name string) {
	if _, ok := g.tables[name]; !ok {
		return
	}
	delete(g.tables, name)
	g.tableOrder = slices.DeleteFunc(g.tableOrder, func(n string) bool { return n == name })
}

// TableNames returns auxiliary table names in attachment order.
func (g *Graph) TableNames() []string { return slices.Clone(g.tableOrder) }
