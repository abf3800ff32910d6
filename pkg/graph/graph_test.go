package graph

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"
)

func TestTableSetGet(t *testing.T) {
	tb := NewTable()
	if err := tb.CreateColumn("Weight", DoubleType); err != nil {
		t.Fatal(err)
	}
	if err := tb.CreateColumn("Weight", DoubleType); !errors.Is(err, ErrColumnExists) {
		t.Errorf("CreateColumn(dup) = %v, want %v", err, ErrColumnExists)
	}
	if err := tb.CreateColumn("Layer ID", ListOf(Int)); err != nil {
		t.Fatal(err)
	}

	if err := tb.Set(1, "Weight", 2.5); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := tb.Set(1, "Weight", "heavy"); !errors.Is(err, ErrTypeMismatch) {
		t.Errorf("Set(string into Double) = %v, want %v", err, ErrTypeMismatch)
	}
	if err := tb.Set(1, "missing", 1); !errors.Is(err, ErrUnknownColumn) {
		t.Errorf("Set(missing) = %v, want %v", err, ErrUnknownColumn)
	}

	ids := []int{1, 2}
	if err := tb.Set(2, "Layer ID", ids); err != nil {
		t.Fatal(err)
	}
	ids[0] = 99
	got, ok := tb.Ints(2, "Layer ID")
	if !ok || !slices.Equal(got, []int{1, 2}) {
		t.Errorf("Ints = %v, want [1 2] (cells must not alias)", got)
	}

	if w, ok := tb.Float(1, "Weight"); !ok || w != 2.5 {
		t.Errorf("Float = %v, %v, want 2.5, true", w, ok)
	}
	if !tb.IsNull(2, "Weight") {
		t.Error("IsNull(2, Weight) = false, want true")
	}
	if err := tb.Set(1, "Weight", nil); err != nil {
		t.Fatal(err)
	}
	if !tb.IsNull(1, "Weight") {
		t.Error("cell not cleared by nil")
	}
	if got := tb.Rows(); !slices.Equal(got, []int64{1, 2}) {
		t.Errorf("Rows = %v, want [1 2]", got)
	}
}

func TestTableCopyRow(t *testing.T) {
	src := NewTable()
	_ = src.CreateColumn("Weight", DoubleType)
	_ = src.CreateColumn("Label", StringType)
	_ = src.CreateColumn("Layer ID", IntType)
	_ = src.Set(7, "Weight", 1.5)
	_ = src.Set(7, "Label", "x")
	_ = src.Set(7, "Layer ID", 3)

	dst := NewTable()
	dst.CopyColumns(src, "Layer ID")
	_ = dst.CreateColumn("Layer ID", StringType)
	dst.CopyRow(src, 7, 1)

	if w, _ := dst.Float(1, "Weight"); w != 1.5 {
		t.Errorf("Weight = %v, want 1.5", w)
	}
	if l, _ := dst.String(1, "Label"); l != "x" {
		t.Errorf("Label = %v, want x", l)
	}
	if !dst.IsNull(1, "Layer ID") {
		t.Error("Layer ID copied across mismatching types")
	}
}

func TestTableDeleteColumn(t *testing.T) {
	tb := NewTable()
	_ = tb.CreateColumn("a", IntType)
	_ = tb.CreateColumn("b", IntType)
	_ = tb.CreateColumn("c", IntType)
	_ = tb.Set(1, "c", 3)
	tb.DeleteColumn("a")

	c, ok := tb.Column("c")
	if !ok || c.Type != IntType {
		t.Fatalf("Column(c) = %v, %v", c, ok)
	}
	if v, _ := tb.Int(1, "c"); v != 3 {
		t.Errorf("c = %v, want 3", v)
	}
	if tb.HasColumn("a") {
		t.Error("a still defined")
	}
}

func TestGraphStructure(t *testing.T) {
	g := New("test")
	a := g.AddNamedNode("a")
	b := g.AddNamedNode("b")
	c := g.AddNamedNode("c")

	e1, err := g.AddEdge(a, b, true)
	if err != nil {
		t.Fatal(err)
	}
	e2, _ := g.AddEdge(b, a, false)
	if _, err := g.AddEdge(a, 999, true); !errors.Is(err, ErrUnknownNode) {
		t.Errorf("AddEdge(unknown) = %v, want %v", err, ErrUnknownNode)
	}
	_, _ = g.AddEdge(c, c, false)

	if g.NodeCount() != 3 || g.EdgeCount() != 3 {
		t.Errorf("counts = %d/%d, want 3/3", g.NodeCount(), g.EdgeCount())
	}
	if got := g.Neighbors(a); !slices.Equal(got, []int64{b}) {
		t.Errorf("Neighbors(a) = %v, want [%d]", got, b)
	}
	if got := len(g.AdjacentEdges(a)); got != 2 {
		t.Errorf("AdjacentEdges(a) = %d, want 2", got)
	}
	if got := len(g.ConnectingEdges(b, a)); got != 2 {
		t.Errorf("ConnectingEdges(b, a) = %d, want 2", got)
	}
	if got := g.Neighbors(c); !slices.Equal(got, []int64{c}) {
		t.Errorf("Neighbors(c) = %v, want self", got)
	}
	if got := len(g.AdjacentEdges(c)); got != 1 {
		t.Errorf("AdjacentEdges(c) = %d, want 1 for a self-loop", got)
	}

	g.RemoveEdge(e1)
	if g.HasEdge(e1) || g.EdgeTable().HasRow(e1) {
		t.Error("edge still present after RemoveEdge")
	}
	g.RemoveNode(a)
	if g.HasEdge(e2) {
		t.Error("adjacent edge survived RemoveNode")
	}
	if got := g.NodesByName("b"); !slices.Equal(got, []int64{b}) {
		t.Errorf("NodesByName(b) = %v", got)
	}
}

func TestGraphFlagsAndTables(t *testing.T) {
	g := New("layer")
	if g.Flag("Multi-layer network") {
		t.Error("unset flag reported true")
	}
	if err := g.SetFlag("Multi-layer network", true); err != nil {
		t.Fatal(err)
	}
	if !g.Flag("Multi-layer network") {
		t.Error("flag not set")
	}
	tb := NewTable()
	g.AddTable("1->2_Inter-Edge", tb)
	g.AddTable("1->2_Inter-Edge", tb)
	if got := g.TableNames(); !slices.Equal(got, []string{"1->2_Inter-Edge"}) {
		t.Errorf("TableNames = %v", got)
	}
	if got, ok := g.Table("1->2_Inter-Edge"); !ok || got != tb {
		t.Error("Table lookup failed")
	}
}

func TestMemoryStore(t *testing.T) {
	s := NewMemoryStore()
	g1 := New("one")
	g2 := New("two")
	id1 := s.Put(g1)
	id2 := s.Put(g2)

	if id1 == "" || id1 == id2 {
		t.Fatalf("ids = %q, %q", id1, id2)
	}
	if g1.ID() != id1 {
		t.Errorf("ID() = %v, want %v", g1.ID(), id1)
	}
	if got, ok := s.Get(id2); !ok || got != g2 {
		t.Error("Get(id2) failed")
	}
	if err := s.Delete(id1); err != nil {
		t.Fatal(err)
	}
	if err := s.Delete(id1); !errors.Is(err, ErrGraphNotFound) {
		t.Errorf("Delete(twice) = %v, want %v", err, ErrGraphNotFound)
	}
	if got := s.List(); len(got) != 1 || got[0] != g2 {
		t.Errorf("List = %v", got)
	}
}

func sampleGraph() *Graph {
	g := New("Flattened network")
	_ = g.SetFlag("Flattened network", true)
	_ = g.NodeTable().CreateColumn("Weight", DoubleType)
	_ = g.NodeTable().CreateColumn("Layer ID", IntType)
	_ = g.EdgeTable().CreateColumn("Layer ID", ListOf(Int))

	a := g.AddNamedNode("a_1")
	b := g.AddNamedNode("b_1")
	_ = g.NodeTable().Set(a, "Weight", 1.0)
	_ = g.NodeTable().Set(a, "Layer ID", 1)
	e, _ := g.AddEdge(a, b, true)
	_ = g.EdgeTable().Set(e, "Layer ID", []int{1, 2})

	inter := NewTable()
	_ = inter.CreateColumn("Source", StringType)
	_ = inter.Set(1, "Source", "a")
	g.AddTable("1->2_Inter-Edge", inter)
	return g
}

func assertSameGraph(t *testing.T, want, got *Graph) {
	t.Helper()
	if got.Name() != want.Name() {
		t.Errorf("Name = %v, want %v", got.Name(), want.Name())
	}
	if !slices.Equal(got.Nodes(), want.Nodes()) {
		t.Errorf("Nodes = %v, want %v", got.Nodes(), want.Nodes())
	}
	if !slices.Equal(got.Edges(), want.Edges()) {
		t.Errorf("Edges = %v, want %v", got.Edges(), want.Edges())
	}
	if !got.Flag("Flattened network") {
		t.Error("flag lost")
	}
	n := want.Nodes()[0]
	if id, _ := got.NodeTable().Int(n, "Layer ID"); id != 1 {
		t.Errorf("Layer ID = %v, want 1", id)
	}
	if w, _ := got.NodeTable().Float(n, "Weight"); w != 1.0 {
		t.Errorf("Weight = %v, want 1", w)
	}
	if !got.NodeTable().IsNull(want.Nodes()[1], "Weight") {
		t.Error("null cell became non-null")
	}
	e := want.Edges()[0].ID
	if ids, _ := got.EdgeTable().Ints(e, "Layer ID"); !slices.Equal(ids, []int{1, 2}) {
		t.Errorf("edge Layer ID = %v, want [1 2]", ids)
	}
	inter, ok := got.Table("1->2_Inter-Edge")
	if !ok {
		t.Fatal("inter table lost")
	}
	if s, _ := inter.String(1, "Source"); s != "a" {
		t.Errorf("inter Source = %v, want a", s)
	}
}

func TestMarshalRoundTrip(t *testing.T) {
	g := sampleGraph()
	data, err := MarshalGraph(g)
	if err != nil {
		t.Fatal(err)
	}
	got, err := UnmarshalGraph(data)
	if err != nil {
		t.Fatal(err)
	}
	assertSameGraph(t, g, got)

	// New nodes must not reuse decoded identifiers.
	n := got.AddNode()
	if slices.Contains(g.Nodes(), n) {
		t.Errorf("AddNode reused id %d", n)
	}
}

func TestReadWriteFile(t *testing.T) {
	g := sampleGraph()
	path := filepath.Join(t.TempDir(), "graph.json")
	if err := WriteGraphFile(g, path); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatal(err)
	}
	got, err := ReadGraphFile(path)
	if err != nil {
		t.Fatal(err)
	}
	assertSameGraph(t, g, got)
}

func TestReadGraphErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"invalid json", `{`},
		{"unknown endpoint", `{"name":"x","nodes":[{"id":1}],"edges":[{"id":2,"source":1,"target":5}]}`},
		{"unknown type", `{"name":"x","node_table":{"columns":[{"name":"w","type":"Float"}]}}`},
		{"wrong cell type", `{"name":"x","nodes":[{"id":1}],"node_table":{"columns":[{"name":"w","type":"Double"}],"rows":[{"id":1,"cells":{"w":"heavy"}}]}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ReadGraph(bytes.NewBufferString(tt.data)); err == nil {
				t.Error("ReadGraph() error = nil, want error")
			}
		})
	}
}
