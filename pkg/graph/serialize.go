package graph

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// =============================================================================
// Graph Serialization API
// =============================================================================

// MarshalGraph converts a graph to JSON bytes.
func MarshalGraph(g *Graph) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeGraphTo(g, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// UnmarshalGraph decodes JSON bytes produced by MarshalGraph.
func UnmarshalGraph(data []byte) (*Graph, error) {
	return readGraphFrom(bytes.NewReader(data))
}

// WriteGraphFile writes a graph to a JSON file.
// The file is created with 0644 permissions.
func WriteGraphFile(g *Graph, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return writeGraphTo(g, f)
}

// WriteGraph writes a graph as JSON to an io.Writer.
func WriteGraph(g *Graph, w io.Writer) error {
	return writeGraphTo(g, w)
}

// ReadGraphFile reads a JSON file and returns the decoded graph.
func ReadGraphFile(path string) (*Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return readGraphFrom(f)
}

// ReadGraph decodes a JSON graph from an io.Reader.
func ReadGraph(r io.Reader) (*Graph, error) {
	return readGraphFrom(r)
}

// =============================================================================
// Wire Format
// =============================================================================

type document struct {
	Name      string       `json:"name" bson:"name"`
	Attrs     tableDoc     `json:"attributes" bson:"attributes"`
	Nodes     []nodeDoc    `json:"nodes" bson:"nodes"`
	Edges     []edgeDoc    `json:"edges" bson:"edges"`
	NodeTable tableDoc     `json:"node_table" bson:"node_table"`
	EdgeTable tableDoc     `json:"edge_table" bson:"edge_table"`
	Tables    []namedTable `json:"tables,omitempty" bson:"tables,omitempty"`
}

type nodeDoc struct {
	ID int64 `json:"id" bson:"id"`
}

type edgeDoc struct {
	ID       int64 `json:"id" bson:"id"`
	Source   int64 `json:"source" bson:"source"`
	Target   int64 `json:"target" bson:"target"`
	Directed bool  `json:"directed" bson:"directed"`
}

type columnDoc struct {
	Name string `json:"name" bson:"name"`
	Type string `json:"type" bson:"type"`
	List bool   `json:"list,omitempty" bson:"list,omitempty"`
}

type rowDoc struct {
	ID    int64                      `json:"id" bson:"id"`
	Cells map[string]json.RawMessage `json:"cells,omitempty" bson:"cells,omitempty"`
}

type tableDoc struct {
	Columns []columnDoc `json:"columns" bson:"columns"`
	Rows    []rowDoc    `json:"rows" bson:"rows"`
}

type namedTable struct {
	Name  string   `json:"name" bson:"name"`
	Table tableDoc `json:"table" bson:"table"`
}

// =============================================================================
// Internal Implementation
// =============================================================================

func writeGraphTo(g *Graph, w io.Writer) error {
	doc, err := toDocument(g)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

func readGraphFrom(r io.Reader) (*Graph, error) {
	var doc document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return fromDocument(doc)
}

func toDocument(g *Graph) (document, error) {
	doc := document{Name: g.Name()}
	var err error
	if doc.Attrs, err = encodeTable(g.attrs); err != nil {
		return doc, err
	}
	if doc.NodeTable, err = encodeTable(g.nodeTable); err != nil {
		return doc, err
	}
	if doc.EdgeTable, err = encodeTable(g.edgeTable); err != nil {
		return doc, err
	}
	for _, n := range g.nodes {
		doc.Nodes = append(doc.Nodes, nodeDoc{ID: n})
	}
	for _, e := range g.Edges() {
		doc.Edges = append(doc.Edges, edgeDoc{ID: e.ID, Source: e.Source, Target: e.Target, Directed: e.Directed})
	}
	for _, name := range g.tableOrder {
		td, err := encodeTable(g.tables[name])
		if err != nil {
			return doc, err
		}
		doc.Tables = append(doc.Tables, namedTable{Name: name, Table: td})
	}
	return doc, nil
}

func fromDocument(doc document) (*Graph, error) {
	g := New(doc.Name)
	for _, n := range doc.Nodes {
		if g.HasNode(n.ID) {
			return nil, fmt.Errorf("duplicate node id %d", n.ID)
		}
		g.insertNode(n.ID)
	}
	for _, e := range doc.Edges {
		if !g.HasNode(e.Source) || !g.HasNode(e.Target) {
			return nil, fmt.Errorf("edge %d: %w", e.ID, ErrUnknownNode)
		}
		if g.HasEdge(e.ID) || g.HasNode(e.ID) {
			return nil, fmt.Errorf("duplicate edge id %d", e.ID)
		}
		g.insertEdge(Edge{ID: e.ID, Source: e.Source, Target: e.Target, Directed: e.Directed})
	}
	if err := decodeTable(doc.Attrs, g.attrs); err != nil {
		return nil, fmt.Errorf("attributes: %w", err)
	}
	if err := decodeTable(doc.NodeTable, g.nodeTable); err != nil {
		return nil, fmt.Errorf("node table: %w", err)
	}
	if err := decodeTable(doc.EdgeTable, g.edgeTable); err != nil {
		return nil, fmt.Errorf("edge table: %w", err)
	}
	for _, nt := range doc.Tables {
		t := NewTable()
		if err := decodeTable(nt.Table, t); err != nil {
			return nil, fmt.Errorf("table %s: %w", nt.Name, err)
		}
		g.AddTable(nt.Name, t)
	}
	if doc.Name != "" {
		g.SetName(doc.Name)
	}
	return g, nil
}

func encodeTable(t *Table) (tableDoc, error) {
	var td tableDoc
	for _, c := range t.columns {
		td.Columns = append(td.Columns, columnDoc{Name: c.Name, Type: c.Type.Elem.String(), List: c.Type.List})
	}
	td.Rows = make([]rowDoc, 0, len(t.rows))
	for _, r := range t.rows {
		row := rowDoc{ID: r}
		for name, v := range t.cells[r] {
			raw, err := json.Marshal(v)
			if err != nil {
				return td, fmt.Errorf("encode cell %s: %w", name, err)
			}
			if row.Cells == nil {
				row.Cells = make(map[string]json.RawMessage)
			}
			row.Cells[name] = raw
		}
		td.Rows = append(td.Rows, row)
	}
	return td, nil
}

func decodeTable(td tableDoc, t *Table) error {
	for _, c := range td.Columns {
		elem, err := ParseType(c.Type)
		if err != nil {
			return err
		}
		if err := t.EnsureColumn(c.Name, ColumnType{Elem: elem, List: c.List}); err != nil {
			return err
		}
	}
	for _, r := range td.Rows {
		t.AddRow(r.ID)
		for name, raw := range r.Cells {
			c, ok := t.Column(name)
			if !ok {
				return fmt.Errorf("%w: %s", ErrUnknownColumn, name)
			}
			v, err := decodeCell(c.Type, raw)
			if err != nil {
				return fmt.Errorf("row %d column %s: %w", r.ID, name, err)
			}
			if err := t.Set(r.ID, name, v); err != nil {
				return err
			}
		}
	}
	return nil
}

func decodeCell(ct ColumnType, raw json.RawMessage) (any, error) {
	if string(raw) == "null" {
		return nil, nil
	}
	var target any
	switch {
	case ct.List && ct.Elem == String:
		target = new([]string)
	case ct.List && ct.Elem == Double:
		target = new([]float64)
	case ct.List && ct.Elem == Int:
		target = new([]int)
	case ct.List && ct.Elem == Bool:
		target = new([]bool)
	case ct.Elem == String:
		target = new(string)
	case ct.Elem == Double:
		target = new(float64)
	case ct.Elem == Int:
		target = new(int)
	case ct.Elem == Bool:
		target = new(bool)
	default:
		return nil, fmt.Errorf("unsupported column type %s", ct)
	}
	if err := json.Unmarshal(raw, target); err != nil {
		return nil, err
	}
	switch p := target.(type) {
	case *[]string:
		return *p, nil
	case *[]float64:
		return *p, nil
	case *[]int:
		return *p, nil
	case *[]bool:
		return *p, nil
	case *string:
		return *p, nil
	case *float64:
		return *p, nil
	case *int:
		return *p, nil
	case *bool:
		return *p, nil
	}
	return nil, nil
}
