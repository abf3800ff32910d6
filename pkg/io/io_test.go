package io

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/timenexus/timenexus/pkg/errors"
	"github.com/timenexus/timenexus/pkg/graph"
	"github.com/timenexus/timenexus/pkg/mln/tabular"
)

const tomlDefinition = `
name = "demo"
layers = 2
auto_coupling = true

[defaults]
intra_weight = 0.5

[[nodes]]
data = """
protein,score
A,1
B,2
"""
[nodes.columns]
protein = "Node"
score = "Node weight"

[[intra]]
data = """
a,b
A,B
"""
[intra.columns]
a = "Source node"
b = "Target node"
`

const yamlDefinition = `
name: demo
layers: 2
auto_coupling: true
defaults:
  intra_weight: 0.5
nodes:
  - data: |
      protein;score
      A;1
      B;2
    delimiter: ";"
    columns:
      protein: Node
      score: Node weight
intra:
  - data: |
      a;b
      A;B
    delimiter: ";"
    columns:
      a: Source node
      b: Target node
`

func TestBuildDefinition(t *testing.T) {
	tests := []struct {
		name   string
		data   string
		format Format
	}{
		{"toml", tomlDefinition, FormatTOML},
		{"yaml", yamlDefinition, FormatYAML},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := ParseDefinition([]byte(tt.data), tt.format)
			require.NoError(t, err)
			assert.Equal(t, "demo", d.Name)
			assert.Equal(t, 0.5, d.Options().DefaultIntraWeight)
			assert.Equal(t, 1.0, d.Options().DefaultInterWeight)

			c, err := Build(d, "")
			require.NoError(t, err)
			assert.Equal(t, "demo", c.Name)
			assert.Equal(t, []int{1, 2}, c.LayerIDs())
			assert.Equal(t, 4, c.Flattened.NodeCount())
			// two intra-layer edges and two couplings
			assert.Equal(t, 4, c.Flattened.EdgeCount())
		})
	}
}

func TestDefinitionValidate(t *testing.T) {
	sheet := SheetDef{Data: "a\nx\n", Columns: map[string]string{"a": "Node"}}
	tests := []struct {
		name    string
		def     Definition
		wantErr bool
	}{
		{"valid", Definition{Layers: 2, Nodes: []SheetDef{sheet}, Intra: []SheetDef{sheet}, Inter: []SheetDef{sheet}}, false},
		{"auto coupling", Definition{Layers: 2, AutoCoupling: true, Nodes: []SheetDef{sheet}, Intra: []SheetDef{sheet}}, false},
		{"single layer", Definition{Layers: 1, Nodes: []SheetDef{sheet}, Intra: []SheetDef{sheet}}, false},
		{"no layers", Definition{Nodes: []SheetDef{sheet}, Intra: []SheetDef{sheet}}, true},
		{"no nodes", Definition{Layers: 1, Intra: []SheetDef{sheet}}, true},
		{"no inter", Definition{Layers: 2, Nodes: []SheetDef{sheet}, Intra: []SheetDef{sheet}}, true},
		{"sheet without source", Definition{Layers: 1, Nodes: []SheetDef{{Columns: sheet.Columns}}, Intra: []SheetDef{sheet}}, true},
		{"sheet without columns", Definition{Layers: 1, Nodes: []SheetDef{{Data: "a"}}, Intra: []SheetDef{sheet}}, true},
		{"long delimiter", Definition{Layers: 1, Nodes: []SheetDef{{Data: "a", Delimiter: ";;", Columns: sheet.Columns}}, Intra: []SheetDef{sheet}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.def.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoadDefinition(t *testing.T) {
	dir := t.TempDir()
	nodes := "protein\nA\nB\n"
	edges := "a,b\nA,B\n"
	def := `
layers: 1
nodes:
  - file: nodes.csv
    columns: {protein: Node}
intra:
  - file: edges.csv
    columns: {a: Source node, b: Target node}
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "nodes.csv"), []byte(nodes), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "edges.csv"), []byte(edges), 0o644))
	path := filepath.Join(dir, "cell-cycle.yml")
	require.NoError(t, os.WriteFile(path, []byte(def), 0o644))

	d, err := LoadDefinition(path)
	require.NoError(t, err)
	assert.Equal(t, "cell-cycle", d.Name)

	c, err := BuildFile(path)
	require.NoError(t, err)
	assert.Equal(t, 2, c.Flattened.NodeCount())
	assert.Equal(t, 1, c.Flattened.EdgeCount())
}

func TestLoadDefinitionErrors(t *testing.T) {
	dir := t.TempDir()
	unsupported := filepath.Join(dir, "net.json")
	require.NoError(t, os.WriteFile(unsupported, []byte("{}"), 0o644))
	broken := filepath.Join(dir, "net.toml")
	require.NoError(t, os.WriteFile(broken, []byte("layers = ["), 0o644))
	missingFile := filepath.Join(dir, "missing.toml")
	require.NoError(t, os.WriteFile(missingFile, []byte(`
layers = 1
[[nodes]]
file = "absent.csv"
[nodes.columns]
a = "Node"
[[intra]]
file = "absent.csv"
[intra.columns]
a = "Source node"
`), 0o644))

	for _, path := range []string{unsupported, broken, filepath.Join(dir, "nope.toml")} {
		_, err := LoadDefinition(path)
		assert.True(t, errors.Is(err, errors.ErrCodeInvalidInput), "%s: %v", path, err)
	}
	_, err := BuildFile(missingFile)
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidInput), "%v", err)
	assert.Contains(t, errors.UserMessage(err), "nodes sheet 1")
}

func TestBuildConverterError(t *testing.T) {
	d, err := ParseDefinition([]byte(`
layers = 1
[[nodes]]
data = "n\nA\n"
[nodes.columns]
n = "Node"
[[intra]]
data = "a,b\nA,Z\n"
[intra.columns]
a = "Source node"
b = "Target node"
`), FormatTOML)
	require.NoError(t, err)
	_, err = Build(d, "")
	assert.True(t, errors.Is(err, errors.ErrCodeConverter), "%v", err)
}

func TestRoles(t *testing.T) {
	header := []string{"w", "src", "tgt", "note"}
	roles, err := Roles(header, map[string]string{
		"tgt": "Target node",
		"src": "Source node",
		"w":   "Edge weight layer 2",
	})
	require.NoError(t, err)
	assert.Equal(t, []tabular.Assignment{
		{Column: "w", Role: tabular.EdgeWeight, Layer: 2},
		{Column: "src", Role: tabular.Source},
		{Column: "tgt", Role: tabular.Target},
	}, roles)

	_, err = Roles(header, map[string]string{"missing": "Node"})
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidInput))
	_, err = Roles(header, map[string]string{"w": "Colour"})
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidInput))
}

func TestReadCSV(t *testing.T) {
	header, rows, err := ReadCSV(strings.NewReader("a;b\n1; 2\n3\n"), ';')
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, header)
	assert.Equal(t, [][]string{{"1", "2"}, {"3"}}, rows)

	_, _, err = ReadCSV(strings.NewReader(""), ',')
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidInput))
	_, _, err = ReadCSV(strings.NewReader("a\n\"open\n"), ',')
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidInput))
}

func TestWriteTableCSV(t *testing.T) {
	tab := graph.NewTable()
	require.NoError(t, tab.CreateColumn("name", graph.StringType))
	require.NoError(t, tab.CreateColumn("Weight", graph.DoubleType))
	require.NoError(t, tab.CreateColumn("Layers", graph.ListOf(graph.Int)))
	require.NoError(t, tab.Set(1, "name", "a_1"))
	require.NoError(t, tab.Set(1, "Weight", 0.5))
	require.NoError(t, tab.Set(1, "Layers", []int{1, 2}))
	require.NoError(t, tab.Set(2, "name", "b_1"))

	var buf bytes.Buffer
	require.NoError(t, WriteTableCSV(tab, &buf))
	want := "row,name,Weight,Layers\n1,a_1,0.5,\"[1,2]\"\n2,b_1,,\n"
	assert.Equal(t, want, buf.String())
}

func TestWriteReadCollection(t *testing.T) {
	d, err := ParseDefinition([]byte(tomlDefinition), FormatTOML)
	require.NoError(t, err)
	c, err := Build(d, "")
	require.NoError(t, err)

	dir := filepath.Join(t.TempDir(), "out")
	require.NoError(t, WriteCollection(context.Background(), c, dir))
	for _, name := range []string{FlattenedFile, AggregatedFile, LayerFile(1), LayerFile(2)} {
		assert.FileExists(t, filepath.Join(dir, name))
	}

	back, err := ReadCollection(dir)
	require.NoError(t, err)
	assert.Equal(t, c.LayerIDs(), back.LayerIDs())
	assert.Equal(t, c.Flattened.NodeCount(), back.Flattened.NodeCount())
	assert.Equal(t, c.Aggregated.NodeCount(), back.Aggregated.NodeCount())
	assert.Equal(t, c.Aggregated.EdgeCount(), back.Aggregated.EdgeCount())
}

func TestWriteCollectionCancelled(t *testing.T) {
	d, err := ParseDefinition([]byte(tomlDefinition), FormatTOML)
	require.NoError(t, err)
	c, err := Build(d, "")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = WriteCollection(ctx, c, t.TempDir())
	assert.True(t, errors.IsCancelled(err), "%v", err)
}

func TestReadCollectionMissing(t *testing.T) {
	_, err := ReadCollection(t.TempDir())
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidInput))
}
